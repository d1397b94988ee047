package main

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var skipCmd = &cobra.Command{
	Use:   "skip <family>",
	Short: "Skip a running sequence on a running server",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		addr, _ := cmd.Flags().GetString("addr")
		key, _ := cmd.Flags().GetString("gm-key")

		url := fmt.Sprintf("%s/api/sequences/%s/skip", strings.TrimRight(addr, "/"), args[0])
		status, msg, err := postJSON(url, key, "")
		if err != nil {
			fmt.Printf("Error contacting server: %v\n", err)
			os.Exit(1)
		}
		if status != http.StatusNoContent {
			fmt.Printf("Server refused (%d): %s\n", status, strings.TrimSpace(msg))
			os.Exit(1)
		}
		fmt.Printf("Skipped %s\n", args[0])
	},
}

func init() {
	rootCmd.AddCommand(skipCmd)
	skipCmd.Flags().String("gm-key", "", "GM key if the server requires one")
}
