package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var playCmd = &cobra.Command{
	Use:   "play <family>",
	Short: "Trigger a sequence on a running server",
	Long:  `Sends a play command to a running marquee server. The payload is inline JSON or @file.json.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		addr, _ := cmd.Flags().GetString("addr")
		key, _ := cmd.Flags().GetString("gm-key")
		payload, _ := cmd.Flags().GetString("payload")

		body, err := resolvePayload(payload)
		if err != nil {
			fmt.Printf("Error reading payload: %v\n", err)
			os.Exit(1)
		}

		url := fmt.Sprintf("%s/api/sequences/%s/play", strings.TrimRight(addr, "/"), args[0])
		status, msg, err := postJSON(url, key, body)
		if err != nil {
			fmt.Printf("Error contacting server: %v\n", err)
			os.Exit(1)
		}

		switch status {
		case http.StatusAccepted:
			fmt.Printf("Playing %s\n", args[0])
		case http.StatusConflict:
			fmt.Printf("%s is already on stage\n", args[0])
			os.Exit(1)
		default:
			fmt.Printf("Server refused (%d): %s\n", status, strings.TrimSpace(msg))
			os.Exit(1)
		}
	},
}

// resolvePayload returns the request body for an inline JSON string or an
// @file reference. Empty stays empty.
func resolvePayload(payload string) (string, error) {
	if strings.HasPrefix(payload, "@") {
		raw, err := os.ReadFile(strings.TrimPrefix(payload, "@"))
		if err != nil {
			return "", err
		}
		return string(raw), nil
	}
	return payload, nil
}

func postJSON(url, key, body string) (int, string, error) {
	req, err := http.NewRequest(http.MethodPost, url, strings.NewReader(body))
	if err != nil {
		return 0, "", err
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if key != "" {
		req.Header.Set("X-Marquee-Key", key)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return 0, "", err
	}
	defer resp.Body.Close()

	msg, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(msg), nil
}

func init() {
	rootCmd.AddCommand(playCmd)
	playCmd.Flags().String("payload", "", "Payload as inline JSON or @file.json")
	playCmd.Flags().String("gm-key", "", "GM key if the server requires one")
}
