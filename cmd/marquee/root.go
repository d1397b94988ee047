package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "marquee",
	Short: "Marquee is a cinematic sequence server for virtual tabletops",
	Long:  `Marquee runs timed, skippable presentation sequences and keeps every connected client's overlay in sync.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("addr", "http://localhost:8080", "Address of a running marquee server")
}
