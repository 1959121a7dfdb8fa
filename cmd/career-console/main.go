// Package main is the entry point of the career console service.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var environment string

var rootCmd = &cobra.Command{
	Use:   "career-console",
	Short: "Career coaching console service",
	Long: `Career console keeps one coaching session per user over the career API:
résumé analysis, mentor chat, mock interviews with voice answers and feature tasks.
It serves browser consoles over HTTP and chat users over Telegram.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&environment, "env", "local", "Environment name, selects the .env.<env> file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
