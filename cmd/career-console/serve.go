package main

import (
	"fmt"

	"github.com/futig/career-console/internal/builder"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP console API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := builder.Build(environment)
		if err != nil {
			return fmt.Errorf("failed to build application: %w", err)
		}
		return app.Run()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
