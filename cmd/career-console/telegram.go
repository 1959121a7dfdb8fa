package main

import (
	"fmt"

	"github.com/futig/career-console/internal/builder"
	"github.com/spf13/cobra"
)

var telegramCmd = &cobra.Command{
	Use:   "telegram",
	Short: "Run the Telegram bot front-end",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := builder.BuildTelegramBot(environment)
		if err != nil {
			return fmt.Errorf("failed to build telegram bot: %w", err)
		}
		return app.Run()
	},
}

func init() {
	rootCmd.AddCommand(telegramCmd)
}
