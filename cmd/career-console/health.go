package main

import (
	"context"
	"fmt"
	"time"

	"github.com/futig/career-console/internal/builder"
	"github.com/spf13/cobra"
)

var healthTimeout time.Duration

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Probe the career API and print its status",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), healthTimeout)
		defer cancel()

		h, err := builder.ProbeGateway(ctx, environment)
		if err != nil {
			return fmt.Errorf("career API is offline: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "status:   %s\n", h.Status)
		fmt.Fprintf(out, "model:    %s\n", h.Model)
		fmt.Fprintf(out, "groq:     %t\n", h.GroqConfigured)
		fmt.Fprintf(out, "adzuna:   %t\n", h.AdzunaConfigured)
		return nil
	},
}

func init() {
	healthCmd.Flags().DurationVar(&healthTimeout, "timeout", 30*time.Second, "Overall probe deadline")
	rootCmd.AddCommand(healthCmd)
}
