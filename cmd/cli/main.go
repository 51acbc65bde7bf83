package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load()

	var opts globalOptions
	rootCmd := &cobra.Command{
		Use:           "datadesk",
		Short:         "Inspect and clean CSV, XLSX and text files locally",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.validate()
		},
	}
	rootCmd.PersistentFlags().StringVarP(&opts.output, "output", "o", formatJSON, "Output format: json or yaml")

	rootCmd.AddCommand(
		newPreviewCmd(&opts),
		newAnalyzeCmd(&opts),
		newCleanCmd(&opts),
		newQualityCmd(&opts),
		newAskCmd(&opts),
		newTokenCmd(&opts),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
