package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/medihack/competency-service/internal/flow"
)

var rootCmd = &cobra.Command{
	Use:          "nursectl",
	Short:        "Terminal client for the nurse competency assessment service",
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("server", "http://localhost:8080", "Base URL of the assessment service (overrides NURSECTL_SERVER)")
	rootCmd.PersistentFlags().Bool("verbose", false, "Log API requests to stderr")

	rootCmd.AddCommand(assessCmd)
	rootCmd.AddCommand(rosterCmd)
}

// newBackend resolves the server URL from --server, then NURSECTL_SERVER.
func newBackend(cmd *cobra.Command) *flow.HTTPBackend {
	server, _ := cmd.Flags().GetString("server")
	if env := os.Getenv("NURSECTL_SERVER"); env != "" && !cmd.Flags().Changed("server") {
		server = env
	}
	return flow.NewHTTPBackend(server, newLogger(cmd))
}

func newLogger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelWarn
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
