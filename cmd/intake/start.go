package main

import (
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/careloop/intakebot/pkg/log"
	"github.com/careloop/intakebot/pkg/srv"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the IntakeBot services",
	Long:  `Initializes and starts all configured transports (HTTP API, Telegram) and their backing services.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		// logger setup
		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		logger := log.FromCtx(ctx)
		logger.Info().Msg("starting intakebot")

		services := NewServices(ctx)

		srv.StartServices(ctx, services)

		// Wait for shutdown signal
		srv.ShutdownServices(ctx, services)
		logger.Info().Msg("intakebot has been shut down gracefully")

		return nil
	},
}

func init() {
	rootCmd.AddCommand(startCmd)
}
