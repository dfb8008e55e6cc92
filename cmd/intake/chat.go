package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/careloop/intakebot/internal/transport/cli"
	"github.com/careloop/intakebot/pkg/log"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Run an interview in the terminal",
	Long:  `Starts a local console interview against the same engine the server transports use. Useful for trying out question data and thresholds.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()
		logger := log.FromCtx(ctx)

		engine, appCfg, cleanups := buildEngine(ctx)
		defer func() {
			for _, c := range cleanups {
				if err := c.Shutdown(context.Background()); err != nil {
					logger.Error().Err(err).Msgf("%T failed to shutdown", c)
				}
			}
		}()

		console, err := cli.NewReadLine(engine.ctrl, appCfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to initialize console")
		}
		defer console.Shutdown(ctx) //nolint:errcheck

		// The console runs in the foreground until 'exit' or Ctrl+C.
		if err := console.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
}
