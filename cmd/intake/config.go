package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/careloop/intakebot/internal/config"
	"github.com/careloop/intakebot/pkg/env"
	"github.com/careloop/intakebot/pkg/log"
)

var configWrite bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration as .env content",
	Long:  `Resolves every setting from the environment and defaults and prints it in .env form. With --write the snapshot is saved to the runtime directory for editing.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()
		logger := log.FromCtx(ctx)

		if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
			logger.Fatal().Err(err).Msg("failed to init env")
		}

		sections := []any{
			config.NewAppConfig(ctx),
			config.NewDialogueConfig(ctx),
			config.NewRedisConfig(ctx),
			config.NewEmbeddingConfig(ctx),
			config.NewLLMConfig(ctx),
		}

		var b strings.Builder
		for _, c := range sections {
			content, err := env.MarshalEnv(c)
			if err != nil {
				return fmt.Errorf("marshal config: %w", err)
			}
			b.WriteString(content)
		}

		if !configWrite {
			fmt.Print(b.String())
			return nil
		}

		runtimePath := config.GetRuntimePath()
		if err := os.MkdirAll(runtimePath, 0755); err != nil {
			return fmt.Errorf("create runtime directory: %w", err)
		}
		envFile := filepath.Join(runtimePath, ".env")
		if err := os.WriteFile(envFile, []byte(b.String()), 0600); err != nil {
			return fmt.Errorf("write env file: %w", err)
		}
		logger.Info().Str("path", envFile).Msg("configuration written")
		return nil
	},
}

func init() {
	configCmd.Flags().BoolVar(&configWrite, "write", false, "write the snapshot to the runtime .env file")
	rootCmd.AddCommand(configCmd)
}
