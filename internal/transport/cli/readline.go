// Package cli runs the interview in the local terminal, mainly for
// development and manual testing of the question flow.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/google/uuid"

	"github.com/careloop/intakebot/internal/config"
	"github.com/careloop/intakebot/internal/service/ui"
	"github.com/careloop/intakebot/pkg/log"
)

// Turner is the dialogue entry point the console forwards messages to.
type Turner interface {
	Turn(ctx context.Context, sessionID, patientID, message string) string
}

type ReadLine struct {
	cfg    *config.AppConfig
	turner Turner
	rl     *readline.Instance
}

func NewReadLine(turner Turner, cfg *config.AppConfig) (*ReadLine, error) {
	// Ensure runtime directory exists
	if err := os.MkdirAll(config.GetRuntimePath(), 0755); err != nil {
		return nil, fmt.Errorf("failed to create runtime directory: %w", err)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          ">>> ",
		HistoryFile:     filepath.Join(config.GetRuntimePath(), "input_history"),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, err
	}

	return &ReadLine{
		cfg:    cfg,
		turner: turner,
		rl:     rl,
	}, nil
}

func (r *ReadLine) Start(ctx context.Context) error {
	logger := log.FromCtx(ctx)
	logger.Info().Msg("console interview started. Type 'exit' to quit.")

	// A fresh interview per process run.
	sessionID := "cli-" + uuid.NewString()
	patientID := "cli-local"

	fmt.Fprintln(r.rl.Stdout(), ui.BotStyle.Render("Hello! What symptom is bothering you the most?"))

	for {
		// Check context before blocking read
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line, err := r.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				if len(line) == 0 {
					return nil // Exit on Ctrl+C
				}
				continue
			} else if err == io.EOF {
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "exit" {
			return nil
		}
		if line == "" {
			continue
		}

		reply := r.turner.Turn(ctx, sessionID, patientID, line)
		if reply != "" {
			fmt.Fprintln(r.rl.Stdout(), ui.BotStyle.Render(reply))
		}
	}
}

func (r *ReadLine) Shutdown(ctx context.Context) error {
	if r.rl != nil {
		return r.rl.Close()
	}
	return nil
}
