// Package telegram runs the interview over a Telegram bot: each chat is
// its own session and replies are delivered as Telegram HTML.
package telegram

import (
	"context"
	"fmt"
	"time"

	tele "gopkg.in/telebot.v3"

	"github.com/careloop/intakebot/internal/config"
	"github.com/careloop/intakebot/pkg/log"
)

const baseContextKey = "base_context"

// Turner is the dialogue entry point the bot forwards messages to.
type Turner interface {
	Turn(ctx context.Context, sessionID, patientID, message string) string
}

type Bot struct {
	bot    *tele.Bot
	cfg    *config.TelegramConfig
	turner Turner
	sender *sender
}

func NewBot(
	ctx context.Context,
	cfg *config.TelegramConfig,
	turner Turner,
) (*Bot, error) {
	pref := tele.Settings{
		Token:  cfg.Token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}

	b, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	bot := &Bot{
		bot:    b,
		cfg:    cfg,
		turner: turner,
		sender: newSender(b),
	}

	// Use context from Signal with logger
	b.Use(func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			c.Set(baseContextKey, ctx)
			return next(c)
		}
	})

	b.Handle(tele.OnText, bot.handleMessage)

	return bot, nil
}

func (b *Bot) Start(ctx context.Context) error {
	log.FromCtx(ctx).Info().Msg("starting telegram bot")
	b.bot.Start()
	return nil
}

func (b *Bot) Shutdown(ctx context.Context) error {
	b.bot.Stop()
	return nil
}

func (b *Bot) handleMessage(c tele.Context) error {
	ctx := c.Get(baseContextKey).(context.Context)
	logger := log.FromCtx(ctx)

	// One interview per chat; the chat id also identifies the patient.
	sessionID := fmt.Sprintf("telegram-%d", c.Chat().ID)
	patientID := fmt.Sprintf("telegram-user-%d", c.Sender().ID)

	// Notify user we are working
	_ = c.Notify(tele.Typing)

	reply := b.turner.Turn(ctx, sessionID, patientID, c.Text())
	if reply == "" {
		return nil
	}

	if err := b.sender.sendMarkdown(ctx, c.Chat(), reply, false); err != nil {
		logger.Error().Err(err).Msg("failed to send telegram reply")
	}
	return nil
}
