package telegram

import (
	"context"
	"time"

	"github.com/futig/career-console/internal/config"
	"github.com/futig/career-console/internal/integration/capture"
	"github.com/futig/career-console/internal/pkg/formatter"
	pkgRetry "github.com/futig/career-console/internal/pkg/retry"
	"github.com/futig/career-console/internal/telegram/bot"
	"github.com/futig/career-console/internal/telegram/handlers"
	"github.com/futig/career-console/internal/telegram/keyboard"
	"github.com/futig/career-console/internal/telegram/state"
	"go.uber.org/zap"
)

// Bot is the main telegram bot interface
type Bot interface {
	Start(ctx context.Context) error
	Stop() error
}

// NewBot initializes the telegram bot with all dependencies. Chat state
// lives as long as an idle console.
func NewBot(
	cfg *config.TelegramConfig,
	registry handlers.Registry,
	transcriber capture.Transcriber,
	formats *formatter.Factory,
	idleTTL time.Duration,
	logger *zap.Logger,
) (Bot, error) {
	api, err := bot.NewAPI(cfg, logger)
	if err != nil {
		return nil, err
	}

	sender := handlers.NewMessageSender(api, pkgRetry.DefaultRetryConfig(), logger)
	states := state.NewManager(state.NewMemoryStorage(idleTTL, idleTTL/4))

	router := handlers.NewHandler(handlers.Deps{
		Registry:    registry,
		Sender:      sender,
		Files:       handlers.NewTelegramFiles(api, cfg.MaxVoiceSize),
		Transcriber: transcriber,
		Formats:     formats,
		States:      states,
		Keyboard:    keyboard.NewBuilder(),
		Logger:      logger,
	})

	b := bot.New(api, cfg, router, sender.Notify, logger)

	logger.Info("telegram bot initialized successfully")

	return b, nil
}
