package bot

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/futig/career-console/internal/config"
	"github.com/futig/career-console/internal/telegram/handlers"
	"github.com/futig/career-console/internal/telegram/middleware"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Router receives normalized updates
type Router interface {
	HandleCommand(ctx context.Context, msg *handlers.Message)
	HandleMessage(ctx context.Context, msg *handlers.Message)
	HandleCallback(ctx context.Context, msg *handlers.Message)
}

// Bot represents the Telegram bot
type Bot struct {
	api         *tgbotapi.BotAPI
	cfg         *config.TelegramConfig
	router      Router
	logger      *zap.Logger
	loggingMW   *middleware.LoggingMiddleware
	recoveryMW  *middleware.RecoveryMiddleware
	rateLimitMW *middleware.RateLimiterMiddleware
	updatesChan tgbotapi.UpdatesChannel
	stopChan    chan struct{}
	wg          sync.WaitGroup
}

// NewAPI authorizes the bot token
func NewAPI(cfg *config.TelegramConfig, logger *zap.Logger) (*tgbotapi.BotAPI, error) {
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("create bot API: %w", err)
	}

	logger.Info("telegram bot authorized",
		zap.String("username", api.Self.UserName),
		zap.Int64("id", api.Self.ID),
	)

	return api, nil
}

// New creates a new Telegram bot. notify is used by the middleware to talk
// to users directly.
func New(
	api *tgbotapi.BotAPI,
	cfg *config.TelegramConfig,
	router Router,
	notify middleware.Notify,
	logger *zap.Logger,
) *Bot {
	return &Bot{
		api:         api,
		cfg:         cfg,
		router:      router,
		logger:      logger,
		loggingMW:   middleware.NewLoggingMiddleware(logger),
		recoveryMW:  middleware.NewRecoveryMiddleware(notify, logger),
		rateLimitMW: middleware.NewRateLimiterMiddleware(cfg.RateLimitPerMinute, cfg.RateLimitBurst, notify, logger),
		stopChan:    make(chan struct{}),
	}
}

// Start starts the bot
func (b *Bot) Start(ctx context.Context) error {
	b.logger.Info("starting telegram bot")

	if _, err := b.api.Request(tgbotapi.NewSetMyCommands(Commands()...)); err != nil {
		b.logger.Warn("failed to register bot commands", zap.Error(err))
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.cfg.UpdateTimeout
	b.updatesChan = b.api.GetUpdatesChan(u)

	ctx = ctxzap.ToContext(ctx, b.logger)
	go b.processUpdates(ctx)

	b.logger.Info("telegram bot started successfully")
	return nil
}

// Stop stops the bot gracefully with timeout
func (b *Bot) Stop() error {
	b.logger.Info("stopping telegram bot")

	close(b.stopChan)
	b.api.StopReceivingUpdates()
	b.rateLimitMW.Close()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	shutdownTimeout := time.Duration(b.cfg.ShutdownTimeout) * time.Second
	select {
	case <-done:
		b.logger.Info("all handlers completed gracefully")
	case <-time.After(shutdownTimeout):
		b.logger.Warn("shutdown timeout exceeded, some handlers may not have completed",
			zap.Duration("timeout", shutdownTimeout),
		)
		return fmt.Errorf("shutdown timeout exceeded")
	}

	b.logger.Info("telegram bot stopped successfully")
	return nil
}

func (b *Bot) processUpdates(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			ctxzap.Info(ctx, "context cancelled, stopping update processing")
			return
		case <-b.stopChan:
			ctxzap.Info(ctx, "stop signal received, stopping update processing")
			return
		case update, ok := <-b.updatesChan:
			if !ok {
				return
			}
			b.wg.Add(1)
			go func(u tgbotapi.Update) {
				defer b.wg.Done()
				b.handleUpdateWithMiddleware(ctx, u)
			}(update)
		}
	}
}

// handleUpdateWithMiddleware runs rate limit, logging and recovery before routing
func (b *Bot) handleUpdateWithMiddleware(ctx context.Context, update tgbotapi.Update) {
	middleware.Chain(update, func(u tgbotapi.Update) { b.handleUpdate(ctx, u) },
		b.rateLimitMW,
		b.loggingMW,
		b.recoveryMW,
	)
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		b.handleCallbackQuery(ctx, update.CallbackQuery)
	case update.Message != nil && update.Message.From != nil:
		msg := Normalize(update.Message)
		if msg.Command != "" {
			b.router.HandleCommand(ctx, msg)
			return
		}
		b.router.HandleMessage(ctx, msg)
	}
}

func (b *Bot) handleCallbackQuery(ctx context.Context, query *tgbotapi.CallbackQuery) {
	// Answer right away so Telegram stops the button spinner
	b.answerCallback(query.ID, "")

	if query.Message == nil {
		return
	}

	b.router.HandleCallback(ctx, &handlers.Message{
		ChatID:       query.Message.Chat.ID,
		UserID:       query.From.ID,
		MessageID:    query.Message.MessageID,
		CallbackData: query.Data,
		CallbackID:   query.ID,
	})
}

// Normalize converts a Telegram message into a handlers.Message
func Normalize(m *tgbotapi.Message) *handlers.Message {
	msg := &handlers.Message{
		ChatID:    m.Chat.ID,
		UserID:    m.From.ID,
		MessageID: m.MessageID,
		Text:      m.Text,
		Voice:     m.Voice,
		Document:  m.Document,
	}
	if m.Voice == nil && m.Audio != nil {
		msg.Voice = &tgbotapi.Voice{
			FileID:   m.Audio.FileID,
			Duration: m.Audio.Duration,
			MimeType: m.Audio.MimeType,
			FileSize: m.Audio.FileSize,
		}
	}
	if m.IsCommand() {
		msg.Command = strings.ToLower(m.Command())
		msg.Args = strings.TrimSpace(m.CommandArguments())
	}
	return msg
}

// Commands is the command menu shown by Telegram clients
func Commands() []tgbotapi.BotCommand {
	return []tgbotapi.BotCommand{
		{Command: "start", Description: "Welcome and current analysis"},
		{Command: "new", Description: "Start over with a new résumé"},
		{Command: "tailor", Description: "Tailor your résumé to a job description"},
		{Command: "interview", Description: "Start a mock interview"},
		{Command: "next", Description: "Next interview question"},
		{Command: "prev", Description: "Previous interview question"},
		{Command: "projects", Description: "Portfolio project ideas"},
		{Command: "schedule", Description: "Study plan with calendar file"},
		{Command: "jobs", Description: "Matching job openings"},
		{Command: "companies", Description: "Companies hiring for your role"},
		{Command: "report", Description: "Export the interview report"},
		{Command: "help", Description: "All commands"},
	}
}

func (b *Bot) answerCallback(callbackID string, text string) {
	callback := tgbotapi.NewCallback(callbackID, text)
	if _, err := b.api.Request(callback); err != nil {
		b.logger.Error("failed to answer callback",
			zap.Error(err),
			zap.String("callback_id", callbackID),
		)
	}
}
