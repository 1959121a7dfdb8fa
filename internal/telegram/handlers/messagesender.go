package handlers

import (
	"context"
	"fmt"

	pkgRetry "github.com/futig/career-console/internal/pkg/retry"
	"github.com/futig/career-console/internal/telegram/render"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// MessageSender provides centralized message sending functionality
type MessageSender struct {
	bot    *tgbotapi.BotAPI
	retry  *pkgRetry.RetryConfig
	logger *zap.Logger
}

// NewMessageSender creates a new MessageSender. Sends are retried per retryCfg.
func NewMessageSender(bot *tgbotapi.BotAPI, retryCfg *pkgRetry.RetryConfig, logger *zap.Logger) *MessageSender {
	if retryCfg == nil {
		retryCfg = pkgRetry.DefaultRetryConfig()
	}
	return &MessageSender{
		bot:    bot,
		retry:  retryCfg,
		logger: logger,
	}
}

// Send sends a text message to the specified chat
func (s *MessageSender) Send(chatID int64, text string, markup any) error {
	msg := tgbotapi.NewMessage(chatID, render.Truncate(text))
	if markup != nil {
		msg.ReplyMarkup = markup
	}

	return s.do(chatID, "send message", func() error {
		_, err := s.bot.Send(msg)
		return err
	})
}

// SendDocument uploads data as a file attachment
func (s *MessageSender) SendDocument(chatID int64, filename string, data []byte, caption string) error {
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: filename, Bytes: data})
	doc.Caption = caption

	return s.do(chatID, "send document", func() error {
		_, err := s.bot.Send(doc)
		return err
	})
}

// ChatAction shows a transient status such as "typing" in the chat header
func (s *MessageSender) ChatAction(chatID int64, action string) error {
	_, err := s.bot.Request(tgbotapi.NewChatAction(chatID, action))
	return err
}

// Notify sends a plain notice and only logs failures
func (s *MessageSender) Notify(chatID int64, text string) {
	_ = s.Send(chatID, text, nil)
}

func (s *MessageSender) do(chatID int64, op string, fn func() error) error {
	err := s.retry.Do(context.Background(), func(context.Context) error { return fn() })
	if err != nil {
		s.logger.Error("failed to "+op,
			zap.Error(err),
			zap.Int64("chat_id", chatID),
		)
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
