package handlers

import (
	"context"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Telegram clears a chat action after 5 seconds
const typingInterval = 4 * time.Second

// TypingNotifier repeats a chat action while a long call runs
type TypingNotifier struct {
	sender Sender
	chatID int64
	action string
	done   chan struct{}
	once   sync.Once
}

// StartTyping shows action in chatID until Stop is called or ctx is done
func StartTyping(ctx context.Context, sender Sender, chatID int64, action string) *TypingNotifier {
	t := &TypingNotifier{
		sender: sender,
		chatID: chatID,
		action: action,
		done:   make(chan struct{}),
	}

	t.send(ctx)

	go func() {
		ticker := time.NewTicker(typingInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				t.send(ctx)
			case <-t.done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return t
}

func (t *TypingNotifier) send(ctx context.Context) {
	if err := t.sender.ChatAction(t.chatID, t.action); err != nil {
		ctxzap.Warn(ctx, "failed to send chat action",
			zap.Error(err),
			zap.Int64("chat_id", t.chatID),
		)
	}
}

// Stop stops sending the chat action
func (t *TypingNotifier) Stop() {
	t.once.Do(func() { close(t.done) })
}

func startTyping(ctx context.Context, sender Sender, chatID int64) *TypingNotifier {
	return StartTyping(ctx, sender, chatID, tgbotapi.ChatTyping)
}
