package middleware

import (
	"runtime/debug"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const panicText = "❌ Something went wrong. Please try again or send /start"

// RecoveryMiddleware recovers from panics
type RecoveryMiddleware struct {
	logger *zap.Logger
	notify Notify
}

// NewRecoveryMiddleware creates a new recovery middleware
func NewRecoveryMiddleware(notify Notify, logger *zap.Logger) *RecoveryMiddleware {
	return &RecoveryMiddleware{
		logger: logger,
		notify: notify,
	}
}

// Handle recovers from panics and tells the user
func (m *RecoveryMiddleware) Handle(update tgbotapi.Update, next func(tgbotapi.Update)) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("panic recovered in telegram handler",
				zap.Any("panic", r),
				zap.String("stack", string(debug.Stack())),
				zap.Int("update_id", update.UpdateID),
			)

			if _, chatID, ok := origin(update); ok && m.notify != nil {
				m.notify(chatID, panicText)
			}
		}
	}()

	next(update)
}
