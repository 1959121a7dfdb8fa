package middleware

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Notify sends a short plain-text notice to a chat
type Notify func(chatID int64, text string)

// Handler is one link of the update middleware chain
type Handler interface {
	Handle(update tgbotapi.Update, next func(tgbotapi.Update))
}

// Chain runs update through handlers in order, then final
func Chain(update tgbotapi.Update, final func(tgbotapi.Update), handlers ...Handler) {
	if len(handlers) == 0 {
		final(update)
		return
	}
	handlers[0].Handle(update, func(u tgbotapi.Update) {
		Chain(u, final, handlers[1:]...)
	})
}

// origin extracts user and chat of an update; ok is false for update kinds the bot ignores
func origin(update tgbotapi.Update) (userID, chatID int64, ok bool) {
	switch {
	case update.Message != nil && update.Message.From != nil:
		return update.Message.From.ID, update.Message.Chat.ID, true
	case update.CallbackQuery != nil && update.CallbackQuery.Message != nil:
		return update.CallbackQuery.From.ID, update.CallbackQuery.Message.Chat.ID, true
	default:
		return 0, 0, false
	}
}
