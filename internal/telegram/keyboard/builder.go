package keyboard

import (
	"github.com/futig/career-console/internal/entity"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Builder creates inline keyboards
type Builder struct{}

// NewBuilder creates a keyboard builder
func NewBuilder() *Builder {
	return &Builder{}
}

func button(text, action, value string) tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardButtonData(text, EncodeCallback(action, value))
}

// MainMenuKeyboard lists the features available once a session exists
func (b *Builder) MainMenuKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			button("✂️ Tailor résumé", ActionFeature, "tailor"),
			button("🎤 Mock interview", ActionFeature, "interview"),
		),
		tgbotapi.NewInlineKeyboardRow(
			button("🛠 Projects", ActionFeature, "projects"),
			button("📅 Study plan", ActionFeature, "schedule"),
		),
		tgbotapi.NewInlineKeyboardRow(
			button("💼 Jobs", ActionFeature, "jobs"),
			button("🏢 Companies", ActionFeature, "companies"),
		),
	)
}

// QuestionKeyboard navigates the interview batch around question index
func (b *Builder) QuestionKeyboard(index, total int) tgbotapi.InlineKeyboardMarkup {
	var nav []tgbotapi.InlineKeyboardButton
	if index > 0 {
		nav = append(nav, button("⬅️ Previous", ActionQuestion, "prev"))
	}
	if index < total-1 {
		nav = append(nav, button("Next ➡️", ActionQuestion, "next"))
	}

	rows := [][]tgbotapi.InlineKeyboardButton{}
	if len(nav) > 0 {
		rows = append(rows, nav)
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		button("📄 Report", ActionReport, string(entity.FormatPDF)),
	))

	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// EvaluationKeyboard follows an evaluation card
func (b *Builder) EvaluationKeyboard(index, total int) tgbotapi.InlineKeyboardMarkup {
	kb := b.QuestionKeyboard(index, total)
	retry := tgbotapi.NewInlineKeyboardRow(button("🔁 Try again", ActionQuestion, "retry"))
	kb.InlineKeyboard = append([][]tgbotapi.InlineKeyboardButton{retry}, kb.InlineKeyboard...)
	return kb
}

// ReportFormatKeyboard offers the export formats of the interview report
func (b *Builder) ReportFormatKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			button("📕 PDF", ActionReport, string(entity.FormatPDF)),
			button("📘 DOCX", ActionReport, string(entity.FormatDOCX)),
			button("📝 Markdown", ActionReport, string(entity.FormatMarkdown)),
		),
	)
}

// ConfirmNewKeyboard asks before discarding the current session
func (b *Builder) ConfirmNewKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			button("✅ Yes, start over", ActionNewSearch, "confirm"),
		),
	)
}
