package handlers

import (
	"context"
	"fmt"

	"github.com/futig/career-console/internal/console"
	"github.com/futig/career-console/internal/integration/capture"
	"github.com/futig/career-console/internal/pkg/formatter"
	"github.com/futig/career-console/internal/pkg/logger"
	"github.com/futig/career-console/internal/telegram/keyboard"
	"github.com/futig/career-console/internal/telegram/state"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Questions per /interview batch
const defaultInterviewSize = 3

// Message represents a normalized Telegram message
type Message struct {
	ChatID       int64
	UserID       int64
	MessageID    int
	Text         string
	Command      string
	Args         string
	Voice        *tgbotapi.Voice
	Document     *tgbotapi.Document
	CallbackData string
	CallbackID   string
}

type Deps struct {
	Registry      Registry
	Sender        Sender
	Files         FileDownloader
	Transcriber   capture.Transcriber
	ConvertAudio  AudioConverter
	Formats       *formatter.Factory
	States        *state.Manager
	Keyboard      *keyboard.Builder
	InterviewSize int
	Logger        *zap.Logger
}

// Handler turns chat input into console operations. Each Telegram user
// owns one console.
type Handler struct {
	registry      Registry
	sender        Sender
	files         FileDownloader
	transcriber   capture.Transcriber
	convertAudio  AudioConverter
	formats       *formatter.Factory
	states        *state.Manager
	keyboard      *keyboard.Builder
	interviewSize int
	logger        *zap.Logger
}

func NewHandler(d Deps) *Handler {
	if d.InterviewSize <= 0 {
		d.InterviewSize = defaultInterviewSize
	}
	if d.ConvertAudio == nil {
		d.ConvertAudio = ConvertToWAV
	}
	if d.Keyboard == nil {
		d.Keyboard = keyboard.NewBuilder()
	}

	return &Handler{
		registry:      d.Registry,
		sender:        d.Sender,
		files:         d.Files,
		transcriber:   d.Transcriber,
		convertAudio:  d.ConvertAudio,
		formats:       d.Formats,
		states:        d.States,
		keyboard:      d.Keyboard,
		interviewSize: d.InterviewSize,
		logger:        d.Logger,
	}
}

// ConsoleID is the registry id of a Telegram user's console
func ConsoleID(userID int64) string {
	return fmt.Sprintf("tg:%d", userID)
}

// console returns the user's console and a ctx carrying its logger
func (h *Handler) console(ctx context.Context, msg *Message) (*console.Console, context.Context) {
	c := h.registry.GetOrCreate(ConsoleID(msg.UserID))
	ctx = logger.AddFields(c.Context(ctx),
		zap.Int64("user_id", msg.UserID),
		zap.Int64("chat_id", msg.ChatID),
	)
	return c, ctx
}

func (h *Handler) send(chatID int64, text string, markup any) {
	// MessageSender already logs failures
	_ = h.sender.Send(chatID, text, markup)
}

func (h *Handler) setMode(ctx context.Context, userID int64, mode state.Mode) {
	if err := h.states.SetMode(ctx, userID, mode); err != nil {
		h.logger.Error("failed to update chat state",
			zap.Error(err),
			zap.Int64("user_id", userID),
		)
	}
}
