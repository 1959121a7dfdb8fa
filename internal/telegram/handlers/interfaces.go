package handlers

import (
	"context"

	"github.com/futig/career-console/internal/console"
)

// Registry hands out the console owned by a chat user
type Registry interface {
	GetOrCreate(id string) *console.Console
}

// Sender delivers bot output to a chat
type Sender interface {
	Send(chatID int64, text string, markup any) error
	SendDocument(chatID int64, filename string, data []byte, caption string) error
	ChatAction(chatID int64, action string) error
}

// FileDownloader fetches the content of a file the user sent
type FileDownloader interface {
	Download(ctx context.Context, fileID string) ([]byte, error)
}

// AudioConverter turns a voice note into audio the transcriber accepts
type AudioConverter func(ctx context.Context, data []byte) ([]byte, error)
