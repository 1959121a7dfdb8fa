package consoles

import (
	"context"

	"github.com/futig/career-console/internal/console"
)

type Registry interface {
	Create(callbackURL string) *console.Console
	Get(id string) (*console.Console, error)
	Delete(id string) error
}

// ErrorNotifier reports background failures that have no task state of their own
type ErrorNotifier interface {
	SendError(ctx context.Context, callbackURL string, consoleID string, message string, details map[string]any)
}
