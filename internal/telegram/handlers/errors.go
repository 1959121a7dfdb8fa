package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/futig/career-console/internal/dictation"
	"github.com/futig/career-console/internal/entity"
	"github.com/futig/career-console/internal/telegram/render"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// ErrorSeverity represents the severity level of an error
type ErrorSeverity int

const (
	SeverityInfo ErrorSeverity = iota
	SeverityWarning
	SeverityError
)

// HandlerError represents a structured error with user message and logging info
type HandlerError struct {
	Err         error
	UserMessage string
	LogMessage  string
	Severity    ErrorSeverity
}

// classifyHandlerError maps an error to what the user is told and how it is logged
func classifyHandlerError(err error) *HandlerError {
	he := &HandlerError{Err: err, UserMessage: render.ErrGeneric, LogMessage: "handler error", Severity: SeverityError}

	var derr *dictation.Error
	switch {
	case err == nil:
		he.LogMessage = "unknown error"
		he.Severity = SeverityWarning

	case errors.Is(err, entity.ErrStaleResult):
		he.UserMessage = ""
		he.LogMessage = "stale result dropped"
		he.Severity = SeverityInfo

	case errors.Is(err, entity.ErrBlocked):
		he.UserMessage = render.ErrNoSession
		he.LogMessage = "no active session"
		he.Severity = SeverityInfo

	case errors.Is(err, entity.ErrSessionActive):
		he.UserMessage = render.ErrSessionActive
		he.LogMessage = "session already active"
		he.Severity = SeverityInfo

	case errors.Is(err, entity.ErrSessionCreating), errors.Is(err, entity.ErrChatBusy):
		he.UserMessage = render.ErrBusy
		he.LogMessage = "operation already in progress"
		he.Severity = SeverityInfo

	case errors.Is(err, entity.ErrEmptyAnswer), errors.Is(err, entity.ErrEmptyMessage):
		he.UserMessage = render.ErrEmptyAnswer
		he.LogMessage = "empty input"
		he.Severity = SeverityInfo

	case errors.Is(err, ErrFileTooLarge):
		he.UserMessage = render.ErrFileTooLarge
		he.LogMessage = "file too large"
		he.Severity = SeverityWarning

	case errors.As(err, &derr):
		he.UserMessage = "🎙 " + derr.Message()
		he.LogMessage = "dictation failed"
		he.Severity = SeverityWarning

	case errors.Is(err, entity.ErrInvalidResume),
		errors.Is(err, entity.ErrInvalidInput),
		errors.Is(err, entity.ErrMissingField),
		errors.Is(err, entity.ErrInvalidParameter),
		errors.Is(err, entity.ErrInvalidFormat),
		errors.Is(err, entity.ErrQuestionOutOfRange):
		he.UserMessage = fmt.Sprintf(render.ErrInvalidInput, err.Error())
		he.LogMessage = "invalid input"
		he.Severity = SeverityWarning

	case errors.Is(err, entity.ErrAnalysisFailed),
		errors.Is(err, entity.ErrGenerationFailed),
		errors.Is(err, entity.ErrEvaluationFailed),
		errors.Is(err, entity.ErrTransportFailure):
		he.UserMessage = fmt.Sprintf(render.ErrServiceFailure, entity.RawMessage(err))
		he.LogMessage = "career service call failed"

	case errors.Is(err, context.DeadlineExceeded):
		he.UserMessage = render.ErrTimeout
		he.LogMessage = "operation timed out"
	}

	return he
}

// HandleError logs err with its severity and tells the user what went wrong
func (h *Handler) HandleError(ctx context.Context, chatID int64, err error) {
	if err == nil {
		return
	}

	he := classifyHandlerError(err)
	fields := []zap.Field{zap.Error(he.Err), zap.Int64("chat_id", chatID)}

	switch he.Severity {
	case SeverityError:
		ctxzap.Error(ctx, he.LogMessage, fields...)
	case SeverityWarning:
		ctxzap.Warn(ctx, he.LogMessage, fields...)
	default:
		ctxzap.Debug(ctx, he.LogMessage, fields...)
	}

	if he.UserMessage != "" {
		h.send(chatID, he.UserMessage, nil)
	}
}
