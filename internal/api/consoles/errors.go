package consoles

import (
	"context"
	"errors"
	"net/http"

	"github.com/futig/career-console/internal/dictation"
	"github.com/futig/career-console/internal/entity"
)

func (h *Handler) handleError(ctx context.Context, w http.ResponseWriter, err error) {
	var derr *dictation.Error

	switch {
	case errors.Is(err, entity.ErrConsoleNotFound) || errors.Is(err, entity.ErrSessionNotFound):
		h.respondError(ctx, w, http.StatusNotFound, "resource not found", err)
	case errors.Is(err, entity.ErrBlocked),
		errors.Is(err, entity.ErrSessionActive),
		errors.Is(err, entity.ErrSessionCreating),
		errors.Is(err, entity.ErrChatBusy),
		errors.Is(err, entity.ErrStaleResult):
		h.respondError(ctx, w, http.StatusConflict, err.Error(), err)
	case errors.As(err, &derr):
		h.respondError(ctx, w, http.StatusConflict, derr.Message(), err)
	case errors.Is(err, entity.ErrAnalysisFailed):
		// the career API message is shown to the user as is
		h.respondError(ctx, w, http.StatusBadGateway, entity.RawMessage(err), err)
	case errors.Is(err, entity.ErrInvalidResume),
		errors.Is(err, entity.ErrInvalidInput),
		errors.Is(err, entity.ErrMissingField),
		errors.Is(err, entity.ErrInvalidFormat),
		errors.Is(err, entity.ErrInvalidParameter),
		errors.Is(err, entity.ErrEmptyAnswer),
		errors.Is(err, entity.ErrEmptyMessage),
		errors.Is(err, entity.ErrQuestionOutOfRange):
		h.respondError(ctx, w, http.StatusBadRequest, err.Error(), err)
	case errors.Is(err, entity.ErrGenerationFailed),
		errors.Is(err, entity.ErrEvaluationFailed),
		errors.Is(err, entity.ErrTransportFailure):
		h.respondError(ctx, w, http.StatusBadGateway, entity.RawMessage(err), err)
	default:
		h.respondError(ctx, w, http.StatusInternalServerError, "internal server error", err)
	}
}
