package handlers

import (
	"context"

	"github.com/futig/career-console/internal/entity"
	"github.com/futig/career-console/internal/pkg/logger"
	"github.com/futig/career-console/internal/telegram/keyboard"
	"github.com/futig/career-console/internal/telegram/render"
	"github.com/futig/career-console/internal/telegram/state"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// HandleCallback handles inline keyboard button presses
func (h *Handler) HandleCallback(base context.Context, msg *Message) {
	c, ctx := h.console(base, msg)

	cb, err := keyboard.ParseCallback(msg.CallbackData)
	if err != nil {
		ctxzap.Warn(ctx, "invalid callback data", zap.Error(err), zap.String("data", msg.CallbackData))
		return
	}
	ctx = logger.WithAction(ctx, "callback_"+cb.Action)

	ctxzap.Info(ctx, "callback query received",
		zap.String("action", cb.Action),
		zap.String("value", cb.Value),
	)

	switch cb.Action {
	case keyboard.ActionFeature:
		h.handleFeature(base, msg, cb.Value)
	case keyboard.ActionQuestion:
		switch cb.Value {
		case "next":
			h.moveQuestion(ctx, c, msg, 1)
		case "prev":
			h.moveQuestion(ctx, c, msg, -1)
		case "retry":
			h.setMode(ctx, msg.UserID, state.ModeInterview)
			h.showQuestion(c, msg.ChatID)
		}
	case keyboard.ActionReport:
		h.report(ctx, c, msg, entity.ResultFormat(cb.Value))
	case keyboard.ActionNewSearch:
		h.startOver(ctx, c, msg)
	default:
		h.send(msg.ChatID, render.ErrGeneric, nil)
	}
}

// handleFeature runs a main-menu feature as if its command was typed
func (h *Handler) handleFeature(ctx context.Context, msg *Message, feature string) {
	cmd := *msg
	cmd.Command = feature
	cmd.Args = ""
	h.HandleCommand(ctx, &cmd)
}
