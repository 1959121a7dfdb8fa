package callback

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/futig/career-console/internal/config"
	"github.com/futig/career-console/internal/entity"
	"github.com/futig/career-console/internal/integration/common"
	pkghttp "github.com/futig/career-console/pkg/http"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Connector delivers console events to a client-supplied callback URL
type Connector struct {
	config    config.CallbackConnectorConfig
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewConnector(
	cfg config.CallbackConnectorConfig,
	logger *zap.Logger,
) *Connector {
	return &Connector{
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, logger),
		config:    cfg,
		logger:    logger,
	}
}

// SendSessionCreated sends a session created event to the specified callback URL
func (c *Connector) SendSessionCreated(ctx context.Context, callbackURL string, consoleID string, session *entity.Session) {
	err := c.Send(ctx, callbackURL, &entity.CallbackEvent{
		Event:     entity.CallbackEventTypeSessionCreated,
		ConsoleID: consoleID,
		Data:      session,
	})
	if err != nil {
		ctxzap.Error(ctx, "failed to send session created callback", zap.Error(err))
	}
}

func (c *Connector) SendSessionReset(ctx context.Context, callbackURL string, consoleID string) {
	err := c.Send(ctx, callbackURL, &entity.CallbackEvent{
		Event:     entity.CallbackEventTypeSessionReset,
		ConsoleID: consoleID,
		Data:      struct{}{},
	})
	if err != nil {
		ctxzap.Error(ctx, "failed to send session reset callback", zap.Error(err))
	}
}

// SendTaskFinished reports the final status of a feature task run
func (c *Connector) SendTaskFinished(ctx context.Context, callbackURL string, consoleID string, data *entity.CallbackTaskData) {
	err := c.Send(ctx, callbackURL, &entity.CallbackEvent{
		Event:     entity.CallbackEventTypeTaskFinished,
		ConsoleID: consoleID,
		Data:      data,
	})
	if err != nil {
		ctxzap.Error(ctx, "failed to send task finished callback", zap.Error(err))
	}
}

func (c *Connector) SendEvaluation(ctx context.Context, callbackURL string, consoleID string, data *entity.CallbackEvaluationData) {
	err := c.Send(ctx, callbackURL, &entity.CallbackEvent{
		Event:     entity.CallbackEventTypeEvaluation,
		ConsoleID: consoleID,
		Data:      data,
	})
	if err != nil {
		ctxzap.Error(ctx, "failed to send evaluation callback", zap.Error(err))
	}
}

// SendError sends an error event to the specified callback URL
func (c *Connector) SendError(ctx context.Context, callbackURL string, consoleID string, message string, details map[string]any) {
	err := c.Send(ctx, callbackURL, &entity.CallbackEvent{
		Event:     entity.CallbackEventTypeError,
		ConsoleID: consoleID,
		Data: &entity.CallbackErrorData{
			Error: entity.CallbackErrorDetails{
				Message: message,
				Details: details,
			},
		},
	})
	if err != nil {
		ctxzap.Error(ctx, "failed to send error callback", zap.Error(err))
	}
}

// Send posts the event, retrying with backoff per CALLBACK_RETRY_*
func (c *Connector) Send(ctx context.Context, callbackURL string, event *entity.CallbackEvent) error {
	if event.Timestamp == "" {
		event.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}

	ctxzap.Debug(ctx, "sending callback event",
		zap.String("event_type", string(event.Event)),
		zap.String("callback_url", callbackURL),
		zap.String("console_id", event.ConsoleID),
		zap.String("timestamp", event.Timestamp),
	)

	opts := []pkghttp.RequestOpt{
		pkghttp.WithHeader("X-Console-ID", event.ConsoleID),
		pkghttp.WithURL(callbackURL),
	}

	attempt := 0
	err := c.config.Retry.Do(ctx, func(ctx context.Context) error {
		attempt++
		err := c.connector.DoRequest(ctx, http.MethodPost, "", event, nil, opts...)
		if err != nil {
			ctxzap.Warn(ctx, "callback attempt failed",
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to send callback, event_type: %s, url: %s, error: %w", string(event.Event), callbackURL, err)
	}

	ctxzap.Info(ctx, "callback sent successfully",
		zap.String("event_type", string(event.Event)),
		zap.String("callback_url", callbackURL),
		zap.Int("attempts", attempt),
	)
	return nil
}
