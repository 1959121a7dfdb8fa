package builder

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/futig/career-console/internal/telegram"
	"go.uber.org/zap"
)

const shutdownTimeout = 30 * time.Second

// App represents the HTTP console service with all its components
type App struct {
	server *http.Server
	core   *core
	logger *zap.Logger
}

// Run starts the application and blocks until a signal or a server error
func (a *App) Run() error {
	// Start HTTP server in goroutine
	errChan := make(chan error, 1)
	go func() {
		a.logger.Info("Starting HTTP server", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	// Wait for interrupt signal or server error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		a.logger.Error("Server error", zap.Error(err))
		a.core.close()
		return err
	case sig := <-sigChan:
		a.logger.Info("Received shutdown signal", zap.String("signal", sig.String()))
	}

	// Graceful shutdown
	return a.shutdown()
}

// shutdown gracefully shuts down the application
func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	a.logger.Info("Shutting down server gracefully")
	defer a.core.close()

	if err := a.server.Shutdown(ctx); err != nil {
		a.logger.Error("Server shutdown error", zap.Error(err))
		return err
	}

	a.logger.Info("Application stopped gracefully")
	_ = a.logger.Sync()
	return nil
}

// BotApp runs the Telegram front-end
type BotApp struct {
	bot    telegram.Bot
	core   *core
	logger *zap.Logger
}

// Run starts polling and blocks until a shutdown signal
func (a *BotApp) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer a.core.close()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	a.logger.Info("starting telegram bot...")
	if err := a.bot.Start(ctx); err != nil {
		a.logger.Error("telegram bot error", zap.Error(err))
		return err
	}

	sig := <-sigChan
	a.logger.Info("received shutdown signal", zap.String("signal", sig.String()))
	cancel()

	if err := a.bot.Stop(); err != nil {
		a.logger.Error("error stopping bot", zap.Error(err))
		return err
	}

	a.logger.Info("telegram bot stopped gracefully")
	_ = a.logger.Sync()
	return nil
}
