package builder

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/futig/career-console/internal/api"
	consoleapi "github.com/futig/career-console/internal/api/consoles"
	"github.com/futig/career-console/internal/config"
	"github.com/futig/career-console/internal/console"
	"github.com/futig/career-console/internal/entity"
	"github.com/futig/career-console/internal/integration/asr"
	"github.com/futig/career-console/internal/integration/callback"
	"github.com/futig/career-console/internal/integration/capture"
	"github.com/futig/career-console/internal/integration/gateway"
	"github.com/futig/career-console/internal/pkg/formatter"
	"github.com/futig/career-console/internal/pkg/validator"
	"github.com/futig/career-console/internal/repository"
	"github.com/futig/career-console/internal/telegram"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/unidoc/unioffice/common/license"
	"go.uber.org/zap"
)

// Gateway is the career API connector, real or mocked
type Gateway interface {
	console.Gateway
	Probe(ctx context.Context) (*entity.HealthResponse, error)
}

// core holds everything shared by the HTTP API and the Telegram bot
type core struct {
	cfg         *config.Config
	logger      *zap.Logger
	db          *pgxpool.Pool
	gateway     Gateway
	transcriber capture.Transcriber
	notifier    *callback.Connector
	validator   *validator.Validator
	formats     *formatter.Factory
	registry    *console.Registry
}

func (c *core) close() {
	c.registry.Close()
	if c.db != nil {
		c.logger.Info("Closing database connections")
		c.db.Close()
	}
}

// Build creates the HTTP console service
func Build(environment string) (*App, error) {
	c, err := buildCore(environment)
	if err != nil {
		return nil, err
	}

	// Setup API handlers
	consoleHandler := consoleapi.NewHandler(c.registry, c.validator, c.formats, c.notifier, c.cfg.ConsoleCfg)
	router := api.SetupRouter(consoleHandler, c.gateway, c.registry.Count, c.cfg.ConsoleCfg, c.logger)
	c.logger.Info("HTTP router configured")

	// Create HTTP server. The write timeout covers the longest gateway call.
	server := &http.Server{
		Addr:         c.cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: c.cfg.ConsoleCfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	c.logger.Info("Application built successfully",
		zap.String("environment", c.cfg.Environment),
	)

	return &App{
		server: server,
		core:   c,
		logger: c.logger,
	}, nil
}

// BuildTelegramBot creates the Telegram front-end over its own console registry
func BuildTelegramBot(environment string) (*BotApp, error) {
	c, err := buildCore(environment)
	if err != nil {
		return nil, err
	}

	if c.cfg.TelegramCfg.BotToken == "" {
		c.close()
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is required for the telegram command")
	}

	bot, err := telegram.NewBot(
		&c.cfg.TelegramCfg,
		c.registry,
		c.transcriber,
		c.formats,
		c.cfg.ConsoleCfg.IdleTTL,
		c.logger,
	)
	if err != nil {
		c.close()
		return nil, fmt.Errorf("initialize telegram bot: %w", err)
	}

	c.logger.Info("Telegram bot built successfully",
		zap.String("environment", c.cfg.Environment),
	)

	return &BotApp{
		bot:    bot,
		core:   c,
		logger: c.logger,
	}, nil
}

// ProbeGateway checks the career API with the startup retry policy
func ProbeGateway(ctx context.Context, environment string) (*entity.HealthResponse, error) {
	cfg, err := config.LoadConfig(environment)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := setupLogger(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	return newGateway(cfg, logger).Probe(ctx)
}

func buildCore(environment string) (*core, error) {
	ctx := context.Background()

	cfg, err := config.LoadConfig(environment)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := setupLogger(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	logger.Info("Building application",
		zap.String("environment", cfg.Environment),
		zap.String("server_addr", cfg.ServerAddr),
	)

	if cfg.UnidocLicenseKey != "" {
		if err := license.SetMeteredKey(cfg.UnidocLicenseKey); err != nil {
			return nil, fmt.Errorf("set unidoc license: %w", err)
		}
	} else {
		logger.Warn("UNIDOC_LICENSE_API_KEY is not set, DOCX export may fail")
	}

	// Practice history is optional
	var db *pgxpool.Pool
	var history console.HistoryRepository = repository.NoopHistory{}
	if cfg.DatabaseURL != "" {
		db, err = setupDatabase(ctx, cfg, logger)
		if err != nil {
			return nil, fmt.Errorf("setup database: %w", err)
		}

		logger.Info("Running database migrations")
		if err := repository.RunMigrations(cfg.DatabaseURL); err != nil {
			db.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		logger.Info("Database migrations completed successfully")

		history = repository.NewHistoryPostgres(db)
	} else {
		logger.Info("DATABASE_URL is not set, practice history is disabled")
	}

	gw := newGateway(cfg, logger)

	var transcriber capture.Transcriber
	if cfg.EnableMocks {
		transcriber = asr.NewMockConnector(logger)
	} else {
		transcriber = asr.NewConnector(cfg.ASRCfg, logger)
	}

	// The console still works offline, so a failed probe is only logged
	if h, err := gw.Probe(ctx); err != nil {
		logger.Warn("career API is unreachable", zap.Error(err))
	} else {
		logger.Info("career API is reachable",
			zap.String("status", h.Status),
			zap.String("model", h.Model),
		)
	}

	notifier := callback.NewConnector(cfg.CallbackCfg, logger)
	v := validator.New(cfg.ConsoleCfg)
	logger.Info("Validators initialized")

	registry := console.NewRegistry(console.Deps{
		Gateway:      gw,
		Validator:    v,
		History:      history,
		Notifier:     notifier,
		Logger:       logger,
		TaskTimeout:  cfg.ConsoleCfg.TaskTimeout,
		MaxQuestions: cfg.ConsoleCfg.MaxQuestions,
	}, cfg.ConsoleCfg.IdleTTL, cfg.ConsoleCfg.CleanupInterval)

	return &core{
		cfg:         cfg,
		logger:      logger,
		db:          db,
		gateway:     gw,
		transcriber: transcriber,
		notifier:    notifier,
		validator:   v,
		formats:     formatter.NewFactory(),
		registry:    registry,
	}, nil
}

func newGateway(cfg *config.Config, logger *zap.Logger) Gateway {
	if cfg.EnableMocks {
		logger.Info("Using mock connectors for external services")
		return gateway.NewMockConnector(logger)
	}

	logger.Info("Using real connectors for external services")
	return gateway.NewConnector(cfg.GatewayCfg, logger)
}
