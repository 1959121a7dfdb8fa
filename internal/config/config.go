package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	pkgRetry "github.com/futig/career-console/internal/pkg/retry"
	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	// Server configuration
	ServerAddr string `env:"SERVER_ADDR" envDefault:":8080"`

	// Database configuration (optional, practice history is disabled without it)
	DatabaseURL         string        `env:"DATABASE_URL"`
	DBMaxConns          int           `env:"DB_MAX_CONNS" envDefault:"10"`
	DBMinConns          int           `env:"DB_MIN_CONNS" envDefault:"1"`
	DBMaxConnLifetime   time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`
	DBMaxConnIdleTime   time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"30m"`
	DBHealthCheckPeriod time.Duration `env:"DB_HEALTH_CHECK_PERIOD" envDefault:"1m"`

	// Startup ping; the database container may come up after the service
	DBConnectRetry pkgRetry.RetryConfig `envPrefix:"DB_CONNECT_RETRY_"`

	// External service configurations
	GatewayCfg  GatewayConfig           `envPrefix:"GATEWAY_"`
	ASRCfg      ASRConnectorConfig      `envPrefix:"ASR_"`
	CallbackCfg CallbackConnectorConfig `envPrefix:"CALLBACK_"`

	// Console configuration
	ConsoleCfg ConsoleConfig `envPrefix:"CONSOLE_"`

	// Logging configuration
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Metered key for DOCX report export; tests run without it
	UnidocLicenseKey string `env:"UNIDOC_LICENSE_API_KEY"`

	// Mock configuration
	EnableMocks bool `env:"ENABLE_MOCKS" envDefault:"false"`

	// Telegram bot configuration (optional)
	TelegramCfg TelegramConfig `envPrefix:"TELEGRAM_"`

	// Environment (set from flag, not from env var)
	Environment string
}

// TelegramConfig holds Telegram bot configuration
type TelegramConfig struct {
	BotToken           string `env:"BOT_TOKEN"`
	UpdateTimeout      int    `env:"UPDATE_TIMEOUT" envDefault:"60"`
	RateLimitPerMinute int    `env:"RATE_LIMIT_PER_MINUTE" envDefault:"20"`
	RateLimitBurst     int    `env:"RATE_LIMIT_BURST" envDefault:"5"`
	ShutdownTimeout    int    `env:"SHUTDOWN_TIMEOUT" envDefault:"30"` // seconds
	MaxVoiceSize       int64  `env:"MAX_VOICE_SIZE" envDefault:"10485760"`
}

// GatewayConfig configures the career API connector
type GatewayConfig struct {
	HTTPClientConfig
	// Startup probe of /health; the feature calls themselves are never retried
	HealthRetry pkgRetry.RetryConfig `envPrefix:"HEALTH_RETRY_"`
}

type ASRConnectorConfig struct {
	HTTPClientConfig
	TranscribeEndpoint string `env:"TRANSCRIBE_ENDPOINT" envDefault:"/transcribe"`
}

type CallbackConnectorConfig struct {
	HTTPClientConfig
	Retry pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

type HTTPClientConfig struct {
	RequestTimeout        time.Duration `env:"TIMEOUT" envDefault:"60s"`
	ConnTimeout           time.Duration `env:"CONN_TIMEOUT" envDefault:"10s"`
	KeepAlive             time.Duration `env:"KEEP_ALIVE" envDefault:"90s"`
	IdleConnTimeout       time.Duration `env:"IDLE_CONN_TIMEOUT" envDefault:"90s"`
	ResponseHeaderTimeout time.Duration `env:"RESPONSE_HEADER_TIMEOUT" envDefault:"60s"`
	TLSHandshakeTimeout   time.Duration `env:"TLS_HANDSHAKE_TIMEOUT" envDefault:"10s"`
	MaxIdleConnsPerHost   int           `env:"MAX_IDLE_CONNS_PER_HOST" envDefault:"10"`
	Token                 string        `env:"TOKEN"`
	Url                   string        `env:"SERVICE_URL"`
}

// ConsoleConfig holds limits of a single console and the console registry
type ConsoleConfig struct {
	IdleTTL         time.Duration `env:"IDLE_TTL" envDefault:"2h"`
	CleanupInterval time.Duration `env:"CLEANUP_INTERVAL" envDefault:"10m"`
	TaskTimeout     time.Duration `env:"TASK_TIMEOUT" envDefault:"90s"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" envDefault:"120s"`
	MaxResumeSize   int64         `env:"MAX_RESUME_SIZE" envDefault:"5242880"` // 5 MiB
	MaxQuestions    int           `env:"MAX_QUESTIONS" envDefault:"10"`
	MaxJobResults   int           `env:"MAX_JOB_RESULTS" envDefault:"20"`
	AllowedOrigins  []string      `env:"ALLOWED_ORIGINS" envSeparator:","`
}

// LoadConfig reads .env.<environment> (if present) and the process environment
func LoadConfig(environment string) (*Config, error) {
	envFile := getEnvFile(environment)
	// Try to load env file, but don't fail if it's missing.
	// In containerized/prod environments variables are usually set externally.
	if err := godotenv.Load(envFile); err != nil {
		fmt.Printf("Warning: could not load %s file (this is ok if env vars are set externally): %v\n", envFile, err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	cfg.Environment = environment

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	var errors []string

	if !cfg.EnableMocks && cfg.GatewayCfg.Url == "" {
		errors = append(errors, "GATEWAY_SERVICE_URL is required unless ENABLE_MOCKS is set")
	}

	if cfg.TelegramCfg.RateLimitPerMinute < 1 || cfg.TelegramCfg.RateLimitPerMinute > 60 {
		errors = append(errors, fmt.Sprintf("TELEGRAM_RATE_LIMIT_PER_MINUTE must be between 1 and 60, got %d", cfg.TelegramCfg.RateLimitPerMinute))
	}

	if cfg.TelegramCfg.RateLimitBurst < 1 || cfg.TelegramCfg.RateLimitBurst > 20 {
		errors = append(errors, fmt.Sprintf("TELEGRAM_RATE_LIMIT_BURST must be between 1 and 20, got %d", cfg.TelegramCfg.RateLimitBurst))
	}

	if cfg.TelegramCfg.ShutdownTimeout < 1 || cfg.TelegramCfg.ShutdownTimeout > 300 {
		errors = append(errors, fmt.Sprintf("TELEGRAM_SHUTDOWN_TIMEOUT must be between 1 and 300 seconds, got %d", cfg.TelegramCfg.ShutdownTimeout))
	}

	if cfg.ConsoleCfg.MaxQuestions < 1 || cfg.ConsoleCfg.MaxQuestions > 10 {
		errors = append(errors, fmt.Sprintf("CONSOLE_MAX_QUESTIONS must be between 1 and 10, got %d", cfg.ConsoleCfg.MaxQuestions))
	}

	if cfg.ConsoleCfg.MaxJobResults < 1 || cfg.ConsoleCfg.MaxJobResults > 20 {
		errors = append(errors, fmt.Sprintf("CONSOLE_MAX_JOB_RESULTS must be between 1 and 20, got %d", cfg.ConsoleCfg.MaxJobResults))
	}

	if cfg.ConsoleCfg.TaskTimeout < 0 {
		errors = append(errors, fmt.Sprintf("CONSOLE_TASK_TIMEOUT must not be negative, got %s", cfg.ConsoleCfg.TaskTimeout))
	}

	if cfg.ConsoleCfg.RequestTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("CONSOLE_REQUEST_TIMEOUT must be positive, got %s", cfg.ConsoleCfg.RequestTimeout))
	}

	if cfg.ConsoleCfg.IdleTTL <= 0 {
		errors = append(errors, fmt.Sprintf("CONSOLE_IDLE_TTL must be positive, got %s", cfg.ConsoleCfg.IdleTTL))
	}

	if cfg.DatabaseURL != "" {
		if cfg.DBMaxConns < 1 || cfg.DBMaxConns > 200 {
			errors = append(errors, fmt.Sprintf("DB_MAX_CONNS must be between 1 and 200, got %d", cfg.DBMaxConns))
		}

		if cfg.DBMinConns < 0 || cfg.DBMinConns > cfg.DBMaxConns {
			errors = append(errors, fmt.Sprintf("DB_MIN_CONNS must be between 0 and DB_MAX_CONNS(%d), got %d", cfg.DBMaxConns, cfg.DBMinConns))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation errors:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

func getEnvFile(environment string) string {
	switch environment {
	case "prod", "production":
		return ".env.prod"
	case "local", "dev", "development", "":
		return ".env.local"
	default:
		return fmt.Sprintf(".env.%s", environment)
	}
}
