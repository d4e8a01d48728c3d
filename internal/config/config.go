package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`

	// Token
	JWTSecret      string        `env:"JWT_SECRET,required,notEmpty"`
	AccessTokenTTL time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"30m"`

	// Password hashing
	Argon2 Argon2 `envPrefix:"ARGON2_"`
	// HashMaxConcurrent はパスワードハッシュ計算の同時実行数の上限。
	HashMaxConcurrent int `env:"HASH_MAX_CONCURRENT" envDefault:"4"`

	// Rate Limit (req/min)
	RateLimitGeneral int `env:"RATE_LIMIT_GENERAL" envDefault:"120"`
	RateLimitAuth    int `env:"RATE_LIMIT_AUTH" envDefault:"20"`

	// Error tracking
	SentryDSN         string `env:"SENTRY_DSN"`
	SentryEnvironment string `env:"SENTRY_ENVIRONMENT" envDefault:"development"`

	// Avatar
	AvatarProbeEnabled bool          `env:"AVATAR_PROBE_ENABLED" envDefault:"false"`
	AvatarProbeTimeout time.Duration `env:"AVATAR_PROBE_TIMEOUT" envDefault:"5s"`

	// Worker
	CleanupInterval time.Duration `env:"CLEANUP_INTERVAL" envDefault:"24h"`

	// Logging
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Server
	ServerPort string `env:"SERVER_PORT" envDefault:"8080"`

	// CORS
	CORSAllowedOrigin string `env:"CORS_ALLOWED_ORIGIN" envDefault:"http://localhost:3000"`
}

// Argon2 はargon2idのコストパラメータ。
type Argon2 struct {
	Time      uint32 `env:"TIME" envDefault:"3"`
	MemoryKiB uint32 `env:"MEMORY_KIB" envDefault:"65536"`
	Threads   uint8  `env:"THREADS" envDefault:"2"`
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.AccessTokenTTL <= 0 {
		return nil, fmt.Errorf("ACCESS_TOKEN_TTL must be positive: %s", cfg.AccessTokenTTL)
	}
	if cfg.HashMaxConcurrent < 1 {
		cfg.HashMaxConcurrent = 1
	}
	if cfg.Argon2.Time < 1 {
		return nil, fmt.Errorf("ARGON2_TIME must be at least 1: %d", cfg.Argon2.Time)
	}
	if cfg.Argon2.Threads < 1 {
		return nil, fmt.Errorf("ARGON2_THREADS must be at least 1: %d", cfg.Argon2.Threads)
	}
	if cfg.CleanupInterval <= 0 {
		return nil, fmt.Errorf("CLEANUP_INTERVAL must be positive: %s", cfg.CleanupInterval)
	}
	if cfg.RateLimitGeneral <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT_GENERAL must be positive: %d", cfg.RateLimitGeneral)
	}
	if cfg.RateLimitAuth <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT_AUTH must be positive: %d", cfg.RateLimitAuth)
	}

	return cfg, nil
}

// SlogLevel はLOG_LEVELをslog.Levelに変換する。未知の値はInfoとする。
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
