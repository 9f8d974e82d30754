package config

import (
	"log/slog"
	"time"

	"github.com/fastprodman/wagerpool/internal/escrow"
)

type PostgresConfig struct {
	DSN             string        `env:"PG_DSN"`
	MaxOpenConns    int           `env:"PG_MAX_OPEN_CONNS" envDefault:"20"`
	MaxIdleConns    int           `env:"PG_MAX_IDLE_CONNS" envDefault:"10"`
	ConnMaxIdleTime time.Duration `env:"PG_CONN_MAX_IDLE_TIME" envDefault:"5m"`
	ConnMaxLifetime time.Duration `env:"PG_CONN_MAX_LIFETIME" envDefault:"30m"`
}

// RentConfig prices record storage. Zeroing either field disables rent.
type RentConfig struct {
	LamportsPerByteYear uint64 `env:"RENT_LAMPORTS_PER_BYTE_YEAR" envDefault:"3480"`
	ExemptionYears      uint64 `env:"RENT_EXEMPTION_YEARS" envDefault:"2"`
}

func (rc RentConfig) Rent() escrow.Rent {
	return escrow.Rent{
		LamportsPerByteYear: rc.LamportsPerByteYear,
		ExemptionYears:      rc.ExemptionYears,
	}
}

// NATSConfig configures lifecycle event publishing. An empty URL disables it.
type NATSConfig struct {
	URL           string        `env:"NATS_URL" envDefault:""`
	SubjectPrefix string        `env:"NATS_SUBJECT_PREFIX" envDefault:"wagerpool"`
	Name          string        `env:"NATS_CLIENT_NAME" envDefault:"wagerpool-api"`
	ConnectWait   time.Duration `env:"NATS_CONNECT_WAIT" envDefault:"2s"`
}

type LogConfig struct {
	Level slog.Level `env:"APP_LOG_LEVEL" envDefault:"INFO"`
	// File, when set, mirrors JSON logs into a size-rotated file.
	File       string `env:"APP_LOG_FILE" envDefault:""`
	MaxSizeMB  int    `env:"APP_LOG_MAX_SIZE_MB" envDefault:"100"`
	MaxBackups int    `env:"APP_LOG_MAX_BACKUPS" envDefault:"3"`
	MaxAgeDays int    `env:"APP_LOG_MAX_AGE_DAYS" envDefault:"28"`
}

type APIConfig struct {
	Port uint16 `env:"APP_PORT" envDefault:"8080"`
	// AirdropEnabled mounts POST /airdrop. Never enable outside development.
	AirdropEnabled   bool          `env:"APP_AIRDROP_ENABLED" envDefault:"false"`
	SignatureMaxSkew time.Duration `env:"APP_SIGNATURE_MAX_SKEW" envDefault:"5m"`
	// RateLimitPerMin caps mutating requests per client IP; zero disables it.
	RateLimitPerMin int `env:"APP_RATE_LIMIT_PER_MIN" envDefault:"120"`
	// TrustProxyHeaders takes the client IP from X-Forwarded-For/X-Real-IP.
	// Only set it behind a proxy that overwrites those headers.
	TrustProxyHeaders bool `env:"APP_TRUST_PROXY_HEADERS" envDefault:"false"`
}
