// Package config defines the agro bot configuration and its validation.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration. Fields are populated from a TOML file and
// then optionally overridden by AGROBOT_* environment variables.
type Config struct {
	// Brand is the name stamped on chart titles.
	Brand string `toml:"brand"`

	// Mode is an optional run-mode override (MEDIODIA, CIERRE, SEMANA).
	// Empty means infer from the clock.
	Mode string `toml:"mode"`

	LogLevel string `toml:"log_level"`

	// HTTPTimeout applies to all outbound HTTP clients.
	HTTPTimeout duration `toml:"http_timeout"`

	Board   BoardConfig   `toml:"board"`
	Rate    RateConfig    `toml:"rate"`
	Inputs  InputsConfig  `toml:"inputs"`
	Storage StorageConfig `toml:"storage"`

	Postgres PostgresConfig `toml:"postgres"`
	Redis    RedisConfig    `toml:"redis"`
	S3       S3Config       `toml:"s3"`
	X        XConfig        `toml:"x"`
	Notify   NotifyConfig   `toml:"notify"`
}

// BoardConfig points at the BCR pizarra page.
type BoardConfig struct {
	URL string `toml:"url"`
}

// RateConfig points at the datos.gob.ar time-series API and the BNA seller
// rate series.
type RateConfig struct {
	APIURL  string `toml:"api_url"`
	SerieID string `toml:"serie_id"`
}

// InputsConfig configures the urea reference price sources.
type InputsConfig struct {
	// CSVURL is an optional published CSV of input prices. Empty skips it.
	CSVURL string `toml:"csv_url"`

	// FallbackUSD overrides the built-in urea constant when positive.
	FallbackUSD float64 `toml:"fallback_usd"`
}

// StorageConfig selects where the ledger and the midday snapshot live.
type StorageConfig struct {
	// Dir holds the state files (daily.csv, mediodia.json).
	Dir string `toml:"dir"`

	// LedgerBackend is "file" or "postgres".
	LedgerBackend string `toml:"ledger_backend"`

	// SnapshotBackend is "file" or "redis".
	SnapshotBackend string `toml:"snapshot_backend"`

	// ArchiveEnabled uploads the ledger CSV to S3 after daily runs.
	ArchiveEnabled bool `toml:"archive_enabled"`
}

// PostgresConfig holds PostgreSQL connection parameters for the optional
// ledger backend.
type PostgresConfig struct {
	DSN      string `toml:"dsn"`
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	Database string `toml:"database"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	SSLMode  string `toml:"ssl_mode"`
	MaxConns int    `toml:"max_conns"`
	MinConns int    `toml:"min_conns"`
}

// RedisConfig holds Redis connection parameters for the optional snapshot
// backend.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// S3Config holds S3-compatible object storage parameters for ledger archival.
type S3Config struct {
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	ForcePathStyle bool   `toml:"force_path_style"`
}

// XConfig holds the OAuth1 user-context credentials for posting. When all
// four are empty the bot logs the text instead of posting.
type XConfig struct {
	APIKey       string `toml:"api_key"`
	APISecret    string `toml:"api_secret"`
	AccessToken  string `toml:"access_token"`
	AccessSecret string `toml:"access_secret"`
}

// Configured reports whether all four credentials are present.
func (x XConfig) Configured() bool {
	return x.APIKey != "" && x.APISecret != "" && x.AccessToken != "" && x.AccessSecret != ""
}

// NotifyConfig holds operator alert channel credentials.
type NotifyConfig struct {
	TelegramToken     string   `toml:"telegram_token"`
	TelegramChatID    string   `toml:"telegram_chat_id"`
	DiscordWebhookURL string   `toml:"discord_webhook_url"`
	Events            []string `toml:"events"`
}

// duration wraps time.Duration so TOML can decode strings like "30s".
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a Config with the live source endpoints and the state-file
// backends.
func Defaults() Config {
	return Config{
		Brand:       "APEX Agro",
		LogLevel:    "info",
		HTTPTimeout: duration{30 * time.Second},
		Board: BoardConfig{
			URL: "https://www.cac.bcr.com.ar/es/precios-de-pizarra",
		},
		Rate: RateConfig{
			APIURL:  "https://apis.datos.gob.ar/series/api/series",
			SerieID: "168.1_T_CAMBIOR_D_0_0_26",
		},
		Storage: StorageConfig{
			Dir:             "state",
			LedgerBackend:   "file",
			SnapshotBackend: "file",
		},
		Postgres: PostgresConfig{
			Host:     "localhost",
			Port:     5432,
			Database: "agrobot",
			User:     "agrobot",
			SSLMode:  "disable",
			MaxConns: 4,
			MinConns: 1,
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		S3: S3Config{
			Region:         "us-east-1",
			ForcePathStyle: true,
		},
		Notify: NotifyConfig{
			Events: []string{"run_failed", "publish_failed"},
		},
	}
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validModes enumerates the accepted values for Config.Mode. Empty means
// infer from the clock.
var validModes = map[string]bool{
	"":         true,
	"MEDIODIA": true,
	"CIERRE":   true,
	"SEMANA":   true,
}

// Validate checks the configuration and returns a combined error describing
// every problem found.
func (c *Config) Validate() error {
	var errs []string

	if !validModes[c.Mode] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: MEDIODIA, CIERRE, SEMANA, or empty to infer)", c.Mode))
	}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}
	if c.HTTPTimeout.Duration <= 0 {
		errs = append(errs, "http_timeout must be positive")
	}

	if c.Board.URL == "" {
		errs = append(errs, "board: url must not be empty")
	}
	if c.Rate.APIURL == "" {
		errs = append(errs, "rate: api_url must not be empty")
	}
	if c.Rate.SerieID == "" {
		errs = append(errs, "rate: serie_id must not be empty")
	}
	if c.Inputs.FallbackUSD < 0 {
		errs = append(errs, "inputs: fallback_usd must not be negative")
	}

	switch c.Storage.LedgerBackend {
	case "file":
		if c.Storage.Dir == "" {
			errs = append(errs, "storage: dir must not be empty for the file ledger backend")
		}
	case "postgres":
		if strings.TrimSpace(c.Postgres.DSN) == "" {
			if c.Postgres.Host == "" {
				errs = append(errs, "postgres: host must not be empty (or set postgres.dsn)")
			}
			if c.Postgres.Port <= 0 || c.Postgres.Port > 65535 {
				errs = append(errs, fmt.Sprintf("postgres: port must be 1-65535, got %d", c.Postgres.Port))
			}
			if c.Postgres.Database == "" {
				errs = append(errs, "postgres: database must not be empty")
			}
		}
	default:
		errs = append(errs, fmt.Sprintf("storage: unknown ledger_backend %q (valid: file, postgres)", c.Storage.LedgerBackend))
	}

	switch c.Storage.SnapshotBackend {
	case "file":
		if c.Storage.Dir == "" {
			errs = append(errs, "storage: dir must not be empty for the file snapshot backend")
		}
	case "redis":
		if c.Redis.Addr == "" {
			errs = append(errs, "redis: addr must not be empty")
		}
	default:
		errs = append(errs, fmt.Sprintf("storage: unknown snapshot_backend %q (valid: file, redis)", c.Storage.SnapshotBackend))
	}

	if c.Storage.ArchiveEnabled {
		if c.Storage.LedgerBackend != "file" {
			errs = append(errs, "storage: archive_enabled requires the file ledger backend")
		}
		if c.S3.Bucket == "" {
			errs = append(errs, "s3: bucket must not be empty when archival is enabled")
		}
		if c.S3.Region == "" {
			errs = append(errs, "s3: region must not be empty when archival is enabled")
		}
	}

	// X credentials are all-or-nothing; a partial set is a config mistake.
	set := 0
	for _, v := range []string{c.X.APIKey, c.X.APISecret, c.X.AccessToken, c.X.AccessSecret} {
		if v != "" {
			set++
		}
	}
	if set != 0 && set != 4 {
		errs = append(errs, "x: api_key, api_secret, access_token, and access_secret must all be set together")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
