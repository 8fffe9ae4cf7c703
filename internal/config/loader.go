package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies AGROBOT_* environment variable overrides, and
// returns the final Config. A missing file is not an error; the bot runs fine
// on defaults plus environment. The returned Config has NOT been validated.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("config: decode %s: %w", path, err)
			}
		}
	}

	// Load .env if present, silently ignore if missing.
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known AGROBOT_* environment variables and
// overwrites the corresponding Config fields when a variable is set. This
// lets operators inject secrets at deploy time without touching the TOML
// file.
func applyEnvOverrides(cfg *Config) {
	// ── Top-level ──
	setStr(&cfg.Brand, "AGROBOT_BRAND")
	setStr(&cfg.Mode, "AGROBOT_MODE")
	setStr(&cfg.Mode, "RUN_MODE") // compatibility alias for the cron jobs
	setStr(&cfg.LogLevel, "AGROBOT_LOG_LEVEL")
	setDuration(&cfg.HTTPTimeout, "AGROBOT_HTTP_TIMEOUT")

	// ── Sources ──
	setStr(&cfg.Board.URL, "AGROBOT_BOARD_URL")
	setStr(&cfg.Rate.APIURL, "AGROBOT_RATE_API_URL")
	setStr(&cfg.Rate.SerieID, "AGROBOT_RATE_SERIE_ID")
	setStr(&cfg.Inputs.CSVURL, "AGROBOT_INPUTS_CSV_URL")
	setFloat64(&cfg.Inputs.FallbackUSD, "AGROBOT_INPUTS_FALLBACK_USD")

	// ── Storage ──
	setStr(&cfg.Storage.Dir, "AGROBOT_STORAGE_DIR")
	setStr(&cfg.Storage.LedgerBackend, "AGROBOT_STORAGE_LEDGER_BACKEND")
	setStr(&cfg.Storage.SnapshotBackend, "AGROBOT_STORAGE_SNAPSHOT_BACKEND")
	setBool(&cfg.Storage.ArchiveEnabled, "AGROBOT_STORAGE_ARCHIVE_ENABLED")

	// ── Postgres ──
	setStr(&cfg.Postgres.DSN, "AGROBOT_POSTGRES_DSN")
	setStr(&cfg.Postgres.Host, "AGROBOT_POSTGRES_HOST")
	setInt(&cfg.Postgres.Port, "AGROBOT_POSTGRES_PORT")
	setStr(&cfg.Postgres.Database, "AGROBOT_POSTGRES_DATABASE")
	setStr(&cfg.Postgres.User, "AGROBOT_POSTGRES_USER")
	setStr(&cfg.Postgres.Password, "AGROBOT_POSTGRES_PASSWORD")
	setStr(&cfg.Postgres.SSLMode, "AGROBOT_POSTGRES_SSLMODE")
	setInt(&cfg.Postgres.MaxConns, "AGROBOT_POSTGRES_MAX_CONNS")
	setInt(&cfg.Postgres.MinConns, "AGROBOT_POSTGRES_MIN_CONNS")

	// ── Redis ──
	setStr(&cfg.Redis.Addr, "AGROBOT_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "AGROBOT_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "AGROBOT_REDIS_DB")

	// ── S3 ──
	setStr(&cfg.S3.Endpoint, "AGROBOT_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "AGROBOT_S3_REGION")
	setStr(&cfg.S3.Bucket, "AGROBOT_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "AGROBOT_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "AGROBOT_S3_SECRET_KEY")
	setBool(&cfg.S3.ForcePathStyle, "AGROBOT_S3_FORCE_PATH_STYLE")

	// ── X ──
	setStr(&cfg.X.APIKey, "AGROBOT_X_API_KEY")
	setStr(&cfg.X.APISecret, "AGROBOT_X_API_SECRET")
	setStr(&cfg.X.AccessToken, "AGROBOT_X_ACCESS_TOKEN")
	setStr(&cfg.X.AccessSecret, "AGROBOT_X_ACCESS_SECRET")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "AGROBOT_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "AGROBOT_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "AGROBOT_NOTIFY_DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Events, "AGROBOT_NOTIFY_EVENTS")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
