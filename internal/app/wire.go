package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	s3blob "github.com/PatriPorrato/AgroBot/internal/blob/s3"
	"github.com/PatriPorrato/AgroBot/internal/cache/redis"
	"github.com/PatriPorrato/AgroBot/internal/chart"
	"github.com/PatriPorrato/AgroBot/internal/config"
	"github.com/PatriPorrato/AgroBot/internal/domain"
	"github.com/PatriPorrato/AgroBot/internal/notify"
	"github.com/PatriPorrato/AgroBot/internal/orchestrator"
	"github.com/PatriPorrato/AgroBot/internal/platform/bcr"
	"github.com/PatriPorrato/AgroBot/internal/platform/datosgob"
	"github.com/PatriPorrato/AgroBot/internal/platform/insumos"
	"github.com/PatriPorrato/AgroBot/internal/platform/x"
	"github.com/PatriPorrato/AgroBot/internal/report"
	"github.com/PatriPorrato/AgroBot/internal/store/postgres"
	"github.com/PatriPorrato/AgroBot/internal/store/statefile"
)

// Dependencies bundles everything a run needs. It is constructed by Wire and
// torn down by the returned cleanup function.
type Dependencies struct {
	Runner    *orchestrator.Runner
	Publisher domain.Publisher
	Notifier  *notify.Notifier

	// Archiver is nil unless ledger archival is enabled.
	Archiver *s3blob.Archiver
}

// Wire constructs the concrete implementations from the configuration and
// returns them together with a cleanup function to call on shutdown.
func Wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	timeout := cfg.HTTPTimeout.Duration

	// --- Ledger backend ---
	var ledger domain.DailyLedger
	var fileLedger *statefile.Ledger
	switch cfg.Storage.LedgerBackend {
	case "postgres":
		pgClient, err := postgres.New(ctx, postgres.ClientConfig{
			DSN:      cfg.Postgres.DSN,
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			Database: cfg.Postgres.Database,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			SSLMode:  cfg.Postgres.SSLMode,
			MaxConns: cfg.Postgres.MaxConns,
			MinConns: cfg.Postgres.MinConns,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres: %w", err)
		}
		closers = append(closers, pgClient.Close)

		store, err := postgres.NewLedgerStore(ctx, pgClient)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres ledger: %w", err)
		}
		ledger = store
	default:
		fileLedger = statefile.NewLedger(cfg.Storage.Dir)
		ledger = fileLedger
	}

	// --- Snapshot backend ---
	var snapshots domain.SnapshotCache
	switch cfg.Storage.SnapshotBackend {
	case "redis":
		redisClient, err := redis.New(ctx, redis.ClientConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: redis: %w", err)
		}
		closers = append(closers, func() { _ = redisClient.Close() })
		snapshots = redis.NewSnapshotCache(redisClient)
	default:
		snapshots = statefile.NewSnapshotCache(cfg.Storage.Dir)
	}

	// --- Publisher ---
	var publisher domain.Publisher
	if cfg.X.Configured() {
		publisher = x.NewClient(x.Credentials{
			APIKey:       cfg.X.APIKey,
			APISecret:    cfg.X.APISecret,
			AccessToken:  cfg.X.AccessToken,
			AccessSecret: cfg.X.AccessSecret,
		}, timeout)
	} else {
		logger.Warn("no X credentials configured, posts will only be logged")
		publisher = &logPublisher{logger: logger}
	}

	// --- Operator alerts ---
	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(cfg.Notify.TelegramToken, cfg.Notify.TelegramChatID, timeout))
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL, timeout))
	}
	notifier := notify.NewNotifier(senders, cfg.Notify.Events, logger)

	// --- Ledger archival ---
	var archiver *s3blob.Archiver
	if cfg.Storage.ArchiveEnabled && fileLedger != nil {
		s3Client, err := s3blob.New(ctx, s3blob.ClientConfig{
			Endpoint:       cfg.S3.Endpoint,
			Region:         cfg.S3.Region,
			Bucket:         cfg.S3.Bucket,
			AccessKey:      cfg.S3.AccessKey,
			SecretKey:      cfg.S3.SecretKey,
			ForcePathStyle: cfg.S3.ForcePathStyle,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: s3: %w", err)
		}
		archiver = s3blob.NewArchiver(s3blob.NewWriter(s3Client), fileLedger.Path())
	}

	runner := &orchestrator.Runner{
		Brand:     cfg.Brand,
		Board:     bcr.NewScraper(cfg.Board.URL, timeout),
		Rate:      datosgob.NewClient(cfg.Rate.APIURL, cfg.Rate.SerieID, timeout),
		Urea:      insumos.NewFetcher(cfg.Inputs.CSVURL, decimal.NewFromFloat(cfg.Inputs.FallbackUSD), timeout, logger),
		Ledger:    ledger,
		Snapshots: snapshots,
		Charts:    chart.NewRenderer(),
		Publisher: publisher,
		Formatter: report.NewFormatter(),
		Now:       time.Now,
		Logger:    logger.With(slog.String("component", "orchestrator")),
	}

	return &Dependencies{
		Runner:    runner,
		Publisher: publisher,
		Notifier:  notifier,
		Archiver:  archiver,
	}, cleanup, nil
}

// logPublisher stands in for the X client when no credentials are configured.
// It logs what would have been posted and succeeds.
type logPublisher struct {
	logger *slog.Logger
}

func (p *logPublisher) Publish(ctx context.Context, text string, image []byte) error {
	p.logger.Info("publish (dry run)",
		slog.String("text", text),
		slog.Int("image_bytes", len(image)),
	)
	return nil
}
