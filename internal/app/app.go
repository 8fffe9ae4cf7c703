// Package app owns the process-level run: it resolves the mode, wires the
// dependencies, executes the orchestrator once, and maps the outcome to an
// exit code. Failed runs trigger a best-effort apology publish and an
// operator alert; the process never panics on upstream failure.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/PatriPorrato/AgroBot/internal/config"
	"github.com/PatriPorrato/AgroBot/internal/domain"
	"github.com/PatriPorrato/AgroBot/internal/notify"
	"github.com/PatriPorrato/AgroBot/internal/orchestrator"
)

// App is the root application object.
type App struct {
	cfg    *config.Config
	logger *slog.Logger
}

// New creates an App from validated configuration.
func New(cfg *config.Config, logger *slog.Logger) *App {
	return &App{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "app")),
	}
}

// Run executes one scheduled run and returns the process exit code: 0 for
// published runs, weekend skips, and no-data publishes; 1 for configuration
// errors, a failed required fetch, and a failed publish whose apology
// fallback also failed.
func (a *App) Run(ctx context.Context) int {
	runID := uuid.NewString()
	logger := a.logger.With(slog.String("run_id", runID))

	mode, err := a.resolveMode()
	if err != nil {
		logger.Error("invalid run mode", slog.String("error", err.Error()))
		return 1
	}
	logger.Info("starting run", slog.String("mode", string(mode)))

	deps, cleanup, err := Wire(ctx, a.cfg, logger)
	if err != nil {
		logger.Error("wiring failed", slog.String("error", err.Error()))
		return 1
	}
	defer cleanup()

	res, err := deps.Runner.Run(ctx, mode)
	if err != nil {
		return a.handleFailure(ctx, logger, deps, mode, err)
	}

	logger.Info("run finished",
		slog.String("mode", string(mode)),
		slog.Bool("published", res.Published),
		slog.Bool("skipped_weekend", res.SkippedWeekend),
		slog.Bool("no_data", res.NoData),
	)

	if deps.Archiver != nil && res.Published && mode != orchestrator.ModeWeekly {
		if err := deps.Archiver.ArchiveLedger(ctx, time.Now()); err != nil {
			logger.Warn("ledger archive failed", slog.String("error", err.Error()))
		}
	}
	return 0
}

// resolveMode applies the configured override or infers the mode from the
// clock.
func (a *App) resolveMode() (orchestrator.Mode, error) {
	if a.cfg.Mode != "" {
		return orchestrator.ParseMode(a.cfg.Mode)
	}
	return orchestrator.InferMode(time.Now()), nil
}

// handleFailure publishes the apology fallback once and alerts the operator.
// A publish failure whose fallback lands still counts as a clean exit; the
// next scheduled run is the retry mechanism.
func (a *App) handleFailure(ctx context.Context, logger *slog.Logger, deps *Dependencies, mode orchestrator.Mode, runErr error) int {
	logger.Error("run failed",
		slog.String("mode", string(mode)),
		slog.String("error", runErr.Error()),
	)
	deps.Notifier.Notify(ctx, notify.EventRunFailed,
		"Corrida fallida",
		fmt.Sprintf("modo %s: %v", mode, runErr),
	)

	code := 1
	if errors.Is(runErr, domain.ErrPublishFailed) {
		code = 0
	}

	apology := deps.Runner.Formatter.Apology()
	if err := deps.Publisher.Publish(ctx, apology, nil); err != nil {
		logger.Error("fallback publish failed", slog.String("error", err.Error()))
		deps.Notifier.Notify(ctx, notify.EventPublishFailed,
			"Publicación de respaldo fallida",
			err.Error(),
		)
		code = 1
	}
	return code
}
