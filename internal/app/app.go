// Package app wires the projection store, DuckDB scanner, services and HTTP
// router together.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	"duck-projection/internal/api"
	"duck-projection/internal/config"
	"duck-projection/internal/db/repository"
	"duck-projection/internal/engine"
	"duck-projection/internal/middleware"
	"duck-projection/internal/service/maintenance"
	"duck-projection/internal/service/projection"
)

// s3SecretName is the DuckDB secret created from the S3 settings.
const s3SecretName = "projection_s3"

// Deps holds the external dependencies that main() must provide:
// database handles, config and the logger.
type Deps struct {
	Cfg     *config.Config
	DuckDB  *sql.DB
	WriteDB *sql.DB
	ReadDB  *sql.DB
	Logger  *slog.Logger
}

// App holds the fully-wired application.
type App struct {
	Projections *projection.Service
	Scanner     *engine.Scanner // nil when scanning is disabled
	Handler     *api.Handler
	Maintenance *maintenance.Scheduler // nil when disabled

	cfg    *config.Config
	logger *slog.Logger
}

// New wires repositories, services and handlers from the provided deps.
func New(ctx context.Context, deps Deps) (*App, error) {
	cfg := deps.Cfg
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	repo := repository.NewProjectionRepo(deps.WriteDB, deps.ReadDB)

	var (
		scanner *engine.Scanner
		svc     *projection.Service
	)
	if cfg.ScanEnabled && deps.DuckDB != nil {
		if cfg.HasS3Config() {
			err := engine.CreateS3Secret(ctx, deps.DuckDB, s3SecretName, engine.S3Config{
				KeyID:    cfg.S3KeyID,
				Secret:   cfg.S3Secret,
				Endpoint: cfg.S3Endpoint,
				Region:   cfg.S3Region,
				URLStyle: cfg.S3URLStyle,
			})
			if err != nil {
				return nil, fmt.Errorf("configure s3: %w", err)
			}
			logger.Info("S3 secret created", "name", s3SecretName, "endpoint", cfg.S3Endpoint)
		}
		policy, err := engine.NewSourcePolicy(cfg.SourceRoots)
		if err != nil {
			return nil, fmt.Errorf("source roots: %w", err)
		}
		if err := policy.Apply(ctx, deps.DuckDB); err != nil {
			return nil, err
		}
		if roots := policy.Roots(); len(roots) > 0 {
			logger.Info("file sources restricted", "roots", roots)
		} else {
			logger.Info("file sources disabled, set SOURCE_ROOTS to allow them")
		}
		scanner = engine.NewScanner(deps.DuckDB, logger).Restrict(policy)
		svc = projection.NewService(repo, scanner, logger)
	} else {
		// A typed nil *Scanner would not compare equal to nil inside the service.
		svc = projection.NewService(repo, nil, logger)
		logger.Info("scanning disabled")
	}

	if !cfg.IsProduction() {
		if err := seedProjections(ctx, svc); err != nil {
			logger.Warn("seed projections failed", "error", err)
		}
	}

	var maint *maintenance.Scheduler
	if cfg.MaintenanceEnabled() {
		maint = maintenance.NewScheduler(cfg.MaintenanceSchedule, logger,
			maintenance.CheckpointTask(deps.WriteDB),
			maintenance.OptimizeTask(deps.WriteDB),
		)
	}

	return &App{
		Projections: svc,
		Scanner:     scanner,
		Handler:     api.NewHandler(svc, logger),
		Maintenance: maint,
		cfg:         cfg,
		logger:      logger,
	}, nil
}

// Router builds the HTTP handler. ctx bounds background middleware work.
func (a *App) Router(ctx context.Context) http.Handler {
	return api.NewRouter(ctx, a.Handler, api.RouterConfig{
		RateLimit: middleware.RateLimitConfig{
			RequestsPerSecond: a.cfg.RateLimitRPS,
			Burst:             a.cfg.RateLimitBurst,
		},
		CORSAllowedOrigins: a.cfg.CORSAllowedOrigins,
		Logger:             a.logger,
	})
}
