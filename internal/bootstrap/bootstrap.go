// internal/bootstrap/bootstrap.go
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"lex-build-workers/internal/common/artifacts"
	"lex-build-workers/internal/common/aws"
	"lex-build-workers/internal/common/config"
	"lex-build-workers/internal/common/database"
	commonhttp "lex-build-workers/internal/common/http"
	"lex-build-workers/internal/common/lex"
	"lex-build-workers/internal/common/logger"
	"lex-build-workers/internal/common/oracle"
	"lex-build-workers/internal/mutator"
	botbuild "lex-build-workers/internal/workers/bot-build"
	"lex-build-workers/pkg/registry"
)

// RetryWithBackoff attempts to execute a function with exponential backoff
func RetryWithBackoff(ctx context.Context, operation func() error, maxRetries int, initialDelay time.Duration, log logger.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName), map[string]interface{}{
				"error":       err.Error(),
				"attempt":     i + 1,
				"maxRetries":  maxRetries,
				"nextRetryIn": delay.String(),
			})
			select {
			case <-ctx.Done():
				return fmt.Errorf("%s cancelled: %w", operationName, ctx.Err())
			case <-time.After(delay):
			}
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

// App is the wired set of clients and stage handlers.
type App struct {
	Config   *config.Config
	Workers  *botbuild.Workers
	Tracker  *artifacts.Tracker
	Registry *registry.ResourceRegistry

	closers []func() error
	log     logger.Logger
}

// Close releases connection pools in reverse order of creation.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.Error("Error closing client", map[string]interface{}{"error": err.Error()})
		}
	}
}

// New builds every client the workers need from cfg. Optional backends
// (Redis, Elasticsearch, SNS, SES) are only created when enabled.
func New(ctx context.Context, cfg *config.Config, log logger.Logger) (*App, error) {
	app := &App{Config: cfg, log: log}

	awsCfg, err := aws.LoadConfig(ctx, cfg.AWS.Region)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	var repo artifacts.Repository
	err = RetryWithBackoff(ctx, func() error {
		r, closer, err := artifacts.NewRepository(ctx, cfg, awsCfg)
		if err != nil {
			return err
		}
		repo = r
		app.closers = append(app.closers, closer)
		return nil
	}, 5, 2*time.Second, log, "Artifact repository connection")
	if err != nil {
		return nil, err
	}
	log.Info("Artifact repository ready", map[string]interface{}{"backend": cfg.Repository.Backend})

	reg, err := registry.LoadRegistry(cfg.Registry.Path)
	if err != nil {
		return nil, fmt.Errorf("load resource registry: %w", err)
	}
	app.Registry = reg

	model, err := oracle.NewModel(ctx, cfg.Oracle, awsCfg)
	if err != nil {
		return nil, fmt.Errorf("init oracle model: %w", err)
	}
	oc := oracle.NewClient(model, reg, log)

	platform := lex.NewFromConfig(awsCfg)

	opts := []mutator.Option{mutator.WithRegistry(reg)}
	if cfg.Build.MaxRepairAttempts > 0 {
		opts = append(opts, mutator.WithMaxAttempts(cfg.Build.MaxRepairAttempts))
	}
	if cfg.Database.Redis.Enabled {
		rdb, err := database.NewRedis(ctx, cfg.Database.Redis)
		if err != nil {
			app.Close()
			return nil, err
		}
		app.closers = append(app.closers, rdb.Close)
		opts = append(opts, mutator.WithTranscripts(mutator.NewRedisTranscriptStore(rdb, database.TranscriptTTL(cfg.Database.Redis))))
		log.Info("Redis transcript store enabled", nil)
	}

	app.Tracker = artifacts.NewTracker(repo, log)
	deps := botbuild.Deps{
		Config:     cfg,
		Tracker:    app.Tracker,
		Platform:   platform,
		Store:      aws.NewS3StoreFromConfig(awsCfg),
		Fixer:      oc,
		Mutator:    mutator.New(platform, oc, log, opts...),
		Downloader: commonhttp.NewClient(config.GetDuration(cfg.Build.ExportTimeout)),
		Logger:     log,
	}

	// Interface fields stay nil unless enabled so handlers can test for them.
	if cfg.Database.Elasticsearch.Enabled {
		es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			app.Close()
			return nil, err
		}
		deps.Auditor = es
		log.Info("Elasticsearch repair audit enabled", nil)
	}
	if cfg.AWS.SNS.Enabled {
		deps.Alerter = aws.NewSNSClientFromConfig(awsCfg)
	}
	if cfg.AWS.SES.Enabled {
		deps.Mailer = aws.NewSESClientFromConfig(awsCfg)
	}

	app.Workers = botbuild.New(deps)
	return app, nil
}
