package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/avansign/avansign/internal/config"
	"github.com/avansign/avansign/internal/core/ports"
	"github.com/avansign/avansign/internal/core/usecase"
	"github.com/avansign/avansign/internal/infrastructure/pdf"
	"github.com/avansign/avansign/internal/infrastructure/provider/esign"
	"github.com/avansign/avansign/internal/infrastructure/queue/nats"
	"github.com/avansign/avansign/internal/infrastructure/repository/postgres"
	"github.com/avansign/avansign/internal/infrastructure/resilience"
	"github.com/avansign/avansign/internal/infrastructure/storage/localfs"
	"github.com/avansign/avansign/internal/infrastructure/storage/minio"
	"github.com/avansign/avansign/internal/observability/metrics"
	"golang.org/x/time/rate"
)

type App struct {
	Config  config.Config
	Metrics *metrics.Metrics

	Apps  ports.ApplicationRepository
	Audit ports.AuditLog

	Workflow ports.DocumentWorkflow
	Verifier ports.Verifier
	Seals    ports.SealManager
	Users    ports.UserDirectory

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	docs := postgres.NewDocumentRepository(db)
	apps := postgres.NewApplicationRepository(db)
	audit := postgres.NewAuditRepository(db)

	storage, err := newObjectStorage(ctx, cfg)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubjectPrefix, nats.Options{
		ResilienceExecutor: resilience.NewExecutor(resilience.DefaultConfig()),
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	m := metrics.New("avansign")

	provider := esign.New(cfg.ProviderBaseURL, cfg.ProviderUsername, cfg.ProviderPassword, esign.Options{
		Timeout:   time.Duration(cfg.ProviderTimeoutSeconds) * time.Second,
		RateLimit: rate.Limit(cfg.ProviderRateLimitRPS),
		RateBurst: cfg.ProviderRateBurst,
		Executor:  resilience.NewExecutor(resilience.DefaultConfig()),
		Observer: func(operation string, duration time.Duration, err error) {
			m.ObserveProviderCall("avansign", operation, duration, err)
		},
	})

	inspector := pdf.NewInspector()

	workflow := usecase.NewWorkflowUseCase(docs, storage, provider, audit, queue, inspector, cfg.SigningSequential)
	passthrough := usecase.NewPassthroughUseCase(provider, audit)

	return &App{
		Config:  cfg,
		Metrics: m,

		Apps:  apps,
		Audit: audit,

		Workflow: workflow,
		Verifier: passthrough,
		Seals:    passthrough,
		Users:    passthrough,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func newObjectStorage(ctx context.Context, cfg config.Config) (ports.ObjectStorage, error) {
	switch cfg.StorageBackend {
	case "minio":
		return minio.New(ctx, minio.Config{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
		})
	case "localfs":
		return localfs.New(cfg.StoragePath)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
