package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/kirillkom/scadenze/internal/config"
	"github.com/kirillkom/scadenze/internal/core/ports"
	"github.com/kirillkom/scadenze/internal/core/usecase"
	"github.com/kirillkom/scadenze/internal/infrastructure/extractor/docx"
	"github.com/kirillkom/scadenze/internal/infrastructure/extractor/pdf"
	"github.com/kirillkom/scadenze/internal/infrastructure/extractor/plaintext"
	"github.com/kirillkom/scadenze/internal/infrastructure/kv/objectstore"
	"github.com/kirillkom/scadenze/internal/infrastructure/kv/sqlite"
	"github.com/kirillkom/scadenze/internal/infrastructure/llm/ollama"
	"github.com/kirillkom/scadenze/internal/infrastructure/queue/inline"
	"github.com/kirillkom/scadenze/internal/infrastructure/queue/nats"
	"github.com/kirillkom/scadenze/internal/infrastructure/repository/postgres"
	"github.com/kirillkom/scadenze/internal/infrastructure/repository/snapshot"
	"github.com/kirillkom/scadenze/internal/infrastructure/resilience"
	"github.com/kirillkom/scadenze/internal/infrastructure/storage/localfs"
	"github.com/kirillkom/scadenze/internal/infrastructure/storage/s3"
)

const snapshotPrefix = "vault"

type Options struct {
	// Observer receives retry and breaker events of outbound calls; nil disables them.
	Observer resilience.Observer
	// WithoutQueue leaves the vault without an analysis queue (read-only surfaces).
	WithoutQueue bool
}

type App struct {
	Config   config.Config
	Location *time.Location

	Repo     ports.DocumentRepository
	Storage  ports.ObjectStorage
	Queue    ports.MessageQueue
	Vault    *usecase.Vault
	Ingest   ports.DocumentIngestor
	Process  ports.DocumentProcessor
	Insights *usecase.Insights

	closers []func()
}

func New(ctx context.Context, cfg config.Config, opts Options) (*App, error) {
	location, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	app := &App{Config: cfg, Location: location}

	if err := app.initStorage(ctx); err != nil {
		app.Close()
		return nil, err
	}

	policy := resilience.DefaultPolicy()
	policy.AttemptTimeout = cfg.AnalysisTimeout
	runner := resilience.NewRunner(policy, opts.Observer)

	if !opts.WithoutQueue {
		if err := app.initQueue(runner); err != nil {
			app.Close()
			return nil, err
		}
	}

	analyzer := ollama.NewAnalyzer(ollama.New(cfg.OllamaURL, cfg.OllamaGenModel, ollama.WithRunner(runner)))

	app.Vault = usecase.NewVault(app.Repo, app.Queue)
	app.Ingest = usecase.NewIngestDocumentUseCase(
		app.Vault,
		app.Storage,
		plaintext.NewExtractor(cfg.MaxUploadBytes),
		pdf.NewExtractor(),
		docx.NewExtractor(),
	)
	app.Process = usecase.NewProcessDocumentUseCase(app.Repo, analyzer)
	app.Insights = usecase.NewInsights(app.Repo, location, cfg.DeadlineWindowDays)

	return app, nil
}

// initStorage wires the object store for uploads and the document repository for the chosen backend.
func (a *App) initStorage(ctx context.Context) error {
	cfg := a.Config

	switch cfg.StoreBackend {
	case config.StoreMinIO:
		storage, err := s3.New(ctx, s3.Config{
			Endpoint:  cfg.MinIOEndpoint,
			AccessKey: cfg.MinIOAccessKey,
			SecretKey: cfg.MinIOSecretKey,
			Bucket:    cfg.MinIOBucket,
			UseSSL:    cfg.MinIOUseSSL,
		})
		if err != nil {
			return fmt.Errorf("init minio storage: %w", err)
		}
		a.Storage = storage
	default:
		storage, err := localfs.New(cfg.StoragePath)
		if err != nil {
			return fmt.Errorf("init object storage: %w", err)
		}
		a.Storage = storage
	}

	switch cfg.StoreBackend {
	case config.StorePostgres:
		db, err := postgres.OpenDB(cfg.PostgresDSN)
		if err != nil {
			return fmt.Errorf("open postgres: %w", err)
		}
		a.addCloser(db)
		repo := postgres.NewDocumentRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
		a.Repo = repo
		return nil
	case config.StoreSQLite:
		db, err := sqlite.OpenDB(cfg.SQLitePath)
		if err != nil {
			return fmt.Errorf("open sqlite: %w", err)
		}
		a.addCloser(db)
		store := sqlite.NewStore(db)
		if err := store.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("ensure kv schema: %w", err)
		}
		a.Repo = openSnapshot(ctx, store)
		return nil
	default:
		a.Repo = openSnapshot(ctx, objectstore.NewStore(a.Storage, snapshotPrefix))
		return nil
	}
}

// openSnapshot keeps serving when the persisted blob is unreadable; the vault starts empty instead.
func openSnapshot(ctx context.Context, kv ports.KeyValueStore) *snapshot.Repository {
	repo, err := snapshot.Open(ctx, kv)
	if err != nil {
		slog.Warn("snapshot_open_degraded", "error", err)
	}
	return repo
}

func (a *App) initQueue(runner *resilience.Runner) error {
	cfg := a.Config

	switch cfg.QueueBackend {
	case config.QueueNATS:
		queue, err := nats.New(cfg.NATSURL, cfg.NATSSubject, nats.Options{Runner: runner})
		if err != nil {
			return fmt.Errorf("init message queue: %w", err)
		}
		a.closers = append(a.closers, queue.Close)
		a.Queue = queue
	default:
		a.Queue = inline.New(cfg.QueueBuffer, cfg.AnalysisWorkers)
	}
	return nil
}

func (a *App) addCloser(db *sql.DB) {
	a.closers = append(a.closers, func() {
		_ = db.Close()
	})
}

func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
