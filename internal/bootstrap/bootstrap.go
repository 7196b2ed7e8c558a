package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kirillkom/certextract/internal/config"
	"github.com/kirillkom/certextract/internal/core/ports"
	"github.com/kirillkom/certextract/internal/core/usecase"
	"github.com/kirillkom/certextract/internal/infrastructure/decoder/pdftext"
	"github.com/kirillkom/certextract/internal/infrastructure/decoder/plaintext"
	"github.com/kirillkom/certextract/internal/infrastructure/queue/nats"
	"github.com/kirillkom/certextract/internal/infrastructure/repository/postgres"
	"github.com/kirillkom/certextract/internal/infrastructure/resilience"
	"github.com/kirillkom/certextract/internal/infrastructure/spreadsheet/xlsx"
	"github.com/kirillkom/certextract/internal/infrastructure/storage/localfs"
	"github.com/kirillkom/certextract/internal/observability/metrics"
)

type App struct {
	Config  config.Config
	Logger  *slog.Logger
	Metrics *metrics.HTTPServerMetrics
	Service string

	Pipeline        *usecase.PipelineUseCase
	PipelineMetrics *metrics.PipelineMetrics
	Converter       *usecase.ConvertUseCase

	// Set only when persistence is enabled.
	Repo      ports.DocumentRepository
	Queue     ports.MessageQueue
	ImportUC  ports.SpreadsheetImporter
	IngestUC  ports.DocumentIngestor
	ProcessUC ports.DocumentProcessor

	closeFn []func()
}

// New wires the extraction engine. Postgres and NATS are only dialed when
// cfg.PersistenceEnabled is set; without them the app still converts
// batches to spreadsheets.
func New(ctx context.Context, cfg config.Config, service string, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	app := &App{
		Config:  cfg,
		Logger:  logger,
		Service: service,
		Metrics: metrics.NewHTTPServerMetrics(service),
	}
	app.PipelineMetrics = metrics.NewPipelineMetrics(service, app.Metrics.Registry())

	decoder := pdftext.NewDecoder(pdftext.Options{
		Preflight: true,
		Fallback:  plaintext.NewDecoder(),
		Logger:    logger,
	})
	app.Pipeline = usecase.NewPipelineUseCase(decoder, logger, cfg.ValidationStrictFormats)

	var runner usecase.Runner = usecase.InlineRunner{}
	if cfg.BatchIsolation {
		runner = usecase.NewIsolatedRunner(cfg.DocumentTimeout, logger)
	}
	batch := usecase.NewBatchUseCase(app.Pipeline, cfg.BatchConcurrency, logger,
		usecase.WithRunner(runner),
		usecase.WithObserver(app.PipelineMetrics),
	)

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}
	app.Converter = usecase.NewConvertUseCase(batch, xlsx.NewWriter(), storage, logger)

	if !cfg.PersistenceEnabled {
		logger.Info("persistence_disabled")
		return app, nil
	}

	if err := app.wirePersistence(ctx, storage); err != nil {
		app.Close()
		return nil, err
	}
	return app, nil
}

func (a *App) wirePersistence(ctx context.Context, storage ports.ObjectStorage) error {
	cfg := a.Config

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return fmt.Errorf("open postgres: %w", err)
	}
	a.closeFn = append(a.closeFn, func() { _ = db.Close() })

	dbExecutor := a.newExecutor()
	repo := postgres.NewDocumentRepository(db, dbExecutor)
	records := postgres.NewRecordRepository(db, dbExecutor, a.Logger)
	if err := ensureSchemas(ctx, repo, records); err != nil {
		return err
	}

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: a.newExecutor(),
		Logger:             a.Logger,
	})
	if err != nil {
		return fmt.Errorf("init message queue: %w", err)
	}
	a.closeFn = append(a.closeFn, queue.Close)

	a.Repo = repo
	a.Queue = queue
	a.ImportUC = usecase.NewImportUseCase(xlsx.NewReader(), records, a.Logger)
	a.IngestUC = usecase.NewIngestDocumentUseCase(repo, storage, queue)
	a.ProcessUC = usecase.NewProcessDocumentUseCase(repo, storage, a.Pipeline, records, a.Logger)
	return nil
}

func (a *App) newExecutor() *resilience.Executor {
	rcfg := resilience.DefaultConfig()
	rcfg.Logger = a.Logger
	rcfg.OnStateChange = a.PipelineMetrics.BreakerStateChanged
	return resilience.NewExecutor(rcfg)
}

func ensureSchemas(ctx context.Context, repo *postgres.DocumentRepository, records *postgres.RecordRepository) error {
	if err := repo.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensure document schema: %w", err)
	}
	if err := records.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensure record schema: %w", err)
	}
	return nil
}

func (a *App) Close() {
	for i := len(a.closeFn) - 1; i >= 0; i-- {
		a.closeFn[i]()
	}
	a.closeFn = nil
}
