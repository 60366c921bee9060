package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/kaizen-portal-api/internal/handler"
	"github.com/noah-isme/kaizen-portal-api/internal/migrations"
	"github.com/noah-isme/kaizen-portal-api/internal/models"
	"github.com/noah-isme/kaizen-portal-api/internal/repository"
	"github.com/noah-isme/kaizen-portal-api/internal/service"
	"github.com/noah-isme/kaizen-portal-api/pkg/cache"
	"github.com/noah-isme/kaizen-portal-api/pkg/config"
	"github.com/noah-isme/kaizen-portal-api/pkg/database"
	"github.com/noah-isme/kaizen-portal-api/pkg/jobs"
	"github.com/noah-isme/kaizen-portal-api/pkg/storage"
)

type submissionStore interface {
	Create(ctx context.Context, sub *models.Submission) error
	GetByID(ctx context.Context, id string) (*models.Submission, error)
	List(ctx context.Context) ([]models.Submission, error)
	Update(ctx context.Context, sub *models.Submission) error
	Decide(ctx context.Context, id string, decision models.SubmissionDecision) error
	SetImage(ctx context.Context, id, ref string) error
}

type reportStore interface {
	Create(ctx context.Context, job *models.ReportJob) error
	GetByID(ctx context.Context, id string) (*models.ReportJob, error)
	Update(ctx context.Context, id string, params repository.UpdateReportJobParams) error
	ListQueued(ctx context.Context, limit int) ([]models.ReportJob, error)
	ListFinishedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.ReportJob, error)
}

// application holds every wired service the router needs.
type application struct {
	cfg         *config.Config
	logger      *zap.Logger
	metrics     *service.MetricsService
	catalog     *service.CatalogService
	auth        *service.AuthService
	submissions *service.SubmissionService
	dashboard   *service.DashboardService
	exports     *service.ExportService
	reports     *service.ReportService
	checks      map[string]handler.ReadinessCheck
	closers     []func()
}

// Close releases queues and connections in reverse order of creation.
func (a *application) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func buildApplication(ctx context.Context, cfg *config.Config, logr *zap.Logger) (*application, error) {
	app := &application{
		cfg:     cfg,
		logger:  logr,
		metrics: service.NewMetricsService(),
		catalog: service.NewCatalogService(),
		checks:  make(map[string]handler.ReadinessCheck),
	}

	submissionRepo, reportRepo, err := app.openStores(ctx)
	if err != nil {
		app.Close()
		return nil, err
	}

	images, err := openImageStore(ctx, cfg.Images)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("image store: %w", err)
	}

	cacheSvc := app.openCache(ctx)

	app.auth = service.NewAuthService(app.catalog, logr.Named("auth"), service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})

	app.submissions = service.NewSubmissionService(
		submissionRepo,
		app.catalog,
		service.NewSubmissionValidator(nil),
		service.NewIdentifierService(),
		service.NewLifecyclePolicy(cfg.Kaizen.EditWindow),
		service.SubmissionConfig{
			RestampApprovalLevel: cfg.Kaizen.ApprovalLevelMode == config.ApprovalLevelRecompute,
			ImageMaxBytes:        cfg.Images.MaxBytes,
		},
		logr.Named("submissions"),
		service.WithImageStore(images),
		service.WithSubmissionCache(cacheSvc),
		service.WithSubmissionMetrics(app.metrics),
	)

	if cfg.Kaizen.SeedDemo {
		seedDemo(ctx, submissionRepo, logr)
	}

	aggregation := service.NewAggregationEngine(app.catalog)
	app.dashboard = service.NewDashboardService(service.DashboardServiceParams{
		Submissions: app.submissions,
		Aggregation: aggregation,
		Cache:       cacheSvc,
		Logger:      logr.Named("dashboard"),
		Config: service.DashboardServiceConfig{
			CacheTTL:       cfg.Dashboard.CacheTTL,
			TrendMonths:    cfg.Kaizen.TrendMonths,
			TopDepartments: cfg.Kaizen.TopDepartments,
			TopPlants:      cfg.Kaizen.TopPlants,
		},
	})

	exportFiles, err := storage.NewLocalStorage(cfg.Reports.StorageDir)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("report storage: %w", err)
	}
	app.exports = service.NewExportService(
		app.submissions,
		aggregation,
		exportFiles,
		storage.NewSignedURLSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL),
		service.ExportConfig{APIPrefix: cfg.APIPrefix, ResultTTL: cfg.Reports.SignedURLTTL},
		logr.Named("export"),
		service.ExportRenderers{},
	)

	if cfg.Reports.Enabled {
		app.startReports(ctx, reportRepo)
	}
	return app, nil
}

func (a *application) openStores(ctx context.Context) (submissionStore, reportStore, error) {
	if a.cfg.Storage.Driver != config.StoragePostgres {
		a.logger.Info("using in-memory submission store")
		return repository.NewMemorySubmissionRepository(), repository.NewMemoryReportRepository(), nil
	}

	db, err := database.NewPostgres(ctx, a.cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("connect postgres: %w", err)
	}
	a.closers = append(a.closers, func() { _ = db.Close() })
	a.checks["database"] = func(ctx context.Context) error { return db.PingContext(ctx) }

	if a.cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, db.DB, migrations.Migrations); err != nil {
			return nil, nil, err
		}
		a.logger.Info("database migrations applied")
	}
	return repository.NewSubmissionRepository(db), repository.NewReportRepository(db), nil
}

// openCache returns a disabled CacheService when Redis is off or unreachable.
func (a *application) openCache(ctx context.Context) *service.CacheService {
	if !a.cfg.Dashboard.CacheEnabled {
		return service.NewCacheService(nil, a.metrics, a.cfg.Dashboard.CacheTTL, a.logger, false)
	}
	client, err := cache.NewRedis(ctx, a.cfg.Redis)
	if err != nil {
		a.logger.Warn("redis unavailable, dashboard cache disabled", zap.Error(err))
		return service.NewCacheService(nil, a.metrics, a.cfg.Dashboard.CacheTTL, a.logger, false)
	}
	a.closers = append(a.closers, func() { _ = client.Close() })
	a.checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
	repo := repository.NewCacheRepository(client, a.logger.Named("cache"))
	return service.NewCacheService(repo, a.metrics, a.cfg.Dashboard.CacheTTL, a.logger.Named("cache"), true)
}

func (a *application) startReports(ctx context.Context, repo reportStore) {
	worker := service.NewReportWorker(repo, a.exports, a.metrics, a.cfg.Reports.WorkerRetries, a.logger.Named("report_worker"))
	queue := jobs.NewQueue("reports", worker.Handle, jobs.QueueConfig{
		Workers:    a.cfg.Reports.WorkerConcurrency,
		MaxRetries: a.cfg.Reports.WorkerRetries,
		RetryDelay: 2 * time.Second,
		Logger:     a.logger.Named("queue"),
	})
	queue.Start(ctx)
	a.closers = append(a.closers, queue.Stop)

	a.reports = service.NewReportService(repo, a.submissions, queue, a.exports, a.logger.Named("reports"), service.ReportServiceConfig{
		ResultTTL:       a.cfg.Reports.SignedURLTTL,
		CleanupInterval: a.cfg.Reports.CleanupInterval,
	})
	a.reports.RecoverPendingJobs(ctx)
	a.reports.StartCleanup(ctx)
}

func openImageStore(ctx context.Context, cfg config.ImagesConfig) (storage.ObjectStore, error) {
	if cfg.Store == config.ImageStoreS3 {
		return storage.NewS3Storage(ctx, storage.S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
	}
	return storage.NewLocalStorage(cfg.StorageDir)
}

func seedDemo(ctx context.Context, repo submissionStore, logr *zap.Logger) {
	seeded := 0
	for _, sub := range service.DemoSubmissions(time.Now()) {
		sub := sub
		if err := repo.Create(ctx, &sub); err != nil {
			logr.Warn("skipping demo submission", zap.String("id", sub.ID), zap.Error(err))
			continue
		}
		seeded++
	}
	logr.Info("demo submissions seeded", zap.Int("count", seeded))
}
