package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	electionlifecycle "ballotcore/contexts/election-core/election-lifecycle"
	electionpostgres "ballotcore/contexts/election-core/election-lifecycle/adapters/postgres"
	identitychallenge "ballotcore/contexts/election-core/identity-challenge"
	identitynotifier "ballotcore/contexts/election-core/identity-challenge/adapters/notifier"
	identitypostgres "ballotcore/contexts/election-core/identity-challenge/adapters/postgres"
	"ballotcore/contexts/election-core/identity-challenge/adapters/registrydirectory"
	identityworkers "ballotcore/contexts/election-core/identity-challenge/application/workers"
	turnoutreports "ballotcore/contexts/election-core/turnout-reports"
	reportspostgres "ballotcore/contexts/election-core/turnout-reports/adapters/postgres"
	voteledger "ballotcore/contexts/election-core/vote-ledger"
	votenotifier "ballotcore/contexts/election-core/vote-ledger/adapters/notifier"
	votepostgres "ballotcore/contexts/election-core/vote-ledger/adapters/postgres"
	voterregistry "ballotcore/contexts/election-core/voter-registry"
	registrypostgres "ballotcore/contexts/election-core/voter-registry/adapters/postgres"
	"ballotcore/internal/platform/config"
	"ballotcore/internal/platform/db"
	"ballotcore/internal/platform/httpserver"

	"github.com/robfig/cron/v3"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	logger   *slog.Logger
}

type WorkerApp struct {
	postgres *db.Postgres
	cron     *cron.Cron
	logger   *slog.Logger
}

type modules struct {
	elections electionlifecycle.Module
	registry  voterregistry.Module
	identity  identitychallenge.Module
	ledger    voteledger.Module
	reports   turnoutreports.Module
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	pg, err := connect(cfg)
	if err != nil {
		return nil, err
	}

	wired, err := buildModules(cfg, pg, logger)
	if err != nil {
		_ = pg.Close()
		return nil, err
	}

	server := httpserver.New(
		wired.elections,
		wired.registry,
		wired.identity,
		wired.ledger,
		wired.reports,
		logger,
		normalizeAddr(cfg.HTTPPort),
	)
	return &APIApp{
		server:   server,
		postgres: pg,
		logger:   logger,
	}, nil
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	pg, err := connect(cfg)
	if err != nil {
		return nil, err
	}

	wired, err := buildModules(cfg, pg, logger)
	if err != nil {
		_ = pg.Close()
		return nil, err
	}

	scheduler := cron.New()
	sweeper := wired.elections.Sweeper
	cleaner := wired.identity.Cleaner
	if _, err := scheduler.AddFunc(cfg.SweepSchedule, func() {
		if err := sweeper.RunOnce(context.Background()); err != nil {
			logger.Error("status sweep failed",
				"event", "bootstrap_sweep_failed",
				"module", "internal/app/bootstrap",
				"layer", "platform",
				"error", err.Error(),
			)
		}
	}); err != nil {
		_ = pg.Close()
		return nil, err
	}
	if _, err := scheduler.AddFunc(cfg.CleanupSchedule, func() {
		if err := cleaner.RunOnce(context.Background()); err != nil {
			logger.Error("challenge cleanup failed",
				"event", "bootstrap_cleanup_failed",
				"module", "internal/app/bootstrap",
				"layer", "platform",
				"error", err.Error(),
			)
		}
	}); err != nil {
		_ = pg.Close()
		return nil, err
	}

	return &WorkerApp{
		postgres: pg,
		cron:     scheduler,
		logger:   logger,
	}, nil
}

func connect(cfg config.Config) (*db.Postgres, error) {
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}
	return db.Connect(cfg.PostgresDSN)
}

func buildModules(cfg config.Config, pg *db.Postgres, logger *slog.Logger) (modules, error) {
	if err := electionpostgres.Migrate(pg.DB); err != nil {
		return modules{}, err
	}
	if err := registrypostgres.Migrate(pg.DB); err != nil {
		return modules{}, err
	}
	if err := identitypostgres.Migrate(pg.DB); err != nil {
		return modules{}, err
	}
	if err := votepostgres.Migrate(pg.DB); err != nil {
		return modules{}, err
	}

	electionRepo := electionpostgres.NewRepository(pg.DB, logger)
	electionModule := electionlifecycle.NewModule(electionlifecycle.Dependencies{
		Elections:  electionRepo,
		Candidates: electionRepo,
		Clock:      electionpostgres.SystemClock{},
		IDGen:      electionpostgres.UUIDGenerator{},
		Logger:     logger,
	})

	registryRepo := registrypostgres.NewRepository(pg.DB, logger)
	registryModule := voterregistry.NewModule(voterregistry.Dependencies{
		Entries: registryRepo,
		Clock:   registrypostgres.SystemClock{},
		IDGen:   registrypostgres.UUIDGenerator{},
		Logger:  logger,
	})

	retention := cfg.ChallengeRetention
	if retention <= 0 {
		retention = identityworkers.DefaultRetention
	}
	identityRepo := identitypostgres.NewRepository(pg.DB, logger)
	identityModule := identitychallenge.NewModule(identitychallenge.Dependencies{
		Policies:   identityRepo,
		Challenges: identityRepo,
		Directory: registrydirectory.Directory{
			Registry: registryModule.Registry,
			Queries:  registryModule.Queries,
		},
		Notifier:  identitynotifier.LogNotifier{Logger: logger},
		Clock:     identitypostgres.SystemClock{},
		IDGen:     identitypostgres.UUIDGenerator{},
		Retention: retention,
		Logger:    logger,
	})

	voteRepo := votepostgres.NewRepository(pg.DB, logger)
	ledgerModule := voteledger.NewModule(voteledger.Dependencies{
		Votes:     voteRepo,
		Elections: voteRepo,
		Voters:    voteRepo,
		Policies:  voteRepo,
		Notifier:  votenotifier.LogNotifier{Logger: logger},
		Clock:     votepostgres.SystemClock{},
		IDGen:     votepostgres.UUIDGenerator{},
		Logger:    logger,
	})

	reportsModule := turnoutreports.NewModule(turnoutreports.Dependencies{
		Source: reportspostgres.NewSource(pg.DB, logger),
		Logger: logger,
	})

	return modules{
		elections: electionModule,
		registry:  registryModule,
		identity:  identityModule,
		ledger:    ledgerModule,
		reports:   reportsModule,
	}, nil
}

func (a *APIApp) Run(_ context.Context) error {
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	return a.server.Start()
}

func (a *APIApp) Close() error {
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

func (w *WorkerApp) Run(ctx context.Context) error {
	w.cron.Start()
	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
	)

	<-ctx.Done()
	stopped := w.cron.Stop()
	<-stopped.Done()
	return nil
}

func (w *WorkerApp) Close() error {
	if w.postgres != nil {
		return w.postgres.Close()
	}
	return nil
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
