package app

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"

	"github.com/cagewatch/live-tracker/external/pushgate"
	"github.com/cagewatch/live-tracker/external/sourcepage"
	"github.com/cagewatch/live-tracker/internal/config"
	"github.com/cagewatch/live-tracker/internal/domain/event"
	"github.com/cagewatch/live-tracker/internal/domain/fight"
	"github.com/cagewatch/live-tracker/internal/domain/rawdata"
	"github.com/cagewatch/live-tracker/internal/infrastructure/repository/memory"
	"github.com/cagewatch/live-tracker/internal/infrastructure/repository/postgres"
	"github.com/cagewatch/live-tracker/internal/interfaces/httpapi"
	"github.com/cagewatch/live-tracker/internal/platform/logging"
	"github.com/cagewatch/live-tracker/internal/platform/resilience"
	"github.com/cagewatch/live-tracker/internal/usecase"
)

// completionSourceScraper is stamped on events the pipeline closes itself,
// as opposed to events closed by hand.
const completionSourceScraper = "scraper"

// App owns the wired service graph. Shutdown order matters: trackers drain
// before the database closes so an in-flight tick never writes to a closed
// pool.
type App struct {
	Server  *http.Server
	Tracker *usecase.TrackerService

	db     *sqlx.DB
	logger *logging.Logger
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if strings.TrimSpace(cfg.HTTPAddr) == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	var (
		db        *sqlx.DB
		eventRepo event.Repository
		fightRepo fight.Repository
		rawRepo   rawdata.Repository
	)
	if strings.TrimSpace(cfg.DBURL) != "" {
		opened, err := otelsqlx.Connect("postgres", normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary),
			otelsql.WithDBSystem("postgresql"),
			otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
			otelsql.WithQueryFormatter(formatDBQueryForTrace),
		)
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		if cfg.AppEnv == config.EnvDev {
			if err := postgres.BootstrapSeed(ctx, opened); err != nil {
				_ = opened.Close()
				return nil, fmt.Errorf("bootstrap seed: %w", err)
			}
		}
		db = opened
		eventRepo = postgres.NewEventRepository(db)
		fightRepo = postgres.NewFightRepository(db)
		rawRepo = postgres.NewRawSnapshotRepository(db)
		logger.Info("repositories ready", "backend", "postgres", "db", dbNameFromURL(cfg.DBURL))
	} else {
		eventRepo = memory.NewEventRepository(memory.SeedEvents())
		fightRepo = memory.NewFightRepository(memory.SeedFights())
		rawRepo = memory.NewRawSnapshotRepository()
		logger.Info("repositories ready", "backend", "memory", "reason", "DB_URL empty")
	}

	fetcher := sourcepage.NewClient(sourcepage.ClientConfig{
		Timeout:    cfg.ScrapeTimeout,
		MaxRetries: cfg.ScrapeMaxRetries,
		UserAgent:  cfg.ScrapeUserAgent,
		Logger:     logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.ScrapeCircuitEnabled,
			FailureThreshold: cfg.ScrapeCircuitFailureCount,
			OpenTimeout:      cfg.ScrapeCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.ScrapeCircuitHalfOpenMaxReq,
		},
	})

	var alertSender usecase.FightAlertSender = usecase.NewNoopAlertSender()
	if cfg.PushGateEnabled {
		alertSender = pushgate.NewClient(pushgate.ClientConfig{
			BaseURL: cfg.PushGateBaseURL,
			Token:   cfg.PushGateToken,
			Timeout: cfg.PushGateTimeout,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.PushGateCircuitEnabled,
				FailureThreshold: cfg.PushGateCircuitFailureCount,
				OpenTimeout:      cfg.PushGateCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.PushGateCircuitHalfOpenMaxReq,
			},
		}, logger)
	}

	matcher := usecase.NewFightMatcher(logger)
	trackerSvc := usecase.NewTrackerService(
		fetcher,
		eventRepo,
		fightRepo,
		rawRepo,
		matcher,
		usecase.NewChangeDetector(),
		usecase.NewStateApplier(eventRepo, fightRepo, completionSourceScraper, logger),
		usecase.NewCardNotifier(fightRepo, alertSender, logger),
		logger,
	)
	backfillSvc := usecase.NewBackfillService(fetcher, eventRepo, fightRepo, matcher, logger)
	cardSvc := usecase.NewCardService(eventRepo, fightRepo)

	handler := httpapi.NewHandler(cardSvc, trackerSvc, backfillSvc, httpapi.HandlerDefaults{
		TrackInterval:   cfg.TrackInterval,
		BackfillWorkers: cfg.BackfillWorkers,
	}, logger)
	router := httpapi.NewRouter(handler, logger, cfg.CORSAllowedOrigins, cfg.InternalToken)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return &App{
		Server:  server,
		Tracker: trackerSvc,
		db:      db,
		logger:  logger,
	}, nil
}

// Close drains tracker loops and releases the database pool.
func (a *App) Close() error {
	a.Tracker.StopAll()
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			return fmt.Errorf("close database: %w", err)
		}
	}
	return nil
}
