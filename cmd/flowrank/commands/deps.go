package commands

import (
	"fmt"
	"time"

	"github.com/wonny/flowrank/backend/internal/api"
	"github.com/wonny/flowrank/backend/internal/external/krx"
	"github.com/wonny/flowrank/backend/internal/external/naver"
	"github.com/wonny/flowrank/backend/internal/pricing"
	"github.com/wonny/flowrank/backend/internal/render"
	"github.com/wonny/flowrank/backend/internal/report"
	"github.com/wonny/flowrank/backend/internal/scheduler"
	"github.com/wonny/flowrank/backend/internal/scheduler/jobs"
	"github.com/wonny/flowrank/backend/internal/store"
	"github.com/wonny/flowrank/backend/pkg/config"
	"github.com/wonny/flowrank/backend/pkg/database"
	"github.com/wonny/flowrank/backend/pkg/httputil"
	"github.com/wonny/flowrank/backend/pkg/logger"
	"github.com/wonny/flowrank/backend/pkg/redis"
)

// deps holds everything a command needs after wiring
type deps struct {
	cfg         *config.Config
	log         *logger.Logger
	db          *database.DB
	reportStore *store.ReportStore
	priceRepo   *pricing.Repository
	naverClient *naver.Client
	engine      *report.Engine
	reportJob   *jobs.DailyReportJob
	backfillJob *jobs.PriceBackfillJob
	hub         *api.Hub
}

// buildDeps wires the full dependency graph
// ⭐ SSOT: 의존성 조립은 이 함수에서만
func buildDeps() (*deps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg)

	db, err := database.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	redisClient, err := redis.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	// 외부 호출은 재시도 + 레이트리밋 적용
	httpClient := httputil.New(cfg, log).
		WithRetry(3, 500*time.Millisecond).
		WithRateLimit(2, 1)

	krxClient := krx.NewClient(cfg, httpClient, log)
	naverClient := naver.NewClient(cfg, httpClient, log)

	reportStore := store.NewReportStore(db.Pool)
	priceRepo := pricing.NewRepository(db.Pool)

	priceCache := redis.NewCache(redisClient, "flowrank")
	oracle := pricing.NewCachedOracle(pricing.NewOracle(db.Pool), priceCache, log)

	renderer := render.NewSheetRenderer(cfg.Report.PairingSuffix)
	engine := report.NewEngine(reportStore, oracle, renderer, log, cfg.Report)

	hub := api.NewHub(log)
	reportJob := jobs.NewDailyReportJob(engine, krxClient, naverClient, hub, cfg, log)
	backfillJob := jobs.NewPriceBackfillJob(reportStore, naverClient, priceRepo, log)

	return &deps{
		cfg:         cfg,
		log:         log,
		db:          db,
		reportStore: reportStore,
		priceRepo:   priceRepo,
		naverClient: naverClient,
		engine:      engine,
		reportJob:   reportJob,
		backfillJob: backfillJob,
		hub:         hub,
	}, nil
}

// buildScheduler registers all jobs on a fresh scheduler
func (d *deps) buildScheduler() (*scheduler.Scheduler, error) {
	sched := scheduler.New(d.log)

	if err := sched.AddJob(d.backfillJob); err != nil {
		return nil, err
	}
	if err := sched.AddJob(d.reportJob); err != nil {
		return nil, err
	}

	return sched, nil
}

// close releases held resources
func (d *deps) close() {
	if d.db != nil {
		d.db.Close()
	}
}
