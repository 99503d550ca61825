package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wonny/flipwatch/internal/archive"
	"github.com/wonny/flipwatch/internal/contracts"
	"github.com/wonny/flipwatch/internal/external/finmind"
	"github.com/wonny/flipwatch/internal/external/twse"
	"github.com/wonny/flipwatch/internal/flow"
	"github.com/wonny/flipwatch/internal/gateway"
	"github.com/wonny/flipwatch/internal/pipeline"
	"github.com/wonny/flipwatch/internal/report"
	"github.com/wonny/flipwatch/internal/screenconfig"
	"github.com/wonny/flipwatch/internal/screener"
	"github.com/wonny/flipwatch/internal/session"
	"github.com/wonny/flipwatch/pkg/config"
	"github.com/wonny/flipwatch/pkg/database"
	"github.com/wonny/flipwatch/pkg/httputil"
	"github.com/wonny/flipwatch/pkg/logger"
	"github.com/wonny/flipwatch/pkg/metrics"
	"github.com/wonny/flipwatch/pkg/redis"
)

// app holds every wired component of one process
type app struct {
	cfg      *config.Config
	log      *logger.Logger
	profile  *screenconfig.Config
	resolver *session.Resolver
	runner   *pipeline.Runner
	store    *report.Store
	archive  *archive.Repository // nil = 보관 비활성
	db       *database.DB        // nil = 보관 비활성
	metrics  *metrics.Recorder   // nil = 메트릭 비활성
	closers  []func()
}

// Close releases connections in reverse order
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// newApp wires config → gateways → pipeline
// ⭐ SSOT: 의존성 조립은 여기서만
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	log := logger.New(cfg)
	a := &app{cfg: cfg, log: log}

	// 1. Screening profile
	profile, profileYAML, err := screenconfig.Resolve(cfg)
	if err != nil {
		return nil, fmt.Errorf("load screening profile: %w", err)
	}
	for _, w := range screenconfig.Warn(profile) {
		log.WithField("code", w.Code).Warn(w.Message)
	}
	profileHash, err := screenconfig.Hash(profile)
	if err != nil {
		return nil, fmt.Errorf("hash screening profile: %w", err)
	}
	a.profile = profile

	// 2. Session resolver
	cutoff, err := session.ParseCutoff(profile.Session.Cutoff)
	if err != nil {
		return nil, err
	}
	a.resolver = session.NewResolver(profile.UTCOffset(), cutoff)

	// 3. Metrics
	if cfg.MetricsEnabled {
		a.metrics = metrics.New()
	}

	// 4. Gateways
	market, brokerFlow, err := a.newGateways()
	if err != nil {
		a.Close()
		return nil, err
	}

	// 5. Archive (optional)
	a.openArchive(ctx, profile, profileYAML)

	// 6. Report artifact
	renderer, err := report.NewRenderer(cfg.Report.Format)
	if err != nil {
		a.Close()
		return nil, err
	}
	if a.archive != nil {
		a.store = report.NewStore(a.archive)
	} else {
		a.store = report.NewStore(nil)
	}

	// 7. Pipeline
	analyzer := flow.NewAnalyzer(profile.WatchList(), profile.NetBuyThreshold(), profile.Flow.LotSize)
	collector := flow.NewCollector(brokerFlow, analyzer, flow.Config{
		Workers:           cfg.Flow.Workers,
		RequestsPerSecond: cfg.Flow.RequestsPerSecond,
	}, a.metrics, log)

	deps := pipeline.Deps{
		Resolver:  a.resolver,
		Market:    market,
		Screener:  screener.NewScreener(profile.LimitUpThreshold(), log),
		Collector: collector,
		Writer:    report.NewWriter(renderer, log),
		Metrics:   a.metrics,
		Params: contracts.RunParams{
			MarketSource:     cfg.MarketSource,
			LimitUpThreshold: profile.LimitUpThreshold().String(),
			NetBuyThreshold:  profile.NetBuyThreshold(),
			WatchList:        profile.WatchList().Names(),
			Cutoff:           a.resolver.Cutoff().String(),
			ProfileHash:      profileHash,
		},
	}
	if a.archive != nil {
		deps.Archive = a.archive
	}
	a.runner = pipeline.NewRunner(deps, log)

	log.WithFields(map[string]interface{}{
		"profile":      profile.Meta.ProfileID,
		"profile_hash": profileHash,
		"source":       cfg.MarketSource,
		"watch_list":   profile.WatchList().Len(),
		"archive":      a.archive != nil,
	}).Info("flipwatch initialized")

	return a, nil
}

// newGateways builds the market-wide and broker-flow gateways, Redis-cached when enabled
func (a *app) newGateways() (contracts.MarketDataGateway, contracts.BrokerFlowGateway, error) {
	cfg := a.cfg

	finmindHTTP := httputil.New(a.log).WithBearerToken(cfg.FinMind.Token)
	finmindClient := finmind.NewClient(finmindHTTP, cfg.FinMind.BaseURL, a.log)

	var market contracts.MarketDataGateway
	switch cfg.MarketSource {
	case finmind.Source:
		market = finmindClient
	case twse.Source:
		// TWSE 사이트는 초당 요청 제한이 엄격함
		market = twse.NewClient(httputil.New(a.log).WithRateLimit(1), cfg.TWSE.BaseURL, a.log)
	default:
		return nil, nil, fmt.Errorf("unknown market source: %s", cfg.MarketSource)
	}
	var brokerFlow contracts.BrokerFlowGateway = finmindClient

	rc, err := redis.New(cfg)
	if err != nil {
		// 캐시는 선택 사항: 연결 실패 시 캐시 없이 진행
		a.log.WithError(err).Warn("Redis unavailable, continuing without gateway cache")
		return market, brokerFlow, nil
	}
	a.closers = append(a.closers, func() { _ = rc.Close() })

	if rc.Enabled() {
		cache := redis.NewCache(rc, "flipwatch")
		market = gateway.NewCachedMarket(market, cache, cfg.MarketSource, a.log)
		brokerFlow = gateway.NewCachedBrokerFlow(brokerFlow, cache, a.log)
		a.log.Info("Gateway cache enabled")
	}

	return market, brokerFlow, nil
}

// openArchive connects the report archive when DATABASE_URL is set.
// Failures are logged and the run continues without an archive.
func (a *app) openArchive(ctx context.Context, profile *screenconfig.Config, profileYAML []byte) {
	db, err := database.New(a.cfg)
	if errors.Is(err, database.ErrDisabled) {
		return
	}
	if err != nil {
		a.log.WithError(err).Warn("Archive database unavailable, reports will not be archived")
		return
	}
	a.closers = append(a.closers, db.Close)

	repo := archive.NewRepository(db.Pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		a.log.WithError(err).Warn("Archive schema unavailable, reports will not be archived")
		return
	}

	snapshot, err := screenconfig.NewProfileSnapshot(profile, profileYAML, time.Now())
	if err == nil {
		err = repo.SaveProfile(ctx, snapshot)
	}
	if err != nil {
		a.log.WithError(err).Warn("Failed to archive screening profile")
	}

	a.archive = repo
	a.db = db
}

// openArchiveOnly connects the archive for commands that need it
func openArchiveOnly(cfg *config.Config) (*archive.Repository, *database.DB, error) {
	db, err := database.New(cfg)
	if errors.Is(err, database.ErrDisabled) {
		return nil, nil, fmt.Errorf("DATABASE_URL is not set")
	}
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}
	return archive.NewRepository(db.Pool), db, nil
}
