package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/flipwatch/internal/contracts"
	"github.com/wonny/flipwatch/internal/flow"
	"github.com/wonny/flipwatch/internal/report"
	"github.com/wonny/flipwatch/internal/screener"
	"github.com/wonny/flipwatch/internal/session"
	"github.com/wonny/flipwatch/pkg/logger"
	"github.com/wonny/flipwatch/pkg/metrics"
)

// Stage names, also used as metric labels
const (
	StageMarket  = "market"
	StageScreen  = "screen"
	StageCollect = "collect"
	StageWrite   = "write"
)

// Archiver stores finished reports (optional)
type Archiver interface {
	SaveReport(ctx context.Context, r *contracts.RunReport) error
}

// Deps holds the stage components of a Runner
type Deps struct {
	Resolver  *session.Resolver
	Market    contracts.MarketDataGateway
	Screener  *screener.Screener
	Collector *flow.Collector
	Writer    *report.Writer
	Archive   Archiver          // nil = 보관 안 함
	Metrics   *metrics.Recorder // nil = 기록 안 함
	Params    contracts.RunParams
}

// RunConfig holds configuration for a single run
type RunConfig struct {
	Now  time.Time             // 실행 시각 (세션 판정 + generated_at)
	Date contracts.SessionDate // 지정 시 세션 판정 생략 (재실행용)
}

// Runner coordinates resolver → market → screener → collector → assembler
// ⭐ SSOT: 파이프라인 조율은 여기서만
type Runner struct {
	deps   Deps
	logger *logger.Logger
}

// NewRunner creates a new Runner
func NewRunner(deps Deps, log *logger.Logger) *Runner {
	return &Runner{
		deps:   deps,
		logger: log.WithModule("pipeline"),
	}
}

// Run executes one screening run. It always returns a report:
// no published session → no_session_data, market fetch failure → failed,
// otherwise hits, no_activity or partial with any skipped candidates attached,
// or failed when no candidate's broker flow could be fetched.
func (r *Runner) Run(ctx context.Context, cfg RunConfig) contracts.RunReport {
	startTime := time.Now()

	date := cfg.Date
	if date.IsZero() {
		date = r.deps.Resolver.Resolve(cfg.Now)
	}

	r.logger.WithFields(map[string]interface{}{
		"date":          date.String(),
		"now":           cfg.Now.Format(time.RFC3339),
		"market_source": r.deps.Params.MarketSource,
		"watch_list":    len(r.deps.Params.WatchList),
	}).Info("Starting screening run")

	rep := r.run(ctx, date, cfg.Now)
	rep.Params = r.deps.Params

	r.deps.Metrics.RecordRun(string(rep.Status), len(rep.Candidates), len(rep.Hits), rep.GeneratedAt)

	r.logger.WithFields(map[string]interface{}{
		"date":       date.String(),
		"status":     string(rep.Status),
		"candidates": len(rep.Candidates),
		"hits":       len(rep.Hits),
		"skipped":    len(rep.Skipped),
		"duration":   time.Since(startTime).Seconds(),
	}).Info("Screening run completed")

	return rep
}

func (r *Runner) run(ctx context.Context, date contracts.SessionDate, now time.Time) contracts.RunReport {
	// Market
	stageStart := time.Now()
	rows, err := r.deps.Market.FetchMarket(ctx, date)
	r.deps.Metrics.ObserveStage(StageMarket, time.Since(stageStart))
	switch {
	case contracts.IsNoSessionData(err):
		r.logger.WithField("date", date.String()).Info("No session data published")
		return report.NoSessionData(date, now)
	case err != nil:
		r.logger.WithError(err).WithField("date", date.String()).Error("Market fetch failed")
		return report.Failed(date, now, fmt.Errorf("market fetch: %w", err))
	case len(rows) == 0:
		return report.NoSessionData(date, now)
	}

	// Screen
	stageStart = time.Now()
	screened := r.deps.Screener.Screen(rows)
	r.deps.Metrics.ObserveStage(StageScreen, time.Since(stageStart))

	// Collect
	stageStart = time.Now()
	outcome := r.deps.Collector.Collect(ctx, date, screened.Candidates)
	r.deps.Metrics.ObserveStage(StageCollect, time.Since(stageStart))

	// Assemble
	rep := report.Complete(report.Assemble(date, outcome.Hits, now), screened.Candidates, outcome.Skipped)

	if err := ctx.Err(); err != nil {
		rep.Diagnostic = fmt.Sprintf("run interrupted: %v", err)
	}

	return rep
}

// RunAndWrite runs, writes the artifact to path and archives it.
// The report is returned even when writing fails; archive errors are logged only.
func (r *Runner) RunAndWrite(ctx context.Context, cfg RunConfig, path string) (contracts.RunReport, error) {
	rep := r.Run(ctx, cfg)

	stageStart := time.Now()
	err := r.deps.Writer.Write(path, &rep)
	r.deps.Metrics.ObserveStage(StageWrite, time.Since(stageStart))
	if err != nil {
		r.logger.WithError(err).WithField("path", path).Error("Failed to write report")
		return rep, fmt.Errorf("write report: %w", err)
	}

	if r.deps.Archive != nil {
		if err := r.deps.Archive.SaveReport(ctx, &rep); err != nil {
			r.logger.WithError(err).WithField("date", rep.Date.String()).Warn("Failed to archive report")
		}
	}

	return rep, nil
}
