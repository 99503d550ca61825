package jobs

import (
	"context"
	"time"

	"github.com/wonny/flipwatch/internal/contracts"
	"github.com/wonny/flipwatch/internal/pipeline"
	"github.com/wonny/flipwatch/pkg/logger"
)

// ScreenRunner is the part of pipeline.Runner the job needs
type ScreenRunner interface {
	RunAndWrite(ctx context.Context, cfg pipeline.RunConfig, path string) (contracts.RunReport, error)
}

// DailyScreenJob runs the limit-up screen once per trading day
type DailyScreenJob struct {
	runner     ScreenRunner
	schedule   string
	reportPath string
	clock      func() time.Time
	onReport   func(contracts.RunReport)
	logger     *logger.Logger
}

// NewDailyScreenJob creates a new daily screen job
func NewDailyScreenJob(runner ScreenRunner, schedule, reportPath string, log *logger.Logger) *DailyScreenJob {
	return &DailyScreenJob{
		runner:     runner,
		schedule:   schedule,
		reportPath: reportPath,
		clock:      time.Now,
		logger:     log.WithModule("daily_screen"),
	}
}

// WithClock overrides the time source (tests)
func (j *DailyScreenJob) WithClock(clock func() time.Time) *DailyScreenJob {
	j.clock = clock
	return j
}

// OnReport registers a callback receiving every written report
func (j *DailyScreenJob) OnReport(fn func(contracts.RunReport)) *DailyScreenJob {
	j.onReport = fn
	return j
}

// Name returns the job name
func (j *DailyScreenJob) Name() string {
	return "daily_screen"
}

// Schedule returns the cron schedule
func (j *DailyScreenJob) Schedule() string {
	return j.schedule
}

// Run executes one screening run and writes the report.
// no_session_data and failed reports are still written and are not retried;
// only a failed write returns an error.
func (j *DailyScreenJob) Run(ctx context.Context) error {
	rep, err := j.runner.RunAndWrite(ctx, pipeline.RunConfig{Now: j.clock()}, j.reportPath)
	if err != nil {
		return err
	}

	j.logger.WithFields(map[string]interface{}{
		"date":     rep.Date.String(),
		"status":   string(rep.Status),
		"hits":     len(rep.Hits),
		"skipped":  len(rep.Skipped),
		"headline": rep.Headline(),
	}).Info("Daily screen finished")

	if j.onReport != nil {
		j.onReport(rep)
	}
	return nil
}
