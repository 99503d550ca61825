package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/flipwatch/internal/api"
	"github.com/wonny/flipwatch/internal/api/handlers"
	"github.com/wonny/flipwatch/internal/scheduler"
	"github.com/wonny/flipwatch/internal/scheduler/jobs"
	"github.com/wonny/flipwatch/internal/screenconfig"
	"github.com/wonny/flipwatch/internal/session"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "스케줄러 관리",
	Long: `일일 스크리닝 스케줄러를 시작하거나 일정을 확인합니다.

Subcommands:
  start   - 스케줄러 데몬 시작 (+ 리포트 서버)
  next    - 다음 실행 시각 조회

Example:
  go run ./cmd/flipwatch scheduler start
  go run ./cmd/flipwatch scheduler start --serve=false
  go run ./cmd/flipwatch scheduler next`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "스케줄러 시작",
		Long: `daily_screen 작업을 SCHEDULE(기본: 평일 18:35, 시장 현지 시각)에 실행합니다.

--serve 가 켜져 있으면 같은 프로세스에서 리포트 서버(PORT)도 띄웁니다:
  GET  /report, /api/report, /api/runs, /api/jobs, /metrics
  POST /api/jobs/daily_screen/run

스케줄러는 Ctrl+C로 종료할 수 있습니다.`,
		RunE: runScheduler,
	}

	schedulerNextCmd = &cobra.Command{
		Use:   "next",
		Short: "다음 실행 시각 조회",
		RunE:  showNextRun,
	}
)

var (
	schedulerServe    bool
	schedulerRunFirst bool
	nextCount         int
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerNextCmd)

	schedulerStartCmd.Flags().BoolVar(&schedulerServe, "serve", true, "also run the report server")
	schedulerStartCmd.Flags().BoolVar(&schedulerRunFirst, "run-now", false, "run daily_screen once at startup")
	schedulerNextCmd.Flags().IntVarP(&nextCount, "count", "n", 5, "number of upcoming runs")
}

func runScheduler(cmd *cobra.Command, args []string) error {
	fmt.Println("=== flipwatch Scheduler ===")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	a, err := newApp(context.Background(), cfg)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	defer a.Close()

	// 스케줄은 시장 현지 시각 기준
	sched := scheduler.New(a.log, a.resolver.Location()).
		WithRetry(cfg.ScheduleMaxRetries, cfg.ScheduleRetryDelay)

	job := jobs.NewDailyScreenJob(a.runner, cfg.Schedule, cfg.Report.Path, a.log).
		OnReport(a.store.Put)
	if err := sched.AddJob(job); err != nil {
		return fmt.Errorf("add job: %w", err)
	}

	var server *api.Server
	serverErr := make(chan error, 1)
	if schedulerServe {
		routes := api.Routes{
			Reports: handlers.NewReportHandler(a.store, runLister(a), a.log),
			Jobs:    handlers.NewJobsHandler(sched, a.log),
		}
		if a.metrics != nil {
			routes.Metrics = a.metrics.Handler()
		}
		if a.db != nil {
			routes.Archive = a.db
		}
		server = api.New(cfg, a.log, api.NewRouter(routes, a.log))
		go func() {
			serverErr <- server.Start()
		}()
	}

	sched.Start()
	if schedulerRunFirst {
		if err := sched.RunJob(job.Name()); err != nil {
			return err
		}
	}

	PrintSuccess("Scheduler started successfully")
	if next, err := sched.NextRun(job.Name()); err == nil {
		PrintKeyValue(job.Name(), next.Format("2006-01-02 15:04:05 MST"), 12)
	}
	if schedulerServe {
		PrintInfo(fmt.Sprintf("Report server on :%s", cfg.Port))
	}
	fmt.Println("Press Ctrl+C to stop")

	// Wait for interrupt signal or server failure
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	var runErr error
	select {
	case <-quit:
	case runErr = <-serverErr:
		if runErr != nil {
			PrintError(runErr.Error())
		}
	}

	fmt.Println("\nShutting down scheduler...")
	sched.Stop()

	if server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			a.log.WithError(err).Warn("Server shutdown failed")
		}
	}

	fmt.Println("Scheduler stopped")
	return runErr
}

func showNextRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	profile, _, err := screenconfig.Resolve(cfg)
	if err != nil {
		return fmt.Errorf("load screening profile: %w", err)
	}
	cutoff, err := session.ParseCutoff(profile.Session.Cutoff)
	if err != nil {
		return err
	}
	resolver := session.NewResolver(profile.UTCOffset(), cutoff)

	from := time.Now().In(resolver.Location())
	PrintHeader(fmt.Sprintf("daily_screen  %s", cfg.Schedule))
	for i := 0; i < nextCount; i++ {
		next, err := scheduler.Next(cfg.Schedule, from)
		if err != nil {
			return err
		}
		PrintKeyValue(next.Format("2006-01-02 15:04 MST"), "session "+resolver.Resolve(next).String(), 22)
		from = next
	}

	return nil
}
