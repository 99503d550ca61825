package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/flipwatch/internal/contracts"
	"github.com/wonny/flipwatch/internal/pipeline"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "일일 스크리닝 1회 실행",
	Long: `세션 날짜를 판정하고 漲停 후보의 분점 수급을 분석해 리포트를 씁니다.

실행 순서:
- 세션 날짜 판정 (현지 시각 + 공개 cutoff, 주말은 금요일로)
- 전 종목 시세 조회 → 漲停 후보 선별
- 후보별 분점 수급 조회 → 감시 분점 순매수 판정
- 리포트 파일 원자적 교체 (+ 선택: DB 보관)

휴장/미공개 세션과 시세 조회 실패도 진단 리포트로 기록됩니다.
리포트 파일 쓰기에 실패한 경우에만 0이 아닌 코드로 종료합니다.

Example:
  go run ./cmd/flipwatch run
  go run ./cmd/flipwatch run --date 2024-06-07
  go run ./cmd/flipwatch run --now 2024-06-08T10:00:00+08:00 --output out/index.html`,
	RunE: runScreen,
}

var (
	runDate   string
	runNow    string
	runOutput string
	runFormat string
	runQuiet  bool
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runDate, "date", "", "session date YYYY-MM-DD (skips session resolution)")
	runCmd.Flags().StringVar(&runNow, "now", "", "pretend current time, RFC3339")
	runCmd.Flags().StringVarP(&runOutput, "output", "o", "", "report path (default REPORT_PATH)")
	runCmd.Flags().StringVar(&runFormat, "format", "", "report format html|json (default REPORT_FORMAT)")
	runCmd.Flags().BoolVarP(&runQuiet, "quiet", "q", false, "do not print the summary")
}

// parseRunConfig turns the --date/--now flags into a RunConfig
func parseRunConfig(date, now string, clock func() time.Time) (pipeline.RunConfig, error) {
	cfg := pipeline.RunConfig{Now: clock()}

	if now != "" {
		t, err := time.Parse(time.RFC3339, now)
		if err != nil {
			return cfg, fmt.Errorf("invalid --now %q (want RFC3339): %w", now, err)
		}
		cfg.Now = t
	}

	if date != "" {
		d, err := contracts.ParseSessionDate(date)
		if err != nil {
			return cfg, fmt.Errorf("invalid --date: %w", err)
		}
		cfg.Date = d
	}

	return cfg, nil
}

func runScreen(cmd *cobra.Command, args []string) error {
	runCfg, err := parseRunConfig(runDate, runNow, time.Now)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if runOutput != "" {
		cfg.Report.Path = runOutput
	}
	if runFormat != "" {
		cfg.Report.Format = runFormat
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	rep, err := a.runner.RunAndWrite(ctx, runCfg, cfg.Report.Path)
	if !runQuiet {
		PrintReportSummary(&rep)
	}
	if err != nil {
		PrintError(err.Error())
		return err
	}

	if !runQuiet {
		PrintSuccess(fmt.Sprintf("Report written to %s", cfg.Report.Path))
	}
	return nil
}
