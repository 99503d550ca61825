package commands

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/flipwatch/internal/contracts"
	"github.com/wonny/flipwatch/internal/report"
)

var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "리포트 보관소 조회 (DATABASE_URL 필요)",
	Long: `PostgreSQL에 보관된 실행 이력을 관리합니다.

명령어:
  init   스키마 생성
  list   기간 내 실행 목록
  show   특정 세션 리포트 출력`,
}

var (
	archiveFrom   string
	archiveTo     string
	archiveFormat string
)

var archiveInitCmd = &cobra.Command{
	Use:   "init",
	Short: "보관 스키마 생성",
	RunE:  runArchiveInit,
}

var archiveListCmd = &cobra.Command{
	Use:   "list",
	Short: "실행 목록",
	Long: `보관된 실행 목록을 최신순으로 출력합니다 (기본: 최근 30일).

Example:
  go run ./cmd/flipwatch archive list
  go run ./cmd/flipwatch archive list --from 2024-06-01 --to 2024-06-30`,
	RunE: runArchiveList,
}

var archiveShowCmd = &cobra.Command{
	Use:   "show [date]",
	Short: "리포트 출력 (date 생략 시 최신)",
	Long: `보관된 리포트를 출력합니다.

--format summary(기본)는 터미널 요약, html/json은 리포트 원문을 stdout으로 씁니다.

Example:
  go run ./cmd/flipwatch archive show 2024-06-07
  go run ./cmd/flipwatch archive show --format html > index.html`,
	Args: cobra.MaximumNArgs(1),
	RunE: runArchiveShow,
}

func init() {
	rootCmd.AddCommand(archiveCmd)
	archiveCmd.AddCommand(archiveInitCmd)
	archiveCmd.AddCommand(archiveListCmd)
	archiveCmd.AddCommand(archiveShowCmd)

	archiveListCmd.Flags().StringVar(&archiveFrom, "from", "", "from date YYYY-MM-DD")
	archiveListCmd.Flags().StringVar(&archiveTo, "to", "", "to date YYYY-MM-DD")
	archiveShowCmd.Flags().StringVar(&archiveFormat, "format", "summary", "summary|html|json")
}

func runArchiveInit(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	repo, db, err := openArchiveOnly(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	health, err := db.HealthCheck(ctx)
	if err != nil {
		return fmt.Errorf("archive database unhealthy: %w", err)
	}
	PrintKeyValue("Ping", health.ResponseTime.String(), 12)
	PrintKeyValue("Connections", fmt.Sprintf("%d (idle %d)", health.TotalConns, health.IdleConns), 12)

	if err := repo.EnsureSchema(ctx); err != nil {
		return err
	}

	PrintSuccess("Archive schema ready")
	return nil
}

func runArchiveList(cmd *cobra.Command, args []string) error {
	to := contracts.SessionDateOf(time.Now())
	from := to.AddDays(-30)

	if archiveTo != "" {
		d, err := contracts.ParseSessionDate(archiveTo)
		if err != nil {
			return err
		}
		to = d
	}
	if archiveFrom != "" {
		d, err := contracts.ParseSessionDate(archiveFrom)
		if err != nil {
			return err
		}
		from = d
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	repo, db, err := openArchiveOnly(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	runs, err := repo.ListRuns(ctx, from, to)
	if err != nil {
		return err
	}

	PrintHeader(fmt.Sprintf("Archived runs %s ~ %s", from, to))
	if len(runs) == 0 {
		PrintInfo("No archived runs")
		return nil
	}

	widths := []int{10, 16, 10, 5, 7, 20}
	PrintTableHeader([]string{"Date", "Status", "Candidates", "Hits", "Skipped", "Generated"}, widths)
	for _, r := range runs {
		PrintTableRow([]string{
			r.Date.String(),
			string(r.Status),
			strconv.Itoa(r.Candidates),
			strconv.Itoa(r.Hits),
			strconv.Itoa(r.Skipped),
			r.GeneratedAt.Format("2006-01-02 15:04"),
		}, widths)
	}

	return nil
}

func runArchiveShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	repo, db, err := openArchiveOnly(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var rep *contracts.RunReport
	if len(args) == 1 {
		date, perr := contracts.ParseSessionDate(args[0])
		if perr != nil {
			return perr
		}
		rep, err = repo.GetReport(ctx, date)
	} else {
		rep, err = repo.GetLatestReport(ctx)
	}
	if err != nil {
		return err
	}

	if archiveFormat == "summary" {
		PrintReportSummary(rep)
		return nil
	}

	renderer, err := report.NewRenderer(archiveFormat)
	if err != nil {
		return err
	}
	return renderer.Render(os.Stdout, rep)
}
