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
	"github.com/wonny/flipwatch/internal/report"
	"github.com/wonny/flipwatch/pkg/logger"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "리포트 서버 시작",
	Long: `보관된 리포트(DATABASE_URL 필요)를 HTTP로 제공합니다.
스크리닝은 실행하지 않습니다. 스케줄 실행과 함께 쓰려면 'scheduler start'를 사용하세요.

Endpoints:
  GET  /health               - Health check
  GET  /report[/{date}]      - 리포트 HTML
  GET  /api/report[/{date}]  - 리포트 JSON
  GET  /api/runs             - 보관된 실행 목록

Example:
  go run ./cmd/flipwatch serve
  go run ./cmd/flipwatch serve --port 8080`,
	RunE: runServe,
}

var (
	servePort string
)

func init() {
	rootCmd.AddCommand(serveCmd)

	// Flags
	serveCmd.Flags().StringVar(&servePort, "port", "", "report server port (default PORT)")
}

func runServe(cmd *cobra.Command, args []string) error {
	fmt.Println("=== flipwatch Report Server ===")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Override port if flag is set
	if servePort != "" {
		cfg.Port = servePort
	}

	log := logger.New(cfg)

	repo, db, err := openArchiveOnly(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	log.Info("Connected to report archive")

	router := api.NewRouter(api.Routes{
		Reports: handlers.NewReportHandler(report.NewStore(repo), repo, log),
		Archive: db,
	}, log)
	server := api.New(cfg, log, router)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case <-quit:
	case err := <-serverErr:
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return server.Shutdown(ctx)
}

// runLister returns the archive as a RunLister, or nil when archiving is off
func runLister(a *app) handlers.RunLister {
	if a.archive == nil {
		return nil
	}
	return a.archive
}
