package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/flipwatch/pkg/config"
)

var (
	// Global flags
	profilePath string
	verbose     bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "flipwatch",
	Short: "台股隔日沖監控 - 漲停股 대형 분점 매수 감시",
	Long: `flipwatch daily screen

장 마감 후 漲停 종목을 찾고, 감시 대상 분점(隔日沖 大戶)이
해당 종목을 대량 순매수했는지 확인해 리포트를 생성합니다.

Usage:
  go run ./cmd/flipwatch [command]

Examples:
  go run ./cmd/flipwatch run
  go run ./cmd/flipwatch run --date 2024-06-07
  go run ./cmd/flipwatch scheduler start
  go run ./cmd/flipwatch serve
  go run ./cmd/flipwatch profile check config/screen/tw_flip.yaml`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&profilePath, "profile", "", "screening profile YAML (default: SCREEN_PROFILE or environment)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (LOG_LEVEL=debug)")
}

// loadConfig loads the environment config and applies global flags
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if profilePath != "" {
		cfg.Screening.ProfilePath = profilePath
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	return cfg, nil
}
