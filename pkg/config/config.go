package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultWatchList is the broker branch watch-list used when WATCH_LIST is not set.
// 城中幫 + 常見隔日沖 분점
var DefaultWatchList = []string{
	"凱基-城中",
	"統一-城中",
	"元大-城中",
	"凱基-台北",
	"凱基-松山",
	"富邦-建國",
	"美林",
	"摩根大通",
}

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server (report viewer)
	Port string
	Env  string // development, staging, production

	// Database (optional report archive)
	Database DatabaseConfig

	// Redis (optional gateway cache)
	Redis RedisConfig

	// External APIs
	FinMind FinMindConfig
	TWSE    TWSEConfig

	// MarketSource selects the market-wide gateway: finmind or twse
	MarketSource string

	// Session resolution
	Session SessionConfig

	// Screening thresholds and watch-list
	Screening ScreeningConfig

	// Broker-flow fetch pacing
	Flow FlowConfig

	// Report artifact
	Report ReportConfig

	// Schedule is the cron expression (with seconds) for the daily job
	Schedule string

	// Scheduler retry policy (write failures only)
	ScheduleMaxRetries int
	ScheduleRetryDelay time.Duration

	// Logging
	LogLevel  string
	LogFormat string

	// Monitoring
	MetricsEnabled bool
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// Enabled reports whether the archive database is configured
func (d DatabaseConfig) Enabled() bool {
	return d.URL != ""
}

// FinMindConfig holds FinMind open data API configuration
type FinMindConfig struct {
	Token   string // 없으면 익명 접근
	BaseURL string
}

// TWSEConfig holds Taiwan Stock Exchange site configuration
type TWSEConfig struct {
	BaseURL string
}

// SessionConfig defines how the trading session date is resolved
type SessionConfig struct {
	UTCOffsetHours int    // 고정 오프셋 (서머타임 없음)
	Cutoff         string // HH:MM, 데이터 공개 시각
}

// ScreeningConfig holds the tunable screening constants
type ScreeningConfig struct {
	LimitUpThreshold string // decimal, e.g. "0.098"
	NetBuyThreshold  int64  // lots
	WatchList        []string
	ProfilePath      string // optional YAML profile overriding the above
}

// FlowConfig controls the per-candidate broker-flow fetches
type FlowConfig struct {
	LotSize           int64
	Workers           int
	RequestsPerSecond float64
}

// ReportConfig controls the report artifact
type ReportConfig struct {
	Path   string
	Format string // html, json
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	// Try multiple paths for .env file
	loadEnvFile()

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "8089"),
		Env:  getEnv("ENV", "development"),

		// Database
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 4),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 1),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		// Redis
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		// External APIs
		FinMind: FinMindConfig{
			Token:   getEnv("FINMIND_TOKEN", ""),
			BaseURL: getEnv("FINMIND_BASE_URL", "https://api.finmindtrade.com/api/v4"),
		},

		TWSE: TWSEConfig{
			BaseURL: getEnv("TWSE_BASE_URL", "https://www.twse.com.tw"),
		},

		MarketSource: getEnv("MARKET_SOURCE", "finmind"),

		Session: SessionConfig{
			UTCOffsetHours: getEnvAsInt("MARKET_UTC_OFFSET_HOURS", 8),
			Cutoff:         getEnv("DATA_CUTOFF", "18:30"),
		},

		Screening: ScreeningConfig{
			LimitUpThreshold: getEnv("LIMIT_UP_THRESHOLD", "0.098"),
			NetBuyThreshold:  int64(getEnvAsInt("NET_BUY_THRESHOLD", 100)),
			WatchList:        getEnvAsList("WATCH_LIST", DefaultWatchList),
			ProfilePath:      getEnv("SCREEN_PROFILE", ""),
		},

		Flow: FlowConfig{
			LotSize:           int64(getEnvAsInt("FLOW_LOT_SIZE", 1000)),
			Workers:           getEnvAsInt("FLOW_WORKERS", 4),
			RequestsPerSecond: getEnvAsFloat("FLOW_RPS", 2),
		},

		Report: ReportConfig{
			Path:   getEnv("REPORT_PATH", "index.html"),
			Format: getEnv("REPORT_FORMAT", "html"),
		},

		// 평일 18:35 (데이터 공개 18:30 이후)
		Schedule:           getEnv("SCHEDULE", "0 35 18 * * MON-FRI"),
		ScheduleMaxRetries: getEnvAsInt("SCHEDULE_MAX_RETRIES", 2),
		ScheduleRetryDelay: getEnvAsDuration("SCHEDULE_RETRY_DELAY", "5m"),

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		// Monitoring
		MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
	}

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if configuration values are usable
func (c *Config) validate() error {
	// Validate environment
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.MarketSource != "finmind" && c.MarketSource != "twse" {
		return fmt.Errorf("MARKET_SOURCE must be one of: finmind, twse")
	}

	if c.Report.Format != "html" && c.Report.Format != "json" {
		return fmt.Errorf("REPORT_FORMAT must be one of: html, json")
	}

	if c.Session.UTCOffsetHours < -12 || c.Session.UTCOffsetHours > 14 {
		return fmt.Errorf("MARKET_UTC_OFFSET_HOURS out of range: %d", c.Session.UTCOffsetHours)
	}

	if c.Flow.Workers <= 0 {
		return fmt.Errorf("FLOW_WORKERS must be > 0")
	}

	if c.Flow.RequestsPerSecond <= 0 {
		return fmt.Errorf("FLOW_RPS must be > 0")
	}

	if c.ScheduleMaxRetries < 0 {
		return fmt.Errorf("SCHEDULE_MAX_RETRIES must be >= 0")
	}

	if len(c.Screening.WatchList) == 0 {
		return fmt.Errorf("WATCH_LIST must not be empty")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	// Try paths in order of priority
	paths := []string{
		".env", // Current directory
	}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		// Fallback to default
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}

// getEnvAsList splits a comma-separated value, dropping blanks
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		out := make([]string, len(defaultValue))
		copy(out, defaultValue)
		return out
	}

	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
