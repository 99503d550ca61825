package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	// Check defaults
	if cfg.Port != "8089" {
		t.Errorf("Expected Port to be 8089, got %s", cfg.Port)
	}

	if cfg.Env != "development" {
		t.Errorf("Expected Env to be development, got %s", cfg.Env)
	}

	if cfg.Session.UTCOffsetHours != 8 {
		t.Errorf("Expected UTC offset 8, got %d", cfg.Session.UTCOffsetHours)
	}

	if cfg.Session.Cutoff != "18:30" {
		t.Errorf("Expected cutoff 18:30, got %s", cfg.Session.Cutoff)
	}

	if cfg.Screening.LimitUpThreshold != "0.098" {
		t.Errorf("Expected limit-up threshold 0.098, got %s", cfg.Screening.LimitUpThreshold)
	}

	if cfg.Screening.NetBuyThreshold != 100 {
		t.Errorf("Expected net-buy threshold 100, got %d", cfg.Screening.NetBuyThreshold)
	}

	if len(cfg.Screening.WatchList) != len(DefaultWatchList) {
		t.Errorf("Expected %d watch-list entries, got %d", len(DefaultWatchList), len(cfg.Screening.WatchList))
	}

	if cfg.ScheduleMaxRetries != 2 || cfg.ScheduleRetryDelay != 5*time.Minute {
		t.Errorf("Expected retry policy 2 x 5m, got %d x %v", cfg.ScheduleMaxRetries, cfg.ScheduleRetryDelay)
	}

	if cfg.Database.Enabled() {
		t.Error("Expected archive database to be disabled without DATABASE_URL")
	}

	if cfg.Redis.Enabled {
		t.Error("Expected Redis to be disabled by default")
	}
}

func TestLoadWithCustomValues(t *testing.T) {
	os.Setenv("ENV", "production")
	os.Setenv("FINMIND_TOKEN", "secret")
	os.Setenv("LIMIT_UP_THRESHOLD", "0.095")
	os.Setenv("NET_BUY_THRESHOLD", "50")
	os.Setenv("WATCH_LIST", "A-Branch, B-Branch ,,")
	os.Setenv("LOG_LEVEL", "debug")

	defer func() {
		os.Unsetenv("ENV")
		os.Unsetenv("FINMIND_TOKEN")
		os.Unsetenv("LIMIT_UP_THRESHOLD")
		os.Unsetenv("NET_BUY_THRESHOLD")
		os.Unsetenv("WATCH_LIST")
		os.Unsetenv("LOG_LEVEL")
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Env != "production" {
		t.Errorf("Expected Env to be production, got %s", cfg.Env)
	}

	if cfg.FinMind.Token != "secret" {
		t.Errorf("Expected token to be read, got %q", cfg.FinMind.Token)
	}

	if cfg.Screening.LimitUpThreshold != "0.095" {
		t.Errorf("Expected threshold 0.095, got %s", cfg.Screening.LimitUpThreshold)
	}

	if cfg.Screening.NetBuyThreshold != 50 {
		t.Errorf("Expected net-buy threshold 50, got %d", cfg.Screening.NetBuyThreshold)
	}

	if len(cfg.Screening.WatchList) != 2 || cfg.Screening.WatchList[1] != "B-Branch" {
		t.Errorf("Expected trimmed watch-list [A-Branch B-Branch], got %v", cfg.Screening.WatchList)
	}

	if cfg.LogLevel != "debug" {
		t.Errorf("Expected LogLevel to be debug, got %s", cfg.LogLevel)
	}
}

func TestValidateInvalidEnv(t *testing.T) {
	os.Setenv("ENV", "invalid")
	defer os.Unsetenv("ENV")

	_, err := Load()
	if err == nil {
		t.Error("Expected error when ENV is invalid, got nil")
	}
}

func TestValidateInvalidMarketSource(t *testing.T) {
	os.Setenv("MARKET_SOURCE", "bloomberg")
	defer os.Unsetenv("MARKET_SOURCE")

	_, err := Load()
	if err == nil {
		t.Error("Expected error when MARKET_SOURCE is invalid, got nil")
	}
}

func TestValidateInvalidReportFormat(t *testing.T) {
	os.Setenv("REPORT_FORMAT", "pdf")
	defer os.Unsetenv("REPORT_FORMAT")

	_, err := Load()
	if err == nil {
		t.Error("Expected error when REPORT_FORMAT is invalid, got nil")
	}
}

func TestValidateNegativeRetries(t *testing.T) {
	os.Setenv("SCHEDULE_MAX_RETRIES", "-1")
	defer os.Unsetenv("SCHEDULE_MAX_RETRIES")

	_, err := Load()
	if err == nil {
		t.Error("Expected error when SCHEDULE_MAX_RETRIES is negative, got nil")
	}
}

func TestGetEnvAsDuration(t *testing.T) {
	os.Setenv("TEST_DURATION", "2h")
	defer os.Unsetenv("TEST_DURATION")

	duration := getEnvAsDuration("TEST_DURATION", "1h")
	expected := 2 * time.Hour

	if duration != expected {
		t.Errorf("Expected duration to be %v, got %v", expected, duration)
	}
}

func TestGetEnvAsInt(t *testing.T) {
	os.Setenv("TEST_INT", "100")
	defer os.Unsetenv("TEST_INT")

	value := getEnvAsInt("TEST_INT", 50)
	if value != 100 {
		t.Errorf("Expected value to be 100, got %d", value)
	}
}

func TestGetEnvAsFloat(t *testing.T) {
	os.Setenv("TEST_FLOAT", "not-a-number")
	defer os.Unsetenv("TEST_FLOAT")

	value := getEnvAsFloat("TEST_FLOAT", 2.5)
	if value != 2.5 {
		t.Errorf("Expected fallback 2.5, got %v", value)
	}
}

func TestGetEnvAsBool(t *testing.T) {
	os.Setenv("TEST_BOOL", "true")
	defer os.Unsetenv("TEST_BOOL")

	value := getEnvAsBool("TEST_BOOL", false)
	if value != true {
		t.Errorf("Expected value to be true, got %v", value)
	}
}

func TestGetEnvAsListDefaultIsCopy(t *testing.T) {
	os.Unsetenv("TEST_LIST")

	list := getEnvAsList("TEST_LIST", DefaultWatchList)
	list[0] = "mutated"

	if DefaultWatchList[0] == "mutated" {
		t.Error("Expected default watch-list to be copied, not aliased")
	}
}
