package logger_test

import (
	"errors"

	"github.com/wonny/flipwatch/pkg/config"
	"github.com/wonny/flipwatch/pkg/logger"
)

// Example_basic demonstrates basic logger usage
func Example_basic() {
	cfg := &config.Config{
		Env:       "development",
		LogLevel:  "info",
		LogFormat: "console",
	}

	// Create logger (SSOT)
	log := logger.New(cfg)

	log.Debug("This won't appear (level is info)")
	log.Info("Screening started")
	log.Infof("Resolved session %s", "2024-01-15")
}

// Example_withFields demonstrates structured logging with fields
func Example_withFields() {
	cfg := &config.Config{
		Env:       "production",
		LogLevel:  "info",
		LogFormat: "json",
	}

	log := logger.New(cfg).WithModule("flow")

	log.WithFields(map[string]interface{}{
		"security_id": "2330",
		"broker":      "凱基-台北",
		"net_buy":     350,
	}).Info("Watch-listed broker net buy")

	// Output lines look like:
	// {"level":"info","service":"flipwatch","module":"flow","security_id":"2330",...}
}

// Example_withError demonstrates error logging
func Example_withError() {
	cfg := &config.Config{
		Env:       "production",
		LogLevel:  "error",
		LogFormat: "json",
	}

	log := logger.New(cfg)

	err := errors.New("finmind: status 402")
	log.WithError(err).
		WithField("security_id", "2603").
		Error("Broker flow fetch failed, candidate skipped")
}
