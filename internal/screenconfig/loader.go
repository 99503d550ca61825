package screenconfig

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"

	"github.com/wonny/flipwatch/pkg/config"
)

// Load reads a YAML profile and returns Config with raw bytes
// SSOT 핵심: KnownFields(true)로 오타/미사용 필드 즉시 실패
func Load(path string) (*Config, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, data, err
	}
	return cfg, data, nil
}

// Parse decodes, applies defaults and validates a YAML profile
func Parse(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true) // 알 수 없는 필드 발견 시 에러 반환
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}

	if err := defaults.Set(&cfg); err != nil {
		return nil, fmt.Errorf("apply profile defaults: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// FromEnv builds the profile from environment settings (no YAML profile given)
func FromEnv(cfg *config.Config) (*Config, error) {
	offset := cfg.Session.UTCOffsetHours
	netBuy := cfg.Screening.NetBuyThreshold

	p := &Config{
		Meta: Meta{
			ProfileID:   "env",
			Description: "built from environment",
		},
		Session: Session{
			UTCOffsetHours: &offset,
			Cutoff:         cfg.Session.Cutoff,
		},
		Screening: Screening{
			LimitUpThreshold: cfg.Screening.LimitUpThreshold,
		},
		Flow: Flow{
			NetBuyThreshold: &netBuy,
			LotSize:         cfg.Flow.LotSize,
			WatchList:       append([]string(nil), cfg.Screening.WatchList...),
		},
	}

	if err := defaults.Set(p); err != nil {
		return nil, fmt.Errorf("apply profile defaults: %w", err)
	}
	if err := Validate(p); err != nil {
		return nil, err
	}
	return p, nil
}

// Resolve returns the YAML profile when a path is configured, else the environment profile
func Resolve(cfg *config.Config) (*Config, []byte, error) {
	if cfg.Screening.ProfilePath != "" {
		return Load(cfg.Screening.ProfilePath)
	}
	p, err := FromEnv(cfg)
	return p, nil, err
}

// Hash generates SHA256 hash from Config (canonical JSON)
// 주의: map 대신 struct 사용으로 해시 재현성 보장
func Hash(cfg *Config) (string, error) {
	jsonBytes, err := json.Marshal(cfg)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(jsonBytes)
	return hex.EncodeToString(sum[:]), nil
}

// NewProfileSnapshot creates a snapshot for the report archive
func NewProfileSnapshot(cfg *Config, yamlData []byte, now time.Time) (*ProfileSnapshot, error) {
	hash, err := Hash(cfg)
	if err != nil {
		return nil, err
	}

	return &ProfileSnapshot{
		ProfileHash: hash,
		ProfileYAML: string(yamlData),
		ProfileID:   cfg.Meta.ProfileID,
		CreatedAt:   now,
	}, nil
}
