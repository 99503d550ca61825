package screenconfig

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/wonny/flipwatch/internal/contracts"
)

// Config는 스크리닝 프로필 전체 설정
// Pointer fields distinguish "not set" (default applied) from an explicit zero.
type Config struct {
	Meta      Meta      `yaml:"meta" json:"meta"`
	Session   Session   `yaml:"session" json:"session"`
	Screening Screening `yaml:"screening" json:"screening"`
	Flow      Flow      `yaml:"flow" json:"flow"`
}

// Meta 메타 정보
type Meta struct {
	ProfileID   string `yaml:"profile_id" json:"profile_id" validate:"required"`
	Version     string `yaml:"version" json:"version" default:"1"`
	Description string `yaml:"description" json:"description"`
}

// Session 거래일 판정
type Session struct {
	UTCOffsetHours *int   `yaml:"utc_offset_hours" json:"utc_offset_hours" default:"8" validate:"required,gte=-12,lte=14"`
	Cutoff         string `yaml:"cutoff" json:"cutoff" default:"18:30" validate:"required"` // HH:MM
}

// Screening 漲停 판정
type Screening struct {
	LimitUpThreshold string `yaml:"limit_up_threshold" json:"limit_up_threshold" default:"0.098" validate:"required"`
}

// Flow 분점 수급 판정
type Flow struct {
	NetBuyThreshold *int64   `yaml:"net_buy_threshold" json:"net_buy_threshold" default:"100" validate:"required,gte=0"` // 張
	LotSize         int64    `yaml:"lot_size" json:"lot_size" default:"1000" validate:"gte=1"`
	WatchList       []string `yaml:"watch_list" json:"watch_list" validate:"required,min=1,dive,required"`
}

// UTCOffset returns the session offset in hours
func (c *Config) UTCOffset() int {
	if c.Session.UTCOffsetHours == nil {
		return 8
	}
	return *c.Session.UTCOffsetHours
}

// NetBuyThreshold returns the net-buy threshold in lots
func (c *Config) NetBuyThreshold() int64 {
	if c.Flow.NetBuyThreshold == nil {
		return 100
	}
	return *c.Flow.NetBuyThreshold
}

// LimitUpThreshold parses the threshold. Validate guarantees it parses.
func (c *Config) LimitUpThreshold() decimal.Decimal {
	d, err := decimal.NewFromString(c.Screening.LimitUpThreshold)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// WatchList builds the immutable watch-list
func (c *Config) WatchList() contracts.WatchList {
	return contracts.NewWatchList(c.Flow.WatchList...)
}

// ProfileSnapshot 프로필 스냅샷 (재현성용)
type ProfileSnapshot struct {
	ProfileHash string    `json:"profile_hash"`
	ProfileYAML string    `json:"profile_yaml"`
	ProfileID   string    `json:"profile_id"`
	CreatedAt   time.Time `json:"created_at"`
}
