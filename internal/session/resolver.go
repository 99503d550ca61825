package session

import (
	"fmt"
	"time"

	"github.com/wonny/flipwatch/internal/contracts"
)

// Cutoff is the local time of day after which the day's session data is assumed published
type Cutoff struct {
	Hour   int
	Minute int
}

// ParseCutoff parses "HH:MM" (24h)
func ParseCutoff(s string) (Cutoff, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return Cutoff{}, fmt.Errorf("invalid cutoff %q (want HH:MM): %w", s, err)
	}
	return Cutoff{Hour: t.Hour(), Minute: t.Minute()}, nil
}

func (c Cutoff) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// Resolver maps the current instant to the last completed trading session.
// The market uses a fixed UTC offset with no daylight saving.
// ⭐ SSOT: 분석 대상 세션 날짜 결정은 여기서만
type Resolver struct {
	zone   *time.Location
	cutoff Cutoff
}

// NewResolver creates a resolver for a market at UTC+offsetHours
func NewResolver(offsetHours int, cutoff Cutoff) *Resolver {
	name := fmt.Sprintf("UTC%+d", offsetHours)
	return &Resolver{
		zone:   time.FixedZone(name, offsetHours*3600),
		cutoff: cutoff,
	}
}

// Location is the market's fixed-offset zone
func (r *Resolver) Location() *time.Location {
	return r.zone
}

// Cutoff returns the configured publication cutoff
func (r *Resolver) Cutoff() Cutoff {
	return r.cutoff
}

// Resolve returns the session date to analyze. Pure and total.
//
// Before the cutoff the previous calendar day is used; at or after it, today.
// Weekend results roll back to Friday. Holidays surface downstream as no session data.
func (r *Resolver) Resolve(now time.Time) contracts.SessionDate {
	local := now.In(r.zone)
	date := contracts.SessionDateOf(local)

	cutoff := time.Date(local.Year(), local.Month(), local.Day(), r.cutoff.Hour, r.cutoff.Minute, 0, 0, r.zone)
	if local.Before(cutoff) {
		date = date.AddDays(-1)
	}

	return RollBackWeekend(date)
}

// RollBackWeekend maps Saturday to the prior Friday (-1) and Sunday to the prior Friday (-2)
func RollBackWeekend(date contracts.SessionDate) contracts.SessionDate {
	switch date.Weekday() {
	case time.Saturday:
		return date.AddDays(-1)
	case time.Sunday:
		return date.AddDays(-2)
	default:
		return date
	}
}
