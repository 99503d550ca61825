package contracts

import (
	"encoding/json"
	"fmt"
	"time"
)

const sessionDateLayout = "2006-01-02"

// SessionDate is a trading-session calendar date without a time component.
// Values are immutable and compared with ==.
// ⭐ SSOT: 세션 날짜 표현은 여기서만
type SessionDate struct {
	year  int
	month time.Month
	day   int
}

// NewSessionDate normalizes y/m/d (e.g. Jan 32 → Feb 1) into a SessionDate
func NewSessionDate(year int, month time.Month, day int) SessionDate {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return SessionDate{year: t.Year(), month: t.Month(), day: t.Day()}
}

// SessionDateOf takes the civil date of t in t's own location
func SessionDateOf(t time.Time) SessionDate {
	return SessionDate{year: t.Year(), month: t.Month(), day: t.Day()}
}

// ParseSessionDate parses "2006-01-02"
func ParseSessionDate(s string) (SessionDate, error) {
	t, err := time.Parse(sessionDateLayout, s)
	if err != nil {
		return SessionDate{}, fmt.Errorf("invalid session date %q: %w", s, err)
	}
	return SessionDateOf(t), nil
}

// IsZero reports whether d is the zero value
func (d SessionDate) IsZero() bool {
	return d.year == 0 && d.month == 0 && d.day == 0
}

// Time returns midnight UTC of the date
func (d SessionDate) Time() time.Time {
	return time.Date(d.year, d.month, d.day, 0, 0, 0, 0, time.UTC)
}

// AddDays returns the date n calendar days away
func (d SessionDate) AddDays(n int) SessionDate {
	return NewSessionDate(d.year, d.month, d.day+n)
}

// Weekday of the date
func (d SessionDate) Weekday() time.Weekday {
	return d.Time().Weekday()
}

// IsWeekend reports Saturday or Sunday
func (d SessionDate) IsWeekend() bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// String renders "2006-01-02"
func (d SessionDate) String() string {
	return d.Time().Format(sessionDateLayout)
}

// Compact renders "20060102" (TWSE query format)
func (d SessionDate) Compact() string {
	return d.Time().Format("20060102")
}

// MarshalJSON encodes the date as "2006-01-02"
func (d SessionDate) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON decodes "2006-01-02"
func (d *SessionDate) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseSessionDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
