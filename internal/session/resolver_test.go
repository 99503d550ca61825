package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var taipei = time.FixedZone("Asia/Taipei", 8*3600)

func newTestResolver(t *testing.T) *Resolver {
	t.Helper()
	cutoff, err := ParseCutoff("18:30")
	require.NoError(t, err)
	return NewResolver(8, cutoff)
}

func TestResolve_Examples(t *testing.T) {
	r := newTestResolver(t)

	tests := []struct {
		name string
		now  time.Time
		want string
	}{
		// 2024-01-15 is a Monday
		{"monday morning rolls back to friday", time.Date(2024, 1, 15, 10, 0, 0, 0, taipei), "2024-01-12"},
		{"monday evening is monday", time.Date(2024, 1, 15, 19, 0, 0, 0, taipei), "2024-01-15"},
		{"exactly at cutoff is today", time.Date(2024, 1, 16, 18, 30, 0, 0, taipei), "2024-01-16"},
		{"one nanosecond before cutoff is yesterday", time.Date(2024, 1, 16, 18, 29, 59, 999999999, taipei), "2024-01-15"},
		{"midnight tuesday is monday", time.Date(2024, 1, 16, 0, 0, 0, 0, taipei), "2024-01-15"},
		{"saturday evening rolls back one day", time.Date(2024, 1, 13, 20, 0, 0, 0, taipei), "2024-01-12"},
		{"sunday evening rolls back two days", time.Date(2024, 1, 14, 20, 0, 0, 0, taipei), "2024-01-12"},
		{"sunday morning is saturday, rolls back to friday", time.Date(2024, 1, 14, 9, 0, 0, 0, taipei), "2024-01-12"},
		{"saturday morning is friday", time.Date(2024, 1, 13, 9, 0, 0, 0, taipei), "2024-01-12"},
		{"first of month before cutoff crosses month", time.Date(2024, 3, 1, 8, 0, 0, 0, taipei), "2024-02-29"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Resolve(tt.now).String())
		})
	}
}

func TestResolve_ConvertsFromUTC(t *testing.T) {
	r := newTestResolver(t)

	// 10:30 UTC Monday = 18:30 Taipei Monday (cutoff, inclusive)
	assert.Equal(t, "2024-01-15", r.Resolve(time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)).String())
	// 10:29 UTC Monday = 18:29 Taipei → Sunday → Friday
	assert.Equal(t, "2024-01-12", r.Resolve(time.Date(2024, 1, 15, 10, 29, 0, 0, time.UTC)).String())
	// 20:00 UTC Sunday = 04:00 Taipei Monday → before cutoff → Sunday → Friday
	assert.Equal(t, "2024-01-12", r.Resolve(time.Date(2024, 1, 14, 20, 0, 0, 0, time.UTC)).String())
}

func TestResolve_NeverWeekendAndCutoffProperty(t *testing.T) {
	r := newTestResolver(t)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, taipei)

	// every 17 minutes across five weeks
	for now := start; now.Before(start.AddDate(0, 0, 35)); now = now.Add(17 * time.Minute) {
		got := r.Resolve(now)
		require.False(t, got.IsWeekend(), "resolved weekend %s for %s", got, now)

		local := now.In(taipei)
		cutoff := time.Date(local.Year(), local.Month(), local.Day(), 18, 30, 0, 0, taipei)
		base := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
		if local.Before(cutoff) {
			base = base.AddDate(0, 0, -1)
		}
		switch base.Weekday() {
		case time.Saturday:
			base = base.AddDate(0, 0, -1)
		case time.Sunday:
			base = base.AddDate(0, 0, -2)
		}
		require.Equal(t, base.Format("2006-01-02"), got.String(), "now=%s", now)
	}
}

func TestResolve_IsPure(t *testing.T) {
	r := newTestResolver(t)
	now := time.Date(2024, 1, 17, 12, 0, 0, 0, taipei)
	assert.Equal(t, r.Resolve(now), r.Resolve(now))
}

func TestParseCutoff(t *testing.T) {
	c, err := ParseCutoff("18:30")
	require.NoError(t, err)
	assert.Equal(t, Cutoff{Hour: 18, Minute: 30}, c)
	assert.Equal(t, "18:30", c.String())

	for _, bad := range []string{"", "25:00", "18h30", "6:3"} {
		_, err := ParseCutoff(bad)
		assert.Error(t, err, bad)
	}
}
