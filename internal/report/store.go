package report

import (
	"context"
	"sync"

	"github.com/wonny/flipwatch/internal/contracts"
)

// Source looks up finished reports
type Source interface {
	GetLatestReport(ctx context.Context) (*contracts.RunReport, error)
	GetReport(ctx context.Context, date contracts.SessionDate) (*contracts.RunReport, error)
}

// maxKept bounds the in-memory reports
const maxKept = 30

// Store keeps the reports produced by this process and falls back to an
// archive (optional) for anything older.
// ⭐ SSOT: 서버가 노출하는 최신 리포트는 여기서만
type Store struct {
	mu       sync.RWMutex
	latest   contracts.SessionDate
	byDate   map[contracts.SessionDate]contracts.RunReport
	order    []contracts.SessionDate
	fallback Source
}

// NewStore creates a Store. fallback may be nil.
func NewStore(fallback Source) *Store {
	return &Store{
		byDate:   make(map[contracts.SessionDate]contracts.RunReport),
		fallback: fallback,
	}
}

// Put records a finished report. Re-running a session replaces its entry.
func (s *Store) Put(r contracts.RunReport) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byDate[r.Date]; !exists {
		s.order = append(s.order, r.Date)
		if len(s.order) > maxKept {
			delete(s.byDate, s.order[0])
			s.order = s.order[1:]
		}
	}
	s.byDate[r.Date] = r

	s.latest = contracts.SessionDate{}
	for _, d := range s.order {
		if s.latest.IsZero() || d.Time().After(s.latest.Time()) {
			s.latest = d
		}
	}
}

// GetLatestReport returns the most recent session's report
func (s *Store) GetLatestReport(ctx context.Context) (*contracts.RunReport, error) {
	s.mu.RLock()
	r, ok := s.byDate[s.latest]
	s.mu.RUnlock()

	if ok {
		return &r, nil
	}
	if s.fallback != nil {
		return s.fallback.GetLatestReport(ctx)
	}
	return nil, contracts.ErrReportNotFound
}

// GetReport returns the report for date
func (s *Store) GetReport(ctx context.Context, date contracts.SessionDate) (*contracts.RunReport, error) {
	s.mu.RLock()
	r, ok := s.byDate[date]
	s.mu.RUnlock()

	if ok {
		return &r, nil
	}
	if s.fallback != nil {
		return s.fallback.GetReport(ctx, date)
	}
	return nil, contracts.ErrReportNotFound
}
