package flow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/wonny/flipwatch/internal/contracts"
	"github.com/wonny/flipwatch/pkg/logger"
	"github.com/wonny/flipwatch/pkg/metrics"
)

// Fetch outcomes, also used as metric labels
const (
	OutcomeAnalyzed    = "analyzed"
	OutcomeEmpty       = "empty"
	OutcomeNoData      = "no_data"
	OutcomeTransport   = "transport"
	OutcomeCircuitOpen = "circuit_open"
)

// Config holds collector configuration
type Config struct {
	Workers           int           // Number of concurrent workers
	RequestsPerSecond float64       // 요청 간격 (0 = 제한 없음)
	BreakerFailures   uint32        // consecutive transport failures before the breaker opens
	BreakerTimeout    time.Duration // open → half-open
}

// DefaultConfig returns the collector defaults
func DefaultConfig() Config {
	return Config{
		Workers:           4,
		RequestsPerSecond: 2,
		BreakerFailures:   5,
		BreakerTimeout:    2 * time.Second,
	}
}

// breakerPoll bounds how long a worker sleeps before re-trying an open breaker
const breakerPoll = 100 * time.Millisecond

// Outcome is the merged result of one Collect call.
// Hits are grouped by candidate in candidate order, then by analyzer order.
type Outcome struct {
	Hits    []contracts.Hit
	Skipped []contracts.SkippedCandidate
}

// Collector fetches broker flow for every candidate and analyzes it
// ⭐ SSOT: 후보별 분점 수급 수집은 여기서만
type Collector struct {
	gateway  contracts.BrokerFlowGateway
	analyzer *Analyzer
	cfg      Config
	limiter  *rate.Limiter
	metrics  *metrics.Recorder
	logger   *logger.Logger
}

// NewCollector creates a new Collector instance. rec may be nil.
func NewCollector(
	gateway contracts.BrokerFlowGateway,
	analyzer *Analyzer,
	cfg Config,
	rec *metrics.Recorder,
	log *logger.Logger,
) *Collector {
	def := DefaultConfig()
	if cfg.Workers <= 0 {
		cfg.Workers = def.Workers
	}
	if cfg.BreakerFailures == 0 {
		cfg.BreakerFailures = def.BreakerFailures
	}
	if cfg.BreakerTimeout <= 0 {
		cfg.BreakerTimeout = def.BreakerTimeout
	}

	c := &Collector{
		gateway:  gateway,
		analyzer: analyzer,
		cfg:      cfg,
		metrics:  rec,
		logger:   log.WithModule("flow"),
	}

	if cfg.RequestsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	return c
}

// newBreaker builds the breaker for one Collect call.
// 실행 간 상태를 공유하지 않음: 매 실행은 닫힌 차단기로 시작
func (c *Collector) newBreaker() *gobreaker.CircuitBreaker {
	failures := c.cfg.BreakerFailures
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "broker_flow",
		MaxRequests: 1,
		Timeout:     c.cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		// 휴장/미공개는 장애가 아님
		IsSuccessful: func(err error) bool {
			return err == nil || contracts.IsNoSessionData(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.logger.WithFields(map[string]interface{}{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Circuit breaker state changed")
		},
	})
}

// candidateResult is one worker's output for the candidate at index
type candidateResult struct {
	index   int
	hits    []contracts.Hit
	skipped *contracts.SkippedCandidate
}

type job struct {
	index      int
	securityID string
}

// Collect fetches and analyzes every candidate with bounded concurrency.
// A failing candidate contributes zero hits and is recorded in Skipped; it never aborts the others.
// Output order follows candidates, never completion order.
func (c *Collector) Collect(ctx context.Context, date contracts.SessionDate, candidates []string) Outcome {
	out := Outcome{
		Hits:    make([]contracts.Hit, 0),
		Skipped: make([]contracts.SkippedCandidate, 0),
	}
	if len(candidates) == 0 {
		return out
	}

	workers := c.cfg.Workers
	if workers > len(candidates) {
		workers = len(candidates)
	}

	c.logger.WithFields(map[string]interface{}{
		"date":       date.String(),
		"candidates": len(candidates),
		"workers":    workers,
	}).Info("Starting broker flow collection")

	breaker := c.newBreaker()
	jobCh := make(chan job, len(candidates))
	resultCh := make(chan candidateResult, len(candidates))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			c.worker(ctx, workerID, breaker, date, jobCh, resultCh)
		}(i)
	}

	for i, id := range candidates {
		jobCh <- job{index: i, securityID: id}
	}
	close(jobCh)

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	// 완료 순서가 아닌 후보 순서로 병합
	ordered := make([]candidateResult, len(candidates))
	for res := range resultCh {
		ordered[res.index] = res
	}

	for _, res := range ordered {
		out.Hits = append(out.Hits, res.hits...)
		if res.skipped != nil {
			out.Skipped = append(out.Skipped, *res.skipped)
		}
	}

	c.logger.WithFields(map[string]interface{}{
		"candidates": len(candidates),
		"hits":       len(out.Hits),
		"skipped":    len(out.Skipped),
	}).Info("Broker flow collection completed")

	return out
}

// worker processes candidates until jobCh is drained
func (c *Collector) worker(ctx context.Context, workerID int, breaker *gobreaker.CircuitBreaker, date contracts.SessionDate, jobCh <-chan job, resultCh chan<- candidateResult) {
	for j := range jobCh {
		res := c.process(ctx, breaker, date, j)
		if res.skipped != nil {
			c.logger.WithFields(map[string]interface{}{
				"worker":      workerID,
				"security_id": j.securityID,
				"reason":      string(res.skipped.Reason),
				"error":       res.skipped.Error,
			}).Warn("Skipped candidate")
		}
		resultCh <- res
	}
}

func (c *Collector) process(ctx context.Context, breaker *gobreaker.CircuitBreaker, date contracts.SessionDate, j job) candidateResult {
	res := candidateResult{index: j.index, hits: []contracts.Hit{}}

	if err := ctx.Err(); err != nil {
		res.skipped = c.skip(j.securityID, contracts.SkipTransport, err, OutcomeTransport)
		return res
	}

	// 차단기가 열려도 후보를 버리지 않음: 반개방까지 기다렸다가 다시 시도
	pause := breakerPoll
	if c.cfg.BreakerTimeout < pause {
		pause = c.cfg.BreakerTimeout
	}

	var value interface{}
	var err error
	for {
		// 토큰은 실제 호출에만 사용
		value, err = breaker.Execute(func() (interface{}, error) {
			if c.limiter != nil {
				if werr := c.limiter.Wait(ctx); werr != nil {
					return nil, werr
				}
			}
			return c.gateway.FetchBrokerFlow(ctx, j.securityID, date)
		})
		if !errors.Is(err, gobreaker.ErrOpenState) && !errors.Is(err, gobreaker.ErrTooManyRequests) {
			break
		}

		select {
		case <-ctx.Done():
			res.skipped = c.skip(j.securityID, contracts.SkipCircuitOpen,
				fmt.Errorf("%v: %w", err, ctx.Err()), OutcomeCircuitOpen)
			return res
		case <-time.After(pause):
		}
	}

	switch {
	case err == nil:
	case contracts.IsNoSessionData(err):
		res.skipped = c.skip(j.securityID, contracts.SkipNoData, err, OutcomeNoData)
		return res
	default:
		res.skipped = c.skip(j.securityID, contracts.SkipTransport, err, OutcomeTransport)
		return res
	}

	rows, ok := value.([]contracts.BrokerFlowRow)
	if !ok && value != nil {
		res.skipped = c.skip(j.securityID, contracts.SkipTransport,
			fmt.Errorf("unexpected broker flow payload %T", value), OutcomeTransport)
		return res
	}

	// 빈 결과는 적중 0건이지 건너뜀이 아님
	if len(rows) == 0 {
		c.metrics.RecordFlowFetch(OutcomeEmpty)
		return res
	}

	res.hits = c.analyzer.Analyze(j.securityID, rows)
	c.metrics.RecordFlowFetch(OutcomeAnalyzed)

	c.logger.WithFields(map[string]interface{}{
		"security_id": j.securityID,
		"rows":        len(rows),
		"hits":        len(res.hits),
	}).Debug("Analyzed broker flow")

	return res
}

func (c *Collector) skip(securityID string, reason contracts.SkipReason, err error, outcome string) *contracts.SkippedCandidate {
	c.metrics.RecordFlowFetch(outcome)
	s := &contracts.SkippedCandidate{
		SecurityID: securityID,
		Reason:     reason,
	}
	if err != nil {
		s.Error = err.Error()
	}
	return s
}
