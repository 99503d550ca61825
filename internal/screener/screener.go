package screener

import (
	"github.com/shopspring/decimal"

	"github.com/wonny/flipwatch/internal/contracts"
	"github.com/wonny/flipwatch/pkg/logger"
)

// Screen returns the security IDs whose change rate is >= threshold, in input order.
// Rows whose rate cannot be resolved are skipped, never guessed.
func Screen(rows []contracts.MarketRow, threshold decimal.Decimal) []string {
	candidates := make([]string, 0)
	for _, row := range rows {
		rate, ok := row.Rate()
		if !ok {
			continue
		}
		if rate.GreaterThanOrEqual(threshold) {
			candidates = append(candidates, row.SecurityID)
		}
	}
	return candidates
}

// Screener implements the limit-up screen over the market-wide quotes
// ⭐ SSOT: 漲停 후보 스크리닝 로직은 여기서만
type Screener struct {
	threshold decimal.Decimal
	logger    *logger.Logger
}

// Result is the candidate list plus row accounting for diagnostics
type Result struct {
	Candidates []string
	Total      int // 입력 행 수
	Unusable   int // 등락률 산출 불가로 제외
	Below      int // 기준 미달
}

// NewScreener creates a screener with a run-wide threshold (0.098 = 9.8%)
func NewScreener(threshold decimal.Decimal, log *logger.Logger) *Screener {
	return &Screener{
		threshold: threshold,
		logger:    log.WithModule("screener"),
	}
}

// Threshold returns the configured limit-up threshold
func (s *Screener) Threshold() decimal.Decimal {
	return s.threshold
}

// Screen applies the limit-up filter and logs a summary
func (s *Screener) Screen(rows []contracts.MarketRow) Result {
	res := Result{
		Candidates: make([]string, 0),
		Total:      len(rows),
	}

	for _, row := range rows {
		rate, ok := row.Rate()
		if !ok {
			res.Unusable++
			s.logger.WithFields(map[string]interface{}{
				"security_id": row.SecurityID,
				"change_kind": string(row.Change.Kind),
			}).Debug("Skipping row with unusable change data")
			continue
		}
		if rate.LessThan(s.threshold) {
			res.Below++
			continue
		}
		res.Candidates = append(res.Candidates, row.SecurityID)
	}

	s.logger.WithFields(map[string]interface{}{
		"total_input": res.Total,
		"candidates":  len(res.Candidates),
		"unusable":    res.Unusable,
		"below":       res.Below,
		"threshold":   s.threshold.String(),
	}).Info("Limit-up screening completed")

	return res
}
