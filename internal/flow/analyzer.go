package flow

import (
	"github.com/wonny/flipwatch/internal/contracts"
)

// Analyze returns the watch-listed brokers whose net buy on candidateID exceeds threshold.
//
// Rows are filtered to the watch-list (and to candidateID when a row carries a security ID),
// summed per broker, and emitted in the order each broker first appears in rows.
// Volumes are taken as-is; use Analyzer with a LotSize to convert shares to lots.
func Analyze(candidateID string, rows []contracts.BrokerFlowRow, watchList contracts.WatchList, threshold int64) []contracts.Hit {
	return analyze(candidateID, rows, watchList, threshold, 1)
}

// Analyzer binds the run-wide watch-list and threshold
// ⭐ SSOT: 분점 순매수 판정 로직은 여기서만
type Analyzer struct {
	WatchList contracts.WatchList
	Threshold int64 // 張 (lots)

	// LotSize converts summed volumes to lots. The threshold is applied to the
	// unconverted net; the reported NetBuy is truncated to whole lots.
	// 0 or 1 means upstream already reports lots.
	LotSize int64
}

// NewAnalyzer creates an Analyzer
func NewAnalyzer(watchList contracts.WatchList, threshold, lotSize int64) *Analyzer {
	return &Analyzer{
		WatchList: watchList,
		Threshold: threshold,
		LotSize:   lotSize,
	}
}

// Analyze applies the analyzer's settings to one candidate's rows
func (a *Analyzer) Analyze(candidateID string, rows []contracts.BrokerFlowRow) []contracts.Hit {
	return analyze(candidateID, rows, a.WatchList, a.Threshold, a.LotSize)
}

func analyze(candidateID string, rows []contracts.BrokerFlowRow, watchList contracts.WatchList, threshold, lotSize int64) []contracts.Hit {
	hits := make([]contracts.Hit, 0)
	if len(rows) == 0 || watchList.Len() == 0 {
		return hits
	}

	// 가격대별 행을 분점 단위로 합산 (첫 등장 순서 유지)
	order := make([]string, 0)
	net := make(map[string]int64)
	for _, row := range rows {
		if row.SecurityID != "" && row.SecurityID != candidateID {
			continue
		}
		if !watchList.Contains(row.BrokerName) {
			continue
		}
		if _, seen := net[row.BrokerName]; !seen {
			order = append(order, row.BrokerName)
		}
		net[row.BrokerName] += row.NetBuy()
	}

	if lotSize < 1 {
		lotSize = 1
	}
	// 판정은 주(shares) 단위로: 절사 전에 비교해야 100.5張 > 100張이 살아남음
	limit := threshold * lotSize

	for _, broker := range order {
		value := net[broker]
		if value > limit {
			hits = append(hits, contracts.Hit{
				SecurityID: candidateID,
				BrokerName: broker,
				NetBuy:     value / lotSize,
			})
		}
	}

	return hits
}
