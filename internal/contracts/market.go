package contracts

import (
	"github.com/shopspring/decimal"
)

// ChangeKind tells which upstream field a QuoteChange was built from
type ChangeKind string

const (
	ChangeUnknown       ChangeKind = ""               // 변동 정보 없음 → 제외
	ChangePreviousClose ChangeKind = "previous_close" // 전일 종가
	ChangeRate          ChangeKind = "rate"           // 사전 계산된 등락률
)

// QuoteChange is the two-variant daily change representation.
// Gateways resolve whatever the upstream schema offers into one of the variants at ingestion;
// the zero value means the change is unknown and the row must be skipped.
type QuoteChange struct {
	Kind  ChangeKind      `json:"kind"`
	Value decimal.Decimal `json:"value"`
}

// PreviousCloseChange builds the previous-close variant
func PreviousCloseChange(previousClose decimal.Decimal) QuoteChange {
	return QuoteChange{Kind: ChangePreviousClose, Value: previousClose}
}

// RateChange builds the pre-computed rate variant (0.1 = +10%)
func RateChange(rate decimal.Decimal) QuoteChange {
	return QuoteChange{Kind: ChangeRate, Value: rate}
}

// Rate resolves the canonical change rate.
// ok is false when the rate cannot be derived: unknown change, non-positive previous close,
// or non-positive close for the previous-close variant.
func (q QuoteChange) Rate(close decimal.Decimal) (rate decimal.Decimal, ok bool) {
	switch q.Kind {
	case ChangeRate:
		return q.Value, true
	case ChangePreviousClose:
		if !q.Value.IsPositive() || !close.IsPositive() {
			return decimal.Zero, false
		}
		return close.Sub(q.Value).Div(q.Value), true
	default:
		return decimal.Zero, false
	}
}

// MarketRow is one security's daily quote
type MarketRow struct {
	SecurityID string          `json:"security_id"`
	Close      decimal.Decimal `json:"close"`
	Change     QuoteChange     `json:"change"`
}

// Rate is shorthand for r.Change.Rate(r.Close)
func (r MarketRow) Rate() (decimal.Decimal, bool) {
	return r.Change.Rate(r.Close)
}
