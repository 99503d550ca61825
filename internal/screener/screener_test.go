package screener

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/wonny/flipwatch/internal/contracts"
	"github.com/wonny/flipwatch/pkg/logger"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func prevRow(id, close, prev string) contracts.MarketRow {
	return contracts.MarketRow{
		SecurityID: id,
		Close:      d(close),
		Change:     contracts.PreviousCloseChange(d(prev)),
	}
}

func rateRow(id, rate string) contracts.MarketRow {
	return contracts.MarketRow{
		SecurityID: id,
		Close:      d("10"),
		Change:     contracts.RateChange(d(rate)),
	}
}

func TestScreen_ThresholdExamples(t *testing.T) {
	threshold := d("0.098")

	assert.Equal(t, []string{"A"}, Screen([]contracts.MarketRow{prevRow("A", "110", "100")}, threshold))
	assert.Empty(t, Screen([]contracts.MarketRow{prevRow("B", "109", "100")}, threshold))
}

func TestScreen_InclusiveAtThreshold(t *testing.T) {
	rows := []contracts.MarketRow{
		rateRow("EQ", "0.098"),
		rateRow("JUST_BELOW", "0.0979"),
	}
	assert.Equal(t, []string{"EQ"}, Screen(rows, d("0.098")))
}

func TestScreen_ZeroPreviousCloseNeverIncluded(t *testing.T) {
	rows := []contracts.MarketRow{
		prevRow("ZERO1", "110", "0"),
		prevRow("ZERO2", "999999", "0"),
		prevRow("ZERO3", "0", "0"),
		prevRow("OK", "55", "50"),
	}

	got := Screen(rows, d("0.098"))
	assert.Equal(t, []string{"OK"}, got)
	// even a negative threshold must not let an unusable row through
	assert.Equal(t, []string{"OK"}, Screen(rows, d("-1")))
}

func TestScreen_UnknownChangeSkipped(t *testing.T) {
	rows := []contracts.MarketRow{
		{SecurityID: "NO_CHANGE", Close: d("110")},
		rateRow("GIVEN", "0.1"),
	}
	assert.Equal(t, []string{"GIVEN"}, Screen(rows, d("0.098")))
}

func TestScreen_PreservesInputOrder(t *testing.T) {
	rows := []contracts.MarketRow{
		rateRow("3", "0.099"),
		rateRow("1", "0.1"),
		rateRow("skip", "0.01"),
		prevRow("2", "11", "10"),
	}

	// no re-sorting by magnitude
	assert.Equal(t, []string{"3", "1", "2"}, Screen(rows, d("0.098")))
}

func TestScreen_MixedVariants(t *testing.T) {
	rows := []contracts.MarketRow{
		prevRow("P", "110", "100"),
		rateRow("R", "0.0995"),
		prevRow("N", "90", "100"),
	}
	assert.Equal(t, []string{"P", "R"}, Screen(rows, d("0.098")))
}

func TestScreen_EmptyInput(t *testing.T) {
	got := Screen(nil, d("0.098"))
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestScreener_ResultAccounting(t *testing.T) {
	s := NewScreener(d("0.098"), logger.Nop())
	rows := []contracts.MarketRow{
		prevRow("A", "110", "100"),
		prevRow("B", "109", "100"),
		prevRow("C", "110", "0"),
		{SecurityID: "D", Close: d("10")},
		rateRow("E", "0.1"),
	}

	res := s.Screen(rows)
	assert.Equal(t, []string{"A", "E"}, res.Candidates)
	assert.Equal(t, 5, res.Total)
	assert.Equal(t, 2, res.Unusable)
	assert.Equal(t, 1, res.Below)
	assert.Equal(t, Screen(rows, s.Threshold()), res.Candidates, "struct and pure form agree")
}
