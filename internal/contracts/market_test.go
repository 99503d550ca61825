package contracts

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestQuoteChange_Rate(t *testing.T) {
	tests := []struct {
		name     string
		close    string
		change   QuoteChange
		wantRate string
		wantOK   bool
	}{
		{"previous close +10%", "110", PreviousCloseChange(dec("100")), "0.1", true},
		{"previous close -5%", "95", PreviousCloseChange(dec("100")), "-0.05", true},
		{"given rate used directly", "0", RateChange(dec("0.0987")), "0.0987", true},
		{"zero previous close", "110", PreviousCloseChange(decimal.Zero), "0", false},
		{"negative previous close", "110", PreviousCloseChange(dec("-1")), "0", false},
		{"zero close", "0", PreviousCloseChange(dec("100")), "0", false},
		{"unknown change", "110", QuoteChange{}, "0", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rate, ok := tt.change.Rate(dec(tt.close))
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.True(t, rate.Equal(dec(tt.wantRate)), "rate = %s, want %s", rate, tt.wantRate)
			}
		})
	}
}

func TestMarketRow_JSONKeepsVariant(t *testing.T) {
	row := MarketRow{
		SecurityID: "2330",
		Close:      dec("110"),
		Change:     PreviousCloseChange(dec("100")),
	}

	data, err := json.Marshal(row)
	require.NoError(t, err)

	var decoded MarketRow
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, ChangePreviousClose, decoded.Change.Kind)
	rate, ok := decoded.Rate()
	require.True(t, ok)
	assert.True(t, rate.Equal(dec("0.1")))
}
