package contracts

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNoSessionData(t *testing.T) {
	err := NoSessionData("finmind", NewSessionDate(2024, time.February, 8))

	assert.True(t, IsNoSessionData(err))
	assert.False(t, IsGatewayError(err))
	assert.Contains(t, err.Error(), "2024-02-08")
}

func TestGatewayError(t *testing.T) {
	inner := errors.New("connection reset")
	err := fmt.Errorf("fetch market: %w", &GatewayError{Source: "finmind", Op: "market", StatusCode: 402, Err: inner})

	assert.True(t, IsGatewayError(err))
	assert.False(t, IsNoSessionData(err), "transport failure must stay distinct from no data")
	assert.True(t, errors.Is(err, inner))
	assert.Contains(t, err.Error(), "status 402")
}

func TestRunReport_Headline(t *testing.T) {
	date := NewSessionDate(2024, time.January, 15)

	tests := []struct {
		status RunStatus
		want   string
	}{
		{StatusHits, "2024-01-15 隔日沖大戶鎖漲停追蹤"},
		{StatusNoActivity, "2024-01-15 無大戶鎖漲停跡象。"},
		{StatusPartial, "2024-01-15 部分個股分點資料無法取得，結果不完整"},
		{StatusNoSessionData, "2024-01-15 查無交易資料（非交易日或尚未更新）"},
		{StatusFailed, "2024-01-15 系統錯誤：資料來源或憑證異常"},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			r := RunReport{Date: date, Status: tt.status}
			assert.Equal(t, tt.want, r.Headline())
		})
	}

	// every status must be distinguishable
	seen := map[string]bool{}
	for _, tt := range tests {
		r := RunReport{Date: date, Status: tt.status}
		assert.False(t, seen[r.Headline()])
		seen[r.Headline()] = true
	}
}

func TestRunReport_Partial(t *testing.T) {
	r := RunReport{}
	assert.False(t, r.Partial())

	r.Skipped = []SkippedCandidate{{SecurityID: "2603", Reason: SkipTransport}}
	assert.True(t, r.Partial())
}
