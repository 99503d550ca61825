package contracts

import "time"

// RunStatus is the terminal state of a screening run
type RunStatus string

const (
	StatusHits          RunStatus = "hits"            // 적중 있음
	StatusNoActivity    RunStatus = "no_activity"     // 정상 완료, 적중 없음
	StatusPartial       RunStatus = "partial"         // 적중 없음, 일부 후보 조회 실패
	StatusNoSessionData RunStatus = "no_session_data" // 휴장/미공개
	StatusFailed        RunStatus = "failed"          // 시스템/인증 오류
)

// SkipReason explains why a candidate contributed no hits
type SkipReason string

const (
	SkipNoData      SkipReason = "no_data"
	SkipTransport   SkipReason = "transport"
	SkipCircuitOpen SkipReason = "circuit_open"
)

// SkippedCandidate is a limit-up candidate whose broker flow could not be analyzed
type SkippedCandidate struct {
	SecurityID string     `json:"security_id"`
	Reason     SkipReason `json:"reason"`
	Error      string     `json:"error,omitempty"`
}

// RunParams records the tunables a report was produced with
type RunParams struct {
	MarketSource     string   `json:"market_source"`
	LimitUpThreshold string   `json:"limit_up_threshold"`
	NetBuyThreshold  int64    `json:"net_buy_threshold"`
	WatchList        []string `json:"watch_list"`
	Cutoff           string   `json:"cutoff,omitempty"` // HH:MM 데이터 공개 시각
	ProfileHash      string   `json:"profile_hash,omitempty"`
}

// RunReport is the terminal artifact of a run, handed to rendering.
// Hits keep emission order and are never truncated.
// ⭐ SSOT: 리포트 구조는 여기서만
type RunReport struct {
	Date        SessionDate        `json:"date"`
	GeneratedAt time.Time          `json:"generated_at"`
	Status      RunStatus          `json:"status"`
	Hits        []Hit              `json:"hits"`
	Candidates  []string           `json:"candidates"`
	Skipped     []SkippedCandidate `json:"skipped,omitempty"`
	Diagnostic  string             `json:"diagnostic,omitempty"`
	Params      RunParams          `json:"params"`
}

// Partial reports whether some candidates were skipped
func (r *RunReport) Partial() bool {
	return len(r.Skipped) > 0
}

// Failure reports whether the skip came from the fetch path rather than missing data
func (s SkippedCandidate) Failure() bool {
	return s.Reason == SkipTransport || s.Reason == SkipCircuitOpen
}

// Headline is the user-visible one-line summary for the status
func (r *RunReport) Headline() string {
	switch r.Status {
	case StatusHits:
		return r.Date.String() + " 隔日沖大戶鎖漲停追蹤"
	case StatusNoActivity:
		return r.Date.String() + " 無大戶鎖漲停跡象。"
	case StatusPartial:
		return r.Date.String() + " 部分個股分點資料無法取得，結果不完整"
	case StatusNoSessionData:
		return r.Date.String() + " 查無交易資料（非交易日或尚未更新）"
	case StatusFailed:
		return r.Date.String() + " 系統錯誤：資料來源或憑證異常"
	default:
		return string(r.Status)
	}
}
