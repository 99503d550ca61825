package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/flipwatch/internal/contracts"
	"github.com/wonny/flipwatch/pkg/logger"
)

var (
	date = contracts.NewSessionDate(2024, time.June, 7)
	at   = time.Date(2024, time.June, 7, 10, 40, 0, 0, time.UTC)
)

func manyHits(n int) []contracts.Hit {
	hits := make([]contracts.Hit, n)
	for i := range hits {
		hits[i] = contracts.Hit{SecurityID: "2330", BrokerName: "B" + string(rune('a'+i%26)), NetBuy: int64(101 + i)}
	}
	return hits
}

func TestAssemble_Status(t *testing.T) {
	empty := Assemble(date, nil, at)
	assert.Equal(t, contracts.StatusNoActivity, empty.Status)
	assert.NotNil(t, empty.Hits)
	assert.Equal(t, "2024-06-07 無大戶鎖漲停跡象。", empty.Headline())

	withHits := Assemble(date, manyHits(1), at)
	assert.Equal(t, contracts.StatusHits, withHits.Status)
	assert.Equal(t, date, withHits.Date)
	assert.Equal(t, at, withHits.GeneratedAt)
}

func TestAssemble_NeverTruncatesAndKeepsOrder(t *testing.T) {
	hits := manyHits(500)

	r := Assemble(date, hits, at)

	require.Len(t, r.Hits, 500)
	assert.Equal(t, hits, r.Hits)
}

func TestAssemble_CopiesHits(t *testing.T) {
	hits := manyHits(2)
	r := Assemble(date, hits, at)

	hits[0].NetBuy = -1
	assert.Equal(t, int64(101), r.Hits[0].NetBuy)
}

func TestDiagnosticReports(t *testing.T) {
	nd := NoSessionData(date, at)
	assert.Equal(t, contracts.StatusNoSessionData, nd.Status)
	assert.Empty(t, nd.Hits)

	f := Failed(date, at, errors.New("finmind market: status 401: invalid token"))
	assert.Equal(t, contracts.StatusFailed, f.Status)
	assert.Contains(t, f.Diagnostic, "invalid token")
	assert.NotEqual(t, nd.Headline(), f.Headline(), "failure distinguishable from no data")
}

func TestComplete_SettlesStatus(t *testing.T) {
	transport := contracts.SkippedCandidate{SecurityID: "2222", Reason: contracts.SkipTransport, Error: "finmind broker_flow: status 401: unauthorized"}
	noData := contracts.SkippedCandidate{SecurityID: "3333", Reason: contracts.SkipNoData}

	tests := []struct {
		name       string
		hits       []contracts.Hit
		candidates []string
		skipped    []contracts.SkippedCandidate
		want       contracts.RunStatus
	}{
		{"nothing skipped", nil, []string{"1111"}, nil, contracts.StatusNoActivity},
		{"only missing data", nil, []string{"3333"}, []contracts.SkippedCandidate{noData}, contracts.StatusNoActivity},
		{"hits with a failure", manyHits(1), []string{"2330", "2222"}, []contracts.SkippedCandidate{transport}, contracts.StatusHits},
		{"some candidates failed", nil, []string{"1111", "2222"}, []contracts.SkippedCandidate{transport}, contracts.StatusPartial},
		{"every candidate failed", nil, []string{"2222"}, []contracts.SkippedCandidate{transport}, contracts.StatusFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Complete(Assemble(date, tt.hits, at), tt.candidates, tt.skipped)
			assert.Equal(t, tt.want, r.Status)
			assert.Equal(t, tt.candidates, r.Candidates)
		})
	}
}

func TestComplete_AllFailedIsNotNoActivity(t *testing.T) {
	skipped := []contracts.SkippedCandidate{
		{SecurityID: "1111", Reason: contracts.SkipTransport, Error: "status 401: unauthorized"},
		{SecurityID: "2222", Reason: contracts.SkipTransport, Error: "status 401: unauthorized"},
	}

	r := Complete(Assemble(date, nil, at), []string{"1111", "2222"}, skipped)

	assert.Equal(t, contracts.StatusFailed, r.Status)
	assert.Contains(t, r.Diagnostic, "all 2 candidates")
	assert.Contains(t, r.Diagnostic, "unauthorized")
	empty := Assemble(date, nil, at)
	assert.NotEqual(t, empty.Headline(), r.Headline())
}

func renderHTML(t *testing.T, r contracts.RunReport) *goquery.Document {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, HTMLRenderer{}.Render(&buf, &r))
	doc, err := goquery.NewDocumentFromReader(&buf)
	require.NoError(t, err)
	return doc
}

func TestHTMLRenderer_HitsTable(t *testing.T) {
	r := Assemble(date, []contracts.Hit{
		{SecurityID: "2330", BrokerName: "凱基-台北", NetBuy: 400},
		{SecurityID: "2603", BrokerName: "美林", NetBuy: 150},
	}, at)
	r.Params.WatchList = []string{"凱基-台北", "美林"}

	doc := renderHTML(t, r)

	var headings []string
	doc.Find("#hits thead th").Each(func(_ int, s *goquery.Selection) {
		headings = append(headings, s.Text())
	})
	assert.Equal(t, []string{"股票", "大戶分點", "買超張數"}, headings)

	rows := doc.Find("#hits tbody tr")
	require.Equal(t, 2, rows.Length())
	assert.Equal(t, "2330", rows.Eq(0).Find("td").Eq(0).Text())
	assert.Equal(t, "凱基-台北", rows.Eq(0).Find("td").Eq(1).Text())
	assert.Equal(t, "400", rows.Eq(0).Find("td").Eq(2).Text())
	assert.Equal(t, "美林", rows.Eq(1).Find("td").Eq(1).Text())

	assert.Contains(t, doc.Find("#headline").Text(), "2024-06-07 隔日沖大戶鎖漲停追蹤")
	assert.Contains(t, doc.Find("p.text-muted").First().Text(), "凱基-台北、美林")
}

func TestHTMLRenderer_NoActivity(t *testing.T) {
	doc := renderHTML(t, Assemble(date, nil, at))

	assert.Equal(t, 0, doc.Find("#hits").Length())
	assert.Contains(t, doc.Find("#status").Text(), "今日無大戶鎖漲停跡象。")
	assert.Equal(t, "no_activity", doc.Find("#status").AttrOr("data-status", ""))
}

func TestHTMLRenderer_DiagnosticStatuses(t *testing.T) {
	nd := renderHTML(t, NoSessionData(date, at))
	assert.Contains(t, nd.Find("#diagnostic").Text(), "查無交易資料")

	f := renderHTML(t, Failed(date, at, errors.New("bad token")))
	assert.Equal(t, "bad token", f.Find("#diagnostic").Text())
	assert.Contains(t, f.Find("#headline").Text(), "系統錯誤")
}

func TestHTMLRenderer_SkippedCandidates(t *testing.T) {
	r := Assemble(date, nil, at)
	r.Skipped = []contracts.SkippedCandidate{{SecurityID: "2222", Reason: contracts.SkipTransport}}

	doc := renderHTML(t, r)

	assert.Equal(t, 1, doc.Find("#skipped li").Length())
	assert.Contains(t, doc.Find("#skipped li").Text(), "2222: transport")
}

func TestHTMLRenderer_Partial(t *testing.T) {
	skipped := []contracts.SkippedCandidate{{SecurityID: "2222", Reason: contracts.SkipTransport, Error: "timeout"}}
	r := Complete(Assemble(date, nil, at), []string{"1111", "2222"}, skipped)

	doc := renderHTML(t, r)

	assert.Equal(t, "partial", doc.Find("#status").AttrOr("data-status", ""))
	assert.Equal(t, "1 of 2 candidates skipped", doc.Find("#diagnostic").Text())
	assert.NotContains(t, doc.Find("#status").Text(), "今日無大戶鎖漲停跡象。")
	assert.Contains(t, doc.Find("#headline").Text(), "結果不完整")
}

func TestHTMLRenderer_FooterUsesConfiguredCutoff(t *testing.T) {
	r := Assemble(date, nil, at)
	r.Params.Cutoff = "17:45"

	doc := renderHTML(t, r)

	assert.Contains(t, doc.Find("#note").Text(), "資料每日 17:45 自動更新")
	assert.NotContains(t, doc.Find("#note").Text(), "18:30")

	// 예전 리포트(공개 시각 미기록)는 문구 자체를 생략
	legacy := renderHTML(t, Assemble(date, nil, at))
	assert.NotContains(t, legacy.Find("#note").Text(), "自動更新")
}

func TestHTMLRenderer_EscapesUpstreamText(t *testing.T) {
	r := Assemble(date, []contracts.Hit{{SecurityID: "1", BrokerName: "<script>x</script>", NetBuy: 101}}, at)

	var buf bytes.Buffer
	require.NoError(t, HTMLRenderer{}.Render(&buf, &r))

	assert.NotContains(t, buf.String(), "<script>x")
}

func TestJSONRenderer(t *testing.T) {
	r := Assemble(date, manyHits(3), at)
	r.Candidates = []string{"2330"}

	var buf bytes.Buffer
	require.NoError(t, JSONRenderer{}.Render(&buf, &r))

	var decoded contracts.RunReport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, date, decoded.Date)
	assert.Equal(t, contracts.StatusHits, decoded.Status)
	assert.Len(t, decoded.Hits, 3)
	assert.True(t, strings.Contains(buf.String(), `"date": "2024-06-07"`))
}

func TestNewRenderer(t *testing.T) {
	html, err := NewRenderer("html")
	require.NoError(t, err)
	assert.Equal(t, "text/html; charset=utf-8", html.ContentType())

	js, err := NewRenderer("json")
	require.NoError(t, err)
	assert.Equal(t, "application/json", js.ContentType())

	_, err = NewRenderer("pdf")
	assert.Error(t, err)
}

type failingRenderer struct{}

func (failingRenderer) Render(_ io.Writer, _ *contracts.RunReport) error { return errors.New("boom") }
func (failingRenderer) ContentType() string                              { return "text/plain" }

func TestWriter_OverwritesAtomically(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "index.html")
	w := NewWriter(HTMLRenderer{}, logger.Nop())

	first := Assemble(date, manyHits(1), at)
	require.NoError(t, w.Write(path, &first))

	second := Assemble(date, nil, at)
	require.NoError(t, w.Write(path, &second))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "今日無大戶鎖漲停跡象。")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestWriter_FailedRenderKeepsPreviousArtifact(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "index.html")
	require.NoError(t, os.WriteFile(path, []byte("previous"), 0o644))

	r := Assemble(date, nil, at)
	err := NewWriter(failingRenderer{}, logger.Nop()).Write(path, &r)
	require.Error(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "previous", string(data))
}
