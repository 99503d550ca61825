package twse

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/wonny/flipwatch/internal/contracts"
	"github.com/wonny/flipwatch/pkg/httputil"
	"github.com/wonny/flipwatch/pkg/logger"
)

// Source is the provider name used in errors, cache keys and metrics
const Source = "twse"

// DefaultBaseURL is the Taiwan Stock Exchange site root
const DefaultBaseURL = "https://www.twse.com.tw"

const dailyQuotesPath = "/rwd/zh/afterTrading/MI_INDEX"

// Client fetches market-wide daily quotes from the TWSE after-trading pages
// ⭐ SSOT: TWSE 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
}

var _ contracts.MarketDataGateway = (*Client)(nil)

// NewClient creates a new TWSE client
func NewClient(httpClient *httputil.Client, baseURL string, log *logger.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: httpClient,
		logger:     log.WithModule("twse"),
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// fetchHTML fetches the daily quotes page for date
func (c *Client) fetchHTML(ctx context.Context, date contracts.SessionDate) (string, error) {
	params := url.Values{}
	params.Set("response", "html")
	params.Set("type", "ALLBUT0999") // 전 종목 (권증 제외)
	params.Set("date", date.Compact())

	fullURL := fmt.Sprintf("%s%s?%s", c.baseURL, dailyQuotesPath, params.Encode())

	resp, err := c.httpClient.Get(ctx, fullURL)
	if err != nil {
		return "", &contracts.GatewayError{Source: Source, Op: "market", Err: fmt.Errorf("HTTP request failed: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &contracts.GatewayError{Source: Source, Op: "market", StatusCode: resp.StatusCode, Err: fmt.Errorf("unexpected status code: %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &contracts.GatewayError{Source: Source, Op: "market", StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	return string(body), nil
}

// FetchMarket fetches every listed security's daily quote for date.
// A page without the quotes table means the exchange has no session for date.
func (c *Client) FetchMarket(ctx context.Context, date contracts.SessionDate) ([]contracts.MarketRow, error) {
	html, err := c.fetchHTML(ctx, date)
	if err != nil {
		return nil, err
	}

	rows, found, err := parseQuotesHTML(html)
	if err != nil {
		return nil, &contracts.GatewayError{Source: Source, Op: "market", Err: fmt.Errorf("parse quotes failed: %w", err)}
	}
	if !found || len(rows) == 0 {
		return nil, contracts.NoSessionData(Source, date)
	}

	c.logger.WithFields(map[string]interface{}{
		"date":  date.String(),
		"count": len(rows),
	}).Info("Fetched market quotes")

	return rows, nil
}
