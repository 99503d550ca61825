package finmind

import (
	"context"
	"encoding/json"
	"errors"
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
const Source = "finmind"

// DefaultBaseURL is the FinMind v4 REST root
const DefaultBaseURL = "https://api.finmindtrade.com/api/v4"

// Client handles communication with the FinMind open data API
// ⭐ SSOT: FinMind API 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
}

var (
	_ contracts.MarketDataGateway = (*Client)(nil)
	_ contracts.BrokerFlowGateway = (*Client)(nil)
)

// NewClient creates a new FinMind client.
// httpClient carries the bearer token when one is configured; without it requests go out anonymously.
func NewClient(httpClient *httputil.Client, baseURL string, log *logger.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		httpClient: httpClient,
		logger:     log.WithModule("finmind"),
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
	if !httpClient.Authenticated() {
		c.logger.Warn("FINMIND_TOKEN not set, using anonymous quota")
	}
	return c
}

// apiResponse is the common FinMind envelope
type apiResponse struct {
	Msg    string          `json:"msg"`
	Status int             `json:"status"`
	Data   json.RawMessage `json:"data"`
}

// fetch calls path with params and returns the raw data array.
// Empty data with status 200 means the provider has nothing for the date.
func (c *Client) fetch(ctx context.Context, op, path string, params url.Values, date contracts.SessionDate) (json.RawMessage, error) {
	fullURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	resp, err := c.httpClient.Get(ctx, fullURL)
	if err != nil {
		return nil, &contracts.GatewayError{Source: Source, Op: op, Err: fmt.Errorf("HTTP request failed: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &contracts.GatewayError{Source: Source, Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("read response body failed: %w", err)}
	}

	var envelope apiResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, &contracts.GatewayError{Source: Source, Op: op, StatusCode: resp.StatusCode, Err: errors.New("unexpected status code")}
		}
		return nil, &contracts.GatewayError{Source: Source, Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response failed: %w", err)}
	}

	// HTTP 200이어도 body의 status가 실패일 수 있음 (토큰/할당량)
	if resp.StatusCode != http.StatusOK || (envelope.Status != 0 && envelope.Status != http.StatusOK) {
		status := envelope.Status
		if status == 0 {
			status = resp.StatusCode
		}
		msg := envelope.Msg
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, &contracts.GatewayError{Source: Source, Op: op, StatusCode: status, Err: errors.New(msg)}
	}

	trimmed := strings.TrimSpace(string(envelope.Data))
	if trimmed == "" || trimmed == "null" || trimmed == "[]" {
		return nil, contracts.NoSessionData(Source, date)
	}

	return envelope.Data, nil
}
