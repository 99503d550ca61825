package finmind

import (
	"context"
	"encoding/json"
	"math"
	"net/url"

	"github.com/wonny/flipwatch/internal/contracts"
)

// tradingReportRecord is one TaiwanStockTradingDailyReport row (one per broker and price level).
// Volumes are in shares.
type tradingReportRecord struct {
	SecuritiesTrader   string  `json:"securities_trader"`
	SecuritiesTraderID string  `json:"securities_trader_id"`
	StockID            string  `json:"stock_id"`
	Date               string  `json:"date"`
	Price              float64 `json:"price"`
	Buy                float64 `json:"buy"`
	Sell               float64 `json:"sell"`
}

// FetchBrokerFlow fetches the per-broker buy/sell rows for one security on date
// ⭐ SSOT: FinMind 분점 수급 조회는 이 함수에서만
func (c *Client) FetchBrokerFlow(ctx context.Context, securityID string, date contracts.SessionDate) ([]contracts.BrokerFlowRow, error) {
	params := url.Values{}
	params.Set("data_id", securityID)
	params.Set("date", date.String())

	data, err := c.fetch(ctx, "broker_flow", "/taiwan_stock_trading_daily_report", params, date)
	if err != nil {
		return nil, err
	}

	var records []tradingReportRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, &contracts.GatewayError{Source: Source, Op: "broker_flow", Err: err}
	}

	rows := make([]contracts.BrokerFlowRow, 0, len(records))
	for _, r := range records {
		if r.SecuritiesTrader == "" {
			continue
		}
		stockID := r.StockID
		if stockID == "" {
			stockID = securityID
		}
		rows = append(rows, contracts.BrokerFlowRow{
			SecurityID: stockID,
			BrokerName: r.SecuritiesTrader,
			BuyVolume:  int64(math.Round(r.Buy)),
			SellVolume: int64(math.Round(r.Sell)),
		})
	}

	c.logger.WithFields(map[string]interface{}{
		"security_id": securityID,
		"date":        date.String(),
		"rows":        len(rows),
	}).Debug("Fetched broker flow")

	return rows, nil
}
