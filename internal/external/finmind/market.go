package finmind

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/shopspring/decimal"

	"github.com/wonny/flipwatch/internal/contracts"
)

// priceRecord is one TaiwanStockPrice row
type priceRecord struct {
	Date    string  `json:"date"`
	StockID string  `json:"stock_id"`
	Volume  int64   `json:"Trading_Volume"`
	Open    float64 `json:"open"`
	Max     float64 `json:"max"`
	Min     float64 `json:"min"`
	Close   float64 `json:"close"`
	Spread  float64 `json:"spread"` // 전일 대비
}

// FetchMarket fetches every listed security's daily quote for date
// ⭐ SSOT: FinMind 시세 조회는 이 함수에서만
func (c *Client) FetchMarket(ctx context.Context, date contracts.SessionDate) ([]contracts.MarketRow, error) {
	params := url.Values{}
	params.Set("dataset", "TaiwanStockPrice")
	params.Set("start_date", date.String())
	params.Set("end_date", date.String())

	data, err := c.fetch(ctx, "market", "/data", params, date)
	if err != nil {
		return nil, err
	}

	var records []priceRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, &contracts.GatewayError{Source: Source, Op: "market", Err: err}
	}

	rows := toMarketRows(records, date)
	if len(rows) == 0 {
		return nil, contracts.NoSessionData(Source, date)
	}

	c.logger.WithFields(map[string]interface{}{
		"date":  date.String(),
		"count": len(rows),
	}).Info("Fetched market quotes")

	return rows, nil
}

// toMarketRows maps price records to market rows.
// previous close = close - spread; the screener rejects non-positive values.
func toMarketRows(records []priceRecord, date contracts.SessionDate) []contracts.MarketRow {
	rows := make([]contracts.MarketRow, 0, len(records))
	for _, r := range records {
		if r.StockID == "" {
			continue
		}
		if r.Date != "" && r.Date != date.String() {
			continue
		}
		closePrice := decimal.NewFromFloat(r.Close)
		prev := closePrice.Sub(decimal.NewFromFloat(r.Spread))
		rows = append(rows, contracts.MarketRow{
			SecurityID: r.StockID,
			Close:      closePrice,
			Change:     contracts.PreviousCloseChange(prev),
		})
	}
	return rows
}
