package contracts

import "context"

// MarketDataGateway supplies one row per listed security for a session.
// Returns an error wrapping ErrNoSessionData when the date has no published session,
// and a *GatewayError for transport problems.
// ⭐ SSOT: 시세 게이트웨이 인터페이스
type MarketDataGateway interface {
	FetchMarket(ctx context.Context, date SessionDate) ([]MarketRow, error)
}

// BrokerFlowGateway supplies per-broker buy/sell volumes for one security on a session.
// Same failure distinction as MarketDataGateway.
// ⭐ SSOT: 분점 수급 게이트웨이 인터페이스
type BrokerFlowGateway interface {
	FetchBrokerFlow(ctx context.Context, securityID string, date SessionDate) ([]BrokerFlowRow, error)
}
