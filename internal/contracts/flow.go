package contracts

// BrokerFlowRow is one (security, broker) buy/sell record for a session.
// Upstream may report several rows per pair (e.g. one per price level).
type BrokerFlowRow struct {
	SecurityID string `json:"security_id"`
	BrokerName string `json:"broker_name"`
	BuyVolume  int64  `json:"buy_volume"`
	SellVolume int64  `json:"sell_volume"`
}

// NetBuy is buy minus sell; negative means net selling
func (r BrokerFlowRow) NetBuy() int64 {
	return r.BuyVolume - r.SellVolume
}

// WatchList is the fixed, ordered set of broker branch names to watch.
// Matching is exact. Built once at startup and never mutated.
// ⭐ SSOT: 감시 분점 목록은 여기서만
type WatchList struct {
	names []string
	set   map[string]struct{}
}

// NewWatchList builds a WatchList, dropping duplicates while keeping first-seen order
func NewWatchList(names ...string) WatchList {
	w := WatchList{
		names: make([]string, 0, len(names)),
		set:   make(map[string]struct{}, len(names)),
	}
	for _, n := range names {
		if _, dup := w.set[n]; dup {
			continue
		}
		w.set[n] = struct{}{}
		w.names = append(w.names, n)
	}
	return w
}

// Contains reports exact membership
func (w WatchList) Contains(broker string) bool {
	_, ok := w.set[broker]
	return ok
}

// Names returns a copy of the entries in configured order
func (w WatchList) Names() []string {
	out := make([]string, len(w.names))
	copy(out, w.names)
	return out
}

// Len returns the number of entries
func (w WatchList) Len() int {
	return len(w.names)
}

// Hit is one watch-listed broker that net-bought a limit-up candidate above the threshold
type Hit struct {
	SecurityID string `json:"security_id"`
	BrokerName string `json:"broker_name"`
	NetBuy     int64  `json:"net_buy"`
}
