package models

// Position is the per-symbol ledger entry. Quantity is signed: positive for
// long exposure, negative for short. AvgEntryPrice is meaningful only while
// Quantity is non-zero.
type Position struct {
	Symbol        string  `json:"symbol"`
	Quantity      float64 `json:"quantity"`
	AvgEntryPrice float64 `json:"avg_entry_price"`
	LastPrice     float64 `json:"last_price"`
	MarketFeeBps  float64 `json:"market_fee_bps"`
	LimitFeeBps   float64 `json:"limit_fee_bps"`
}

// MarketValue marks the position at the last observed price.
func (p *Position) MarketValue() float64 {
	return p.Quantity * p.LastPrice
}

// FeeRate returns the commission rate for the given order type as a fraction
// of notional.
func (p *Position) FeeRate(orderType OrderType) float64 {
	if orderType == Limit {
		return p.LimitFeeBps / 10000.0
	}
	return p.MarketFeeBps / 10000.0
}

// AssetVars is the per-symbol fee configuration supplied at engine creation.
type AssetVars struct {
	Symbol       string  `json:"symbol" yaml:"symbol"`
	MarketFeeBps float64 `json:"market_fee_bps" yaml:"market_fee_bps"`
	LimitFeeBps  float64 `json:"limit_fee_bps" yaml:"limit_fee_bps"`
}
