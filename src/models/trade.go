package models

import "time"

// Trade is an immutable fill record. Pnl is zero for the opening or
// increasing portion of a position and non-zero for the closing portion.
type Trade struct {
	TradeID    string    `json:"trade_id"`
	OrderID    string    `json:"order_id"`
	Symbol     string    `json:"symbol"`
	Side       OrderSide `json:"side"`
	Quantity   float64   `json:"quantity"`
	Price      float64   `json:"price"`
	Commission float64   `json:"commission"`
	Time       time.Time `json:"time"`
	Pnl        float64   `json:"pnl"`
}

func NewTrade(orderID, symbol string, side OrderSide, quantity, price, commission float64, t time.Time, pnl float64) *Trade {
	return &Trade{
		TradeID:    NewID(),
		OrderID:    orderID,
		Symbol:     symbol,
		Side:       side,
		Quantity:   quantity,
		Price:      price,
		Commission: commission,
		Time:       t,
		Pnl:        pnl,
	}
}
