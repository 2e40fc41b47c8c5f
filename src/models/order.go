package models

import (
	"time"

	"github.com/google/uuid"
)

// NewID returns a short random identifier for orders and trades.
func NewID() string {
	return uuid.NewString()[:8]
}

// OrderRequest is the strategy-facing description of an order. It carries no
// identity or lifecycle state; NewOrder validates it and mints an Order.
type OrderRequest struct {
	Symbol     string
	Side       OrderSide
	Type       OrderType
	Quantity   float64
	CashAmount float64

	// Price is the trigger for limit and stop orders. Market orders ignore it.
	Price *float64

	// Bracket directives, applied after the parent fills.
	StopPrice   *float64
	StopLossPct *float64
	LimitPrice  *float64
	LimitPct    *float64
	StopQty     float64
	LimitQty    float64
	Revenge     float64

	GroupID string
	Tag     string
}

type Order struct {
	ID       string    `json:"id"`
	ParentID string    `json:"parent_id,omitempty"`
	GroupID  string    `json:"group_id,omitempty"`
	Symbol   string    `json:"symbol"`
	Side     OrderSide `json:"side"`
	Type     OrderType `json:"type"`

	Quantity   float64  `json:"quantity,omitempty"`
	CashAmount float64  `json:"cash_amount,omitempty"`
	Price      *float64 `json:"price,omitempty"`

	StopPrice   *float64 `json:"stop_price,omitempty"`
	StopLossPct *float64 `json:"stop_loss_pct,omitempty"`
	LimitPrice  *float64 `json:"limit_price,omitempty"`
	LimitPct    *float64 `json:"limit_pct,omitempty"`
	StopQty     float64  `json:"stop_qty,omitempty"`
	LimitQty    float64  `json:"limit_qty,omitempty"`
	Revenge     float64  `json:"revenge,omitempty"`

	Status     OrderStatus `json:"status"`
	Tag        string      `json:"tag,omitempty"`
	CreateDate time.Time   `json:"create_date"`
	FilledAt   *time.Time  `json:"filled_at,omitempty"`
	FillPrice  float64     `json:"fill_price,omitempty"`
}

func (o *Order) Cancel() {
	o.Status = OrderStatusCancelled
}

// NewOrder validates the request and returns a pending order. Validation
// failures are fatal for the order only: it is never admitted to the book.
func NewOrder(req OrderRequest, createDate time.Time) (*Order, error) {
	if err := req.Side.Validate(); err != nil {
		return nil, err
	}

	if err := req.Type.Validate(); err != nil {
		return nil, err
	}

	if req.Type.RequiresPrice() && req.Price == nil {
		return nil, ErrMissingPrice
	}

	hasQty := req.Quantity > 0
	hasCash := req.CashAmount > 0
	if hasQty == hasCash {
		return nil, ErrAmbiguousSizing
	}

	if req.StopPrice != nil && req.StopLossPct != nil {
		return nil, ErrConflictingBracket
	}

	if req.LimitPrice != nil && req.LimitPct != nil {
		return nil, ErrConflictingBracket
	}

	return &Order{
		ID:          NewID(),
		GroupID:     req.GroupID,
		Symbol:      req.Symbol,
		Side:        req.Side,
		Type:        req.Type,
		Quantity:    req.Quantity,
		CashAmount:  req.CashAmount,
		Price:       req.Price,
		StopPrice:   req.StopPrice,
		StopLossPct: req.StopLossPct,
		LimitPrice:  req.LimitPrice,
		LimitPct:    req.LimitPct,
		StopQty:     req.StopQty,
		LimitQty:    req.LimitQty,
		Revenge:     req.Revenge,
		Status:      OrderStatusPending,
		Tag:         req.Tag,
		CreateDate:  createDate,
	}, nil
}
