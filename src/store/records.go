package store

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jcalderone/barsim/src/models"
	"github.com/jcalderone/barsim/src/report"
)

// RunRecord is the persisted header of one simulation run.
type RunRecord struct {
	gorm.Model
	RunID          uuid.UUID `gorm:"column:run_id;type:uuid;not null;index:idx_run_id"`
	Symbol         string    `gorm:"column:symbol;type:text;not null"`
	StartedAt      time.Time `gorm:"column:started_at;type:timestamptz;not null"`
	InitialBalance float64   `gorm:"column:initial_balance;type:numeric;not null"`
	FinalEquity    float64   `gorm:"column:final_equity;type:numeric;not null"`
	NetProfit      float64   `gorm:"column:net_profit;type:numeric;not null"`
	TotalTrades    int       `gorm:"column:total_trades;not null"`
}

type TradeRecord struct {
	gorm.Model
	RunID      uuid.UUID `gorm:"column:run_id;type:uuid;not null;index:idx_run_trade"`
	TradeID    string    `gorm:"column:trade_id;type:text;not null"`
	OrderID    string    `gorm:"column:order_id;type:text;not null;index:idx_order_id"`
	Symbol     string    `gorm:"column:symbol;type:text;not null"`
	Side       string    `gorm:"column:side;type:text;not null"`
	Quantity   float64   `gorm:"column:quantity;type:numeric;not null"`
	Price      float64   `gorm:"column:price;type:numeric;not null"`
	Commission float64   `gorm:"column:commission;type:numeric;not null"`
	Pnl        float64   `gorm:"column:pnl;type:numeric;not null"`
	Timestamp  time.Time `gorm:"column:timestamp;type:timestamptz;not null"`
}

type EquityPlotRecord struct {
	gorm.Model
	RunID     uuid.UUID `gorm:"column:run_id;type:uuid;not null;index:idx_run_equity"`
	Timestamp time.Time `gorm:"column:timestamp;type:timestamptz;not null"`
	Equity    float64   `gorm:"column:equity;type:numeric;not null"`
}

func newTradeRecord(runID uuid.UUID, fill *models.Trade) *TradeRecord {
	return &TradeRecord{
		RunID:      runID,
		TradeID:    fill.TradeID,
		OrderID:    fill.OrderID,
		Symbol:     fill.Symbol,
		Side:       string(fill.Side),
		Quantity:   fill.Quantity,
		Price:      fill.Price,
		Commission: fill.Commission,
		Pnl:        fill.Pnl,
		Timestamp:  fill.Time,
	}
}

func newRunRecord(runID uuid.UUID, symbol string, startedAt time.Time, summary report.Summary) *RunRecord {
	return &RunRecord{
		RunID:          runID,
		Symbol:         symbol,
		StartedAt:      startedAt,
		InitialBalance: summary.InitialBalance,
		FinalEquity:    summary.FinalEquity,
		NetProfit:      summary.NetProfit,
		TotalTrades:    summary.TotalTrades,
	}
}
