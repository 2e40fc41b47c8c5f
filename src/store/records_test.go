package store

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/jcalderone/barsim/src/models"
	"github.com/jcalderone/barsim/src/report"
)

func TestRecordMapping(t *testing.T) {
	runID := uuid.New()
	at := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

	t.Run("trade record carries the fill fields", func(t *testing.T) {
		fill := models.NewTrade("ord-1", "ETH", models.SideShort, 2.5, 101.25, 0.9, at, -12.5)

		rec := newTradeRecord(runID, fill)

		assert.Equal(t, runID, rec.RunID)
		assert.Equal(t, fill.TradeID, rec.TradeID)
		assert.Equal(t, "ord-1", rec.OrderID)
		assert.Equal(t, "SHORT", rec.Side)
		assert.Equal(t, 2.5, rec.Quantity)
		assert.Equal(t, 101.25, rec.Price)
		assert.Equal(t, 0.9, rec.Commission)
		assert.Equal(t, -12.5, rec.Pnl)
		assert.Equal(t, at, rec.Timestamp)
	})

	t.Run("run record carries the summary headline", func(t *testing.T) {
		summary := report.Summary{
			InitialBalance: 10000,
			FinalEquity:    10250,
			NetProfit:      250,
			TotalTrades:    7,
		}

		rec := newRunRecord(runID, "BTC", at, summary)

		assert.Equal(t, runID, rec.RunID)
		assert.Equal(t, "BTC", rec.Symbol)
		assert.Equal(t, at, rec.StartedAt)
		assert.Equal(t, 10000.0, rec.InitialBalance)
		assert.Equal(t, 10250.0, rec.FinalEquity)
		assert.Equal(t, 250.0, rec.NetProfit)
		assert.Equal(t, 7, rec.TotalTrades)
	})
}
