package strategy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcalderone/barsim/src/engine"
	"github.com/jcalderone/barsim/src/models"
)

func TestMeanReversion(t *testing.T) {
	start := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	assets := map[string]models.AssetVars{"ETH": {Symbol: "ETH"}}

	bar := func(i int, open, high, low, close float64) models.Bar {
		return models.Bar{
			Time:   start.Add(time.Duration(i) * time.Minute),
			Symbol: "ETH",
			Open:   open,
			High:   high,
			Low:    low,
			Close:  close,
		}
	}

	t.Run("round trip: buys below the lower band, exits at the mean", func(t *testing.T) {
		e := engine.NewExecutionEngine(10000, 1, assets)

		bars := []models.Bar{
			bar(0, 100, 100, 100, 100),
			bar(1, 100, 100, 100, 100),
			bar(2, 100, 100, 100, 100),
			// dips below the lower band: entry signal at the close
			bar(3, 100, 100, 90, 90),
			// entry fills at the open; the close reverts to the mean: exit signal
			bar(4, 90, 100, 90, 100),
			// exit fills at the open
			bar(5, 100, 100, 100, 100),
		}

		e.Run(bars, NewMeanReversion(3, 1.0))

		fills := e.Fills()
		require.Len(t, fills, 2)

		entry, exit := fills[0], fills[1]
		assert.Equal(t, models.SideLong, entry.Side)
		assert.Equal(t, 90.0, entry.Price)
		assert.InDelta(t, 108.8888, entry.Quantity, 1e-9)

		assert.Equal(t, models.SideShort, exit.Side)
		assert.Equal(t, 100.0, exit.Price)
		assert.InDelta(t, 10*108.8888, exit.Pnl, 1e-6)

		assert.Equal(t, 0.0, e.Position("ETH").Quantity)
	})

	t.Run("stays flat while the window warms up", func(t *testing.T) {
		e := engine.NewExecutionEngine(10000, 1, assets)

		e.Run([]models.Bar{
			bar(0, 100, 100, 100, 100),
			bar(1, 50, 50, 50, 50),
		}, NewMeanReversion(5, 1.0))

		assert.Empty(t, e.Fills())
		assert.Empty(t, e.OpenOrders())
	})

	t.Run("does not pyramid an existing position", func(t *testing.T) {
		e := engine.NewExecutionEngine(10000, 1, assets)

		bars := []models.Bar{
			bar(0, 100, 100, 100, 100),
			bar(1, 100, 100, 100, 100),
			bar(2, 100, 100, 100, 100),
			bar(3, 100, 100, 90, 90),
			// still below the band after the entry fills: no second entry
			bar(4, 90, 90, 85, 85),
			bar(5, 85, 85, 84, 84),
		}

		e.Run(bars, NewMeanReversion(3, 1.0))

		var entries int
		for _, fill := range e.Fills() {
			if fill.Side == models.SideLong {
				entries++
			}
		}
		assert.Equal(t, 1, entries)
	})
}
