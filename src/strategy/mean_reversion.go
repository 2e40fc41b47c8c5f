package strategy

import (
	"math"

	log "github.com/sirupsen/logrus"

	"github.com/jcalderone/barsim/src/engine"
	"github.com/jcalderone/barsim/src/indicators"
	"github.com/jcalderone/barsim/src/models"
)

// flatThreshold is the absolute quantity below which the book position is
// treated as flat for signal purposes.
const flatThreshold = 0.0001

// MeanReversion longs when price drops below the lower band and shorts when
// it rises above the upper band, closing the position once price reverts to
// the moving average.
type MeanReversion struct {
	bands *indicators.BollingerBands
}

func NewMeanReversion(window int, stdDevs float64) *MeanReversion {
	return &MeanReversion{
		bands: indicators.NewBollingerBands(window, stdDevs),
	}
}

func (s *MeanReversion) OnBar(bar models.Bar, e *engine.ExecutionEngine) []models.OrderRequest {
	ready, bands, err := s.bands.Update(bar)
	if err != nil {
		log.Warnf("mean reversion: failed to update bands: %v", err)
		return nil
	}

	if !ready {
		return nil
	}

	price := bar.Close
	currentQty := e.Position(bar.Symbol).Quantity
	funds := e.AvailableFunds()

	switch {
	case price < bands.Lower && math.Abs(currentQty) < flatThreshold:
		qty := entryQuantity(funds, price)
		if qty <= 0 {
			log.Debugf("[%s] buy signal ignored: insufficient funds (%.2f)", bar.Time, funds)
			return nil
		}

		log.Infof("[%s] buy signal: funds %.2f -> buying %v units", bar.Time, funds, qty)
		return []models.OrderRequest{{
			Symbol:   bar.Symbol,
			Side:     models.SideLong,
			Type:     models.Market,
			Quantity: qty,
			Tag:      "mean-reversion",
		}}

	case price > bands.Upper && math.Abs(currentQty) < flatThreshold:
		qty := entryQuantity(funds, price)
		if qty <= 0 {
			return nil
		}

		log.Infof("[%s] sell signal: funds %.2f -> shorting %v units", bar.Time, funds, qty)
		return []models.OrderRequest{{
			Symbol:   bar.Symbol,
			Side:     models.SideShort,
			Type:     models.Market,
			Quantity: qty,
			Tag:      "mean-reversion",
		}}

	case currentQty > flatThreshold && price >= bands.MovingAverage:
		log.Infof("[%s] exit long: closing %v units", bar.Time, currentQty)
		return []models.OrderRequest{{
			Symbol:   bar.Symbol,
			Side:     models.SideShort,
			Type:     models.Market,
			Quantity: currentQty,
			Tag:      "mean-reversion",
		}}

	case currentQty < -flatThreshold && price <= bands.MovingAverage:
		log.Infof("[%s] exit short: closing %v units", bar.Time, -currentQty)
		return []models.OrderRequest{{
			Symbol:   bar.Symbol,
			Side:     models.SideLong,
			Type:     models.Market,
			Quantity: -currentQty,
			Tag:      "mean-reversion",
		}}
	}

	return nil
}

// entryQuantity sizes an entry at 98% of available funds, floored to four
// decimal places so the engine is never asked for dust beyond exchange
// precision.
func entryQuantity(funds, price float64) float64 {
	qty := funds * 0.98 / price
	return math.Floor(qty*10000) / 10000
}
