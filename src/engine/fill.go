package engine

import (
	"math"

	"github.com/jcalderone/barsim/src/models"
)

// checkFill decides whether a pending order executes against a bar, using
// only the bar's open, high and low. It returns at most one fill price per
// order per bar; an order matching no rule stays pending.
func checkFill(order *models.Order, open, high, low float64) (float64, bool) {
	switch order.Type {
	case models.Market:
		return open, true

	case models.Limit:
		limitPrice := *order.Price

		if order.Side == models.SideLong && low <= limitPrice {
			// a gap below the limit fills at the better open
			return math.Min(open, limitPrice), true
		}

		if order.Side == models.SideShort && high >= limitPrice {
			return math.Max(open, limitPrice), true
		}

	case models.Stop:
		stopPrice := *order.Price

		if order.Side == models.SideShort {
			if open < stopPrice {
				// gapped through the stop: fills at the worse open
				return open, true
			}

			if low <= stopPrice {
				return stopPrice, true
			}
		} else {
			if open > stopPrice {
				return open, true
			}

			if high >= stopPrice {
				return stopPrice, true
			}
		}
	}

	return 0, false
}
