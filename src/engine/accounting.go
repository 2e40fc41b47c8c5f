package engine

import (
	"math"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/jcalderone/barsim/src/eventpubsub"
	"github.com/jcalderone/barsim/src/models"
)

// quantityEpsilon is the floor below which residual quantities are snapped to
// exactly zero, suppressing floating-point dust before the close/flip branch.
const quantityEpsilon = 1e-9

// executeFill settles a resolved order: it books cash and commission, updates
// the position's weighted average cost, emits one trade per exposure change
// and spawns any bracket children the order carries.
func (e *ExecutionEngine) executeFill(order *models.Order, fillPrice float64, t time.Time) {
	qty := order.Quantity
	if qty == 0 {
		// cash-sized orders derive their quantity from the price that
		// materializes, not the price at submission
		qty = order.CashAmount / fillPrice
	}

	pos := e.position(order.Symbol)
	notional := qty * fillPrice
	commission := notional * pos.FeeRate(order.Type)

	if order.Side == models.SideLong {
		e.balance -= notional + commission
	} else {
		// short proceeds are credited in full; AvailableFunds reserves
		// against the open liability
		e.balance += notional - commission
	}

	commissionPerUnit := 0.0
	if qty > 0 {
		commissionPerUnit = commission / qty
	}

	signedQty := qty
	if order.Side == models.SideShort {
		signedQty = -qty
	}

	if pos.Quantity == 0 || (pos.Quantity > 0) == (signedQty > 0) {
		// opening from flat or adding in the same direction
		newQty := pos.Quantity + signedQty
		pos.AvgEntryPrice = (pos.Quantity*pos.AvgEntryPrice + signedQty*fillPrice) / newQty
		pos.Quantity = newQty

		e.recordTrade(models.NewTrade(order.ID, order.Symbol, order.Side, qty, fillPrice, commission, t, 0))
	} else {
		closingQty := math.Min(math.Abs(pos.Quantity), qty)

		var pnl float64
		if pos.Quantity > 0 {
			pnl = (fillPrice - pos.AvgEntryPrice) * closingQty
		} else {
			pnl = (pos.AvgEntryPrice - fillPrice) * closingQty
		}

		e.recordTrade(models.NewTrade(order.ID, order.Symbol, order.Side, closingQty, fillPrice, closingQty*commissionPerUnit, t, pnl))

		residual := pos.Quantity + signedQty
		if math.Abs(residual) < quantityEpsilon {
			residual = 0
		}

		if residual == 0 {
			pos.Quantity = 0
			pos.AvgEntryPrice = 0
		} else if (residual > 0) == (pos.Quantity > 0) {
			// partial close: cost basis of the remainder is unchanged
			pos.Quantity = residual
		} else {
			// flip: the residual opens a new position in the fill direction
			pos.Quantity = residual
			pos.AvgEntryPrice = fillPrice

			e.recordTrade(models.NewTrade(order.ID, order.Symbol, order.Side, math.Abs(residual), fillPrice, math.Abs(residual)*commissionPerUnit, t, 0))
		}
	}

	filledAt := t
	order.Status = models.OrderStatusFilled
	order.FilledAt = &filledAt
	order.FillPrice = fillPrice

	e.spawnBrackets(order, qty, fillPrice, t)
}

func (e *ExecutionEngine) recordTrade(trade *models.Trade) {
	e.fills = append(e.fills, trade)
	eventpubsub.Publish(eventpubsub.OrderFilledEvent, trade)
}

// spawnBrackets synthesizes the conditional children of a settled parent: a
// protective stop on the opposite side, a take-profit limit, or both. The
// children share the parent's group so that the first to fill cancels the
// other. They join the book after the current bar's matching pass, so they
// are first eligible on the next bar.
func (e *ExecutionEngine) spawnBrackets(parent *models.Order, filledQty, fillPrice float64, t time.Time) {
	groupID := parent.GroupID
	if groupID == "" {
		groupID = parent.ID
	}

	if parent.StopPrice != nil || parent.StopLossPct != nil {
		var stopLevel float64
		if parent.StopPrice != nil {
			stopLevel = *parent.StopPrice
		} else if parent.Side == models.SideLong {
			stopLevel = fillPrice * (1 - *parent.StopLossPct)
		} else {
			stopLevel = fillPrice * (1 + *parent.StopLossPct)
		}

		qty := parent.StopQty
		if qty <= 0 {
			qty = filledQty * (1 + parent.Revenge)
		}

		e.enqueueChild(&models.Order{
			ID:         models.NewID(),
			ParentID:   parent.ID,
			GroupID:    groupID,
			Symbol:     parent.Symbol,
			Side:       parent.Side.Opposite(),
			Type:       models.Stop,
			Quantity:   qty,
			Price:      &stopLevel,
			Status:     models.OrderStatusPending,
			Tag:        parent.Tag,
			CreateDate: t,
		})
	}

	if parent.LimitPrice != nil || parent.LimitPct != nil {
		var limitLevel float64
		if parent.LimitPrice != nil {
			limitLevel = *parent.LimitPrice
		} else if parent.Side == models.SideLong {
			limitLevel = fillPrice * (1 + *parent.LimitPct)
		} else {
			limitLevel = fillPrice * (1 - *parent.LimitPct)
		}

		qty := parent.LimitQty
		if qty <= 0 {
			qty = filledQty
		}

		e.enqueueChild(&models.Order{
			ID:         models.NewID(),
			ParentID:   parent.ID,
			GroupID:    groupID,
			Symbol:     parent.Symbol,
			Side:       parent.Side.Opposite(),
			Type:       models.Limit,
			Quantity:   qty,
			Price:      &limitLevel,
			Status:     models.OrderStatusPending,
			Tag:        parent.Tag,
			CreateDate: t,
		})
	}
}

func (e *ExecutionEngine) enqueueChild(child *models.Order) {
	log.Debugf("spawning %s %s child %s for parent %s @ %.4f", child.Side, child.Type, child.ID, child.ParentID, *child.Price)
	e.spawned = append(e.spawned, child)
}

// cancelGroup settles every still-pending sibling of a filled order that
// shares its bracket group. Cancelled orders stay in the book until the
// end-of-bar purge.
func (e *ExecutionEngine) cancelGroup(groupID, filledOrderID string) {
	for _, order := range e.openOrders {
		if order.ID == filledOrderID || order.GroupID != groupID {
			continue
		}

		if order.Status != models.OrderStatusPending {
			continue
		}

		order.Cancel()
		eventpubsub.Publish(eventpubsub.OrderCancelledEvent, order)
	}
}
