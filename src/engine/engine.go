package engine

import (
	"fmt"
	"math"
	"sort"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/jcalderone/barsim/src/eventpubsub"
	"github.com/jcalderone/barsim/src/models"
)

// Strategy is invoked once per bar, after the bar has been applied to the
// book, with read access to the engine's state. Returned order requests are
// submitted with the bar's timestamp and become eligible to fill on the next
// bar a matching symbol appears.
type Strategy interface {
	OnBar(bar models.Bar, e *ExecutionEngine) []models.OrderRequest
}

// Fee rates applied to symbols with no explicit AssetVars, in basis points.
const (
	defaultMarketFeeBps = 9.0
	defaultLimitFeeBps  = 2.5
)

// ExecutionEngine replays bars through a simulated brokerage. All state is
// owned by the instance; independent replays need independent engines.
type ExecutionEngine struct {
	initialBalance float64
	balance        float64
	equity         float64
	marginDivisor  float64
	assets         map[string]models.AssetVars
	portfolio      map[string]*models.Position
	openOrders     []*models.Order
	spawned        []*models.Order
	fills          []*models.Trade
	equityCurve    []models.EquityRecord
}

func NewExecutionEngine(initialBalance, marginDivisor float64, assets map[string]models.AssetVars) *ExecutionEngine {
	if marginDivisor <= 0 {
		marginDivisor = 1
	}

	assetsCopy := make(map[string]models.AssetVars, len(assets))
	for symbol, vars := range assets {
		assetsCopy[symbol] = vars
	}

	return &ExecutionEngine{
		initialBalance: initialBalance,
		balance:        initialBalance,
		equity:         initialBalance,
		marginDivisor:  marginDivisor,
		assets:         assetsCopy,
		portfolio:      make(map[string]*models.Position),
	}
}

// position lazily registers a zero position the first time a symbol is seen.
func (e *ExecutionEngine) position(symbol string) *models.Position {
	pos, found := e.portfolio[symbol]
	if found {
		return pos
	}

	vars, found := e.assets[symbol]
	if !found {
		vars = models.AssetVars{Symbol: symbol, MarketFeeBps: defaultMarketFeeBps, LimitFeeBps: defaultLimitFeeBps}
	}

	pos = &models.Position{
		Symbol:       symbol,
		MarketFeeBps: vars.MarketFeeBps,
		LimitFeeBps:  vars.LimitFeeBps,
	}
	e.portfolio[symbol] = pos

	return pos
}

// Submit validates the request and admits a pending order to the book. The
// order is eligible to fill starting with the next processed bar.
func (e *ExecutionEngine) Submit(req models.OrderRequest, t time.Time) (*models.Order, error) {
	order, err := models.NewOrder(req, t)
	if err != nil {
		return nil, fmt.Errorf("submit %s %s %s: %w", req.Side, req.Type, req.Symbol, err)
	}

	e.openOrders = append(e.openOrders, order)

	return order, nil
}

// CancelAllOrders marks every pending order cancelled and sweeps the book.
func (e *ExecutionEngine) CancelAllOrders() {
	for _, order := range e.openOrders {
		if order.Status == models.OrderStatusPending {
			order.Cancel()
			eventpubsub.Publish(eventpubsub.OrderCancelledEvent, order)
		}
	}

	e.purgeSettledOrders()
}

// ProcessBar advances the replay by one bar:
//  1. register/mark the bar's symbol,
//  2. resolve fills against orders that existed before this bar,
//  3. cancel bracket siblings of anything that filled,
//  4. snapshot equity across the whole portfolio,
//  5. sweep settled orders out of the book.
//
// Orders spawned while settling (bracket children) join the book after the
// matching pass and therefore cannot fill on this bar.
func (e *ExecutionEngine) ProcessBar(bar models.Bar) {
	pos := e.position(bar.Symbol)
	pos.LastPrice = bar.Close

	for _, order := range e.openOrders {
		if order.Symbol != bar.Symbol || order.Status != models.OrderStatusPending {
			continue
		}

		fillPrice, filled := checkFill(order, bar.Open, bar.High, bar.Low)
		if !filled {
			continue
		}

		e.executeFill(order, fillPrice, bar.Time)

		if order.GroupID != "" {
			e.cancelGroup(order.GroupID, order.ID)
		}
	}

	if len(e.spawned) > 0 {
		e.openOrders = append(e.openOrders, e.spawned...)
		e.spawned = nil
	}

	e.markEquity(bar.Time)
	e.purgeSettledOrders()
}

// Run replays the bar sequence, handing each bar to the strategy after it has
// been applied. Strategy orders that fail validation are dropped with a
// warning; the run continues.
func (e *ExecutionEngine) Run(bars []models.Bar, strategy Strategy) {
	for _, bar := range bars {
		e.ProcessBar(bar)

		if strategy == nil {
			continue
		}

		for _, req := range strategy.OnBar(bar, e) {
			if _, err := e.Submit(req, bar.Time); err != nil {
				log.Warnf("order rejected at submission: %v", err)
			}
		}
	}
}

func (e *ExecutionEngine) markEquity(t time.Time) {
	equity := e.balance
	for _, pos := range e.portfolio {
		equity += pos.MarketValue()
	}

	e.equity = equity

	record := models.EquityRecord{Time: t, Equity: equity}
	e.equityCurve = append(e.equityCurve, record)

	eventpubsub.Publish(eventpubsub.EquitySnapshotEvent, record)
}

// purgeSettledOrders sweeps everything no longer pending out of the book.
// Settlement marks status during the matching pass; removal happens only
// here, so the book is never mutated while being traversed.
func (e *ExecutionEngine) purgeSettledOrders() {
	remaining := e.openOrders[:0]
	for _, order := range e.openOrders {
		if order.Status == models.OrderStatusPending {
			remaining = append(remaining, order)
		}
	}

	e.openOrders = remaining
}

func (e *ExecutionEngine) InitialBalance() float64 {
	return e.initialBalance
}

func (e *ExecutionEngine) Balance() float64 {
	return e.balance
}

// Equity is the latest mark-to-market account value: cash plus every
// position's quantity times its last observed price.
func (e *ExecutionEngine) Equity() float64 {
	return e.equity
}

// AvailableFunds is the buying power exposed to strategies. Short-sale
// proceeds already sit in the cash balance, so twice the marked short
// liability is reserved against them before dividing by the margin divisor.
func (e *ExecutionEngine) AvailableFunds() float64 {
	shortLiability := 0.0
	for _, pos := range e.portfolio {
		if pos.Quantity < 0 {
			shortLiability += math.Abs(pos.MarketValue())
		}
	}

	return (e.balance - 2*shortLiability) / e.marginDivisor
}

// Position returns a copy of the symbol's ledger entry, zero-valued if the
// symbol has never been seen.
func (e *ExecutionEngine) Position(symbol string) models.Position {
	pos, found := e.portfolio[symbol]
	if !found {
		return models.Position{Symbol: symbol}
	}

	return *pos
}

func (e *ExecutionEngine) Positions() map[string]models.Position {
	positions := make(map[string]models.Position, len(e.portfolio))
	for symbol, pos := range e.portfolio {
		positions[symbol] = *pos
	}

	return positions
}

// OpenOrders returns the pending orders currently in the book.
func (e *ExecutionEngine) OpenOrders() []*models.Order {
	orders := make([]*models.Order, 0, len(e.openOrders))
	for _, order := range e.openOrders {
		if order.Status == models.OrderStatusPending {
			orders = append(orders, order)
		}
	}

	return orders
}

func (e *ExecutionEngine) Fills() []*models.Trade {
	return e.fills
}

func (e *ExecutionEngine) EquityCurve() []models.EquityRecord {
	return e.equityCurve
}

// Flatten cancels every open order on the targeted symbols (all symbols when
// none are given) and queues one opposing market order per open position,
// via the normal submission path: the closes execute on the next bar.
func (e *ExecutionEngine) Flatten(t time.Time, symbols ...string) error {
	targets := make(map[string]bool)
	if len(symbols) > 0 {
		for _, symbol := range symbols {
			targets[symbol] = true
		}
	} else {
		for symbol := range e.portfolio {
			targets[symbol] = true
		}
		for _, order := range e.openOrders {
			targets[order.Symbol] = true
		}
	}

	for _, order := range e.openOrders {
		if targets[order.Symbol] && order.Status == models.OrderStatusPending {
			order.Cancel()
			eventpubsub.Publish(eventpubsub.OrderCancelledEvent, order)
		}
	}

	sorted := make([]string, 0, len(targets))
	for symbol := range targets {
		sorted = append(sorted, symbol)
	}
	sort.Strings(sorted)

	for _, symbol := range sorted {
		pos, found := e.portfolio[symbol]
		if !found || math.Abs(pos.Quantity) < quantityEpsilon {
			continue
		}

		side := models.SideShort
		if pos.Quantity < 0 {
			side = models.SideLong
		}

		if _, err := e.Submit(models.OrderRequest{
			Symbol:   symbol,
			Side:     side,
			Type:     models.Market,
			Quantity: math.Abs(pos.Quantity),
			Tag:      "flatten",
		}, t); err != nil {
			return fmt.Errorf("flatten %s: %w", symbol, err)
		}
	}

	return nil
}
