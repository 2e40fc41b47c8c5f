package models

import "fmt"

type OrderType string

const (
	Market    OrderType = "MARKET"
	Limit     OrderType = "LIMIT"
	Stop      OrderType = "STOP"
	StopLimit OrderType = "STOP_LIMIT"
)

func (t OrderType) Validate() error {
	switch t {
	case Market, Limit, Stop, StopLimit:
		return nil
	default:
		return fmt.Errorf("invalid order type: %s", t)
	}
}

// RequiresPrice reports whether orders of this type need a trigger price.
func (t OrderType) RequiresPrice() bool {
	return t == Limit || t == Stop || t == StopLimit
}
