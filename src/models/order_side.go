package models

import "fmt"

type OrderSide string

const (
	SideLong  OrderSide = "LONG"
	SideShort OrderSide = "SHORT"
)

func (s OrderSide) Validate() error {
	switch s {
	case SideLong, SideShort:
		return nil
	default:
		return fmt.Errorf("invalid order side: %s", s)
	}
}

// Opposite returns the side that closes a fill on s.
func (s OrderSide) Opposite() OrderSide {
	if s == SideLong {
		return SideShort
	}
	return SideLong
}
