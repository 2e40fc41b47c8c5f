package models

import "time"

// EquityRecord is one point on the equity curve, appended once per bar.
type EquityRecord struct {
	Time   time.Time `json:"time"`
	Equity float64   `json:"equity"`
}
