package models

import "fmt"

var (
	ErrMissingPrice       = fmt.Errorf("limit and stop orders require a price")
	ErrAmbiguousSizing    = fmt.Errorf("exactly one of quantity or cash amount must be positive")
	ErrConflictingBracket = fmt.Errorf("bracket price and bracket percent are mutually exclusive")
)
