package data

import (
	"time"

	"github.com/jcalderone/barsim/src/models"
)

// BarFeed supplies a chronologically ordered sequence of bars for one symbol.
// Implementations own fetching and caching; the engine only consumes the
// returned slice.
type BarFeed interface {
	GetSymbol() string
	FetchBars(start, end time.Time) ([]models.Bar, error)
}
