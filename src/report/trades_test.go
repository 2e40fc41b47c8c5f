package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jcalderone/barsim/src/models"
)

func TestTradesTable(t *testing.T) {
	at := time.Date(2024, time.March, 1, 9, 30, 0, 0, time.UTC)

	fills := []*models.Trade{
		models.NewTrade("o1", "ETH", models.SideLong, 1.5, 2000.25, 2.7, at, 0),
		models.NewTrade("o2", "ETH", models.SideShort, 1.5, 2050.00, 2.8, at.Add(time.Hour), 74.6321),
	}

	out := TradesTable(fills)

	assert.Contains(t, out, "2024-03-01 09:30:00")
	assert.Contains(t, out, "LONG")
	assert.Contains(t, out, "SHORT")
	assert.Contains(t, out, "2000.25")
	assert.Contains(t, out, "74.63")
}
