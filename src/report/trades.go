package report

import (
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/jcalderone/barsim/src/models"
)

// TradesTable renders every fill of a run as a console table, oldest first.
func TradesTable(fills []*models.Trade) string {
	display := &strings.Builder{}

	table := tablewriter.NewWriter(display)
	table.SetHeader([]string{"Time", "Symbol", "Side", "Qty", "Price", "Commission", "PnL"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	table.SetColumnSeparator("")
	display.WriteString("Fills:\n")

	for _, fill := range fills {
		table.Append([]string{
			fill.Time.Format("2006-01-02 15:04:05"),
			fill.Symbol,
			string(fill.Side),
			fmt.Sprintf("%.4f", fill.Quantity),
			fmt.Sprintf("%.2f", fill.Price),
			fmt.Sprintf("%.2f", fill.Commission),
			fmt.Sprintf("%.2f", fill.Pnl),
		})
	}

	table.Render()
	return display.String()
}
