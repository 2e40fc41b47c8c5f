package report

import (
	"fmt"
	"math"
	"strings"

	"github.com/montanaflynn/stats"
	"github.com/olekukonko/tablewriter"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jcalderone/barsim/src/models"
)

// Summary holds the performance metrics of a completed run.
type Summary struct {
	InitialBalance  float64
	FinalEquity     float64
	NetProfit       float64
	NetProfitPct    float64
	TotalTrades     int
	WinningTrades   int
	LosingTrades    int
	WinRate         float64
	ProfitFactor    float64
	MaxDrawdownPct  float64
	SharpeRatio     float64
	TotalCommission float64
}

// NewSummary derives a Summary from the fills and equity curve an engine
// produced. Win rate and profit factor only count fills that closed part of a
// position, so a run of pure entries reports zero closed trades.
func NewSummary(initialBalance, finalEquity float64, fills []*models.Trade, equityCurve []models.EquityRecord) Summary {
	s := Summary{
		InitialBalance: initialBalance,
		FinalEquity:    finalEquity,
		NetProfit:      finalEquity - initialBalance,
		TotalTrades:    len(fills),
	}

	if initialBalance != 0 {
		s.NetProfitPct = s.NetProfit / initialBalance * 100
	}

	var grossProfit, grossLoss float64
	for _, fill := range fills {
		s.TotalCommission += fill.Commission

		if fill.Pnl > 0 {
			s.WinningTrades++
			grossProfit += fill.Pnl
		} else if fill.Pnl < 0 {
			s.LosingTrades++
			grossLoss += -fill.Pnl
		}
	}

	if closed := s.WinningTrades + s.LosingTrades; closed > 0 {
		s.WinRate = float64(s.WinningTrades) / float64(closed) * 100
	}

	if grossLoss > 0 {
		s.ProfitFactor = grossProfit / grossLoss
	} else if grossProfit > 0 {
		s.ProfitFactor = math.Inf(1)
	}

	s.MaxDrawdownPct = maxDrawdownPct(equityCurve)
	s.SharpeRatio = sharpeRatio(equityCurve)

	return s
}

func maxDrawdownPct(curve []models.EquityRecord) float64 {
	var peak, maxDD float64
	for _, rec := range curve {
		if rec.Equity > peak {
			peak = rec.Equity
		}

		if peak > 0 {
			if dd := (peak - rec.Equity) / peak; dd > maxDD {
				maxDD = dd
			}
		}
	}

	return maxDD * 100
}

// sharpeRatio is computed over per-bar equity returns with a zero risk free
// rate and no annualization.
func sharpeRatio(curve []models.EquityRecord) float64 {
	if len(curve) < 2 {
		return 0
	}

	returns := make([]float64, 0, len(curve)-1)
	for i := 1; i < len(curve); i++ {
		prev := curve[i-1].Equity
		if prev == 0 {
			continue
		}

		returns = append(returns, (curve[i].Equity-prev)/prev)
	}

	mean, err := stats.Mean(returns)
	if err != nil {
		return 0
	}

	stdDev, err := stats.StandardDeviation(returns)
	if err != nil || stdDev == 0 {
		return 0
	}

	return mean / stdDev
}

func (s Summary) String() string {
	display := &strings.Builder{}
	p := message.NewPrinter(language.English)

	table := tablewriter.NewWriter(display)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetColumnSeparator("")
	display.WriteString("Performance Results:\n")

	profitFactor := "n/a"
	if s.ProfitFactor > 0 && !math.IsInf(s.ProfitFactor, 1) {
		profitFactor = fmt.Sprintf("%.2f", s.ProfitFactor)
	} else if math.IsInf(s.ProfitFactor, 1) {
		profitFactor = "inf"
	}

	rows := [][]string{
		{"Initial Balance", fmt.Sprintf("$%s", p.Sprintf("%.2f", s.InitialBalance))},
		{"Final Equity", fmt.Sprintf("$%s", p.Sprintf("%.2f", s.FinalEquity))},
		{"Net Profit", fmt.Sprintf("$%s (%.2f%%)", p.Sprintf("%.2f", s.NetProfit), s.NetProfitPct)},
		{"Total Fills", fmt.Sprintf("%d", s.TotalTrades)},
		{"Win Rate", fmt.Sprintf("%.1f%% (%d/%d)", s.WinRate, s.WinningTrades, s.WinningTrades+s.LosingTrades)},
		{"Profit Factor", profitFactor},
		{"Max Drawdown", fmt.Sprintf("%.2f%%", s.MaxDrawdownPct)},
		{"Sharpe Ratio", fmt.Sprintf("%.2f", s.SharpeRatio)},
		{"Commission Paid", fmt.Sprintf("$%s", p.Sprintf("%.2f", s.TotalCommission))},
	}

	for _, row := range rows {
		table.Append(row)
	}

	table.Render()
	return display.String()
}
