package data

import (
	"fmt"
	"os"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/jcalderone/barsim/src/models"
)

type barRow struct {
	Time   string  `csv:"time"`
	Symbol string  `csv:"symbol"`
	Open   float64 `csv:"open"`
	High   float64 `csv:"high"`
	Low    float64 `csv:"low"`
	Close  float64 `csv:"close"`
	Volume float64 `csv:"volume"`
}

// CSVFeed reads bars from a CSV file with columns
// time,symbol,open,high,low,close,volume; time is RFC 3339. Rows with an
// empty symbol column take the feed's symbol.
type CSVFeed struct {
	path   string
	symbol string
}

func NewCSVFeed(path, symbol string) *CSVFeed {
	return &CSVFeed{path: path, symbol: symbol}
}

func (f *CSVFeed) GetSymbol() string {
	return f.symbol
}

func (f *CSVFeed) FetchBars(start, end time.Time) ([]models.Bar, error) {
	bars, err := LoadBars(f.path)
	if err != nil {
		return nil, err
	}

	filtered := make([]models.Bar, 0, len(bars))
	for _, bar := range bars {
		if bar.Time.Before(start) || !bar.Time.Before(end) {
			continue
		}

		if bar.Symbol == "" {
			bar.Symbol = f.symbol
		}

		filtered = append(filtered, bar)
	}

	return filtered, nil
}

// LoadBars reads and validates a bar CSV: timestamps must parse and be
// non-decreasing.
func LoadBars(path string) ([]models.Bar, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open bar file: %w", err)
	}
	defer file.Close()

	var rows []*barRow
	if err := gocsv.UnmarshalFile(file, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal bar file %s: %w", path, err)
	}

	bars := make([]models.Bar, 0, len(rows))
	var prev time.Time
	for i, row := range rows {
		t, err := time.Parse(time.RFC3339, row.Time)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid timestamp %q: %w", i, row.Time, err)
		}

		if t.Before(prev) {
			return nil, fmt.Errorf("row %d: bars out of order: %s < %s", i, t, prev)
		}
		prev = t

		bars = append(bars, models.Bar{
			Time:   t,
			Symbol: row.Symbol,
			Open:   row.Open,
			High:   row.High,
			Low:    row.Low,
			Close:  row.Close,
			Volume: row.Volume,
		})
	}

	return bars, nil
}

// SaveBars writes bars to a CSV file readable by LoadBars.
func SaveBars(path string, bars []models.Bar) error {
	rows := make([]*barRow, 0, len(bars))
	for _, bar := range bars {
		rows = append(rows, &barRow{
			Time:   bar.Time.Format(time.RFC3339),
			Symbol: bar.Symbol,
			Open:   bar.Open,
			High:   bar.High,
			Low:    bar.Low,
			Close:  bar.Close,
			Volume: bar.Volume,
		})
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create bar file: %w", err)
	}
	defer file.Close()

	if err := gocsv.MarshalFile(&rows, file); err != nil {
		return fmt.Errorf("failed to marshal bars to %s: %w", path, err)
	}

	return nil
}
