package data

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	polygon "github.com/polygon-io/client-go/rest"
	polygonmodels "github.com/polygon-io/client-go/rest/models"
	log "github.com/sirupsen/logrus"

	"github.com/jcalderone/barsim/src/models"
)

// PolygonFeed fetches aggregate bars from the polygon.io REST API. Fetched
// ranges are cached to disk as CSV, so a repeated run with the same window
// never goes back to the network.
type PolygonFeed struct {
	client     *polygon.Client
	symbol     string
	multiplier int
	timespan   polygonmodels.Timespan
	cacheDir   string
}

func NewPolygonFeed(apiKey, symbol string, multiplier int, timespan string, cacheDir string) *PolygonFeed {
	return &PolygonFeed{
		client:     polygon.New(apiKey),
		symbol:     symbol,
		multiplier: multiplier,
		timespan:   polygonmodels.Timespan(timespan),
		cacheDir:   cacheDir,
	}
}

func (f *PolygonFeed) GetSymbol() string {
	return f.symbol
}

func (f *PolygonFeed) cachePath(start, end time.Time) string {
	name := fmt.Sprintf("%s_%d%s_%s_%s.csv", f.symbol, f.multiplier, f.timespan, start.Format("20060102T150405"), end.Format("20060102T150405"))
	return filepath.Join(f.cacheDir, name)
}

func (f *PolygonFeed) FetchBars(start, end time.Time) ([]models.Bar, error) {
	if f.cacheDir != "" {
		if bars, err := LoadBars(f.cachePath(start, end)); err == nil {
			log.Debugf("polygon cache hit for %s: %d bars", f.symbol, len(bars))
			return bars, nil
		}
	}

	params := polygonmodels.ListAggsParams{
		Ticker:     f.symbol,
		Multiplier: f.multiplier,
		Timespan:   f.timespan,
		From:       polygonmodels.Millis(start),
		To:         polygonmodels.Millis(end),
	}.WithOrder(polygonmodels.Asc).WithAdjusted(true)

	iter := f.client.ListAggs(context.Background(), params)

	var bars []models.Bar
	for iter.Next() {
		item := iter.Item()
		bars = append(bars, models.Bar{
			Time:   time.Time(item.Timestamp),
			Symbol: f.symbol,
			Open:   item.Open,
			High:   item.High,
			Low:    item.Low,
			Close:  item.Close,
			Volume: item.Volume,
		})
	}

	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to fetch polygon aggs for %s: %w", f.symbol, err)
	}

	if len(bars) == 0 {
		return nil, fmt.Errorf("no bars returned for %s between %s and %s", f.symbol, start, end)
	}

	if f.cacheDir != "" {
		if err := os.MkdirAll(f.cacheDir, 0755); err != nil {
			log.Warnf("failed to create cache dir %s: %v", f.cacheDir, err)
		} else if err := SaveBars(f.cachePath(start, end), bars); err != nil {
			log.Warnf("failed to write bar cache: %v", err)
		}
	}

	return bars, nil
}
