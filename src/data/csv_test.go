package data

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcalderone/barsim/src/models"
)

func writeTempCSV(t *testing.T, contents string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "bars.csv")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))

	return path
}

func TestLoadBars(t *testing.T) {
	t.Run("loads ordered bars", func(t *testing.T) {
		path := writeTempCSV(t, `time,symbol,open,high,low,close,volume
2024-01-02T00:00:00Z,ETH,100,101,99,100.5,12.5
2024-01-02T00:15:00Z,ETH,100.5,102,100,101,8.2
`)

		bars, err := LoadBars(path)
		require.NoError(t, err)
		require.Len(t, bars, 2)
		assert.Equal(t, "ETH", bars[0].Symbol)
		assert.Equal(t, 100.0, bars[0].Open)
		assert.Equal(t, 101.0, bars[1].Close)
		assert.True(t, bars[0].Time.Before(bars[1].Time))
	})

	t.Run("rejects out of order bars", func(t *testing.T) {
		path := writeTempCSV(t, `time,symbol,open,high,low,close,volume
2024-01-02T00:15:00Z,ETH,100,101,99,100,1
2024-01-02T00:00:00Z,ETH,100,101,99,100,1
`)

		_, err := LoadBars(path)
		assert.Error(t, err)
	})

	t.Run("rejects malformed timestamps", func(t *testing.T) {
		path := writeTempCSV(t, `time,symbol,open,high,low,close,volume
yesterday,ETH,100,101,99,100,1
`)

		_, err := LoadBars(path)
		assert.Error(t, err)
	})
}

func TestCSVFeed(t *testing.T) {
	path := writeTempCSV(t, `time,symbol,open,high,low,close,volume
2024-01-02T00:00:00Z,,100,101,99,100,1
2024-01-02T01:00:00Z,,101,102,100,101,1
2024-01-02T02:00:00Z,,102,103,101,102,1
`)

	feed := NewCSVFeed(path, "ETH")
	assert.Equal(t, "ETH", feed.GetSymbol())

	start := time.Date(2024, time.January, 2, 1, 0, 0, 0, time.UTC)
	end := time.Date(2024, time.January, 2, 2, 0, 0, 0, time.UTC)

	bars, err := feed.FetchBars(start, end)
	require.NoError(t, err)
	require.Len(t, bars, 1)
	assert.Equal(t, "ETH", bars[0].Symbol)
	assert.Equal(t, 101.0, bars[0].Open)
}

func TestSaveBarsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.csv")

	saved := []models.Bar{
		{Time: time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC), Symbol: "BTC", Open: 50, High: 51, Low: 49, Close: 50.5, Volume: 3},
		{Time: time.Date(2024, time.January, 2, 0, 15, 0, 0, time.UTC), Symbol: "BTC", Open: 50.5, High: 52, Low: 50, Close: 51, Volume: 4},
	}

	require.NoError(t, SaveBars(path, saved))

	loaded, err := LoadBars(path)
	require.NoError(t, err)
	assert.Equal(t, saved, loaded)
}
