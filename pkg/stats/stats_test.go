package stats

import (
	"testing"

	"booksim/pkg/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snap(bid, ask string) models.BookSnapshot {
	s := models.BookSnapshot{Venue: models.VenueOKX, Symbol: "BTC-USDT"}
	if bid != "" {
		s.Bids = []models.PriceLevel{{Price: decimal.RequireFromString(bid), Size: decimal.NewFromInt(1)}}
	}
	if ask != "" {
		s.Asks = []models.PriceLevel{{Price: decimal.RequireFromString(ask), Size: decimal.NewFromInt(1)}}
	}
	return s
}

func TestTracker_Observe(t *testing.T) {
	tr := NewTracker()

	_, ok := tr.Summary(models.VenueOKX, "BTC-USDT")
	assert.False(t, ok)

	tr.Observe(snap("99", "101"))  // mid 100, spread 2
	tr.Observe(snap("100", "102")) // mid 101, spread 2

	got, ok := tr.Summary(models.VenueOKX, "BTC-USDT")
	require.True(t, ok)

	assert.Equal(t, int64(2), got.Updates)
	assert.InDelta(t, 101.0, got.MidLast, 1e-9)
	assert.InDelta(t, 100.5, got.MidAvg, 1e-9)
	assert.InDelta(t, 100.0, got.MidMin, 1e-9)
	assert.InDelta(t, 101.0, got.MidMax, 1e-9)
	assert.InDelta(t, 2.0, got.SpreadAvg, 1e-9)
}

func TestTracker_OneSidedBookCountsWithoutPoints(t *testing.T) {
	tr := NewTracker()

	tr.Observe(snap("99", ""))

	got, ok := tr.Summary(models.VenueOKX, "BTC-USDT")
	require.True(t, ok)
	assert.Equal(t, int64(1), got.Updates)
	assert.Zero(t, got.MidAvg, "empty window reads as zero, not NaN")
}
