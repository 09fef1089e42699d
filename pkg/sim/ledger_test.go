package sim

import (
	"testing"

	"booksim/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedger_AppendOrderAndLatest(t *testing.T) {
	l := NewLedger()

	_, ok := l.LatestFor(models.VenueOKX, "BTC-USDT")
	assert.False(t, ok)

	first := models.SimulatedOrder{ID: "1", Venue: models.VenueOKX, Symbol: "BTC-USDT"}
	second := models.SimulatedOrder{ID: "2", Venue: models.VenueOKX, Symbol: "BTC-USDT"}
	other := models.SimulatedOrder{ID: "3", Venue: models.VenueBybit, Symbol: "BTCUSDT"}

	l.Record(first, models.FillMetrics{})
	l.Record(other, models.FillMetrics{})
	l.Record(second, models.FillMetrics{})

	all := l.All()
	require.Len(t, all, 3)
	assert.Equal(t, "1", all[0].Order.ID, "insertion order preserved")
	assert.Equal(t, "3", all[1].Order.ID)

	latest, ok := l.LatestFor(models.VenueOKX, "BTC-USDT")
	require.True(t, ok)
	assert.Equal(t, "2", latest.Order.ID)

	latest, ok = l.LatestFor(models.VenueBybit, "BTCUSDT")
	require.True(t, ok)
	assert.Equal(t, "3", latest.Order.ID)
}

func TestLedger_AllReturnsCopy(t *testing.T) {
	l := NewLedger()
	l.Record(models.SimulatedOrder{ID: "1"}, models.FillMetrics{})

	all := l.All()
	all[0].Order.ID = "mutated"

	again := l.All()
	assert.Equal(t, "1", again[0].Order.ID)
}
