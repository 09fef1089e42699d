package bybit

import (
	"encoding/json"
	"testing"

	"booksim/pkg/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWireSymbol(t *testing.T) {
	a := New()
	assert.Equal(t, "BTCUSDT", a.WireSymbol("BTC-USDT"))
	assert.Equal(t, "ETHUSDT", a.WireSymbol("eth-usdt"))
}

func TestBuildSubscription(t *testing.T) {
	b, err := New().BuildSubscription("BTC-USDT")
	require.NoError(t, err)

	var req struct {
		Op   string   `json:"op"`
		Args []string `json:"args"`
	}
	require.NoError(t, json.Unmarshal(b, &req))
	assert.Equal(t, "subscribe", req.Op)
	assert.Equal(t, []string{"orderbook.50.BTCUSDT"}, req.Args)
}

func TestParse_Snapshot(t *testing.T) {
	raw := []byte(`{
		"topic": "orderbook.50.BTCUSDT",
		"type": "snapshot",
		"ts": 1700000000000,
		"data": {"s": "BTCUSDT", "b": [["100", "2"]], "a": [["101", "1"], ["102", "4"]]}
	}`)

	batch, err := New().Parse(raw)
	require.NoError(t, err)
	require.NotNil(t, batch)

	assert.Equal(t, models.VenueBybit, batch.Venue)
	assert.Equal(t, "BTCUSDT", batch.Symbol)
	assert.True(t, batch.IsSnapshot)
	require.Len(t, batch.Asks, 2)
	assert.True(t, batch.Asks[1].Price.Equal(decimal.RequireFromString("102")))
}

func TestParse_Delta(t *testing.T) {
	raw := []byte(`{
		"topic": "orderbook.50.BTCUSDT",
		"type": "delta",
		"ts": 1700000000001,
		"data": {"s": "BTCUSDT", "b": [["100", "0"]], "a": []}
	}`)

	batch, err := New().Parse(raw)
	require.NoError(t, err)
	require.NotNil(t, batch)
	assert.False(t, batch.IsSnapshot)
}

func TestParse_OpAckIsNoop(t *testing.T) {
	batch, err := New().Parse([]byte(`{"success": true, "op": "subscribe"}`))
	require.NoError(t, err)
	assert.Nil(t, batch)
}

func TestParse_MalformedNumberFailsBatch(t *testing.T) {
	raw := []byte(`{
		"topic": "orderbook.50.BTCUSDT",
		"type": "delta",
		"data": {"s": "BTCUSDT", "b": [], "a": [["101", "abc"]]}
	}`)

	_, err := New().Parse(raw)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrBadLevel)
}
