package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"booksim/pkg/book"
	"booksim/pkg/models"
	"booksim/pkg/sim"
	"booksim/pkg/stats"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T) (*Server, *book.Store, *stats.Tracker) {
	t.Helper()
	books := book.NewStore(15)
	tracker := stats.NewTracker()
	desk := sim.NewDesk(books, sim.NewLedger(), zap.NewNop())
	return New(books, desk, tracker, NewHub(), zap.NewNop()), books, tracker
}

func seed(books *book.Store) {
	books.Apply(models.UpdateBatch{
		Venue:  models.VenueOKX,
		Symbol: "BTC-USDT",
		Bids: []models.PriceLevel{
			{Price: decimal.NewFromInt(99), Size: decimal.NewFromInt(1)},
		},
		Asks: []models.PriceLevel{
			{Price: decimal.NewFromInt(100), Size: decimal.NewFromInt(2)},
			{Price: decimal.NewFromInt(101), Size: decimal.NewFromInt(3)},
		},
		IsSnapshot: true,
		SourceTime: time.Now().UTC(),
	})
}

func doJSON(t *testing.T, s *Server, method, target, body string) (*http.Response, map[string]any) {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}

	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	var decoded map[string]any
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp, decoded
}

func TestHandleBook(t *testing.T) {
	s, books, _ := newTestServer(t)

	resp, _ := doJSON(t, s, http.MethodGet, "/api/v1/book/okx/BTC-USDT", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "book not ready yet")

	seed(books)

	resp, body := doJSON(t, s, http.MethodGet, "/api/v1/book/okx/BTC-USDT", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "okx", body["venue"])
	assert.Len(t, body["asks"], 2)

	resp, body = doJSON(t, s, http.MethodGet, "/api/v1/book/okx/BTC-USDT?depth=1", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["asks"], 1)

	resp, _ = doJSON(t, s, http.MethodGet, "/api/v1/book/nasdaq/BTC-USDT", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandleSimulate(t *testing.T) {
	s, books, _ := newTestServer(t)

	payload := `{"venue":"okx","symbol":"BTC-USDT","side":"buy","kind":"market","qty":"4","delay_seconds":0}`

	resp, _ := doJSON(t, s, http.MethodPost, "/api/v1/simulations", payload)
	assert.Equal(t, http.StatusConflict, resp.StatusCode, "refused before first snapshot")

	seed(books)

	resp, body := doJSON(t, s, http.MethodPost, "/api/v1/simulations", payload)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	metrics := body["metrics"].(map[string]any)
	assert.Equal(t, "100.5", metrics["avg_fill_price"])
	assert.Equal(t, "0.5", metrics["slippage_pct"])
	assert.Equal(t, "100", metrics["fill_pct"])

	resp, body = doJSON(t, s, http.MethodGet, "/api/v1/simulations/okx/BTC-USDT/latest", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	order := body["order"].(map[string]any)
	assert.Equal(t, "okx", order["venue"])

	resp, _ = doJSON(t, s, http.MethodPost, "/api/v1/simulations",
		`{"venue":"okx","symbol":"BTC-USDT","side":"buy","kind":"market","qty":"0","delay_seconds":0}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, s, http.MethodPost, "/api/v1/simulations",
		`{"venue":"okx","symbol":"BTC-USDT","side":"buy","kind":"market","qty":"1","delay_seconds":7}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandleLatestSimulation_Empty(t *testing.T) {
	s, _, _ := newTestServer(t)

	resp, _ := doJSON(t, s, http.MethodGet, "/api/v1/simulations/okx/BTC-USDT/latest", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHandleStats(t *testing.T) {
	s, books, tracker := newTestServer(t)

	resp, _ := doJSON(t, s, http.MethodGet, "/api/v1/stats/okx/BTC-USDT", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	seed(books)
	snap, ok := books.Snapshot(models.VenueOKX, "BTC-USDT")
	require.True(t, ok)
	tracker.Observe(snap)

	resp, body := doJSON(t, s, http.MethodGet, "/api/v1/stats/okx/BTC-USDT", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), body["updates"])
	assert.InDelta(t, 99.5, body["mid_last"].(float64), 1e-9)
}

func TestHub_BroadcastDropsWhenFull(t *testing.T) {
	hub := NewHub()
	sub := hub.Subscribe(1)
	defer hub.Unsubscribe(sub)

	hub.Broadcast(models.BookSnapshot{Symbol: "a"})
	hub.Broadcast(models.BookSnapshot{Symbol: "b"}) // dropped, buffer full

	got := <-sub.C
	assert.Equal(t, "a", got.Symbol)

	select {
	case extra := <-sub.C:
		t.Fatalf("unexpected extra snapshot %q", extra.Symbol)
	default:
	}
}
