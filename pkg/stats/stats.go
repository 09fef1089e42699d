// Package stats keeps rolling mid-price and spread windows per book so
// consumers can see what a feed has been doing lately without replaying
// it.
package stats

import (
	"math"
	"sync"
	"time"

	"booksim/pkg/book"
	"booksim/pkg/models"

	"github.com/c-pro/rolling"
)

const (
	windowSize     = 4096
	windowDuration = 5 * time.Minute
)

type series struct {
	mid     *rolling.Window
	spread  *rolling.Window
	updates int64
}

// Summary is a point-in-time digest of one book's recent activity.
type Summary struct {
	Updates    int64   `json:"updates"`
	MidLast    float64 `json:"mid_last"`
	MidAvg     float64 `json:"mid_avg"`
	MidMin     float64 `json:"mid_min"`
	MidMax     float64 `json:"mid_max"`
	SpreadLast float64 `json:"spread_last"`
	SpreadAvg  float64 `json:"spread_avg"`
}

type Tracker struct {
	mux   sync.RWMutex
	byKey map[book.Key]*series
}

func NewTracker() *Tracker {
	return &Tracker{byKey: make(map[book.Key]*series)}
}

// Observe folds one fresh snapshot into the key's windows. Snapshots
// with an empty side still count as updates but contribute no mid or
// spread points.
func (t *Tracker) Observe(snap models.BookSnapshot) {
	key := book.Key{Venue: snap.Venue, Symbol: snap.Symbol}

	t.mux.Lock()
	defer t.mux.Unlock()

	s, ok := t.byKey[key]
	if !ok {
		s = &series{
			mid:    rolling.NewWindow(windowSize, windowDuration),
			spread: rolling.NewWindow(windowSize, windowDuration),
		}
		t.byKey[key] = s
	}

	s.updates++

	mid, okM := snap.Mid()
	spread, okS := snap.Spread()
	if okM && okS {
		s.mid.Add(mid.InexactFloat64())
		s.spread.Add(spread.InexactFloat64())
	}
}

// Summary returns the digest for a key, false when the key has never
// been observed.
func (t *Tracker) Summary(venue models.Venue, symbol string) (Summary, bool) {
	t.mux.RLock()
	defer t.mux.RUnlock()

	s, ok := t.byKey[book.Key{Venue: venue, Symbol: symbol}]
	if !ok {
		return Summary{}, false
	}

	return Summary{
		Updates:    s.updates,
		MidLast:    nz(s.mid.Last()),
		MidAvg:     nz(s.mid.Avg()),
		MidMin:     nz(s.mid.Min()),
		MidMax:     nz(s.mid.Max()),
		SpreadLast: nz(s.spread.Last()),
		SpreadAvg:  nz(s.spread.Avg()),
	}, true
}

// nz maps the windows' empty-state NaN to zero so summaries always
// serialize.
func nz(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}
