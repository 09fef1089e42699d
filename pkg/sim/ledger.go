package sim

import (
	"sync"

	"booksim/pkg/models"
)

// Entry pairs a simulated order with the metrics computed for it at
// submission time.
type Entry struct {
	Order   models.SimulatedOrder `json:"order"`
	Metrics models.FillMetrics    `json:"metrics"`
}

// Ledger is the append-only record of simulations for one process
// lifetime. Entries are never mutated or evicted.
type Ledger struct {
	mux     sync.RWMutex
	entries []Entry
}

func NewLedger() *Ledger {
	return &Ledger{}
}

func (l *Ledger) Record(order models.SimulatedOrder, metrics models.FillMetrics) {
	l.mux.Lock()
	l.entries = append(l.entries, Entry{Order: order, Metrics: metrics})
	l.mux.Unlock()
}

// LatestFor returns the most recently recorded entry for the key.
func (l *Ledger) LatestFor(venue models.Venue, symbol string) (Entry, bool) {
	l.mux.RLock()
	defer l.mux.RUnlock()

	for i := len(l.entries) - 1; i >= 0; i-- {
		e := l.entries[i]
		if e.Order.Venue == venue && e.Order.Symbol == symbol {
			return e, true
		}
	}
	return Entry{}, false
}

// All returns every entry in insertion order.
func (l *Ledger) All() []Entry {
	l.mux.RLock()
	defer l.mux.RUnlock()

	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}
