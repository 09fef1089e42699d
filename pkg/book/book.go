// Package book reconstructs depth-limited order books from canonical
// update batches. Each (venue, symbol) key owns disjoint state; the only
// things callers ever see are immutable snapshot copies.
package book

import (
	"sort"
	"sync"
	"time"

	"booksim/pkg/models"

	"github.com/shopspring/decimal"
)

type Key struct {
	Venue  models.Venue
	Symbol string
}

// state holds one side of one book as a best-first sorted slice of
// unique-price levels. Zero-size levels are never stored.
type sideLevels struct {
	levels []models.PriceLevel
	desc   bool // bids sort descending, asks ascending
}

func (s *sideLevels) search(price decimal.Decimal) int {
	return sort.Search(len(s.levels), func(i int) bool {
		cmp := s.levels[i].Price.Cmp(price)
		if s.desc {
			return cmp <= 0
		}
		return cmp >= 0
	})
}

// apply upserts one level, removing the price when size is zero.
// Removing an absent price is a no-op.
func (s *sideLevels) apply(lvl models.PriceLevel) {
	i := s.search(lvl.Price)
	found := i < len(s.levels) && s.levels[i].Price.Equal(lvl.Price)

	switch {
	case lvl.Size.Sign() <= 0:
		if found {
			s.levels = append(s.levels[:i], s.levels[i+1:]...)
		}
	case found:
		s.levels[i].Size = lvl.Size
	default:
		s.levels = append(s.levels, models.PriceLevel{})
		copy(s.levels[i+1:], s.levels[i:])
		s.levels[i] = lvl
	}
}

// replace drops everything and rebuilds the side from the batch levels,
// skipping zero sizes.
func (s *sideLevels) replace(levels []models.PriceLevel) {
	s.levels = s.levels[:0]
	for _, lvl := range levels {
		if lvl.Size.Sign() > 0 {
			s.apply(lvl)
		}
	}
}

func (s *sideLevels) top(depth int) []models.PriceLevel {
	n := len(s.levels)
	if depth < n {
		n = depth
	}
	out := make([]models.PriceLevel, n)
	copy(out, s.levels[:n])
	return out
}

type bookState struct {
	bids       sideLevels
	asks       sideLevels
	ready      bool
	observedAt time.Time
}

// Store owns every book. Apply mutates private state and hands back a
// fresh snapshot; concurrent readers only ever touch copies.
type Store struct {
	depth int
	mux   sync.RWMutex
	books map[Key]*bookState
}

func NewStore(depth int) *Store {
	return &Store{
		depth: depth,
		books: make(map[Key]*bookState),
	}
}

func (s *Store) Depth() int {
	return s.depth
}

// Apply merges one canonical batch into the keyed book and returns the
// resulting snapshot. The first batch a key ever sees establishes initial
// state with snapshot semantics no matter what the batch says about
// itself.
func (s *Store) Apply(batch models.UpdateBatch) models.BookSnapshot {
	key := Key{Venue: batch.Venue, Symbol: batch.Symbol}

	s.mux.Lock()
	st, ok := s.books[key]
	if !ok {
		st = &bookState{
			bids: sideLevels{desc: true},
			asks: sideLevels{},
		}
		s.books[key] = st
	}

	if batch.IsSnapshot || !st.ready {
		st.bids.replace(batch.Bids)
		st.asks.replace(batch.Asks)
	} else {
		for _, lvl := range batch.Bids {
			st.bids.apply(lvl)
		}
		for _, lvl := range batch.Asks {
			st.asks.apply(lvl)
		}
	}

	st.ready = true
	st.observedAt = batch.SourceTime
	snap := s.snapshotLocked(key, st, s.depth)
	s.mux.Unlock()

	return snap
}

// Snapshot returns the current depth-limited view of a book, or false
// when the key has never received an update.
func (s *Store) Snapshot(venue models.Venue, symbol string) (models.BookSnapshot, bool) {
	return s.SnapshotDepth(venue, symbol, s.depth)
}

// SnapshotDepth is Snapshot truncated to a caller-chosen depth. Depths
// beyond the configured one just return fewer levels than asked for.
func (s *Store) SnapshotDepth(venue models.Venue, symbol string, depth int) (models.BookSnapshot, bool) {
	if depth <= 0 || depth > s.depth {
		depth = s.depth
	}
	key := Key{Venue: venue, Symbol: symbol}

	s.mux.RLock()
	defer s.mux.RUnlock()

	st, ok := s.books[key]
	if !ok || !st.ready {
		return models.BookSnapshot{}, false
	}
	return s.snapshotLocked(key, st, depth), true
}

func (s *Store) snapshotLocked(key Key, st *bookState, depth int) models.BookSnapshot {
	return models.BookSnapshot{
		Venue:      key.Venue,
		Symbol:     key.Symbol,
		Bids:       st.bids.top(depth),
		Asks:       st.asks.top(depth),
		ObservedAt: st.observedAt,
	}
}

// Keys lists every book that has reached ready state.
func (s *Store) Keys() []Key {
	s.mux.RLock()
	defer s.mux.RUnlock()

	keys := make([]Key, 0, len(s.books))
	for k, st := range s.books {
		if st.ready {
			keys = append(keys, k)
		}
	}
	return keys
}
