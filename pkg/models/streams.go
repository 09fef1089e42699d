package models

import (
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

type Side uint8

const (
	SideBid Side = iota
	SideAsk
)

func (s Side) String() string {
	if s == SideBid {
		return "bid"
	}
	return "ask"
}

type PriceLevel struct {
	Price decimal.Decimal `json:"price"`
	Size  decimal.Decimal `json:"size"`
}

// ParseLevel builds a PriceLevel from wire tokens. Venues that encode
// levels as strings go through here so that a malformed token fails the
// whole batch instead of sneaking in a zero.
func ParseLevel(price, size string) (PriceLevel, error) {
	p, err := decimal.NewFromString(price)
	if err != nil {
		return PriceLevel{}, errors.Wrapf(ErrBadLevel, "price %q", price)
	}

	s, err := decimal.NewFromString(size)
	if err != nil {
		return PriceLevel{}, errors.Wrapf(ErrBadLevel, "size %q", size)
	}

	return PriceLevel{Price: p, Size: s}, nil
}

// UpdateBatch is one venue message normalized into canonical price-level
// updates. A level with zero size inside a delta batch means "remove that
// price". IsSnapshot means "replace everything this book holds with the
// levels carried here".
type UpdateBatch struct {
	Venue      Venue
	Symbol     string
	Bids       []PriceLevel
	Asks       []PriceLevel
	IsSnapshot bool
	SourceTime time.Time
}

// Empty reports whether the batch carries no actionable levels.
func (b *UpdateBatch) Empty() bool {
	return len(b.Bids) == 0 && len(b.Asks) == 0
}

// BookSnapshot is an immutable depth-limited view of one book. Bids are
// best-first descending, asks best-first ascending.
type BookSnapshot struct {
	Venue      Venue        `json:"venue"`
	Symbol     string       `json:"symbol"`
	Bids       []PriceLevel `json:"bids"`
	Asks       []PriceLevel `json:"asks"`
	ObservedAt time.Time    `json:"observed_at"`
}

func (s *BookSnapshot) BestBid() (PriceLevel, bool) {
	if len(s.Bids) == 0 {
		return PriceLevel{}, false
	}
	return s.Bids[0], true
}

func (s *BookSnapshot) BestAsk() (PriceLevel, bool) {
	if len(s.Asks) == 0 {
		return PriceLevel{}, false
	}
	return s.Asks[0], true
}

// Mid returns the mid price, false when either side is empty.
func (s *BookSnapshot) Mid() (decimal.Decimal, bool) {
	bid, okB := s.BestBid()
	ask, okA := s.BestAsk()
	if !okB || !okA {
		return decimal.Zero, false
	}
	return bid.Price.Add(ask.Price).Div(decimal.NewFromInt(2)), true
}

// Spread returns best ask minus best bid, false when either side is empty.
func (s *BookSnapshot) Spread() (decimal.Decimal, bool) {
	bid, okB := s.BestBid()
	ask, okA := s.BestAsk()
	if !okB || !okA {
		return decimal.Zero, false
	}
	return ask.Price.Sub(bid.Price), true
}
