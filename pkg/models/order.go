package models

import (
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

type OrderSide string

const (
	OrderSideBuy  OrderSide = "buy"
	OrderSideSell OrderSide = "sell"
)

func ParseOrderSide(s string) (OrderSide, error) {
	switch OrderSide(s) {
	case OrderSideBuy, OrderSideSell:
		return OrderSide(s), nil
	}
	return "", errors.Wrapf(ErrBadOrder, "side %q", s)
}

type OrderKind string

const (
	OrderKindMarket OrderKind = "market"
	OrderKindLimit  OrderKind = "limit"
)

func ParseOrderKind(s string) (OrderKind, error) {
	switch OrderKind(s) {
	case OrderKindMarket, OrderKindLimit:
		return OrderKind(s), nil
	}
	return "", errors.Wrapf(ErrBadOrder, "kind %q", s)
}

// SimulatedOrder never reaches a venue. It is immutable once built: a
// market order carries the opposite top-of-book price resolved at
// submission time and keeps it even if the book moves afterwards.
type SimulatedOrder struct {
	ID        string          `json:"id"`
	Venue     Venue           `json:"venue"`
	Symbol    string          `json:"symbol"`
	Side      OrderSide       `json:"side"`
	Kind      OrderKind       `json:"kind"`
	Price     decimal.Decimal `json:"price"`
	Qty       decimal.Decimal `json:"qty"`
	CreatedAt time.Time       `json:"created_at"`
	Delay     time.Duration   `json:"-"`
}

// FillMetrics is the outcome of walking a simulated order through a book
// snapshot. Computed once per order, never revised.
type FillMetrics struct {
	FillQty      decimal.Decimal `json:"fill_qty"`
	FillPct      decimal.Decimal `json:"fill_pct"`
	AvgFillPrice decimal.Decimal `json:"avg_fill_price"`
	SlippagePct  decimal.Decimal `json:"slippage_pct"`
}
