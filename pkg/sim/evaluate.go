// Package sim evaluates hypothetical orders against live book snapshots
// and keeps a session ledger of everything simulated.
package sim

import (
	"booksim/pkg/models"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Evaluate walks the order through the side opposite its own: a buy
// consumes asks best-first, a sell consumes bids best-first. It is a pure
// function of (order, snapshot); callers are responsible for only handing
// it books that are ready.
//
// Accumulation runs at full precision, rounding happens once at output:
// average fill price to 2 decimals, slippage to 3, fill percentage to 2.
func Evaluate(order models.SimulatedOrder, book models.BookSnapshot) models.FillMetrics {
	levels := book.Asks
	if order.Side == models.OrderSideSell {
		levels = book.Bids
	}

	remaining := order.Qty
	cost := decimal.Zero
	for _, lvl := range levels {
		if remaining.Sign() <= 0 {
			break
		}
		traded := decimal.Min(lvl.Size, remaining)
		cost = cost.Add(traded.Mul(lvl.Price))
		remaining = remaining.Sub(traded)
	}

	filled := order.Qty.Sub(remaining)

	avgPrice := decimal.Zero
	if filled.Sign() > 0 {
		avgPrice = cost.Div(filled)
	}

	// Slippage baseline is the opposite top-of-book at evaluation time,
	// falling back to the order's own price when that side is empty.
	topPrice := order.Price
	if len(levels) > 0 {
		topPrice = levels[0].Price
	}

	slippage := decimal.Zero
	if topPrice.Sign() > 0 && filled.Sign() > 0 {
		if order.Side == models.OrderSideBuy {
			slippage = avgPrice.Sub(topPrice).Div(topPrice).Mul(hundred)
		} else {
			slippage = topPrice.Sub(avgPrice).Div(topPrice).Mul(hundred)
		}
	}

	fillPct := decimal.Zero
	if order.Qty.Sign() > 0 {
		fillPct = filled.Div(order.Qty).Mul(hundred)
	}

	return models.FillMetrics{
		FillQty:      filled,
		FillPct:      fillPct.Round(2),
		AvgFillPrice: avgPrice.Round(2),
		SlippagePct:  slippage.Round(3),
	}
}
