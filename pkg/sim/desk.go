package sim

import (
	"time"

	"booksim/pkg/book"
	"booksim/pkg/models"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// OrderSpec is what the display shell submits. Price is ignored for
// market orders; DelaySeconds must be one of 0, 5, 10 or 30.
type OrderSpec struct {
	Venue        models.Venue
	Symbol       string
	Side         models.OrderSide
	Kind         models.OrderKind
	Price        decimal.Decimal
	Qty          decimal.Decimal
	DelaySeconds int
}

var validDelays = map[int]struct{}{0: {}, 5: {}, 10: {}, 30: {}}

// Desk is the workflow boundary between the display shell and the
// simulation core. It checks book readiness, freezes a market order's
// price off the opposite top-of-book, evaluates once and hands the entry
// to the scheduler.
type Desk struct {
	books  *book.Store
	ledger *Ledger
	sched  *Scheduler
	log    *zap.Logger
}

func NewDesk(books *book.Store, ledger *Ledger, log *zap.Logger) *Desk {
	return &Desk{
		books:  books,
		ledger: ledger,
		sched:  NewScheduler(ledger, log),
		log:    log,
	}
}

// Submit validates the spec, evaluates it against the current snapshot
// and returns the computed entry. The returned metrics are final: delayed
// simulations record these exact values later.
func (d *Desk) Submit(spec OrderSpec) (Entry, error) {
	if err := validateSpec(spec); err != nil {
		return Entry{}, err
	}

	snap, ok := d.books.Snapshot(spec.Venue, spec.Symbol)
	if !ok {
		return Entry{}, errors.Wrapf(models.ErrBookNotReady, "%s %s", spec.Venue, spec.Symbol)
	}

	price := spec.Price
	if spec.Kind == models.OrderKindMarket {
		top, ok := oppositeTop(spec.Side, snap)
		if !ok {
			return Entry{}, errors.Wrapf(models.ErrNoMarketPrice, "%s %s %s", spec.Venue, spec.Symbol, spec.Side)
		}
		price = top.Price
	}

	order := models.SimulatedOrder{
		ID:        uuid.NewString(),
		Venue:     spec.Venue,
		Symbol:    spec.Symbol,
		Side:      spec.Side,
		Kind:      spec.Kind,
		Price:     price,
		Qty:       spec.Qty,
		CreatedAt: time.Now().UTC(),
		Delay:     time.Duration(spec.DelaySeconds) * time.Second,
	}

	entry := Entry{Order: order, Metrics: Evaluate(order, snap)}
	d.sched.Schedule(entry, order.Delay)

	d.log.Info("simulated order",
		zap.String("order_id", order.ID),
		zap.String("venue", order.Venue.String()),
		zap.String("symbol", order.Symbol),
		zap.String("side", string(order.Side)),
		zap.String("kind", string(order.Kind)),
		zap.String("fill_pct", entry.Metrics.FillPct.String()),
	)

	return entry, nil
}

// Latest returns the most recent recorded simulation for a key.
func (d *Desk) Latest(venue models.Venue, symbol string) (Entry, bool) {
	return d.ledger.LatestFor(venue, symbol)
}

// All returns the full recorded ledger in insertion order.
func (d *Desk) All() []Entry {
	return d.ledger.All()
}

func validateSpec(spec OrderSpec) error {
	if spec.Qty.Sign() <= 0 {
		return errors.Wrap(models.ErrBadOrder, "qty must be positive")
	}
	if spec.Kind == models.OrderKindLimit && spec.Price.Sign() <= 0 {
		return errors.Wrap(models.ErrBadOrder, "limit order needs a positive price")
	}
	if _, ok := validDelays[spec.DelaySeconds]; !ok {
		return errors.Wrapf(models.ErrBadOrder, "unsupported delay %ds", spec.DelaySeconds)
	}
	return nil
}

func oppositeTop(side models.OrderSide, snap models.BookSnapshot) (models.PriceLevel, bool) {
	if side == models.OrderSideBuy {
		return snap.BestAsk()
	}
	return snap.BestBid()
}
