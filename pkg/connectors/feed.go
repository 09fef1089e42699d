package connectors

import (
	"context"
	"time"

	"booksim/pkg/models"

	"go.uber.org/zap"
)

const reconnectDelay = 2 * time.Second

// Feed owns one venue connection for a set of symbols. It dials,
// subscribes, normalizes every inbound frame and pushes batches to a
// fan-in channel. On any transport error it reconnects and resubscribes;
// parse failures are logged and dropped without touching book state.
type Feed struct {
	adapter Adapter
	url     string
	symbols map[string]string // wire symbol -> configured symbol
	log     *zap.Logger
}

// NewFeed builds a feed for the adapter's venue. url overrides the
// adapter's default endpoint when non-empty.
func NewFeed(adapter Adapter, url string, symbols []string, log *zap.Logger) *Feed {
	if url == "" {
		url = adapter.URL()
	}

	wire := make(map[string]string, len(symbols))
	for _, s := range symbols {
		wire[adapter.WireSymbol(s)] = s
	}

	return &Feed{
		adapter: adapter,
		url:     url,
		symbols: wire,
		log:     log.With(zap.String("venue", adapter.Venue().String())),
	}
}

// Run keeps the feed alive until ctx is done.
func (f *Feed) Run(ctx context.Context, ch chan<- models.UpdateBatch) {
	for {
		if err := f.runOnce(ctx, ch); err != nil {
			f.log.Warn("feed disconnected", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(reconnectDelay):
			f.log.Info("reconnecting")
		}
	}
}

func (f *Feed) runOnce(ctx context.Context, ch chan<- models.UpdateBatch) error {
	ws := &WS{}
	if err := ws.Connect(ctx, f.url); err != nil {
		return err
	}
	defer ws.Close()

	for _, symbol := range f.symbols {
		sub, err := f.adapter.BuildSubscription(symbol)
		if err != nil {
			return err
		}
		if err := ws.Write(ctx, sub); err != nil {
			return err
		}
		f.log.Info("subscribed", zap.String("symbol", symbol))
	}

	rawCh := make(chan []byte, 256)
	errCh := make(chan error, 1)
	go func() {
		errCh <- ws.Listen(ctx, rawCh)
	}()

	for {
		select {
		case raw := <-rawCh:
			f.dispatch(raw, ch)
		case err := <-errCh:
			return err
		case <-ctx.Done():
			return nil
		}
	}
}

func (f *Feed) dispatch(raw []byte, ch chan<- models.UpdateBatch) {
	batch, err := f.adapter.Parse(raw)
	if err != nil {
		// Batch dropped, previous book state stays untouched.
		f.log.Warn("dropping unparseable frame", zap.Error(err))
		return
	}
	if batch == nil {
		return
	}

	symbol, ok := f.symbols[batch.Symbol]
	if !ok {
		f.log.Warn("frame for unsubscribed symbol", zap.String("symbol", batch.Symbol))
		return
	}
	batch.Symbol = symbol

	ch <- *batch
}
