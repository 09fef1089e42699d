// Package bybit adapts the Bybit v5 linear orderbook topic. A type field
// of "snapshot" marks a full replace, everything else is a delta.
package bybit

import (
	"encoding/json"
	"strings"
	"time"

	"booksim/pkg/models"

	"github.com/pkg/errors"
)

const (
	Name  = "bybit"
	wsURL = "wss://stream.bybit.com/v5/public/linear"

	// depthTag picks the 50-level orderbook stream.
	depthTag = "50"
)

type Adapter struct{}

func New() *Adapter {
	return &Adapter{}
}

func (*Adapter) Venue() models.Venue {
	return models.VenueBybit
}

func (*Adapter) URL() string {
	return wsURL
}

// WireSymbol strips separators and upper-cases: BTC-USDT -> BTCUSDT.
func (*Adapter) WireSymbol(symbol string) string {
	return strings.ToUpper(strings.ReplaceAll(symbol, "-", ""))
}

type subscribeReq struct {
	Op   string   `json:"op"`
	Args []string `json:"args"`
}

func (a *Adapter) BuildSubscription(symbol string) ([]byte, error) {
	b, err := json.Marshal(subscribeReq{
		Op:   "subscribe",
		Args: []string{"orderbook." + depthTag + "." + a.WireSymbol(symbol)},
	})
	if err != nil {
		return nil, errors.Wrap(err, "bybit.BuildSubscription")
	}
	return b, nil
}

type bookMsg struct {
	Topic string `json:"topic"`
	Type  string `json:"type"`
	Ts    int64  `json:"ts"`
	Data  struct {
		Symbol string     `json:"s"`
		Bids   [][]string `json:"b"`
		Asks   [][]string `json:"a"`
	} `json:"data"`
}

func (*Adapter) Parse(raw []byte) (*models.UpdateBatch, error) {
	var msg bookMsg
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, errors.Wrap(err, "bybit.Parse")
	}

	// Op acks and pongs have no topic.
	if !strings.HasPrefix(msg.Topic, "orderbook.") || msg.Data.Symbol == "" {
		return nil, nil
	}

	bids, err := parseLevels(msg.Data.Bids)
	if err != nil {
		return nil, errors.Wrap(err, "bybit.Parse bids")
	}
	asks, err := parseLevels(msg.Data.Asks)
	if err != nil {
		return nil, errors.Wrap(err, "bybit.Parse asks")
	}

	batch := &models.UpdateBatch{
		Venue:      models.VenueBybit,
		Symbol:     msg.Data.Symbol,
		Bids:       bids,
		Asks:       asks,
		IsSnapshot: msg.Type == "snapshot",
		SourceTime: sourceTime(msg.Ts),
	}
	if batch.Empty() {
		return nil, nil
	}
	return batch, nil
}

func parseLevels(raw [][]string) ([]models.PriceLevel, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	levels := make([]models.PriceLevel, 0, len(raw))
	for _, entry := range raw {
		if len(entry) < 2 {
			return nil, errors.Wrapf(models.ErrBadLevel, "entry %v", entry)
		}
		lvl, err := models.ParseLevel(entry[0], entry[1])
		if err != nil {
			return nil, err
		}
		levels = append(levels, lvl)
	}
	return levels, nil
}

func sourceTime(ms int64) time.Time {
	if ms <= 0 {
		return time.Now().UTC()
	}
	return time.UnixMilli(ms).UTC()
}
