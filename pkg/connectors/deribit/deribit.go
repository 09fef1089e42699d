// Package deribit adapts the Deribit JSON-RPC book channel. Deribit is
// subscribed without change tracking ("none" interval), so every inbound
// frame is a complete snapshot at the channel's depth.
package deribit

import (
	"encoding/json"
	"time"

	"booksim/pkg/models"

	"github.com/pkg/errors"
)

const (
	Name  = "deribit"
	wsURL = "wss://www.deribit.com/ws/api/v2"

	// Channel shape: book.<instrument>.none.<depth>.100ms
	depthTag = "20"
	interval = "100ms"
)

type Adapter struct{}

func New() *Adapter {
	return &Adapter{}
}

func (*Adapter) Venue() models.Venue {
	return models.VenueDeribit
}

func (*Adapter) URL() string {
	return wsURL
}

// WireSymbol is the identity: instruments are configured in Deribit's
// own format (BTC-PERPETUAL).
func (*Adapter) WireSymbol(symbol string) string {
	return symbol
}

type subscribeReq struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  struct {
		Channels []string `json:"channels"`
	} `json:"params"`
}

func (*Adapter) BuildSubscription(symbol string) ([]byte, error) {
	req := subscribeReq{JSONRPC: "2.0", ID: 42, Method: "public/subscribe"}
	req.Params.Channels = []string{"book." + symbol + ".none." + depthTag + "." + interval}

	b, err := json.Marshal(req)
	if err != nil {
		return nil, errors.Wrap(err, "deribit.BuildSubscription")
	}
	return b, nil
}

type bookMsg struct {
	Method string `json:"method"`
	Params struct {
		Channel string `json:"channel"`
		Data    struct {
			InstrumentName string          `json:"instrument_name"`
			Bids           [][]json.Number `json:"bids"`
			Asks           [][]json.Number `json:"asks"`
			Timestamp      int64           `json:"timestamp"`
		} `json:"data"`
	} `json:"params"`
}

func (*Adapter) Parse(raw []byte) (*models.UpdateBatch, error) {
	var msg bookMsg
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, errors.Wrap(err, "deribit.Parse")
	}

	// RPC responses (subscribe acks, heartbeats) carry no params data.
	if msg.Method != "subscription" || msg.Params.Data.InstrumentName == "" {
		return nil, nil
	}

	data := msg.Params.Data
	bids, err := parseLevels(data.Bids)
	if err != nil {
		return nil, errors.Wrap(err, "deribit.Parse bids")
	}
	asks, err := parseLevels(data.Asks)
	if err != nil {
		return nil, errors.Wrap(err, "deribit.Parse asks")
	}

	batch := &models.UpdateBatch{
		Venue:      models.VenueDeribit,
		Symbol:     data.InstrumentName,
		Bids:       bids,
		Asks:       asks,
		IsSnapshot: true,
		SourceTime: sourceTime(data.Timestamp),
	}
	if batch.Empty() {
		return nil, nil
	}
	return batch, nil
}

func parseLevels(raw [][]json.Number) ([]models.PriceLevel, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	levels := make([]models.PriceLevel, 0, len(raw))
	for _, entry := range raw {
		if len(entry) < 2 {
			return nil, errors.Wrapf(models.ErrBadLevel, "entry %v", entry)
		}
		lvl, err := models.ParseLevel(entry[0].String(), entry[1].String())
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
