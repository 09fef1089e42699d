// Package okx adapts the OKX v5 public books channel. Snapshots and
// deltas share one message shape and are told apart by the action tag.
package okx

import (
	"encoding/json"
	"strconv"
	"time"

	"booksim/pkg/models"

	"github.com/pkg/errors"
)

const (
	Name  = "okx"
	wsURL = "wss://ws.okx.com:8443/ws/v5/public"
)

type Adapter struct{}

func New() *Adapter {
	return &Adapter{}
}

func (*Adapter) Venue() models.Venue {
	return models.VenueOKX
}

func (*Adapter) URL() string {
	return wsURL
}

// WireSymbol is the identity: OKX instIds already use the dash format.
func (*Adapter) WireSymbol(symbol string) string {
	return symbol
}

type subscribeReq struct {
	Op   string `json:"op"`
	Args []struct {
		Channel string `json:"channel"`
		InstID  string `json:"instId"`
	} `json:"args"`
}

func (*Adapter) BuildSubscription(symbol string) ([]byte, error) {
	req := subscribeReq{Op: "subscribe"}
	req.Args = append(req.Args, struct {
		Channel string `json:"channel"`
		InstID  string `json:"instId"`
	}{Channel: "books", InstID: symbol})

	b, err := json.Marshal(req)
	if err != nil {
		return nil, errors.Wrap(err, "okx.BuildSubscription")
	}
	return b, nil
}

type bookMsg struct {
	Arg struct {
		Channel string `json:"channel"`
		InstID  string `json:"instId"`
	} `json:"arg"`
	Action string `json:"action"`
	Data   []struct {
		Bids [][]string `json:"bids"`
		Asks [][]string `json:"asks"`
		Ts   string     `json:"ts"`
	} `json:"data"`
}

// Parse handles books frames. "snapshot" and "partial" actions replace
// the book, anything else is a delta. Event frames (subscribe acks,
// errors) carry no data and come back as no-ops.
func (*Adapter) Parse(raw []byte) (*models.UpdateBatch, error) {
	var msg bookMsg
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, errors.Wrap(err, "okx.Parse")
	}

	if msg.Arg.InstID == "" || len(msg.Data) == 0 {
		return nil, nil
	}

	data := msg.Data[0]
	bids, err := parseLevels(data.Bids)
	if err != nil {
		return nil, errors.Wrap(err, "okx.Parse bids")
	}
	asks, err := parseLevels(data.Asks)
	if err != nil {
		return nil, errors.Wrap(err, "okx.Parse asks")
	}

	batch := &models.UpdateBatch{
		Venue:      models.VenueOKX,
		Symbol:     msg.Arg.InstID,
		Bids:       bids,
		Asks:       asks,
		IsSnapshot: msg.Action == "snapshot" || msg.Action == "partial",
		SourceTime: parseMillis(data.Ts),
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

func parseMillis(ts string) time.Time {
	ms, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return time.Now().UTC()
	}
	return time.UnixMilli(ms).UTC()
}
