package connectors

import (
	"booksim/pkg/connectors/bybit"
	"booksim/pkg/connectors/deribit"
	"booksim/pkg/connectors/okx"
	"booksim/pkg/models"

	"github.com/pkg/errors"
)

// Adapter translates between one venue's wire protocol and the canonical
// update stream. Implementations are stateless: the same subscription
// request is rebuilt identically after every reconnect.
type Adapter interface {
	Venue() models.Venue

	// URL is the venue's public feed endpoint.
	URL() string

	// WireSymbol maps a configured symbol to the venue's own format.
	WireSymbol(symbol string) string

	// BuildSubscription returns the subscribe frame for one symbol.
	BuildSubscription(symbol string) ([]byte, error)

	// Parse turns a raw frame into a canonical batch. (nil, nil) means
	// the frame carries no actionable state change. Batches come back
	// keyed by wire symbol; malformed numeric fields fail the whole
	// batch.
	Parse(raw []byte) (*models.UpdateBatch, error)
}

// ForVenue returns the adapter for a known venue.
func ForVenue(v models.Venue) (Adapter, error) {
	switch v {
	case models.VenueOKX:
		return okx.New(), nil
	case models.VenueBybit:
		return bybit.New(), nil
	case models.VenueDeribit:
		return deribit.New(), nil
	}
	return nil, errors.Wrapf(models.ErrUnknownVenue, "%q", v)
}
