package models

import "github.com/pkg/errors"

// Venue identifies one of the supported exchanges. The set is closed:
// anything else is a configuration error, never a silent default.
type Venue string

const (
	VenueOKX     Venue = "okx"
	VenueBybit   Venue = "bybit"
	VenueDeribit Venue = "deribit"
)

func (v Venue) String() string {
	return string(v)
}

// Venues lists every supported venue.
func Venues() []Venue {
	return []Venue{VenueOKX, VenueBybit, VenueDeribit}
}

// ParseVenue maps an identifier to a known venue.
func ParseVenue(s string) (Venue, error) {
	switch Venue(s) {
	case VenueOKX, VenueBybit, VenueDeribit:
		return Venue(s), nil
	}
	return "", errors.Wrapf(ErrUnknownVenue, "%q", s)
}
