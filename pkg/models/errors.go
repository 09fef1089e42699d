package models

import "errors"

var (
	ErrUnknownVenue  = errors.New("unknown venue")
	ErrBadLevel      = errors.New("malformed price level")
	ErrBookNotReady  = errors.New("book not ready")
	ErrBadOrder      = errors.New("invalid order parameters")
	ErrNoMarketPrice = errors.New("no opposite liquidity to price market order")
)
