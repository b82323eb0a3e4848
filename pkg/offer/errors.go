package offer

import "errors"

var (
	// ErrMissingDriver is returned when a requested asset has no entry in
	// the driver dict.
	ErrMissingDriver = errors.New("missing driver for requested asset")
	// ErrDriverConflict is returned when two sources disagree on the driver
	// of the same asset.
	ErrDriverConflict = errors.New("conflicting drivers for the same asset")
	// ErrIncompleteOffer is returned when settlement is attempted on an
	// offer whose two sides do not balance.
	ErrIncompleteOffer = errors.New("offer is incomplete")
	// ErrCoinNotInBundle is returned when walking the parentage of a coin
	// the offer's bundle never touches.
	ErrCoinNotInBundle = errors.New("coin is not part of the offer bundle")
	// ErrInvalidEncoding is returned when decoding text that is not a valid
	// offer file.
	ErrInvalidEncoding = errors.New("invalid offer encoding")
)
