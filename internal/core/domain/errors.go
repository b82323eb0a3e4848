package domain

import "errors"

var (
	// ErrTradeNotFound is thrown when looking up a trade id the repository
	// does not know.
	ErrTradeNotFound = errors.New("trade not found")
	// ErrTradeAlreadyExists is thrown when adding a trade whose id is
	// already stored.
	ErrTradeAlreadyExists = errors.New("trade already exists")
	// ErrTradeNotPending is thrown when a transition is attempted on a trade
	// that already reached a terminal status.
	ErrTradeNotPending = errors.New("trade is not in a pending status")
	// ErrTransactionNotFound ...
	ErrTransactionNotFound = errors.New("transaction not found")
	// ErrCoinNotFound ...
	ErrCoinNotFound = errors.New("coin not found")
)
