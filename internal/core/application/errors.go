package application

import "errors"

var (
	// ErrZeroAmount is returned when an offer term requests or offers a zero
	// amount. Construction stops before any coin is queried.
	ErrZeroAmount = errors.New("cannot offer nor request a zero amount")
	// ErrWalletNotFound is returned when an offer term references a wallet id
	// the registry does not know.
	ErrWalletNotFound = errors.New("wallet not found")
	// ErrUnintegratedWallet is returned when a wallet lacks a capability the
	// requested operation needs.
	ErrUnintegratedWallet = errors.New("wallet is not integrated with the trade manager")
	// ErrDriverConflict is returned when the caller-supplied driver of an
	// asset disagrees with the one reported by its wallet.
	ErrDriverConflict = errors.New("conflicting puzzle drivers for asset")
	// ErrUnfulfillableOffer is returned when accepting an offer that demands
	// an asset no registered wallet can supply.
	ErrUnfulfillableOffer = errors.New("no wallet can fulfill the offer")
	// ErrStaleOffer is returned when some coin an offer spends is already
	// gone from the ledger. The caller may retry with a fresh offer.
	ErrStaleOffer = errors.New("offer is no longer valid")
	// ErrIncompleteOffer is returned when an aggregated offer does not
	// balance. It signals a construction bug, not a user error.
	ErrIncompleteOffer = errors.New("aggregated offer is not balanced")
)
