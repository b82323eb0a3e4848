package crawler

import (
	"github.com/odex-network/odex-daemon/pkg/coinset"
	"github.com/odex-network/odex-daemon/pkg/explorer"
)

const (
	CloseSignal EventType = iota
	CoinCreated
	CoinSpent
)

type EventType int

func (et EventType) String() string {
	switch et {
	case CloseSignal:
		return "CloseSignal"
	case CoinCreated:
		return "CoinCreated"
	case CoinSpent:
		return "CoinSpent"
	default:
		return "Unknown"
	}
}

// CloseEvent is the last event emitted before the event channel goes silent.
type CloseEvent struct{}

func (q CloseEvent) Type() EventType {
	return CloseSignal
}

// CoinEvent is emitted when a watched coin shows up on chain or gets spent.
type CoinEvent struct {
	// ID correlates the event across log lines.
	ID         string
	EventType  EventType
	CoinID     coinset.Hash
	State      explorer.CoinState
	ForkHeight uint32
}

func (c CoinEvent) Type() EventType {
	return c.EventType
}
