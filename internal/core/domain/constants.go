package domain

// TradeStatus enumerates the lifecycle of a trade. Pending statuses can
// still move, the others are terminal.
type TradeStatus int

const (
	// TradeStatusPendingAccept marks an offer of ours waiting for a taker.
	TradeStatusPendingAccept TradeStatus = iota
	// TradeStatusPendingConfirm marks a taken offer whose settlement bundle
	// has been submitted but not confirmed.
	TradeStatusPendingConfirm
	// TradeStatusPendingCancel marks an offer whose coins are being re-spent
	// to invalidate it.
	TradeStatusPendingCancel
	// TradeStatusCancelled ...
	TradeStatusCancelled
	// TradeStatusConfirmed ...
	TradeStatusConfirmed
	// TradeStatusFailed marks a taken offer that lost its race on chain.
	TradeStatusFailed
)

func (s TradeStatus) String() string {
	switch s {
	case TradeStatusPendingAccept:
		return "PENDING_ACCEPT"
	case TradeStatusPendingConfirm:
		return "PENDING_CONFIRM"
	case TradeStatusPendingCancel:
		return "PENDING_CANCEL"
	case TradeStatusCancelled:
		return "CANCELLED"
	case TradeStatusConfirmed:
		return "CONFIRMED"
	case TradeStatusFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// IsPending returns whether the status still allows transitions.
func (s TradeStatus) IsPending() bool {
	return s == TradeStatusPendingAccept ||
		s == TradeStatusPendingConfirm ||
		s == TradeStatusPendingCancel
}

// IsTerminal returns whether the status is final.
func (s TradeStatus) IsTerminal() bool {
	return !s.IsPending()
}

// TransactionType enumerates the kinds of transaction records the engine
// derives.
type TransactionType int

const (
	// TransactionTypeIncoming is a plain transfer to one of our wallets,
	// also used for cancellation re-spends to self.
	TransactionTypeIncoming TransactionType = iota
	// TransactionTypeOutgoing is a plain transfer out of one of our wallets.
	TransactionTypeOutgoing
	// TransactionTypeIncomingTrade is a payout claimed from a settlement
	// coin.
	TransactionTypeIncomingTrade
	// TransactionTypeOutgoingTrade groups the coins a wallet spent into a
	// trade.
	TransactionTypeOutgoingTrade
)

func (t TransactionType) String() string {
	switch t {
	case TransactionTypeIncoming:
		return "INCOMING_TX"
	case TransactionTypeOutgoing:
		return "OUTGOING_TX"
	case TransactionTypeIncomingTrade:
		return "INCOMING_TRADE"
	case TransactionTypeOutgoingTrade:
		return "OUTGOING_TRADE"
	default:
		return "UNKNOWN"
	}
}
