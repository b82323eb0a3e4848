package domain

import (
	"time"

	"github.com/odex-network/odex-daemon/pkg/coinset"
	"github.com/odex-network/odex-daemon/pkg/offer"
)

// StatusChange is one entry of a trade's append-only status history.
type StatusChange struct {
	Status    TradeStatus
	Timestamp int64
}

// SendAttempt records one broadcast of the trade's settlement bundle to a
// node.
type SendAttempt struct {
	Endpoint  string
	Timestamp int64
	Accepted  bool
	Error     string
}

// TradeRecord is the persistent aggregate tracking one offer through its
// lifecycle. The offer bytes are authoritative; every coin or amount view is
// derived from them on demand.
type TradeRecord struct {
	TradeID          string
	Status           TradeStatus
	IsMyOffer        bool
	OfferBytes       []byte
	TakenOfferBytes  []byte
	CreatedAt        int64
	AcceptedAt       int64
	ConfirmedAtIndex uint32
	CoinsOfInterest  []coinset.Coin
	SentTo           []SendAttempt
	StatusHistory    []StatusChange
}

// NewTradeRecord builds the record of a freshly constructed offer. The trade
// id is the offer's content hash, so the same offer can never be tracked
// twice.
func NewTradeRecord(o *offer.Offer, status TradeStatus, isMyOffer bool) (*TradeRecord, error) {
	name, err := o.Name()
	if err != nil {
		return nil, err
	}
	rawOffer, err := o.Bytes()
	if err != nil {
		return nil, err
	}

	now := time.Now().Unix()
	trade := &TradeRecord{
		TradeID:         name.String(),
		Status:          status,
		IsMyOffer:       isMyOffer,
		OfferBytes:      rawOffer,
		CreatedAt:       now,
		CoinsOfInterest: o.InvolvedCoins(),
		StatusHistory:   []StatusChange{{Status: status, Timestamp: now}},
	}
	if status == TradeStatusPendingConfirm {
		trade.AcceptedAt = now
	}
	return trade, nil
}

// Offer decodes the trade's offer. For an accepted foreign offer this is the
// aggregated, balanced one.
func (t *TradeRecord) Offer() (*offer.Offer, error) {
	return offer.FromBytes(t.OfferBytes)
}

// TakenOffer decodes the foreign half this trade accepted, if any.
func (t *TradeRecord) TakenOffer() (*offer.Offer, error) {
	if len(t.TakenOfferBytes) == 0 {
		return nil, nil
	}
	return offer.FromBytes(t.TakenOfferBytes)
}

// ContainsCoin returns whether the given coin belongs to the trade's
// monitored set.
func (t *TradeRecord) ContainsCoin(coinID coinset.Hash) bool {
	for _, c := range t.CoinsOfInterest {
		if c.ID() == coinID {
			return true
		}
	}
	return false
}

// IsPending returns whether the trade can still transition.
func (t *TradeRecord) IsPending() bool {
	return t.Status.IsPending()
}

// Confirm brings a pending trade to the Confirmed status, recording the
// block height of the settlement spend. It reports whether the record
// changed: confirming an already confirmed trade is a no-op.
func (t *TradeRecord) Confirm(height uint32) (bool, error) {
	if t.Status == TradeStatusConfirmed {
		return false, nil
	}
	if !t.Status.IsPending() {
		return false, ErrTradeNotPending
	}

	t.setStatus(TradeStatusConfirmed)
	t.ConfirmedAtIndex = height
	return true, nil
}

// Cancel brings a pending trade to the Cancelled status. Cancelling an
// already cancelled trade is a no-op.
func (t *TradeRecord) Cancel() (bool, error) {
	if t.Status == TradeStatusCancelled {
		return false, nil
	}
	if !t.Status.IsPending() {
		return false, ErrTradeNotPending
	}

	t.setStatus(TradeStatusCancelled)
	return true, nil
}

// Fail brings a pending trade to the Failed status. Failing an already
// failed trade is a no-op.
func (t *TradeRecord) Fail() (bool, error) {
	if t.Status == TradeStatusFailed {
		return false, nil
	}
	if !t.Status.IsPending() {
		return false, ErrTradeNotPending
	}

	t.setStatus(TradeStatusFailed)
	return true, nil
}

// MarkPendingCancel flags the trade while its cancellation spends race the
// offer on chain. The final Cancelled status is only set once those spends
// confirm.
func (t *TradeRecord) MarkPendingCancel() (bool, error) {
	if t.Status == TradeStatusPendingCancel {
		return false, nil
	}
	if !t.Status.IsPending() {
		return false, ErrTradeNotPending
	}

	t.setStatus(TradeStatusPendingCancel)
	return true, nil
}

// AddSendAttempt appends the outcome of one settlement broadcast.
func (t *TradeRecord) AddSendAttempt(endpoint string, accepted bool, sendErr string) {
	t.SentTo = append(t.SentTo, SendAttempt{
		Endpoint:  endpoint,
		Timestamp: time.Now().Unix(),
		Accepted:  accepted,
		Error:     sendErr,
	})
}

func (t *TradeRecord) setStatus(status TradeStatus) {
	t.Status = status
	t.StatusHistory = append(t.StatusHistory, StatusChange{
		Status:    status,
		Timestamp: time.Now().Unix(),
	})
}
