package offer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/odex-network/odex-daemon/pkg/coinset"
)

// TextPrefix is the human readable part of encoded offer files.
const TextPrefix = "offer"

type wirePaymentGroup struct {
	AssetID  coinset.Hash       `codec:"asset_id"`
	Payments []NotarizedPayment `codec:"payments"`
}

type wireDriver struct {
	AssetID coinset.Hash        `codec:"asset_id"`
	Info    *coinset.PuzzleInfo `codec:"info"`
}

type offerWire struct {
	Requested []wirePaymentGroup  `codec:"requested"`
	Bundle    coinset.SpendBundle `codec:"bundle"`
	Drivers   []wireDriver        `codec:"drivers"`
}

// Bytes serializes the offer to its canonical binary form. Payment groups
// and drivers are laid out in asset-id order, so equal offers serialize to
// equal bytes and the content hash is stable.
func (o *Offer) Bytes() ([]byte, error) {
	wire := offerWire{Bundle: o.bundle}

	requestedIDs := make([]coinset.Hash, 0, len(o.requested))
	for assetID := range o.requested {
		requestedIDs = append(requestedIDs, assetID)
	}
	sort.Slice(requestedIDs, func(i, j int) bool { return requestedIDs[i].Less(requestedIDs[j]) })
	for _, assetID := range requestedIDs {
		wire.Requested = append(wire.Requested, wirePaymentGroup{
			AssetID:  assetID,
			Payments: o.requested[assetID],
		})
	}

	driverIDs := make([]coinset.Hash, 0, len(o.drivers))
	for assetID := range o.drivers {
		driverIDs = append(driverIDs, assetID)
	}
	sort.Slice(driverIDs, func(i, j int) bool { return driverIDs[i].Less(driverIDs[j]) })
	for _, assetID := range driverIDs {
		wire.Drivers = append(wire.Drivers, wireDriver{
			AssetID: assetID,
			Info:    o.drivers[assetID],
		})
	}

	return coinset.MarshalCanonical(wire)
}

// FromBytes deserializes an offer from its canonical binary form.
func FromBytes(data []byte) (*Offer, error) {
	var wire offerWire
	if err := coinset.UnmarshalCanonical(data, &wire); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
	}

	requested := make(map[coinset.Hash][]NotarizedPayment, len(wire.Requested))
	for _, group := range wire.Requested {
		requested[group.AssetID] = append(requested[group.AssetID], group.Payments...)
	}
	drivers := make(map[coinset.Hash]*coinset.PuzzleInfo, len(wire.Drivers))
	for _, d := range wire.Drivers {
		drivers[d.AssetID] = d.Info
	}

	return New(requested, wire.Bundle, drivers)
}

// Encode renders the offer as a bech32m offer file string. Offer files blow
// past the usual bech32 length cap, so decoding must not enforce it.
func (o *Offer) Encode() (string, error) {
	payload, err := o.Bytes()
	if err != nil {
		return "", err
	}
	converted, err := bech32.ConvertBits(payload, 8, 5, true)
	if err != nil {
		return "", err
	}
	return bech32.EncodeM(TextPrefix, converted)
}

// Decode parses a bech32m offer file string.
func Decode(text string) (*Offer, error) {
	normalized := strings.ToLower(strings.TrimSpace(text))
	hrp, converted, err := bech32.DecodeNoLimit(normalized)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
	}
	if hrp != TextPrefix {
		return nil, fmt.Errorf("%w: unexpected prefix %q", ErrInvalidEncoding, hrp)
	}
	// DecodeNoLimit accepts both checksum variants; re-encoding pins the
	// input to the bech32m one.
	reencoded, err := bech32.EncodeM(hrp, converted)
	if err != nil || reencoded != normalized {
		return nil, fmt.Errorf("%w: checksum is not bech32m", ErrInvalidEncoding)
	}
	payload, err := bech32.ConvertBits(converted, 5, 8, false)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
	}
	return FromBytes(payload)
}
