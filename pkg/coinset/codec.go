package coinset

import (
	"github.com/ugorji/go/codec"
)

// cborHandle is configured for canonical output: map keys sorted, no
// indefinite lengths. Every content hash in the engine is computed over
// bytes produced by this handle, so two logically equal values always
// serialize to the same bytes.
var cborHandle = func() *codec.CborHandle {
	h := new(codec.CborHandle)
	h.Canonical = true
	return h
}()

// MarshalCanonical serializes v to canonical CBOR.
func MarshalCanonical(v interface{}) ([]byte, error) {
	var buf []byte
	if err := codec.NewEncoderBytes(&buf, cborHandle).Encode(v); err != nil {
		return nil, err
	}
	return buf, nil
}

// UnmarshalCanonical deserializes canonical CBOR data into v.
func UnmarshalCanonical(data []byte, v interface{}) error {
	return codec.NewDecoderBytes(data, cborHandle).Decode(v)
}

// HashOf returns the sha256 digest of the canonical encoding of v.
func HashOf(v interface{}) (Hash, error) {
	buf, err := MarshalCanonical(v)
	if err != nil {
		return Hash{}, err
	}
	return HashData(buf), nil
}
