package coinset

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
)

// HashSize is the byte length of every ledger identifier.
const HashSize = 32

var ErrInvalidHashLength = errors.New("hash must be 32 bytes")

// Hash is a 32-byte ledger identifier (coin ids, puzzle hashes,
// announcement ids, content hashes). It renders as hex in text form and as
// raw bytes in binary encodings.
type Hash [HashSize]byte

// NewHash copies b into a Hash. It fails if b is not exactly 32 bytes.
func NewHash(b []byte) (Hash, error) {
	var h Hash
	if len(b) != HashSize {
		return h, fmt.Errorf("%w, got %d", ErrInvalidHashLength, len(b))
	}
	copy(h[:], b)
	return h, nil
}

// NewHashFromHex parses a hex string, with or without 0x prefix.
func NewHashFromHex(s string) (Hash, error) {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		s = s[2:]
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return Hash{}, err
	}
	return NewHash(b)
}

// HashData returns the sha256 digest of the concatenation of the given
// chunks.
func HashData(chunks ...[]byte) Hash {
	h := sha256.New()
	for _, c := range chunks {
		h.Write(c)
	}
	var out Hash
	copy(out[:], h.Sum(nil))
	return out
}

func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

func (h Hash) Bytes() []byte {
	out := make([]byte, HashSize)
	copy(out, h[:])
	return out
}

// IsZero reports whether h is the all-zero hash, used as the native asset
// selector throughout the engine.
func (h Hash) IsZero() bool {
	return h == Hash{}
}

// Less orders hashes by their byte representation.
func (h Hash) Less(other Hash) bool {
	return bytes.Compare(h[:], other[:]) < 0
}

func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

func (h *Hash) UnmarshalText(text []byte) error {
	parsed, err := NewHashFromHex(string(text))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

func (h Hash) MarshalBinary() ([]byte, error) {
	return h.Bytes(), nil
}

func (h *Hash) UnmarshalBinary(data []byte) error {
	parsed, err := NewHash(data)
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}
