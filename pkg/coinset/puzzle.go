package coinset

// PuzzleInfo describes the driver of an asset's outer puzzle: the family of
// puzzle wrapping the inner one, the asset id it commits to, and optionally
// a further layer. The engine treats drivers as opaque descriptors; it only
// needs them to be comparable and to derive outer puzzle hashes
// deterministically.
type PuzzleInfo struct {
	Type    string      `json:"type" codec:"type"`
	AssetID Hash        `json:"assetId" codec:"asset_id"`
	Also    *PuzzleInfo `json:"also,omitempty" codec:"also"`
}

func (pi *PuzzleInfo) Equal(other *PuzzleInfo) bool {
	if pi == nil || other == nil {
		return pi == other
	}
	if pi.Type != other.Type || pi.AssetID != other.AssetID {
		return false
	}
	return pi.Also.Equal(other.Also)
}

// CheckType reports whether the driver's layer types, outermost first,
// match the given chain.
func (pi *PuzzleInfo) CheckType(types []string) bool {
	cur := pi
	for _, t := range types {
		if cur == nil || cur.Type != t {
			return false
		}
		cur = cur.Also
	}
	return cur == nil
}

type outerPuzzle struct {
	Driver *PuzzleInfo `codec:"driver"`
	Inner  []byte      `codec:"inner"`
}

// OuterPuzzleReveal wraps an inner puzzle reveal with a driver. A nil
// driver is the identity: the inner reveal stands alone.
func OuterPuzzleReveal(info *PuzzleInfo, inner []byte) ([]byte, error) {
	if info == nil {
		return inner, nil
	}
	return MarshalCanonical(outerPuzzle{Driver: info, Inner: inner})
}

// OuterPuzzleHash derives the puzzle hash of an inner reveal wrapped by a
// driver. The derivation is deterministic: equal drivers and inner reveals
// always map to the same hash.
func OuterPuzzleHash(info *PuzzleInfo, inner []byte) (Hash, error) {
	reveal, err := OuterPuzzleReveal(info, inner)
	if err != nil {
		return Hash{}, err
	}
	return HashData(reveal), nil
}
