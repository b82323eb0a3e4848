package coinset

// CoinSpend pairs a coin with the puzzle reveal that unlocks it and the
// solution, carried here as the list of conditions the spend declares.
type CoinSpend struct {
	Coin         Coin        `json:"coin" codec:"coin"`
	PuzzleReveal []byte      `json:"puzzleReveal" codec:"puzzle_reveal"`
	Solution     []Condition `json:"solution" codec:"solution"`
}

// Additions returns the coins this spend creates, parented by the spent
// coin.
func (cs CoinSpend) Additions() []Coin {
	parent := cs.Coin.ID()
	var additions []Coin
	for _, cond := range cs.Solution {
		if cond.Opcode != OpCreateCoin {
			continue
		}
		additions = append(additions, Coin{
			ParentCoinID: parent,
			PuzzleHash:   cond.PuzzleHash,
			Amount:       cond.Amount,
		})
	}
	return additions
}

// Announcements returns the puzzle announcements this spend emits. The
// origin is the puzzle hash of the spent coin.
func (cs CoinSpend) Announcements() []Announcement {
	var anns []Announcement
	for _, cond := range cs.Solution {
		if cond.Opcode != OpCreatePuzzleAnnouncement {
			continue
		}
		anns = append(anns, Announcement{
			OriginPuzzleHash: cs.Coin.PuzzleHash,
			Message:          cond.Message,
		})
	}
	return anns
}

// Assertions returns the announcement ids this spend requires to be emitted
// elsewhere in the same bundle or block.
func (cs CoinSpend) Assertions() []Hash {
	var ids []Hash
	for _, cond := range cs.Solution {
		if cond.Opcode != OpAssertPuzzleAnnouncement {
			continue
		}
		ids = append(ids, cond.AnnouncementID)
	}
	return ids
}

// ReservedFee sums the fee the spend reserves.
func (cs CoinSpend) ReservedFee() uint64 {
	var total uint64
	for _, cond := range cs.Solution {
		if cond.Opcode == OpReserveFee {
			total += cond.Amount
		}
	}
	return total
}
