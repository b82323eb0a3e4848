package coinset

// ConditionOpcode discriminates the condition variants a solution can
// declare. The engine never evaluates puzzles; it reads the declared
// conditions to derive additions, announcements and fees.
type ConditionOpcode uint16

const (
	OpCreateCoin               ConditionOpcode = 51
	OpReserveFee               ConditionOpcode = 52
	OpCreatePuzzleAnnouncement ConditionOpcode = 62
	OpAssertPuzzleAnnouncement ConditionOpcode = 63
)

func (op ConditionOpcode) String() string {
	switch op {
	case OpCreateCoin:
		return "CREATE_COIN"
	case OpReserveFee:
		return "RESERVE_FEE"
	case OpCreatePuzzleAnnouncement:
		return "CREATE_PUZZLE_ANNOUNCEMENT"
	case OpAssertPuzzleAnnouncement:
		return "ASSERT_PUZZLE_ANNOUNCEMENT"
	default:
		return "UNKNOWN"
	}
}

// Condition is one declared output effect of a spend. Fields beyond the
// opcode's arity are left at their zero value.
type Condition struct {
	Opcode         ConditionOpcode `json:"opcode" codec:"opcode"`
	PuzzleHash     Hash            `json:"puzzleHash,omitempty" codec:"puzzle_hash"`
	Amount         uint64          `json:"amount,omitempty" codec:"amount"`
	Message        []byte          `json:"message,omitempty" codec:"message"`
	AnnouncementID Hash            `json:"announcementId,omitempty" codec:"announcement_id"`
	Memos          [][]byte        `json:"memos,omitempty" codec:"memos"`
}

func NewCreateCoinCondition(puzzleHash Hash, amount uint64, memos [][]byte) Condition {
	return Condition{
		Opcode:     OpCreateCoin,
		PuzzleHash: puzzleHash,
		Amount:     amount,
		Memos:      memos,
	}
}

func NewReserveFeeCondition(amount uint64) Condition {
	return Condition{
		Opcode: OpReserveFee,
		Amount: amount,
	}
}

func NewCreatePuzzleAnnouncementCondition(message []byte) Condition {
	return Condition{
		Opcode:  OpCreatePuzzleAnnouncement,
		Message: message,
	}
}

func NewAssertPuzzleAnnouncementCondition(announcementID Hash) Condition {
	return Condition{
		Opcode:         OpAssertPuzzleAnnouncement,
		AnnouncementID: announcementID,
	}
}

// Announcement is a puzzle announcement emitted by a spend. Its id is what
// a paired spend asserts.
type Announcement struct {
	OriginPuzzleHash Hash   `json:"originPuzzleHash" codec:"origin_puzzle_hash"`
	Message          []byte `json:"message" codec:"message"`
}

// ID returns sha256(origin puzzle hash || message).
func (a Announcement) ID() Hash {
	return HashData(a.OriginPuzzleHash[:], a.Message)
}
