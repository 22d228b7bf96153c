package game

// Side identifies which tank a battle piece fights for.
type Side string

const (
	SidePlayer   Side = "player"
	SideOpponent Side = "opponent"
)

// Opponent returns the other side.
func (s Side) Opponent() Side {
	if s == SidePlayer {
		return SideOpponent
	}
	return SidePlayer
}

// Winner is the terminal outcome of a battle. The zero value means the battle
// has not finished.
type Winner string

const (
	WinnerNone     Winner = ""
	WinnerPlayer   Winner = "player"
	WinnerOpponent Winner = "opponent"
	WinnerDraw     Winner = "draw"
)

// BattlePiece is an immutable-identity snapshot of a placed piece taken at
// battle start. Buffed stats are baked in at snapshot time; the shop-phase
// piece is never mutated by combat.
type BattlePiece struct {
	Piece Piece
	Side  Side

	Attack    int
	Speed     int
	MaxHealth int

	CurrentHealth int
	Dead          bool

	StatusEffects []string
	// NextActionTime is a scheduling hook reserved for future status effects.
	// Nothing reads it yet.
	NextActionTime int
}

// Alive reports whether the piece can still act or be targeted.
func (bp *BattlePiece) Alive() bool {
	return !bp.Dead && bp.CurrentHealth > 0
}

// EventType enumerates the battle event stream.
type EventType string

const (
	EventTurnStart EventType = "turn_start"
	EventPoison    EventType = "poison"
	EventAttack    EventType = "attack"
	EventDeath     EventType = "death"
	EventBattleEnd EventType = "battle_end"
)

// Event is one entry in a battle's ordered log. Attack events carry the full
// damage breakdown so presentation layers can explain the number.
type Event struct {
	Type EventType
	Turn int

	Side      Side
	PieceID   string
	PieceName string

	TargetID   string
	TargetName string

	Damage          int
	BaseAttack      int
	BonusAttack     int
	WaterMultiplier float64

	Winner Winner
}

// BattleState is the full state of one battle. It is built fresh from tank
// snapshots at battle start and discarded once rewards are finalized; it is
// never persisted across rounds.
type BattleState struct {
	Active bool
	Round  int
	Turn   int

	PlayerHealth      int
	OpponentHealth    int
	PlayerMaxHealth   int
	OpponentMaxHealth int

	// Water quality per side, snapshotted at battle start.
	PlayerQuality   int
	OpponentQuality int

	Winner Winner
	Events []Event

	PlayerPieces   []*BattlePiece
	OpponentPieces []*BattlePiece
}

// Pieces returns the battle pieces fighting for the given side.
func (bs *BattleState) Pieces(side Side) []*BattlePiece {
	if side == SidePlayer {
		return bs.PlayerPieces
	}
	return bs.OpponentPieces
}

// Quality returns the snapshotted water quality for the given side.
func (bs *BattleState) Quality(side Side) int {
	if side == SidePlayer {
		return bs.PlayerQuality
	}
	return bs.OpponentQuality
}
