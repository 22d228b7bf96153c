// Package session orchestrates one game per session: shop-phase tank editing,
// battle lifecycle, and the streak bookkeeping the opponent AI feeds on.
//
// A session assumes single-writer access: the transport layer above must
// deliver at most one mutation at a time per session. Sessions share no
// mutable state with each other, so independent sessions run concurrently
// without coordination. The Store is the only synchronized structure.
package session

import (
	"fmt"

	"github.com/brensch/reeftank/ai"
	"github.com/brensch/reeftank/catalog"
	"github.com/brensch/reeftank/game"
	"github.com/brensch/reeftank/rules"
)

// Phase is the session's current game phase.
type Phase string

const (
	PhaseShop   Phase = "shop"
	PhaseBattle Phase = "battle"
)

// Session holds one player's game: their tank, the simulated opponent's tank,
// and the battle in progress if any.
type Session struct {
	ID string

	Player   *game.Tank
	Opponent *game.Tank
	Battle   *game.BattleState

	Phase Phase
	Round int

	// Streaks are tracked from the opponent's perspective; they steer its
	// acquisition and budget decisions.
	OpponentWinStreak  int
	OpponentLossStreak int

	cat      *catalog.Catalog
	opponent *ai.Opponent
	rng      rules.RNG
}

// New creates a session in the shop phase of round 1.
func New(id string, cat *catalog.Catalog, rng rules.RNG) *Session {
	return &Session{
		ID:       id,
		Player:   game.NewTank(id + "-player"),
		Opponent: game.NewTank(id + "-opponent"),
		Phase:    PhaseShop,
		Round:    1,
		cat:      cat,
		opponent: ai.NewOpponent(cat, rng),
		rng:      rng,
	}
}

// Catalog exposes the read-only piece catalog this session draws from.
func (s *Session) Catalog() *catalog.Catalog {
	return s.cat
}

// AcquirePiece mints a fresh copy of the named catalog piece into the
// player's inventory and returns it. Cost accounting is the economy layer's
// job; the session only enforces phase.
func (s *Session) AcquirePiece(name string) (*game.Piece, error) {
	if err := s.requireShop("acquire piece"); err != nil {
		return nil, err
	}
	p, err := s.cat.Spawn(name)
	if err != nil {
		return nil, err
	}
	s.Player.AddPiece(p)
	return p, nil
}

// ValidatePlacement reports whether the piece could be anchored at pos.
func (s *Session) ValidatePlacement(pieceID string, pos game.Position) (bool, error) {
	p := s.Player.PieceByID(pieceID)
	if p == nil {
		return false, fmt.Errorf("validate placement %s: %w", pieceID, game.ErrPieceNotFound)
	}
	return rules.IsValidPosition(s.Player, p, pos), nil
}

// PlacePiece anchors a piece at pos, handling both first placement and moves.
func (s *Session) PlacePiece(pieceID string, pos game.Position) error {
	if err := s.requireShop("place piece"); err != nil {
		return err
	}
	p := s.Player.PieceByID(pieceID)
	if p == nil {
		return fmt.Errorf("place piece %s: %w", pieceID, game.ErrPieceNotFound)
	}
	return rules.Place(s.Player, p, pos)
}

// RemovePiece deletes a piece from the player's tank.
func (s *Session) RemovePiece(pieceID string) error {
	if err := s.requireShop("remove piece"); err != nil {
		return err
	}
	return rules.Remove(s.Player, pieceID)
}

// BuffedStats previews a placed piece's effective stats, computed with the
// same engine battles use.
func (s *Session) BuffedStats(pieceID string) (game.Stats, error) {
	p := s.Player.PieceByID(pieceID)
	if p == nil {
		return game.Stats{}, fmt.Errorf("buffed stats %s: %w", pieceID, game.ErrPieceNotFound)
	}
	return rules.ComputeBuffedStats(p, s.Player.PlacedPieces()), nil
}

// StartBattle locks the shop, lets the opponent shop with the given gold,
// confirms consumables on both sides and snapshots the battle state.
func (s *Session) StartBattle(opponentGold int) (*game.BattleState, error) {
	if err := s.requireShop("start battle"); err != nil {
		return nil, err
	}

	s.opponent.GenerateAcquisitions(
		s.Opponent, opponentGold, s.Round,
		s.OpponentLossStreak, s.OpponentWinStreak,
	)
	rules.ConfirmConsumables(s.Player)

	s.Battle = rules.InitializeBattle(s.Player, s.Opponent, s.Round)
	s.Phase = PhaseBattle
	return s.Battle, nil
}

// AdvanceTurn resolves one battle turn. When the battle terminates the
// session rolls into the next round's shop phase and updates streaks.
func (s *Session) AdvanceTurn() ([]game.Event, error) {
	if s.Phase != PhaseBattle || s.Battle == nil {
		return nil, fmt.Errorf("advance turn: %w", game.ErrBattleNotActive)
	}
	events, err := rules.AdvanceTurn(s.Battle, s.rng)
	if err != nil {
		return nil, err
	}
	if !s.Battle.Active {
		s.finishBattle()
	}
	return events, nil
}

func (s *Session) finishBattle() {
	switch s.Battle.Winner {
	case game.WinnerOpponent:
		s.OpponentWinStreak++
		s.OpponentLossStreak = 0
	case game.WinnerPlayer:
		s.OpponentLossStreak++
		s.OpponentWinStreak = 0
	default:
		// A draw breaks both streaks.
		s.OpponentWinStreak = 0
		s.OpponentLossStreak = 0
	}
	s.Round++
	s.Phase = PhaseShop
}

func (s *Session) requireShop(action string) error {
	if s.Phase != PhaseShop {
		return fmt.Errorf("%s during %s: %w", action, s.Phase, game.ErrPhaseViolation)
	}
	return nil
}
