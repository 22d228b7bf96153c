package rules

import (
	"sort"

	"github.com/brensch/reeftank/game"
)

// RNG is the injected randomness source used for speed tie-breaks and target
// selection. *rand.Rand satisfies it.
type RNG interface {
	Intn(n int) int
	Float64() float64
}

// MaxBattleTurns is the runaway guard: a battle still unresolved after this
// many turns is a draw.
const MaxBattleTurns = 20

// InitializeBattle snapshots both tanks into a fresh battle state. Each placed
// piece becomes a BattlePiece with its buffed stats baked in and a full health
// pool; side totals are the sums of buffed max health.
func InitializeBattle(player, opponent *game.Tank, round int) *game.BattleState {
	bs := &game.BattleState{
		Active:          true,
		Round:           round,
		PlayerQuality:   player.WaterQuality,
		OpponentQuality: opponent.WaterQuality,
	}

	bs.PlayerPieces = snapshotSide(player, game.SidePlayer)
	bs.OpponentPieces = snapshotSide(opponent, game.SideOpponent)

	for _, bp := range bs.PlayerPieces {
		bs.PlayerMaxHealth += bp.MaxHealth
	}
	for _, bp := range bs.OpponentPieces {
		bs.OpponentMaxHealth += bp.MaxHealth
	}
	bs.PlayerHealth = bs.PlayerMaxHealth
	bs.OpponentHealth = bs.OpponentMaxHealth

	return bs
}

func snapshotSide(t *game.Tank, side game.Side) []*game.BattlePiece {
	placed := t.PlacedPieces()
	out := make([]*game.BattlePiece, 0, len(placed))
	for _, p := range placed {
		buffed := ComputeBuffedStats(p, placed)
		if buffed.MaxHealth < 1 {
			buffed.MaxHealth = 1
		}
		out = append(out, &game.BattlePiece{
			Piece:         *p.Clone(),
			Side:          side,
			Attack:        buffed.Attack,
			Speed:         buffed.Speed,
			MaxHealth:     buffed.MaxHealth,
			CurrentHealth: buffed.MaxHealth,
		})
	}
	return out
}

// AdvanceTurn resolves exactly one battle turn and returns the events it
// produced. The resolver is synchronous and performs no I/O; any pacing
// between turns is the caller's concern. Calling it on a finished or
// uninitialized battle returns ErrBattleNotActive.
func AdvanceTurn(bs *game.BattleState, rng RNG) ([]game.Event, error) {
	if bs == nil || !bs.Active {
		return nil, game.ErrBattleNotActive
	}

	bs.Turn++
	events := []game.Event{{Type: game.EventTurnStart, Turn: bs.Turn}}

	events = append(events, applyPoison(bs, game.SidePlayer)...)
	events = append(events, applyPoison(bs, game.SideOpponent)...)

	attackers := aliveFish(bs.PlayerPieces)
	attackers = append(attackers, aliveFish(bs.OpponentPieces)...)

	// Double loss: neither side can attack, so the battle drowns. Both sides
	// are forced to zero health.
	if len(attackers) == 0 {
		bs.PlayerHealth = 0
		bs.OpponentHealth = 0
		events = append(events, finish(bs, game.WinnerDraw))
		bs.Events = append(bs.Events, events...)
		return events, nil
	}

	// Shuffle first so exact speed ties resolve uniformly at random, then a
	// stable sort keeps the shuffled order within each speed band.
	for i := len(attackers) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		attackers[i], attackers[j] = attackers[j], attackers[i]
	}
	sort.SliceStable(attackers, func(i, j int) bool {
		return attackers[i].Speed > attackers[j].Speed
	})

	for _, attacker := range attackers {
		// Poison or an earlier attacker may have killed it this same turn.
		if !attacker.Alive() {
			continue
		}

		// Recompute fresh: earlier attacks this turn may have caused deaths.
		enemies := alivePieces(bs.Pieces(attacker.Side.Opponent()))
		if len(enemies) == 0 {
			break
		}
		target := enemies[rng.Intn(len(enemies))]

		mult := WaterMultiplier(bs.Quality(attacker.Side))
		damage := int(float64(attacker.Attack) * mult)
		if damage < 0 {
			damage = 0
		}

		target.CurrentHealth -= damage
		if target.CurrentHealth <= 0 {
			target.CurrentHealth = 0
			target.Dead = true
		}

		base := attacker.Piece.BaseStats.Attack + attacker.Piece.Permanent.Attack
		events = append(events, game.Event{
			Type:            game.EventAttack,
			Turn:            bs.Turn,
			Side:            attacker.Side,
			PieceID:         attacker.Piece.ID,
			PieceName:       attacker.Piece.Name,
			TargetID:        target.Piece.ID,
			TargetName:      target.Piece.Name,
			Damage:          damage,
			BaseAttack:      base,
			BonusAttack:     attacker.Attack - base,
			WaterMultiplier: mult,
		})
		if target.Dead {
			events = append(events, deathEvent(bs.Turn, target))
		}
	}

	bs.PlayerHealth = totalHealth(bs.PlayerPieces)
	bs.OpponentHealth = totalHealth(bs.OpponentPieces)

	switch {
	case bs.PlayerHealth <= 0 && bs.OpponentHealth <= 0:
		// Both sides collapsed in the same turn.
		events = append(events, finish(bs, game.WinnerDraw))
	case bs.PlayerHealth <= 0:
		events = append(events, finish(bs, game.WinnerOpponent))
	case bs.OpponentHealth <= 0:
		events = append(events, finish(bs, game.WinnerPlayer))
	case bs.Turn >= MaxBattleTurns:
		events = append(events, finish(bs, game.WinnerDraw))
	}

	bs.Events = append(bs.Events, events...)
	return events, nil
}

// applyPoison damages every living fish on a side fighting in foul water.
// Plants and equipment are immune.
func applyPoison(bs *game.BattleState, side game.Side) []game.Event {
	if bs.Quality(side) > PoisonThreshold {
		return nil
	}
	var events []game.Event
	for _, bp := range bs.Pieces(side) {
		if !bp.Alive() || bp.Piece.Category != game.CategoryFish {
			continue
		}
		bp.CurrentHealth -= PoisonDamage
		if bp.CurrentHealth <= 0 {
			bp.CurrentHealth = 0
			bp.Dead = true
		}
		events = append(events, game.Event{
			Type:      game.EventPoison,
			Turn:      bs.Turn,
			Side:      side,
			PieceID:   bp.Piece.ID,
			PieceName: bp.Piece.Name,
			Damage:    PoisonDamage,
		})
		if bp.Dead {
			events = append(events, deathEvent(bs.Turn, bp))
		}
	}
	return events
}

// aliveFish returns the pieces that may initiate attacks: only fish attack,
// though any alive piece remains a valid target.
func aliveFish(pieces []*game.BattlePiece) []*game.BattlePiece {
	var out []*game.BattlePiece
	for _, bp := range pieces {
		if bp.Alive() && bp.Piece.Category == game.CategoryFish {
			out = append(out, bp)
		}
	}
	return out
}

func alivePieces(pieces []*game.BattlePiece) []*game.BattlePiece {
	var out []*game.BattlePiece
	for _, bp := range pieces {
		if bp.Alive() {
			out = append(out, bp)
		}
	}
	return out
}

func totalHealth(pieces []*game.BattlePiece) int {
	total := 0
	for _, bp := range pieces {
		if !bp.Dead {
			total += bp.CurrentHealth
		}
	}
	return total
}

func finish(bs *game.BattleState, winner game.Winner) game.Event {
	bs.Active = false
	bs.Winner = winner
	return game.Event{Type: game.EventBattleEnd, Turn: bs.Turn, Winner: winner}
}

func deathEvent(turn int, bp *game.BattlePiece) game.Event {
	return game.Event{
		Type:      game.EventDeath,
		Turn:      turn,
		Side:      bp.Side,
		PieceID:   bp.Piece.ID,
		PieceName: bp.Piece.Name,
	}
}
