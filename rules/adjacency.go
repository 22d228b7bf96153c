package rules

import (
	"fmt"

	"github.com/brensch/reeftank/game"
)

// schoolingAttackRate is the per-adjacent-schooling-neighbor attack bonus for
// specific fish, looked up by name. Fish outside this table still count as
// neighbors for others and still frenzy, they just gain no attack themselves.
var schoolingAttackRate = map[string]int{
	"Neon Tetra":     1,
	"Cardinal Tetra": 1,
	"Tiger Barb":     2,
}

// FrenzyNeighborCount is the number of adjacent schooling neighbors at which
// a schooling fish doubles its effective speed. The bonus triggers once per
// evaluation no matter how far past the count goes.
const FrenzyNeighborCount = 3

// BuffResult is the adjacency bonus for one target piece. Sources are
// human-readable descriptors for presentation; the engine itself only needs
// the numeric totals.
type BuffResult struct {
	AttackBonus int
	HealthBonus int
	SpeedBonus  int
	Sources     []string
}

// Adjacent reports whether two placed pieces touch: some occupied cell of one
// lies within Chebyshev distance 1 of some occupied cell of the other,
// excluding exact overlap. The relation is symmetric and irreflexive.
func Adjacent(a, b *game.Piece) bool {
	if a.ID == b.ID || !a.Placed() || !b.Placed() {
		return false
	}
	return cellsAdjacent(a.Cells(), b.Cells())
}

func cellsAdjacent(as, bs []game.Position) bool {
	for _, ac := range as {
		for _, bc := range bs {
			dx := ac.X - bc.X
			dy := ac.Y - bc.Y
			if dx < 0 {
				dx = -dx
			}
			if dy < 0 {
				dy = -dy
			}
			if dx <= 1 && dy <= 1 && !(dx == 0 && dy == 0) {
				return true
			}
		}
	}
	return false
}

// AdjacentAt reports whether piece, if anchored at pos, would touch other.
// Used by placement heuristics to score cells without mutating the grid.
func AdjacentAt(piece *game.Piece, pos game.Position, other *game.Piece) bool {
	if piece.ID == other.ID || !other.Placed() {
		return false
	}
	return cellsAdjacent(piece.CellsAt(pos), other.Cells())
}

// ComputeBonuses evaluates the adjacency bonuses for target against all
// placed pieces. Each adjacent piece contributes exactly once, no matter how
// many cell pairs it touches the target through.
func ComputeBonuses(target *game.Piece, placed []*game.Piece) BuffResult {
	var result BuffResult
	if !target.Placed() {
		return result
	}

	neighbors := make([]*game.Piece, 0, 8)
	for _, p := range placed {
		if Adjacent(target, p) {
			neighbors = append(neighbors, p)
		}
	}

	// Plant and consumable bonuses only land on fish.
	if target.Category == game.CategoryFish {
		for _, n := range neighbors {
			if n.Category != game.CategoryPlant && n.Category != game.CategoryConsumable {
				continue
			}
			if n.Grants.IsZero() {
				continue
			}
			bonus := n.Grants
			if n.Category == game.CategoryPlant && filterAdjacent(n, placed) {
				bonus = amplify(bonus)
				result.Sources = append(result.Sources, fmt.Sprintf("%s (filtered) %s", n.Name, formatBonus(bonus)))
			} else {
				result.Sources = append(result.Sources, fmt.Sprintf("%s %s", n.Name, formatBonus(bonus)))
			}
			result.AttackBonus += bonus.Attack
			result.HealthBonus += bonus.Health
			result.SpeedBonus += bonus.Speed
		}
	}

	if target.HasTag(game.TagSchooling) {
		school := 0
		for _, n := range neighbors {
			if n.HasTag(game.TagSchooling) {
				school++
			}
		}
		if rate := schoolingAttackRate[target.Name]; rate > 0 && school > 0 {
			result.AttackBonus += rate * school
			result.Sources = append(result.Sources, fmt.Sprintf("schooling +%d atk", rate*school))
		}
		if school >= FrenzyNeighborCount {
			// Frenzy doubles effective speed: the bonus equals the speed
			// accumulated so far, permanent and adjacency included.
			frenzy := target.BaseStats.Speed + target.Permanent.Speed + result.SpeedBonus
			result.SpeedBonus += frenzy
			result.Sources = append(result.Sources, fmt.Sprintf("frenzy +%d spd", frenzy))
		}
	}

	return result
}

// ComputeBuffedStats returns the target's effective combat stats: base plus
// permanent bonuses plus adjacency bonuses. Recomputed on demand, never
// cached.
func ComputeBuffedStats(target *game.Piece, placed []*game.Piece) game.Stats {
	bonus := ComputeBonuses(target, placed)
	return game.Stats{
		Attack:    target.BaseStats.Attack + target.Permanent.Attack + bonus.AttackBonus,
		Health:    target.BaseStats.Health + target.Permanent.Health + bonus.HealthBonus,
		Speed:     target.BaseStats.Speed + target.Permanent.Speed + bonus.SpeedBonus,
		MaxHealth: target.BaseStats.MaxHealth + target.Permanent.Health + bonus.HealthBonus,
	}
}

// filterAdjacent reports whether any filter-tagged equipment touches the
// plant, which amplifies the plant's contribution to its fish.
func filterAdjacent(plant *game.Piece, placed []*game.Piece) bool {
	for _, p := range placed {
		if p.Category == game.CategoryEquipment && p.HasTag(game.TagFilter) && Adjacent(plant, p) {
			return true
		}
	}
	return false
}

// amplify boosts a plant bonus by ceil(20% of its largest dimension), applied
// to every dimension that was already positive. Zero dimensions stay zero.
func amplify(b game.StatBonus) game.StatBonus {
	max := b.Attack
	if b.Health > max {
		max = b.Health
	}
	if b.Speed > max {
		max = b.Speed
	}
	if max <= 0 {
		return b
	}
	boost := (max + 4) / 5 // ceil(max * 0.2)
	if b.Attack > 0 {
		b.Attack += boost
	}
	if b.Health > 0 {
		b.Health += boost
	}
	if b.Speed > 0 {
		b.Speed += boost
	}
	return b
}

func formatBonus(b game.StatBonus) string {
	return fmt.Sprintf("+%datk/+%dhp/+%dspd", b.Attack, b.Health, b.Speed)
}
