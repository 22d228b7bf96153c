// Package ai drives the simulated opponent: what to buy, how much gold to
// spend, where to place pieces, and when to replace a weak piece with a
// better candidate.
//
// Every decision is probabilistic through an injected RNG, so the opponent is
// believable in play and deterministic under a seeded test.
package ai

import (
	"github.com/brensch/reeftank/catalog"
	"github.com/brensch/reeftank/game"
	"github.com/brensch/reeftank/rules"
)

// Acquisition loop bounds.
const (
	// maxConsecutiveFailures caps how many times in a row the opponent may
	// fail to land a piece before giving up for the round. This guarantees
	// termination despite probabilistic selection.
	maxConsecutiveFailures = 5

	// replaceMinPieces is the tank size at which the opponent starts
	// considering replacing its weakest piece instead of just adding.
	replaceMinPieces = 5

	// equipmentProtectedBelow keeps equipment out of replacement until the
	// tank is crowded.
	equipmentProtectedBelow = 8
)

// Opponent makes acquisition and placement decisions against a fixed catalog.
type Opponent struct {
	cat *catalog.Catalog
	rng rules.RNG
}

func NewOpponent(cat *catalog.Catalog, rng rules.RNG) *Opponent {
	return &Opponent{cat: cat, rng: rng}
}

// SelectPiece picks a catalog entry the opponent can afford and mints a fresh
// copy of it, or nil when nothing is affordable.
//
// Foul water or a losing streak biases hard toward plants and filters;
// pristine water biases toward fish; otherwise the round tier biases toward
// progressively more expensive pieces. Whenever a preferred pool is empty the
// draw falls back to uniform over the affordable pool.
func (o *Opponent) SelectPiece(round, budget, quality, lossStreak int) *game.Piece {
	affordable := o.affordable(budget)
	if len(affordable) == 0 {
		return nil
	}

	pool := affordable
	switch {
	case quality <= rules.PoisonThreshold || (lossStreak >= 2 && quality < 7):
		if o.rng.Float64() < 0.8 {
			pool = filterPool(affordable, func(p game.Piece) bool {
				return p.Category == game.CategoryPlant ||
					(p.Category == game.CategoryEquipment && hasTag(p, game.TagFilter))
			})
		}
	case quality >= rules.PristineThreshold:
		if o.rng.Float64() < 0.6 {
			pool = filterPool(affordable, func(p game.Piece) bool {
				return p.Category == game.CategoryFish
			})
		}
	default:
		switch {
		case round <= 3:
			// Early rounds draw uniformly.
		case round <= 7:
			if o.rng.Float64() < 0.7 {
				pool = filterPool(affordable, func(p game.Piece) bool { return p.Cost >= 3 })
			}
		default:
			if o.rng.Float64() < 0.85 {
				pool = filterPool(affordable, func(p game.Piece) bool { return p.Cost >= 4 })
			}
		}
	}
	if len(pool) == 0 {
		pool = affordable
	}

	pick := pool[o.rng.Intn(len(pool))]
	spawned, err := o.cat.Spawn(pick.Name)
	if err != nil {
		return nil
	}
	return spawned
}

// SpendLimit decides how much of the current gold the opponent will spend
// this round. Thrift targets the next 10-gold interest breakpoint below the
// current balance; a long enough loss streak overrides thrift entirely, and a
// win streak preserves a larger buffer.
func (o *Opponent) SpendLimit(gold, round, lossStreak, winStreak int) int {
	var reserve, lossOverride, winThreshold int
	switch {
	case round < 5:
		reserve, lossOverride, winThreshold = 0, 2, 4
	case round < 10:
		reserve, lossOverride, winThreshold = 10, 2, 3
	default:
		reserve, lossOverride, winThreshold = 20, 3, 3
	}

	if lossStreak >= lossOverride {
		return gold
	}
	if winStreak >= winThreshold {
		reserve += 10
	}

	// Never reserve past the highest breakpoint actually reachable.
	if breakpoint := gold / 10 * 10; reserve > breakpoint {
		reserve = breakpoint
	}
	return gold - reserve
}

// GenerateAcquisitions runs the opponent's full shopping turn: pick, place or
// replace, repeat until the budget is gone or too many attempts fail in a
// row. Returns the gold left over. Any placed consumables are confirmed at
// the end of the turn.
func (o *Opponent) GenerateAcquisitions(t *game.Tank, gold, round, lossStreak, winStreak int) int {
	budget := o.SpendLimit(gold, round, lossStreak, winStreak)
	spent := 0
	failures := 0

	for failures < maxConsecutiveFailures {
		remaining := budget - spent
		if remaining <= 0 {
			break
		}
		candidate := o.SelectPiece(round, remaining, t.WaterQuality, lossStreak)
		if candidate == nil {
			break
		}

		landed := false
		if len(t.Pieces) >= replaceMinPieces {
			landed = o.tryReplace(t, candidate, round)
		}
		if !landed {
			t.AddPiece(candidate)
			if o.PlacePiece(t, candidate) {
				landed = true
			} else {
				t.DeletePiece(candidate.ID)
			}
		}

		if landed {
			spent += candidate.Cost
			failures = 0
		} else {
			failures++
		}
	}

	rules.ConfirmConsumables(t)
	return gold - spent
}

func (o *Opponent) affordable(budget int) []game.Piece {
	return filterPool(o.cat.Pieces(), func(p game.Piece) bool { return p.Cost <= budget })
}

func filterPool(pieces []game.Piece, keep func(game.Piece) bool) []game.Piece {
	var out []game.Piece
	for _, p := range pieces {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}

func hasTag(p game.Piece, tag string) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
