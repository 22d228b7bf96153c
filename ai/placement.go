package ai

import (
	"github.com/brensch/reeftank/game"
	"github.com/brensch/reeftank/rules"
)

// PlacePiece puts the piece on the opponent's grid using per-category
// heuristics:
//
//   - consumables attach next to an existing fish when there is one, else
//     take any valid free cell;
//   - plants and equipment take the cell that supports the most placed fish,
//     first-found winning ties;
//   - fish take the first valid free cell in row-major order.
//
// Returns false when no valid cell exists. The piece must already be in the
// tank's pieces list.
func (o *Opponent) PlacePiece(t *game.Tank, piece *game.Piece) bool {
	var pos *game.Position
	switch piece.Category {
	case game.CategoryConsumable:
		pos = consumableCell(t, piece)
	case game.CategoryPlant, game.CategoryEquipment:
		pos = bestSupportCell(t, piece)
	default:
		pos = firstValidCell(t, piece)
	}
	if pos == nil {
		return false
	}
	return rules.Place(t, piece, *pos) == nil
}

// tryReplace swaps the tank's weakest piece for the candidate when the
// candidate is clearly stronger. Late game lowers the bar: an upgrade only
// has to beat the weakest piece's power by 20% instead of 50%.
func (o *Opponent) tryReplace(t *game.Tank, candidate *game.Piece, round int) bool {
	threshold := 1.5
	if round >= 10 {
		threshold = 1.2
	}

	weakest := o.weakestPiece(t)
	if weakest == nil {
		return false
	}
	if PowerScore(weakest)*threshold >= PowerScore(candidate) {
		return false
	}

	oldPos := weakest.Position
	keep := weakest
	if err := rules.Remove(t, weakest.ID); err != nil {
		return false
	}

	t.AddPiece(candidate)
	if o.PlacePiece(t, candidate) {
		return true
	}

	// No cell for the newcomer: put everything back the way it was.
	t.DeletePiece(candidate.ID)
	t.AddPiece(keep)
	if oldPos != nil {
		if err := rules.Place(t, keep, *oldPos); err != nil {
			// The removal freed exactly these cells and the candidate's
			// failed placement wrote none, so the restore cannot collide.
			// If it ever does, the piece stays in inventory.
			return false
		}
	}
	return false
}

func (o *Opponent) weakestPiece(t *game.Tank) *game.Piece {
	protectEquipment := len(t.Pieces) < equipmentProtectedBelow
	var weakest *game.Piece
	var weakestScore float64
	for _, p := range t.Pieces {
		if protectEquipment && p.Category == game.CategoryEquipment {
			continue
		}
		score := PowerScore(p)
		if weakest == nil || score < weakestScore {
			weakest = p
			weakestScore = score
		}
	}
	return weakest
}

// PowerScore estimates how much a piece is worth keeping. Fish weight attack
// and speed heavily; plants and equipment earn a flat utility floor for
// their tank-wide effects.
func PowerScore(p *game.Piece) float64 {
	attackWeight, speedWeight := 0.5, 0.1
	if p.Category == game.CategoryFish {
		attackWeight, speedWeight = 1.2, 0.3
	}

	attack := float64(p.BaseStats.Attack + p.Permanent.Attack)
	health := float64(p.BaseStats.MaxHealth + p.Permanent.Health)
	speed := float64(p.BaseStats.Speed + p.Permanent.Speed)

	score := attack*attackWeight + health + speed*speedWeight + float64(len(p.Abilities))*2
	switch p.Category {
	case game.CategoryPlant:
		score += 5
	case game.CategoryEquipment:
		score += 3
	}
	return score
}

// consumableCell prefers a free cell touching at least one fish; with no fish
// placed, any valid cell does.
func consumableCell(t *game.Tank, piece *game.Piece) *game.Position {
	fish := placedFish(t)
	if len(fish) > 0 {
		for y := 0; y < game.GridHeight; y++ {
			for x := 0; x < game.GridWidth; x++ {
				pos := game.Position{X: x, Y: y}
				if !rules.IsValidPosition(t, piece, pos) {
					continue
				}
				for _, f := range fish {
					if rules.AdjacentAt(piece, pos, f) {
						return &pos
					}
				}
			}
		}
	}
	return firstValidCell(t, piece)
}

// bestSupportCell scans the whole grid for the position where the piece would
// touch the most placed fish. First-found wins ties.
func bestSupportCell(t *game.Tank, piece *game.Piece) *game.Position {
	fish := placedFish(t)
	var best *game.Position
	bestCount := -1
	for y := 0; y < game.GridHeight; y++ {
		for x := 0; x < game.GridWidth; x++ {
			pos := game.Position{X: x, Y: y}
			if !rules.IsValidPosition(t, piece, pos) {
				continue
			}
			count := 0
			for _, f := range fish {
				if rules.AdjacentAt(piece, pos, f) {
					count++
				}
			}
			if count > bestCount {
				p := pos
				best = &p
				bestCount = count
			}
		}
	}
	return best
}

func firstValidCell(t *game.Tank, piece *game.Piece) *game.Position {
	for y := 0; y < game.GridHeight; y++ {
		for x := 0; x < game.GridWidth; x++ {
			pos := game.Position{X: x, Y: y}
			if rules.IsValidPosition(t, piece, pos) {
				return &pos
			}
		}
	}
	return nil
}

func placedFish(t *game.Tank) []*game.Piece {
	var out []*game.Piece
	for _, p := range t.Pieces {
		if p.Placed() && p.Category == game.CategoryFish {
			out = append(out, p)
		}
	}
	return out
}
