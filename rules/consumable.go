package rules

import "github.com/brensch/reeftank/game"

// ConfirmConsumables resolves every placed consumable at confirmation time:
// its bonus is folded into the permanent bonuses of each adjacent fish and
// the consumable itself is deleted from both grid and pieces list. A
// consumable with no adjacent fish stays in the tank untouched.
//
// Returns the IDs of the consumed pieces.
func ConfirmConsumables(t *game.Tank) []string {
	// Collect first: consuming mutates the pieces list mid-walk otherwise.
	var pending []*game.Piece
	for _, p := range t.Pieces {
		if p.Category == game.CategoryConsumable && p.Placed() {
			pending = append(pending, p)
		}
	}

	var consumed []string
	for _, c := range pending {
		fed := false
		for _, p := range t.PlacedPieces() {
			if p.Category != game.CategoryFish {
				continue
			}
			if Adjacent(c, p) {
				p.Permanent.Add(c.Name, c.Grants)
				fed = true
			}
		}
		if fed {
			if err := Remove(t, c.ID); err == nil {
				consumed = append(consumed, c.ID)
			}
		}
	}
	return consumed
}
