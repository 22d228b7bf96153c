package rules

import "github.com/brensch/reeftank/game"

// Water quality thresholds. At or below PoisonThreshold a side's fish take
// poison each turn and its outgoing damage is dampened; at or above
// PristineThreshold damage is boosted.
const (
	PoisonThreshold   = 3
	PristineThreshold = 8
	PoisonDamage      = 1
)

// Named equipment that improves water quality without carrying the filter
// tag, so it purifies but does not amplify plant bonuses.
var purifierNames = map[string]bool{
	"Air Stone": true,
}

// WaterQuality derives the tank's water quality from its composition: each
// placed fish costs a point, each placed plant or filter adds one, clamped to
// [1,10]. Pieces in inventory contribute nothing.
func WaterQuality(t *game.Tank) int {
	q := t.BaseWaterQuality
	for _, p := range t.Pieces {
		if !p.Placed() {
			continue
		}
		switch p.Category {
		case game.CategoryFish:
			q--
		case game.CategoryPlant:
			q++
		case game.CategoryEquipment:
			if p.HasTag(game.TagFilter) || purifierNames[p.Name] {
				q++
			}
		}
	}
	if q < 1 {
		q = 1
	}
	if q > 10 {
		q = 10
	}
	return q
}

// WaterMultiplier is the outgoing damage multiplier for a side fighting at
// the given quality. Poison is a separate effect; both apply at low quality.
func WaterMultiplier(quality int) float64 {
	switch {
	case quality <= PoisonThreshold:
		return 0.7
	case quality >= PristineThreshold:
		return 1.3
	default:
		return 1.0
	}
}
