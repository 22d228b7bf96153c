// Package game defines the core state types for the aquarium autobattler.
//
// These types represent the minimal state needed for placement rules, buff
// evaluation and battle resolution. They are designed to be cheaply clonable
// so battles can run on snapshots without aliasing the shop-phase tank.
package game

// Grid dimensions are fixed for every tank.
const (
	GridWidth  = 8
	GridHeight = 6
)

// DefaultBaseWaterQuality is the reference point a fresh tank recomputes
// water quality from. Quality itself always stays within [1,10].
const DefaultBaseWaterQuality = 7

// Position is a cell coordinate. (0,0) is the top-left of the tank.
type Position struct {
	X int
	Y int
}

// Stats are the combat-relevant numbers carried by a piece.
// Health is the starting pool, MaxHealth the cap buffs are applied against.
type Stats struct {
	Attack    int
	Health    int
	Speed     int
	MaxHealth int
}

// StatBonus is a flat attack/health/speed delta. Plants and consumables carry
// one describing what they grant to adjacent fish.
type StatBonus struct {
	Attack int
	Health int
	Speed  int
}

func (b StatBonus) IsZero() bool {
	return b.Attack == 0 && b.Health == 0 && b.Speed == 0
}

// Category classifies a piece.
type Category string

const (
	CategoryFish       Category = "fish"
	CategoryPlant      Category = "plant"
	CategoryEquipment  Category = "equipment"
	CategoryConsumable Category = "consumable"
)

// TagFilter marks equipment that both improves water quality and amplifies
// adjacent plant bonuses.
const TagFilter = "filter"

// TagSchooling marks fish that benefit from swimming next to each other.
const TagSchooling = "schooling"

// BonusSource records where a permanent bonus came from, merged by name so a
// fish fed three times by the same consumable keeps a single entry.
type BonusSource struct {
	Name   string
	Count  int
	Attack int
	Health int
	Speed  int
}

// PermanentBonuses are stat deltas folded into a piece for good, e.g. by a
// consumed consumable. Unlike adjacency buffs they survive repositioning.
type PermanentBonuses struct {
	Attack  int
	Health  int
	Speed   int
	Sources []BonusSource
}

// Add merges a named bonus into the permanent totals.
func (pb *PermanentBonuses) Add(name string, b StatBonus) {
	pb.Attack += b.Attack
	pb.Health += b.Health
	pb.Speed += b.Speed
	for i := range pb.Sources {
		if pb.Sources[i].Name == name {
			pb.Sources[i].Count++
			pb.Sources[i].Attack += b.Attack
			pb.Sources[i].Health += b.Health
			pb.Sources[i].Speed += b.Speed
			return
		}
	}
	pb.Sources = append(pb.Sources, BonusSource{
		Name:   name,
		Count:  1,
		Attack: b.Attack,
		Health: b.Health,
		Speed:  b.Speed,
	})
}

// Piece is a purchasable unit: fish, plant, equipment or consumable.
//
// Shape is an ordered set of offsets relative to the anchor; the (0,0) anchor
// offset is always present. Position is nil while the piece sits in inventory,
// in which case it occupies no cells and contributes nothing to adjacency,
// water quality or combat.
type Piece struct {
	ID        string
	Name      string
	Category  Category
	Shape     []Position
	BaseStats Stats
	Tags      []string
	Cost      int
	Abilities []string
	Position  *Position

	// Grants is the bonus this piece gives adjacent fish. Only plants and
	// consumables carry a non-zero value.
	Grants StatBonus

	Permanent PermanentBonuses
}

func (p *Piece) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Placed reports whether the piece currently occupies grid cells.
func (p *Piece) Placed() bool {
	return p.Position != nil
}

// Cells returns the absolute cells the piece occupies, or nil if it is in
// inventory.
func (p *Piece) Cells() []Position {
	if p.Position == nil {
		return nil
	}
	return p.CellsAt(*p.Position)
}

// CellsAt returns the cells the piece would occupy anchored at pos, without
// requiring it to be placed.
func (p *Piece) CellsAt(pos Position) []Position {
	cells := make([]Position, len(p.Shape))
	for i, off := range p.Shape {
		cells[i] = Position{X: pos.X + off.X, Y: pos.Y + off.Y}
	}
	return cells
}

// Clone performs a deep copy of the piece.
func (p *Piece) Clone() *Piece {
	if p == nil {
		return nil
	}
	out := *p
	out.Shape = append([]Position(nil), p.Shape...)
	out.Tags = append([]string(nil), p.Tags...)
	out.Abilities = append([]string(nil), p.Abilities...)
	out.Permanent.Sources = append([]BonusSource(nil), p.Permanent.Sources...)
	if p.Position != nil {
		pos := *p.Position
		out.Position = &pos
	}
	return &out
}
