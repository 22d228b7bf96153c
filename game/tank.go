package game

// Tank is a player's or opponent's aquarium: the occupancy grid plus every
// piece they own, placed or in inventory.
//
// Grid cells hold the occupying piece's ID, or "" for empty. Every non-empty
// cell's ID must exist in Pieces; a multi-cell piece writes its ID into each
// cell it covers.
type Tank struct {
	ID               string
	Grid             [GridHeight][GridWidth]string
	Pieces           []*Piece
	WaterQuality     int
	BaseWaterQuality int
}

// NewTank returns an empty tank at the default base water quality.
func NewTank(id string) *Tank {
	return &Tank{
		ID:               id,
		WaterQuality:     DefaultBaseWaterQuality,
		BaseWaterQuality: DefaultBaseWaterQuality,
	}
}

// InBounds reports whether pos is a valid grid cell.
func InBounds(pos Position) bool {
	return pos.X >= 0 && pos.X < GridWidth && pos.Y >= 0 && pos.Y < GridHeight
}

// PieceByID finds a piece in the tank, or nil.
func (t *Tank) PieceByID(id string) *Piece {
	for _, p := range t.Pieces {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// PlacedPieces returns the pieces currently occupying grid cells.
func (t *Tank) PlacedPieces() []*Piece {
	out := make([]*Piece, 0, len(t.Pieces))
	for _, p := range t.Pieces {
		if p.Placed() {
			out = append(out, p)
		}
	}
	return out
}

// CellID returns the piece ID occupying pos, or "" when empty or out of
// bounds.
func (t *Tank) CellID(pos Position) string {
	if !InBounds(pos) {
		return ""
	}
	return t.Grid[pos.Y][pos.X]
}

// AddPiece puts a piece into the tank's inventory. It does not touch the grid.
func (t *Tank) AddPiece(p *Piece) {
	t.Pieces = append(t.Pieces, p)
}

// DeletePiece drops the piece with the given ID from the pieces list. The
// caller is responsible for clearing any grid cells first.
func (t *Tank) DeletePiece(id string) bool {
	for i, p := range t.Pieces {
		if p.ID == id {
			t.Pieces = append(t.Pieces[:i], t.Pieces[i+1:]...)
			return true
		}
	}
	return false
}

// Clone performs a deep copy of the tank.
func (t *Tank) Clone() *Tank {
	if t == nil {
		return nil
	}
	out := &Tank{
		ID:               t.ID,
		Grid:             t.Grid,
		WaterQuality:     t.WaterQuality,
		BaseWaterQuality: t.BaseWaterQuality,
	}
	if len(t.Pieces) > 0 {
		out.Pieces = make([]*Piece, len(t.Pieces))
		for i, p := range t.Pieces {
			out.Pieces[i] = p.Clone()
		}
	}
	return out
}
