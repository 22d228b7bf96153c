// Package rules implements the simulation rules of the autobattler: grid
// placement, adjacency buffs, water quality, consumable confirmation and the
// turn-based combat resolver.
//
// Everything here is a pure function of the state it is handed. The package
// performs no I/O, keeps no globals, and all randomness flows through an
// injected RNG so callers can make runs deterministic under test.
package rules

import (
	"fmt"

	"github.com/brensch/reeftank/game"
)

// IsValidPosition reports whether piece could be anchored at pos: every shape
// cell must lie in bounds and be either empty or already owned by the same
// piece. The self-ownership case is what allows validating an in-place move.
func IsValidPosition(t *game.Tank, piece *game.Piece, pos game.Position) bool {
	for _, cell := range piece.CellsAt(pos) {
		if !game.InBounds(cell) {
			return false
		}
		if id := t.Grid[cell.Y][cell.X]; id != "" && id != piece.ID {
			return false
		}
	}
	return true
}

// Place anchors the piece at pos, clearing its previous cells first so the
// same call handles both initial placement and moves. The piece must already
// be in the tank's pieces list. Water quality is recomputed on success.
func Place(t *game.Tank, piece *game.Piece, pos game.Position) error {
	if t.PieceByID(piece.ID) == nil {
		return fmt.Errorf("place %s: %w", piece.ID, game.ErrPieceNotFound)
	}
	if !IsValidPosition(t, piece, pos) {
		return fmt.Errorf("place %s at (%d,%d): %w", piece.Name, pos.X, pos.Y, game.ErrInvalidPlacement)
	}

	clearCells(t, piece)
	for _, cell := range piece.CellsAt(pos) {
		t.Grid[cell.Y][cell.X] = piece.ID
	}
	anchored := pos
	piece.Position = &anchored

	t.WaterQuality = WaterQuality(t)
	return nil
}

// Unplace clears the piece's cells and returns it to inventory. It stays in
// the tank's pieces list.
func Unplace(t *game.Tank, piece *game.Piece) {
	clearCells(t, piece)
	piece.Position = nil
	t.WaterQuality = WaterQuality(t)
}

// Remove deletes the piece from the tank entirely: grid cells cleared, pieces
// list shrunk, water quality recomputed.
func Remove(t *game.Tank, pieceID string) error {
	piece := t.PieceByID(pieceID)
	if piece == nil {
		return fmt.Errorf("remove %s: %w", pieceID, game.ErrPieceNotFound)
	}
	clearCells(t, piece)
	piece.Position = nil
	t.DeletePiece(pieceID)
	t.WaterQuality = WaterQuality(t)
	return nil
}

func clearCells(t *game.Tank, piece *game.Piece) {
	for _, cell := range piece.Cells() {
		if game.InBounds(cell) && t.Grid[cell.Y][cell.X] == piece.ID {
			t.Grid[cell.Y][cell.X] = ""
		}
	}
}
