package ai

import (
	"math"
	"testing"

	"github.com/brensch/reeftank/catalog"
	"github.com/brensch/reeftank/game"
	"github.com/brensch/reeftank/rules"
)

func spawn(t *testing.T, cat *catalog.Catalog, name string) *game.Piece {
	t.Helper()
	p, err := cat.Spawn(name)
	if err != nil {
		t.Fatalf("spawn %s: %v", name, err)
	}
	return p
}

func placeAt(t *testing.T, tank *game.Tank, p *game.Piece, x, y int) {
	t.Helper()
	tank.AddPiece(p)
	if err := rules.Place(tank, p, game.Position{X: x, Y: y}); err != nil {
		t.Fatalf("place %s at (%d,%d): %v", p.ID, x, y, err)
	}
}

func TestPlacePiece_FishTakesFirstFreeCell(t *testing.T) {
	o, cat := newTestOpponent(t, 20, 0.5)
	tank := game.NewTank("t")

	first := spawn(t, cat, "Guppy")
	tank.AddPiece(first)
	if !o.PlacePiece(tank, first) {
		t.Fatalf("placement failed on an empty grid")
	}
	if got := *first.Position; got != (game.Position{X: 0, Y: 0}) {
		t.Errorf("first fish landed at %+v, want (0,0)", got)
	}

	// Block the top row; the next fish drops to the second.
	for x := 1; x < game.GridWidth; x++ {
		placeAt(t, tank, spawn(t, cat, "Guppy"), x, 0)
	}
	next := spawn(t, cat, "Guppy")
	tank.AddPiece(next)
	if !o.PlacePiece(tank, next) {
		t.Fatalf("placement failed with a free row available")
	}
	if got := *next.Position; got != (game.Position{X: 0, Y: 1}) {
		t.Errorf("fish landed at %+v, want (0,1)", got)
	}
}

func TestPlacePiece_PlantSeeksMostFish(t *testing.T) {
	o, cat := newTestOpponent(t, 21, 0.5)
	tank := game.NewTank("t")

	placeAt(t, tank, spawn(t, cat, "Guppy"), 1, 1)
	placeAt(t, tank, spawn(t, cat, "Guppy"), 3, 1)

	plant := spawn(t, cat, "Java Fern")
	tank.AddPiece(plant)
	if !o.PlacePiece(tank, plant) {
		t.Fatalf("plant placement failed")
	}
	// (2,0) is the first scanned cell touching both fish.
	if got := *plant.Position; got != (game.Position{X: 2, Y: 0}) {
		t.Errorf("plant landed at %+v, want (2,0)", got)
	}
	if n := fishTouching(tank, plant); n != 2 {
		t.Errorf("plant touches %d fish, want 2", n)
	}
}

func TestPlacePiece_ConsumableAttachesToFish(t *testing.T) {
	o, cat := newTestOpponent(t, 22, 0.5)
	tank := game.NewTank("t")
	placeAt(t, tank, spawn(t, cat, "Guppy"), 4, 3)

	shrimp := spawn(t, cat, "Brine Shrimp")
	tank.AddPiece(shrimp)
	if !o.PlacePiece(tank, shrimp) {
		t.Fatalf("consumable placement failed")
	}
	if n := fishTouching(tank, shrimp); n == 0 {
		t.Errorf("consumable at %+v touches no fish", *shrimp.Position)
	}
}

func TestPlacePiece_ConsumableWithoutFishStillLands(t *testing.T) {
	o, cat := newTestOpponent(t, 23, 0.5)
	tank := game.NewTank("t")

	shrimp := spawn(t, cat, "Brine Shrimp")
	tank.AddPiece(shrimp)
	if !o.PlacePiece(tank, shrimp) {
		t.Fatalf("consumable placement failed on an empty grid")
	}
	if got := *shrimp.Position; got != (game.Position{X: 0, Y: 0}) {
		t.Errorf("consumable landed at %+v, want (0,0)", got)
	}
}

func TestPlacePiece_NoRoomReturnsFalse(t *testing.T) {
	o, cat := newTestOpponent(t, 24, 0.5)
	tank := fullTank(t, cat)

	extra := spawn(t, cat, "Guppy")
	tank.AddPiece(extra)
	if o.PlacePiece(tank, extra) {
		t.Errorf("placed a piece on a full grid")
	}
	if extra.Placed() {
		t.Errorf("failed placement still set a position: %+v", *extra.Position)
	}
}

func TestTryReplace_SwapsOutWeakest(t *testing.T) {
	o, cat := newTestOpponent(t, 25, 0.5)
	tank := game.NewTank("t")
	for i := 0; i < 5; i++ {
		placeAt(t, tank, spawn(t, cat, "Guppy"), i, 0)
	}

	oscar := spawn(t, cat, "Oscar")
	if !o.tryReplace(tank, oscar, 6) {
		t.Fatalf("strong candidate did not replace a weak piece")
	}
	if len(tank.Pieces) != 5 {
		t.Errorf("tank holds %d pieces after replacement, want 5", len(tank.Pieces))
	}
	if got := tank.PieceByID(oscar.ID); got == nil || !got.Placed() {
		t.Errorf("candidate missing or unplaced after replacement")
	}
}

func TestTryReplace_RejectsMarginalUpgrade(t *testing.T) {
	o, cat := newTestOpponent(t, 26, 0.5)
	tank := game.NewTank("t")
	for i := 0; i < 5; i++ {
		placeAt(t, tank, spawn(t, cat, "Guppy"), i, 0)
	}

	peer := spawn(t, cat, "Guppy")
	if o.tryReplace(tank, peer, 6) {
		t.Errorf("equal-strength candidate replaced a piece")
	}
	if len(tank.Pieces) != 5 {
		t.Errorf("rejected replacement changed the tank: %d pieces", len(tank.Pieces))
	}
}

func TestTryReplace_LateGameLowersBar(t *testing.T) {
	o, cat := newTestOpponent(t, 27, 0.5)
	tank := game.NewTank("t")
	for i := 0; i < 5; i++ {
		placeAt(t, tank, spawn(t, cat, "Tiger Barb"), i, 0)
	}

	// Betta over Tiger Barb is a 1.3x upgrade: short of the 1.5x bar,
	// clear of the late-game 1.2x bar.
	betta := spawn(t, cat, "Betta")
	if o.tryReplace(tank, betta, 6) {
		t.Errorf("mid-game replacement cleared the 1.5x bar at ratio %.2f",
			PowerScore(betta)/PowerScore(tank.Pieces[0]))
	}
	betta2 := spawn(t, cat, "Betta")
	if !o.tryReplace(tank, betta2, 10) {
		t.Errorf("late-game replacement missed the lowered bar")
	}
}

func TestTryReplace_RestoresOnPlacementFailure(t *testing.T) {
	o, cat := newTestOpponent(t, 28, 0.5)
	tank := fullTank(t, cat)

	before := len(tank.Pieces)
	grid := tank.Grid

	// Oscar needs a free 2x2 block; removing one guppy frees a single
	// cell, so placement fails and the guppy must come back.
	oscar := spawn(t, cat, "Oscar")
	if o.tryReplace(tank, oscar, 6) {
		t.Fatalf("2x2 candidate placed on a grid with one free cell")
	}
	if len(tank.Pieces) != before {
		t.Errorf("tank holds %d pieces after failed replacement, want %d", len(tank.Pieces), before)
	}
	if tank.Grid != grid {
		t.Errorf("grid changed after failed replacement:\nbefore %v\nafter  %v", grid, tank.Grid)
	}
	if tank.PieceByID(oscar.ID) != nil {
		t.Errorf("failed candidate left in the tank")
	}
	// The removed piece must be back on the grid, not stranded in inventory.
	for _, p := range tank.Pieces {
		if !p.Placed() {
			t.Errorf("piece %s left in inventory after failed replacement", p.ID)
		}
	}
}

func TestWeakestPiece_ProtectsEquipmentInSmallTanks(t *testing.T) {
	o, cat := newTestOpponent(t, 29, 0.5)
	tank := game.NewTank("t")
	placeAt(t, tank, spawn(t, cat, "Sponge Filter"), 0, 0)
	for i := 0; i < 4; i++ {
		placeAt(t, tank, spawn(t, cat, "Betta"), i+1, 0)
	}

	weakest := o.weakestPiece(tank)
	if weakest == nil {
		t.Fatalf("no weakest piece found")
	}
	if weakest.Category == game.CategoryEquipment {
		t.Errorf("equipment %s picked as weakest in a 5-piece tank", weakest.Name)
	}
}

func TestPowerScore_WeightsByCategory(t *testing.T) {
	cat := catalog.Default()
	guppy := spawn(t, cat, "Guppy")
	fern := spawn(t, cat, "Java Fern")
	oscar := spawn(t, cat, "Oscar")

	// atk1*1.2 + hp1 + spd2*0.3
	if got, want := PowerScore(guppy), 1*1.2+1+2*0.3; math.Abs(got-want) > 1e-9 {
		t.Errorf("guppy power = %v, want %v", got, want)
	}
	if PowerScore(oscar) <= PowerScore(guppy) {
		t.Errorf("oscar should outscore a guppy")
	}
	// Permanent growth feeds back into the score.
	fed := spawn(t, cat, "Guppy")
	fed.Permanent.Add("Bloodworms", game.StatBonus{Attack: 2})
	if PowerScore(fed) <= PowerScore(guppy) {
		t.Errorf("fed guppy should outscore a fresh one")
	}
	if PowerScore(fern) <= 0 {
		t.Errorf("plant power should be positive, got %v", PowerScore(fern))
	}
}

// fullTank fills every cell with single-cell fish.
func fullTank(t *testing.T, cat *catalog.Catalog) *game.Tank {
	t.Helper()
	tank := game.NewTank("full")
	for y := 0; y < game.GridHeight; y++ {
		for x := 0; x < game.GridWidth; x++ {
			placeAt(t, tank, spawn(t, cat, "Guppy"), x, y)
		}
	}
	return tank
}

func fishTouching(tank *game.Tank, p *game.Piece) int {
	n := 0
	for _, other := range tank.Pieces {
		if other.Category == game.CategoryFish && rules.Adjacent(p, other) {
			n++
		}
	}
	return n
}
