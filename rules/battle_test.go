package rules

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/brensch/reeftank/game"
)

// stubRNG makes battles fully deterministic: Intn always returns 0 (first
// enemy targeted, shuffle effectively reverses) and Float64 returns 0.
type stubRNG struct{}

func (stubRNG) Intn(int) int     { return 0 }
func (stubRNG) Float64() float64 { return 0 }

func dumpBattle(bs *game.BattleState) string {
	s := fmt.Sprintf("turn=%d active=%v winner=%q player=%d/%d opponent=%d/%d\n",
		bs.Turn, bs.Active, bs.Winner,
		bs.PlayerHealth, bs.PlayerMaxHealth, bs.OpponentHealth, bs.OpponentMaxHealth)
	for _, bp := range append(append([]*game.BattlePiece{}, bs.PlayerPieces...), bs.OpponentPieces...) {
		s += fmt.Sprintf("  [%s] %s atk=%d spd=%d hp=%d/%d dead=%v\n",
			bp.Side, bp.Piece.Name, bp.Attack, bp.Speed, bp.CurrentHealth, bp.MaxHealth, bp.Dead)
	}
	return s
}

func singleFishTank(t *testing.T, id string, atk, hp, spd int) *game.Tank {
	t.Helper()
	tank := game.NewTank(id)
	fish := fishPiece(id+"-fish", atk, hp, spd)
	mustPlace(t, tank, fish, game.Position{X: 0, Y: 0})
	return tank
}

func runBattle(t *testing.T, bs *game.BattleState, rng RNG) {
	t.Helper()
	for bs.Active {
		if _, err := AdvanceTurn(bs, rng); err != nil {
			t.Fatalf("advance turn: %v\n%s", err, dumpBattle(bs))
		}
		if bs.Turn > MaxBattleTurns {
			t.Fatalf("battle exceeded turn cap\n%s", dumpBattle(bs))
		}
	}
}

func TestInitializeBattle_SnapshotsBuffedStats(t *testing.T) {
	player := game.NewTank("p")
	fish := fishPiece("fish", 3, 5, 2)
	fern := plantPiece("fern", game.StatBonus{Attack: 1, Health: 1})
	mustPlace(t, player, fish, game.Position{X: 2, Y: 2})
	mustPlace(t, player, fern, game.Position{X: 3, Y: 2})

	opponent := singleFishTank(t, "o", 1, 1, 1)

	bs := InitializeBattle(player, opponent, 1)
	if !bs.Active {
		t.Fatalf("battle should start active")
	}

	var fishBP *game.BattlePiece
	for _, bp := range bs.PlayerPieces {
		if bp.Piece.Name == "fish" {
			fishBP = bp
		}
	}
	if fishBP == nil {
		t.Fatalf("fish missing from snapshot\n%s", dumpBattle(bs))
	}
	if fishBP.Attack != 4 || fishBP.MaxHealth != 6 || fishBP.CurrentHealth != 6 {
		t.Errorf("snapshot stats atk=%d hp=%d/%d, want atk=4 hp=6/6",
			fishBP.Attack, fishBP.CurrentHealth, fishBP.MaxHealth)
	}
	// Side total includes the fern's own health pool.
	if bs.PlayerMaxHealth != 6+3 {
		t.Errorf("player max health = %d, want 9", bs.PlayerMaxHealth)
	}

	// Mutating battle pieces must not touch the shop-phase tank.
	fishBP.CurrentHealth = 0
	if fish.BaseStats.Health != 5 {
		t.Errorf("battle mutated the tank's piece")
	}
}

func TestAdvanceTurn_NotActive(t *testing.T) {
	if _, err := AdvanceTurn(nil, stubRNG{}); err == nil {
		t.Fatalf("expected error advancing nil battle")
	}

	bs := InitializeBattle(game.NewTank("p"), game.NewTank("o"), 1)
	runBattle(t, bs, stubRNG{})
	if _, err := AdvanceTurn(bs, stubRNG{}); err == nil {
		t.Fatalf("expected error advancing terminated battle")
	}
}

func TestAdvanceTurn_DamageFormula(t *testing.T) {
	player := singleFishTank(t, "p", 3, 50, 5)
	opponent := singleFishTank(t, "o", 2, 50, 1)

	bs := InitializeBattle(player, opponent, 1)
	if _, err := AdvanceTurn(bs, stubRNG{}); err != nil {
		t.Fatalf("advance: %v", err)
	}
	t.Logf("after turn 1:\n%s", dumpBattle(bs))

	// Both tanks sit at quality 6 (one fish below base 7): multiplier 1.0.
	// Faster player fish hits for 3, slower opponent hits back for 2.
	if bs.OpponentHealth != 50-3 {
		t.Errorf("opponent health = %d, want 47", bs.OpponentHealth)
	}
	if bs.PlayerHealth != 50-2 {
		t.Errorf("player health = %d, want 48", bs.PlayerHealth)
	}
}

func TestAdvanceTurn_WaterMultiplierAndPoison(t *testing.T) {
	// Player side's water is fouled to quality <= 3 by stacking fish.
	player := game.NewTank("p")
	attacker := fishPiece("attacker", 10, 40, 9)
	mustPlace(t, player, attacker, game.Position{X: 0, Y: 0})
	for i := 0; i < 3; i++ {
		extra := fishPiece(fmt.Sprintf("chum%d", i), 0, 30, 1)
		mustPlace(t, player, extra, game.Position{X: 2 + i*2, Y: 2})
	}
	if player.WaterQuality > PoisonThreshold {
		t.Fatalf("setup: player quality = %d, want <= %d", player.WaterQuality, PoisonThreshold)
	}

	opponent := singleFishTank(t, "o", 0, 100, 1)

	bs := InitializeBattle(player, opponent, 1)
	events, err := AdvanceTurn(bs, stubRNG{})
	if err != nil {
		t.Fatalf("advance: %v", err)
	}

	poisoned := 0
	var attack *game.Event
	for i, ev := range events {
		switch ev.Type {
		case game.EventPoison:
			if ev.Side == game.SidePlayer {
				poisoned++
			}
		case game.EventAttack:
			if ev.PieceName == "attacker" {
				attack = &events[i]
			}
		}
	}

	if poisoned != 4 {
		t.Errorf("poisoned fish = %d, want all 4 player fish", poisoned)
	}
	if attack == nil {
		t.Fatalf("attacker never attacked:\n%s", dumpBattle(bs))
	}
	// floor(10 * 0.7) = 7.
	if attack.Damage != 7 {
		t.Errorf("damage = %d, want 7 (attack 10 at 0.7 water)", attack.Damage)
	}
	if attack.WaterMultiplier != 0.7 {
		t.Errorf("multiplier = %v, want 0.7", attack.WaterMultiplier)
	}
}

func TestAdvanceTurn_DoubleLossDraw(t *testing.T) {
	// Plants only: nobody can attack, so the battle drowns immediately.
	player := game.NewTank("p")
	mustPlace(t, player, plantPiece("p-fern", game.StatBonus{}), game.Position{X: 0, Y: 0})
	opponent := game.NewTank("o")
	mustPlace(t, opponent, plantPiece("o-fern", game.StatBonus{}), game.Position{X: 0, Y: 0})

	bs := InitializeBattle(player, opponent, 1)
	events, err := AdvanceTurn(bs, stubRNG{})
	if err != nil {
		t.Fatalf("advance: %v", err)
	}

	if bs.Active || bs.Winner != game.WinnerDraw {
		t.Errorf("want immediate draw, got active=%v winner=%q", bs.Active, bs.Winner)
	}
	if bs.PlayerHealth != 0 || bs.OpponentHealth != 0 {
		t.Errorf("double loss must force both totals to 0, got %d/%d", bs.PlayerHealth, bs.OpponentHealth)
	}
	last := events[len(events)-1]
	if last.Type != game.EventBattleEnd || last.Winner != game.WinnerDraw {
		t.Errorf("final event = %+v, want battle_end draw", last)
	}
}

func TestAdvanceTurn_TurnCapDraw(t *testing.T) {
	// Zero-attack fish can never finish each other off.
	player := singleFishTank(t, "p", 0, 10, 1)
	opponent := singleFishTank(t, "o", 0, 10, 1)

	bs := InitializeBattle(player, opponent, 1)
	runBattle(t, bs, stubRNG{})

	if bs.Turn != MaxBattleTurns {
		t.Errorf("battle ended at turn %d, want cap %d", bs.Turn, MaxBattleTurns)
	}
	if bs.Winner != game.WinnerDraw {
		t.Errorf("winner = %q, want draw at turn cap", bs.Winner)
	}
}

func TestAdvanceTurn_DeadAttackerSkipped(t *testing.T) {
	// Fast heavy hitter kills the slow fish before it can act.
	player := singleFishTank(t, "p", 100, 10, 9)
	opponent := singleFishTank(t, "o", 100, 10, 1)

	bs := InitializeBattle(player, opponent, 1)
	events, err := AdvanceTurn(bs, stubRNG{})
	if err != nil {
		t.Fatalf("advance: %v", err)
	}

	attacks := 0
	for _, ev := range events {
		if ev.Type == game.EventAttack {
			attacks++
		}
	}
	if attacks != 1 {
		t.Errorf("attacks = %d, want 1 (dead fish cannot retaliate)", attacks)
	}
	if bs.Winner != game.WinnerPlayer {
		t.Errorf("winner = %q, want player", bs.Winner)
	}
}

func TestBattle_AlwaysTerminates(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 50; trial++ {
		player := game.NewTank("p")
		opponent := game.NewTank("o")
		for i := 0; i < 1+rng.Intn(4); i++ {
			mustPlace(t, player, fishPiece(fmt.Sprintf("pf%d", i), rng.Intn(4), 1+rng.Intn(9), rng.Intn(5)), game.Position{X: i * 2, Y: 0})
			mustPlace(t, opponent, fishPiece(fmt.Sprintf("of%d", i), rng.Intn(4), 1+rng.Intn(9), rng.Intn(5)), game.Position{X: i * 2, Y: 0})
		}

		bs := InitializeBattle(player, opponent, 1)
		runBattle(t, bs, rng)

		switch bs.Winner {
		case game.WinnerPlayer, game.WinnerOpponent, game.WinnerDraw:
		default:
			t.Fatalf("trial %d: battle terminated without a winner: %q", trial, bs.Winner)
		}
	}
}

func TestAdvanceTurn_HealthNeverNegative(t *testing.T) {
	player := singleFishTank(t, "p", 1000, 5, 9)
	opponent := singleFishTank(t, "o", 1000, 5, 1)

	bs := InitializeBattle(player, opponent, 1)
	runBattle(t, bs, stubRNG{})

	for _, bp := range append(append([]*game.BattlePiece{}, bs.PlayerPieces...), bs.OpponentPieces...) {
		if bp.CurrentHealth < 0 {
			t.Errorf("%s health %d < 0", bp.Piece.Name, bp.CurrentHealth)
		}
	}
}

func TestAdvanceTurn_PlantsAreTargetsButNeverAttack(t *testing.T) {
	player := singleFishTank(t, "p", 2, 100, 5)
	opponent := game.NewTank("o")
	mustPlace(t, opponent, plantPiece("only-plant", game.StatBonus{}), game.Position{X: 0, Y: 0})

	bs := InitializeBattle(player, opponent, 1)
	events, err := AdvanceTurn(bs, stubRNG{})
	if err != nil {
		t.Fatalf("advance: %v", err)
	}

	for _, ev := range events {
		if ev.Type == game.EventAttack {
			if ev.Side != game.SidePlayer {
				t.Errorf("plant attacked: %+v", ev)
			}
			if ev.TargetName != "only-plant" {
				t.Errorf("target = %q, want the plant", ev.TargetName)
			}
		}
	}
}
