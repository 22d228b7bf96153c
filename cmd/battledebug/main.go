// Command battledebug builds two AI tanks, prints both boards, and resolves
// a single battle turn by turn with the full event log. Useful for eyeballing
// new catalog balance or rule changes.
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"github.com/brensch/reeftank/ai"
	"github.com/brensch/reeftank/catalog"
	"github.com/brensch/reeftank/game"
	"github.com/brensch/reeftank/rules"
)

func main() {
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	round := flag.Int("round", 5, "Shop round to simulate both tanks at")
	gold := flag.Int("gold", 18, "Gold each AI shops with")
	catalogPath := flag.String("catalog", "", "Optional piece catalog YAML (defaults to the embedded catalog)")
	flag.Parse()

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(*seed))

	cat := catalog.Default()
	if *catalogPath != "" {
		loaded, err := catalog.Load(*catalogPath)
		if err != nil {
			log.Fatalf("load catalog: %v", err)
		}
		cat = loaded
	}

	log.Printf("Building tanks (seed=%d, round=%d, gold=%d)", *seed, *round, *gold)

	player := game.NewTank("debug-player")
	opponent := game.NewTank("debug-opponent")
	playerAI := ai.NewOpponent(cat, rng)
	opponentAI := ai.NewOpponent(cat, rng)

	for r := 1; r <= *round; r++ {
		playerAI.GenerateAcquisitions(player, *gold, r, 0, 0)
		opponentAI.GenerateAcquisitions(opponent, *gold, r, 0, 0)
	}

	fmt.Println("PLAYER TANK (quality", player.WaterQuality, ")")
	fmt.Println(renderTank(player))
	fmt.Println("OPPONENT TANK (quality", opponent.WaterQuality, ")")
	fmt.Println(renderTank(opponent))

	bs := rules.InitializeBattle(player, opponent, *round)
	fmt.Printf("Battle start: player %dhp vs opponent %dhp\n\n", bs.PlayerHealth, bs.OpponentHealth)

	for bs.Active {
		events, err := rules.AdvanceTurn(bs, rng)
		if err != nil {
			log.Fatalf("advance turn: %v", err)
		}
		for _, ev := range events {
			fmt.Println(formatEvent(ev))
		}
		fmt.Printf("  player %dhp | opponent %dhp\n", bs.PlayerHealth, bs.OpponentHealth)
	}

	fmt.Printf("\nWinner after %d turns: %s\n", bs.Turn, bs.Winner)
}

func renderTank(t *game.Tank) string {
	// Letter per piece, uppercase for fish, '.' for empty water.
	symbols := make(map[string]byte)
	next := byte('a')
	var b strings.Builder
	for y := 0; y < game.GridHeight; y++ {
		for x := 0; x < game.GridWidth; x++ {
			id := t.Grid[y][x]
			if id == "" {
				b.WriteByte('.')
				continue
			}
			sym, ok := symbols[id]
			if !ok {
				sym = next
				symbols[id] = sym
				next++
			}
			if p := t.PieceByID(id); p != nil && p.Category == game.CategoryFish {
				sym -= 32
			}
			b.WriteByte(sym)
		}
		b.WriteByte('\n')
	}
	for _, p := range t.PlacedPieces() {
		buffed := rules.ComputeBuffedStats(p, t.PlacedPieces())
		fmt.Fprintf(&b, "  %c %-16s %s  atk%d hp%d spd%d\n",
			displaySymbol(symbols[p.ID], p), p.Name, p.Category,
			buffed.Attack, buffed.MaxHealth, buffed.Speed)
	}
	return b.String()
}

func displaySymbol(sym byte, p *game.Piece) byte {
	if p.Category == game.CategoryFish {
		return sym - 32
	}
	return sym
}

func formatEvent(ev game.Event) string {
	switch ev.Type {
	case game.EventTurnStart:
		return fmt.Sprintf("--- turn %d ---", ev.Turn)
	case game.EventPoison:
		return fmt.Sprintf("  %s %s takes %d poison", ev.Side, ev.PieceName, ev.Damage)
	case game.EventAttack:
		return fmt.Sprintf("  %s %s hits %s for %d (base %d, bonus %d, water x%.1f)",
			ev.Side, ev.PieceName, ev.TargetName, ev.Damage,
			ev.BaseAttack, ev.BonusAttack, ev.WaterMultiplier)
	case game.EventDeath:
		return fmt.Sprintf("  %s %s dies", ev.Side, ev.PieceName)
	case game.EventBattleEnd:
		return fmt.Sprintf("=== battle over: %s ===", ev.Winner)
	default:
		return fmt.Sprintf("  %s", ev.Type)
	}
}
