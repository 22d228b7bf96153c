// Package selfplay pits the opponent AI against itself for balance analysis.
// Each game runs a configurable number of shop rounds; both sides shop with
// the same heuristics, then the battle resolves and is archived.
package selfplay

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/brensch/reeftank/ai"
	"github.com/brensch/reeftank/catalog"
	"github.com/brensch/reeftank/game"
	"github.com/brensch/reeftank/rules"
	"github.com/brensch/reeftank/store"
)

// Config tunes one self-play game.
type Config struct {
	// Rounds is the number of shop+battle rounds per game.
	Rounds int

	// GoldBase is the gold each side receives per round, plus the round
	// number. The real economy (interest, streak gold) lives outside the
	// core, so self-play uses this flat proxy.
	GoldBase int
}

func (c Config) withDefaults() Config {
	if c.Rounds <= 0 {
		c.Rounds = 10
	}
	if c.GoldBase <= 0 {
		c.GoldBase = 10
	}
	return c
}

// GameResult summarizes one completed self-play game.
type GameResult struct {
	GameID       string
	Rounds       int
	PlayerWins   int
	OpponentWins int
	Draws        int
	TotalTurns   int
	Winner       game.Winner
}

// PlayGame runs one full AI-vs-AI game and returns its archive rows plus a
// summary. A zero seed derives one from the clock and worker ID.
func PlayGame(ctx context.Context, workerID int, cfg Config, cat *catalog.Catalog, seed int64) ([]store.BattleTurnRow, GameResult, error) {
	cfg = cfg.withDefaults()
	if seed == 0 {
		seed = time.Now().UnixNano() + int64(workerID)*1000003
	}
	rng := rand.New(rand.NewSource(seed))

	gameID := fmt.Sprintf("selfplay_%d_%d", time.Now().UnixNano(), workerID)
	result := GameResult{GameID: gameID, Rounds: cfg.Rounds}

	left := game.NewTank(gameID + "_player")
	right := game.NewTank(gameID + "_opponent")
	leftAI := ai.NewOpponent(cat, rng)
	rightAI := ai.NewOpponent(cat, rng)

	var leftWinStreak, leftLossStreak int
	var rightWinStreak, rightLossStreak int

	rows := make([]store.BattleTurnRow, 0, cfg.Rounds*8)

	for round := 1; round <= cfg.Rounds; round++ {
		if err := ctx.Err(); err != nil {
			return rows, result, err
		}

		gold := cfg.GoldBase + round
		leftAI.GenerateAcquisitions(left, gold, round, leftLossStreak, leftWinStreak)
		rightAI.GenerateAcquisitions(right, gold, round, rightLossStreak, rightWinStreak)

		bs := rules.InitializeBattle(left, right, round)
		for bs.Active {
			if err := ctx.Err(); err != nil {
				return rows, result, err
			}
			if _, err := rules.AdvanceTurn(bs, rng); err != nil {
				return rows, result, err
			}
		}
		result.TotalTurns += bs.Turn

		switch bs.Winner {
		case game.WinnerPlayer:
			result.PlayerWins++
			leftWinStreak, leftLossStreak = leftWinStreak+1, 0
			rightWinStreak, rightLossStreak = 0, rightLossStreak+1
		case game.WinnerOpponent:
			result.OpponentWins++
			rightWinStreak, rightLossStreak = rightWinStreak+1, 0
			leftWinStreak, leftLossStreak = 0, leftLossStreak+1
		default:
			result.Draws++
			leftWinStreak, leftLossStreak = 0, 0
			rightWinStreak, rightLossStreak = 0, 0
		}

		rows = append(rows, store.RowsFromBattle(gameID, "selfplay", bs)...)
	}

	switch {
	case result.PlayerWins > result.OpponentWins:
		result.Winner = game.WinnerPlayer
	case result.OpponentWins > result.PlayerWins:
		result.Winner = game.WinnerOpponent
	default:
		result.Winner = game.WinnerDraw
	}
	return rows, result, nil
}
