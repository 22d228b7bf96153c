package selfplay

import (
	"context"
	"errors"
	"testing"

	"github.com/brensch/reeftank/catalog"
	"github.com/brensch/reeftank/game"
)

func TestPlayGame_CompletesConfiguredRounds(t *testing.T) {
	cat := catalog.Default()
	cfg := Config{Rounds: 5, GoldBase: 10}

	rows, result, err := PlayGame(context.Background(), 0, cfg, cat, 42)
	if err != nil {
		t.Fatalf("play game: %v", err)
	}
	t.Logf("game %s: %d/%d/%d (P/O/D), %d turns, %d rows",
		result.GameID, result.PlayerWins, result.OpponentWins, result.Draws,
		result.TotalTurns, len(rows))

	if result.Rounds != 5 {
		t.Errorf("result rounds = %d, want 5", result.Rounds)
	}
	if got := result.PlayerWins + result.OpponentWins + result.Draws; got != 5 {
		t.Errorf("outcomes sum to %d, want 5", got)
	}
	if result.TotalTurns < 5 || result.TotalTurns > 5*20 {
		t.Errorf("total turns %d outside [5, 100]", result.TotalTurns)
	}
	if len(rows) != result.TotalTurns {
		t.Errorf("archived %d rows for %d turns", len(rows), result.TotalTurns)
	}
	for _, row := range rows {
		if row.GameID != result.GameID {
			t.Errorf("row game ID %q, want %q", row.GameID, result.GameID)
		}
		if row.Source != "selfplay" {
			t.Errorf("row source %q, want selfplay", row.Source)
		}
	}

	switch result.Winner {
	case game.WinnerPlayer:
		if result.PlayerWins <= result.OpponentWins {
			t.Errorf("player declared winner at %d-%d", result.PlayerWins, result.OpponentWins)
		}
	case game.WinnerOpponent:
		if result.OpponentWins <= result.PlayerWins {
			t.Errorf("opponent declared winner at %d-%d", result.PlayerWins, result.OpponentWins)
		}
	case game.WinnerDraw:
		if result.PlayerWins != result.OpponentWins {
			t.Errorf("draw declared at %d-%d", result.PlayerWins, result.OpponentWins)
		}
	}
}

func TestPlayGame_DefaultsApply(t *testing.T) {
	_, result, err := PlayGame(context.Background(), 1, Config{}, catalog.Default(), 7)
	if err != nil {
		t.Fatalf("play game: %v", err)
	}
	if result.Rounds != 10 {
		t.Errorf("default rounds = %d, want 10", result.Rounds)
	}
}

func TestPlayGame_CancelStopsEarly(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rows, _, err := PlayGame(ctx, 2, Config{Rounds: 50}, catalog.Default(), 7)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("cancelled game returned %v, want context.Canceled", err)
	}
	if len(rows) != 0 {
		t.Errorf("pre-cancelled game archived %d rows", len(rows))
	}
}

func TestPlayGame_SeedIsDeterministic(t *testing.T) {
	cat := catalog.Default()
	cfg := Config{Rounds: 3, GoldBase: 10}

	_, a, err := PlayGame(context.Background(), 0, cfg, cat, 1234)
	if err != nil {
		t.Fatalf("play game: %v", err)
	}
	_, b, err := PlayGame(context.Background(), 0, cfg, cat, 1234)
	if err != nil {
		t.Fatalf("play game: %v", err)
	}

	if a.PlayerWins != b.PlayerWins || a.OpponentWins != b.OpponentWins ||
		a.Draws != b.Draws || a.TotalTurns != b.TotalTurns {
		t.Errorf("same seed diverged: %+v vs %+v", a, b)
	}
}
