// Package store archives resolved battles as parquet for offline balance
// analysis. One row per battle turn, with the turn's events nested, keeps
// files compact and lets analysts slice by turn without duplicating side
// totals per event.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/zstd"

	"github.com/brensch/reeftank/game"
)

// BattleTurnRow is a single (game, round, turn) snapshot.
type BattleTurnRow struct {
	GameID string `parquet:"game_id,dict"`
	Round  int32  `parquet:"round"`
	Turn   int32  `parquet:"turn"`

	PlayerHealth   int32 `parquet:"player_health"`
	OpponentHealth int32 `parquet:"opponent_health"`

	PlayerQuality   int32 `parquet:"player_quality"`
	OpponentQuality int32 `parquet:"opponent_quality"`

	// Winner is set only on the battle's final turn row, "" otherwise.
	Winner string `parquet:"winner,dict"`

	Events []EventRow `parquet:"events"`

	Source string `parquet:"source,dict"`
}

// EventRow is one battle event within a turn.
type EventRow struct {
	Type       string  `parquet:"type,dict"`
	Side       string  `parquet:"side,dict"`
	PieceName  string  `parquet:"piece_name,dict"`
	TargetName string  `parquet:"target_name,dict"`
	Damage     int32   `parquet:"damage"`
	BaseAttack int32   `parquet:"base_attack"`
	WaterMult  float32 `parquet:"water_mult"`
}

// RowsFromBattle flattens a finished (or in-progress) battle's event log into
// per-turn rows. Side health columns reflect the totals after the turn
// resolved.
func RowsFromBattle(gameID, source string, bs *game.BattleState) []BattleTurnRow {
	byTurn := make(map[int][]EventRow)
	maxTurn := 0
	for _, ev := range bs.Events {
		byTurn[ev.Turn] = append(byTurn[ev.Turn], EventRow{
			Type:       string(ev.Type),
			Side:       string(ev.Side),
			PieceName:  ev.PieceName,
			TargetName: ev.TargetName,
			Damage:     int32(ev.Damage),
			BaseAttack: int32(ev.BaseAttack),
			WaterMult:  float32(ev.WaterMultiplier),
		})
		if ev.Turn > maxTurn {
			maxTurn = ev.Turn
		}
	}

	rows := make([]BattleTurnRow, 0, maxTurn)
	for turn := 1; turn <= maxTurn; turn++ {
		row := BattleTurnRow{
			GameID:          gameID,
			Round:           int32(bs.Round),
			Turn:            int32(turn),
			PlayerQuality:   int32(bs.PlayerQuality),
			OpponentQuality: int32(bs.OpponentQuality),
			Events:          byTurn[turn],
			Source:          source,
		}
		if turn == maxTurn {
			row.PlayerHealth = int32(bs.PlayerHealth)
			row.OpponentHealth = int32(bs.OpponentHealth)
			row.Winner = string(bs.Winner)
		}
		rows = append(rows, row)
	}
	return rows
}

// WriteBattleParquet writes rows to outPath via a temp file and atomic
// rename, so readers never observe a partial file.
func WriteBattleParquet(outPath string, rows []BattleTurnRow) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	tmpPath := outPath + ".tmp"
	_ = os.Remove(tmpPath)

	if err := parquet.WriteFile(tmpPath, rows,
		parquet.Compression(&zstd.Codec{Level: zstd.SpeedBetterCompression}),
		parquet.KeyValueMetadata("schema", "battle_turn_v1"),
	); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write parquet: %w", err)
	}

	if err := os.Rename(tmpPath, outPath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename parquet: %w", err)
	}
	return nil
}

// WriteBattleBatchAtomic writes a timestamped batch file into outDir/tmp and
// then moves it into outDir.
func WriteBattleBatchAtomic(outDir string, rows []BattleTurnRow) (string, error) {
	if err := os.MkdirAll(filepath.Join(outDir, "tmp"), 0o755); err != nil {
		return "", fmt.Errorf("create tmp dir: %w", err)
	}

	name := fmt.Sprintf("battles_%d.parquet", time.Now().UnixNano())
	finalPath := filepath.Join(outDir, name)
	tmpPath := filepath.Join(outDir, "tmp", name+".tmp")
	_ = os.Remove(tmpPath)

	if err := parquet.WriteFile(tmpPath, rows,
		parquet.Compression(&zstd.Codec{Level: zstd.SpeedBetterCompression}),
		parquet.KeyValueMetadata("schema", "battle_turn_v1"),
	); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("write parquet: %w", err)
	}

	if err := os.Rename(tmpPath, finalPath); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("rename parquet: %w", err)
	}
	return finalPath, nil
}
