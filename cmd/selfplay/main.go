// Command selfplay runs AI-vs-AI games in parallel for balance analysis,
// archiving every battle turn to parquet batches. A bubbletea monitor shows
// throughput and recent results; -no-tui switches to JSON line logs instead.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/brensch/reeftank/catalog"
	"github.com/brensch/reeftank/logging"
	"github.com/brensch/reeftank/selfplay"
	"github.com/brensch/reeftank/store"
)

var (
	totalGames   atomic.Int64
	totalBattles atomic.Int64
	totalTurns   atomic.Int64
)

type gameUpdate struct {
	WorkerID int
	Result   selfplay.GameResult
	Rows     int
}

type writeRequest struct {
	rows []store.BattleTurnRow
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	statStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	recentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

type model struct {
	gamesPlayed int
	rowsWritten int
	startTime   time.Time
	recent      []string
	updates     chan gameUpdate
}

type tickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func waitForUpdate(updates chan gameUpdate) tea.Cmd {
	return func() tea.Msg {
		return <-updates
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(waitForUpdate(m.updates), tickCmd())
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	case tickMsg:
		return m, tickCmd()
	case gameUpdate:
		m.gamesPlayed++
		m.rowsWritten += msg.Rows
		line := fmt.Sprintf("worker %d: %s (%d-%d-%d), %d turns",
			msg.WorkerID, msg.Result.Winner,
			msg.Result.PlayerWins, msg.Result.OpponentWins, msg.Result.Draws,
			msg.Result.TotalTurns)
		m.recent = append([]string{line}, m.recent...)
		if len(m.recent) > 10 {
			m.recent = m.recent[:10]
		}
		return m, waitForUpdate(m.updates)
	}
	return m, nil
}

func (m model) View() string {
	duration := time.Since(m.startTime)
	gamesPerSec := 0.0
	if duration.Seconds() >= 1 {
		gamesPerSec = float64(m.gamesPlayed) / duration.Seconds()
	}

	s := titleStyle.Render("reeftank self-play") + "\n\n"
	s += statStyle.Render(fmt.Sprintf("Games played:  %d", m.gamesPlayed)) + "\n"
	s += statStyle.Render(fmt.Sprintf("Battles:       %d", totalBattles.Load())) + "\n"
	s += statStyle.Render(fmt.Sprintf("Battle turns:  %d", totalTurns.Load())) + "\n"
	s += statStyle.Render(fmt.Sprintf("Rows written:  %d", m.rowsWritten)) + "\n"
	s += statStyle.Render(fmt.Sprintf("Duration:      %s", duration.Round(time.Second))) + "\n"
	s += statStyle.Render(fmt.Sprintf("Games/sec:     %.2f", gamesPerSec)) + "\n\n"

	s += "Recent games:\n"
	for _, g := range m.recent {
		s += recentStyle.Render(g) + "\n"
	}
	s += "\nPress q to quit.\n"
	return s
}

func main() {
	outDir := flag.String("out-dir", "data/battles", "Output directory for battle parquet batches")
	workers := flag.Int("workers", 8, "Number of self-play workers")
	rounds := flag.Int("rounds", 10, "Shop rounds per game")
	gamesPerFlush := flag.Int("games-per-flush", 50, "Games to buffer per parquet flush")
	maxGames := flag.Int64("max-games", 0, "If > 0, stop after this many games across all workers")
	catalogPath := flag.String("catalog", "", "Optional piece catalog YAML (defaults to the embedded catalog)")
	noTUI := flag.Bool("no-tui", false, "Disable the live monitor and log JSON lines instead")
	flag.Parse()

	logger := slog.New(logging.NewJSONLineHandler(os.Stderr, nil))

	cat := catalog.Default()
	if *catalogPath != "" {
		loaded, err := catalog.Load(*catalogPath)
		if err != nil {
			logger.Error("load catalog", "path", *catalogPath, "err", err)
			os.Exit(1)
		}
		cat = loaded
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(sigCtx)
	defer cancel()

	cfg := selfplay.Config{Rounds: *rounds}

	updates := make(chan gameUpdate, *workers)
	writeReqs := make(chan writeRequest, (*workers)*4)

	writerDone := make(chan struct{})
	go func() {
		parquetWriterLoop(logger, *outDir, *gamesPerFlush, writeReqs)
		close(writerDone)
	}()

	var workerWG sync.WaitGroup
	for i := 0; i < *workers; i++ {
		workerWG.Add(1)
		go func(workerID int) {
			defer workerWG.Done()
			for {
				select {
				case <-ctx.Done():
					return
				default:
				}

				rows, result, err := selfplay.PlayGame(ctx, workerID, cfg, cat, 0)
				if err != nil {
					// Cancellation mid-game; partial rows are still worth
					// keeping for analysis.
					if len(rows) > 0 {
						writeReqs <- writeRequest{rows: rows}
					}
					return
				}

				total := totalGames.Add(1)
				totalBattles.Add(int64(result.Rounds))
				totalTurns.Add(int64(result.TotalTurns))
				if *maxGames > 0 && total >= *maxGames {
					cancel()
				}

				writeReqs <- writeRequest{rows: rows}
				select {
				case updates <- gameUpdate{WorkerID: workerID, Result: result, Rows: len(rows)}:
				default:
				}
			}
		}(i)
	}

	if *noTUI {
		runHeadless(ctx, logger, updates)
	} else {
		p := tea.NewProgram(model{startTime: time.Now(), updates: updates}, tea.WithAltScreen())
		if _, err := p.Run(); err != nil {
			logger.Error("monitor", "err", err)
		}
		cancel()
	}

	workerWG.Wait()
	close(writeReqs)
	<-writerDone
	logger.Info("shutdown complete", "games", totalGames.Load())
}

func runHeadless(ctx context.Context, logger *slog.Logger, updates chan gameUpdate) {
	startTime := time.Now()
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case u := <-updates:
			logger.Info("game finished",
				"worker", u.WorkerID,
				"winner", string(u.Result.Winner),
				"turns", u.Result.TotalTurns,
				"rows", u.Rows,
			)
		case <-ticker.C:
			duration := time.Since(startTime)
			games := totalGames.Load()
			logger.Info("stats",
				"games", games,
				"games_per_sec", fmt.Sprintf("%.2f", float64(games)/duration.Seconds()),
				"battles", totalBattles.Load(),
				"turns", totalTurns.Load(),
			)
		}
	}
}

func parquetWriterLoop(logger *slog.Logger, outDir string, gamesPerFlush int, in <-chan writeRequest) {
	if gamesPerFlush <= 0 {
		gamesPerFlush = 50
	}

	var writer *store.BatchWriter
	flush := func() {
		if writer == nil {
			return
		}
		path, rows, battles, err := writer.Finalize()
		if err != nil {
			logger.Error("finalize parquet batch", "err", err)
		} else if rows > 0 {
			logger.Info("flushed parquet batch", "path", path, "rows", rows, "battles", battles)
		}
		writer = nil
	}

	for req := range in {
		if writer == nil {
			w, err := store.NewBatchWriter(outDir)
			if err != nil {
				logger.Error("open parquet batch", "err", err)
				continue
			}
			writer = w
		}
		if err := writer.WriteRows(req.rows); err != nil {
			logger.Error("write parquet rows", "err", err)
			continue
		}
		writer.NoteBattleWritten()
		if writer.BufferedBattles() >= gamesPerFlush {
			flush()
		}
	}
	flush()
}
