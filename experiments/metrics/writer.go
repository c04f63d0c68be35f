package metrics

import (
	"encoding/csv"
	"fmt"
	"isolation/config"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
)

type GameRecord struct {
	ID     int
	Agent1 string // seat 0
	Agent2 string // seat 1
	GameMetric
}

type MoveRecord struct {
	Game int // GameRecord.ID
	MoveMetric
}

// Summary is the result of one matchup from First's point of view.
type Summary struct {
	First   string
	Second  string
	Games   int
	Wins    float64 // draws count as half a win
	WinRate float64
	StdErr  float64
}

type Writer struct {
	baseDir string
}

// NewWriter creates a run directory named by the current timestamp and a
// short random id under root/name.
func NewWriter(root, name string) (*Writer, error) {
	run := time.Now().UTC().Format("20060102T150405Z") + "-" + uuid.NewString()[:8]
	baseDir := filepath.Join(root, name, run)
	err := os.MkdirAll(baseDir, 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	return &Writer{
		baseDir: baseDir,
	}, nil
}

func (w *Writer) Dir() string {
	return w.baseDir
}

func (w *Writer) write(file string, header []string, rows [][]string) error {
	path := filepath.Join(w.baseDir, file)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", file, err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write %s header: %w", file, err)
	}
	if err := writer.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write %s rows: %w", file, err)
	}
	return nil
}

func (w *Writer) WriteAgentConfigs(configs []config.AgentConfig) error {
	rows := make([][]string, 0, len(configs))
	for _, c := range configs {
		rows = append(rows, []string{
			c.Name,
			c.Strategy,
			strconv.Itoa(c.Depth),
			strconv.Itoa(c.Iterations),
			strconv.FormatFloat(c.Exploration, 'f', -1, 64),
			c.Duration.String(),
			c.Evaluation,
			c.Remote,
		})
	}
	header := []string{"name", "strategy", "depth", "iterations", "exploration", "duration", "evaluation", "remote"}
	return w.write("agent_configs.csv", header, rows)
}

func (w *Writer) WriteGameRecords(records []GameRecord) error {
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, []string{
			strconv.Itoa(record.ID),
			record.Agent1,
			record.Agent2,
			strconv.Itoa(record.StartingPlayer),
			strconv.Itoa(record.Winner),
			strconv.FormatBool(record.Forfeit),
			strconv.Itoa(record.TotalMoves),
			record.StartTime.Format(time.RFC3339),
			record.EndTime.Format(time.RFC3339),
			record.Duration.String(),
		})
	}
	header := []string{"id", "agent1", "agent2", "starting_player", "winner", "forfeit", "total_moves", "start_time", "end_time", "duration"}
	return w.write("game_records.csv", header, rows)
}

func (w *Writer) WriteMoveRecords(records []MoveRecord) error {
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, []string{
			strconv.Itoa(record.Game),
			strconv.Itoa(record.Step),
			strconv.Itoa(record.Player),
			strconv.Itoa(record.Action),
			record.Strategy,
			strconv.FormatBool(record.Opening),
			strconv.FormatBool(record.TimedOut),
			record.Duration.String(),
			strconv.Itoa(record.Iterations),
			strconv.Itoa(record.Skipped),
			strconv.Itoa(record.Nodes),
			strconv.Itoa(record.SearchMetric.Depth),
		})
	}
	header := []string{"game", "step", "player", "action", "strategy", "opening", "timed_out", "duration", "iterations", "skipped", "nodes", "depth"}
	return w.write("move_records.csv", header, rows)
}

func (w *Writer) WriteSummaries(summaries []Summary) error {
	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		rows = append(rows, []string{
			s.First,
			s.Second,
			strconv.Itoa(s.Games),
			strconv.FormatFloat(s.Wins, 'f', -1, 64),
			strconv.FormatFloat(s.WinRate, 'f', 4, 64),
			strconv.FormatFloat(s.StdErr, 'f', 4, 64),
		})
	}
	header := []string{"first", "second", "games", "wins", "win_rate", "std_err"}
	return w.write("summary.csv", header, rows)
}
