package store

import (
	"context"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/litterix/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "litterix.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	return s
}

func intPtr(v int) *int { return &v }

func sampleGames() []model.GameRecord {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return []model.GameRecord{
		{
			RunID: "run-1", Mode: "rush", Difficulty: "base",
			StartedAt: base, EndedAt: base.Add(30 * time.Second),
			Words: 20, Chars: 110, TimeElapsed: 30,
			AvgWPM: 40, AvgAccuracy: 90, HighestCombo: 12,
		},
		{
			RunID: "run-2", Mode: "marathon", Difficulty: "advanced",
			StartedAt: base.Add(time.Hour), EndedAt: base.Add(time.Hour + 2*time.Minute),
			Words: 47, Chars: 260, TimeElapsed: 120,
			AvgWPM: 60, AvgAccuracy: 96, HighestCombo: 23, FinalScore: intPtr(51),
		},
		{
			RunID: "run-3", Mode: "rush", Difficulty: "base",
			StartedAt: base.Add(2 * time.Hour), EndedAt: base.Add(2*time.Hour + 45*time.Second),
			Words: 30, Chars: 150, TimeElapsed: 45,
			AvgWPM: 50, AvgAccuracy: 100, HighestCombo: 30,
		},
	}
}

func seed(t *testing.T, s *Store) {
	t.Helper()
	for _, rec := range sampleGames() {
		if err := s.RecordGame(context.Background(), rec); err != nil {
			t.Fatalf("record game: %v", err)
		}
	}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestStatsEmpty(t *testing.T) {
	s := openTestStore(t)
	st, err := s.Stats(context.Background(), "")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.HasPlayed() {
		t.Fatalf("expected no games, got %+v", st)
	}
	if st != (model.GameStats{}) {
		t.Fatalf("expected zero stats, got %+v", st)
	}
}

func TestStatsAggregatesAllGames(t *testing.T) {
	s := openTestStore(t)
	seed(t, s)

	st, err := s.Stats(context.Background(), "")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.TotalGames != 3 || st.TotalWords != 97 || st.TotalChars != 520 {
		t.Fatalf("unexpected totals: %+v", st)
	}
	if !almostEqual(st.TotalTimePlayed, 195) {
		t.Fatalf("expected 195s played, got %v", st.TotalTimePlayed)
	}
	if st.BestWPM != 60 || st.BestAccuracy != 100 || st.HighestCombo != 30 {
		t.Fatalf("unexpected bests: %+v", st)
	}
	if !almostEqual(st.AverageWPM, 50) || !almostEqual(st.AverageAccuracy, 95.33333333333333) {
		t.Fatalf("unexpected averages: %+v", st)
	}
	if st.RushGames != 2 || st.MarathonGames != 1 || st.MarathonBestScore != 51 {
		t.Fatalf("unexpected per-mode stats: %+v", st)
	}
}

func TestStatsFiltersByMode(t *testing.T) {
	s := openTestStore(t)
	seed(t, s)

	st, err := s.Stats(context.Background(), "rush")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.TotalGames != 2 || st.MarathonGames != 0 || st.MarathonBestScore != 0 {
		t.Fatalf("unexpected rush stats: %+v", st)
	}
	if st.BestWPM != 50 {
		t.Fatalf("expected best rush wpm 50, got %v", st.BestWPM)
	}
}

func TestRecordGameIgnoresDuplicateRun(t *testing.T) {
	s := openTestStore(t)
	rec := sampleGames()[0]
	for i := 0; i < 2; i++ {
		if err := s.RecordGame(context.Background(), rec); err != nil {
			t.Fatalf("record game: %v", err)
		}
	}
	games, err := s.ListGames(context.Background(), model.StatsConfig{})
	if err != nil {
		t.Fatalf("list games: %v", err)
	}
	if len(games) != 1 {
		t.Fatalf("expected 1 game, got %d", len(games))
	}
}

func TestListGamesOrderAndLimit(t *testing.T) {
	s := openTestStore(t)
	seed(t, s)

	games, err := s.ListGames(context.Background(), model.StatsConfig{})
	if err != nil {
		t.Fatalf("list games: %v", err)
	}
	if len(games) != 3 {
		t.Fatalf("expected 3 games, got %d", len(games))
	}
	if games[0].RunID != "run-1" || games[2].RunID != "run-3" {
		t.Fatalf("expected oldest first, got %s..%s", games[0].RunID, games[2].RunID)
	}
	if games[0].FinalScore != nil {
		t.Fatalf("expected rush game without score")
	}
	if games[1].FinalScore == nil || *games[1].FinalScore != 51 {
		t.Fatalf("expected marathon score 51, got %v", games[1].FinalScore)
	}

	last, err := s.ListGames(context.Background(), model.StatsConfig{Last: 2})
	if err != nil {
		t.Fatalf("list games: %v", err)
	}
	if len(last) != 2 || last[0].RunID != "run-2" || last[1].RunID != "run-3" {
		t.Fatalf("unexpected last games: %+v", last)
	}

	since := time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC)
	rush, err := s.ListGames(context.Background(), model.StatsConfig{Mode: "rush", Since: &since})
	if err != nil {
		t.Fatalf("list games: %v", err)
	}
	if len(rush) != 1 || rush[0].RunID != "run-3" {
		t.Fatalf("unexpected filtered games: %+v", rush)
	}
	if !rush[0].EndedAt.Equal(time.Date(2026, 3, 1, 14, 0, 45, 0, time.UTC)) {
		t.Fatalf("unexpected ended_at %v", rush[0].EndedAt)
	}
}

func TestListGamesSubsecondOrder(t *testing.T) {
	s := openTestStore(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for _, rec := range []model.GameRecord{
		{RunID: "half", Mode: "rush", Difficulty: "base", StartedAt: base, EndedAt: base.Add(500 * time.Millisecond)},
		{RunID: "whole", Mode: "rush", Difficulty: "base", StartedAt: base, EndedAt: base},
	} {
		if err := s.RecordGame(context.Background(), rec); err != nil {
			t.Fatalf("record game: %v", err)
		}
	}

	games, err := s.ListGames(context.Background(), model.StatsConfig{})
	if err != nil {
		t.Fatalf("list games: %v", err)
	}
	if len(games) != 2 || games[0].RunID != "whole" || games[1].RunID != "half" {
		t.Fatalf("expected whole before half, got %+v", games)
	}

	last, err := s.ListGames(context.Background(), model.StatsConfig{Last: 1})
	if err != nil {
		t.Fatalf("list games: %v", err)
	}
	if len(last) != 1 || last[0].RunID != "half" {
		t.Fatalf("expected most recent game half, got %+v", last)
	}

	since := base.Add(250 * time.Millisecond)
	after, err := s.ListGames(context.Background(), model.StatsConfig{Since: &since})
	if err != nil {
		t.Fatalf("list games: %v", err)
	}
	if len(after) != 1 || after[0].RunID != "half" {
		t.Fatalf("expected only half after since, got %+v", after)
	}
	if !after[0].EndedAt.Equal(base.Add(500 * time.Millisecond)) {
		t.Fatalf("unexpected ended_at %v", after[0].EndedAt)
	}
}

func TestReset(t *testing.T) {
	s := openTestStore(t)
	seed(t, s)

	n, err := s.Reset(context.Background())
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 deleted rows, got %d", n)
	}
	st, err := s.Stats(context.Background(), "")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.HasPlayed() {
		t.Fatalf("expected empty stats after reset, got %+v", st)
	}
}
