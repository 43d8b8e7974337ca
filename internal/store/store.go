// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/litterix/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store wraps SQLite access for finished games.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS games (
			id INTEGER PRIMARY KEY,
			run_id TEXT NOT NULL UNIQUE,
			mode TEXT NOT NULL,
			difficulty TEXT NOT NULL,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			words INTEGER NOT NULL,
			chars INTEGER NOT NULL,
			time_elapsed REAL NOT NULL,
			avg_wpm REAL NOT NULL,
			avg_accuracy REAL NOT NULL,
			highest_combo INTEGER NOT NULL,
			final_score INTEGER
		);`,
		`CREATE INDEX IF NOT EXISTS idx_games_ended_at ON games(ended_at);`,
		`CREATE INDEX IF NOT EXISTS idx_games_mode ON games(mode);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// RecordGame stores a finished game. Recording the same run twice keeps the
// first row.
func (s *Store) RecordGame(ctx context.Context, rec model.GameRecord) error {
	var score sql.NullInt64
	if rec.FinalScore != nil {
		score = sql.NullInt64{Int64: int64(*rec.FinalScore), Valid: true}
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO games (run_id, mode, difficulty, started_at, ended_at, words, chars, time_elapsed, avg_wpm, avg_accuracy, highest_combo, final_score)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID,
		rec.Mode,
		rec.Difficulty,
		rec.StartedAt.UTC().Format(timeLayout),
		rec.EndedAt.UTC().Format(timeLayout),
		rec.Words,
		rec.Chars,
		rec.TimeElapsed,
		rec.AvgWPM,
		rec.AvgAccuracy,
		rec.HighestCombo,
		score,
	)
	if err != nil {
		return fmt.Errorf("failed to record game: %w", err)
	}
	return nil
}

// ListGames returns stored games filtered by stats config, oldest first. A
// positive Last keeps only the most recent games.
func (s *Store) ListGames(ctx context.Context, cfg model.StatsConfig) ([]model.GameAggregate, error) {
	where, args := filterClause(cfg.Mode, cfg.Since)
	query := fmt.Sprintf(`SELECT id, run_id, mode, difficulty, ended_at, words, chars, time_elapsed, avg_wpm, avg_accuracy, highest_combo, final_score
		FROM games
		WHERE %s
		ORDER BY ended_at DESC, id DESC`, where)
	if cfg.Last > 0 {
		query += " LIMIT ?"
		args = append(args, cfg.Last)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var games []model.GameAggregate
	for rows.Next() {
		var agg model.GameAggregate
		var endedAt string
		var score sql.NullInt64
		if err := rows.Scan(&agg.ID, &agg.RunID, &agg.Mode, &agg.Difficulty, &endedAt, &agg.Words, &agg.Chars,
			&agg.TimeElapsed, &agg.AvgWPM, &agg.AvgAccuracy, &agg.HighestCombo, &score); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, endedAt)
		if err != nil {
			return nil, err
		}
		agg.EndedAt = parsed
		if score.Valid {
			v := int(score.Int64)
			agg.FinalScore = &v
		}
		games = append(games, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i, j := 0, len(games)-1; i < j; i, j = i+1, j-1 {
		games[i], games[j] = games[j], games[i]
	}
	return games, nil
}

// Stats aggregates every stored game, optionally restricted to one mode.
func (s *Store) Stats(ctx context.Context, mode string) (model.GameStats, error) {
	where, args := filterClause(mode, nil)
	query := fmt.Sprintf(`SELECT
			COUNT(*),
			COALESCE(SUM(words), 0),
			COALESCE(SUM(chars), 0),
			COALESCE(SUM(time_elapsed), 0),
			COALESCE(MAX(avg_wpm), 0),
			COALESCE(MAX(avg_accuracy), 0),
			COALESCE(MAX(highest_combo), 0),
			COALESCE(AVG(avg_wpm), 0),
			COALESCE(AVG(avg_accuracy), 0),
			COALESCE(SUM(CASE WHEN mode = 'rush' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN mode = 'marathon' THEN 1 ELSE 0 END), 0),
			COALESCE(MAX(CASE WHEN mode = 'marathon' THEN final_score END), 0)
		FROM games
		WHERE %s`, where)

	var st model.GameStats
	err := s.db.QueryRowContext(ctx, query, args...).Scan(
		&st.TotalGames,
		&st.TotalWords,
		&st.TotalChars,
		&st.TotalTimePlayed,
		&st.BestWPM,
		&st.BestAccuracy,
		&st.HighestCombo,
		&st.AverageWPM,
		&st.AverageAccuracy,
		&st.RushGames,
		&st.MarathonGames,
		&st.MarathonBestScore,
	)
	if err != nil {
		return model.GameStats{}, fmt.Errorf("failed to aggregate games: %w", err)
	}
	return st, nil
}

// Reset deletes every stored game and returns how many were removed.
func (s *Store) Reset(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM games`)
	if err != nil {
		return 0, fmt.Errorf("failed to reset games: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return n, nil
}

func filterClause(mode string, since *time.Time) (string, []any) {
	clauses := []string{"1=1"}
	args := []any{}
	if mode != "" {
		clauses = append(clauses, "mode = ?")
		args = append(args, mode)
	}
	if since != nil {
		clauses = append(clauses, "ended_at >= ?")
		args = append(args, since.UTC().Format(timeLayout))
	}
	return strings.Join(clauses, " AND "), args
}
