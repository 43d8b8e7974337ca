// Package model defines shared data structures.
package model

import "time"

// Config defines game settings.
type Config struct {
	Mode       string
	Difficulty string
	PhrasesDir string
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	Mode        string
	Since       *time.Time
	Last        int
	CurveWindow int
}

// GameRecord captures a finished timed game.
type GameRecord struct {
	RunID        string
	Mode         string
	Difficulty   string
	StartedAt    time.Time
	EndedAt      time.Time
	Words        int
	Chars        int
	TimeElapsed  float64 // seconds
	AvgWPM       float64
	AvgAccuracy  float64
	HighestCombo int
	FinalScore   *int
}

// GameAggregate summarizes a stored game for reporting.
type GameAggregate struct {
	ID           int64
	RunID        string
	Mode         string
	Difficulty   string
	EndedAt      time.Time
	Words        int
	Chars        int
	TimeElapsed  float64
	AvgWPM       float64
	AvgAccuracy  float64
	HighestCombo int
	FinalScore   *int
}

// GameStats aggregates all recorded games.
type GameStats struct {
	TotalGames      int
	TotalWords      int
	TotalChars      int
	TotalTimePlayed float64 // seconds

	BestWPM      float64
	BestAccuracy float64
	HighestCombo int

	AverageWPM      float64
	AverageAccuracy float64

	// Per mode.
	RushGames         int
	MarathonGames     int
	MarathonBestScore int
}

// HasPlayed reports whether any game has been recorded.
func (s GameStats) HasPlayed() bool {
	return s.TotalGames > 0
}
