package game

import (
	"time"

	"github.com/verte-zerg/litterix/internal/engine"
)

// Snapshot is a render-ready view of a run.
type Snapshot struct {
	Mode         string
	State        State
	Waiting      bool
	Text         []rune
	Statuses     []engine.CharStatus
	Cursor       int
	Progress     int
	Remaining    time.Duration
	Aggregate    Aggregate
	LastWPM      float64
	LastAccuracy float64
	// PhraseNumber is 1-based.
	PhraseNumber int
}

// Snapshot captures the current run state.
func (r *Run) Snapshot() Snapshot {
	agg := r.Aggregate()
	snap := Snapshot{
		Mode:         r.mode.Name,
		State:        r.state,
		Waiting:      r.Waiting(),
		Remaining:    agg.Remaining,
		Aggregate:    agg,
		LastWPM:      r.lastWPM,
		LastAccuracy: r.lastAccuracy,
		PhraseNumber: agg.PhrasesCompleted + 1,
	}
	if r.current != nil {
		s := r.current.Session()
		snap.Text = s.Runes()
		snap.Statuses = s.Statuses()
		snap.Cursor = s.Cursor()
		snap.Progress = engine.Progress(s)
	}
	return snap
}
