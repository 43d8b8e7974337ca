// Package game runs timed typing games on top of the typing engine.
package game

import (
	"fmt"
	"strings"
	"time"
)

// TickInterval is the countdown cadence.
const TickInterval = 100 * time.Millisecond

// Mode is the scoring policy of a timed game.
type Mode struct {
	Name    string
	Initial time.Duration
	// Bonus returns the time added after a phrase finished with accuracy.
	Bonus func(accuracy float64) time.Duration
	// Scored modes compute a final score when the run ends.
	Scored bool
}

// Rush starts short and rewards accurate phrases with extra time.
var Rush = Mode{
	Name:    "rush",
	Initial: 20 * time.Second,
	Bonus:   RushBonus,
}

// Marathon is a fixed two-minute run scored by words and best combo.
var Marathon = Mode{
	Name:    "marathon",
	Initial: 120 * time.Second,
	Bonus:   func(float64) time.Duration { return 0 },
	Scored:  true,
}

// Modes lists the timed modes.
func Modes() []Mode {
	return []Mode{Rush, Marathon}
}

// ParseMode looks up a timed mode by name.
func ParseMode(name string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case Rush.Name:
		return Rush, nil
	case Marathon.Name:
		return Marathon, nil
	default:
		return Mode{}, fmt.Errorf("unknown mode %q (available: rush, marathon)", name)
	}
}

// RushBonus tiers the time bonus by phrase accuracy.
func RushBonus(accuracy float64) time.Duration {
	switch {
	case accuracy == 100:
		return 5 * time.Second
	case accuracy > 75:
		return 3 * time.Second
	case accuracy > 50:
		return 2 * time.Second
	case accuracy > 25:
		return 1 * time.Second
	default:
		return 0
	}
}

// MarathonScore is the words typed plus one point per five-word combo.
func MarathonScore(words, highestCombo int) int {
	return words + highestCombo/5
}
