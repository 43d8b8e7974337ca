// Package combo tracks streaks of consecutively correct words.
package combo

// Milestones are the streak lengths that trigger a one-time notification.
var Milestones = []int{5, 10, 15, 20, 40, 80, 160, 320, 640, 1000}

// BreakThreshold is the smallest streak whose loss is announced.
const BreakThreshold = 5

// State is the streak state of one run. It survives across phrases.
type State struct {
	// Consecutive counts words completed since the last error.
	Consecutive int
	// LastMilestone is the largest milestone already announced for the
	// current streak, or 0.
	LastMilestone int
	// Highest is the longest streak seen in the run.
	Highest int
	// PhraseHasErrors is set by the first error in the current phrase.
	PhraseHasErrors bool
}

// Tracker turns character and word outcomes into combo events.
type Tracker struct {
	state State
}

// NewTracker returns a tracker with zero state.
func NewTracker() *Tracker {
	return &Tracker{}
}

// State returns a copy of the current state.
func (t *Tracker) State() State {
	return t.state
}

// Reset clears all streak state.
func (t *Tracker) Reset() {
	t.state = State{}
}

// CharTyped records a graded character. Errors break the streak.
func (t *Tracker) CharTyped(correct bool) []Event {
	if correct {
		return nil
	}
	return t.breakStreak()
}

// WordCompleted extends the streak by one word.
func (t *Tracker) WordCompleted() []Event {
	t.state.Consecutive++
	current := t.state.Consecutive
	if current > t.state.Highest {
		t.state.Highest = current
	}
	if isMilestone(current) && t.state.LastMilestone < current {
		t.state.LastMilestone = current
		return []Event{{Kind: KindStreak, Milestone: current}}
	}
	return nil
}

// WordUncompleted handles deletion of a correctly typed word boundary. It
// breaks the streak like an error does.
func (t *Tracker) WordUncompleted() []Event {
	return t.breakStreak()
}

// PhraseCompleted announces an error-free phrase and starts the next phrase
// with a clean error flag. The streak itself carries over.
func (t *Tracker) PhraseCompleted() []Event {
	var events []Event
	if !t.state.PhraseHasErrors {
		events = append(events, Event{Kind: KindPerfectPhrase})
	}
	t.state.PhraseHasErrors = false
	return events
}

func (t *Tracker) breakStreak() []Event {
	var events []Event
	if t.state.Consecutive >= BreakThreshold {
		events = append(events, Event{Kind: KindBroken})
	}
	t.state.Consecutive = 0
	t.state.LastMilestone = 0
	t.state.PhraseHasErrors = true
	return events
}

func isMilestone(n int) bool {
	for _, m := range Milestones {
		if m == n {
			return true
		}
	}
	return false
}

// Badge returns the display tier for a combo count.
func Badge(n int) (emoji, label string) {
	switch {
	case n < 5:
		return "", "No Combo"
	case n < 10:
		return "🔥", "Combo"
	case n < 15:
		return "⚡", "Combo"
	case n < 20:
		return "💫", "Combo"
	case n < 40:
		return "🌟", "Great Combo"
	case n < 80:
		return "💥", "Mega Combo"
	case n < 160:
		return "🚀", "Mega Combo"
	case n < 320:
		return "⭐", "Ultra Combo"
	case n < 640:
		return "👑", "Legendary"
	case n < 1000:
		return "🔱", "Godlike"
	default:
		return "🏆", "Unstoppable"
	}
}
