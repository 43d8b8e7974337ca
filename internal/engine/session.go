// Package engine grades typed input against a target phrase and derives
// speed and accuracy metrics.
package engine

import (
	"time"

	"github.com/verte-zerg/litterix/internal/clock"
)

// CharStatus is the grading state of one target character.
type CharStatus int

const (
	StatusPending CharStatus = iota
	StatusCorrect
	StatusIncorrect
)

func (s CharStatus) String() string {
	switch s {
	case StatusCorrect:
		return "correct"
	case StatusIncorrect:
		return "incorrect"
	default:
		return "pending"
	}
}

// Session is one attempt at a phrase. Statuses at and after the cursor are
// always pending; the session is complete exactly when the cursor reaches the
// end of the text.
type Session struct {
	clock clock.Clock

	text     []rune
	statuses []CharStatus
	cursor   int

	started   bool
	startTime time.Time
	endTime   time.Time
	complete  bool
}

// TypeResult describes how a single typed character was handled.
type TypeResult struct {
	// Accepted is false when the keystroke was ignored.
	Accepted bool
	// Correct reports whether the character matched the target.
	Correct bool
	// Target is the expected character at the position that was graded.
	Target rune
	// Completed is true when this keystroke finished the phrase.
	Completed bool
}

// EraseResult describes a backspace.
type EraseResult struct {
	Erased bool
	// WasCorrectSpace is true when the erased character was a space that had
	// been typed correctly, i.e. a word boundary is being undone.
	WasCorrectSpace bool
}

// NewSession creates a session for text. A nil clock uses the system clock.
func NewSession(text string, c clock.Clock) *Session {
	if c == nil {
		c = clock.System{}
	}
	runes := []rune(text)
	return &Session{
		clock:    c,
		text:     runes,
		statuses: make([]CharStatus, len(runes)),
	}
}

// Type grades r against the character under the cursor.
func (s *Session) Type(r rune) TypeResult {
	if s.complete || s.cursor >= len(s.text) {
		return TypeResult{}
	}
	// Stray leading whitespace before the user really starts.
	if s.cursor == 0 && r == ' ' {
		return TypeResult{}
	}
	if !s.started {
		s.started = true
		s.startTime = s.clock.Now()
	}

	target := s.text[s.cursor]
	correct := r == target
	if correct {
		s.statuses[s.cursor] = StatusCorrect
	} else {
		s.statuses[s.cursor] = StatusIncorrect
	}
	s.cursor++

	if s.cursor == len(s.text) {
		s.complete = true
		s.endTime = s.clock.Now()
	}
	return TypeResult{Accepted: true, Correct: correct, Target: target, Completed: s.complete}
}

// ApplyChar grades r and reports whether it was correct. Ignored keystrokes
// report false.
func (s *Session) ApplyChar(r rune) bool {
	return s.Type(r).Correct
}

// Erase moves the cursor back one character and resets its status.
func (s *Session) Erase() EraseResult {
	if s.cursor == 0 {
		return EraseResult{}
	}
	if s.complete {
		s.complete = false
		s.endTime = time.Time{}
	}
	idx := s.cursor - 1
	res := EraseResult{
		Erased:          true,
		WasCorrectSpace: s.text[idx] == ' ' && s.statuses[idx] == StatusCorrect,
	}
	s.cursor = idx
	s.statuses[idx] = StatusPending
	return res
}

// ApplyBackspace erases one character and reports whether anything changed.
func (s *Session) ApplyBackspace() bool {
	return s.Erase().Erased
}

// Text returns the target phrase.
func (s *Session) Text() string { return string(s.text) }

// Runes returns a copy of the target phrase as runes.
func (s *Session) Runes() []rune {
	out := make([]rune, len(s.text))
	copy(out, s.text)
	return out
}

// Len returns the number of characters in the target phrase.
func (s *Session) Len() int { return len(s.text) }

// Cursor returns the index of the next character to type.
func (s *Session) Cursor() int { return s.cursor }

// Statuses returns a copy of the per-character statuses.
func (s *Session) Statuses() []CharStatus {
	out := make([]CharStatus, len(s.statuses))
	copy(out, s.statuses)
	return out
}

// Started reports whether a keystroke has been accepted.
func (s *Session) Started() bool { return s.started }

// Complete reports whether every character has been typed.
func (s *Session) Complete() bool { return s.complete }

// StartTime returns the time of the first accepted keystroke.
func (s *Session) StartTime() (time.Time, bool) { return s.startTime, s.started }

// EndTime returns the completion time.
func (s *Session) EndTime() (time.Time, bool) { return s.endTime, s.complete }

// EndsWithSpace reports whether the phrase's last character is a space.
func (s *Session) EndsWithSpace() bool {
	return len(s.text) > 0 && s.text[len(s.text)-1] == ' '
}
