package engine

import "strings"

// WPM returns words per minute for a finished session, based on the number of
// words in the target phrase. ok is false until the session has both a start
// and an end time.
func WPM(s *Session) (wpm float64, ok bool) {
	start, started := s.StartTime()
	end, complete := s.EndTime()
	if !started || !complete {
		return 0, false
	}
	elapsedMs := float64(end.Sub(start).Microseconds()) / 1000.0
	if elapsedMs <= 0 {
		return 0, true
	}
	minutes := elapsedMs / 60000.0
	return float64(WordCount(s.Text())) / minutes, true
}

// Accuracy returns the percentage of characters marked correct. Pending
// characters count against it, so mid-session values are "accuracy so far"
// relative to the whole phrase.
func Accuracy(s *Session) float64 {
	total := len(s.statuses)
	if total == 0 {
		return 100.0
	}
	correct := 0
	for _, st := range s.statuses {
		if st == StatusCorrect {
			correct++
		}
	}
	return float64(correct) / float64(total) * 100
}

// Progress returns how much of the phrase has been typed, in percent.
func Progress(s *Session) int {
	if len(s.text) == 0 {
		return 0
	}
	return int(float64(s.cursor) / float64(len(s.text)) * 100)
}

// WordCount counts whitespace-delimited tokens.
func WordCount(text string) int {
	return len(strings.Fields(text))
}
