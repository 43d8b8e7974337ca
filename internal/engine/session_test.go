package engine

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/litterix/internal/clock"
)

func newTestSession(text string) (*Session, *clock.Manual) {
	mc := clock.NewManual(time.Unix(1000, 0))
	return NewSession(text, mc), mc
}

func typeAll(s *Session, text string) {
	for _, r := range text {
		s.ApplyChar(r)
	}
}

func TestExactTypingCompletes(t *testing.T) {
	for _, text := range []string{"a", "hello world", "città è bella", "trailing "} {
		s, _ := newTestSession(text)
		typeAll(s, text)

		assert.True(t, s.Complete(), text)
		assert.Equal(t, s.Len(), s.Cursor(), text)
		assert.Equal(t, 100.0, Accuracy(s), text)
		_, ok := s.EndTime()
		assert.True(t, ok, text)
	}
}

func TestNewSessionAllPending(t *testing.T) {
	s, _ := newTestSession("abc")
	for _, st := range s.Statuses() {
		assert.Equal(t, StatusPending, st)
	}
	assert.False(t, s.Started())
	_, ok := s.StartTime()
	assert.False(t, ok)
}

func TestApplyCharMarksStatuses(t *testing.T) {
	s, _ := newTestSession("abc")
	assert.True(t, s.ApplyChar('a'))
	assert.False(t, s.ApplyChar('x'))

	assert.Equal(t, []CharStatus{StatusCorrect, StatusIncorrect, StatusPending}, s.Statuses())
	assert.Equal(t, 2, s.Cursor())
	assert.True(t, s.Started())
	assert.False(t, s.Complete())
}

func TestLeadingSpaceIgnored(t *testing.T) {
	s, _ := newTestSession("go fast")
	res := s.Type(' ')
	assert.False(t, res.Accepted)
	assert.Equal(t, 0, s.Cursor())
	assert.False(t, s.Started())

	s.ApplyChar('g')
	res = s.Type(' ')
	assert.True(t, res.Accepted)
	assert.False(t, res.Correct)
}

func TestApplyCharAfterCompletionIsNoop(t *testing.T) {
	s, _ := newTestSession("ab")
	typeAll(s, "ab")
	before := s.Statuses()

	assert.False(t, s.ApplyChar('c'))
	assert.False(t, s.Type('c').Accepted)
	assert.Equal(t, before, s.Statuses())
	assert.Equal(t, 2, s.Cursor())
}

func TestBackspaceAtStartIsNoop(t *testing.T) {
	s, _ := newTestSession("ab")
	assert.False(t, s.ApplyBackspace())
	assert.Equal(t, 0, s.Cursor())
}

func TestCorrectionRoundTrip(t *testing.T) {
	s, _ := newTestSession("hello")
	typeAll(s, "he")
	beforeStatuses := s.Statuses()
	beforeCursor := s.Cursor()

	s.ApplyChar('x')
	require.True(t, s.ApplyBackspace())

	assert.Equal(t, beforeStatuses, s.Statuses())
	assert.Equal(t, beforeCursor, s.Cursor())
}

func TestBackspaceAfterCompletionReopens(t *testing.T) {
	s, mc := newTestSession("ab")
	typeAll(s, "ab")
	require.True(t, s.Complete())

	require.True(t, s.ApplyBackspace())
	assert.False(t, s.Complete())
	assert.Equal(t, 1, s.Cursor())
	end, ok := s.EndTime()
	assert.False(t, ok)
	assert.True(t, end.IsZero())
	_, ok = WPM(s)
	assert.False(t, ok)

	mc.Advance(time.Second)
	res := s.Type('b')
	assert.True(t, res.Accepted)
	assert.True(t, res.Completed)
	assert.True(t, s.Complete())
	end, ok = s.EndTime()
	require.True(t, ok)
	assert.Equal(t, time.Unix(1001, 0), end)
}

func TestEraseReportsCorrectSpace(t *testing.T) {
	s, _ := newTestSession("a b")
	typeAll(s, "a ")
	res := s.Erase()
	assert.True(t, res.Erased)
	assert.True(t, res.WasCorrectSpace)

	s.ApplyChar('x')
	res = s.Erase()
	assert.True(t, res.Erased)
	assert.False(t, res.WasCorrectSpace)
}

func TestStatusesPendingAfterCursor(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	text := "the quick brown fox"
	s, _ := newTestSession(text)
	for i := 0; i < 500; i++ {
		if rnd.Intn(4) == 0 {
			s.ApplyBackspace()
		} else {
			s.ApplyChar(rune("the quickbrownfx "[rnd.Intn(17)]))
		}
		statuses := s.Statuses()
		for j := s.Cursor(); j < len(statuses); j++ {
			require.Equal(t, StatusPending, statuses[j])
		}
		require.Equal(t, s.Cursor() == s.Len(), s.Complete())
		if s.Complete() {
			s, _ = newTestSession(text)
		}
	}
}

func TestAccuracyBounded(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	alphabet := []rune("abc xyz")
	for trial := 0; trial < 50; trial++ {
		s, _ := newTestSession("abc abc xyz")
		for i := 0; i < 40; i++ {
			if rnd.Intn(3) == 0 {
				s.ApplyBackspace()
			} else {
				s.ApplyChar(alphabet[rnd.Intn(len(alphabet))])
			}
			acc := Accuracy(s)
			require.GreaterOrEqual(t, acc, 0.0)
			require.LessOrEqual(t, acc, 100.0)
		}
	}
}

func TestAccuracyEmptyText(t *testing.T) {
	s, _ := newTestSession("")
	assert.Equal(t, 100.0, Accuracy(s))
	assert.False(t, s.ApplyChar('a'))
	assert.False(t, s.Complete())
}

func TestAccuracyCountsPending(t *testing.T) {
	s, _ := newTestSession("abcd")
	typeAll(s, "ab")
	assert.Equal(t, 50.0, Accuracy(s))
	assert.Equal(t, 50, Progress(s))
}

func TestWPM(t *testing.T) {
	s, mc := newTestSession("one two three")
	_, ok := WPM(s)
	assert.False(t, ok)

	s.ApplyChar('o')
	mc.Advance(30 * time.Second)
	typeAll(s, "ne two three")

	wpm, ok := WPM(s)
	require.True(t, ok)
	assert.InDelta(t, 6.0, wpm, 1e-9)
}

func TestWPMZeroElapsed(t *testing.T) {
	s, _ := newTestSession("hi")
	typeAll(s, "hi")
	wpm, ok := WPM(s)
	assert.True(t, ok)
	assert.Equal(t, 0.0, wpm)
}

func TestWordCount(t *testing.T) {
	assert.Equal(t, 0, WordCount("   "))
	assert.Equal(t, 3, WordCount(" a  b c "))
}
