package game

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/litterix/internal/clock"
	"github.com/verte-zerg/litterix/internal/combo"
	"github.com/verte-zerg/litterix/internal/phrases"
)

type staticProvider struct {
	list  []string
	err   error
	calls int
}

func (p *staticProvider) Phrases(phrases.Difficulty) ([]string, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	out := make([]string, len(p.list))
	copy(out, p.list)
	return out, nil
}

// countingScheduler records how often timers are started and stopped.
type countingScheduler struct {
	inner  *clock.Manual
	starts int
	stops  int
}

func (s *countingScheduler) Every(d time.Duration, fn func()) clock.Timer {
	s.starts++
	return &countingTimer{inner: s.inner.Every(d, fn), s: s}
}

type countingTimer struct {
	inner clock.Timer
	s     *countingScheduler
}

func (t *countingTimer) Stop() {
	t.s.stops++
	t.inner.Stop()
}

type eventLog struct {
	states   []State
	combos   []combo.Event
	phrases  []PhraseResult
	finished []Result
}

func (l *eventLog) StateChanged(s State)             { l.states = append(l.states, s) }
func (l *eventLog) Combo(ev combo.Event)             { l.combos = append(l.combos, ev) }
func (l *eventLog) PhraseCompleted(res PhraseResult) { l.phrases = append(l.phrases, res) }
func (l *eventLog) RunFinished(res Result)           { l.finished = append(l.finished, res) }

type fixture struct {
	run      *Run
	clock    *clock.Manual
	sched    *countingScheduler
	provider *staticProvider
	events   *eventLog
}

func newFixture(t *testing.T, mode Mode, list ...string) *fixture {
	t.Helper()
	mc := clock.NewManual(time.Unix(0, 0))
	f := &fixture{
		clock:    mc,
		sched:    &countingScheduler{inner: mc},
		provider: &staticProvider{list: list},
		events:   &eventLog{},
	}
	f.run = New(Options{
		Mode:       mode,
		Difficulty: phrases.Base,
		Provider:   f.provider,
		Clock:      mc,
		Scheduler:  f.sched,
		Listener:   f.events,
	})
	return f
}

func (f *fixture) typeText(text string) {
	for _, r := range text {
		f.run.Key(r)
	}
}

func TestRushBonusTiers(t *testing.T) {
	tests := []struct {
		accuracy float64
		want     time.Duration
	}{
		{100, 5 * time.Second},
		{99.9, 3 * time.Second},
		{80, 3 * time.Second},
		{75, 2 * time.Second},
		{60, 2 * time.Second},
		{50, 1 * time.Second},
		{30, 1 * time.Second},
		{25, 0},
		{10, 0},
		{0, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RushBonus(tt.accuracy), "accuracy %v", tt.accuracy)
	}
}

func TestMarathonScore(t *testing.T) {
	assert.Equal(t, 51, MarathonScore(47, 23))
	assert.Equal(t, 0, MarathonScore(0, 4))
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("Marathon")
	require.NoError(t, err)
	assert.Equal(t, Marathon.Name, m.Name)
	_, err = ParseMode("zen")
	assert.Error(t, err)
}

func TestRushCountdownFinishes(t *testing.T) {
	f := newFixture(t, Rush, "abc def")
	require.Equal(t, StatePending, f.run.State())
	require.Equal(t, 20*time.Second, f.run.Snapshot().Remaining)

	f.run.Key('a')
	require.Equal(t, StateRunning, f.run.State())
	require.Equal(t, 1, f.sched.starts)

	for i := 0; i < 250; i++ {
		f.clock.Tick()
	}

	assert.Equal(t, StateFinished, f.run.State())
	assert.Equal(t, time.Duration(0), f.run.Snapshot().Remaining)
	assert.Equal(t, 20*time.Second, f.run.Aggregate().Elapsed)
	assert.Equal(t, 1, f.sched.stops)
	assert.Equal(t, 0, f.clock.Active())

	f.clock.Advance(10 * time.Second)
	assert.Equal(t, time.Duration(0), f.run.Snapshot().Remaining)
	assert.Equal(t, 20*time.Second, f.run.Aggregate().Elapsed)

	require.Len(t, f.events.finished, 1)
	res := f.events.finished[0]
	assert.Equal(t, "rush", res.Mode)
	assert.Equal(t, 1, res.Chars)
	assert.Nil(t, res.FinalScore)
	assert.Equal(t, []State{StateRunning, StateFinished}, f.events.states)
}

func TestRushBonusExtendsCountdown(t *testing.T) {
	f := newFixture(t, Rush, "ab", "cd")
	f.typeText("ab")

	agg := f.run.Aggregate()
	assert.Equal(t, 25*time.Second, agg.Remaining)
	assert.Equal(t, 1, agg.PhrasesCompleted)
	require.Len(t, f.events.phrases, 1)
	assert.Equal(t, 5*time.Second, f.events.phrases[0].Bonus)

	f.typeText("cx")
	agg = f.run.Aggregate()
	assert.Equal(t, 26*time.Second, agg.Remaining)
	assert.Equal(t, 150.0, agg.AccuracySum)
	assert.Equal(t, 75.0, agg.AvgAccuracy())
}

func TestKeysIgnoredAfterFinish(t *testing.T) {
	f := newFixture(t, Rush, "abcdef")
	f.run.Key('a')
	f.clock.Advance(30 * time.Second)
	require.Equal(t, StateFinished, f.run.State())

	before := f.run.Snapshot()
	f.run.Key('b')
	f.run.Backspace()
	after := f.run.Snapshot()
	assert.Equal(t, before.Cursor, after.Cursor)
	assert.Equal(t, before.Aggregate.Chars, after.Aggregate.Chars)
}

func TestMarathonRun(t *testing.T) {
	f := newFixture(t, Marathon, "one two three four five six")
	f.typeText("one two three four five six")

	agg := f.run.Aggregate()
	assert.Equal(t, 6, agg.Words)
	assert.Equal(t, 6, agg.Combo.Highest)
	assert.Equal(t, 120*time.Second, agg.Remaining)
	assert.Contains(t, f.events.combos, combo.Event{Kind: combo.KindStreak, Milestone: 5})
	assert.Contains(t, f.events.combos, combo.Event{Kind: combo.KindPerfectPhrase})

	f.clock.Advance(121 * time.Second)
	require.Equal(t, StateFinished, f.run.State())
	res, ok := f.run.Result()
	require.True(t, ok)
	require.NotNil(t, res.FinalScore)
	assert.Equal(t, 7, *res.FinalScore)
	assert.Equal(t, 1, res.PhrasesCompleted)
	assert.Equal(t, 6, res.Record().HighestCombo)
	assert.Equal(t, "base", res.Record().Difficulty)
}

func TestWordDeletedDecrementsWords(t *testing.T) {
	f := newFixture(t, Marathon, "ab cd")
	f.typeText("ab ")
	require.Equal(t, 1, f.run.Aggregate().Words)

	f.run.Backspace()
	assert.Equal(t, 0, f.run.Aggregate().Words)
	f.run.Backspace()
	f.run.Backspace()
	assert.Equal(t, 0, f.run.Aggregate().Words)
	assert.Equal(t, 3, f.run.Aggregate().Chars)
}

func TestPhrasesWrapAndRefresh(t *testing.T) {
	f := newFixture(t, Marathon, "a", "b")
	require.Equal(t, 1, f.provider.calls)

	f.typeText("a")
	f.typeText("b")
	assert.Equal(t, 2, f.provider.calls)
	assert.Equal(t, []rune("a"), f.run.Snapshot().Text)
	assert.Equal(t, 3, f.run.Snapshot().PhraseNumber)
}

func TestEmptyProviderWaits(t *testing.T) {
	f := newFixture(t, Rush)
	assert.True(t, f.run.Waiting())

	f.run.Key('a')
	assert.Equal(t, StatePending, f.run.State())
	assert.Equal(t, 0, f.sched.starts)

	f.provider.list = []string{"go"}
	f.run.Reload()
	require.False(t, f.run.Waiting())
	f.run.Key('g')
	assert.Equal(t, StateRunning, f.run.State())
}

func TestProviderErrorWaits(t *testing.T) {
	f := newFixture(t, Rush)
	f.provider.err = errors.New("boom")
	f.run.Restart()
	assert.True(t, f.run.Waiting())
	assert.EqualError(t, f.run.LoadError(), "boom")
}

func TestRestartCancelsTimerAndResets(t *testing.T) {
	f := newFixture(t, Rush, "abc")
	firstID := f.run.ID()
	f.typeText("abc")
	f.clock.Advance(time.Second)
	require.Equal(t, StateRunning, f.run.State())

	f.run.Restart()
	assert.Equal(t, StatePending, f.run.State())
	assert.Equal(t, 1, f.sched.stops)
	assert.Equal(t, 0, f.clock.Active())
	assert.NotEqual(t, firstID, f.run.ID())

	agg := f.run.Aggregate()
	assert.Equal(t, Aggregate{Remaining: 20 * time.Second}, agg)

	// A new run starts exactly one new timer.
	f.run.Key('a')
	f.run.Restart()
	f.run.Key('a')
	assert.Equal(t, 3, f.sched.starts)
	assert.Equal(t, 2, f.sched.stops)
	assert.Equal(t, 1, f.clock.Active())
}

func TestAbandonStopsTimer(t *testing.T) {
	f := newFixture(t, Marathon, "abc")
	f.run.Key('a')
	f.run.Abandon()
	f.run.Abandon()
	assert.Equal(t, 1, f.sched.stops)

	f.clock.Advance(5 * time.Second)
	assert.Equal(t, 120*time.Second, f.run.Aggregate().Remaining)
}

func TestAbandonIgnoresInputUntilRestart(t *testing.T) {
	f := newFixture(t, Marathon, "abc")
	f.run.Key('a')
	f.run.Abandon()

	before := f.run.Snapshot()
	f.run.Key('b')
	f.run.Backspace()
	after := f.run.Snapshot()
	assert.Equal(t, before.Cursor, after.Cursor)
	assert.Equal(t, before.Aggregate.Chars, after.Aggregate.Chars)

	f.run.Restart()
	f.run.Key('a')
	assert.Equal(t, 1, f.run.Snapshot().Cursor)
	assert.Equal(t, StateRunning, f.run.State())
}

func TestNewRequiresScheduler(t *testing.T) {
	provider := &staticProvider{list: []string{"abc"}}
	assert.Panics(t, func() {
		New(Options{Mode: Rush, Difficulty: phrases.Base, Provider: provider, Clock: clock.System{}})
	})

	mc := clock.NewManual(time.Unix(0, 0))
	run := New(Options{Mode: Rush, Difficulty: phrases.Base, Provider: provider, Clock: mc})
	run.Key('a')
	assert.Equal(t, 1, mc.Active())
	mc.Advance(time.Second)
	assert.Equal(t, 19*time.Second, run.Aggregate().Remaining)
}

func TestSnapshotBeforeStart(t *testing.T) {
	f := newFixture(t, Rush, "hi there")
	snap := f.run.Snapshot()
	assert.Equal(t, "rush", snap.Mode)
	assert.Equal(t, []rune("hi there"), snap.Text)
	assert.Len(t, snap.Statuses, 8)
	assert.Equal(t, 100.0, snap.LastAccuracy)
	assert.Equal(t, 1, snap.PhraseNumber)
	assert.False(t, snap.Waiting)
}

func TestAggregateAveragesWithoutPhrases(t *testing.T) {
	var agg Aggregate
	assert.Equal(t, 0.0, agg.AvgWPM())
	assert.Equal(t, 0.0, agg.AvgAccuracy())
}
