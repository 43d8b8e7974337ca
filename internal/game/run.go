package game

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/litterix/internal/clock"
	"github.com/verte-zerg/litterix/internal/combo"
	"github.com/verte-zerg/litterix/internal/engine"
	"github.com/verte-zerg/litterix/internal/model"
	"github.com/verte-zerg/litterix/internal/phrases"
)

// State is the lifecycle of a run.
type State int

const (
	StatePending State = iota
	StateRunning
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateFinished:
		return "finished"
	default:
		return "pending"
	}
}

// PhraseProvider supplies an ordered phrase sequence for a difficulty.
type PhraseProvider interface {
	Phrases(d phrases.Difficulty) ([]string, error)
}

// Recorder persists finished runs. The run itself never calls it.
type Recorder interface {
	RecordGame(ctx context.Context, rec model.GameRecord) error
}

// Listener receives run-level events. All methods are always called.
type Listener interface {
	StateChanged(s State)
	Combo(ev combo.Event)
	PhraseCompleted(res PhraseResult)
	RunFinished(res Result)
}

// NopListener implements Listener with no-ops.
type NopListener struct{}

func (NopListener) StateChanged(State) {}
func (NopListener) Combo(combo.Event) {}
func (NopListener) PhraseCompleted(PhraseResult) {}
func (NopListener) RunFinished(Result) {}

// PhraseResult describes one finished phrase.
type PhraseResult struct {
	Number   int
	WPM      float64
	Accuracy float64
	Bonus    time.Duration
}

// Aggregate accumulates over a run.
type Aggregate struct {
	Words            int
	Chars            int
	PhrasesCompleted int
	WPMSum           float64
	AccuracySum      float64
	Remaining        time.Duration
	Elapsed          time.Duration
	Combo            combo.State
}

// AvgWPM is the mean phrase WPM, or 0 before the first phrase.
func (a Aggregate) AvgWPM() float64 {
	if a.PhrasesCompleted == 0 {
		return 0
	}
	return a.WPMSum / float64(a.PhrasesCompleted)
}

// AvgAccuracy is the mean phrase accuracy, or 0 before the first phrase.
func (a Aggregate) AvgAccuracy() float64 {
	if a.PhrasesCompleted == 0 {
		return 0
	}
	return a.AccuracySum / float64(a.PhrasesCompleted)
}

// Result is produced once when a run finishes.
type Result struct {
	RunID            string
	Mode             string
	Difficulty       phrases.Difficulty
	StartedAt        time.Time
	EndedAt          time.Time
	Words            int
	Chars            int
	PhrasesCompleted int
	Elapsed          time.Duration
	AvgWPM           float64
	AvgAccuracy      float64
	HighestCombo     int
	FinalScore       *int
}

// Record converts the result into its persisted form.
func (r Result) Record() model.GameRecord {
	return model.GameRecord{
		RunID:        r.RunID,
		Mode:         r.Mode,
		Difficulty:   string(r.Difficulty),
		StartedAt:    r.StartedAt,
		EndedAt:      r.EndedAt,
		Words:        r.Words,
		Chars:        r.Chars,
		TimeElapsed:  r.Elapsed.Seconds(),
		AvgWPM:       r.AvgWPM,
		AvgAccuracy:  r.AvgAccuracy,
		HighestCombo: r.HighestCombo,
		FinalScore:   r.FinalScore,
	}
}

// Options configures a Run.
type Options struct {
	Mode       Mode
	Difficulty phrases.Difficulty
	Provider   PhraseProvider
	Clock      clock.Clock
	Scheduler  clock.Scheduler
	Listener   Listener
}

// Run is one timed game. All methods must be called from a single goroutine,
// including the scheduler's tick callbacks.
type Run struct {
	mode       Mode
	difficulty phrases.Difficulty
	provider   PhraseProvider
	clock      clock.Clock
	scheduler  clock.Scheduler
	listener   Listener

	id        string
	state     State
	startedAt time.Time
	timer     clock.Timer
	result    *Result
	abandoned bool

	tracker *combo.Tracker
	agg     Aggregate

	phrases []string
	index   int
	current *engine.Orchestrator
	loadErr error

	lastWPM      float64
	lastAccuracy float64
}

// New creates a run in the pending state and loads its first phrase. Ticks
// must arrive on the caller's goroutine, so a Scheduler is required unless
// the Clock schedules too (clock.Manual).
func New(opts Options) *Run {
	if opts.Clock == nil {
		opts.Clock = clock.System{}
	}
	if opts.Scheduler == nil {
		sched, ok := opts.Clock.(clock.Scheduler)
		if !ok {
			panic("game: Options.Scheduler is required")
		}
		opts.Scheduler = sched
	}
	if opts.Listener == nil {
		opts.Listener = NopListener{}
	}
	if opts.Mode.Bonus == nil {
		opts.Mode.Bonus = func(float64) time.Duration { return 0 }
	}
	r := &Run{
		mode:       opts.Mode,
		difficulty: opts.Difficulty,
		provider:   opts.Provider,
		clock:      opts.Clock,
		scheduler:  opts.Scheduler,
		listener:   opts.Listener,
		tracker:    combo.NewTracker(),
	}
	r.reset()
	return r
}

// Key feeds a typed character into the current phrase.
func (r *Run) Key(ch rune) {
	if r.state == StateFinished || r.abandoned || r.current == nil {
		return
	}
	r.current.Key(ch)
}

// Backspace erases one character of the current phrase.
func (r *Run) Backspace() {
	if r.state == StateFinished || r.abandoned || r.current == nil {
		return
	}
	r.current.Backspace()
}

// Restart abandons the current run and starts a pending one.
func (r *Run) Restart() {
	r.stopTimer()
	r.reset()
	r.listener.StateChanged(r.state)
}

// Abandon stops the countdown without producing a result. Further input is
// ignored until Restart.
func (r *Run) Abandon() {
	r.stopTimer()
	r.abandoned = true
}

// Reload asks the provider for phrases again while waiting for them.
func (r *Run) Reload() {
	if !r.Waiting() {
		return
	}
	r.index = 0
	r.loadPhrases()
	r.startPhrase()
}

// Waiting reports whether the run has no phrase to type.
func (r *Run) Waiting() bool {
	return r.current == nil
}

// LoadError returns the last provider error, if any.
func (r *Run) LoadError() error { return r.loadErr }

// State returns the run state.
func (r *Run) State() State { return r.state }

// Mode returns the run's scoring mode.
func (r *Run) Mode() Mode { return r.mode }

// ID returns the run identifier.
func (r *Run) ID() string { return r.id }

// Aggregate returns the accumulated run totals.
func (r *Run) Aggregate() Aggregate {
	agg := r.agg
	agg.Combo = r.tracker.State()
	return agg
}

// Result returns the run result once the run has finished.
func (r *Run) Result() (Result, bool) {
	if r.result == nil {
		return Result{}, false
	}
	return *r.result, true
}

func (r *Run) reset() {
	r.id = uuid.NewString()
	r.state = StatePending
	r.startedAt = time.Time{}
	r.result = nil
	r.abandoned = false
	r.tracker.Reset()
	r.agg = Aggregate{Remaining: r.mode.Initial}
	r.lastWPM = 0
	r.lastAccuracy = 100
	r.index = 0
	r.phrases = nil
	r.loadPhrases()
	r.startPhrase()
}

// loadPhrases replaces the sequence with a fresh one. A failed refresh keeps
// the previous sequence when there is one.
func (r *Run) loadPhrases() {
	if r.provider == nil {
		r.phrases = nil
		return
	}
	list, err := r.provider.Phrases(r.difficulty)
	r.loadErr = err
	if err != nil || len(list) == 0 {
		return
	}
	r.phrases = list
}

func (r *Run) startPhrase() {
	if len(r.phrases) == 0 {
		r.current = nil
		return
	}
	r.current = engine.NewOrchestrator(r.phrases[r.index], r.clock, r.tracker, runObserver{r})
}

func (r *Run) advance() {
	r.index++
	if r.index >= len(r.phrases) {
		r.index = 0
		r.loadPhrases()
	}
	r.startPhrase()
}

func (r *Run) start() {
	r.state = StateRunning
	r.startedAt = r.clock.Now()
	r.timer = r.scheduler.Every(TickInterval, r.tick)
	r.listener.StateChanged(r.state)
}

func (r *Run) tick() {
	if r.state != StateRunning {
		return
	}
	r.agg.Remaining -= TickInterval
	r.agg.Elapsed += TickInterval
	if r.agg.Remaining <= 0 {
		r.agg.Remaining = 0
		r.finish()
	}
}

func (r *Run) finish() {
	r.stopTimer()
	r.state = StateFinished
	agg := r.Aggregate()
	res := Result{
		RunID:            r.id,
		Mode:             r.mode.Name,
		Difficulty:       r.difficulty,
		StartedAt:        r.startedAt,
		EndedAt:          r.clock.Now(),
		Words:            agg.Words,
		Chars:            agg.Chars,
		PhrasesCompleted: agg.PhrasesCompleted,
		Elapsed:          agg.Elapsed,
		AvgWPM:           agg.AvgWPM(),
		AvgAccuracy:      agg.AvgAccuracy(),
		HighestCombo:     agg.Combo.Highest,
	}
	if r.mode.Scored {
		score := MarathonScore(agg.Words, agg.Combo.Highest)
		res.FinalScore = &score
	}
	r.result = &res
	r.listener.StateChanged(r.state)
	r.listener.RunFinished(res)
}

func (r *Run) stopTimer() {
	if r.timer == nil {
		return
	}
	r.timer.Stop()
	r.timer = nil
}

func (r *Run) phraseCompleted(wpm, accuracy float64) {
	r.lastWPM = wpm
	r.lastAccuracy = accuracy
	r.agg.WPMSum += wpm
	r.agg.AccuracySum += accuracy
	r.agg.PhrasesCompleted++
	bonus := r.mode.Bonus(accuracy)
	r.agg.Remaining += bonus
	r.listener.PhraseCompleted(PhraseResult{
		Number:   r.agg.PhrasesCompleted,
		WPM:      wpm,
		Accuracy: accuracy,
		Bonus:    bonus,
	})
	r.advance()
}

// runObserver adapts the run to engine.Observer without widening Run's API.
type runObserver struct {
	r *Run
}

func (o runObserver) CharTyped() {
	if o.r.state == StatePending {
		o.r.start()
	}
	o.r.agg.Chars++
}

func (o runObserver) CharError() {}

func (o runObserver) WordTyped() {
	o.r.agg.Words++
}

func (o runObserver) WordDeleted() {
	if o.r.agg.Words > 0 {
		o.r.agg.Words--
	}
}

func (o runObserver) PhraseComplete(wpm, accuracy float64) {
	o.r.phraseCompleted(wpm, accuracy)
}

func (o runObserver) Combo(ev combo.Event) {
	o.r.listener.Combo(ev)
}
