package engine

import (
	"github.com/verte-zerg/litterix/internal/clock"
	"github.com/verte-zerg/litterix/internal/combo"
)

// Observer receives the outcome of every keystroke. All methods are always
// called; embed NopObserver to ignore the ones you do not need.
type Observer interface {
	CharTyped()
	CharError()
	WordTyped()
	WordDeleted()
	PhraseComplete(wpm, accuracy float64)
	Combo(ev combo.Event)
}

// NopObserver implements Observer with no-ops.
type NopObserver struct{}

func (NopObserver) CharTyped() {}
func (NopObserver) CharError() {}
func (NopObserver) WordTyped() {}
func (NopObserver) WordDeleted() {}
func (NopObserver) PhraseComplete(_, _ float64) {}
func (NopObserver) Combo(_ combo.Event) {}

// MsgKind enumerates the internal input messages.
type MsgKind int

const (
	MsgCharTyped MsgKind = iota
	MsgCharError
	MsgWordTyped
	MsgWordDeleted
	MsgPhraseComplete
)

func (k MsgKind) String() string {
	switch k {
	case MsgCharTyped:
		return "char-typed"
	case MsgCharError:
		return "char-error"
	case MsgWordTyped:
		return "word-typed"
	case MsgWordDeleted:
		return "word-deleted"
	case MsgPhraseComplete:
		return "phrase-complete"
	default:
		return "unknown"
	}
}

// Msg is one input message. WPM and Accuracy are set for MsgPhraseComplete.
type Msg struct {
	Kind     MsgKind
	WPM      float64
	Accuracy float64
}

// Orchestrator drives one phrase attempt: it grades keystrokes, feeds word
// boundaries to a combo tracker and notifies an observer. It keeps no state
// beyond the current phrase; the tracker is borrowed from the caller.
type Orchestrator struct {
	session  *Session
	tracker  *combo.Tracker
	observer Observer
}

// NewOrchestrator creates an orchestrator for text. A nil tracker disables
// combo tracking; a nil observer discards notifications.
func NewOrchestrator(text string, c clock.Clock, tracker *combo.Tracker, observer Observer) *Orchestrator {
	if observer == nil {
		observer = NopObserver{}
	}
	return &Orchestrator{
		session:  NewSession(text, c),
		tracker:  tracker,
		observer: observer,
	}
}

// Session exposes the underlying session for rendering.
func (o *Orchestrator) Session() *Session {
	return o.session
}

// Key handles a typed character and returns the messages it produced.
func (o *Orchestrator) Key(r rune) []Msg {
	msgs := o.translateKey(r)
	for _, msg := range msgs {
		o.dispatch(msg)
	}
	return msgs
}

// Backspace handles a backspace and returns the messages it produced.
func (o *Orchestrator) Backspace() []Msg {
	res := o.session.Erase()
	if !res.WasCorrectSpace {
		return nil
	}
	msgs := []Msg{{Kind: MsgWordDeleted}}
	for _, msg := range msgs {
		o.dispatch(msg)
	}
	return msgs
}

func (o *Orchestrator) translateKey(r rune) []Msg {
	res := o.session.Type(r)
	if !res.Accepted {
		return nil
	}
	msgs := []Msg{{Kind: MsgCharTyped}}
	if !res.Correct {
		msgs = append(msgs, Msg{Kind: MsgCharError})
	}
	if res.Target == ' ' && res.Correct {
		msgs = append(msgs, Msg{Kind: MsgWordTyped})
	}
	if res.Completed {
		// A trailing space already credited the last word above.
		if !o.session.EndsWithSpace() {
			msgs = append(msgs, Msg{Kind: MsgWordTyped})
		}
		if wpm, ok := WPM(o.session); ok {
			msgs = append(msgs, Msg{Kind: MsgPhraseComplete, WPM: wpm, Accuracy: Accuracy(o.session)})
		}
	}
	return msgs
}

func (o *Orchestrator) dispatch(msg Msg) {
	switch msg.Kind {
	case MsgCharTyped:
		o.observer.CharTyped()
	case MsgCharError:
		o.emit(o.trackCharError())
		o.observer.CharError()
	case MsgWordTyped:
		o.observer.WordTyped()
		o.emit(o.trackWord(true))
	case MsgWordDeleted:
		o.observer.WordDeleted()
		o.emit(o.trackWord(false))
	case MsgPhraseComplete:
		if o.tracker != nil {
			o.emit(o.tracker.PhraseCompleted())
		}
		o.observer.PhraseComplete(msg.WPM, msg.Accuracy)
	}
}

func (o *Orchestrator) trackCharError() []combo.Event {
	if o.tracker == nil {
		return nil
	}
	return o.tracker.CharTyped(false)
}

func (o *Orchestrator) trackWord(completed bool) []combo.Event {
	if o.tracker == nil {
		return nil
	}
	if completed {
		return o.tracker.WordCompleted()
	}
	return o.tracker.WordUncompleted()
}

func (o *Orchestrator) emit(events []combo.Event) {
	for _, ev := range events {
		o.observer.Combo(ev)
	}
}
