package tui

import (
	"testing"

	"github.com/verte-zerg/litterix/internal/engine"
)

const (
	pending   = engine.StatusPending
	correct   = engine.StatusCorrect
	incorrect = engine.StatusIncorrect
)

func TestBuildStyledRunesCursor(t *testing.T) {
	runes := buildStyledRunes([]rune("ab"), []engine.CharStatus{correct, pending}, 1)
	if len(runes) != 2 {
		t.Fatalf("expected 2 runes, got %d", len(runes))
	}
	if runes[0].s != correctStyle.Render("a") {
		t.Fatalf("expected correct style for first rune")
	}
	if runes[1].s != currentWordStyle.Underline(true).Render("b") {
		t.Fatalf("expected underlined cursor rune")
	}
}

func TestBuildStyledRunesNoCursorWhenComplete(t *testing.T) {
	runes := buildStyledRunes([]rune("a"), []engine.CharStatus{correct}, 1)
	if len(runes) != 1 {
		t.Fatalf("expected 1 rune, got %d", len(runes))
	}
	if runes[0].s != correctStyle.Render("a") {
		t.Fatalf("expected correct style for completed rune")
	}
}

func TestBuildStyledRunesKeepsTargetOnMistype(t *testing.T) {
	runes := buildStyledRunes([]rune("ab"), []engine.CharStatus{correct, incorrect}, 2)
	if runes[1].s != incorrectStyle.Render("b") {
		t.Fatalf("expected incorrect style for second rune")
	}
}

func TestBuildStyledRunesWordHighlighting(t *testing.T) {
	runes := buildStyledRunes([]rune("one two"), []engine.CharStatus{correct, pending, pending, pending, pending, pending, pending}, 1)
	if runes[0].s != correctStyle.Render("o") {
		t.Fatalf("expected correct style for typed rune")
	}
	if runes[2].s != currentWordStyle.Render("e") {
		t.Fatalf("expected current word style for untyped in current word")
	}
	if runes[4].s != pendingStyle.Render("t") {
		t.Fatalf("expected pending style for next word")
	}
	if runes[6].s != pendingStyle.Render("o") {
		t.Fatalf("expected pending style for next word")
	}
}

func TestBuildStyledRunesWrongSpaceDot(t *testing.T) {
	runes := buildStyledRunes([]rune("a b"), []engine.CharStatus{correct, incorrect, pending}, 2)
	if len(runes) != 3 {
		t.Fatalf("expected 3 runes, got %d", len(runes))
	}
	if runes[1].s != incorrectStyle.Render("•") {
		t.Fatalf("expected red dot for wrong space")
	}
	if !runes[1].isSpace {
		t.Fatalf("expected dot to keep space wrapping semantics")
	}
}

func plainRunes(s string) []styledRune {
	out := make([]styledRune, 0, len(s))
	for _, r := range s {
		out = append(out, styledRune{s: string(r), width: 1, isSpace: r == ' '})
	}
	return out
}

func TestWrapStyledRunesBreaksAtSpaces(t *testing.T) {
	got := wrapStyledRunes(plainRunes("one two three"), 8)
	if got != "one two\nthree" {
		t.Fatalf("unexpected wrap %q", got)
	}
}

func TestWrapStyledRunesSplitsLongWords(t *testing.T) {
	got := wrapStyledRunes(plainRunes("abcdef"), 4)
	if got != "abcd\nef" {
		t.Fatalf("unexpected wrap %q", got)
	}
	if got := wrapStyledRunes(plainRunes("abc"), 0); got != "abc" {
		t.Fatalf("expected no wrap for zero width, got %q", got)
	}
}
