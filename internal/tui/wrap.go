package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/litterix/internal/engine"
)

type styledRune struct {
	s       string
	width   int
	isSpace bool
}

// buildStyledRunes styles the phrase by per-character status. A mistyped
// space is drawn as a dot so the error stays visible.
func buildStyledRunes(text []rune, statuses []engine.CharStatus, cursor int) []styledRune {
	words := findWords(text)
	currentWord := wordForCursor(words, cursor)

	out := make([]styledRune, 0, len(text))
	for i, target := range text {
		displayed := target
		status := engine.StatusPending
		if i < len(statuses) {
			status = statuses[i]
		}
		var style lipgloss.Style
		switch status {
		case engine.StatusCorrect:
			style = correctStyle
		case engine.StatusIncorrect:
			style = incorrectStyle
			if target == ' ' {
				displayed = '•'
			}
		default:
			style = pendingStyle
			if target != ' ' && currentWord != nil && i >= currentWord.start && i < currentWord.end {
				style = currentWordStyle
			}
		}
		if i == cursor && status == engine.StatusPending {
			style = style.Underline(true)
		}
		out = append(out, styledRune{
			s:       style.Render(string(displayed)),
			width:   runewidth.RuneWidth(displayed),
			isSpace: target == ' ',
		})
	}
	return out
}

type wordRange struct {
	start int
	end   int
}

func findWords(text []rune) []wordRange {
	words := []wordRange{}
	start := -1
	for i, r := range text {
		if r == ' ' {
			if start != -1 {
				words = append(words, wordRange{start: start, end: i})
				start = -1
			}
			continue
		}
		if start == -1 {
			start = i
		}
	}
	if start != -1 {
		words = append(words, wordRange{start: start, end: len(text)})
	}
	return words
}

func wordForCursor(words []wordRange, cursor int) *wordRange {
	if len(words) == 0 {
		return nil
	}
	if cursor < 0 {
		return &words[0]
	}
	wordIdx := -1
	for i, w := range words {
		if cursor >= w.start && cursor < w.end {
			wordIdx = i
			break
		}
		if cursor < w.start {
			wordIdx = i
			break
		}
	}
	if wordIdx == -1 {
		return &words[len(words)-1]
	}
	return &words[wordIdx]
}

func renderStyledRunes(runes []styledRune) string {
	var b strings.Builder
	for _, item := range runes {
		b.WriteString(item.s)
	}
	return b.String()
}

func wrapStyledRunes(runes []styledRune, width int) string {
	if width <= 0 {
		return renderStyledRunes(runes)
	}
	var out strings.Builder
	line := make([]styledRune, 0, len(runes))
	lineWidth := 0
	lastSpaceIdx := -1

	for i := 0; i < len(runes); {
		item := runes[i]
		if lineWidth+item.width > width && len(line) > 0 {
			if lastSpaceIdx >= 0 {
				out.WriteString(renderStyledRunes(line[:lastSpaceIdx]))
				out.WriteRune('\n')
				line = append([]styledRune{}, line[lastSpaceIdx+1:]...)
				lineWidth = lineWidthOf(line)
				lastSpaceIdx = lastSpaceIndex(line)
			} else {
				out.WriteString(renderStyledRunes(line))
				out.WriteRune('\n')
				line = line[:0]
				lineWidth = 0
				lastSpaceIdx = -1
			}
			continue
		}
		line = append(line, item)
		lineWidth += item.width
		if item.isSpace {
			lastSpaceIdx = len(line) - 1
		}
		i++
	}
	out.WriteString(renderStyledRunes(line))
	return out.String()
}

func lineWidthOf(line []styledRune) int {
	total := 0
	for _, item := range line {
		total += item.width
	}
	return total
}

func lastSpaceIndex(line []styledRune) int {
	for i := len(line) - 1; i >= 0; i-- {
		if line[i].isSpace {
			return i
		}
	}
	return -1
}
