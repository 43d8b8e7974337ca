package stats

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

type align int

const (
	alignLeft align = iota
	alignRight
)

// textTable lays out cells in columns padded to the widest cell by display
// width. Columns without an alignment are left aligned.
type textTable struct {
	headers []string
	aligns  []align
	rows    [][]string
}

func (t *textTable) add(cells ...string) {
	t.rows = append(t.rows, cells)
}

func (t *textTable) lines() []string {
	widths := t.widths()
	if len(widths) == 0 {
		return nil
	}
	out := make([]string, 0, len(t.rows)+1)
	if len(t.headers) > 0 {
		out = append(out, t.line(t.headers, widths))
	}
	for _, row := range t.rows {
		out = append(out, t.line(row, widths))
	}
	return out
}

func (t *textTable) widths() []int {
	var widths []int
	measure := func(cells []string) {
		for i, cell := range cells {
			if i == len(widths) {
				widths = append(widths, 0)
			}
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}
	measure(t.headers)
	for _, row := range t.rows {
		measure(row)
	}
	return widths
}

func (t *textTable) line(cells []string, widths []int) string {
	parts := make([]string, len(widths))
	for i, width := range widths {
		var cell string
		if i < len(cells) {
			cell = cells[i]
		}
		a := alignLeft
		if i < len(t.aligns) {
			a = t.aligns[i]
		}
		parts[i] = pad(cell, width, a)
	}
	return strings.Join(parts, " ")
}

func pad(s string, width int, a align) string {
	if a == alignRight {
		return runewidth.FillLeft(s, width)
	}
	return runewidth.FillRight(s, width)
}
