// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/litterix/internal/combo"
	"github.com/verte-zerg/litterix/internal/model"
)

const sparkChars = " .:-=+*#%@"

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Downsample averages values into at most width buckets.
func Downsample(values []float64, width int) []float64 {
	if width <= 0 || len(values) <= width {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, width)
	for i := 0; i < width; i++ {
		start := i * len(values) / width
		end := (i + 1) * len(values) / width
		if end <= start {
			end = start + 1
		}
		var sum float64
		for _, v := range values[start:end] {
			sum += v
		}
		out[i] = sum / float64(end-start)
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		idx = max(0, min(idx, len(sparkChars)-1))
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// FormatDuration renders seconds as h/m/s.
func FormatDuration(seconds float64) string {
	total := int(math.Round(seconds))
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	switch {
	case h > 0:
		return fmt.Sprintf("%dh %02dm %02ds", h, m, s)
	case m > 0:
		return fmt.Sprintf("%dm %02ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}

// RenderSummary prints aggregate statistics.
func RenderSummary(w io.Writer, st model.GameStats) error {
	if !st.HasPlayed() {
		_, err := fmt.Fprintln(w, "No games found.")
		return err
	}
	emoji, label := combo.Badge(st.HighestCombo)
	comboCell := fmt.Sprintf("%d (%s)", st.HighestCombo, label)
	if emoji != "" {
		comboCell = fmt.Sprintf("%d %s %s", st.HighestCombo, emoji, label)
	}
	tbl := textTable{aligns: []align{alignLeft, alignRight}}
	for _, row := range [][]string{
		{"Games", fmt.Sprintf("%d", st.TotalGames)},
		{"Rush games", fmt.Sprintf("%d", st.RushGames)},
		{"Marathon games", fmt.Sprintf("%d", st.MarathonGames)},
		{"Words", fmt.Sprintf("%d", st.TotalWords)},
		{"Characters", fmt.Sprintf("%d", st.TotalChars)},
		{"Time played", FormatDuration(st.TotalTimePlayed)},
		{"Best WPM", fmt.Sprintf("%.1f", st.BestWPM)},
		{"Avg WPM", fmt.Sprintf("%.1f", st.AverageWPM)},
		{"Best accuracy", fmt.Sprintf("%.1f%%", st.BestAccuracy)},
		{"Avg accuracy", fmt.Sprintf("%.1f%%", st.AverageAccuracy)},
		{"Highest combo", comboCell},
	} {
		tbl.add(row...)
	}
	if st.MarathonGames > 0 {
		tbl.add("Marathon best", fmt.Sprintf("%d", st.MarathonBestScore))
	}
	if _, err := fmt.Fprintln(w, heading("Summary")); err != nil {
		return err
	}
	for _, line := range tbl.lines() {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// GameHeaders names the columns produced by GameRow.
var GameHeaders = []string{"Date", "Mode", "Difficulty", "WPM", "Accuracy", "Words", "Combo", "Time", "Score"}

// GameRow formats one stored game. Unscored games show "-".
func GameRow(g model.GameAggregate) []string {
	score := "-"
	if g.FinalScore != nil {
		score = fmt.Sprintf("%d", *g.FinalScore)
	}
	return []string{
		g.EndedAt.Local().Format("2006-01-02 15:04"),
		g.Mode,
		g.Difficulty,
		fmt.Sprintf("%.1f", g.AvgWPM),
		fmt.Sprintf("%.1f%%", g.AvgAccuracy),
		fmt.Sprintf("%d", g.Words),
		fmt.Sprintf("%d", g.HighestCombo),
		FormatDuration(g.TimeElapsed),
		score,
	}
}

// RenderGames prints one row per game, oldest first.
func RenderGames(w io.Writer, games []model.GameAggregate) error {
	if len(games) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, heading("Recent Games")); err != nil {
		return err
	}
	tbl := textTable{
		headers: GameHeaders,
		aligns:  []align{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight},
	}
	for _, g := range games {
		tbl.add(GameRow(g)...)
	}
	for _, line := range tbl.lines() {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderTrend prints WPM and accuracy sparklines smoothed over window games
// and squeezed into width columns.
func RenderTrend(w io.Writer, games []model.GameAggregate, window, width int) error {
	if len(games) < 2 {
		return nil
	}
	wpms := make([]float64, len(games))
	accs := make([]float64, len(games))
	for i, g := range games {
		wpms[i] = g.AvgWPM
		accs[i] = g.AvgAccuracy
	}
	wpms = MovingAverage(wpms, window)
	accs = MovingAverage(accs, window)

	labels := []string{"WPM", "Accuracy"}
	labelWidth := 0
	for _, l := range labels {
		labelWidth = max(labelWidth, runewidth.StringWidth(l))
	}
	// Label, separator and min/max annotations.
	sparkWidth := width - labelWidth - 3 - 20
	if width <= 0 {
		sparkWidth = 0
	}
	if width > 0 && sparkWidth < minSparkWidth {
		sparkWidth = minSparkWidth
	}

	if _, err := fmt.Fprintln(w, heading("Trend")); err != nil {
		return err
	}
	for i, values := range [][]float64{wpms, accs} {
		lo, hi := minMax(values)
		line := fmt.Sprintf("%s | %s | %.1f..%.1f",
			pad(labels[i], labelWidth, alignLeft),
			Sparkline(Downsample(values, sparkWidth)),
			lo, hi)
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

const minSparkWidth = 10

func minMax(values []float64) (float64, float64) {
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}
