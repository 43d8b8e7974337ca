package stats

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/verte-zerg/litterix/internal/model"
)

const terminalWidthBackup = 80

var headingStyle = lipgloss.NewStyle().Bold(true).Underline(true)

// Source is the storage surface reports read from.
type Source interface {
	ListGames(ctx context.Context, cfg model.StatsConfig) ([]model.GameAggregate, error)
	Stats(ctx context.Context, mode string) (model.GameStats, error)
}

// Report contains precomputed data for stats rendering.
type Report struct {
	Stats model.GameStats
	// Recent holds at most cfg.Last games, oldest first.
	Recent []model.GameAggregate
	// History holds every matching game for the trend lines.
	History     []model.GameAggregate
	CurveWindow int
}

// BuildReport loads and prepares data for stats rendering.
func BuildReport(ctx context.Context, src Source, cfg model.StatsConfig) (Report, error) {
	st, err := src.Stats(ctx, cfg.Mode)
	if err != nil {
		return Report{}, err
	}
	history, err := src.ListGames(ctx, model.StatsConfig{Mode: cfg.Mode, Since: cfg.Since})
	if err != nil {
		return Report{}, err
	}
	recent := history
	if cfg.Last > 0 && len(recent) > cfg.Last {
		recent = recent[len(recent)-cfg.Last:]
	}
	return Report{
		Stats:       st,
		Recent:      recent,
		History:     history,
		CurveWindow: cfg.CurveWindow,
	}, nil
}

// Render writes the full report. A width of 0 uses the terminal width.
func Render(w io.Writer, r Report, width int) error {
	if width <= 0 {
		width = terminalWidth()
	}
	if err := RenderSummary(w, r.Stats); err != nil {
		return err
	}
	if err := RenderGames(w, r.Recent); err != nil {
		return err
	}
	return RenderTrend(w, r.History, r.CurveWindow, width)
}

func heading(title string) string {
	return headingStyle.Render(title)
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}
