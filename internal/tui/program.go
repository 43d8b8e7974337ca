package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/litterix/internal/clock"
)

// RunGame runs the timed game screen until the user quits. The countdown
// ticks are posted into the program so the run is only touched by Update.
func RunGame(opts Options) error {
	var program *tea.Program
	if opts.Scheduler == nil {
		opts.Scheduler = clock.NewTickerScheduler(Poster(func() *tea.Program { return program }))
	}
	m := NewModel(opts)
	program = tea.NewProgram(m, tea.WithAltScreen())
	_, err := program.Run()
	m.Run().Abandon()
	if err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// RunZen runs untimed practice until the user quits.
func RunZen(opts ZenOptions) error {
	program := tea.NewProgram(NewZenModel(opts), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}
