// Package tui provides the Bubble Tea typing interface.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/litterix/internal/clock"
	"github.com/verte-zerg/litterix/internal/combo"
	"github.com/verte-zerg/litterix/internal/game"
	"github.com/verte-zerg/litterix/internal/phrases"
)

// popupDuration is how long a combo message stays on screen.
const popupDuration = 2 * time.Second

var (
	correctStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	incorrectStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	pendingStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	currentWordStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	footerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	helpKeyStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#B0B0B0"))
	timerStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	timerLowStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F")).Bold(true)
	titleStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	bonusStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	resultBoxStyle   = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#C89A3A")).
				Padding(1, 3)
)

// fireMsg carries a scheduler callback onto the Update loop.
type fireMsg struct {
	fn func()
}

// popupExpiredMsg hides the popup it was scheduled for.
type popupExpiredMsg struct {
	seq int
}

// Options configures the timed game screen.
type Options struct {
	Mode       game.Mode
	Difficulty phrases.Difficulty
	Provider   game.PhraseProvider
	Recorder   game.Recorder
	Logger     *slog.Logger
	Clock      clock.Clock
	// Scheduler drives the countdown. It must deliver ticks through fireMsg
	// when used with a running program; see Poster.
	Scheduler clock.Scheduler
}

// Model implements the Bubble Tea timed game UI. It is also the run's
// listener, so every run event lands inside Update.
type Model struct {
	run      *game.Run
	recorder game.Recorder
	logger   *slog.Logger
	keys     keyMap
	help     help.Model

	width  int
	height int

	popup    *combo.Event
	popupSeq int

	lastPhrase *game.PhraseResult
	result     *game.Result
	saved      bool
	saveErr    error

	cmds []tea.Cmd
}

// NewModel constructs a timed game model.
func NewModel(opts Options) *Model {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	m := &Model{
		recorder: opts.Recorder,
		logger:   logger,
		keys:     newKeyMap(),
		help:     newHelp(),
	}
	m.run = game.New(game.Options{
		Mode:       opts.Mode,
		Difficulty: opts.Difficulty,
		Provider:   opts.Provider,
		Clock:      opts.Clock,
		Scheduler:  opts.Scheduler,
		Listener:   m,
	})
	if m.run.Waiting() {
		m.logWaiting()
	}
	return m
}

// Poster returns a clock.Poster that routes callbacks into program.
func Poster(program func() *tea.Program) clock.Poster {
	return func(fn func()) {
		program().Send(fireMsg{fn: fn})
	}
}

// Run returns the underlying game run.
func (m *Model) Run() *game.Run {
	return m.run
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil
	case fireMsg:
		msg.fn()
		return m, m.flush()
	case popupExpiredMsg:
		if msg.seq == m.popupSeq {
			m.popup = nil
		}
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	default:
		return m, nil
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		m.run.Abandon()
		return m, tea.Quit
	}
	if m.run.State() == game.StateFinished {
		if key.Matches(msg, m.keys.Again) {
			m.restart()
		}
		return m, nil
	}
	if m.run.Waiting() {
		if key.Matches(msg, m.keys.Reload) {
			m.run.Reload()
			if m.run.Waiting() {
				m.logWaiting()
			}
		}
		return m, nil
	}
	if key.Matches(msg, m.keys.Restart) {
		m.restart()
		return m, nil
	}
	switch msg.Type {
	case tea.KeyBackspace, tea.KeyDelete:
		m.run.Backspace()
	case tea.KeySpace:
		m.run.Key(' ')
	case tea.KeyRunes:
		for _, r := range msg.Runes {
			m.run.Key(r)
		}
	}
	return m, m.flush()
}

func (m *Model) restart() {
	m.run.Restart()
	m.popup = nil
	m.lastPhrase = nil
	m.result = nil
	m.saved = false
	m.saveErr = nil
}

// flush returns the commands queued by listener callbacks.
func (m *Model) flush() tea.Cmd {
	if len(m.cmds) == 0 {
		return nil
	}
	cmds := m.cmds
	m.cmds = nil
	return tea.Batch(cmds...)
}

// StateChanged implements game.Listener.
func (m *Model) StateChanged(s game.State) {
	m.logger.Debug("run state changed", "run", m.run.ID(), "state", s.String())
}

// Combo implements game.Listener.
func (m *Model) Combo(ev combo.Event) {
	m.popup = &ev
	m.popupSeq++
	seq := m.popupSeq
	m.cmds = append(m.cmds, tea.Tick(popupDuration, func(time.Time) tea.Msg {
		return popupExpiredMsg{seq: seq}
	}))
}

// PhraseCompleted implements game.Listener.
func (m *Model) PhraseCompleted(res game.PhraseResult) {
	m.lastPhrase = &res
	m.logger.Debug("phrase completed",
		"run", m.run.ID(),
		"phrase", res.Number,
		"wpm", res.WPM,
		"accuracy", res.Accuracy,
		"bonus", res.Bonus,
	)
}

// RunFinished implements game.Listener.
func (m *Model) RunFinished(res game.Result) {
	m.result = &res
	m.popup = nil
	m.logger.Info("game finished",
		"run", res.RunID,
		"mode", res.Mode,
		"difficulty", string(res.Difficulty),
		"words", res.Words,
		"avg_wpm", res.AvgWPM,
		"avg_accuracy", res.AvgAccuracy,
		"highest_combo", res.HighestCombo,
	)
	if m.recorder == nil {
		return
	}
	if err := m.recorder.RecordGame(context.Background(), res.Record()); err != nil {
		m.saveErr = err
		m.logger.Error("failed to save game", "run", res.RunID, "err", err)
		return
	}
	m.saved = true
}

func (m *Model) logWaiting() {
	if err := m.run.LoadError(); err != nil {
		m.logger.Warn("no phrases available", "err", err)
		return
	}
	m.logger.Warn("no phrases available")
}

// View implements tea.Model.
func (m *Model) View() string {
	var content string
	switch {
	case m.run.State() == game.StateFinished && m.result != nil:
		content = m.renderResult()
	case m.run.Waiting():
		content = m.renderWaiting()
	default:
		content = m.renderPlaying()
	}
	if m.width == 0 || m.height == 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func (m *Model) contentWidth() int {
	if m.width == 0 {
		return 0
	}
	return max(1, int(float64(m.width)*0.70))
}

func (m *Model) renderPlaying() string {
	snap := m.run.Snapshot()
	styled := buildStyledRunes(snap.Text, snap.Statuses, snap.Cursor)
	width := m.contentWidth()
	text := wrapStyledRunes(styled, width)
	if width > 0 {
		text = lipgloss.NewStyle().Width(width).Render(text)
	}
	lines := []string{
		m.renderHeader(snap),
		"",
		text,
		"",
		m.renderPopup(),
		m.renderFooter(),
		m.help.View(bindingSet{m.keys.Restart, m.keys.Quit}),
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderHeader(snap game.Snapshot) string {
	remaining := formatRemaining(snap.Remaining)
	style := timerStyle
	if snap.Remaining <= 5*time.Second {
		style = timerLowStyle
	}
	parts := []string{
		titleStyle.Render(strings.ToUpper(snap.Mode)),
		style.Render(remaining),
		footerStyle.Render(fmt.Sprintf("Phrase %d", snap.PhraseNumber)),
	}
	if snap.State == game.StatePending {
		parts = append(parts, footerStyle.Render("start typing"))
	}
	if m.lastPhrase != nil && m.lastPhrase.Bonus > 0 {
		parts = append(parts, bonusStyle.Render(fmt.Sprintf("+%ds", int(m.lastPhrase.Bonus/time.Second))))
	}
	return strings.Join(parts, "  ")
}

func (m *Model) renderPopup() string {
	if m.popup == nil {
		return ""
	}
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(m.popup.Color())).Bold(true)
	return style.Render(m.popup.Message())
}

func (m *Model) renderFooter() string {
	snap := m.run.Snapshot()
	agg := snap.Aggregate
	segments := []string{
		fmt.Sprintf("Progress %d%%", snap.Progress),
		fmt.Sprintf("Last %.1f WPM · %.1f%%", snap.LastWPM, snap.LastAccuracy),
		fmt.Sprintf("Words %d", agg.Words),
		fmt.Sprintf("Chars %d", agg.Chars),
		fmt.Sprintf("Combo %d", agg.Combo.Consecutive),
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}

func (m *Model) renderWaiting() string {
	lines := []string{
		titleStyle.Render("No phrases available"),
	}
	if err := m.run.LoadError(); err != nil {
		lines = append(lines, incorrectStyle.Render(err.Error()))
	}
	lines = append(lines, "", m.help.View(bindingSet{m.keys.Reload, m.keys.Quit}))
	return strings.Join(lines, "\n")
}

func (m *Model) renderResult() string {
	res := m.result
	title := "Time's up!"
	rows := [][2]string{
		{"Words", fmt.Sprintf("%d", res.Words)},
		{"Characters", fmt.Sprintf("%d", res.Chars)},
		{"Phrases", fmt.Sprintf("%d", res.PhrasesCompleted)},
		{"Avg WPM", fmt.Sprintf("%.1f", res.AvgWPM)},
		{"Avg accuracy", fmt.Sprintf("%.1f%%", res.AvgAccuracy)},
		{"Time", fmt.Sprintf("%.1fs", res.Elapsed.Seconds())},
		{"Highest combo", comboLabel(res.HighestCombo)},
	}
	if res.FinalScore != nil {
		rows = append(rows, [2]string{"Score", fmt.Sprintf("%d", *res.FinalScore)})
	}
	labelWidth := 0
	for _, r := range rows {
		labelWidth = max(labelWidth, lipgloss.Width(r[0]))
	}
	lines := []string{titleStyle.Render(title), ""}
	for _, r := range rows {
		label := r[0] + strings.Repeat(" ", labelWidth-lipgloss.Width(r[0]))
		lines = append(lines, footerStyle.Render(label)+"  "+correctStyle.Render(r[1]))
	}
	if m.saveErr != nil {
		lines = append(lines, "", incorrectStyle.Render("not saved: "+m.saveErr.Error()))
	}
	box := resultBoxStyle.Render(strings.Join(lines, "\n"))
	return box + "\n" + m.help.View(bindingSet{m.keys.Again, m.keys.Quit})
}

func comboLabel(n int) string {
	emoji, label := combo.Badge(n)
	if emoji == "" {
		return fmt.Sprintf("%d (%s)", n, label)
	}
	return fmt.Sprintf("%d %s %s", n, emoji, label)
}

func formatRemaining(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}
