package tui

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/litterix/internal/clock"
	"github.com/verte-zerg/litterix/internal/engine"
	"github.com/verte-zerg/litterix/internal/game"
	"github.com/verte-zerg/litterix/internal/phrases"
)

// ZenOptions configures untimed practice.
type ZenOptions struct {
	Difficulty phrases.Difficulty
	Provider   game.PhraseProvider
	Logger     *slog.Logger
	Clock      clock.Clock
}

// ZenModel is untimed practice: phrases cycle forever and nothing is saved.
type ZenModel struct {
	difficulty phrases.Difficulty
	provider   game.PhraseProvider
	logger     *slog.Logger
	clock      clock.Clock
	keys       keyMap
	help       help.Model

	width  int
	height int

	phrases []string
	index   int
	current *engine.Orchestrator
	loadErr error

	completed    int
	lastWPM      float64
	lastAccuracy float64
	hasLast      bool
}

// NewZenModel constructs an untimed practice model.
func NewZenModel(opts ZenOptions) *ZenModel {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	m := &ZenModel{
		difficulty: opts.Difficulty,
		provider:   opts.Provider,
		logger:     logger,
		clock:      opts.Clock,
		keys:       newKeyMap(),
		help:       newHelp(),
	}
	m.reload()
	return m
}

// Init implements tea.Model.
func (m *ZenModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *ZenModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
		if m.current == nil {
			if key.Matches(msg, m.keys.Reload) {
				m.reload()
			}
			return m, nil
		}
		if key.Matches(msg, m.keys.Skip) {
			m.next()
			return m, nil
		}
		switch msg.Type {
		case tea.KeyBackspace, tea.KeyDelete:
			m.current.Backspace()
		case tea.KeySpace:
			m.current.Key(' ')
		case tea.KeyRunes:
			// Completing a phrase swaps m.current, so re-read it per rune.
			for _, r := range msg.Runes {
				m.current.Key(r)
			}
		}
		return m, nil
	default:
		return m, nil
	}
}

func (m *ZenModel) reload() {
	m.index = 0
	if m.provider == nil {
		m.current = nil
		return
	}
	list, err := m.provider.Phrases(m.difficulty)
	m.loadErr = err
	if err != nil {
		m.logger.Warn("failed to load phrases", "difficulty", string(m.difficulty), "err", err)
	}
	if err == nil && len(list) > 0 {
		m.phrases = list
	}
	m.startPhrase()
}

func (m *ZenModel) startPhrase() {
	if len(m.phrases) == 0 {
		m.current = nil
		return
	}
	m.current = engine.NewOrchestrator(m.phrases[m.index], m.clock, nil, zenObserver{m: m})
}

func (m *ZenModel) next() {
	m.index++
	if m.index >= len(m.phrases) {
		m.reload()
		return
	}
	m.startPhrase()
}

// View implements tea.Model.
func (m *ZenModel) View() string {
	var content string
	if m.current == nil {
		lines := []string{titleStyle.Render("No phrases available")}
		if m.loadErr != nil {
			lines = append(lines, incorrectStyle.Render(m.loadErr.Error()))
		}
		lines = append(lines, "", m.help.View(bindingSet{m.keys.Reload, m.keys.Quit}))
		content = strings.Join(lines, "\n")
	} else {
		s := m.current.Session()
		styled := buildStyledRunes(s.Runes(), s.Statuses(), s.Cursor())
		width := 0
		if m.width > 0 {
			width = max(1, int(float64(m.width)*0.70))
		}
		text := wrapStyledRunes(styled, width)
		if width > 0 {
			text = lipgloss.NewStyle().Width(width).Render(text)
		}
		content = strings.Join([]string{
			titleStyle.Render("ZEN") + "  " + footerStyle.Render(string(m.difficulty)),
			"",
			text,
			"",
			m.renderFooter(),
			m.help.View(bindingSet{m.keys.Skip, m.keys.Quit}),
		}, "\n")
	}
	if m.width == 0 || m.height == 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func (m *ZenModel) renderFooter() string {
	progress := 0
	if m.current != nil {
		progress = engine.Progress(m.current.Session())
	}
	segments := []string{
		fmt.Sprintf("Progress %d%%", progress),
		fmt.Sprintf("Phrases %d", m.completed),
	}
	if m.hasLast {
		segments = append(segments, fmt.Sprintf("Last %.1f WPM · %.1f%%", m.lastWPM, m.lastAccuracy))
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}

type zenObserver struct {
	engine.NopObserver
	m *ZenModel
}

func (o zenObserver) PhraseComplete(wpm, accuracy float64) {
	o.m.completed++
	o.m.lastWPM = wpm
	o.m.lastAccuracy = accuracy
	o.m.hasLast = true
	o.m.next()
}
