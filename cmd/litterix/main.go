// Package main provides the CLI entrypoint for litterix.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/litterix/internal/config"
	"github.com/verte-zerg/litterix/internal/game"
	"github.com/verte-zerg/litterix/internal/model"
	"github.com/verte-zerg/litterix/internal/phrases"
	"github.com/verte-zerg/litterix/internal/stats"
	"github.com/verte-zerg/litterix/internal/statsui"
	"github.com/verte-zerg/litterix/internal/store"
	"github.com/verte-zerg/litterix/internal/tui"
)

const (
	defaultMode        = "rush"
	defaultDifficulty  = "base"
	defaultCurveWindow = 5
)

var (
	playMode       string
	playDifficulty string
	playPhrasesDir string

	statsMode        string
	statsSince       string
	statsLast        int
	statsCurveWindow int
	statsPlain       bool
	statsReset       bool
	statsYes         bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "litterix",
		Short:         "Typing game with Rush, Marathon and Zen modes",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGameCmd(cmd, "")
		},
	}

	rootCmd.Flags().StringVar(&playMode, "mode", defaultMode, "game mode (rush|marathon)")
	addPhraseFlags(rootCmd)

	rootCmd.AddCommand(newModeCmd(game.Rush, "Play Rush: 20s countdown, accurate phrases add time"))
	rootCmd.AddCommand(newModeCmd(game.Marathon, "Play Marathon: two minutes scored by words and best combo"))
	rootCmd.AddCommand(newZenCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newDifficultiesCmd())

	return rootCmd
}

func addPhraseFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&playDifficulty, "difficulty", defaultDifficulty, "phrase difficulty (base|intermediate|advanced)")
	cmd.Flags().StringVar(&playPhrasesDir, "phrases-dir", "", "directory with <difficulty>.json or <difficulty>.txt overrides")
}

func newModeCmd(mode game.Mode, short string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   mode.Name,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGameCmd(cmd, mode.Name)
		},
	}
	addPhraseFlags(cmd)
	return cmd
}

// runGameCmd plays a timed game. An empty forced mode reads --mode and the config file.
func runGameCmd(cmd *cobra.Command, forcedMode string) error {
	env, fileCfg, err := loadSettings()
	if err != nil {
		return err
	}
	if forcedMode == "" {
		applyStringConfig(cmd, "mode", &playMode, fileCfg.Game.Mode)
	} else {
		playMode = forcedMode
	}
	applyPhraseConfig(cmd, fileCfg)

	cfg := model.Config{
		Mode:       playMode,
		Difficulty: playDifficulty,
		PhrasesDir: playPhrasesDir,
	}
	mode, difficulty, err := validateConfig(cfg)
	if err != nil {
		return err
	}

	provider := newProvider(cfg)
	if _, err := provider.Phrases(difficulty); err != nil {
		return fmt.Errorf("failed to load phrases: %w", err)
	}

	logger, closeLog := openLogger(fileCfg)
	defer closeLog()

	st, err := store.Open(env.ResolveDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	logger.Info("starting game", "mode", mode.Name, "difficulty", string(difficulty), "phrases", provider.Source(difficulty))
	return tui.RunGame(tui.Options{
		Mode:       mode,
		Difficulty: difficulty,
		Provider:   provider,
		Recorder:   st,
		Logger:     logger,
	})
}

func newZenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "zen",
		Short: "Untimed practice, nothing is recorded",
		Args:  cobra.NoArgs,
		RunE:  runZenCmd,
	}
	addPhraseFlags(cmd)
	return cmd
}

func runZenCmd(cmd *cobra.Command, _ []string) error {
	_, fileCfg, err := loadSettings()
	if err != nil {
		return err
	}
	applyPhraseConfig(cmd, fileCfg)

	cfg := model.Config{
		Mode:       game.Rush.Name,
		Difficulty: playDifficulty,
		PhrasesDir: playPhrasesDir,
	}
	_, difficulty, err := validateConfig(cfg)
	if err != nil {
		return err
	}
	provider := newProvider(cfg)
	if _, err := provider.Phrases(difficulty); err != nil {
		return fmt.Errorf("failed to load phrases: %w", err)
	}

	logger, closeLog := openLogger(fileCfg)
	defer closeLog()
	logger.Info("starting zen", "difficulty", string(difficulty))

	return tui.RunZen(tui.ZenOptions{
		Difficulty: difficulty,
		Provider:   provider,
		Logger:     logger,
	})
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show stats",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsMode, "mode", "", "mode filter (rush|marathon)")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N games")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	cmd.Flags().BoolVar(&statsPlain, "plain", false, "print a text report instead of the interactive view")
	cmd.Flags().BoolVar(&statsReset, "reset", false, "delete all recorded games")
	cmd.Flags().BoolVar(&statsYes, "yes", false, "confirm --reset")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	env, err := config.LoadEnv()
	if err != nil {
		return err
	}
	if statsReset && !statsYes {
		return fmt.Errorf("--reset deletes every recorded game; add --yes to confirm")
	}

	var cfg model.StatsConfig
	if !statsReset {
		cfg, err = parseStatsConfig(statsMode, statsSince, statsLast, statsCurveWindow)
		if err != nil {
			return err
		}
	}

	st, err := store.Open(env.ResolveDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	ctx := context.Background()
	if statsReset {
		n, err := st.Reset(ctx)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d games.\n", n); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}

	if statsPlain || !isTerminal(cmd.OutOrStdout()) {
		report, err := stats.BuildReport(ctx, st, cfg)
		if err != nil {
			return fmt.Errorf("failed to build stats: %w", err)
		}
		return stats.Render(cmd.OutOrStdout(), report, 0)
	}

	program := tea.NewProgram(statsui.NewModel(st, cfg), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func parseStatsConfig(mode, since string, last, curveWindow int) (model.StatsConfig, error) {
	cfg := model.StatsConfig{Last: last, CurveWindow: curveWindow}
	if mode != "" {
		m, err := game.ParseMode(mode)
		if err != nil {
			return cfg, fmt.Errorf("invalid --mode value: %w", err)
		}
		cfg.Mode = m.Name
	}
	if since != "" {
		parsed, err := time.ParseInLocation("2006-01-02", since, time.Local)
		if err != nil {
			return cfg, fmt.Errorf("invalid --since value: %w", err)
		}
		cfg.Since = &parsed
	}
	if last < 0 {
		return cfg, fmt.Errorf("--last must be >= 0")
	}
	if curveWindow < 1 {
		return cfg, fmt.Errorf("--curve-window must be >= 1")
	}
	return cfg, nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := writeConfigTemplate(path); err != nil {
		return err
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

// writeConfigTemplate creates the config file unless it already exists.
func writeConfigTemplate(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(config.Template), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}
	return nil
}

func newDifficultiesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "difficulties",
		Short: "List difficulties and where their phrases come from",
		Args:  cobra.NoArgs,
		RunE:  runDifficultiesCmd,
	}
	cmd.Flags().StringVar(&playPhrasesDir, "phrases-dir", "", "directory with <difficulty>.json or <difficulty>.txt overrides")
	return cmd
}

func runDifficultiesCmd(cmd *cobra.Command, _ []string) error {
	_, fileCfg, err := loadSettings()
	if err != nil {
		return err
	}
	applyStringConfig(cmd, "phrases-dir", &playPhrasesDir, fileCfg.Game.PhrasesDir)
	provider := newProvider(model.Config{PhrasesDir: playPhrasesDir})
	for _, d := range phrases.Difficulties() {
		line := fmt.Sprintf("%-13s %s", d, provider.Source(d))
		if list, err := provider.Phrases(d); err != nil {
			line += fmt.Sprintf(" (error: %v)", err)
		} else {
			line += fmt.Sprintf(" (%d phrases)", len(list))
		}
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

// loadSettings reads the config file and overlays LITTERIX_* variables.
func loadSettings() (config.EnvConfig, config.FileConfig, error) {
	env, err := config.LoadEnv()
	if err != nil {
		return config.EnvConfig{}, config.FileConfig{}, err
	}
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return config.EnvConfig{}, config.FileConfig{}, fmt.Errorf("failed to load config: %w", err)
	}
	env.Apply(&fileCfg)
	return env, fileCfg, nil
}

func applyPhraseConfig(cmd *cobra.Command, fileCfg config.FileConfig) {
	applyStringConfig(cmd, "difficulty", &playDifficulty, fileCfg.Game.Difficulty)
	applyStringConfig(cmd, "phrases-dir", &playPhrasesDir, fileCfg.Game.PhrasesDir)
}

func newProvider(cfg model.Config) *phrases.Provider {
	dir := cfg.PhrasesDir
	if dir == "" {
		dir = config.DefaultPhrasesDir()
	}
	return phrases.NewProvider(dir, phrases.NewShuffler())
}

// openLogger falls back to a discarding logger so a bad log path never blocks play.
func openLogger(fileCfg config.FileConfig) (*slog.Logger, func()) {
	var levelName, path string
	if fileCfg.Log.Level != nil {
		levelName = *fileCfg.Log.Level
	}
	if fileCfg.Log.File != nil {
		path = *fileCfg.Log.File
	}
	level, err := config.ParseLogLevel(levelName)
	if err != nil {
		logErrf("%v; using info\n", err)
	}
	logger, closer, err := config.OpenLogger(path, level)
	if err != nil {
		logErrf("logging disabled: %v\n", err)
		return config.DiscardLogger(), func() {}
	}
	return logger, func() {
		_ = closer.Close()
	}
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func validateConfig(cfg model.Config) (game.Mode, phrases.Difficulty, error) {
	mode, err := game.ParseMode(cfg.Mode)
	if err != nil {
		return game.Mode{}, "", fmt.Errorf("invalid --mode value: %w", err)
	}
	difficulty, err := phrases.ParseDifficulty(cfg.Difficulty)
	if err != nil {
		return game.Mode{}, "", fmt.Errorf("invalid --difficulty value: %w", err)
	}
	return mode, difficulty, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
