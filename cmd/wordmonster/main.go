// Package main provides the CLI entrypoint for wordmonster.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/wordmonster/internal/config"
	"github.com/verte-zerg/wordmonster/internal/generator"
	"github.com/verte-zerg/wordmonster/internal/httpapi"
	"github.com/verte-zerg/wordmonster/internal/logging"
	"github.com/verte-zerg/wordmonster/internal/model"
	"github.com/verte-zerg/wordmonster/internal/progress"
	"github.com/verte-zerg/wordmonster/internal/session"
	"github.com/verte-zerg/wordmonster/internal/stats"
	"github.com/verte-zerg/wordmonster/internal/store"
	"github.com/verte-zerg/wordmonster/internal/tui"
	"github.com/verte-zerg/wordmonster/internal/wordlist"
)

const (
	defaultAddr        = ":5175"
	defaultCurveWindow = 5
)

var (
	logLevel   string
	wordsPath  string
	playMode   string
	playSeed   int64
	serveAddr  string
	serveMode  string
	statsMode  string
	statsSince string
	statsLast  int
	statsCurve int
	wrongLimit int
	resetYes   bool
	importTo   string
	importOver bool
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logErrf("failed to load .env: %v\n", err)
	}
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "wordmonster",
		Short:         "English/Chinese vocabulary quiz",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPlayCmd,
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", logging.DefaultLevel, "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&wordsPath, "words", "", "word list path (.json or tab-separated)")
	rootCmd.Flags().StringVar(&playMode, "mode", "", "start a run right away in this mode (normal, review, wrong)")
	rootCmd.Flags().Int64Var(&playSeed, "seed", 0, "random seed (0 = time seeded)")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newWrongCmd())
	rootCmd.AddCommand(newResetCmd())
	rootCmd.AddCommand(newWordsCmd())
	rootCmd.AddCommand(newServeCmd())

	return rootCmd
}

func runPlayCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "mode", &playMode, fileCfg.Play.Mode)
	applyInt64Config(cmd, "seed", &playSeed, fileCfg.Play.Seed)

	var startMode *model.Mode
	if strings.TrimSpace(playMode) != "" {
		mode, err := model.ParseMode(playMode)
		if err != nil {
			return fmt.Errorf("invalid --mode value: %w", err)
		}
		startMode = &mode
	}

	level, err := resolveLogLevel(cmd, fileCfg)
	if err != nil {
		return err
	}
	logger, logCloser, err := logging.NewFile(config.DefaultLogPath(), level)
	if err != nil {
		return err
	}
	defer closeQuietly(logCloser)

	path := resolveWordsPath(cmd, fileCfg)
	words := wordlist.LoadOrEmpty(path, logger)
	if len(words) == 0 {
		logErrf("no words loaded from %s\nImport a list with: wordmonster words import <file>\n", path)
	}

	st, ps, err := openProgress(logger)
	if err != nil {
		return err
	}
	defer closeQuietly(st)

	engine := newEngine(words, ps, st, playSeed, logger)
	if startMode != nil {
		if err := engine.Start(*startMode); err != nil {
			logger.Warn().Err(err).Msg("cannot start run from flags")
		}
	}

	program := tea.NewProgram(tui.NewModel(engine, logger), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
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
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show progress counters and run history",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsMode, "mode", "", "mode filter")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N runs")
	cmd.Flags().IntVar(&statsCurve, "curve-window", defaultCurveWindow, "moving average window")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	histCfg := model.HistoryConfig{Last: statsLast}
	if statsMode != "" {
		mode, err := model.ParseMode(statsMode)
		if err != nil {
			return fmt.Errorf("invalid --mode value: %w", err)
		}
		histCfg.Mode = &mode
	}
	if statsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", statsSince, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
		histCfg.Since = &parsed
	}
	if statsLast < 0 {
		return fmt.Errorf("--last must be >= 0")
	}

	env, err := openCLI(cmd)
	if err != nil {
		return err
	}
	defer closeQuietly(env.store)

	out := cmd.OutOrStdout()
	mastery, wrong := env.progress.Snapshot()
	if err := stats.RenderCounts(out, stats.CountWords(env.words, mastery, wrong)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if _, err := fmt.Fprintln(out); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	report, err := stats.BuildReport(cmd.Context(), env.store, histCfg, statsCurve)
	if err != nil {
		return fmt.Errorf("failed to load run history: %w", err)
	}
	if err := stats.RenderReport(out, report); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newWrongCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wrong",
		Short: "List the most missed words",
		Args:  cobra.NoArgs,
		RunE:  runWrongCmd,
	}
	cmd.Flags().IntVar(&wrongLimit, "limit", stats.DefaultWrongLimit, "maximum number of words (0 = all)")
	return cmd
}

func runWrongCmd(cmd *cobra.Command, _ []string) error {
	env, err := openCLI(cmd)
	if err != nil {
		return err
	}
	defer closeQuietly(env.store)

	_, wrong := env.progress.Snapshot()
	entries := stats.WrongList(env.words, wrong, wrongLimit)
	if err := stats.RenderWrongList(cmd.OutOrStdout(), entries, terminalWidth(cmd.OutOrStdout())); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newResetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Reset mastery progress (wrong-answer records are kept)",
		Args:  cobra.NoArgs,
		RunE:  runResetCmd,
	}
	cmd.Flags().BoolVarP(&resetYes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func runResetCmd(cmd *cobra.Command, _ []string) error {
	env, err := openCLI(cmd)
	if err != nil {
		return err
	}
	defer closeQuietly(env.store)

	out := cmd.OutOrStdout()
	in := cmd.InOrStdin()
	mastered := env.progress.MasteredCount(env.words)
	ok, err := confirmReset(in, out, resetYes, isTerminal(in), mastered)
	if err != nil {
		return err
	}
	if !ok {
		_, err := fmt.Fprintln(out, "Aborted.")
		return err
	}
	engine := newEngine(env.words, env.progress, env.store, 0, env.log)
	engine.ResetMastery()
	_, err = fmt.Fprintln(out, "Mastery reset. Wrong-answer records were kept.")
	return err
}

// confirmReset asks for confirmation unless yes is set. Without a terminal
// the reset is refused instead of silently accepted.
func confirmReset(in io.Reader, out io.Writer, yes, interactive bool, mastered int) (bool, error) {
	if yes {
		return true, nil
	}
	if !interactive {
		return false, fmt.Errorf("refusing to reset without --yes: stdin is not a terminal")
	}
	if _, err := fmt.Fprintf(out, "Reset mastery for %d words? Wrong-answer records are kept. [y/N] ", mastered); err != nil {
		return false, fmt.Errorf("failed to write prompt: %w", err)
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("failed to read answer: %w", err)
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}

func newWordsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "words",
		Short: "Manage the word list",
	}
	importCmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Validate a word list and install it",
		Args:  cobra.ExactArgs(1),
		RunE:  runWordsImportCmd,
	}
	importCmd.Flags().StringVar(&importTo, "to", "", "destination (default: the configured word list path)")
	importCmd.Flags().BoolVar(&importOver, "force", false, "overwrite an existing word list")
	cmd.AddCommand(importCmd)
	return cmd
}

func runWordsImportCmd(cmd *cobra.Command, args []string) error {
	src := args[0]
	pairs, err := wordlist.Load(src)
	if err != nil {
		return fmt.Errorf("failed to load word list: %w", err)
	}
	if len(pairs) == 0 {
		return fmt.Errorf("word list %s has no complete entries", src)
	}

	dest := importTo
	if dest == "" {
		fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		dest = resolveWordsPath(cmd, fileCfg)
	}
	if !strings.EqualFold(filepath.Ext(dest), ".json") {
		return fmt.Errorf("destination %s must be a .json file", dest)
	}
	if !importOver {
		if _, err := os.Stat(dest); err == nil {
			return fmt.Errorf("word list already exists: %s (use --force to overwrite)", dest)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat word list: %w", err)
		}
	}
	if err := wordlist.Write(dest, pairs); err != nil {
		return fmt.Errorf("failed to write %s: %w", dest, err)
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Imported %d words to %s\n", len(pairs), dest)
	return err
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the quiz as a JSON HTTP API",
		Args:  cobra.NoArgs,
		RunE:  runServeCmd,
	}
	cmd.Flags().StringVar(&serveAddr, "addr", defaultAddr, "listen address")
	cmd.Flags().StringVar(&serveMode, "mode", "", "mode used when a start request names none")
	cmd.Flags().Int64Var(&playSeed, "seed", 0, "random seed (0 = time seeded)")
	return cmd
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "addr", &serveAddr, fileCfg.Serve.Addr)
	applyStringConfig(cmd, "mode", &serveMode, fileCfg.Play.Mode)
	applyInt64Config(cmd, "seed", &playSeed, fileCfg.Play.Seed)
	mode, err := model.ParseMode(serveMode)
	if err != nil {
		return fmt.Errorf("invalid --mode value: %w", err)
	}

	env, err := openCLI(cmd)
	if err != nil {
		return err
	}
	defer closeQuietly(env.store)

	engine := newEngine(env.words, env.progress, env.store, playSeed, env.log)
	api := httpapi.New(engine, env.log, httpapi.WithDefaultMode(mode))
	server := &http.Server{
		Addr:              serveAddr,
		Handler:           api.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		env.log.Info().Str("addr", serveAddr).Int("words", len(env.words)).Msg("serving")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server exited: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	env.log.Info().Msg("server stopped")
	return nil
}

type cliEnv struct {
	log      zerolog.Logger
	words    []model.WordPair
	store    *store.Store
	progress *progress.Store
}

// openCLI loads config, logger, word list and progress for non-TUI commands.
func openCLI(cmd *cobra.Command) (cliEnv, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return cliEnv{}, fmt.Errorf("failed to load config: %w", err)
	}
	level, err := resolveLogLevel(cmd, fileCfg)
	if err != nil {
		return cliEnv{}, err
	}
	logger := logging.New(cmd.ErrOrStderr(), level)
	words := wordlist.LoadOrEmpty(resolveWordsPath(cmd, fileCfg), logger)
	st, ps, err := openProgress(logger)
	if err != nil {
		return cliEnv{}, err
	}
	return cliEnv{log: logger, words: words, store: st, progress: ps}, nil
}

func openProgress(logger zerolog.Logger) (*store.Store, *progress.Store, error) {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open db: %w", err)
	}
	return st, progress.Load(context.Background(), st, logger), nil
}

func newEngine(words []model.WordPair, ps *progress.Store, st *store.Store, seed int64, logger zerolog.Logger) *session.Engine {
	gen := generator.New()
	if seed != 0 {
		gen = generator.NewWithSeed(seed)
	}
	return session.NewEngine(words, ps, gen, session.WithRecorder(st), session.WithLogger(logger))
}

// resolveWordsPath picks the word list: flag, then environment, then config file.
func resolveWordsPath(cmd *cobra.Command, fileCfg config.FileConfig) string {
	if cmd.Flags().Changed("words") && wordsPath != "" {
		return wordsPath
	}
	if v := os.Getenv(config.EnvWordsPath); v != "" {
		return v
	}
	if fileCfg.Play.Words != nil && *fileCfg.Play.Words != "" {
		return *fileCfg.Play.Words
	}
	return config.DefaultWordListPath()
}

// resolveLogLevel picks the level: flag, then environment, then config file.
func resolveLogLevel(cmd *cobra.Command, fileCfg config.FileConfig) (zerolog.Level, error) {
	level := logging.DefaultLevel
	switch {
	case cmd.Flags().Changed("log-level"):
		level = logLevel
	case os.Getenv(config.EnvLogLevel) != "":
		level = os.Getenv(config.EnvLogLevel)
	case fileCfg.Log.Level != nil:
		level = *fileCfg.Log.Level
	}
	return logging.ParseLevel(level)
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

func applyInt64Config(cmd *cobra.Command, name string, target, value *int64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func terminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return 0
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return width
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# wordmonster configuration
# Uncomment a value to enable it. CLI flags override config values.

[play]
# words = %q   # Word list (.json array of {"en","zh"} or en<TAB>zh lines)
# mode = "normal"          # Start a run right away: normal, review or wrong
# seed = 0                 # Random seed (0 = time seeded)

[serve]
# addr = %q

[log]
# level = %q
`,
		config.DefaultWordListPath(),
		defaultAddr,
		logging.DefaultLevel,
	)
}

func closeQuietly(c io.Closer) {
	if c == nil {
		return
	}
	if err := c.Close(); err != nil {
		logErrf("failed to close: %v\n", err)
	}
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
