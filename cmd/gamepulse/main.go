// Package main provides the CLI entrypoint for gamepulse.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/gamepulse/internal/config"
	"github.com/verte-zerg/gamepulse/internal/model"
	"github.com/verte-zerg/gamepulse/internal/report"
	"github.com/verte-zerg/gamepulse/internal/reportui"
	"github.com/verte-zerg/gamepulse/internal/store"
	"github.com/verte-zerg/gamepulse/internal/telemetry"
)

const (
	formatText = "text"
	formatJSON = "json"

	sinceLayout = "2006-01-02"
)

var (
	verbose bool
	log     = zerolog.Nop()

	reportPlayer string
	reportFormat string
	reportFromDB bool
	reportSince  string
	reportColor  bool

	browsePlayer string
	browseSince  string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "gamepulse",
		Short:         "Gameplay telemetry session reports",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			log = newLogger(os.Stderr, verbose)
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(newReportCmd())
	rootCmd.AddCommand(newImportCmd())
	rootCmd.AddCommand(newPlayersCmd())
	rootCmd.AddCommand(newBrowseCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func newLogger(w io.Writer, debug bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	out := zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report [file|-]",
		Short: "Print session reports from a telemetry file or the store",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runReportCmd,
	}
	cmd.Flags().StringVar(&reportPlayer, "player", "", "only report this player")
	cmd.Flags().StringVar(&reportFormat, "format", formatText, "output format (text|json)")
	cmd.Flags().BoolVar(&reportFromDB, "from-db", false, "load telemetry from the store instead of a file")
	cmd.Flags().StringVar(&reportSince, "since", "", "only sessions ending on or after this date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&reportColor, "color", false, "colour text output (default: when stdout is a terminal)")
	return cmd
}

func runReportCmd(cmd *cobra.Command, args []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if !cmd.Flags().Changed("color") {
		reportColor = isTerminal(os.Stdout)
	}
	applyStringConfig(cmd, "player", &reportPlayer, fileCfg.Report.Player)
	applyStringConfig(cmd, "format", &reportFormat, fileCfg.Report.Format)
	applyBoolConfig(cmd, "color", &reportColor, fileCfg.Report.Color)

	since, err := parseSince(reportSince)
	if err != nil {
		return err
	}
	cfg := model.ReportConfig{
		Player: reportPlayer,
		Format: reportFormat,
		Color:  reportColor,
		Since:  since,
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}
	if !reportFromDB && len(args) == 0 {
		return fmt.Errorf("telemetry file required (use - for stdin, or --from-db)")
	}

	var batches []telemetry.PlayerBatch
	if reportFromDB {
		batches, err = loadFromStore(cmd.Context(), fileCfg.DBPath(), cfg)
	} else {
		batches, err = loadFromInput(args[0], cmd.InOrStdin(), cfg.Player)
	}
	if err != nil {
		return err
	}

	var reports []report.Report
	for _, b := range batches {
		built := report.FilterSince(report.Build(b.PlayerID, b.Records), cfg.Since)
		log.Debug().Str("player", b.PlayerID).Int("records", len(b.Records)).Int("sessions", len(built)).Msg("built reports")
		reports = append(reports, built...)
	}

	out := cmd.OutOrStdout()
	if cfg.Format == formatJSON {
		return report.EncodeJSON(out, reports)
	}
	if err := report.RenderText(out, reports, report.TextOptions{Color: cfg.Color}); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func loadFromInput(path string, stdin io.Reader, player string) ([]telemetry.PlayerBatch, error) {
	records, err := readTelemetry(path, stdin)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("input", path).Int("records", len(records)).Msg("decoded telemetry")
	return filterPlayer(telemetry.GroupByPlayer(records), player), nil
}

func loadFromStore(ctx context.Context, path string, cfg model.ReportConfig) ([]telemetry.PlayerBatch, error) {
	st, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			log.Error().Err(cerr).Msg("failed to close db")
		}
	}()

	players := []string{cfg.Player}
	if cfg.Player == "" {
		summaries, err := st.ListPlayers(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list players: %w", err)
		}
		players = players[:0]
		for _, p := range summaries {
			players = append(players, p.PlayerID)
		}
	}

	batches := make([]telemetry.PlayerBatch, 0, len(players))
	for _, p := range players {
		records, err := st.ListRecords(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("failed to load telemetry for %s: %w", p, err)
		}
		if len(records) == 0 {
			continue
		}
		batches = append(batches, telemetry.PlayerBatch{PlayerID: p, Records: records})
	}
	return batches, nil
}

func readTelemetry(path string, stdin io.Reader) ([]model.Record, error) {
	if path == "-" {
		records, err := telemetry.Decode(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to decode stdin: %w", err)
		}
		return records, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open telemetry: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			log.Error().Err(cerr).Str("path", path).Msg("failed to close telemetry file")
		}
	}()
	records, err := telemetry.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return records, nil
}

func filterPlayer(batches []telemetry.PlayerBatch, player string) []telemetry.PlayerBatch {
	if player == "" {
		return batches
	}
	for _, b := range batches {
		if b.PlayerID == player {
			return []telemetry.PlayerBatch{b}
		}
	}
	return nil
}

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import [file|-]",
		Short: "Store telemetry in the local database",
		Args:  cobra.ExactArgs(1),
		RunE:  runImportCmd,
	}
}

func runImportCmd(cmd *cobra.Command, args []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	records, err := readTelemetry(args[0], cmd.InOrStdin())
	if err != nil {
		return err
	}

	dbPath := fileCfg.DBPath()
	st, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			log.Error().Err(cerr).Msg("failed to close db")
		}
	}()

	n, err := st.InsertRecords(cmd.Context(), records)
	if err != nil {
		return fmt.Errorf("failed to store telemetry: %w", err)
	}
	log.Info().Str("db", dbPath).Int("records", n).Msg("imported telemetry")
	return nil
}

func newPlayersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "players",
		Short: "List players with stored telemetry",
		Args:  cobra.NoArgs,
		RunE:  runPlayersCmd,
	}
}

func runPlayersCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	st, err := store.Open(fileCfg.DBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			log.Error().Err(cerr).Msg("failed to close db")
		}
	}()

	players, err := st.ListPlayers(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list players: %w", err)
	}
	if len(players) == 0 {
		log.Warn().Msg("no players found; import telemetry with: gamepulse import <file>")
		return nil
	}
	for _, p := range players {
		line := fmt.Sprintf("%s\t%s records\tlast active %s",
			p.PlayerID, humanize.Comma(int64(p.Records)), humanize.Time(p.LastActivity))
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newBrowseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse stored sessions interactively",
		Args:  cobra.NoArgs,
		RunE:  runBrowseCmd,
	}
	cmd.Flags().StringVar(&browsePlayer, "player", "", "open this player's sessions")
	cmd.Flags().StringVar(&browseSince, "since", "", "only sessions ending on or after this date (YYYY-MM-DD)")
	return cmd
}

func runBrowseCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "player", &browsePlayer, fileCfg.Report.Player)
	since, err := parseSince(browseSince)
	if err != nil {
		return err
	}

	st, err := store.Open(fileCfg.DBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			log.Error().Err(cerr).Msg("failed to close db")
		}
	}()

	cfg := model.ReportConfig{Player: browsePlayer, Since: since}
	program := tea.NewProgram(reportui.NewModel(st, cfg), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run report TUI: %w", err)
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
		log.Info().Str("path", path).Msg("created config")
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

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# gamepulse configuration
# Uncomment a value to enable it. CLI flags override config values.

[report]
# player = ""             # Only report this player
# format = %q         # Output format: text or json
# color = true            # Colour text output (default: when stdout is a terminal)

[store]
# path = %q
`,
		formatText,
		config.DefaultDBPath(),
	)
}

func validateConfig(cfg model.ReportConfig) error {
	switch cfg.Format {
	case formatText, formatJSON:
		return nil
	default:
		return fmt.Errorf("--format must be %q or %q, got %q", formatText, formatJSON, cfg.Format)
	}
}

func parseSince(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	parsed, err := time.ParseInLocation(sinceLayout, value, time.Local)
	if err != nil {
		return nil, fmt.Errorf("invalid --since value: %w", err)
	}
	return &parsed, nil
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
