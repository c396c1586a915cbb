// Package main provides the xlwatch CLI, a polling watcher for spreadsheet
// files built on the asyncexcel session library.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/a123ao/async-excel-go/internal/config"
	"github.com/a123ao/async-excel-go/internal/logging"
	"github.com/a123ao/async-excel-go/pkg/asyncexcel"
	"github.com/a123ao/async-excel-go/pkg/asyncexcel/engine/com"
	"github.com/a123ao/async-excel-go/pkg/asyncexcel/engine/xlsx"
)

// Rows shown per change notification, matching the demo loop that printed
// the head of the sheet.
const previewRows = 5

var (
	cfgPath    string
	sheetName  string
	interval   time.Duration
	autoSave   bool
	visible    bool
	create     bool
	engineName string
	logLevel   string
	logFormat  string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "xlwatch [workbook.xlsx]",
		Short: "Watch a spreadsheet for changes",
		Long: `xlwatch opens a workbook through a spreadsheet engine and polls the
selected sheet, logging a snapshot whenever its contents change.`,
		Args: cobra.MaximumNArgs(1),
		RunE: run,
	}

	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", "", "Path to YAML config file")
	rootCmd.Flags().StringVarP(&sheetName, "sheet", "s", "", "Sheet name (default: first sheet)")
	rootCmd.Flags().DurationVarP(&interval, "interval", "i", time.Second, "Poll interval")
	rootCmd.Flags().BoolVar(&autoSave, "auto-save", true, "Save pending writes on close")
	rootCmd.Flags().BoolVar(&visible, "visible", true, "Show the spreadsheet application window (com engine)")
	rootCmd.Flags().BoolVar(&create, "create", false, "Create the workbook if it does not exist")
	rootCmd.Flags().StringVar(&engineName, "engine", "xlsx", "Spreadsheet engine: xlsx or com")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level: trace, debug, info, warn, error")
	rootCmd.Flags().StringVar(&logFormat, "log-format", "console", "Log format: console or json")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	// Flags override file and environment values.
	flags := cmd.Flags()
	if len(args) == 1 {
		cfg.File = args[0]
	}
	if flags.Changed("sheet") {
		cfg.Sheet = sheetName
	}
	if flags.Changed("interval") {
		cfg.Interval = config.Duration(interval)
	}
	if flags.Changed("auto-save") {
		cfg.AutoSave = autoSave
	}
	if flags.Changed("visible") {
		cfg.Visible = visible
	}
	if flags.Changed("create") {
		cfg.Create = create
	}
	if flags.Changed("engine") {
		cfg.Engine = engineName
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = logFormat
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.File == "" {
		return fmt.Errorf("no workbook given (pass a path or set file in the config)")
	}
	if err := logging.Setup(cfg.Log.Level, cfg.Log.Format); err != nil {
		return err
	}

	engine, err := buildEngine(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sheet := asyncexcel.SheetByIndex(0)
	if cfg.Sheet != "" {
		sheet = asyncexcel.SheetByName(cfg.Sheet)
	}
	opts := asyncexcel.Options{
		Engine:          engine,
		PollInterval:    time.Duration(cfg.Interval),
		AutoSave:        cfg.AutoSave,
		Visible:         cfg.Visible,
		CreateIfMissing: cfg.Create,
	}

	return asyncexcel.With(ctx, cfg.File, sheet, opts, func(s *asyncexcel.Session) error {
		log.Info().
			Str("file", s.Path()).
			Str("sheet", sheet.String()).
			Dur("interval", opts.PollInterval).
			Msg("watching workbook")
		return watch(ctx, s, opts.PollInterval)
	})
}

// watch drives the poll loop. Transient engine failures are logged and the
// loop re-enters on the next tick; structural errors abort.
func watch(ctx context.Context, s *asyncexcel.Session, interval time.Duration) error {
	for {
		err := s.Watch(ctx, logSnapshot)
		if errors.Is(err, context.Canceled) {
			log.Info().Msg("shutting down")
			return nil
		}
		var engineErr *asyncexcel.EngineError
		if errors.As(err, &engineErr) {
			log.Warn().Err(err).Msg("engine call failed, retrying next tick")
			select {
			case <-ctx.Done():
				log.Info().Msg("shutting down")
				return nil
			case <-time.After(interval):
			}
			continue
		}
		return err
	}
}

func logSnapshot(g asyncexcel.Grid) error {
	ev := log.Info().Int("rows", g.Rows()).Int("cols", g.Cols())
	for i := 0; i < g.Rows() && i < previewRows; i++ {
		ev = ev.Interface(fmt.Sprintf("row%d", i), g[i])
	}
	ev.Msg("sheet changed")
	return nil
}

func buildEngine(cfg config.Config) (asyncexcel.Engine, error) {
	switch cfg.Engine {
	case "com":
		return com.New(cfg.Visible)
	default:
		return xlsx.New(), nil
	}
}
