// Package cli is the timetag command line.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/sadopc/timetag/internal/app"
	"github.com/sadopc/timetag/internal/config"
	"github.com/sadopc/timetag/internal/i18n"
	"github.com/sadopc/timetag/internal/logging"
	"github.com/sadopc/timetag/internal/report"
	"github.com/sadopc/timetag/internal/tui"
)

// runtime carries what commands share: flags, the lazily opened app and
// the hooks tests replace.
type runtime struct {
	configPath string
	logFile    string
	logLevel   string

	app     *app.App
	closers []io.Closer

	isInteractive func() bool
	runTUI        func(*app.App) error
}

func newRuntime() *runtime {
	return &runtime{
		isInteractive: func() bool {
			return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
		},
		runTUI: tui.Run,
	}
}

// open loads configuration, sets up logging and wires the app once.
func (r *runtime) open(interactive bool) (*app.App, error) {
	if r.app != nil {
		return r.app, nil
	}
	cfg, err := config.Load(r.configPath)
	if err != nil {
		return nil, err
	}
	if r.logFile != "" {
		cfg.Log.File = r.logFile
	}
	if r.logLevel != "" {
		cfg.Log.Level = r.logLevel
	}

	logger, closer, err := logging.Setup(logging.Options{
		File:        cfg.Log.File,
		Level:       cfg.Log.Level,
		Pretty:      cfg.Log.Pretty,
		Interactive: interactive,
	})
	if err != nil {
		return nil, err
	}
	r.closers = append(r.closers, closer)
	if cfg.File != "" {
		logger.Debug().Str("file", cfg.File).Msg("config loaded")
	}

	a, err := app.Open(cfg, logger)
	if err != nil {
		return nil, err
	}
	r.app = a
	r.closers = append(r.closers, a)
	return a, nil
}

func (r *runtime) close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		r.closers[i].Close()
	}
	r.closers = nil
}

// upsell turns an entitlement refusal into the translated upgrade prompt.
func upsell(a *app.App, err error) error {
	if errors.Is(err, report.ErrEntitlementRequired) {
		return fmt.Errorf("%s: %w", a.Translator.T(i18n.Upsell), err)
	}
	return err
}

// Execute runs the root command.
func Execute() error {
	r := newRuntime()
	defer r.close()
	return newRootCmd(r).Execute()
}

func newRootCmd(r *runtime) *cobra.Command {
	root := &cobra.Command{
		Use:           "timetag",
		Short:         "Personal time tracker with categories, reports and exports",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !r.isInteractive() {
				return cmd.Help()
			}
			a, err := r.open(true)
			if err != nil {
				return err
			}
			return r.runTUI(a)
		},
	}

	root.PersistentFlags().StringVar(&r.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/timetag/config.yaml)")
	root.PersistentFlags().StringVar(&r.logFile, "log-file", "", "write logs to this file")
	root.PersistentFlags().StringVar(&r.logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")

	root.AddCommand(
		newTrackCmd(r),
		newHistoryCmd(r),
		newTotalsCmd(r),
		newTrendCmd(r),
		newExportCmd(r),
		newCategoryCmd(r),
		newZoneCmd(r),
		newLangCmd(r),
		newProCmd(r),
		newClearCmd(r),
		newConfigCmd(),
	)
	return root
}
