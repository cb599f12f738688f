package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/sadopc/timetag/internal/app"
	"github.com/sadopc/timetag/internal/entry"
	"github.com/sadopc/timetag/internal/i18n"
	"github.com/sadopc/timetag/internal/timer"
)

func resolveCategory(a *app.App, arg string) (entry.CategoryRef, error) {
	if arg == "" {
		return entry.Uncategorized, nil
	}
	c, err := a.Categories.Resolve(arg)
	if err != nil {
		return entry.Uncategorized, err
	}
	return c.Ref(), nil
}

func newTrackCmd(r *runtime) *cobra.Command {
	var limit, tick time.Duration

	cmd := &cobra.Command{
		Use:   "track [category]",
		Short: "Run a foreground stopwatch; Ctrl+C stops and saves it",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := r.open(false)
			if err != nil {
				return err
			}
			var arg string
			if len(args) == 1 {
				arg = args[0]
			}
			ref, err := resolveCategory(a, arg)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			if limit > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, limit)
				defer cancel()
			}

			if err := a.Timer.Start(ref); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %s\n", a.Translator.T(i18n.StartTracking), a.Label(ref))

			err = a.Timer.Run(ctx, tick, func(s timer.Snapshot) {
				fmt.Fprintf(out, "\r%s", a.Translator.Clock(s.ElapsedSeconds))
			})
			if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			fmt.Fprintln(out)

			saved, err := a.Timer.Stop(ref)
			if err != nil {
				return err
			}
			if saved == nil {
				fmt.Fprintln(out, "Nothing tracked.")
				return nil
			}
			fmt.Fprintf(out, "Saved %s %s\n", a.Translator.Clock(saved.DurationSeconds), a.Label(saved.Category))
			return nil
		},
	}

	cmd.Flags().DurationVar(&limit, "for", 0, "stop automatically after this long")
	cmd.Flags().DurationVar(&tick, "tick", time.Second, "tick interval")
	_ = cmd.Flags().MarkHidden("tick")
	return cmd
}
