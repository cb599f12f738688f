package cli

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/sadopc/timetag/internal/export"
	"github.com/sadopc/timetag/internal/i18n"
	"github.com/sadopc/timetag/internal/report"
	"github.com/sadopc/timetag/internal/zone"
)

func newHistoryCmd(r *runtime) *cobra.Command {
	var (
		limit int
		since string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List tracked entries, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := r.open(false)
			if err != nil {
				return err
			}
			entries, err := a.Visible()
			if err != nil {
				return err
			}
			if since != "" {
				from, err := zone.ParseInZone(since, a.Zones.CurrentZone(), zone.DateLayout)
				if err != nil {
					return fmt.Errorf("--since: %w", err)
				}
				entries = report.Between(entries, from, a.Now())
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, a.Translator.T(i18n.NoEntries))
				return nil
			}

			loc := a.Zones.Location()
			now := a.Now()
			shown := 0
			for i := len(entries) - 1; i >= 0 && (limit <= 0 || shown < limit); i-- {
				e := entries[i]
				fmt.Fprintf(out, "%s  %-14s  %8s  %s\n",
					e.Local(loc).Format(zone.FullLayout),
					humanize.RelTime(e.OccurredAtUTC, now, "ago", "from now"),
					export.FormatDuration(e.DurationSeconds),
					a.Label(e.Category),
				)
				shown++
			}
			if !a.Gate.Entitled() {
				fmt.Fprintf(out, "\n%s\n", a.Translator.T(i18n.Upsell))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum entries to show (0 for all)")
	cmd.Flags().StringVar(&since, "since", "", "only entries from this local date (YYYY-MM-DD)")
	return cmd
}

func newTotalsCmd(r *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "totals",
		Short: "Show total tracked time per category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := r.open(false)
			if err != nil {
				return err
			}
			all, err := a.Entries.LoadAll()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			var sum int64
			for _, t := range a.Gate.Totals(all) {
				fmt.Fprintf(out, "%-20s %s\n", a.Label(t.Category), export.FormatDuration(t.TotalSeconds))
				sum += t.TotalSeconds
			}
			fmt.Fprintf(out, "%-20s %s\n", a.Translator.T(i18n.Total), export.FormatDuration(sum))
			return nil
		},
	}
}

func newTrendCmd(r *runtime) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:       "trend [daily|weekly|monthly]",
		Short:     "Show tracked time per day, week or month (pro)",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{string(report.Daily), string(report.Weekly), string(report.Monthly)},
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := r.open(false)
			if err != nil {
				return err
			}
			period := report.Daily
			if len(args) == 1 {
				period = report.Period(strings.ToLower(args[0]))
			}
			n := days
			if n <= 0 {
				n = defaultTrendDays(period)
			}

			buckets, err := a.Trend(period, n)
			if err != nil {
				return upsell(a, err)
			}
			var max int64
			for _, b := range buckets {
				if b.TotalSeconds > max {
					max = b.TotalSeconds
				}
			}
			out := cmd.OutOrStdout()
			for _, b := range buckets {
				fmt.Fprintf(out, "%-10s %s %s\n", b.Label, export.FormatDuration(b.TotalSeconds), bar(b.TotalSeconds, max, 30))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 0, "number of trailing days to cover")
	return cmd
}

func defaultTrendDays(p report.Period) int {
	switch p {
	case report.Weekly:
		return 28
	case report.Monthly:
		return 180
	}
	return 7
}

func bar(value, max int64, width int) string {
	if max <= 0 || value <= 0 {
		return ""
	}
	n := int(value * int64(width) / max)
	if n == 0 {
		n = 1
	}
	return strings.Repeat("█", n)
}

func newExportCmd(r *runtime) *cobra.Command {
	return &cobra.Command{
		Use:       "export [csv|json|xlsx]",
		Short:     "Export the full history to a file (pro)",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: export.Formats,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := r.open(false)
			if err != nil {
				return err
			}
			format := "csv"
			if len(args) == 1 {
				format = args[0]
			}
			all, err := a.Entries.LoadAll()
			if err != nil {
				return err
			}
			path, err := a.Exporter().Export(format, all)
			if err != nil {
				return upsell(a, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d entries to %s\n", len(all), path)
			return nil
		},
	}
}
