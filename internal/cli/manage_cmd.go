package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sadopc/timetag/internal/config"
	"github.com/sadopc/timetag/internal/i18n"
	"github.com/sadopc/timetag/internal/zone"
)

func newCategoryCmd(r *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "category",
		Aliases: []string{"cat"},
		Short:   "Manage categories",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := r.open(false)
			if err != nil {
				return err
			}
			for _, c := range a.Categories.List() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-36s  %-10s  %s\n", c.ID, c.Icon, c.DisplayName)
			}
			return nil
		},
	}

	var icon string
	add := &cobra.Command{
		Use:   "add NAME",
		Short: "Add a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := r.open(false)
			if err != nil {
				return err
			}
			c, err := a.Categories.Add(args[0], icon)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%s)\n", c.DisplayName, c.ID)
			return nil
		},
	}
	add.Flags().StringVar(&icon, "icon", "tag", "icon name")

	remove := &cobra.Command{
		Use:     "remove NAME|ID",
		Aliases: []string{"rm"},
		Short:   "Remove a category; its entries keep their reference",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := r.open(false)
			if err != nil {
				return err
			}
			c, err := a.Categories.Resolve(args[0])
			if err != nil {
				return err
			}
			if err := a.Categories.Remove(c.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", c.DisplayName)
			return nil
		},
	}

	cmd.AddCommand(list, add, remove)
	return cmd
}

func newZoneCmd(r *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "zone",
		Short: "Show or override the time zone",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Show the active and device time zones",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := r.open(false)
				if err != nil {
					return err
				}
				device := zone.DeviceZone()
				if device == "" {
					device = "unknown"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "active: %s\ndevice: %s\n", a.Zones.CurrentZone(), device)
				return nil
			},
		},
		&cobra.Command{
			Use:   "set ZONE",
			Short: "Override the time zone with an IANA name",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := r.open(false)
				if err != nil {
					return err
				}
				if err := a.Zones.SetZone(args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Time zone set to %s\n", args[0])
				return nil
			},
		},
	)
	return cmd
}

func newLangCmd(r *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lang",
		Short: "Show or change the display language",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Show the display language",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := r.open(false)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", a.Translator.T(i18n.Language), a.Translator.Language())
				return nil
			},
		},
		&cobra.Command{
			Use:       "set CODE",
			Short:     "Change the display language",
			Args:      cobra.ExactArgs(1),
			ValidArgs: i18n.Supported(),
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := r.open(false)
				if err != nil {
					return err
				}
				if err := a.Translator.SetLanguage(args[0]); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), a.Translator.T(i18n.Welcome))
				return nil
			},
		},
	)
	return cmd
}

func newProCmd(r *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pro",
		Short: "Show or change the pro entitlement",
	}
	set := func(use, short string, value bool) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := r.open(false)
				if err != nil {
					return err
				}
				if err := a.Entitlement.SetPurchased(value); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "pro: %t\n", value)
				return nil
			},
		}
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "status",
			Short: "Show whether pro is unlocked",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := r.open(false)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "pro: %t\n", a.Entitlement.IsEntitled())
				return nil
			},
		},
		set("enable", "Record a pro purchase", true),
		set("disable", "Revoke the pro purchase", false),
	)
	return cmd
}

func newClearCmd(r *runtime) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete the whole history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("refusing to clear history without --yes")
			}
			a, err := r.open(false)
			if err != nil {
				return err
			}
			if err := a.Entries.Clear(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "History cleared.")
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm deletion")
	return cmd
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration helpers",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "example",
		Short: "Print an example config file",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprint(cmd.OutOrStdout(), config.ExampleYAML())
		},
	})
	return cmd
}
