package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for workshopper.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workshopper",
		Short: "Collect Steam workshop statistics for a user",
		Long: `workshopper walks a Steam user's workshop listing, visits every item page
and collects its statistics: visitors, subscribers, favorites, awards,
comments, file size, dates and change notes. Aircraft liveries are matched
to their airframe from the item description.

Results are exported to .xlsx (default), .csv, .json or .md and every run
is kept in a local history database for later comparison.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	cmd.AddCommand(NewScrapeCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewCompareCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
