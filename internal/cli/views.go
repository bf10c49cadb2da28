package cli

import (
	"github.com/spf13/cobra"
)

func newPendingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pending",
		Short: "List appointments awaiting a decision",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := newAPIClient().Pending(cmd.Context())
			if err != nil {
				return err
			}
			if isJSON() {
				return printJSON(out(cmd), rows)
			}
			return printSummaryTable(out(cmd), rows, "No pending appointments.")
		},
	}
}

func newUpcomingCmd() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "upcoming",
		Short: "List approved stays that have not started",
		Long:  "List approved appointments dropping off on or after a date (default today) whose pets have not been checked in.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := newAPIClient().Upcoming(cmd.Context(), date)
			if err != nil {
				return err
			}
			if isJSON() {
				return printJSON(out(cmd), rows)
			}
			return printSummaryTable(out(cmd), rows, "No upcoming stays.")
		},
	}

	cmd.Flags().StringVar(&date, "from", "", "first drop-off date to include (YYYY-MM-DD)")

	return cmd
}

func newOccupantsCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "occupants",
		Aliases: []string{"here"},
		Short:   "List pets currently checked in",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := newAPIClient().Occupants(cmd.Context())
			if err != nil {
				return err
			}
			if isJSON() {
				return printJSON(out(cmd), rows)
			}
			return printOccupants(out(cmd), rows)
		},
	}
}

func newHistoryCmd() *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List completed and rejected appointments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := newAPIClient().History(cmd.Context(), status)
			if err != nil {
				return err
			}
			if isJSON() {
				return printJSON(out(cmd), rows)
			}
			return printHistory(out(cmd), rows)
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "only completed or rejected")

	return cmd
}
