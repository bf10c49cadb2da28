package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/evcraddock/pawstay/internal/appointment"
	"github.com/evcraddock/pawstay/internal/dailylog"
)

func newSubmitCmd() *cobra.Command {
	var in appointment.Input

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Book a stay",
		Long:  "Submit a booking request on behalf of an owner. It starts out pending until staff approve it.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newAPIClient().Submit(cmd.Context(), in)
			if err != nil {
				return fmt.Errorf("submitting appointment: %w", err)
			}
			if isJSON() {
				return printJSON(out(cmd), a)
			}
			fmt.Fprintln(out(cmd), "Appointment submitted.")
			printAppointment(out(cmd), a)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&in.OwnerName, "owner", "", "owner name")
	f.StringVar(&in.OwnerEmail, "email", "", "owner email")
	f.StringVar(&in.OwnerPhone, "phone", "", "owner phone")
	f.StringVar(&in.PetName, "pet", "", "pet name")
	f.StringVar(&in.PetSpecies, "species", "", "pet species (dog, cat, ...)")
	f.StringVar(&in.PetBreed, "breed", "", "pet breed")
	f.StringVar(&in.DropOff, "drop-off", "", "drop-off date (YYYY-MM-DD)")
	f.StringVar(&in.PickUp, "pick-up", "", "pick-up date (YYYY-MM-DD)")
	f.BoolVar(&in.Grooming, "grooming", false, "add grooming")
	f.BoolVar(&in.Walking, "walking", false, "add walks")
	f.StringVar(&in.HealthNotes, "health", "", "health notes")
	f.StringVar(&in.FoodNotes, "food", "", "food notes")
	for _, name := range []string{"owner", "email", "pet", "species", "drop-off", "pick-up"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <appointment-id>",
		Short: "Show appointment details",
		Long:  "Show an appointment with its check-in history and daily care log.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("appointment", args[0])
			if err != nil {
				return err
			}
			d, err := newAPIClient().Detail(cmd.Context(), id)
			if err != nil {
				return err
			}
			if isJSON() {
				return printJSON(out(cmd), d)
			}
			printDetail(out(cmd), d)
			return nil
		},
	}
}

func newApproveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "approve <appointment-id>",
		Short: "Approve a pending appointment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("appointment", args[0])
			if err != nil {
				return err
			}
			a, err := newAPIClient().Approve(cmd.Context(), id)
			if err != nil {
				return err
			}
			if isJSON() {
				return printJSON(out(cmd), a)
			}
			fmt.Fprintf(out(cmd), "Appointment %s approved (%s, %s → %s).\n", a.ID, a.PetName, a.DropOff, a.PickUp)
			return nil
		},
	}
}

func newRejectCmd() *cobra.Command {
	var note string

	cmd := &cobra.Command{
		Use:   "reject <appointment-id>",
		Short: "Reject or cancel an appointment",
		Long:  "Reject a pending appointment, or cancel an approved one before the pet is checked in.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("appointment", args[0])
			if err != nil {
				return err
			}
			a, err := newAPIClient().Reject(cmd.Context(), id, note)
			if err != nil {
				return err
			}
			if isJSON() {
				return printJSON(out(cmd), a)
			}
			fmt.Fprintf(out(cmd), "Appointment %s rejected.\n", a.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&note, "note", "", "reason shared with the owner")

	return cmd
}

func newCheckInCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "checkin <appointment-id>",
		Short: "Check a pet in",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("appointment", args[0])
			if err != nil {
				return err
			}
			o, err := newAPIClient().CheckIn(cmd.Context(), id)
			if err != nil {
				return err
			}
			if isJSON() {
				return printJSON(out(cmd), o)
			}
			fmt.Fprintf(out(cmd), "Checked in. Occupancy %s\n", o.ID)
			return nil
		},
	}
}

func newCheckOutCmd() *cobra.Command {
	var at string

	cmd := &cobra.Command{
		Use:   "checkout <occupancy-id>",
		Short: "Check a pet out",
		Long:  "Close an occupancy record and mark its appointment completed. The owner is invited to leave a review.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("occupancy", args[0])
			if err != nil {
				return err
			}
			var when time.Time
			if at != "" {
				when, err = time.Parse(time.RFC3339, at)
				if err != nil {
					return fmt.Errorf("invalid --at time (use RFC 3339, e.g. 2025-06-03T17:00:00Z): %s", at)
				}
			}
			o, err := newAPIClient().CheckOut(cmd.Context(), id, when)
			if err != nil {
				return err
			}
			if isJSON() {
				return printJSON(out(cmd), o)
			}
			fmt.Fprintf(out(cmd), "Checked out at %s.\n", o.CheckedOutAt.Local().Format(timeLayout))
			return nil
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "check-out time (RFC 3339, default now)")

	return cmd
}

func newLogCmd() *cobra.Command {
	var in dailylog.Input
	var list bool

	cmd := &cobra.Command{
		Use:   "log <appointment-id>",
		Short: "Add or list daily care logs",
		Long:  "Record how a checked-in pet's day went, or list its entries with --list.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("appointment", args[0])
			if err != nil {
				return err
			}
			c := newAPIClient()

			if list {
				logs, err := c.Logs(cmd.Context(), id)
				if err != nil {
					return err
				}
				if isJSON() {
					return printJSON(out(cmd), logs)
				}
				printLogs(out(cmd), logs)
				return nil
			}

			if in.LogDate == "" {
				in.LogDate = time.Now().Format(appointment.DateLayout)
			}
			e, err := c.AddDailyLog(cmd.Context(), id, in)
			if err != nil {
				return err
			}
			if isJSON() {
				return printJSON(out(cmd), e)
			}
			fmt.Fprintf(out(cmd), "Log added for %s (mood: %s).\n", e.LogDate, e.Mood)
			return nil
		},
	}

	f := cmd.Flags()
	f.BoolVar(&list, "list", false, "list entries instead of adding one")
	f.StringVar(&in.LogDate, "date", "", "log date (YYYY-MM-DD, default today)")
	f.StringVar(&in.Mood, "mood", "", "mood ("+moodNames()+")")
	f.StringVar(&in.Feeding, "feeding", "", "feeding notes")
	f.StringVar(&in.Play, "play", "", "play notes")
	f.StringVar(&in.Walk, "walk", "", "walk notes")
	f.StringVar(&in.Grooming, "grooming", "", "grooming notes")
	f.StringVar(&in.Note, "note", "", "anything else")

	return cmd
}

func moodNames() string {
	names := make([]string, len(dailylog.ValidMoods))
	for i, m := range dailylog.ValidMoods {
		names[i] = string(m)
	}
	return strings.Join(names, ", ")
}
