package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/evcraddock/pawstay/internal/appointment"
	"github.com/evcraddock/pawstay/internal/dailylog"
	"github.com/evcraddock/pawstay/internal/dashboard"
	"github.com/evcraddock/pawstay/internal/lifecycle"
	"github.com/evcraddock/pawstay/internal/occupancy"
	"github.com/evcraddock/pawstay/internal/review"
)

const timeLayout = "2006-01-02 15:04"

// printJSON marshals v as indented JSON and writes it to w.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printAppointment prints a single appointment in text format.
func printAppointment(w io.Writer, a *appointment.Appointment) {
	fmt.Fprintf(w, "Appointment %s\n", a.ID)
	fmt.Fprintf(w, "  Status:   %s\n", a.Status.Label())
	fmt.Fprintf(w, "  Owner:    %s <%s>\n", a.OwnerName, a.OwnerEmail)
	if a.OwnerPhone != "" {
		fmt.Fprintf(w, "  Phone:    %s\n", a.OwnerPhone)
	}
	pet := fmt.Sprintf("%s (%s)", a.PetName, a.PetSpecies)
	if a.PetBreed != "" {
		pet = fmt.Sprintf("%s (%s, %s)", a.PetName, a.PetSpecies, a.PetBreed)
	}
	fmt.Fprintf(w, "  Pet:      %s\n", pet)
	fmt.Fprintf(w, "  Stay:     %s → %s (%s)\n", a.DropOff, a.PickUp, formatNights(a.Nights))
	fmt.Fprintf(w, "  Services: %s\n", formatServices(a.Grooming, a.Walking))
	if a.HealthNotes != "" {
		fmt.Fprintf(w, "  Health:   %s\n", a.HealthNotes)
	}
	if a.FoodNotes != "" {
		fmt.Fprintf(w, "  Food:     %s\n", a.FoodNotes)
	}
	if a.DecidedBy != "" {
		fmt.Fprintf(w, "  Decided:  by %s\n", a.DecidedBy)
	}
	if a.RejectedFrom != nil {
		fmt.Fprintf(w, "  Rejected: while %s\n", *a.RejectedFrom)
	}
	if a.DecisionNote != "" {
		fmt.Fprintf(w, "  Note:     %s\n", a.DecisionNote)
	}
}

// printDetail prints an appointment with its stays and care log.
func printDetail(w io.Writer, d *lifecycle.Detail) {
	printAppointment(w, d.Appointment)
	fmt.Fprintln(w)

	if len(d.Occupancies) == 0 {
		fmt.Fprintln(w, "Not checked in yet.")
	} else {
		fmt.Fprintf(w, "Stays (%d):\n", len(d.Occupancies))
		for _, o := range d.Occupancies {
			printOccupancy(w, o)
		}
	}
	fmt.Fprintln(w)

	if len(d.Logs) == 0 {
		fmt.Fprintln(w, "No daily logs.")
		return
	}
	fmt.Fprintf(w, "Daily logs (%d):\n", len(d.Logs))
	printLogs(w, d.Logs)
}

// printOccupancy prints one occupancy record on a line.
func printOccupancy(w io.Writer, o *occupancy.Occupancy) {
	in := fmt.Sprintf("in %s by %s", o.CheckedInAt.Local().Format(timeLayout), valueOr(o.CheckedInBy, "?"))
	if o.Open() {
		fmt.Fprintf(w, "  %s  %s, still here\n", o.ID, in)
		return
	}
	fmt.Fprintf(w, "  %s  %s, out %s by %s\n", o.ID, in,
		o.CheckedOutAt.Local().Format(timeLayout), valueOr(o.CheckedOutBy, "?"))
}

// printLogs prints daily log entries in text format.
func printLogs(w io.Writer, logs []*dailylog.Entry) {
	if len(logs) == 0 {
		fmt.Fprintln(w, "No daily logs.")
		return
	}

	for _, e := range logs {
		fmt.Fprintf(w, "[%s] mood: %s (%s)\n", e.LogDate, e.Mood, valueOr(e.Author, "anonymous"))
		for _, line := range []struct{ label, text string }{
			{"Feeding", e.Feeding},
			{"Play", e.Play},
			{"Walk", e.Walk},
			{"Grooming", e.Grooming},
			{"Note", e.Note},
		} {
			if line.text != "" {
				fmt.Fprintf(w, "  %-9s %s\n", line.label+":", line.text)
			}
		}
		fmt.Fprintln(w)
	}
}

// printSummaryTable prints Pending or Upcoming rows.
func printSummaryTable(w io.Writer, rows []dashboard.Summary, empty string) error {
	if len(rows) == 0 {
		fmt.Fprintln(w, empty)
		return nil
	}

	return writeTable(w, len(rows), "appointments",
		[]string{"ID", "OWNER", "PET", "DROP-OFF", "PICK-UP", "NIGHTS", "SERVICES"},
		func(tw io.Writer) error {
			for _, r := range rows {
				if _, err := fmt.Fprintf(tw, "%s\t%s\t%s (%s)\t%s\t%s\t%d\t%s\n",
					r.ID, truncate(r.OwnerName, 24), r.PetName, r.PetSpecies,
					r.DropOff, r.PickUp, r.Nights, formatServices(r.Grooming, r.Walking)); err != nil {
					return err
				}
			}
			return nil
		})
}

// printOccupants prints Today's Occupants.
func printOccupants(w io.Writer, rows []dashboard.Occupant) error {
	if len(rows) == 0 {
		fmt.Fprintln(w, "No pets checked in.")
		return nil
	}

	return writeTable(w, len(rows), "pets on site",
		[]string{"OCCUPANCY", "PET", "OWNER", "PHONE", "SINCE", "PICK-UP", "MOOD"},
		func(tw io.Writer) error {
			for _, r := range rows {
				mood := "-"
				if r.LastMood != nil {
					mood = *r.LastMood
				}
				pet := r.PetName
				if r.PetSpecies != "" {
					pet = fmt.Sprintf("%s (%s)", r.PetName, r.PetSpecies)
				}
				if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
					r.OccupancyID, pet, truncate(r.OwnerName, 24), valueOr(r.OwnerPhone, "-"),
					r.CheckedInAt.Local().Format(timeLayout), valueOr(r.PickUp, "-"), mood); err != nil {
					return err
				}
			}
			return nil
		})
}

// printHistory prints the History view.
func printHistory(w io.Writer, rows []dashboard.HistoryRow) error {
	if len(rows) == 0 {
		fmt.Fprintln(w, "No closed appointments.")
		return nil
	}

	return writeTable(w, len(rows), "appointments",
		[]string{"ID", "PET", "OWNER", "STAY", "OUTCOME", "BY", "NOTE"},
		func(tw io.Writer) error {
			for _, r := range rows {
				outcome := r.Status
				if r.RejectedFrom != nil {
					outcome = fmt.Sprintf("%s (was %s)", r.Status, *r.RejectedFrom)
				}
				if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\t%s → %s\t%s\t%s\t%s\n",
					r.ID, r.PetName, truncate(r.OwnerName, 24), r.DropOff, r.PickUp,
					outcome, valueOr(r.DecidedBy, "-"), truncate(r.DecisionNote, 40)); err != nil {
					return err
				}
			}
			return nil
		})
}

// printReviewTable prints the Reviews view.
func printReviewTable(w io.Writer, rows []dashboard.ReviewRow) error {
	if len(rows) == 0 {
		fmt.Fprintln(w, "No reviews.")
		return nil
	}

	return writeTable(w, len(rows), "reviews",
		[]string{"ID", "DATE", "OWNER", "PET", "RATING", "SENTIMENT", "COMMENT"},
		func(tw io.Writer) error {
			for _, r := range rows {
				owner := r.OwnerName
				if r.Dangling {
					owner += " *"
				}
				if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
					r.ID, r.CreatedAt.Local().Format("2006-01-02"), truncate(owner, 24), r.PetName,
					formatRating(r.Rating), r.Sentiment, truncate(r.Comment, 50)); err != nil {
					return err
				}
			}
			return nil
		})
}

// printReview prints a single review in text format.
func printReview(w io.Writer, rv *review.Review) {
	fmt.Fprintf(w, "Review %s added.\n", rv.ID)
	fmt.Fprintf(w, "  Owner:     %s\n", rv.OwnerName)
	if rv.PetName != "" {
		fmt.Fprintf(w, "  Pet:       %s\n", rv.PetName)
	}
	fmt.Fprintf(w, "  Rating:    %s\n", formatRating(rv.Rating))
	fmt.Fprintf(w, "  Sentiment: %s\n", rv.Sentiment)
}

// writeTable writes a tab-aligned table with a header, separator and total.
func writeTable(w io.Writer, n int, noun string, header []string, rows func(io.Writer) error) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, strings.Join(header, "\t")); err != nil {
		return fmt.Errorf("writing table header: %w", err)
	}
	sep := make([]string, len(header))
	for i, h := range header {
		sep[i] = strings.Repeat("-", len(h))
	}
	if _, err := fmt.Fprintln(tw, strings.Join(sep, "\t")); err != nil {
		return fmt.Errorf("writing table separator: %w", err)
	}
	if err := rows(tw); err != nil {
		return fmt.Errorf("writing table row: %w", err)
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("flushing table: %w", err)
	}

	fmt.Fprintf(w, "\nTotal: %d %s\n", n, noun)
	return nil
}

// formatRating returns a star representation of a rating (1-5).
func formatRating(rating int) string {
	if rating < 1 {
		rating = 1
	}
	if rating > 5 {
		rating = 5
	}
	return strings.Repeat("★", rating) + strings.Repeat("☆", 5-rating)
}

// formatServices lists the extra services booked.
func formatServices(grooming, walking bool) string {
	var s []string
	if grooming {
		s = append(s, "grooming")
	}
	if walking {
		s = append(s, "walking")
	}
	if len(s) == 0 {
		return "-"
	}
	return strings.Join(s, ", ")
}

func formatNights(n int) string {
	if n == 1 {
		return "1 night"
	}
	return fmt.Sprintf("%d nights", n)
}

// truncate shortens a string to maxLen runes, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
