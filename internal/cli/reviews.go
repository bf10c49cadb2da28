package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/evcraddock/pawstay/internal/review"
)

func newReviewsCmd() *cobra.Command {
	var sentiment string

	cmd := &cobra.Command{
		Use:   "reviews",
		Short: "List owner reviews",
		Long:  "List owner reviews newest first. Reviews marked * reference an appointment that no longer exists.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := newAPIClient().Reviews(cmd.Context(), sentiment)
			if err != nil {
				return err
			}
			if isJSON() {
				return printJSON(out(cmd), rows)
			}
			return printReviewTable(out(cmd), rows)
		},
	}

	cmd.Flags().StringVar(&sentiment, "sentiment", "", "only good, neutral or bad")

	return cmd
}

func newReviewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review",
		Short: "Add or remove a review",
	}
	cmd.AddCommand(newReviewAddCmd(), newReviewRemoveCmd())
	return cmd
}

func newReviewAddCmd() *cobra.Command {
	var in review.Input
	var grooming, walking bool

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record an owner review",
		Long:  "Record an owner review. With --appointment, owner, pet and services default to the booking's.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("grooming") {
				in.Grooming = &grooming
			}
			if cmd.Flags().Changed("walking") {
				in.Walking = &walking
			}
			rv, err := newAPIClient().AddReview(cmd.Context(), in)
			if err != nil {
				return fmt.Errorf("adding review: %w", err)
			}
			if isJSON() {
				return printJSON(out(cmd), rv)
			}
			printReview(out(cmd), rv)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&in.AppointmentID, "appointment", "", "appointment ID the review is about")
	f.StringVar(&in.OwnerName, "owner", "", "owner name")
	f.StringVar(&in.PetName, "pet", "", "pet name")
	f.StringVar(&in.PetSpecies, "species", "", "pet species")
	f.BoolVar(&grooming, "grooming", false, "stay included grooming")
	f.BoolVar(&walking, "walking", false, "stay included walks")
	f.IntVar(&in.Rating, "rating", 0, "rating (1-5)")
	f.StringVar(&in.Comment, "comment", "", "review text")
	_ = cmd.MarkFlagRequired("rating")

	return cmd
}

func newReviewRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <review-id>",
		Aliases: []string{"remove"},
		Short:   "Delete a review",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("review", args[0])
			if err != nil {
				return err
			}
			if err := newAPIClient().DeleteReview(cmd.Context(), id); err != nil {
				return err
			}
			if isJSON() {
				return printJSON(out(cmd), map[string]any{"id": id, "removed": true})
			}
			fmt.Fprintf(out(cmd), "Review %s removed.\n", id)
			return nil
		},
	}
}

func newExportCmd() *cobra.Command {
	var sentiment, exportFormat, output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export reviews as a report",
		Long:  "Download the reviews view as a plain-text or CSV report. Writes to stdout unless --output is given.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			art, err := newAPIClient().Export(cmd.Context(), sentiment, exportFormat)
			if err != nil {
				return err
			}

			if output == "" {
				_, err := out(cmd).Write(art.Body)
				return err
			}
			if output == "." {
				output = art.Filename
			}
			if err := os.WriteFile(output, art.Body, 0o644); err != nil {
				return fmt.Errorf("writing report: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s (%d bytes).\n", output, len(art.Body))
			return nil
		},
	}

	cmd.Flags().StringVar(&sentiment, "sentiment", "", "only good, neutral or bad")
	cmd.Flags().StringVar(&exportFormat, "type", "text", "report format (text|csv)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "file to write (\".\" uses the server's file name)")

	return cmd
}
