package report

import (
	"bytes"
	"fmt"
	"text/tabwriter"
)

// Text renders a printable plain-text report.
type Text struct{}

// Export renders entries as an aligned table followed by a sentiment summary.
func (Text) Export(title string, entries []Entry) (*Artifact, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "%s\n%s\n\n", title, underline(title))

	if len(entries) == 0 {
		buf.WriteString("No reviews.\n")
	} else {
		w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
		if _, err := fmt.Fprintln(w, "DATE\tOWNER\tPET\tSERVICES\tRATING\tSENTIMENT\tCOMMENT"); err != nil {
			return nil, fmt.Errorf("writing table header: %w", err)
		}
		if _, err := fmt.Fprintln(w, "----\t-----\t---\t--------\t------\t---------\t-------"); err != nil {
			return nil, fmt.Errorf("writing table separator: %w", err)
		}
		for _, e := range entries {
			pet := e.PetName
			if e.PetSpecies != "" {
				pet = fmt.Sprintf("%s (%s)", e.PetName, e.PetSpecies)
			}
			if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				e.CreatedAt.Format("2006-01-02"), e.OwnerName, pet, e.Services(),
				stars(e.Rating), e.Sentiment, truncate(e.Comment, 60)); err != nil {
				return nil, fmt.Errorf("writing table row: %w", err)
			}
		}
		if err := w.Flush(); err != nil {
			return nil, fmt.Errorf("flushing table: %w", err)
		}
	}

	counts := map[string]int{}
	for _, e := range entries {
		counts[e.Sentiment]++
	}
	fmt.Fprintf(&buf, "\nTotal: %d (good %d, neutral %d, bad %d)\n",
		len(entries), counts["good"], counts["neutral"], counts["bad"])

	return &Artifact{
		ContentType: "text/plain; charset=utf-8",
		Filename:    filename(title, "txt"),
		Body:        buf.Bytes(),
	}, nil
}

func stars(n int) string {
	if n < 1 || n > 5 {
		return fmt.Sprintf("%d", n)
	}
	return fmt.Sprintf("%d/5", n)
}

func underline(s string) string {
	b := make([]byte, len([]rune(s)))
	for i := range b {
		b[i] = '='
	}
	return string(b)
}

// truncate shortens s to max runes, adding "..." if truncated.
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
