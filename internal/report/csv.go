package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"
)

// CSV renders a spreadsheet-friendly report.
type CSV struct{}

// Export renders entries as RFC 4180 CSV with a header row.
func (CSV) Export(title string, entries []Entry) (*Artifact, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"created_at", "owner_name", "pet_name", "pet_species", "grooming", "walking", "rating", "sentiment", "comment"}
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("writing csv header: %w", err)
	}
	for _, e := range entries {
		rec := []string{
			e.CreatedAt.UTC().Format(time.RFC3339),
			e.OwnerName,
			e.PetName,
			e.PetSpecies,
			strconv.FormatBool(e.Grooming),
			strconv.FormatBool(e.Walking),
			strconv.Itoa(e.Rating),
			e.Sentiment,
			e.Comment,
		}
		if err := w.Write(rec); err != nil {
			return nil, fmt.Errorf("writing csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flushing csv: %w", err)
	}

	return &Artifact{
		ContentType: "text/csv; charset=utf-8",
		Filename:    filename(title, "csv"),
		Body:        buf.Bytes(),
	}, nil
}
