// Package report renders review listings as downloadable reports.
package report

import (
	"fmt"
	"strings"
	"time"
)

// Entry is one review line in a report.
type Entry struct {
	CreatedAt  time.Time
	OwnerName  string
	PetName    string
	PetSpecies string
	Grooming   bool
	Walking    bool
	Rating     int
	Sentiment  string
	Comment    string
}

// Services returns the booked services as a short label.
func (e Entry) Services() string {
	var s []string
	if e.Grooming {
		s = append(s, "grooming")
	}
	if e.Walking {
		s = append(s, "walking")
	}
	if len(s) == 0 {
		return "-"
	}
	return strings.Join(s, "+")
}

// Artifact is a rendered report. Callers treat Body as opaque.
type Artifact struct {
	ContentType string
	Filename    string
	Body        []byte
}

// Exporter renders entries into an artifact.
type Exporter interface {
	Export(title string, entries []Entry) (*Artifact, error)
}

// Formats lists the supported export formats.
var Formats = []string{"text", "csv"}

// ForFormat returns the exporter for a format name. Empty means text.
func ForFormat(format string) (Exporter, error) {
	switch strings.ToLower(format) {
	case "", "text", "txt":
		return Text{}, nil
	case "csv":
		return CSV{}, nil
	default:
		return nil, fmt.Errorf("unsupported export format %q (use %s)", format, strings.Join(Formats, " or "))
	}
}

func filename(title, ext string) string {
	slug := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return '-'
		}
	}, title)
	for strings.Contains(slug, "--") {
		slug = strings.ReplaceAll(slug, "--", "-")
	}
	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = "report"
	}
	return slug + "." + ext
}
