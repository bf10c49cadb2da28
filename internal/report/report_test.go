package report

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"
)

func sampleEntries() []Entry {
	at := time.Date(2025, 6, 4, 10, 0, 0, 0, time.UTC)
	return []Entry{
		{CreatedAt: at, OwnerName: "Ana", PetName: "Rex", PetSpecies: "dog", Grooming: true, Rating: 5, Sentiment: "good", Comment: "Wonderful, thanks!"},
		{CreatedAt: at.Add(-time.Hour), OwnerName: "Ben", PetName: "Tom", PetSpecies: "cat", Rating: 1, Sentiment: "bad", Comment: `He came back "upset", sadly`},
	}
}

func TestForFormat(t *testing.T) {
	tests := []struct {
		format  string
		want    Exporter
		wantErr bool
	}{
		{"", Text{}, false},
		{"text", Text{}, false},
		{"CSV", CSV{}, false},
		{"pdf", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			got, err := ForFormat(tt.format)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ForFormat(%q) = %T, want %T", tt.format, got, tt.want)
			}
		})
	}
}

func TestTextExport(t *testing.T) {
	a, err := Text{}.Export("Good Reviews", sampleEntries())
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if a.Filename != "good-reviews.txt" {
		t.Errorf("filename = %q", a.Filename)
	}
	if !strings.HasPrefix(a.ContentType, "text/plain") {
		t.Errorf("content type = %q", a.ContentType)
	}

	body := string(a.Body)
	for _, want := range []string{
		"Good Reviews\n============",
		"Rex (dog)",
		"grooming",
		"5/5",
		"Total: 2 (good 1, neutral 0, bad 1)",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q:\n%s", want, body)
		}
	}
}

func TestTextExportEmpty(t *testing.T) {
	a, err := Text{}.Export("Reviews", nil)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.Contains(string(a.Body), "No reviews.") {
		t.Errorf("body = %q", a.Body)
	}
}

func TestCSVExport(t *testing.T) {
	a, err := CSV{}.Export("Reviews", sampleEntries())
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if a.Filename != "reviews.csv" {
		t.Errorf("filename = %q", a.Filename)
	}

	records, err := csv.NewReader(bytes.NewReader(a.Body)).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}
	if records[0][0] != "created_at" {
		t.Errorf("header = %v", records[0])
	}
	if records[1][0] != "2025-06-04T10:00:00Z" || records[1][4] != "true" || records[1][6] != "5" {
		t.Errorf("row 1 = %v", records[1])
	}
	if records[2][8] != `He came back "upset", sadly` {
		t.Errorf("quoted comment = %q", records[2][8])
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate short = %q", got)
	}
	if got := truncate("abcdefghijkl", 8); got != "abcde..." {
		t.Errorf("truncate long = %q", got)
	}
}

func TestServices(t *testing.T) {
	if got := (Entry{}).Services(); got != "-" {
		t.Errorf("no services = %q", got)
	}
	if got := (Entry{Grooming: true, Walking: true}).Services(); got != "grooming+walking" {
		t.Errorf("both services = %q", got)
	}
}

func TestFilename(t *testing.T) {
	tests := map[string]string{
		"Pawstay Reviews (good)": "pawstay-reviews-good",
		"":                       "report",
		"!!!":                    "report",
	}
	for title, want := range tests {
		if got := filename(title, "txt"); got != want+".txt" {
			t.Errorf("filename(%q) = %q, want %q", title, got, want+".txt")
		}
	}
}
