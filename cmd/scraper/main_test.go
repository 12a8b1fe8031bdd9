package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aluiziolira/bookcatalog/models"
	"github.com/aluiziolira/bookcatalog/output"
)

func writeCatalog(t *testing.T, records []models.Record) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "books_data.json")
	if err := (&output.JSONWriter{}).Write(records, path); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestVerifyOutput(t *testing.T) {
	good := models.Record{
		Title:    "A Light in the Attic",
		Price:    "£51.77",
		Stock:    "In stock",
		Rating:   "Three",
		ImageURL: "http://books.toscrape.com/media/cache/2c/da/2cdad67c44b002e7ead0cc35693c0e8b.jpg",
	}
	badRating := good
	badRating.Rating = "Six"
	noTitle := good
	noTitle.Title = ""

	tests := []struct {
		name    string
		records []models.Record
		want    int
		wantErr string
	}{
		{name: "valid", records: []models.Record{good, good}, want: 2},
		{name: "empty catalog", records: nil, want: 0},
		{name: "count mismatch", records: []models.Record{good}, want: 2, wantErr: "holds 1 records, want 2"},
		{name: "invalid rating", records: []models.Record{good, badRating}, want: 2, wantErr: "record 2"},
		{name: "missing title", records: []models.Record{noTitle}, want: 1, wantErr: "missing title"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := verifyOutput(writeCatalog(t, tt.records), tt.want)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("verify: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("err=%v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestVerifyOutputUnreadable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "books_data.json")
	if err := os.WriteFile(path, []byte("not json"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := verifyOutput(path, 0); err == nil {
		t.Fatalf("expected decode error")
	}
	if err := verifyOutput(filepath.Join(t.TempDir(), "missing.json"), 0); err == nil {
		t.Fatalf("expected read error")
	}
}
