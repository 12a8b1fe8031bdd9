package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/aluiziolira/bookcatalog/models"
)

var csvHeader = []string{"title", "price", "stock", "rating", "image_url"}

// CSVWriter writes the catalog as CSV with a header row.
type CSVWriter struct {
	Atomic bool
}

// Write replaces path with the catalog rows.
func (cw *CSVWriter) Write(records []models.Record, path string) error {
	err := writeFile(path, cw.Atomic, func(w io.Writer) error {
		writer := csv.NewWriter(w)
		if err := writer.Write(csvHeader); err != nil {
			return fmt.Errorf("write csv header: %w", err)
		}
		for _, r := range records {
			row := []string{r.Title, r.Price, r.Stock, r.Rating, r.ImageURL}
			if err := writer.Write(row); err != nil {
				return fmt.Errorf("write csv record: %w", err)
			}
		}
		writer.Flush()
		if err := writer.Error(); err != nil {
			return fmt.Errorf("flush csv records: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("write csv: %w", err)
	}

	slog.Info("data saved", slog.String("path", path), slog.Int("records", len(records)))
	return nil
}

// DualWriter writes JSON to the given path and CSV next to it.
type DualWriter struct {
	JSON *JSONWriter
	CSV  *CSVWriter
}

// Write writes both files. The CSV path swaps the extension for .csv.
func (dw *DualWriter) Write(records []models.Record, path string) error {
	if err := dw.JSON.Write(records, path); err != nil {
		return err
	}
	if err := dw.CSV.Write(records, CSVPath(path)); err != nil {
		return err
	}
	return nil
}

// CSVPath derives the CSV companion of a JSON output path.
func CSVPath(path string) string {
	ext := filepath.Ext(path)
	if strings.EqualFold(ext, ".csv") {
		return path + ".csv"
	}
	return strings.TrimSuffix(path, ext) + ".csv"
}
