package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aluiziolira/bookcatalog/models"
)

// Indent is the per-level indentation of the JSON document.
const Indent = "    "

// JSONWriter writes the catalog as one pretty-printed JSON array.
// Non-ASCII text and HTML characters are written as-is.
type JSONWriter struct {
	Atomic bool
}

// Write replaces path with the encoded catalog.
func (jw *JSONWriter) Write(records []models.Record, path string) error {
	if records == nil {
		records = []models.Record{}
	}

	err := writeFile(path, jw.Atomic, func(w io.Writer) error {
		return EncodeJSON(w, records)
	})
	if err != nil {
		return fmt.Errorf("write json: %w", err)
	}

	slog.Info("data saved", slog.String("path", path), slog.Int("records", len(records)))
	return nil
}

// EncodeJSON writes records to w in the output file format.
func EncodeJSON(w io.Writer, records []models.Record) error {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", Indent)
	if err := encoder.Encode(records); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	if _, err := w.Write(unescapeLineSeparators(buf.Bytes())); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}

// unescapeLineSeparators turns the \u2028 and \u2029 escapes that
// encoding/json always emits back into the raw characters. Other escape
// pairs are copied untouched so an escaped backslash is never misread.
func unescapeLineSeparators(data []byte) []byte {
	if !bytes.Contains(data, []byte(`\u202`)) {
		return data
	}
	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); i++ {
		if data[i] != '\\' || i+1 == len(data) {
			out = append(out, data[i])
			continue
		}
		if i+6 <= len(data) {
			switch string(data[i : i+6]) {
			case `\u2028`:
				out = append(out, "\u2028"...)
				i += 5
				continue
			case `\u2029`:
				out = append(out, "\u2029"...)
				i += 5
				continue
			}
		}
		out = append(out, data[i], data[i+1])
		i++
	}
	return out
}

// ReadJSON loads a catalog written by JSONWriter.
func ReadJSON(path string) ([]models.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read json: %w", err)
	}
	var records []models.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	return records, nil
}
