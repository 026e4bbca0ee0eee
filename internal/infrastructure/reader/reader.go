package reader

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/MadeByDW91/gokartpartpicker.com/internal/domain"
)

// Format is an input file format
type Format string

const (
	FormatCSV   Format = "csv"
	FormatTSV   Format = "tsv"
	FormatJSON  Format = "json"
	FormatJSONL Format = "jsonl"
)

// extensionFormats maps file suffixes to formats. Unlisted suffixes read as CSV.
var extensionFormats = map[string]Format{
	".csv":   FormatCSV,
	".json":  FormatJSON,
	".jsonl": FormatJSONL,
	".tsv":   FormatTSV,
	".txt":   FormatTSV,
}

// ParseFormat validates a format name. An empty name returns "" so callers can
// fall back to detection.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case FormatCSV, FormatTSV, FormatJSON, FormatJSONL, "":
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", domain.ErrUnknownFormat, name)
}

// DetectFormat picks a format from the file extension
func DetectFormat(path string) Format {
	if f, ok := extensionFormats[strings.ToLower(filepath.Ext(path))]; ok {
		return f
	}
	return FormatCSV
}

// ReadFile reads every row of path. An empty format is detected from the
// extension.
func ReadFile(path string, format Format) ([]domain.Row, error) {
	if format == "" {
		format = DetectFormat(path)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	return Read(file, format)
}

// Read parses r as format
func Read(r io.Reader, format Format) ([]domain.Row, error) {
	switch format {
	case FormatCSV:
		return readDelimited(r, ',')
	case FormatTSV:
		return readDelimited(r, '\t')
	case FormatJSON:
		return readJSON(r)
	case FormatJSONL:
		return readJSONLines(r)
	}
	return nil, fmt.Errorf("%w: %q", domain.ErrUnknownFormat, format)
}

// readDelimited reads a header row and then one row per line. Cell values are
// trimmed; short lines leave their trailing columns empty.
func readDelimited(r io.Reader, delimiter rune) ([]domain.Row, error) {
	cr := csv.NewReader(r)
	cr.Comma = delimiter
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	headers, err := cr.Read()
	if err == io.EOF {
		return []domain.Row{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header row: %w", err)
	}
	for i, h := range headers {
		headers[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	rows := []domain.Row{}
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", len(rows)+2, err)
		}

		row := make(domain.Row, len(headers))
		for i, h := range headers {
			if h == "" {
				continue
			}
			value := ""
			if i < len(record) {
				value = strings.TrimSpace(record[i])
			}
			row[h] = value
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// readJSON accepts an array of objects or a single object
func readJSON(r io.Reader) ([]domain.Row, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return []domain.Row{}, nil
	}

	if data[0] == '[' {
		var rows []domain.Row
		if err := decode(data, &rows); err != nil {
			return nil, fmt.Errorf("failed to decode JSON array: %w", err)
		}
		if rows == nil {
			rows = []domain.Row{}
		}
		return rows, nil
	}

	var row domain.Row
	if err := decode(data, &row); err != nil {
		return nil, fmt.Errorf("failed to decode JSON object: %w", err)
	}
	return []domain.Row{row}, nil
}

// readJSONLines decodes one object per non-blank line
func readJSONLines(r io.Reader) ([]domain.Row, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	rows := []domain.Row{}
	line := 0
	for scanner.Scan() {
		line++
		text := bytes.TrimSpace(scanner.Bytes())
		if len(text) == 0 {
			continue
		}
		var row domain.Row
		if err := decode(text, &row); err != nil {
			return nil, fmt.Errorf("failed to decode line %d: %w", line, err)
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return rows, nil
}

// decode keeps numbers as json.Number so "68.0" and "68" stay distinguishable
func decode(data []byte, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}
