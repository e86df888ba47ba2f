package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
)

// Dataset is one tabular export: a ranked match list or a leaderboard page.
// Rows are keyed by header so sparse rows render empty cells.
type Dataset struct {
	Title   string
	Headers []string
	Rows    []map[string]string
	// Footer, when set, is written as a last row keyed the same way.
	Footer map[string]string
}

// CSVExporter writes datasets as RFC 4180 CSV.
type CSVExporter struct {
	comma rune
}

// NewCSVExporter builds a comma separated exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{comma: ','}
}

func (e *CSVExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("csv requires at least one header")
	}

	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	writer.Comma = e.comma
	if err := writer.Write(data.Headers); err != nil {
		return nil, fmt.Errorf("write csv headers: %w", err)
	}

	rows := data.Rows
	if data.Footer != nil {
		rows = append(rows[:len(rows):len(rows)], data.Footer)
	}
	for n, row := range rows {
		if err := writer.Write(csvRecord(data.Headers, row)); err != nil {
			return nil, fmt.Errorf("write csv row %d: %w", n+1, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

func csvRecord(headers []string, row map[string]string) []string {
	record := make([]string, len(headers))
	for i, header := range headers {
		record[i] = neutralizeCell(row[header])
	}
	return record
}

// neutralizeCell stops spreadsheet apps from evaluating student supplied text
// such as names or skills as formulas. Plain numbers are left alone.
func neutralizeCell(value string) string {
	if value == "" || isNumeric(value) {
		return value
	}
	switch value[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + value
	}
	return value
}

func isNumeric(value string) bool {
	value = strings.TrimPrefix(value, "-")
	if value == "" {
		return false
	}
	dot := false
	for _, r := range value {
		switch {
		case r == '.' && !dot:
			dot = true
		case r < '0' || r > '9':
			return false
		}
	}
	return true
}
