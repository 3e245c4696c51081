package files

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
)

// parsesAsCSV reports whether the sample parses as at least one CSV record.
func parsesAsCSV(sample []byte) bool {
	r := csv.NewReader(strings.NewReader(string(sample)))
	r.FieldsPerRecord = -1
	record, err := r.Read()
	return err == nil && len(record) > 0
}

// summarizeCSV reads the file as CSV and produces a summary with row and
// column counts, column names, and the first previewRows data rows. The file
// is streamed so large uploads never load fully into memory.
func summarizeCSV(path string, previewRows int) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return "", errors.New("the file is empty")
	}
	if err != nil {
		return "", fmt.Errorf("there was a problem parsing the file: %w", err)
	}

	var preview [][]string
	rowCount := 0
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("there was a problem parsing the file: %w", err)
		}
		if rowCount < previewRows {
			preview = append(preview, record)
		}
		rowCount++
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "CSV file with %d rows and %d columns.\n", rowCount, len(header))
	fmt.Fprintf(&sb, "Columns: %s.\n", strings.Join(header, ", "))
	fmt.Fprintf(&sb, "First %d rows:\n", previewRows)
	sb.WriteString(renderTable(header, preview))

	return sb.String(), nil
}

// renderTable formats a header and rows as aligned columns.
func renderTable(header []string, rows [][]string) string {
	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(header, "\t"))
	for _, row := range rows {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	_ = w.Flush()
	return sb.String()
}
