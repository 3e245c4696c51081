package files

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// summarizeExcel reads the workbook and produces a per-sheet summary with row
// and column counts, column names, and the first previewRows data rows.
func summarizeExcel(path string, previewRows int) (string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to open Excel workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", fmt.Errorf("the Excel file is empty")
	}

	var parts []string
	for _, sheet := range sheets {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return "", fmt.Errorf("failed to read sheet %q: %w", sheet, err)
		}

		if len(rows) == 0 {
			parts = append(parts, fmt.Sprintf("Sheet '%s' is empty.", sheet))
			continue
		}

		header := rows[0]
		data := rows[1:]
		preview := data
		if len(preview) > previewRows {
			preview = preview[:previewRows]
		}

		var sb strings.Builder
		fmt.Fprintf(&sb, "Sheet '%s' has %d rows and %d columns. ", sheet, len(data), len(header))
		fmt.Fprintf(&sb, "Columns: %s. First few rows:\n", strings.Join(header, ", "))
		sb.WriteString(renderTable(header, preview))
		parts = append(parts, sb.String())
	}

	return strings.Join(parts, "\n\n"), nil
}
