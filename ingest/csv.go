package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
)

const csvPreviewRows = 5

// previewCSV parses CSV content into header-keyed rows and builds a preview
// of the header plus the first few rows.
func previewCSV(content []byte, limit int) (string, any) {
	r := csv.NewReader(bytes.NewReader(content))
	r.FieldsPerRecord = -1 // tolerate ragged rows

	records, err := r.ReadAll()
	if err != nil {
		return fmt.Sprintf("[CSV parse error: %v]", err), nil
	}
	if len(records) == 0 {
		return "[empty CSV]", nil
	}

	header := records[0]
	rows := make([]map[string]string, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(rec) {
				row[col] = rec[i]
			}
		}
		rows = append(rows, row)
	}

	var sb strings.Builder
	sb.WriteString("Headers: " + strings.Join(header, ", "))
	for i, rec := range records[1:] {
		if i >= csvPreviewRows {
			break
		}
		fmt.Fprintf(&sb, "\nRow %d: %s", i+1, strings.Join(rec, " | "))
	}
	if len(rows) > csvPreviewRows {
		fmt.Fprintf(&sb, "\n... (%d more rows)", len(rows)-csvPreviewRows)
	}

	return truncate(sb.String(), limit), rows
}
