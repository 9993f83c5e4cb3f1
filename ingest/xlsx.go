// CLAUDE:SUMMARY XLSX preview builder — archive/zip + shared strings + first worksheet rows.
package ingest

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const xlsxPreviewRows = 6

// previewXLSX reads an .xlsx workbook (ZIP of XML parts) and previews the
// first worksheet: shared strings resolved, first rows tab-joined.
// Legacy binary .xls is not a ZIP and falls through to the size stub.
func previewXLSX(content []byte, limit int) (string, any) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return fmt.Sprintf("[spreadsheet, %d bytes - not an xlsx archive]", len(content)), nil
	}

	shared := readSharedStrings(zr)
	rows := readFirstSheet(zr, shared)
	if len(rows) == 0 {
		return fmt.Sprintf("[xlsx, %d bytes - no readable sheet data]", len(content)), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Spreadsheet with %d rows\n", len(rows))
	for i, row := range rows {
		if i >= xlsxPreviewRows {
			fmt.Fprintf(&sb, "... (%d more rows)", len(rows)-xlsxPreviewRows)
			break
		}
		sb.WriteString(strings.Join(row, " | "))
		sb.WriteByte('\n')
	}
	return truncate(strings.TrimRight(sb.String(), "\n"), limit), rows
}

// readSharedStrings parses xl/sharedStrings.xml into an index-addressed list.
func readSharedStrings(zr *zip.Reader) []string {
	f := findZipFile(zr, "xl/sharedStrings.xml")
	if f == nil {
		return nil
	}
	rc, err := f.Open()
	if err != nil {
		return nil
	}
	defer rc.Close()

	var shared []string
	dec := xml.NewDecoder(rc)
	var cur strings.Builder
	inSI := false
	inT := false
	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "si":
				inSI = true
				cur.Reset()
			case "t":
				inT = true
			}
		case xml.CharData:
			if inSI && inT {
				cur.Write(t)
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inT = false
			case "si":
				inSI = false
				shared = append(shared, cur.String())
			}
		}
	}
	return shared
}

// readFirstSheet parses xl/worksheets/sheet1.xml into rows of cell values.
func readFirstSheet(zr *zip.Reader, shared []string) [][]string {
	f := findZipFile(zr, "xl/worksheets/sheet1.xml")
	if f == nil {
		// Workbooks saved by some tools number sheets differently; take the
		// first worksheet part present.
		for _, zf := range zr.File {
			if strings.HasPrefix(zf.Name, "xl/worksheets/") && strings.HasSuffix(zf.Name, ".xml") {
				f = zf
				break
			}
		}
	}
	if f == nil {
		return nil
	}
	rc, err := f.Open()
	if err != nil {
		return nil
	}
	defer rc.Close()

	return parseSheetRows(rc, shared)
}

func parseSheetRows(r io.Reader, shared []string) [][]string {
	dec := xml.NewDecoder(r)
	var rows [][]string
	var row []string
	var cellType string
	var cur strings.Builder
	inValue := false

	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "row":
				row = nil
			case "c":
				cellType = ""
				for _, attr := range t.Attr {
					if attr.Name.Local == "t" {
						cellType = attr.Value
					}
				}
			case "v", "t":
				inValue = true
				cur.Reset()
			}
		case xml.CharData:
			if inValue {
				cur.Write(t)
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "v", "t":
				inValue = false
				val := cur.String()
				// Type "s" means the value is a shared-strings index.
				if cellType == "s" {
					if idx, err := strconv.Atoi(val); err == nil && idx >= 0 && idx < len(shared) {
						val = shared[idx]
					}
				}
				row = append(row, val)
			case "row":
				if len(row) > 0 {
					rows = append(rows, row)
				}
			}
		}
	}
	return rows
}

func findZipFile(zr *zip.Reader, name string) *zip.File {
	for _, f := range zr.File {
		if f.Name == name {
			return f
		}
	}
	return nil
}
