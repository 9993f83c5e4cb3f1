// CLAUDE:SUMMARY PDF preview builder on pdfcpu — content-stream text operators from the first pages.
package ingest

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

const pdfPreviewPages = 3

// previewPDF extracts text from the first few pages of a PDF.
func previewPDF(content []byte, limit int) string {
	conf := model.NewDefaultConfiguration()
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(content), conf)
	if err != nil {
		return fmt.Sprintf("[PDF file, %d bytes - parse error: %v]", len(content), err)
	}

	var parts []string
	pages := ctx.PageCount
	if pages > pdfPreviewPages {
		pages = pdfPreviewPages
	}
	for pageNr := 1; pageNr <= pages; pageNr++ {
		text := pdfPageText(ctx, pageNr)
		if text == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf("Page %d:\n%s", pageNr, truncate(text, 1000)))
	}

	if len(parts) == 0 {
		return fmt.Sprintf("[PDF file, %d bytes, %d pages - no extractable text]", len(content), ctx.PageCount)
	}
	out := strings.Join(parts, "\n\n")
	if ctx.PageCount > pdfPreviewPages {
		out += fmt.Sprintf("\n... (%d more pages)", ctx.PageCount-pdfPreviewPages)
	}
	return truncate(out, limit)
}

// pdfPageText pulls one page's content stream and decodes its text operators.
func pdfPageText(ctx *model.Context, pageNr int) string {
	r, err := pdfcpu.ExtractPageContent(ctx, pageNr)
	if err != nil {
		return ""
	}
	data, err := io.ReadAll(r)
	if err != nil || len(data) == 0 {
		return ""
	}
	return textFromContentStream(data)
}

// pdfLiteralRe matches PDF string literals: (text here)
var pdfLiteralRe = regexp.MustCompile(`\(([^)]*)\)`)

// textFromContentStream walks content stream lines and collects the string
// literals shown by the Tj, TJ and ' operators. Positioning operators
// (Td, TD, T*) become spacing so words do not run together.
func textFromContentStream(data []byte) string {
	var sb strings.Builder
	for _, line := range bytes.Split(data, []byte{'\n'}) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}

		showsText := bytes.HasSuffix(line, []byte("Tj")) ||
			bytes.HasSuffix(line, []byte("TJ")) ||
			(bytes.HasSuffix(line, []byte("'")) && bytes.Contains(line, []byte("(")))
		if showsText {
			for _, m := range pdfLiteralRe.FindAllSubmatch(line, -1) {
				sb.WriteString(decodePDFLiteral(m[1]))
			}
			continue
		}

		if bytes.HasSuffix(line, []byte("Td")) || bytes.HasSuffix(line, []byte("TD")) {
			if sb.Len() > 0 {
				sb.WriteByte(' ')
			}
		}
		if bytes.Equal(line, []byte("T*")) {
			sb.WriteByte('\n')
		}
	}

	// Normalize to single spaces and printable runes.
	var out strings.Builder
	prevSpace := false
	for _, r := range sb.String() {
		switch {
		case unicode.IsSpace(r):
			if !prevSpace && out.Len() > 0 {
				out.WriteByte(' ')
				prevSpace = true
			}
		case unicode.IsPrint(r):
			out.WriteRune(r)
			prevSpace = false
		}
	}
	return strings.TrimSpace(out.String())
}

// decodePDFLiteral resolves backslash escapes, including octal codes.
func decodePDFLiteral(raw []byte) string {
	var sb strings.Builder
	for i := 0; i < len(raw); i++ {
		if raw[i] != '\\' || i+1 >= len(raw) {
			sb.WriteByte(raw[i])
			continue
		}
		i++
		switch c := raw[i]; c {
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		case '\\', '(', ')':
			sb.WriteByte(c)
		default:
			if c >= '0' && c <= '7' {
				val := int(c - '0')
				for n := 0; n < 2 && i+1 < len(raw) && raw[i+1] >= '0' && raw[i+1] <= '7'; n++ {
					i++
					val = val*8 + int(raw[i]-'0')
				}
				sb.WriteByte(byte(val))
			} else {
				sb.WriteByte(c)
			}
		}
	}
	return sb.String()
}
