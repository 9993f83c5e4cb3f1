package ingest

import (
	"fmt"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/microcosm-cc/bluemonday"

	"github.com/hazyhaar/quizchain/render"
)

// htmlPreviewer converts downloaded HTML resources to markdown previews.
// Markdown keeps table and list structure the plain-text projection loses,
// which matters when the referenced page is itself the data.
type htmlPreviewer struct {
	policy *bluemonday.Policy
	conv   *converter.Converter
}

func newHTMLPreviewer() *htmlPreviewer {
	return &htmlPreviewer{
		policy: bluemonday.UGCPolicy(),
		conv: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(),
			),
		),
	}
}

func (h *htmlPreviewer) preview(content []byte, limit int) string {
	sanitized := h.policy.SanitizeBytes(content)
	md, err := h.conv.ConvertString(string(sanitized))
	if err != nil || md == "" {
		// Converter choked; fall back to the plain visible-text projection.
		text := render.VisibleText(string(content))
		if text == "" {
			return fmt.Sprintf("[HTML, %d bytes - no extractable text]", len(content))
		}
		return truncate(text, limit)
	}
	return truncate(md, limit)
}
