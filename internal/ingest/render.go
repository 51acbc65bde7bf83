package ingest

import (
	"fmt"
	"strings"

	"datadesk/domain/dataset"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	mdparser "github.com/gomarkdown/markdown/parser"
	"github.com/microcosm-cc/bluemonday"
)

var htmlPolicy = bluemonday.UGCPolicy()

// RenderMarkdown converts an LLM answer to sanitized HTML
func RenderMarkdown(md string) string {
	// parsers keep state, so each call gets its own
	p := mdparser.NewWithExtensions(mdparser.CommonExtensions | mdparser.AutoHeadingIDs)
	doc := p.Parse([]byte(md))
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.HrefTargetBlank})
	return htmlPolicy.Sanitize(string(markdown.Render(doc, renderer)))
}

// TableMarkdown renders the first n rows of t as a markdown table
func TableMarkdown(t *dataset.Table, n int) string {
	if t.NumCols() == 0 {
		return "(empty table)\n"
	}
	var b strings.Builder
	b.WriteString("| ")
	for j, name := range t.Columns {
		if j > 0 {
			b.WriteString(" | ")
		}
		b.WriteString(escapeCell(name))
	}
	b.WriteString(" |\n|")
	for range t.Columns {
		b.WriteString(" --- |")
	}
	b.WriteString("\n")

	if n > t.NumRows() || n < 0 {
		n = t.NumRows()
	}
	for i := 0; i < n; i++ {
		b.WriteString("| ")
		for j, cell := range t.Rows[i] {
			if j > 0 {
				b.WriteString(" | ")
			}
			b.WriteString(escapeCell(cell.String()))
		}
		b.WriteString(" |\n")
	}
	if n < t.NumRows() {
		fmt.Fprintf(&b, "\n(%d of %d rows shown)\n", n, t.NumRows())
	}
	return b.String()
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
