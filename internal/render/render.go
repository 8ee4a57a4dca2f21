// Package render turns a generated document into text and HTML
// artifacts. Both renderers are pure and byte-stable for identical
// input; no timestamps or IDs are embedded here.
package render

import (
	"fmt"
	"regexp"
	"strings"

	"rechtsdoc/internal/document"
)

// Text renders the document as plain text with underlined headings,
// bullet lines and a trailing warnings block.
func Text(doc *document.GeneratedDocument) string {
	var sb strings.Builder
	sb.WriteString(doc.Title + "\n")
	sb.WriteString(strings.Repeat("=", len([]rune(doc.Title))) + "\n\n")

	for _, section := range doc.Sections {
		sb.WriteString(section.Heading + "\n")
		sb.WriteString(strings.Repeat("-", len([]rune(section.Heading))) + "\n\n")
		sb.WriteString(section.Body + "\n\n")

		if len(section.Bullets) > 0 {
			for _, bullet := range section.Bullets {
				sb.WriteString("• " + bullet + "\n")
			}
			sb.WriteString("\n")
		}
	}

	if len(doc.Warnings) > 0 {
		sb.WriteString("\n\nWARNUNGEN:\n")
		for _, warning := range doc.Warnings {
			sb.WriteString("⚠ " + warning + "\n")
		}
	}

	return strings.TrimSpace(sb.String())
}

// HTML renders the document as an HTML fragment. Every text fragment
// from the document passes through entity escaping before insertion.
func HTML(doc *document.GeneratedDocument) string {
	var sb strings.Builder
	sb.WriteString("<article class=\"legal-document\">\n")
	sb.WriteString("  <header>\n")
	sb.WriteString("    <h1>" + escapeHTML(doc.Title) + "</h1>\n")
	sb.WriteString("  </header>\n\n")

	for _, section := range doc.Sections {
		sb.WriteString("  <section>\n")
		sb.WriteString("    <h2>" + escapeHTML(section.Heading) + "</h2>\n")
		sb.WriteString("    <p>" + formatParagraphs(section.Body) + "</p>\n")

		if len(section.Bullets) > 0 {
			sb.WriteString("    <ul>\n")
			for _, bullet := range section.Bullets {
				sb.WriteString("      <li>" + escapeHTML(bullet) + "</li>\n")
			}
			sb.WriteString("    </ul>\n")
		}

		sb.WriteString("  </section>\n\n")
	}

	if len(doc.Warnings) > 0 {
		sb.WriteString("  <aside class=\"warnings\">\n")
		sb.WriteString("    <h3>Hinweise</h3>\n")
		sb.WriteString("    <ul>\n")
		for _, warning := range doc.Warnings {
			sb.WriteString("      <li>" + escapeHTML(warning) + "</li>\n")
		}
		sb.WriteString("    </ul>\n")
		sb.WriteString("  </aside>\n")
	}

	sb.WriteString("</article>")
	return sb.String()
}

// Page wraps the HTML fragment in a standalone page with the fixed
// stylesheet and the legal-disclaimer footer.
func Page(doc *document.GeneratedDocument) string {
	lang := doc.Language
	if lang == "" {
		lang = "de"
	}
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="%s">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>%s</title>
  <style>
    body {
      font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif;
      line-height: 1.6;
      max-width: 800px;
      margin: 0 auto;
      padding: 2rem;
      color: #333;
    }
    h1 {
      border-bottom: 2px solid #333;
      padding-bottom: 0.5rem;
    }
    h2 {
      margin-top: 2rem;
      color: #555;
    }
    section {
      margin-bottom: 2rem;
    }
    ul {
      margin: 1rem 0;
      padding-left: 2rem;
    }
    .warnings {
      background-color: #fff3cd;
      border-left: 4px solid #ffc107;
      padding: 1rem;
      margin-top: 2rem;
    }
  </style>
</head>
<body>
  %s
  <footer style="margin-top: 3rem; padding-top: 2rem; border-top: 1px solid #ddd; font-size: 0.9em; color: #666;">
    <p><strong>Hinweis:</strong> Dieser Text wurde automatisch generiert und stellt keine Rechtsberatung dar. Bitte lassen Sie die Texte von einem qualifizierten Rechtsanwalt prüfen.</p>
  </footer>
</body>
</html>`, lang, escapeHTML(doc.Title), HTML(doc))
}

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#039;",
)

func escapeHTML(text string) string {
	return htmlEscaper.Replace(text)
}

var paragraphSplit = regexp.MustCompile(`\n\n+`)

// formatParagraphs splits a body on runs of blank lines and joins the
// escaped parts as successive <p> tags.
func formatParagraphs(text string) string {
	parts := paragraphSplit.Split(text, -1)
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		out = append(out, escapeHTML(trimmed))
	}
	return strings.Join(out, "</p>\n    <p>")
}
