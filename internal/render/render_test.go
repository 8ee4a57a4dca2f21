package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rechtsdoc/internal/document"
)

func sampleDoc() *document.GeneratedDocument {
	return &document.GeneratedDocument{
		Title:    "Impressum",
		Language: "de",
		Region:   "DE",
		Sections: []document.Section{
			{Heading: "Angaben gemäß § 5 TMG", Body: "Acme GmbH\n\nMain 1, 10115 Berlin."},
			{Heading: "Kontakt", Body: "E-Mail: a@acme.de", Bullets: []string{"Telefon: +49 30 123", "Fax: keiner"}},
		},
		MissingInputs: []string{},
		Warnings:      []string{"Registernummer fehlt"},
	}
}

func TestText_Layout(t *testing.T) {
	out := Text(sampleDoc())

	lines := strings.Split(out, "\n")
	assert.Equal(t, "Impressum", lines[0])
	assert.Equal(t, strings.Repeat("=", len([]rune("Impressum"))), lines[1])

	assert.Contains(t, out, "Angaben gemäß § 5 TMG\n"+strings.Repeat("-", len([]rune("Angaben gemäß § 5 TMG"))))
	assert.Contains(t, out, "• Telefon: +49 30 123\n• Fax: keiner")
	assert.Contains(t, out, "WARNUNGEN:\n⚠ Registernummer fehlt")

	// Trimmed output: no leading/trailing whitespace.
	assert.Equal(t, strings.TrimSpace(out), out)
}

func TestText_NoWarningsBlockWhenEmpty(t *testing.T) {
	doc := sampleDoc()
	doc.Warnings = nil
	assert.NotContains(t, Text(doc), "WARNUNGEN")
}

func TestHTML_SectionCountAndOrder(t *testing.T) {
	doc := sampleDoc()
	out := HTML(doc)

	assert.Equal(t, len(doc.Sections), strings.Count(out, "<section>"))
	assert.Equal(t, len(doc.Sections), strings.Count(out, "</section>"))
	assert.Less(t, strings.Index(out, "Angaben gem"), strings.Index(out, "Kontakt"))
	assert.Contains(t, out, "<h1>Impressum</h1>")
	assert.Contains(t, out, "<li>Telefon: +49 30 123</li>")
	assert.Contains(t, out, `<aside class="warnings">`)
	assert.Contains(t, out, "<li>Registernummer fehlt</li>")
}

func TestHTML_EscapesEverything(t *testing.T) {
	doc := &document.GeneratedDocument{
		Title: `<script>alert("x")</script>`,
		Sections: []document.Section{
			{
				Heading: "A & B <Co>",
				Body:    "<script>alert('body')</script>",
				Bullets: []string{`"quoted" & <b>`},
			},
		},
		Warnings: []string{"<img src=x>"},
	}

	out := HTML(doc)
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "&lt;script&gt;")
	assert.Contains(t, out, "A &amp; B &lt;Co&gt;")
	assert.Contains(t, out, "&quot;quoted&quot; &amp; &lt;b&gt;")
	assert.Contains(t, out, "&lt;img src=x&gt;")
	assert.Contains(t, out, "alert(&#039;body&#039;)")
}

func TestHTML_SplitsParagraphs(t *testing.T) {
	doc := &document.GeneratedDocument{
		Title: "Impressum",
		Sections: []document.Section{
			{Heading: "Kontakt", Body: "Absatz eins.\n\nAbsatz zwei.\n\n\nAbsatz drei."},
		},
	}

	out := HTML(doc)
	assert.Equal(t, 3, strings.Count(out, "<p>"))
	assert.Contains(t, out, "<p>Absatz eins.</p>")
	assert.Contains(t, out, "<p>Absatz drei.</p>")
}

func TestRenderers_ByteStable(t *testing.T) {
	doc := sampleDoc()
	assert.Equal(t, Text(doc), Text(doc))
	assert.Equal(t, HTML(doc), HTML(doc))
	assert.Equal(t, Page(doc), Page(doc))
}

func TestPage_WrapsFragment(t *testing.T) {
	doc := sampleDoc()
	out := Page(doc)

	require.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"))
	assert.Contains(t, out, `<html lang="de">`)
	assert.Contains(t, out, "<title>Impressum</title>")
	assert.Contains(t, out, HTML(doc))
	assert.Contains(t, out, "stellt keine Rechtsberatung dar")

	doc.Language = ""
	assert.Contains(t, Page(doc), `<html lang="de">`)
}
