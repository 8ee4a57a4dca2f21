package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rechtsdoc/internal/profile"
	"rechtsdoc/internal/rules"
)

func demoPlan(t *testing.T, docType rules.DocumentType, p *profile.SiteProfile) *rules.DocumentPlan {
	t.Helper()
	plan, err := rules.GeneratePlan(docType, p)
	require.NoError(t, err)
	return plan
}

func TestBuild_Deterministic(t *testing.T) {
	p := profile.Demo()
	plan := demoPlan(t, rules.Datenschutz, p)

	first := Build(plan, p)
	second := Build(plan, p)
	assert.Equal(t, first, second)
}

func TestBuild_ContainsPlanAndProfileFacts(t *testing.T) {
	p := profile.Demo()
	plan := demoPlan(t, rules.Datenschutz, p)

	out := Build(plan, p)

	assert.Contains(t, out, "Erstelle einen Datenschutzerklärung für eine Website")
	assert.Contains(t, out, "- Verwende formelle, rechtlich korrekte Sprache (formal).")
	assert.Contains(t, out, "- Region: DE")
	assert.Contains(t, out, `"companyName": "Demo GmbH"`)
	assert.Contains(t, out, `"street": "Musterstraße 123"`)
	assert.Contains(t, out, "3.2 Google Analytics")
	assert.Contains(t, out, "- Rechtsgrundlage: Art. 6 Abs. 1 lit. f DSGVO, Art. 49 Abs. 1 lit. a DSGVO")
	assert.Contains(t, out, "- Platzhalter: analytics.provider")
	assert.Contains(t, out, `"title": "Datenschutzerklärung"`)
	assert.Contains(t, out, "keine Markdown-Code-Blöcke")
}

func TestBuild_FiltersInactiveSections(t *testing.T) {
	withVat := profile.Demo()
	plan := demoPlan(t, rules.Impressum, withVat)
	require.Len(t, plan.Sections, 4)

	withoutVat := profile.Demo()
	withoutVat.VatID = ""

	out := Build(plan, withoutVat)
	assert.NotContains(t, out, "Umsatzsteuer-ID")
	assert.Contains(t, out, "Handelsregister")

	// Active sections are numbered consecutively in the prompt.
	assert.Contains(t, out, "1. Angaben gemäß § 5 TMG")
	assert.Contains(t, out, "2. Kontakt")
	assert.Contains(t, out, "3. Handelsregister")
}

func TestBuild_RestatesMissingInputsAndWarnings(t *testing.T) {
	p := &profile.SiteProfile{}
	p.ApplyDefaults()

	plan := demoPlan(t, rules.Impressum, p)
	out := Build(plan, p)
	assert.Contains(t, out, "FEHLENDE EINGABEN:\ncompanyName, addressStreet, addressCity, addressZip, contactEmail")
	assert.Contains(t, out, "WARNUNGEN:\nKeine")

	cookiePlan := demoPlan(t, rules.CookiePolicy, p)
	cookieOut := Build(cookiePlan, p)
	assert.Contains(t, cookieOut, "WARNUNGEN:\nKeine Cookies aktiviert")
	assert.Contains(t, cookieOut, "FEHLENDE EINGABEN:\nKeine")
}

func TestBuild_RequiredFlagRendered(t *testing.T) {
	p := profile.Demo()
	plan := demoPlan(t, rules.Impressum, p)

	out := Build(plan, p)
	assert.Contains(t, out, "- Erforderlich: Ja")
	// The VAT section is optional.
	idx := strings.Index(out, "Umsatzsteuer-ID")
	require.Greater(t, idx, 0)
	assert.Contains(t, out[idx:], "- Erforderlich: Nein")
}
