package rules

import (
	"errors"
	"fmt"
	"sort"

	"rechtsdoc/internal/profile"
)

// DocumentType names one of the four supported document kinds.
type DocumentType string

const (
	Impressum     DocumentType = "impressum"
	Datenschutz   DocumentType = "datenschutz"
	CookiePolicy  DocumentType = "cookie_policy"
	CookieConsent DocumentType = "cookie_consent"
)

// ErrUnsupportedDocumentType signals a document type outside the closed enum.
var ErrUnsupportedDocumentType = errors.New("unsupported document type")

// ParseDocumentType validates a raw type tag.
func ParseDocumentType(s string) (DocumentType, error) {
	switch DocumentType(s) {
	case Impressum, Datenschutz, CookiePolicy, CookieConsent:
		return DocumentType(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedDocumentType, s)
}

// DocumentSection is one planned section of a document. Conditional
// sections keep their gating predicate so it can be re-evaluated later;
// a nil Condition means the section is unconditionally active.
type DocumentSection struct {
	Heading      string     `json:"heading"`
	Required     bool       `json:"required"`
	Condition    *Condition `json:"condition,omitempty"`
	Placeholders []string   `json:"placeholders"`
	LegalBasis   []string   `json:"legalBasis,omitempty"`
}

// Active reports whether the section applies to the given profile.
func (s *DocumentSection) Active(p *profile.SiteProfile) bool {
	if s.Condition == nil {
		return true
	}
	return s.Condition.Eval(p)
}

// DocumentPlan is the ordered section layout for one document type and
// profile. Section order is presentation order. The plan is built fresh
// per generation request and not mutated afterwards.
type DocumentPlan struct {
	Type          DocumentType      `json:"type"`
	Title         string            `json:"title"`
	Sections      []DocumentSection `json:"sections"`
	MissingInputs []string          `json:"missingInputs"`
	Warnings      []string          `json:"warnings"`
}

// ActiveSections filters the plan's sections by re-evaluating each stored
// condition against the given profile snapshot.
func (plan *DocumentPlan) ActiveSections(p *profile.SiteProfile) []DocumentSection {
	active := make([]DocumentSection, 0, len(plan.Sections))
	for _, section := range plan.Sections {
		if section.Active(p) {
			active = append(active, section)
		}
	}
	return active
}

// GeneratePlan computes the section layout for the given document type.
// It is pure: no I/O, deterministic for identical inputs. Missing
// required inputs are recorded on the plan, never raised as errors.
func GeneratePlan(docType DocumentType, p *profile.SiteProfile) (*DocumentPlan, error) {
	switch docType {
	case Impressum:
		return impressumPlan(p), nil
	case Datenschutz:
		return datenschutzPlan(p), nil
	case CookiePolicy:
		return cookiePolicyPlan(p), nil
	case CookieConsent:
		return cookieConsentPlan(p), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedDocumentType, docType)
}

func impressumPlan(p *profile.SiteProfile) *DocumentPlan {
	missing := collectMissing(p, "companyName", "addressStreet", "addressCity", "addressZip", "contactEmail")

	sections := []DocumentSection{
		{
			Heading:      "Angaben gemäß § 5 TMG",
			Required:     true,
			Placeholders: []string{"companyName", "addressStreet", "addressCity", "addressZip"},
		},
		{
			Heading:      "Kontakt",
			Required:     true,
			Placeholders: []string{"contactEmail", "contactPhone"},
		},
	}

	if p.CompanyType == "GmbH" || p.CompanyType == "UG" {
		sections = append(sections, DocumentSection{
			Heading:      "Handelsregister",
			Required:     true,
			Condition:    fieldIn("companyType", "GmbH", "UG"),
			Placeholders: []string{"registerInfo"},
			LegalBasis:   []string{"§ 35a GmbHG"},
		})
	}

	if p.VatID != "" {
		sections = append(sections, DocumentSection{
			Heading:      "Umsatzsteuer-ID",
			Required:     false,
			Condition:    fieldTruthy("vatId"),
			Placeholders: []string{"vatId"},
			LegalBasis:   []string{"§ 27a UStG"},
		})
	}

	if p.ResponsiblePerson != "" {
		sections = append(sections, DocumentSection{
			Heading:      "Verantwortlich für den Inhalt nach § 55 Abs. 2 RStV",
			Required:     false,
			Condition:    fieldTruthy("responsiblePerson"),
			Placeholders: []string{"responsiblePerson"},
			LegalBasis:   []string{"§ 55 Abs. 2 RStV"},
		})
	}

	return &DocumentPlan{
		Type:          Impressum,
		Title:         "Impressum",
		Sections:      sections,
		MissingInputs: missing,
		Warnings:      []string{},
	}
}

func datenschutzPlan(p *profile.SiteProfile) *DocumentPlan {
	missing := collectMissing(p, "companyName", "contactEmail", "addressStreet")

	sections := []DocumentSection{
		{
			Heading:      "1. Datenschutz auf einen Blick",
			Required:     true,
			Placeholders: []string{},
		},
		{
			Heading:      "2. Verantwortliche Stelle",
			Required:     true,
			Placeholders: []string{"companyName", "addressStreet", "addressCity", "addressZip", "contactEmail", "contactPhone"},
			LegalBasis:   []string{"Art. 4 Nr. 7 DSGVO"},
		},
		{
			Heading:      "3. Datenerfassung auf dieser Website",
			Required:     true,
			Placeholders: []string{},
		},
	}

	// Conditional topics carry fixed heading numbers (3.1 through 3.10)
	// keyed by topic identity. Inactive topics are omitted, never
	// renumbered, so the rendered numbering may show gaps.
	if p.HostingProvider != "" {
		sections = append(sections, DocumentSection{
			Heading:      "3.1 Hosting",
			Required:     false,
			Condition:    fieldTruthy("hostingProvider"),
			Placeholders: []string{"hostingProvider"},
			LegalBasis:   []string{"Art. 28 DSGVO"},
		})
	}

	if p.Analytics.Enabled && p.Analytics.Provider != "" {
		label := "Matomo"
		if p.Analytics.Provider == "GA4" {
			label = "Google Analytics"
		}
		sections = append(sections, DocumentSection{
			Heading:      "3.2 " + label,
			Required:     false,
			Condition:    allTruthy("analytics.enabled", "analytics.provider"),
			Placeholders: []string{"analytics.provider"},
			LegalBasis:   []string{"Art. 6 Abs. 1 lit. f DSGVO", "Art. 49 Abs. 1 lit. a DSGVO"},
		})
	}

	if p.TagManager != "" {
		sections = append(sections, DocumentSection{
			Heading:      "3.3 Tag-Management-System",
			Required:     false,
			Condition:    fieldTruthy("tagManager"),
			Placeholders: []string{"tagManager"},
			LegalBasis:   []string{"Art. 6 Abs. 1 lit. f DSGVO"},
		})
	}

	if enabled := enabledKeys(p.MarketingPixels); len(enabled) > 0 {
		placeholders := make([]string, 0, len(enabled))
		for _, name := range enabled {
			placeholders = append(placeholders, "marketingPixels."+name)
		}
		sections = append(sections, DocumentSection{
			Heading:      "3.4 Marketing-Tools",
			Required:     false,
			Condition:    mapAnyTrue("marketingPixels"),
			Placeholders: placeholders,
			LegalBasis:   []string{"Art. 6 Abs. 1 lit. a DSGVO"},
		})
	}

	if enabled := enabledKeys(p.EmbeddedContent); len(enabled) > 0 {
		placeholders := make([]string, 0, len(enabled))
		for _, name := range enabled {
			placeholders = append(placeholders, "embeddedContent."+name)
		}
		sections = append(sections, DocumentSection{
			Heading:      "3.5 Eingebettete Inhalte",
			Required:     false,
			Condition:    mapAnyTrue("embeddedContent"),
			Placeholders: placeholders,
			LegalBasis:   []string{"Art. 6 Abs. 1 lit. f DSGVO"},
		})
	}

	if p.NewsletterTool != "" {
		sections = append(sections, DocumentSection{
			Heading:      "3.6 Newsletter",
			Required:     false,
			Condition:    fieldTruthy("newsletterTool"),
			Placeholders: []string{"newsletterTool"},
			LegalBasis:   []string{"Art. 6 Abs. 1 lit. a DSGVO"},
		})
	}

	if p.ContactForm {
		sections = append(sections, DocumentSection{
			Heading:      "3.7 Kontaktformular",
			Required:     false,
			Condition:    fieldTruthy("contactForm"),
			Placeholders: []string{},
			LegalBasis:   []string{"Art. 6 Abs. 1 lit. f DSGVO"},
		})
	}

	if p.UserAccounts {
		sections = append(sections, DocumentSection{
			Heading:      "3.8 Nutzerkonten",
			Required:     false,
			Condition:    fieldTruthy("userAccounts"),
			Placeholders: []string{},
			LegalBasis:   []string{"Art. 6 Abs. 1 lit. b DSGVO"},
		})
	}

	if p.Comments {
		sections = append(sections, DocumentSection{
			Heading:      "3.9 Kommentare",
			Required:     false,
			Condition:    fieldTruthy("comments"),
			Placeholders: []string{},
			LegalBasis:   []string{"Art. 6 Abs. 1 lit. f DSGVO"},
		})
	}

	if p.Recaptcha {
		sections = append(sections, DocumentSection{
			Heading:      "3.10 reCAPTCHA",
			Required:     false,
			Condition:    fieldTruthy("recaptcha"),
			Placeholders: []string{},
			LegalBasis:   []string{"Art. 6 Abs. 1 lit. f DSGVO"},
		})
	}

	sections = append(sections,
		DocumentSection{
			Heading:      "4. Ihre Rechte",
			Required:     true,
			Placeholders: []string{},
			LegalBasis:   []string{"Art. 15-22 DSGVO"},
		},
		DocumentSection{
			Heading:      "5. Widerspruchsrecht",
			Required:     true,
			Placeholders: []string{},
			LegalBasis:   []string{"Art. 21 DSGVO"},
		},
	)

	return &DocumentPlan{
		Type:          Datenschutz,
		Title:         "Datenschutzerklärung",
		Sections:      sections,
		MissingInputs: missing,
		Warnings:      []string{},
	}
}

func cookiePolicyPlan(p *profile.SiteProfile) *DocumentPlan {
	warnings := []string{}
	if !p.SetsCookies {
		warnings = append(warnings, "Keine Cookies aktiviert - Cookie-Richtlinie möglicherweise nicht erforderlich")
	}

	sections := []DocumentSection{
		{
			Heading:      "Was sind Cookies?",
			Required:     true,
			Placeholders: []string{},
		},
		{
			Heading:      "Welche Cookies setzen wir?",
			Required:     true,
			Placeholders: []string{},
		},
	}

	if p.CookieCategories["essential"] {
		sections = append(sections, DocumentSection{
			Heading:      "Notwendige Cookies",
			Required:     false,
			Condition:    fieldTruthy("cookieCategories.essential"),
			Placeholders: []string{},
		})
	}

	if p.CookieCategories["statistics"] {
		sections = append(sections, DocumentSection{
			Heading:      "Statistik-Cookies",
			Required:     false,
			Condition:    fieldTruthy("cookieCategories.statistics"),
			Placeholders: []string{"analytics.provider"},
			LegalBasis:   []string{"Art. 6 Abs. 1 lit. a DSGVO"},
		})
	}

	if p.CookieCategories["marketing"] {
		sections = append(sections, DocumentSection{
			Heading:      "Marketing-Cookies",
			Required:     false,
			Condition:    fieldTruthy("cookieCategories.marketing"),
			Placeholders: []string{"marketingPixels"},
			LegalBasis:   []string{"Art. 6 Abs. 1 lit. a DSGVO"},
		})
	}

	sections = append(sections, DocumentSection{
		Heading:      "Wie können Sie Cookies verwalten?",
		Required:     true,
		Placeholders: []string{},
	})

	return &DocumentPlan{
		Type:          CookiePolicy,
		Title:         "Cookie-Richtlinie",
		Sections:      sections,
		MissingInputs: []string{},
		Warnings:      warnings,
	}
}

func cookieConsentPlan(p *profile.SiteProfile) *DocumentPlan {
	warnings := []string{}
	if !p.SetsCookies {
		warnings = append(warnings, "Keine Cookies aktiviert - Einwilligungstext möglicherweise nicht erforderlich")
	}

	sections := []DocumentSection{
		{
			Heading:      "Einwilligungstext",
			Required:     true,
			Placeholders: []string{"companyName"},
		},
	}

	if p.CookieCategories["statistics"] || p.CookieCategories["marketing"] {
		sections = append(sections, DocumentSection{
			Heading:      "Optionale Cookies",
			Required:     false,
			Condition:    anyTruthy("cookieCategories.statistics", "cookieCategories.marketing"),
			Placeholders: []string{},
		})
	}

	return &DocumentPlan{
		Type:          CookieConsent,
		Title:         "Cookie-Einwilligungstext",
		Sections:      sections,
		MissingInputs: []string{},
		Warnings:      warnings,
	}
}

func collectMissing(p *profile.SiteProfile, paths ...string) []string {
	missing := []string{}
	for _, path := range paths {
		if !p.Truthy(path) {
			missing = append(missing, path)
		}
	}
	return missing
}

// enabledKeys returns the names of enabled flags in sorted order, so plan
// output does not depend on map iteration order.
func enabledKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for name, enabled := range m {
		if enabled {
			keys = append(keys, name)
		}
	}
	sort.Strings(keys)
	return keys
}
