// Package prompt turns a document plan and a site profile into a bounded
// generation request for the LLM.
package prompt

import (
	"encoding/json"
	"fmt"
	"strings"

	"rechtsdoc/internal/profile"
	"rechtsdoc/internal/rules"
)

// profileData is the namespaced projection of the profile that the model
// receives as factual grounding. Field order is the serialization order.
type profileData struct {
	Domain            string            `json:"domain"`
	CompanyType       string            `json:"companyType"`
	CompanyName       string            `json:"companyName"`
	Address           addressData       `json:"address"`
	Contact           contactData       `json:"contact"`
	Representatives   []string          `json:"representatives"`
	RegisterInfo      string            `json:"registerInfo"`
	VatID             string            `json:"vatId"`
	ResponsiblePerson string            `json:"responsiblePerson"`
	HostingProvider   string            `json:"hostingProvider"`
	CMS               string            `json:"cms"`
	CDN               string            `json:"cdn"`
	Analytics         profile.Analytics `json:"analytics"`
	TagManager        string            `json:"tagManager"`
	MarketingPixels   map[string]bool   `json:"marketingPixels"`
	EmbeddedContent   map[string]bool   `json:"embeddedContent"`
	NewsletterTool    string            `json:"newsletterTool"`
	ContactForm       bool              `json:"contactForm"`
	BookingSystem     string            `json:"bookingSystem"`
	UserAccounts      bool              `json:"userAccounts"`
	Comments          bool              `json:"comments"`
	Recaptcha         bool              `json:"recaptcha"`
	SetsCookies       bool              `json:"setsCookies"`
	CookieCategories  map[string]bool   `json:"cookieCategories"`
	ConsentMode       string            `json:"consentMode"`
	CMPProvider       string            `json:"cmpProvider"`
}

type addressData struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	Zip     string `json:"zip"`
	Country string `json:"country"`
}

type contactData struct {
	Email string `json:"email"`
	Phone string `json:"phone"`
}

func extractProfileData(p *profile.SiteProfile) profileData {
	return profileData{
		Domain:      p.Domain,
		CompanyType: p.CompanyType,
		CompanyName: p.CompanyName,
		Address: addressData{
			Street:  p.AddressStreet,
			City:    p.AddressCity,
			Zip:     p.AddressZip,
			Country: p.AddressCountry,
		},
		Contact: contactData{
			Email: p.ContactEmail,
			Phone: p.ContactPhone,
		},
		Representatives:   p.Representatives,
		RegisterInfo:      p.RegisterInfo,
		VatID:             p.VatID,
		ResponsiblePerson: p.ResponsiblePerson,
		HostingProvider:   p.HostingProvider,
		CMS:               p.CMS,
		CDN:               p.CDN,
		Analytics:         p.Analytics,
		TagManager:        p.TagManager,
		MarketingPixels:   p.MarketingPixels,
		EmbeddedContent:   p.EmbeddedContent,
		NewsletterTool:    p.NewsletterTool,
		ContactForm:       p.ContactForm,
		BookingSystem:     p.BookingSystem,
		UserAccounts:      p.UserAccounts,
		Comments:          p.Comments,
		Recaptcha:         p.Recaptcha,
		SetsCookies:       p.SetsCookies,
		CookieCategories:  p.CookieCategories,
		ConsentMode:       p.ConsentMode,
		CMPProvider:       p.CMPProvider,
	}
}

// Build renders the generation prompt for the plan's active sections.
// Deterministic: identical plan and profile yield an identical string.
// Map-valued profile fields serialize with sorted keys.
func Build(plan *rules.DocumentPlan, p *profile.SiteProfile) string {
	active := plan.ActiveSections(p)

	data, err := json.MarshalIndent(extractProfileData(p), "", "  ")
	if err != nil {
		data = []byte("{}")
	}

	region := p.Region
	if region == "" {
		region = profile.DefaultRegion
	}
	tone := p.Tone
	if tone == "" {
		tone = profile.DefaultTone
	}

	var sb strings.Builder
	sb.WriteString("Du bist ein Experte für deutsche und europäische Datenschutz- und Impressumspflichten.\n\n")

	sb.WriteString("AUFGABE:\n")
	fmt.Fprintf(&sb, "Erstelle einen %s für eine Website basierend auf den folgenden Informationen.\n\n", plan.Title)

	sb.WriteString("WICHTIGE HINWEISE:\n")
	sb.WriteString("- Verwende NUR die bereitgestellten Informationen. Erfinde KEINE Details.\n")
	fmt.Fprintf(&sb, "- Verwende formelle, rechtlich korrekte Sprache (%s).\n", tone)
	fmt.Fprintf(&sb, "- Region: %s\n", region)
	sb.WriteString("- Sprache: Deutsch\n")
	sb.WriteString("- Strukturiere den Text nach den vorgegebenen Abschnitten.\n")
	sb.WriteString("- Jeder Abschnitt sollte klar und verständlich sein.\n")
	sb.WriteString("- Füge rechtliche Grundlagen nur an, wenn sie im Plan angegeben sind.\n\n")

	sb.WriteString("WEBSITE-INFORMATIONEN:\n")
	sb.Write(data)
	sb.WriteString("\n\n")

	sb.WriteString("ABSCHNITTE ZU ERSTELLEN:\n")
	for i, section := range active {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		fmt.Fprintf(&sb, "%d. %s\n", i+1, section.Heading)
		fmt.Fprintf(&sb, "   - Erforderlich: %s\n", jaNein(section.Required))
		fmt.Fprintf(&sb, "   - Platzhalter: %s", orKeine(strings.Join(section.Placeholders, ", ")))
		if len(section.LegalBasis) > 0 {
			fmt.Fprintf(&sb, "\n   - Rechtsgrundlage: %s", strings.Join(section.LegalBasis, ", "))
		}
	}
	sb.WriteString("\n\n")

	sb.WriteString("FEHLENDE EINGABEN:\n")
	sb.WriteString(orKeine(strings.Join(plan.MissingInputs, ", ")))
	sb.WriteString("\n\n")

	sb.WriteString("WARNUNGEN:\n")
	sb.WriteString(orKeine(strings.Join(plan.Warnings, "\n")))
	sb.WriteString("\n\n")

	sb.WriteString("FORMAT:\n")
	sb.WriteString("Gib eine JSON-Antwort im folgenden Format zurück. Die Antwort muss gültiges JSON sein:\n\n")
	fmt.Fprintf(&sb, `{
  "title": "%s",
  "language": "de",
  "region": "%s",
  "sections": [
    {
      "heading": "Abschnittsüberschrift",
      "body": "Haupttext des Abschnitts...",
      "bullets": ["Punkt 1", "Punkt 2"]
    }
  ],
  "missing_inputs": [],
  "warnings": []
}`, plan.Title, region)
	sb.WriteString("\n\n")

	sb.WriteString("WICHTIG:\n")
	sb.WriteString("- Verwende die exakten Überschriften aus dem Plan.\n")
	sb.WriteString("- Fülle Platzhalter mit den tatsächlichen Werten aus den Website-Informationen.\n")
	sb.WriteString("- Wenn Informationen fehlen, erwähne dies in den warnings.\n")
	sb.WriteString("- Schreibe vollständige, grammatikalisch korrekte Sätze.\n")
	sb.WriteString("- Verwende keine Markdown-Formatierung im body, nur im bullets-Array.\n")
	sb.WriteString("- Die Antwort muss gültiges JSON sein (keine Markdown-Code-Blöcke).")

	return sb.String()
}

func jaNein(b bool) string {
	if b {
		return "Ja"
	}
	return "Nein"
}

func orKeine(s string) string {
	if s == "" {
		return "Keine"
	}
	return s
}
