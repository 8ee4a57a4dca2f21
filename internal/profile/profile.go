package profile

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Analytics describes the tracking setup of a site.
type Analytics struct {
	Provider string `json:"provider,omitempty"`
	Enabled  bool   `json:"enabled,omitempty"`
}

// SiteProfile captures the business and website attributes a document
// generation run is grounded on. All fields are optional; defaults for
// region, language and tone are applied by ApplyDefaults.
type SiteProfile struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`

	Domain            string   `json:"domain,omitempty"`
	CompanyType       string   `json:"companyType,omitempty"`
	CompanyName       string   `json:"companyName,omitempty"`
	AddressStreet     string   `json:"addressStreet,omitempty"`
	AddressCity       string   `json:"addressCity,omitempty"`
	AddressZip        string   `json:"addressZip,omitempty"`
	AddressCountry    string   `json:"addressCountry,omitempty"`
	ContactEmail      string   `json:"contactEmail,omitempty"`
	ContactPhone      string   `json:"contactPhone,omitempty"`
	Representatives   []string `json:"representatives,omitempty"`
	RegisterInfo      string   `json:"registerInfo,omitempty"`
	VatID             string   `json:"vatId,omitempty"`
	ResponsiblePerson string   `json:"responsiblePerson,omitempty"`

	HostingProvider string `json:"hostingProvider,omitempty"`
	CMS             string `json:"cms,omitempty"`
	CDN             string `json:"cdn,omitempty"`

	Analytics       Analytics       `json:"analytics,omitempty"`
	TagManager      string          `json:"tagManager,omitempty"`
	MarketingPixels map[string]bool `json:"marketingPixels,omitempty"`
	EmbeddedContent map[string]bool `json:"embeddedContent,omitempty"`

	NewsletterTool string `json:"newsletterTool,omitempty"`
	ContactForm    bool   `json:"contactForm,omitempty"`
	BookingSystem  string `json:"bookingSystem,omitempty"`
	UserAccounts   bool   `json:"userAccounts,omitempty"`
	Comments       bool   `json:"comments,omitempty"`
	Recaptcha      bool   `json:"recaptcha,omitempty"`

	SetsCookies      bool            `json:"setsCookies,omitempty"`
	CookieCategories map[string]bool `json:"cookieCategories,omitempty"`
	ConsentMode      string          `json:"consentMode,omitempty"`
	CMPProvider      string          `json:"cmpProvider,omitempty"`

	Tone     string `json:"tone,omitempty"`
	Region   string `json:"region,omitempty"`
	Language string `json:"language,omitempty"`
}

const (
	DefaultRegion   = "DE"
	DefaultLanguage = "de"
	DefaultTone     = "formal"
)

var (
	validRegions      = map[string]bool{"DE": true, "AT": true, "CH": true}
	validLanguages    = map[string]bool{"de": true, "en": true}
	validTones        = map[string]bool{"formal": true, "neutral": true}
	validConsentModes = map[string]bool{"opt-in": true, "opt-out": true}
)

// ApplyDefaults fills region, language and tone when absent.
func (p *SiteProfile) ApplyDefaults() {
	if p.Region == "" {
		p.Region = DefaultRegion
	}
	if p.Language == "" {
		p.Language = DefaultLanguage
	}
	if p.Tone == "" {
		p.Tone = DefaultTone
	}
}

// Validate checks the closed enum fields. Empty values are allowed for
// consentMode; region/language/tone are expected to be defaulted first.
func (p *SiteProfile) Validate() error {
	if !validRegions[p.Region] {
		return fmt.Errorf("invalid region: %q", p.Region)
	}
	if !validLanguages[p.Language] {
		return fmt.Errorf("invalid language: %q", p.Language)
	}
	if !validTones[p.Tone] {
		return fmt.Errorf("invalid tone: %q", p.Tone)
	}
	if p.ConsentMode != "" && !validConsentModes[p.ConsentMode] {
		return fmt.Errorf("invalid consent mode: %q", p.ConsentMode)
	}
	if p.ContactEmail != "" && !strings.Contains(p.ContactEmail, "@") {
		return fmt.Errorf("invalid contact email: %q", p.ContactEmail)
	}
	return nil
}

// StringValue resolves a dotted field path to its string form.
// Boolean fields resolve to "true"/"false", map entries to their flag.
// The second return reports whether the path is known.
func (p *SiteProfile) StringValue(path string) (string, bool) {
	switch path {
	case "domain":
		return p.Domain, true
	case "companyType":
		return p.CompanyType, true
	case "companyName":
		return p.CompanyName, true
	case "addressStreet":
		return p.AddressStreet, true
	case "addressCity":
		return p.AddressCity, true
	case "addressZip":
		return p.AddressZip, true
	case "addressCountry":
		return p.AddressCountry, true
	case "contactEmail":
		return p.ContactEmail, true
	case "contactPhone":
		return p.ContactPhone, true
	case "registerInfo":
		return p.RegisterInfo, true
	case "vatId":
		return p.VatID, true
	case "responsiblePerson":
		return p.ResponsiblePerson, true
	case "hostingProvider":
		return p.HostingProvider, true
	case "cms":
		return p.CMS, true
	case "cdn":
		return p.CDN, true
	case "tagManager":
		return p.TagManager, true
	case "newsletterTool":
		return p.NewsletterTool, true
	case "bookingSystem":
		return p.BookingSystem, true
	case "cmpProvider":
		return p.CMPProvider, true
	case "consentMode":
		return p.ConsentMode, true
	case "tone":
		return p.Tone, true
	case "region":
		return p.Region, true
	case "language":
		return p.Language, true
	case "analytics.provider":
		return p.Analytics.Provider, true
	case "analytics.enabled":
		return boolString(p.Analytics.Enabled), true
	case "contactForm":
		return boolString(p.ContactForm), true
	case "userAccounts":
		return boolString(p.UserAccounts), true
	case "comments":
		return boolString(p.Comments), true
	case "recaptcha":
		return boolString(p.Recaptcha), true
	case "setsCookies":
		return boolString(p.SetsCookies), true
	}
	if name, ok := strings.CutPrefix(path, "marketingPixels."); ok {
		return boolString(p.MarketingPixels[name]), true
	}
	if name, ok := strings.CutPrefix(path, "embeddedContent."); ok {
		return boolString(p.EmbeddedContent[name]), true
	}
	if name, ok := strings.CutPrefix(path, "cookieCategories."); ok {
		return boolString(p.CookieCategories[name]), true
	}
	return "", false
}

// Truthy reports whether the field at path carries a usable value:
// non-empty for strings, true for booleans.
func (p *SiteProfile) Truthy(path string) bool {
	v, ok := p.StringValue(path)
	if !ok {
		return false
	}
	return v != "" && v != "false"
}

// MapAnyTrue reports whether any entry of the named flag map is enabled.
// Known map names are marketingPixels, embeddedContent and cookieCategories.
func (p *SiteProfile) MapAnyTrue(name string) bool {
	var m map[string]bool
	switch name {
	case "marketingPixels":
		m = p.MarketingPixels
	case "embeddedContent":
		m = p.EmbeddedContent
	case "cookieCategories":
		m = p.CookieCategories
	default:
		return false
	}
	for _, enabled := range m {
		if enabled {
			return true
		}
	}
	return false
}

// ApplyPatch updates the profile from a JSON-shaped patch. Scalar keys
// overwrite; the nested flag maps (analytics, marketingPixels,
// embeddedContent, cookieCategories) merge shallowly, so patching one key
// preserves its siblings. The patched profile is re-validated.
func (p *SiteProfile) ApplyPatch(patch map[string]any) error {
	merged := p.toMap()
	for key, val := range patch {
		switch key {
		case "analytics", "marketingPixels", "embeddedContent", "cookieCategories":
			sub, ok := val.(map[string]any)
			if !ok {
				return fmt.Errorf("patch field %s must be an object", key)
			}
			existing, _ := merged[key].(map[string]any)
			if existing == nil {
				existing = map[string]any{}
			}
			for k, v := range sub {
				existing[k] = v
			}
			merged[key] = existing
		default:
			merged[key] = val
		}
	}

	raw, err := json.Marshal(merged)
	if err != nil {
		return err
	}
	var next SiteProfile
	if err := json.Unmarshal(raw, &next); err != nil {
		return fmt.Errorf("invalid profile patch: %w", err)
	}
	next.ApplyDefaults()
	if err := next.Validate(); err != nil {
		return err
	}
	*p = next
	return nil
}

func (p *SiteProfile) toMap() map[string]any {
	raw, err := json.Marshal(p)
	if err != nil {
		return map[string]any{}
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return map[string]any{}
	}
	return m
}

// Load reads a profile from a JSON file, applies defaults and validates.
func Load(path string) (*SiteProfile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(raw)
}

// Parse decodes a profile from JSON, applies defaults and validates.
func Parse(raw []byte) (*SiteProfile, error) {
	var p SiteProfile
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("invalid profile JSON: %w", err)
	}
	p.ApplyDefaults()
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
