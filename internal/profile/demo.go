package profile

// Demo returns a fully populated example profile for local trial runs.
func Demo() *SiteProfile {
	p := &SiteProfile{
		Name:            "Main Website",
		Domain:          "example.com",
		CompanyType:     "GmbH",
		CompanyName:     "Demo GmbH",
		AddressStreet:   "Musterstraße 123",
		AddressCity:     "Berlin",
		AddressZip:      "10115",
		AddressCountry:  "DE",
		ContactEmail:    "info@example.com",
		ContactPhone:    "+49 30 12345678",
		RegisterInfo:    "HRB 12345 B, Amtsgericht Berlin-Charlottenburg",
		VatID:           "DE123456789",
		HostingProvider: "Vercel",
		CMS:             "Next.js",
		Analytics:       Analytics{Provider: "GA4", Enabled: true},
		MarketingPixels: map[string]bool{"Meta": true, "TikTok": false},
		EmbeddedContent: map[string]bool{"YouTube": true, "Maps": true},
		NewsletterTool:  "Mailchimp",
		ContactForm:     true,
		SetsCookies:     true,
		CookieCategories: map[string]bool{
			"essential":  true,
			"statistics": true,
			"marketing":  true,
		},
		ConsentMode: "opt-in",
	}
	p.ApplyDefaults()
	return p
}
