// Package i18n resolves the visitor's locale preference and serves the
// per-locale string catalogs used by the page templates.
package i18n

import "golang.org/x/text/language"

var supported = []language.Tag{
	language.English, // en: default, first entry is the matcher fallback
	language.Hindi,   // hi
}

var matcher = language.NewMatcher(supported)

// Match resolves a locale tag to a supported locale, falling back to English
// for unknown or malformed tags.
func Match(locale string) language.Tag {
	tag, err := language.Parse(locale)
	if err != nil {
		return language.English
	}
	matched, _, _ := matcher.Match(tag)
	// Matcher may return an extended tag (e.g. en-u-rg-...); collapse back to
	// the supported base.
	base, _ := matched.Base()
	for _, s := range supported {
		if sb, _ := s.Base(); sb == base {
			return s
		}
	}
	return language.English
}

var catalogs = map[language.Tag]map[string]string{
	language.English: {
		"nav.home":       "Home",
		"nav.about":      "About",
		"nav.services":   "Services",
		"nav.view":       "Exhibits",
		"nav.contact":    "Contact",
		"nav.book":       "Book Ticket",
		"nav.tickets":    "My Tickets",
		"nav.login":      "Log in",
		"nav.logout":     "Log out",
		"nav.register":   "Register",
		"title.home":     "Welcome to Venuetix",
		"title.register": "Create an account",
		"title.verify":   "Verify your mobile number",
		"title.login":    "Log in",
		"title.book":     "Book a ticket",
		"title.tickets":  "My tickets",
		"title.payment":  "Payment",
		"title.contact":  "Contact us",
		"title.chat":     "Chat with us",
	},
	language.Hindi: {
		"nav.home":       "होम",
		"nav.about":      "हमारे बारे में",
		"nav.services":   "सेवाएं",
		"nav.view":       "प्रदर्शनी",
		"nav.contact":    "संपर्क",
		"nav.book":       "टिकट बुक करें",
		"nav.tickets":    "मेरे टिकट",
		"nav.login":      "लॉग इन",
		"nav.logout":     "लॉग आउट",
		"nav.register":   "पंजीकरण",
		"title.home":     "Venuetix में आपका स्वागत है",
		"title.register": "खाता बनाएं",
		"title.verify":   "मोबाइल नंबर सत्यापित करें",
		"title.login":    "लॉग इन करें",
		"title.book":     "टिकट बुक करें",
		"title.tickets":  "मेरे टिकट",
		"title.payment":  "भुगतान",
		"title.contact":  "हमसे संपर्क करें",
		"title.chat":     "हमसे चैट करें",
	},
}

// Strings returns the catalog for a supported locale. Missing keys fall back
// to the English entry at lookup time via the returned Catalog.
func Strings(tag language.Tag) Catalog {
	c, ok := catalogs[tag]
	if !ok {
		c = catalogs[language.English]
	}
	return Catalog{strings: c}
}

type Catalog struct {
	strings map[string]string
}

// T translates a catalog key, falling back to English and then to the key
// itself.
func (c Catalog) T(key string) string {
	if v, ok := c.strings[key]; ok {
		return v
	}
	if v, ok := catalogs[language.English][key]; ok {
		return v
	}
	return key
}
