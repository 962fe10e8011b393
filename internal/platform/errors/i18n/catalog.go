// Package i18n holds the localized message templates for domain error codes.
package i18n

import (
	"bytes"
	"sort"
	"sync"
	"text/template"

	"golang.org/x/text/language"
)

// Code is an error code string. The errors package imports this one, so the
// codes are repeated here as plain strings.
type Code = string

// BaseLocale is the locale every other catalog falls back to.
const BaseLocale = "en-US"

// Catalog holds the parsed message templates of one locale.
type Catalog struct {
	locale    string
	templates map[Code]*template.Template
	raw       map[Code]string
}

var (
	catalogsMu sync.RWMutex
	catalogs   = map[string]*Catalog{
		BaseLocale: NewCatalog(BaseLocale, enUSMessages),
		"ja-JP":    NewCatalog("ja-JP", jaJPMessages),
	}
)

// NewCatalog parses messages once. A message that is not a valid template is
// kept and rendered verbatim.
func NewCatalog(locale string, messages map[Code]string) *Catalog {
	c := &Catalog{
		locale:    locale,
		templates: make(map[Code]*template.Template, len(messages)),
		raw:       make(map[Code]string, len(messages)),
	}
	for code, msg := range messages {
		c.raw[code] = msg
		if t, err := template.New(code).Option("missingkey=zero").Parse(msg); err == nil {
			c.templates[code] = t
		}
	}
	return c
}

// RegisterCatalog adds or replaces the catalog for locale.
func RegisterCatalog(locale string, cat *Catalog) {
	catalogsMu.Lock()
	defer catalogsMu.Unlock()
	catalogs[locale] = cat
}

// GetCatalog returns the catalog for locale, or the base catalog.
func GetCatalog(locale string) *Catalog {
	catalogsMu.RLock()
	defer catalogsMu.RUnlock()
	if c, ok := catalogs[locale]; ok {
		return c
	}
	return catalogs[BaseLocale]
}

// Match resolves Accept-Language style preferences to the closest registered
// locale.
func Match(preferences ...string) string {
	catalogsMu.RLock()
	names := make([]string, 0, len(catalogs))
	for locale := range catalogs {
		if locale != BaseLocale {
			names = append(names, locale)
		}
	}
	catalogsMu.RUnlock()
	sort.Strings(names)
	// The matcher falls back to its first tag.
	names = append([]string{BaseLocale}, names...)

	tags := make([]language.Tag, 0, len(names))
	kept := make([]string, 0, len(names))
	for _, name := range names {
		tag, err := language.Parse(name)
		if err != nil {
			continue
		}
		tags = append(tags, tag)
		kept = append(kept, name)
	}
	_, index := language.MatchStrings(language.NewMatcher(tags), preferences...)
	if index < 0 || index >= len(kept) {
		return BaseLocale
	}
	return kept[index]
}

// Localize renders code for the locale closest to acceptLanguage and reports
// which locale was used.
func Localize(acceptLanguage string, code Code, metadata map[string]string) (string, string) {
	locale := Match(acceptLanguage)
	return locale, GetCatalog(locale).Format(code, metadata)
}

// Locale returns the catalog's locale.
func (c *Catalog) Locale() string {
	return c.locale
}

// Format renders the template for code. Unknown codes render as the code
// itself; missing metadata renders empty.
func (c *Catalog) Format(code Code, metadata map[string]string) string {
	raw, ok := c.raw[code]
	if !ok {
		return code
	}
	t, ok := c.templates[code]
	if !ok {
		return raw
	}
	if metadata == nil {
		metadata = map[string]string{}
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, metadata); err != nil {
		return raw
	}
	return buf.String()
}
