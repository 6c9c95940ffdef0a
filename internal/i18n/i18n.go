// Package i18n translates UI strings into English or Burmese.
package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

var (
	supported = []language.Tag{language.English, language.Burmese}
	matcher   = language.NewMatcher(supported)
	messages  = buildCatalog()
)

func buildCatalog() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for key, text := range burmese {
		_ = b.SetString(language.Burmese, key, text)
		_ = b.SetString(language.English, key, key)
	}
	return b
}

// Match returns the supported language closest to lang. Unknown or empty
// input falls back to English.
func Match(lang string) language.Tag {
	tag, err := language.Parse(lang)
	if err != nil {
		return language.English
	}
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return language.English
	}
	return supported[idx]
}

// Printer formats catalog messages for one language.
type Printer struct {
	tag language.Tag
	p   *message.Printer
}

// New returns a Printer for the language best matching lang.
func New(lang string) *Printer {
	tag := Match(lang)
	return &Printer{
		tag: tag,
		p:   message.NewPrinter(tag, message.Catalog(messages)),
	}
}

// T translates key and formats it with args.
func (p *Printer) T(key string, args ...interface{}) string {
	return p.p.Sprintf(key, args...)
}

// Lang returns the BCP 47 code of the printer language, e.g. "my".
func (p *Printer) Lang() string {
	return p.tag.String()
}
