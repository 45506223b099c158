// Package translation tracks the current and available content languages.
//
// Translatable properties are stored in one column per language, named
// "<property>_<lang>". The Translator decides which suffix applies.
package translation

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// DefaultLanguage is used when no language is configured.
const DefaultLanguage = "en"

// Translator holds the current language and the set of available ones.
//
// A Translator is not safe for concurrent mutation. Like a Source it is
// configured once per request.
type Translator struct {
	current   language.Tag
	available []language.Tag
	matcher   language.Matcher
}

// New creates a translator. available lists BCP 47 tags in preference
// order; when empty it defaults to current alone. current must match one
// of the available languages.
func New(current string, available ...string) (*Translator, error) {
	if current == "" {
		current = DefaultLanguage
	}
	if len(available) == 0 {
		available = []string{current}
	}

	tags := make([]language.Tag, 0, len(available))
	for _, lang := range available {
		tag, err := language.Parse(lang)
		if err != nil {
			return nil, fmt.Errorf("invalid language %q: %w", lang, err)
		}
		tags = append(tags, tag)
	}

	t := &Translator{
		available: tags,
		matcher:   language.NewMatcher(tags),
	}
	if err := t.SetCurrent(current); err != nil {
		return nil, err
	}
	return t, nil
}

// MustNew is like New but panics on error. For tests and static setup.
func MustNew(current string, available ...string) *Translator {
	t, err := New(current, available...)
	if err != nil {
		panic(err)
	}
	return t
}

// Current returns the current language code ("en", "fr").
func (t *Translator) Current() string {
	return code(t.current)
}

// SetCurrent switches the current language. Regional variants match their
// base language ("fr-CA" selects "fr" when only "fr" is available).
func (t *Translator) SetCurrent(lang string) error {
	tag, err := t.match(lang)
	if err != nil {
		return err
	}
	t.current = tag
	return nil
}

// Available returns the available language codes in preference order.
func (t *Translator) Available() []string {
	codes := make([]string, len(t.available))
	for i, tag := range t.available {
		codes[i] = code(tag)
	}
	return codes
}

// Has reports whether lang matches an available language exactly or by
// base language.
func (t *Translator) Has(lang string) bool {
	_, err := t.match(lang)
	return err == nil
}

// Ident returns the column name holding property in the current language.
func (t *Translator) Ident(property string) string {
	return LocalizedIdent(property, t.Current())
}

// Idents returns the column names holding property, one per available
// language.
func (t *Translator) Idents(property string) []string {
	idents := make([]string, len(t.available))
	for i, tag := range t.available {
		idents[i] = LocalizedIdent(property, code(tag))
	}
	return idents
}

func (t *Translator) match(lang string) (language.Tag, error) {
	tag, err := language.Parse(lang)
	if err != nil {
		return language.Und, fmt.Errorf("invalid language %q: %w", lang, err)
	}
	_, index, confidence := t.matcher.Match(tag)
	if confidence < language.High {
		return language.Und, fmt.Errorf("language %q is not available (have %s)", lang, strings.Join(t.Available(), ", "))
	}
	return t.available[index], nil
}

// LocalizedIdent returns "<property>_<lang>".
func LocalizedIdent(property, lang string) string {
	return property + "_" + lang
}

// code returns the lower-case language code of a tag, including the region
// when one is set ("en", "pt_br").
func code(tag language.Tag) string {
	base, _ := tag.Base()
	region, confidence := tag.Region()
	if confidence == language.Exact {
		return base.String() + "_" + strings.ToLower(region.String())
	}
	return base.String()
}
