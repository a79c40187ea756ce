// Package catalog turns decoded TS documents into runtime lookup tables.
package catalog

import (
	"strconv"
	"strings"

	"github.com/david-geiger/knowthelist/internal/linguist"
	"golang.org/x/text/feature/plural"
	"golang.org/x/text/language"
)

type entry struct {
	text  string
	forms []string
}

// Catalog maps (context, source, comment) to translated text. It is
// immutable once built and safe for concurrent use.
type Catalog struct {
	locale  string
	tag     language.Tag
	plurals []plural.Form
	entries map[linguist.Key]entry
}

type options struct {
	unfinished bool
}

type Option func(*options)

// WithUnfinished serves unfinished translations that already carry text
// instead of falling back to the source.
func WithUnfinished() Option {
	return func(o *options) { o.unfinished = true }
}

// ParseLocale accepts Qt style (cs_CZ) as well as BCP 47 (cs-CZ) names.
func ParseLocale(s string) (language.Tag, error) {
	return language.Parse(strings.ReplaceAll(strings.TrimSpace(s), "_", "-"))
}

// Build indexes the active messages of d. Obsolete messages never enter the
// table; unfinished ones only with WithUnfinished. Empty translations are
// left out so lookups fall back to the source.
func Build(d *linguist.Document, opts ...Option) *Catalog {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	tag, err := ParseLocale(d.Language)
	if err != nil {
		tag = language.Und
	}
	c := &Catalog{
		locale:  d.Language,
		tag:     tag,
		plurals: integerForms(tag),
		entries: make(map[linguist.Key]entry, d.Len()),
	}
	d.Walk(func(ctx *linguist.Context, m *linguist.Message) bool {
		if m.IsObsolete() {
			return true
		}
		if m.Translation.Type == linguist.Unfinished && !o.unfinished {
			return true
		}
		k := m.Key(ctx.Name)
		if _, dup := c.entries[k]; dup {
			return true
		}
		e := entry{text: m.Translation.Text}
		if m.Numerus {
			e = entry{forms: m.Translation.NumerusForms}
			if !anyText(e.forms) {
				return true
			}
		} else if e.text == "" {
			return true
		}
		c.entries[k] = e
		return true
	})
	return c
}

func anyText(forms []string) bool {
	for _, f := range forms {
		if f != "" {
			return true
		}
	}
	return false
}

// Empty returns a catalog that translates everything to its source.
func Empty() *Catalog {
	return &Catalog{tag: language.Und, plurals: integerForms(language.Und), entries: map[linguist.Key]entry{}}
}

func (c *Catalog) Locale() string { return c.locale }

func (c *Catalog) Language() language.Tag { return c.tag }

func (c *Catalog) Len() int { return len(c.entries) }

func (c *Catalog) find(context, source, comment string) (entry, bool) {
	if e, ok := c.entries[linguist.Key{Context: context, Source: source, Comment: comment}]; ok {
		return e, true
	}
	if comment == "" {
		return entry{}, false
	}
	e, ok := c.entries[linguist.Key{Context: context, Source: source}]
	return e, ok
}

// Lookup returns the translation for source in context. When comment is
// given but no message carries it, the comment-less message is tried next.
func (c *Catalog) Lookup(context, source, comment string) (string, bool) {
	e, ok := c.find(context, source, comment)
	if !ok {
		return "", false
	}
	if e.forms != nil {
		return e.forms[0], e.forms[0] != ""
	}
	return e.text, true
}

// Translate returns the translation or source when there is none.
func (c *Catalog) Translate(context, source string) string {
	if s, ok := c.Lookup(context, source, ""); ok {
		return s
	}
	return source
}

// TranslateN picks the numerus form for n and substitutes %n and %Ln.
func (c *Catalog) TranslateN(context, source, comment string, n int) string {
	text := source
	if e, ok := c.find(context, source, comment); ok {
		switch {
		case e.forms != nil:
			idx := numerusIndex(c.tag, c.plurals, n)
			if idx >= len(e.forms) {
				idx = len(e.forms) - 1
			}
			if e.forms[idx] != "" {
				text = e.forms[idx]
			}
		default:
			text = e.text
		}
	}
	num := strconv.Itoa(n)
	return strings.NewReplacer("%Ln", num, "%n", num).Replace(text)
}
