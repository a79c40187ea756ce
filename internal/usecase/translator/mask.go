package translator

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/samber/lo"
)

// Qt arguments: %1..%99, their localized %L forms, and the numerus count %n.
var placeholderRE = regexp.MustCompile(`%L?(?:[1-9][0-9]?|n)`)

// Rich-text tags as they appear once the catalog XML is decoded.
var tagRE = regexp.MustCompile(`</?[a-zA-Z][a-zA-Z0-9]*(?:\s[^<>]*)?/?>`)

var tokenRE = regexp.MustCompile(`__(?:PH|TAG)\d+__`)

// masked is a source string with every placeholder and tag swapped for an
// opaque token the model is told to keep.
type masked struct {
	text         string
	placeholders []string // tokens
	tags         []string // tokens
	originals    map[string]string
}

func mask(s string) masked {
	m := masked{originals: map[string]string{}}
	tokens := map[string]string{}
	for i, tg := range lo.Uniq(tagRE.FindAllString(s, -1)) {
		token := fmt.Sprintf("__TAG%d__", i)
		tokens[tg], m.originals[token] = token, tg
		m.tags = append(m.tags, token)
	}
	for i, ph := range lo.Uniq(placeholderRE.FindAllString(s, -1)) {
		token := fmt.Sprintf("__PH%d__", i)
		tokens[ph], m.originals[token] = token, ph
		m.placeholders = append(m.placeholders, token)
	}
	text := tagRE.ReplaceAllStringFunc(s, func(tag string) string { return tokens[tag] })
	// the regexp is greedy, so %10 is never read as %1 followed by 0
	m.text = placeholderRE.ReplaceAllStringFunc(text, func(ph string) string { return tokens[ph] })
	return m
}

// check reports the first token missing from a masked translation.
func (m masked) check(translated string) error {
	for _, token := range append(append([]string{}, m.placeholders...), m.tags...) {
		if !strings.Contains(translated, token) {
			return fmt.Errorf("placeholder missing in translation: %s", m.originals[token])
		}
	}
	return nil
}

func (m masked) unmask(translated string) string {
	return tokenRE.ReplaceAllStringFunc(translated, func(token string) string {
		if orig, ok := m.originals[token]; ok {
			return orig
		}
		return token
	})
}
