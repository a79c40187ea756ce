// Package qtts imports Qt Linguist .ts files.
package qtts

import (
	"fmt"
	"strconv"

	"github.com/david-geiger/knowthelist/internal/domain"
	"github.com/david-geiger/knowthelist/internal/linguist"
	"github.com/david-geiger/knowthelist/internal/ports"
)

type Parser struct{}

func New() *Parser { return &Parser{} }

func (p *Parser) Format() string { return "qtts" }

func (p *Parser) Parse(data []byte) (ports.ParseResult, error) {
	doc, err := linguist.Unmarshal(data)
	if err != nil {
		return ports.ParseResult{}, err
	}
	header, err := linguist.MarshalMeta(linguist.HeaderMeta{Version: doc.Version, SourceLanguage: doc.SourceLanguage})
	if err != nil {
		return ports.ParseResult{}, err
	}
	res := ports.ParseResult{Locale: doc.Language, MetadataRaw: header}
	seen := map[string]int{}
	pos := 0
	var walkErr error
	doc.Walk(func(c *linguist.Context, m *linguist.Message) bool {
		key := m.Key(c.Name).String()
		// lupdate never writes the same key twice, hand-edited files might
		if n := seen[key]; n > 0 {
			seen[key] = n + 1
			key += linguist.KeySeparator + "#" + strconv.Itoa(n+1)
		} else {
			seen[key] = 1
		}
		meta, err := linguist.MarshalMeta(m.Meta())
		if err != nil {
			walkErr = fmt.Errorf("message %q: %w", m.Source, err)
			return false
		}
		res.Units = append(res.Units, &domain.Unit{
			Key:         key,
			SourceText:  m.Source,
			Context:     c.Name,
			Position:    pos,
			MetadataRaw: meta,
		})
		pos++
		if t, ok := parsedTranslation(key, m); ok {
			res.Translations = append(res.Translations, t)
		}
		return true
	})
	if walkErr != nil {
		return ports.ParseResult{}, walkErr
	}
	return res, nil
}

func parsedTranslation(key string, m *linguist.Message) (ports.ParsedTranslation, bool) {
	text := m.Translation.Joined()
	status := domain.StatusFinal
	switch {
	case m.IsObsolete():
		status = domain.StatusObsolete
	case m.Translation.Type == linguist.Unfinished:
		if text == "" {
			return ports.ParsedTranslation{}, false
		}
		status = domain.StatusUnfinished
	}
	return ports.ParsedTranslation{Key: key, Text: text, Status: status}, true
}
