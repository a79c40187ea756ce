// Package qtts writes units back out as a Qt Linguist .ts file.
package qtts

import (
	"fmt"

	"github.com/david-geiger/knowthelist/internal/domain"
	"github.com/david-geiger/knowthelist/internal/linguist"
	"github.com/david-geiger/knowthelist/internal/linguist/catalog"
	"github.com/david-geiger/knowthelist/internal/ports"
)

// DefaultVersion is written when the imported file did not carry one.
const DefaultVersion = "2.1"

type Exporter struct{}

func New() *Exporter { return &Exporter{} }

func (e *Exporter) Format() string { return "qtts" }

func (e *Exporter) Extension() string { return ".ts" }

func (e *Exporter) Export(meta ports.ExportMeta, items []ports.ExportItem) ([]byte, error) {
	doc, err := BuildDocument(meta, items)
	if err != nil {
		return nil, err
	}
	return linguist.Marshal(doc)
}

// BuildDocument groups items by context in the order they arrive. Machine
// translations are written as unfinished so a translator reviews them.
// Messages that are obsolete and have no text for this locale are dropped.
func BuildDocument(meta ports.ExportMeta, items []ports.ExportItem) (*linguist.Document, error) {
	header, err := linguist.UnmarshalMeta[linguist.HeaderMeta](meta.MetadataRaw)
	if err != nil {
		return nil, fmt.Errorf("file metadata: %w", err)
	}
	doc := &linguist.Document{Version: header.Version, Language: meta.Locale, SourceLanguage: header.SourceLanguage}
	if doc.Version == "" {
		doc.Version = DefaultVersion
	}
	if meta.MetadataRaw == "" {
		doc.SourceLanguage = meta.SourceLang
	}
	byName := map[string]*linguist.Context{}
	for _, it := range items {
		mm, err := linguist.UnmarshalMeta[linguist.MessageMeta](it.MetadataRaw)
		if err != nil {
			return nil, fmt.Errorf("unit %q metadata: %w", it.Key, err)
		}
		if mm.Obsolete && it.Status == "" {
			continue
		}
		m := &linguist.Message{Source: it.SourceText}
		m.ApplyMeta(mm)
		m.Translation.Type = translationType(it.Status)
		if m.Translation.Type == linguist.Obsolete && mm.Vanished {
			m.Translation.Type = linguist.Vanished
		}
		switch {
		case m.Numerus && it.Translation == "":
			m.Translation.NumerusForms = make([]string, catalog.NumerusCount(meta.Locale))
		default:
			m.SetJoined(it.Translation)
		}
		c, ok := byName[it.Context]
		if !ok {
			c = &linguist.Context{Name: it.Context}
			byName[it.Context] = c
			doc.Contexts = append(doc.Contexts, c)
		}
		c.Messages = append(c.Messages, m)
	}
	return doc, nil
}

func translationType(status string) linguist.TranslationType {
	switch status {
	case domain.StatusFinal:
		return linguist.Finished
	case domain.StatusObsolete:
		return linguist.Obsolete
	default:
		return linguist.Unfinished
	}
}
