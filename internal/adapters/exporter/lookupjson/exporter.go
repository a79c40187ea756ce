// Package lookupjson dumps the runtime lookup table of a catalog as nested
// JSON: {"Context": {"source": "text"}}.
package lookupjson

import (
	"encoding/json"

	"github.com/david-geiger/knowthelist/internal/adapters/exporter/qtts"
	"github.com/david-geiger/knowthelist/internal/linguist"
	"github.com/david-geiger/knowthelist/internal/linguist/catalog"
	"github.com/david-geiger/knowthelist/internal/ports"
)

// CommentSeparator joins source and disambiguation comment in JSON keys.
const CommentSeparator = "\x04"

type Exporter struct{}

func New() *Exporter { return &Exporter{} }

func (e *Exporter) Format() string { return "lookupjson" }

func (e *Exporter) Extension() string { return ".json" }

// Export resolves every active message the way a runtime loader would:
// obsolete messages are left out and anything without a finished
// translation maps to its source text.
func (e *Exporter) Export(meta ports.ExportMeta, items []ports.ExportItem) ([]byte, error) {
	doc, err := qtts.BuildDocument(meta, items)
	if err != nil {
		return nil, err
	}
	cat := catalog.Build(doc)
	out := map[string]map[string]string{}
	doc.Walk(func(c *linguist.Context, m *linguist.Message) bool {
		if m.IsObsolete() {
			return true
		}
		key := m.Source
		if m.Comment != "" {
			key += CommentSeparator + m.Comment
		}
		text, ok := cat.Lookup(c.Name, m.Source, m.Comment)
		if !ok {
			text = m.Source
		}
		if out[c.Name] == nil {
			out[c.Name] = map[string]string{}
		}
		out[c.Name][key] = text
		return true
	})
	return json.MarshalIndent(out, "", "  ")
}
