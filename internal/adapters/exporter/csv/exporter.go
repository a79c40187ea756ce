package csv

import (
	"bytes"
	"encoding/csv"

	"github.com/david-geiger/knowthelist/internal/linguist"
	"github.com/david-geiger/knowthelist/internal/ports"
)

// Exporter writes the spreadsheet form read by parser/csv. Untranslated rows
// keep an empty translation cell for the translator to fill.
type Exporter struct{}

func New() *Exporter { return &Exporter{} }

func (e *Exporter) Format() string { return "csv" }

func (e *Exporter) Extension() string { return ".csv" }

func (e *Exporter) Export(meta ports.ExportMeta, items []ports.ExportItem) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if meta.Separator != 0 {
		w.Comma = meta.Separator
	}
	if err := w.Write([]string{"context", "source", "comment", "translation", "status", "key"}); err != nil {
		return nil, err
	}
	for _, it := range items {
		mm, err := linguist.UnmarshalMeta[linguist.MessageMeta](it.MetadataRaw)
		if err != nil {
			return nil, err
		}
		if err := w.Write([]string{it.Context, it.SourceText, mm.Comment, it.Translation, it.Status, it.Key}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
