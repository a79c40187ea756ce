// Package csvparser reads translator spreadsheets: one row per message with
// context, source, comment, translation and status columns.
package csvparser

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/david-geiger/knowthelist/internal/domain"
	"github.com/david-geiger/knowthelist/internal/linguist"
	"github.com/david-geiger/knowthelist/internal/ports"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/spkg/bom"
)

type Parser struct{}

func New() *Parser { return &Parser{} }

func (p *Parser) Format() string { return "csv" }

type columns struct {
	key, context, source, comment, translation, status int
}

func findColumns(header []string) (columns, error) {
	idx := map[string]int{}
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	pick := func(names ...string) int {
		for _, n := range names {
			if i, ok := idx[n]; ok {
				return i
			}
		}
		return -1
	}
	c := columns{
		key:         pick("key", "id"),
		context:     pick("context"),
		source:      pick("source", "value", "text", "default"),
		comment:     pick("comment", "disambiguation"),
		translation: pick("translation", "target"),
		status:      pick("status"),
	}
	if c.source == -1 {
		return c, errors.New("csv missing source column (source/value/text/default)")
	}
	if c.key == -1 && c.context == -1 {
		return c, errors.New("csv needs a 'key' or a 'context' column")
	}
	return c, nil
}

func cell(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return rec[i]
}

var statusAliases = map[string]string{
	"":         domain.StatusFinal,
	"finished": domain.StatusFinal,
	"done":     domain.StatusFinal,
	"vanished": domain.StatusObsolete,
}

// parseStatus maps a status cell onto a translation status.
func parseStatus(raw string) (string, error) {
	status := strings.ToLower(strings.TrimSpace(raw))
	if alias, ok := statusAliases[status]; ok {
		status = alias
	}
	err := validation.Validate(status, validation.In(
		domain.StatusFinal, domain.StatusUnfinished, domain.StatusMachine, domain.StatusObsolete,
	))
	if err != nil {
		return "", fmt.Errorf("status %q: %w", raw, err)
	}
	return status, nil
}

func (p *Parser) Parse(data []byte) (ports.ParseResult, error) {
	r := csv.NewReader(bytes.NewReader(bom.Clean(data)))
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if err != nil {
		return ports.ParseResult{}, fmt.Errorf("csv header: %w", err)
	}
	if len(header) == 1 && strings.Count(header[0], ";") > 0 {
		r = csv.NewReader(bytes.NewReader(bom.Clean(data)))
		r.Comma = ';'
		r.FieldsPerRecord = -1
		if header, err = r.Read(); err != nil {
			return ports.ParseResult{}, fmt.Errorf("csv header: %w", err)
		}
	}
	cols, err := findColumns(header)
	if err != nil {
		return ports.ParseResult{}, err
	}
	var res ports.ParseResult
	for line := 2; ; line++ {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return ports.ParseResult{}, fmt.Errorf("csv line %d: %w", line, err)
		}
		k := linguist.Key{Context: cell(rec, cols.context), Source: cell(rec, cols.source), Comment: cell(rec, cols.comment)}
		key := cell(rec, cols.key)
		if key == "" {
			if k.Source == "" {
				continue
			}
			key = k.String()
		}
		meta, err := linguist.MarshalMeta(linguist.MessageMeta{Comment: k.Comment})
		if err != nil {
			return ports.ParseResult{}, err
		}
		res.Units = append(res.Units, &domain.Unit{
			Key:         key,
			SourceText:  k.Source,
			Context:     k.Context,
			Position:    len(res.Units),
			MetadataRaw: meta,
		})
		if text := cell(rec, cols.translation); text != "" {
			status, err := parseStatus(cell(rec, cols.status))
			if err != nil {
				return ports.ParseResult{}, fmt.Errorf("csv line %d: %w", line, err)
			}
			res.Translations = append(res.Translations, ports.ParsedTranslation{Key: key, Text: text, Status: status})
		}
	}
	return res, nil
}
