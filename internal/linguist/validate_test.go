package linguist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loc(line string) Location {
	return Location{Filename: "../src/playlist.cpp", Line: line}
}

func TestValidate(t *testing.T) {
	type scenario struct {
		name     string
		messages []*Message
		codes    []string
		ok       bool
	}

	scenarios := []scenario{
		{
			name: "clean",
			messages: []*Message{
				{Locations: []Location{loc("68"), loc("1020")}, Source: "Artist", Translation: Translation{Text: "Umělec"}},
				{Locations: []Location{loc("68")}, Source: "Title", Translation: Translation{Text: "Název"}},
			},
			codes: nil,
			ok:    true,
		},
		{
			name: "missing source",
			messages: []*Message{
				{Locations: []Location{loc("10")}, Translation: Translation{Text: "x"}},
			},
			codes: []string{CodeMissingSource},
			ok:    false,
		},
		{
			name: "same call site, two translations",
			messages: []*Message{
				{Locations: []Location{loc("68")}, Source: "Artist", Translation: Translation{Text: "Umělec"}},
				{Locations: []Location{loc("68")}, Source: "Artist", Translation: Translation{Text: "Interpret"}},
			},
			codes: []string{CodeConflictingTranslation},
			ok:    false,
		},
		{
			name: "same call site, same translation",
			messages: []*Message{
				{Locations: []Location{loc("68")}, Source: "Artist", Translation: Translation{Text: "Umělec"}},
				{Locations: []Location{loc("68")}, Source: "Artist", Translation: Translation{Text: "Umělec"}},
			},
			codes: []string{CodeDuplicateMessage},
			ok:    true,
		},
		{
			name: "different call sites may differ",
			messages: []*Message{
				{Locations: []Location{loc("68")}, Source: "Artist", Translation: Translation{Text: "Umělec"}},
				{Locations: []Location{loc("900")}, Source: "Artist", Translation: Translation{Text: "Interpret"}},
			},
			codes: nil,
			ok:    true,
		},
		{
			name: "disambiguation comment separates keys",
			messages: []*Message{
				{Source: "Open", Comment: "file", Translation: Translation{Text: "Otevřít"}},
				{Source: "Open", Comment: "state", Translation: Translation{Text: "Otevřeno"}},
			},
			codes: nil,
			ok:    true,
		},
		{
			name: "obsolete duplicates are ignored",
			messages: []*Message{
				{Source: "Trackname", Translation: Translation{Type: Obsolete, Text: "Název skladby"}},
				{Source: "Trackname", Translation: Translation{Type: Vanished, Text: "Jméno"}},
			},
			codes: nil,
			ok:    true,
		},
		{
			name: "numerus without forms",
			messages: []*Message{
				{Numerus: true, Source: "%n track(s)", Translation: Translation{}},
			},
			codes: []string{CodeNumerusWithoutForms},
			ok:    true,
		},
	}

	for _, s := range scenarios {
		t.Run(s.name, func(t *testing.T) {
			doc := &Document{Language: "cs_CZ", Contexts: []*Context{{Name: "Playlist", Messages: s.messages}}}
			rep := Validate(doc)
			var codes []string
			for _, i := range rep.Issues {
				codes = append(codes, i.Code)
			}
			assert.Equal(t, s.codes, codes)
			assert.Equal(t, s.ok, rep.OK())
		})
	}
}

func TestValidateMissingLanguage(t *testing.T) {
	rep := Validate(&Document{})
	require.Len(t, rep.Warnings(), 1)
	assert.Equal(t, CodeMissingLanguage, rep.Warnings()[0].Code)
	assert.True(t, rep.OK())
	assert.Equal(t, "warning [missing-language] TS element has no language attribute", rep.String())
}

func TestValidateKnowthelistCatalogs(t *testing.T) {
	for _, name := range []string{"knowthelist_cs.ts", "knowthelist_tr.ts"} {
		doc, err := Unmarshal(readTestdata(t, name))
		require.NoError(t, err)
		rep := Validate(doc)
		assert.True(t, rep.OK(), rep.String())
		assert.Empty(t, rep.Issues, name)
	}
}

func TestIssueString(t *testing.T) {
	i := Issue{Severity: SeverityError, Code: CodeConflictingTranslation, Context: "Playlist", Source: "Artist", Message: "boom"}
	assert.Equal(t, `error [conflicting-translation] Playlist "Artist": boom`, i.String())
}
