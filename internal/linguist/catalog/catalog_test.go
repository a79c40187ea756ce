package catalog

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"testing/fstest"

	"github.com/david-geiger/knowthelist/internal/linguist"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func load(t *testing.T, name string) *linguist.Document {
	t.Helper()
	b, err := os.ReadFile(filepath.Join("..", "testdata", name))
	require.NoError(t, err)
	doc, err := linguist.Unmarshal(b)
	require.NoError(t, err)
	return doc
}

func TestLookupKnowthelist(t *testing.T) {
	cs := Build(load(t, "knowthelist_cs.ts"))
	tr := Build(load(t, "knowthelist_tr.ts"))

	type scenario struct {
		cat      *Catalog
		context  string
		source   string
		expected string
	}
	scenarios := []scenario{
		{cs, "Playlist", "Artist", "Umělec"},
		{tr, "Playlist", "Artist", "Artist"},
		{cs, "CollectionTree", "Re-scan collection", "Obnovit hudební sbírku"},
		// obsolete
		{cs, "CollectionWidget", "yy", "yy"},
		// unfinished with draft text
		{cs, "DjWidget", "AutoDJ", "AutoDJ"},
		// finished but empty
		{cs, "ModeSelector", "Frame", "Frame"},
		// unknown context
		{cs, "Nowhere", "Artist", "Artist"},
	}
	for _, s := range scenarios {
		assert.Equal(t, s.expected, s.cat.Translate(s.context, s.source), "%s/%s", s.context, s.source)
	}

	_, ok := tr.Lookup("Playlist", "Artist", "")
	assert.False(t, ok)
	assert.Equal(t, 0, tr.Len())
	assert.Equal(t, "cs_CZ", cs.Locale())
	assert.Equal(t, "cs-CZ", cs.Language().String())
}

func TestWithUnfinished(t *testing.T) {
	cs := Build(load(t, "knowthelist_cs.ts"), WithUnfinished())
	assert.Equal(t, "Diskžokej", cs.Translate("DjWidget", "AutoDJ"))
	// empty unfinished entries still fall back
	assert.Equal(t, "Artist", Build(load(t, "knowthelist_tr.ts"), WithUnfinished()).Translate("Playlist", "Artist"))
}

func TestLookupCommentFallback(t *testing.T) {
	doc := &linguist.Document{Language: "cs", Contexts: []*linguist.Context{{
		Name: "Player",
		Messages: []*linguist.Message{
			{Source: "Open", Translation: linguist.Translation{Text: "Otevřít"}},
			{Source: "Open", Comment: "state", Translation: linguist.Translation{Text: "Otevřeno"}},
			{Source: "Open", Comment: "stale", Translation: linguist.Translation{Type: linguist.Obsolete, Text: "Staré"}},
		},
	}}}
	c := Build(doc)

	s, ok := c.Lookup("Player", "Open", "state")
	assert.True(t, ok)
	assert.Equal(t, "Otevřeno", s)

	s, ok = c.Lookup("Player", "Open", "menu")
	assert.True(t, ok)
	assert.Equal(t, "Otevřít", s)

	s, ok = c.Lookup("Player", "Open", "stale")
	assert.True(t, ok)
	assert.Equal(t, "Otevřít", s)
}

func TestTranslateN(t *testing.T) {
	doc := &linguist.Document{Language: "cs_CZ", Contexts: []*linguist.Context{{
		Name: "PlaylistBrowser",
		Messages: []*linguist.Message{{
			Numerus: true,
			Source:  "%n track(s)",
			Translation: linguist.Translation{NumerusForms: []string{
				"%n skladba", "%n skladby", "%n skladeb",
			}},
		}},
	}}}
	c := Build(doc)

	type scenario struct {
		n        int
		expected string
	}
	scenarios := []scenario{
		{1, "1 skladba"},
		{2, "2 skladby"},
		{4, "4 skladby"},
		{5, "5 skladeb"},
		{0, "0 skladeb"},
		{22, "22 skladeb"},
	}
	for _, s := range scenarios {
		assert.Equal(t, s.expected, c.TranslateN("PlaylistBrowser", "%n track(s)", "", s.n))
	}

	assert.Equal(t, "7 hours", c.TranslateN("PlaylistBrowser", "%n hours", "", 7))
}

func TestTranslateNClampsShortFormLists(t *testing.T) {
	doc := &linguist.Document{Language: "cs_CZ", Contexts: []*linguist.Context{{
		Name: "PlaylistBrowser",
		Messages: []*linguist.Message{{
			Numerus:     true,
			Source:      "%n track(s)",
			Translation: linguist.Translation{NumerusForms: []string{"%n skladba"}},
		}},
	}}}
	c := Build(doc)
	assert.Equal(t, "1 skladba", c.TranslateN("PlaylistBrowser", "%n track(s)", "", 1))
	assert.Equal(t, "9 skladba", c.TranslateN("PlaylistBrowser", "%n track(s)", "", 9))
}

func TestTranslateNSingleFormLanguage(t *testing.T) {
	doc := &linguist.Document{Language: "tr_TR", Contexts: []*linguist.Context{{
		Name: "PlaylistBrowser",
		Messages: []*linguist.Message{{
			Numerus:     true,
			Source:      "%n track(s)",
			Translation: linguist.Translation{NumerusForms: []string{"%n parça"}},
		}},
	}}}
	c := Build(doc)
	assert.Equal(t, "1 parça", c.TranslateN("PlaylistBrowser", "%n track(s)", "", 1))
	assert.Equal(t, "9 parça", c.TranslateN("PlaylistBrowser", "%n track(s)", "", 9))
}

func TestNumerusCount(t *testing.T) {
	scenarios := []struct {
		locale   string
		expected int
	}{
		{"cs_CZ", 3},
		{"en", 2},
		{"tr_TR", 1},
		{"hu", 1},
		{"ja", 1},
		{"pl", 3},
		{"not a locale!", 1},
	}
	for _, s := range scenarios {
		assert.Equal(t, s.expected, NumerusCount(s.locale), s.locale)
	}
}

func TestBundle(t *testing.T) {
	b := NewBundle()
	n, err := b.LoadDir(filepath.Join("..", "testdata"), "knowthelist")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"cs_CZ", "tr_TR"}, b.Locales())

	c, ok := b.Match("cs")
	require.True(t, ok)
	assert.Equal(t, "cs_CZ", c.Locale())

	c, ok = b.Match("tr_TR")
	require.True(t, ok)
	assert.Equal(t, "tr_TR", c.Locale())

	_, ok = b.Match("ja")
	assert.False(t, ok)
	_, ok = b.Match("not a locale!")
	assert.False(t, ok)

	assert.Equal(t, "Umělec", b.Translator("cs_CZ").Translate("Playlist", "Artist"))
	assert.Equal(t, "Artist", b.Translator("ja").Translate("Playlist", "Artist"))
}

func TestBundleLocaleFromFilename(t *testing.T) {
	fsys := fstest.MapFS{
		"app_de.ts": {Data: []byte(`<?xml version="1.0" encoding="utf-8"?>
<!DOCTYPE TS>
<TS version="2.1">
<context>
    <name>Playlist</name>
    <message>
        <source>Artist</source>
        <translation>Künstler</translation>
    </message>
</context>
</TS>
`)},
		"other_fr.ts": {Data: []byte("ignored")},
	}
	b := NewBundle()
	n, err := b.LoadFS(fsys, "app")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"de"}, b.Locales())
	assert.Equal(t, "Künstler", b.Translator("de-AT").Translate("Playlist", "Artist"))
}

func TestBundleRejectsBrokenFiles(t *testing.T) {
	fsys := fstest.MapFS{"app_cs.ts": {Data: []byte("<TS><context>")}}
	_, err := NewBundle().LoadFS(fsys, "app")
	assert.ErrorIs(t, err, linguist.ErrMalformed)
}

func TestBundleConcurrentAccess(t *testing.T) {
	b := NewBundle()
	cs := Build(load(t, "knowthelist_cs.ts"))
	tr := Build(load(t, "knowthelist_tr.ts"))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				b.Add(cs)
			} else {
				b.Add(tr)
			}
			_ = b.Translator("cs").Translate("Playlist", "Artist")
		}(i)
	}
	wg.Wait()
	assert.Equal(t, []string{"cs_CZ", "tr_TR"}, b.Locales())
}
