package csvparser

import (
	"testing"

	csvexporter "github.com/david-geiger/knowthelist/internal/adapters/exporter/csv"
	"github.com/david-geiger/knowthelist/internal/domain"
	"github.com/david-geiger/knowthelist/internal/linguist"
	"github.com/david-geiger/knowthelist/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseContextColumns(t *testing.T) {
	data := "\xef\xbb\xbfContext,Source,Comment,Translation,Status\n" +
		"Playlist,Artist,,Umělec,\n" +
		"DjWidget,Auto DJ,button,,unfinished\n" +
		"MainWindow,\"Save, then quit\",,Uložit a skončit,Unfinished\n" +
		",,,,\n"

	res, err := New().Parse([]byte(data))
	require.NoError(t, err)
	require.Len(t, res.Units, 3)

	assert.Equal(t, "Playlist\x04Artist", res.Units[0].Key)
	assert.Equal(t, "Playlist", res.Units[0].Context)
	assert.Equal(t, "DjWidget\x04Auto DJ\x04button", res.Units[1].Key)
	assert.Equal(t, 2, res.Units[2].Position)
	assert.Equal(t, "Save, then quit", res.Units[2].SourceText)

	meta, err := linguist.UnmarshalMeta[linguist.MessageMeta](res.Units[1].MetadataRaw)
	require.NoError(t, err)
	assert.Equal(t, "button", meta.Comment)

	assert.Equal(t, []ports.ParsedTranslation{
		{Key: "Playlist\x04Artist", Text: "Umělec", Status: domain.StatusFinal},
		{Key: "MainWindow\x04Save, then quit", Text: "Uložit a skončit", Status: domain.StatusUnfinished},
	}, res.Translations)
}

func TestParseKeyValue(t *testing.T) {
	res, err := New().Parse([]byte("key,value\nplaylist.artist,Artist\n"))
	require.NoError(t, err)
	require.Len(t, res.Units, 1)
	assert.Equal(t, "playlist.artist", res.Units[0].Key)
	assert.Equal(t, "Artist", res.Units[0].SourceText)
	assert.Empty(t, res.Translations)
}

func TestParseMissingColumns(t *testing.T) {
	scenarios := []struct {
		name string
		data string
		err  string
	}{
		{"no source", "context,translation\nPlaylist,Umělec\n", "csv missing source column (source/value/text/default)"},
		{"no context or key", "source,translation\nArtist,Umělec\n", "csv needs a 'key' or a 'context' column"},
	}
	for _, s := range scenarios {
		t.Run(s.name, func(t *testing.T) {
			_, err := New().Parse([]byte(s.data))
			assert.EqualError(t, err, s.err)
		})
	}
}

func TestParseStatus(t *testing.T) {
	data := "context,source,translation,status\n" +
		"Playlist,Artist,Umělec,Done\n" +
		"Playlist,Title,Název,machine\n" +
		"Playlist,Genre,Žánr,vanished\n"
	res, err := New().Parse([]byte(data))
	require.NoError(t, err)
	require.Len(t, res.Translations, 3)
	assert.Equal(t, domain.StatusFinal, res.Translations[0].Status)
	assert.Equal(t, domain.StatusMachine, res.Translations[1].Status)
	assert.Equal(t, domain.StatusObsolete, res.Translations[2].Status)

	_, err = New().Parse([]byte("context,source,translation,status\nPlaylist,Artist,Umělec,approved\n"))
	assert.EqualError(t, err, `csv line 2: status "approved": must be a valid value`)
}

func TestExportThenParseSemicolon(t *testing.T) {
	meta, err := linguist.MarshalMeta(linguist.MessageMeta{Comment: "button"})
	require.NoError(t, err)
	items := []ports.ExportItem{
		{Key: "Playlist\x04Artist", Context: "Playlist", SourceText: "Artist", Translation: "Sanatçı", Status: domain.StatusFinal},
		{Key: "DjWidget\x04Auto DJ\x04button", Context: "DjWidget", SourceText: "Auto DJ", MetadataRaw: meta},
	}

	out, err := csvexporter.New().Export(ports.ExportMeta{Locale: "tr_TR", Separator: ';'}, items)
	require.NoError(t, err)
	assert.Equal(t, "context;source;comment;translation;status;key\n"+
		"Playlist;Artist;;Sanatçı;final;Playlist\x04Artist\n"+
		"DjWidget;Auto DJ;button;;;DjWidget\x04Auto DJ\x04button\n", string(out))

	res, err := New().Parse(out)
	require.NoError(t, err)
	require.Len(t, res.Units, 2)
	assert.Equal(t, items[1].Key, res.Units[1].Key)
	assert.Equal(t, meta, res.Units[1].MetadataRaw)
	assert.Equal(t, []ports.ParsedTranslation{
		{Key: "Playlist\x04Artist", Text: "Sanatçı", Status: domain.StatusFinal},
	}, res.Translations)
}
