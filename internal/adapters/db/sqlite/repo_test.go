package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/david-geiger/knowthelist/internal/domain"
	"github.com/david-geiger/knowthelist/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Init(filepath.Join(t.TempDir(), "workbench.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func seedFile(t *testing.T, db *sql.DB) (*domain.Project, *domain.File) {
	t.Helper()
	ctx := context.Background()
	p := &domain.Project{Name: "knowthelist", SourceLang: "en"}
	require.NoError(t, NewProjectRepo(db).Create(ctx, p))
	f := &domain.File{ProjectID: p.ID, Path: "locale/knowthelist_cs.ts", Format: "qtts", Locale: "cs_CZ", Hash: "2d711642b726b04401627ca9fbac32f5c8530fb1903cc4db02258717921a4881"}
	require.NoError(t, NewFileRepo(db).Create(ctx, f))
	return p, f
}

func TestInitIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "workbench.db")
	db, err := Init(path)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = Init(path)
	require.NoError(t, err)
	defer db.Close()

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM schema_migrations`).Scan(&n))
	names, err := migrationNames()
	require.NoError(t, err)
	assert.Equal(t, len(names), n)
}

func TestProjectRepo(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := NewProjectRepo(db)

	p := &domain.Project{Name: "knowthelist", SourceLang: "en"}
	require.NoError(t, repo.Create(ctx, p))
	assert.NotZero(t, p.ID)

	got, err := repo.GetByName(ctx, "knowthelist")
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	_, err = repo.GetByName(ctx, "missing")
	assert.True(t, errors.Is(err, sql.ErrNoRows))

	require.NoError(t, repo.AddLocale(ctx, &domain.ProjectLocale{ProjectID: p.ID, Locale: "tr_TR"}))
	require.NoError(t, repo.AddLocale(ctx, &domain.ProjectLocale{ProjectID: p.ID, Locale: "cs_CZ"}))
	require.NoError(t, repo.AddLocale(ctx, &domain.ProjectLocale{ProjectID: p.ID, Locale: "cs_CZ"}))
	locales, err := repo.ListLocales(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, locales, 2)
	assert.Equal(t, "cs_CZ", locales[0].Locale)

	p.SourceLang = "en_US"
	require.NoError(t, repo.Update(ctx, p))
	got, err = repo.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "en_US", got.SourceLang)

	require.NoError(t, repo.Delete(ctx, p.ID))
	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestUnitsKeepFilePosition(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	_, f := seedFile(t, db)
	units := NewUnitRepo(db)

	// more rows than one insert chunk, keys deliberately out of alphabetical order
	var batch []*domain.Unit
	for i := 0; i < 250; i++ {
		batch = append(batch, &domain.Unit{
			FileID:     f.ID,
			Key:        fmt.Sprintf("Playlist\x04z%03d", 249-i),
			SourceText: fmt.Sprintf("z%03d", 249-i),
			Context:    "Playlist",
			Position:   i,
		})
	}
	require.NoError(t, units.UpsertBatch(ctx, batch))

	list, err := units.ListByFile(ctx, f.ID)
	require.NoError(t, err)
	require.Len(t, list, 250)
	assert.Equal(t, "z249", list[0].SourceText)
	assert.Equal(t, "z000", list[249].SourceText)

	// re-import updates in place
	batch[0].MetadataRaw = `{"comment":"x"}`
	require.NoError(t, units.UpsertBatch(ctx, batch[:1]))
	u, err := units.Get(ctx, list[0].ID)
	require.NoError(t, err)
	assert.Equal(t, `{"comment":"x"}`, u.MetadataRaw)
}

func TestTranslationRepo(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	_, f := seedFile(t, db)
	require.NoError(t, NewUnitRepo(db).UpsertBatch(ctx, []*domain.Unit{
		{FileID: f.ID, Key: "Playlist\x04Title", SourceText: "Title", Context: "Playlist", Position: 0},
		{FileID: f.ID, Key: "Playlist\x04Artist", SourceText: "Artist", Context: "Playlist", Position: 1},
	}))
	units, err := NewUnitRepo(db).ListByFile(ctx, f.ID)
	require.NoError(t, err)
	repo := NewTranslationRepo(db)

	got, err := repo.Get(ctx, units[0].ID, "cs_CZ")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, repo.Upsert(ctx, &domain.Translation{UnitID: units[1].ID, Locale: "cs_CZ", Text: "Umělec", Status: domain.StatusFinal}))
	require.NoError(t, repo.Upsert(ctx, &domain.Translation{UnitID: units[0].ID, Locale: "cs_CZ", Text: "Nazev", Status: domain.StatusMachine, Provider: "local"}))
	require.NoError(t, repo.Upsert(ctx, &domain.Translation{UnitID: units[0].ID, Locale: "cs_CZ", Text: "Název", Status: domain.StatusFinal}))

	list, err := repo.ListByFileLocale(ctx, f.ID, "cs_CZ")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Název", list[0].Text)
	assert.Equal(t, domain.StatusFinal, list[0].Status)
	assert.Equal(t, "", list[0].Provider)
	assert.Nil(t, list[0].Confidence)
	assert.Equal(t, "Umělec", list[1].Text)

	list, err = repo.ListByFileLocale(ctx, f.ID, "tr_TR")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestJobRepo(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	p, _ := seedFile(t, db)
	repo := NewJobRepo(db)

	j := &domain.Job{Type: "translate_file", Status: domain.JobQueued, ProjectID: &p.ID, Provider: "local", Total: 2}
	id, err := repo.Create(ctx, j)
	require.NoError(t, err)

	locale := "cs_CZ"
	itemID, err := repo.AddItem(ctx, &domain.JobItem{JobID: id, Locale: &locale, Status: "pending"})
	require.NoError(t, err)
	require.NoError(t, repo.UpdateItem(ctx, itemID, "error", "boom"))
	for _, msg := range []string{"first", "second", "third"} {
		require.NoError(t, repo.AddLog(ctx, &domain.JobLog{JobID: id, Level: "info", Message: msg}))
	}
	require.NoError(t, repo.UpdateProgress(ctx, id, 1, 2, domain.JobRunning))

	got, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.JobRunning, got.Status)
	assert.Equal(t, 1, got.Progress)
	assert.Equal(t, "local", got.Provider)
	require.NotNil(t, got.ProjectID)
	assert.Equal(t, p.ID, *got.ProjectID)

	items, err := repo.ListItems(ctx, id)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "boom", items[0].Error)
	assert.Nil(t, items[0].UnitID)
	assert.Equal(t, "cs_CZ", *items[0].Locale)

	logs, err := repo.ListLogs(ctx, id, 2)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "second", logs[0].Message)
	assert.Equal(t, "third", logs[1].Message)

	require.NoError(t, repo.Delete(ctx, id))
	got, err = repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, got)
	items, err = repo.ListItems(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestCacheRepo(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := NewCacheRepo(db)

	e, err := repo.Get(ctx, "Artist", "en", "cs_CZ", "local", "llama3")
	require.NoError(t, err)
	assert.Nil(t, e)

	require.NoError(t, repo.Put(ctx, &domain.CacheEntry{SourceText: "Artist", SrcLang: "en", TgtLang: "cs_CZ", Provider: "local", Model: "llama3", Translation: "Umelec"}))
	require.NoError(t, repo.Put(ctx, &domain.CacheEntry{SourceText: "Artist", SrcLang: "en", TgtLang: "cs_CZ", Provider: "local", Model: "llama3", Translation: "Umělec"}))

	e, err = repo.Get(ctx, "Artist", "en", "cs_CZ", "local", "llama3")
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.Equal(t, "Umělec", e.Translation)

	e, err = repo.Get(ctx, "Artist", "en", "cs_CZ", "local", "other")
	require.NoError(t, err)
	assert.Nil(t, e)
}

func TestStoreInTxRollsBack(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	store := NewStore(db)

	boom := errors.New("boom")
	err := store.InTx(ctx, func(r ports.Repositories) error {
		if err := r.Projects.Create(ctx, &domain.Project{Name: "rolled-back", SourceLang: "en"}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	err = store.InTx(ctx, func(r ports.Repositories) error {
		return r.Projects.Create(ctx, &domain.Project{Name: "kept", SourceLang: "en"})
	})
	require.NoError(t, err)

	list, err := store.Repositories().Projects.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "kept", list[0].Name)
}
