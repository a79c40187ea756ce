package jobs

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/david-geiger/knowthelist/internal/adapters/db/sqlite"
	"github.com/david-geiger/knowthelist/internal/domain"
	"github.com/david-geiger/knowthelist/internal/ports"
	"github.com/david-geiger/knowthelist/internal/usecase/translator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type providerSource map[string]*domain.Provider

func (s providerSource) Get(name string) (*domain.Provider, error) {
	if p, ok := s[name]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("unknown provider %q", name)
}

func (s providerSource) List() []*domain.Provider { return nil }

type fakeTranslator struct {
	mu    sync.Mutex
	calls []translator.TranslateArgs
	fn    func(ctx context.Context, a translator.TranslateArgs) (string, error)
}

func (f *fakeTranslator) TranslateOne(ctx context.Context, a translator.TranslateArgs) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, a)
	f.mu.Unlock()
	return f.fn(ctx, a)
}

type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) Emit(name string, _ any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, name)
}

type fixture struct {
	repos ports.Repositories
	file  *domain.File
	units []*domain.Unit
}

// seed stores a small catalog: a finished message, an unfinished one, an
// obsolete one and a numerus one.
func seed(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	db, err := sqlite.Init(filepath.Join(t.TempDir(), "workbench.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	repos := sqlite.NewStore(db).Repositories()

	p := &domain.Project{Name: "knowthelist", SourceLang: "en"}
	require.NoError(t, repos.Projects.Create(ctx, p))
	f := &domain.File{ProjectID: p.ID, Path: "locale/knowthelist_cs.ts", Format: "qtts", Locale: "cs_CZ", Hash: "x"}
	require.NoError(t, repos.Files.Create(ctx, f))
	require.NoError(t, repos.Units.UpsertBatch(ctx, []*domain.Unit{
		{FileID: f.ID, Key: "Playlist\x04Artist", SourceText: "Artist", Context: "Playlist", Position: 0},
		{FileID: f.ID, Key: "DjWidget\x04AutoDJ", SourceText: "AutoDJ", Context: "DjWidget", Position: 1},
		{FileID: f.ID, Key: "CollectionWidget\x04yy", SourceText: "yy", Context: "CollectionWidget", Position: 2, MetadataRaw: `{"obsolete":true}`},
		{FileID: f.ID, Key: "PlaylistBrowser\x04%n track(s)", SourceText: "%n track(s)", Context: "PlaylistBrowser", Position: 3, MetadataRaw: `{"numerus":true}`},
	}))
	units, err := repos.Units.ListByFile(ctx, f.ID)
	require.NoError(t, err)
	require.NoError(t, repos.Translations.Upsert(ctx, &domain.Translation{UnitID: units[0].ID, Locale: "cs_CZ", Text: "Umělec", Status: domain.StatusFinal}))
	require.NoError(t, repos.Translations.Upsert(ctx, &domain.Translation{UnitID: units[1].ID, Locale: "cs_CZ", Text: "Diskžokej", Status: domain.StatusUnfinished}))
	return fixture{repos: repos, file: f, units: units}
}

func newRunner(fx fixture, tr Translator) *Runner {
	return NewRunner(Deps{
		Jobs:         fx.repos.Jobs,
		Projects:     fx.repos.Projects,
		Files:        fx.repos.Files,
		Units:        fx.repos.Units,
		Translations: fx.repos.Translations,
		Providers:    providerSource{"local": {Name: "local", Type: "ollama", Model: "llama3"}},
		ItemTimeout:  time.Second,
	}, tr)
}

func TestTranslateJob(t *testing.T) {
	fx := seed(t)
	ctx := context.Background()
	tr := &fakeTranslator{fn: func(_ context.Context, a translator.TranslateArgs) (string, error) {
		if a.Unit.SourceText == "%n track(s)" {
			return "", fmt.Errorf("placeholder missing in translation: %%n")
		}
		return "[" + a.TargetLang + "] " + a.Unit.SourceText, nil
	}}
	r := newRunner(fx, tr)
	rec := &recorder{}
	r.SetEmitter(rec)

	id, err := r.StartTranslate(ctx, "local", TranslateParams{FileID: fx.file.ID, Locales: []string{"cs_CZ", "tr_TR"}})
	require.NoError(t, err)
	require.NoError(t, r.Wait(ctx, id))

	job, err := fx.repos.Jobs.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.JobDone, job.Status)
	// cs: AutoDJ, numerus; tr: Artist, AutoDJ, numerus
	assert.Equal(t, 5, job.Total)
	assert.Equal(t, 5, job.Progress)
	assert.Equal(t, "local", job.Provider)

	got, err := fx.repos.Translations.Get(ctx, fx.units[1].ID, "cs_CZ")
	require.NoError(t, err)
	assert.Equal(t, "[cs_CZ] AutoDJ", got.Text)
	assert.Equal(t, domain.StatusMachine, got.Status)
	assert.Equal(t, "local", got.Provider)

	got, err = fx.repos.Translations.Get(ctx, fx.units[0].ID, "cs_CZ")
	require.NoError(t, err)
	assert.Equal(t, "Umělec", got.Text)

	got, err = fx.repos.Translations.Get(ctx, fx.units[2].ID, "tr_TR")
	require.NoError(t, err)
	assert.Nil(t, got)

	items, err := fx.repos.Jobs.ListItems(ctx, id)
	require.NoError(t, err)
	require.Len(t, items, 5)
	failed := 0
	for _, it := range items {
		if it.Status == ItemFailed {
			failed++
			assert.Contains(t, it.Error, "placeholder missing")
		}
	}
	assert.Equal(t, 2, failed)

	for _, a := range tr.calls {
		assert.Equal(t, "en", a.SourceLang)
		assert.Equal(t, "llama3", a.Model)
		assert.Equal(t, "knowthelist", a.Project)
	}
	assert.Contains(t, rec.events, "job.started")
	assert.Contains(t, rec.events, "job.item.done")
	assert.Equal(t, "job.progress", rec.events[len(rec.events)-1])
}

func TestTranslateJobForceAndUnitSelection(t *testing.T) {
	fx := seed(t)
	ctx := context.Background()
	tr := &fakeTranslator{fn: func(_ context.Context, a translator.TranslateArgs) (string, error) { return "x", nil }}
	r := newRunner(fx, tr)

	id, err := r.StartTranslate(ctx, "local", TranslateParams{FileID: fx.file.ID, UnitIDs: []int64{fx.units[0].ID}, Locales: []string{"cs_CZ"}, Force: true})
	require.NoError(t, err)
	require.NoError(t, r.Wait(ctx, id))

	require.Len(t, tr.calls, 1)
	assert.Equal(t, "Artist", tr.calls[0].Unit.SourceText)
}

func TestTranslateJobCancel(t *testing.T) {
	fx := seed(t)
	ctx := context.Background()
	started := make(chan struct{}, 8)
	tr := &fakeTranslator{fn: func(ctx context.Context, _ translator.TranslateArgs) (string, error) {
		started <- struct{}{}
		<-ctx.Done()
		return "", ctx.Err()
	}}
	r := newRunner(fx, tr)
	r.d.ItemTimeout = time.Minute

	id, err := r.StartTranslate(ctx, "local", TranslateParams{FileID: fx.file.ID, Locales: []string{"tr_TR"}})
	require.NoError(t, err)
	<-started
	assert.True(t, r.Cancel(id))
	require.NoError(t, r.Wait(ctx, id))
	assert.False(t, r.Cancel(id))
	assert.Empty(t, r.Running())

	job, err := fx.repos.Jobs.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.JobCanceled, job.Status)
	assert.Equal(t, 0, job.Progress)
}

func TestRunnerShutdown(t *testing.T) {
	fx := seed(t)
	ctx := context.Background()
	started := make(chan struct{}, 8)
	tr := &fakeTranslator{fn: func(ctx context.Context, _ translator.TranslateArgs) (string, error) {
		started <- struct{}{}
		<-ctx.Done()
		return "", ctx.Err()
	}}
	r := newRunner(fx, tr)
	r.d.ItemTimeout = time.Minute

	id, err := r.StartTranslate(ctx, "local", TranslateParams{FileID: fx.file.ID, Locales: []string{"tr_TR"}})
	require.NoError(t, err)
	<-started
	assert.Equal(t, []int64{id}, r.Running())

	require.NoError(t, r.Shutdown(ctx))
	assert.Empty(t, r.Running())
	job, err := fx.repos.Jobs.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.JobCanceled, job.Status)
}

func TestStartTranslateValidation(t *testing.T) {
	fx := seed(t)
	r := newRunner(fx, &fakeTranslator{})

	_, err := r.StartTranslate(context.Background(), "local", TranslateParams{FileID: fx.file.ID})
	assert.Error(t, err)
	_, err = r.StartTranslate(context.Background(), "cloud", TranslateParams{FileID: fx.file.ID, Locales: []string{"de"}})
	assert.EqualError(t, err, `unknown provider "cloud"`)
}
