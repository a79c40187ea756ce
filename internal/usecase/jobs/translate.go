package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/david-geiger/knowthelist/internal/domain"
	"github.com/david-geiger/knowthelist/internal/linguist"
	"github.com/david-geiger/knowthelist/internal/ports"
	"github.com/david-geiger/knowthelist/internal/usecase/translator"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/samber/lo"
	"github.com/sasha-s/go-deadlock"
	"github.com/sirupsen/logrus"
)

const TypeTranslate = "translate"

// Item statuses.
const (
	ItemRunning = "running"
	ItemDone    = "done"
	ItemFailed  = "failed"
)

const DefaultItemTimeout = 60 * time.Second

type Translator interface {
	TranslateOne(ctx context.Context, a translator.TranslateArgs) (string, error)
}

type Deps struct {
	Jobs         ports.JobRepository
	Projects     ports.ProjectRepository
	Files        ports.FileRepository
	Units        ports.UnitRepository
	Translations ports.TranslationRepository
	Providers    ports.ProviderSource
	// BuildProvider is used to resolve model labels to IDs.
	BuildProvider func(*domain.Provider) (ports.Provider, error)
	Log           *logrus.Entry
	ItemTimeout   time.Duration
}

type EventEmitter interface {
	Emit(name string, payload any)
}

type Runner struct {
	d      Deps
	trans  Translator
	em     EventEmitter
	mu     deadlock.Mutex
	active map[int64]*run
}

type run struct {
	cancel context.CancelFunc
	done   chan struct{}
}

func NewRunner(d Deps, trans Translator) *Runner {
	if d.Log == nil {
		d.Log = logrus.NewEntry(logrus.StandardLogger())
	}
	if d.ItemTimeout <= 0 {
		d.ItemTimeout = DefaultItemTimeout
	}
	return &Runner{d: d, trans: trans, active: map[int64]*run{}}
}

func (r *Runner) SetEmitter(em EventEmitter) { r.em = em }

// TranslateParams selects what a translate job works on. An empty UnitIDs
// means every unit of the file.
type TranslateParams struct {
	FileID     int64    `json:"file_id"`
	UnitIDs    []int64  `json:"unit_ids,omitempty"`
	Locales    []string `json:"locales"`
	Model      string   `json:"model"`
	SourceLang string   `json:"source_lang"`
	// Force retranslates messages that already have a finished translation.
	Force bool `json:"force,omitempty"`
}

func (p TranslateParams) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.FileID, validation.Required),
		validation.Field(&p.Locales, validation.Required, validation.Each(validation.Required)),
	)
}

type workItem struct {
	unit   *domain.Unit
	locale string
}

// StartTranslate records a job and runs it in the background. The returned
// id can be passed to Wait and Cancel.
func (r *Runner) StartTranslate(ctx context.Context, provider string, p TranslateParams) (int64, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}
	prov, err := r.d.Providers.Get(provider)
	if err != nil {
		return 0, err
	}
	if p.Model == "" {
		p.Model = prov.Model
	}
	if norm, err := r.normalizeModel(ctx, prov, p.Model); err == nil && norm != "" {
		p.Model = norm
	}
	f, err := r.d.Files.Get(ctx, p.FileID)
	if err != nil {
		return 0, fmt.Errorf("file %d: %w", p.FileID, err)
	}
	if p.SourceLang == "" {
		if proj, err := r.d.Projects.Get(ctx, f.ProjectID); err == nil {
			p.SourceLang = proj.SourceLang
		}
	}
	items, err := r.plan(ctx, p)
	if err != nil {
		return 0, err
	}

	paramsJSON, _ := json.Marshal(p)
	job := &domain.Job{Type: TypeTranslate, Status: domain.JobQueued, ProjectID: &f.ProjectID, Provider: prov.Name, ParamsRaw: string(paramsJSON), Total: len(items)}
	id, err := r.d.Jobs.Create(ctx, job)
	if err != nil {
		return 0, err
	}
	_ = r.d.Jobs.UpdateProgress(ctx, id, 0, len(items), domain.JobRunning)
	r.emit("job.started", map[string]any{"job_id": id, "total": len(items), "model": p.Model, "provider": prov.Name})
	r.log(ctx, id, "info", fmt.Sprintf("job started: provider=%s model=%s file=%s items=%d locales=%s", prov.Name, p.Model, f.Path, len(items), strings.Join(p.Locales, ",")))

	cctx, cancel := context.WithCancel(context.Background())
	rn := &run{cancel: cancel, done: make(chan struct{})}
	r.mu.Lock()
	r.active[id] = rn
	r.mu.Unlock()
	go func() {
		defer close(rn.done)
		defer cancel()
		r.runTranslate(cctx, id, prov.Name, f, p, items)
		r.mu.Lock()
		delete(r.active, id)
		r.mu.Unlock()
	}()
	return id, nil
}

// plan lists the unit/locale pairs that need work. Obsolete messages are
// never translated.
func (r *Runner) plan(ctx context.Context, p TranslateParams) ([]workItem, error) {
	units, err := r.d.Units.ListByFile(ctx, p.FileID)
	if err != nil {
		return nil, err
	}
	if len(p.UnitIDs) > 0 {
		units = lo.Filter(units, func(u *domain.Unit, _ int) bool { return lo.Contains(p.UnitIDs, u.ID) })
	}
	units = lo.Filter(units, func(u *domain.Unit, _ int) bool {
		meta, err := linguist.UnmarshalMeta[linguist.MessageMeta](u.MetadataRaw)
		return err == nil && !meta.Obsolete
	})
	var items []workItem
	for _, loc := range p.Locales {
		existing, err := r.d.Translations.ListByFileLocale(ctx, p.FileID, loc)
		if err != nil {
			return nil, err
		}
		byUnit := lo.KeyBy(existing, func(t *domain.Translation) int64 { return t.UnitID })
		for _, u := range units {
			t := byUnit[u.ID]
			if t != nil && t.Status == domain.StatusObsolete {
				continue
			}
			if !p.Force && t.Done() {
				continue
			}
			items = append(items, workItem{unit: u, locale: loc})
		}
	}
	return items, nil
}

// normalizeModel converts a human-readable model label to the provider's
// model ID. It returns "" when model already looks like an ID.
func (r *Runner) normalizeModel(ctx context.Context, prov *domain.Provider, model string) (string, error) {
	if strings.TrimSpace(model) == "" || !strings.EqualFold(prov.Type, "openrouter") || r.d.BuildProvider == nil {
		return "", nil
	}
	// labels have spaces or parentheses, IDs don't
	if !strings.ContainsAny(model, " ()") {
		return "", nil
	}
	adapter, err := r.d.BuildProvider(prov)
	if err != nil {
		return "", err
	}
	list, err := adapter.ListModels(ctx)
	if err != nil {
		return "", err
	}
	for _, mi := range list {
		if strings.EqualFold(mi.Name, model) || strings.EqualFold(mi.Description, model) {
			return mi.Name, nil
		}
	}
	return "", nil
}

func (r *Runner) runTranslate(ctx context.Context, jobID int64, provider string, f *domain.File, p TranslateParams, items []workItem) {
	// bookkeeping must survive cancellation
	bg := context.WithoutCancel(ctx)
	var projectName string
	if proj, err := r.d.Projects.Get(bg, f.ProjectID); err == nil {
		projectName = proj.Name
	}
	total, done, failed := len(items), 0, 0
	for _, it := range items {
		if ctx.Err() != nil {
			_ = r.d.Jobs.UpdateProgress(bg, jobID, done, total, domain.JobCanceled)
			r.log(bg, jobID, "warn", "job canceled")
			r.emit("job.progress", map[string]any{"job_id": jobID, "done": done, "total": total, "status": domain.JobCanceled})
			return
		}
		u, loc := it.unit, it.locale
		itemID, _ := r.d.Jobs.AddItem(bg, &domain.JobItem{JobID: jobID, UnitID: &u.ID, Locale: &loc, Status: ItemRunning})
		r.emit("job.item.start", map[string]any{"job_id": jobID, "unit_id": u.ID, "key": u.Key, "locale": loc})

		ictx, cancel := context.WithTimeout(ctx, r.d.ItemTimeout)
		txt, err := r.trans.TranslateOne(ictx, translator.TranslateArgs{
			Provider:   provider,
			Unit:       u,
			SourceLang: p.SourceLang,
			TargetLang: loc,
			Model:      p.Model,
			Project:    projectName,
			FilePath:   f.Path,
		})
		cancel()
		if err == nil {
			err = r.d.Translations.Upsert(bg, &domain.Translation{UnitID: u.ID, Locale: loc, Text: txt, Status: domain.StatusMachine, Provider: provider})
		}
		if err != nil {
			if errors.Is(err, context.Canceled) && ctx.Err() != nil {
				_ = r.d.Jobs.UpdateItem(bg, itemID, ItemFailed, "canceled")
				continue
			}
			failed++
			_ = r.d.Jobs.UpdateItem(bg, itemID, ItemFailed, err.Error())
			r.log(bg, jobID, "error", fmt.Sprintf("%s -> %s: %v", displayKey(u.Key), loc, err))
			r.emit("job.item.done", map[string]any{"job_id": jobID, "unit_id": u.ID, "key": u.Key, "locale": loc, "error": err.Error()})
		} else {
			_ = r.d.Jobs.UpdateItem(bg, itemID, ItemDone, "")
			r.emit("job.item.done", map[string]any{"job_id": jobID, "unit_id": u.ID, "key": u.Key, "locale": loc, "text": txt})
		}
		done++
		_ = r.d.Jobs.UpdateProgress(bg, jobID, done, total, domain.JobRunning)
		r.emit("job.progress", map[string]any{"job_id": jobID, "done": done, "total": total, "status": domain.JobRunning})
	}
	if ctx.Err() != nil {
		_ = r.d.Jobs.UpdateProgress(bg, jobID, done, total, domain.JobCanceled)
		r.emit("job.progress", map[string]any{"job_id": jobID, "done": done, "total": total, "status": domain.JobCanceled})
		return
	}
	status := domain.JobDone
	if failed > 0 && failed == total {
		status = domain.JobFailed
	}
	_ = r.d.Jobs.UpdateProgress(bg, jobID, done, total, status)
	r.log(bg, jobID, "info", fmt.Sprintf("job finished: %d/%d translated", done-failed, total))
	r.emit("job.progress", map[string]any{"job_id": jobID, "done": done, "total": total, "status": status})
}

// displayKey makes a unit key readable in logs.
func displayKey(key string) string {
	return strings.ReplaceAll(key, linguist.KeySeparator, " / ")
}

func (r *Runner) emit(name string, payload any) {
	if r.em != nil {
		r.em.Emit(name, payload)
	}
}

func (r *Runner) log(ctx context.Context, jobID int64, level, message string) {
	_ = r.d.Jobs.AddLog(ctx, &domain.JobLog{JobID: jobID, Level: level, Message: message})
	entry := r.d.Log.WithField("job", jobID)
	if lvl, err := logrus.ParseLevel(level); err == nil {
		entry.Log(lvl, message)
	}
	r.emit("job.log", map[string]any{"job_id": jobID, "level": level, "message": message, "ts": time.Now().UTC().Format(time.RFC3339)})
}

// Cancel stops a running job. It reports false when the job is not running.
func (r *Runner) Cancel(jobID int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	rn, ok := r.active[jobID]
	if ok {
		rn.cancel()
	}
	return ok
}

// Wait blocks until the job finishes or ctx is done. Jobs that are not
// running return immediately.
func (r *Runner) Wait(ctx context.Context, jobID int64) error {
	r.mu.Lock()
	rn, ok := r.active[jobID]
	r.mu.Unlock()
	if !ok {
		return nil
	}
	select {
	case <-rn.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Running lists the ids of jobs still in progress.
func (r *Runner) Running() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return lo.Keys(r.active)
}

// Shutdown cancels every running job and waits for each to record its
// final state.
func (r *Runner) Shutdown(ctx context.Context) error {
	for _, id := range r.Running() {
		r.Cancel(id)
		if err := r.Wait(ctx, id); err != nil {
			return err
		}
	}
	return nil
}
