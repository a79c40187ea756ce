package app

import (
	"context"
	"time"

	"github.com/david-geiger/knowthelist/internal/ports"
	"github.com/david-geiger/knowthelist/internal/usecase/jobs"
)

type JobsAPI struct {
	r    *jobs.Runner
	repo ports.JobRepository
}

func NewJobsAPI(r *jobs.Runner, repo ports.JobRepository) *JobsAPI { return &JobsAPI{r: r, repo: repo} }

type StartTranslateRequest struct {
	Provider string   `json:"provider"`
	FileID   int64    `json:"file_id"`
	UnitIDs  []int64  `json:"unit_ids"`
	Locales  []string `json:"locales"`
	Model    string   `json:"model"`
	Force    bool     `json:"force"`
}

type StartJobResponse struct {
	JobID int64 `json:"job_id"`
}

func (a *JobsAPI) StartTranslate(ctx context.Context, req StartTranslateRequest) (StartJobResponse, error) {
	jid, err := a.r.StartTranslate(ctx, req.Provider, jobs.TranslateParams{FileID: req.FileID, UnitIDs: req.UnitIDs, Locales: req.Locales, Model: req.Model, Force: req.Force})
	if err != nil {
		return StartJobResponse{}, err
	}
	return StartJobResponse{JobID: jid}, nil
}

func (a *JobsAPI) Cancel(jobID int64) bool { return a.r.Cancel(jobID) }

// Shutdown cancels the jobs still running in this process.
func (a *JobsAPI) Shutdown(ctx context.Context) error { return a.r.Shutdown(ctx) }

func (a *JobsAPI) Wait(ctx context.Context, jobID int64) error { return a.r.Wait(ctx, jobID) }

type JobDTO struct {
	ID        int64  `json:"id"`
	Type      string `json:"type"`
	Status    string `json:"status"`
	Provider  string `json:"provider"`
	Progress  int    `json:"progress"`
	Total     int    `json:"total"`
	UpdatedAt string `json:"updated_at"`
}

func (a *JobsAPI) Get(ctx context.Context, jobID int64) (*JobDTO, error) {
	j, err := a.repo.Get(ctx, jobID)
	if err != nil || j == nil {
		return nil, err
	}
	return &JobDTO{ID: j.ID, Type: j.Type, Status: j.Status, Provider: j.Provider, Progress: j.Progress, Total: j.Total, UpdatedAt: j.UpdatedAt.Format(time.RFC3339)}, nil
}

func (a *JobsAPI) List(ctx context.Context, limit int) ([]*JobDTO, error) {
	js, err := a.repo.List(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]*JobDTO, 0, len(js))
	for _, j := range js {
		out = append(out, &JobDTO{ID: j.ID, Type: j.Type, Status: j.Status, Provider: j.Provider, Progress: j.Progress, Total: j.Total, UpdatedAt: j.UpdatedAt.Format(time.RFC3339)})
	}
	return out, nil
}

type JobItemDTO struct {
	ID     int64  `json:"id"`
	UnitID int64  `json:"unit_id"`
	Locale string `json:"locale"`
	Status string `json:"status"`
	Error  string `json:"error"`
}

func (a *JobsAPI) Items(ctx context.Context, jobID int64) ([]*JobItemDTO, error) {
	items, err := a.repo.ListItems(ctx, jobID)
	if err != nil {
		return nil, err
	}
	out := make([]*JobItemDTO, 0, len(items))
	for _, it := range items {
		out = append(out, &JobItemDTO{ID: it.ID, UnitID: deref(it.UnitID), Locale: deref(it.Locale), Status: it.Status, Error: it.Error})
	}
	return out, nil
}

type JobLogDTO struct {
	ID      int64  `json:"id"`
	Time    string `json:"time"`
	Level   string `json:"level"`
	Message string `json:"message"`
}

func (a *JobsAPI) Logs(ctx context.Context, jobID int64, limit int) ([]*JobLogDTO, error) {
	logs, err := a.repo.ListLogs(ctx, jobID, limit)
	if err != nil {
		return nil, err
	}
	out := make([]*JobLogDTO, 0, len(logs))
	for _, l := range logs {
		out = append(out, &JobLogDTO{ID: l.ID, Time: l.Time.Format(time.RFC3339), Level: l.Level, Message: l.Message})
	}
	return out, nil
}

func (a *JobsAPI) Delete(ctx context.Context, jobID int64) error {
	return a.repo.Delete(ctx, jobID)
}

func deref[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}
