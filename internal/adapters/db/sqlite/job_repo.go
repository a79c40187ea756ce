package sqlite

import (
	"context"
	"database/sql"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/david-geiger/knowthelist/internal/domain"
	"github.com/samber/lo"
)

type JobRepo struct{ *Repo }

func NewJobRepo(db DBTX) *JobRepo { return &JobRepo{NewRepo(db)} }

var jobColumns = []string{"id", "type", "status", "project_id", "provider", "params_json", "progress", "total", "created_at", "updated_at"}

func scanJob(s scanner) (*domain.Job, error) {
	var j domain.Job
	var proj sql.NullInt64
	var created, updated string
	if err := s.Scan(&j.ID, &j.Type, &j.Status, &proj, &j.Provider, &j.ParamsRaw, &j.Progress, &j.Total, &created, &updated); err != nil {
		return nil, err
	}
	if proj.Valid {
		v := proj.Int64
		j.ProjectID = &v
	}
	j.CreatedAt, j.UpdatedAt = parseTime(created), parseTime(updated)
	return &j, nil
}

func (r *JobRepo) Create(ctx context.Context, j *domain.Job) (int64, error) {
	ts := now()
	res, err := r.exec(ctx, r.SQ.Insert("jobs").
		Columns("type", "status", "project_id", "provider", "params_json", "progress", "total", "created_at", "updated_at").
		Values(j.Type, j.Status, j.ProjectID, j.Provider, j.ParamsRaw, j.Progress, j.Total, ts, ts))
	if err != nil {
		return 0, err
	}
	j.ID, _ = res.LastInsertId()
	j.CreatedAt, j.UpdatedAt = parseTime(ts), parseTime(ts)
	return j.ID, nil
}

func (r *JobRepo) UpdateProgress(ctx context.Context, jobID int64, done, total int, status string) error {
	_, err := r.exec(ctx, r.SQ.Update("jobs").
		Set("progress", done).
		Set("total", total).
		Set("status", status).
		Set("updated_at", now()).
		Where(sq.Eq{"id": jobID}))
	return err
}

func (r *JobRepo) AddItem(ctx context.Context, ji *domain.JobItem) (int64, error) {
	ts := now()
	res, err := r.exec(ctx, r.SQ.Insert("job_items").
		Columns("job_id", "unit_id", "locale", "status", "error", "created_at", "updated_at").
		Values(ji.JobID, ji.UnitID, ji.Locale, ji.Status, ji.Error, ts, ts))
	if err != nil {
		return 0, err
	}
	ji.ID, _ = res.LastInsertId()
	return ji.ID, nil
}

func (r *JobRepo) UpdateItem(ctx context.Context, itemID int64, status, errMsg string) error {
	_, err := r.exec(ctx, r.SQ.Update("job_items").
		Set("status", status).
		Set("error", errMsg).
		Set("updated_at", now()).
		Where(sq.Eq{"id": itemID}))
	return err
}

func (r *JobRepo) AddLog(ctx context.Context, jl *domain.JobLog) error {
	_, err := r.exec(ctx, r.SQ.Insert("job_logs").
		Columns("job_id", "ts", "level", "message").
		Values(jl.JobID, now(), jl.Level, jl.Message))
	return err
}

// Get returns nil, nil for an unknown job.
func (r *JobRepo) Get(ctx context.Context, jobID int64) (*domain.Job, error) {
	j, err := scanJob(r.queryRow(ctx, r.SQ.Select(jobColumns...).From("jobs").Where(sq.Eq{"id": jobID}).Limit(1)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return j, err
}

func (r *JobRepo) List(ctx context.Context, limit int) ([]*domain.Job, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.query(ctx, r.SQ.Select(jobColumns...).From("jobs").OrderBy("id DESC").Limit(uint64(limit)))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

func (r *JobRepo) ListItems(ctx context.Context, jobID int64) ([]*domain.JobItem, error) {
	rows, err := r.query(ctx, r.SQ.Select("id", "job_id", "unit_id", "locale", "status", "error", "created_at", "updated_at").
		From("job_items").
		Where(sq.Eq{"job_id": jobID}).
		OrderBy("id"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.JobItem
	for rows.Next() {
		var ji domain.JobItem
		var unit sql.NullInt64
		var loc sql.NullString
		var created, updated string
		if err := rows.Scan(&ji.ID, &ji.JobID, &unit, &loc, &ji.Status, &ji.Error, &created, &updated); err != nil {
			return nil, err
		}
		if unit.Valid {
			v := unit.Int64
			ji.UnitID = &v
		}
		if loc.Valid {
			v := loc.String
			ji.Locale = &v
		}
		ji.CreatedAt, ji.UpdatedAt = parseTime(created), parseTime(updated)
		out = append(out, &ji)
	}
	return out, rows.Err()
}

// ListLogs returns the newest limit log lines in chronological order.
func (r *JobRepo) ListLogs(ctx context.Context, jobID int64, limit int) ([]*domain.JobLog, error) {
	if limit <= 0 {
		limit = 200
	}
	rows, err := r.query(ctx, r.SQ.Select("id", "job_id", "ts", "level", "message").
		From("job_logs").
		Where(sq.Eq{"job_id": jobID}).
		OrderBy("id DESC").
		Limit(uint64(limit)))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.JobLog
	for rows.Next() {
		var jl domain.JobLog
		var ts string
		if err := rows.Scan(&jl.ID, &jl.JobID, &ts, &jl.Level, &jl.Message); err != nil {
			return nil, err
		}
		jl.Time = parseTime(ts)
		out = append(out, &jl)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return lo.Reverse(out), nil
}

// Delete removes the job; items and logs go with it.
func (r *JobRepo) Delete(ctx context.Context, jobID int64) error {
	_, err := r.exec(ctx, r.SQ.Delete("jobs").Where(sq.Eq{"id": jobID}))
	return err
}
