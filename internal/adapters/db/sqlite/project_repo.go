package sqlite

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/david-geiger/knowthelist/internal/domain"
)

type ProjectRepo struct{ *Repo }

func NewProjectRepo(db DBTX) *ProjectRepo { return &ProjectRepo{NewRepo(db)} }

var projectColumns = []string{"id", "name", "source_lang", "created_at", "updated_at"}

func scanProject(s scanner) (*domain.Project, error) {
	var p domain.Project
	var created, updated string
	if err := s.Scan(&p.ID, &p.Name, &p.SourceLang, &created, &updated); err != nil {
		return nil, err
	}
	p.CreatedAt, p.UpdatedAt = parseTime(created), parseTime(updated)
	return &p, nil
}

func (r *ProjectRepo) Create(ctx context.Context, p *domain.Project) error {
	ts := now()
	res, err := r.exec(ctx, r.SQ.Insert("projects").
		Columns("name", "source_lang", "created_at", "updated_at").
		Values(p.Name, p.SourceLang, ts, ts))
	if err != nil {
		return err
	}
	p.ID, _ = res.LastInsertId()
	p.CreatedAt, p.UpdatedAt = parseTime(ts), parseTime(ts)
	return nil
}

func (r *ProjectRepo) Get(ctx context.Context, id int64) (*domain.Project, error) {
	return scanProject(r.queryRow(ctx, r.SQ.Select(projectColumns...).From("projects").Where(sq.Eq{"id": id})))
}

// GetByName returns sql.ErrNoRows when no project has that name.
func (r *ProjectRepo) GetByName(ctx context.Context, name string) (*domain.Project, error) {
	return scanProject(r.queryRow(ctx, r.SQ.Select(projectColumns...).From("projects").Where(sq.Eq{"name": name})))
}

func (r *ProjectRepo) List(ctx context.Context) ([]*domain.Project, error) {
	rows, err := r.query(ctx, r.SQ.Select(projectColumns...).From("projects").OrderBy("id DESC"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *ProjectRepo) Update(ctx context.Context, p *domain.Project) error {
	ts := time.Now().UTC()
	_, err := r.exec(ctx, r.SQ.Update("projects").
		Set("name", p.Name).
		Set("source_lang", p.SourceLang).
		Set("updated_at", ts.Format(time.RFC3339)).
		Where(sq.Eq{"id": p.ID}))
	if err != nil {
		return err
	}
	p.UpdatedAt = ts
	return nil
}

func (r *ProjectRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.exec(ctx, r.SQ.Delete("projects").Where(sq.Eq{"id": id}))
	return err
}

// AddLocale registers a target locale; adding it twice is a no-op.
func (r *ProjectRepo) AddLocale(ctx context.Context, pl *domain.ProjectLocale) error {
	ts := now()
	res, err := r.exec(ctx, r.SQ.Insert("project_locales").
		Columns("project_id", "locale", "created_at").
		Values(pl.ProjectID, pl.Locale, ts).
		Suffix("ON CONFLICT(project_id, locale) DO NOTHING"))
	if err != nil {
		return err
	}
	pl.ID, _ = res.LastInsertId()
	pl.CreatedAt = parseTime(ts)
	return nil
}

func (r *ProjectRepo) ListLocales(ctx context.Context, projectID int64) ([]*domain.ProjectLocale, error) {
	rows, err := r.query(ctx, r.SQ.Select("id", "project_id", "locale", "created_at").
		From("project_locales").
		Where(sq.Eq{"project_id": projectID}).
		OrderBy("locale"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.ProjectLocale
	for rows.Next() {
		var pl domain.ProjectLocale
		var created string
		if err := rows.Scan(&pl.ID, &pl.ProjectID, &pl.Locale, &created); err != nil {
			return nil, err
		}
		pl.CreatedAt = parseTime(created)
		out = append(out, &pl)
	}
	return out, rows.Err()
}
