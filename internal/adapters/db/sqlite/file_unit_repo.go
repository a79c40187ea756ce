package sqlite

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/david-geiger/knowthelist/internal/domain"
)

type FileRepo struct{ *Repo }
type UnitRepo struct{ *Repo }

func NewFileRepo(db DBTX) *FileRepo { return &FileRepo{NewRepo(db)} }
func NewUnitRepo(db DBTX) *UnitRepo { return &UnitRepo{NewRepo(db)} }

var fileColumns = []string{"id", "project_id", "path", "format", "locale", "hash", "metadata_json", "created_at"}

func scanFile(s scanner) (*domain.File, error) {
	var f domain.File
	var created string
	if err := s.Scan(&f.ID, &f.ProjectID, &f.Path, &f.Format, &f.Locale, &f.Hash, &f.MetadataRaw, &created); err != nil {
		return nil, err
	}
	f.CreatedAt = parseTime(created)
	return &f, nil
}

func (r *FileRepo) Create(ctx context.Context, f *domain.File) error {
	ts := now()
	res, err := r.exec(ctx, r.SQ.Insert("files").
		Columns("project_id", "path", "format", "locale", "hash", "metadata_json", "created_at").
		Values(f.ProjectID, f.Path, f.Format, f.Locale, f.Hash, f.MetadataRaw, ts))
	if err != nil {
		return err
	}
	f.ID, _ = res.LastInsertId()
	f.CreatedAt = parseTime(ts)
	return nil
}

func (r *FileRepo) Get(ctx context.Context, id int64) (*domain.File, error) {
	return scanFile(r.queryRow(ctx, r.SQ.Select(fileColumns...).From("files").Where(sq.Eq{"id": id})))
}

func (r *FileRepo) ListByProject(ctx context.Context, projectID int64) ([]*domain.File, error) {
	rows, err := r.query(ctx, r.SQ.Select(fileColumns...).From("files").Where(sq.Eq{"project_id": projectID}).OrderBy("id DESC"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.File
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (r *FileRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.exec(ctx, r.SQ.Delete("files").Where(sq.Eq{"id": id}))
	return err
}

var unitColumns = []string{"id", "file_id", "key", "source_text", "context", "position", "metadata_json", "created_at"}

func scanUnit(s scanner) (*domain.Unit, error) {
	var u domain.Unit
	var created string
	if err := s.Scan(&u.ID, &u.FileID, &u.Key, &u.SourceText, &u.Context, &u.Position, &u.MetadataRaw, &created); err != nil {
		return nil, err
	}
	u.CreatedAt = parseTime(created)
	return &u, nil
}

// UpsertBatch inserts units or refreshes them when (file_id, key) exists.
func (r *UnitRepo) UpsertBatch(ctx context.Context, units []*domain.Unit) error {
	// SQLite caps bound parameters per statement.
	const chunk = 100
	for start := 0; start < len(units); start += chunk {
		end := min(start+chunk, len(units))
		ib := r.SQ.Insert("units").Columns("file_id", "key", "source_text", "context", "position", "metadata_json")
		for _, u := range units[start:end] {
			ib = ib.Values(u.FileID, u.Key, u.SourceText, u.Context, u.Position, u.MetadataRaw)
		}
		ib = ib.Suffix("ON CONFLICT(file_id, key) DO UPDATE SET source_text=excluded.source_text, context=excluded.context, position=excluded.position, metadata_json=excluded.metadata_json")
		if _, err := r.exec(ctx, ib); err != nil {
			return err
		}
	}
	return nil
}

// ListByFile returns units in the order they had in the imported file.
func (r *UnitRepo) ListByFile(ctx context.Context, fileID int64) ([]*domain.Unit, error) {
	rows, err := r.query(ctx, r.SQ.Select(unitColumns...).From("units").Where(sq.Eq{"file_id": fileID}).OrderBy("position", "id"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Unit
	for rows.Next() {
		u, err := scanUnit(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *UnitRepo) Get(ctx context.Context, id int64) (*domain.Unit, error) {
	return scanUnit(r.queryRow(ctx, r.SQ.Select(unitColumns...).From("units").Where(sq.Eq{"id": id}).Limit(1)))
}
