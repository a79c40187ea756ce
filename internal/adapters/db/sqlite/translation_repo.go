package sqlite

import (
	"context"
	"database/sql"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/david-geiger/knowthelist/internal/domain"
)

type TranslationRepo struct{ *Repo }

func NewTranslationRepo(db DBTX) *TranslationRepo { return &TranslationRepo{NewRepo(db)} }

func scanTranslation(s scanner) (*domain.Translation, error) {
	var t domain.Translation
	var created, updated string
	var conf sql.NullFloat64
	if err := s.Scan(&t.ID, &t.UnitID, &t.Locale, &t.Text, &t.Status, &t.Provider, &conf, &created, &updated); err != nil {
		return nil, err
	}
	if conf.Valid {
		v := conf.Float64
		t.Confidence = &v
	}
	t.CreatedAt, t.UpdatedAt = parseTime(created), parseTime(updated)
	return &t, nil
}

func (r *TranslationRepo) Upsert(ctx context.Context, t *domain.Translation) error {
	ts := now()
	_, err := r.exec(ctx, r.SQ.Insert("translations").
		Columns("unit_id", "locale", "text", "status", "provider", "confidence", "created_at", "updated_at").
		Values(t.UnitID, t.Locale, t.Text, t.Status, t.Provider, t.Confidence, ts, ts).
		Suffix("ON CONFLICT(unit_id, locale) DO UPDATE SET text=excluded.text, status=excluded.status, provider=excluded.provider, confidence=excluded.confidence, updated_at=excluded.updated_at"))
	return err
}

// Get returns nil, nil when the unit has no translation for locale.
func (r *TranslationRepo) Get(ctx context.Context, unitID int64, locale string) (*domain.Translation, error) {
	t, err := scanTranslation(r.queryRow(ctx, r.SQ.
		Select("id", "unit_id", "locale", "text", "status", "provider", "confidence", "created_at", "updated_at").
		From("translations").
		Where(sq.Eq{"unit_id": unitID, "locale": locale}).
		Limit(1)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return t, err
}

func (r *TranslationRepo) ListByFileLocale(ctx context.Context, fileID int64, locale string) ([]*domain.Translation, error) {
	rows, err := r.query(ctx, r.SQ.
		Select("t.id", "t.unit_id", "t.locale", "t.text", "t.status", "t.provider", "t.confidence", "t.created_at", "t.updated_at").
		From("translations t").
		Join("units u ON u.id = t.unit_id").
		Where(sq.Eq{"u.file_id": fileID, "t.locale": locale}).
		OrderBy("u.position"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Translation
	for rows.Next() {
		t, err := scanTranslation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
