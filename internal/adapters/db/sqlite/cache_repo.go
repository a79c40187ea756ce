package sqlite

import (
	"context"
	"database/sql"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/david-geiger/knowthelist/internal/domain"
)

// CacheRepo remembers provider output per masked source text.
type CacheRepo struct{ *Repo }

func NewCacheRepo(db DBTX) *CacheRepo { return &CacheRepo{NewRepo(db)} }

// Get returns nil, nil on a miss.
func (r *CacheRepo) Get(ctx context.Context, src, srcLang, tgtLang, provider, model string) (*domain.CacheEntry, error) {
	row := r.queryRow(ctx, r.SQ.
		Select("id", "source_text", "src_lang", "tgt_lang", "provider", "model", "translation", "created_at").
		From("cache").
		Where(sq.Eq{
			"source_text": src,
			"src_lang":    srcLang,
			"tgt_lang":    tgtLang,
			"provider":    provider,
			"model":       model,
		}).
		Limit(1))
	var e domain.CacheEntry
	var created string
	err := row.Scan(&e.ID, &e.SourceText, &e.SrcLang, &e.TgtLang, &e.Provider, &e.Model, &e.Translation, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	e.CreatedAt = parseTime(created)
	return &e, nil
}

func (r *CacheRepo) Put(ctx context.Context, entry *domain.CacheEntry) error {
	_, err := r.exec(ctx, r.SQ.Insert("cache").
		Columns("source_text", "src_lang", "tgt_lang", "provider", "model", "translation").
		Values(entry.SourceText, entry.SrcLang, entry.TgtLang, entry.Provider, entry.Model, entry.Translation).
		Suffix("ON CONFLICT(source_text, src_lang, tgt_lang, provider, model) DO UPDATE SET translation=excluded.translation"))
	return err
}
