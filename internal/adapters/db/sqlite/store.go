package sqlite

import (
	"context"
	"database/sql"

	"github.com/david-geiger/knowthelist/internal/ports"
)

// Store hands out repositories bound to the database or to a transaction.
type Store struct {
	DB *sql.DB
}

func NewStore(db *sql.DB) *Store { return &Store{DB: db} }

func repositories(db DBTX) ports.Repositories {
	return ports.Repositories{
		Projects:     NewProjectRepo(db),
		Files:        NewFileRepo(db),
		Units:        NewUnitRepo(db),
		Translations: NewTranslationRepo(db),
		Jobs:         NewJobRepo(db),
		Cache:        NewCacheRepo(db),
	}
}

// Repositories returns repositories that run outside any transaction.
func (s *Store) Repositories() ports.Repositories { return repositories(s.DB) }

// InTx calls fn with repositories sharing one transaction, committing when fn
// returns nil.
func (s *Store) InTx(ctx context.Context, fn func(r ports.Repositories) error) error {
	return WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		return fn(repositories(tx))
	})
}
