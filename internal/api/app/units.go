package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/david-geiger/knowthelist/internal/linguist"
	"github.com/david-geiger/knowthelist/internal/ports"
)

type UnitAPI struct{ repo ports.UnitRepository }

func NewUnitAPI(repo ports.UnitRepository) *UnitAPI { return &UnitAPI{repo: repo} }

type UnitDTO struct {
	ID      int64  `json:"id"`
	FileID  int64  `json:"file_id"`
	Key     string `json:"key"`
	Context string `json:"context"`
	Source  string `json:"source"`
	Numerus bool   `json:"numerus"`
}

func (a *UnitAPI) Get(ctx context.Context, id int64) (*UnitDTO, error) {
	u, err := a.repo.Get(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("unit %d not found", id)
	}
	if err != nil {
		return nil, err
	}
	meta, err := linguist.UnmarshalMeta[linguist.MessageMeta](u.MetadataRaw)
	if err != nil {
		return nil, fmt.Errorf("unit %d metadata: %w", id, err)
	}
	return &UnitDTO{ID: u.ID, FileID: u.FileID, Key: u.Key, Context: u.Context, Source: u.SourceText, Numerus: meta.Numerus}, nil
}
