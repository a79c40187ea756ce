package app

import (
	"context"

	"github.com/david-geiger/knowthelist/internal/domain"
	"github.com/david-geiger/knowthelist/internal/ports"
)

type FileAPI struct{ repo ports.FileRepository }

func NewFileAPI(repo ports.FileRepository) *FileAPI { return &FileAPI{repo: repo} }

func (a *FileAPI) Get(ctx context.Context, id int64) (*domain.File, error) {
	return a.repo.Get(ctx, id)
}

func (a *FileAPI) ListByProject(ctx context.Context, projectID int64) ([]*domain.File, error) {
	return a.repo.ListByProject(ctx, projectID)
}

// Delete removes a file with its units and translations.
func (a *FileAPI) Delete(ctx context.Context, id int64) error {
	if _, err := a.repo.Get(ctx, id); err != nil {
		return err
	}
	return a.repo.Delete(ctx, id)
}
