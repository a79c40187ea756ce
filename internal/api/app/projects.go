package app

import (
	"context"
	"database/sql"
	"errors"

	"github.com/david-geiger/knowthelist/internal/domain"
	"github.com/david-geiger/knowthelist/internal/linguist/catalog"
	"github.com/david-geiger/knowthelist/internal/ports"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

type ProjectAPI struct {
	repo ports.ProjectRepository
}

func NewProjectAPI(repo ports.ProjectRepository) *ProjectAPI { return &ProjectAPI{repo: repo} }

var isLocale = validation.By(func(v any) error {
	s, _ := v.(string)
	if s == "" {
		return nil
	}
	_, err := catalog.ParseLocale(s)
	return err
})

func (a *ProjectAPI) Create(ctx context.Context, name, sourceLang string) (*domain.Project, error) {
	p := &domain.Project{Name: name, SourceLang: sourceLang}
	if err := validateProject(p); err != nil {
		return nil, err
	}
	if err := a.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Ensure returns the project called name, creating it when missing.
func (a *ProjectAPI) Ensure(ctx context.Context, name, sourceLang string) (*domain.Project, error) {
	p, err := a.repo.GetByName(ctx, name)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	return a.Create(ctx, name, sourceLang)
}

func (a *ProjectAPI) Get(ctx context.Context, id int64) (*domain.Project, error) {
	return a.repo.Get(ctx, id)
}

func (a *ProjectAPI) List(ctx context.Context) ([]*domain.Project, error) {
	return a.repo.List(ctx)
}

func (a *ProjectAPI) Update(ctx context.Context, id int64, name, sourceLang string) (*domain.Project, error) {
	p, err := a.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Name = name
	p.SourceLang = sourceLang
	if err := validateProject(p); err != nil {
		return nil, err
	}
	if err := a.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (a *ProjectAPI) Delete(ctx context.Context, id int64) error {
	return a.repo.Delete(ctx, id)
}

func (a *ProjectAPI) AddLocale(ctx context.Context, projectID int64, locale string) (*domain.ProjectLocale, error) {
	if err := validation.Validate(locale, validation.Required, isLocale); err != nil {
		return nil, err
	}
	pl := &domain.ProjectLocale{ProjectID: projectID, Locale: locale}
	if err := a.repo.AddLocale(ctx, pl); err != nil {
		return nil, err
	}
	return pl, nil
}

func (a *ProjectAPI) ListLocales(ctx context.Context, projectID int64) ([]*domain.ProjectLocale, error) {
	return a.repo.ListLocales(ctx, projectID)
}

func validateProject(p *domain.Project) error {
	return validation.ValidateStruct(p,
		validation.Field(&p.Name, validation.Required, validation.Length(1, 128)),
		validation.Field(&p.SourceLang, isLocale),
	)
}
