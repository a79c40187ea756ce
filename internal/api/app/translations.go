package app

import (
	"context"
	"fmt"

	"github.com/david-geiger/knowthelist/internal/domain"
	"github.com/david-geiger/knowthelist/internal/ports"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/samber/lo"
)

type TranslationsAPI struct {
	repo  ports.TranslationRepository
	units ports.UnitRepository
}

func NewTranslationsAPI(repo ports.TranslationRepository, units ports.UnitRepository) *TranslationsAPI {
	return &TranslationsAPI{repo: repo, units: units}
}

type UpsertTranslationRequest struct {
	UnitID   int64  `json:"unit_id"`
	Locale   string `json:"locale"`
	Text     string `json:"text"`
	Status   string `json:"status"`
	Provider string `json:"provider"`
}

func (r UpsertTranslationRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.UnitID, validation.Required),
		validation.Field(&r.Locale, validation.Required, isLocale),
		validation.Field(&r.Status, validation.Required, validation.In(domain.StatusFinal, domain.StatusUnfinished, domain.StatusMachine, domain.StatusObsolete)),
	)
}

func (a *TranslationsAPI) Upsert(ctx context.Context, req UpsertTranslationRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	return a.repo.Upsert(ctx, &domain.Translation{UnitID: req.UnitID, Locale: req.Locale, Text: req.Text, Status: req.Status, Provider: req.Provider})
}

type UnitText struct {
	UnitID      int64  `json:"unit_id"`
	Key         string `json:"key"`
	Context     string `json:"context"`
	Source      string `json:"source"`
	Translation string `json:"translation"`
	Status      string `json:"status"`
	Provider    string `json:"provider"`
}

// ListUnitTexts pairs every unit of a file with its translation into locale.
// Units without one have an empty status.
func (a *TranslationsAPI) ListUnitTexts(ctx context.Context, fileID int64, locale string) ([]*UnitText, error) {
	units, err := a.units.ListByFile(ctx, fileID)
	if err != nil {
		return nil, err
	}
	trs, err := a.repo.ListByFileLocale(ctx, fileID, locale)
	if err != nil {
		return nil, err
	}
	byUnit := lo.KeyBy(trs, func(t *domain.Translation) int64 { return t.UnitID })
	out := make([]*UnitText, 0, len(units))
	for _, u := range units {
		ut := &UnitText{UnitID: u.ID, Key: u.Key, Context: u.Context, Source: u.SourceText}
		if t := byUnit[u.ID]; t != nil {
			ut.Translation, ut.Status, ut.Provider = t.Text, t.Status, t.Provider
		}
		out = append(out, ut)
	}
	return out, nil
}

// Accept marks the machine translations of a file as final. With unitIDs
// only those units are considered. It returns how many were promoted.
func (a *TranslationsAPI) Accept(ctx context.Context, fileID int64, locale string, unitIDs []int64) (int, error) {
	texts, err := a.ListUnitTexts(ctx, fileID, locale)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, ut := range texts {
		if ut.Status != domain.StatusMachine || (len(unitIDs) > 0 && !lo.Contains(unitIDs, ut.UnitID)) {
			continue
		}
		err := a.Upsert(ctx, UpsertTranslationRequest{UnitID: ut.UnitID, Locale: locale, Text: ut.Translation, Status: domain.StatusFinal, Provider: ut.Provider})
		if err != nil {
			return n, fmt.Errorf("unit %d: %w", ut.UnitID, err)
		}
		n++
	}
	return n, nil
}
