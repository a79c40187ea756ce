package exporter

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	exreg "github.com/david-geiger/knowthelist/internal/adapters/exporter/registry"
	"github.com/david-geiger/knowthelist/internal/domain"
	"github.com/david-geiger/knowthelist/internal/linguist"
	"github.com/david-geiger/knowthelist/internal/ports"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

type Service struct {
	Projects ports.ProjectRepository
	Files    ports.FileRepository
	Units    ports.UnitRepository
	Trans    ports.TranslationRepository
	Reg      *exreg.Registry
}

func New(projects ports.ProjectRepository, files ports.FileRepository, units ports.UnitRepository, trans ports.TranslationRepository, reg *exreg.Registry) *Service {
	return &Service{Projects: projects, Files: files, Units: units, Trans: trans, Reg: reg}
}

type ExportArgs struct {
	FileID int64
	// Locale defaults to the file's own locale.
	Locale string
	// Fallback fills untranslated active messages with their source text.
	Fallback       bool
	OverrideFormat string
	Separator      rune
}

func (a ExportArgs) Validate() error {
	return validation.ValidateStruct(&a, validation.Field(&a.FileID, validation.Required))
}

type ExportResult struct {
	Filename string
	Content  []byte
}

func (s *Service) ExportFile(ctx context.Context, a ExportArgs) (ExportResult, error) {
	if err := a.Validate(); err != nil {
		return ExportResult{}, err
	}
	f, err := s.Files.Get(ctx, a.FileID)
	if err != nil {
		return ExportResult{}, fmt.Errorf("file %d: %w", a.FileID, err)
	}
	format := f.Format
	if a.OverrideFormat != "" {
		format = a.OverrideFormat
	}
	exp, ok := s.Reg.Get(format)
	if !ok {
		return ExportResult{}, fmt.Errorf("no exporter for format %q (known: %s)", format, strings.Join(s.Reg.Formats(), ", "))
	}
	locale := a.Locale
	if locale == "" {
		locale = f.Locale
	}
	units, err := s.Units.ListByFile(ctx, f.ID)
	if err != nil {
		return ExportResult{}, err
	}
	trList, err := s.Trans.ListByFileLocale(ctx, f.ID, locale)
	if err != nil {
		return ExportResult{}, err
	}
	trByUnit := make(map[int64]*domain.Translation, len(trList))
	for _, t := range trList {
		trByUnit[t.UnitID] = t
	}
	items := make([]ports.ExportItem, 0, len(units))
	for _, u := range units {
		it := ports.ExportItem{Key: u.Key, Context: u.Context, SourceText: u.SourceText, MetadataRaw: u.MetadataRaw}
		if t, ok := trByUnit[u.ID]; ok {
			it.Translation, it.Status = t.Text, t.Status
		} else if a.Fallback && !isObsolete(u) {
			it.Translation, it.Status = u.SourceText, domain.StatusUnfinished
		}
		items = append(items, it)
	}

	meta := ports.ExportMeta{Locale: locale, MetadataRaw: f.MetadataRaw, Separator: a.Separator}
	if p, err := s.Projects.Get(ctx, f.ProjectID); err == nil {
		meta.SourceLang = p.SourceLang
	}
	content, err := exp.Export(meta, items)
	if err != nil {
		return ExportResult{}, err
	}
	return ExportResult{Filename: OutputName(f.Path, f.Locale, locale, exp.Extension()), Content: content}, nil
}

func isObsolete(u *domain.Unit) bool {
	mm, err := linguist.UnmarshalMeta[linguist.MessageMeta](u.MetadataRaw)
	return err == nil && mm.Obsolete
}

// OutputName derives the exported file name: the locale suffix of the
// imported name is swapped for the target locale and the extension replaced.
// knowthelist_cs.ts exported to tr_TR becomes knowthelist_tr_TR.ts.
func OutputName(path, fileLocale, locale, ext string) string {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if locale != fileLocale && locale != "" {
		swapped := false
		for _, suffix := range localeSuffixes(fileLocale) {
			if strings.HasSuffix(stem, "_"+suffix) {
				stem = strings.TrimSuffix(stem, suffix) + locale
				swapped = true
				break
			}
		}
		if !swapped {
			stem += "_" + locale
		}
	}
	return stem + ext
}

// localeSuffixes lists the spellings of locale a file name may end with,
// longest first: cs_CZ, cs-CZ, cs.
func localeSuffixes(locale string) []string {
	if locale == "" {
		return nil
	}
	out := []string{locale, strings.ReplaceAll(locale, "_", "-")}
	if i := strings.IndexAny(locale, "_-"); i > 0 {
		out = append(out, locale[:i])
	}
	return out
}
