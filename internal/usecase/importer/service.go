package importer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"

	parreg "github.com/david-geiger/knowthelist/internal/adapters/parser/registry"
	"github.com/david-geiger/knowthelist/internal/domain"
	"github.com/david-geiger/knowthelist/internal/ports"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/sirupsen/logrus"
)

type Service struct {
	Store          ports.TxRunner
	ParserRegistry *parreg.Registry
	Log            *logrus.Entry
}

func New(store ports.TxRunner, reg *parreg.Registry, log *logrus.Entry) *Service {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Service{Store: store, ParserRegistry: reg, Log: log}
}

type ImportArgs struct {
	ProjectID int64
	Filename  string
	// Format defaults to the one implied by the file extension.
	Format string
	// Locale overrides the language found in the file.
	Locale  string
	Content []byte
}

func (a ImportArgs) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.ProjectID, validation.Required),
		validation.Field(&a.Filename, validation.Required),
		validation.Field(&a.Content, validation.Required),
	)
}

type ImportResult struct {
	FileID       int64
	Locale       string
	Units        int
	Translations int
}

var formatsByExt = map[string]string{
	".ts":  "qtts",
	".csv": "csv",
}

// DetectFormat maps a file name to a parser format, "" when unknown.
func DetectFormat(filename string) string {
	return formatsByExt[strings.ToLower(filepath.Ext(filename))]
}

// Import stores the file, its units and the translations it already
// carries in one transaction.
func (s *Service) Import(ctx context.Context, in ImportArgs) (ImportResult, error) {
	if err := in.Validate(); err != nil {
		return ImportResult{}, err
	}
	format := in.Format
	if format == "" {
		format = DetectFormat(in.Filename)
	}
	parser, ok := s.ParserRegistry.Get(format)
	if !ok {
		return ImportResult{}, fmt.Errorf("unsupported format %q for %s (known: %s)", format, in.Filename, strings.Join(s.ParserRegistry.Formats(), ", "))
	}
	pr, err := parser.Parse(in.Content)
	if err != nil {
		return ImportResult{}, fmt.Errorf("parse %s: %w", in.Filename, err)
	}
	locale := in.Locale
	if locale == "" {
		locale = pr.Locale
	}

	sum := sha256.Sum256(in.Content)
	f := &domain.File{ProjectID: in.ProjectID, Path: in.Filename, Format: format, Locale: locale, Hash: hex.EncodeToString(sum[:]), MetadataRaw: pr.MetadataRaw}
	res := ImportResult{Locale: locale, Units: len(pr.Units)}
	err = s.Store.InTx(ctx, func(r ports.Repositories) error {
		if err := r.Files.Create(ctx, f); err != nil {
			return err
		}
		for _, u := range pr.Units {
			u.FileID = f.ID
		}
		if err := r.Units.UpsertBatch(ctx, pr.Units); err != nil {
			return err
		}
		if locale == "" {
			if len(pr.Translations) > 0 {
				s.Log.Warnf("%s has no language; %d translations not imported", in.Filename, len(pr.Translations))
			}
			return nil
		}
		if err := r.Projects.AddLocale(ctx, &domain.ProjectLocale{ProjectID: in.ProjectID, Locale: locale}); err != nil {
			return err
		}
		stored, err := r.Units.ListByFile(ctx, f.ID)
		if err != nil {
			return err
		}
		ids := make(map[string]int64, len(stored))
		for _, u := range stored {
			ids[u.Key] = u.ID
		}
		for _, pt := range pr.Translations {
			id, ok := ids[pt.Key]
			if !ok {
				continue
			}
			if err := r.Translations.Upsert(ctx, &domain.Translation{UnitID: id, Locale: locale, Text: pt.Text, Status: pt.Status}); err != nil {
				return err
			}
			res.Translations++
		}
		return nil
	})
	if err != nil {
		return ImportResult{}, err
	}
	res.FileID = f.ID
	s.Log.WithFields(logrus.Fields{"file": in.Filename, "locale": locale, "units": res.Units, "translations": res.Translations}).Info("imported")
	return res, nil
}
