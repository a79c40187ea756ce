package translator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/david-geiger/knowthelist/internal/adapters/prompt"
	"github.com/david-geiger/knowthelist/internal/domain"
	"github.com/david-geiger/knowthelist/internal/linguist"
	"github.com/david-geiger/knowthelist/internal/linguist/catalog"
	"github.com/david-geiger/knowthelist/internal/ports"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/sirupsen/logrus"
)

type Deps struct {
	Providers ports.ProviderSource
	Cache     ports.CacheRepository
	Prompt    ports.PromptRenderer
	// BuildProvider returns a concrete ports.Provider for a declaration.
	BuildProvider func(*domain.Provider) (ports.Provider, error)
	Log           *logrus.Entry
}

type Service struct{ d Deps }

func New(d Deps) *Service {
	if d.Log == nil {
		d.Log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Service{d: d}
}

type TranslateArgs struct {
	Provider    string
	Unit        *domain.Unit
	SourceLang  string
	TargetLang  string
	Model       string
	Project     string
	FilePath    string
	Temperature float64
	BypassCache bool
}

func (a TranslateArgs) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.Provider, validation.Required),
		validation.Field(&a.Unit, validation.NotNil),
		validation.Field(&a.TargetLang, validation.Required),
	)
}

const maxAttempts = 3

// TranslateOne machine-translates a unit's source text into a.TargetLang.
// Numerus units come back as one form per plural category of the target
// language, joined with linguist.NumerusSeparator.
func (s *Service) TranslateOne(ctx context.Context, a TranslateArgs) (string, error) {
	if err := a.Validate(); err != nil {
		return "", err
	}
	prov, err := s.d.Providers.Get(a.Provider)
	if err != nil {
		return "", err
	}
	model := a.Model
	if model == "" {
		model = prov.Model
	}
	meta, err := linguist.UnmarshalMeta[linguist.MessageMeta](a.Unit.MetadataRaw)
	if err != nil {
		return "", fmt.Errorf("unit %d metadata: %w", a.Unit.ID, err)
	}

	m := mask(a.Unit.SourceText)

	reply, err := s.cachedOrTranslate(ctx, a, prov, model, meta, m)
	if err != nil {
		return "", err
	}
	text := m.unmask(reply)
	if meta.Numerus {
		// one text written with %n reads correctly for every count
		forms := make([]string, catalog.NumerusCount(a.TargetLang))
		for i := range forms {
			forms[i] = text
		}
		return strings.Join(forms, linguist.NumerusSeparator), nil
	}
	return text, nil
}

// cachedOrTranslate returns the masked reply for m, from the cache when
// possible.
func (s *Service) cachedOrTranslate(ctx context.Context, a TranslateArgs, prov *domain.Provider, model string, meta linguist.MessageMeta, m masked) (string, error) {
	if !a.BypassCache {
		ce, err := s.d.Cache.Get(ctx, m.text, a.SourceLang, a.TargetLang, prov.Name, model)
		if err != nil {
			s.d.Log.WithError(err).Warn("translation cache lookup failed")
		}
		if ce != nil && m.check(ce.Translation) == nil {
			return ce.Translation, nil
		}
	}

	data := ports.PromptData{
		SrcLang:      a.SourceLang,
		TgtLang:      a.TargetLang,
		Key:          a.Unit.Key,
		Text:         m.text,
		FilePath:     a.FilePath,
		Project:      a.Project,
		Context:      a.Unit.Context,
		Comment:      meta.Comment,
		ExtraComment: meta.ExtraComment,
		Numerus:      meta.Numerus,
		Placeholders: m.placeholders,
		Tags:         m.tags,
	}
	system, err := s.d.Prompt.Render(ctx, prompt.TranslateSingle, "system", data)
	if err != nil {
		return "", err
	}
	user, err := s.d.Prompt.Render(ctx, prompt.TranslateSingle, "user", data)
	if err != nil {
		return "", err
	}
	if s.d.BuildProvider == nil {
		return "", errors.New("translate: provider builder missing")
	}
	adapter, err := s.d.BuildProvider(prov)
	if err != nil {
		return "", err
	}

	segment := ports.Segment{Key: a.Unit.Key, Text: m.text, Context: a.Unit.Context, Comment: meta.Comment, Placeholders: m.placeholders, Tags: m.tags}
	params := ports.TranslateParams{
		SourceLang:   a.SourceLang,
		TargetLang:   a.TargetLang,
		Model:        model,
		Temperature:  a.Temperature,
		SystemPrompt: system,
		UserPrompt:   user,
	}
	var out string
	for attempt := 1; ; attempt++ {
		out, err = s.attempt(ctx, adapter, segment, params, m)
		if err == nil {
			break
		}
		if !isRetryable(err) || attempt == maxAttempts {
			return "", err
		}
		s.d.Log.WithError(err).WithField("attempt", attempt).Debug("retrying translation")
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(time.Duration(200*attempt) * time.Millisecond):
		}
	}

	if err := s.d.Cache.Put(ctx, &domain.CacheEntry{
		SourceText:  m.text,
		SrcLang:     a.SourceLang,
		TgtLang:     a.TargetLang,
		Provider:    prov.Name,
		Model:       model,
		Translation: out,
	}); err != nil {
		s.d.Log.WithError(err).Warn("translation cache write failed")
	}
	return out, nil
}

func (s *Service) attempt(ctx context.Context, adapter ports.Provider, seg ports.Segment, p ports.TranslateParams, m masked) (string, error) {
	res, err := adapter.Translate(ctx, seg, p)
	if err != nil {
		return "", err
	}
	out := strings.TrimSpace(res.Translation)
	if err := m.check(out); err != nil {
		return "", err
	}
	return out, nil
}

// isRetryable reports output problems models tend to get right on a second try.
func isRetryable(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, s := range []string{
		"failed to parse translation json",
		"no choices returned",
		"placeholder missing in translation",
		"unexpected end of",
		"invalid character",
	} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}
