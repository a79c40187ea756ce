package app

import (
	"github.com/david-geiger/knowthelist/internal/linguist/catalog"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// LookupAPI answers runtime lookups against catalogs loaded from disk.
type LookupAPI struct {
	bundle *catalog.Bundle
}

func NewLookupAPI(bundle *catalog.Bundle) *LookupAPI { return &LookupAPI{bundle: bundle} }

// Load reads every <prefix>_<locale>.ts catalog in dir.
func (a *LookupAPI) Load(dir, prefix string) (int, error) {
	return a.bundle.LoadDir(dir, prefix)
}

func (a *LookupAPI) Locales() []string { return a.bundle.Locales() }

type LookupRequest struct {
	Locale  string `json:"locale"`
	Context string `json:"context"`
	Source  string `json:"source"`
	Comment string `json:"comment"`
	// N selects a numerus form when set.
	N *int `json:"n,omitempty"`
}

func (r LookupRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Locale, validation.Required, isLocale),
		validation.Field(&r.Source, validation.Required),
	)
}

type LookupResponse struct {
	// Catalog is the locale of the catalog that answered, empty when none
	// matched.
	Catalog string `json:"catalog"`
	Text    string `json:"text"`
	Found   bool   `json:"found"`
}

// Lookup translates one message. Misses fall back to the source text.
func (a *LookupAPI) Lookup(req LookupRequest) (LookupResponse, error) {
	if err := req.Validate(); err != nil {
		return LookupResponse{}, err
	}
	c := a.bundle.Translator(req.Locale)
	res := LookupResponse{Catalog: c.Locale()}
	if req.N != nil {
		_, res.Found = c.Lookup(req.Context, req.Source, req.Comment)
		res.Text = c.TranslateN(req.Context, req.Source, req.Comment, *req.N)
		return res, nil
	}
	res.Text, res.Found = c.Lookup(req.Context, req.Source, req.Comment)
	if !res.Found {
		res.Text = req.Source
	}
	return res, nil
}
