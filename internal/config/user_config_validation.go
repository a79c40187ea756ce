package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/david-geiger/knowthelist/internal/adapters/llm/factory"
	"github.com/david-geiger/knowthelist/internal/domain"
	"github.com/david-geiger/knowthelist/internal/linguist/catalog"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/samber/lo"
)

var providerTypes = lo.Map(factory.Types, func(t string, _ int) any { return t })

var localeRule = validation.By(func(v any) error {
	s, _ := v.(string)
	if s == "" || s == "auto" {
		return nil
	}
	if _, err := catalog.ParseLocale(s); err != nil {
		return fmt.Errorf("invalid locale %q", s)
	}
	return nil
})

// Validate validates the user config
func (c *UserConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Database, validation.Required),
		validation.Field(&c.SourceLanguage, validation.Required, localeRule),
		validation.Field(&c.Locale, localeRule),
		validation.Field(&c.Providers),
	); err != nil {
		return err
	}
	if c.Jobs.ItemTimeout < 0 || c.Jobs.HTTPTimeout < 0 {
		return errors.New("jobs: timeouts must not be negative")
	}
	seen := map[string]bool{}
	for _, p := range c.Providers {
		if seen[p.Name] {
			return fmt.Errorf("providers: duplicate name %q", p.Name)
		}
		seen[p.Name] = true
	}
	for key := range c.Prompts {
		if !strings.Contains(key, ".") {
			return fmt.Errorf("prompts: key %q is not type.role", key)
		}
	}
	return nil
}

func validateProvider(p *domain.Provider) error {
	return validation.ValidateStruct(p,
		validation.Field(&p.Name, validation.Required),
		validation.Field(&p.Type, validation.Required, validation.In(providerTypes...)),
		validation.Field(&p.BaseURL, is.URL),
	)
}

// Validate makes the list usable as a validation.Validatable field.
func (p Providers) Validate() error {
	for i, prov := range p {
		if prov == nil {
			return fmt.Errorf("%d: empty provider", i)
		}
		if err := validateProvider(prov); err != nil {
			return fmt.Errorf("%d: %w", i, err)
		}
	}
	return nil
}
