package ports

import (
	"github.com/david-geiger/knowthelist/internal/domain"
)

// ParsedTranslation is a translation found in the imported file itself. Key
// matches the Unit.Key it belongs to.
type ParsedTranslation struct {
	Key    string
	Text   string
	Status string
}

type ParseResult struct {
	Units        []*domain.Unit
	Translations []ParsedTranslation
	Locale       string // optional, if detected from file
	MetadataRaw  string // optional file-level metadata
}

type Parser interface {
	Format() string
	Parse(data []byte) (ParseResult, error)
}
