package catalog

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/david-geiger/knowthelist/internal/linguist"
	"github.com/sasha-s/go-deadlock"
	"golang.org/x/text/language"
)

// Bundle holds one catalog per locale and picks the closest one for a
// requested locale.
type Bundle struct {
	mu       deadlock.RWMutex
	opts     []Option
	catalogs []*Catalog
	matcher  language.Matcher
}

func NewBundle(opts ...Option) *Bundle {
	return &Bundle{opts: opts}
}

// Add registers c, replacing a catalog with the same language.
func (b *Bundle) Add(c *Catalog) {
	b.mu.Lock()
	defer b.mu.Unlock()
	replaced := false
	for i, existing := range b.catalogs {
		if existing.tag == c.tag {
			b.catalogs[i] = c
			replaced = true
		}
	}
	if !replaced {
		b.catalogs = append(b.catalogs, c)
	}
	tags := make([]language.Tag, len(b.catalogs))
	for i, cat := range b.catalogs {
		tags[i] = cat.tag
	}
	b.matcher = language.NewMatcher(tags)
}

// LoadDir loads every <prefix>_<locale>.ts file in dir.
func (b *Bundle) LoadDir(dir, prefix string) (int, error) {
	return b.LoadFS(os.DirFS(dir), prefix)
}

// LoadFS is LoadDir over an fs.FS. When a file has no language attribute the
// locale is taken from its name.
func (b *Bundle) LoadFS(fsys fs.FS, prefix string) (int, error) {
	paths, err := fs.Glob(fsys, prefix+"_*.ts")
	if err != nil {
		return 0, fmt.Errorf("glob catalogs: %w", err)
	}
	sort.Strings(paths)
	for _, p := range paths {
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return 0, fmt.Errorf("read catalog %s: %w", p, err)
		}
		doc, err := linguist.Unmarshal(data)
		if err != nil {
			return 0, fmt.Errorf("parse catalog %s: %w", p, err)
		}
		if doc.Language == "" {
			doc.Language = strings.TrimSuffix(strings.TrimPrefix(path.Base(p), prefix+"_"), ".ts")
		}
		b.Add(Build(doc, b.opts...))
	}
	return len(paths), nil
}

// Locales lists the loaded catalogs by their file language.
func (b *Bundle) Locales() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]string, 0, len(b.catalogs))
	for _, c := range b.catalogs {
		out = append(out, c.locale)
	}
	sort.Strings(out)
	return out
}

// Match returns the catalog closest to locale, e.g. cs_CZ for "cs".
func (b *Bundle) Match(locale string) (*Catalog, bool) {
	tag, err := ParseLocale(locale)
	if err != nil {
		return nil, false
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.matcher == nil {
		return nil, false
	}
	_, idx, conf := b.matcher.Match(tag)
	if conf == language.No {
		return nil, false
	}
	return b.catalogs[idx], true
}

// Translator is Match with a source-language fallback.
func (b *Bundle) Translator(locale string) *Catalog {
	if c, ok := b.Match(locale); ok {
		return c
	}
	return Empty()
}
