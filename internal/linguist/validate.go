package linguist

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue codes reported by Validate.
const (
	CodeMissingSource          = "missing-source"
	CodeConflictingTranslation = "conflicting-translation"
	CodeDuplicateMessage       = "duplicate-message"
	CodeNumerusWithoutForms    = "numerus-without-forms"
	CodeMissingLanguage        = "missing-language"
)

type Issue struct {
	Severity Severity
	Code     string
	Context  string
	Source   string
	Message  string
}

func (i Issue) String() string {
	if i.Context == "" {
		return fmt.Sprintf("%s [%s] %s", i.Severity, i.Code, i.Message)
	}
	return fmt.Sprintf("%s [%s] %s %q: %s", i.Severity, i.Code, i.Context, i.Source, i.Message)
}

type Report struct {
	Issues []Issue
}

func (r Report) Errors() []Issue {
	return lo.Filter(r.Issues, func(i Issue, _ int) bool { return i.Severity == SeverityError })
}

func (r Report) Warnings() []Issue {
	return lo.Filter(r.Issues, func(i Issue, _ int) bool { return i.Severity == SeverityWarning })
}

// OK reports whether the document has no errors. Warnings do not count.
func (r Report) OK() bool { return len(r.Errors()) == 0 }

func (r Report) String() string {
	return strings.Join(lo.Map(r.Issues, func(i Issue, _ int) string { return i.String() }), "\n")
}

// Validate checks the structural rules a loader relies on: every message has
// a source, and within one context a (source, comment) pair seen at the same
// call site resolves to a single translation.
func Validate(d *Document) Report {
	var rep Report
	add := func(sev Severity, code, ctx, src, msg string) {
		rep.Issues = append(rep.Issues, Issue{Severity: sev, Code: code, Context: ctx, Source: src, Message: msg})
	}
	if d.Language == "" {
		add(SeverityWarning, CodeMissingLanguage, "", "", "TS element has no language attribute")
	}
	for _, c := range d.Contexts {
		seen := map[Key][]*Message{}
		for _, m := range c.Messages {
			if m.Source == "" {
				add(SeverityError, CodeMissingSource, c.Name, "", "message has no source text")
				continue
			}
			if m.Numerus && m.Translation.Type != Unfinished && !m.IsObsolete() && len(m.Translation.NumerusForms) == 0 {
				add(SeverityWarning, CodeNumerusWithoutForms, c.Name, m.Source, "numerus message has no numerus forms")
			}
			if m.IsObsolete() {
				continue
			}
			k := m.Key(c.Name)
			for _, prev := range seen[k] {
				if !sharesLocation(prev, m) {
					if prev.Translation.Joined() == m.Translation.Joined() {
						add(SeverityWarning, CodeDuplicateMessage, c.Name, m.Source, "message repeated instead of listing both locations")
					}
					continue
				}
				if prev.Translation.Joined() != m.Translation.Joined() {
					add(SeverityError, CodeConflictingTranslation, c.Name, m.Source,
						fmt.Sprintf("translated both as %q and %q", prev.Translation.Joined(), m.Translation.Joined()))
				} else {
					add(SeverityWarning, CodeDuplicateMessage, c.Name, m.Source, "message appears twice with the same translation")
				}
			}
			seen[k] = append(seen[k], m)
		}
	}
	return rep
}

// sharesLocation reports whether two messages name a common call site. Two
// messages without any location are considered to share one.
func sharesLocation(a, b *Message) bool {
	if len(a.Locations) == 0 && len(b.Locations) == 0 {
		return true
	}
	for _, la := range a.Locations {
		if lo.Contains(b.Locations, la) {
			return true
		}
	}
	return false
}
