package catalog

import (
	"golang.org/x/text/feature/plural"
	"golang.org/x/text/language"
)

// Qt stores numerus forms in CLDR category order, keeping only the
// categories a language uses for whole numbers.
var formOrder = []plural.Form{plural.Zero, plural.One, plural.Two, plural.Few, plural.Many, plural.Other}

// lupdate writes a single numerus form for these languages even where CLDR
// distinguishes one from other.
var singleFormLanguages = map[string]bool{
	"bi": true, "bo": true, "dz": true, "fa": true, "fj": true, "gn": true,
	"hu": true, "id": true, "ja": true, "jv": true, "ko": true, "ms": true,
	"my": true, "na": true, "om": true, "su": true, "th": true, "tr": true,
	"tt": true, "vi": true, "yo": true, "za": true, "zh": true,
}

func integerForms(tag language.Tag) []plural.Form {
	if base, _ := tag.Base(); singleFormLanguages[base.String()] {
		return []plural.Form{plural.Other}
	}
	used := map[plural.Form]bool{}
	for n := 0; n <= 200; n++ {
		used[plural.Cardinal.MatchPlural(tag, n, 0, 0, 0, 0)] = true
	}
	out := make([]plural.Form, 0, len(used))
	for _, f := range formOrder {
		if used[f] {
			out = append(out, f)
		}
	}
	return out
}

// numerusIndex returns which numerus form applies to n.
func numerusIndex(tag language.Tag, forms []plural.Form, n int) int {
	if n < 0 {
		n = -n
	}
	f := plural.Cardinal.MatchPlural(tag, n, 0, 0, 0, 0)
	for i, candidate := range forms {
		if candidate == f {
			return i
		}
	}
	return len(forms) - 1
}

// NumerusCount is the number of numerus forms a translation into locale
// carries. Unknown locales get one.
func NumerusCount(locale string) int {
	tag, err := ParseLocale(locale)
	if err != nil {
		return 1
	}
	return len(integerForms(tag))
}
