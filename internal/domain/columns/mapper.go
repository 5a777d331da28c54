package columns

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Mapping associates canonical fields with a source column index.
type Mapping map[Field]int

// MapHeaders resolves each expected column against headers. For every field,
// aliases are tried in order through three passes: exact match, folded exact
// match, then folded substring match in either direction. The first matching
// header index wins; fields without a match are left out.
func MapHeaders(headers []string, expected []Column) Mapping {
	folded := make([]string, len(headers))
	for i, header := range headers {
		folded[i] = Fold(header)
	}

	mapping := make(Mapping, len(expected))
	for _, column := range expected {
		if idx, ok := matchColumn(headers, folded, column.Headers); ok {
			mapping[column.Field] = idx
		}
	}
	return mapping
}

func matchColumn(headers []string, folded []string, aliases []string) (int, bool) {
	for _, alias := range aliases {
		for i, header := range headers {
			if header == alias {
				return i, true
			}
		}
	}

	foldedAliases := make([]string, 0, len(aliases))
	for _, alias := range aliases {
		if f := Fold(alias); f != "" {
			foldedAliases = append(foldedAliases, f)
		}
	}

	for _, alias := range foldedAliases {
		for i, header := range folded {
			if header == alias {
				return i, true
			}
		}
	}

	for _, alias := range foldedAliases {
		for i, header := range folded {
			if header == "" {
				continue
			}
			if strings.Contains(header, alias) || strings.Contains(alias, header) {
				return i, true
			}
		}
	}
	return 0, false
}

var quoteReplacer = strings.NewReplacer(`"`, "", "'", "", "’", "", "`", "", "‘", "")

// Fold strips diacritics and quotes, lowercases and collapses whitespace so
// that "Date de détéction de l'anomalie" and "date de detection de lanomalie"
// compare equal.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}
	stripped = quoteReplacer.Replace(strings.ToLower(stripped))
	return strings.Join(strings.Fields(stripped), " ")
}

// Clean trims value and returns nil for empty or null-like cells.
func Clean(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" || strings.EqualFold(trimmed, "null") {
		return nil
	}
	return &trimmed
}

// Row pairs the ordered cell values of one record with the header mapping
// that applies to it.
type Row struct {
	Values  []string
	Mapping Mapping
}

// Get returns the cleaned value of field, or nil when the field is unmapped,
// out of range, or null-like.
func (r Row) Get(field Field) *string {
	idx, ok := r.Mapping[field]
	if !ok || idx < 0 || idx >= len(r.Values) {
		return nil
	}
	return Clean(r.Values[idx])
}

// Empty reports whether no mapped field of the row carries a value.
func (r Row) Empty() bool {
	for field := range r.Mapping {
		if r.Get(field) != nil {
			return false
		}
	}
	return true
}
