package model

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Category is the closed set of request kinds that drive branching.
// It is decided once, when the request is entered.
type Category string

const (
	CategoryFuel  Category = "combustivel"
	CategoryParts Category = "pecas"
	CategoryOther Category = "outro"
)

// ParseCategory maps the free-text request type typed by staff
// ("Combustível", "Vale Peças", "vale pecas", ...) onto a Category.
func ParseCategory(raw string) Category {
	folded := foldAccents(strings.ToLower(strings.TrimSpace(raw)))
	switch {
	case strings.Contains(folded, "combustivel"), strings.Contains(folded, "gasolina"):
		return CategoryFuel
	case strings.Contains(folded, "peca"):
		return CategoryParts
	default:
		return CategoryOther
	}
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	return c == CategoryFuel || c == CategoryParts || c == CategoryOther
}

// StorageFolder is the object-store folder vouchers of this category go to.
func (c Category) StorageFolder() string {
	if c == CategoryParts {
		return "laudos-pecas"
	}
	return "laudos"
}

func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
