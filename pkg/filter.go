package pkg

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize pasa a minúsculas y quita tildes para comparar búsquedas.
func Normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(strings.TrimSpace(out))
}

// FilterBySearch deja los elementos en los que algún campo contiene la búsqueda.
// Una búsqueda vacía devuelve todo.
func FilterBySearch[T any](items []T, query string, fields func(T) []string) []T {
	q := Normalize(query)
	if q == "" {
		return items
	}
	out := make([]T, 0, len(items))
	for _, item := range items {
		for _, f := range fields(item) {
			if strings.Contains(Normalize(f), q) {
				out = append(out, item)
				break
			}
		}
	}
	return out
}
