package codegen

import (
	"strings"
	"unicode"

	"github.com/go-openapi/inflect"
)

// Ident derives the exported Go identifier used for a component in the
// generated program. Component names are snake_case with optional numeric
// suffixes ("filter_gain_2"), which camelize cleanly; anything left that
// cannot start an identifier is prefixed.
func Ident(name string) string {
	id := inflect.Camelize(name)
	id = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return -1
	}, id)
	if id == "" || unicode.IsDigit(rune(id[0])) {
		id = "C" + id
	}
	return id
}
