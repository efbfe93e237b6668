// Package search derives the token strings stored with each mod and parses
// the free text of listing queries.
package search

import (
	"strings"
	"unicode"

	"github.com/rivo/uniseg"
)

// minPrefix is the number of leading grapheme clusters a word must have
// before its prefixes are emitted as separate tokens.
const minPrefix = 2

func isSeparator(r rune) bool {
	return r == '_' || r == '-' || r == '/'
}

// Tokens splits id on '_', '-' and '/' and returns the space separated
// tokens indexed for it. A word of at most two grapheme clusters is one
// token; a longer word yields every prefix of three or more clusters, ending
// with the word itself. Words are never cut inside a grapheme cluster.
//
// Only prefixes are indexed: "centipede" yields "cen" through "centipede",
// never a suffix such as "ntipede".
func Tokens(id string) string {
	var b strings.Builder
	b.Grow(len(id) * 2)

	emit := func(tok string) {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(tok)
	}

	for _, word := range strings.FieldsFunc(id, isSeparator) {
		if uniseg.GraphemeClusterCount(word) <= minPrefix {
			emit(word)
			continue
		}

		end, idx := 0, 0
		state := -1
		rest := word
		for len(rest) > 0 {
			cluster, next, _, newState := uniseg.StepString(rest, state)
			end += len(cluster)
			if idx >= minPrefix {
				emit(word[:end])
			}
			idx++
			rest = next
			state = newState
		}
	}

	return b.String()
}

// Terms splits a listing query into lower-cased, de-duplicated search terms.
// Separators that Tokens splits on also separate terms here.
func Terms(query string) []string {
	fields := strings.FieldsFunc(query, func(r rune) bool {
		return unicode.IsSpace(r) || isSeparator(r)
	})

	seen := make(map[string]struct{}, len(fields))
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.ToLower(f)
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		terms = append(terms, f)
	}
	return terms
}
