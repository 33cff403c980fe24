// Package ingest maps external market data onto internal nominee odds.
// The matching side lives here: a fixed alias table consulted against
// normalized market question text.
package ingest

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// AliasTable maps lowercase text fragments to nominee ids. A nominee
// may appear under several aliases, e.g. a film's full and short title.
type AliasTable map[string]int

// DefaultAliases returns the alias table for the shipped catalog.
func DefaultAliases() AliasTable {
	return AliasTable{
		"one battle after another": 1,
		"hamnet":                   2,
		"sinners":                  3,
		"marty supreme":            4,
		"sentimental value":        5,
		"the secret agent":         6,
		"frankenstein":             7,
		"bugonia":                  8,
		"f1":                       9,
		"f1: the movie":            9,
		"train dreams":             10,
	}
}

// Matcher resolves market question text to nominee ids. Aliases are
// checked in a fixed priority order: longest first, then lexicographic,
// so "f1: the movie" always wins over "f1" and runs are deterministic.
type Matcher struct {
	aliases []string
	table   AliasTable
}

// NewMatcher builds a matcher over the given alias table.
func NewMatcher(table AliasTable) *Matcher {
	aliases := make([]string, 0, len(table))
	normalized := make(AliasTable, len(table))
	for a, id := range table {
		n := normalize(a)
		aliases = append(aliases, n)
		normalized[n] = id
	}
	sort.Slice(aliases, func(i, j int) bool {
		if len(aliases[i]) != len(aliases[j]) {
			return len(aliases[i]) > len(aliases[j])
		}
		return aliases[i] < aliases[j]
	})
	return &Matcher{aliases: aliases, table: normalized}
}

// Match tests each alias for case-insensitive containment in question.
// The first alias hit wins. ok is false when no alias matches.
func (m *Matcher) Match(question string) (nomineeID int, alias string, ok bool) {
	q := normalize(question)
	for _, a := range m.aliases {
		if strings.Contains(q, a) {
			return m.table[a], a, true
		}
	}
	return 0, "", false
}

// normalize lowercases and folds accents so "Mendonça" matches
// "mendonca" however the feed spells it.
func normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(folded)
}
