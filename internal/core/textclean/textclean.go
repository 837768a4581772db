// Package textclean normalizes menu item text scraped from recipe anchors
// Pipeline order
// 1 Unicode NFKD and drop combining marks so accented letters keep their base
// 2 Map every whitespace rune to an ASCII space
// 3 Keep only ASCII letters, digits, hyphen, parentheses, space and period
// 4 Collapse runs of spaces and trim
package textclean

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var chainPool = sync.Pool{
	New: func() any {
		return transform.Chain(
			norm.NFKD,
			runes.Remove(runes.In(unicode.Mn)),
			runes.Map(func(r rune) rune {
				if unicode.IsSpace(r) {
					return ' '
				}
				return r
			}),
		)
	},
}

// Clean returns s reduced to the allowed character set with single spaces
// empty or fully disallowed input yields ""
func Clean(s string) string {
	if s == "" {
		return ""
	}

	s = strings.ToValidUTF8(s, "")

	tr := chainPool.Get().(transform.Transformer)
	folded, _, err := transform.String(tr, s)
	tr.Reset()
	chainPool.Put(tr)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	b.Grow(len(folded))
	space := false
	for _, r := range folded {
		if r == ' ' {
			space = b.Len() > 0
			continue
		}
		if !allowed(r) {
			continue
		}
		if space {
			b.WriteByte(' ')
			space = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// allowed reports whether r survives cleaning, space is handled by the caller
func allowed(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '-', r == '(', r == ')', r == '.':
		return true
	}
	return false
}
