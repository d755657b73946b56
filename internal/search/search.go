// Package search normalizes rich content and matches free-text queries against
// ordered field lists. Matching is case-insensitive substring containment with no
// tokenization or ranking.
package search

import (
	"strings"
	"unicode"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// PlainText strips markup from rich content and collapses whitespace. Text
// inside script and style elements is dropped.
func PlainText(rich string) string {
	if !strings.ContainsAny(rich, "<&") {
		return collapseSpace(rich)
	}

	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(rich))
	skip := 0
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			return collapseSpace(b.String())
		case html.StartTagToken:
			tn, _ := z.TagName()
			switch atom.Lookup(tn) {
			case atom.Script, atom.Style:
				skip++
			case atom.Br, atom.P, atom.Div, atom.Li:
				b.WriteByte(' ')
			}
		case html.EndTagToken:
			tn, _ := z.TagName()
			switch atom.Lookup(tn) {
			case atom.Script, atom.Style:
				if skip > 0 {
					skip--
				}
			case atom.P, atom.Div, atom.Li:
				b.WriteByte(' ')
			}
		case html.SelfClosingTagToken:
			b.WriteByte(' ')
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		}
	}
}

func collapseSpace(s string) string {
	return strings.Join(strings.FieldsFunc(s, unicode.IsSpace), " ")
}

// Normalize prepares a needle for matching. An empty result means the query
// must match nothing.
func Normalize(needle string) string {
	return strings.ToLower(strings.TrimSpace(needle))
}

// Matches reports whether needle is a case-insensitive substring of any field.
// Empty or whitespace-only needles match nothing.
func Matches(fields []string, needle string) bool {
	n := Normalize(needle)
	if n == "" {
		return false
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), n) {
			return true
		}
	}
	return false
}

// PostFields returns the searchable fields of a post: title, plain-text content,
// theme name and owner handle. plainText must already be markup-free.
func PostFields(title, plainText, themeName, ownerHandle string) []string {
	return []string{title, plainText, themeName, ownerHandle}
}

// UserFields returns the searchable fields of a user. The "first last"
// concatenation lets a query span the name boundary.
func UserFields(firstName, lastName, handle string) []string {
	return []string{firstName, lastName, handle, firstName + " " + lastName}
}

// LikePattern builds a LIKE pattern for the normalized needle, escaping the
// wildcard characters with a backslash.
func LikePattern(needle string) string {
	n := Normalize(needle)
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(n) + "%"
}
