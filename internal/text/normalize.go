// Package text turns raw record fields into normalized documents.
package text

import (
	"strings"
	"unicode"

	"github.com/kailas-cloud/streameval/internal/domain"
)

// Normalize lowercases s and drops every rune that is neither a Latin letter
// nor whitespace. Whitespace is kept as-is; tokenization happens downstream.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		r = unicode.ToLower(r)
		if (r >= 'a' && r <= 'z') || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Document normalizes the free-text fields of r joined by a single space.
func Document(r domain.Record) string { return Normalize(r.Text()) }

// RemoveStopWords drops English stop words from every document and rejoins
// the remaining tokens with single spaces. Output order matches input order.
func RemoveStopWords(docs []string) []string {
	out := make([]string, len(docs))
	for i, doc := range docs {
		tokens := strings.Fields(doc)
		kept := tokens[:0]
		for _, tok := range tokens {
			if !IsStopWord(tok) {
				kept = append(kept, tok)
			}
		}
		out[i] = strings.Join(kept, " ")
	}
	return out
}

// Documents turns records into stop-word-free documents in record order.
func Documents(records []domain.Record) []string {
	normalized := make([]string, len(records))
	for i, r := range records {
		normalized[i] = Document(r)
	}
	return RemoveStopWords(normalized)
}
