// Package search implements the in-memory substring filter screens apply to
// already-fetched lists. It is pure: no I/O, no mutation of the input, and the
// relative order of surviving records is the relative order of the input.
package search

import "strings"

// Fielder exposes named searchable fields as strings. Records return "" for
// fields they do not carry.
type Fielder interface {
	SearchField(name string) string
}

// Filter retains the records for which any of the named fields, lowercased,
// contains the lowercased query as a substring. An empty query is the
// identity operation and returns the input slice unchanged.
func Filter[T Fielder](query string, list []T, fields []string) []T {
	if query == "" {
		return list
	}

	q := strings.ToLower(query)
	out := make([]T, 0, len(list))
	for _, rec := range list {
		if matches(rec, q, fields) {
			out = append(out, rec)
		}
	}
	return out
}

// FilterDocs is the raw-document form of Filter, used before a document has
// crossed the decode boundary. Non-string field values are ignored.
func FilterDocs(query string, list []map[string]interface{}, fields []string) []map[string]interface{} {
	if query == "" {
		return list
	}

	q := strings.ToLower(query)
	out := make([]map[string]interface{}, 0, len(list))
	for _, doc := range list {
		for _, f := range fields {
			s, ok := doc[f].(string)
			if ok && strings.Contains(strings.ToLower(s), q) {
				out = append(out, doc)
				break
			}
		}
	}
	return out
}

func matches(rec Fielder, q string, fields []string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(rec.SearchField(f)), q) {
			return true
		}
	}
	return false
}
