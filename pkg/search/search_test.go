package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type record struct {
	name      string
	diagnosis string
}

func (r *record) SearchField(name string) string {
	switch name {
	case "name":
		return r.name
	case "diagnosis":
		return r.diagnosis
	default:
		return ""
	}
}

var fields = []string{"name", "diagnosis"}

func TestFilterEmptyQueryIsIdentity(t *testing.T) {
	list := []*record{{name: "Alice"}, {name: "Bob"}}

	got := Filter("", list, fields)

	assert.Equal(t, list, got)
}

func TestFilterCaseInsensitiveSubstring(t *testing.T) {
	list := []*record{
		{name: "Alice Smith", diagnosis: "Lymphoma"},
		{name: "Bob Jones", diagnosis: "Leukemia"},
		{name: "Carol White", diagnosis: "lymphoma stage II"},
	}

	got := Filter("LYMPH", list, fields)

	assert.Len(t, got, 2)
	assert.Equal(t, "Alice Smith", got[0].name)
	assert.Equal(t, "Carol White", got[1].name)
}

func TestFilterMatchesAnyField(t *testing.T) {
	list := []*record{
		{name: "smith", diagnosis: "other"},
		{name: "other", diagnosis: "smith syndrome"},
		{name: "neither", diagnosis: "none"},
	}

	got := Filter("smith", list, fields)

	assert.Len(t, got, 2)
}

func TestFilterPreservesInputOrder(t *testing.T) {
	list := []*record{
		{name: "match c"},
		{name: "match a"},
		{name: "match b"},
	}

	got := Filter("match", list, fields)

	assert.Equal(t, []*record{list[0], list[1], list[2]}, got)
}

func TestFilterNoMatchesReturnsEmpty(t *testing.T) {
	list := []*record{{name: "Alice"}}

	got := Filter("zzz", list, fields)

	assert.Empty(t, got)
	assert.NotNil(t, got)
}

func TestFilterIgnoresUnknownFields(t *testing.T) {
	list := []*record{{name: "Alice"}}

	got := Filter("alice", list, []string{"missing"})

	assert.Empty(t, got)
}

func TestFilterDocs(t *testing.T) {
	list := []map[string]interface{}{
		{"name": "Alice", "age": 40},
		{"name": "Bob"},
		{"name": 42},
	}

	got := FilterDocs("ali", list, []string{"name"})

	assert.Len(t, got, 1)
	assert.Equal(t, "Alice", got[0]["name"])
}
