package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrdering_Clause(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"default", "", "authors.name ASC, authors.id ASC"},
		{"single field", "name", "authors.name ASC, authors.id ASC"},
		{"descending", "-birth_date", "authors.birth_date DESC, authors.id ASC"},
		{"several fields", "email,-name", "authors.email ASC, authors.name DESC, authors.id ASC"},
		{"id given explicitly", "-id", "authors.id DESC"},
		{"unknown fields dropped", "bio,-name", "authors.name DESC, authors.id ASC"},
		{"only unknown fields", "password", "authors.name ASC, authors.id ASC"},
		{"duplicates collapse", "name,-name", "authors.name ASC, authors.id ASC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AuthorOrdering.Clause(tt.raw))
		})
	}
}

func TestBookOrdering_Default(t *testing.T) {
	assert.Equal(t, "books.title ASC, books.id ASC", BookOrdering.Default())
	assert.Equal(t, "books.price DESC, books.id ASC", BookOrdering.Clause("-price"))
	assert.Equal(t, "audit_events.created_at DESC, audit_events.id ASC", AuditOrdering.Default())
}
