package query

import (
	"strings"
)

// Ordering maps the public names accepted by the ordering parameter to
// columns, and holds the default order used when none of them is usable.
type Ordering struct {
	table    string
	fields   map[string]string
	defaults []string
}

func NewOrdering(table string, defaults []string, fields ...string) Ordering {
	o := Ordering{table: table, fields: make(map[string]string, len(fields)), defaults: defaults}
	for _, f := range fields {
		o.fields[f] = table + "." + f
	}
	return o
}

var (
	AuthorOrdering = NewOrdering("authors", []string{"name"}, "id", "name", "email", "birth_date")
	BookOrdering   = NewOrdering("books", []string{"title"}, "id", "title", "publication_date", "price", "genre")
	AuditOrdering  = NewOrdering("audit_events", []string{"-created_at"}, "id", "created_at")
)

// Clause renders an ORDER BY clause for the raw ordering parameter. Unknown
// fields are dropped; the id column is appended as a tiebreak.
func (o Ordering) Clause(raw string) string {
	terms := o.resolve(raw)
	if len(terms) == 0 {
		terms = o.resolve(strings.Join(o.defaults, ","))
	}

	parts := make([]string, 0, len(terms)+1)
	hasID := false
	seen := make(map[string]bool, len(terms))
	for _, t := range terms {
		if seen[t.column] {
			continue
		}
		seen[t.column] = true
		if t.column == o.table+".id" {
			hasID = true
		}
		dir := "ASC"
		if t.desc {
			dir = "DESC"
		}
		parts = append(parts, t.column+" "+dir)
	}
	if !hasID {
		parts = append(parts, o.table+".id ASC")
	}
	return strings.Join(parts, ", ")
}

// Default renders the default ORDER BY clause.
func (o Ordering) Default() string {
	return o.Clause("")
}

type orderTerm struct {
	column string
	desc   bool
}

func (o Ordering) resolve(raw string) []orderTerm {
	var terms []orderTerm
	for _, name := range strings.Split(raw, ",") {
		name = strings.TrimSpace(name)
		desc := strings.HasPrefix(name, "-")
		name = strings.TrimPrefix(name, "-")
		column, ok := o.fields[name]
		if !ok {
			continue
		}
		terms = append(terms, orderTerm{column: column, desc: desc})
	}
	return terms
}
