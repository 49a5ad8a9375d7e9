package query

import (
	sq "github.com/Masterminds/squirrel"
	"gorm.io/gorm"
)

// Scope narrows a GORM query. It has the signature gorm.DB.Scopes expects.
type Scope func(*gorm.DB) *gorm.DB

// Listing describes one list query: filters, an ORDER BY clause and an
// optional page. A nil Page means the full result set is returned.
type Listing struct {
	Filters []Scope
	Order   string
	Page    *Page
}

// Scopes returns the filters without nil entries, ready for gorm.DB.Scopes.
func (l Listing) Scopes() []func(*gorm.DB) *gorm.DB {
	scopes := make([]func(*gorm.DB) *gorm.DB, 0, len(l.Filters))
	for _, f := range l.Filters {
		if f != nil {
			scopes = append(scopes, f)
		}
	}
	return scopes
}

// Where converts a squirrel predicate into a Scope. A predicate that fails to
// render is attached to the statement as an error so the query never runs
// unfiltered.
func Where(pred sq.Sqlizer) Scope {
	if pred == nil {
		return nil
	}
	return func(db *gorm.DB) *gorm.DB {
		sql, args, err := pred.ToSql()
		if err != nil {
			_ = db.AddError(err)
			return db
		}
		if sql == "" {
			return db
		}
		return db.Where(sql, args...)
	}
}
