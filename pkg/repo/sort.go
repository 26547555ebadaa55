package repo

import "strings"

// SortByField is one ORDER BY term over a repository-defined field enum.
type SortByField[T comparable] struct {
	Field     T
	Ascending bool
}

// SortBy is an ordered list of sort terms. ToSQL resolves fields through the
// repository's field-to-column mapping; unknown fields are dropped.
type SortBy[T comparable] struct {
	Fields []SortByField[T]
}

func (s SortBy[T]) ToSQL(mapping map[T]string) string {
	terms := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		column, ok := mapping[f.Field]
		if !ok {
			continue
		}
		direction := "DESC"
		if f.Ascending {
			direction = "ASC"
		}
		terms = append(terms, column+" "+direction)
	}
	if len(terms) == 0 {
		return ""
	}
	return "ORDER BY " + strings.Join(terms, ", ")
}
