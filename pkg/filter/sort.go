package filter

import "strings"

// Direction is a sort direction.
type Direction int

const (
	Asc Direction = iota
	Desc
)

func (d Direction) String() string {
	if d == Desc {
		return "DESC"
	}
	return "ASC"
}

// SortKey orders by one column.
type SortKey struct {
	Column    string
	Direction Direction
}

// Sort is an ordered list of sort keys.
type Sort []SortKey

// SQL renders the keys for an ORDER BY clause.
func (s Sort) SQL() string {
	parts := make([]string, 0, len(s))
	for _, k := range s {
		parts = append(parts, k.Column+" "+k.Direction.String())
	}
	return strings.Join(parts, ", ")
}

// SortConfig declares how a listing may be ordered.
type SortConfig struct {
	// Fields maps the public sortBy names to columns. Names not listed fall
	// back to Default.
	Fields map[string]string
	// Default applies when sortBy is absent or not allowed.
	Default Sort
	// DefaultDirection applies when sortBy is given without sortOrder/order.
	DefaultDirection Direction
	// Tiebreak is the unique column appended to every sort. Defaults to "id".
	Tiebreak string
}

func parseDirection(v string, def Direction) Direction {
	if v == "" {
		return def
	}
	if strings.EqualFold(v, "desc") {
		return Desc
	}
	return Asc
}

// resolve picks the requested or default ordering and appends the tiebreak
// in the primary key's direction.
func (c SortConfig) resolve(sortBy, order string) Sort {
	var s Sort
	if col, ok := c.Fields[sortBy]; ok && sortBy != "" {
		s = Sort{{Column: col, Direction: parseDirection(order, c.DefaultDirection)}}
	} else {
		s = append(Sort{}, c.Default...)
	}

	tiebreak := c.Tiebreak
	if tiebreak == "" {
		tiebreak = "id"
	}

	dir := Asc
	if len(s) > 0 {
		dir = s[0].Direction
	}
	for _, k := range s {
		if k.Column == tiebreak {
			return s
		}
	}
	return append(s, SortKey{Column: tiebreak, Direction: dir})
}
