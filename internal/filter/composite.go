package filter

import (
	"fmt"
	"slices"
	"strings"

	"campusadmin/datatable"
)

// Predicate decides whether a row is retained.
type Predicate interface {
	// Evaluate reports whether row passes.
	Evaluate(row datatable.Row) bool

	// Description returns a human-readable form, e.g. `name ~ "ali"`.
	Description() string
}

// Contains is a case-insensitive substring match on one column.
type Contains struct {
	Column  datatable.Column
	pattern string
}

// NewContains builds a Contains predicate. The pattern is lowercased once.
func NewContains(col datatable.Column, pattern string) *Contains {
	return &Contains{Column: col, pattern: strings.ToLower(pattern)}
}

// Evaluate implements Predicate. Missing values stringify to "" and only
// pass an empty pattern.
func (c *Contains) Evaluate(row datatable.Row) bool {
	if c.pattern == "" {
		return true
	}
	text := c.Column.ValueOf(row).Formatted
	return strings.Contains(strings.ToLower(text), c.pattern)
}

// Description implements Predicate.
func (c *Contains) Description() string {
	return fmt.Sprintf("%s ~ %q", c.Column.Key, c.pattern)
}

// Composite requires every filter to pass.
type Composite struct {
	// Filters is the list of filters to combine.
	Filters []Predicate
}

// Evaluate implements Predicate.
func (f *Composite) Evaluate(row datatable.Row) bool {
	for _, filter := range f.Filters {
		if !filter.Evaluate(row) {
			return false // Short-circuit on first failure
		}
	}
	return true // Empty filter passes all rows
}

// Description implements Predicate.
func (f *Composite) Description() string {
	if len(f.Filters) == 0 {
		return "no filter"
	}

	descriptions := make([]string, len(f.Filters))
	for i, filter := range f.Filters {
		descriptions[i] = filter.Description()
	}
	return strings.Join(descriptions, " AND ")
}

// FromState builds the composite for the active entries of state. Keys that
// are not in model read Row[key] as text. Entries are ordered by key so the
// description is stable.
func FromState(model *datatable.ColumnModel, state datatable.FilterState) *Composite {
	active := state.Active()
	keys := make([]string, 0, len(active))
	for k := range active {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	c := &Composite{Filters: make([]Predicate, 0, len(keys))}
	for _, k := range keys {
		c.Filters = append(c.Filters, NewContains(model.Lookup(k), active[k]))
	}
	return c
}
