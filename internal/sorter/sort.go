// Package sorter orders rows by a multi-key sort directive and implements the
// header click policy that edits directives.
package sorter

import (
	"fmt"
	"slices"
	"strings"

	"campusadmin/datatable"
)

// Apply returns a copy of rows ordered by directive. An empty directive keeps
// the input order. The sort is stable: rows equal on every key keep their
// relative input order. rows is never modified.
func Apply(rows []datatable.Row, model *datatable.ColumnModel, directive datatable.Directive) []datatable.Row {
	out := make([]datatable.Row, len(rows))
	copy(out, rows)
	if len(directive) == 0 || len(out) < 2 {
		return out
	}

	keys := resolve(model, directive)
	slices.SortStableFunc(out, func(a, b datatable.Row) int {
		return compareRows(a, b, keys)
	})
	return out
}

type sortColumn struct {
	col  datatable.Column
	desc bool
}

func resolve(model *datatable.ColumnModel, directive datatable.Directive) []sortColumn {
	keys := make([]sortColumn, 0, len(directive))
	for _, k := range directive {
		if k.Direction == datatable.SortNone {
			continue
		}
		keys = append(keys, sortColumn{
			col:  model.Lookup(k.Key),
			desc: k.Direction == datatable.SortDescending,
		})
	}
	return keys
}

// compareRows orders two rows: the first key on which they differ decides,
// asc putting the smaller value first and desc the larger.
func compareRows(a, b datatable.Row, keys []sortColumn) int {
	for _, k := range keys {
		c := datatable.Compare(k.col.ValueOf(a), k.col.ValueOf(b))
		if c == 0 {
			continue
		}
		less := c < 0
		if k.desc {
			less = !less
		}
		if less {
			return -1
		}
		return 1
	}
	return 0
}

// Describe renders a directive for status lines, e.g. "name ↑, age ↓".
func Describe(directive datatable.Directive) string {
	if len(directive) == 0 {
		return "unsorted"
	}
	parts := make([]string, len(directive))
	for i, k := range directive {
		parts[i] = fmt.Sprintf("%s %s", k.Key, k.Direction.Arrow())
	}
	return strings.Join(parts, ", ")
}
