// Package filter applies per-column text filters to a row collection.
package filter

import "campusadmin/datatable"

// Apply returns the rows of rows that match every active entry of state,
// in their original order. The result is always a new slice.
func Apply(rows []datatable.Row, model *datatable.ColumnModel, state datatable.FilterState) []datatable.Row {
	return Select(rows, FromState(model, state))
}

// Select returns the rows for which p holds, in their original order.
func Select(rows []datatable.Row, p Predicate) []datatable.Row {
	out := make([]datatable.Row, 0, len(rows))
	for _, r := range rows {
		if p.Evaluate(r) {
			out = append(out, r)
		}
	}
	return out
}
