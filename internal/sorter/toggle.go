package sorter

import "campusadmin/datatable"

// next is the per-column cycle none → asc → desc → none.
func next(d datatable.SortDirection) datatable.SortDirection {
	switch d {
	case datatable.SortNone:
		return datatable.SortAscending
	case datatable.SortAscending:
		return datatable.SortDescending
	default:
		return datatable.SortNone
	}
}

// Click returns the directive that results from clicking the header of key.
//
// A plain click replaces the whole directive with key at the next state of
// its cycle, or clears it when key was descending. A shift click edits the
// directive in place: an absent key is appended ascending, an ascending key
// flips to descending at the same priority, and a descending key is removed.
// The input directive is not modified.
func Click(directive datatable.Directive, key string, shift bool) datatable.Directive {
	current := directive.Direction(key)

	if !shift {
		n := next(current)
		if n == datatable.SortNone {
			return datatable.Directive{}
		}
		return datatable.Directive{{Key: key, Direction: n}}
	}

	out := directive.Clone()
	if out == nil {
		out = datatable.Directive{}
	}
	switch current {
	case datatable.SortNone:
		return append(out, datatable.SortKey{Key: key, Direction: datatable.SortAscending})
	case datatable.SortAscending:
		out[out.Index(key)].Direction = datatable.SortDescending
		return out
	default:
		i := out.Index(key)
		return append(out[:i], out[i+1:]...)
	}
}
