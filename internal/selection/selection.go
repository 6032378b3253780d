// Package selection tracks which rows of a derived view are selected.
//
// Selection is expressed as positions in the view it was made against. When
// the view is regenerated the positions are meaningless, so callers either
// Reset the manager or carry the selection across by row identity with
// Capture and Restore.
package selection

import (
	"fmt"
	"slices"

	"campusadmin/datatable"
)

// Identity extracts a stable identifier from a row.
type Identity func(datatable.Row) string

// Manager holds the selected positions of one view.
type Manager struct {
	size     int
	selected map[int]struct{}
}

// New returns a manager for a view of size rows with nothing selected.
func New(size int) *Manager {
	m := &Manager{}
	m.Reset(size)
	return m
}

// Reset discards the selection and adopts a new view size.
func (m *Manager) Reset(size int) {
	if size < 0 {
		size = 0
	}
	m.size = size
	m.selected = make(map[int]struct{})
}

// Size returns the view size the selection refers to.
func (m *Manager) Size() int {
	return m.size
}

// SelectAll selects every row of the view.
func (m *Manager) SelectAll() {
	m.selected = make(map[int]struct{}, m.size)
	for i := 0; i < m.size; i++ {
		m.selected[i] = struct{}{}
	}
}

// Clear deselects every row.
func (m *Manager) Clear() {
	m.selected = make(map[int]struct{})
}

// Toggle flips the selection of position i.
func (m *Manager) Toggle(i int) error {
	if i < 0 || i >= m.size {
		return fmt.Errorf("%w: %d (view has %d rows)", datatable.ErrInvalidRow, i, m.size)
	}
	if _, ok := m.selected[i]; ok {
		delete(m.selected, i)
	} else {
		m.selected[i] = struct{}{}
	}
	return nil
}

// Set selects or deselects position i.
func (m *Manager) Set(i int, on bool) error {
	if i < 0 || i >= m.size {
		return fmt.Errorf("%w: %d (view has %d rows)", datatable.ErrInvalidRow, i, m.size)
	}
	if on {
		m.selected[i] = struct{}{}
	} else {
		delete(m.selected, i)
	}
	return nil
}

// IsSelected reports whether position i is selected.
func (m *Manager) IsSelected(i int) bool {
	_, ok := m.selected[i]
	return ok
}

// Count returns the number of selected rows.
func (m *Manager) Count() int {
	return len(m.selected)
}

// AllSelected reports whether every row of a non-empty view is selected.
func (m *Manager) AllSelected() bool {
	return m.size > 0 && len(m.selected) == m.size
}

// Indices returns the selected positions in ascending order.
func (m *Manager) Indices() []int {
	out := make([]int, 0, len(m.selected))
	for i := range m.selected {
		out = append(out, i)
	}
	slices.Sort(out)
	return out
}

// Resolve returns the selected rows of view in view order. Positions past
// the end of view are ignored.
func (m *Manager) Resolve(view []datatable.Row) []datatable.Row {
	out := make([]datatable.Row, 0, len(m.selected))
	for i, r := range view {
		if m.IsSelected(i) {
			out = append(out, r)
		}
	}
	return out
}

// Capture returns the identities of the selected rows of view.
func (m *Manager) Capture(view []datatable.Row, id Identity) []string {
	rows := m.Resolve(view)
	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = id(r)
	}
	return ids
}

// Restore resets the manager to view and selects the rows whose identity is
// in ids. Identities with no row in view are dropped.
func (m *Manager) Restore(view []datatable.Row, id Identity, ids []string) {
	m.Reset(len(view))
	if len(ids) == 0 {
		return
	}
	want := make(map[string]struct{}, len(ids))
	for _, s := range ids {
		want[s] = struct{}{}
	}
	for i, r := range view {
		if _, ok := want[id(r)]; ok {
			m.selected[i] = struct{}{}
		}
	}
}
