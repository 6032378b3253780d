// Copyright 2025 Magnus Pierre
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package view wires filtering, sorting, selection, preferences and export
// into the derived state of one table.
//
// Every change to the raw rows, the sort directive or the filters runs the
// filter pass and then the sort pass, producing a fresh derived view.
// Selection and export only ever read that derived view.
package view

import (
	"fmt"
	"log/slog"
	"maps"
	"strings"
	"sync"
	"time"

	"campusadmin/datatable"
	"campusadmin/export"
	"campusadmin/internal/filter"
	"campusadmin/internal/selection"
	"campusadmin/internal/sorter"
	"campusadmin/prefs"
)

// State is the recompute state of a table.
type State int

const (
	Idle State = iota
	Recomputing
)

func (s State) String() string {
	if s == Recomputing {
		return "recomputing"
	}
	return "idle"
}

// Options configures a Table.
type Options struct {
	// TableID names the table for preference persistence. Preferences are
	// neither restored nor saved when TableID or Store is empty.
	TableID string
	Store   *prefs.Store

	Logger *slog.Logger

	// RowIdentity, when set, keeps the selection on the same rows across
	// re-derivation. Without it every re-derivation clears the selection.
	RowIdentity selection.Identity

	// OnDerivedView receives every freshly derived view.
	OnDerivedView func(rows []datatable.Row)

	// OnSelectionChange receives the selected rows whenever they change.
	OnSelectionChange func(rows []datatable.Row)
}

// Table is the view state of one table. It is safe for concurrent use;
// callbacks are never invoked while the table's lock is held.
type Table struct {
	model *datatable.ColumnModel
	opts  Options
	log   *slog.Logger

	mu        sync.Mutex
	state     State
	raw       []datatable.Row
	derived   []datatable.Row
	directive datatable.Directive
	filters   datatable.FilterState
	widths    map[string]int
	selected  *selection.Manager
	restored  bool
	lastPass  time.Duration
}

// New returns a table over model with no rows.
func New(model *datatable.ColumnModel, opts Options) *Table {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.TableID != "" {
		logger = logger.With("table", opts.TableID)
	}
	return &Table{
		model:     model,
		opts:      opts,
		log:       logger,
		directive: datatable.Directive{},
		filters:   datatable.FilterState{},
		widths:    map[string]int{},
		selected:  selection.New(0),
	}
}

// Model returns the column model.
func (t *Table) Model() *datatable.ColumnModel {
	return t.model
}

// ID returns the table identity.
func (t *Table) ID() string {
	return t.opts.TableID
}

// pending collects what must happen once the lock is released.
type pending struct {
	view      []datatable.Row
	derived   bool
	selection []datatable.Row
	selChange bool
	save      *prefs.Snapshot
}

func (t *Table) flush(p pending) {
	if p.save != nil {
		t.opts.Store.Save(t.opts.TableID, *p.save)
	}
	if p.derived && t.opts.OnDerivedView != nil {
		t.opts.OnDerivedView(p.view)
	}
	if p.selChange && t.opts.OnSelectionChange != nil {
		t.opts.OnSelectionChange(p.selection)
	}
}

// SetRows replaces the raw rows and recomputes the view.
func (t *Table) SetRows(rows []datatable.Row) {
	t.mu.Lock()
	t.restoreLocked()
	t.raw = append(make([]datatable.Row, 0, len(rows)), rows...)
	p := t.recomputeLocked()
	t.mu.Unlock()
	t.flush(p)
}

// Recompute re-derives the view from the current inputs.
func (t *Table) Recompute() {
	t.mu.Lock()
	t.restoreLocked()
	p := t.recomputeLocked()
	t.mu.Unlock()
	t.flush(p)
}

// ToggleSort applies a header click on key. multi selects the multi-key
// (shift click) behaviour.
func (t *Table) ToggleSort(key string, multi bool) error {
	if err := t.checkSortable(key); err != nil {
		return err
	}
	t.mu.Lock()
	t.restoreLocked()
	t.directive = sorter.Click(t.directive, key, multi)
	p := t.recomputeLocked()
	p.save = t.snapshotLocked()
	t.mu.Unlock()
	t.flush(p)
	return nil
}

// SetDirective replaces the sort directive.
func (t *Table) SetDirective(d datatable.Directive) error {
	if err := t.model.CheckSortable(d); err != nil {
		return err
	}
	t.mu.Lock()
	t.restoreLocked()
	t.directive = d.Clone()
	if t.directive == nil {
		t.directive = datatable.Directive{}
	}
	p := t.recomputeLocked()
	p.save = t.snapshotLocked()
	t.mu.Unlock()
	t.flush(p)
	return nil
}

// SetFilter sets the pattern of a filterable column. An empty pattern
// removes the filter.
func (t *Table) SetFilter(key, pattern string) error {
	if err := t.model.CheckFilterable(key); err != nil {
		return err
	}
	t.mu.Lock()
	t.restoreLocked()
	if pattern == "" {
		delete(t.filters, key)
	} else {
		t.filters[key] = pattern
	}
	p := t.recomputeLocked()
	p.save = t.snapshotLocked()
	t.mu.Unlock()
	t.flush(p)
	return nil
}

// ClearFilters removes every filter.
func (t *Table) ClearFilters() {
	t.mu.Lock()
	t.restoreLocked()
	t.filters = datatable.FilterState{}
	p := t.recomputeLocked()
	p.save = t.snapshotLocked()
	t.mu.Unlock()
	t.flush(p)
}

// SetColumnWidth records the display width of a column. A width of 0
// returns the column to its model width.
func (t *Table) SetColumnWidth(key string, width int) error {
	if _, ok := t.model.Column(key); !ok {
		return fmt.Errorf("%w: %q", datatable.ErrColumnNotFound, key)
	}
	if width < 0 {
		return fmt.Errorf("%w: %d for %q", datatable.ErrInvalidWidth, width, key)
	}
	t.mu.Lock()
	t.restoreLocked()
	if width == 0 {
		delete(t.widths, key)
	} else {
		t.widths[key] = width
	}
	p := pending{save: t.snapshotLocked()}
	t.mu.Unlock()
	t.flush(p)
	return nil
}

// ResetPreferences clears the stored snapshot and the live sort, filter
// and width state.
func (t *Table) ResetPreferences() {
	t.mu.Lock()
	t.restored = true
	t.directive = datatable.Directive{}
	t.filters = datatable.FilterState{}
	t.widths = map[string]int{}
	p := t.recomputeLocked()
	t.mu.Unlock()

	if t.persisting() {
		t.opts.Store.Clear(t.opts.TableID)
		t.log.Info("preferences reset")
	}
	t.flush(p)
}

// View returns the current derived view. The slice is shared with other
// readers and must not be modified.
func (t *Table) View() []datatable.Row {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.derived
}

// Row returns the row at position i of the derived view.
func (t *Table) Row(i int) (datatable.Row, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if i < 0 || i >= len(t.derived) {
		return nil, fmt.Errorf("%w: %d (view has %d rows)", datatable.ErrInvalidRow, i, len(t.derived))
	}
	return t.derived[i], nil
}

// Directive returns a copy of the sort directive.
func (t *Table) Directive() datatable.Directive {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.directive.Clone()
}

// Filters returns a copy of the filter state.
func (t *Table) Filters() datatable.FilterState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.filters.Clone()
}

// ColumnWidths returns the effective width of every column that has one,
// user widths taking precedence over model widths.
func (t *Table) ColumnWidths() map[string]int {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[string]int, t.model.Len())
	for _, c := range t.model.Columns() {
		if c.Width > 0 {
			out[c.Key] = c.Width
		}
	}
	maps.Copy(out, t.widths)
	return out
}

// Len returns the number of rows in the derived view.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.derived)
}

// RawLen returns the number of raw rows.
func (t *Table) RawLen() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.raw)
}

// State returns the recompute state.
func (t *Table) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Status renders a one-line summary for status bars.
func (t *Table) Status() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	name := t.opts.TableID
	if name == "" {
		name = "table"
	}
	var b strings.Builder
	if len(t.derived) != len(t.raw) {
		fmt.Fprintf(&b, "Table %s (%d/%d rows)", name, len(t.derived), len(t.raw))
	} else {
		fmt.Fprintf(&b, "Table %s (%d rows)", name, len(t.raw))
	}
	if t.directive.IsSorted() {
		fmt.Fprintf(&b, " | Sorted: %s", sorter.Describe(t.directive))
	}
	if active := t.filters.Active(); len(active) > 0 {
		fmt.Fprintf(&b, " | Filter: %s", filter.FromState(t.model, active).Description())
	}
	if n := t.selected.Count(); n > 0 {
		fmt.Fprintf(&b, " | %d selected", n)
	}
	return b.String()
}

// SelectAll selects every row of the derived view.
func (t *Table) SelectAll() {
	t.mu.Lock()
	t.selected.SelectAll()
	p := t.selectionChangedLocked()
	t.mu.Unlock()
	t.flush(p)
}

// ClearSelection deselects every row.
func (t *Table) ClearSelection() {
	t.mu.Lock()
	t.selected.Clear()
	p := t.selectionChangedLocked()
	t.mu.Unlock()
	t.flush(p)
}

// ToggleRow flips the selection of position i in the derived view.
func (t *Table) ToggleRow(i int) error {
	t.mu.Lock()
	if err := t.selected.Toggle(i); err != nil {
		t.mu.Unlock()
		return err
	}
	p := t.selectionChangedLocked()
	t.mu.Unlock()
	t.flush(p)
	return nil
}

// SelectRow selects or deselects position i of the derived view. Unlike
// ToggleRow it is idempotent.
func (t *Table) SelectRow(i int, on bool) error {
	t.mu.Lock()
	if t.selected.IsSelected(i) == on {
		err := t.selected.Set(i, on)
		t.mu.Unlock()
		return err
	}
	if err := t.selected.Set(i, on); err != nil {
		t.mu.Unlock()
		return err
	}
	p := t.selectionChangedLocked()
	t.mu.Unlock()
	t.flush(p)
	return nil
}

// AllSelected reports whether every row of a non-empty derived view is
// selected.
func (t *Table) AllSelected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.selected.AllSelected()
}

// IsSelected reports whether position i of the derived view is selected.
func (t *Table) IsSelected(i int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.selected.IsSelected(i)
}

// Selected returns the selected rows in view order.
func (t *Table) Selected() []datatable.Row {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.selected.Resolve(t.derived)
}

// SelectedIndices returns the selected view positions in ascending order.
func (t *Table) SelectedIndices() []int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.selected.Indices()
}

// Export serializes the full derived view.
func (t *Table) Export(format export.Format, filename string) (export.Artifact, error) {
	return export.Build(format, filename, t.model, t.View())
}

// ExportSelection serializes the selected rows of the derived view.
func (t *Table) ExportSelection(format export.Format, filename string) (export.Artifact, error) {
	return export.Build(format, filename, t.model, t.Selected())
}

func (t *Table) checkSortable(key string) error {
	c, ok := t.model.Column(key)
	if !ok {
		return fmt.Errorf("%w: %q", datatable.ErrColumnNotFound, key)
	}
	if !c.Sortable {
		return fmt.Errorf("%w: %q", datatable.ErrColumnNotSortable, key)
	}
	return nil
}

func (t *Table) persisting() bool {
	return t.opts.TableID != "" && t.opts.Store != nil
}

func (t *Table) snapshotLocked() *prefs.Snapshot {
	if !t.persisting() {
		return nil
	}
	return &prefs.Snapshot{
		SortBy:       t.directive.Clone(),
		Filters:      t.filters.Active(),
		ColumnWidths: maps.Clone(t.widths),
	}
}

func (t *Table) selectionChangedLocked() pending {
	return pending{selection: t.selected.Resolve(t.derived), selChange: true}
}

// recomputeLocked runs filter then sort over the raw rows and carries the
// selection over to the new view.
func (t *Table) recomputeLocked() pending {
	t.state = Recomputing
	start := time.Now()

	var ids []string
	hadSelection := t.selected.Count() > 0
	if hadSelection && t.opts.RowIdentity != nil {
		ids = t.selected.Capture(t.derived, t.opts.RowIdentity)
	}

	filtered := filter.Apply(t.raw, t.model, t.filters)
	t.derived = sorter.Apply(filtered, t.model, t.directive)

	if ids != nil {
		t.selected.Restore(t.derived, t.opts.RowIdentity, ids)
	} else {
		t.selected.Reset(len(t.derived))
	}

	t.lastPass = time.Since(start)
	t.state = Idle
	t.log.Debug("view recomputed", "raw", len(t.raw), "view", len(t.derived), "took", t.lastPass)

	p := pending{view: t.derived, derived: true}
	if hadSelection {
		p.selection = t.selected.Resolve(t.derived)
		p.selChange = true
	}
	return p
}

// restoreLocked applies the stored snapshot the first time the table is
// computed. Entries that no longer fit the column model are dropped.
func (t *Table) restoreLocked() {
	if t.restored {
		return
	}
	t.restored = true
	if !t.persisting() {
		return
	}
	snap, ok := t.opts.Store.Load(t.opts.TableID)
	if !ok {
		return
	}

	directive := make(datatable.Directive, 0, len(snap.SortBy))
	for _, k := range snap.SortBy {
		if err := t.checkSortable(k.Key); err != nil {
			t.log.Info("dropping stored sort key", "key", k.Key, "err", err)
			continue
		}
		directive = append(directive, k)
	}

	filters := make(datatable.FilterState, len(snap.Filters))
	for key, pattern := range snap.Filters.Active() {
		if err := t.model.CheckFilterable(key); err != nil {
			t.log.Info("dropping stored filter", "key", key, "err", err)
			continue
		}
		filters[key] = pattern
	}

	widths := make(map[string]int, len(snap.ColumnWidths))
	for key, w := range snap.ColumnWidths {
		if _, ok := t.model.Column(key); !ok || w <= 0 {
			t.log.Info("dropping stored width", "key", key, "width", w)
			continue
		}
		widths[key] = w
	}

	t.directive, t.filters, t.widths = directive, filters, widths
	t.log.Debug("preferences restored", "sort", sorter.Describe(directive), "filters", len(filters), "widths", len(widths))
}
