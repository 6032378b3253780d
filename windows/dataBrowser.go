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

package windows

import (
	"log/slog"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"campusadmin/datatable"
	"campusadmin/export"
	"campusadmin/internal/selection"
	"campusadmin/prefs"
	"campusadmin/view"
)

const (
	defaultColumnWidth = 150
	minColumnWidth     = 60
	widthStep          = 40
)

// BrowserConfig describes one table tab.
type BrowserConfig struct {
	TableID     string
	Model       *datatable.ColumnModel
	Rows        []datatable.Row
	Store       *prefs.Store
	Logger      *slog.Logger
	RowIdentity selection.Identity

	// ExportDir is where the save dialog starts.
	ExportDir     string
	DefaultFormat export.Format

	// OnStatus receives the status line after every change.
	OnStatus func(string)
}

// TableBrowser shows one view.Table: a header row that sorts, a filter
// entry per filterable column, and row selection.
type TableBrowser struct {
	cfg    BrowserConfig
	window fyne.Window
	table  *view.Table
	log    *slog.Logger

	grid    *widget.Table
	status  *widget.Label
	filters map[string]*widget.Entry
	content fyne.CanvasObject
}

// NewTableBrowser builds the browser and loads cfg.Rows. Stored
// preferences are applied before the first render.
func NewTableBrowser(w fyne.Window, cfg BrowserConfig) *TableBrowser {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	b := &TableBrowser{
		cfg:     cfg,
		window:  w,
		log:     logger.With("component", "browser", "table", cfg.TableID),
		filters: make(map[string]*widget.Entry),
	}
	b.table = view.New(cfg.Model, view.Options{
		TableID:           cfg.TableID,
		Store:             cfg.Store,
		Logger:            logger,
		RowIdentity:       cfg.RowIdentity,
		OnDerivedView:     func([]datatable.Row) { b.changed() },
		OnSelectionChange: func([]datatable.Row) { b.changed() },
	})
	b.table.SetRows(cfg.Rows)
	b.content = b.build()
	b.sync()
	return b
}

// Table returns the view state behind the browser.
func (b *TableBrowser) Table() *view.Table {
	return b.table
}

// Content returns the browser's canvas object.
func (b *TableBrowser) Content() fyne.CanvasObject {
	return b.content
}

func (b *TableBrowser) build() fyne.CanvasObject {
	model := b.table.Model()

	b.grid = widget.NewTableWithHeaders(
		func() (int, int) { return b.table.Len(), model.Len() },
		func() fyne.CanvasObject { return widget.NewLabel("template") },
		func(id widget.TableCellID, o fyne.CanvasObject) {
			label := o.(*widget.Label)
			label.SetText(b.cellText(id.Row, id.Col))
			label.TextStyle = fyne.TextStyle{Bold: b.table.IsSelected(id.Row)}
			label.Refresh()
		},
	)
	b.grid.CreateHeader = func() fyne.CanvasObject {
		return newHeaderCell()
	}
	b.grid.UpdateHeader = func(id widget.TableCellID, o fyne.CanvasObject) {
		cell := o.(*headerCell)
		if id.Col < 0 {
			row := id.Row
			cell.SetText(strconv.Itoa(row + 1))
			cell.onTap = func() { b.toggleRow(row) }
			cell.onMenu = nil
			return
		}
		col, err := model.At(id.Col)
		if err != nil {
			return
		}
		cell.SetText(headerText(col, b.table.Directive()))
		cell.onTap = func() { b.headerTapped(col.Key, shiftHeld()) }
		cell.onMenu = func(e *fyne.PointEvent) { b.showColumnMenu(col, e) }
	}
	b.grid.OnSelected = func(id widget.TableCellID) {
		b.toggleRow(id.Row)
		b.grid.Unselect(id)
	}
	b.applyWidths()

	filterBar := container.NewHBox()
	current := b.table.Filters()
	for _, col := range model.Columns() {
		if !col.Filterable {
			continue
		}
		key := col.Key
		entry := widget.NewEntry()
		entry.SetPlaceHolder("Filter " + col.Header())
		entry.SetText(current[key])
		entry.OnChanged = func(s string) { b.setFilter(key, s) }
		b.filters[key] = entry
		filterBar.Add(container.NewGridWrap(fyne.NewSize(defaultColumnWidth, entry.MinSize().Height), entry))
	}

	toolbar := widget.NewToolbar(
		widget.NewToolbarAction(theme.CheckButtonCheckedIcon(), b.toggleAll),
		widget.NewToolbarAction(theme.CheckButtonIcon(), func() { b.table.ClearSelection() }),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.ContentClearIcon(), b.clearFilters),
		widget.NewToolbarAction(theme.ViewRefreshIcon(), b.resetView),
		widget.NewToolbarSpacer(),
		widget.NewToolbarAction(theme.DocumentSaveIcon(), func() { b.ShowExport(false) }),
		widget.NewToolbarAction(theme.DownloadIcon(), func() { b.ShowExport(true) }),
	)

	b.status = widget.NewLabel("")
	b.status.TextStyle = fyne.TextStyle{Italic: true}

	top := container.NewVBox(toolbar, container.NewHScroll(filterBar))
	return container.NewBorder(top, b.status, nil, nil, b.grid)
}

// cellText formats one cell of the derived view.
func (b *TableBrowser) cellText(row, col int) string {
	r, err := b.table.Row(row)
	if err != nil {
		return ""
	}
	c, err := b.table.Model().At(col)
	if err != nil {
		return ""
	}
	return c.ValueOf(r).Formatted
}

// headerText is the column title with its sort arrow. Keys after the
// first carry their position in the directive.
func headerText(col datatable.Column, d datatable.Directive) string {
	i := d.Index(col.Key)
	if i < 0 {
		return col.Header()
	}
	text := col.Header() + " " + d[i].Direction.Arrow()
	if len(d) > 1 {
		text += strconv.Itoa(i + 1)
	}
	return text
}

func shiftHeld() bool {
	app := fyne.CurrentApp()
	if app == nil {
		return false
	}
	if drv, ok := app.Driver().(desktop.Driver); ok {
		return drv.CurrentKeyModifiers()&fyne.KeyModifierShift != 0
	}
	return false
}

func (b *TableBrowser) headerTapped(key string, multi bool) {
	if err := b.table.ToggleSort(key, multi); err != nil {
		b.showError(err)
	}
}

func (b *TableBrowser) toggleRow(row int) {
	if err := b.table.ToggleRow(row); err != nil {
		b.log.Debug("ignoring row tap", "row", row, "error", err)
	}
}

// toggleAll selects every row, or clears the selection when all rows are
// already selected.
func (b *TableBrowser) toggleAll() {
	if b.table.AllSelected() {
		b.table.ClearSelection()
		return
	}
	b.table.SelectAll()
}

func (b *TableBrowser) setFilter(key, pattern string) {
	if err := b.table.SetFilter(key, pattern); err != nil {
		b.showError(err)
	}
}

func (b *TableBrowser) clearFilters() {
	b.table.ClearFilters()
	b.syncFilterEntries()
}

func (b *TableBrowser) resetView() {
	b.table.ResetPreferences()
	b.syncFilterEntries()
	b.applyWidths()
}

// syncFilterEntries copies the table's filters into the entries without
// firing their change handlers.
func (b *TableBrowser) syncFilterEntries() {
	current := b.table.Filters()
	for key, entry := range b.filters {
		handler := entry.OnChanged
		entry.OnChanged = nil
		entry.SetText(current[key])
		entry.OnChanged = handler
	}
}

// setWidth stores a column width and resizes the grid. 0 restores the
// model width.
func (b *TableBrowser) setWidth(key string, width int) {
	if err := b.table.SetColumnWidth(key, width); err != nil {
		b.showError(err)
		return
	}
	b.applyWidths()
}

func (b *TableBrowser) widthOf(key string) int {
	if w, ok := b.table.ColumnWidths()[key]; ok {
		return w
	}
	return defaultColumnWidth
}

func (b *TableBrowser) applyWidths() {
	if b.grid == nil {
		return
	}
	widths := b.table.ColumnWidths()
	for i, col := range b.table.Model().Columns() {
		w, ok := widths[col.Key]
		if !ok {
			w = defaultColumnWidth
		}
		b.grid.SetColumnWidth(i, float32(w))
	}
}

func (b *TableBrowser) showColumnMenu(col datatable.Column, e *fyne.PointEvent) {
	if b.window == nil {
		return
	}
	key := col.Key
	items := []*fyne.MenuItem{
		fyne.NewMenuItem("Wider", func() { b.setWidth(key, b.widthOf(key)+widthStep) }),
		fyne.NewMenuItem("Narrower", func() { b.setWidth(key, max(minColumnWidth, b.widthOf(key)-widthStep)) }),
		fyne.NewMenuItem("Reset width", func() { b.setWidth(key, 0) }),
	}
	if col.Sortable {
		items = append(items, fyne.NewMenuItemSeparator(),
			fyne.NewMenuItem("Add to sort", func() { b.headerTapped(key, true) }))
	}
	if entry, ok := b.filters[key]; ok {
		items = append(items, fyne.NewMenuItem("Clear filter", func() { entry.SetText("") }))
	}
	widget.ShowPopUpMenuAtPosition(fyne.NewMenu("", items...), b.window.Canvas(), e.AbsolutePosition)
}

// changed runs for every derived view and selection change. It may be
// called from a loader goroutine.
func (b *TableBrowser) changed() {
	if b.status == nil {
		return
	}
	fyne.Do(b.sync)
}

// sync redraws the grid and publishes the status line.
func (b *TableBrowser) sync() {
	b.grid.Refresh()
	status := b.table.Status()
	b.status.SetText(status)
	if b.cfg.OnStatus != nil {
		b.cfg.OnStatus(status)
	}
}

func (b *TableBrowser) showError(err error) {
	b.log.Warn("table action failed", "error", err)
	if b.window != nil {
		dialog.ShowError(err, b.window)
	}
}

// headerCell is a header label that reacts to primary and secondary taps.
type headerCell struct {
	widget.Label
	onTap  func()
	onMenu func(*fyne.PointEvent)
}

func newHeaderCell() *headerCell {
	h := &headerCell{}
	h.TextStyle = fyne.TextStyle{Bold: true}
	h.Truncation = fyne.TextTruncateEllipsis
	h.ExtendBaseWidget(h)
	return h
}

func (h *headerCell) Tapped(*fyne.PointEvent) {
	if h.onTap != nil {
		h.onTap()
	}
}

func (h *headerCell) TappedSecondary(e *fyne.PointEvent) {
	if h.onMenu != nil {
		h.onMenu(e)
	}
}
