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

// Package windows is the desktop host of the campus admin console: a main
// window with a Delta Sharing navigation tree and one table browser tab per
// opened table.
package windows

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	delta_sharing "github.com/magpierre/go_delta_sharing_client"

	"campusadmin/config"
	"campusadmin/prefs"
	"campusadmin/source"
)

// AppID identifies the application to fyne, which keys its preferences
// storage by it.
const AppID = "campusadmin"

type MainWindow struct {
	a     fyne.App
	w     fyne.Window
	cfg   *config.Config
	log   *slog.Logger
	store *prefs.Store

	tree       *NavigationTree
	treeWidget *widget.Tree
	left       fyne.CanvasObject
	share      *source.Share

	docTabs   *container.DocTabs
	browsers  map[*container.TabItem]*TableBrowser
	statusBar *widget.Label
}

// NewMainWindow builds the main window of a. View preferences are kept in
// a's preferences.
func NewMainWindow(a fyne.App, cfg *config.Config, logger *slog.Logger) *MainWindow {
	if logger == nil {
		logger = slog.Default()
	}
	m := &MainWindow{
		a:        a,
		cfg:      cfg,
		log:      logger,
		store:    prefs.NewStore(NewFyneKV(a.Preferences()), logger),
		tree:     NewNavigationTree(),
		browsers: make(map[*container.TabItem]*TableBrowser),
	}
	a.Settings().SetTheme(ConsoleTheme{})
	m.w = a.NewWindow("Campus Admin")
	m.w.Resize(fyne.NewSize(1000, 700))

	m.statusBar = widget.NewLabel("Ready")
	m.statusBar.TextStyle = fyne.TextStyle{Italic: true}

	m.treeWidget = m.tree.Widget(m.openSharedTable)
	m.left = container.NewGridWrap(fyne.NewSize(220, 700), widget.NewCard("", "Shares", m.treeWidget))
	m.left.Hide()

	m.docTabs = container.NewDocTabs()
	m.docTabs.OnSelected = func(ti *container.TabItem) {
		if b := m.browsers[ti]; b != nil {
			m.SetStatus(b.Table().Status())
		}
	}
	m.docTabs.OnClosed = func(ti *container.TabItem) {
		delete(m.browsers, ti)
		if len(m.docTabs.Items) == 0 {
			m.SetStatus("Ready")
		}
	}

	toolbar := widget.NewToolbar(
		widget.NewToolbarAction(theme.MenuIcon(), func() {
			if m.left.Visible() {
				m.left.Hide()
			} else {
				m.left.Show()
			}
		}),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.FolderOpenIcon(), m.OpenFile),
		widget.NewToolbarAction(theme.DocumentSaveIcon(), func() {
			if b := m.Current(); b != nil {
				b.ShowExport(false)
			}
		}),
		widget.NewToolbarSpacer(),
	)

	m.w.SetContent(container.NewBorder(toolbar, container.NewHBox(m.statusBar), m.left, nil, m.docTabs))
	return m
}

// Window returns the fyne window.
func (m *MainWindow) Window() fyne.Window {
	return m.w
}

func (m *MainWindow) ShowAndRun() {
	m.w.ShowAndRun()
}

// SetStatus updates the status bar message
func (m *MainWindow) SetStatus(message string) {
	if m.statusBar != nil {
		m.statusBar.SetText(message)
	}
}

// Current returns the browser of the selected tab, or nil.
func (m *MainWindow) Current() *TableBrowser {
	if ti := m.docTabs.Selected(); ti != nil {
		return m.browsers[ti]
	}
	return nil
}

// Open loads a data file or a Delta Sharing profile.
func (m *MainWindow) Open(path string) {
	m.handleDataFileLoad(path)
}

// OpenFile asks for a file and opens it.
func (m *MainWindow) OpenFile() {
	dialog.ShowFileOpen(func(r fyne.URIReadCloser, err error) {
		if err != nil {
			m.showError(err)
			return
		}
		if r == nil {
			return
		}
		path := r.URI().Path()
		r.Close()
		m.Open(path)
	}, m.w)
}

// AddTable opens t in a new tab, or replaces the tab already showing the
// same table.
func (m *MainWindow) AddTable(t loadedTable) *TableBrowser {
	b := NewTableBrowser(m.w, BrowserConfig{
		TableID:       t.id,
		Model:         t.model,
		Rows:          t.rows,
		Store:         m.store,
		Logger:        m.log,
		ExportDir:     m.cfg.ExportDir,
		DefaultFormat: m.cfg.ExportFormat,
		OnStatus:      m.SetStatus,
	})

	for ti, old := range m.browsers {
		if old.Table().ID() == t.id {
			ti.Content = b.Content()
			m.browsers[ti] = b
			m.docTabs.Select(ti)
			m.docTabs.Refresh()
			m.SetStatus(b.Table().Status())
			return b
		}
	}

	ti := container.NewTabItem(t.id, b.Content())
	m.browsers[ti] = b
	m.docTabs.Append(ti)
	m.docTabs.Select(ti)
	m.SetStatus(b.Table().Status())
	return b
}

// OpenProfileFile reads a Delta Sharing profile and opens its shares.
func (m *MainWindow) OpenProfileFile(path string) {
	content, err := os.ReadFile(path)
	if err != nil {
		m.showError(fmt.Errorf("failed to read profile: %w", err))
		return
	}
	m.OpenShare(string(content))
}

// OpenShare connects with profile and fills the navigation tree.
func (m *MainWindow) OpenShare(profile string) {
	m.SetStatus("Loading profile...")
	done := showProgress(m.w, "Loading shares...")
	go func() {
		defer done()
		share, err := source.OpenShare(profile, m.cfg.DeltaSharingTimeout)
		if err != nil {
			m.fail("Error connecting to Delta Sharing", err)
			return
		}
		ctx := context.Background()
		shares, err := share.Shares(ctx)
		if err != nil {
			m.fail("Error listing shares", err)
			return
		}
		tables, err := share.Tables(ctx)
		if err != nil {
			m.fail("Error listing tables", err)
			return
		}
		m.log.Info("profile loaded", "shares", len(shares), "tables", len(tables))
		fyne.Do(func() {
			m.share = share
			m.tree.Load(shares, tables)
			m.treeWidget.Refresh()
			m.left.Show()
			m.SetStatus(fmt.Sprintf("Profile loaded: %d shares, %d tables", len(shares), len(tables)))
		})
	}()
}

func (m *MainWindow) openSharedTable(table delta_sharing.Table) {
	share := m.share
	if share == nil {
		return
	}
	id := fmt.Sprintf("%s.%s.%s", table.Share, table.Schema, table.Name)
	m.SetStatus("Loading table data: " + id)
	done := showProgress(m.w, fmt.Sprintf("Loading %s...", table.Name))
	go func() {
		defer done()
		dataset, err := share.Load(context.Background(), table, "")
		if err != nil {
			m.fail("Error loading "+id, err)
			return
		}
		model, err := dataset.Model()
		if err != nil {
			m.fail("Error loading "+id, err)
			return
		}
		fyne.Do(func() {
			m.AddTable(loadedTable{id: id, model: model, rows: dataset.Rows()})
		})
	}()
}

// fail reports err from a worker goroutine.
func (m *MainWindow) fail(status string, err error) {
	m.log.Error(status, "error", err)
	fyne.Do(func() {
		m.SetStatus(status)
		m.showError(err)
	})
}

func (m *MainWindow) showError(err error) {
	dialog.ShowError(err, m.w)
}
