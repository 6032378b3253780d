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
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"fyne.io/fyne/v2"

	"campusadmin/datatable"
	"campusadmin/script"
	"campusadmin/source"
)

// loadedTable is a dataset ready to be shown in a browser tab.
type loadedTable struct {
	id    string
	model *datatable.ColumnModel
	rows  []datatable.Row
}

// loadTableFile reads a CSV, Parquet or JSON file. A sibling "<name>.toml"
// table definition, when present, supplies the column model and the table
// identity.
func loadTableFile(path string) (loadedTable, error) {
	dataset, err := source.LoadFile(path)
	if err != nil {
		return loadedTable{}, err
	}

	schemaPath := strings.TrimSuffix(path, filepath.Ext(path)) + ".toml"
	schema, err := datatable.LoadSchema(schemaPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		model, err := dataset.Model()
		if err != nil {
			return loadedTable{}, err
		}
		return loadedTable{id: dataset.Name(), model: model, rows: dataset.Rows()}, nil
	case err != nil:
		return loadedTable{}, fmt.Errorf("table definition %s: %w", filepath.Base(schemaPath), err)
	}

	model, err := dataset.ApplySchema(schema, script.Compiler)
	if err != nil {
		return loadedTable{}, fmt.Errorf("table definition %s: %w", filepath.Base(schemaPath), err)
	}
	id := schema.Table
	if id == "" {
		id = dataset.Name()
	}
	return loadedTable{id: id, model: model, rows: dataset.Rows()}, nil
}

// handleDataFileLoad opens path off the UI goroutine. Delta Sharing
// profiles open the share tree; data files open a browser tab.
func (m *MainWindow) handleDataFileLoad(path string) {
	content, err := os.ReadFile(path)
	if err != nil {
		m.showError(err)
		return
	}
	if source.DetectFileType(path, content) == source.FileTypeDeltaSharingProfile {
		m.OpenShare(string(content))
		return
	}

	m.SetStatus("Loading " + filepath.Base(path) + "...")
	done := showProgress(m.w, fmt.Sprintf("Loading %s...", filepath.Base(path)))
	go func() {
		defer done()
		t, err := loadTableFile(path)
		if err != nil {
			m.log.Error("failed to load file", "path", path, "error", err)
			fyne.Do(func() {
				m.SetStatus("Error loading file: " + err.Error())
				m.showError(err)
			})
			return
		}
		m.log.Info("loaded file", "path", path, "table", t.id, "rows", len(t.rows))
		fyne.Do(func() { m.AddTable(t) })
	}()
}
