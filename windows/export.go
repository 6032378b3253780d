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
	"fmt"
	"io"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"campusadmin/export"
)

// ShowExport asks for a format and a destination and writes the current
// view, or only its selected rows.
func (b *TableBrowser) ShowExport(selectionOnly bool) {
	if b.window == nil {
		return
	}
	labels := make([]string, len(export.Formats))
	for i, f := range export.Formats {
		labels[i] = f.Label()
	}
	format := b.cfg.DefaultFormat
	pick := widget.NewSelect(labels, func(label string) {
		for _, f := range export.Formats {
			if f.Label() == label {
				format = f
			}
		}
	})
	pick.SetSelected(format.Label())

	title := "Export view"
	if selectionOnly {
		title = fmt.Sprintf("Export %d selected rows", len(b.table.SelectedIndices()))
	}
	dialog.ShowCustomConfirm(title, "Save…", "Cancel", pick, func(ok bool) {
		if ok {
			b.saveAs(format, selectionOnly)
		}
	}, b.window)
}

// buildArtifact renders the view, or its selection, in format.
func (b *TableBrowser) buildArtifact(format export.Format, selectionOnly bool) (export.Artifact, error) {
	filename := cleanFilename(b.cfg.TableID) + format.Extension()
	if selectionOnly {
		return b.table.ExportSelection(format, filename)
	}
	return b.table.Export(format, filename)
}

func (b *TableBrowser) saveAs(format export.Format, selectionOnly bool) {
	artifact, err := b.buildArtifact(format, selectionOnly)
	if err != nil {
		b.showError(err)
		return
	}

	save := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			b.showError(err)
			return
		}
		if writer == nil {
			return
		}
		defer writer.Close()

		if err := writeArtifact(writer, artifact); err != nil {
			b.showError(err)
			return
		}
		b.log.Info("exported", "format", format, "path", writer.URI().Path(), "bytes", len(artifact.Data))
		dialog.ShowInformation("Export Successful",
			fmt.Sprintf("Data exported successfully to:\n%s", writer.URI().Path()), b.window)
	}, b.window)
	save.SetFileName(artifact.Filename)
	if b.cfg.ExportDir != "" {
		if dir, err := storage.ListerForURI(storage.NewFileURI(b.cfg.ExportDir)); err == nil {
			save.SetLocation(dir)
		}
	}
	save.Show()
}

func writeArtifact(w io.Writer, a export.Artifact) error {
	n, err := w.Write(a.Data)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", a.Filename, err)
	}
	if n != len(a.Data) {
		return fmt.Errorf("failed to write %s: %w", a.Filename, io.ErrShortWrite)
	}
	return nil
}
