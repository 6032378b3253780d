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
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
)

// showProgress shows a modal busy indicator and returns the func that
// hides it. The returned func may be called from any goroutine.
func showProgress(w fyne.Window, title string) func() {
	pbi := widget.NewProgressBarInfinite()
	di := dialog.NewCustomWithoutButtons(title, pbi, w)
	di.Resize(fyne.NewSize(300, 100))
	di.Show()
	return func() {
		fyne.Do(func() {
			pbi.Stop()
			di.Hide()
		})
	}
}

// cleanFilename keeps letters, digits, '_' and '-' and turns spaces into
// underscores.
func cleanFilename(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r == ' ':
			b.WriteByte('_')
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "export"
	}
	return b.String()
}
