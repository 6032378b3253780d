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
	"fyne.io/fyne/v2"

	"campusadmin/prefs"
)

// FyneKV stores view preferences in the application's fyne preferences.
// Fyne cannot tell an empty string from a missing one, so empty values
// read back as prefs.ErrNotFound.
type FyneKV struct {
	p fyne.Preferences
}

var _ prefs.KV = (*FyneKV)(nil)

func NewFyneKV(p fyne.Preferences) *FyneKV {
	return &FyneKV{p: p}
}

func (k *FyneKV) Get(key string) ([]byte, error) {
	v := k.p.String(key)
	if v == "" {
		return nil, prefs.ErrNotFound
	}
	return []byte(v), nil
}

func (k *FyneKV) Set(key string, value []byte) error {
	k.p.SetString(key, string(value))
	return nil
}

func (k *FyneKV) Delete(key string) error {
	k.p.RemoveValue(key)
	return nil
}
