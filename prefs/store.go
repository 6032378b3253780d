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

// Package prefs persists per-table view preferences: sort directive, column
// filters and column widths.
package prefs

import (
	"encoding/json"
	"errors"
	"log/slog"

	"campusadmin/datatable"
)

// Snapshot is the persisted view state of one table. Selection is never
// part of it. Empty collections are written as empty JSON values and read
// back as nil, so a snapshot holding only nil or non-empty collections
// loads deep-equal to what was saved.
type Snapshot struct {
	SortBy       datatable.Directive   `json:"sortBy"`
	Filters      datatable.FilterState `json:"filters"`
	ColumnWidths map[string]int        `json:"columnWidths"`
}

// IsZero reports whether the snapshot carries no state.
func (s Snapshot) IsZero() bool {
	return len(s.SortBy) == 0 && len(s.Filters.Active()) == 0 && len(s.ColumnWidths) == 0
}

// Store reads and writes snapshots through a KV. It never returns
// persistence errors: failures are logged and loads behave as if nothing
// was stored.
type Store struct {
	kv     KV
	logger *slog.Logger
}

// NewStore returns a store over kv. A nil logger uses slog.Default().
func NewStore(kv KV, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{kv: kv, logger: logger.With("component", "prefs")}
}

// Key returns the storage key of a table.
func Key(tableID string) string {
	return "table_" + tableID
}

// Save writes the snapshot of tableID.
func (s *Store) Save(tableID string, snap Snapshot) {
	if snap.SortBy == nil {
		snap.SortBy = datatable.Directive{}
	}
	if snap.Filters == nil {
		snap.Filters = datatable.FilterState{}
	}
	if snap.ColumnWidths == nil {
		snap.ColumnWidths = map[string]int{}
	}

	data, err := json.Marshal(snap)
	if err != nil {
		s.logger.Warn("encode preferences", "table", tableID, "err", err)
		return
	}
	if err := s.kv.Set(Key(tableID), data); err != nil {
		s.logger.Warn("save preferences", "table", tableID, "key", Key(tableID), "err", err)
		return
	}
	s.logger.Debug("preferences saved", "table", tableID, "bytes", len(data))
}

// Load returns the stored snapshot of tableID. ok is false when nothing is
// stored or the stored payload cannot be read.
func (s *Store) Load(tableID string) (snap Snapshot, ok bool) {
	data, err := s.kv.Get(Key(tableID))
	if errors.Is(err, ErrNotFound) {
		return Snapshot{}, false
	}
	if err != nil {
		s.logger.Warn("load preferences", "table", tableID, "key", Key(tableID), "err", err)
		return Snapshot{}, false
	}
	if err := json.Unmarshal(data, &snap); err != nil {
		s.logger.Warn("discarding unreadable preferences", "table", tableID, "key", Key(tableID), "err", err)
		return Snapshot{}, false
	}
	if err := snap.SortBy.Validate(); err != nil {
		s.logger.Warn("discarding unreadable preferences", "table", tableID, "key", Key(tableID), "err", err)
		return Snapshot{}, false
	}
	if len(snap.SortBy) == 0 {
		snap.SortBy = nil
	}
	if len(snap.Filters) == 0 {
		snap.Filters = nil
	}
	if len(snap.ColumnWidths) == 0 {
		snap.ColumnWidths = nil
	}
	return snap, true
}

// Clear removes the stored snapshot of tableID.
func (s *Store) Clear(tableID string) {
	if err := s.kv.Delete(Key(tableID)); err != nil {
		s.logger.Warn("clear preferences", "table", tableID, "key", Key(tableID), "err", err)
	}
}
