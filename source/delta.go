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

package source

import (
	"context"
	"fmt"
	"strings"
	"time"

	delta_sharing "github.com/magpierre/go_delta_sharing_client"
)

// DefaultTimeout bounds each Delta Sharing API call when none is configured.
const DefaultTimeout = 60 * time.Second

// Share is a connection to a Delta Sharing server described by a profile.
type Share struct {
	client  delta_sharing.SharingClientV2
	timeout time.Duration
}

// OpenShare creates a client from the JSON content of a profile file.
func OpenShare(profile string, timeout time.Duration) (*Share, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	client, err := delta_sharing.NewSharingClientV2FromString(profile)
	if err != nil {
		return nil, fmt.Errorf("failed to create Delta Sharing client: %w", err)
	}
	return &Share{client: client, timeout: timeout}, nil
}

// Shares lists the names of the shares visible through the profile,
// including shares without tables.
func (s *Share) Shares(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	shares, _, err := s.client.ListShares(ctx, 0, "")
	if err != nil {
		return nil, fmt.Errorf("failed to list shares: %w", err)
	}
	names := make([]string, 0, len(shares))
	for _, sh := range shares {
		names = append(names, sh.Name)
	}
	return names, nil
}

// Tables lists every table visible through the profile.
func (s *Share) Tables(ctx context.Context) ([]delta_sharing.Table, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	tables, _, err := s.client.ListAllTables_V2(ctx, 0, "", 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list all tables: %w", err)
	}
	return tables, nil
}

// FindTable resolves a "share.schema.table" name.
func (s *Share) FindTable(ctx context.Context, qualified string) (delta_sharing.Table, error) {
	parts := strings.Split(qualified, ".")
	if len(parts) != 3 {
		return delta_sharing.Table{}, fmt.Errorf("table name %q is not share.schema.table", qualified)
	}
	tables, err := s.Tables(ctx)
	if err != nil {
		return delta_sharing.Table{}, err
	}
	for _, t := range tables {
		if t.Share == parts[0] && t.Schema == parts[1] && t.Name == parts[2] {
			return t, nil
		}
	}
	return delta_sharing.Table{}, fmt.Errorf("table %q not found in share", qualified)
}

// Load fetches one data file of table as rows. An empty fileID loads the
// first file the server lists.
func (s *Share) Load(ctx context.Context, table delta_sharing.Table, fileID string) (*Dataset, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.client.ListFilesInTable(ctx, table)
	if err != nil {
		return nil, fmt.Errorf("failed to list files of %s: %w", table.Name, err)
	}
	if len(resp.AddFiles) == 0 {
		return nil, fmt.Errorf("table %s has no data files", table.Name)
	}
	if fileID == "" {
		fileID = resp.AddFiles[0].Id
	}

	found := false
	for _, f := range resp.AddFiles {
		if f.Id == fileID {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("file %s is not part of table %s", fileID, table.Name)
	}

	arrowTable, err := delta_sharing.LoadArrowTable(ctx, s.client, table, fileID)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", table.Name, err)
	}
	defer arrowTable.Release()

	d, err := FromArrow(table.Name, arrowTable)
	if err != nil {
		return nil, err
	}
	d.metadata["share"] = table.Share
	d.metadata["schema"] = table.Schema
	d.metadata["file"] = fileID
	return d, nil
}

// LoadDeltaSharing opens profile and loads one file of the named
// "share.schema.table".
func LoadDeltaSharing(ctx context.Context, profile, qualified, fileID string, timeout time.Duration) (*Dataset, error) {
	share, err := OpenShare(profile, timeout)
	if err != nil {
		return nil, err
	}
	table, err := share.FindTable(ctx, qualified)
	if err != nil {
		return nil, err
	}
	return share.Load(ctx, table, fileID)
}
