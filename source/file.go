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
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"campusadmin/datatable"
)

// FileType represents the type of data file
type FileType int

const (
	FileTypeUnknown FileType = iota
	FileTypeCSV
	FileTypeParquet
	FileTypeJSON
	FileTypeDeltaSharingProfile
)

// DetectFileType determines the type of file based on extension and content
func DetectFileType(filePath string, content []byte) FileType {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".csv", ".tsv":
		return FileTypeCSV
	case ".parquet":
		return FileTypeParquet
	case ".json", ".share", ".txt":
		if IsDeltaSharingProfile(content) {
			return FileTypeDeltaSharingProfile
		}
		return FileTypeJSON
	default:
		return FileTypeUnknown
	}
}

// IsDeltaSharingProfile checks if the content looks like a Delta Sharing profile
func IsDeltaSharingProfile(content []byte) bool {
	var profile map[string]any
	if err := json.Unmarshal(content, &profile); err != nil {
		return false
	}
	_, hasVersion := profile["shareCredentialsVersion"]
	_, hasEndpoint := profile["endpoint"]
	_, hasBearerToken := profile["bearerToken"]
	return hasVersion && hasEndpoint && hasBearerToken
}

// LoadFile loads a CSV, Parquet or JSON file. The dataset is named after
// the file.
func LoadFile(filePath string) (*Dataset, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filePath, err)
	}
	name := strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))

	switch DetectFileType(filePath, content) {
	case FileTypeCSV:
		return ReadCSV(name, bytes.NewReader(content))
	case FileTypeParquet:
		return ReadParquet(name, bytes.NewReader(content))
	case FileTypeJSON:
		return ReadJSON(name, content)
	case FileTypeDeltaSharingProfile:
		return nil, fmt.Errorf("%w: %s is a Delta Sharing profile, open it as a share", datatable.ErrUnsupportedFormat, filepath.Base(filePath))
	default:
		return nil, fmt.Errorf("%w: %s", datatable.ErrUnsupportedFormat, filepath.Base(filePath))
	}
}

// DetectSeparator picks the most frequent of , ; tab and | in the first
// line, defaulting to a comma.
func DetectSeparator(firstLine string) rune {
	detected, maxCount := ',', 0
	for _, sep := range []rune{',', ';', '\t', '|'} {
		if n := strings.Count(firstLine, string(sep)); n > maxCount {
			detected, maxCount = sep, n
		}
	}
	return detected
}

// SeparatorName returns a human-readable name for the separator
func SeparatorName(sep rune) string {
	switch sep {
	case ',':
		return "comma"
	case ';':
		return "semicolon"
	case '\t':
		return "tab"
	case '|':
		return "pipe"
	default:
		return string(sep)
	}
}

// ReadCSV reads a CSV document with a header line. The separator is
// detected from the header.
func ReadCSV(name string, r io.Reader) (*Dataset, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(4096)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	firstLine, _, _ := strings.Cut(string(head), "\n")
	sep := DetectSeparator(firstLine)

	reader := csv.NewReader(br)
	reader.Comma = sep
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: CSV has no header", datatable.ErrEmptyData)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}

	var rows []datatable.Row
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row %d: %w", len(rows)+1, err)
		}
		row := make(datatable.Row, len(header))
		for i, key := range header {
			if i < len(record) {
				row[key] = strings.TrimSpace(record[i])
			}
		}
		rows = append(rows, row)
	}

	cols := make([]datatable.Column, len(header))
	for i, key := range header {
		cols[i] = datatable.Column{Key: key, Type: inferType(rows, key)}
	}
	d := NewDataset(name, cols, rows)
	d.metadata["separator"] = SeparatorName(sep)
	return d, nil
}

// ReadJSON reads an array of objects, or a single object as one row.
func ReadJSON(name string, content []byte) (*Dataset, error) {
	var data []map[string]any
	if err := json.Unmarshal(content, &data); err != nil {
		var single map[string]any
		if err := json.Unmarshal(content, &single); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
		data = []map[string]any{single}
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: JSON has no records", datatable.ErrEmptyData)
	}

	rows := make([]datatable.Row, len(data))
	for i, m := range data {
		rows[i] = datatable.Row(m)
	}
	return NewDataset(name, nil, rows), nil
}

// ReadParquet reads a Parquet file through Arrow.
func ReadParquet(name string, r parquet.ReaderAtSeeker) (*Dataset, error) {
	pf, err := file.NewParquetReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create parquet reader: %w", err)
	}
	defer pf.Close()

	mem := memory.NewGoAllocator()
	arrowReader, err := pqarrow.NewFileReader(pf, pqarrow.ArrowReadProperties{}, mem)
	if err != nil {
		return nil, fmt.Errorf("failed to create arrow reader: %w", err)
	}

	table, err := arrowReader.ReadTable(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to read parquet data: %w", err)
	}
	defer table.Release()

	return FromArrow(name, table)
}
