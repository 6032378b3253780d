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

// Package export serializes a materialized row set into downloadable
// artifacts. Columns always appear in column model order.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"

	"campusadmin/datatable"
)

// Artifact is a serialized export ready to be saved or downloaded.
type Artifact struct {
	Filename string
	MIMEType string
	Data     []byte
}

// Build serializes rows in format. An empty filename uses the format's
// default name. Failures wrap datatable.ErrExportFailed.
func Build(format Format, filename string, model *datatable.ColumnModel, rows []datatable.Row) (Artifact, error) {
	var (
		data []byte
		err  error
	)
	switch format {
	case FormatCSV:
		data, err = ToCSV(model, rows)
	case FormatSpreadsheet:
		data, err = ToSpreadsheet(model, rows)
	case FormatParquet:
		data, err = ToParquet(model, rows)
	case FormatJSON:
		data, err = ToJSON(model, rows)
	default:
		err = fmt.Errorf("%w: %s", datatable.ErrUnsupportedFormat, format)
	}
	if err != nil {
		return Artifact{}, fmt.Errorf("%w: %s: %w", datatable.ErrExportFailed, format, err)
	}

	if filename == "" {
		filename = format.DefaultFilename()
	}
	return Artifact{Filename: filename, MIMEType: format.MIMEType(), Data: data}, nil
}

// ToCSV writes a header row of column titles followed by one line per row.
func ToCSV(model *datatable.ColumnModel, rows []datatable.Row) ([]byte, error) {
	cols := model.Columns()
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := make([]string, len(cols))
	for i, c := range cols {
		headers[i] = c.Header()
	}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}

	record := make([]string, len(cols))
	for _, r := range rows {
		for i, c := range cols {
			record[i] = c.ValueOf(r).Formatted
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush CSV: %w", err)
	}
	return buf.Bytes(), nil
}

// ToJSON writes an indented array of objects keyed by column key. Values
// keep their type; dates and timestamps are written as formatted text.
func ToJSON(model *datatable.ColumnModel, rows []datatable.Row) ([]byte, error) {
	cols := model.Columns()
	records := make([]map[string]any, 0, len(rows))
	for _, r := range rows {
		record := make(map[string]any, len(cols))
		for _, c := range cols {
			record[c.Key] = typedValue(c.ValueOf(r))
		}
		records = append(records, record)
	}

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(records); err != nil {
		return nil, fmt.Errorf("failed to encode JSON: %w", err)
	}
	return buf.Bytes(), nil
}

// typedValue returns the value written to typed formats.
func typedValue(v datatable.Value) any {
	if v.IsNull {
		return nil
	}
	switch v.Type {
	case datatable.TypeInt, datatable.TypeFloat, datatable.TypeBool:
		return v.Raw
	default:
		return v.Formatted
	}
}
