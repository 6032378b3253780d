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

package export

import (
	"fmt"
	"path/filepath"
	"strings"

	"campusadmin/datatable"
)

// Format represents the supported export formats
type Format int

const (
	FormatCSV Format = iota
	FormatSpreadsheet
	FormatParquet
	FormatJSON
)

// Formats lists every format in menu order.
var Formats = []Format{FormatCSV, FormatSpreadsheet, FormatParquet, FormatJSON}

func (f Format) String() string {
	switch f {
	case FormatCSV:
		return "csv"
	case FormatSpreadsheet:
		return "xlsx"
	case FormatParquet:
		return "parquet"
	case FormatJSON:
		return "json"
	default:
		return fmt.Sprintf("format(%d)", int(f))
	}
}

// Label is the name shown in export menus.
func (f Format) Label() string {
	switch f {
	case FormatCSV:
		return "CSV"
	case FormatSpreadsheet:
		return "Excel workbook"
	case FormatParquet:
		return "Parquet"
	case FormatJSON:
		return "JSON"
	default:
		return f.String()
	}
}

// Extension returns the file extension including the dot.
func (f Format) Extension() string {
	return "." + f.String()
}

// MIMEType returns the content type of artifacts in this format.
func (f Format) MIMEType() string {
	switch f {
	case FormatCSV:
		return "text/csv"
	case FormatSpreadsheet:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatParquet:
		return "application/vnd.apache.parquet"
	case FormatJSON:
		return "application/json"
	default:
		return "application/octet-stream"
	}
}

// DefaultFilename is used when the caller names no file.
func (f Format) DefaultFilename() string {
	return "export" + f.Extension()
}

// ParseFormat accepts a format name or a file extension with or without
// the leading dot.
func ParseFormat(s string) (Format, error) {
	switch strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), ".") {
	case "csv":
		return FormatCSV, nil
	case "xlsx", "excel", "spreadsheet":
		return FormatSpreadsheet, nil
	case "parquet":
		return FormatParquet, nil
	case "json":
		return FormatJSON, nil
	default:
		return 0, fmt.Errorf("%w: %q", datatable.ErrUnsupportedFormat, s)
	}
}

// FormatForPath picks the format from a file name's extension.
func FormatForPath(path string) (Format, error) {
	return ParseFormat(filepath.Ext(path))
}
