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

	"github.com/xuri/excelize/v2"

	"campusadmin/datatable"
)

// SheetName is the worksheet the export is written to.
const SheetName = "Export"

// pixelsPerChar converts model widths (pixels) to Excel column widths
// (characters of the default font).
const pixelsPerChar = 7.0

// ToSpreadsheet writes an XLSX workbook with a bold header row and one row
// per record. Numbers, booleans and dates are written as typed cells.
func ToSpreadsheet(model *datatable.ColumnModel, rows []datatable.Row) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	cols := model.Columns()
	header := make([]any, len(cols))
	for i, c := range cols {
		header[i] = c.Header()
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(cols), 1)
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(SheetName, "A1", last, bold); err != nil {
		return nil, fmt.Errorf("failed to style header: %w", err)
	}

	for i, c := range cols {
		if c.Width <= 0 {
			continue
		}
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(SheetName, name, name, float64(c.Width)/pixelsPerChar); err != nil {
			return nil, fmt.Errorf("failed to set width of %q: %w", c.Key, err)
		}
	}

	cells := make([]any, len(cols))
	for r, row := range rows {
		for i, c := range cols {
			cells[i] = cellValue(c.ValueOf(row))
		}
		start, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(SheetName, start, &cells); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", r, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func cellValue(v datatable.Value) any {
	if v.IsNull {
		return nil
	}
	switch v.Type {
	case datatable.TypeInt, datatable.TypeFloat, datatable.TypeBool:
		return v.Raw
	case datatable.TypeDate, datatable.TypeTimestamp:
		// excelize stores time.Time as a serial date
		return v.Raw
	default:
		return v.Formatted
	}
}
