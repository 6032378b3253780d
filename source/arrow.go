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
	"encoding/json"
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"

	"campusadmin/datatable"
)

// FromArrow converts an Arrow table to rows. Column types follow the Arrow
// field types; nested values become their JSON text.
func FromArrow(name string, table arrow.Table) (*Dataset, error) {
	schema := table.Schema()
	cols := make([]datatable.Column, schema.NumFields())
	for i, f := range schema.Fields() {
		cols[i] = datatable.Column{Key: f.Name, Type: columnType(f.Type)}
	}

	rows := make([]datatable.Row, 0, table.NumRows())
	tr := array.NewTableReader(table, 1024)
	defer tr.Release()

	for tr.Next() {
		rec := tr.Record()
		for rowIdx := 0; rowIdx < int(rec.NumRows()); rowIdx++ {
			row := make(datatable.Row, len(cols))
			for colIdx, col := range rec.Columns() {
				row[cols[colIdx].Key] = typedValue(col, rowIdx)
			}
			rows = append(rows, row)
		}
	}
	if err := tr.Err(); err != nil {
		return nil, fmt.Errorf("error reading table: %w", err)
	}

	d := NewDataset(name, cols, rows)
	d.metadata["rows"] = table.NumRows()
	return d, nil
}

// columnType maps an Arrow type to the closest column type.
func columnType(dt arrow.DataType) datatable.DataType {
	switch dt.ID() {
	case arrow.INT8, arrow.INT16, arrow.INT32, arrow.INT64,
		arrow.UINT8, arrow.UINT16, arrow.UINT32, arrow.UINT64:
		return datatable.TypeInt
	case arrow.FLOAT16, arrow.FLOAT32, arrow.FLOAT64:
		return datatable.TypeFloat
	case arrow.BOOL:
		return datatable.TypeBool
	case arrow.DATE32, arrow.DATE64:
		return datatable.TypeDate
	case arrow.TIMESTAMP:
		return datatable.TypeTimestamp
	default:
		return datatable.TypeString
	}
}

// typedValue returns the Go value of an Arrow cell.
func typedValue(col arrow.Array, pos int) any {
	if col.IsNull(pos) {
		return nil
	}

	switch c := col.(type) {
	case *array.String:
		return c.Value(pos)
	case *array.LargeString:
		return c.Value(pos)
	case *array.Binary:
		return string(c.Value(pos))
	case *array.Boolean:
		return c.Value(pos)
	case *array.Int8:
		return int64(c.Value(pos))
	case *array.Int16:
		return int64(c.Value(pos))
	case *array.Int32:
		return int64(c.Value(pos))
	case *array.Int64:
		return c.Value(pos)
	case *array.Uint8:
		return int64(c.Value(pos))
	case *array.Uint16:
		return int64(c.Value(pos))
	case *array.Uint32:
		return int64(c.Value(pos))
	case *array.Uint64:
		return c.Value(pos)
	case *array.Float16:
		return float64(c.Value(pos).Float32())
	case *array.Float32:
		return float64(c.Value(pos))
	case *array.Float64:
		return c.Value(pos)
	case *array.Date32:
		return c.Value(pos).ToTime()
	case *array.Date64:
		return c.Value(pos).ToTime()
	case *array.Timestamp:
		unit := c.DataType().(*arrow.TimestampType).Unit
		return c.Value(pos).ToTime(unit)
	case *array.Decimal128:
		return c.Value(pos).BigInt().String()
	case *array.Struct, *array.List, *array.Map:
		b, err := json.Marshal(c.GetOneForMarshal(pos))
		if err != nil {
			return c.ValueStr(pos)
		}
		return string(b)
	default:
		return col.ValueStr(pos)
	}
}
