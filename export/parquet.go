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
	"bytes"
	"fmt"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"campusadmin/datatable"
)

// ToArrow converts rows to an Arrow record with one field per column. A
// column whose values cannot all be read as its declared type is written
// as strings so no cell is lost. The caller releases the record.
func ToArrow(model *datatable.ColumnModel, rows []datatable.Row, mem memory.Allocator) (arrow.Record, error) {
	if mem == nil {
		mem = memory.DefaultAllocator
	}
	cols := model.Columns()

	values := make([][]datatable.Value, len(cols))
	fields := make([]arrow.Field, len(cols))
	for i, c := range cols {
		values[i] = make([]datatable.Value, len(rows))
		for r, row := range rows {
			values[i][r] = c.ValueOf(row)
		}
		fields[i] = arrow.Field{Name: c.Key, Type: arrowType(c.Type, values[i]), Nullable: true}
	}

	schema := arrow.NewSchema(fields, nil)
	builder := array.NewRecordBuilder(mem, schema)
	defer builder.Release()

	for i := range cols {
		if err := appendColumn(builder.Field(i), values[i]); err != nil {
			return nil, fmt.Errorf("column %q: %w", cols[i].Key, err)
		}
	}
	return builder.NewRecord(), nil
}

// ToParquet writes rows as a snappy-compressed Parquet file with the Arrow
// schema stored in its metadata.
func ToParquet(model *datatable.ColumnModel, rows []datatable.Row) ([]byte, error) {
	rec, err := ToArrow(model, rows, memory.DefaultAllocator)
	if err != nil {
		return nil, err
	}
	defer rec.Release()

	var buf bytes.Buffer
	props := parquet.NewWriterProperties(parquet.WithCompression(compress.Codecs.Snappy))
	arrowProps := pqarrow.NewArrowWriterProperties(pqarrow.WithStoreSchema())

	writer, err := pqarrow.NewFileWriter(rec.Schema(), &buf, props, arrowProps)
	if err != nil {
		return nil, fmt.Errorf("failed to create parquet writer: %w", err)
	}
	if err := writer.Write(rec); err != nil {
		_ = writer.Close()
		return nil, fmt.Errorf("failed to write parquet record: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close parquet writer: %w", err)
	}
	return buf.Bytes(), nil
}

func arrowType(dt datatable.DataType, values []datatable.Value) arrow.DataType {
	for _, v := range values {
		if !v.IsNull && v.Type != dt && !(dt == datatable.TypeInt && v.Type == datatable.TypeFloat) {
			return arrow.BinaryTypes.String
		}
	}
	switch dt {
	case datatable.TypeInt:
		for _, v := range values {
			if !v.IsNull && v.Type == datatable.TypeFloat {
				return arrow.PrimitiveTypes.Float64
			}
		}
		return arrow.PrimitiveTypes.Int64
	case datatable.TypeFloat:
		return arrow.PrimitiveTypes.Float64
	case datatable.TypeBool:
		return arrow.FixedWidthTypes.Boolean
	case datatable.TypeDate:
		return arrow.FixedWidthTypes.Date32
	case datatable.TypeTimestamp:
		return arrow.FixedWidthTypes.Timestamp_ms
	default:
		return arrow.BinaryTypes.String
	}
}

func appendColumn(b array.Builder, values []datatable.Value) error {
	for _, v := range values {
		if v.IsNull {
			b.AppendNull()
			continue
		}
		switch fb := b.(type) {
		case *array.StringBuilder:
			fb.Append(v.Formatted)
		case *array.Int64Builder:
			n, _ := v.Raw.(int64)
			fb.Append(n)
		case *array.Float64Builder:
			switch x := v.Raw.(type) {
			case float64:
				fb.Append(x)
			case int64:
				fb.Append(float64(x))
			}
		case *array.BooleanBuilder:
			x, _ := v.Raw.(bool)
			fb.Append(x)
		case *array.Date32Builder:
			t, _ := v.Raw.(time.Time)
			fb.Append(arrow.Date32FromTime(t))
		case *array.TimestampBuilder:
			t, _ := v.Raw.(time.Time)
			fb.Append(arrow.Timestamp(t.UnixMilli()))
		default:
			return fmt.Errorf("%w: builder %T", datatable.ErrTypeMismatch, b)
		}
	}
	return nil
}
