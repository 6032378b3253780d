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

package datatable

import (
	"cmp"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Value is a typed container for cell values.
// It holds the raw value, type information, and a pre-formatted string for display.
type Value struct {
	// Raw holds the underlying value: string, int64, float64, bool or
	// time.Time depending on Type.
	Raw any

	// Type indicates the kind of Raw. It equals the column's declared type
	// unless the value could not be read as that type, in which case it is
	// TypeString.
	Type DataType

	// IsNull indicates whether this value is null/missing.
	IsNull bool

	// Formatted is the string used for display, filtering and CSV export.
	Formatted string
}

// dateLayouts are tried in order when a string is read as a date or timestamp.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// NewValue creates a new Value from a raw value and the declared type.
// Values that cannot be read as dataType keep their text form and are typed
// TypeString so comparisons stay deterministic.
func NewValue(raw any, dataType DataType) Value {
	if v, ok := raw.(Value); ok {
		return v
	}
	if raw == nil {
		return NewNullValue(dataType)
	}

	switch dataType {
	case TypeInt:
		if n, ok := toInt(raw); ok {
			return Value{Raw: n, Type: TypeInt, Formatted: strconv.FormatInt(n, 10)}
		}
		if f, ok := toFloat(raw); ok {
			return floatValue(f)
		}
	case TypeFloat:
		if f, ok := toFloat(raw); ok {
			return floatValue(f)
		}
	case TypeBool:
		if b, ok := toBool(raw); ok {
			return Value{Raw: b, Type: TypeBool, Formatted: strconv.FormatBool(b)}
		}
	case TypeDate:
		if t, ok := toTime(raw); ok {
			t = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
			return Value{Raw: t, Type: TypeDate, Formatted: t.Format("2006-01-02")}
		}
	case TypeTimestamp:
		if t, ok := toTime(raw); ok {
			return Value{Raw: t, Type: TypeTimestamp, Formatted: t.Format(time.RFC3339)}
		}
	case TypeString:
		s := formatRaw(raw)
		return Value{Raw: s, Type: TypeString, Formatted: s}
	}

	if s, ok := raw.(string); ok && strings.TrimSpace(s) == "" {
		return NewNullValue(dataType)
	}
	s := formatRaw(raw)
	return Value{Raw: s, Type: TypeString, Formatted: s}
}

// NewNullValue creates a null value of the specified type.
func NewNullValue(dataType DataType) Value {
	return Value{
		Raw:       nil,
		Type:      dataType,
		IsNull:    true,
		Formatted: "",
	}
}

func floatValue(f float64) Value {
	return Value{Raw: f, Type: TypeFloat, Formatted: strconv.FormatFloat(f, 'f', -1, 64)}
}

// Compare orders two values. The order is total: values rank by kind first
// (null, bool, number, time, text) and compare within a kind, numbers
// numerically across int and float, booleans false before true and times
// chronologically. Text compares lexicographically, so values that could not
// be read as their column's type sort after every typed value.
func Compare(a, b Value) int {
	if c := cmp.Compare(rank(a), rank(b)); c != 0 {
		return c
	}

	switch rank(a) {
	case rankNull:
		return 0
	case rankBool:
		ab, _ := a.Raw.(bool)
		bb, _ := b.Raw.(bool)
		switch {
		case ab == bb:
			return 0
		case !ab:
			return -1
		default:
			return 1
		}
	case rankNumber:
		ai, aInt := a.Raw.(int64)
		bi, bInt := b.Raw.(int64)
		if aInt && bInt {
			return cmp.Compare(ai, bi)
		}
		af, _ := toFloat(a.Raw)
		bf, _ := toFloat(b.Raw)
		return cmp.Compare(af, bf)
	case rankTime:
		return a.Raw.(time.Time).Compare(b.Raw.(time.Time))
	}
	return strings.Compare(a.Formatted, b.Formatted)
}

const (
	rankNull = iota
	rankBool
	rankNumber
	rankTime
	rankText
)

// rank is the kind class of v. Values whose Raw does not hold the Go type
// their Type promises rank as text.
func rank(v Value) int {
	if v.IsNull {
		return rankNull
	}
	switch v.Raw.(type) {
	case bool:
		if v.Type == TypeBool {
			return rankBool
		}
	case int64, float64:
		if isNumeric(v.Type) {
			return rankNumber
		}
	case time.Time:
		if isTemporal(v.Type) {
			return rankTime
		}
	}
	return rankText
}

func isNumeric(dt DataType) bool { return dt == TypeInt || dt == TypeFloat }

func isTemporal(dt DataType) bool { return dt == TypeDate || dt == TypeTimestamp }

func toInt(raw any) (int64, bool) {
	switch v := raw.(type) {
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint:
		return int64(v), true
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint64:
		if v > math.MaxInt64 {
			return 0, false
		}
		return int64(v), true
	case float32:
		if float32(int64(v)) == v {
			return int64(v), true
		}
	case float64:
		if v == math.Trunc(v) && !math.IsInf(v, 0) && math.Abs(v) < 1<<62 {
			return int64(v), true
		}
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		return n, err == nil
	case fmt.Stringer:
		n, err := strconv.ParseInt(strings.TrimSpace(v.String()), 10, 64)
		return n, err == nil
	}
	return 0, false
}

func toFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	case fmt.Stringer:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.String()), 64)
		return f, err == nil
	}
	if n, ok := toInt(raw); ok {
		return float64(n), true
	}
	return 0, false
}

func toBool(raw any) (bool, bool) {
	switch v := raw.(type) {
	case bool:
		return v, true
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		return b, err == nil
	}
	return false, false
}

func toTime(raw any) (time.Time, bool) {
	switch v := raw.(type) {
	case time.Time:
		return v, true
	case *time.Time:
		if v != nil {
			return *v, true
		}
	case string:
		s := strings.TrimSpace(v)
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// formatRaw converts a raw value to its display string.
func formatRaw(raw any) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case time.Time:
		return v.Format(time.RFC3339)
	case []byte:
		return string(v)
	default:
		return fmt.Sprintf("%v", raw)
	}
}
