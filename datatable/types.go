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

// Package datatable holds the column model and value types shared by every
// table in the admin console: rows, typed cell values, sort directives and
// filter state.
package datatable

import (
	"fmt"
	"strings"
)

// DataType represents the declared kind of values in a column.
type DataType int

const (
	// TypeString represents string data.
	TypeString DataType = iota
	// TypeInt represents integer data (any size).
	TypeInt
	// TypeFloat represents floating-point data (any precision).
	TypeFloat
	// TypeBool represents boolean data.
	TypeBool
	// TypeDate represents date data (without time).
	TypeDate
	// TypeTimestamp represents timestamp data (date + time).
	TypeTimestamp
)

// String returns the string representation of a DataType.
func (dt DataType) String() string {
	switch dt {
	case TypeString:
		return "String"
	case TypeInt:
		return "Int"
	case TypeFloat:
		return "Float"
	case TypeBool:
		return "Bool"
	case TypeDate:
		return "Date"
	case TypeTimestamp:
		return "Timestamp"
	default:
		return fmt.Sprintf("Unknown(%d)", dt)
	}
}

// ParseDataType maps a schema type name ("string", "int", "float", "bool",
// "date", "timestamp") to a DataType. The empty string means TypeString.
func ParseDataType(s string) (DataType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "string", "text":
		return TypeString, nil
	case "int", "integer":
		return TypeInt, nil
	case "float", "number", "decimal":
		return TypeFloat, nil
	case "bool", "boolean":
		return TypeBool, nil
	case "date":
		return TypeDate, nil
	case "timestamp", "datetime":
		return TypeTimestamp, nil
	default:
		return TypeString, fmt.Errorf("%w: unknown column type %q", ErrTypeMismatch, s)
	}
}

// Row is an opaque record. The engine only reads the values of declared
// columns from it.
type Row map[string]any

// Metadata holds optional metadata about a data source.
type Metadata map[string]any

// SortDirection specifies the direction of sorting.
type SortDirection int

const (
	// SortNone indicates no sorting.
	SortNone SortDirection = iota
	// SortAscending indicates ascending sort order.
	SortAscending
	// SortDescending indicates descending sort order.
	SortDescending
)

// String returns the string representation of a SortDirection.
func (sd SortDirection) String() string {
	switch sd {
	case SortNone:
		return "none"
	case SortAscending:
		return "asc"
	case SortDescending:
		return "desc"
	default:
		return fmt.Sprintf("unknown(%d)", sd)
	}
}

// Arrow returns the arrow glyph used in headers and status lines.
func (sd SortDirection) Arrow() string {
	switch sd {
	case SortAscending:
		return "↑"
	case SortDescending:
		return "↓"
	default:
		return ""
	}
}

// MarshalText implements encoding.TextMarshaler.
func (sd SortDirection) MarshalText() ([]byte, error) {
	switch sd {
	case SortNone, SortAscending, SortDescending:
		return []byte(sd.String()), nil
	default:
		return nil, fmt.Errorf("%w: direction %d", ErrInvalidSortDirective, int(sd))
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (sd *SortDirection) UnmarshalText(text []byte) error {
	d, err := ParseSortDirection(string(text))
	if err != nil {
		return err
	}
	*sd = d
	return nil
}

// ParseSortDirection accepts "asc"/"ascending", "desc"/"descending" and
// "none" (or the empty string).
func ParseSortDirection(s string) (SortDirection, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "asc", "ascending":
		return SortAscending, nil
	case "desc", "descending":
		return SortDescending, nil
	case "", "none":
		return SortNone, nil
	default:
		return SortNone, fmt.Errorf("%w: direction %q", ErrInvalidSortDirective, s)
	}
}

// SortKey is one entry of a Directive.
type SortKey struct {
	Key       string        `json:"key"`
	Direction SortDirection `json:"direction"`
}

// Directive is an ordered list of sort keys. The first entry is the primary
// sort key. A key appears at most once.
type Directive []SortKey

// Index returns the position of key in the directive, or -1.
func (d Directive) Index(key string) int {
	for i, k := range d {
		if k.Key == key {
			return i
		}
	}
	return -1
}

// Direction returns the direction of key, SortNone when absent.
func (d Directive) Direction(key string) SortDirection {
	if i := d.Index(key); i >= 0 {
		return d[i].Direction
	}
	return SortNone
}

// IsSorted returns true if the directive has at least one active key.
func (d Directive) IsSorted() bool {
	return len(d) > 0
}

// Clone returns a copy that shares no memory with d.
func (d Directive) Clone() Directive {
	if d == nil {
		return nil
	}
	out := make(Directive, len(d))
	copy(out, d)
	return out
}

// Validate reports duplicate keys, empty keys and entries without a
// direction.
func (d Directive) Validate() error {
	seen := make(map[string]struct{}, len(d))
	for i, k := range d {
		if k.Key == "" {
			return fmt.Errorf("%w: entry %d has no key", ErrInvalidSortDirective, i)
		}
		if k.Direction != SortAscending && k.Direction != SortDescending {
			return fmt.Errorf("%w: key %q has direction %s", ErrInvalidSortDirective, k.Key, k.Direction)
		}
		if _, dup := seen[k.Key]; dup {
			return fmt.Errorf("%w: key %q appears twice", ErrInvalidSortDirective, k.Key)
		}
		seen[k.Key] = struct{}{}
	}
	return nil
}

// FilterState maps a column key to a text pattern. Empty patterns impose no
// constraint.
type FilterState map[string]string

// Active returns the entries with a non-empty pattern.
func (f FilterState) Active() FilterState {
	out := make(FilterState, len(f))
	for k, v := range f {
		if v != "" {
			out[k] = v
		}
	}
	return out
}

// Clone returns a copy of f.
func (f FilterState) Clone() FilterState {
	if f == nil {
		return nil
	}
	out := make(FilterState, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}
