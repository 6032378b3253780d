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
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Accessor resolves a column value from a row when the column key does not
// address a row property directly.
type Accessor func(Row) any

// Column defines a single column of a table.
type Column struct {
	// Key identifies the column and addresses a property on Row.
	Key string `json:"key" validate:"required,max=128"`

	// Title is the header text. Defaults to Key.
	Title string `json:"title,omitempty" validate:"max=256"`

	// Type is the declared value kind used for comparison and export.
	Type DataType `json:"type" validate:"gte=0,lte=5"`

	Sortable   bool `json:"sortable"`
	Filterable bool `json:"filterable"`

	// Width is the display width in pixels; 0 lets the host decide.
	Width int `json:"width,omitempty" validate:"gte=0"`

	// Accessor, when set, is used instead of Row[Key].
	Accessor Accessor `json:"-"`
}

// Header returns the title shown for the column.
func (c Column) Header() string {
	if c.Title != "" {
		return c.Title
	}
	return c.Key
}

// Raw returns the unconverted value of the column in row.
func (c Column) Raw(row Row) any {
	if c.Accessor != nil {
		return c.Accessor(row)
	}
	return row[c.Key]
}

// ValueOf returns the typed value of the column in row. Missing keys yield a
// null value.
func (c Column) ValueOf(row Row) Value {
	return NewValue(c.Raw(row), c.Type)
}

var validate = validator.New()

// ColumnModel is the validated, ordered set of columns of one table.
type ColumnModel struct {
	columns []Column
	index   map[string]int
}

// NewColumnModel validates cols and builds a model. Keys must be unique.
func NewColumnModel(cols ...Column) (*ColumnModel, error) {
	if len(cols) == 0 {
		return nil, fmt.Errorf("%w: no columns", ErrEmptyData)
	}
	m := &ColumnModel{
		columns: make([]Column, len(cols)),
		index:   make(map[string]int, len(cols)),
	}
	for i, c := range cols {
		if err := validate.Struct(c); err != nil {
			return nil, fmt.Errorf("%w: column %d (%q): %s", ErrInvalidColumn, i, c.Key, describeValidation(err))
		}
		if _, dup := m.index[c.Key]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, c.Key)
		}
		m.columns[i] = c
		m.index[c.Key] = i
	}
	return m, nil
}

// MustColumnModel is like NewColumnModel but panics on error.
func MustColumnModel(cols ...Column) *ColumnModel {
	m, err := NewColumnModel(cols...)
	if err != nil {
		panic(err)
	}
	return m
}

// Columns returns the columns in model order.
func (m *ColumnModel) Columns() []Column {
	out := make([]Column, len(m.columns))
	copy(out, m.columns)
	return out
}

// Len returns the number of columns.
func (m *ColumnModel) Len() int {
	return len(m.columns)
}

// At returns the column at position i.
func (m *ColumnModel) At(i int) (Column, error) {
	if i < 0 || i >= len(m.columns) {
		return Column{}, fmt.Errorf("%w: index %d", ErrColumnNotFound, i)
	}
	return m.columns[i], nil
}

// Column looks up a column by key.
func (m *ColumnModel) Column(key string) (Column, bool) {
	i, ok := m.index[key]
	if !ok {
		return Column{}, false
	}
	return m.columns[i], true
}

// Keys returns the column keys in model order.
func (m *ColumnModel) Keys() []string {
	keys := make([]string, len(m.columns))
	for i, c := range m.columns {
		keys[i] = c.Key
	}
	return keys
}

// Lookup returns the column for key, or an untyped string column reading
// Row[key] when the key is not part of the model.
func (m *ColumnModel) Lookup(key string) Column {
	if c, ok := m.Column(key); ok {
		return c
	}
	return Column{Key: key, Type: TypeString}
}

// CheckSortable validates every key of d against the model.
func (m *ColumnModel) CheckSortable(d Directive) error {
	if err := d.Validate(); err != nil {
		return err
	}
	for _, k := range d {
		c, ok := m.Column(k.Key)
		if !ok {
			return fmt.Errorf("%w: %q", ErrColumnNotFound, k.Key)
		}
		if !c.Sortable {
			return fmt.Errorf("%w: %q", ErrColumnNotSortable, k.Key)
		}
	}
	return nil
}

// CheckFilterable validates that key names a filterable column.
func (m *ColumnModel) CheckFilterable(key string) error {
	c, ok := m.Column(key)
	if !ok {
		return fmt.Errorf("%w: %q", ErrColumnNotFound, key)
	}
	if !c.Filterable {
		return fmt.Errorf("%w: %q", ErrColumnNotFilterable, key)
	}
	return nil
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag()))
	}
	return strings.Join(parts, ", ")
}
