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

// Package source loads row sets from files, Arrow tables and Delta Sharing
// servers.
package source

import (
	"fmt"
	"maps"
	"slices"

	"campusadmin/datatable"
)

// Dataset is an already-fetched page of rows with inferred columns.
type Dataset struct {
	name     string
	columns  []datatable.Column
	rows     []datatable.Row
	metadata datatable.Metadata
}

var _ datatable.DataSource = (*Dataset)(nil)

// NewDataset returns a dataset over rows. When columns is empty they are
// inferred from the row keys: the first row's keys in alphabetical order,
// then keys first appearing in later rows, each row's new keys again
// alphabetical.
func NewDataset(name string, columns []datatable.Column, rows []datatable.Row) *Dataset {
	if len(columns) == 0 {
		columns = inferColumns(rows)
	}
	return &Dataset{name: name, columns: columns, rows: rows, metadata: datatable.Metadata{}}
}

func (d *Dataset) Name() string                 { return d.name }
func (d *Dataset) Columns() []datatable.Column  { return d.columns }
func (d *Dataset) Rows() []datatable.Row        { return d.rows }
func (d *Dataset) Metadata() datatable.Metadata { return d.metadata }

// Model builds a column model in which every column is sortable and
// filterable.
func (d *Dataset) Model() (*datatable.ColumnModel, error) {
	if len(d.columns) == 0 {
		return nil, fmt.Errorf("%w: %s has no columns", datatable.ErrEmptyData, d.name)
	}
	cols := make([]datatable.Column, len(d.columns))
	for i, c := range d.columns {
		c.Sortable, c.Filterable = true, true
		cols[i] = c
	}
	return datatable.NewColumnModel(cols...)
}

// ApplySchema builds the model declared by schema and converts the stored
// raw values of its plain columns to their declared types. Values that do
// not convert are kept as they are.
func (d *Dataset) ApplySchema(schema datatable.Schema, compile datatable.ExprCompiler) (*datatable.ColumnModel, error) {
	model, err := schema.Model(compile)
	if err != nil {
		return nil, err
	}
	for _, c := range model.Columns() {
		if c.Accessor != nil || c.Type == datatable.TypeString {
			continue
		}
		for _, r := range d.rows {
			if _, ok := r[c.Key]; !ok {
				continue
			}
			switch v := c.ValueOf(r); {
			case v.IsNull:
				r[c.Key] = nil
			case v.Type == c.Type:
				r[c.Key] = v.Raw
			}
		}
	}
	d.columns = model.Columns()
	return model, nil
}

// inferColumns walks rows in order and each row's keys alphabetically, since
// map-decoded rows carry no source column order.
func inferColumns(rows []datatable.Row) []datatable.Column {
	seen := make(map[string]int)
	var cols []datatable.Column
	for _, r := range rows {
		for _, key := range sortedKeys(r) {
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = len(cols)
			cols = append(cols, datatable.Column{Key: key, Type: inferType(rows, key)})
		}
	}
	return cols
}

// inferType picks the narrowest type every present value of key reads as.
func inferType(rows []datatable.Row, key string) datatable.DataType {
	candidates := []datatable.DataType{datatable.TypeInt, datatable.TypeFloat, datatable.TypeBool, datatable.TypeTimestamp}
	for _, dt := range candidates {
		ok, found := true, false
		for _, r := range rows {
			raw, present := r[key]
			if !present || raw == nil {
				continue
			}
			v := datatable.NewValue(raw, dt)
			if v.IsNull {
				continue
			}
			found = true
			if v.Type != dt {
				ok = false
				break
			}
		}
		if ok && found {
			return dt
		}
	}
	return datatable.TypeString
}

func sortedKeys(r datatable.Row) []string {
	return slices.Sorted(maps.Keys(r))
}
