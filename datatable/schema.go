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
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"
)

// Schema is a table definition read from a TOML file.
type Schema struct {
	Table   string         `toml:"table"`
	Columns []SchemaColumn `toml:"columns"`
}

// SchemaColumn is the TOML form of a Column. Expr, when set, is a Go
// expression compiled into the column's Accessor.
type SchemaColumn struct {
	Key        string `toml:"key"`
	Title      string `toml:"title"`
	Type       string `toml:"type"`
	Sortable   *bool  `toml:"sortable"`
	Filterable *bool  `toml:"filterable"`
	Width      int    `toml:"width"`
	Expr       string `toml:"expr"`
}

// ExprCompiler turns a column expression into an Accessor.
type ExprCompiler func(expr string) (Accessor, error)

// DecodeSchema reads a table definition from r.
func DecodeSchema(r io.Reader) (Schema, error) {
	var s Schema
	if _, err := toml.NewDecoder(r).Decode(&s); err != nil {
		return Schema{}, fmt.Errorf("decode schema: %w", err)
	}
	if len(s.Columns) == 0 {
		return Schema{}, fmt.Errorf("%w: schema %q declares no columns", ErrEmptyData, s.Table)
	}
	return s, nil
}

// LoadSchema reads a table definition file.
func LoadSchema(path string) (Schema, error) {
	f, err := os.Open(path)
	if err != nil {
		return Schema{}, fmt.Errorf("open schema: %w", err)
	}
	defer f.Close()
	return DecodeSchema(f)
}

// Model builds the column model. Columns are sortable and filterable unless
// the file says otherwise. compile may be nil when no column has an Expr.
func (s Schema) Model(compile ExprCompiler) (*ColumnModel, error) {
	cols := make([]Column, 0, len(s.Columns))
	for _, sc := range s.Columns {
		dt, err := ParseDataType(sc.Type)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", sc.Key, err)
		}
		c := Column{
			Key:        sc.Key,
			Title:      sc.Title,
			Type:       dt,
			Sortable:   sc.Sortable == nil || *sc.Sortable,
			Filterable: sc.Filterable == nil || *sc.Filterable,
			Width:      sc.Width,
		}
		if sc.Expr != "" {
			if compile == nil {
				return nil, fmt.Errorf("%w: column %q has an expression but no compiler", ErrInvalidScript, sc.Key)
			}
			acc, err := compile(sc.Expr)
			if err != nil {
				return nil, fmt.Errorf("column %q: %w", sc.Key, err)
			}
			c.Accessor = acc
		}
		cols = append(cols, c)
	}
	return NewColumnModel(cols...)
}
