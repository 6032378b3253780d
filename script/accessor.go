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

// Package script compiles Go expressions into column accessors using the
// yaegi interpreter.
package script

import (
	"fmt"
	"strings"
	"sync"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"

	"campusadmin/datatable"
)

// accessorSource wraps an expression over row. The blank assignments keep
// every import in use whatever the expression references.
const accessorSource = `package accessor

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

var (
	_ = fmt.Sprint
	_ = math.Abs
	_ = strconv.Itoa
	_ = strings.ToUpper
	_ = time.Now
)

func Accessor(row map[string]interface{}) interface{} {
	return %s
}
`

// CompileAccessor compiles expr, a Go expression over the variable
// row (map[string]interface{}), into an accessor. A runtime panic while
// evaluating the expression yields a nil value.
func CompileAccessor(expr string) (datatable.Accessor, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, fmt.Errorf("%w: empty expression", datatable.ErrInvalidScript)
	}

	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		return nil, fmt.Errorf("error loading stdlib: %w", err)
	}
	if _, err := i.Eval(fmt.Sprintf(accessorSource, expr)); err != nil {
		return nil, fmt.Errorf("%w: %q: %v", datatable.ErrInvalidScript, expr, err)
	}
	v, err := i.Eval("accessor.Accessor")
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", datatable.ErrInvalidScript, expr, err)
	}
	fn, ok := v.Interface().(func(map[string]interface{}) interface{})
	if !ok {
		return nil, fmt.Errorf("%w: %q has unexpected type %s", datatable.ErrInvalidScript, expr, v.Type())
	}

	var mu sync.Mutex
	return func(row datatable.Row) (out any) {
		mu.Lock()
		defer mu.Unlock()
		defer func() {
			if recover() != nil {
				out = nil
			}
		}()
		return fn(row)
	}, nil
}

// Compiler adapts CompileAccessor to datatable.ExprCompiler.
var Compiler datatable.ExprCompiler = CompileAccessor
