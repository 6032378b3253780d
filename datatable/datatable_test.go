package datatable

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewValueCoercesToDeclaredType(t *testing.T) {
	day := time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		raw       any
		typ       DataType
		wantType  DataType
		wantRaw   any
		wantText  string
		wantIsNil bool
	}{
		{"int from int", 42, TypeInt, TypeInt, int64(42), "42", false},
		{"int from string", " 7 ", TypeInt, TypeInt, int64(7), "7", false},
		{"int from integral float", float64(3), TypeInt, TypeInt, int64(3), "3", false},
		{"int from fractional float", 3.5, TypeInt, TypeFloat, 3.5, "3.5", false},
		{"float from string", "2.25", TypeFloat, TypeFloat, 2.25, "2.25", false},
		{"bool from string", "true", TypeBool, TypeBool, true, "true", false},
		{"date from string", "2024-09-01", TypeDate, TypeDate, day, "2024-09-01", false},
		{"string from int", 12, TypeString, TypeString, "12", "12", false},
		{"unparseable int keeps text", "n/a", TypeInt, TypeString, "n/a", "n/a", false},
		{"blank int is null", "  ", TypeInt, TypeInt, nil, "", true},
		{"nil is null", nil, TypeFloat, TypeFloat, nil, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewValue(tt.raw, tt.typ)
			assert.Equal(t, tt.wantType, v.Type)
			assert.Equal(t, tt.wantRaw, v.Raw)
			assert.Equal(t, tt.wantText, v.Formatted)
			assert.Equal(t, tt.wantIsNil, v.IsNull)
		})
	}
}

func TestCompare(t *testing.T) {
	early := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	late := early.Add(time.Hour)

	tests := []struct {
		name string
		a, b Value
		want int
	}{
		{"ints", NewValue(2, TypeInt), NewValue(10, TypeInt), -1},
		{"int vs float", NewValue(2, TypeInt), NewValue(1.5, TypeFloat), 1},
		{"strings are lexicographic", NewValue("10", TypeString), NewValue("9", TypeString), -1},
		{"equal strings", NewValue("a", TypeString), NewValue("a", TypeString), 0},
		{"bools", NewValue(false, TypeBool), NewValue(true, TypeBool), -1},
		{"times", NewValue(late, TypeTimestamp), NewValue(early, TypeTimestamp), 1},
		{"null first", NewNullValue(TypeInt), NewValue(0, TypeInt), -1},
		{"both null", NewNullValue(TypeInt), NewNullValue(TypeString), 0},
		{"text after numbers", NewValue("abc", TypeString), NewValue(5, TypeInt), 1},
		{"unreadable int after numbers", NewValue("1a", TypeInt), NewValue(10, TypeInt), 1},
		{"bools before numbers", NewValue(true, TypeBool), NewValue(-3, TypeInt), -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Compare(tt.a, tt.b))
			assert.Equal(t, -tt.want, Compare(tt.b, tt.a))
		})
	}
}

func TestCompareIsTransitiveAcrossKinds(t *testing.T) {
	values := []Value{
		NewValue(2, TypeInt),
		NewValue(10, TypeInt),
		NewValue("1a", TypeInt),
		NewValue("2", TypeInt),
		NewValue("n/a", TypeInt),
		NewValue(1.5, TypeFloat),
		NewNullValue(TypeInt),
		NewValue(true, TypeBool),
		NewValue(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), TypeDate),
	}
	for _, a := range values {
		for _, b := range values {
			for _, c := range values {
				if Compare(a, b) <= 0 && Compare(b, c) <= 0 {
					assert.LessOrEqual(t, Compare(a, c), 0, "%q <= %q <= %q", a.Formatted, b.Formatted, c.Formatted)
				}
			}
		}
	}
}

func TestNewValueDateDropsTimeOfDay(t *testing.T) {
	morning := NewValue(time.Date(2024, 9, 1, 8, 30, 0, 0, time.UTC), TypeDate)
	evening := NewValue("2024-09-01T19:05:00Z", TypeDate)

	assert.Equal(t, morning.Formatted, evening.Formatted)
	assert.Equal(t, 0, Compare(morning, evening))
	assert.Equal(t, time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC), morning.Raw)
}

func TestColumnValueOfMissingKeyIsNull(t *testing.T) {
	c := Column{Key: "email", Type: TypeString}
	v := c.ValueOf(Row{"name": "Ada"})
	assert.True(t, v.IsNull)
	assert.Equal(t, "", v.Formatted)
}

func TestColumnAccessorWins(t *testing.T) {
	c := Column{Key: "full", Accessor: func(r Row) any { return r["first"].(string) + " " + r["last"].(string) }}
	assert.Equal(t, "Ada Lovelace", c.ValueOf(Row{"first": "Ada", "last": "Lovelace"}).Formatted)
}

func TestNewColumnModel(t *testing.T) {
	m, err := NewColumnModel(
		Column{Key: "name", Sortable: true, Filterable: true},
		Column{Key: "age", Type: TypeInt, Sortable: true},
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "age"}, m.Keys())
	assert.Equal(t, 2, m.Len())

	c, ok := m.Column("age")
	require.True(t, ok)
	assert.Equal(t, TypeInt, c.Type)

	assert.NoError(t, m.CheckFilterable("name"))
	assert.ErrorIs(t, m.CheckFilterable("age"), ErrColumnNotFilterable)
	assert.ErrorIs(t, m.CheckFilterable("nope"), ErrColumnNotFound)

	assert.NoError(t, m.CheckSortable(Directive{{"age", SortDescending}}))
	assert.ErrorIs(t, m.CheckSortable(Directive{{"zip", SortAscending}}), ErrColumnNotFound)
}

func TestNewColumnModelRejectsBadColumns(t *testing.T) {
	_, err := NewColumnModel(Column{Key: "a"}, Column{Key: "a"})
	assert.ErrorIs(t, err, ErrDuplicateColumn)

	_, err = NewColumnModel(Column{Key: ""})
	assert.ErrorIs(t, err, ErrInvalidColumn)

	_, err = NewColumnModel(Column{Key: "w", Width: -3})
	assert.ErrorIs(t, err, ErrInvalidColumn)

	_, err = NewColumnModel()
	assert.ErrorIs(t, err, ErrEmptyData)
}

func TestDirectiveValidate(t *testing.T) {
	assert.NoError(t, Directive{}.Validate())
	assert.NoError(t, Directive{{"a", SortAscending}, {"b", SortDescending}}.Validate())
	assert.ErrorIs(t, Directive{{"a", SortAscending}, {"a", SortDescending}}.Validate(), ErrInvalidSortDirective)
	assert.ErrorIs(t, Directive{{"a", SortNone}}.Validate(), ErrInvalidSortDirective)
	assert.ErrorIs(t, Directive{{"", SortAscending}}.Validate(), ErrInvalidSortDirective)
}

func TestDirectiveJSON(t *testing.T) {
	d := Directive{{"name", SortAscending}, {"age", SortDescending}}
	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"key":"name","direction":"asc"},{"key":"age","direction":"desc"}]`, string(data))

	var back Directive
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, d, back)

	assert.Error(t, json.Unmarshal([]byte(`[{"key":"x","direction":"sideways"}]`), &back))
}

func TestFilterStateActive(t *testing.T) {
	f := FilterState{"name": "al", "city": ""}
	assert.Equal(t, FilterState{"name": "al"}, f.Active())
}

func TestDecodeSchema(t *testing.T) {
	src := `
table = "students"

[[columns]]
key = "name"
title = "Name"
width = 180

[[columns]]
key = "credits"
type = "int"
filterable = false

[[columns]]
key = "shout"
expr = 'row["name"]'
`
	s, err := DecodeSchema(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, "students", s.Table)
	require.Len(t, s.Columns, 3)

	compiled := 0
	m, err := s.Model(func(expr string) (Accessor, error) {
		compiled++
		return func(r Row) any { return strings.ToUpper(r["name"].(string)) }, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, compiled)

	name, _ := m.Column("name")
	assert.Equal(t, 180, name.Width)
	assert.True(t, name.Sortable)
	assert.True(t, name.Filterable)

	credits, _ := m.Column("credits")
	assert.Equal(t, TypeInt, credits.Type)
	assert.False(t, credits.Filterable)

	shout, _ := m.Column("shout")
	assert.Equal(t, "ADA", shout.ValueOf(Row{"name": "ada"}).Formatted)
}

func TestSchemaModelNeedsCompilerForExpr(t *testing.T) {
	s := Schema{Columns: []SchemaColumn{{Key: "x", Expr: "1"}}}
	_, err := s.Model(nil)
	assert.ErrorIs(t, err, ErrInvalidScript)
}

func TestDecodeSchemaRejectsEmpty(t *testing.T) {
	_, err := DecodeSchema(strings.NewReader(`table = "x"`))
	assert.ErrorIs(t, err, ErrEmptyData)
}
