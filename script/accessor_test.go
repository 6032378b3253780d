package script

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campusadmin/datatable"
)

func TestCompileAccessor(t *testing.T) {
	acc, err := CompileAccessor(`fmt.Sprint(row["first"], " ", row["last"])`)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", acc(datatable.Row{"first": "Ada", "last": "Lovelace"}))

	upper, err := CompileAccessor(`strings.ToUpper(fmt.Sprint(row["code"]))`)
	require.NoError(t, err)
	assert.Equal(t, "CS101", upper(datatable.Row{"code": "cs101"}))
}

func TestCompileAccessorPanicYieldsNil(t *testing.T) {
	acc, err := CompileAccessor(`row["credits"].(int) * 2`)
	require.NoError(t, err)
	assert.Equal(t, 8, acc(datatable.Row{"credits": 4}))
	assert.Nil(t, acc(datatable.Row{}))
}

func TestCompileAccessorRejectsInvalidSource(t *testing.T) {
	for _, expr := range []string{"", "   ", "row[", "undefinedName + 1"} {
		_, err := CompileAccessor(expr)
		assert.ErrorIs(t, err, datatable.ErrInvalidScript, expr)
	}
}

func TestSchemaWithComputedColumn(t *testing.T) {
	schema, err := datatable.DecodeSchema(strings.NewReader(`
table = "students"

[[columns]]
key = "first"

[[columns]]
key = "full_name"
title = "Full name"
expr = 'fmt.Sprint(row["first"], " ", row["last"])'
`))
	require.NoError(t, err)

	model, err := schema.Model(Compiler)
	require.NoError(t, err)

	col, ok := model.Column("full_name")
	require.True(t, ok)
	assert.Equal(t, "Grace Hopper", col.ValueOf(datatable.Row{"first": "Grace", "last": "Hopper"}).Formatted)
}
