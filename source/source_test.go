package source

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campusadmin/datatable"
	"campusadmin/export"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDetectSeparator(t *testing.T) {
	assert.Equal(t, ';', DetectSeparator("name;age;faculty"))
	assert.Equal(t, '\t', DetectSeparator("name\tage"))
	assert.Equal(t, '|', DetectSeparator("a|b|c,d"))
	assert.Equal(t, ',', DetectSeparator("single"))
}

func TestLoadCSV(t *testing.T) {
	path := writeFile(t, "students.csv", "name;year;gpa;active\nAlice;2;3.5;true\nBob;;2.75;false\n")

	d, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "students", d.Name())
	assert.Equal(t, "semicolon", d.Metadata()["separator"])

	cols := d.Columns()
	require.Len(t, cols, 4)
	assert.Equal(t, []string{"name", "year", "gpa", "active"}, []string{cols[0].Key, cols[1].Key, cols[2].Key, cols[3].Key})
	assert.Equal(t, datatable.TypeString, cols[0].Type)
	assert.Equal(t, datatable.TypeInt, cols[1].Type)
	assert.Equal(t, datatable.TypeFloat, cols[2].Type)
	assert.Equal(t, datatable.TypeBool, cols[3].Type)

	require.Len(t, d.Rows(), 2)
	assert.Equal(t, "Bob", d.Rows()[1]["name"])

	model, err := d.Model()
	require.NoError(t, err)
	c, _ := model.Column("year")
	assert.True(t, c.Sortable)
	assert.True(t, c.Filterable)
	assert.True(t, c.ValueOf(d.Rows()[1]).IsNull)
}

func TestLoadJSON(t *testing.T) {
	path := writeFile(t, "grades.json", `[{"student":"Alice","score":91},{"student":"Bob","score":78.5}]`)

	d, err := LoadFile(path)
	require.NoError(t, err)
	cols := d.Columns()
	require.Len(t, cols, 2)
	assert.Equal(t, "score", cols[0].Key)
	assert.Equal(t, datatable.TypeFloat, cols[0].Type)
	assert.Equal(t, "student", cols[1].Key)

	single, err := ReadJSON("one", []byte(`{"student":"Carl"}`))
	require.NoError(t, err)
	assert.Len(t, single.Rows(), 1)

	_, err = ReadJSON("none", []byte(`[]`))
	assert.ErrorIs(t, err, datatable.ErrEmptyData)
}

func TestLoadFileRejectsUnknownAndProfiles(t *testing.T) {
	_, err := LoadFile(writeFile(t, "notes.md", "# hi"))
	assert.ErrorIs(t, err, datatable.ErrUnsupportedFormat)

	profile := `{"shareCredentialsVersion":1,"endpoint":"https://example.com/delta-sharing/","bearerToken":"t"}`
	assert.Equal(t, FileTypeDeltaSharingProfile, DetectFileType("x.share", []byte(profile)))
	_, err = LoadFile(writeFile(t, "x.share", profile))
	assert.ErrorIs(t, err, datatable.ErrUnsupportedFormat)
}

func TestParquetRoundTripThroughExport(t *testing.T) {
	model := datatable.MustColumnModel(
		datatable.Column{Key: "name"},
		datatable.Column{Key: "year", Type: datatable.TypeInt},
		datatable.Column{Key: "enrolled", Type: datatable.TypeDate},
	)
	rows := []datatable.Row{
		{"name": "Alice", "year": 2, "enrolled": "2023-09-01"},
		{"name": "Bob"},
	}
	data, err := export.ToParquet(model, rows)
	require.NoError(t, err)

	d, err := LoadFile(writeFile(t, "students.parquet", string(data)))
	require.NoError(t, err)
	require.Len(t, d.Rows(), 2)

	cols := d.Columns()
	assert.Equal(t, datatable.TypeInt, cols[1].Type)
	assert.Equal(t, datatable.TypeDate, cols[2].Type)
	assert.Equal(t, int64(2), d.Rows()[0]["year"])
	assert.Nil(t, d.Rows()[1]["year"])

	enrolled := datatable.NewValue(d.Rows()[0]["enrolled"], datatable.TypeDate)
	assert.Equal(t, "2023-09-01", enrolled.Formatted)
}

func TestApplySchemaCoercesValues(t *testing.T) {
	d, err := ReadCSV("students", strings.NewReader("id,name,year\n7,Alice,2\n8,Bob,x\n"))
	require.NoError(t, err)

	schema, err := datatable.DecodeSchema(strings.NewReader(`
table = "students"
[[columns]]
key = "name"
width = 120
[[columns]]
key = "year"
type = "int"
filterable = false
`))
	require.NoError(t, err)

	model, err := d.ApplySchema(schema, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "year"}, model.Keys())
	assert.Equal(t, int64(2), d.Rows()[0]["year"])
	assert.Equal(t, "x", d.Rows()[1]["year"])

	c, _ := model.Column("year")
	assert.False(t, c.Filterable)
	assert.Len(t, d.Columns(), 2)
}
