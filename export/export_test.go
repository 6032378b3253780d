package export

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"campusadmin/datatable"
)

func gradeModel() *datatable.ColumnModel {
	return datatable.MustColumnModel(
		datatable.Column{Key: "name", Title: "Name", Width: 140},
		datatable.Column{Key: "score", Type: datatable.TypeInt},
		datatable.Column{Key: "passed", Title: "Passed", Type: datatable.TypeBool},
	)
}

func gradeRows() []datatable.Row {
	return []datatable.Row{
		{"name": "Alice", "score": 91, "passed": true, "ignored": "x"},
		{"name": "Bob, Jr.", "score": 42, "passed": false},
		{"name": "Carl"},
	}
}

func TestToCSV(t *testing.T) {
	data, err := ToCSV(gradeModel(), gradeRows())
	require.NoError(t, err)
	assert.Equal(t, "Name,score,Passed\nAlice,91,true\n\"Bob, Jr.\",42,false\nCarl,,\n", string(data))
}

func TestToCSVEmptyRowsWritesHeader(t *testing.T) {
	data, err := ToCSV(gradeModel(), nil)
	require.NoError(t, err)
	assert.Equal(t, "Name,score,Passed\n", string(data))
}

func TestToJSON(t *testing.T) {
	data, err := ToJSON(gradeModel(), gradeRows()[:2])
	require.NoError(t, err)

	var got []map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	require.Len(t, got, 2)
	assert.Equal(t, map[string]any{"name": "Alice", "score": float64(91), "passed": true}, got[0])
	assert.Equal(t, false, got[1]["passed"])
}

func TestToSpreadsheet(t *testing.T) {
	data, err := ToSpreadsheet(gradeModel(), gradeRows())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetName}, f.GetSheetList())
	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"Name", "score", "Passed"}, rows[0])
	assert.Equal(t, "Alice", rows[1][0])
	assert.Equal(t, "91", rows[1][1])
	assert.Equal(t, "Carl", rows[3][0])

	width, err := f.GetColWidth(SheetName, "A")
	require.NoError(t, err)
	assert.InDelta(t, 20.0, width, 0.01)
}

func TestToArrowTypes(t *testing.T) {
	model := datatable.MustColumnModel(
		datatable.Column{Key: "name"},
		datatable.Column{Key: "score", Type: datatable.TypeInt},
		datatable.Column{Key: "mixed", Type: datatable.TypeInt},
		datatable.Column{Key: "born", Type: datatable.TypeDate},
	)
	rows := []datatable.Row{
		{"name": "a", "score": 1, "mixed": "7", "born": "2001-02-03"},
		{"name": "b", "mixed": "n/a"},
	}

	rec, err := ToArrow(model, rows, memory.NewGoAllocator())
	require.NoError(t, err)
	defer rec.Release()

	assert.EqualValues(t, 2, rec.NumRows())
	assert.Equal(t, arrow.PrimitiveTypes.Int64, rec.Schema().Field(1).Type)
	assert.Equal(t, arrow.BinaryTypes.String, rec.Schema().Field(2).Type)
	assert.Equal(t, arrow.FixedWidthTypes.Date32, rec.Schema().Field(3).Type)

	scores := rec.Column(1).(*array.Int64)
	assert.EqualValues(t, 1, scores.Value(0))
	assert.True(t, scores.IsNull(1))
	assert.Equal(t, "n/a", rec.Column(2).(*array.String).Value(1))
}

func TestToParquetRoundTrip(t *testing.T) {
	data, err := ToParquet(gradeModel(), gradeRows())
	require.NoError(t, err)

	pf, err := file.NewParquetReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer pf.Close()

	reader, err := pqarrow.NewFileReader(pf, pqarrow.ArrowReadProperties{}, memory.DefaultAllocator)
	require.NoError(t, err)
	table, err := reader.ReadTable(context.Background())
	require.NoError(t, err)
	defer table.Release()

	assert.EqualValues(t, 3, table.NumRows())
	assert.Equal(t, "name", table.Schema().Field(0).Name)
	assert.Equal(t, arrow.PrimitiveTypes.Int64, table.Schema().Field(1).Type)
}

func TestBuild(t *testing.T) {
	a, err := Build(FormatCSV, "", gradeModel(), gradeRows())
	require.NoError(t, err)
	assert.Equal(t, "export.csv", a.Filename)
	assert.Equal(t, "text/csv", a.MIMEType)

	a, err = Build(FormatSpreadsheet, "grades.xlsx", gradeModel(), gradeRows())
	require.NoError(t, err)
	assert.Equal(t, "grades.xlsx", a.Filename)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", a.MIMEType)
	assert.NotEmpty(t, a.Data)
}

func TestBuildUnknownFormat(t *testing.T) {
	_, err := Build(Format(42), "", gradeModel(), gradeRows())
	assert.ErrorIs(t, err, datatable.ErrExportFailed)
	assert.ErrorIs(t, err, datatable.ErrUnsupportedFormat)
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{
		"csv": FormatCSV, ".XLSX": FormatSpreadsheet, "excel": FormatSpreadsheet,
		"parquet": FormatParquet, "json": FormatJSON,
	} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseFormat("pdf")
	assert.ErrorIs(t, err, datatable.ErrUnsupportedFormat)

	f, err := FormatForPath("/tmp/out/grades.json")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)
	assert.Equal(t, "export.xlsx", FormatSpreadsheet.DefaultFilename())
}
