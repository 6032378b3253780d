package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campusadmin/datatable"
)

func newTestWorkspace(t *testing.T) (dir, csvPath string) {
	t.Helper()
	dir = t.TempDir()
	t.Setenv("CAMPUSADMIN_PREFSDIR", filepath.Join(dir, "prefs"))
	t.Setenv("CAMPUSADMIN_EXPORTDIR", dir)
	csvPath = filepath.Join(dir, "students.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("name,faculty,year\nAlice,Science,2\nBob,Arts,1\nAlina,Science,3\n"), 0o644))
	return dir, csvPath
}

func TestRunSortFilterToStdout(t *testing.T) {
	dir, in := newTestWorkspace(t)
	var stdout, stderr bytes.Buffer

	err := run([]string{"-config", dir, "-in", in, "-sort", "year:desc", "-filter", "faculty=sci", "-out", "-"}, &stdout, &stderr)
	require.NoError(t, err, stderr.String())
	assert.Equal(t, "name,faculty,year\nAlina,Science,3\nAlice,Science,2\n", stdout.String())
	assert.Contains(t, stderr.String(), "Table students (2/3 rows) | Sorted: year ↓")
}

func TestRunRemembersPreferences(t *testing.T) {
	dir, in := newTestWorkspace(t)
	var stdout, stderr bytes.Buffer

	require.NoError(t, run([]string{"-config", dir, "-in", in, "-sort", "name", "-out", "-"}, &stdout, &stderr))

	stdout.Reset()
	require.NoError(t, run([]string{"-config", dir, "-in", in, "-out", "-"}, &stdout, &stderr))
	assert.Equal(t, "name,faculty,year\nAlice,Science,2\nAlina,Science,3\nBob,Arts,1\n", stdout.String())

	stdout.Reset()
	require.NoError(t, run([]string{"-config", dir, "-in", in, "-reset", "-out", "-"}, &stdout, &stderr))
	assert.Equal(t, "name,faculty,year\nAlice,Science,2\nBob,Arts,1\nAlina,Science,3\n", stdout.String())
}

func TestRunExportsSelectionToFile(t *testing.T) {
	dir, in := newTestWorkspace(t)
	out := filepath.Join(dir, "picked.json")
	var stdout, stderr bytes.Buffer

	require.NoError(t, run([]string{"-config", dir, "-in", in, "-select", "0,2", "-out", out}, &stdout, &stderr))
	assert.Contains(t, stdout.String(), "application/json")

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"Alice"`)
	assert.Contains(t, string(data), `"Alina"`)
	assert.NotContains(t, string(data), `"Bob"`)
}

func TestRunRepeatedSelectPositionStaysSelected(t *testing.T) {
	dir, in := newTestWorkspace(t)
	var stdout, stderr bytes.Buffer

	require.NoError(t, run([]string{"-config", dir, "-in", in, "-select", "1,1", "-out", "-"}, &stdout, &stderr))
	assert.Equal(t, "name,faculty,year\nBob,Arts,1\n", stdout.String())
}

func TestRunRejectsBadInput(t *testing.T) {
	dir, in := newTestWorkspace(t)
	var stdout, stderr bytes.Buffer

	assert.Error(t, run([]string{"-config", dir}, &stdout, &stderr))
	assert.ErrorIs(t, run([]string{"-config", dir, "-in", in, "-sort", "salary:asc"}, &stdout, &stderr), datatable.ErrColumnNotFound)
	assert.ErrorIs(t, run([]string{"-config", dir, "-in", in, "-select", "9"}, &stdout, &stderr), datatable.ErrInvalidRow)
}

func TestParseDirective(t *testing.T) {
	d, err := parseDirective("year:desc, name")
	require.NoError(t, err)
	assert.Equal(t, datatable.Directive{
		{Key: "year", Direction: datatable.SortDescending},
		{Key: "name", Direction: datatable.SortAscending},
	}, d)

	_, err = parseDirective("name:up")
	assert.ErrorIs(t, err, datatable.ErrInvalidSortDirective)
	_, err = parseDirective("name,name:desc")
	assert.ErrorIs(t, err, datatable.ErrInvalidSortDirective)
}
