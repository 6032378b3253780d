package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"campusadmin/datatable"
)

func studentModel() *datatable.ColumnModel {
	return datatable.MustColumnModel(
		datatable.Column{Key: "name", Filterable: true, Sortable: true},
		datatable.Column{Key: "faculty", Filterable: true},
		datatable.Column{Key: "year", Type: datatable.TypeInt, Filterable: true},
	)
}

func studentRows() []datatable.Row {
	return []datatable.Row{
		{"name": "Alice Mbeki", "faculty": "Science", "year": 2},
		{"name": "Bob Stone", "faculty": "Arts", "year": 1},
		{"name": "Alina Ruiz", "faculty": "Science", "year": 3},
		{"name": "Carl", "year": 2},
	}
}

func TestApplyWithNoFiltersIsIdentity(t *testing.T) {
	rows := studentRows()

	for _, state := range []datatable.FilterState{nil, {}, {"name": ""}} {
		got := Apply(rows, studentModel(), state)
		assert.Equal(t, rows, got)
	}
}

func TestApplyIsCaseInsensitiveSubstring(t *testing.T) {
	got := Apply(studentRows(), studentModel(), datatable.FilterState{"name": "ALI"})
	assert.Equal(t, []datatable.Row{studentRows()[0], studentRows()[2]}, got)
}

func TestApplyRequiresEveryFilter(t *testing.T) {
	// Alina matches name and faculty but not year, so she is excluded.
	state := datatable.FilterState{"name": "ali", "faculty": "sci", "year": "2"}
	got := Apply(studentRows(), studentModel(), state)
	assert.Equal(t, []datatable.Row{studentRows()[0]}, got)
}

func TestApplyMissingValueFailsNonEmptyPattern(t *testing.T) {
	got := Apply(studentRows(), studentModel(), datatable.FilterState{"faculty": "S"})
	for _, r := range got {
		assert.NotEqual(t, "Carl", r["name"])
	}
	assert.Len(t, got, 3)
}

func TestApplyNumbersFilterOnTheirText(t *testing.T) {
	got := Apply(studentRows(), studentModel(), datatable.FilterState{"year": "3"})
	assert.Equal(t, []datatable.Row{studentRows()[2]}, got)
}

func TestApplyKeyOutsideModelReadsRow(t *testing.T) {
	rows := []datatable.Row{{"name": "a", "note": "VIP"}, {"name": "b", "note": "regular"}}
	got := Apply(rows, studentModel(), datatable.FilterState{"note": "vip"})
	assert.Equal(t, rows[:1], got)
}

func TestApplyDoesNotAliasInput(t *testing.T) {
	rows := studentRows()
	got := Apply(rows, studentModel(), nil)
	got[0] = datatable.Row{"name": "changed"}
	assert.Equal(t, "Alice Mbeki", rows[0]["name"])
}

func TestCompositeDescription(t *testing.T) {
	c := FromState(studentModel(), datatable.FilterState{"name": "Ali", "faculty": "sci", "year": ""})
	assert.Equal(t, `faculty ~ "sci" AND name ~ "ali"`, c.Description())
	assert.Equal(t, "no filter", (&Composite{}).Description())
}
