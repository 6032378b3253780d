package datatable

import "errors"

// Common errors returned by the datatable packages.
var (
	// ErrInvalidColumn is returned when a column definition is invalid.
	ErrInvalidColumn = errors.New("invalid column")

	// ErrInvalidRow is returned when a row index is out of range.
	ErrInvalidRow = errors.New("invalid row index")

	// ErrDuplicateColumn is returned when two columns share a key.
	ErrDuplicateColumn = errors.New("duplicate column key")

	// ErrColumnNotFound is returned when a column key is not in the model.
	ErrColumnNotFound = errors.New("column not found")

	// ErrColumnNotSortable is returned when sorting by a column that is not sortable.
	ErrColumnNotSortable = errors.New("column is not sortable")

	// ErrColumnNotFilterable is returned when filtering a column that is not filterable.
	ErrColumnNotFilterable = errors.New("column is not filterable")

	// ErrInvalidSortDirective is returned for malformed sort directives.
	ErrInvalidSortDirective = errors.New("invalid sort directive")

	// ErrInvalidWidth is returned for negative column widths.
	ErrInvalidWidth = errors.New("invalid column width")

	// ErrTypeMismatch is returned when a value cannot be read as the declared type.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrEmptyData is returned when data is empty where it shouldn't be.
	ErrEmptyData = errors.New("data is empty")

	// ErrUnsupportedFormat is returned for unknown file or export formats.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrExportFailed is returned when export operation fails.
	ErrExportFailed = errors.New("export failed")

	// ErrInvalidScript is returned when a computed column expression does not compile.
	ErrInvalidScript = errors.New("invalid column expression")
)
