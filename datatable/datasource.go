package datatable

// DataSource provides read-only access to an already-fetched page of rows.
// Implementations must be safe for concurrent reads.
type DataSource interface {
	// Name returns a display name for the data, e.g. a file or table name.
	Name() string

	// Columns returns the columns describing the rows, in display order.
	Columns() []Column

	// Rows returns all rows. Callers must not modify the returned rows.
	Rows() []Row

	// Metadata returns optional metadata about the data source.
	// Returns an empty Metadata map if no metadata is available.
	Metadata() Metadata
}
