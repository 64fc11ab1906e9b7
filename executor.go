package sqlpager

import "context"

// RowCountUndefined is reported by Cursor.RowCount when the executed statement
// has no meaningful affected-row count (schema definition statements).
const RowCountUndefined int64 = -1

// Row is a single raw result row as returned by the driver.
type Row []any

// Connection is an open database connection borrowed by a QueryPaginator.
//
// The paginator never opens or closes a Connection. It acquires exactly one
// Cursor from it and commits after every statement execution.
type Connection interface {
	Cursor(ctx context.Context) (Cursor, error)
	Commit(ctx context.Context) error
}

// Cursor is a strictly forward-only statement handle.
//
// Execute may be called repeatedly with the same statement: every call resets
// the read position to the start of the result set.
type Cursor interface {
	Execute(ctx context.Context, statement string) error
	// FetchMany returns up to size next rows. An empty result means the
	// result set is exhausted.
	FetchMany(ctx context.Context, size int) ([]Row, error)
	// Description returns column names of the current result set or nil when
	// the executed statement produced no result set.
	Description() []string
	// RowCount returns the number of rows affected by the executed statement
	// or RowCountUndefined.
	RowCount() int64
	Close() error
}

// ResultShape tells which kind of statement a QueryPaginator is serving.
type ResultShape int

const (
	ShapeUnknown ResultShape = iota
	// ShapeProjection is a statement that produced a column descriptor.
	ShapeProjection
	// ShapeEffect is a mutation or schema statement without a result set.
	ShapeEffect
)

func (s ResultShape) String() string {
	switch s {
	case ShapeProjection:
		return "projection"
	case ShapeEffect:
		return "effect"
	default:
		return "unknown"
	}
}

// shapeOf derives the shape from the cursor descriptor after execution.
func shapeOf(c Cursor) ResultShape {
	if c == nil {
		return ShapeUnknown
	}
	if c.Description() == nil {
		return ShapeEffect
	}

	return ShapeProjection
}
