package sqlpager

import (
	"context"
	"fmt"
	"slices"
)

// fakeDriverError stands in for a driver native error type.
type fakeDriverError struct {
	msg string
}

func (e *fakeDriverError) Error() string {
	return e.msg
}

type fakeResult struct {
	columns  []string
	rows     []Row
	rowCount int64
}

// newFakeTable builds a projection with columns (a, b) where b equals the
// 1-based row position.
func newFakeTable(n int) *fakeResult {
	rows := make([]Row, 0, n)
	for i := 1; i <= n; i++ {
		rows = append(rows, Row{fmt.Sprintf("v%d", i), int64(i)})
	}

	return &fakeResult{
		columns:  []string{"a", "b"},
		rows:     rows,
		rowCount: RowCountUndefined,
	}
}

func newFakeEffect(rowCount int64) *fakeResult {
	return &fakeResult{
		rowCount: rowCount,
	}
}

type fakeConnection struct {
	results map[string]*fakeResult

	cursorErr error
	commitErr error

	cursorCalls int
	commits     int
	cursor      *fakeCursor
}

func newFakeConnection(results map[string]*fakeResult) *fakeConnection {
	return &fakeConnection{
		results: results,
	}
}

func (c *fakeConnection) Cursor(_ context.Context) (Cursor, error) {
	c.cursorCalls++
	if c.cursorErr != nil {
		return nil, c.cursorErr
	}

	c.cursor = &fakeCursor{conn: c}

	return c.cursor, nil
}

func (c *fakeConnection) Commit(_ context.Context) error {
	c.commits++

	return c.commitErr
}

type fakeCursor struct {
	conn    *fakeConnection
	current *fakeResult
	pos     int

	executeErr error
	fetchErr   error
	onFetch    func()

	executes int
	fetches  int
	closed   bool
}

func (c *fakeCursor) Execute(_ context.Context, statement string) error {
	c.executes++
	if c.executeErr != nil {
		return c.executeErr
	}

	res, ok := c.conn.results[statement]
	if !ok {
		return &fakeDriverError{msg: fmt.Sprintf("no such statement: %s", statement)}
	}

	c.current = res
	c.pos = 0

	return nil
}

func (c *fakeCursor) FetchMany(_ context.Context, size int) ([]Row, error) {
	c.fetches++
	if c.onFetch != nil {
		c.onFetch()
	}
	if c.fetchErr != nil {
		return nil, c.fetchErr
	}

	if c.current == nil || c.current.columns == nil {
		return nil, nil
	}

	end := min(c.pos+size, len(c.current.rows))
	start := min(c.pos, end)
	batch := slices.Clone(c.current.rows[start:end])
	c.pos = end

	return batch, nil
}

func (c *fakeCursor) Description() []string {
	if c.current == nil {
		return nil
	}

	return c.current.columns
}

func (c *fakeCursor) RowCount() int64 {
	if c.current == nil {
		return RowCountUndefined
	}

	return c.current.rowCount
}

func (c *fakeCursor) Close() error {
	c.closed = true

	return nil
}
