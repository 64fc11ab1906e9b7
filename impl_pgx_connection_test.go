package sqlpager

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func Test_rowCountOf(t *testing.T) {
	tests := []struct {
		tag  string
		want int64
	}{
		{tag: "INSERT 0 25", want: 25},
		{tag: "UPDATE 2", want: 2},
		{tag: "UPDATE 0", want: 0},
		{tag: "DELETE 3", want: 3},
		{tag: "SELECT 7", want: 7},
		{tag: "MERGE 4", want: 4},
		{tag: "CREATE TABLE", want: RowCountUndefined},
		{tag: "BEGIN", want: RowCountUndefined},
		{tag: "", want: RowCountUndefined},
	}
	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			require.Equal(t, tt.want, rowCountOf(pgconn.NewCommandTag(tt.tag)))
		})
	}
}

func Test_PGXConnection_nil(t *testing.T) {
	var conn *PGXConnection

	_, err := conn.Cursor(context.Background())
	require.ErrorIs(t, err, ErrInvalidArgument)
	require.ErrorIs(t, conn.Commit(context.Background()), ErrInvalidArgument)
	require.ErrorIs(t, conn.Ping(context.Background()), ErrInvalidArgument)
	require.NoError(t, conn.Close(context.Background()))
	require.Nil(t, conn.Conn())
}

// fakePGXRows is an open result stream that only records being closed.
type fakePGXRows struct {
	closed bool
}

func (r *fakePGXRows) Close()                                       { r.closed = true }
func (r *fakePGXRows) Err() error                                   { return nil }
func (r *fakePGXRows) CommandTag() pgconn.CommandTag                { return pgconn.NewCommandTag("SELECT 0") }
func (r *fakePGXRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakePGXRows) Next() bool                                   { return false }
func (r *fakePGXRows) Scan(_ ...any) error                          { return nil }
func (r *fakePGXRows) Values() ([]any, error)                       { return nil, nil }
func (r *fakePGXRows) RawValues() [][]byte                          { return nil }
func (r *fakePGXRows) Conn() *pgx.Conn                              { return nil }

var _ pgx.Rows = (*fakePGXRows)(nil)

func newPGXCursor(t *testing.T, conn *PGXConnection) *pgxCursor {
	t.Helper()

	cursor, err := conn.Cursor(context.Background())
	require.NoError(t, err)

	return cursor.(*pgxCursor)
}

func Test_PGXConnection_forgetsClosedCursors(t *testing.T) {
	conn := NewPGXConnection(&pgx.Conn{})

	first := newPGXCursor(t, conn)
	second := newPGXCursor(t, conn)
	third := newPGXCursor(t, conn)
	require.Len(t, conn.cursors, 3)

	require.NoError(t, first.Close())
	require.NoError(t, third.Close())
	require.NoError(t, third.Close())
	require.Equal(t, []*pgxCursor{second}, conn.cursors)
}

func Test_PGXConnection_releaseStreams(t *testing.T) {
	conn := NewPGXConnection(&pgx.Conn{})

	abandoned := newPGXCursor(t, conn)
	current := newPGXCursor(t, conn)

	abandonedRows := &fakePGXRows{}
	currentRows := &fakePGXRows{}
	abandoned.rows = abandonedRows
	current.rows = currentRows

	conn.releaseStreams(current)

	require.True(t, abandonedRows.closed)
	require.Nil(t, abandoned.rows)
	require.False(t, currentRows.closed)
	require.Same(t, currentRows, current.rows)
}

// Test_PGX_Paging runs against a live server named by SQLPAGER_PG_DSN.
func Test_PGX_Paging(t *testing.T) {
	dsn := os.Getenv("SQLPAGER_PG_DSN")
	if dsn == "" {
		t.Skip("SQLPAGER_PG_DSN is not set")
	}

	ctx := context.Background()
	conn, err := Open(ctx, DriverPGX, dsn)
	require.NoError(t, err)
	defer conn.Close(ctx)

	run := func(statement string) *Page {
		p, err := NewQueryPaginator(ctx, conn, statement, 10)
		require.NoError(t, err)
		defer p.Close()

		page, err := p.Next(ctx)
		require.NoError(t, err)

		return page
	}

	require.Equal(t, []Row{{"Successfully executed!"}},
		run("CREATE TEMPORARY TABLE sqlpager_t1 (a text, b int PRIMARY KEY)").Values())
	require.Equal(t, []Row{{"Affected rows: 25"}},
		run("INSERT INTO sqlpager_t1 SELECT chr(96 + g), g FROM generate_series(1, 25) g").Values())
	require.Equal(t, []Row{{"Affected rows: 2"}},
		run("UPDATE sqlpager_t1 SET a = 'sss' WHERE b = 2 OR b = 3").Values())

	p, err := NewQueryPaginator(ctx, conn, "SELECT a, b FROM sqlpager_t1 ORDER BY b", 7)
	require.NoError(t, err)
	defer p.Close()
	require.Equal(t, []string{"a", "b"}, p.Headers())

	var page *Page
	for _, direction := range parseSteps("FFFB") {
		page, err = p.collect(ctx, direction)
		require.NoError(t, err)
	}
	require.Equal(t, span(8, 14), page.RowNumbers())
	require.Equal(t, 2, p.CurrentPage())

	page, err = p.Next(ctx)
	require.NoError(t, err)
	require.Equal(t, span(15, 21), page.RowNumbers())
	require.Equal(t, 3, p.CurrentPage())
}
