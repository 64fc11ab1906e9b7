package sqlpager

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/lo"
)

// txStatusInTransaction is the ReadyForQuery status of a session inside an
// open transaction block.
const txStatusInTransaction = 'T'

// PGXConnection implements Connection natively over a single pgx connection.
//
// Statements run through the simple query protocol, so any statement text the
// server accepts can be paged, including utility statements.
//
// A pgx connection carries one result stream at a time. Executing a statement
// on any cursor closes the open streams of the other cursors first.
type PGXConnection struct {
	conn    *pgx.Conn
	cursors []*pgxCursor
}

func NewPGXConnection(conn *pgx.Conn) *PGXConnection {
	return &PGXConnection{
		conn: conn,
	}
}

// Conn returns the underlying pgx connection.
func (c *PGXConnection) Conn() *pgx.Conn {
	if c == nil {
		return nil
	}

	return c.conn
}

// Cursor - implements Connection.
func (c *PGXConnection) Cursor(_ context.Context) (Cursor, error) {
	if c == nil || c.conn == nil {
		return nil, fmt.Errorf("%w: pgx connection is not initialized", ErrInvalidArgument)
	}

	cursor := &pgxCursor{
		owner:    c,
		conn:     c.conn,
		rowCount: RowCountUndefined,
	}
	c.cursors = append(c.cursors, cursor)

	return cursor, nil
}

// Commit - implements Connection. A session in autocommit mode has nothing to
// commit. An explicit transaction block is committed once no result stream is
// open on the connection.
func (c *PGXConnection) Commit(ctx context.Context) error {
	if c == nil || c.conn == nil {
		return fmt.Errorf("%w: pgx connection is not initialized", ErrInvalidArgument)
	}

	if c.conn.PgConn().TxStatus() != txStatusInTransaction {
		return nil
	}

	streaming := lo.ContainsBy(c.cursors, func(cursor *pgxCursor) bool {
		return cursor.rows != nil
	})
	if streaming {
		return nil
	}

	_, err := c.conn.Exec(ctx, "COMMIT")

	return err
}

func (c *PGXConnection) Ping(ctx context.Context) error {
	if c == nil || c.conn == nil {
		return fmt.Errorf("%w: pgx connection is not initialized", ErrInvalidArgument)
	}

	return c.conn.Ping(ctx)
}

func (c *PGXConnection) Close(ctx context.Context) error {
	if c == nil || c.conn == nil {
		return nil
	}

	for _, cursor := range slices.Clone(c.cursors) {
		_ = cursor.Close()
	}

	return c.conn.Close(ctx)
}

// releaseStreams closes the open streams of every cursor but current.
func (c *PGXConnection) releaseStreams(current *pgxCursor) {
	for _, cursor := range c.cursors {
		if cursor != current {
			_ = cursor.closeStream()
		}
	}
}

func (c *PGXConnection) forget(cursor *pgxCursor) {
	c.cursors = slices.DeleteFunc(c.cursors, func(item *pgxCursor) bool {
		return item == cursor
	})
}

var _ Connection = (*PGXConnection)(nil)

type pgxCursor struct {
	owner    *PGXConnection
	conn     *pgx.Conn
	rows     pgx.Rows
	columns  []string
	rowCount int64
}

// Execute - implements Cursor.
func (c *pgxCursor) Execute(ctx context.Context, statement string) error {
	_ = c.closeStream()
	c.owner.releaseStreams(c)
	c.columns = nil
	c.rowCount = RowCountUndefined

	rows, err := c.conn.Query(ctx, statement, pgx.QueryExecModeSimpleProtocol)
	if err != nil {
		return err
	}

	fields := rows.FieldDescriptions()
	if len(fields) == 0 {
		rows.Close()
		if err = rows.Err(); err != nil {
			return err
		}
		c.rowCount = rowCountOf(rows.CommandTag())

		return nil
	}

	c.rows = rows
	c.columns = lo.Map(fields, func(field pgconn.FieldDescription, _ int) string {
		return field.Name
	})

	return nil
}

// FetchMany - implements Cursor.
func (c *pgxCursor) FetchMany(_ context.Context, size int) ([]Row, error) {
	if c.rows == nil {
		return nil, nil
	}

	ret := make([]Row, 0, min(size, 256))
	for len(ret) < size {
		if !c.rows.Next() {
			c.rows.Close()
			err := c.rows.Err()
			c.rows = nil
			if err != nil {
				return nil, err
			}

			break
		}

		values, err := c.rows.Values()
		if err != nil {
			return nil, err
		}

		ret = append(ret, normalizeValues(values))
	}

	return ret, nil
}

// Description - implements Cursor.
func (c *pgxCursor) Description() []string {
	return c.columns
}

// RowCount - implements Cursor.
func (c *pgxCursor) RowCount() int64 {
	return c.rowCount
}

// Close - implements Cursor.
func (c *pgxCursor) Close() error {
	c.owner.forget(c)

	return c.closeStream()
}

func (c *pgxCursor) closeStream() error {
	if c.rows == nil {
		return nil
	}

	c.rows.Close()
	err := c.rows.Err()
	c.rows = nil

	return err
}

var _ Cursor = (*pgxCursor)(nil)

// rowCountOf maps a command tag onto the rowcount convention: data statements
// report affected rows, utility statements report RowCountUndefined.
func rowCountOf(tag pgconn.CommandTag) int64 {
	if tag.Insert() || tag.Update() || tag.Delete() || tag.Select() || strings.HasPrefix(tag.String(), "MERGE") {
		return tag.RowsAffected()
	}

	return RowCountUndefined
}
