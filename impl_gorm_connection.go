package sqlpager

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/samber/lo"
	"gorm.io/gorm"
)

// GORMConnection implements Connection on top of any gorm dialector.
//
// The connection runs in autocommit mode, so Commit has nothing to do.
//
// IMPORTANT:
// The context passed to Cursor.Execute bounds the lifetime of the result
// stream: cancelling it closes the rows of the current statement.
type GORMConnection struct {
	db *gorm.DB

	// singleStream allows one open result stream across all cursors.
	singleStream bool
	mu           sync.Mutex
	cursors      []*gormCursor
}

type GORMOption func(c *GORMConnection)

// WithSingleStream is meant for pools limited to one connection (sqlite).
// Executing a statement on any cursor first closes the open streams of the
// other cursors, so an abandoned paginator cannot hold the only connection.
// Paginators whose stream was closed this way see their result as exhausted
// until they execute again.
func WithSingleStream() GORMOption {
	return func(c *GORMConnection) {
		c.singleStream = true
	}
}

func NewGORMConnection(db *gorm.DB, opts ...GORMOption) *GORMConnection {
	c := &GORMConnection{
		db: db,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// DB returns the underlying gorm handle.
func (c *GORMConnection) DB() *gorm.DB {
	if c == nil {
		return nil
	}

	return c.db
}

// Cursor - implements Connection.
func (c *GORMConnection) Cursor(_ context.Context) (Cursor, error) {
	if c == nil || c.db == nil {
		return nil, fmt.Errorf("%w: gorm connection is not initialized", ErrInvalidArgument)
	}

	cursor := &gormCursor{
		conn:     c,
		db:       c.db,
		rowCount: RowCountUndefined,
	}

	c.mu.Lock()
	c.cursors = append(c.cursors, cursor)
	c.mu.Unlock()

	return cursor, nil
}

// Commit - implements Connection.
func (c *GORMConnection) Commit(_ context.Context) error {
	return nil
}

func (c *GORMConnection) Ping(ctx context.Context) error {
	sqlDB, err := c.sqlDB()
	if err != nil {
		return err
	}

	return sqlDB.PingContext(ctx)
}

// Close closes the connection pool.
func (c *GORMConnection) Close(_ context.Context) error {
	sqlDB, err := c.sqlDB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}

// releaseStreams closes the open streams of every cursor but current when the
// connection runs in single stream mode.
func (c *GORMConnection) releaseStreams(current *gormCursor) {
	if !c.singleStream {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, cursor := range c.cursors {
		if cursor != current {
			_ = cursor.closeStream()
		}
	}
}

func (c *GORMConnection) forget(cursor *gormCursor) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cursors = slices.DeleteFunc(c.cursors, func(item *gormCursor) bool {
		return item == cursor
	})
}

func (c *GORMConnection) sqlDB() (*sql.DB, error) {
	if c == nil || c.db == nil {
		return nil, fmt.Errorf("%w: gorm connection is not initialized", ErrInvalidArgument)
	}

	return c.db.DB()
}

var _ Connection = (*GORMConnection)(nil)

type gormCursor struct {
	conn     *GORMConnection
	db       *gorm.DB
	rows     *sql.Rows
	columns  []string
	rowCount int64
}

// Execute - implements Cursor.
//
// Data modifying statements go through Exec so that the affected row count is
// known. Everything else is queried: a result with columns is kept open as a
// stream, a result without columns is drained and reports RowCountUndefined.
func (c *gormCursor) Execute(ctx context.Context, statement string) error {
	if err := c.closeStream(); err != nil {
		return err
	}
	c.conn.releaseStreams(c)
	c.columns = nil
	c.rowCount = RowCountUndefined

	db := c.db.WithContext(ctx)

	if isModifyingStatement(statement) {
		res := db.Exec(statement)
		if res.Error != nil {
			return res.Error
		}
		c.rowCount = res.RowsAffected

		return nil
	}

	rows, err := db.Raw(statement).Rows()
	if err != nil {
		return err
	}

	columns, err := rows.Columns()
	if err != nil {
		_ = rows.Close()
		return err
	}

	if len(columns) == 0 {
		// Some drivers run the statement on the first step only.
		for rows.Next() {
		}
		if err = rows.Err(); err != nil {
			_ = rows.Close()
			return err
		}

		return rows.Close()
	}

	c.rows = rows
	c.columns = columns

	return nil
}

// FetchMany - implements Cursor.
func (c *gormCursor) FetchMany(_ context.Context, size int) ([]Row, error) {
	if c.rows == nil {
		return nil, nil
	}

	ret := make([]Row, 0, min(size, 256))
	for len(ret) < size {
		if !c.rows.Next() {
			err := c.rows.Err()
			_ = c.closeStream()
			if err != nil {
				return nil, err
			}

			break
		}

		values := make([]any, len(c.columns))
		dest := lo.Map(values, func(_ any, i int) any {
			return &values[i]
		})
		if err := c.rows.Scan(dest...); err != nil {
			return nil, err
		}

		ret = append(ret, normalizeValues(values))
	}

	return ret, nil
}

// Description - implements Cursor.
func (c *gormCursor) Description() []string {
	return c.columns
}

// RowCount - implements Cursor.
func (c *gormCursor) RowCount() int64 {
	return c.rowCount
}

// Close - implements Cursor.
func (c *gormCursor) Close() error {
	c.conn.forget(c)

	return c.closeStream()
}

func (c *gormCursor) closeStream() error {
	if c.rows == nil {
		return nil
	}

	rows := c.rows
	c.rows = nil

	return rows.Close()
}

var _ Cursor = (*gormCursor)(nil)

// normalizeValues turns driver byte slices into strings so rows stay printable
// and do not alias driver buffers.
func normalizeValues(values []any) Row {
	return lo.Map(values, func(v any, _ int) any {
		if b, ok := v.([]byte); ok {
			return string(b)
		}

		return v
	})
}

var _modifyingKeywords = []string{"INSERT", "UPDATE", "DELETE", "REPLACE", "MERGE", "UPSERT"}

// isModifyingStatement reports whether the statement is a data modifying one
// without a RETURNING clause. Only the leading keyword is inspected, the same
// way sqlite3 and psycopg decide whether a rowcount applies.
func isModifyingStatement(statement string) bool {
	fields := strings.Fields(strings.ToUpper(stripLeadingComments(statement)))
	if len(fields) == 0 {
		return false
	}

	keyword := strings.TrimLeft(fields[0], "(")
	if !lo.Contains(_modifyingKeywords, keyword) {
		return false
	}

	return !lo.Contains(fields, "RETURNING")
}

func stripLeadingComments(statement string) string {
	s := strings.TrimSpace(statement)
	for {
		switch {
		case strings.HasPrefix(s, "--"):
			idx := strings.IndexByte(s, '\n')
			if idx == -1 {
				return ""
			}
			s = strings.TrimSpace(s[idx+1:])
		case strings.HasPrefix(s, "/*"):
			idx := strings.Index(s, "*/")
			if idx == -1 {
				return ""
			}
			s = strings.TrimSpace(s[idx+2:])
		default:
			return s
		}
	}
}
