package sqlpager

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// mockDialect builds a gorm dialector on top of a sqlmock connection.
type mockDialect struct {
	name      string
	dialector func(conn gorm.ConnPool) gorm.Dialector
}

var mockDialects = []mockDialect{
	{
		name: "mysql",
		dialector: func(conn gorm.ConnPool) gorm.Dialector {
			return mysql.New(mysql.Config{
				Conn:                      conn,
				SkipInitializeWithVersion: true,
			})
		},
	},
	{
		name: "postgres",
		dialector: func(conn gorm.ConnPool) gorm.Dialector {
			return postgres.New(postgres.Config{
				Conn: conn,
			})
		},
	},
}

func newGORMMock(t *testing.T, dialect mockDialect, opts ...GORMOption) (*GORMConnection, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = mockDB.Close()
	})

	db, err := gorm.Open(dialect.dialector(mockDB), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)

	return NewGORMConnection(db, opts...), mock
}
