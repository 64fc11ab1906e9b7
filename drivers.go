package sqlpager

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	_ "github.com/lib/pq" // registers the "postgres" database/sql driver used by DriverLibPQ
)

const (
	// DriverSQLite keeps a single pooled connection and a single open result
	// stream: running a statement ends the stream of any other paginator on
	// the same connection.
	DriverSQLite   = "sqlite"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverLibPQ    = "libpq"
	DriverPGX      = "pgx"
)

// OpenConnection is a Connection owned by whoever opened it.
type OpenConnection interface {
	Connection
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// Driver opens connections for one database provider.
type Driver interface {
	// Name returns the identifier used in configuration (e.g. "sqlite").
	Name() string
	Open(ctx context.Context, dsn string, opts OpenOptions) (OpenConnection, error)
}

type OpenOptions struct {
	Logger logrus.FieldLogger
	// SlowThreshold marks statements worth a warning. Zero disables it.
	SlowThreshold time.Duration
}

type OpenOption func(o *OpenOptions)

// WithOpenLogger routes driver level logging to logger.
func WithOpenLogger(logger logrus.FieldLogger) OpenOption {
	return func(o *OpenOptions) {
		o.Logger = logger
	}
}

func WithSlowThreshold(threshold time.Duration) OpenOption {
	return func(o *OpenOptions) {
		o.SlowThreshold = threshold
	}
}

var (
	_drivers   = make(map[string]Driver)
	_driversMu sync.RWMutex
)

// RegisterDriver makes a driver available by its name. Registering a name
// twice replaces the previous driver.
func RegisterDriver(driver Driver) {
	_driversMu.Lock()
	defer _driversMu.Unlock()

	_drivers[driver.Name()] = driver
}

// LookupDriver returns a registered driver. Unknown names fail with
// ErrUnknownDriver naming the closest registered one.
func LookupDriver(name string) (Driver, error) {
	_driversMu.RLock()
	defer _driversMu.RUnlock()

	normalized := strings.ToLower(strings.TrimSpace(name))
	driver, ok := _drivers[normalized]
	if !ok {
		return nil, fmt.Errorf("%w '%s'. closest: '%s'", ErrUnknownDriver, name, closest(normalized, lo.Keys(_drivers)))
	}

	return driver, nil
}

// Drivers returns the sorted names of registered drivers.
func Drivers() []string {
	_driversMu.RLock()
	defer _driversMu.RUnlock()

	names := lo.Keys(_drivers)
	slices.Sort(names)

	return names
}

// Open connects to dsn through the named driver and verifies the connection.
func Open(ctx context.Context, driverName string, dsn string, opts ...OpenOption) (OpenConnection, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("%w: no connection string provided", ErrInvalidArgument)
	}

	driver, err := LookupDriver(driverName)
	if err != nil {
		return nil, err
	}

	options := OpenOptions{
		Logger:        discardLogger(),
		SlowThreshold: 200 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(&options)
	}

	conn, err := driver.Open(ctx, strings.TrimSpace(dsn), options)
	if err != nil {
		return nil, fmt.Errorf("cannot open %s connection: %w", driver.Name(), err)
	}

	return conn, nil
}

// gormDriver opens database/sql connections through a gorm dialector.
type gormDriver struct {
	name      string
	dialector func(dsn string) gorm.Dialector
	configure func(db *sql.DB)
	options   []GORMOption
}

func (d gormDriver) Name() string {
	return d.name
}

func (d gormDriver) Open(ctx context.Context, dsn string, opts OpenOptions) (OpenConnection, error) {
	db, err := gorm.Open(d.dialector(dsn), &gorm.Config{
		Logger: newGORMLogger(opts),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	if d.configure != nil {
		d.configure(sqlDB)
	}

	conn := NewGORMConnection(db, d.options...)
	if err = conn.Ping(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	return conn, nil
}

func newGORMLogger(opts OpenOptions) gormlogger.Interface {
	if opts.Logger == nil {
		return gormlogger.Discard
	}

	return gormlogger.New(opts.Logger, gormlogger.Config{
		SlowThreshold:             opts.SlowThreshold,
		LogLevel:                  gormlogger.Warn,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

type pgxDriver struct{}

func (pgxDriver) Name() string {
	return DriverPGX
}

func (pgxDriver) Open(ctx context.Context, dsn string, _ OpenOptions) (OpenConnection, error) {
	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return nil, err
	}

	return NewPGXConnection(conn), nil
}

func init() {
	RegisterDriver(gormDriver{
		name:      DriverSQLite,
		dialector: sqlite.Open,
		// A single connection keeps ":memory:" databases alive and in one piece.
		configure: func(db *sql.DB) {
			db.SetMaxOpenConns(1)
		},
		options: []GORMOption{WithSingleStream()},
	})
	RegisterDriver(gormDriver{
		name:      DriverMySQL,
		dialector: mysql.Open,
	})
	RegisterDriver(gormDriver{
		name:      DriverPostgres,
		dialector: postgres.Open,
	})
	RegisterDriver(gormDriver{
		name: DriverLibPQ,
		dialector: func(dsn string) gorm.Dialector {
			return postgres.New(postgres.Config{
				DriverName: "postgres",
				DSN:        dsn,
			})
		},
	})
	RegisterDriver(pgxDriver{})
}
