package sqlpager

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"slices"
	"strings"
	"sync"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

// ResultHeader is the only header reported for statements without a result set.
const ResultHeader = "Result"

// ErrPaginatorClosed is returned when feeding a closed paginator.
var ErrPaginatorClosed = errors.New("paginator is closed")

// QueryPaginator pages through the result of a single statement in both
// directions on top of a forward-only Cursor.
//
// Forward pages are read straight from the cursor. Earlier pages are rebuilt
// by executing the statement again and discarding every page before the
// target one, so only one page is resident at a time and a step back costs
// as many round-trips as pages were already visited.
//
// A QueryPaginator serves exactly one statement. Submit a new statement by
// creating a new QueryPaginator.
type QueryPaginator struct {
	pageSize  int
	statement string

	conn   Connection
	cursor Cursor
	feeder feeder

	// pageCounter is the number of non-empty batches read since the last
	// execution. 0 means nothing has been read yet.
	pageCounter int
	fetched     bool
	closed      bool

	// mu serializes feeds. A feed never waits for another one.
	mu     sync.Mutex
	logger logrus.FieldLogger
}

type Option func(p *QueryPaginator)

// WithLogger sets the logger used for execution and page movement records.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(p *QueryPaginator) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewQueryPaginator validates its input, then executes statement on a cursor
// acquired from conn and commits.
//
// Invalid input fails with ErrInvalidArgument before any I/O. Errors coming
// from the connection or cursor are returned as-is.
//
// Paginators left open on a connection that serves one stream at a time
// (DriverSQLite, PGXConnection) lose their stream when this one executes.
func NewQueryPaginator(
	ctx context.Context,
	conn Connection,
	statement string,
	pageSize int,
	opts ...Option,
) (*QueryPaginator, error) {
	err := validateArguments(conn, statement, pageSize)
	if err != nil {
		return nil, fmt.Errorf("cannot create paginator: %w", err)
	}

	p := &QueryPaginator{
		pageSize:  pageSize,
		statement: statement,
		conn:      conn,
		logger:    discardLogger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.WithField("page_size", pageSize)

	if err = p.execute(ctx); err != nil {
		if p.cursor != nil {
			_ = p.cursor.Close()
		}
		return nil, err
	}

	return p, nil
}

func validateArguments(conn Connection, statement string, pageSize int) error {
	if lo.IsNil(conn) {
		return fmt.Errorf("%w: no connection provided", ErrInvalidArgument)
	}

	if strings.TrimSpace(statement) == "" {
		return fmt.Errorf("%w: no statement provided", ErrInvalidArgument)
	}

	if pageSize < 1 {
		return fmt.Errorf("%w: page size must be greater than 0", ErrInvalidArgument)
	}

	return nil
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)

	return l
}

// execute (re)runs the statement from the start of its result set. The page
// counter and the fetched flag start over.
func (p *QueryPaginator) execute(ctx context.Context) error {
	if p.cursor == nil {
		cursor, err := p.conn.Cursor(ctx)
		if err != nil {
			return err
		}
		p.cursor = cursor
	}

	if err := p.cursor.Execute(ctx, p.statement); err != nil {
		return err
	}
	if err := p.conn.Commit(ctx); err != nil {
		return err
	}

	p.pageCounter = 0
	p.fetched = false
	p.feeder = feederFor(shapeOf(p.cursor))

	p.logger.WithField("shape", shapeOf(p.cursor)).Debug("statement executed")

	return nil
}

// advanceOneBatch reads the next pageSize rows and numbers them globally.
// Both the real fetch and the discarded pages of a replay go through here, so
// row numbering is identical however a page was reached.
func (p *QueryPaginator) advanceOneBatch(ctx context.Context) ([]NumberedRow, error) {
	rows, err := p.cursor.FetchMany(ctx, p.pageSize)
	if err != nil {
		return nil, err
	}

	offset := p.pageCounter * p.pageSize
	batch := lo.Map(rows, func(row Row, i int) NumberedRow {
		return NumberedRow{Row: row, Number: offset + i + 1}
	})
	if len(batch) > 0 {
		p.pageCounter++
	}

	return batch, nil
}

// Feed returns the rows of the next or previous page paired with their
// global row numbers.
//
// The sequence is lazy and single use: nothing is read until it is ranged
// over, and every range consumes driver state. Running out of pages is not an
// error, the sequence is simply empty. On failure a single zero row is
// yielded together with the error.
//
// Feeds never run concurrently. A feed requested while another is still
// reading yields ErrFeedInProgress and leaves the paginator untouched.
func (p *QueryPaginator) Feed(ctx context.Context, direction Direction) iter.Seq2[NumberedRow, error] {
	return func(yield func(NumberedRow, error) bool) {
		batch, err := p.feedBatch(ctx, direction)
		if err != nil {
			yield(NumberedRow{}, err)
			return
		}

		for _, row := range batch {
			if !yield(row, nil) {
				return
			}
		}
	}
}

func (p *QueryPaginator) feedBatch(ctx context.Context, direction Direction) ([]NumberedRow, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: paginator is nil", ErrInvalidArgument)
	}

	if !direction.Valid() {
		return nil, fmt.Errorf("%w: invalid direction '%s'", ErrInvalidArgument, direction)
	}

	if !p.mu.TryLock() {
		return nil, ErrFeedInProgress
	}
	defer p.mu.Unlock()

	if p.closed {
		return nil, ErrPaginatorClosed
	}

	if p.feeder == nil {
		return nil, fmt.Errorf("%w: paginator was not created with NewQueryPaginator", ErrInvalidArgument)
	}

	batch, err := p.feeder.feed(ctx, p, direction)
	if err != nil {
		return nil, err
	}
	p.fetched = true

	p.logger.WithFields(logrus.Fields{
		"direction": direction,
		"rows":      len(batch),
		"page":      p.currentPage(),
	}).Debug("page fed")

	return batch, nil
}

// Next feeds forward and collects the result into a Page.
func (p *QueryPaginator) Next(ctx context.Context) (*Page, error) {
	return p.collect(ctx, DirectionForward)
}

// Previous feeds backward and collects the result into a Page.
func (p *QueryPaginator) Previous(ctx context.Context) (*Page, error) {
	return p.collect(ctx, DirectionBackward)
}

func (p *QueryPaginator) collect(ctx context.Context, direction Direction) (*Page, error) {
	rows := make([]NumberedRow, 0)
	for row, err := range p.Feed(ctx, direction) {
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}

	return &Page{
		Number:  p.CurrentPage(),
		Headers: p.Headers(),
		Shape:   p.Shape(),
		Rows:    rows,
	}, nil
}

// Headers returns the column names of a projection, or ["Result"] for an
// effect statement and before the shape is known.
func (p *QueryPaginator) Headers() []string {
	if p.Shape() == ShapeProjection {
		return slices.Clone(p.cursor.Description())
	}

	return []string{ResultHeader}
}

// Shape is derived from the cursor on every call.
func (p *QueryPaginator) Shape() ResultShape {
	if p == nil {
		return ShapeUnknown
	}

	return shapeOf(p.cursor)
}

// IsProjection reports whether the statement produced a result set. It is
// false while the shape is unknown, use Shape to tell the two apart.
func (p *QueryPaginator) IsProjection() bool {
	return p.Shape() == ShapeProjection
}

// CurrentPage returns the page shown to the caller. Page 1 is reported until
// the first non-empty batch has been read, so "nothing read yet" and "first
// page" look the same from the outside.
func (p *QueryPaginator) CurrentPage() int {
	if p == nil {
		return 1
	}

	return p.currentPage()
}

func (p *QueryPaginator) currentPage() int {
	return max(p.pageCounter, 1)
}

// Fetched reports whether a feed has completed since the statement was last
// executed, including feeds that returned nothing.
func (p *QueryPaginator) Fetched() bool {
	if p == nil {
		return false
	}

	return p.fetched
}

func (p *QueryPaginator) PageSize() int {
	if p == nil {
		return 0
	}

	return p.pageSize
}

func (p *QueryPaginator) Statement() string {
	if p == nil {
		return ""
	}

	return p.statement
}

// Close releases the cursor. The connection stays open, it belongs to the
// caller.
func (p *QueryPaginator) Close() error {
	if p == nil {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	if p.cursor == nil {
		return nil
	}

	return p.cursor.Close()
}
