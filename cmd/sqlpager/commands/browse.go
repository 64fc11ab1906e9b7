package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Alp4ka/sqlpager"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const (
	commandQuit    = `\q`
	commandHeaders = `\h`
	prompt         = "sqlpager> "
)

func newBrowseCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Args:  cobra.NoArgs,
		Short: "Interactively run statements and page through their results",
		Long: `Read lines from stdin. A line is either a statement, a direction
(n, next, p, prev, back, ...), \h to print the headers or \q to quit.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conn, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer conn.Close(cmd.Context())

			s := newSession(conn, a.cfg.PageSize, cmd.OutOrStdout(), a.logger)
			return s.run(cmd.Context(), cmd.InOrStdin())
		},
	}
}

// session holds at most one live paginator. Submitting a statement replaces
// it.
type session struct {
	conn     sqlpager.Connection
	pageSize int
	out      io.Writer
	logger   logrus.FieldLogger
	now      func() time.Time

	paginator *sqlpager.QueryPaginator
	pageLabel string
}

func newSession(conn sqlpager.Connection, pageSize int, out io.Writer, logger logrus.FieldLogger) *session {
	return &session{
		conn:     conn,
		pageSize: pageSize,
		out:      out,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *session) run(ctx context.Context, in io.Reader) error {
	defer s.close()

	scanner := bufio.NewScanner(in)
	fmt.Fprint(s.out, prompt)
	for scanner.Scan() {
		if s.handle(ctx, strings.TrimSpace(scanner.Text())) {
			return nil
		}
		fmt.Fprint(s.out, prompt)
	}

	return scanner.Err()
}

// handle processes one input line and reports whether the session is over.
func (s *session) handle(ctx context.Context, line string) bool {
	switch line {
	case "":
		return false
	case commandQuit:
		return true
	case commandHeaders:
		s.printHeaders()
		return false
	}

	if direction, err := sqlpager.ParseDirection(line); err == nil {
		s.feed(ctx, direction)
		return false
	}

	s.submit(ctx, line)

	return false
}

// submit closes the current paginator, executes statement and shows its
// first page.
func (s *session) submit(ctx context.Context, statement string) {
	s.close()

	p, err := sqlpager.NewQueryPaginator(ctx, s.conn, statement, s.pageSize, sqlpager.WithLogger(s.logger))
	if err != nil {
		s.fail(err)
		return
	}
	s.paginator = p

	s.feed(ctx, sqlpager.DirectionForward)
}

func (s *session) feed(ctx context.Context, direction sqlpager.Direction) {
	if s.paginator == nil {
		fmt.Fprintln(s.out, "no statement, enter one first")
		return
	}

	first := !s.paginator.Fetched()

	move := lo.Ternary(direction.IsForward(), s.paginator.Next, s.paginator.Previous)
	page, err := move(ctx)
	if err != nil {
		s.fail(err)
		return
	}

	// An empty first page still gets its headers. Any later empty feed keeps
	// the previous table on screen.
	if page.IsEmpty() && !first {
		fmt.Fprintln(s.out, "no more rows")
	} else if err = renderPage(s.out, page); err != nil {
		s.fail(err)
		return
	}
	s.pageLabel = fmt.Sprintf("page %d", page.Number)

	fmt.Fprintf(s.out, "%s, updated at %s\n", s.pageLabel, s.now().Format("15:04:05"))
}

func (s *session) fail(err error) {
	s.pageLabel = ""
	fmt.Fprintf(s.out, "error: %v\n", err)
}

func (s *session) printHeaders() {
	if s.paginator == nil {
		fmt.Fprintln(s.out, "no statement, enter one first")
		return
	}

	fmt.Fprintln(s.out, strings.Join(s.paginator.Headers(), ", "))
}

func (s *session) close() {
	if s.paginator == nil {
		return
	}

	if err := s.paginator.Close(); err != nil {
		s.logger.WithError(err).Warn("cannot close paginator")
	}
	s.paginator = nil
}
