package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/Alp4ka/sqlpager"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newExecCommand(a *app) *cobra.Command {
	var page int

	cmd := &cobra.Command{
		Use:   "exec [statement]",
		Short: "Execute a statement and print one page of its result",
		Long:  `Execute a statement given as arguments or on stdin and print page --page of its result.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			statement := strings.Join(args, " ")
			if strings.TrimSpace(statement) == "" {
				raw, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return err
				}
				statement = string(raw)
			}

			conn, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer conn.Close(cmd.Context())

			return runExec(cmd.Context(), conn, statement, a.cfg.PageSize, page, cmd.OutOrStdout(), a.logger)
		},
	}

	cmd.Flags().IntVarP(&page, "page", "p", 1, "page to print")
	return cmd
}

// runExec feeds forward page times and prints the last page read.
func runExec(
	ctx context.Context,
	conn sqlpager.Connection,
	statement string,
	pageSize int,
	page int,
	out io.Writer,
	logger logrus.FieldLogger,
) error {
	if page < 1 {
		return fmt.Errorf("%w: page must be greater than 0", sqlpager.ErrInvalidArgument)
	}

	p, err := sqlpager.NewQueryPaginator(ctx, conn, statement, pageSize, sqlpager.WithLogger(logger))
	if err != nil {
		return err
	}
	defer p.Close()

	var current *sqlpager.Page
	for range page {
		current, err = p.Next(ctx)
		if err != nil {
			return err
		}
	}

	if current.IsEmpty() && page > 1 {
		fmt.Fprintln(out, "no more rows")
		return nil
	}

	if err = renderPage(out, current); err != nil {
		return err
	}
	fmt.Fprintf(out, "page %d\n", current.Number)

	return nil
}
