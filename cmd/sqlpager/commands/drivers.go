package commands

import (
	"fmt"

	"github.com/Alp4ka/sqlpager"
	"github.com/spf13/cobra"
)

func newDriversCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "drivers",
		Args:  cobra.NoArgs,
		Short: "List available database drivers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, name := range sqlpager.Drivers() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}

			return nil
		},
	}
}

func newCheckCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Args:  cobra.NoArgs,
		Short: "Open a connection and ping the database",
		RunE: func(cmd *cobra.Command, _ []string) error {
			conn, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer conn.Close(cmd.Context())

			if err = conn.Ping(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Connection established")

			return nil
		},
	}
}
