package commands

import (
	"context"

	"github.com/Alp4ka/sqlpager"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// app carries the state shared by subcommands once flags are parsed.
type app struct {
	v      *viper.Viper
	cfg    *Config
	logger *logrus.Logger
}

func (a *app) open(ctx context.Context) (sqlpager.OpenConnection, error) {
	return sqlpager.Open(ctx, a.cfg.Driver, a.cfg.DSN, sqlpager.WithOpenLogger(a.logger))
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	a := &app{v: newViper()}

	rootCmd := &cobra.Command{
		Use:           "sqlpager",
		Short:         "Page through SQL statement results in both directions",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(a.v)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = newLogger(cfg, cmd.ErrOrStderr())

			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String(keyConfig, "", "config file (yaml, json or toml)")
	flags.String(keyDriver, sqlpager.DriverSQLite, "database driver, see 'sqlpager drivers'")
	flags.String(keyDSN, defaultDSN, "connection string")
	flags.Int(keyPageSize, sqlpager.DefaultPageSize, "rows per page")
	flags.String(keyLogLevel, "warn", "log level: trace, debug, info, warn, error")
	flags.String(keyLogFormat, "text", "log format: text or json")
	_ = a.v.BindPFlags(flags)

	rootCmd.AddCommand(
		newDriversCommand(),
		newCheckCommand(a),
		newExecCommand(a),
		newBrowseCommand(a),
	)

	return rootCmd
}
