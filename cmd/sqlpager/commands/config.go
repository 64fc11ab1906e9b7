package commands

import (
	"fmt"
	"strings"

	"github.com/Alp4ka/sqlpager"
	"github.com/spf13/viper"
)

const (
	envPrefix  = "SQLPAGER"
	defaultDSN = ":memory:"
)

const (
	keyConfig    = "config"
	keyDriver    = "driver"
	keyDSN       = "dsn"
	keyPageSize  = "page-size"
	keyLogLevel  = "log-level"
	keyLogFormat = "log-format"
)

// Config is the resolved CLI configuration. Flags win over environment
// variables, which win over the config file.
type Config struct {
	Driver    string
	DSN       string
	PageSize  int
	LogLevel  string
	LogFormat string
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault(keyDriver, sqlpager.DriverSQLite)
	v.SetDefault(keyDSN, defaultDSN)
	v.SetDefault(keyPageSize, sqlpager.DefaultPageSize)
	v.SetDefault(keyLogLevel, "warn")
	v.SetDefault(keyLogFormat, "text")

	// SQLPAGER_PAGE_SIZE, SQLPAGER_LOG_LEVEL, ...
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	return v
}

// loadConfig reads the optional config file named by the "config" key and
// resolves every setting.
func loadConfig(v *viper.Viper) (*Config, error) {
	if path := v.GetString(keyConfig); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return &Config{
		Driver:    v.GetString(keyDriver),
		DSN:       v.GetString(keyDSN),
		PageSize:  sqlpager.NormalizePageSize(v.GetInt(keyPageSize)),
		LogLevel:  v.GetString(keyLogLevel),
		LogFormat: v.GetString(keyLogFormat),
	}, nil
}
