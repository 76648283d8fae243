package main

import (
	"crypto/ed25519"
	"os"
	"strings"

	"github.com/mr-tron/base58"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/code-payments/code-multisig/pkg/metrics"
	"github.com/code-payments/code-multisig/pkg/solana"
	"github.com/code-payments/code-multisig/pkg/solana/multisig"
)

const (
	envConfigPrefix = "MULTISIG_"
)

// BaseConfig is shared by every command. Values come from flags, then
// MULTISIG_ prefixed environment variables, then the optional config file.
type BaseConfig struct {
	LogLevel string `mapstructure:"log_level"`

	AppName string `mapstructure:"app_name"`

	// ProgramID is the base58 address of the deployment. Empty selects the
	// default program id.
	ProgramID      string `mapstructure:"program_id"`
	SeparateConfig bool   `mapstructure:"separate_config"`

	RPCEndpoint string `mapstructure:"rpc_endpoint"`

	Store            string `mapstructure:"store"`
	PostgresHost     string `mapstructure:"postgres_host"`
	PostgresPort     int    `mapstructure:"postgres_port"`
	PostgresUser     string `mapstructure:"postgres_user"`
	PostgresPassword string `mapstructure:"postgres_password"`
	PostgresDbName   string `mapstructure:"postgres_db_name"`

	MetricsListenAddress string `mapstructure:"metrics_listen_address"`

	NewRelicLicenseKey string `mapstructure:"new_relic_license_key"`
}

var defaultConfig = BaseConfig{
	LogLevel: "warn",

	AppName: "multisig",

	RPCEndpoint: string(solana.EnvironmentProd),

	Store:        storeMemory,
	PostgresPort: 5432,
}

var configKeys = []string{
	"log_level",
	"app_name",
	"program_id",
	"separate_config",
	"rpc_endpoint",
	"store",
	"postgres_host",
	"postgres_port",
	"postgres_user",
	"postgres_password",
	"postgres_db_name",
	"metrics_listen_address",
	"new_relic_license_key",
}

func newViper() *viper.Viper {
	v := viper.New()
	for _, key := range configKeys {
		_ = v.BindEnv(key, envConfigPrefix+strings.ToUpper(key))
	}
	return v
}

// bindFlags binds each flag to the config key of the same name, with dashes
// replaced by underscores.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet, names ...string) {
	for _, name := range names {
		_ = v.BindPFlag(strings.ReplaceAll(name, "-", "_"), flags.Lookup(name))
	}
}

func loadConfig(v *viper.Viper, configPath string) (*BaseConfig, error) {
	if len(configPath) > 0 {
		if _, err := os.Stat(configPath); err != nil {
			return nil, errors.Wrapf(err, "failed to check config file %s", configPath)
		}

		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrap(err, "failed to load config")
		}
	}

	config := defaultConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	return &config, nil
}

func (c *BaseConfig) programID() (ed25519.PublicKey, error) {
	if len(c.ProgramID) == 0 {
		return multisig.PROGRAM_ID, nil
	}
	return parseKey(c.ProgramID)
}

func newMetricsProvider(config *BaseConfig) (*newrelic.Application, error) {
	if len(config.NewRelicLicenseKey) == 0 {
		return nil, nil
	}

	return newrelic.NewApplication(
		newrelic.ConfigFromEnvironment(),
		newrelic.ConfigAppName(config.AppName),
		newrelic.ConfigLicense(config.NewRelicLicenseKey),
		newrelic.ConfigDistributedTracerEnabled(true),
		newrelic.ConfigAppLogForwardingEnabled(true),
	)
}

// configureLogger sends logs to stderr so command output stays parseable.
func configureLogger(config *BaseConfig, metricsProvider *newrelic.Application) {
	if metricsProvider != nil {
		logrus.SetFormatter(metrics.NewCustomNewRelicLogFormatter(metricsProvider, &logrus.JSONFormatter{}))
	} else {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}

	level, err := logrus.ParseLevel(strings.ToLower(config.LogLevel))
	if err != nil {
		logrus.StandardLogger().WithField("log_level", config.LogLevel).Warn("unknown log level, ignoring")
	} else {
		logrus.SetLevel(level)
	}

	logrus.SetOutput(os.Stderr)
}

func parseKey(value string) (ed25519.PublicKey, error) {
	decoded, err := base58.Decode(value)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid base58 key %q", value)
	}
	if len(decoded) != ed25519.PublicKeySize {
		return nil, errors.Errorf("key %q has length %d", value, len(decoded))
	}
	return decoded, nil
}
