// Command multisig derives, encodes and inspects multisig accounts, and
// simulates the program against a local ledger.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	defaultShutdownTimeout = 10 * time.Second
)

type cli struct {
	v          *viper.Viper
	configPath string

	config          *BaseConfig
	metricsProvider *newrelic.Application
	log             *logrus.Entry
}

func newRootCommand() *cobra.Command {
	c := &cli{
		v:   newViper(),
		log: logrus.StandardLogger().WithField("type", "cmd/multisig"),
	}

	root := &cobra.Command{
		Use:           "multisig",
		Short:         "Multisig program tooling",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.init()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if c.metricsProvider != nil {
				c.metricsProvider.Shutdown(defaultShutdownTimeout)
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "path to an optional config file")
	flags.String("log-level", defaultConfig.LogLevel, "log level")
	flags.String("program-id", "", "base58 program id of the deployment (default program id when empty)")
	flags.Bool("separate-config", false, "deployment keeps thresholds in a separate config account")
	flags.String("new-relic-license-key", "", "report traces and events to New Relic")
	bindFlags(c.v, flags, "log-level", "program-id", "separate-config", "new-relic-license-key")

	root.AddCommand(
		c.deriveCommand(),
		c.encodeCommand(),
		c.decodeCommand(),
		c.inspectCommand(),
		c.simulateCommand(),
	)

	return root
}

func (c *cli) init() error {
	config, err := loadConfig(c.v, c.configPath)
	if err != nil {
		return err
	}
	c.config = config

	metricsProvider, err := newMetricsProvider(config)
	if err != nil {
		return err
	}
	c.metricsProvider = metricsProvider

	configureLogger(config, metricsProvider)
	return nil
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
