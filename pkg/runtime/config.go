package runtime

import (
	"github.com/code-payments/code-multisig/pkg/config"
	"github.com/code-payments/code-multisig/pkg/config/env"
	"github.com/code-payments/code-multisig/pkg/config/memory"
	"github.com/code-payments/code-multisig/pkg/config/wrapper"
	"github.com/code-payments/code-multisig/pkg/solana/system"
)

const (
	envConfigPrefix = "LEDGER_RUNTIME_"

	LamportsPerByteYearConfigEnvName = envConfigPrefix + "LAMPORTS_PER_BYTE_YEAR"
	defaultLamportsPerByteYear       = system.DefaultLamportsPerByteYear

	ExemptionThresholdYearsConfigEnvName = envConfigPrefix + "EXEMPTION_THRESHOLD_YEARS"
	defaultExemptionThresholdYears       = system.DefaultExemptionThresholdYears

	MaxTransactionsPerSecondConfigEnvName = envConfigPrefix + "MAX_TXNS_PER_SECOND"
	defaultMaxTransactionsPerSecond       = 0
)

type conf struct {
	lamportsPerByteYear      config.Uint64
	exemptionThresholdYears  config.Uint64
	maxTransactionsPerSecond config.Uint64
}

// ConfigProvider defines how config values are pulled
type ConfigProvider func() *conf

// WithEnvConfigs returns configuration pulled from environment variables
func WithEnvConfigs() ConfigProvider {
	return func() *conf {
		return &conf{
			lamportsPerByteYear:      env.NewUint64Config(LamportsPerByteYearConfigEnvName, defaultLamportsPerByteYear),
			exemptionThresholdYears:  env.NewUint64Config(ExemptionThresholdYearsConfigEnvName, defaultExemptionThresholdYears),
			maxTransactionsPerSecond: env.NewUint64Config(MaxTransactionsPerSecondConfigEnvName, defaultMaxTransactionsPerSecond),
		}
	}
}

// WithRent returns a static configuration with the provided rent parameters
// and no transaction rate limit.
func WithRent(rent system.Rent) ConfigProvider {
	return withManualTestOverrides(&testOverrides{rent: rent})
}

type testOverrides struct {
	rent                     system.Rent
	maxTransactionsPerSecond uint64
}

func withManualTestOverrides(overrides *testOverrides) ConfigProvider {
	return func() *conf {
		return &conf{
			lamportsPerByteYear:      wrapper.NewUint64Config(memory.NewConfig(overrides.rent.LamportsPerByteYear), defaultLamportsPerByteYear),
			exemptionThresholdYears:  wrapper.NewUint64Config(memory.NewConfig(overrides.rent.ExemptionThresholdYears), defaultExemptionThresholdYears),
			maxTransactionsPerSecond: wrapper.NewUint64Config(memory.NewConfig(overrides.maxTransactionsPerSecond), defaultMaxTransactionsPerSecond),
		}
	}
}
