package processor

import (
	"crypto/ed25519"

	"github.com/code-payments/code-multisig/pkg/config"
	"github.com/code-payments/code-multisig/pkg/config/env"
	"github.com/code-payments/code-multisig/pkg/config/memory"
	"github.com/code-payments/code-multisig/pkg/config/wrapper"
	"github.com/code-payments/code-multisig/pkg/solana/multisig"
)

const (
	envConfigPrefix = "MULTISIG_PROCESSOR_"

	ProgramIdConfigEnvName = envConfigPrefix + "PROGRAM_ID"

	SeparateConfigAccountConfigEnvName = envConfigPrefix + "SEPARATE_CONFIG_ACCOUNT"
	defaultSeparateConfigAccount       = false
)

type conf struct {
	programId             config.PublicKey
	separateConfigAccount config.Bool
}

// ConfigProvider defines how config values are pulled
type ConfigProvider func() *conf

// WithEnvConfigs returns configuration pulled from environment variables
func WithEnvConfigs() ConfigProvider {
	return func() *conf {
		return &conf{
			programId:             env.NewPublicKeyConfig(ProgramIdConfigEnvName, multisig.PROGRAM_ID),
			separateConfigAccount: env.NewBoolConfig(SeparateConfigAccountConfigEnvName, defaultSeparateConfigAccount),
		}
	}
}

// WithStaticConfig returns a fixed configuration. An empty programId selects
// the default deployment.
func WithStaticConfig(programId ed25519.PublicKey, separateConfigAccount bool) ConfigProvider {
	return withManualTestOverrides(&testOverrides{
		programId:             programId,
		separateConfigAccount: separateConfigAccount,
	})
}

type testOverrides struct {
	programId             ed25519.PublicKey
	separateConfigAccount bool
}

func withManualTestOverrides(overrides *testOverrides) ConfigProvider {
	programId := overrides.programId
	if len(programId) == 0 {
		programId = multisig.PROGRAM_ID
	}

	return func() *conf {
		return &conf{
			programId:             wrapper.NewPublicKeyConfig(memory.NewConfig(programId), multisig.PROGRAM_ID),
			separateConfigAccount: wrapper.NewBoolConfig(memory.NewConfig(overrides.separateConfigAccount), defaultSeparateConfigAccount),
		}
	}
}
