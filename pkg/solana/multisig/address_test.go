package multisig

import (
	"crypto/ed25519"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/code-multisig/pkg/solana"
)

func TestGetAddresses(t *testing.T) {
	creator := generateKey(t)

	multisig, multisigBump, err := GetMultisigAddress(&GetMultisigAddressArgs{Creator: creator})
	require.NoError(t, err)

	again, againBump, err := GetMultisigAddress(&GetMultisigAddressArgs{Program: PROGRAM_ID, Creator: creator})
	require.NoError(t, err)
	assert.EqualValues(t, multisig, again)
	assert.Equal(t, multisigBump, againBump)

	derived, err := solana.CreateProgramAddress(PROGRAM_ID, MultisigSeeds(creator, multisigBump)...)
	require.NoError(t, err)
	assert.EqualValues(t, multisig, derived)

	treasury, treasuryBump, err := GetTreasuryAddress(&GetTreasuryAddressArgs{Multisig: multisig})
	require.NoError(t, err)
	derived, err = solana.CreateProgramAddress(PROGRAM_ID, TreasurySeeds(multisig, treasuryBump)...)
	require.NoError(t, err)
	assert.EqualValues(t, treasury, derived)

	config, configBump, err := GetMultisigConfigAddress(&GetMultisigConfigAddressArgs{Multisig: multisig})
	require.NoError(t, err)
	derived, err = solana.CreateProgramAddress(PROGRAM_ID, MultisigConfigSeeds(multisig, configBump)...)
	require.NoError(t, err)
	assert.EqualValues(t, config, derived)

	assert.NotEqualValues(t, multisig, treasury)
	assert.NotEqualValues(t, multisig, config)
	assert.NotEqualValues(t, treasury, config)
}

func TestGetAddresses_ProgramScoped(t *testing.T) {
	creator := generateKey(t)
	otherProgram := generateKey(t)

	a, _, err := GetMultisigAddress(&GetMultisigAddressArgs{Creator: creator})
	require.NoError(t, err)
	b, _, err := GetMultisigAddress(&GetMultisigAddressArgs{Program: otherProgram, Creator: creator})
	require.NoError(t, err)
	assert.NotEqualValues(t, a, b)

	c, _, err := GetMultisigAddress(&GetMultisigAddressArgs{Creator: generateKey(t)})
	require.NoError(t, err)
	assert.NotEqualValues(t, a, c)
}

func generateKey(t *testing.T) ed25519.PublicKey {
	pub, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	return pub
}

func generateKeys(t *testing.T, amount int) []ed25519.PublicKey {
	keys := make([]ed25519.PublicKey, amount)
	for i := range keys {
		keys[i] = generateKey(t)
	}
	return keys
}
