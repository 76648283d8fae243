package multisig

import (
	"crypto/ed25519"

	"github.com/code-payments/code-multisig/pkg/solana"
)

var (
	MultisigPrefix       = []byte("multisig")
	TreasuryPrefix       = []byte("treasury")
	MultisigConfigPrefix = []byte("multisig_config")
)

// The Program field of every address args struct selects the deployment. An
// empty Program falls back to PROGRAM_ID.

type GetMultisigAddressArgs struct {
	Program ed25519.PublicKey
	Creator ed25519.PublicKey
}

func GetMultisigAddress(args *GetMultisigAddressArgs) (ed25519.PublicKey, uint8, error) {
	return solana.FindProgramAddressAndBump(
		programOrDefault(args.Program),
		MultisigPrefix,
		args.Creator,
	)
}

type GetTreasuryAddressArgs struct {
	Program  ed25519.PublicKey
	Multisig ed25519.PublicKey
}

func GetTreasuryAddress(args *GetTreasuryAddressArgs) (ed25519.PublicKey, uint8, error) {
	return solana.FindProgramAddressAndBump(
		programOrDefault(args.Program),
		TreasuryPrefix,
		args.Multisig,
	)
}

type GetMultisigConfigAddressArgs struct {
	Program  ed25519.PublicKey
	Multisig ed25519.PublicKey
}

func GetMultisigConfigAddress(args *GetMultisigConfigAddressArgs) (ed25519.PublicKey, uint8, error) {
	return solana.FindProgramAddressAndBump(
		programOrDefault(args.Program),
		MultisigConfigPrefix,
		args.Multisig,
	)
}

// MultisigSeeds returns the signer seeds that authorize writes to a multisig
// record created by creator.
func MultisigSeeds(creator ed25519.PublicKey, bump uint8) [][]byte {
	return [][]byte{MultisigPrefix, creator, {bump}}
}

// TreasurySeeds returns the signer seeds that authorize the treasury of
// multisig.
func TreasurySeeds(multisig ed25519.PublicKey, bump uint8) [][]byte {
	return [][]byte{TreasuryPrefix, multisig, {bump}}
}

// MultisigConfigSeeds returns the signer seeds that authorize the config
// record of multisig.
func MultisigConfigSeeds(multisig ed25519.PublicKey, bump uint8) [][]byte {
	return [][]byte{MultisigConfigPrefix, multisig, {bump}}
}
