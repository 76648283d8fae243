package multisig

import (
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/code-payments/code-multisig/pkg/solana"
)

const (
	ClaimAdminInstructionArgsSize = 1 // member_index
)

type ClaimAdminInstructionArgs struct {
	MemberIndex uint8
}

type ClaimAdminInstructionAccounts struct {
	Creator  ed25519.PublicKey
	Multisig ed25519.PublicKey
}

// NewClaimAdminInstruction promotes one roster slot to an active admin. It is
// only accepted from the creator while the roster has no active admin.
func NewClaimAdminInstruction(
	program ed25519.PublicKey,
	accounts *ClaimAdminInstructionAccounts,
	args *ClaimAdminInstructionArgs,
) solana.Instruction {
	data := []byte{byte(InstructionTypeClaimAdmin), args.MemberIndex}

	return solana.Instruction{
		Program: programOrDefault(program),

		// Instruction args
		Data: data,

		// Instruction accounts
		Accounts: []solana.AccountMeta{
			{
				PublicKey:  accounts.Creator,
				IsWritable: false,
				IsSigner:   true,
			},
			{
				PublicKey:  accounts.Multisig,
				IsWritable: true,
				IsSigner:   false,
			},
		},
	}
}

func ClaimAdminInstructionArgsFromBinary(data []byte) (*ClaimAdminInstructionArgs, error) {
	if len(data) < ClaimAdminInstructionArgsSize {
		return nil, errors.Wrap(ErrTruncatedPayload, "member_index")
	}
	if len(data) > ClaimAdminInstructionArgsSize {
		return nil, errors.Wrapf(ErrInvalidField, "%d trailing bytes", len(data)-ClaimAdminInstructionArgsSize)
	}
	return &ClaimAdminInstructionArgs{MemberIndex: data[0]}, nil
}

func ClaimAdminInstructionAccountsFromMetas(metas []solana.AccountMeta) (*ClaimAdminInstructionAccounts, error) {
	if len(metas) < 2 {
		return nil, errors.Wrapf(ErrNotEnoughAccountKeys, "claim admin requires 2 accounts, got %d", len(metas))
	}
	return &ClaimAdminInstructionAccounts{
		Creator:  metas[0].PublicKey,
		Multisig: metas[1].PublicKey,
	}, nil
}
