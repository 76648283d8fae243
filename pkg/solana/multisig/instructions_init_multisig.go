package multisig

import (
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/code-payments/code-multisig/pkg/solana"
	"github.com/code-payments/code-multisig/pkg/solana/binary"
)

const (
	initMultisigInstructionHeaderSize = (1 + // min_threshold
		8 + // max_expiry
		1) // num_members
)

// InitMultisigInstructionArgsSize returns the exact payload length for a
// roster of numMembers initial keys.
func InitMultisigInstructionArgsSize(numMembers int) int {
	return initMultisigInstructionHeaderSize + numMembers*ed25519.PublicKeySize
}

type InitMultisigInstructionArgs struct {
	MinThreshold uint8
	MaxExpiry    uint64
	Members      []ed25519.PublicKey
}

type InitMultisigInstructionAccounts struct {
	Creator  ed25519.PublicKey
	Multisig ed25519.PublicKey
	Treasury ed25519.PublicKey

	// Optional
	Config ed25519.PublicKey
}

func NewInitMultisigInstruction(
	program ed25519.PublicKey,
	accounts *InitMultisigInstructionAccounts,
	args *InitMultisigInstructionArgs,
) solana.Instruction {
	payload := args.Marshal()

	data := make([]byte, 1+len(payload))
	data[0] = byte(InstructionTypeInitMultisig)
	copy(data[1:], payload)

	metas := []solana.AccountMeta{
		{
			PublicKey:  accounts.Creator,
			IsWritable: true,
			IsSigner:   true,
		},
		{
			PublicKey:  accounts.Multisig,
			IsWritable: true,
			IsSigner:   false,
		},
		{
			PublicKey:  accounts.Treasury,
			IsWritable: true,
			IsSigner:   false,
		},
	}
	if len(accounts.Config) > 0 {
		metas = append(metas, solana.AccountMeta{
			PublicKey:  accounts.Config,
			IsWritable: true,
			IsSigner:   false,
		})
	}

	return solana.Instruction{
		Program: programOrDefault(program),

		// Instruction args
		Data: data,

		// Instruction accounts
		Accounts: metas,
	}
}

func (args *InitMultisigInstructionArgs) Marshal() []byte {
	data := make([]byte, InitMultisigInstructionArgsSize(len(args.Members)))

	var offset int

	binary.PutUint8(data[offset:], args.MinThreshold, &offset)
	binary.PutUint64(data[offset:], args.MaxExpiry, &offset)
	binary.PutUint8(data[offset:], uint8(len(args.Members)), &offset)
	for _, member := range args.Members {
		binary.PutKey32(data[offset:], member, &offset)
	}

	return data
}

// InitMultisigInstructionArgsFromBinary decodes an init payload. The length is
// validated against num_members before any key is read, and the payload must
// end exactly after the last key.
func InitMultisigInstructionArgsFromBinary(data []byte) (*InitMultisigInstructionArgs, error) {
	r := binary.NewReader(data)

	var args InitMultisigInstructionArgs
	var err error

	if args.MinThreshold, err = r.ReadUint8(); err != nil {
		return nil, errors.Wrap(ErrTruncatedPayload, "min_threshold")
	}
	if args.MaxExpiry, err = r.ReadUint64(); err != nil {
		return nil, errors.Wrap(ErrTruncatedPayload, "max_expiry")
	}
	numMembers, err := r.ReadUint8()
	if err != nil {
		return nil, errors.Wrap(ErrTruncatedPayload, "num_members")
	}
	if numMembers > MaxMembers {
		return nil, errors.Wrapf(ErrInvalidField, "num_members %d exceeds %d", numMembers, MaxMembers)
	}
	if err := r.Require(int(numMembers) * ed25519.PublicKeySize); err != nil {
		return nil, errors.Wrapf(ErrTruncatedPayload, "members: %s", err.Error())
	}

	args.Members = make([]ed25519.PublicKey, numMembers)
	for i := range args.Members {
		key, _ := r.ReadKey32()
		if IsZeroKey(key) {
			return nil, errors.Wrapf(ErrInvalidField, "member %d has the reserved empty key", i)
		}
		for j := 0; j < i; j++ {
			if args.Members[j].Equal(key) {
				return nil, errors.Wrapf(ErrInvalidField, "members %d and %d are the same key", j, i)
			}
		}
		args.Members[i] = key
	}

	if r.Remaining() > 0 {
		return nil, errors.Wrapf(ErrInvalidField, "%d trailing bytes", r.Remaining())
	}

	return &args, nil
}

// InitMultisigInstructionAccountsFromMetas maps an instruction's account list
// onto its named accounts. A fourth account is the optional config record.
func InitMultisigInstructionAccountsFromMetas(metas []solana.AccountMeta) (*InitMultisigInstructionAccounts, error) {
	if len(metas) < 3 {
		return nil, errors.Wrapf(ErrNotEnoughAccountKeys, "init multisig requires 3 accounts, got %d", len(metas))
	}

	accounts := &InitMultisigInstructionAccounts{
		Creator:  metas[0].PublicKey,
		Multisig: metas[1].PublicKey,
		Treasury: metas[2].PublicKey,
	}
	if len(metas) > 3 {
		accounts.Config = metas[3].PublicKey
	}
	return accounts, nil
}
