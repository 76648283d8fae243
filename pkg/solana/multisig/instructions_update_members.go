package multisig

import (
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/code-payments/code-multisig/pkg/solana"
	"github.com/code-payments/code-multisig/pkg/solana/binary"
)

const (
	UpdateMembersInstructionArgsSize = (1 + // update_type
		32 + // member_key
		1 + // permission
		1 + // is_active
		1 + // payer_index
		1) // member_index
)

type UpdateMembersInstructionArgs struct {
	UpdateType  UpdateType
	MemberKey   ed25519.PublicKey
	Permission  Permission
	IsActive    bool
	PayerIndex  uint8
	MemberIndex uint8
}

type UpdateMembersInstructionAccounts struct {
	Payer    ed25519.PublicKey
	Creator  ed25519.PublicKey
	Multisig ed25519.PublicKey
	Treasury ed25519.PublicKey

	// Optional
	Config ed25519.PublicKey
}

func NewUpdateMembersInstruction(
	program ed25519.PublicKey,
	accounts *UpdateMembersInstructionAccounts,
	args *UpdateMembersInstructionArgs,
) solana.Instruction {
	data := make([]byte, 1+UpdateMembersInstructionArgsSize)
	data[0] = byte(InstructionTypeUpdateMembers)
	copy(data[1:], args.Marshal())

	metas := []solana.AccountMeta{
		{
			PublicKey:  accounts.Payer,
			IsWritable: false,
			IsSigner:   true,
		},
		{
			PublicKey:  accounts.Creator,
			IsWritable: false,
			IsSigner:   false,
		},
		{
			PublicKey:  accounts.Multisig,
			IsWritable: true,
			IsSigner:   false,
		},
	}
	if len(accounts.Config) > 0 {
		metas = append(metas, solana.AccountMeta{
			PublicKey:  accounts.Config,
			IsWritable: false,
			IsSigner:   false,
		})
	}
	metas = append(metas, solana.AccountMeta{
		PublicKey:  accounts.Treasury,
		IsWritable: false,
		IsSigner:   false,
	})

	return solana.Instruction{
		Program: programOrDefault(program),

		// Instruction args
		Data: data,

		// Instruction accounts
		Accounts: metas,
	}
}

func (args *UpdateMembersInstructionArgs) Marshal() []byte {
	data := make([]byte, UpdateMembersInstructionArgsSize)

	var offset int

	binary.PutUint8(data[offset:], uint8(args.UpdateType), &offset)
	binary.PutKey32(data[offset:], args.MemberKey, &offset)
	binary.PutUint8(data[offset:], uint8(args.Permission), &offset)
	binary.PutBool(data[offset:], args.IsActive, &offset)
	binary.PutUint8(data[offset:], args.PayerIndex, &offset)
	binary.PutUint8(data[offset:], args.MemberIndex, &offset)

	return data
}

// UpdateMembersInstructionArgsFromBinary decodes a fixed-length update
// payload. The update type is carried through undecoded and is checked when
// the update is applied.
func UpdateMembersInstructionArgsFromBinary(data []byte) (*UpdateMembersInstructionArgs, error) {
	if len(data) < UpdateMembersInstructionArgsSize {
		return nil, errors.Wrapf(ErrTruncatedPayload, "update members payload requires %d bytes, got %d", UpdateMembersInstructionArgsSize, len(data))
	}
	if len(data) > UpdateMembersInstructionArgsSize {
		return nil, errors.Wrapf(ErrInvalidField, "%d trailing bytes", len(data)-UpdateMembersInstructionArgsSize)
	}

	r := binary.NewReader(data)

	// The length check above guarantees every read succeeds.
	updateType, _ := r.ReadUint8()
	memberKey, _ := r.ReadKey32()
	rawPermission, _ := r.ReadUint8()

	permission, err := PermissionFromUint8(rawPermission)
	if err != nil {
		return nil, err
	}

	isActive, err := r.ReadBool()
	if err != nil {
		return nil, errors.Wrap(ErrInvalidField, err.Error())
	}

	payerIndex, _ := r.ReadUint8()
	memberIndex, _ := r.ReadUint8()

	return &UpdateMembersInstructionArgs{
		UpdateType:  UpdateType(updateType),
		MemberKey:   memberKey,
		Permission:  permission,
		IsActive:    isActive,
		PayerIndex:  payerIndex,
		MemberIndex: memberIndex,
	}, nil
}

// UpdateMembersInstructionAccountsFromMetas maps an instruction's account
// list onto its named accounts. With five accounts, the fourth is the config
// record and the treasury is last.
func UpdateMembersInstructionAccountsFromMetas(metas []solana.AccountMeta) (*UpdateMembersInstructionAccounts, error) {
	if len(metas) < 4 {
		return nil, errors.Wrapf(ErrNotEnoughAccountKeys, "update members requires 4 accounts, got %d", len(metas))
	}

	accounts := &UpdateMembersInstructionAccounts{
		Payer:    metas[0].PublicKey,
		Creator:  metas[1].PublicKey,
		Multisig: metas[2].PublicKey,
	}
	if len(metas) > 4 {
		accounts.Config = metas[3].PublicKey
		accounts.Treasury = metas[4].PublicKey
	} else {
		accounts.Treasury = metas[3].PublicKey
	}
	return accounts, nil
}
