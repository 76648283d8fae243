package multisig

import "github.com/pkg/errors"

// InstructionType is the leading byte of every instruction's data.
type InstructionType uint8

const (
	InstructionTypeInitMultisig InstructionType = iota
	InstructionTypeUpdateMembers
	InstructionTypeClaimAdmin
)

func (t InstructionType) String() string {
	switch t {
	case InstructionTypeInitMultisig:
		return "init_multisig"
	case InstructionTypeUpdateMembers:
		return "update_members"
	case InstructionTypeClaimAdmin:
		return "claim_admin"
	}
	return "unknown"
}

// SplitInstructionData separates the instruction tag from its payload.
func SplitInstructionData(data []byte) (InstructionType, []byte, error) {
	if len(data) == 0 {
		return 0, nil, errors.Wrap(ErrTruncatedPayload, "missing instruction tag")
	}

	t := InstructionType(data[0])
	switch t {
	case InstructionTypeInitMultisig, InstructionTypeUpdateMembers, InstructionTypeClaimAdmin:
		return t, data[1:], nil
	}
	return t, nil, errors.Wrapf(ErrInvalidInstruction, "unknown instruction tag %d", data[0])
}

// UpdateType selects the roster operation performed by UpdateMembers.
type UpdateType uint8

const (
	UpdateTypeAdd UpdateType = iota
	UpdateTypeRemove
	UpdateTypeUpdatePermission
)

func (t UpdateType) IsValid() bool {
	return t <= UpdateTypeUpdatePermission
}

func (t UpdateType) String() string {
	switch t {
	case UpdateTypeAdd:
		return "add"
	case UpdateTypeRemove:
		return "remove"
	case UpdateTypeUpdatePermission:
		return "update_permission"
	}
	return "unknown"
}

// ParseUpdateType accepts the names returned by String.
func ParseUpdateType(value string) (UpdateType, error) {
	for _, t := range []UpdateType{UpdateTypeAdd, UpdateTypeRemove, UpdateTypeUpdatePermission} {
		if t.String() == value {
			return t, nil
		}
	}
	return 0, errors.Errorf("unknown update type %q", value)
}
