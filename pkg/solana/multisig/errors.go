package multisig

import "fmt"

// MultisigError is a custom program error. Codes are stable and surface to
// clients as solana.CustomError values.
type MultisigError uint32

const (
	// A supplied address does not match its program derived address
	ErrInvalidDerivedAddress MultisigError = iota + 0x1770

	// The target account is already owned by the program
	ErrAlreadyInitialized

	// A payload or account field holds a value outside its domain
	ErrInvalidField

	// A payload is shorter than its required length
	ErrTruncatedPayload

	// The caller is not permitted to perform this operation
	ErrUnauthorized

	// A roster index is out of range or does not match the expected member
	ErrInvalidIndex

	// The roster has no free slots
	ErrRosterFull

	// The roster has no members
	ErrRosterEmpty

	// The member already occupies a roster slot
	ErrDuplicateMember

	// The operation would leave the roster without an active admin
	ErrLastAdminRemoval

	// Fewer accounts were supplied than the instruction requires
	ErrNotEnoughAccountKeys

	// A required signature is missing
	ErrMissingRequiredSignature

	// Stored account data is malformed or violates a roster invariant
	ErrInvalidAccountData

	// The instruction tag or update type is unknown
	ErrInvalidInstruction

	// The account has not been initialized by the program
	ErrUninitializedAccount

	// The instruction was routed to a different program
	ErrIncorrectProgramId

	// The roster already has an active admin
	ErrAdminAlreadyAssigned
)

var errorNames = map[MultisigError]string{
	ErrInvalidDerivedAddress:    "InvalidDerivedAddress",
	ErrAlreadyInitialized:       "AlreadyInitialized",
	ErrInvalidField:             "InvalidField",
	ErrTruncatedPayload:         "TruncatedPayload",
	ErrUnauthorized:             "Unauthorized",
	ErrInvalidIndex:             "InvalidIndex",
	ErrRosterFull:               "RosterFull",
	ErrRosterEmpty:              "RosterEmpty",
	ErrDuplicateMember:          "DuplicateMember",
	ErrLastAdminRemoval:         "LastAdminRemoval",
	ErrNotEnoughAccountKeys:     "NotEnoughAccountKeys",
	ErrMissingRequiredSignature: "MissingRequiredSignature",
	ErrInvalidAccountData:       "InvalidAccountData",
	ErrInvalidInstruction:       "InvalidInstruction",
	ErrUninitializedAccount:     "UninitializedAccount",
	ErrIncorrectProgramId:       "IncorrectProgramId",
	ErrAdminAlreadyAssigned:     "AdminAlreadyAssigned",
}

func (e MultisigError) Code() uint32 {
	return uint32(e)
}

// Name returns the error kind, for example "RosterFull".
func (e MultisigError) Name() string {
	if name, ok := errorNames[e]; ok {
		return name
	}
	return fmt.Sprintf("Unknown(%#x)", uint32(e))
}

func (e MultisigError) Error() string {
	return fmt.Sprintf("multisig error %#x: %s", uint32(e), e.Name())
}

// MultisigErrorFromCode maps a custom program error code back to its kind.
func MultisigErrorFromCode(code uint32) (MultisigError, bool) {
	e := MultisigError(code)
	_, ok := errorNames[e]
	return e, ok
}
