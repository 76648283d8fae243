package processor

import (
	"crypto/ed25519"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"

	"github.com/code-payments/code-multisig/pkg/solana/multisig"
)

// ApplyMemberUpdate applies a single add, remove or permission update to
// roster on behalf of caller. Every precondition is checked before the roster
// is touched, so a failed update leaves roster unchanged.
//
// The caller must be the active admin at op.PayerIndex. Adds go to the next
// free slot, which op.MemberIndex must name. Removes and updates address an
// occupied slot whose key must equal op.MemberKey. No update may leave the
// roster without an active admin.
func ApplyMemberUpdate(roster *multisig.Roster, op *multisig.UpdateMembersInstructionArgs, caller ed25519.PublicKey) error {
	payer, err := roster.At(int(op.PayerIndex))
	if err != nil {
		return errors.Wrapf(multisig.ErrUnauthorized, "payer index %d is not an occupied slot", op.PayerIndex)
	}
	if !payer.HasKey(caller) {
		return errors.Wrapf(multisig.ErrUnauthorized, "payer index %d does not hold %s", op.PayerIndex, base58.Encode(caller))
	}
	if !payer.IsActiveAdmin() {
		return errors.Wrapf(multisig.ErrUnauthorized, "payer has %s permission", payer.Permission)
	}

	switch op.UpdateType {
	case multisig.UpdateTypeAdd:
		return addMember(roster, op)
	case multisig.UpdateTypeRemove:
		return removeMember(roster, op)
	case multisig.UpdateTypeUpdatePermission:
		return updateMember(roster, op)
	default:
		return errors.Wrapf(multisig.ErrInvalidField, "unknown update type %d", op.UpdateType)
	}
}

func addMember(roster *multisig.Roster, op *multisig.UpdateMembersInstructionArgs) error {
	if roster.IsFull() {
		return multisig.ErrRosterFull
	}
	if int(op.MemberIndex) != roster.Len() {
		return errors.Wrapf(multisig.ErrInvalidIndex, "new members go to slot %d, not %d", roster.Len(), op.MemberIndex)
	}
	if roster.IndexOf(op.MemberKey) >= 0 {
		return multisig.ErrDuplicateMember
	}

	return roster.Append(multisig.Member{
		Key:        op.MemberKey,
		Permission: op.Permission,
		IsActive:   op.IsActive,
	})
}

func removeMember(roster *multisig.Roster, op *multisig.UpdateMembersInstructionArgs) error {
	if roster.Len() == 0 {
		return multisig.ErrRosterEmpty
	}

	target, err := targetMember(roster, op)
	if err != nil {
		return err
	}

	if target.IsActiveAdmin() && roster.ActiveAdminCount() <= 1 {
		return multisig.ErrLastAdminRemoval
	}

	return roster.RemoveAt(int(op.MemberIndex))
}

func updateMember(roster *multisig.Roster, op *multisig.UpdateMembersInstructionArgs) error {
	target, err := targetMember(roster, op)
	if err != nil {
		return err
	}

	staysAdmin := op.Permission == multisig.PermissionAdmin && op.IsActive
	if target.IsActiveAdmin() && !staysAdmin && roster.ActiveAdminCount() <= 1 {
		return multisig.ErrLastAdminRemoval
	}

	return roster.Set(int(op.MemberIndex), op.Permission, op.IsActive)
}

func targetMember(roster *multisig.Roster, op *multisig.UpdateMembersInstructionArgs) (multisig.Member, error) {
	target, err := roster.At(int(op.MemberIndex))
	if err != nil {
		return multisig.Member{}, err
	}
	if !target.HasKey(op.MemberKey) {
		return multisig.Member{}, errors.Wrapf(multisig.ErrInvalidIndex, "slot %d does not hold %s", op.MemberIndex, base58.Encode(op.MemberKey))
	}
	return target, nil
}
