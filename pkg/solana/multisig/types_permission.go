package multisig

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Permission is ordered by increasing privilege.
type Permission uint8

const (
	PermissionReadonly Permission = iota
	PermissionVote
	PermissionVoteAndExecute
	PermissionAdmin
)

// PermissionFromUint8 maps the wire byte to a Permission. Bytes above
// PermissionAdmin are rejected with ErrInvalidField.
func PermissionFromUint8(v uint8) (Permission, error) {
	p := Permission(v)
	if !p.IsValid() {
		return 0, errors.Wrapf(ErrInvalidField, "unknown permission %d", v)
	}
	return p, nil
}

// ParsePermission accepts a case-insensitive permission name or its number.
func ParsePermission(s string) (Permission, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "readonly", "0":
		return PermissionReadonly, nil
	case "vote", "1":
		return PermissionVote, nil
	case "vote_and_execute", "voteandexecute", "2":
		return PermissionVoteAndExecute, nil
	case "admin", "3":
		return PermissionAdmin, nil
	}
	return 0, errors.Wrapf(ErrInvalidField, "unknown permission %q", s)
}

func (p Permission) IsValid() bool {
	return p <= PermissionAdmin
}

// AtLeast reports whether p grants at least the privilege of other.
func (p Permission) AtLeast(other Permission) bool {
	return p >= other
}

func (p Permission) String() string {
	switch p {
	case PermissionReadonly:
		return "readonly"
	case PermissionVote:
		return "vote"
	case PermissionVoteAndExecute:
		return "vote_and_execute"
	case PermissionAdmin:
		return "admin"
	}
	return fmt.Sprintf("unknown(%d)", uint8(p))
}
