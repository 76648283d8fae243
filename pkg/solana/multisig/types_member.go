package multisig

import (
	"bytes"
	"crypto/ed25519"
	"fmt"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"

	"github.com/code-payments/code-multisig/pkg/solana/binary"
)

const (
	MemberSize = (32 + // key
		1 + // permissions
		1) // is_active
)

// Member is a roster entry. The zero value is the empty slot.
type Member struct {
	Key        ed25519.PublicKey
	Permission Permission
	IsActive   bool
}

// IsEmpty reports whether m is exactly the empty slot value.
func (m Member) IsEmpty() bool {
	return IsZeroKey(m.Key) && m.Permission == PermissionReadonly && !m.IsActive
}

func (m Member) IsActiveAdmin() bool {
	return m.IsActive && m.Permission == PermissionAdmin
}

func (m Member) HasKey(key ed25519.PublicKey) bool {
	return !IsZeroKey(m.Key) && bytes.Equal(m.Key, key)
}

func (m Member) Clone() Member {
	return Member{
		Key:        cloneKey(m.Key),
		Permission: m.Permission,
		IsActive:   m.IsActive,
	}
}

func (m Member) String() string {
	if IsZeroKey(m.Key) {
		return fmt.Sprintf("Member{key=<empty>,permission=%s,active=%v}", m.Permission, m.IsActive)
	}
	return fmt.Sprintf("Member{key=%s,permission=%s,active=%v}", base58.Encode(m.Key), m.Permission, m.IsActive)
}

func putMember(dst []byte, m Member, offset *int) {
	binary.PutKey32(dst[*offset:], m.Key, offset)
	binary.PutUint8(dst[*offset:], uint8(m.Permission), offset)
	binary.PutBool(dst[*offset:], m.IsActive, offset)
}

// getMember reads a member entry. An all-zero key decodes to a nil Key.
func getMember(r *binary.Reader) (Member, error) {
	var m Member

	key, err := r.ReadKey32()
	if err != nil {
		return m, err
	}
	if !IsZeroKey(key) {
		m.Key = key
	}

	raw, err := r.ReadUint8()
	if err != nil {
		return m, err
	}
	if m.Permission, err = PermissionFromUint8(raw); err != nil {
		return m, err
	}

	if m.IsActive, err = r.ReadBool(); err != nil {
		return m, errors.Wrap(ErrInvalidField, err.Error())
	}

	return m, nil
}
