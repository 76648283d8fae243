package multisig

import (
	"crypto/ed25519"
	"strings"

	"github.com/pkg/errors"
)

// Roster is a capacity-bounded, compacted sequence of members. Slots
// [0, Len()) are occupied and every slot past Len() is the empty Member.
type Roster struct {
	members [MaxMembers]Member
	count   uint8
}

// NewRoster returns a roster holding members in order.
func NewRoster(members ...Member) (*Roster, error) {
	r := &Roster{}
	for _, m := range members {
		if err := r.Append(m); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Roster) Len() int {
	return int(r.count)
}

func (r *Roster) IsFull() bool {
	return r.count >= MaxMembers
}

// At returns the member at index, which must be occupied.
func (r *Roster) At(index int) (Member, error) {
	if index < 0 || index >= int(r.count) {
		return Member{}, errors.Wrapf(ErrInvalidIndex, "index %d outside roster of %d", index, r.count)
	}
	return r.members[index].Clone(), nil
}

// Members returns a copy of the occupied slots.
func (r *Roster) Members() []Member {
	res := make([]Member, r.count)
	for i := range res {
		res[i] = r.members[i].Clone()
	}
	return res
}

// IndexOf returns the slot holding key, or -1.
func (r *Roster) IndexOf(key ed25519.PublicKey) int {
	for i := 0; i < int(r.count); i++ {
		if r.members[i].HasKey(key) {
			return i
		}
	}
	return -1
}

// Append writes m to the next free slot.
func (r *Roster) Append(m Member) error {
	if r.IsFull() {
		return ErrRosterFull
	}
	if IsZeroKey(m.Key) {
		return errors.Wrap(ErrInvalidField, "member key must be non-zero")
	}
	if len(m.Key) != ed25519.PublicKeySize {
		return errors.Wrapf(ErrInvalidField, "member key has length %d", len(m.Key))
	}
	if !m.Permission.IsValid() {
		return errors.Wrapf(ErrInvalidField, "unknown permission %d", m.Permission)
	}
	if r.IndexOf(m.Key) >= 0 {
		return ErrDuplicateMember
	}

	r.members[r.count] = m.Clone()
	r.count++
	return nil
}

// RemoveAt removes the member at index and shifts later members left by one
// slot. The vacated last slot is reset to the empty Member.
func (r *Roster) RemoveAt(index int) error {
	if r.count == 0 {
		return ErrRosterEmpty
	}
	if index < 0 || index >= int(r.count) {
		return errors.Wrapf(ErrInvalidIndex, "index %d outside roster of %d", index, r.count)
	}

	last := int(r.count) - 1
	copy(r.members[index:last], r.members[index+1:last+1])
	r.members[last] = Member{}
	r.count--
	return nil
}

// Set overwrites the permission and active flag of the member at index.
func (r *Roster) Set(index int, permission Permission, isActive bool) error {
	if index < 0 || index >= int(r.count) {
		return errors.Wrapf(ErrInvalidIndex, "index %d outside roster of %d", index, r.count)
	}
	if !permission.IsValid() {
		return errors.Wrapf(ErrInvalidField, "unknown permission %d", permission)
	}

	r.members[index].Permission = permission
	r.members[index].IsActive = isActive
	return nil
}

func (r *Roster) ActiveAdminCount() int {
	var count int
	for i := 0; i < int(r.count); i++ {
		if r.members[i].IsActiveAdmin() {
			count++
		}
	}
	return count
}

// Validate checks the capacity, uniqueness and compaction invariants.
func (r *Roster) Validate() error {
	if r.count > MaxMembers {
		return errors.Wrapf(ErrInvalidAccountData, "roster count %d exceeds capacity", r.count)
	}

	for i := 0; i < int(r.count); i++ {
		m := r.members[i]
		if IsZeroKey(m.Key) {
			return errors.Wrapf(ErrInvalidAccountData, "occupied slot %d has an empty key", i)
		}
		if !m.Permission.IsValid() {
			return errors.Wrapf(ErrInvalidAccountData, "slot %d has unknown permission %d", i, m.Permission)
		}
		for j := 0; j < i; j++ {
			if r.members[j].HasKey(m.Key) {
				return errors.Wrapf(ErrInvalidAccountData, "slots %d and %d hold the same key", j, i)
			}
		}
	}

	for i := int(r.count); i < MaxMembers; i++ {
		if !r.members[i].IsEmpty() {
			return errors.Wrapf(ErrInvalidAccountData, "slot %d past the roster end is not empty", i)
		}
	}

	return nil
}

// Clone returns a deep copy.
func (r *Roster) Clone() *Roster {
	cloned := &Roster{count: r.count}
	for i := range r.members {
		cloned.members[i] = r.members[i].Clone()
	}
	return cloned
}

func (r *Roster) String() string {
	var sb strings.Builder
	sb.WriteString("[")
	for i := 0; i < int(r.count); i++ {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString(r.members[i].String())
	}
	sb.WriteString("]")
	return sb.String()
}
