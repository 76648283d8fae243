package multisig

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoster_AppendRemove(t *testing.T) {
	keys := generateKeys(t, MaxMembers+1)

	r, err := NewRoster()
	require.NoError(t, err)
	assert.Equal(t, 0, r.Len())
	assert.True(t, errors.Is(r.RemoveAt(0), ErrRosterEmpty))

	for i := 0; i < MaxMembers; i++ {
		require.NoError(t, r.Append(Member{Key: keys[i], Permission: PermissionVote, IsActive: true}))
		assert.Equal(t, i+1, r.Len())
		assert.Equal(t, i, r.IndexOf(keys[i]))
	}
	assert.True(t, r.IsFull())
	require.NoError(t, r.Validate())

	before := r.Clone()
	assert.True(t, errors.Is(r.Append(Member{Key: keys[MaxMembers]}), ErrRosterFull))
	assert.Equal(t, before, r)

	require.NoError(t, r.RemoveAt(3))
	assert.Equal(t, MaxMembers-1, r.Len())
	assert.Equal(t, -1, r.IndexOf(keys[3]))
	assert.Equal(t, 3, r.IndexOf(keys[4]))
	assert.Equal(t, MaxMembers-2, r.IndexOf(keys[MaxMembers-1]))
	assert.True(t, r.members[MaxMembers-1].IsEmpty())
	require.NoError(t, r.Validate())

	assert.True(t, errors.Is(r.RemoveAt(MaxMembers-1), ErrInvalidIndex))
	assert.True(t, errors.Is(r.RemoveAt(-1), ErrInvalidIndex))
}

func TestRoster_AppendValidation(t *testing.T) {
	keys := generateKeys(t, 2)

	r, err := NewRoster(Member{Key: keys[0], Permission: PermissionAdmin, IsActive: true})
	require.NoError(t, err)

	assert.True(t, errors.Is(r.Append(Member{Key: keys[0]}), ErrDuplicateMember))
	assert.True(t, errors.Is(r.Append(Member{}), ErrInvalidField))
	assert.True(t, errors.Is(r.Append(Member{Key: make([]byte, 32)}), ErrInvalidField))
	assert.True(t, errors.Is(r.Append(Member{Key: keys[1][:31]}), ErrInvalidField))
	assert.True(t, errors.Is(r.Append(Member{Key: keys[1], Permission: Permission(4)}), ErrInvalidField))
	assert.Equal(t, 1, r.Len())

	_, err = NewRoster(Member{Key: keys[0]}, Member{Key: keys[0]})
	assert.True(t, errors.Is(err, ErrDuplicateMember))
}

func TestRoster_AddRemoveRoundTrip(t *testing.T) {
	keys := generateKeys(t, 4)

	r, err := NewRoster(
		Member{Key: keys[0], Permission: PermissionAdmin, IsActive: true},
		Member{Key: keys[1], Permission: PermissionVote, IsActive: true},
		Member{Key: keys[2], Permission: PermissionReadonly, IsActive: false},
	)
	require.NoError(t, err)

	before := r.Clone()

	require.NoError(t, r.Append(Member{Key: keys[3], Permission: PermissionVoteAndExecute, IsActive: true}))
	require.NoError(t, r.RemoveAt(r.IndexOf(keys[3])))
	assert.Equal(t, before, r)
}

func TestRoster_SetAndAdmins(t *testing.T) {
	keys := generateKeys(t, 3)

	r, err := NewRoster(
		Member{Key: keys[0], Permission: PermissionAdmin, IsActive: true},
		Member{Key: keys[1], Permission: PermissionAdmin, IsActive: false},
		Member{Key: keys[2], Permission: PermissionVote, IsActive: true},
	)
	require.NoError(t, err)
	assert.Equal(t, 1, r.ActiveAdminCount())

	require.NoError(t, r.Set(1, PermissionAdmin, true))
	assert.Equal(t, 2, r.ActiveAdminCount())

	require.NoError(t, r.Set(0, PermissionReadonly, true))
	assert.Equal(t, 1, r.ActiveAdminCount())

	m, err := r.At(0)
	require.NoError(t, err)
	assert.Equal(t, PermissionReadonly, m.Permission)

	assert.True(t, errors.Is(r.Set(3, PermissionAdmin, true), ErrInvalidIndex))
	assert.True(t, errors.Is(r.Set(0, Permission(9), true), ErrInvalidField))

	_, err = r.At(3)
	assert.True(t, errors.Is(err, ErrInvalidIndex))
}

func TestRoster_MembersIsACopy(t *testing.T) {
	keys := generateKeys(t, 1)

	r, err := NewRoster(Member{Key: keys[0], Permission: PermissionVote, IsActive: true})
	require.NoError(t, err)

	members := r.Members()
	require.Len(t, members, 1)
	members[0].Key[0] ^= 0xff
	members[0].Permission = PermissionAdmin

	assert.Equal(t, 0, r.IndexOf(keys[0]))
	assert.Equal(t, 0, r.ActiveAdminCount())
}

func TestRoster_Validate(t *testing.T) {
	keys := generateKeys(t, 2)

	r := &Roster{count: MaxMembers + 1}
	assert.True(t, errors.Is(r.Validate(), ErrInvalidAccountData))

	r = &Roster{count: 1}
	assert.True(t, errors.Is(r.Validate(), ErrInvalidAccountData))

	r = &Roster{count: 2}
	r.members[0] = Member{Key: keys[0]}
	r.members[1] = Member{Key: keys[0]}
	assert.True(t, errors.Is(r.Validate(), ErrInvalidAccountData))

	r = &Roster{count: 1}
	r.members[0] = Member{Key: keys[0]}
	r.members[1] = Member{IsActive: true}
	assert.True(t, errors.Is(r.Validate(), ErrInvalidAccountData))

	r.members[1] = Member{Key: keys[1]}
	assert.True(t, errors.Is(r.Validate(), ErrInvalidAccountData))

	r.members[1] = Member{}
	assert.NoError(t, r.Validate())
}

func TestPermission(t *testing.T) {
	for i := 0; i <= 3; i++ {
		p, err := PermissionFromUint8(uint8(i))
		require.NoError(t, err)

		parsed, err := ParsePermission(p.String())
		require.NoError(t, err)
		assert.Equal(t, p, parsed)
	}

	_, err := PermissionFromUint8(4)
	assert.True(t, errors.Is(err, ErrInvalidField))

	_, err = ParsePermission("owner")
	assert.True(t, errors.Is(err, ErrInvalidField))

	assert.True(t, PermissionAdmin.AtLeast(PermissionVoteAndExecute))
	assert.True(t, PermissionVote.AtLeast(PermissionReadonly))
	assert.False(t, PermissionVote.AtLeast(PermissionAdmin))
}
