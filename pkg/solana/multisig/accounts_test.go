package multisig

import (
	"crypto/ed25519"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMultisigAccount_RoundTrip(t *testing.T) {
	keys := generateKeys(t, 4)
	limit := uint64(5_000)

	account, err := NewMultisigAccount(keys[0], keys[1], 254, 253, 2, 1000, []ed25519.PublicKey{keys[2], keys[3]})
	require.NoError(t, err)
	account.Admin = keys[2]
	account.AdminSpendingLimit = &limit
	account.TransactionIndex = 7
	account.StaleTransactionIndex = 3

	data := account.Marshal()
	require.Len(t, data, MultisigAccountSize)
	assert.EqualValues(t, 482, MultisigAccountSize)
	assert.Equal(t, AccountTypeMultisig, AccountTypeOf(data))

	var decoded MultisigAccount
	require.NoError(t, decoded.Unmarshal(data))
	assert.Equal(t, account, &decoded)
	assert.Equal(t, data, decoded.Marshal())
}

func TestMultisigAccount_NewSeedsVoteMembers(t *testing.T) {
	keys := generateKeys(t, 4)

	account, err := NewMultisigAccount(keys[0], keys[1], 1, 2, 2, 1000, []ed25519.PublicKey{keys[2], keys[3]})
	require.NoError(t, err)

	assert.Nil(t, account.Admin)
	assert.Nil(t, account.AdminSpendingLimit)
	assert.EqualValues(t, 0, account.TransactionIndex)
	assert.EqualValues(t, 0, account.StaleTransactionIndex)
	assert.Equal(t, 2, account.NumMembers())

	for i, m := range account.Roster.Members() {
		assert.EqualValues(t, keys[2+i], m.Key)
		assert.Equal(t, PermissionVote, m.Permission)
		assert.True(t, m.IsActive)
	}

	_, err = NewMultisigAccount(keys[0], keys[1], 1, 2, 2, 1000, []ed25519.PublicKey{keys[2], keys[2]})
	assert.True(t, errors.Is(err, ErrInvalidField))

	_, err = NewMultisigAccount(keys[0], keys[1], 1, 2, 2, 1000, generateKeys(t, MaxMembers+1))
	assert.True(t, errors.Is(err, ErrRosterFull))
}

func TestMultisigAccount_LayoutOffsets(t *testing.T) {
	keys := generateKeys(t, 3)

	account, err := NewMultisigAccount(keys[0], keys[1], 0xaa, 0xbb, 3, 0x0102030405060708, []ed25519.PublicKey{keys[2]})
	require.NoError(t, err)

	data := account.Marshal()

	assert.Equal(t, []byte{byte(AccountTypeMultisig), byte(DataVersion1), 0, 0, 0, 0, 0, 0}, data[0:8])
	assert.EqualValues(t, 0, data[8])  // admin flag
	assert.EqualValues(t, 0, data[41]) // admin_spending_limit flag
	assert.EqualValues(t, keys[0], data[50:82])
	assert.EqualValues(t, keys[1], data[82:114])
	assert.EqualValues(t, 0xaa, data[114])
	assert.EqualValues(t, 0xbb, data[115])
	assert.EqualValues(t, 3, data[116])
	assert.Equal(t, []byte{8, 7, 6, 5, 4, 3, 2, 1}, data[117:125])
	assert.EqualValues(t, 1, data[141])
	assert.EqualValues(t, keys[2], data[142:174])
	assert.EqualValues(t, PermissionVote, data[174])
	assert.EqualValues(t, 1, data[175])
	assert.Equal(t, make([]byte, (MaxMembers-1)*MemberSize), data[176:])
}

func TestMultisigAccount_UnmarshalRejects(t *testing.T) {
	keys := generateKeys(t, 3)

	account, err := NewMultisigAccount(keys[0], keys[1], 1, 2, 2, 1000, []ed25519.PublicKey{keys[2]})
	require.NoError(t, err)

	valid := account.Marshal()

	for _, tc := range []struct {
		name   string
		mutate func(data []byte) []byte
	}{
		{"empty", func(data []byte) []byte { return nil }},
		{"short", func(data []byte) []byte { return data[:MultisigAccountSize-1] }},
		{"long", func(data []byte) []byte { return append(data, 0) }},
		{"account type", func(data []byte) []byte { data[0] = byte(AccountTypeMultisigConfig); return data }},
		{"data version", func(data []byte) []byte { data[1] = 2; return data }},
		{"padding", func(data []byte) []byte { data[7] = 1; return data }},
		{"admin flag", func(data []byte) []byte { data[8] = 2; return data }},
		{"num members", func(data []byte) []byte { data[141] = MaxMembers + 1; return data }},
		{"gap", func(data []byte) []byte { data[141] = 2; return data }},
		{"permission", func(data []byte) []byte { data[174] = 4; return data }},
		{"is active", func(data []byte) []byte { data[175] = 2; return data }},
		{"trailing slot", func(data []byte) []byte { data[142+MemberSize] = 1; return data }},
		{"stale index", func(data []byte) []byte { data[133] = 1; return data }},
	} {
		t.Run(tc.name, func(t *testing.T) {
			data := tc.mutate(append([]byte{}, valid...))

			var decoded MultisigAccount
			err := decoded.Unmarshal(data)
			assert.True(t, errors.Is(err, ErrInvalidAccountData), err)
		})
	}
}

func TestMultisigConfigAccount_RoundTrip(t *testing.T) {
	config := &MultisigConfigAccount{
		MinThreshold:  2,
		MaxExpiry:     86400,
		ProposalCount: 12,
		Bump:          250,
	}

	data := config.Marshal()
	require.Len(t, data, MultisigConfigAccountSize)
	assert.Equal(t, AccountTypeMultisigConfig, AccountTypeOf(data))

	var decoded MultisigConfigAccount
	require.NoError(t, decoded.Unmarshal(data))
	assert.Equal(t, config, &decoded)

	assert.True(t, errors.Is(decoded.Unmarshal(data[:len(data)-1]), ErrInvalidAccountData))

	var multisig MultisigAccount
	assert.True(t, errors.Is(multisig.Unmarshal(data), ErrInvalidAccountData))

	data[0] = byte(AccountTypeMultisig)
	assert.True(t, errors.Is(decoded.Unmarshal(data), ErrInvalidAccountData))
	assert.Equal(t, AccountTypeUnknown, AccountTypeOf([]byte{1, 2}))
}
