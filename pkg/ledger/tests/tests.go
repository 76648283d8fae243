package tests

import (
	"context"
	"crypto/ed25519"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/code-multisig/pkg/ledger"
)

func RunTests(t *testing.T, s ledger.Store, teardown func()) {
	for _, tf := range []func(t *testing.T, s ledger.Store){
		testRoundTrip,
		testVersioning,
		testAtomicCommit,
		testGetBatch,
		testGetAllByOwner,
		testValidation,
	} {
		tf(t, s)
		teardown()
	}
}

func testRoundTrip(t *testing.T, s ledger.Store) {
	t.Run("testRoundTrip", func(t *testing.T) {
		ctx := context.Background()

		expected := &ledger.Record{
			Address:  newAddress(t),
			Owner:    newAddress(t),
			Lamports: 890880,
			Data:     []byte{1, 2, 3},
		}

		_, err := s.Get(ctx, expected.Address)
		assert.Equal(t, ledger.ErrAccountNotFound, err)

		cloned := expected.Clone()
		require.NoError(t, s.Commit(ctx, expected))
		assert.True(t, expected.Id > 0)
		assert.EqualValues(t, 1, expected.Version)
		assert.False(t, expected.LastUpdatedAt.IsZero())

		actual, err := s.Get(ctx, expected.Address)
		require.NoError(t, err)
		assertEquivalentRecords(t, &cloned, actual)
		assert.Equal(t, expected.Id, actual.Id)
		assert.EqualValues(t, 1, actual.Version)

		actual.Lamports = 0
		actual.Data = nil
		require.NoError(t, s.Commit(ctx, actual))
		assert.EqualValues(t, 2, actual.Version)

		updated, err := s.Get(ctx, expected.Address)
		require.NoError(t, err)
		assert.EqualValues(t, 0, updated.Lamports)
		assert.Empty(t, updated.Data)
		assert.Equal(t, expected.Id, updated.Id)
		assert.EqualValues(t, 2, updated.Version)
	})
}

func testVersioning(t *testing.T, s ledger.Store) {
	t.Run("testVersioning", func(t *testing.T) {
		ctx := context.Background()

		record := &ledger.Record{
			Address: newAddress(t),
			Owner:   newAddress(t),
		}
		require.NoError(t, s.Commit(ctx, record))

		duplicate := &ledger.Record{
			Address: record.Address,
			Owner:   record.Owner,
		}
		assert.Equal(t, ledger.ErrStaleVersion, s.Commit(ctx, duplicate))
		assert.EqualValues(t, 0, duplicate.Version)

		first, err := s.Get(ctx, record.Address)
		require.NoError(t, err)
		second, err := s.Get(ctx, record.Address)
		require.NoError(t, err)

		first.Lamports = 100
		require.NoError(t, s.Commit(ctx, first))

		second.Lamports = 200
		assert.Equal(t, ledger.ErrStaleVersion, s.Commit(ctx, second))

		actual, err := s.Get(ctx, record.Address)
		require.NoError(t, err)
		assert.EqualValues(t, 100, actual.Lamports)
		assert.EqualValues(t, 2, actual.Version)
	})
}

func testAtomicCommit(t *testing.T, s ledger.Store) {
	t.Run("testAtomicCommit", func(t *testing.T) {
		ctx := context.Background()

		existing := &ledger.Record{
			Address:  newAddress(t),
			Owner:    newAddress(t),
			Lamports: 10,
		}
		require.NoError(t, s.Commit(ctx, existing))

		fresh := &ledger.Record{
			Address:  newAddress(t),
			Owner:    newAddress(t),
			Lamports: 20,
		}
		stale := &ledger.Record{
			Address:  existing.Address,
			Owner:    existing.Owner,
			Lamports: 30,
		}
		assert.Equal(t, ledger.ErrStaleVersion, s.Commit(ctx, fresh, stale))

		_, err := s.Get(ctx, fresh.Address)
		assert.Equal(t, ledger.ErrAccountNotFound, err)

		actual, err := s.Get(ctx, existing.Address)
		require.NoError(t, err)
		assert.EqualValues(t, 10, actual.Lamports)

		// The same account twice in one commit is rejected.
		assert.Equal(t, ledger.ErrStaleVersion, s.Commit(ctx, fresh, &ledger.Record{Address: fresh.Address, Owner: fresh.Owner}))
		_, err = s.Get(ctx, fresh.Address)
		assert.Equal(t, ledger.ErrAccountNotFound, err)

		actual.Lamports = 5
		fresh.Version = 0
		require.NoError(t, s.Commit(ctx, fresh, actual))

		records, err := s.GetBatch(ctx, fresh.Address, existing.Address)
		require.NoError(t, err)
		require.Len(t, records, 2)
	})
}

func testGetBatch(t *testing.T, s ledger.Store) {
	t.Run("testGetBatch", func(t *testing.T) {
		ctx := context.Background()

		records, err := s.GetBatch(ctx)
		require.NoError(t, err)
		assert.Empty(t, records)

		var addresses []string
		for i := 0; i < 5; i++ {
			record := &ledger.Record{
				Address:  newAddress(t),
				Owner:    newAddress(t),
				Lamports: uint64(i),
			}
			require.NoError(t, s.Commit(ctx, record))
			addresses = append(addresses, record.Address)
		}

		records, err = s.GetBatch(ctx, addresses[1], addresses[2], newAddress(t))
		require.NoError(t, err)
		require.Len(t, records, 2)

		found := map[string]bool{}
		for _, record := range records {
			found[record.Address] = true
		}
		assert.True(t, found[addresses[1]])
		assert.True(t, found[addresses[2]])
	})
}

func testGetAllByOwner(t *testing.T, s ledger.Store) {
	t.Run("testGetAllByOwner", func(t *testing.T) {
		ctx := context.Background()

		owner := newAddress(t)

		_, err := s.GetAllByOwner(ctx, owner)
		assert.Equal(t, ledger.ErrAccountNotFound, err)

		var expected []string
		for i := 0; i < 3; i++ {
			record := &ledger.Record{
				Address: newAddress(t),
				Owner:   owner,
			}
			require.NoError(t, s.Commit(ctx, record))
			expected = append(expected, record.Address)
		}
		require.NoError(t, s.Commit(ctx, &ledger.Record{Address: newAddress(t), Owner: newAddress(t)}))

		records, err := s.GetAllByOwner(ctx, owner)
		require.NoError(t, err)
		require.Len(t, records, 3)
		for i, record := range records {
			assert.Equal(t, expected[i], record.Address)
		}
	})
}

func testValidation(t *testing.T, s ledger.Store) {
	t.Run("testValidation", func(t *testing.T) {
		ctx := context.Background()

		for _, invalid := range []*ledger.Record{
			{Address: "bad", Owner: newAddress(t)},
			{Address: newAddress(t), Owner: ""},
			{Address: newAddress(t), Owner: newAddress(t), Lamports: 1 << 63},
		} {
			assert.Error(t, s.Commit(ctx, invalid))
		}
	})
}

func assertEquivalentRecords(t *testing.T, obj1, obj2 *ledger.Record) {
	assert.Equal(t, obj1.Address, obj2.Address)
	assert.Equal(t, obj1.Owner, obj2.Owner)
	assert.Equal(t, obj1.Lamports, obj2.Lamports)
	assert.Equal(t, obj1.Data, obj2.Data)
	assert.Equal(t, obj1.Executable, obj2.Executable)
}

func newAddress(t *testing.T) string {
	pub, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	return base58.Encode(pub)
}
