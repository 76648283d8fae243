package binary

import (
	"crypto/ed25519"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPutAndRead(t *testing.T) {
	key, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	limit := uint64(1_000_000)

	size := 1 + 1 + 4 + 8 + 32 + (OptionSize + 32) + (OptionSize + 8) + (OptionSize + 32) + (OptionSize + 8)
	buf := make([]byte, size)

	var offset int
	PutUint8(buf[offset:], 7, &offset)
	PutBool(buf[offset:], true, &offset)
	PutUint32(buf[offset:], 0xdeadbeef, &offset)
	PutUint64(buf[offset:], 1<<40, &offset)
	PutKey32(buf[offset:], key, &offset)
	PutOptionalKey32(buf[offset:], key, &offset)
	PutOptionalUint64(buf[offset:], &limit, &offset)
	PutOptionalKey32(buf[offset:], nil, &offset)
	PutOptionalUint64(buf[offset:], nil, &offset)
	require.Equal(t, size, offset)

	r := NewReader(buf)

	u8, err := r.ReadUint8()
	require.NoError(t, err)
	assert.EqualValues(t, 7, u8)

	b, err := r.ReadBool()
	require.NoError(t, err)
	assert.True(t, b)

	u32, err := r.ReadUint32()
	require.NoError(t, err)
	assert.EqualValues(t, 0xdeadbeef, u32)

	u64, err := r.ReadUint64()
	require.NoError(t, err)
	assert.EqualValues(t, 1<<40, u64)

	k, err := r.ReadKey32()
	require.NoError(t, err)
	assert.EqualValues(t, key, k)

	optionalKey, err := r.ReadOptionalKey32()
	require.NoError(t, err)
	assert.EqualValues(t, key, optionalKey)

	optionalLimit, err := r.ReadOptionalUint64()
	require.NoError(t, err)
	require.NotNil(t, optionalLimit)
	assert.Equal(t, limit, *optionalLimit)

	optionalKey, err = r.ReadOptionalKey32()
	require.NoError(t, err)
	assert.Nil(t, optionalKey)

	optionalLimit, err = r.ReadOptionalUint64()
	require.NoError(t, err)
	assert.Nil(t, optionalLimit)

	assert.Equal(t, 0, r.Remaining())
	assert.Equal(t, size, r.Offset())
}

func TestReader_ShortBuffer(t *testing.T) {
	for _, tc := range []struct {
		name string
		size int
		read func(r *Reader) error
	}{
		{"uint8", 1, func(r *Reader) error { _, err := r.ReadUint8(); return err }},
		{"bool", 1, func(r *Reader) error { _, err := r.ReadBool(); return err }},
		{"uint32", 4, func(r *Reader) error { _, err := r.ReadUint32(); return err }},
		{"uint64", 8, func(r *Reader) error { _, err := r.ReadUint64(); return err }},
		{"key32", 32, func(r *Reader) error { _, err := r.ReadKey32(); return err }},
		{"bytes", 5, func(r *Reader) error { _, err := r.ReadBytes(5); return err }},
		{"skip", 3, func(r *Reader) error { return r.Skip(3) }},
		{"optional key32", OptionSize + 32, func(r *Reader) error { _, err := r.ReadOptionalKey32(); return err }},
		{"optional uint64", OptionSize + 8, func(r *Reader) error { _, err := r.ReadOptionalUint64(); return err }},
	} {
		t.Run(tc.name, func(t *testing.T) {
			for n := 0; n < tc.size; n++ {
				r := NewReader(make([]byte, n))

				err := tc.read(r)
				assert.True(t, errors.Is(err, ErrShortBuffer), "length %d: %v", n, err)
				assert.Equal(t, 0, r.Offset())
			}

			r := NewReader(make([]byte, tc.size))
			assert.NoError(t, tc.read(r))
			assert.Equal(t, tc.size, r.Offset())
		})
	}
}

func TestReader_InvalidValues(t *testing.T) {
	r := NewReader([]byte{2})
	_, err := r.ReadBool()
	assert.True(t, errors.Is(err, ErrInvalidBool))
	assert.Equal(t, 0, r.Offset())

	r = NewReader(append([]byte{2}, make([]byte, 32)...))
	_, err = r.ReadOptionalKey32()
	assert.True(t, errors.Is(err, ErrInvalidOptionFlag))
	assert.Equal(t, 0, r.Offset())

	r = NewReader(append([]byte{0xff}, make([]byte, 8)...))
	_, err = r.ReadOptionalUint64()
	assert.True(t, errors.Is(err, ErrInvalidOptionFlag))
}

func TestReader_Require(t *testing.T) {
	r := NewReader(make([]byte, 4))
	assert.NoError(t, r.Require(4))
	assert.True(t, errors.Is(r.Require(5), ErrShortBuffer))
	assert.Error(t, r.Require(-1))
}

func TestReader_ReadBytesCopies(t *testing.T) {
	src := []byte{1, 2, 3}
	r := NewReader(src)

	b, err := r.ReadBytes(3)
	require.NoError(t, err)
	b[0] = 9
	assert.EqualValues(t, 1, src[0])
}
