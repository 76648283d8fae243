package binary

import (
	"crypto/ed25519"
	"encoding/binary"

	"github.com/pkg/errors"
)

var (
	ErrShortBuffer       = errors.New("short buffer")
	ErrInvalidBool       = errors.New("invalid bool value")
	ErrInvalidOptionFlag = errors.New("invalid option flag")
)

// Reader is a little-endian cursor over a byte slice. Every read checks the
// remaining length first and fails with ErrShortBuffer instead of reading past
// the end of the buffer. A failed read does not advance the cursor.
type Reader struct {
	buf    []byte
	offset int
}

func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Offset returns the number of bytes consumed so far.
func (r *Reader) Offset() int {
	return r.offset
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.buf) - r.offset
}

// Require fails unless at least n unread bytes are available.
func (r *Reader) Require(n int) error {
	if n < 0 {
		return errors.Errorf("negative length %d", n)
	}
	if r.Remaining() < n {
		return errors.Wrapf(ErrShortBuffer, "need %d bytes at offset %d, have %d", n, r.offset, r.Remaining())
	}
	return nil
}

func (r *Reader) next(n int) ([]byte, error) {
	if err := r.Require(n); err != nil {
		return nil, err
	}

	b := r.buf[r.offset : r.offset+n]
	r.offset += n
	return b, nil
}

func (r *Reader) Skip(n int) error {
	_, err := r.next(n)
	return err
}

func (r *Reader) ReadUint8() (uint8, error) {
	b, err := r.next(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadBool accepts only 0 and 1.
func (r *Reader) ReadBool() (bool, error) {
	if err := r.Require(1); err != nil {
		return false, err
	}

	switch r.buf[r.offset] {
	case 0:
		r.offset++
		return false, nil
	case 1:
		r.offset++
		return true, nil
	default:
		return false, errors.Wrapf(ErrInvalidBool, "%d at offset %d", r.buf[r.offset], r.offset)
	}
}

func (r *Reader) ReadUint32() (uint32, error) {
	b, err := r.next(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *Reader) ReadUint64() (uint64, error) {
	b, err := r.next(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (r *Reader) ReadKey32() (ed25519.PublicKey, error) {
	b, err := r.next(ed25519.PublicKeySize)
	if err != nil {
		return nil, err
	}

	key := make(ed25519.PublicKey, ed25519.PublicKeySize)
	copy(key, b)
	return key, nil
}

// ReadBytes returns a copy of the next n bytes.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	b, err := r.next(n)
	if err != nil {
		return nil, err
	}
	return append([]byte{}, b...), nil
}

// ReadOptionalKey32 returns nil when the option flag is unset. The full
// option width is consumed either way.
func (r *Reader) ReadOptionalKey32() (ed25519.PublicKey, error) {
	set, err := r.readOptionFlag(ed25519.PublicKeySize)
	if err != nil {
		return nil, err
	}

	if !set {
		r.offset += ed25519.PublicKeySize
		return nil, nil
	}
	return r.ReadKey32()
}

// ReadOptionalUint64 returns nil when the option flag is unset. The full
// option width is consumed either way.
func (r *Reader) ReadOptionalUint64() (*uint64, error) {
	set, err := r.readOptionFlag(8)
	if err != nil {
		return nil, err
	}

	if !set {
		r.offset += 8
		return nil, nil
	}

	v, err := r.ReadUint64()
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// readOptionFlag checks that the whole option fits before consuming the
// flag, so a short buffer never leaves the cursor between flag and value.
func (r *Reader) readOptionFlag(valueSize int) (bool, error) {
	if err := r.Require(OptionSize + valueSize); err != nil {
		return false, err
	}

	switch r.buf[r.offset] {
	case 0:
		r.offset += OptionSize
		return false, nil
	case 1:
		r.offset += OptionSize
		return true, nil
	default:
		return false, errors.Wrapf(ErrInvalidOptionFlag, "%d at offset %d", r.buf[r.offset], r.offset)
	}
}
