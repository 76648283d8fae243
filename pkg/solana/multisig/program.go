package multisig

import (
	"crypto/ed25519"

	"github.com/pkg/errors"
)

var (
	ErrInvalidProgram = errors.New("invalid program id")
)

var (
	PROGRAM_ADDRESS = mustBase58Decode("DDCWbX6u3EVFXb8t3GG5NszRc5FQbCwwJds9GnbwvRY7")
	PROGRAM_ID      = ed25519.PublicKey(PROGRAM_ADDRESS)
)

var (
	SYSTEM_PROGRAM_ID = ed25519.PublicKey(mustBase58Decode("11111111111111111111111111111111"))
)

const (
	// MaxMembers is the fixed capacity of a multisig roster.
	MaxMembers = 10
)
