package multisig

import (
	"crypto/ed25519"

	"github.com/mr-tron/base58"
)

func mustBase58Decode(value string) []byte {
	decoded, err := base58.Decode(value)
	if err != nil {
		panic(err)
	}
	return decoded
}

func programOrDefault(program ed25519.PublicKey) ed25519.PublicKey {
	if len(program) == 0 {
		return PROGRAM_ID
	}
	return program
}

// IsZeroKey reports whether key is empty or all zero bytes, which marks an
// unoccupied roster slot.
func IsZeroKey(key ed25519.PublicKey) bool {
	for _, b := range key {
		if b != 0 {
			return false
		}
	}
	return true
}

func cloneKey(key ed25519.PublicKey) ed25519.PublicKey {
	if key == nil {
		return nil
	}
	return append(ed25519.PublicKey{}, key...)
}
