package solana

import (
	"bytes"
	"crypto/ed25519"
	"fmt"

	"github.com/mr-tron/base58/base58"
)

// AccountInfo contains the Solana account information (not to be confused with a TokenAccount).
//
// Key, IsSigner and IsWritable are only populated when the account is passed
// to a program during instruction execution.
type AccountInfo struct {
	Key        ed25519.PublicKey
	Owner      ed25519.PublicKey
	Lamports   uint64
	Data       []byte
	Executable bool

	IsSigner   bool
	IsWritable bool
}

// IsOwnedBy reports whether program owns the account.
func (a *AccountInfo) IsOwnedBy(program ed25519.PublicKey) bool {
	return bytes.Equal(a.Owner, program)
}

// IsUnused reports whether the account has never been allocated or funded.
func (a *AccountInfo) IsUnused() bool {
	return a.Lamports == 0 && len(a.Data) == 0
}

func (a *AccountInfo) Clone() *AccountInfo {
	return &AccountInfo{
		Key:        append(ed25519.PublicKey{}, a.Key...),
		Owner:      append(ed25519.PublicKey{}, a.Owner...),
		Lamports:   a.Lamports,
		Data:       append([]byte{}, a.Data...),
		Executable: a.Executable,
		IsSigner:   a.IsSigner,
		IsWritable: a.IsWritable,
	}
}

func (a *AccountInfo) String() string {
	return fmt.Sprintf(
		"AccountInfo{key=%s,owner=%s,lamports=%d,data_len=%d,executable=%v,signer=%v,writable=%v}",
		base58.Encode(a.Key),
		base58.Encode(a.Owner),
		a.Lamports,
		len(a.Data),
		a.Executable,
		a.IsSigner,
		a.IsWritable,
	)
}
