package ledger

import (
	"bytes"
	"crypto/ed25519"
	"errors"
	"math"
	"time"

	"github.com/mr-tron/base58"

	"github.com/code-payments/code-multisig/pkg/solana"
)

var (
	ErrAccountNotFound = errors.New("ledger account not found")
	ErrStaleVersion    = errors.New("ledger account version is stale")
)

// Record is the persisted state of a single account.
type Record struct {
	Id uint64

	Address    string
	Owner      string
	Lamports   uint64
	Data       []byte
	Executable bool

	// Version is zero for an account that has never been committed, and is
	// incremented by every successful commit.
	Version uint64

	LastUpdatedAt time.Time
}

// NewRecordFromAccountInfo converts account state observed during execution
// into a record. The version must be carried over from the record the state
// was loaded from.
func NewRecordFromAccountInfo(info *solana.AccountInfo, version uint64) *Record {
	return &Record{
		Address:    base58.Encode(info.Key),
		Owner:      base58.Encode(info.Owner),
		Lamports:   info.Lamports,
		Data:       append([]byte{}, info.Data...),
		Executable: info.Executable,
		Version:    version,
	}
}

// ToAccountInfo decodes the record into the account view passed to programs.
func (r *Record) ToAccountInfo() (*solana.AccountInfo, error) {
	key, err := decodeKey(r.Address)
	if err != nil {
		return nil, err
	}
	owner, err := decodeKey(r.Owner)
	if err != nil {
		return nil, err
	}

	return &solana.AccountInfo{
		Key:        key,
		Owner:      owner,
		Lamports:   r.Lamports,
		Data:       append([]byte{}, r.Data...),
		Executable: r.Executable,
	}, nil
}

// Equal reports whether two records hold the same account state, ignoring
// bookkeeping fields.
func (r *Record) Equal(other *Record) bool {
	return r.Address == other.Address &&
		r.Owner == other.Owner &&
		r.Lamports == other.Lamports &&
		bytes.Equal(r.Data, other.Data) &&
		r.Executable == other.Executable
}

func (r *Record) Validate() error {
	if _, err := decodeKey(r.Address); err != nil {
		return errors.New("address is not a valid public key")
	}
	if _, err := decodeKey(r.Owner); err != nil {
		return errors.New("owner is not a valid public key")
	}
	if r.Lamports > math.MaxInt64 {
		return errors.New("lamports exceeds the storable range")
	}
	return nil
}

func (r *Record) Clone() Record {
	return Record{
		Id:            r.Id,
		Address:       r.Address,
		Owner:         r.Owner,
		Lamports:      r.Lamports,
		Data:          append([]byte{}, r.Data...),
		Executable:    r.Executable,
		Version:       r.Version,
		LastUpdatedAt: r.LastUpdatedAt,
	}
}

func (r *Record) CopyTo(dst *Record) {
	dst.Id = r.Id
	dst.Address = r.Address
	dst.Owner = r.Owner
	dst.Lamports = r.Lamports
	dst.Data = append([]byte{}, r.Data...)
	dst.Executable = r.Executable
	dst.Version = r.Version
	dst.LastUpdatedAt = r.LastUpdatedAt
}

func decodeKey(value string) (ed25519.PublicKey, error) {
	decoded, err := base58.Decode(value)
	if err != nil {
		return nil, err
	}
	if len(decoded) != ed25519.PublicKeySize {
		return nil, errors.New("invalid public key length")
	}
	return decoded, nil
}
