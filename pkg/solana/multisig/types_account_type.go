package multisig

import (
	"github.com/pkg/errors"

	"github.com/code-payments/code-multisig/pkg/solana/binary"
)

type AccountType uint8

const (
	AccountTypeUnknown AccountType = iota
	AccountTypeMultisig
	AccountTypeMultisigConfig
)

type DataVersion uint8

const (
	DataVersionUnknown DataVersion = iota
	DataVersion1
)

const (
	DiscriminatorSize = 8
)

func putDiscriminator(dst []byte, accountType AccountType, offset *int) {
	dst[0] = byte(accountType)
	dst[1] = byte(DataVersion1)
	for i := 2; i < DiscriminatorSize; i++ {
		dst[i] = 0
	}
	*offset += DiscriminatorSize
}

// getDiscriminator consumes the account tag and fails unless it names the
// expected account type at the current data version.
func getDiscriminator(r *binary.Reader, expected AccountType) error {
	raw, err := r.ReadBytes(DiscriminatorSize)
	if err != nil {
		return errors.Wrap(ErrInvalidAccountData, err.Error())
	}

	if AccountType(raw[0]) != expected {
		return errors.Wrapf(ErrInvalidAccountData, "unexpected account type %d", raw[0])
	}
	if DataVersion(raw[1]) != DataVersion1 {
		return errors.Wrapf(ErrInvalidAccountData, "unsupported data version %d", raw[1])
	}
	for _, b := range raw[2:] {
		if b != 0 {
			return errors.Wrap(ErrInvalidAccountData, "non-zero discriminator padding")
		}
	}
	return nil
}

// AccountTypeOf returns the account type tagged in data, without validating
// the rest of the record.
func AccountTypeOf(data []byte) AccountType {
	if len(data) < DiscriminatorSize {
		return AccountTypeUnknown
	}
	switch AccountType(data[0]) {
	case AccountTypeMultisig, AccountTypeMultisigConfig:
		return AccountType(data[0])
	}
	return AccountTypeUnknown
}

func (t AccountType) String() string {
	switch t {
	case AccountTypeMultisig:
		return "multisig"
	case AccountTypeMultisigConfig:
		return "multisig_config"
	}
	return "unknown"
}
