package processor

import (
	"bytes"
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/code-payments/code-multisig/pkg/solana/multisig"
)

// derivedAddresses are the program derived accounts of one creator's multisig.
type derivedAddresses struct {
	multisig     ed25519.PublicKey
	multisigBump uint8

	treasury     ed25519.PublicKey
	treasuryBump uint8

	config     ed25519.PublicKey
	configBump uint8
}

func deriveAddresses(program, creator ed25519.PublicKey) (*derivedAddresses, error) {
	var res derivedAddresses
	var err error

	res.multisig, res.multisigBump, err = multisig.GetMultisigAddress(&multisig.GetMultisigAddressArgs{
		Program: program,
		Creator: creator,
	})
	if err != nil {
		return nil, errors.Wrap(multisig.ErrInvalidDerivedAddress, err.Error())
	}

	res.treasury, res.treasuryBump, err = multisig.GetTreasuryAddress(&multisig.GetTreasuryAddressArgs{
		Program:  program,
		Multisig: res.multisig,
	})
	if err != nil {
		return nil, errors.Wrap(multisig.ErrInvalidDerivedAddress, err.Error())
	}

	res.config, res.configBump, err = multisig.GetMultisigConfigAddress(&multisig.GetMultisigConfigAddressArgs{
		Program:  program,
		Multisig: res.multisig,
	})
	if err != nil {
		return nil, errors.Wrap(multisig.ErrInvalidDerivedAddress, err.Error())
	}

	return &res, nil
}

// check compares supplied accounts against the derived ones. The config
// account is only compared when separateConfig is set.
func (a *derivedAddresses) check(multisigAccount, treasury, config ed25519.PublicKey, separateConfig bool) error {
	if !bytes.Equal(a.multisig, multisigAccount) {
		return errors.Wrap(multisig.ErrInvalidDerivedAddress, "multisig")
	}
	if !bytes.Equal(a.treasury, treasury) {
		return errors.Wrap(multisig.ErrInvalidDerivedAddress, "treasury")
	}
	if separateConfig && !bytes.Equal(a.config, config) {
		return errors.Wrap(multisig.ErrInvalidDerivedAddress, "config")
	}
	return nil
}
