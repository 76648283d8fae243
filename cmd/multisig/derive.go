package main

import (
	"crypto/ed25519"
	"fmt"
	"io"

	"github.com/mr-tron/base58"
	"github.com/spf13/cobra"

	"github.com/code-payments/code-multisig/pkg/solana/multisig"
)

type derivedAccounts struct {
	Multisig     ed25519.PublicKey
	MultisigBump uint8
	Treasury     ed25519.PublicKey
	TreasuryBump uint8
	Config       ed25519.PublicKey
	ConfigBump   uint8
}

func deriveAccounts(program, creator ed25519.PublicKey) (*derivedAccounts, error) {
	var res derivedAccounts
	var err error

	res.Multisig, res.MultisigBump, err = multisig.GetMultisigAddress(&multisig.GetMultisigAddressArgs{
		Program: program,
		Creator: creator,
	})
	if err != nil {
		return nil, err
	}

	res.Treasury, res.TreasuryBump, err = multisig.GetTreasuryAddress(&multisig.GetTreasuryAddressArgs{
		Program:  program,
		Multisig: res.Multisig,
	})
	if err != nil {
		return nil, err
	}

	res.Config, res.ConfigBump, err = multisig.GetMultisigConfigAddress(&multisig.GetMultisigConfigAddressArgs{
		Program:  program,
		Multisig: res.Multisig,
	})
	if err != nil {
		return nil, err
	}

	return &res, nil
}

func (d *derivedAccounts) print(w io.Writer, withConfig bool) {
	fmt.Fprintf(w, "multisig: %s (bump %d)\n", base58.Encode(d.Multisig), d.MultisigBump)
	fmt.Fprintf(w, "treasury: %s (bump %d)\n", base58.Encode(d.Treasury), d.TreasuryBump)
	if withConfig {
		fmt.Fprintf(w, "config:   %s (bump %d)\n", base58.Encode(d.Config), d.ConfigBump)
	}
}

func (c *cli) deriveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "derive <creator>",
		Short: "Derive the multisig, treasury and config addresses of a creator",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			program, err := c.config.programID()
			if err != nil {
				return err
			}

			creator, err := parseKey(args[0])
			if err != nil {
				return err
			}

			derived, err := deriveAccounts(program, creator)
			if err != nil {
				return err
			}

			derived.print(cmd.OutOrStdout(), c.config.SeparateConfig)
			return nil
		},
	}
}
