package main

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"fmt"
	"io"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/code-payments/code-multisig/pkg/metrics"
	"github.com/code-payments/code-multisig/pkg/solana"
	"github.com/code-payments/code-multisig/pkg/solana/multisig"
)

func (c *cli) inspectCommand() *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "inspect <creator>",
		Short: "Fetch and print the multisig of a creator over RPC",
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

			commitment, err := solana.ParseCommitment(status)
			if err != nil {
				return err
			}

			ctx, end := metrics.StartTransaction(cmd.Context(), c.metricsProvider, "inspect")
			defer end()

			client := solana.NewClient(solana.ResolveEndpoint(c.config.RPCEndpoint))
			return inspect(ctx, cmd.OutOrStdout(), client, commitment, program, creator, c.config.SeparateConfig)
		},
	}

	cmd.Flags().StringVar(&status, "commitment", "confirmed", "commitment level: processed, confirmed or finalized")
	cmd.Flags().String("rpc-endpoint", defaultConfig.RPCEndpoint, "Solana JSON RPC endpoint or cluster name (localnet, devnet, testnet, mainnet-beta)")
	bindFlags(c.v, cmd.Flags(), "rpc-endpoint")

	return cmd
}

func inspect(ctx context.Context, w io.Writer, client solana.Client, commitment solana.Commitment, program, creator ed25519.PublicKey, withConfig bool) error {
	derived, err := deriveAccounts(program, creator)
	if err != nil {
		return err
	}
	derived.print(w, withConfig)

	info, err := client.GetAccountInfo(ctx, derived.Multisig, commitment)
	if err == solana.ErrNoAccountInfo {
		fmt.Fprintln(w, "status: not initialized")
		return nil
	} else if err != nil {
		return errors.Wrap(err, "failed to fetch multisig account")
	}

	if !bytes.Equal(info.Owner, program) {
		return errors.Errorf("multisig address is owned by %s", base58.Encode(info.Owner))
	}

	var record multisig.MultisigAccount
	if err := record.Unmarshal(info.Data); err != nil {
		return err
	}

	fmt.Fprintln(w, "status: initialized")
	printMultisig(w, &record)

	treasury, err := client.GetAccountInfo(ctx, derived.Treasury, commitment)
	switch err {
	case nil:
		fmt.Fprintf(w, "treasury_lamports: %d\n", treasury.Lamports)
	case solana.ErrNoAccountInfo:
		fmt.Fprintln(w, "treasury_lamports: 0")
	default:
		return errors.Wrap(err, "failed to fetch treasury account")
	}

	if withConfig {
		info, err := client.GetAccountInfo(ctx, derived.Config, commitment)
		if err != nil {
			return errors.Wrap(err, "failed to fetch config account")
		}

		var config multisig.MultisigConfigAccount
		if err := config.Unmarshal(info.Data); err != nil {
			return err
		}
		fmt.Fprintln(w, "config:")
		printConfig(w, &config)
	}

	return nil
}
