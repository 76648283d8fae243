package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/code-payments/code-multisig/pkg/solana"
	"github.com/code-payments/code-multisig/pkg/solana/multisig"
)

func (c *cli) decodeCommand() *cobra.Command {
	var encoding string

	cmd := &cobra.Command{
		Use:   "decode",
		Short: "Decode instruction or account data",
	}
	cmd.PersistentFlags().StringVar(&encoding, "encoding", encodingHex, "input encoding: hex, base58 or base64")

	instructionCmd := &cobra.Command{
		Use:   "instruction <data>",
		Short: "Decode instruction data, including the instruction tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := decodeBytes(args[0], encoding)
			if err != nil {
				return err
			}
			return printInstruction(cmd.OutOrStdout(), data)
		},
	}

	accountCmd := &cobra.Command{
		Use:   "account <data>",
		Short: "Decode a multisig or multisig config account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := decodeBytes(args[0], encoding)
			if err != nil {
				return err
			}
			return printAccountData(cmd.OutOrStdout(), data)
		},
	}

	errorCmd := &cobra.Command{
		Use:   "error <json>",
		Short: "Explain the err field of an RPC transaction status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return printTransactionError(cmd.OutOrStdout(), args[0])
		},
	}

	cmd.AddCommand(instructionCmd, accountCmd, errorCmd)
	return cmd
}

func printInstruction(w io.Writer, data []byte) error {
	tag, payload, err := multisig.SplitInstructionData(data)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "instruction: %s\n", tag)

	switch tag {
	case multisig.InstructionTypeInitMultisig:
		args, err := multisig.InitMultisigInstructionArgsFromBinary(payload)
		if err != nil {
			return err
		}

		fmt.Fprintf(w, "min_threshold: %d\n", args.MinThreshold)
		fmt.Fprintf(w, "max_expiry: %d\n", args.MaxExpiry)
		fmt.Fprintf(w, "num_members: %d\n", len(args.Members))
		for i, member := range args.Members {
			fmt.Fprintf(w, "  [%d] %s\n", i, base58.Encode(member))
		}
	case multisig.InstructionTypeUpdateMembers:
		args, err := multisig.UpdateMembersInstructionArgsFromBinary(payload)
		if err != nil {
			return err
		}

		fmt.Fprintf(w, "update_type: %s\n", args.UpdateType)
		fmt.Fprintf(w, "member_key: %s\n", base58.Encode(args.MemberKey))
		fmt.Fprintf(w, "permission: %s\n", args.Permission)
		fmt.Fprintf(w, "is_active: %v\n", args.IsActive)
		fmt.Fprintf(w, "payer_index: %d\n", args.PayerIndex)
		fmt.Fprintf(w, "member_index: %d\n", args.MemberIndex)
	case multisig.InstructionTypeClaimAdmin:
		args, err := multisig.ClaimAdminInstructionArgsFromBinary(payload)
		if err != nil {
			return err
		}

		fmt.Fprintf(w, "member_index: %d\n", args.MemberIndex)
	}

	return nil
}

func printAccountData(w io.Writer, data []byte) error {
	switch multisig.AccountTypeOf(data) {
	case multisig.AccountTypeMultisig:
		var record multisig.MultisigAccount
		if err := record.Unmarshal(data); err != nil {
			return err
		}
		printMultisig(w, &record)
	case multisig.AccountTypeMultisigConfig:
		var record multisig.MultisigConfigAccount
		if err := record.Unmarshal(data); err != nil {
			return err
		}
		printConfig(w, &record)
	default:
		return errors.Wrap(multisig.ErrInvalidAccountData, "unknown account type")
	}
	return nil
}

func printMultisig(w io.Writer, record *multisig.MultisigAccount) {
	fmt.Fprintf(w, "creator: %s\n", base58.Encode(record.Creator))
	fmt.Fprintf(w, "treasury: %s (bump %d)\n", base58.Encode(record.Treasury), record.TreasuryBump)
	fmt.Fprintf(w, "bump: %d\n", record.Bump)
	if record.Admin != nil {
		fmt.Fprintf(w, "admin: %s\n", base58.Encode(record.Admin))
	}
	if record.AdminSpendingLimit != nil {
		fmt.Fprintf(w, "admin_spending_limit: %d\n", *record.AdminSpendingLimit)
	}
	fmt.Fprintf(w, "min_threshold: %d\n", record.MinThreshold)
	fmt.Fprintf(w, "max_expiry: %d\n", record.MaxExpiry)
	fmt.Fprintf(w, "transaction_index: %d\n", record.TransactionIndex)
	fmt.Fprintf(w, "stale_transaction_index: %d\n", record.StaleTransactionIndex)
	fmt.Fprintf(w, "num_members: %d\n", record.NumMembers())
	for i, m := range record.Roster.Members() {
		state := "active"
		if !m.IsActive {
			state = "inactive"
		}
		fmt.Fprintf(w, "  [%d] %s %s %s\n", i, base58.Encode(m.Key), m.Permission, state)
	}
}

func printConfig(w io.Writer, record *multisig.MultisigConfigAccount) {
	fmt.Fprintf(w, "min_threshold: %d\n", record.MinThreshold)
	fmt.Fprintf(w, "max_expiry: %d\n", record.MaxExpiry)
	fmt.Fprintf(w, "proposal_count: %d\n", record.ProposalCount)
	fmt.Fprintf(w, "bump: %d\n", record.Bump)
}

func printTransactionError(w io.Writer, value string) error {
	d := json.NewDecoder(strings.NewReader(value))
	d.UseNumber()

	var raw interface{}
	if err := d.Decode(&raw); err != nil {
		return errors.Wrap(err, "invalid json")
	}

	txnErr, err := solana.ParseTransactionError(raw)
	if err != nil {
		return err
	}
	if txnErr == nil {
		fmt.Fprintln(w, "error: none")
		return nil
	}

	fmt.Fprintf(w, "error: %s\n", txnErr.ErrorKey())

	instructionErr := txnErr.InstructionError()
	if instructionErr == nil {
		return nil
	}
	fmt.Fprintf(w, "instruction: %d\n", instructionErr.Index)

	custom := instructionErr.CustomError()
	if custom == nil {
		fmt.Fprintf(w, "instruction_error: %s\n", instructionErr.ErrorKey())
		return nil
	}

	if kind, ok := multisig.MultisigErrorFromCode(uint32(*custom)); ok {
		fmt.Fprintf(w, "program_error: %#x %s\n", kind.Code(), kind.Name())
	} else {
		fmt.Fprintf(w, "program_error: %#x\n", uint32(*custom))
	}
	return nil
}
