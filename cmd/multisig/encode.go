package main

import (
	"crypto/ed25519"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/code-payments/code-multisig/pkg/solana/multisig"
)

func (c *cli) encodeCommand() *cobra.Command {
	var encoding string

	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Encode instruction data, including the instruction tag",
	}
	cmd.PersistentFlags().StringVar(&encoding, "encoding", encodingHex, "output encoding: hex, base58 or base64")

	output := func(cmd *cobra.Command, tag multisig.InstructionType, payload []byte) error {
		encoded, err := encodeBytes(append([]byte{byte(tag)}, payload...), encoding)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), encoded)
		return nil
	}

	var (
		minThreshold uint8
		maxExpiry    uint64
		members      []string
	)
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Encode an init multisig instruction",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			keys := make([]ed25519.PublicKey, len(members))
			for i, member := range members {
				key, err := parseKey(member)
				if err != nil {
					return err
				}
				keys[i] = key
			}

			args := &multisig.InitMultisigInstructionArgs{
				MinThreshold: minThreshold,
				MaxExpiry:    maxExpiry,
				Members:      keys,
			}

			// Reject what the program would reject.
			payload := args.Marshal()
			if _, err := multisig.InitMultisigInstructionArgsFromBinary(payload); err != nil {
				return err
			}

			return output(cmd, multisig.InstructionTypeInitMultisig, payload)
		},
	}
	initCmd.Flags().Uint8Var(&minThreshold, "min-threshold", 1, "approvals required to execute a transaction")
	initCmd.Flags().Uint64Var(&maxExpiry, "max-expiry", 0, "maximum proposal lifetime in seconds")
	initCmd.Flags().StringArrayVar(&members, "member", nil, "base58 member key, repeated in roster order")

	var (
		updateType  string
		memberKey   string
		permission  string
		isActive    bool
		payerIndex  uint8
		memberIndex uint8
	)
	updateCmd := &cobra.Command{
		Use:   "update",
		Short: "Encode an update members instruction",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			t, err := multisig.ParseUpdateType(updateType)
			if err != nil {
				return err
			}

			key, err := parseKey(memberKey)
			if err != nil {
				return err
			}

			p, err := multisig.ParsePermission(permission)
			if err != nil {
				return err
			}

			args := &multisig.UpdateMembersInstructionArgs{
				UpdateType:  t,
				MemberKey:   key,
				Permission:  p,
				IsActive:    isActive,
				PayerIndex:  payerIndex,
				MemberIndex: memberIndex,
			}
			return output(cmd, multisig.InstructionTypeUpdateMembers, args.Marshal())
		},
	}
	updateCmd.Flags().StringVar(&updateType, "type", multisig.UpdateTypeAdd.String(), "add, remove or update_permission")
	updateCmd.Flags().StringVar(&memberKey, "member-key", "", "base58 key of the member being changed")
	updateCmd.Flags().StringVar(&permission, "permission", multisig.PermissionVote.String(), "readonly, vote, vote_and_execute or admin")
	updateCmd.Flags().BoolVar(&isActive, "active", true, "whether the member is active")
	updateCmd.Flags().Uint8Var(&payerIndex, "payer-index", 0, "roster slot of the admin signing the update")
	updateCmd.Flags().Uint8Var(&memberIndex, "member-index", 0, "roster slot being changed")
	_ = updateCmd.MarkFlagRequired("member-key")

	var claimIndex uint8
	claimCmd := &cobra.Command{
		Use:   "claim-admin",
		Short: "Encode a claim admin instruction",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return output(cmd, multisig.InstructionTypeClaimAdmin, []byte{claimIndex})
		},
	}
	claimCmd.Flags().Uint8Var(&claimIndex, "member-index", 0, "roster slot promoted to admin")

	cmd.AddCommand(initCmd, updateCmd, claimCmd)
	return cmd
}
