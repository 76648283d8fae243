package runtime

import (
	"context"
	"math"

	"github.com/pkg/errors"

	"github.com/code-payments/code-multisig/pkg/solana"
	"github.com/code-payments/code-multisig/pkg/solana/system"
)

const (
	// MaxPermittedDataLength is the largest account the system program will
	// allocate.
	//
	// Source: https://github.com/solana-labs/solana/blob/f02a78d8fff2dd7297dc6ce6eb5a68a3002f5359/sdk/program/src/system_instruction.rs#L80
	MaxPermittedDataLength = 10 * 1024 * 1024
)

// systemProgram is the native program owning every wallet account. It
// supports CreateAccount and Transfer.
type systemProgram struct{}

func (systemProgram) Process(_ context.Context, ic *InvokeContext) error {
	ix := solana.Instruction{
		Program:  ic.ProgramID,
		Data:     ic.Data,
		Accounts: make([]solana.AccountMeta, len(ic.Accounts)),
	}
	for i, account := range ic.Accounts {
		ix.Accounts[i] = solana.AccountMeta{
			PublicKey:  account.Key,
			IsSigner:   account.IsSigner,
			IsWritable: account.IsWritable,
		}
	}

	switch {
	case system.IsCreateAccount(ix):
		args, err := system.CreateAccountFromInstruction(ix)
		if err != nil {
			return errors.Wrap(solana.InstructionErrorInvalidInstructionData, err.Error())
		}
		return createAccount(ic, ic.Accounts[0], ic.Accounts[1], args)
	case system.IsTransfer(ix):
		args, err := system.TransferFromInstruction(ix)
		if err != nil {
			return errors.Wrap(solana.InstructionErrorInvalidInstructionData, err.Error())
		}
		return transfer(ic.Accounts[0], ic.Accounts[1], args.Lamports)
	default:
		return solana.InstructionErrorInvalidInstructionData
	}
}

func createAccount(ic *InvokeContext, funder, target *solana.AccountInfo, args *system.DecompiledCreateAccount) error {
	if !funder.IsSigner {
		return errors.Wrap(solana.InstructionErrorMissingRequiredSignature, "funder")
	}
	if !target.IsSigner {
		return errors.Wrap(solana.InstructionErrorMissingRequiredSignature, "new account")
	}

	if !target.IsUnused() || !target.IsOwnedBy(system.SystemAccount) {
		return system.ErrAccountAlreadyInUse
	}

	if args.Size > MaxPermittedDataLength {
		return system.ErrInvalidAccountDataLength
	}

	if args.Lamports < ic.Rent().MinimumBalance(args.Size) {
		return errors.Wrapf(solana.InstructionErrorInsufficientFunds, "%d lamports is not rent exempt for %d bytes", args.Lamports, args.Size)
	}

	if err := transfer(funder, target, args.Lamports); err != nil {
		return err
	}

	target.Data = make([]byte, args.Size)
	target.Owner = append([]byte{}, args.Owner...)

	return nil
}

func transfer(from, to *solana.AccountInfo, lamports uint64) error {
	if !from.IsSigner {
		return errors.Wrap(solana.InstructionErrorMissingRequiredSignature, "from")
	}
	if len(from.Data) > 0 {
		return errors.Wrap(solana.InstructionErrorInvalidArgument, "from must not carry data")
	}
	if from.Lamports < lamports {
		return system.ErrResultWithNegativeLamports
	}

	// Transfers to self leave the balance untouched.
	if from == to {
		return nil
	}

	if lamports > math.MaxInt64 || to.Lamports > math.MaxInt64-lamports {
		return errors.Wrap(solana.InstructionErrorInvalidArgument, "lamport overflow")
	}

	from.Lamports -= lamports
	to.Lamports += lamports
	return nil
}
