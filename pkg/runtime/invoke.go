package runtime

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"math/bits"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"

	"github.com/code-payments/code-multisig/pkg/solana"
	"github.com/code-payments/code-multisig/pkg/solana/system"
)

const (
	// MaxInvokeDepth bounds the instruction stack, including the top level
	// instruction.
	MaxInvokeDepth = 4
)

// InvokeContext is handed to a Program for a single instruction invocation.
//
// Accounts are listed in instruction order. An account referenced more than
// once shares the same *solana.AccountInfo. Programs mutate account state in
// place; the changes are checked against the ownership and privilege rules
// once the program returns.
type InvokeContext struct {
	ProgramID ed25519.PublicKey
	Accounts  []*solana.AccountInfo
	Data      []byte

	txn   *transaction
	frame *frame
}

// Rent returns the rent parameters in effect for the transaction.
func (ic *InvokeContext) Rent() system.Rent {
	return ic.txn.rent
}

// TransactionID returns the id the bank assigned to the executing
// transaction.
func (ic *InvokeContext) TransactionID() string {
	return ic.txn.id.String()
}

// Depth is 0 for a top level instruction and increments with each nested
// invocation.
func (ic *InvokeContext) Depth() int {
	return ic.frame.depth
}

// InvokeSigned executes ix as a nested instruction on behalf of the invoking
// program. Each entry of signerSeeds is a set of seeds that, combined with
// the invoking program id, derives an address that is treated as having
// signed ix.
//
// Every account of ix must be available to the invoking instruction, and may
// only be passed as writable, or as a signer, if the invoking instruction had
// that privilege or the account is one of the derived signers.
func (ic *InvokeContext) InvokeSigned(ctx context.Context, ix solana.Instruction, signerSeeds ...[][]byte) error {
	if ic.frame.depth+1 >= MaxInvokeDepth {
		return solana.InstructionErrorCallDepth
	}

	program, ok := ic.txn.bank.getProgram(ix.Program)
	if !ok {
		return errors.Wrapf(solana.InstructionErrorUnsupportedProgramID, "program %s", base58.Encode(ix.Program))
	}

	signers := make(map[string]struct{})
	for _, seeds := range signerSeeds {
		address, err := solana.CreateProgramAddress(ic.ProgramID, seeds...)
		if err != nil {
			return errors.Wrap(solana.InstructionErrorInvalidSeeds, err.Error())
		}
		signers[string(address)] = struct{}{}
	}

	for _, meta := range ix.Accounts {
		caller, ok := ic.frame.views[string(meta.PublicKey)]
		if !ok {
			return errors.Wrapf(solana.InstructionErrorMissingAccount, "account %s", base58.Encode(meta.PublicKey))
		}

		if meta.IsWritable && !caller.IsWritable {
			return errors.Wrapf(solana.InstructionErrorPrivilegeEscalation, "account %s is not writable", base58.Encode(meta.PublicKey))
		}

		if meta.IsSigner && !caller.IsSigner {
			if _, ok := signers[string(meta.PublicKey)]; !ok {
				return errors.Wrapf(solana.InstructionErrorPrivilegeEscalation, "account %s did not sign", base58.Encode(meta.PublicKey))
			}
		}
	}

	// Changes the caller made so far must be legal before they become
	// visible to the callee.
	if err := ic.frame.verify(); err != nil {
		return err
	}

	callee, accounts, err := newFrame(ix.Program, ix.Accounts, ic.frame.views, ic.frame.depth+1)
	if err != nil {
		return err
	}

	if err := program.Process(ctx, &InvokeContext{
		ProgramID: append(ed25519.PublicKey{}, ix.Program...),
		Accounts:  accounts,
		Data:      append([]byte{}, ix.Data...),
		txn:       ic.txn,
		frame:     callee,
	}); err != nil {
		return err
	}

	if err := callee.verify(); err != nil {
		return err
	}

	callee.writeTo(ic.frame.views)
	ic.frame.snapshot()

	return nil
}

// frame holds the account views of one instruction invocation along with
// their state at the start of the invocation.
type frame struct {
	programID ed25519.PublicKey
	depth     int

	keys  []string
	views map[string]*solana.AccountInfo
	pre   map[string]*solana.AccountInfo
}

func newFrame(programID ed25519.PublicKey, metas []solana.AccountMeta, source map[string]*solana.AccountInfo, depth int) (*frame, []*solana.AccountInfo, error) {
	f := &frame{
		programID: programID,
		depth:     depth,
		views:     make(map[string]*solana.AccountInfo),
		pre:       make(map[string]*solana.AccountInfo),
	}

	accounts := make([]*solana.AccountInfo, len(metas))
	for i, meta := range metas {
		key := string(meta.PublicKey)

		view, ok := f.views[key]
		if !ok {
			state, ok := source[key]
			if !ok {
				return nil, nil, errors.Wrapf(solana.InstructionErrorMissingAccount, "account %s", base58.Encode(meta.PublicKey))
			}

			view = state.Clone()
			view.IsSigner = false
			view.IsWritable = false

			f.keys = append(f.keys, key)
			f.views[key] = view
		}

		view.IsSigner = view.IsSigner || meta.IsSigner
		view.IsWritable = view.IsWritable || meta.IsWritable
		accounts[i] = view
	}

	f.snapshot()
	return f, accounts, nil
}

func (f *frame) snapshot() {
	for _, key := range f.keys {
		f.pre[key] = f.views[key].Clone()
	}
}

// verify checks the changes made since the last snapshot:
//   - readonly accounts are unchanged
//   - only the owning program may change an account's data or owner, or
//     debit its lamports
//   - lamports are neither created nor destroyed
func (f *frame) verify() error {
	var preHi, preLo, postHi, postLo uint64
	var carry uint64

	for _, key := range f.keys {
		pre, post := f.pre[key], f.views[key]

		preLo, carry = bits.Add64(preLo, pre.Lamports, 0)
		preHi += carry
		postLo, carry = bits.Add64(postLo, post.Lamports, 0)
		postHi += carry

		ownerChanged := !bytes.Equal(pre.Owner, post.Owner)
		dataChanged := !bytes.Equal(pre.Data, post.Data)
		lamportsChanged := pre.Lamports != post.Lamports

		if !post.IsWritable {
			if lamportsChanged {
				return errors.Wrapf(solana.InstructionErrorReadonlyLamportChange, "account %s", base58.Encode(post.Key))
			}
			if ownerChanged || dataChanged {
				return errors.Wrapf(solana.InstructionErrorReadonlyDataModified, "account %s", base58.Encode(post.Key))
			}
			continue
		}

		if pre.IsOwnedBy(f.programID) {
			continue
		}

		if ownerChanged {
			return errors.Wrapf(solana.InstructionErrorModifiedProgramID, "account %s", base58.Encode(post.Key))
		}
		if dataChanged {
			return errors.Wrapf(solana.InstructionErrorExternalAccountDataModified, "account %s", base58.Encode(post.Key))
		}
		if post.Lamports < pre.Lamports {
			return errors.Wrapf(solana.InstructionErrorExternalAccountLamportSpend, "account %s", base58.Encode(post.Key))
		}
	}

	if preHi != postHi || preLo != postLo {
		return solana.InstructionErrorUnbalancedInstruction
	}

	return nil
}

// writeTo copies the account state of every view into dst.
func (f *frame) writeTo(dst map[string]*solana.AccountInfo) {
	for _, key := range f.keys {
		view, target := f.views[key], dst[key]
		target.Owner = append(ed25519.PublicKey{}, view.Owner...)
		target.Lamports = view.Lamports
		target.Data = append([]byte{}, view.Data...)
	}
}
