package runtime

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/code-multisig/pkg/ledger"
	"github.com/code-payments/code-multisig/pkg/metrics"
	"github.com/code-payments/code-multisig/pkg/rate"
	"github.com/code-payments/code-multisig/pkg/solana"
	"github.com/code-payments/code-multisig/pkg/solana/system"
	sync_util "github.com/code-payments/code-multisig/pkg/sync"
)

const (
	metricsStructName = "runtime.bank"

	transactionDurationMetricName = "Runtime/Transaction/Duration"
	modifiedAccountsMetricName    = "Runtime/Transaction/ModifiedAccounts"

	lockStripes = 1024
)

var (
	ErrRateLimited              = errors.New("fee payer is rate limited")
	ErrProgramAlreadyRegistered = errors.New("program already registered")
)

// Program is an on-ledger program that the bank can dispatch instructions to.
type Program interface {
	Process(ctx context.Context, ic *InvokeContext) error
}

// ProgramFunc adapts a function to a Program.
type ProgramFunc func(ctx context.Context, ic *InvokeContext) error

// Process implements Program.Process
func (f ProgramFunc) Process(ctx context.Context, ic *InvokeContext) error {
	return f(ctx, ic)
}

// Result describes a successfully executed transaction.
type Result struct {
	ID        uuid.UUID
	Signature solana.Signature

	// Modified lists the accounts whose state was committed, in message
	// order.
	Modified []ed25519.PublicKey
}

// Bank executes transactions against a ledger.Store.
//
// Each transaction runs with every writable account exclusively locked and
// every readonly account share locked. Instructions run in order, and their
// combined effects are committed in a single ledger.Store.Commit only if all
// of them succeed.
type Bank struct {
	log     *logrus.Entry
	conf    *conf
	store   ledger.Store
	locks   *sync_util.StripedLock
	limiter rate.Limiter
	metrics *metrics.CallMetrics

	programsMu sync.RWMutex
	programs   map[string]Program

	signaturesMu sync.Mutex
	signatures   map[solana.Signature]struct{}
}

// NewBank returns a bank backed by store, with the native system program
// registered.
func NewBank(store ledger.Store, configProvider ConfigProvider) *Bank {
	conf := configProvider()

	b := &Bank{
		log:     logrus.StandardLogger().WithField("type", "runtime/bank"),
		conf:    conf,
		store:   store,
		locks:   sync_util.NewStripedLock(lockStripes),
		limiter: rate.NewLimiter(conf.maxTransactionsPerSecond.Get(context.Background())),
		metrics: metrics.NewCallMetrics(
			"runtime_transaction",
			"status",
			"Transactions executed by the runtime bank",
		),
		programs:   make(map[string]Program),
		signatures: make(map[solana.Signature]struct{}),
	}

	b.programs[string(system.SystemAccount)] = systemProgram{}

	return b
}

// RegisterProgram makes program invocable at id.
func (b *Bank) RegisterProgram(id ed25519.PublicKey, program Program) error {
	if len(id) != ed25519.PublicKeySize {
		return errors.Errorf("invalid program id length: %d", len(id))
	}

	b.programsMu.Lock()
	defer b.programsMu.Unlock()

	if _, ok := b.programs[string(id)]; ok {
		return ErrProgramAlreadyRegistered
	}

	b.programs[string(id)] = program
	return nil
}

func (b *Bank) getProgram(id ed25519.PublicKey) (Program, bool) {
	b.programsMu.RLock()
	defer b.programsMu.RUnlock()

	program, ok := b.programs[string(id)]
	return program, ok
}

// Rent returns the rent parameters applied to new accounts.
func (b *Bank) Rent(ctx context.Context) system.Rent {
	return system.Rent{
		LamportsPerByteYear:     b.conf.lamportsPerByteYear.Get(ctx),
		ExemptionThresholdYears: b.conf.exemptionThresholdYears.Get(ctx),
	}
}

// transaction is the execution state of a single transaction.
type transaction struct {
	id   uuid.UUID
	bank *Bank
	rent system.Rent

	keys     []string
	versions map[string]uint64
	loaded   map[string]*solana.AccountInfo
	accounts map[string]*solana.AccountInfo
}

// ExecuteTransaction verifies, executes and commits txn.
//
// Failures attributable to the transaction are returned as a
// *solana.TransactionError, with program failures carried as an
// InstructionError naming the failing instruction. In that case no state is
// committed. Other errors indicate the transaction could not be attempted,
// for example ErrRateLimited or a store failure.
func (b *Bank) ExecuteTransaction(ctx context.Context, txn *solana.Transaction) (*Result, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "ExecuteTransaction")
	defer tracer.End()

	start := time.Now()
	id := uuid.New()

	log := b.log.WithFields(logrus.Fields{
		"method": "ExecuteTransaction",
		"id":     id.String(),
	})

	result, err := b.executeTransaction(ctx, id, txn, log)

	elapsed := time.Since(start)
	b.metrics.Observe(statusOf(err), elapsed, err)
	metrics.RecordDuration(ctx, transactionDurationMetricName, elapsed)
	if err == nil {
		metrics.RecordCount(ctx, modifiedAccountsMetricName, uint64(len(result.Modified)))
	}
	tracer.AddAttribute("id", id.String())
	tracer.OnError(err)

	return result, err
}

func (b *Bank) executeTransaction(ctx context.Context, id uuid.UUID, txn *solana.Transaction, log *logrus.Entry) (*Result, error) {
	if len(txn.Signatures) == 0 || len(txn.Message.Accounts) == 0 {
		return nil, solana.NewTransactionError(solana.TransactionErrorMissingSignatureForFee)
	}

	log = log.WithField("signature", base58.Encode(txn.Signature()))

	instructions := make([]solana.Instruction, len(txn.Message.Instructions))
	for i := range txn.Message.Instructions {
		ix, err := txn.Message.DecompileInstruction(i)
		if err != nil {
			log.WithError(err).Debug("transaction failed to sanitize")
			return nil, solana.NewTransactionError(solana.TransactionErrorSanitizeFailure)
		}
		instructions[i] = ix
	}

	if err := txn.VerifySignatures(); err != nil {
		log.WithError(err).Debug("transaction failed signature verification")
		return nil, solana.NewTransactionError(solana.TransactionErrorSignatureFailure)
	}

	payer := base58.Encode(txn.Message.Accounts[0])
	allowed, err := b.limiter.Allow(payer)
	if err != nil {
		log.WithError(err).Warn("failure checking fee payer rate limit")
	} else if !allowed {
		return nil, ErrRateLimited
	}

	var writes, reads [][]byte
	for i, account := range txn.Message.Accounts {
		if txn.Message.IsWritable(i) {
			writes = append(writes, account)
		} else {
			reads = append(reads, account)
		}
	}

	unlock := b.locks.LockAll(writes, reads)
	defer unlock()

	signature := txn.Signatures[0]
	b.signaturesMu.Lock()
	_, seen := b.signatures[signature]
	b.signaturesMu.Unlock()
	if seen {
		return nil, solana.NewTransactionError(solana.TransactionErrorDuplicateSignature)
	}

	state, err := b.load(ctx, id, txn.Message.Accounts)
	if err != nil {
		return nil, err
	}

	// From here on the transaction was attempted, so its signature may not be
	// replayed.
	b.signaturesMu.Lock()
	b.signatures[signature] = struct{}{}
	b.signaturesMu.Unlock()

	for i, ix := range instructions {
		if err := b.processInstruction(ctx, state, ix); err != nil {
			instructionErr := solana.NewInstructionError(i, err)
			txnErr, convErr := solana.TransactionErrorFromInstructionError(&instructionErr)
			if convErr != nil {
				return nil, errors.Wrap(convErr, "error converting instruction error")
			}

			log.WithFields(logrus.Fields{
				"instruction": i,
				"program":     base58.Encode(ix.Program),
			}).WithError(err).Debug("instruction failed")
			return nil, txnErr
		}
	}

	modified, err := b.commit(ctx, state)
	if err == ledger.ErrStaleVersion {
		log.Warn("ledger state changed during execution")
		return nil, solana.NewTransactionError(solana.TransactionErrorAccountInUse)
	} else if err != nil {
		return nil, errors.Wrap(err, "error committing transaction")
	}

	log.WithField("modified", len(modified)).Debug("transaction executed")

	return &Result{
		ID:        id,
		Signature: signature,
		Modified:  modified,
	}, nil
}

func (b *Bank) processInstruction(ctx context.Context, state *transaction, ix solana.Instruction) error {
	program, ok := b.getProgram(ix.Program)
	if !ok {
		return errors.Wrapf(solana.InstructionErrorUnsupportedProgramID, "program %s", base58.Encode(ix.Program))
	}

	f, accounts, err := newFrame(ix.Program, ix.Accounts, state.accounts, 0)
	if err != nil {
		return err
	}

	if err := program.Process(ctx, &InvokeContext{
		ProgramID: append(ed25519.PublicKey{}, ix.Program...),
		Accounts:  accounts,
		Data:      append([]byte{}, ix.Data...),
		txn:       state,
		frame:     f,
	}); err != nil {
		return err
	}

	if err := f.verify(); err != nil {
		return err
	}

	f.writeTo(state.accounts)
	return nil
}

// load reads every account of the message. Accounts with no ledger record
// are presented as empty system accounts.
func (b *Bank) load(ctx context.Context, id uuid.UUID, keys []ed25519.PublicKey) (*transaction, error) {
	state := &transaction{
		id:       id,
		bank:     b,
		rent:     b.Rent(ctx),
		versions: make(map[string]uint64),
		loaded:   make(map[string]*solana.AccountInfo),
		accounts: make(map[string]*solana.AccountInfo),
	}

	addresses := make([]string, 0, len(keys))
	for _, key := range keys {
		if _, ok := state.loaded[string(key)]; ok {
			continue
		}

		state.keys = append(state.keys, string(key))
		state.loaded[string(key)] = emptyAccount(key)
		addresses = append(addresses, base58.Encode(key))
	}

	records, err := b.store.GetBatch(ctx, addresses...)
	if err != nil {
		return nil, errors.Wrap(err, "error loading accounts")
	}

	for _, record := range records {
		info, err := record.ToAccountInfo()
		if err != nil {
			return nil, errors.Wrapf(err, "invalid ledger record for %s", record.Address)
		}

		state.loaded[string(info.Key)] = info
		state.versions[string(info.Key)] = record.Version
	}

	for key, info := range state.loaded {
		state.accounts[key] = info.Clone()
	}

	return state, nil
}

func (b *Bank) commit(ctx context.Context, state *transaction) ([]ed25519.PublicKey, error) {
	var records []*ledger.Record
	var modified []ed25519.PublicKey
	for _, key := range state.keys {
		before, after := state.loaded[key], state.accounts[key]
		if isSameState(before, after) {
			continue
		}

		records = append(records, ledger.NewRecordFromAccountInfo(after, state.versions[key]))
		modified = append(modified, append(ed25519.PublicKey{}, after.Key...))
	}

	if len(records) == 0 {
		return nil, nil
	}

	if err := b.store.Commit(ctx, records...); err != nil {
		return nil, err
	}

	return modified, nil
}

// Airdrop credits lamports to key outside of any transaction, creating the
// account if needed. It is intended for funding wallets in tests and
// simulations.
func (b *Bank) Airdrop(ctx context.Context, key ed25519.PublicKey, lamports uint64) error {
	if len(key) != ed25519.PublicKeySize {
		return errors.Errorf("invalid key length: %d", len(key))
	}

	unlock := b.locks.LockAll([][]byte{key}, nil)
	defer unlock()

	address := base58.Encode(key)

	record, err := b.store.Get(ctx, address)
	if err == ledger.ErrAccountNotFound {
		record = ledger.NewRecordFromAccountInfo(emptyAccount(key), 0)
	} else if err != nil {
		return errors.Wrap(err, "error loading account")
	}

	if lamports > math.MaxInt64 || record.Lamports > math.MaxInt64-lamports {
		return errors.New("airdrop overflows account balance")
	}
	record.Lamports += lamports

	return b.store.Commit(ctx, record)
}

// GetAccountInfo implements solana.Client.GetAccountInfo against the ledger.
// The commitment is ignored, since committed state is final.
func (b *Bank) GetAccountInfo(ctx context.Context, key ed25519.PublicKey, _ solana.Commitment) (*solana.AccountInfo, error) {
	record, err := b.store.Get(ctx, base58.Encode(key))
	if err == ledger.ErrAccountNotFound {
		return nil, solana.ErrNoAccountInfo
	} else if err != nil {
		return nil, err
	}

	return record.ToAccountInfo()
}

// GetMinimumBalanceForRentExemption implements
// solana.Client.GetMinimumBalanceForRentExemption.
func (b *Bank) GetMinimumBalanceForRentExemption(ctx context.Context, size uint64) (uint64, error) {
	return b.Rent(ctx).MinimumBalance(size), nil
}

func emptyAccount(key ed25519.PublicKey) *solana.AccountInfo {
	return &solana.AccountInfo{
		Key:   append(ed25519.PublicKey{}, key...),
		Owner: append(ed25519.PublicKey{}, system.SystemAccount...),
	}
}

func isSameState(a, b *solana.AccountInfo) bool {
	return bytes.Equal(a.Owner, b.Owner) &&
		a.Lamports == b.Lamports &&
		bytes.Equal(a.Data, b.Data) &&
		a.Executable == b.Executable
}

func statusOf(err error) string {
	if err == nil {
		return "ok"
	}

	var txnErr *solana.TransactionError
	if errors.As(err, &txnErr) {
		return string(txnErr.ErrorKey())
	}

	return "error"
}
