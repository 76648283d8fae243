package processor

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"time"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/code-multisig/pkg/metrics"
	"github.com/code-payments/code-multisig/pkg/runtime"
	"github.com/code-payments/code-multisig/pkg/solana"
	"github.com/code-payments/code-multisig/pkg/solana/multisig"
	"github.com/code-payments/code-multisig/pkg/solana/system"
)

const (
	metricsStructName = "processor"

	multisigProvisionedEventName = "MultisigProvisioned"
)

// Processor is the multisig program. It implements runtime.Program.
type Processor struct {
	log     *logrus.Entry
	conf    *conf
	metrics *metrics.CallMetrics
}

func New(configProvider ConfigProvider) *Processor {
	return &Processor{
		log:  logrus.StandardLogger().WithField("type", "multisig/processor"),
		conf: configProvider(),
		metrics: metrics.NewCallMetrics(
			"processor_instructions",
			"instruction",
			"Multisig program instructions processed",
		),
	}
}

// ProgramID returns the address this processor is deployed at.
func (p *Processor) ProgramID(ctx context.Context) ed25519.PublicKey {
	return p.conf.programId.Get(ctx)
}

// Register deploys the processor into bank at its configured program id.
func (p *Processor) Register(ctx context.Context, bank *runtime.Bank) error {
	return bank.RegisterProgram(p.ProgramID(ctx), p)
}

// Process implements runtime.Program.Process
func (p *Processor) Process(ctx context.Context, ic *runtime.InvokeContext) error {
	start := time.Now()

	if !bytes.Equal(ic.ProgramID, p.ProgramID(ctx)) {
		return errors.Wrapf(multisig.ErrIncorrectProgramId, "invoked as %s", base58.Encode(ic.ProgramID))
	}

	instructionType, payload, err := multisig.SplitInstructionData(ic.Data)
	if err != nil {
		p.metrics.Observe("unknown", time.Since(start), err)
		return err
	}

	switch instructionType {
	case multisig.InstructionTypeInitMultisig:
		err = p.Initialize(ctx, ic, payload)
	case multisig.InstructionTypeUpdateMembers:
		err = p.UpdateMembers(ctx, ic, payload)
	case multisig.InstructionTypeClaimAdmin:
		err = p.ClaimAdmin(ctx, ic, payload)
	default:
		err = errors.Wrapf(multisig.ErrInvalidInstruction, "instruction %d", instructionType)
	}

	p.metrics.Observe(instructionType.String(), time.Since(start), err)
	return err
}

// Initialize provisions the multisig record, the optional config record and
// the treasury of the creator in ic.Accounts.
//
// Accounts: [creator(signer, writable), multisig, treasury, (config)?]
func (p *Processor) Initialize(ctx context.Context, ic *runtime.InvokeContext, payload []byte) (err error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "Initialize")
	defer tracer.End()

	log := p.log.WithFields(logrus.Fields{
		"method": "Initialize",
		"txn":    ic.TransactionID(),
	})
	defer func() {
		tracer.OnError(err)
		if err != nil {
			log.WithError(err).Info("initialize rejected")
		}
	}()

	separateConfig := p.conf.separateConfigAccount.Get(ctx)

	accounts, err := multisig.InitMultisigInstructionAccountsFromMetas(metasOf(ic.Accounts))
	if err != nil {
		return err
	}
	if err := checkConfigPresence(separateConfig, accounts.Config, 4); err != nil {
		return err
	}

	creatorInfo, multisigInfo, treasuryInfo := ic.Accounts[0], ic.Accounts[1], ic.Accounts[2]

	log = log.WithFields(logrus.Fields{
		"creator":  base58.Encode(accounts.Creator),
		"multisig": base58.Encode(accounts.Multisig),
	})

	if !creatorInfo.IsSigner {
		return errors.Wrap(multisig.ErrMissingRequiredSignature, "creator")
	}

	addresses, err := deriveAddresses(ic.ProgramID, accounts.Creator)
	if err != nil {
		return err
	}
	if err := addresses.check(accounts.Multisig, accounts.Treasury, accounts.Config, separateConfig); err != nil {
		return err
	}

	targets := []*solana.AccountInfo{multisigInfo, treasuryInfo}
	var configInfo *solana.AccountInfo
	if separateConfig {
		configInfo = ic.Accounts[3]
		targets = append(targets, configInfo)
	}
	for _, target := range targets {
		if target.IsOwnedBy(ic.ProgramID) {
			return errors.Wrapf(multisig.ErrAlreadyInitialized, "%s is owned by the program", base58.Encode(target.Key))
		}
		if !target.IsUnused() {
			return errors.Wrapf(multisig.ErrAlreadyInitialized, "%s is already in use", base58.Encode(target.Key))
		}
	}

	args, err := multisig.InitMultisigInstructionArgsFromBinary(payload)
	if err != nil {
		return err
	}

	record, err := multisig.NewMultisigAccount(
		accounts.Creator,
		addresses.treasury,
		addresses.treasuryBump,
		addresses.multisigBump,
		args.MinThreshold,
		args.MaxExpiry,
		args.Members,
	)
	if err != nil {
		return err
	}
	if err := record.Validate(); err != nil {
		return err
	}

	rent := ic.Rent()

	if err := p.allocate(
		ctx,
		ic,
		creatorInfo,
		multisigInfo,
		ic.ProgramID,
		multisig.MultisigAccountSize,
		rent.MinimumBalance(multisig.MultisigAccountSize),
		multisig.MultisigSeeds(accounts.Creator, addresses.multisigBump),
	); err != nil {
		return err
	}
	copy(multisigInfo.Data, record.Marshal())

	if configInfo != nil {
		configRecord := &multisig.MultisigConfigAccount{
			MinThreshold: args.MinThreshold,
			MaxExpiry:    args.MaxExpiry,
			Bump:         addresses.configBump,
		}

		if err := p.allocate(
			ctx,
			ic,
			creatorInfo,
			configInfo,
			ic.ProgramID,
			multisig.MultisigConfigAccountSize,
			rent.MinimumBalance(multisig.MultisigConfigAccountSize),
			multisig.MultisigConfigSeeds(addresses.multisig, addresses.configBump),
		); err != nil {
			return err
		}
		copy(configInfo.Data, configRecord.Marshal())
	}

	if err := p.allocate(
		ctx,
		ic,
		creatorInfo,
		treasuryInfo,
		multisig.SYSTEM_PROGRAM_ID,
		0,
		rent.MinimumBalance(0),
		multisig.TreasurySeeds(addresses.multisig, addresses.treasuryBump),
	); err != nil {
		return err
	}

	metrics.RecordEvent(ctx, multisigProvisionedEventName, map[string]interface{}{
		"multisig":    base58.Encode(addresses.multisig),
		"creator":     base58.Encode(accounts.Creator),
		"num_members": record.NumMembers(),
	})

	log.WithField("num_members", record.NumMembers()).Debug("multisig initialized")
	return nil
}

// UpdateMembers applies one roster edit requested by an admin.
//
// Accounts: [payer(signer), creator, multisig(writable), (config)?, treasury]
func (p *Processor) UpdateMembers(ctx context.Context, ic *runtime.InvokeContext, payload []byte) (err error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "UpdateMembers")
	defer tracer.End()

	log := p.log.WithFields(logrus.Fields{
		"method": "UpdateMembers",
		"txn":    ic.TransactionID(),
	})
	defer func() {
		tracer.OnError(err)
		if err != nil {
			log.WithError(err).Info("update members rejected")
		}
	}()

	separateConfig := p.conf.separateConfigAccount.Get(ctx)

	accounts, err := multisig.UpdateMembersInstructionAccountsFromMetas(metasOf(ic.Accounts))
	if err != nil {
		return err
	}
	if err := checkConfigPresence(separateConfig, accounts.Config, 5); err != nil {
		return err
	}

	payerInfo, multisigInfo := ic.Accounts[0], ic.Accounts[2]

	log = log.WithFields(logrus.Fields{
		"payer":    base58.Encode(accounts.Payer),
		"creator":  base58.Encode(accounts.Creator),
		"multisig": base58.Encode(accounts.Multisig),
	})

	if !payerInfo.IsSigner {
		return errors.Wrap(multisig.ErrMissingRequiredSignature, "payer")
	}

	addresses, err := deriveAddresses(ic.ProgramID, accounts.Creator)
	if err != nil {
		return err
	}
	if err := addresses.check(accounts.Multisig, accounts.Treasury, accounts.Config, separateConfig); err != nil {
		return err
	}

	record, err := loadMultisig(ic.ProgramID, multisigInfo)
	if err != nil {
		return err
	}
	if !bytes.Equal(record.Creator, accounts.Creator) || !bytes.Equal(record.Treasury, accounts.Treasury) {
		return errors.Wrap(multisig.ErrInvalidAccountData, "record does not belong to the creator")
	}
	if !solana.IsProgramAddress(ic.ProgramID, accounts.Multisig, record.Bump, multisig.MultisigPrefix, record.Creator) ||
		!solana.IsProgramAddress(ic.ProgramID, accounts.Treasury, record.TreasuryBump, multisig.TreasuryPrefix, accounts.Multisig) {
		return errors.Wrap(multisig.ErrInvalidAccountData, "stored bump does not reproduce the address")
	}

	args, err := multisig.UpdateMembersInstructionArgsFromBinary(payload)
	if err != nil {
		return err
	}

	log = log.WithFields(logrus.Fields{
		"update_type": args.UpdateType.String(),
		"member":      base58.Encode(args.MemberKey),
	})

	updated := record.Clone()
	if err := ApplyMemberUpdate(updated.Roster, args, accounts.Payer); err != nil {
		return err
	}
	if err := updated.Validate(); err != nil {
		return err
	}

	copy(multisigInfo.Data, updated.Marshal())

	log.WithField("num_members", updated.NumMembers()).Debug("members updated")
	return nil
}

// ClaimAdmin lets the creator promote one member to active admin while the
// roster has none.
//
// Accounts: [creator(signer), multisig(writable)]
func (p *Processor) ClaimAdmin(ctx context.Context, ic *runtime.InvokeContext, payload []byte) (err error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "ClaimAdmin")
	defer tracer.End()

	log := p.log.WithFields(logrus.Fields{
		"method": "ClaimAdmin",
		"txn":    ic.TransactionID(),
	})
	defer func() {
		tracer.OnError(err)
		if err != nil {
			log.WithError(err).Info("claim admin rejected")
		}
	}()

	accounts, err := multisig.ClaimAdminInstructionAccountsFromMetas(metasOf(ic.Accounts))
	if err != nil {
		return err
	}

	creatorInfo, multisigInfo := ic.Accounts[0], ic.Accounts[1]

	log = log.WithFields(logrus.Fields{
		"creator":  base58.Encode(accounts.Creator),
		"multisig": base58.Encode(accounts.Multisig),
	})

	if !creatorInfo.IsSigner {
		return errors.Wrap(multisig.ErrMissingRequiredSignature, "creator")
	}

	addresses, err := deriveAddresses(ic.ProgramID, accounts.Creator)
	if err != nil {
		return err
	}
	if !bytes.Equal(addresses.multisig, accounts.Multisig) {
		return errors.Wrap(multisig.ErrInvalidDerivedAddress, "multisig")
	}

	record, err := loadMultisig(ic.ProgramID, multisigInfo)
	if err != nil {
		return err
	}
	if !bytes.Equal(record.Creator, accounts.Creator) {
		return errors.Wrap(multisig.ErrUnauthorized, "signer is not the creator")
	}

	args, err := multisig.ClaimAdminInstructionArgsFromBinary(payload)
	if err != nil {
		return err
	}

	if record.Roster.ActiveAdminCount() > 0 {
		return multisig.ErrAdminAlreadyAssigned
	}

	updated := record.Clone()
	if err := updated.Roster.Set(int(args.MemberIndex), multisig.PermissionAdmin, true); err != nil {
		return err
	}
	if err := updated.Validate(); err != nil {
		return err
	}

	copy(multisigInfo.Data, updated.Marshal())

	log.WithField("member_index", args.MemberIndex).Debug("admin claimed")
	return nil
}

// allocate creates target through the system program, funded by funder and
// authorized by the target's derivation seeds.
func (p *Processor) allocate(
	ctx context.Context,
	ic *runtime.InvokeContext,
	funder *solana.AccountInfo,
	target *solana.AccountInfo,
	owner ed25519.PublicKey,
	size uint64,
	lamports uint64,
	seeds [][]byte,
) error {
	return ic.InvokeSigned(
		ctx,
		system.CreateAccount(funder.Key, target.Key, owner, lamports, size),
		seeds,
	)
}

func loadMultisig(program ed25519.PublicKey, info *solana.AccountInfo) (*multisig.MultisigAccount, error) {
	if !info.IsOwnedBy(program) {
		return nil, errors.Wrapf(multisig.ErrUninitializedAccount, "%s is not owned by the program", base58.Encode(info.Key))
	}

	var record multisig.MultisigAccount
	if err := record.Unmarshal(info.Data); err != nil {
		return nil, err
	}
	return &record, nil
}

func checkConfigPresence(separateConfig bool, config ed25519.PublicKey, withConfig int) error {
	if separateConfig && len(config) == 0 {
		return errors.Wrapf(multisig.ErrNotEnoughAccountKeys, "%d accounts are required with a config account", withConfig)
	}
	if !separateConfig && len(config) > 0 {
		return errors.Wrap(multisig.ErrInvalidInstruction, "config accounts are not enabled")
	}
	return nil
}

func metasOf(accounts []*solana.AccountInfo) []solana.AccountMeta {
	metas := make([]solana.AccountMeta, len(accounts))
	for i, account := range accounts {
		metas[i] = solana.AccountMeta{
			PublicKey:  account.Key,
			IsSigner:   account.IsSigner,
			IsWritable: account.IsWritable,
		}
	}
	return metas
}
