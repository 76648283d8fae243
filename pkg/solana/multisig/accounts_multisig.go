package multisig

import (
	"crypto/ed25519"
	"fmt"
	"strconv"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"

	"github.com/code-payments/code-multisig/pkg/solana/binary"
)

const MultisigAccountSize = (DiscriminatorSize + // discriminator

	binary.OptionSize + 32 + // admin
	binary.OptionSize + 8 + // admin_spending_limit

	32 + // creator
	32 + // treasury
	1 + // treasury_bump
	1 + // bump

	1 + // min_threshold
	8 + // max_expiry
	8 + // transaction_index
	8 + // stale_transaction_index

	1 + // num_members
	MaxMembers*MemberSize) // members

type MultisigAccount struct {
	Admin              ed25519.PublicKey
	AdminSpendingLimit *uint64

	Creator      ed25519.PublicKey
	Treasury     ed25519.PublicKey
	TreasuryBump uint8
	Bump         uint8

	MinThreshold          uint8
	MaxExpiry             uint64
	TransactionIndex      uint64
	StaleTransactionIndex uint64

	Roster *Roster
}

// NewMultisigAccount returns a freshly provisioned record. Every initial
// member is seeded with Vote permission and marked active.
func NewMultisigAccount(
	creator ed25519.PublicKey,
	treasury ed25519.PublicKey,
	treasuryBump uint8,
	bump uint8,
	minThreshold uint8,
	maxExpiry uint64,
	members []ed25519.PublicKey,
) (*MultisigAccount, error) {
	roster := &Roster{}
	for _, key := range members {
		err := roster.Append(Member{
			Key:        key,
			Permission: PermissionVote,
			IsActive:   true,
		})
		if errors.Is(err, ErrDuplicateMember) {
			return nil, errors.Wrapf(ErrInvalidField, "duplicate member %s", base58.Encode(key))
		} else if err != nil {
			return nil, err
		}
	}

	return &MultisigAccount{
		Creator:      cloneKey(creator),
		Treasury:     cloneKey(treasury),
		TreasuryBump: treasuryBump,
		Bump:         bump,
		MinThreshold: minThreshold,
		MaxExpiry:    maxExpiry,
		Roster:       roster,
	}, nil
}

func (obj *MultisigAccount) NumMembers() int {
	if obj.Roster == nil {
		return 0
	}
	return obj.Roster.Len()
}

func (obj *MultisigAccount) Clone() *MultisigAccount {
	cloned := &MultisigAccount{
		Admin:                 cloneKey(obj.Admin),
		Creator:               cloneKey(obj.Creator),
		Treasury:              cloneKey(obj.Treasury),
		TreasuryBump:          obj.TreasuryBump,
		Bump:                  obj.Bump,
		MinThreshold:          obj.MinThreshold,
		MaxExpiry:             obj.MaxExpiry,
		TransactionIndex:      obj.TransactionIndex,
		StaleTransactionIndex: obj.StaleTransactionIndex,
	}
	if obj.AdminSpendingLimit != nil {
		limit := *obj.AdminSpendingLimit
		cloned.AdminSpendingLimit = &limit
	}
	if obj.Roster != nil {
		cloned.Roster = obj.Roster.Clone()
	} else {
		cloned.Roster = &Roster{}
	}
	return cloned
}

// Validate checks the roster invariants and counter ordering.
func (obj *MultisigAccount) Validate() error {
	if obj.Roster == nil {
		return errors.Wrap(ErrInvalidAccountData, "missing roster")
	}
	if err := obj.Roster.Validate(); err != nil {
		return err
	}
	if obj.TransactionIndex < obj.StaleTransactionIndex {
		return errors.Wrapf(
			ErrInvalidAccountData,
			"transaction index %d is behind stale transaction index %d",
			obj.TransactionIndex,
			obj.StaleTransactionIndex,
		)
	}
	return nil
}

func (obj *MultisigAccount) String() string {
	var admin, creator, treasury, spendingLimit string

	if obj.Admin != nil {
		admin = base58.Encode(obj.Admin)
	}
	if obj.Creator != nil {
		creator = base58.Encode(obj.Creator)
	}
	if obj.Treasury != nil {
		treasury = base58.Encode(obj.Treasury)
	}
	if obj.AdminSpendingLimit != nil {
		spendingLimit = strconv.FormatUint(*obj.AdminSpendingLimit, 10)
	}

	roster := "[]"
	if obj.Roster != nil {
		roster = obj.Roster.String()
	}

	return "MultisigAccount{" +
		"admin='" + admin + "'" +
		",admin_spending_limit='" + spendingLimit + "'" +
		",creator='" + creator + "'" +
		",treasury='" + treasury + "'" +
		",treasury_bump=" + strconv.Itoa(int(obj.TreasuryBump)) +
		",bump=" + strconv.Itoa(int(obj.Bump)) +
		",min_threshold=" + strconv.Itoa(int(obj.MinThreshold)) +
		",max_expiry=" + strconv.FormatUint(obj.MaxExpiry, 10) +
		",transaction_index=" + strconv.FormatUint(obj.TransactionIndex, 10) +
		",stale_transaction_index=" + strconv.FormatUint(obj.StaleTransactionIndex, 10) +
		fmt.Sprintf(",num_members=%d", obj.NumMembers()) +
		",members=" + roster +
		"}"
}

func (obj *MultisigAccount) Marshal() []byte {
	data := make([]byte, MultisigAccountSize)

	roster := obj.Roster
	if roster == nil {
		roster = &Roster{}
	}

	var offset int

	putDiscriminator(data[offset:], AccountTypeMultisig, &offset)

	binary.PutOptionalKey32(data[offset:], obj.Admin, &offset)
	binary.PutOptionalUint64(data[offset:], obj.AdminSpendingLimit, &offset)

	binary.PutKey32(data[offset:], obj.Creator, &offset)
	binary.PutKey32(data[offset:], obj.Treasury, &offset)
	binary.PutUint8(data[offset:], obj.TreasuryBump, &offset)
	binary.PutUint8(data[offset:], obj.Bump, &offset)

	binary.PutUint8(data[offset:], obj.MinThreshold, &offset)
	binary.PutUint64(data[offset:], obj.MaxExpiry, &offset)
	binary.PutUint64(data[offset:], obj.TransactionIndex, &offset)
	binary.PutUint64(data[offset:], obj.StaleTransactionIndex, &offset)

	binary.PutUint8(data[offset:], roster.count, &offset)
	for i := 0; i < MaxMembers; i++ {
		putMember(data, roster.members[i], &offset)
	}

	return data
}

// Unmarshal decodes a stored multisig record. The data must be exactly
// MultisigAccountSize bytes and satisfy the roster invariants.
func (obj *MultisigAccount) Unmarshal(data []byte) error {
	if len(data) != MultisigAccountSize {
		return errors.Wrapf(ErrInvalidAccountData, "invalid multisig account size %d", len(data))
	}

	r := binary.NewReader(data)

	if err := getDiscriminator(r, AccountTypeMultisig); err != nil {
		return err
	}

	var decoded MultisigAccount
	err := func() (err error) {
		if decoded.Admin, err = r.ReadOptionalKey32(); err != nil {
			return err
		}
		if decoded.AdminSpendingLimit, err = r.ReadOptionalUint64(); err != nil {
			return err
		}

		if decoded.Creator, err = r.ReadKey32(); err != nil {
			return err
		}
		if decoded.Treasury, err = r.ReadKey32(); err != nil {
			return err
		}
		if decoded.TreasuryBump, err = r.ReadUint8(); err != nil {
			return err
		}
		if decoded.Bump, err = r.ReadUint8(); err != nil {
			return err
		}

		if decoded.MinThreshold, err = r.ReadUint8(); err != nil {
			return err
		}
		if decoded.MaxExpiry, err = r.ReadUint64(); err != nil {
			return err
		}
		if decoded.TransactionIndex, err = r.ReadUint64(); err != nil {
			return err
		}
		if decoded.StaleTransactionIndex, err = r.ReadUint64(); err != nil {
			return err
		}

		numMembers, err := r.ReadUint8()
		if err != nil {
			return err
		}

		decoded.Roster = &Roster{count: numMembers}
		for i := 0; i < MaxMembers; i++ {
			if decoded.Roster.members[i], err = getMember(r); err != nil {
				return errors.Wrapf(err, "member slot %d", i)
			}
		}
		return nil
	}()
	if err != nil {
		return errors.Wrap(ErrInvalidAccountData, err.Error())
	}

	if err := decoded.Validate(); err != nil {
		return err
	}

	*obj = decoded
	return nil
}
