package multisig

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/code-payments/code-multisig/pkg/solana/binary"
)

const MultisigConfigAccountSize = (DiscriminatorSize + // discriminator
	1 + // min_threshold
	8 + // max_expiry
	8 + // proposal_count
	1) // bump

type MultisigConfigAccount struct {
	MinThreshold  uint8
	MaxExpiry     uint64
	ProposalCount uint64
	Bump          uint8
}

func (obj *MultisigConfigAccount) Clone() *MultisigConfigAccount {
	cloned := *obj
	return &cloned
}

func (obj *MultisigConfigAccount) String() string {
	return fmt.Sprintf(
		"MultisigConfigAccount{min_threshold=%d,max_expiry=%d,proposal_count=%d,bump=%d}",
		obj.MinThreshold,
		obj.MaxExpiry,
		obj.ProposalCount,
		obj.Bump,
	)
}

func (obj *MultisigConfigAccount) Marshal() []byte {
	data := make([]byte, MultisigConfigAccountSize)

	var offset int

	putDiscriminator(data[offset:], AccountTypeMultisigConfig, &offset)
	binary.PutUint8(data[offset:], obj.MinThreshold, &offset)
	binary.PutUint64(data[offset:], obj.MaxExpiry, &offset)
	binary.PutUint64(data[offset:], obj.ProposalCount, &offset)
	binary.PutUint8(data[offset:], obj.Bump, &offset)

	return data
}

func (obj *MultisigConfigAccount) Unmarshal(data []byte) error {
	if len(data) != MultisigConfigAccountSize {
		return errors.Wrapf(ErrInvalidAccountData, "invalid multisig config account size %d", len(data))
	}

	r := binary.NewReader(data)

	if err := getDiscriminator(r, AccountTypeMultisigConfig); err != nil {
		return err
	}

	// The size check above guarantees the remaining reads succeed.
	obj.MinThreshold, _ = r.ReadUint8()
	obj.MaxExpiry, _ = r.ReadUint64()
	obj.ProposalCount, _ = r.ReadUint64()
	obj.Bump, _ = r.ReadUint8()

	return nil
}
