package system

import (
	"math"
)

const (
	// AccountStorageOverhead is the number of bytes charged for every account
	// in addition to its data.
	//
	// Source: https://github.com/solana-labs/solana/blob/f02a78d8fff2dd7297dc6ce6eb5a68a3002f5359/sdk/program/src/rent.rs#L37
	AccountStorageOverhead = 128

	DefaultLamportsPerByteYear     = 3480
	DefaultExemptionThresholdYears = 2
)

// Rent mirrors the rent sysvar with a whole number of exemption years.
type Rent struct {
	LamportsPerByteYear     uint64
	ExemptionThresholdYears uint64
}

func DefaultRent() Rent {
	return Rent{
		LamportsPerByteYear:     DefaultLamportsPerByteYear,
		ExemptionThresholdYears: DefaultExemptionThresholdYears,
	}
}

// MinimumBalance returns the lamports an account of size bytes must hold to
// be rent exempt. The result saturates at math.MaxUint64.
func (r Rent) MinimumBalance(size uint64) uint64 {
	bytes := size + AccountStorageOverhead
	if bytes < size {
		return math.MaxUint64
	}

	perYear := bytes * r.LamportsPerByteYear
	if r.LamportsPerByteYear != 0 && perYear/r.LamportsPerByteYear != bytes {
		return math.MaxUint64
	}

	total := perYear * r.ExemptionThresholdYears
	if r.ExemptionThresholdYears != 0 && total/r.ExemptionThresholdYears != perYear {
		return math.MaxUint64
	}

	return total
}

// IsExempt reports whether balance covers the exemption minimum for size.
func (r Rent) IsExempt(balance, size uint64) bool {
	return balance >= r.MinimumBalance(size)
}
