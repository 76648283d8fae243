package system

import (
	"crypto/ed25519"
	"encoding/binary"
	"math"
	"strings"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/code-multisig/pkg/solana"
)

func TestCreateAccount(t *testing.T) {
	keys := generateKeys(t, 3)

	instruction := CreateAccount(keys[0], keys[1], keys[2], 12345, 67890)

	command := make([]byte, 4)
	lamports := make([]byte, 8)
	binary.LittleEndian.PutUint64(lamports, 12345)
	size := make([]byte, 8)
	binary.LittleEndian.PutUint64(size, 67890)

	assert.Equal(t, command, instruction.Data[0:4])
	assert.Equal(t, lamports, instruction.Data[4:12])
	assert.Equal(t, size, instruction.Data[12:20])
	assert.Equal(t, []byte(keys[2]), instruction.Data[20:52])
	assert.True(t, IsCreateAccount(instruction))
	assert.False(t, IsTransfer(instruction))

	var tx solana.Transaction
	require.NoError(t, tx.Unmarshal(solana.NewTransaction(keys[0], instruction).Marshal()))

	decompiled, err := DecompileCreateAccount(tx.Message, 0)
	require.NoError(t, err)
	assert.EqualValues(t, keys[0], decompiled.Funder)
	assert.EqualValues(t, keys[1], decompiled.Address)
	assert.EqualValues(t, keys[2], decompiled.Owner)
	assert.EqualValues(t, 12345, decompiled.Lamports)
	assert.EqualValues(t, 67890, decompiled.Size)
}

func TestDecompileNonCreate(t *testing.T) {
	keys := generateKeys(t, 4)

	instruction := CreateAccount(keys[0], keys[1], keys[2], 12345, 67890)

	instruction.Accounts = instruction.Accounts[:1]
	_, err := DecompileCreateAccount(solana.NewTransaction(keys[0], instruction).Message, 0)
	assert.NotNil(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "invalid number of accounts"), err)

	instruction = CreateAccount(keys[0], keys[1], keys[2], 12345, 67890)
	instruction.Data = append(instruction.Data, 0)
	_, err = CreateAccountFromInstruction(instruction)
	assert.NotNil(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "invalid instruction data size"), err)

	instruction.Data = instruction.Data[:createAccountDataSize-1]
	_, err = CreateAccountFromInstruction(instruction)
	assert.NotNil(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "invalid instruction data size"), err)

	binary.LittleEndian.PutUint32(instruction.Data, commandTransfer)
	_, err = CreateAccountFromInstruction(instruction)
	assert.Equal(t, solana.ErrIncorrectInstruction, err)

	instruction.Data = make([]byte, 3)
	_, err = CreateAccountFromInstruction(instruction)
	assert.Equal(t, solana.ErrIncorrectInstruction, err)

	instruction.Program = keys[3]
	_, err = CreateAccountFromInstruction(instruction)
	assert.Equal(t, solana.ErrIncorrectProgram, err)

	_, err = DecompileCreateAccount(solana.NewTransaction(keys[0], instruction).Message, 1)
	assert.NotNil(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "instruction doesn't exist"))
}

func TestTransfer(t *testing.T) {
	keys := generateKeys(t, 2)

	instruction := Transfer(keys[0], keys[1], 5000)
	assert.True(t, IsTransfer(instruction))
	assert.False(t, IsCreateAccount(instruction))

	require.Len(t, instruction.Accounts, 2)
	assert.True(t, instruction.Accounts[0].IsSigner)
	assert.True(t, instruction.Accounts[0].IsWritable)
	assert.False(t, instruction.Accounts[1].IsSigner)
	assert.True(t, instruction.Accounts[1].IsWritable)

	decompiled, err := DecompileTransfer(solana.NewTransaction(keys[0], instruction).Message, 0)
	require.NoError(t, err)
	assert.EqualValues(t, keys[0], decompiled.From)
	assert.EqualValues(t, keys[1], decompiled.To)
	assert.EqualValues(t, 5000, decompiled.Lamports)

	instruction.Data = instruction.Data[:transferDataSize-1]
	_, err = TransferFromInstruction(instruction)
	assert.NotNil(t, err)
}

func TestRent(t *testing.T) {
	rent := DefaultRent()

	// Matches getMinimumBalanceForRentExemption on mainnet for a zero byte account.
	assert.EqualValues(t, 890880, rent.MinimumBalance(0))
	assert.EqualValues(t, (128+200)*3480*2, rent.MinimumBalance(200))

	assert.True(t, rent.IsExempt(890880, 0))
	assert.False(t, rent.IsExempt(890879, 0))

	assert.EqualValues(t, uint64(math.MaxUint64), rent.MinimumBalance(math.MaxUint64))
	assert.EqualValues(t, uint64(math.MaxUint64), Rent{LamportsPerByteYear: math.MaxUint64, ExemptionThresholdYears: 2}.MinimumBalance(1))
	assert.EqualValues(t, 0, Rent{}.MinimumBalance(100))
}

func TestSystemAccount(t *testing.T) {
	assert.Equal(t, "11111111111111111111111111111111", base58.Encode(SystemAccount))
	assert.EqualValues(t, ProgramKey[:], SystemAccount)
	assert.Equal(t, SystemAccount, CreateAccount(SystemAccount, SystemAccount, SystemAccount, 0, 0).Program)
}

func TestSystemError(t *testing.T) {
	assert.EqualValues(t, 0, ErrAccountAlreadyInUse.Code())
	assert.EqualValues(t, 1, ErrResultWithNegativeLamports.Code())

	ie := solana.NewInstructionError(1, ErrAccountAlreadyInUse)
	require.NotNil(t, ie.CustomError())
	assert.Equal(t, solana.CustomError(0), *ie.CustomError())
}

func generateKeys(t *testing.T, amount int) []ed25519.PublicKey {
	keys := make([]ed25519.PublicKey, amount)

	for i := 0; i < amount; i++ {
		pub, _, err := ed25519.GenerateKey(nil)
		require.NoError(t, err)
		keys[i] = pub
	}

	return keys
}
