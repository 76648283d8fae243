package solana

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testCodedError uint32

func (e testCodedError) Error() string {
	return "coded"
}

func (e testCodedError) Code() uint32 {
	return uint32(e)
}

func TestParse(t *testing.T) {
	d := json.NewDecoder(bytes.NewBufferString(`{"InstructionError":[2,{"Custom":3}]}`))

	var raw interface{}
	assert.NoError(t, d.Decode(&raw))

	e, err := ParseTransactionError(raw)
	assert.NoError(t, err)

	assert.Equal(t, TransactionErrorInstructionError, e.ErrorKey())
	assert.NotNil(t, e.InstructionError())
	assert.Equal(t, 2, e.InstructionError().Index)
	assert.Equal(t, InstructionErrorCustom, e.InstructionError().ErrorKey())
	assert.NotNil(t, e.InstructionError().CustomError())
	assert.Equal(t, CustomError(3), *e.InstructionError().CustomError())

	d = json.NewDecoder(bytes.NewBufferString(`{"InstructionError":[0,"InvalidArgument"]}`))
	assert.NoError(t, d.Decode(&raw))

	e, err = ParseTransactionError(raw)
	assert.NoError(t, err)

	assert.Equal(t, TransactionErrorInstructionError, e.ErrorKey())
	assert.NotNil(t, e.InstructionError())
	assert.Equal(t, 0, e.InstructionError().Index)
	assert.Equal(t, InstructionErrorInvalidArgument, e.InstructionError().ErrorKey())

	d = json.NewDecoder(bytes.NewBufferString(`"DuplicateSignature"`))
	assert.NoError(t, d.Decode(&raw))

	e, err = ParseTransactionError(raw)
	assert.NoError(t, err)

	assert.Equal(t, TransactionErrorDuplicateSignature, e.ErrorKey())
	assert.Nil(t, e.InstructionError())
}

func TestNew(t *testing.T) {
	d := json.NewDecoder(bytes.NewBufferString(`"DuplicateSignature"`))
	var expected interface{}
	assert.NoError(t, d.Decode(&expected))

	e := NewTransactionError(TransactionErrorDuplicateSignature)
	assert.Equal(t, expected, e.raw)

	d = json.NewDecoder(bytes.NewBufferString(`{"InstructionError":[0,"InvalidArgument"]}`))
	assert.NoError(t, d.Decode(&expected))
	e, err := TransactionErrorFromInstructionError(&InstructionError{
		Index: 0,
		Err:   InstructionErrorInvalidArgument,
	})
	assert.NoError(t, err)
	assert.Equal(t, expected, e.raw)

	d = json.NewDecoder(bytes.NewBufferString(`{"InstructionError":[2,{"Custom":3}]}`))
	assert.NoError(t, d.Decode(&expected))
	e, err = TransactionErrorFromInstructionError(&InstructionError{
		Index: 2,
		Err:   CustomError(3),
	})
	assert.NoError(t, err)
	assert.Equal(t, expected, e.raw)
}

func TestNewInstructionError(t *testing.T) {
	coded := NewInstructionError(1, errors.Wrap(testCodedError(0x1773), "failed to decode"))
	assert.Equal(t, 1, coded.Index)
	assert.Equal(t, InstructionErrorCustom, coded.ErrorKey())
	require.NotNil(t, coded.CustomError())
	assert.Equal(t, CustomError(0x1773), *coded.CustomError())
	assert.Equal(t, `[1, {"Custom": 6003}]`, coded.JSONString())

	native := NewInstructionError(0, errors.Wrap(InstructionErrorMissingRequiredSignature, "funder"))
	assert.Equal(t, InstructionErrorMissingRequiredSignature, native.ErrorKey())
	assert.Nil(t, native.CustomError())
	assert.Equal(t, `[0, "MissingRequiredSignature"]`, native.JSONString())

	other := NewInstructionError(3, errors.New("boom"))
	assert.Equal(t, InstructionErrorInvalidArgument, other.ErrorKey())
	assert.Contains(t, other.Error(), "boom")
}

func TestTransactionError_Unwrap(t *testing.T) {
	instructionErr := NewInstructionError(2, testCodedError(7))
	txnErr, err := TransactionErrorFromInstructionError(&instructionErr)
	require.NoError(t, err)

	var wrapped error = txnErr

	var custom CustomError
	require.True(t, errors.As(wrapped, &custom))
	assert.Equal(t, CustomError(7), custom)

	var ie InstructionError
	require.True(t, errors.As(wrapped, &ie))
	assert.Equal(t, 2, ie.Index)

	assert.Nil(t, NewTransactionError(TransactionErrorSignatureFailure).Unwrap())
}

func TestParseInstructionError_Invalid(t *testing.T) {
	for _, raw := range []interface{}{
		"InvalidArgument",
		[]interface{}{1.0},
		[]interface{}{"x", "InvalidArgument"},
		[]interface{}{1.0, 2.0},
	} {
		_, err := ParseInstructionError(raw)
		assert.Error(t, err)
	}
}

func TestParseJSONNumber(t *testing.T) {
	tc := []interface{}{
		"1",
		1.0,
		json.Number("1"),
	}
	for i, c := range tc {
		v, err := parseJSONNumber(c)
		assert.NoError(t, err)
		assert.Equal(t, 1, v, i)
	}
}
