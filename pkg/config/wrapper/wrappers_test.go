package wrapper

import (
	"context"
	"crypto/ed25519"
	"math"
	"strconv"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/code-multisig/pkg/config"
	"github.com/code-payments/code-multisig/pkg/config/memory"
)

// testLifecycle walks a typed config through default, override, induced
// error, cleared and shutdown states.
func testLifecycle[T any](t *testing.T, newConfig func(config.Config, T) config.Typed[T], defaultValue, overridenValue T) {
	ctx := context.Background()
	mock := memory.NewConfig(nil)
	wrapper := newConfig(mock, defaultValue)

	// Return the default value when no override is set
	val, err := wrapper.GetSafe(ctx)
	require.NoError(t, err)
	assert.Equal(t, defaultValue, val)

	// The overriden value is returned when set
	mock.SetValue(overridenValue)
	val, err = wrapper.GetSafe(ctx)
	require.NoError(t, err)
	assert.Equal(t, overridenValue, val)
	assert.Equal(t, overridenValue, wrapper.Get(ctx))

	// The last observed config value is returned on error
	mock.InduceErrors()
	val, err = wrapper.GetSafe(ctx)
	assert.Equal(t, memory.ErrInduced, err)
	assert.Equal(t, overridenValue, val)
	assert.Equal(t, overridenValue, wrapper.Get(ctx))

	// The default value is returned when the override no longer has a value
	mock.StopInducingErrors()
	mock.ClearValue()
	assert.Equal(t, defaultValue, wrapper.Get(ctx))

	// Unsupported source types are rejected
	mock.SetValue(struct{}{})
	val, err = wrapper.GetSafe(ctx)
	assert.Equal(t, ErrUnsuportedConversion, err)
	assert.Equal(t, defaultValue, val)

	wrapper.Shutdown()
	_, err = wrapper.GetSafe(ctx)
	assert.Equal(t, config.ErrShutdown, err)
}

func TestBoolConfig(t *testing.T) {
	testLifecycle(t, NewBoolConfig, true, false)

	mock := memory.NewConfig([]byte(strconv.FormatBool(false)))
	wrapper := NewBoolConfig(mock, true)
	assert.False(t, wrapper.Get(context.Background()))

	mock.SetValue([]byte("cannot convert"))
	val, err := wrapper.GetSafe(context.Background())
	assert.Error(t, err)
	assert.False(t, val)

	mock.SetValue("true")
	_, err = wrapper.GetSafe(context.Background())
	assert.Equal(t, ErrUnsuportedConversion, err)
}

func TestUint64Config(t *testing.T) {
	testLifecycle(t, NewUint64Config, uint64(math.MaxUint64), 0)

	mock := memory.NewConfig([]byte(strconv.FormatUint(3480, 10)))
	wrapper := NewUint64Config(mock, 0)
	assert.EqualValues(t, 3480, wrapper.Get(context.Background()))

	mock.SetValue(uint(42))
	assert.EqualValues(t, 42, wrapper.Get(context.Background()))

	mock.SetValue([]byte("-1"))
	val, err := wrapper.GetSafe(context.Background())
	assert.Error(t, err)
	assert.EqualValues(t, 42, val)
}

func TestPublicKeyConfig(t *testing.T) {
	defaultValue, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	overridenValue, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	testLifecycle(t, NewPublicKeyConfig, defaultValue, overridenValue)

	mock := memory.NewConfig(nil)
	wrapper := NewPublicKeyConfig(mock, defaultValue)

	// Base58 bytes and strings are decoded
	mock.SetValue([]byte(base58.Encode(overridenValue)))
	assert.Equal(t, overridenValue, wrapper.Get(context.Background()))

	mock.SetValue(base58.Encode(defaultValue))
	assert.Equal(t, defaultValue, wrapper.Get(context.Background()))

	// Invalid encodings and lengths return the last known value
	mock.SetValue("0OIl")
	val, err := wrapper.GetSafe(context.Background())
	assert.Error(t, err)
	assert.Equal(t, defaultValue, val)

	mock.SetValue(base58.Encode([]byte{1, 2, 3}))
	val, err = wrapper.GetSafe(context.Background())
	assert.Error(t, err)
	assert.Equal(t, defaultValue, val)

	mock.SetValue(1)
	_, err = wrapper.GetSafe(context.Background())
	assert.Equal(t, ErrUnsuportedConversion, err)
}
