package memory

import (
	"context"
	"crypto/ed25519"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/code-multisig/pkg/config"
)

func TestConfig(t *testing.T) {
	ctx := context.Background()

	c := NewConfig(nil)
	_, err := c.Get(ctx)
	assert.Equal(t, config.ErrNoValue, err)

	program := make(ed25519.PublicKey, ed25519.PublicKeySize)
	c.SetValue(program)
	val, err := c.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, program, val)

	c.InduceErrors()
	_, err = c.Get(ctx)
	assert.Equal(t, ErrInduced, err)

	// Inducing errors does not discard the value.
	c.StopInducingErrors()
	val, err = c.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, program, val)

	c.ClearValue()
	_, err = c.Get(ctx)
	assert.Equal(t, config.ErrNoValue, err)

	c.SetValue(true)
	c.Shutdown()
	_, err = c.Get(ctx)
	assert.Equal(t, config.ErrShutdown, err)

	c.StopInducingErrors()
	_, err = c.Get(ctx)
	assert.Equal(t, config.ErrShutdown, err)
}

func TestConfig_InitialValue(t *testing.T) {
	c := NewConfig(uint64(3480))

	val, err := c.Get(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 3480, val)
}
