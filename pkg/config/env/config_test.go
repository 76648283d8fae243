package env

import (
	"context"
	"crypto/ed25519"
	"os"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/code-multisig/pkg/config"
)

func TestConfigDoesntExist(t *testing.T) {
	const env = "ENV_CONFIG_TEST_VAR"
	os.Setenv(env, "default")

	v, err := NewConfig(env).Get(context.Background())
	assert.Equal(t, []byte("default"), v)
	assert.Nil(t, err)

	os.Unsetenv(env)

	v, err = NewConfig(env).Get(context.Background())
	assert.Nil(t, v)
	assert.Equal(t, config.ErrNoValue, err)
}

func TestTypedConfigs(t *testing.T) {
	key, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	t.Setenv("ENV_CONFIG_TEST_KEY", base58.Encode(key))
	t.Setenv("ENV_CONFIG_TEST_BOOL", "true")
	t.Setenv("ENV_CONFIG_TEST_UINT64", "42")

	assert.Equal(t, key, NewPublicKeyConfig("env_config_test_key", nil).Get(context.Background()))
	assert.True(t, NewBoolConfig("ENV_CONFIG_TEST_BOOL", false).Get(context.Background()))
	assert.EqualValues(t, 42, NewUint64Config("ENV_CONFIG_TEST_UINT64", 0).Get(context.Background()))
	assert.EqualValues(t, 7, NewUint64Config("ENV_CONFIG_TEST_MISSING", 7).Get(context.Background()))
}
