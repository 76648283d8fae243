package wrapper

import (
	"context"
	"crypto/ed25519"
	"strconv"
	"sync"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"

	"github.com/code-payments/code-multisig/pkg/config"
)

// ErrUnsuportedConversion indicates the wrapper does not implement conversion from the source type
var ErrUnsuportedConversion = errors.New("config: wrapper conversion from source type not implemented")

// converter turns a raw override value into T. Sources such as env provide
// []byte, in memory overrides usually provide T itself.
type converter[T any] func(raw interface{}) (T, error)

type typedConfig[T any] struct {
	override     config.Config
	defaultValue T
	convert      converter[T]

	stateMu   sync.RWMutex
	lastValue T
}

func newTypedConfig[T any](override config.Config, defaultValue T, convert converter[T]) *typedConfig[T] {
	return &typedConfig[T]{
		override:     override,
		defaultValue: defaultValue,
		convert:      convert,
		lastValue:    defaultValue,
	}
}

// GetSafe gets a config value and propagates any errors that arise. A
// best-effort attempt is made to return the last known value.
func (c *typedConfig[T]) GetSafe(ctx context.Context) (T, error) {
	raw, err := c.override.Get(ctx)
	if err == config.ErrNoValue {
		c.store(c.defaultValue)
		return c.defaultValue, nil
	}

	c.stateMu.RLock()
	lastValue := c.lastValue
	c.stateMu.RUnlock()

	if err != nil {
		return lastValue, err
	}

	newValue, err := c.convert(raw)
	if err != nil {
		return lastValue, err
	}

	c.store(newValue)
	return newValue, nil
}

// Get is a wrapper for GetSafe that ignores the returned error
func (c *typedConfig[T]) Get(ctx context.Context) T {
	val, _ := c.GetSafe(ctx)
	return val
}

// Shutdown signals the config to stop all underlying resources
func (c *typedConfig[T]) Shutdown() {
	c.override.Shutdown()
}

func (c *typedConfig[T]) store(value T) {
	c.stateMu.Lock()
	c.lastValue = value
	c.stateMu.Unlock()
}

// NewBoolConfig wraps override as a bool, accepting bool or strconv.ParseBool
// compatible bytes.
func NewBoolConfig(override config.Config, defaultValue bool) config.Bool {
	return newTypedConfig(override, defaultValue, func(raw interface{}) (bool, error) {
		switch typed := raw.(type) {
		case []byte:
			return strconv.ParseBool(string(typed))
		case bool:
			return typed, nil
		}
		return false, ErrUnsuportedConversion
	})
}

// NewUint64Config wraps override as a uint64, accepting uint64, uint or base
// 10 bytes.
func NewUint64Config(override config.Config, defaultValue uint64) config.Uint64 {
	return newTypedConfig(override, defaultValue, func(raw interface{}) (uint64, error) {
		switch typed := raw.(type) {
		case []byte:
			return strconv.ParseUint(string(typed), 10, 64)
		case uint64:
			return typed, nil
		case uint:
			return uint64(typed), nil
		}
		return 0, ErrUnsuportedConversion
	})
}

// NewPublicKeyConfig wraps override as a public key, accepting a key or its
// base58 encoding as a string or bytes. Values that do not decode to a 32
// byte key are rejected.
func NewPublicKeyConfig(override config.Config, defaultValue ed25519.PublicKey) config.PublicKey {
	return newTypedConfig(override, defaultValue, func(raw interface{}) (ed25519.PublicKey, error) {
		var decoded []byte
		var err error
		switch typed := raw.(type) {
		case []byte:
			decoded, err = base58.Decode(string(typed))
		case string:
			decoded, err = base58.Decode(typed)
		case ed25519.PublicKey:
			decoded = typed
		default:
			return nil, ErrUnsuportedConversion
		}
		if err != nil {
			return nil, errors.Wrap(err, "config: invalid base58 public key")
		}
		if len(decoded) != ed25519.PublicKeySize {
			return nil, errors.Errorf("config: invalid public key length %d", len(decoded))
		}
		return ed25519.PublicKey(decoded), nil
	})
}
