package config

import (
	"context"
	"crypto/ed25519"

	"github.com/pkg/errors"
)

var (
	// ErrNoValue indicates no value was set for the config
	ErrNoValue = errors.New("config: no value set")

	// ErrShutdown indicates the use of a Config after calling Shutdown
	ErrShutdown = errors.New("config: shutdown")
)

// Config is an interface for getting a configuration value
type Config interface {
	// Get returns the latest config value
	Get(ctx context.Context) (interface{}, error)

	// Shutdown signals the config to stop all underlying resources
	Shutdown()
}

// Typed is a config.Config whose values are converted to T. Get never fails
// and returns the last known good value, GetSafe also reports why the latest
// value could not be used.
type Typed[T any] interface {
	Get(ctx context.Context) T
	GetSafe(ctx context.Context) (T, error)
	Shutdown()
}

// Bool provides a boolean typed config.Config.
type Bool = Typed[bool]

// Uint64 provides a uint64 typed config.Config.
type Uint64 = Typed[uint64]

// PublicKey provides an ed25519.PublicKey typed config.Config. Values are
// base58 encoded.
type PublicKey = Typed[ed25519.PublicKey]
