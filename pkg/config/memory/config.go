// Package memory provides an in memory config.Config for tests and manual
// overrides, such as the processor and runtime test overrides.
package memory

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/code-payments/code-multisig/pkg/config"
)

// ErrInduced is returned by Get while errors are being induced.
var ErrInduced = errors.New("in memory config: developer induced error")

type state struct {
	value    interface{}
	induced  bool
	shutdown bool
}

// Config is an in memory config.Config. A nil value means no value is set.
type Config struct {
	mu    sync.RWMutex
	state state
}

func NewConfig(value interface{}) *Config {
	return &Config{state: state{value: value}}
}

// Get implements config.Config.Get
func (c *Config) Get(_ context.Context) (interface{}, error) {
	c.mu.RLock()
	s := c.state
	c.mu.RUnlock()

	switch {
	case s.shutdown:
		return nil, config.ErrShutdown
	case s.induced:
		return nil, ErrInduced
	case s.value == nil:
		return nil, config.ErrNoValue
	}
	return s.value, nil
}

// Shutdown implements config.Config.Shutdown
func (c *Config) Shutdown() {
	c.update(func(s *state) { s.shutdown = true })
}

// SetValue sets the value returned by subsequent Get calls.
func (c *Config) SetValue(value interface{}) {
	c.update(func(s *state) { s.value = value })
}

// ClearValue makes subsequent Get calls return config.ErrNoValue.
func (c *Config) ClearValue() {
	c.SetValue(nil)
}

// InduceErrors makes subsequent Get calls fail with ErrInduced.
func (c *Config) InduceErrors() {
	c.update(func(s *state) { s.induced = true })
}

func (c *Config) StopInducingErrors() {
	c.update(func(s *state) { s.induced = false })
}

func (c *Config) update(fn func(*state)) {
	c.mu.Lock()
	fn(&c.state)
	c.mu.Unlock()
}
