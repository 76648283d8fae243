package retry

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/code-payments/code-multisig/pkg/retry/backoff"
)

// Strategy is a function that determines whether or not an action should be
// retried. Strategies are allowed to delay or cause other side effects.
type Strategy func(attempts uint, err error) bool

// Limit returns a strategy that limits the total number of attempts.
// maxAttempts should be >= 1, since the action is evaluated first.
func Limit(maxAttempts uint) Strategy {
	return func(attempts uint, _ error) bool {
		return attempts < maxAttempts
	}
}

// RetriableErrors returns a strategy that only retries errors matching one of
// retriableErrors, including wrapped ones.
func RetriableErrors(retriableErrors ...error) Strategy {
	return Matching(func(err error) bool {
		for _, e := range retriableErrors {
			if errors.Is(err, e) {
				return true
			}
		}
		return false
	})
}

// Matching returns a strategy that only retries errors accepted by fn, for
// errors that are classified by code rather than identity.
func Matching(fn func(error) bool) Strategy {
	return func(_ uint, err error) bool {
		return fn(err)
	}
}

// Context returns a strategy that stops retrying once ctx is done.
func Context(ctx context.Context) Strategy {
	return func(uint, error) bool {
		return ctx.Err() == nil
	}
}

// Backoff returns a strategy that sleeps before the next attempt. Delays are
// capped at maxBackoff. It should be the last strategy provided.
func Backoff(strategy backoff.Strategy, maxBackoff time.Duration) Strategy {
	return BackoffWithJitter(strategy, maxBackoff, 0)
}

// BackoffWithJitter returns a strategy similar to Backoff, with the capped
// delay randomly moved by up to jitter of itself in either direction. A capped
// delay of 100ms with a jitter of 0.1 sleeps between 90ms and 110ms.
func BackoffWithJitter(strategy backoff.Strategy, maxBackoff time.Duration, jitter float64) Strategy {
	return func(attempts uint, _ error) bool {
		delay := strategy(attempts)
		if delay > maxBackoff {
			delay = maxBackoff
		}

		if jitter > 0 {
			delay = time.Duration(float64(delay) * (1 + (rand.Float64()*2-1)*jitter))
		}

		sleeperImpl.Sleep(delay)
		return true
	}
}

type sleeper interface {
	Sleep(time.Duration)
}

// realSleeper uses the time package to perform actual sleeps
type realSleeper struct{}

func (r *realSleeper) Sleep(d time.Duration) { time.Sleep(d) }

var sleeperImpl sleeper = &realSleeper{}
