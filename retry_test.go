package ossfuzz

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"shanhu.io/misc/errcode"
)

func noDelay(err error, attempt int) time.Duration { return 0 }

func TestRetryPolicy_budgeted(t *testing.T) {
	errFlaky := errors.New("flaky")
	p := &RetryPolicy{
		Budgets: map[error]int{errFlaky: 3},
		Delay:   noDelay,
		sleep:   func(time.Duration) {},
	}

	calls := 0
	err := p.Run("op", func() error {
		calls++
		return errFlaky
	})
	assert.Error(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryPolicy_unlistedFailsFast(t *testing.T) {
	errFlaky := errors.New("flaky")
	p := &RetryPolicy{
		Budgets: map[error]int{errFlaky: 3},
		Delay:   noDelay,
		sleep:   func(time.Duration) {},
	}

	calls := 0
	err := p.Run("op", func() error {
		calls++
		return errors.New("something else")
	})
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetryPolicy_wrappedDoesNotInherit(t *testing.T) {
	errFlaky := errors.New("flaky")
	p := &RetryPolicy{
		Budgets: map[error]int{errFlaky: 3},
		Delay:   noDelay,
		sleep:   func(time.Duration) {},
	}

	calls := 0
	err := p.Run("op", func() error {
		calls++
		return errcode.Annotate(errFlaky, "wrapped")
	})
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetryPolicy_successStopsRetrying(t *testing.T) {
	errFlaky := errors.New("flaky")

	slept := 0
	p := &RetryPolicy{
		Budgets: map[error]int{errFlaky: 5},
		Delay:   noDelay,
		sleep:   func(time.Duration) { slept++ },
	}

	calls := 0
	err := p.Run("op", func() error {
		calls++
		if calls < 3 {
			return errFlaky
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, 2, slept)
}

func TestRetryPolicy_delayInput(t *testing.T) {
	errFlaky := errors.New("flaky")

	var attempts []int
	p := &RetryPolicy{
		Budgets: map[error]int{errFlaky: 3},
		Delay: func(err error, attempt int) time.Duration {
			assert.Equal(t, errFlaky, err)
			attempts = append(attempts, attempt)
			return 0
		},
		sleep: func(time.Duration) {},
	}

	err := p.Run("op", func() error { return errFlaky })
	assert.Error(t, err)
	assert.Equal(t, []int{2, 3}, attempts)
}

func TestDefaultRetryDelay(t *testing.T) {
	for i := 0; i < 100; i++ {
		d := defaultRetryDelay(errors.New("x"), i)
		assert.GreaterOrEqual(t, d, time.Minute)
		assert.LessOrEqual(t, d, 2*time.Minute)
	}
}
