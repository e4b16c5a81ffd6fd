package probe

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFibWaits(t *testing.T) {
	assert.Equal(t, []int{1, 2, 3, 5, 8, 13}, fibWaits(DefaultAttempts-1))
	assert.Empty(t, fibWaits(0))
}

func TestRetry_FirstAttemptSucceeds(t *testing.T) {
	calls := 0
	err := retry(context.Background(), zap.NewNop(), "postgresql", DefaultAttempts, time.Microsecond, func() error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetry_RecoversWithinBudget(t *testing.T) {
	calls := 0
	err := retry(context.Background(), zap.NewNop(), "postgresql", DefaultAttempts, time.Microsecond, func() error {
		calls++
		if calls < 3 {
			return errors.New("connection refused")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetry_ExhaustsAttempts(t *testing.T) {
	cause := errors.New("connection refused")
	calls := 0
	err := retry(context.Background(), zap.NewNop(), "rabbitmq", DefaultAttempts, time.Microsecond, func() error {
		calls++
		return cause
	})

	require.Error(t, err)
	assert.Equal(t, DefaultAttempts, calls)

	var unreachable *UnreachableError
	require.ErrorAs(t, err, &unreachable)
	assert.Equal(t, "rabbitmq", unreachable.Service)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "rabbitmq is unreachable")
}

func TestRetry_ContextCancelCutsWaitShort(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := retry(ctx, zap.NewNop(), "postgresql", DefaultAttempts, time.Hour, func() error {
		calls++
		return errors.New("connection refused")
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)

	var unreachable *UnreachableError
	require.ErrorAs(t, err, &unreachable)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestUnreachableError_Unwrap(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := &UnreachableError{Service: "rabbitmq", Err: cause}

	assert.Equal(t, "rabbitmq is unreachable: dial tcp: connection refused", err.Error())
	assert.ErrorIs(t, err, cause)
}
