package resilience

import (
	"context"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBreaker(threshold int, reset time.Duration) (*CircuitBreaker, *time.Time) {
	now := time.Now()
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		FailureThreshold: threshold,
		ResetTimeout:     reset,
	})
	cb.nowFunc = func() time.Time { return now }
	return cb, &now
}

func failing(ctx context.Context) error    { return eris.New("down") }
func succeeding(ctx context.Context) error { return nil }

func TestCircuitBreaker_OpensAfterThreshold(t *testing.T) {
	cb, _ := testBreaker(3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_ = cb.Execute(ctx, failing)
	}
	assert.Equal(t, CircuitOpen, cb.State())

	err := cb.Execute(ctx, succeeding)
	assert.True(t, eris.Is(err, ErrCircuitOpen))
	assert.Equal(t, IssueCollaboratorUnavailable, KindOf(err))
}

func TestCircuitBreaker_HalfOpenRecovery(t *testing.T) {
	cb, now := testBreaker(1, time.Minute)
	ctx := context.Background()

	_ = cb.Execute(ctx, failing)
	require.Equal(t, CircuitOpen, cb.State())

	*now = now.Add(2 * time.Minute)
	assert.Equal(t, CircuitHalfOpen, cb.State())

	require.NoError(t, cb.Execute(ctx, succeeding))
	assert.Equal(t, CircuitClosed, cb.State())
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	cb, now := testBreaker(1, time.Minute)
	ctx := context.Background()

	_ = cb.Execute(ctx, failing)
	*now = now.Add(2 * time.Minute)

	_ = cb.Execute(ctx, failing)
	assert.Equal(t, CircuitOpen, cb.State())
}

func TestCircuitBreaker_SuccessResetsFailureCount(t *testing.T) {
	cb, _ := testBreaker(3, time.Minute)
	ctx := context.Background()

	_ = cb.Execute(ctx, failing)
	_ = cb.Execute(ctx, failing)
	require.NoError(t, cb.Execute(ctx, succeeding))
	_ = cb.Execute(ctx, failing)
	_ = cb.Execute(ctx, failing)

	assert.Equal(t, CircuitClosed, cb.State())
}

func TestCircuitBreaker_Reset(t *testing.T) {
	cb, _ := testBreaker(1, time.Hour)
	_ = cb.Execute(context.Background(), failing)
	require.Equal(t, CircuitOpen, cb.State())

	cb.Reset()
	assert.Equal(t, CircuitClosed, cb.State())
}

func TestExecuteVal_PassesThroughValue(t *testing.T) {
	cb := NewCircuitBreaker(DefaultCircuitBreakerConfig())
	v, err := ExecuteVal(context.Background(), cb, func(ctx context.Context) (int, error) {
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestCollaboratorBreakers_IsolatesServices(t *testing.T) {
	sb := NewCollaboratorBreakers(CircuitBreakerConfig{FailureThreshold: 1, ResetTimeout: time.Hour})
	ctx := context.Background()

	_ = sb.Get("research").Execute(ctx, failing)

	assert.Equal(t, CircuitOpen, sb.Get("research").State())
	assert.Equal(t, CircuitClosed, sb.Get("logistics").State())

	states := sb.States()
	assert.Len(t, states, 2)
}
