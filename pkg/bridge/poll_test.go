package bridge_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/entrhq/wppgo/pkg/bridge"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPollUntil_MatchesImmediately(t *testing.T) {
	calls := 0
	got, err := bridge.PollUntil(context.Background(), "probe", time.Hour, 0,
		func(context.Context) (string, bool, error) {
			calls++
			return "done", true, nil
		}, nil)

	require.NoError(t, err)
	assert.Equal(t, "done", got)
	assert.Equal(t, 1, calls)
}

func TestPollUntil_MatchesAfterTicks(t *testing.T) {
	calls := 0
	got, err := bridge.PollUntil(context.Background(), "probe", 2*time.Millisecond, time.Second,
		func(context.Context) (int, bool, error) {
			calls++
			return calls, calls == 4, nil
		}, nil)

	require.NoError(t, err)
	assert.Equal(t, 4, got)
}

func TestPollUntil_Timeout(t *testing.T) {
	start := time.Now()
	got, err := bridge.PollUntil(context.Background(), "detect phase", 5*time.Millisecond, 40*time.Millisecond,
		func(context.Context) (string, bool, error) {
			return "", false, nil
		}, func() string { return "nothing yet" })

	assert.Empty(t, got)
	var te *bridge.TimeoutError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, 40*time.Millisecond, te.Timeout)
	assert.Equal(t, "nothing yet", te.Last)
	assert.Contains(t, err.Error(), "detect phase: timed out after 40ms")
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestPollUntil_ContextCancel(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := bridge.PollUntil(ctx, "probe", 5*time.Millisecond, 0,
		func(context.Context) (bool, bool, error) { return false, false, nil }, nil)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	var te *bridge.TimeoutError
	assert.False(t, errors.As(err, &te))
}

func TestPollUntil_ProbeError(t *testing.T) {
	boom := errors.New("boom")
	_, err := bridge.PollUntil(context.Background(), "probe", time.Millisecond, time.Second,
		func(context.Context) (bool, bool, error) { return false, false, boom }, nil)

	assert.ErrorIs(t, err, boom)
}

func TestPollUntil_TimeoutCutsOffSlowTick(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	start := time.Now()
	_, err := bridge.PollUntil(context.Background(), "detect phase", 5*time.Millisecond, 50*time.Millisecond,
		func(context.Context) (string, bool, error) {
			<-release
			return "late", true, nil
		}, func() string { return "first tick pending" })

	elapsed := time.Since(start)
	var te *bridge.TimeoutError
	require.ErrorAs(t, err, &te)
	assert.ErrorIs(t, err, bridge.ErrTimeout)
	assert.Equal(t, "first tick pending", te.Last)
	assert.Less(t, elapsed, 500*time.Millisecond)
}

func TestPollUntil_TickContextCarriesDeadline(t *testing.T) {
	start := time.Now()
	_, err := bridge.PollUntil(context.Background(), "wait", 5*time.Millisecond, 30*time.Millisecond,
		func(ctx context.Context) (bool, bool, error) {
			_, ok := ctx.Deadline()
			assert.True(t, ok)
			<-ctx.Done()
			return false, false, ctx.Err()
		}, nil)

	var te *bridge.TimeoutError
	require.ErrorAs(t, err, &te)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}
