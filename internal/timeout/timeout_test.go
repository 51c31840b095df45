package timeout

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/vyrodovalexey/paybff/internal/util"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestRun_CompletesInTime(t *testing.T) {
	t.Parallel()

	got, err := Run(context.Background(), time.Second, func(ctx context.Context) (string, error) {
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline)
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", got)
}

func TestRun_PropagatesOperationError(t *testing.T) {
	t.Parallel()

	opErr := errors.New("provider said no")
	_, err := Run(context.Background(), time.Second, func(context.Context) (int, error) {
		return 0, opErr
	})

	assert.ErrorIs(t, err, opErr)
	assert.False(t, IsTimeout(err))
}

func TestRun_TimesOut(t *testing.T) {
	t.Parallel()

	observedCancel := make(chan struct{})
	start := time.Now()

	_, err := Run(context.Background(), 20*time.Millisecond, func(ctx context.Context) (int, error) {
		<-ctx.Done()
		close(observedCancel)
		return 0, ctx.Err()
	})

	require.Error(t, err)
	assert.True(t, IsTimeout(err))
	assert.ErrorIs(t, err, ErrTimeout)
	assert.ErrorIs(t, err, util.ErrTimeout)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Contains(t, err.Error(), "20ms")
	assert.Less(t, time.Since(start), time.Second)

	select {
	case <-observedCancel:
	case <-time.After(time.Second):
		t.Fatal("attempt context was not cancelled")
	}
}

func TestRun_SlowOperationIgnoringContextDoesNotLeak(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	finished := make(chan struct{})

	_, err := Run(context.Background(), 10*time.Millisecond, func(context.Context) (int, error) {
		defer close(finished)
		<-release
		return 1, nil
	})
	assert.True(t, IsTimeout(err))

	close(release)
	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("attempt goroutine did not exit")
	}
}

func TestRun_ParentCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	started := make(chan struct{})

	go func() {
		<-started
		cancel()
	}()

	_, err := Run(ctx, time.Minute, func(ctx context.Context) (int, error) {
		close(started)
		<-ctx.Done()
		return 0, ctx.Err()
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, IsTimeout(err))
}

func TestRun_ParentAlreadyCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	_, err := Run(ctx, time.Second, func(context.Context) (int, error) {
		called = true
		return 0, nil
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestRun_ParentDeadlineIsNotAttemptTimeout(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := Run(ctx, time.Minute, func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 0, fmt.Errorf("request aborted: %w", ctx.Err())
	})

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, IsTimeout(err))
}

func TestRun_NonPositiveDurationRunsInline(t *testing.T) {
	t.Parallel()

	got, err := Run(context.Background(), 0, func(ctx context.Context) (int, error) {
		_, hasDeadline := ctx.Deadline()
		assert.False(t, hasDeadline)
		return 7, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 7, got)
}

func TestRun_RecoversPanic(t *testing.T) {
	t.Parallel()

	_, err := Run(context.Background(), time.Second, func(context.Context) (int, error) {
		panic("boom")
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestError_Message(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "attempt timed out", ErrTimeout.Error())
	assert.Equal(t, "attempt timed out after 5s", (&Error{Timeout: 5 * time.Second}).Error())
}
