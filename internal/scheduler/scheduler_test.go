package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestNewRejectsBadSpec(t *testing.T) {
	_, err := New("whenever", func(context.Context) error { return nil }, nil)
	assert.Error(t, err)

	_, err = New("@every 1m", nil, nil)
	assert.Error(t, err)
}

func TestRunsJobAndStops(t *testing.T) {
	var runs atomic.Int32
	done := make(chan struct{}, 1)

	s, err := New("@every 1s", func(ctx context.Context) error {
		runs.Add(1)
		select {
		case done <- struct{}{}:
		default:
		}
		return errors.New("logged, not fatal")
	}, nil)
	require.NoError(t, err)

	assert.True(t, s.Next().IsZero())
	s.Start()
	s.Start()
	assert.False(t, s.Next().IsZero())

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("job never ran")
	}
	s.Stop()
	s.Stop()
	assert.GreaterOrEqual(t, runs.Load(), int32(1))
}

func TestStopCancelsRunningJob(t *testing.T) {
	started := make(chan struct{})
	var once sync.Once
	s, err := New("@every 1s", func(ctx context.Context) error {
		once.Do(func() { close(started) })
		<-ctx.Done()
		return ctx.Err()
	}, nil)
	require.NoError(t, err)

	s.Start()
	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("job never ran")
	}
	s.Stop()
}

func TestStopWithoutStart(t *testing.T) {
	s, err := New("0 3 * * *", func(context.Context) error { return nil }, nil)
	require.NoError(t, err)
	s.Stop()
}

func TestRestartAfterStopGetsLiveContext(t *testing.T) {
	ctxs := make(chan context.Context, 16)
	s, err := New("@every 1s", func(ctx context.Context) error {
		select {
		case ctxs <- ctx:
		default:
		}
		return nil
	}, nil)
	require.NoError(t, err)

	next := func() context.Context {
		t.Helper()
		select {
		case ctx := <-ctxs:
			return ctx
		case <-time.After(5 * time.Second):
			t.Fatal("job never ran")
			return nil
		}
	}

	s.Start()
	first := next()
	s.Stop()
	assert.Error(t, first.Err(), "stop cancels the job context")

	for len(ctxs) > 0 {
		<-ctxs
	}
	s.Start()
	second := next()
	assert.NoError(t, second.Err(), "a restarted scheduler must not reuse the cancelled context")
	s.Stop()
	assert.Error(t, second.Err())
}
