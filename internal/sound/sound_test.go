package sound_test

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.ozon.dev/pupkingeorgij/orderdesk/internal/sound"
)

// blockingPlayer plays until cancelled and counts calls.
type blockingPlayer struct {
	calls     atomic.Int32
	cancelled atomic.Int32
	started   chan struct{}
}

func newBlockingPlayer() *blockingPlayer {
	return &blockingPlayer{started: make(chan struct{}, 16)}
}

func (p *blockingPlayer) Play(ctx context.Context) error {
	p.calls.Add(1)
	p.started <- struct{}{}
	<-ctx.Done()
	p.cancelled.Add(1)
	return ctx.Err()
}

type funcPlayer func(ctx context.Context) error

func (f funcPlayer) Play(ctx context.Context) error { return f(ctx) }

func waitStarted(t *testing.T, p *blockingPlayer) {
	t.Helper()
	select {
	case <-p.started:
	case <-time.After(time.Second):
		t.Fatal("player did not start")
	}
}

func TestCue_TriggerRestarts(t *testing.T) {
	p := newBlockingPlayer()
	cue := sound.NewCue(p, nil)

	cue.Trigger()
	waitStarted(t, p)
	cue.Trigger()
	waitStarted(t, p)

	cue.Close()
	assert.Equal(t, int32(2), p.calls.Load())
	assert.Equal(t, int32(2), p.cancelled.Load())

	cue.Trigger()
	assert.Equal(t, int32(2), p.calls.Load())
}

func TestCue_SwallowsErrors(t *testing.T) {
	var wg sync.WaitGroup
	wg.Add(1)
	cue := sound.NewCue(funcPlayer(func(context.Context) error {
		defer wg.Done()
		return errors.New("autoplay blocked")
	}), nil)

	assert.NotPanics(t, cue.Trigger)
	wg.Wait()
	cue.Close()
}

func TestLoop(t *testing.T) {
	t.Run("start stop", func(t *testing.T) {
		p := newBlockingPlayer()
		loop := sound.NewLoop(p, 10*time.Millisecond, nil)

		assert.False(t, loop.Playing())
		loop.Start()
		loop.Start()
		waitStarted(t, p)
		assert.True(t, loop.Playing())

		loop.Stop()
		loop.Stop()
		assert.False(t, loop.Playing())
		assert.Equal(t, int32(1), p.calls.Load())
		assert.Equal(t, int32(1), p.cancelled.Load())
	})

	t.Run("repeats", func(t *testing.T) {
		var calls atomic.Int32
		loop := sound.NewLoop(funcPlayer(func(context.Context) error {
			calls.Add(1)
			return nil
		}), 5*time.Millisecond, nil)

		loop.Start()
		require.Eventually(t, func() bool { return calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
		loop.Stop()

		n := calls.Load()
		time.Sleep(30 * time.Millisecond)
		assert.Equal(t, n, calls.Load())
	})
}

func TestBellPlayer(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, sound.BellPlayer{W: &buf}.Play(context.Background()))
	assert.Equal(t, "\a", buf.String())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sound.BellPlayer{W: &buf}.Play(ctx), context.Canceled)
}

func TestCommandPlayer(t *testing.T) {
	assert.Error(t, sound.CommandPlayer{}.Play(context.Background()))
	assert.Error(t, sound.CommandPlayer{Command: []string{"/nonexistent/player-binary"}}.Play(context.Background()))
}
