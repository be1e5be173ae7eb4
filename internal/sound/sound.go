package sound

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"time"

	"go.uber.org/zap"
)

type Player interface {
	// Play blocks until the clip finishes or ctx is cancelled.
	Play(ctx context.Context) error
}

// CommandPlayer plays a clip through an external command such as
// `paplay /usr/share/sounds/bell.wav`.
type CommandPlayer struct {
	Command []string
}

func (p CommandPlayer) Play(ctx context.Context) error {
	if len(p.Command) == 0 {
		return errors.New("sound: empty command")
	}
	cmd := exec.CommandContext(ctx, p.Command[0], p.Command[1:]...)
	if out, err := cmd.CombinedOutput(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("sound: %s: %w: %s", p.Command[0], err, out)
	}
	return nil
}

// BellPlayer rings the terminal bell.
type BellPlayer struct {
	W io.Writer
}

func (p BellPlayer) Play(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := io.WriteString(p.W, "\a")
	return err
}

type NopPlayer struct{}

func (NopPlayer) Play(context.Context) error { return nil }

// Cue is the one-shot notification sound. Trigger restarts it from the
// beginning; playback errors are logged and dropped.
type Cue struct {
	player Player
	logger *zap.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
	closed bool
}

func NewCue(player Player, logger *zap.Logger) *Cue {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cue{player: player, logger: logger.With(zap.String("component", "sound_cue"))}
}

func (c *Cue) Trigger() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	if c.cancel != nil {
		c.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer cancel()
		if err := c.player.Play(ctx); err != nil && !errors.Is(err, context.Canceled) {
			c.logger.Warn("notification sound failed", zap.Error(err))
		}
	}()
}

// Close stops playback and waits for it to finish.
func (c *Cue) Close() {
	c.mu.Lock()
	c.closed = true
	if c.cancel != nil {
		c.cancel()
	}
	c.mu.Unlock()
	c.wg.Wait()
}

// Loop repeats the player until stopped. It backs the long-running alert of a
// pending order.
type Loop struct {
	player Player
	gap    time.Duration
	logger *zap.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	playing bool
}

func NewLoop(player Player, gap time.Duration, logger *zap.Logger) *Loop {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loop{player: player, gap: gap, logger: logger.With(zap.String("component", "sound_loop"))}
}

// Start is a no-op while already playing.
func (l *Loop) Start() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.playing {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	l.cancel = cancel
	l.done = make(chan struct{})
	l.playing = true
	go l.run(ctx, l.done)
}

// Stop halts the loop and waits for the current clip to be cut off.
func (l *Loop) Stop() {
	l.mu.Lock()
	if !l.playing {
		l.mu.Unlock()
		return
	}
	l.playing = false
	l.cancel()
	done := l.done
	l.mu.Unlock()
	<-done
}

func (l *Loop) Playing() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.playing
}

func (l *Loop) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	failures := 0
	for {
		err := l.player.Play(ctx)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			failures++
			// log only the first failure of a streak
			if failures == 1 {
				l.logger.Warn("alert sound failed", zap.Error(err))
			}
		} else {
			failures = 0
		}

		gap := l.gap
		if gap <= 0 {
			gap = time.Second
		}
		select {
		case <-time.After(gap):
		case <-ctx.Done():
			return
		}
	}
}
