// Package playback drives the timeline playhead: it owns play/pause/seek
// state and publishes the current position read back from the playback host.
package playback

import (
	"context"
	"sync"
	"time"

	"montage/compose"
	"montage/util"
)

// Player is the narrow contract a playback host must provide. Subscribe
// registers a handler for one of "play", "pause", "seeked" or "ended" and
// returns an unsubscribe function.
type Player interface {
	Play()
	Pause()
	SeekTo(frame int)
	CurrentFrame() int
	Subscribe(event string, handler func()) func()
}

// StepMs is how far the step transport controls jump.
const StepMs = 1000

// tickInterval is the position-poll cadence during playback, one frame at
// the composition frame rate.
const tickInterval = time.Second / compose.FPS

// Controller coordinates transport state with the underlying player. All
// transport controls are safe no-ops while no player is attached.
type Controller struct {
	mu         sync.Mutex
	player     Player
	durationMs int64
	positionMs int64
	playing    bool
	cancel     context.CancelFunc
	unsubEnded func()

	nextListener int
	listeners    map[int]func(int64)
}

// NewController returns a controller bound to the given player. player may
// be nil when the host is not yet initialized; transport calls then do
// nothing until SetPlayer is called.
func NewController(player Player, durationMs int64) *Controller {
	return &Controller{
		player:     player,
		durationMs: durationMs,
		listeners:  make(map[int]func(int64)),
	}
}

// SetPlayer attaches or replaces the playback host.
func (c *Controller) SetPlayer(player Player) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLoopLocked()
	c.player = player
	c.playing = false
}

// SetDuration updates the seekable range after the project duration changes.
func (c *Controller) SetDuration(durationMs int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.durationMs = durationMs
}

// Position returns the last published playhead position in milliseconds.
func (c *Controller) Position() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.positionMs
}

// Playing reports whether the transport is running.
func (c *Controller) Playing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playing
}

// OnPosition registers a listener for playhead updates and returns an
// unsubscribe function.
func (c *Controller) OnPosition(fn func(ms int64)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextListener
	c.nextListener++
	c.listeners[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.listeners, id)
	}
}

// Play starts the player and the per-frame position loop.
func (c *Controller) Play() {
	c.mu.Lock()
	if c.player == nil || c.playing {
		c.mu.Unlock()
		return
	}
	c.playing = true
	player := c.player
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.unsubEnded = player.Subscribe("ended", func() {
		c.Pause()
	})
	c.mu.Unlock()

	player.Play()
	go c.loop(ctx, player)
}

// loop polls the player each frame and publishes the playhead. Published
// positions never go backwards; only an explicit seek can do that.
func (c *Controller) loop(ctx context.Context, player Player) {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			ms := compose.FrameToMs(player.CurrentFrame())
			c.mu.Lock()
			if !c.playing || ms < c.positionMs {
				c.mu.Unlock()
				continue
			}
			c.positionMs = ms
			fns := c.listenersLocked()
			c.mu.Unlock()
			for _, fn := range fns {
				fn(ms)
			}
		}
	}
}

// Pause stops the position loop and the player; the playhead stays where it
// was last published.
func (c *Controller) Pause() {
	c.mu.Lock()
	if c.player == nil || !c.playing {
		c.mu.Unlock()
		return
	}
	c.playing = false
	player := c.player
	c.stopLoopLocked()
	c.mu.Unlock()

	player.Pause()
}

// Seek jumps the playhead, clamped to the project duration, and publishes
// the new position immediately.
func (c *Controller) Seek(ms int64) {
	c.mu.Lock()
	if c.player == nil {
		c.mu.Unlock()
		return
	}
	ms = util.ClampInt64(ms, 0, c.durationMs)
	c.positionMs = ms
	player := c.player
	fns := c.listenersLocked()
	c.mu.Unlock()

	player.SeekTo(compose.SeekFrame(ms))
	for _, fn := range fns {
		fn(ms)
	}
}

// StepForward nudges the playhead one second ahead.
func (c *Controller) StepForward() {
	c.Seek(c.Position() + StepMs)
}

// StepBack nudges the playhead one second back.
func (c *Controller) StepBack() {
	c.Seek(c.Position() - StepMs)
}

// JumpToStart rewinds to the beginning.
func (c *Controller) JumpToStart() {
	c.Seek(0)
}

// JumpToEnd jumps to the end of the project.
func (c *Controller) JumpToEnd() {
	c.mu.Lock()
	end := c.durationMs
	c.mu.Unlock()
	c.Seek(end)
}

// Close tears the controller down, stopping any running loop.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.playing = false
	c.stopLoopLocked()
}

func (c *Controller) stopLoopLocked() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	if c.unsubEnded != nil {
		c.unsubEnded()
		c.unsubEnded = nil
	}
}

func (c *Controller) listenersLocked() []func(int64) {
	fns := make([]func(int64), 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	return fns
}
