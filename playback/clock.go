package playback

import (
	"sync"
	"time"

	"montage/compose"
)

// ClockPlayer is a headless Player backed by the wall clock. It stands in
// for a real rendering host during shell editing and server-side preview:
// frames advance in real time and playback stops at the final frame.
type ClockPlayer struct {
	mu          sync.Mutex
	totalFrames int
	playing     bool
	baseFrame   int
	startedAt   time.Time

	nextHandler int
	handlers    map[string]map[int]func()
}

// NewClockPlayer returns a clock player for a composition of the given
// total frame count.
func NewClockPlayer(totalFrames int) *ClockPlayer {
	return &ClockPlayer{
		totalFrames: totalFrames,
		handlers:    make(map[string]map[int]func()),
	}
}

// Play starts advancing frames in real time.
func (p *ClockPlayer) Play() {
	p.mu.Lock()
	if p.playing {
		p.mu.Unlock()
		return
	}
	if p.baseFrame >= p.totalFrames {
		p.baseFrame = 0
	}
	p.playing = true
	p.startedAt = time.Now()
	p.mu.Unlock()
	p.emit("play")
}

// Pause freezes the current frame.
func (p *ClockPlayer) Pause() {
	p.mu.Lock()
	if !p.playing {
		p.mu.Unlock()
		return
	}
	p.baseFrame = p.frameLocked()
	p.playing = false
	p.mu.Unlock()
	p.emit("pause")
}

// SeekTo jumps to the given frame.
func (p *ClockPlayer) SeekTo(frame int) {
	p.mu.Lock()
	if frame < 0 {
		frame = 0
	}
	if frame > p.totalFrames {
		frame = p.totalFrames
	}
	p.baseFrame = frame
	p.startedAt = time.Now()
	p.mu.Unlock()
	p.emit("seeked")
}

// CurrentFrame returns the playhead frame. Reaching the final frame during
// playback pauses the player and fires "ended".
func (p *ClockPlayer) CurrentFrame() int {
	p.mu.Lock()
	frame := p.frameLocked()
	ended := p.playing && frame >= p.totalFrames
	if ended {
		frame = p.totalFrames
		p.baseFrame = frame
		p.playing = false
	}
	p.mu.Unlock()
	if ended {
		p.emit("ended")
	}
	return frame
}

func (p *ClockPlayer) frameLocked() int {
	if !p.playing {
		return p.baseFrame
	}
	elapsed := time.Since(p.startedAt)
	frame := p.baseFrame + int(elapsed*compose.FPS/time.Second)
	if frame > p.totalFrames {
		frame = p.totalFrames
	}
	return frame
}

// Subscribe registers a handler for a player event and returns the
// unsubscribe function.
func (p *ClockPlayer) Subscribe(event string, handler func()) func() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.handlers[event] == nil {
		p.handlers[event] = make(map[int]func())
	}
	id := p.nextHandler
	p.nextHandler++
	p.handlers[event][id] = handler
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.handlers[event], id)
	}
}

func (p *ClockPlayer) emit(event string) {
	p.mu.Lock()
	fns := make([]func(), 0, len(p.handlers[event]))
	for _, fn := range p.handlers[event] {
		fns = append(fns, fn)
	}
	p.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}
