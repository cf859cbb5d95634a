// Package gesture implements the pointer-driven edit protocol for timeline
// clips: press, drag, resize, cross-track move, snapping, and the single
// commit on release.
package gesture

import (
	"fmt"

	"montage/timeline"
	"montage/util"
)

const (
	// SnapThresholdMs is how close a dragged edge must be to a candidate
	// before it is pulled exactly onto it.
	SnapThresholdMs = 100
	// MinDurationMs is the floor a resize can never trim below.
	MinDurationMs = 1000
	// DragThresholdPx is the movement needed before a press becomes a drag,
	// so plain clicks never mutate the model.
	DragThresholdPx = 5.0
)

// Phase is the state of an in-progress gesture.
type Phase int

const (
	PhasePressed Phase = iota
	PhaseDragging
	PhaseResizing
	PhaseDone
)

// Edge identifies where on the clip the gesture started.
type Edge int

const (
	EdgeNone Edge = iota // clip body: whole-clip move
	EdgeLeft
	EdgeRight
)

// Action is what a released gesture committed.
type Action int

const (
	ActionNone Action = iota // selection click, no mutation
	ActionMove
	ActionCrossMove
	ActionResize
)

// Commit describes the full final state a gesture wrote, so commits are
// idempotent and order-independent per keyframe.
type Commit struct {
	Action    Action
	Keyframe  string
	TrackID   string
	Timestamp int64
	Duration  int64
}

// Gesture tracks one pointer interaction with a clip. The model is only
// mutated once, at Release; everything before that updates proposed values
// for visual feedback.
type Gesture struct {
	store    *timeline.Store
	keyframe timeline.Keyframe
	origin   timeline.Track
	edge     Edge
	pxPerSec float64
	startX   float64
	startY   float64
	snap     bool
	phase    Phase

	proposedTimestamp int64
	proposedDuration  int64
	targetTrackID     string
}

// Begin starts a gesture from a pointer-down on a clip. edge selects between
// a whole-clip move (EdgeNone) and a left/right trim.
func Begin(store *timeline.Store, keyframeID string, edge Edge, x, y, pxPerSec float64) (*Gesture, error) {
	if pxPerSec <= 0 {
		return nil, fmt.Errorf("pixels-per-second must be positive, got %f", pxPerSec)
	}
	keyframe, ok := store.Keyframe(keyframeID)
	if !ok {
		return nil, fmt.Errorf("keyframe not found: %s", keyframeID)
	}
	track, ok := store.Track(keyframe.TrackID)
	if !ok {
		return nil, fmt.Errorf("track not found: %s", keyframe.TrackID)
	}
	if track.Locked {
		return nil, fmt.Errorf("track %s is locked", track.Label)
	}
	return &Gesture{
		store:             store,
		keyframe:          keyframe,
		origin:            track,
		edge:              edge,
		pxPerSec:          pxPerSec,
		startX:            x,
		startY:            y,
		snap:              true,
		phase:             PhasePressed,
		proposedTimestamp: keyframe.Timestamp,
		proposedDuration:  keyframe.Duration,
		targetTrackID:     track.ID,
	}, nil
}

// SetSnapping toggles snap-to-edge behavior for this gesture.
func (g *Gesture) SetSnapping(enabled bool) {
	g.snap = enabled
}

// Phase returns the gesture's current state.
func (g *Gesture) Phase() Phase {
	return g.phase
}

// Proposed returns the clip position the gesture would commit right now,
// for rendering the drag preview.
func (g *Gesture) Proposed() (trackID string, timestamp, duration int64) {
	return g.targetTrackID, g.proposedTimestamp, g.proposedDuration
}

// Move feeds a pointer movement into the gesture. hoverTrackID names the
// track currently under the pointer; it only matters for audio clips, which
// may cross onto other audio tracks.
func (g *Gesture) Move(x, y float64, hoverTrackID string) {
	if g.phase == PhaseDone {
		return
	}
	dx := x - g.startX
	dy := y - g.startY
	if g.phase == PhasePressed {
		if dx < DragThresholdPx && dx > -DragThresholdPx &&
			dy < DragThresholdPx && dy > -DragThresholdPx {
			return
		}
		if g.edge == EdgeNone {
			g.phase = PhaseDragging
		} else {
			g.phase = PhaseResizing
		}
	}

	deltaMs := int64(dx / g.pxPerSec * 1000.0)
	switch g.phase {
	case PhaseDragging:
		g.moveBody(deltaMs, hoverTrackID)
	case PhaseResizing:
		g.resize(deltaMs)
	}
}

func (g *Gesture) moveBody(deltaMs int64, hoverTrackID string) {
	ts := g.keyframe.Timestamp + deltaMs
	if ts < 0 {
		ts = 0
	}
	// Snap whichever clip edge lands closest to a candidate.
	if snapped, ok := g.snapValue(ts); ok {
		ts = snapped
	} else if snappedEnd, ok := g.snapValue(ts + g.keyframe.Duration); ok {
		ts = snappedEnd - g.keyframe.Duration
		if ts < 0 {
			ts = 0
		}
	}
	g.proposedTimestamp = ts

	g.targetTrackID = g.origin.ID
	if hoverTrackID != "" && hoverTrackID != g.origin.ID && g.keyframe.Data.Type.IsAudio() {
		if track, ok := g.store.Track(hoverTrackID); ok && !track.Locked && track.Type != timeline.TrackVideo {
			g.targetTrackID = track.ID
		}
	}
}

func (g *Gesture) resize(deltaMs int64) {
	origEnd := g.keyframe.End()
	switch g.edge {
	case EdgeLeft:
		ts := util.ClampInt64(g.keyframe.Timestamp+deltaMs, 0, origEnd-MinDurationMs)
		if snapped, ok := g.snapValue(ts); ok {
			ts = util.ClampInt64(snapped, 0, origEnd-MinDurationMs)
		}
		g.proposedTimestamp = ts
		g.proposedDuration = origEnd - ts
	case EdgeRight:
		end := g.keyframe.Timestamp + deltaMs + g.keyframe.Duration
		if snapped, ok := g.snapValue(end); ok {
			end = snapped
		}
		if end < g.keyframe.Timestamp+MinDurationMs {
			end = g.keyframe.Timestamp + MinDurationMs
		}
		g.proposedTimestamp = g.keyframe.Timestamp
		g.proposedDuration = end - g.keyframe.Timestamp
	}
}

// snapValue pulls a position onto the nearest snap candidate within the
// threshold. Candidates are 0 and the start/end of every other clip.
func (g *Gesture) snapValue(ms int64) (int64, bool) {
	if !g.snap {
		return 0, false
	}
	best := int64(-1)
	bestDist := int64(SnapThresholdMs + 1)
	consider := func(candidate int64) {
		dist := util.AbsInt64(ms - candidate)
		if dist <= SnapThresholdMs && dist < bestDist {
			best = candidate
			bestDist = dist
		}
	}
	consider(0)
	for _, k := range g.store.AllKeyframes() {
		if k.ID == g.keyframe.ID {
			continue
		}
		consider(k.Timestamp)
		consider(k.End())
	}
	if best < 0 {
		return 0, false
	}
	return best, true
}

// Release ends the gesture and commits at most one mutation. A press that
// never crossed the drag threshold is a plain selection click.
func (g *Gesture) Release() (Commit, error) {
	if g.phase == PhaseDone {
		return Commit{}, fmt.Errorf("gesture already finished")
	}
	phase := g.phase
	g.phase = PhaseDone

	commit := Commit{
		Keyframe:  g.keyframe.ID,
		TrackID:   g.targetTrackID,
		Timestamp: g.proposedTimestamp,
		Duration:  g.proposedDuration,
	}

	switch phase {
	case PhasePressed:
		commit.Action = ActionNone
		commit.TrackID = g.origin.ID
		commit.Timestamp = g.keyframe.Timestamp
		commit.Duration = g.keyframe.Duration
		return commit, nil
	case PhaseDragging:
		if g.targetTrackID != g.origin.ID {
			commit.Action = ActionCrossMove
			if err := g.store.MoveKeyframeAcrossTracks(g.keyframe.ID, g.targetTrackID, g.proposedTimestamp); err != nil {
				return Commit{}, err
			}
			return commit, nil
		}
		commit.Action = ActionMove
		ts := g.proposedTimestamp
		if err := g.store.UpdateKeyframe(g.keyframe.ID, timeline.KeyframeUpdate{Timestamp: &ts}); err != nil {
			return Commit{}, err
		}
		return commit, nil
	case PhaseResizing:
		commit.Action = ActionResize
		ts, dur := g.proposedTimestamp, g.proposedDuration
		if err := g.store.UpdateKeyframe(g.keyframe.ID, timeline.KeyframeUpdate{Timestamp: &ts, Duration: &dur}); err != nil {
			return Commit{}, err
		}
		return commit, nil
	}
	return Commit{}, fmt.Errorf("unexpected gesture phase %d", phase)
}

// Cancel abandons the gesture without touching the model, for releases
// outside any drop target or interrupted interactions.
func (g *Gesture) Cancel() {
	g.phase = PhaseDone
}
