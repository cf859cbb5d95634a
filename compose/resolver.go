package compose

import (
	"montage/timeline"
)

// FPS is the fixed frame rate of every composition.
const FPS = 30

// MsToFrames converts a millisecond duration or position to a frame count,
// rounding up so a clip never loses its tail frame.
func MsToFrames(ms int64) int {
	if ms <= 0 {
		return 0
	}
	return int((ms*FPS + 999) / 1000)
}

// SeekFrame converts a playhead position to the nearest frame, the mapping
// the playback controller uses for seeks.
func SeekFrame(ms int64) int {
	if ms <= 0 {
		return 0
	}
	return int((ms*FPS + 500) / 1000)
}

// FrameToMs converts a frame index back to a millisecond position.
func FrameToMs(frame int) int64 {
	if frame <= 0 {
		return 0
	}
	return int64(frame) * 1000 / FPS
}

// aspectDimensions maps project aspect ratios to default canvas sizes.
var aspectDimensions = map[timeline.AspectRatio][2]int{
	timeline.AspectWide:   {1024, 576},
	timeline.AspectTall:   {576, 1024},
	timeline.AspectSquare: {1024, 1024},
}

// CanvasSize returns the project's render dimensions: explicit width/height
// when set, otherwise the default for its aspect ratio.
func CanvasSize(p *timeline.Project) (int, int) {
	if p.Width != nil && p.Height != nil {
		return *p.Width, *p.Height
	}
	if dims, ok := aspectDimensions[p.AspectRatio]; ok {
		return dims[0], dims[1]
	}
	dims := aspectDimensions[timeline.AspectWide]
	return dims[0], dims[1]
}

// Sequence is one keyframe resolved to its frame window [From, To).
type Sequence struct {
	Keyframe timeline.Keyframe `json:"keyframe"`
	From     int               `json:"from"`
	To       int               `json:"to"`
	// Gain is the effective audio gain for this clip (0 for visual-only media).
	Gain float64 `json:"gain"`
	// AudioLimitMs bounds audible playback to the real asset length, so a
	// stretched clip box never plays past the end of its source.
	AudioLimitMs int64 `json:"audio_limit_ms"`
}

// TrackComposition is one track's resolved sequence list, sorted by start.
type TrackComposition struct {
	Track     timeline.Track `json:"track"`
	Sequences []Sequence     `json:"sequences"`
}

// Composition is the fully resolved project: same input, same output, for
// both interactive preview and export.
type Composition struct {
	ProjectID   string             `json:"project_id"`
	Width       int                `json:"width"`
	Height      int                `json:"height"`
	TotalFrames int                `json:"total_frames"`
	Tracks      []TrackComposition `json:"tracks"`
}

// ActiveClip is one clip visible or audible at a queried frame.
type ActiveClip struct {
	Track timeline.Track
	Sequence
	// FrameOffset is how far into the clip the queried frame is.
	FrameOffset int
}

// Resolve maps the timeline model to a composition. Tracks keep the given
// order, which is the z-order for visual layering.
func Resolve(project timeline.Project, tracks []timeline.Track, keyframes map[string][]timeline.Keyframe) Composition {
	width, height := CanvasSize(&project)
	comp := Composition{
		ProjectID:   project.ID,
		Width:       width,
		Height:      height,
		TotalFrames: MsToFrames(project.Duration),
	}

	for _, track := range tracks {
		tc := TrackComposition{Track: track}
		sorted := append([]timeline.Keyframe(nil), keyframes[track.ID]...)
		timeline.SortKeyframes(sorted)
		for _, k := range sorted {
			seq := Sequence{
				Keyframe:     k,
				From:         MsToFrames(k.Timestamp),
				To:           MsToFrames(k.Timestamp) + MsToFrames(k.Duration),
				AudioLimitMs: k.Duration,
			}
			if k.Data.OriginalDuration != nil && *k.Data.OriginalDuration < seq.AudioLimitMs {
				seq.AudioLimitMs = *k.Data.OriginalDuration
			}
			if k.Data.Type.IsAudio() || k.Data.Type == timeline.MediaVideo {
				seq.Gain = EffectiveGain(track.Volume, k.Data.Volume, track.Muted)
			}
			tc.Sequences = append(tc.Sequences, seq)
		}
		comp.Tracks = append(comp.Tracks, tc)
	}
	return comp
}

// ActiveAt returns the sequence visible on this track at the queried frame.
// When sequences overlap, the one with the latest start wins; among clips
// starting on the same frame, the latest-added wins.
func (tc *TrackComposition) ActiveAt(frame int) (Sequence, bool) {
	var active Sequence
	found := false
	for _, seq := range tc.Sequences {
		if frame >= seq.From && frame < seq.To {
			active = seq
			found = true
		}
	}
	return active, found
}

// ActiveAt returns every clip active at the queried frame: visual clips in
// z-order first, then the audible clips of the audio tracks.
func (c *Composition) ActiveAt(frame int) []ActiveClip {
	var clips []ActiveClip
	for i := range c.Tracks {
		tc := &c.Tracks[i]
		if tc.Track.Type == timeline.TrackVideo {
			if seq, ok := tc.ActiveAt(frame); ok {
				clips = append(clips, ActiveClip{Track: tc.Track, Sequence: seq, FrameOffset: frame - seq.From})
			}
			continue
		}
		// Audio tracks do not occlude each other: every covering clip
		// contributes a stream, bounded by the real asset length.
		for _, seq := range tc.Sequences {
			if frame < seq.From || frame >= seq.To {
				continue
			}
			if FrameToMs(frame-seq.From) >= seq.AudioLimitMs {
				continue
			}
			clips = append(clips, ActiveClip{Track: tc.Track, Sequence: seq, FrameOffset: frame - seq.From})
		}
	}
	return clips
}

// Walk visits every frame from 0 to the final frame in order, the traversal
// the export pipeline uses.
func (c *Composition) Walk(fn func(frame int, clips []ActiveClip)) {
	for frame := 0; frame < c.TotalFrames; frame++ {
		fn(frame, c.ActiveAt(frame))
	}
}

// Place computes the canvas rectangle for a visual clip given its source
// media's natural pixel size.
func (c *Composition) Place(clip ActiveClip, mediaW, mediaH float64) Rect {
	mode := clip.Sequence.Keyframe.Data.FitMode
	if mode == "" {
		mode = timeline.FitContain
	}
	return Fit(Size{W: mediaW, H: mediaH}, Size{W: float64(c.Width), H: float64(c.Height)}, mode)
}
