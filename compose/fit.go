// Package compose resolves the timeline model into a deterministic,
// frame-indexed composition for preview playback and export.
package compose

import "montage/timeline"

// Size is a pixel dimension pair.
type Size struct {
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Rect is the rendered placement of a media box inside the canvas.
type Rect struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Scale  float64 `json:"scale"`
}

// Fit computes where a media box of the given natural size lands on the
// canvas under the given fit mode. Inputs must be positive; the caller
// validates them.
//
// contain letterboxes inside the canvas, cover fills the canvas and crops
// the overflow (x/y may go negative), fill stretches to the exact canvas
// and ignores the media aspect ratio.
func Fit(media, canvas Size, mode timeline.FitMode) Rect {
	switch mode {
	case timeline.FitCover:
		scale := canvas.W / media.W
		if canvas.H/media.H > scale {
			scale = canvas.H / media.H
		}
		w := media.W * scale
		h := media.H * scale
		return Rect{
			Width:  w,
			Height: h,
			X:      (canvas.W - w) / 2,
			Y:      (canvas.H - h) / 2,
			Scale:  scale,
		}
	case timeline.FitFill:
		return Rect{Width: canvas.W, Height: canvas.H, X: 0, Y: 0, Scale: 1}
	default: // contain
		scale := canvas.W / media.W
		if canvas.H/media.H < scale {
			scale = canvas.H / media.H
		}
		w := media.W * scale
		h := media.H * scale
		return Rect{
			Width:  w,
			Height: h,
			X:      (canvas.W - w) / 2,
			Y:      (canvas.H - h) / 2,
			Scale:  scale,
		}
	}
}
