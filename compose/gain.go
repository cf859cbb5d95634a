package compose

import "montage/util"

// EffectiveGain combines a track-level volume (0-200 percent) with an
// optional per-clip override into one linear gain for the playback engine.
// The two normalized fractions multiply; a muted track is silent no matter
// what the volumes say. The result is clamped to the engine's 0-1 range.
func EffectiveGain(trackVolume float64, clipVolume *float64, muted bool) float64 {
	if muted {
		return 0
	}
	clip := 100.0
	if clipVolume != nil {
		clip = *clipVolume
	}
	gain := (trackVolume / 100.0) * (clip / 100.0)
	return util.ClampFloat(gain, 0, 1)
}
