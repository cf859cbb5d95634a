package timeline

import (
	"fmt"
	"time"
)

// TrackType identifies which media category a track lane carries.
type TrackType string

const (
	TrackVideo     TrackType = "video"
	TrackMusic     TrackType = "music"
	TrackVoiceover TrackType = "voiceover"
)

// MediaType identifies the kind of media a keyframe references.
// The video track carries both image and video clips.
type MediaType string

const (
	MediaImage     MediaType = "image"
	MediaVideo     MediaType = "video"
	MediaMusic     MediaType = "music"
	MediaVoiceover MediaType = "voiceover"
)

// FitMode is the policy for scaling source media into the canvas.
type FitMode string

const (
	FitContain FitMode = "contain"
	FitCover   FitMode = "cover"
	FitFill    FitMode = "fill"
)

// AspectRatio is one of the supported project aspect ratios.
type AspectRatio string

const (
	AspectWide   AspectRatio = "16:9"
	AspectTall   AspectRatio = "9:16"
	AspectSquare AspectRatio = "1:1"
)

// DefaultTrackVolume is the volume a new track starts with (percent, 0-200).
const DefaultTrackVolume = 100.0

// Project is one edited video unit.
type Project struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	AspectRatio AspectRatio `json:"aspect_ratio"`
	Width       *int        `json:"width,omitempty"`
	Height      *int        `json:"height,omitempty"`
	Quality     *string     `json:"quality,omitempty"`
	Duration    int64       `json:"duration"` // milliseconds
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// Track is one lane of the timeline, owned by exactly one project.
type Track struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	Type      TrackType `json:"type"`
	Label     string    `json:"label"`
	Locked    bool      `json:"locked"`
	Order     int       `json:"order"`
	Volume    float64   `json:"volume"` // percent, 0-200
	Muted     bool      `json:"muted"`
}

// KeyframeData is the media payload carried by a keyframe.
type KeyframeData struct {
	Type             MediaType `json:"type"`
	MediaID          string    `json:"media_id"`
	URL              string    `json:"url"`
	Label            string    `json:"label,omitempty"`
	FitMode          FitMode   `json:"fit_mode,omitempty"`
	Volume           *float64  `json:"volume,omitempty"` // percent, 0-200, overrides track volume
	OriginalDuration *int64    `json:"original_duration,omitempty"`
	AudioURL         *string   `json:"audio_url,omitempty"` // extracted audio, filled by enrichment
	CreatedAt        time.Time `json:"created_at"`
}

// Keyframe is one placed media clip instance on a track.
type Keyframe struct {
	ID        string       `json:"id"`
	TrackID   string       `json:"track_id"`
	Timestamp int64        `json:"timestamp"` // milliseconds from timeline start
	Duration  int64        `json:"duration"`  // milliseconds
	Data      KeyframeData `json:"data"`
}

// Valid reports whether t is a known track type.
func (t TrackType) Valid() bool {
	switch t {
	case TrackVideo, TrackMusic, TrackVoiceover:
		return true
	}
	return false
}

// Valid reports whether m is a known media type.
func (m MediaType) Valid() bool {
	switch m {
	case MediaImage, MediaVideo, MediaMusic, MediaVoiceover:
		return true
	}
	return false
}

// IsAudio reports whether m is an audio-only media type.
func (m MediaType) IsAudio() bool {
	return m == MediaMusic || m == MediaVoiceover
}

// TrackTypeFor returns the track type that carries the given media type.
func TrackTypeFor(m MediaType) (TrackType, error) {
	switch m {
	case MediaImage, MediaVideo:
		return TrackVideo, nil
	case MediaMusic:
		return TrackMusic, nil
	case MediaVoiceover:
		return TrackVoiceover, nil
	}
	return "", fmt.Errorf("unknown media type: %s", m)
}

// MediaTypeFor reinterprets a media type so it is compatible with the given
// track type. Visual media keeps its own type on a video track; audio media
// takes on the destination track's category when moved across tracks.
func MediaTypeFor(t TrackType, m MediaType) (MediaType, error) {
	switch t {
	case TrackVideo:
		if m == MediaImage || m == MediaVideo {
			return m, nil
		}
	case TrackMusic:
		if m.IsAudio() {
			return MediaMusic, nil
		}
	case TrackVoiceover:
		if m.IsAudio() {
			return MediaVoiceover, nil
		}
	}
	return "", fmt.Errorf("media type %s is not compatible with %s track", m, t)
}

// Compatible reports whether a keyframe of media type m may live on a track
// of type t.
func Compatible(t TrackType, m MediaType) bool {
	want, err := TrackTypeFor(m)
	return err == nil && want == t
}

// Validate checks the project invariants.
func (p *Project) Validate() error {
	if p.Duration < 0 {
		return fmt.Errorf("project duration must not be negative, got %d", p.Duration)
	}
	if (p.Width == nil) != (p.Height == nil) {
		return fmt.Errorf("project width and height must be set together")
	}
	if p.Width != nil && (*p.Width <= 0 || *p.Height <= 0) {
		return fmt.Errorf("project dimensions must be positive, got %dx%d", *p.Width, *p.Height)
	}
	return nil
}

// Validate checks the keyframe invariants against its track.
func (k *Keyframe) Validate(track *Track) error {
	if k.Timestamp < 0 {
		return fmt.Errorf("keyframe timestamp must not be negative, got %d", k.Timestamp)
	}
	if k.Duration <= 0 {
		return fmt.Errorf("keyframe duration must be positive, got %d", k.Duration)
	}
	if !k.Data.Type.Valid() {
		return fmt.Errorf("unknown media type: %s", k.Data.Type)
	}
	if k.Data.URL == "" {
		return fmt.Errorf("keyframe media URL is required")
	}
	if k.Data.Volume != nil && (*k.Data.Volume < 0 || *k.Data.Volume > 200) {
		return fmt.Errorf("keyframe volume must be between 0 and 200, got %.0f", *k.Data.Volume)
	}
	if track != nil && !Compatible(track.Type, k.Data.Type) {
		return fmt.Errorf("media type %s cannot be placed on %s track", k.Data.Type, track.Type)
	}
	return nil
}

// End returns the keyframe's end position in milliseconds.
func (k *Keyframe) End() int64 {
	return k.Timestamp + k.Duration
}
