// Package media normalizes incoming media references and resolves their
// durations and enrichment against external collaborators.
package media

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"montage/timeline"
)

// Asset is a normalized media reference, the shape the timeline layer works
// with regardless of where the drag payload came from.
type Asset struct {
	Type     timeline.MediaType `json:"type"`
	URL      string             `json:"url"`
	ID       string             `json:"id"`
	Label    string             `json:"label,omitempty"`
	Duration *int64             `json:"duration,omitempty"` // milliseconds, when declared
}

var extensionTypes = map[string]timeline.MediaType{
	".mp4":  timeline.MediaVideo,
	".webm": timeline.MediaVideo,
	".mov":  timeline.MediaVideo,
	".mkv":  timeline.MediaVideo,
	".png":  timeline.MediaImage,
	".jpg":  timeline.MediaImage,
	".jpeg": timeline.MediaImage,
	".webp": timeline.MediaImage,
	".gif":  timeline.MediaImage,
	".mp3":  timeline.MediaMusic,
	".wav":  timeline.MediaMusic,
	".m4a":  timeline.MediaMusic,
	".ogg":  timeline.MediaMusic,
	".flac": timeline.MediaMusic,
}

// NormalizePayload converts an opaque drag payload into an Asset. Payloads
// come from different UI surfaces and are inconsistent about key names, so
// several aliases are accepted for each field.
func NormalizePayload(payload map[string]interface{}) (Asset, error) {
	asset := Asset{
		URL:   stringField(payload, "url", "src", "mediaUrl"),
		ID:    stringField(payload, "id", "mediaId", "media_id"),
		Label: stringField(payload, "label", "name", "title"),
	}
	if asset.URL == "" {
		return Asset{}, fmt.Errorf("payload has no media URL")
	}

	if t := stringField(payload, "type", "mediaType", "media_type"); t != "" {
		asset.Type = timeline.MediaType(t)
		if !asset.Type.Valid() {
			return Asset{}, fmt.Errorf("unknown media type in payload: %s", t)
		}
	} else {
		inferred, err := TypeFromURL(asset.URL)
		if err != nil {
			return Asset{}, err
		}
		asset.Type = inferred
	}

	if d, ok := numberField(payload, "duration", "durationMs", "duration_ms"); ok {
		ms := int64(d)
		if ms > 0 {
			asset.Duration = &ms
		}
	}
	if asset.ID == "" {
		asset.ID = asset.URL
	}
	return asset, nil
}

// TypeFromURL infers the media type from the URL's file extension.
func TypeFromURL(rawURL string) (timeline.MediaType, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse media URL: %v", err)
	}
	ext := strings.ToLower(path.Ext(parsed.Path))
	if t, ok := extensionTypes[ext]; ok {
		return t, nil
	}
	return "", fmt.Errorf("cannot infer media type from URL: %s", rawURL)
}

func stringField(payload map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		if v, ok := payload[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

func numberField(payload map[string]interface{}, keys ...string) (float64, bool) {
	for _, key := range keys {
		if v, ok := payload[key].(float64); ok {
			return v, true
		}
	}
	return 0, false
}
