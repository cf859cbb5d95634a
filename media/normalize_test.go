package media

import (
	"testing"

	"montage/timeline"
)

func TestNormalizePayloadAliases(t *testing.T) {
	cases := []struct {
		name    string
		payload map[string]interface{}
		wantURL string
		wantID  string
	}{
		{
			"canonical keys",
			map[string]interface{}{"url": "https://cdn.example.com/a.mp4", "id": "m1"},
			"https://cdn.example.com/a.mp4", "m1",
		},
		{
			"src and mediaId",
			map[string]interface{}{"src": "https://cdn.example.com/b.mp4", "mediaId": "m2"},
			"https://cdn.example.com/b.mp4", "m2",
		},
		{
			"mediaUrl and snake case id",
			map[string]interface{}{"mediaUrl": "https://cdn.example.com/c.mp4", "media_id": "m3"},
			"https://cdn.example.com/c.mp4", "m3",
		},
	}
	for _, c := range cases {
		asset, err := NormalizePayload(c.payload)
		if err != nil {
			t.Errorf("%s: %v", c.name, err)
			continue
		}
		if asset.URL != c.wantURL || asset.ID != c.wantID {
			t.Errorf("%s: got url %q id %q", c.name, asset.URL, asset.ID)
		}
	}
}

func TestNormalizePayloadInfersTypeFromExtension(t *testing.T) {
	cases := []struct {
		url  string
		want timeline.MediaType
	}{
		{"https://cdn.example.com/clip.mp4", timeline.MediaVideo},
		{"https://cdn.example.com/photo.JPG", timeline.MediaImage},
		{"https://cdn.example.com/song.mp3?sig=abc", timeline.MediaMusic},
	}
	for _, c := range cases {
		asset, err := NormalizePayload(map[string]interface{}{"url": c.url})
		if err != nil {
			t.Errorf("%s: %v", c.url, err)
			continue
		}
		if asset.Type != c.want {
			t.Errorf("%s: inferred %s, want %s", c.url, asset.Type, c.want)
		}
	}
}

func TestNormalizePayloadExplicitTypeWins(t *testing.T) {
	asset, err := NormalizePayload(map[string]interface{}{
		"url":  "https://cdn.example.com/narration.mp3",
		"type": "voiceover",
	})
	if err != nil {
		t.Fatalf("NormalizePayload failed: %v", err)
	}
	if asset.Type != timeline.MediaVoiceover {
		t.Errorf("declared type must override the extension, got %s", asset.Type)
	}
}

func TestNormalizePayloadErrors(t *testing.T) {
	if _, err := NormalizePayload(map[string]interface{}{"label": "no url"}); err == nil {
		t.Error("payload without a URL must be rejected")
	}
	if _, err := NormalizePayload(map[string]interface{}{"url": "https://cdn.example.com/a.mp4", "type": "hologram"}); err == nil {
		t.Error("unknown media type must be rejected")
	}
	if _, err := NormalizePayload(map[string]interface{}{"url": "https://cdn.example.com/file.xyz"}); err == nil {
		t.Error("uninferrable extension without a declared type must be rejected")
	}
}

func TestNormalizePayloadDuration(t *testing.T) {
	asset, err := NormalizePayload(map[string]interface{}{
		"url":        "https://cdn.example.com/a.mp4",
		"durationMs": float64(12000),
	})
	if err != nil {
		t.Fatalf("NormalizePayload failed: %v", err)
	}
	if asset.Duration == nil || *asset.Duration != 12000 {
		t.Errorf("declared duration lost: %v", asset.Duration)
	}

	asset, err = NormalizePayload(map[string]interface{}{
		"url":      "https://cdn.example.com/a.mp4",
		"duration": float64(-3),
	})
	if err != nil {
		t.Fatalf("NormalizePayload failed: %v", err)
	}
	if asset.Duration != nil {
		t.Errorf("non-positive declared durations must be dropped, got %d", *asset.Duration)
	}
}

func TestNormalizePayloadFallsBackToURLAsID(t *testing.T) {
	asset, err := NormalizePayload(map[string]interface{}{"url": "https://cdn.example.com/a.mp4"})
	if err != nil {
		t.Fatalf("NormalizePayload failed: %v", err)
	}
	if asset.ID != asset.URL {
		t.Errorf("missing id must fall back to the URL, got %q", asset.ID)
	}
}
