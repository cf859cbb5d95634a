package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"montage/timeline"
)

// ProcessingClient talks to the server-side media processing service
// (audio extraction, muted-video creation, audio-presence detection).
type ProcessingClient struct {
	BaseURL string
	Client  *http.Client
}

// NewProcessingClient returns a client for the processing service at baseURL.
func NewProcessingClient(baseURL string) *ProcessingClient {
	return &ProcessingClient{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: 60 * time.Second},
	}
}

func (c *ProcessingClient) post(ctx context.Context, endpoint string, videoURL string, out interface{}) error {
	body, err := json.Marshal(map[string]string{"url": videoURL})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("processing service returned %s", resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// HasAudio reports whether the video at the URL carries an audio stream.
func (c *ProcessingClient) HasAudio(ctx context.Context, videoURL string) (bool, error) {
	var result struct {
		HasAudio bool `json:"has_audio"`
	}
	if err := c.post(ctx, "/api/has-audio", videoURL, &result); err != nil {
		return false, err
	}
	return result.HasAudio, nil
}

// ExtractAudio asks the service for an audio-only copy of the video.
func (c *ProcessingClient) ExtractAudio(ctx context.Context, videoURL string) (string, error) {
	var result struct {
		AudioURL string `json:"audio_url"`
	}
	if err := c.post(ctx, "/api/extract-audio", videoURL, &result); err != nil {
		return "", err
	}
	return result.AudioURL, nil
}

// MuteVideo asks the service for a muted copy of the video.
func (c *ProcessingClient) MuteVideo(ctx context.Context, videoURL string) (string, error) {
	var result struct {
		VideoURL string `json:"video_url"`
	}
	if err := c.post(ctx, "/api/mute-video", videoURL, &result); err != nil {
		return "", err
	}
	return result.VideoURL, nil
}

// EnrichVideoKeyframe runs the fire-and-forget enrichment for a freshly
// placed video clip: when the source carries audio, a muted copy replaces
// the visual URL and the extracted audio is attached to the payload. Every
// step degrades gracefully — on any failure the keyframe keeps the original
// video with its embedded audio.
func EnrichVideoKeyframe(ctx context.Context, client *ProcessingClient, store *timeline.Store, keyframeID string) {
	if client == nil || client.BaseURL == "" {
		return
	}
	keyframe, ok := store.Keyframe(keyframeID)
	if !ok || keyframe.Data.Type != timeline.MediaVideo {
		return
	}
	videoURL := keyframe.Data.URL

	hasAudio, err := client.HasAudio(ctx, videoURL)
	if err != nil {
		fmt.Printf("Warning: audio detection failed for %s: %v\n", keyframeID, err)
		return
	}
	if !hasAudio {
		return
	}

	audioURL, err := client.ExtractAudio(ctx, videoURL)
	if err != nil {
		fmt.Printf("Warning: audio extraction failed for %s: %v\n", keyframeID, err)
		return
	}
	mutedURL, err := client.MuteVideo(ctx, videoURL)
	if err != nil {
		fmt.Printf("Warning: muted-video creation failed for %s: %v\n", keyframeID, err)
		return
	}

	// The keyframe may have been removed while processing ran.
	if _, ok := store.Keyframe(keyframeID); !ok {
		return
	}
	update := timeline.KeyframeUpdate{URL: &mutedURL, AudioURL: &audioURL}
	if err := store.UpdateKeyframe(keyframeID, update); err != nil {
		fmt.Printf("Warning: failed to attach enrichment to %s: %v\n", keyframeID, err)
	}
}
