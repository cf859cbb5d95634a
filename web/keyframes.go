package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"montage/media"
	"montage/timeline"
)

func (s *Server) handleAddTrack(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	var req struct {
		Type   timeline.TrackType `json:"type"`
		Label  string             `json:"label"`
		Volume *float64           `json:"volume"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid JSON: %v", err))
		return
	}
	id, err := sess.store.AddTrack(timeline.TrackSpec{Type: req.Type, Label: req.Label, Volume: req.Volume})
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	track, _ := sess.store.Track(id)
	writeJSON(w, http.StatusCreated, track)
}

func (s *Server) handleUpdateTrack(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	var req struct {
		Label  *string  `json:"label"`
		Locked *bool    `json:"locked"`
		Volume *float64 `json:"volume"`
		Muted  *bool    `json:"muted"`
		Order  *int     `json:"order"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid JSON: %v", err))
		return
	}
	trackID := r.PathValue("trackId")
	update := timeline.TrackUpdate{Label: req.Label, Locked: req.Locked, Volume: req.Volume, Muted: req.Muted, Order: req.Order}
	if err := sess.store.UpdateTrack(trackID, update); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	track, _ := sess.store.Track(trackID)
	writeJSON(w, http.StatusOK, track)
}

func (s *Server) handleRemoveTrack(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	if err := sess.store.RemoveTrack(r.PathValue("trackId")); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleAddKeyframe places a dropped media payload on the timeline. The
// payload is the opaque shape produced by the generation/library UI; it is
// normalized, its duration resolved, and a compatible track found or created.
// Video clips get fire-and-forget enrichment.
func (s *Server) handleAddKeyframe(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	var req struct {
		TrackID   string                 `json:"track_id"`
		Timestamp int64                  `json:"timestamp"`
		Duration  *int64                 `json:"duration"`
		Payload   map[string]interface{} `json:"payload"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid JSON: %v", err))
		return
	}
	asset, err := media.NormalizePayload(req.Payload)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	var warning string
	duration := int64(0)
	if req.Duration != nil && *req.Duration > 0 {
		duration = *req.Duration
	} else {
		resolved, warn := s.Resolver.ResolveDuration(r.Context(), asset)
		duration = resolved
		if warn != nil {
			warning = warn.Error()
		}
	}

	originalDuration := duration
	if asset.Duration != nil && *asset.Duration > 0 {
		originalDuration = *asset.Duration
	}
	id, err := sess.store.AddKeyframe(timeline.KeyframeSpec{
		TrackID:   req.TrackID,
		Timestamp: req.Timestamp,
		Duration:  duration,
		Data: timeline.KeyframeData{
			Type:             asset.Type,
			MediaID:          asset.ID,
			URL:              asset.URL,
			Label:            asset.Label,
			OriginalDuration: &originalDuration,
		},
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if asset.Type == timeline.MediaVideo {
		// Enrichment is detached from the request: the clip exists whether
		// or not the processing service ever answers.
		go media.EnrichVideoKeyframe(context.Background(), s.Processing, sess.store, id)
	}

	keyframe, _ := sess.store.Keyframe(id)
	resp := map[string]interface{}{"keyframe": keyframe}
	if warning != "" {
		resp["warning"] = warning
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleUpdateKeyframe(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	var req struct {
		Timestamp *int64            `json:"timestamp"`
		Duration  *int64            `json:"duration"`
		Volume    *float64          `json:"volume"`
		FitMode   *timeline.FitMode `json:"fit_mode"`
		Label     *string           `json:"label"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid JSON: %v", err))
		return
	}
	keyframeID := r.PathValue("keyframeId")
	update := timeline.KeyframeUpdate{
		Timestamp: req.Timestamp,
		Duration:  req.Duration,
		Volume:    req.Volume,
		FitMode:   req.FitMode,
		Label:     req.Label,
	}
	if err := sess.store.UpdateKeyframe(keyframeID, update); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	keyframe, _ := sess.store.Keyframe(keyframeID)
	writeJSON(w, http.StatusOK, keyframe)
}

func (s *Server) handleRemoveKeyframe(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	if err := sess.store.RemoveKeyframe(r.PathValue("keyframeId")); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMoveKeyframe(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	var req struct {
		TrackID   string `json:"track_id"`
		Timestamp int64  `json:"timestamp"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid JSON: %v", err))
		return
	}
	keyframeID := r.PathValue("keyframeId")
	if err := sess.store.MoveKeyframeAcrossTracks(keyframeID, req.TrackID, req.Timestamp); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	keyframe, _ := sess.store.Keyframe(keyframeID)
	writeJSON(w, http.StatusOK, keyframe)
}
