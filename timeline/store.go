package timeline

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Persistence is the write-through storage collaborator. Every mutating
// store call is persisted before the in-memory model changes, so a failed
// write never leaves the two out of sync.
type Persistence interface {
	SaveProject(p *Project) error
	SaveTrack(t *Track) error
	SaveKeyframe(k *Keyframe) error
	DeleteTrack(id string) error
	DeleteKeyframe(id string) error
}

// TrackSpec describes a track to be created.
type TrackSpec struct {
	Type   TrackType
	Label  string
	Volume *float64
}

// KeyframeSpec describes a keyframe to be created. TrackID may be empty, in
// which case a track matching the media type is found or created.
type KeyframeSpec struct {
	TrackID   string
	Timestamp int64
	Duration  int64
	Data      KeyframeData
}

// KeyframeUpdate is a partial update; nil fields are left unchanged.
type KeyframeUpdate struct {
	Timestamp        *int64
	Duration         *int64
	Volume           *float64
	FitMode          *FitMode
	URL              *string
	Label            *string
	AudioURL         *string
	OriginalDuration *int64
}

// TrackUpdate is a partial track update; nil fields are left unchanged.
// The track type is immutable and deliberately absent.
type TrackUpdate struct {
	Label  *string
	Locked *bool
	Volume *float64
	Muted  *bool
	Order  *int
}

// ProjectUpdate is a partial project update; nil fields are left unchanged.
type ProjectUpdate struct {
	Title       *string
	Description *string
	Duration    *int64
	Width       *int
	Height      *int
	AspectRatio *AspectRatio
}

// Store is the single source of truth for the tracks and keyframes of one
// project. All mutations validate first, write through to persistence, and
// only then touch the in-memory model.
type Store struct {
	mu        sync.Mutex
	project   Project
	tracks    []Track
	keyframes []Keyframe
	persist   Persistence
}

// NewProject builds a fresh project record with generated ID and timestamps.
func NewProject(title string, aspect AspectRatio) *Project {
	now := time.Now()
	return &Project{
		ID:          uuid.NewString(),
		Title:       title,
		AspectRatio: aspect,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// NewStore creates a store around an already-loaded project.
func NewStore(project *Project, tracks []Track, keyframes map[string][]Keyframe, persist Persistence) (*Store, error) {
	if err := project.Validate(); err != nil {
		return nil, err
	}
	s := &Store{project: *project, persist: persist}
	s.tracks = append(s.tracks, tracks...)
	SortTracks(s.tracks)
	for _, t := range s.tracks {
		kfs := append([]Keyframe(nil), keyframes[t.ID]...)
		SortKeyframes(kfs)
		s.keyframes = append(s.keyframes, kfs...)
	}
	return s, nil
}

// Project returns a copy of the project record.
func (s *Store) Project() Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.project
}

// Tracks returns the tracks in render order (video, music, voiceover).
func (s *Store) Tracks() []Track {
	s.mu.Lock()
	defer s.mu.Unlock()
	tracks := append([]Track(nil), s.tracks...)
	SortTracks(tracks)
	return tracks
}

// Track returns the track with the given ID.
func (s *Store) Track(id string) (Track, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t := s.findTrack(id); t != nil {
		return *t, true
	}
	return Track{}, false
}

// Keyframe returns the keyframe with the given ID.
func (s *Store) Keyframe(id string) (Keyframe, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if k := s.findKeyframe(id); k != nil {
		return *k, true
	}
	return Keyframe{}, false
}

// Keyframes returns the keyframes of one track, sorted chronologically.
func (s *Store) Keyframes(trackID string) []Keyframe {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Keyframe
	for _, k := range s.keyframes {
		if k.TrackID == trackID {
			out = append(out, k)
		}
	}
	SortKeyframes(out)
	return out
}

// AllKeyframes returns every keyframe in the project.
func (s *Store) AllKeyframes() []Keyframe {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Keyframe(nil), s.keyframes...)
}

// Snapshot returns a consistent copy of the whole model, grouped the way the
// composition resolver consumes it.
func (s *Store) Snapshot() (Project, []Track, map[string][]Keyframe) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tracks := append([]Track(nil), s.tracks...)
	SortTracks(tracks)
	grouped := make(map[string][]Keyframe)
	for _, k := range s.keyframes {
		grouped[k.TrackID] = append(grouped[k.TrackID], k)
	}
	for id := range grouped {
		SortKeyframes(grouped[id])
	}
	return s.project, tracks, grouped
}

// AddTrack creates a track and appends it to the project.
func (s *Store) AddTrack(spec TrackSpec) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addTrackLocked(spec)
}

func (s *Store) addTrackLocked(spec TrackSpec) (string, error) {
	if !spec.Type.Valid() {
		return "", fmt.Errorf("unknown track type: %s", spec.Type)
	}
	volume := DefaultTrackVolume
	if spec.Volume != nil {
		if *spec.Volume < 0 || *spec.Volume > 200 {
			return "", fmt.Errorf("track volume must be between 0 and 200, got %.0f", *spec.Volume)
		}
		volume = *spec.Volume
	}
	order := 0
	for _, t := range s.tracks {
		if t.Type == spec.Type {
			order++
		}
	}
	label := spec.Label
	if label == "" {
		label = fmt.Sprintf("%s %d", spec.Type, order+1)
	}
	track := Track{
		ID:        uuid.NewString(),
		ProjectID: s.project.ID,
		Type:      spec.Type,
		Label:     label,
		Order:     order,
		Volume:    volume,
	}
	if s.persist != nil {
		if err := s.persist.SaveTrack(&track); err != nil {
			return "", fmt.Errorf("failed to persist track: %v", err)
		}
	}
	s.tracks = append(s.tracks, track)
	return track.ID, nil
}

// EnsureTrack returns the first existing track compatible with the media
// type, creating one when the project has none.
func (s *Store) EnsureTrack(media MediaType) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ensureTrackLocked(media)
}

func (s *Store) ensureTrackLocked(media MediaType) (string, error) {
	trackType, err := TrackTypeFor(media)
	if err != nil {
		return "", err
	}
	sorted := append([]Track(nil), s.tracks...)
	SortTracks(sorted)
	for _, t := range sorted {
		if t.Type == trackType {
			return t.ID, nil
		}
	}
	return s.addTrackLocked(TrackSpec{Type: trackType})
}

// AddKeyframe validates and inserts a new keyframe. When the spec names no
// track, a compatible track is found or created first.
func (s *Store) AddKeyframe(spec KeyframeSpec) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	trackID := spec.TrackID
	if trackID == "" {
		id, err := s.ensureTrackLocked(spec.Data.Type)
		if err != nil {
			return "", err
		}
		trackID = id
	}
	track := s.findTrack(trackID)
	if track == nil {
		return "", fmt.Errorf("track not found: %s", trackID)
	}
	if track.Locked {
		return "", fmt.Errorf("track %s is locked", track.Label)
	}

	data := spec.Data
	if data.FitMode == "" {
		data.FitMode = FitContain
	}
	if data.CreatedAt.IsZero() {
		data.CreatedAt = time.Now()
	}
	keyframe := Keyframe{
		ID:        uuid.NewString(),
		TrackID:   trackID,
		Timestamp: spec.Timestamp,
		Duration:  spec.Duration,
		Data:      data,
	}
	if err := keyframe.Validate(track); err != nil {
		return "", err
	}
	if s.persist != nil {
		if err := s.persist.SaveKeyframe(&keyframe); err != nil {
			return "", fmt.Errorf("failed to persist keyframe: %v", err)
		}
	}
	s.keyframes = append(s.keyframes, keyframe)
	s.growDurationLocked(keyframe.End())
	return keyframe.ID, nil
}

// UpdateKeyframe merges a partial update into the keyframe and re-validates
// the invariants. A fully-nil update is a no-op.
func (s *Store) UpdateKeyframe(id string, update KeyframeUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.findKeyframe(id)
	if current == nil {
		return fmt.Errorf("keyframe not found: %s", id)
	}

	next := *current
	if update.Timestamp != nil {
		next.Timestamp = *update.Timestamp
	}
	if update.Duration != nil {
		next.Duration = *update.Duration
	}
	if update.Volume != nil {
		v := *update.Volume
		next.Data.Volume = &v
	}
	if update.FitMode != nil {
		next.Data.FitMode = *update.FitMode
	}
	if update.URL != nil {
		next.Data.URL = *update.URL
	}
	if update.Label != nil {
		next.Data.Label = *update.Label
	}
	if update.AudioURL != nil {
		u := *update.AudioURL
		next.Data.AudioURL = &u
	}
	if update.OriginalDuration != nil {
		d := *update.OriginalDuration
		next.Data.OriginalDuration = &d
	}
	if keyframeEqual(next, *current) {
		return nil
	}
	if err := next.Validate(s.findTrack(next.TrackID)); err != nil {
		return err
	}
	if s.persist != nil {
		if err := s.persist.SaveKeyframe(&next); err != nil {
			return fmt.Errorf("failed to persist keyframe: %v", err)
		}
	}
	*current = next
	s.growDurationLocked(next.End())
	return nil
}

func keyframeEqual(a, b Keyframe) bool {
	if a.ID != b.ID || a.TrackID != b.TrackID || a.Timestamp != b.Timestamp || a.Duration != b.Duration {
		return false
	}
	da, db := a.Data, b.Data
	if da.Type != db.Type || da.MediaID != db.MediaID || da.URL != db.URL ||
		da.Label != db.Label || da.FitMode != db.FitMode {
		return false
	}
	if !ptrEqual(da.Volume, db.Volume) || !int64PtrEqual(da.OriginalDuration, db.OriginalDuration) {
		return false
	}
	if (da.AudioURL == nil) != (db.AudioURL == nil) {
		return false
	}
	if da.AudioURL != nil && *da.AudioURL != *db.AudioURL {
		return false
	}
	return true
}

func ptrEqual(a, b *float64) bool {
	if (a == nil) != (b == nil) {
		return false
	}
	return a == nil || *a == *b
}

func int64PtrEqual(a, b *int64) bool {
	if (a == nil) != (b == nil) {
		return false
	}
	return a == nil || *a == *b
}

// RemoveKeyframe deletes a keyframe.
func (s *Store) RemoveKeyframe(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i := range s.keyframes {
		if s.keyframes[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("keyframe not found: %s", id)
	}
	if s.persist != nil {
		if err := s.persist.DeleteKeyframe(id); err != nil {
			return fmt.Errorf("failed to delete keyframe: %v", err)
		}
	}
	s.keyframes = append(s.keyframes[:idx], s.keyframes[idx+1:]...)
	return nil
}

// RemoveTrack deletes a track and cascades to its keyframes.
func (s *Store) RemoveTrack(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findTrack(id) == nil {
		return fmt.Errorf("track not found: %s", id)
	}
	if s.persist != nil {
		if err := s.persist.DeleteTrack(id); err != nil {
			return fmt.Errorf("failed to delete track: %v", err)
		}
	}
	kept := s.keyframes[:0]
	for _, k := range s.keyframes {
		if k.TrackID != id {
			kept = append(kept, k)
		}
	}
	s.keyframes = kept
	for i := range s.tracks {
		if s.tracks[i].ID == id {
			s.tracks = append(s.tracks[:i], s.tracks[i+1:]...)
			break
		}
	}
	return nil
}

// MoveKeyframeAcrossTracks relocates a keyframe onto another track,
// reinterpreting its media type to match the destination. The move is atomic:
// it either fully succeeds or leaves the model untouched.
func (s *Store) MoveKeyframeAcrossTracks(id, targetTrackID string, newTimestamp int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.findKeyframe(id)
	if current == nil {
		return fmt.Errorf("keyframe not found: %s", id)
	}
	target := s.findTrack(targetTrackID)
	if target == nil {
		return fmt.Errorf("track not found: %s", targetTrackID)
	}
	if target.Locked {
		return fmt.Errorf("track %s is locked", target.Label)
	}
	newType, err := MediaTypeFor(target.Type, current.Data.Type)
	if err != nil {
		return err
	}

	next := *current
	next.TrackID = targetTrackID
	next.Timestamp = newTimestamp
	next.Data.Type = newType
	if err := next.Validate(target); err != nil {
		return err
	}
	if s.persist != nil {
		if err := s.persist.SaveKeyframe(&next); err != nil {
			return fmt.Errorf("failed to persist keyframe: %v", err)
		}
	}
	*current = next
	s.growDurationLocked(next.End())
	return nil
}

// UpdateTrack merges a partial update into a track.
func (s *Store) UpdateTrack(id string, update TrackUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.findTrack(id)
	if current == nil {
		return fmt.Errorf("track not found: %s", id)
	}
	next := *current
	if update.Label != nil {
		next.Label = *update.Label
	}
	if update.Locked != nil {
		next.Locked = *update.Locked
	}
	if update.Volume != nil {
		if *update.Volume < 0 || *update.Volume > 200 {
			return fmt.Errorf("track volume must be between 0 and 200, got %.0f", *update.Volume)
		}
		next.Volume = *update.Volume
	}
	if update.Muted != nil {
		next.Muted = *update.Muted
	}
	if update.Order != nil {
		next.Order = *update.Order
	}
	if next == *current {
		return nil
	}
	if s.persist != nil {
		if err := s.persist.SaveTrack(&next); err != nil {
			return fmt.Errorf("failed to persist track: %v", err)
		}
	}
	*current = next
	return nil
}

// UpdateProject merges a partial update into the project record.
func (s *Store) UpdateProject(update ProjectUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.project
	if update.Title != nil {
		next.Title = *update.Title
	}
	if update.Description != nil {
		next.Description = *update.Description
	}
	if update.Duration != nil {
		next.Duration = *update.Duration
	}
	if update.Width != nil {
		w := *update.Width
		next.Width = &w
	}
	if update.Height != nil {
		h := *update.Height
		next.Height = &h
	}
	if update.AspectRatio != nil {
		next.AspectRatio = *update.AspectRatio
	}
	if err := next.Validate(); err != nil {
		return err
	}
	next.UpdatedAt = time.Now()
	if s.persist != nil {
		if err := s.persist.SaveProject(&next); err != nil {
			return fmt.Errorf("failed to persist project: %v", err)
		}
	}
	s.project = next
	return nil
}

// growDurationLocked extends the project duration when a clip ends past it.
// The duration never shrinks here; trimming it is an explicit project edit.
func (s *Store) growDurationLocked(end int64) {
	if end <= s.project.Duration {
		return
	}
	next := s.project
	next.Duration = end
	next.UpdatedAt = time.Now()
	if s.persist != nil {
		if err := s.persist.SaveProject(&next); err != nil {
			fmt.Printf("Warning: failed to persist project duration: %v\n", err)
			return
		}
	}
	s.project = next
}

func (s *Store) findTrack(id string) *Track {
	for i := range s.tracks {
		if s.tracks[i].ID == id {
			return &s.tracks[i]
		}
	}
	return nil
}

func (s *Store) findKeyframe(id string) *Keyframe {
	for i := range s.keyframes {
		if s.keyframes[i].ID == id {
			return &s.keyframes[i]
		}
	}
	return nil
}
