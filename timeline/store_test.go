package timeline

import (
	"fmt"
	"strings"
	"testing"
)

// memPersistence records write-through calls; failNext makes the next
// save fail, for atomicity tests.
type memPersistence struct {
	saves    []string
	deletes  []string
	failNext bool
}

func (m *memPersistence) fail() error {
	if m.failNext {
		m.failNext = false
		return fmt.Errorf("disk full")
	}
	return nil
}

func (m *memPersistence) SaveProject(p *Project) error {
	if err := m.fail(); err != nil {
		return err
	}
	m.saves = append(m.saves, "project:"+p.ID)
	return nil
}

func (m *memPersistence) SaveTrack(t *Track) error {
	if err := m.fail(); err != nil {
		return err
	}
	m.saves = append(m.saves, "track:"+t.ID)
	return nil
}

func (m *memPersistence) SaveKeyframe(k *Keyframe) error {
	if err := m.fail(); err != nil {
		return err
	}
	m.saves = append(m.saves, "keyframe:"+k.ID)
	return nil
}

func (m *memPersistence) DeleteTrack(id string) error {
	m.deletes = append(m.deletes, "track:"+id)
	return nil
}

func (m *memPersistence) DeleteKeyframe(id string) error {
	m.deletes = append(m.deletes, "keyframe:"+id)
	return nil
}

func newTestStore(t *testing.T) (*Store, *memPersistence) {
	t.Helper()
	persist := &memPersistence{}
	project := NewProject("test", AspectWide)
	project.Duration = 30000
	store, err := NewStore(project, nil, nil, persist)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	return store, persist
}

func musicSpec(ts, dur int64) KeyframeSpec {
	return KeyframeSpec{
		Timestamp: ts,
		Duration:  dur,
		Data:      KeyframeData{Type: MediaMusic, URL: "https://example.com/song.mp3"},
	}
}

func TestAddKeyframeCreatesTrackOnDemand(t *testing.T) {
	store, _ := newTestStore(t)

	first, err := store.AddKeyframe(musicSpec(0, 4000))
	if err != nil {
		t.Fatalf("AddKeyframe failed: %v", err)
	}
	tracks := store.Tracks()
	if len(tracks) != 1 || tracks[0].Type != TrackMusic {
		t.Fatalf("expected one music track, got %+v", tracks)
	}

	// A second music clip reuses the same track.
	second, err := store.AddKeyframe(musicSpec(5000, 4000))
	if err != nil {
		t.Fatalf("second AddKeyframe failed: %v", err)
	}
	if len(store.Tracks()) != 1 {
		t.Errorf("second music clip must reuse the existing track")
	}
	a, _ := store.Keyframe(first)
	b, _ := store.Keyframe(second)
	if a.TrackID != b.TrackID {
		t.Errorf("clips landed on different tracks: %s vs %s", a.TrackID, b.TrackID)
	}
}

func TestAddKeyframeValidation(t *testing.T) {
	store, persist := newTestStore(t)

	cases := []struct {
		name string
		spec KeyframeSpec
	}{
		{"negative timestamp", musicSpec(-1, 1000)},
		{"zero duration", musicSpec(0, 0)},
		{"missing url", KeyframeSpec{Timestamp: 0, Duration: 1000, Data: KeyframeData{Type: MediaMusic}}},
		{"bad media type", KeyframeSpec{Timestamp: 0, Duration: 1000, Data: KeyframeData{Type: "hologram", URL: "https://example.com/x"}}},
	}
	for _, c := range cases {
		if _, err := store.AddKeyframe(c.spec); err == nil {
			t.Errorf("%s: expected a validation error", c.name)
		}
	}
	for _, s := range persist.saves {
		if strings.HasPrefix(s, "keyframe:") {
			t.Errorf("rejected keyframes must never be persisted, saw %s", s)
		}
	}
}

func TestAddKeyframeTypeMismatchRejected(t *testing.T) {
	store, _ := newTestStore(t)
	trackID, err := store.AddTrack(TrackSpec{Type: TrackVideo})
	if err != nil {
		t.Fatalf("AddTrack failed: %v", err)
	}

	spec := musicSpec(0, 1000)
	spec.TrackID = trackID
	if _, err := store.AddKeyframe(spec); err == nil {
		t.Error("music on a video track must be rejected")
	}
}

func TestUpdateKeyframePartial(t *testing.T) {
	store, _ := newTestStore(t)
	id, _ := store.AddKeyframe(musicSpec(0, 4000))

	ts := int64(2500)
	if err := store.UpdateKeyframe(id, KeyframeUpdate{Timestamp: &ts}); err != nil {
		t.Fatalf("UpdateKeyframe failed: %v", err)
	}
	keyframe, _ := store.Keyframe(id)
	if keyframe.Timestamp != 2500 || keyframe.Duration != 4000 {
		t.Errorf("partial update clobbered fields: %+v", keyframe)
	}

	bad := int64(-100)
	if err := store.UpdateKeyframe(id, KeyframeUpdate{Timestamp: &bad}); err == nil {
		t.Error("negative timestamp must be rejected on update")
	}
	keyframe, _ = store.Keyframe(id)
	if keyframe.Timestamp != 2500 {
		t.Errorf("rejected update must not be applied, timestamp is %d", keyframe.Timestamp)
	}
}

func TestUpdateKeyframeNoopSkipsPersistence(t *testing.T) {
	store, persist := newTestStore(t)
	id, _ := store.AddKeyframe(musicSpec(0, 4000))
	before := len(persist.saves)

	if err := store.UpdateKeyframe(id, KeyframeUpdate{}); err != nil {
		t.Fatalf("empty update failed: %v", err)
	}
	if len(persist.saves) != before {
		t.Error("no-op update must not write through")
	}
}

func TestFailedPersistLeavesModelUntouched(t *testing.T) {
	store, persist := newTestStore(t)

	// Track already exists so the keyframe save is the failing write.
	if _, err := store.AddTrack(TrackSpec{Type: TrackMusic}); err != nil {
		t.Fatalf("AddTrack failed: %v", err)
	}
	persist.failNext = true
	if _, err := store.AddKeyframe(musicSpec(0, 4000)); err == nil {
		t.Fatal("expected persistence error")
	}
	if len(store.AllKeyframes()) != 0 {
		t.Error("failed write must not leave a keyframe in the model")
	}
}

func TestRemoveTrackCascades(t *testing.T) {
	store, _ := newTestStore(t)
	id, _ := store.AddKeyframe(musicSpec(0, 4000))
	keyframe, _ := store.Keyframe(id)

	if err := store.RemoveTrack(keyframe.TrackID); err != nil {
		t.Fatalf("RemoveTrack failed: %v", err)
	}
	if len(store.AllKeyframes()) != 0 {
		t.Error("removing a track must remove its keyframes")
	}
	if _, ok := store.Keyframe(id); ok {
		t.Error("keyframe still resolvable after track removal")
	}
}

func TestMoveAcrossTracksReinterpretsType(t *testing.T) {
	store, _ := newTestStore(t)
	id, _ := store.AddKeyframe(musicSpec(3000, 4000))
	voiceTrack, err := store.AddTrack(TrackSpec{Type: TrackVoiceover})
	if err != nil {
		t.Fatalf("AddTrack failed: %v", err)
	}

	if err := store.MoveKeyframeAcrossTracks(id, voiceTrack, 3000); err != nil {
		t.Fatalf("MoveKeyframeAcrossTracks failed: %v", err)
	}
	keyframe, _ := store.Keyframe(id)
	if keyframe.TrackID != voiceTrack {
		t.Errorf("keyframe still on old track: %s", keyframe.TrackID)
	}
	if keyframe.Data.Type != MediaVoiceover {
		t.Errorf("media type must become voiceover, got %s", keyframe.Data.Type)
	}
	if keyframe.Timestamp != 3000 || keyframe.Duration != 4000 {
		t.Errorf("timestamp/duration must survive the move: %+v", keyframe)
	}
}

func TestMoveVisualClipOntoAudioTrackRejected(t *testing.T) {
	store, _ := newTestStore(t)
	id, err := store.AddKeyframe(KeyframeSpec{
		Timestamp: 0,
		Duration:  2000,
		Data:      KeyframeData{Type: MediaVideo, URL: "https://example.com/clip.mp4"},
	})
	if err != nil {
		t.Fatalf("AddKeyframe failed: %v", err)
	}
	musicTrack, _ := store.AddTrack(TrackSpec{Type: TrackMusic})

	if err := store.MoveKeyframeAcrossTracks(id, musicTrack, 0); err == nil {
		t.Error("video clips must not move onto audio tracks")
	}
	keyframe, _ := store.Keyframe(id)
	if keyframe.TrackID == musicTrack {
		t.Error("rejected move must leave the clip on its track")
	}
}

func TestLockedTrackRejectsEdits(t *testing.T) {
	store, _ := newTestStore(t)
	trackID, _ := store.AddTrack(TrackSpec{Type: TrackMusic})
	locked := true
	if err := store.UpdateTrack(trackID, TrackUpdate{Locked: &locked}); err != nil {
		t.Fatalf("UpdateTrack failed: %v", err)
	}

	spec := musicSpec(0, 1000)
	spec.TrackID = trackID
	if _, err := store.AddKeyframe(spec); err == nil {
		t.Error("locked track must reject new keyframes")
	}
}

func TestProjectDurationGrowsWithClips(t *testing.T) {
	store, _ := newTestStore(t)

	if _, err := store.AddKeyframe(musicSpec(28000, 5000)); err != nil {
		t.Fatalf("AddKeyframe failed: %v", err)
	}
	if got := store.Project().Duration; got != 33000 {
		t.Errorf("project duration should grow to 33000, got %d", got)
	}

	// Clips ending before the current duration never shrink it.
	if _, err := store.AddKeyframe(musicSpec(0, 1000)); err != nil {
		t.Fatalf("AddKeyframe failed: %v", err)
	}
	if got := store.Project().Duration; got != 33000 {
		t.Errorf("project duration must not shrink, got %d", got)
	}
}

func TestTrackVolumeValidation(t *testing.T) {
	store, _ := newTestStore(t)
	trackID, _ := store.AddTrack(TrackSpec{Type: TrackMusic})

	over := 250.0
	if err := store.UpdateTrack(trackID, TrackUpdate{Volume: &over}); err == nil {
		t.Error("volume above 200 must be rejected")
	}
	ok := 150.0
	if err := store.UpdateTrack(trackID, TrackUpdate{Volume: &ok}); err != nil {
		t.Errorf("volume 150 should be accepted: %v", err)
	}
}
