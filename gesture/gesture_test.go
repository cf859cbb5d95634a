package gesture

import (
	"testing"

	"montage/timeline"
)

// pxPerSec of 100 makes 1 px equal 10 ms, keeping the arithmetic readable.
const testZoom = 100.0

func newStore(t *testing.T) *timeline.Store {
	t.Helper()
	project := timeline.NewProject("gestures", timeline.AspectWide)
	project.Duration = 60000
	store, err := timeline.NewStore(project, nil, nil, nil)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	return store
}

func addMusic(t *testing.T, store *timeline.Store, ts, dur int64) string {
	t.Helper()
	id, err := store.AddKeyframe(timeline.KeyframeSpec{
		Timestamp: ts,
		Duration:  dur,
		Data:      timeline.KeyframeData{Type: timeline.MediaMusic, URL: "https://example.com/a.mp3"},
	})
	if err != nil {
		t.Fatalf("AddKeyframe failed: %v", err)
	}
	return id
}

func addVideo(t *testing.T, store *timeline.Store, ts, dur int64) string {
	t.Helper()
	id, err := store.AddKeyframe(timeline.KeyframeSpec{
		Timestamp: ts,
		Duration:  dur,
		Data:      timeline.KeyframeData{Type: timeline.MediaVideo, URL: "https://example.com/a.mp4"},
	})
	if err != nil {
		t.Fatalf("AddKeyframe failed: %v", err)
	}
	return id
}

func TestClickWithoutDragDoesNotMutate(t *testing.T) {
	store := newStore(t)
	id := addVideo(t, store, 1000, 5000)

	g, err := Begin(store, id, EdgeNone, 100, 50, testZoom)
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	g.Move(102, 51, "") // below the threshold
	commit, err := g.Release()
	if err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if commit.Action != ActionNone {
		t.Errorf("sub-threshold release must be a selection click, got %d", commit.Action)
	}
	keyframe, _ := store.Keyframe(id)
	if keyframe.Timestamp != 1000 {
		t.Errorf("click mutated the model: timestamp %d", keyframe.Timestamp)
	}
}

func TestDragSnapsToNearbyEdge(t *testing.T) {
	store := newStore(t)
	dragged := addVideo(t, store, 0, 5000)
	addVideo(t, store, 10000, 2000) // snap candidate at 10000

	// 992 px at 100 px/s is 9920 ms: within 100 ms of the candidate.
	g, err := Begin(store, dragged, EdgeNone, 0, 0, testZoom)
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	g.Move(992, 0, "")
	commit, err := g.Release()
	if err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if commit.Action != ActionMove {
		t.Fatalf("expected a move commit, got %d", commit.Action)
	}
	if commit.Timestamp != 10000 {
		t.Errorf("edge within threshold must snap exactly, got %d", commit.Timestamp)
	}
	keyframe, _ := store.Keyframe(dragged)
	if keyframe.Timestamp != 10000 {
		t.Errorf("committed timestamp mismatch: %d", keyframe.Timestamp)
	}
}

func TestDragBeyondThresholdDoesNotSnap(t *testing.T) {
	store := newStore(t)
	dragged := addVideo(t, store, 0, 5000)
	addVideo(t, store, 10000, 30000) // candidates at 10000 and 40000

	// 980 px is 9800 ms: 200 ms from the candidate, outside the threshold.
	g, _ := Begin(store, dragged, EdgeNone, 0, 0, testZoom)
	g.Move(980, 0, "")
	commit, err := g.Release()
	if err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if commit.Timestamp != 9800 {
		t.Errorf("expected the raw position 9800, got %d", commit.Timestamp)
	}
}

func TestDragClampsAtZero(t *testing.T) {
	store := newStore(t)
	id := addVideo(t, store, 1000, 5000)

	g, _ := Begin(store, id, EdgeNone, 0, 0, testZoom)
	g.Move(-500, 0, "") // would land at -4000 ms
	commit, err := g.Release()
	if err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if commit.Timestamp != 0 {
		t.Errorf("drag past the origin must clamp to 0, got %d", commit.Timestamp)
	}
}

func TestAudioDragAcrossTracks(t *testing.T) {
	store := newStore(t)
	id := addMusic(t, store, 3000, 4000)
	voiceTrack, err := store.AddTrack(timeline.TrackSpec{Type: timeline.TrackVoiceover})
	if err != nil {
		t.Fatalf("AddTrack failed: %v", err)
	}

	g, _ := Begin(store, id, EdgeNone, 0, 0, testZoom)
	g.Move(50, 40, voiceTrack)
	commit, err := g.Release()
	if err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if commit.Action != ActionCrossMove {
		t.Fatalf("expected a cross-track commit, got %d", commit.Action)
	}
	keyframe, _ := store.Keyframe(id)
	if keyframe.TrackID != voiceTrack {
		t.Errorf("clip not on the voiceover track")
	}
	if keyframe.Data.Type != timeline.MediaVoiceover {
		t.Errorf("media type must follow the track, got %s", keyframe.Data.Type)
	}
}

func TestVideoCannotCrossTracks(t *testing.T) {
	store := newStore(t)
	id := addVideo(t, store, 0, 5000)
	musicTrack, _ := store.AddTrack(timeline.TrackSpec{Type: timeline.TrackMusic})

	g, _ := Begin(store, id, EdgeNone, 0, 0, testZoom)
	g.Move(100, 40, musicTrack)
	commit, err := g.Release()
	if err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if commit.Action != ActionMove {
		t.Errorf("video drags must stay on their track, got action %d", commit.Action)
	}
	keyframe, _ := store.Keyframe(id)
	if keyframe.TrackID == musicTrack {
		t.Error("video clip landed on an audio track")
	}
}

func TestResizeRightHonorsMinimum(t *testing.T) {
	store := newStore(t)
	id := addVideo(t, store, 0, 3000)

	// Trim 280 px left: raw end would be 200 ms, below the 1000 ms floor.
	g, _ := Begin(store, id, EdgeRight, 0, 0, testZoom)
	g.Move(-280, 0, "")
	commit, err := g.Release()
	if err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if commit.Action != ActionResize {
		t.Fatalf("expected a resize commit, got %d", commit.Action)
	}
	if commit.Duration != MinDurationMs {
		t.Errorf("resize must stop at the duration floor, got %d", commit.Duration)
	}
}

func TestResizeLeftMovesStartAndKeepsEnd(t *testing.T) {
	store := newStore(t)
	id := addVideo(t, store, 2000, 6000)

	g, _ := Begin(store, id, EdgeLeft, 0, 0, testZoom)
	g.Move(150, 0, "") // start moves 1500 ms right
	commit, err := g.Release()
	if err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if commit.Timestamp != 3500 {
		t.Errorf("expected start 3500, got %d", commit.Timestamp)
	}
	if commit.Timestamp+commit.Duration != 8000 {
		t.Errorf("left trim must keep the end fixed, got end %d", commit.Timestamp+commit.Duration)
	}
}

func TestResizeSnapsMovingEdge(t *testing.T) {
	store := newStore(t)
	id := addVideo(t, store, 0, 3000)
	addVideo(t, store, 5000, 1000) // snap candidate at 5000

	// Right edge dragged to 4930 ms, within 100 ms of the candidate.
	g, _ := Begin(store, id, EdgeRight, 0, 0, testZoom)
	g.Move(193, 0, "")
	commit, err := g.Release()
	if err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if commit.Timestamp+commit.Duration != 5000 {
		t.Errorf("moving edge must snap to 5000, got %d", commit.Timestamp+commit.Duration)
	}
}

func TestCancelLeavesModelUntouched(t *testing.T) {
	store := newStore(t)
	id := addVideo(t, store, 1000, 5000)

	g, _ := Begin(store, id, EdgeNone, 0, 0, testZoom)
	g.Move(300, 0, "")
	g.Cancel()
	if _, err := g.Release(); err == nil {
		t.Error("release after cancel must fail")
	}
	keyframe, _ := store.Keyframe(id)
	if keyframe.Timestamp != 1000 {
		t.Errorf("cancelled gesture mutated the model: %d", keyframe.Timestamp)
	}
}

func TestLockedTrackRejectsGesture(t *testing.T) {
	store := newStore(t)
	id := addVideo(t, store, 0, 5000)
	keyframe, _ := store.Keyframe(id)
	locked := true
	if err := store.UpdateTrack(keyframe.TrackID, timeline.TrackUpdate{Locked: &locked}); err != nil {
		t.Fatalf("UpdateTrack failed: %v", err)
	}

	if _, err := Begin(store, id, EdgeNone, 0, 0, testZoom); err == nil {
		t.Error("gestures on locked tracks must be rejected")
	}
}

func TestSnappingCanBeDisabled(t *testing.T) {
	store := newStore(t)
	dragged := addVideo(t, store, 0, 5000)
	addVideo(t, store, 10000, 2000)

	g, _ := Begin(store, dragged, EdgeNone, 0, 0, testZoom)
	g.SetSnapping(false)
	g.Move(992, 0, "")
	commit, err := g.Release()
	if err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if commit.Timestamp != 9920 {
		t.Errorf("with snapping off the raw position must commit, got %d", commit.Timestamp)
	}
}
