package timeline

import "sort"

// trackTypeRank gives the fixed vertical order of track lanes: video lanes
// first, then music, then voiceover.
func trackTypeRank(t TrackType) int {
	switch t {
	case TrackVideo:
		return 0
	case TrackMusic:
		return 1
	case TrackVoiceover:
		return 2
	}
	return 3
}

// SortTracks orders tracks by type (video, music, voiceover) and then by
// their explicit order value.
func SortTracks(tracks []Track) {
	sort.SliceStable(tracks, func(i, j int) bool {
		ri, rj := trackTypeRank(tracks[i].Type), trackTypeRank(tracks[j].Type)
		if ri != rj {
			return ri < rj
		}
		return tracks[i].Order < tracks[j].Order
	})
}

// SortKeyframes orders keyframes chronologically. Clips that start at the
// same millisecond keep their creation order, so the latest-added clip sorts
// last and wins overlap resolution.
func SortKeyframes(keyframes []Keyframe) {
	sort.SliceStable(keyframes, func(i, j int) bool {
		if keyframes[i].Timestamp != keyframes[j].Timestamp {
			return keyframes[i].Timestamp < keyframes[j].Timestamp
		}
		return keyframes[i].Data.CreatedAt.Before(keyframes[j].Data.CreatedAt)
	})
}
