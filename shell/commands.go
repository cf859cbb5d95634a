package shell

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"montage/gesture"
	"montage/media"
	"montage/timeline"
)

// HandleCommand processes one editor command.
// Returns false when the command indicates exit.
func (sh *Shell) HandleCommand(input string) bool {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return true
	}

	cmd := parts[0]
	args := parts[1:]

	switch cmd {
	case "exit", "quit", "q":
		fmt.Println("Leaving editor...")
		return false

	case "help", "h":
		sh.printCommands()

	case "status", "s":
		sh.ShowStatus()

	case "tracks":
		sh.ShowTracks()

	case "clips":
		sh.ShowClips()

	case "ruler":
		sh.ShowRuler()

	case "add":
		sh.handleAddCommand(args)

	case "mv":
		sh.handleMoveCommand(args)

	case "trim":
		sh.handleTrimCommand(args)

	case "rm":
		sh.handleRemoveCommand(args)

	case "move":
		sh.handleCrossTrackCommand(args)

	case "drag":
		sh.handleDragCommand(args)

	case "resize":
		sh.handleResizeCommand(args)

	case "snap":
		sh.Snapping = !sh.Snapping
		if sh.Snapping {
			fmt.Printf("Edge snapping on\n")
		} else {
			fmt.Printf("Edge snapping off\n")
		}

	case "volume":
		sh.handleVolumeCommand(args)

	case "clipvolume":
		sh.handleClipVolumeCommand(args)

	case "fit":
		sh.handleFitCommand(args)

	case "mute":
		sh.handleToggleCommand(args, "mute")

	case "lock":
		sh.handleToggleCommand(args, "lock")

	case "title":
		if len(args) == 0 {
			fmt.Printf("Usage: title <text>\n")
			break
		}
		title := strings.Join(args, " ")
		if err := sh.Store.UpdateProject(timeline.ProjectUpdate{Title: &title}); err != nil {
			fmt.Printf("Error: %v\n", err)
		}

	case "duration":
		if len(args) == 0 {
			fmt.Printf("Usage: duration <ms>\n")
			break
		}
		ms, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			fmt.Printf("Invalid duration: %s\n", args[0])
			break
		}
		if err := sh.Store.UpdateProject(timeline.ProjectUpdate{Duration: &ms}); err != nil {
			fmt.Printf("Error: %v\n", err)
			break
		}
		sh.Controller.SetDuration(ms)

	case "zoom":
		if len(args) == 0 {
			fmt.Printf("Zoom is %.0f px/s\n", sh.View.PixelsPerSecond)
			break
		}
		if val, err := strconv.ParseFloat(args[0], 64); err == nil && val > 0 {
			sh.View.PixelsPerSecond = val
			fmt.Printf("Zoom set to %.0f px/s\n", val)
		} else {
			fmt.Printf("Invalid zoom value: %s\n", args[0])
		}

	case "export":
		sh.handleExportCommand()

	default:
		if !sh.HandlePlaybackCommand(cmd, args) {
			fmt.Printf("Unknown command: %s (try 'help')\n", cmd)
		}
	}

	return true
}

// handleAddCommand places new media on the timeline. The track is chosen by
// media type and created on demand.
func (sh *Shell) handleAddCommand(args []string) {
	if len(args) == 0 {
		fmt.Printf("Usage: add <url> [at_ms]\n")
		return
	}
	url := args[0]
	var at int64
	if len(args) > 1 {
		val, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			fmt.Printf("Invalid timestamp: %s\n", args[1])
			return
		}
		at = val
	}

	asset, err := media.NormalizePayload(map[string]interface{}{"url": url})
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	duration, warn := sh.Resolver.ResolveDuration(context.Background(), asset)
	if warn != nil {
		fmt.Printf("Warning: %v\n", warn)
	}

	originalDuration := duration
	id, err := sh.Store.AddKeyframe(timeline.KeyframeSpec{
		Timestamp: at,
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
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Printf("Placed %s clip at %s for %s\n", asset.Type, timeline.FormatTime(at), timeline.FormatTime(duration))

	if asset.Type == timeline.MediaVideo {
		go media.EnrichVideoKeyframe(context.Background(), sh.Processing, sh.Store, id)
	}
}

func (sh *Shell) handleMoveCommand(args []string) {
	if len(args) < 2 {
		fmt.Printf("Usage: mv <clip> <ms>\n")
		return
	}
	keyframe, ok := sh.keyframeByArg(args[0])
	if !ok {
		return
	}
	ms, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		fmt.Printf("Invalid timestamp: %s\n", args[1])
		return
	}
	if err := sh.Store.UpdateKeyframe(keyframe.ID, timeline.KeyframeUpdate{Timestamp: &ms}); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Printf("Clip moved to %s\n", timeline.FormatTime(ms))
}

func (sh *Shell) handleTrimCommand(args []string) {
	if len(args) < 3 {
		fmt.Printf("Usage: trim <clip> <ms> <duration_ms>\n")
		return
	}
	keyframe, ok := sh.keyframeByArg(args[0])
	if !ok {
		return
	}
	ms, err1 := strconv.ParseInt(args[1], 10, 64)
	dur, err2 := strconv.ParseInt(args[2], 10, 64)
	if err1 != nil || err2 != nil {
		fmt.Printf("Invalid values: %s %s\n", args[1], args[2])
		return
	}
	if err := sh.Store.UpdateKeyframe(keyframe.ID, timeline.KeyframeUpdate{Timestamp: &ms, Duration: &dur}); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Printf("Clip now spans %s - %s\n", timeline.FormatTime(ms), timeline.FormatTime(ms+dur))
}

func (sh *Shell) handleRemoveCommand(args []string) {
	if len(args) == 0 {
		fmt.Printf("Usage: rm <clip>\n")
		return
	}
	keyframe, ok := sh.keyframeByArg(args[0])
	if !ok {
		return
	}
	if err := sh.Store.RemoveKeyframe(keyframe.ID); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Printf("Clip removed\n")
}

func (sh *Shell) handleCrossTrackCommand(args []string) {
	if len(args) < 2 {
		fmt.Printf("Usage: move <clip> <track>\n")
		return
	}
	keyframe, ok := sh.keyframeByArg(args[0])
	if !ok {
		return
	}
	track, ok := sh.trackByArg(args[1])
	if !ok {
		return
	}
	if err := sh.Store.MoveKeyframeAcrossTracks(keyframe.ID, track.ID, keyframe.Timestamp); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Printf("Clip moved to track %s\n", track.Label)
}

// handleDragCommand simulates a whole-clip drag through the gesture state
// machine, so snapping behaves exactly as it does under a pointer.
func (sh *Shell) handleDragCommand(args []string) {
	if len(args) < 2 {
		fmt.Printf("Usage: drag <clip> <dx_px> [track]\n")
		return
	}
	keyframe, ok := sh.keyframeByArg(args[0])
	if !ok {
		return
	}
	dx, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		fmt.Printf("Invalid pixel delta: %s\n", args[1])
		return
	}
	hoverTrack := keyframe.TrackID
	if len(args) > 2 {
		track, ok := sh.trackByArg(args[2])
		if !ok {
			return
		}
		hoverTrack = track.ID
	}

	g, err := gesture.Begin(sh.Store, keyframe.ID, gesture.EdgeNone, 0, 0, sh.View.PixelsPerSecond)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	g.SetSnapping(sh.Snapping)
	g.Move(dx, 0, hoverTrack)
	commit, err := g.Release()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	switch commit.Action {
	case gesture.ActionNone:
		fmt.Printf("Below drag threshold, nothing changed\n")
	case gesture.ActionCrossMove:
		fmt.Printf("Clip moved across tracks to %s\n", timeline.FormatTime(commit.Timestamp))
	default:
		fmt.Printf("Clip dragged to %s\n", timeline.FormatTime(commit.Timestamp))
	}
}

func (sh *Shell) handleResizeCommand(args []string) {
	if len(args) < 3 {
		fmt.Printf("Usage: resize <clip> <left|right> <dx_px>\n")
		return
	}
	keyframe, ok := sh.keyframeByArg(args[0])
	if !ok {
		return
	}
	var edge gesture.Edge
	switch args[1] {
	case "left", "l":
		edge = gesture.EdgeLeft
	case "right", "r":
		edge = gesture.EdgeRight
	default:
		fmt.Printf("Invalid edge: %s (use left or right)\n", args[1])
		return
	}
	dx, err := strconv.ParseFloat(args[2], 64)
	if err != nil {
		fmt.Printf("Invalid pixel delta: %s\n", args[2])
		return
	}

	g, err := gesture.Begin(sh.Store, keyframe.ID, edge, 0, 0, sh.View.PixelsPerSecond)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	g.SetSnapping(sh.Snapping)
	g.Move(dx, 0, keyframe.TrackID)
	commit, err := g.Release()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if commit.Action == gesture.ActionNone {
		fmt.Printf("Below drag threshold, nothing changed\n")
		return
	}
	fmt.Printf("Clip now spans %s - %s\n", timeline.FormatTime(commit.Timestamp), timeline.FormatTime(commit.Timestamp+commit.Duration))
}

func (sh *Shell) handleVolumeCommand(args []string) {
	if len(args) < 2 {
		fmt.Printf("Usage: volume <track> <0-200>\n")
		return
	}
	track, ok := sh.trackByArg(args[0])
	if !ok {
		return
	}
	val, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		fmt.Printf("Invalid volume value: %s\n", args[1])
		return
	}
	if err := sh.Store.UpdateTrack(track.ID, timeline.TrackUpdate{Volume: &val}); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Printf("Track %s volume set to %.0f%%\n", track.Label, val)
}

func (sh *Shell) handleClipVolumeCommand(args []string) {
	if len(args) < 2 {
		fmt.Printf("Usage: clipvolume <clip> <0-200>\n")
		return
	}
	keyframe, ok := sh.keyframeByArg(args[0])
	if !ok {
		return
	}
	val, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		fmt.Printf("Invalid volume value: %s\n", args[1])
		return
	}
	if err := sh.Store.UpdateKeyframe(keyframe.ID, timeline.KeyframeUpdate{Volume: &val}); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Printf("Clip volume override set to %.0f%%\n", val)
}

func (sh *Shell) handleFitCommand(args []string) {
	if len(args) < 2 {
		fmt.Printf("Usage: fit <clip> <contain|cover|fill>\n")
		return
	}
	keyframe, ok := sh.keyframeByArg(args[0])
	if !ok {
		return
	}
	mode := timeline.FitMode(args[1])
	switch mode {
	case timeline.FitContain, timeline.FitCover, timeline.FitFill:
	default:
		fmt.Printf("Invalid fit mode: %s\n", args[1])
		return
	}
	if err := sh.Store.UpdateKeyframe(keyframe.ID, timeline.KeyframeUpdate{FitMode: &mode}); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Printf("Clip fit mode set to %s\n", mode)
}

func (sh *Shell) handleToggleCommand(args []string, what string) {
	if len(args) == 0 {
		fmt.Printf("Usage: %s <track>\n", what)
		return
	}
	track, ok := sh.trackByArg(args[0])
	if !ok {
		return
	}
	var update timeline.TrackUpdate
	var state bool
	if what == "mute" {
		state = !track.Muted
		update.Muted = &state
	} else {
		state = !track.Locked
		update.Locked = &state
	}
	if err := sh.Store.UpdateTrack(track.ID, update); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	onOff := "off"
	if state {
		onOff = "on"
	}
	fmt.Printf("Track %s %s %s\n", track.Label, what, onOff)
}

func parseInt(s string) (int, error) {
	return strconv.Atoi(s)
}
