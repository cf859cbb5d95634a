package shell

import (
	"fmt"
	"strconv"

	"montage/playback"
	"montage/timeline"
)

// HandlePlaybackCommand processes transport commands.
// Returns false if the command is not a playback command.
func (sh *Shell) HandlePlaybackCommand(cmd string, args []string) bool {
	switch cmd {
	case "play", "p":
		var at int64 = -1
		if len(args) > 0 {
			val, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				fmt.Printf("Invalid start position: %s\n", args[0])
				return true
			}
			at = val
		}
		sh.handlePlay(at)

	case "pause":
		sh.Controller.Pause()
		fmt.Printf("Paused at %s\n", timeline.FormatTime(sh.Controller.Position()))

	case "seek":
		if len(args) == 0 {
			fmt.Printf("Usage: seek <ms>\n")
			return true
		}
		ms, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			fmt.Printf("Invalid position: %s\n", args[0])
			return true
		}
		sh.Controller.Seek(ms)
		fmt.Printf("Playhead at %s\n", timeline.FormatTime(sh.Controller.Position()))

	case "step":
		if len(args) > 0 && args[0] == "-" {
			sh.Controller.StepBack()
		} else {
			sh.Controller.StepForward()
		}
		fmt.Printf("Playhead at %s\n", timeline.FormatTime(sh.Controller.Position()))

	case "start":
		sh.Controller.JumpToStart()
		fmt.Printf("Playhead at %s\n", timeline.FormatTime(sh.Controller.Position()))

	case "end":
		sh.Controller.JumpToEnd()
		fmt.Printf("Playhead at %s\n", timeline.FormatTime(sh.Controller.Position()))

	case "pos":
		fmt.Printf("Playhead at %s\n", timeline.FormatTime(sh.Controller.Position()))

	default:
		return false
	}
	return true
}

// handlePlay rebuilds the preview player from the current composition and
// starts playback, optionally from a given position.
func (sh *Shell) handlePlay(fromMs int64) {
	comp := sh.composition()
	if comp.TotalFrames == 0 {
		fmt.Printf("Nothing to play: the timeline is empty.\n")
		return
	}

	position := sh.Controller.Position()
	player := playback.NewClockPlayer(comp.TotalFrames)
	sh.Controller.SetPlayer(player)
	if fromMs >= 0 {
		sh.Controller.Seek(fromMs)
	} else {
		sh.Controller.Seek(position)
	}
	sh.Controller.Play()
	fmt.Printf("Playing from %s (%d frames total)\n", timeline.FormatTime(sh.Controller.Position()), comp.TotalFrames)
}
