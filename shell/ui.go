package shell

import (
	"encoding/json"
	"fmt"
	"strings"

	"montage/compose"
	"montage/timeline"
)

// ShowStatus prints the project summary.
func (sh *Shell) ShowStatus() {
	project := sh.Store.Project()
	width, height := compose.CanvasSize(&project)
	tracks := sh.Store.Tracks()

	clipCount := len(sh.Store.AllKeyframes())
	fmt.Printf("\n%s  %s  %dx%d  %s  %d track(s), %d clip(s)\n",
		project.Title, project.AspectRatio, width, height,
		timeline.FormatTime(project.Duration), len(tracks), clipCount)
	fmt.Printf("Playhead: %s  Zoom: %.0f px/s\n\n", timeline.FormatTime(sh.Controller.Position()), sh.View.PixelsPerSecond)
}

// ShowTracks lists the tracks in render order with their display numbers.
func (sh *Shell) ShowTracks() {
	tracks := sh.Store.Tracks()
	sh.trackIndex = sh.trackIndex[:0]
	if len(tracks) == 0 {
		fmt.Printf("No tracks yet. 'add' creates them on demand.\n")
		return
	}
	for i, t := range tracks {
		sh.trackIndex = append(sh.trackIndex, t.ID)
		flags := ""
		if t.Muted {
			flags += " [muted]"
		}
		if t.Locked {
			flags += " [locked]"
		}
		clips := len(sh.Store.Keyframes(t.ID))
		fmt.Printf("%d. %-12s %-10s vol %.0f%%  %d clip(s)%s\n", i+1, t.Label, t.Type, t.Volume, clips, flags)
	}
}

// ShowClips lists every clip with its display number, track by track.
func (sh *Shell) ShowClips() {
	tracks := sh.Store.Tracks()
	sh.clipIndex = sh.clipIndex[:0]
	n := 0
	for _, t := range tracks {
		for _, k := range sh.Store.Keyframes(t.ID) {
			n++
			sh.clipIndex = append(sh.clipIndex, k.ID)
			label := k.Data.Label
			if label == "" {
				label = k.Data.URL
			}
			volume := ""
			if k.Data.Volume != nil {
				volume = fmt.Sprintf("  vol %.0f%%", *k.Data.Volume)
			}
			fmt.Printf("%d. [%s] %s - %s  %s  %s%s\n", n, t.Label,
				timeline.FormatTime(k.Timestamp), timeline.FormatTime(k.End()),
				k.Data.Type, label, volume)
		}
	}
	if n == 0 {
		fmt.Printf("No clips yet. Use 'add <url>' to place media.\n")
	}
}

// ShowRuler prints an ASCII ruler at the current zoom and viewport width.
func (sh *Shell) ShowRuler() {
	project := sh.Store.Project()
	ticks := timeline.PlanTicks(project.Duration, sh.View)
	if len(ticks) == 0 {
		fmt.Printf("Nothing to show: empty timeline or zero zoom.\n")
		return
	}

	width := int(sh.View.WidthPx / 8) // one character per 8px keeps it terminal-sized
	line := []rune(strings.Repeat(" ", width+1))
	labels := []rune(strings.Repeat(" ", width+16))
	for _, tick := range ticks {
		col := int(tick.X / 8)
		if col < 0 || col >= width {
			continue
		}
		if tick.Major {
			line[col] = '|'
			for i, r := range tick.Label {
				if col+i < len(labels) {
					labels[col+i] = r
				}
			}
		} else {
			line[col] = '.'
		}
	}
	fmt.Println(strings.TrimRight(string(line), " "))
	fmt.Println(strings.TrimRight(string(labels), " "))
}

// handleExportCommand prints the resolved composition as JSON, the same
// deterministic shape the export pipeline walks.
func (sh *Shell) handleExportCommand() {
	comp := sh.composition()
	out, err := json.MarshalIndent(comp, "", "  ")
	if err != nil {
		fmt.Printf("Error encoding composition: %v\n", err)
		return
	}
	fmt.Println(string(out))
}
