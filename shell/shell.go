// Package shell is the interactive timeline editor: a readline loop over
// one project's tracks and clips.
package shell

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"

	"montage/compose"
	"montage/media"
	"montage/playback"
	"montage/timeline"
)

// Shell is the editor session for one project.
type Shell struct {
	Store      *timeline.Store
	Resolver   *media.Resolver
	Processing *media.ProcessingClient
	Controller *playback.Controller
	View       timeline.ViewState
	Snapping   bool

	// clipIndex maps the display numbers printed by `clips` to keyframe IDs.
	clipIndex  []string
	trackIndex []string
}

// NewShell creates an editor shell around a loaded timeline store.
func NewShell(store *timeline.Store, resolver *media.Resolver, processing *media.ProcessingClient) *Shell {
	sh := &Shell{
		Store:      store,
		Resolver:   resolver,
		Processing: processing,
		Snapping:   true,
		View: timeline.ViewState{
			PixelsPerSecond: timeline.DefaultZoom,
			WidthPx:         960,
		},
	}
	sh.Controller = playback.NewController(nil, store.Project().Duration)
	return sh
}

// Run starts the interactive editor loop.
func (sh *Shell) Run() {
	project := sh.Store.Project()
	fmt.Printf("=== Timeline Editor ===\n")
	fmt.Printf("Project: %s (%s, %s)\n", project.Title, project.AspectRatio, timeline.FormatTime(project.Duration))

	sh.printCommands()
	sh.ShowStatus()

	homeDir, err := os.UserHomeDir()
	if err != nil {
		fmt.Printf("Warning: Could not get home directory: %v\n", err)
		homeDir = "."
	}
	historyFile := filepath.Join(homeDir, ".montage_history")

	config := &readline.Config{
		Prompt:       "edit> ",
		HistoryFile:  historyFile,
		AutoComplete: sh.Completer(),
	}

	rl, err := readline.NewEx(config)
	if err != nil {
		fmt.Printf("Error initializing readline: %v\n", err)
		return
	}
	defer rl.Close()
	defer sh.Controller.Close()

	for {
		input, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				fmt.Println("\nExiting editor...")
				break
			}
			fmt.Printf("Error reading input: %v\n", err)
			break
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		if !sh.HandleCommand(input) {
			break
		}
	}
}

// Completer builds tab completion for the editor commands.
func (sh *Shell) Completer() *readline.PrefixCompleter {
	return readline.NewPrefixCompleter(
		readline.PcItem("status"),
		readline.PcItem("tracks"),
		readline.PcItem("clips"),
		readline.PcItem("ruler"),
		readline.PcItem("add"),
		readline.PcItem("mv"),
		readline.PcItem("trim"),
		readline.PcItem("rm"),
		readline.PcItem("move"),
		readline.PcItem("drag"),
		readline.PcItem("resize"),
		readline.PcItem("snap"),
		readline.PcItem("volume"),
		readline.PcItem("clipvolume"),
		readline.PcItem("fit",
			readline.PcItem("contain"), readline.PcItem("cover"), readline.PcItem("fill")),
		readline.PcItem("mute"),
		readline.PcItem("lock"),
		readline.PcItem("title"),
		readline.PcItem("duration"),
		readline.PcItem("zoom"),
		readline.PcItem("play"),
		readline.PcItem("pause"),
		readline.PcItem("seek"),
		readline.PcItem("step"),
		readline.PcItem("start"),
		readline.PcItem("end"),
		readline.PcItem("pos"),
		readline.PcItem("export"),
		readline.PcItem("help"),
		readline.PcItem("exit"),
	)
}

func (sh *Shell) printCommands() {
	fmt.Printf("\nCommands:\n")
	fmt.Printf("  tracks                     List tracks\n")
	fmt.Printf("  clips                      List clips with their numbers\n")
	fmt.Printf("  add <url> [at_ms]          Place media on the timeline\n")
	fmt.Printf("  mv <clip> <ms>             Move a clip to a timestamp\n")
	fmt.Printf("  trim <clip> <ms> <dur>     Set clip timestamp and duration\n")
	fmt.Printf("  rm <clip>                  Remove a clip\n")
	fmt.Printf("  move <clip> <track>        Move a clip onto another track\n")
	fmt.Printf("  drag <clip> <dx_px> [track] Simulate a drag gesture (snapping applies)\n")
	fmt.Printf("  resize <clip> <left|right> <dx_px>  Simulate an edge trim\n")
	fmt.Printf("  snap                       Toggle edge snapping for drags\n")
	fmt.Printf("  volume <track> <0-200>     Set track volume\n")
	fmt.Printf("  clipvolume <clip> <0-200>  Set per-clip volume override\n")
	fmt.Printf("  fit <clip> <mode>          Set clip fit mode (contain/cover/fill)\n")
	fmt.Printf("  mute <track>               Toggle track mute\n")
	fmt.Printf("  lock <track>               Toggle track lock\n")
	fmt.Printf("  title <text>               Rename the project\n")
	fmt.Printf("  duration <ms>              Set project duration\n")
	fmt.Printf("  zoom <px_per_sec>          Set ruler zoom\n")
	fmt.Printf("  ruler                      Print the ruler at the current zoom\n")
	fmt.Printf("  play [ms] / pause          Transport controls\n")
	fmt.Printf("  seek <ms> / step <+|-> / start / end / pos\n")
	fmt.Printf("  export                     Print the resolved frame composition\n")
	fmt.Printf("  status                     Show project summary\n")
	fmt.Printf("  help                       Show this help\n")
	fmt.Printf("  exit                       Leave the editor\n")
	fmt.Printf("\n")
}

// keyframeByArg resolves a `clips` display number to a keyframe.
func (sh *Shell) keyframeByArg(arg string) (timeline.Keyframe, bool) {
	idx, err := parseInt(arg)
	if err != nil || idx < 1 || idx > len(sh.clipIndex) {
		fmt.Printf("Unknown clip %q. Run 'clips' to list clip numbers.\n", arg)
		return timeline.Keyframe{}, false
	}
	keyframe, ok := sh.Store.Keyframe(sh.clipIndex[idx-1])
	if !ok {
		fmt.Printf("Clip %s no longer exists. Run 'clips' again.\n", arg)
		return timeline.Keyframe{}, false
	}
	return keyframe, true
}

// trackByArg resolves a `tracks` display number to a track.
func (sh *Shell) trackByArg(arg string) (timeline.Track, bool) {
	idx, err := parseInt(arg)
	if err != nil || idx < 1 || idx > len(sh.trackIndex) {
		fmt.Printf("Unknown track %q. Run 'tracks' to list track numbers.\n", arg)
		return timeline.Track{}, false
	}
	track, ok := sh.Store.Track(sh.trackIndex[idx-1])
	if !ok {
		fmt.Printf("Track %s no longer exists. Run 'tracks' again.\n", arg)
		return timeline.Track{}, false
	}
	return track, true
}

// composition resolves the current model, refreshing the transport range.
func (sh *Shell) composition() compose.Composition {
	project, tracks, keyframes := sh.Store.Snapshot()
	comp := compose.Resolve(project, tracks, keyframes)
	sh.Controller.SetDuration(project.Duration)
	return comp
}
