package web

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"montage/compose"
	"montage/playback"
)

var upgrader = websocket.Upgrader{
	// The editor UI may be served from a different origin than the API.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// transportCommand is what sync clients send.
type transportCommand struct {
	Cmd       string `json:"cmd"` // play, pause, seek, step, start, end
	Timestamp int64  `json:"timestamp,omitempty"`
	Delta     int64  `json:"delta,omitempty"`
}

// positionEvent is what sync clients receive.
type positionEvent struct {
	Type      string `json:"type"` // position, state
	Timestamp int64  `json:"timestamp"`
	Playing   bool   `json:"playing"`
}

// handleSync upgrades to a websocket that streams the playhead and accepts
// transport commands, mirroring the player-event subscription contract.
func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		fmt.Printf("Warning: websocket upgrade failed: %v\n", err)
		return
	}
	defer conn.Close()

	var writeMu sync.Mutex
	send := func(event positionEvent) {
		writeMu.Lock()
		defer writeMu.Unlock()
		if err := conn.WriteJSON(event); err != nil {
			fmt.Printf("Warning: websocket write failed: %v\n", err)
		}
	}

	unsubscribe := sess.controller.OnPosition(func(ms int64) {
		send(positionEvent{Type: "position", Timestamp: ms, Playing: sess.controller.Playing()})
	})
	defer unsubscribe()

	send(positionEvent{Type: "state", Timestamp: sess.controller.Position(), Playing: sess.controller.Playing()})

	for {
		var cmd transportCommand
		if err := conn.ReadJSON(&cmd); err != nil {
			return
		}
		switch cmd.Cmd {
		case "play":
			s.ensurePlayer(sess)
			sess.controller.Play()
		case "pause":
			sess.controller.Pause()
		case "seek":
			s.ensurePlayer(sess)
			sess.controller.Seek(cmd.Timestamp)
		case "step":
			if cmd.Delta < 0 {
				sess.controller.StepBack()
			} else {
				sess.controller.StepForward()
			}
		case "start":
			sess.controller.JumpToStart()
		case "end":
			sess.controller.JumpToEnd()
		default:
			send(positionEvent{Type: "state", Timestamp: sess.controller.Position(), Playing: sess.controller.Playing()})
			continue
		}
		send(positionEvent{Type: "state", Timestamp: sess.controller.Position(), Playing: sess.controller.Playing()})
	}
}

// ensurePlayer attaches a clock-backed preview player sized to the current
// composition when the session has none yet.
func (s *Server) ensurePlayer(sess *session) {
	if sess.controller.Playing() {
		return
	}
	project, tracks, keyframes := sess.store.Snapshot()
	comp := compose.Resolve(project, tracks, keyframes)
	sess.controller.SetDuration(project.Duration)
	position := sess.controller.Position()
	sess.controller.SetPlayer(playback.NewClockPlayer(comp.TotalFrames))
	sess.controller.Seek(position)
}
