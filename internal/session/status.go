// ABOUTME: Session status snapshot
// ABOUTME: Serializable view of playback state for UIs and the HTTP API
package session

import (
	"github.com/pcmscope/pcmscope-go/pkg/audio"
	"github.com/pcmscope/pcmscope-go/pkg/playback"
)

// Status is a point-in-time view of a session
type Status struct {
	Session    string         `json:"session"`
	File       string         `json:"file"`
	State      playback.State `json:"state"`
	Position   float64        `json:"position"`
	Duration   float64        `json:"duration"`
	Generation uint64         `json:"generation"`
	Progress   float64        `json:"progress"`
	Elapsed    string         `json:"elapsed"`
	Total      string         `json:"total"`
	Volume     int            `json:"volume"`
	Muted      bool           `json:"muted"`
}

func newStatus(id, name string, snap playback.Snapshot, volume int, muted bool) Status {
	st := Status{
		Session:    id,
		File:       name,
		State:      snap.State,
		Position:   snap.Position,
		Duration:   snap.Duration,
		Generation: snap.Generation,
		Elapsed:    audio.FormatTime(snap.Position),
		Total:      audio.FormatTime(snap.Duration),
		Volume:     volume,
		Muted:      muted,
	}
	if snap.Duration > 0 {
		st.Progress = snap.Position / snap.Duration
	}
	return st
}
