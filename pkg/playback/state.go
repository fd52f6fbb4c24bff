// ABOUTME: Playback state enumeration
// ABOUTME: Stopped, Playing and Paused with string forms for display and JSON
package playback

import "fmt"

// State is the transport state of a clock
type State int

const (
	Stopped State = iota
	Playing
	Paused
)

// String returns the lowercase state name
func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (s *State) UnmarshalText(text []byte) error {
	switch string(text) {
	case "stopped":
		*s = Stopped
	case "playing":
		*s = Playing
	case "paused":
		*s = Paused
	default:
		return fmt.Errorf("unknown playback state %q", text)
	}
	return nil
}
