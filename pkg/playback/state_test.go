// ABOUTME: Tests for playback state names
// ABOUTME: Covers String and the JSON text round trip used by status payloads
package playback

import (
	"encoding/json"
	"testing"
)

func TestStateString(t *testing.T) {
	tests := []struct {
		state    State
		expected string
	}{
		{Stopped, "stopped"},
		{Playing, "playing"},
		{Paused, "paused"},
		{State(9), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.state.String(); got != tt.expected {
			t.Errorf("expected %s, got %s", tt.expected, got)
		}
	}
}

func TestStateJSON(t *testing.T) {
	data, err := json.Marshal(struct {
		State State `json:"state"`
	}{Paused})
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"state":"paused"}` {
		t.Errorf("expected paused as text, got %s", data)
	}

	var decoded struct {
		State State `json:"state"`
	}
	if err := json.Unmarshal([]byte(`{"state":"playing"}`), &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.State != Playing {
		t.Errorf("expected Playing, got %s", decoded.State)
	}

	if err := json.Unmarshal([]byte(`{"state":"rewinding"}`), &decoded); err == nil {
		t.Error("expected error for unknown state")
	}
}
