// ABOUTME: Tests for mDNS discovery
// ABOUTME: Tests manager setup, TXT records and entry name parsing
package discovery

import (
	"testing"
)

func TestNewManager(t *testing.T) {
	config := Config{
		ServiceName: "Studio",
		Port:        8000,
		Version:     "1.0.0",
	}

	mgr := NewManager(config)
	if mgr == nil {
		t.Fatal("expected manager to be created")
	}
	defer mgr.Stop()

	if mgr.config.ServiceName != "Studio" {
		t.Errorf("expected ServiceName 'Studio', got '%s'", mgr.config.ServiceName)
	}
}

func TestTxtRecords(t *testing.T) {
	mgr := NewManager(Config{ServiceName: "a", Port: 8000, Version: "2.1.0"})
	txt := mgr.txtRecords()

	expected := []string{"path=/api", "version=2.1.0"}
	if len(txt) != len(expected) {
		t.Fatalf("expected %v, got %v", expected, txt)
	}
	for i := range expected {
		if txt[i] != expected[i] {
			t.Errorf("expected %q, got %q", expected[i], txt[i])
		}
	}

	mgr = NewManager(Config{ServiceName: "b", Port: 8000})
	if txt := mgr.txtRecords(); len(txt) != 1 {
		t.Errorf("expected only path record without version, got %v", txt)
	}
}

func TestAdvertiseRejectsInvalidPort(t *testing.T) {
	mgr := NewManager(Config{ServiceName: "x", Port: 0})
	defer mgr.Stop()

	if err := mgr.Advertise(); err == nil {
		t.Error("expected error for port 0")
	}
}

func TestInstanceName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"studio._pcmscope._tcp.local.", "studio"},
		{`living\ room._pcmscope._tcp.local.`, "living room"},
		{"plain", "plain"},
	}

	for _, tt := range tests {
		if got := instanceName(tt.input); got != tt.expected {
			t.Errorf("instanceName(%q): expected %q, got %q", tt.input, tt.expected, got)
		}
	}
}

func TestServerInfoURL(t *testing.T) {
	s := ServerInfo{Host: "192.168.1.20", Port: 8001}
	if got := s.URL(); got != "http://192.168.1.20:8001" {
		t.Errorf("expected http://192.168.1.20:8001, got %s", got)
	}
}
