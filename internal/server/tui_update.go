// ABOUTME: TUI update helpers for server
// ABOUTME: Builds server state snapshots and feeds them to the TUI
package server

import (
	"sort"
	"time"
)

// snapshot builds the current server state for display
func (s *Server) snapshot() ServerStatus {
	status := ServerStatus{
		Name:  s.config.Name,
		Port:  s.config.Port,
		State: "stopped",
	}

	s.clientsMu.RLock()
	for addr, since := range s.clients {
		status.Clients = append(status.Clients, ClientInfo{
			Addr:      addr,
			Connected: time.Since(since),
		})
	}
	s.clientsMu.RUnlock()
	sort.Slice(status.Clients, func(i, j int) bool {
		return status.Clients[i].Addr < status.Clients[j].Addr
	})

	if s.session != nil {
		st := s.session.Status()
		status.File = st.File
		status.State = st.State.String()
		status.Elapsed = st.Elapsed
		status.Total = st.Total
	}
	return status
}

// feedTUI pushes a snapshot every second until the server stops
func (s *Server) feedTUI() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	s.tui.Update(s.snapshot())
	for {
		select {
		case <-ticker.C:
			s.tui.Update(s.snapshot())
		case <-s.stopChan:
			return
		}
	}
}
