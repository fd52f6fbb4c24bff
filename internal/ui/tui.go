// ABOUTME: TUI initialization and control
// ABOUTME: Wraps the bubbletea program for the PCM player
package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// NewModel creates a player model driving ctl and listing files from lister
func NewModel(ctl Controller, lister Lister) Model {
	return Model{
		ctl:    ctl,
		lister: lister,
	}
}

// Run starts the TUI and blocks until the user quits
func Run(ctl Controller, lister Lister) error {
	p := tea.NewProgram(NewModel(ctl, lister), tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}
