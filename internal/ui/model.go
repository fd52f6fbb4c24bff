// ABOUTME: Bubbletea model for the terminal PCM player
// ABOUTME: Defines file list, waveform and transport state plus update logic
package ui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pcmscope/pcmscope-go/internal/catalog"
	"github.com/pcmscope/pcmscope-go/internal/session"
	"github.com/pcmscope/pcmscope-go/pkg/waveform"
)

const (
	refreshInterval = 100 * time.Millisecond
	seekStep        = 5.0
	volumeStep      = 5
	waveformRows    = 11
	visibleFiles    = 8
)

// Controller is the part of a session the player drives
type Controller interface {
	Load(name string) error
	Toggle() error
	Stop() error
	Seek(seconds float64) (float64, error)
	SeekBy(delta float64) (float64, error)
	SetVolume(volume int)
	ToggleMute() bool
	Tick(now time.Time) session.Status
	EnvelopeAt(width int) (waveform.Envelope, error)
}

// Lister lists playable files
type Lister interface {
	List() ([]catalog.Asset, error)
}

// Model represents the TUI state
type Model struct {
	ctl    Controller
	lister Lister

	// Library
	files    []catalog.Asset
	selected int

	// Playback
	status   session.Status
	envelope waveform.Envelope

	lastErr  string
	quitting bool

	// Dimensions
	width  int
	height int
}

type tickMsg time.Time

type filesMsg struct {
	files []catalog.Asset
	err   error
}

type loadedMsg struct {
	name string
	err  error
}

// Init starts the refresh ticker and the first directory scan
func (m Model) Init() tea.Cmd {
	return tea.Batch(tickEvery(), listFiles(m.lister))
}

func tickEvery() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func listFiles(lister Lister) tea.Cmd {
	return func() tea.Msg {
		if lister == nil {
			return filesMsg{}
		}
		files, err := lister.List()
		return filesMsg{files: files, err: err}
	}
}

func loadFile(ctl Controller, name string) tea.Cmd {
	return func() tea.Msg {
		return loadedMsg{name: name, err: ctl.Load(name)}
	}
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.refreshEnvelope()

	case tickMsg:
		m.status = m.ctl.Tick(time.Time(msg))
		return m, tickEvery()

	case filesMsg:
		if msg.err != nil {
			m.lastErr = fmt.Sprintf("list failed: %v", msg.err)
			return m, nil
		}
		m.files = msg.files
		if m.selected >= len(m.files) {
			m.selected = max(len(m.files)-1, 0)
		}

	case loadedMsg:
		if msg.err != nil {
			m.lastErr = fmt.Sprintf("load %s failed: %v", msg.name, msg.err)
			return m, nil
		}
		m.lastErr = ""
		m.refreshEnvelope()
		m.status = m.ctl.Tick(time.Now())
	}

	return m, nil
}

// handleKey handles keyboard input
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var err error

	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	case " ", "space":
		err = m.ctl.Toggle()
	case "s":
		err = m.ctl.Stop()
	case "left":
		_, err = m.ctl.SeekBy(-seekStep)
	case "right":
		_, err = m.ctl.SeekBy(seekStep)
	case "home":
		_, err = m.ctl.Seek(0)
	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
	case "down", "j":
		if m.selected < len(m.files)-1 {
			m.selected++
		}
	case "enter":
		if len(m.files) > 0 {
			return m, loadFile(m.ctl, m.files[m.selected].Name)
		}
	case "+", "=":
		m.ctl.SetVolume(clampVolume(m.status.Volume + volumeStep))
	case "-":
		m.ctl.SetVolume(clampVolume(m.status.Volume - volumeStep))
	case "m":
		m.ctl.ToggleMute()
	case "r":
		return m, listFiles(m.lister)
	}

	if err != nil {
		m.lastErr = err.Error()
	} else {
		m.lastErr = ""
	}
	m.status = m.ctl.Tick(time.Now())
	return m, nil
}

// handleMouse seeks when the waveform is clicked or dragged across
func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Button != tea.MouseButtonLeft {
		return m, nil
	}
	if msg.Action != tea.MouseActionPress && msg.Action != tea.MouseActionMotion {
		return m, nil
	}
	if m.status.Duration <= 0 || len(m.envelope) == 0 {
		return m, nil
	}

	top := m.waveformTop()
	if msg.Y < top || msg.Y >= top+waveformRows || msg.X < 0 || msg.X >= len(m.envelope) {
		return m, nil
	}

	if _, err := m.ctl.Seek(waveform.PositionAt(msg.X, len(m.envelope), m.status.Duration)); err != nil {
		m.lastErr = err.Error()
	} else {
		m.lastErr = ""
	}
	m.status = m.ctl.Tick(time.Now())
	return m, nil
}

// refreshEnvelope re-summarizes the loaded buffer at the current width
func (m *Model) refreshEnvelope() {
	env, err := m.ctl.EnvelopeAt(m.waveformWidth())
	if err != nil {
		m.lastErr = err.Error()
		return
	}
	m.envelope = env
}

func (m Model) waveformWidth() int {
	if m.width == 0 {
		return 80
	}
	return max(m.width-4, 10)
}

func clampVolume(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
