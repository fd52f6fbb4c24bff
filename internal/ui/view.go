// ABOUTME: Rendering for the terminal PCM player
// ABOUTME: Draws the file list, waveform with playhead, time readout and bars
package ui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/pcmscope/pcmscope-go/pkg/audio"
	"github.com/pcmscope/pcmscope-go/pkg/playback"
	"github.com/pcmscope/pcmscope-go/pkg/waveform"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			MarginBottom(1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250"))

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("220"))

	waveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	playheadStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	helpStyle = lipgloss.NewStyle().Faint(true)
)

// View renders the TUI
func (m Model) View() string {
	if m.quitting {
		return "Bye.\n"
	}

	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString(m.renderWaveform())
	b.WriteString("\n")
	b.WriteString(m.renderTransport())

	if m.lastErr != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(m.lastErr))
	}

	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("space:Play/Pause  s:Stop  ←/→:Seek 5s  click:Seek  home:Start  ↑/↓:Select  enter:Load  +/-:Volume  m:Mute  r:Rescan  q:Quit"))

	return b.String()
}

// renderHeader renders everything above the waveform
func (m Model) renderHeader() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("pcmscope"))
	b.WriteString("\n")
	b.WriteString(m.renderFiles())
	b.WriteString("\n")
	b.WriteString(m.renderNowPlaying())
	b.WriteString("\n")
	return b.String()
}

// waveformTop is the screen row of the first waveform line
func (m Model) waveformTop() int {
	return strings.Count(m.renderHeader(), "\n")
}

// renderFiles renders a window of the file list around the selection
func (m Model) renderFiles() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("Files (%d)", len(m.files))))
	b.WriteString("\n")

	if len(m.files) == 0 {
		b.WriteString(valueStyle.Render("  No .pcm files found"))
		b.WriteString("\n")
		return b.String()
	}

	start := 0
	if m.selected >= visibleFiles {
		start = m.selected - visibleFiles + 1
	}
	end := min(start+visibleFiles, len(m.files))

	for i := start; i < end; i++ {
		f := m.files[i]
		line := fmt.Sprintf("%-32s %10s  %s",
			truncate(f.Name, 32), audio.FormatSize(f.Size), f.ModTime.Format("2006-01-02 15:04"))
		if i == m.selected {
			b.WriteString(selectedStyle.Render("> " + line))
		} else {
			b.WriteString(valueStyle.Render("  " + line))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderNowPlaying() string {
	name := m.status.File
	if name == "" {
		name = "(nothing loaded)"
	}
	return headerStyle.Render("Now: ") + valueStyle.Render(name) +
		"  " + headerStyle.Render("State: ") + valueStyle.Render(stateLabel(m.status.State)) + "\n"
}

// renderWaveform draws the envelope with the playhead column highlighted
func (m Model) renderWaveform() string {
	if len(m.envelope) == 0 {
		return ""
	}

	rows := waveformGrid(m.envelope, waveformRows)
	playhead := -1
	if m.status.Duration > 0 {
		playhead = waveform.PlayheadX(m.status.Position, m.status.Duration, len(m.envelope))
	}

	var b strings.Builder
	for _, row := range rows {
		if playhead < 0 {
			b.WriteString(waveStyle.Render(string(row)))
		} else {
			b.WriteString(waveStyle.Render(string(row[:playhead])))
			b.WriteString(playheadStyle.Render("│"))
			b.WriteString(waveStyle.Render(string(row[playhead+1:])))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderTransport() string {
	barWidth := max(len(m.envelope)-16, 10)
	progress := int(math.Round(m.status.Progress * 1000))

	volume := fmt.Sprintf("%d%%", m.status.Volume)
	if m.status.Muted {
		volume = "muted"
	}

	return fmt.Sprintf("%s / %s  [%s]\n%s [%s] %s\n",
		m.status.Elapsed, m.status.Total, renderBar(progress, 1000, barWidth),
		headerStyle.Render("Volume:"), renderBar(m.status.Volume, 100, 10), volume)
}

// waveformGrid rasterizes an envelope into rows of runes, top row = +1.0
func waveformGrid(env waveform.Envelope, rows int) [][]rune {
	grid := make([][]rune, rows)
	center := rows / 2
	for r := range grid {
		grid[r] = make([]rune, len(env))
		fill := ' '
		if r == center {
			fill = '─'
		}
		for x := range grid[r] {
			grid[r][x] = fill
		}
	}

	for x, p := range env {
		top := rowOf(p.Max, rows)
		bottom := rowOf(p.Min, rows)
		for r := top; r <= bottom; r++ {
			grid[r][x] = '█'
		}
	}
	return grid
}

func rowOf(v float32, rows int) int {
	r := int(math.Round(float64(1-v) * float64(rows-1) / 2))
	if r < 0 {
		return 0
	}
	if r >= rows {
		return rows - 1
	}
	return r
}

func stateLabel(s playback.State) string {
	switch s {
	case playback.Playing:
		return "▶ playing"
	case playback.Paused:
		return "⏸ paused"
	default:
		return "■ stopped"
	}
}

func renderBar(value, max, width int) string {
	if max <= 0 || width <= 0 {
		return ""
	}
	filled := (value * width) / max
	filled = min(filled, width)
	var b strings.Builder
	for i := 0; i < width; i++ {
		if i < filled {
			b.WriteString("█")
		} else {
			b.WriteString("░")
		}
	}
	return b.String()
}

func truncate(s string, length int) string {
	if len(s) <= length {
		return s
	}
	return s[:length-3] + "..."
}
