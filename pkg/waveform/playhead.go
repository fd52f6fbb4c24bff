// ABOUTME: Playhead geometry helpers
// ABOUTME: Maps playback positions to columns and back for click-to-seek
package waveform

import "math"

// PlayheadX returns the column of the playhead, x = position/duration*width,
// clamped to [0, width-1]. Zero duration or width puts it at column 0.
func PlayheadX(position, duration float64, width int) int {
	if width <= 0 || duration <= 0 || math.IsNaN(position) || position <= 0 {
		return 0
	}
	x := int(position / duration * float64(width))
	if x >= width {
		x = width - 1
	}
	return x
}

// PositionAt converts a column (or pixel) x on a surface of the given width
// into a playback position in seconds, clamped to [0, duration].
func PositionAt(x, width int, duration float64) float64 {
	if width <= 0 || duration <= 0 || x <= 0 {
		return 0
	}
	if x >= width {
		return duration
	}
	return float64(x) / float64(width) * duration
}
