// ABOUTME: Audio output package for playing decoded buffers
// ABOUTME: Provides the Backend interface with oto, PortAudio and null implementations
// Package output plays SampleBuffers on an audio device.
//
// A Backend plays one run at a time. Start begins a run from a position in
// the buffer, tagged with a generation; when the run plays to the end the
// backend calls the EndedFunc exactly once with that generation and the
// seconds of audio played. Stop ends the current run without calling it.
//
// Supported backends: oto (default), PortAudio (build with -tags portaudio),
// and null, which plays silently in real time for headless use and tests.
//
// Example:
//
//	out, err := output.New("oto")
//	err = out.Open()
//	err = out.Start(buf, 0, gen, func(gen uint64, elapsed float64) {
//	    clock.OnStreamEnded(gen, elapsed)
//	})
package output
