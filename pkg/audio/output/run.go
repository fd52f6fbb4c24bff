// ABOUTME: Single playback run bookkeeping
// ABOUTME: Guarantees the end callback fires at most once and never after Stop
package output

import (
	"context"
	"sync"
)

// run is one Start..end span of playback
type run struct {
	ctx     context.Context
	cancel  context.CancelFunc
	gen     uint64
	onEnded EndedFunc
	once    sync.Once
}

func newRun(gen uint64, onEnded EndedFunc) *run {
	ctx, cancel := context.WithCancel(context.Background())
	return &run{
		ctx:     ctx,
		cancel:  cancel,
		gen:     gen,
		onEnded: onEnded,
	}
}

// finish reports a natural end unless the run was aborted first
func (r *run) finish(elapsed float64) {
	r.once.Do(func() {
		r.cancel()
		if r.onEnded != nil {
			r.onEnded(r.gen, elapsed)
		}
	})
}

// abort ends the run silently
func (r *run) abort() {
	r.once.Do(r.cancel)
}

// done is closed once the run has finished or been aborted
func (r *run) done() <-chan struct{} {
	return r.ctx.Done()
}
