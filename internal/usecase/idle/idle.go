// Package idle tracks chat activity so background loops (like currency
// rewards) can tell whether the channel has gone quiet.
package idle

import "sync/atomic"

type Idle struct {
	threshold int64
	counter   atomic.Int64
}

// New returns an idle tracker that reports idle after threshold unseen
// intervals.
func New(threshold int) *Idle {
	i := &Idle{threshold: int64(threshold)}
	i.counter.Store(int64(threshold))
	return i
}

// Seen marks chat as active.
func (i *Idle) Seen() {
	i.counter.Store(0)
}

// Tick bumps the quiet interval counter; called by periodic loops.
func (i *Idle) Tick() {
	i.counter.Add(1)
}

// IsIdle reports whether the channel has been quiet for the threshold.
func (i *Idle) IsIdle() bool {
	return i.counter.Load() >= i.threshold
}
