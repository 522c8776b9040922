package irc

import "time"

// Fuse is a one-shot resettable timer. While unarmed, C returns a nil
// channel which blocks forever inside a select, so the fuse can sit next to
// the other event sources without special casing.
type Fuse struct {
	timer *time.Timer
	c     <-chan time.Time
}

func NewFuse() *Fuse {
	return &Fuse{}
}

// Arm starts (or restarts) the fuse with the given duration.
func (f *Fuse) Arm(d time.Duration) {
	f.Clear()
	f.timer = time.NewTimer(d)
	f.c = f.timer.C
}

// Clear disarms the fuse. Safe to call on an unarmed fuse.
func (f *Fuse) Clear() {
	if f.timer != nil {
		if !f.timer.Stop() {
			select {
			case <-f.timer.C:
			default:
			}
		}
		f.timer = nil
	}
	f.c = nil
}

// C is the expiry channel; nil while unarmed.
func (f *Fuse) C() <-chan time.Time {
	return f.c
}

// Armed reports whether the fuse is currently ticking.
func (f *Fuse) Armed() bool {
	return f.c != nil
}
