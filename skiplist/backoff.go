package skiplist

import "runtime"

// Contention-management knobs for the lockfree variant, tuned for
// x86-class hardware at up to ~16 threads; exposed as constants rather
// than a struct. The fine variant does not use them.
const (
	backoffBaseSpins  = 1
	backoffMaxSpins   = 2048
	yieldThreshold    = 12
	towerBuildRetries = 50
)

// backoff implements the bounded exponential backoff the lockfree variant
// applies on every CAS failure: spin for min(base<<attempt, cap)
// iterations, and once attempt exceeds yieldThreshold, cooperatively
// yield to the scheduler instead of spinning, to avoid convoys at higher
// thread counts.
type backoff struct {
	attempt int
}

func (b *backoff) wait() {
	if b.attempt > yieldThreshold {
		runtime.Gosched()
	} else {
		spins := backoffBaseSpins << b.attempt
		if spins > backoffMaxSpins {
			spins = backoffMaxSpins
		}
		for i := 0; i < spins; i++ {
			// Busy-spin. Go exposes no portable pause intrinsic for a
			// CAS-retry loop with no backing condition variable.
		}
	}
	b.attempt++
}
