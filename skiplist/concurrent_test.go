package skiplist

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestConcurrentDisjointInserts has N goroutines each insert a disjoint
// key range; afterward every key is present and the size counter equals
// the number of keys inserted.
func TestConcurrentDisjointInserts(t *testing.T) {
	const goroutines = 8
	const perGoroutine = 2000

	for _, c := range ctors() {
		t.Run(c.name, func(t *testing.T) {
			l := c.new()
			defer l.Destroy()

			var wg sync.WaitGroup
			for g := 0; g < goroutines; g++ {
				wg.Add(1)
				go func(base int32) {
					defer wg.Done()
					for i := int32(0); i < perGoroutine; i++ {
						assert.True(t, l.Insert(base+i, base+i))
					}
				}(int32(g * perGoroutine))
			}
			wg.Wait()

			assert.Equal(t, int64(goroutines*perGoroutine), l.Size())
			for k := int32(0); k < goroutines*perGoroutine; k++ {
				assert.True(t, l.Contains(k), "missing key %d", k)
			}
		})
	}
}

// TestConcurrentInsertDeleteRace has many goroutines race
// insert/delete/contains on an overlapping key range. No
// correctness property beyond "no crash, and every key ends in a
// consistent present/absent state reachable by some interleaving" is
// checked, since the outcome of racing mutators on the same key is
// inherently nondeterministic — this exercises the algorithms under real
// contention rather than asserting a specific final state.
func TestConcurrentInsertDeleteRace(t *testing.T) {
	const goroutines = 16
	const opsPerGoroutine = 5000
	const keyRange = 64

	for _, c := range ctors() {
		t.Run(c.name, func(t *testing.T) {
			l := c.new()
			defer l.Destroy()

			var wg sync.WaitGroup
			for g := 0; g < goroutines; g++ {
				wg.Add(1)
				go func(seed int32) {
					defer wg.Done()
					for i := 0; i < opsPerGoroutine; i++ {
						k := (seed*31 + int32(i)) % keyRange
						switch i % 3 {
						case 0:
							l.Insert(k, k)
						case 1:
							l.Delete(k)
						default:
							l.Contains(k)
						}
					}
				}(int32(g + 1))
			}
			wg.Wait()

			// Quiescent now: every remaining key must still answer
			// Contains consistently with a final deterministic pass.
			for k := int32(0); k < keyRange; k++ {
				got := l.Contains(k)
				got2 := l.Contains(k)
				assert.Equal(t, got, got2, "contains(%d) unstable at quiescence", k)
			}
		})
	}
}

// TestConcurrentContainsDuringMutation exercises property 3 (no phantom
// keys): a reader goroutine hammers Contains on a fixed key while writers
// insert and delete it repeatedly; Contains must never panic or report
// anything but true/false and must never observe a torn state.
func TestConcurrentContainsDuringMutation(t *testing.T) {
	const iterations = 20000

	for _, c := range ctors() {
		t.Run(c.name, func(t *testing.T) {
			l := c.new()
			defer l.Destroy()

			var wg sync.WaitGroup
			wg.Add(3)
			go func() {
				defer wg.Done()
				for i := 0; i < iterations; i++ {
					l.Insert(42, int32(i))
				}
			}()
			go func() {
				defer wg.Done()
				for i := 0; i < iterations; i++ {
					l.Delete(42)
				}
			}()
			go func() {
				defer wg.Done()
				for i := 0; i < iterations; i++ {
					_ = l.Contains(42)
				}
			}()
			wg.Wait()
		})
	}
}
