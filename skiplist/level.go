package skiplist

import (
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/exp/rand"
)

// pFactor is the geometric distribution parameter: randomLevel() returns
// k with probability (1-p)*p^k for k < MaxLevel, clamped at MaxLevel.
const pFactor = 0.5

// genSeq hands out a distinct counter value on every new generator's
// construction, so two generators born in the same nanosecond still seed
// distinctly. Go exposes no portable OS-thread id the way the reference
// implementation's omp_get_thread_num() does; this substitutes for it.
var genSeq atomic.Uint64

// levelGen is one goroutine's view of the level generator's PRNG state.
type levelGen struct {
	rng *rand.Rand
}

func newLevelGen() *levelGen {
	seed := uint64(time.Now().UnixNano()) ^ genSeq.Add(1)
	return &levelGen{rng: rand.New(rand.NewSource(seed))}
}

func (g *levelGen) draw() uint8 {
	level := uint8(0)
	for g.rng.Float64() < pFactor && level < MaxLevel {
		level++
	}
	return level
}

// levelGenPool caches one *levelGen per concurrently-active goroutine.
// Go has no true thread-local storage, so a sync.Pool stands in for it:
// every randomLevel call borrows a generator, draws exactly one level,
// and returns it immediately, so no two goroutines ever hold the same
// generator at once. A generator's seed is fixed at construction and
// never reset, so output is stationary regardless of which goroutine
// later borrows it.
var levelGenPool = sync.Pool{New: func() any { return newLevelGen() }}

// randomLevel returns a level drawn in [0, MaxLevel] from a generator
// borrowed from levelGenPool, each generator seeded uniquely when it is
// constructed.
func randomLevel() uint8 {
	g := levelGenPool.Get().(*levelGen)
	defer levelGenPool.Put(g)
	return g.draw()
}
