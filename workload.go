package main

import (
	"fmt"
	"sync"
	"time"

	"golang.org/x/exp/rand"

	"github.com/nsavage/skiplist-bench/skiplist"
)

// skiplistOps is the five-operation dispatch table a workload runs
// against, resolved once from the --impl flag: a struct of closures
// rather than methods, since Go has no way to address-of a method
// across unrelated concrete types the way a C function pointer table
// can.
type skiplistOps struct {
	insert   func(key, value int32) bool
	delete   func(key int32) bool
	contains func(key int32) bool
	size     func() int64
	destroy  func()
}

func newOps(impl string) (skiplistOps, error) {
	switch impl {
	case "coarse":
		l := skiplist.NewCoarse()
		return skiplistOps{l.Insert, l.Delete, l.Contains, l.Size, l.Destroy}, nil
	case "fine":
		l := skiplist.NewFine()
		return skiplistOps{l.Insert, l.Delete, l.Contains, l.Size, l.Destroy}, nil
	case "lockfree":
		l := skiplist.NewLockFree()
		return skiplistOps{l.Insert, l.Delete, l.Contains, l.Size, l.Destroy}, nil
	default:
		return skiplistOps{}, fmt.Errorf("unknown implementation: %s", impl)
	}
}

// benchmarkConfig holds one resolved run's worth of settings, merging
// CLI flags and an optional loaded profile.
type benchmarkConfig struct {
	impl        string
	threads     int
	opsPerGR    int
	keyRange    int
	workload    string
	insertPct   int
	deletePct   int
	initialSize int
	warmup      int
	seed        uint64
}

// benchmarkResult holds the outcome of one timed workload run.
type benchmarkResult struct {
	totalTime    time.Duration
	throughput   float64
	successfulOp int64
	failedOp     int64
}

// prepopulateList makes size inserts of random keys in parallel ahead of
// the timed workload. Keys are drawn with replacement, so duplicates
// leave the list with fewer than size entries.
func prepopulateList(ops skiplistOps, size, keyRange int, seed uint64) {
	if size <= 0 {
		return
	}
	const chunks = 16
	var wg sync.WaitGroup
	per := size / chunks
	rem := size % chunks
	for c := 0; c < chunks; c++ {
		n := per
		if c < rem {
			n++
		}
		wg.Add(1)
		go func(c, n int) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed ^ uint64(c+1)*0x9e3779b97f4a7c15))
			for i := 0; i < n; i++ {
				key := int32(rng.Intn(keyRange))
				ops.insert(key, key)
			}
		}(c, n)
	}
	wg.Wait()
}

// runWarmup executes a small mixed burst against the list without timing
// it, so the measured run isn't paying for goroutine and GC ramp-up.
func runWarmup(ops skiplistOps, cfg benchmarkConfig) {
	if cfg.warmup <= 0 {
		return
	}
	rng := rand.New(rand.NewSource(cfg.seed ^ 0xdeadbeef))
	for i := 0; i < cfg.warmup; i++ {
		key := int32(rng.Intn(cfg.keyRange))
		switch i % 3 {
		case 0:
			ops.insert(key, key)
		case 1:
			ops.delete(key)
		default:
			ops.contains(key)
		}
	}
}

// runWorkload dispatches to the per-workload-kind goroutine body and
// measures wall-clock time across all threads: one function
// parametrized by workload kind instead of four near-identical copies.
func runWorkload(ops skiplistOps, cfg benchmarkConfig) (benchmarkResult, error) {
	var body func(rng *rand.Rand) bool
	switch cfg.workload {
	case "insert":
		body = func(rng *rand.Rand) bool {
			key := int32(rng.Intn(cfg.keyRange))
			return ops.insert(key, key)
		}
	case "delete":
		body = func(rng *rand.Rand) bool {
			key := int32(rng.Intn(cfg.keyRange))
			return ops.delete(key)
		}
	case "readonly":
		body = func(rng *rand.Rand) bool {
			key := int32(rng.Intn(cfg.keyRange))
			return ops.contains(key)
		}
	case "mixed":
		body = func(rng *rand.Rand) bool {
			opType := rng.Intn(100)
			key := int32(rng.Intn(cfg.keyRange))
			switch {
			case opType < cfg.insertPct:
				return ops.insert(key, key)
			case opType < cfg.insertPct+cfg.deletePct:
				return ops.delete(key)
			default:
				return ops.contains(key)
			}
		}
	default:
		return benchmarkResult{}, fmt.Errorf("unknown workload: %s", cfg.workload)
	}

	successCounts := make([]int64, cfg.threads)
	var wg sync.WaitGroup
	start := time.Now()
	for t := 0; t < cfg.threads; t++ {
		wg.Add(1)
		go func(t int) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(cfg.seed ^ uint64(t+1)*0x2545f4914f6cdd1d))
			var successful int64
			for i := 0; i < cfg.opsPerGR; i++ {
				if body(rng) {
					successful++
				}
			}
			successCounts[t] = successful
		}(t)
	}
	wg.Wait()
	elapsed := time.Since(start)

	var successful int64
	for _, c := range successCounts {
		successful += c
	}
	total := int64(cfg.threads) * int64(cfg.opsPerGR)

	result := benchmarkResult{
		totalTime:    elapsed,
		successfulOp: successful,
		failedOp:     total - successful,
	}
	if elapsed > 0 {
		result.throughput = float64(total) / elapsed.Seconds()
	}
	return result, nil
}
