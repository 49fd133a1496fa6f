// Command skiplist-bench drives one of the three skip-list
// synchronization strategies (coarse, fine, lockfree) through a
// configurable concurrent workload and reports throughput.
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/KimMachineGun/automemlimit/memlimit"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/nsavage/skiplist-bench/config"
)

func main() {
	implFlag := flag.String("impl", "lockfree", "Implementation: coarse, fine, lockfree")
	threadsFlag := flag.Int("threads", 4, "Number of worker goroutines")
	opsFlag := flag.Int("ops", 100000, "Operations per thread")
	keyRangeFlag := flag.Int("key-range", 10000, "Range of keys, drawn uniformly from [0, N)")
	workloadFlag := flag.String("workload", "mixed", "Workload: insert, delete, readonly, mixed")
	insertPctFlag := flag.Int("insert-pct", 30, "Insert percentage for the mixed workload")
	deletePctFlag := flag.Int("delete-pct", 20, "Delete percentage for the mixed workload")
	initialSizeFlag := flag.Int("initial-size", 0, "Pre-populate the list with this many random-key inserts")
	warmupFlag := flag.Int("warmup", 1000, "Untimed warmup operations before the measured run")
	csvFlag := flag.Bool("csv", false, "Emit one CSV line instead of a human-readable report")
	profileFlag := flag.String("profile", "", "YAML workload profile; explicit flags override its fields")
	seedFlag := flag.Uint64("seed", 1, "PRNG seed; same seed plus same flags reproduces the same run")
	flag.Parse()

	cfg := benchmarkConfig{
		impl:        *implFlag,
		threads:     *threadsFlag,
		opsPerGR:    *opsFlag,
		keyRange:    *keyRangeFlag,
		workload:    *workloadFlag,
		insertPct:   *insertPctFlag,
		deletePct:   *deletePctFlag,
		initialSize: *initialSizeFlag,
		warmup:      *warmupFlag,
		seed:        *seedFlag,
	}

	if *profileFlag != "" {
		profile, err := config.LoadProfile(*profileFlag)
		if err != nil {
			log.Fatal(err)
		}
		applyProfileDefaults(&cfg, profile, flagsSet())
	}

	if _, err := maxprocs.Set(maxprocs.Logger(func(format string, args ...any) {
		slog.Debug(fmt.Sprintf(format, args...))
	})); err != nil {
		slog.Warn("could not set GOMAXPROCS from cgroup quota", "error", err)
	}
	if _, err := memlimit.SetGoMemLimitWithOpts(memlimit.WithLogger(slog.Default())); err != nil {
		slog.Warn("could not set GOMEMLIMIT from cgroup limit", "error", err)
	}

	ops, err := newOps(cfg.impl)
	if err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}

	prepopulateList(ops, cfg.initialSize, cfg.keyRange, cfg.seed)
	runWarmup(ops, cfg)

	result, err := runWorkload(ops, cfg)
	if err != nil {
		slog.Error(err.Error())
		ops.destroy()
		os.Exit(1)
	}

	if *csvFlag {
		printCSVHeader()
		printCSVResult(cfg, result)
	} else {
		printResult(cfg, result)
	}
	ops.destroy()
}

// flagsSet returns the set of flag names explicitly passed on the
// command line, so a loaded profile only fills in fields the caller
// didn't already override: flags win over file config.
func flagsSet() map[string]bool {
	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}

func applyProfileDefaults(cfg *benchmarkConfig, profile config.Profile, explicit map[string]bool) {
	if !explicit["threads"] && profile.Threads != 0 {
		cfg.threads = profile.Threads
	}
	if !explicit["ops"] && profile.Ops != 0 {
		cfg.opsPerGR = profile.Ops
	}
	if !explicit["key-range"] && profile.KeyRange != 0 {
		cfg.keyRange = profile.KeyRange
	}
	if !explicit["workload"] && profile.Workload != "" {
		cfg.workload = profile.Workload
	}
	if !explicit["insert-pct"] && profile.InsertPct != 0 {
		cfg.insertPct = profile.InsertPct
	}
	if !explicit["delete-pct"] && profile.DeletePct != 0 {
		cfg.deletePct = profile.DeletePct
	}
	if !explicit["initial-size"] && profile.InitialSize != 0 {
		cfg.initialSize = profile.InitialSize
	}
	if !explicit["warmup"] && profile.Warmup != 0 {
		cfg.warmup = profile.Warmup
	}
}

func printResult(cfg benchmarkConfig, result benchmarkResult) {
	fmt.Println("\n=== Benchmark Results ===")
	fmt.Printf("Implementation: %s\n", cfg.impl)
	fmt.Printf("Threads: %d\n", cfg.threads)
	fmt.Printf("Workload: %s\n", cfg.workload)
	fmt.Printf("Operations: %d\n", cfg.threads*cfg.opsPerGR)
	fmt.Printf("Key Range: %d\n", cfg.keyRange)
	fmt.Printf("Time: %.4f seconds\n", result.totalTime.Seconds())
	fmt.Printf("Throughput: %.2f ops/sec\n", result.throughput)
	fmt.Printf("Successful: %d\n", result.successfulOp)
	fmt.Printf("Failed: %d\n", result.failedOp)
	fmt.Println("========================")
}

func printCSVHeader() {
	fmt.Println("impl,threads,workload,ops,key_range,time,throughput,successful,failed")
}

func printCSVResult(cfg benchmarkConfig, result benchmarkResult) {
	fmt.Printf("%s,%d,%s,%d,%d,%.4f,%.2f,%d,%d\n",
		cfg.impl, cfg.threads, cfg.workload, cfg.threads*cfg.opsPerGR, cfg.keyRange,
		result.totalTime.Seconds(), result.throughput, result.successfulOp, result.failedOp)
}
