// Package benchmark times the lens stages on synthetic frames.
package benchmark

import (
	"encoding/csv"
	"fmt"
	"io"
	"runtime"
	"strconv"
	"sync"
	"time"
)

// MemoryStats holds memory usage statistics.
type MemoryStats struct {
	AllocBytes      uint64 // Currently allocated bytes
	TotalAllocBytes uint64 // Total allocated bytes (cumulative)
	Mallocs         uint64
	NumGC           uint32
}

// GetMemoryStats returns current memory statistics.
func GetMemoryStats() MemoryStats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return MemoryStats{
		AllocBytes:      m.Alloc,
		TotalAllocBytes: m.TotalAlloc,
		Mallocs:         m.Mallocs,
		NumGC:           m.NumGC,
	}
}

// Result holds the result of a benchmark run.
type Result struct {
	Name         string
	Iterations   int
	Total        time.Duration
	Min          time.Duration
	Max          time.Duration
	MemoryBefore MemoryStats
	MemoryAfter  MemoryStats
	Error        error
}

// Avg is the mean duration per completed iteration.
func (r Result) Avg() time.Duration {
	if r.Iterations == 0 {
		return 0
	}
	return r.Total / time.Duration(r.Iterations)
}

// AllocsPerOp is the number of heap allocations per iteration.
func (r Result) AllocsPerOp() uint64 {
	if r.Iterations == 0 {
		return 0
	}
	return (r.MemoryAfter.Mallocs - r.MemoryBefore.Mallocs) / uint64(r.Iterations) //nolint:gosec // G115: iterations is positive
}

// BytesPerOp is the number of heap bytes allocated per iteration.
func (r Result) BytesPerOp() uint64 {
	if r.Iterations == 0 {
		return 0
	}
	return (r.MemoryAfter.TotalAllocBytes - r.MemoryBefore.TotalAllocBytes) / uint64(r.Iterations) //nolint:gosec // G115: iterations is positive
}

func (r Result) String() string {
	if r.Error != nil {
		return fmt.Sprintf("%s: ERROR after %d iterations - %v", r.Name, r.Iterations, r.Error)
	}
	return fmt.Sprintf("%s: %d iterations, avg: %v, min: %v, max: %v, %d B/op, %d allocs/op",
		r.Name, r.Iterations, r.Avg(), r.Min, r.Max, r.BytesPerOp(), r.AllocsPerOp())
}

type entry struct {
	name string
	fn   func() error
}

// Suite runs named benchmark functions in the order they were added.
type Suite struct {
	entries []entry
	results []Result
	mu      sync.Mutex
}

// NewSuite creates an empty suite.
func NewSuite() *Suite {
	return &Suite{}
}

// Add registers a benchmark.
func (s *Suite) Add(name string, fn func() error) {
	s.entries = append(s.entries, entry{name: name, fn: fn})
}

// Names lists the registered benchmarks.
func (s *Suite) Names() []string {
	names := make([]string, len(s.entries))
	for i, e := range s.entries {
		names[i] = e.name
	}
	return names
}

// Run runs a single benchmark.
func (s *Suite) Run(name string, iterations int) Result {
	for _, e := range s.entries {
		if e.name == name {
			return run(e, iterations)
		}
	}
	return Result{Name: name, Error: fmt.Errorf("benchmark '%s' not found", name)}
}

// RunAll runs every benchmark and keeps the results.
func (s *Suite) RunAll(iterations int) []Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.results = make([]Result, 0, len(s.entries))
	for _, e := range s.entries {
		s.results = append(s.results, run(e, iterations))
	}
	return s.results
}

// Results returns the last RunAll results.
func (s *Suite) Results() []Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.results
}

// run stops at the first error; Iterations then counts the completed ones.
func run(e entry, iterations int) Result {
	runtime.GC()
	res := Result{Name: e.name, MemoryBefore: GetMemoryStats()}

	for range iterations {
		start := time.Now()
		err := e.fn()
		d := time.Since(start)
		if err != nil {
			res.Error = err
			break
		}
		if res.Iterations == 0 || d < res.Min {
			res.Min = d
		}
		res.Max = max(res.Max, d)
		res.Total += d
		res.Iterations++
	}

	res.MemoryAfter = GetMemoryStats()
	return res
}

// WriteText prints one line per result.
func WriteText(w io.Writer, results []Result) error {
	for _, r := range results {
		if _, err := fmt.Fprintln(w, r.String()); err != nil {
			return err
		}
	}
	return nil
}

// WriteCSV writes the results with durations in microseconds.
func WriteCSV(w io.Writer, results []Result) error {
	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"name", "iterations", "avg_us", "min_us", "max_us", "bytes_per_op", "allocs_per_op", "error"})
	for _, r := range results {
		errText := ""
		if r.Error != nil {
			errText = r.Error.Error()
		}
		_ = cw.Write([]string{
			r.Name,
			strconv.Itoa(r.Iterations),
			strconv.FormatInt(r.Avg().Microseconds(), 10),
			strconv.FormatInt(r.Min.Microseconds(), 10),
			strconv.FormatInt(r.Max.Microseconds(), 10),
			strconv.FormatUint(r.BytesPerOp(), 10),
			strconv.FormatUint(r.AllocsPerOp(), 10),
			errText,
		})
	}
	cw.Flush()
	return cw.Error()
}
