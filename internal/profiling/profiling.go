package profiling

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Per-tick stage timer. Totals accumulate until ResetFrame; when a
// Prometheus registerer is attached every sample is also observed into
// voxel_stage_seconds{stage}.

var (
	mu          sync.Mutex
	frameTotals = make(map[string]time.Duration)
	stageHist   *prometheus.HistogramVec
)

// Register attaches the stage histogram to reg. Calling it again replaces
// the histogram used for new samples.
func Register(reg prometheus.Registerer) error {
	h := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "voxel",
		Name:      "stage_seconds",
		Help:      "Time spent per tracked stage.",
		Buckets:   prometheus.ExponentialBuckets(50e-6, 2, 14),
	}, []string{"stage"})
	if err := reg.Register(h); err != nil {
		return fmt.Errorf("register stage histogram: %w", err)
	}
	mu.Lock()
	stageHist = h
	mu.Unlock()
	return nil
}

// Track returns a stop function that records the elapsed time under the given name.
// Usage: defer profiling.Track("subsystem.Operation")()
func Track(name string) func() {
	start := time.Now()
	return func() {
		d := time.Since(start)
		mu.Lock()
		frameTotals[name] += d
		h := stageHist
		mu.Unlock()
		if h != nil {
			h.WithLabelValues(name).Observe(d.Seconds())
		}
	}
}

// ResetFrame clears current per-tick totals. Call at the start of each tick.
func ResetFrame() {
	mu.Lock()
	clear(frameTotals)
	mu.Unlock()
}

// Snapshot returns a copy of current per-tick totals.
func Snapshot() map[string]time.Duration {
	mu.Lock()
	defer mu.Unlock()
	return maps.Clone(frameTotals)
}

// TopN formats the n largest totals of the current tick, slowest first.
// Example: "manager.Tick:4.2ms, meshing.Build:2.1ms"
func TopN(n int) string {
	ss := Snapshot()
	names := slices.Collect(maps.Keys(ss))
	slices.SortFunc(names, func(a, b string) int {
		if ss[a] != ss[b] {
			if ss[a] > ss[b] {
				return -1
			}
			return 1
		}
		return strings.Compare(a, b)
	})
	n = min(n, len(names))
	parts := make([]string, 0, n)
	for _, name := range names[:n] {
		parts = append(parts, fmt.Sprintf("%s:%.1fms", name, float64(ss[name].Microseconds())/1000.0))
	}
	return strings.Join(parts, ", ")
}

// SumWithPrefix returns the total of all current-tick entries whose name
// starts with prefix, e.g. "meshing.".
func SumWithPrefix(prefix string) time.Duration {
	mu.Lock()
	defer mu.Unlock()
	var total time.Duration
	for name, d := range frameTotals {
		if strings.HasPrefix(name, prefix) {
			total += d
		}
	}
	return total
}
