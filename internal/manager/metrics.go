package manager

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the manager's Prometheus collectors.
type Metrics struct {
	chunksGenerated  prometheus.Counter
	meshesBuilt      prometheus.Counter
	resultsDiscarded prometheus.Counter
	chunksEvicted    prometheus.Counter
	meshesRetired    prometheus.Counter
	loadedChunks     prometheus.Gauge
	pendingTasks     prometheus.Gauge
}

// NewMetrics creates the collectors and registers them on reg. A nil reg
// gets a private registry so several managers can coexist.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{
		chunksGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "voxel",
			Name:      "chunks_generated_total",
			Help:      "Chunks populated by the world generator and installed.",
		}),
		meshesBuilt: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "voxel",
			Name:      "meshes_built_total",
			Help:      "Chunk meshes installed.",
		}),
		resultsDiscarded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "voxel",
			Name:      "task_results_discarded_total",
			Help:      "Finished tasks whose result was dropped (cancelled, superseded or failed).",
		}),
		chunksEvicted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "voxel",
			Name:      "chunks_evicted_total",
			Help:      "Chunks removed beyond the retention radius.",
		}),
		meshesRetired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "voxel",
			Name:      "meshes_retired_total",
			Help:      "Meshes handed back to the renderer for disposal.",
		}),
		loadedChunks: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "voxel",
			Name:      "chunks_loaded",
			Help:      "Chunks currently in the store.",
		}),
		pendingTasks: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "voxel",
			Name:      "tasks_pending",
			Help:      "Generation and meshing tasks queued or running.",
		}),
	}
	for _, c := range []prometheus.Collector{
		m.chunksGenerated, m.meshesBuilt, m.resultsDiscarded, m.chunksEvicted,
		m.meshesRetired, m.loadedChunks, m.pendingTasks,
	} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register manager metrics: %w", err)
		}
	}
	return m, nil
}
