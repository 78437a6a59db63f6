package manager

import (
	"context"
	"errors"
	"fmt"
	"log"
	"maps"
	"slices"
	"sync"

	"mini-voxel/internal/config"
	"mini-voxel/internal/meshing"
	"mini-voxel/internal/physics"
	"mini-voxel/internal/profiling"
	"mini-voxel/internal/registry"
	"mini-voxel/internal/world"
	"mini-voxel/internal/worldgen"
	"mini-voxel/pkg/blockdef"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/prometheus/client_golang/prometheus"
)

// Options configures a Manager.
type Options struct {
	Config config.Config
	// Registry defaults to Config.Blocks when set, else the built-in block table.
	Registry *registry.Registry
	// Settings defaults to one seeded from Config.Streaming.
	Settings *config.RenderSettings
	// Registerer receives the manager metrics; nil keeps them private.
	Registerer prometheus.Registerer
}

// Frame is what the renderer consumes after a tick. Solid and Liquid hold
// every current non-empty mesh; a buffer replaces any previous upload for
// its chunk. Retired lists chunks whose GPU resources should be released.
type Frame struct {
	Center  world.ChunkCoord
	Solid   map[world.ChunkCoord]*meshing.Buffer
	Liquid  map[world.ChunkCoord]*meshing.Buffer
	Retired []world.ChunkCoord
}

type taskKind uint8

const (
	taskGenerate taskKind = iota
	taskMesh
)

type task struct {
	id     uint64
	kind   taskKind
	cancel context.CancelFunc
}

type result struct {
	coord world.ChunkCoord
	id    uint64
	kind  taskKind
	chunk *world.Chunk
	mesh  *meshing.ChunkMesh
	err   error
}

// Manager streams, generates and meshes chunks around a moving viewer.
// Tick, BlockAt, SetBlockAt and Pick are meant to be called from one
// goroutine; generation and meshing may run on the worker pool.
type Manager struct {
	cfg      config.Config
	reg      *registry.Registry
	settings *config.RenderSettings

	store   *world.Store
	gen     *worldgen.Generator
	loader  *world.Loader
	mesher  *meshing.Mesher
	meshes  *meshing.MeshSet
	metrics *Metrics

	// async mode only
	pool    *meshing.WorkerPool
	ctx     context.Context
	stop    context.CancelFunc
	results chan result

	mu     sync.Mutex
	tasks  map[world.ChunkCoord]*task
	nextID uint64

	// last eviction pass; repeated only when one of these changes
	evictedAt     world.ChunkCoord
	evictedRadius int
	evictedMod    uint64
}

// New wires a manager from opts. Workers == 0 runs generation and meshing
// inline during Tick.
func New(opts Options) (*Manager, error) {
	cfg := opts.Config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	reg := opts.Registry
	if reg == nil {
		var err error
		if cfg.Blocks != "" {
			reg, err = blockdef.LoadRegistry(cfg.Blocks)
		} else {
			reg, err = registry.Default()
		}
		if err != nil {
			return nil, err
		}
	}
	gen, err := worldgen.New(cfg.Seed, cfg.World, reg)
	if err != nil {
		return nil, fmt.Errorf("world generator: %w", err)
	}
	metrics, err := NewMetrics(opts.Registerer)
	if err != nil {
		return nil, err
	}
	settings := opts.Settings
	if settings == nil {
		settings = config.NewRenderSettings(cfg.Streaming)
	}

	m := &Manager{
		cfg:      cfg,
		reg:      reg,
		settings: settings,
		store:    world.NewStore(),
		gen:      gen,
		loader:   world.NewLoader(),
		mesher:   meshing.NewMesher(reg, cfg.World.SeaLevel, cfg.Mesh),
		meshes:   meshing.NewMeshSet(),
		metrics:  metrics,
		tasks:    make(map[world.ChunkCoord]*task),
	}
	m.ctx, m.stop = context.WithCancel(context.Background())
	if w := cfg.Streaming.Workers; w > 0 {
		maxPending := max(cfg.Streaming.MaxPending, w)
		m.pool = meshing.NewWorkerPool(w, maxPending)
		m.results = make(chan result, maxPending)
	}
	return m, nil
}

// Tick advances streaming by one step around the viewer and returns the
// meshes to draw.
func (m *Manager) Tick(ctx context.Context, viewerPos, viewerDir mgl32.Vec3) Frame {
	defer profiling.Track("manager.Tick")()
	m.gen.Tick()

	center := world.ChunkCoordOfPos(viewerPos)
	frame := Frame{Center: center}

	tickCtx := ctx
	if budget := m.cfg.Streaming.TickBudget; budget > 0 {
		var cancel context.CancelFunc
		tickCtx, cancel = context.WithTimeout(ctx, budget)
		defer cancel()
	}

	visible := m.loader.VisibleSet(center, viewerDir, m.settings.RenderDistance())
	m.drain(visible)

	coords := slices.Collect(maps.Keys(visible))
	slices.SortFunc(coords, func(a, b world.ChunkCoord) int {
		return distSq(a, center) - distSq(b, center)
	})

	// Generate everything missing first so meshes see their neighbors.
	for _, coord := range coords {
		chunk, present := m.store.ChunkAt(coord)
		switch vis := visible[coord]; {
		case !present && vis:
			if tickCtx.Err() == nil {
				m.generate(tickCtx, coord)
			}
		case !present:
			m.cancelTask(coord)
			m.loader.Forget(coord)
		case !vis:
			if !chunk.IsDirty() {
				chunk.MarkDirty()
			}
			m.cancelTask(coord)
			if m.meshes.Delete(coord) {
				frame.Retired = append(frame.Retired, coord)
				m.metrics.meshesRetired.Inc()
			}
		}
	}
	for _, coord := range coords {
		if !visible[coord] || tickCtx.Err() != nil {
			continue
		}
		if chunk, ok := m.store.ChunkAt(coord); ok && chunk.IsDirty() {
			m.remesh(coord)
		}
	}

	frame.Retired = append(frame.Retired, m.evict(center)...)

	m.metrics.loadedChunks.Set(float64(m.store.Len()))
	m.metrics.pendingTasks.Set(float64(m.Pending()))
	frame.Solid = m.meshes.Solid()
	frame.Liquid = m.meshes.Liquid()
	return frame
}

func distSq(a, b world.ChunkCoord) int {
	dx, dy, dz := a.X-b.X, a.Y-b.Y, a.Z-b.Z
	return dx*dx + dy*dy + dz*dz
}

// generate populates a missing chunk inline, or schedules it on the pool.
func (m *Manager) generate(tickCtx context.Context, coord world.ChunkCoord) {
	if m.pool == nil {
		chunk, err := m.gen.Generate(tickCtx, coord)
		if err != nil {
			// budget expiry is retried next tick
			if !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled) {
				log.Printf("manager: generate %v: %v", coord, err)
			}
			return
		}
		m.install(coord, chunk)
		return
	}
	m.schedule(coord, taskGenerate, func(ctx context.Context) result {
		chunk, err := m.gen.Generate(ctx, coord)
		return result{chunk: chunk, err: err}
	})
}

// remesh rebuilds a dirty visible chunk inline, or schedules it on the pool.
func (m *Manager) remesh(coord world.ChunkCoord) {
	if m.pool == nil {
		if m.mesher.GenerateMesh(coord, m.store, m.meshes) {
			m.metrics.meshesBuilt.Inc()
		}
		return
	}
	m.schedule(coord, taskMesh, func(ctx context.Context) result {
		mesh, err := m.mesher.Build(ctx, coord, m.store)
		return result{mesh: mesh, err: err}
	})
}

// schedule submits fn for coord unless a task for it is already in flight
// or the pool is saturated.
func (m *Manager) schedule(coord world.ChunkCoord, kind taskKind, fn func(context.Context) result) {
	m.mu.Lock()
	if _, busy := m.tasks[coord]; busy {
		m.mu.Unlock()
		return
	}
	m.nextID++
	id := m.nextID
	ctx, cancel := context.WithCancel(m.ctx)
	t := &task{id: id, kind: kind, cancel: cancel}
	m.tasks[coord] = t
	m.mu.Unlock()

	ok := m.pool.TrySubmit(func() {
		r := fn(ctx)
		r.coord, r.id, r.kind = coord, id, kind
		select {
		case m.results <- r:
		case <-m.ctx.Done():
		}
	})
	if !ok {
		m.mu.Lock()
		if m.tasks[coord] == t {
			delete(m.tasks, coord)
		}
		m.mu.Unlock()
		cancel()
	}
}

// cancelTask drops the in-flight task for coord, if any. A result that still
// arrives is discarded by drain.
func (m *Manager) cancelTask(coord world.ChunkCoord) {
	m.mu.Lock()
	t, ok := m.tasks[coord]
	if ok {
		delete(m.tasks, coord)
	}
	m.mu.Unlock()
	if ok {
		t.cancel()
	}
}

// drain installs finished task results that are still wanted.
func (m *Manager) drain(visible map[world.ChunkCoord]bool) {
	if m.results == nil {
		return
	}
	for {
		select {
		case r := <-m.results:
			m.accept(r, visible)
		default:
			return
		}
	}
}

func (m *Manager) accept(r result, visible map[world.ChunkCoord]bool) {
	m.mu.Lock()
	t, ok := m.tasks[r.coord]
	current := ok && t.id == r.id
	if current {
		delete(m.tasks, r.coord)
	}
	m.mu.Unlock()
	if current {
		t.cancel()
	}

	if !current || !visible[r.coord] || r.err != nil {
		if r.err != nil && !errors.Is(r.err, context.Canceled) {
			log.Printf("manager: task for %v failed: %v", r.coord, r.err)
		}
		m.metrics.resultsDiscarded.Inc()
		return
	}

	switch r.kind {
	case taskGenerate:
		m.install(r.coord, r.chunk)
	case taskMesh:
		chunk, ok := m.store.ChunkAt(r.coord)
		if !ok {
			m.metrics.resultsDiscarded.Inc()
			return
		}
		m.meshes.Put(r.mesh)
		chunk.MarkClean(r.mesh.Version)
		m.metrics.meshesBuilt.Inc()
	}
}

// install adds a generated chunk and dirties its loaded face neighbors so
// their boundary faces are rebuilt against it. Neighbors whose mesh is still
// being built are included: the version bump keeps that mesh from marking
// them clean.
func (m *Manager) install(coord world.ChunkCoord, chunk *world.Chunk) {
	if err := m.store.AddChunk(coord, chunk); err != nil {
		log.Printf("manager: %v", err)
		return
	}
	m.metrics.chunksGenerated.Inc()
	for f := range registry.NumFaces {
		if nb, ok := m.store.ChunkAt(coord.Neighbor(f)); ok {
			nb.MarkDirty()
		}
	}
}

// evict unloads chunks beyond the retention radius and returns the
// coordinates whose meshes were retired.
func (m *Manager) evict(center world.ChunkCoord) []world.ChunkCoord {
	radius := m.settings.RetentionRadius()
	if radius <= 0 {
		return nil
	}
	if center == m.evictedAt && radius == m.evictedRadius && m.store.ModCount() == m.evictedMod {
		return nil
	}
	var retired []world.ChunkCoord
	for _, coord := range m.store.EvictBeyond(center, radius) {
		m.loader.Forget(coord)
		m.cancelTask(coord)
		m.metrics.chunksEvicted.Inc()
		if m.meshes.Delete(coord) {
			retired = append(retired, coord)
			m.metrics.meshesRetired.Inc()
		}
	}
	m.evictedAt, m.evictedRadius, m.evictedMod = center, radius, m.store.ModCount()
	return retired
}

// BlockAt returns the block at a world position; ok is false if its chunk is
// not loaded.
func (m *Manager) BlockAt(x, y, z int) (registry.BlockType, bool) {
	return m.store.BlockAt(x, y, z)
}

// SetBlockAt edits a loaded block. The owning chunk and every chunk sharing
// the touched boundary face are remeshed on the next tick.
func (m *Manager) SetBlockAt(x, y, z int, t registry.BlockType) bool {
	if !m.store.SetBlockAt(x, y, z, t) {
		log.Printf("manager: edit at (%d,%d,%d) ignored, chunk not loaded", x, y, z)
		return false
	}
	return true
}

// HeightAt returns the generated surface height at (x, z).
func (m *Manager) HeightAt(x, z float64) float64 {
	return m.gen.HeightAtPos(x, z)
}

// Pick casts a ray against loaded solid blocks.
func (m *Manager) Pick(origin, dir mgl32.Vec3, maxDistance float32) physics.RaycastResult {
	steps := int(maxDistance*3) + 1
	return physics.CastSolid(m.Solids(), origin, dir, maxDistance, steps)
}

// Solids returns a solidity view of the loaded world.
func (m *Manager) Solids() physics.Solids {
	return physics.Solids{Store: m.store, Registry: m.reg}
}

// Registry returns the block registry in use.
func (m *Manager) Registry() *registry.Registry { return m.reg }

// Settings returns the live render settings.
func (m *Manager) Settings() *config.RenderSettings { return m.settings }

// Loaded returns the number of chunks in the store.
func (m *Manager) Loaded() int { return m.store.Len() }

// Meshed returns the number of chunks with a current mesh.
func (m *Manager) Meshed() int { return m.meshes.Len() }

// Pending returns the number of in-flight tasks.
func (m *Manager) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tasks)
}

// Close cancels in-flight tasks and stops the worker pool.
func (m *Manager) Close() {
	m.stop()
	if m.pool != nil {
		m.pool.Shutdown()
	}
	m.mu.Lock()
	clear(m.tasks)
	m.mu.Unlock()
}
