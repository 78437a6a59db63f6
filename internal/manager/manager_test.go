package manager

import (
	"bytes"
	"context"
	"errors"
	"log"
	"math"
	"os"
	"testing"
	"time"

	"mini-voxel/internal/config"
	"mini-voxel/internal/registry"
	"mini-voxel/internal/world"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var forward = mgl32.Vec3{0, 0, 1}

func testConfig(workers int) config.Config {
	cfg := config.Default()
	cfg.Streaming.Radius = 1
	cfg.Streaming.RetentionRadius = 0
	cfg.Streaming.Workers = workers
	cfg.Streaming.MaxPending = 8
	cfg.Streaming.TickBudget = 0
	return cfg
}

func newTestManager(t *testing.T, cfg config.Config) *Manager {
	t.Helper()
	m, err := New(Options{Config: cfg})
	require.NoError(t, err)
	t.Cleanup(m.Close)
	return m
}

// chunkCenter returns a world position in the middle of chunk (x, y, z).
func chunkCenter(x, y, z int) mgl32.Vec3 {
	return mgl32.Vec3{float32(x*16 + 8), float32(y*16 + 8), float32(z*16 + 8)}
}

func cube(center world.ChunkCoord, r int) []world.ChunkCoord {
	var out []world.ChunkCoord
	for dy := -r; dy <= r; dy++ {
		for dz := -r; dz <= r; dz++ {
			for dx := -r; dx <= r; dx++ {
				out = append(out, center.Offset(dx, dy, dz))
			}
		}
	}
	return out
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig(0)
	cfg.Streaming.RetentionRadius = 1
	_, err := New(Options{Config: cfg})
	assert.ErrorIs(t, err, config.ErrInvalid)
}

func TestNewRegistersMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := New(Options{Config: testConfig(0), Registerer: reg})
	require.NoError(t, err)
	defer m.Close()

	_, err = New(Options{Config: testConfig(0), Registerer: reg})
	assert.Error(t, err, "a second manager on the same registry must fail")
}

func TestSyncTickLoadsAndMeshesVisibleCube(t *testing.T) {
	m := newTestManager(t, testConfig(0))

	frame := m.Tick(context.Background(), chunkCenter(0, 3, 0), forward)
	assert.Equal(t, world.ChunkCoord{Y: 3}, frame.Center)
	assert.Equal(t, 27, m.Loaded())
	assert.Equal(t, 27, m.Meshed())
	assert.Equal(t, 0, m.Pending())
	assert.Empty(t, frame.Retired)
	for _, c := range cube(frame.Center, 1) {
		chunk, ok := m.store.ChunkAt(c)
		require.True(t, ok, "chunk %v loaded", c)
		assert.False(t, chunk.IsDirty(), "chunk %v meshed", c)
	}
	for c, b := range frame.Solid {
		assert.False(t, b.Empty(), "frame holds only non-empty buffers (%v)", c)
	}

	// A second tick in place does no work.
	m.Tick(context.Background(), chunkCenter(0, 3, 0), forward)
	assert.Equal(t, 27.0, testutil.ToFloat64(m.metrics.chunksGenerated))
	assert.Equal(t, 27.0, testutil.ToFloat64(m.metrics.meshesBuilt))
}

func TestGeneratedBlocksMatchGenerator(t *testing.T) {
	m := newTestManager(t, testConfig(0))
	m.Tick(context.Background(), chunkCenter(0, 3, 0), forward)

	for x := -16; x < 32; x += 5 {
		for z := -16; z < 32; z += 7 {
			for y := 32; y < 80; y += 3 {
				b, ok := m.BlockAt(x, y, z)
				require.True(t, ok)
				require.Equal(t, m.gen.BlockAt(x, y, z), b, "block (%d,%d,%d)", x, y, z)
			}
		}
	}
	assert.Equal(t, m.gen.HeightAt(3, 4), m.HeightAt(3, 4))
}

func TestMovingViewerRetiresAndRemeshes(t *testing.T) {
	m := newTestManager(t, testConfig(0))
	ctx := context.Background()
	m.Tick(ctx, chunkCenter(0, 3, 0), forward)

	frame := m.Tick(ctx, chunkCenter(2, 3, 0), forward)
	assert.Len(t, frame.Retired, 18)
	for _, c := range frame.Retired {
		assert.LessOrEqual(t, c.X, 0)
		assert.NotContains(t, frame.Solid, c)
		chunk, ok := m.store.ChunkAt(c)
		require.True(t, ok, "retired chunks stay loaded without eviction")
		assert.True(t, chunk.IsDirty(), "retired chunk %v must be dirty", c)
	}
	assert.Equal(t, 45, m.Loaded())
	assert.Equal(t, 27, m.Meshed())

	// Coming back remeshes the kept chunks instead of regenerating them.
	frame = m.Tick(ctx, chunkCenter(0, 3, 0), forward)
	assert.Equal(t, 45.0, testutil.ToFloat64(m.metrics.chunksGenerated))
	assert.Len(t, frame.Retired, 18)
	assert.Equal(t, 27, m.Meshed())
}

func TestEvictionBeyondRetentionRadius(t *testing.T) {
	cfg := testConfig(0)
	cfg.Streaming.RetentionRadius = 2
	m := newTestManager(t, cfg)
	ctx := context.Background()
	m.Tick(ctx, chunkCenter(0, 3, 0), forward)

	frame := m.Tick(ctx, chunkCenter(4, 3, 0), forward)
	assert.Equal(t, 27, m.Loaded())
	assert.Len(t, frame.Retired, 27)
	assert.Equal(t, 27.0, testutil.ToFloat64(m.metrics.chunksEvicted))
	assert.Equal(t, 27, m.loader.Tracked())
	for _, c := range m.store.Coords() {
		assert.LessOrEqual(t, c.ChebyshevDistance(frame.Center), 1)
	}
}

func TestEditRemeshesOnNextTick(t *testing.T) {
	m := newTestManager(t, testConfig(0))
	ctx := context.Background()
	m.Tick(ctx, chunkCenter(0, 3, 0), forward)

	// Edit on the east face of chunk (0,3,0).
	require.True(t, m.SetBlockAt(15, 56, 8, registry.BlockTypeStone))
	b, ok := m.BlockAt(15, 56, 8)
	require.True(t, ok)
	assert.Equal(t, registry.BlockTypeStone, b)

	owner, _ := m.store.ChunkAt(world.ChunkCoord{Y: 3})
	east, _ := m.store.ChunkAt(world.ChunkCoord{X: 1, Y: 3})
	assert.True(t, owner.IsDirty())
	assert.True(t, east.IsDirty())

	m.Tick(ctx, chunkCenter(0, 3, 0), forward)
	assert.False(t, owner.IsDirty())
	assert.False(t, east.IsDirty())
	assert.Equal(t, 29.0, testutil.ToFloat64(m.metrics.meshesBuilt))

	assert.False(t, m.SetBlockAt(1000, 56, 8, registry.BlockTypeStone), "unloaded edit fails")
}

func TestPickFindsSurface(t *testing.T) {
	m := newTestManager(t, testConfig(0))
	s := int(math.Floor(m.HeightAt(8, 8)))
	origin := mgl32.Vec3{8.5, float32(s) + 5.5, 8.5}
	m.Tick(context.Background(), origin, forward)

	res := m.Pick(origin, mgl32.Vec3{0, -1, 0}, 20)
	require.True(t, res.Hit)
	assert.Equal(t, [3]int{8, s, 8}, res.Block)
	assert.Equal(t, [3]int{8, s + 1, 8}, res.Previous)
	assert.Equal(t, registry.FaceTop, res.Face)
}

func TestTickBudgetDefersWork(t *testing.T) {
	m := newTestManager(t, testConfig(0))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m.Tick(ctx, chunkCenter(0, 3, 0), forward)
	assert.Equal(t, 0, m.Loaded(), "an expired tick schedules nothing")

	m.Tick(context.Background(), chunkCenter(0, 3, 0), forward)
	assert.Equal(t, 27, m.Loaded())
}

// converge ticks until every visible chunk is loaded, meshed and clean.
func converge(t *testing.T, m *Manager, pos mgl32.Vec3) {
	t.Helper()
	center := world.ChunkCoordOfPos(pos)
	require.Eventually(t, func() bool {
		m.Tick(context.Background(), pos, forward)
		if m.Pending() != 0 {
			return false
		}
		for _, c := range cube(center, m.settings.RenderDistance()) {
			chunk, ok := m.store.ChunkAt(c)
			if !ok || chunk.IsDirty() {
				return false
			}
			if _, ok := m.meshes.Get(c); !ok {
				return false
			}
		}
		return true
	}, 10*time.Second, 5*time.Millisecond)
}

func TestAsyncMatchesSync(t *testing.T) {
	pos := chunkCenter(1, 3, -1)

	sync := newTestManager(t, testConfig(0))
	sync.Tick(context.Background(), pos, forward)

	async := newTestManager(t, testConfig(2))
	converge(t, async, pos)

	for _, c := range cube(world.ChunkCoordOfPos(pos), 1) {
		want, ok := sync.meshes.Get(c)
		require.True(t, ok)
		got, ok := async.meshes.Get(c)
		require.True(t, ok)
		assert.Equal(t, want.Solid.Quads(), got.Solid.Quads(), "solid quads of %v", c)
		assert.Equal(t, want.Liquid.Quads(), got.Liquid.Quads(), "liquid quads of %v", c)
	}
}

func TestAsyncDiscardsResultsForLeftChunks(t *testing.T) {
	cfg := testConfig(1)
	m := newTestManager(t, cfg)

	m.Tick(context.Background(), chunkCenter(0, 3, 0), forward)
	require.Equal(t, cfg.Streaming.MaxPending, m.Pending())

	far := chunkCenter(10, 3, 0)
	converge(t, m, far)

	farCenter := world.ChunkCoordOfPos(far)
	for _, c := range m.store.Coords() {
		assert.LessOrEqual(t, c.ChebyshevDistance(farCenter), 1, "stale result for %v installed", c)
	}
	assert.Eventually(t, func() bool {
		m.Tick(context.Background(), far, forward)
		return testutil.ToFloat64(m.metrics.resultsDiscarded) == float64(cfg.Streaming.MaxPending)
	}, 5*time.Second, 5*time.Millisecond)
}

func TestAsyncEditIsRemeshed(t *testing.T) {
	m := newTestManager(t, testConfig(2))
	pos := chunkCenter(0, 3, 0)
	converge(t, m, pos)

	require.True(t, m.SetBlockAt(4, 50, 4, registry.BlockTypeSand))
	converge(t, m, pos)

	b, ok := m.BlockAt(4, 50, 4)
	require.True(t, ok)
	assert.Equal(t, registry.BlockTypeSand, b)
}

func TestNewLoadsBlockDefinitions(t *testing.T) {
	cfg := testConfig(0)
	cfg.Blocks = "../../configs/blocks.yaml"
	m := newTestManager(t, cfg)
	stone, ok := m.Registry().Lookup("stone")
	require.True(t, ok)
	assert.True(t, m.Registry().IsSolid(stone))

	cfg.Blocks = "does-not-exist.yaml"
	_, err := New(Options{Config: cfg})
	assert.Error(t, err)
}

// failingContext reports an error that is neither a deadline nor a cancellation.
type failingContext struct{ context.Context }

func (failingContext) Err() error { return errors.New("generator offline") }

func TestInlineGenerateFailureIsLogged(t *testing.T) {
	m := newTestManager(t, testConfig(0))
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	expired, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()
	m.generate(expired, world.ChunkCoord{Y: 3})
	assert.Empty(t, buf.String(), "running out of tick budget is not an error")

	m.generate(failingContext{context.Background()}, world.ChunkCoord{Y: 3})
	assert.Contains(t, buf.String(), "generator offline")
	assert.Equal(t, 0, m.Loaded())
}

func TestEvictionRunsOnlyWhenSomethingChanged(t *testing.T) {
	cfg := testConfig(0)
	cfg.Streaming.RetentionRadius = 2
	m := newTestManager(t, cfg)
	ctx := context.Background()
	center := world.ChunkCoord{Y: 3}
	m.Tick(ctx, chunkCenter(0, 3, 0), forward)
	assert.Equal(t, center, m.evictedAt)
	assert.Equal(t, m.store.ModCount(), m.evictedMod)

	m.Tick(ctx, chunkCenter(0, 3, 0), forward)
	assert.Equal(t, m.store.ModCount(), m.evictedMod, "a settled tick changes nothing")

	// A chunk appearing beyond the radius changes the store and is evicted
	// even though the viewer did not move.
	far := world.ChunkCoord{X: 10, Y: 3}
	require.NoError(t, m.store.AddChunk(far, world.NewChunk(far)))
	assert.Empty(t, m.evict(center))
	assert.False(t, m.store.HasChunk(far))
	assert.Equal(t, 27, m.Loaded())
	assert.Equal(t, m.store.ModCount(), m.evictedMod)
}
