package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"math"
	"net/http"
	"time"

	"mini-voxel/internal/config"
	"mini-voxel/internal/manager"
	"mini-voxel/internal/profiling"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/xlab/closer"
)

func main() {
	configPath := flag.String("config", "", "YAML config file (defaults to $VOXEL_CONFIG)")
	ticks := flag.Int("ticks", 600, "number of ticks to run")
	speed := flag.Float64("speed", 2, "viewer speed in blocks per tick")
	path := flag.String("path", "line", "viewer path: line or circle")
	workers := flag.Int("workers", -1, "override streaming.workers (0 runs inline)")
	seed := flag.Int64("seed", 0, "override the world seed when non-zero")
	metricsAddr := flag.String("metrics", "", "serve Prometheus metrics on this address and wait for Ctrl-C")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if *workers >= 0 {
		cfg.Streaming.Workers = *workers
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}

	reg := prometheus.NewRegistry()
	if err := profiling.Register(reg); err != nil {
		log.Fatalf("profiling: %v", err)
	}
	mgr, err := manager.New(manager.Options{Config: cfg, Registerer: reg})
	if err != nil {
		log.Fatalf("manager: %v", err)
	}
	closer.Bind(mgr.Close)
	defer closer.Close()

	if *metricsAddr != "" {
		srv := &http.Server{Addr: *metricsAddr, Handler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{})}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("metrics server: %v", err)
			}
		}()
		closer.Bind(func() { _ = srv.Close() })
		log.Printf("serving metrics on %s/metrics", *metricsAddr)
	}

	walk, err := viewerPath(*path, float32(*speed))
	if err != nil {
		log.Fatal(err)
	}
	stats := run(mgr, *ticks, walk)
	fmt.Println(stats)

	if *metricsAddr != "" {
		closer.Hold()
	}
}

// viewerPath returns the viewer position and direction for tick i.
func viewerPath(kind string, speed float32) (func(i int) (mgl32.Vec3, mgl32.Vec3), error) {
	const y = 72
	switch kind {
	case "line":
		return func(i int) (mgl32.Vec3, mgl32.Vec3) {
			return mgl32.Vec3{float32(i) * speed, y, 0}, mgl32.Vec3{1, 0, 0}
		}, nil
	case "circle":
		const radius = 96
		return func(i int) (mgl32.Vec3, mgl32.Vec3) {
			a := float64(float32(i)*speed) / radius
			pos := mgl32.Vec3{float32(radius * math.Cos(a)), y, float32(radius * math.Sin(a))}
			dir := mgl32.Vec3{float32(-math.Sin(a)), 0, float32(math.Cos(a))}
			return pos, dir
		}, nil
	default:
		return nil, fmt.Errorf("unknown path %q (want line or circle)", kind)
	}
}

type benchStats struct {
	ticks    int
	elapsed  time.Duration
	slowest  time.Duration
	loaded   int
	meshed   int
	pending  int
	retired  int
	slowTops string
}

func (s benchStats) String() string {
	avg := time.Duration(0)
	if s.ticks > 0 {
		avg = s.elapsed / time.Duration(s.ticks)
	}
	return fmt.Sprintf("%d ticks in %v (avg %v, slowest %v)\nloaded %d, meshed %d, pending %d, retired %d\nslowest tick: %s",
		s.ticks, s.elapsed.Round(time.Millisecond), avg.Round(time.Microsecond), s.slowest.Round(time.Microsecond),
		s.loaded, s.meshed, s.pending, s.retired, s.slowTops)
}

func run(mgr *manager.Manager, ticks int, walk func(int) (mgl32.Vec3, mgl32.Vec3)) benchStats {
	ctx := context.Background()
	var s benchStats
	start := time.Now()
	for i := range ticks {
		profiling.ResetFrame()
		pos, dir := walk(i)
		t0 := time.Now()
		frame := mgr.Tick(ctx, pos, dir)
		if d := time.Since(t0); d > s.slowest {
			s.slowest = d
			s.slowTops = profiling.TopN(5)
		}
		s.retired += len(frame.Retired)
		s.ticks++
	}
	s.elapsed = time.Since(start)
	s.loaded = mgr.Loaded()
	s.meshed = mgr.Meshed()
	s.pending = mgr.Pending()
	return s
}
