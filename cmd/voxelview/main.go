package main

import (
	"flag"
	"log"
	"runtime"

	"mini-voxel/internal/config"
	"mini-voxel/internal/manager"
	"mini-voxel/internal/profiling"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/xlab/closer"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	configPath := flag.String("config", "", "YAML config file (defaults to $VOXEL_CONFIG)")
	atlasPath := flag.String("atlas", "", "PNG texture atlas; a flat atlas is generated when empty")
	workers := flag.Int("workers", -1, "override streaming.workers (0 runs inline)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if *workers >= 0 {
		cfg.Streaming.Workers = *workers
	}

	reg := prometheus.NewRegistry()
	if err := profiling.Register(reg); err != nil {
		log.Fatalf("profiling: %v", err)
	}
	mgr, err := manager.New(manager.Options{Config: cfg, Registerer: reg})
	if err != nil {
		log.Fatalf("manager: %v", err)
	}
	closer.Bind(func() {
		mgr.Close()
		log.Println("voxelview: stopped")
	})
	defer closer.Close()

	if err := glfw.Init(); err != nil {
		log.Fatalf("glfw: %v", err)
	}
	defer glfw.Terminate()

	window, err := setupWindow()
	if err != nil {
		log.Fatalf("window: %v", err)
	}

	v, err := newViewer(window, mgr, cfg, *atlasPath)
	if err != nil {
		log.Fatalf("viewer: %v", err)
	}
	setupInputHandlers(window, v)
	v.run()
	v.dispose()
}
