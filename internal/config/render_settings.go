package config

import "sync"

const (
	MinRenderDistance = 1
	MaxRenderDistance = 32
)

// RenderSettings holds the live render distance. The viewer changes it from
// input callbacks while the manager reads it every tick.
type RenderSettings struct {
	mu              sync.RWMutex
	renderDistance  int // in chunks
	retentionMargin int // retention radius minus render distance, 0 disables eviction
}

// NewRenderSettings seeds the settings from the streaming section.
func NewRenderSettings(s Streaming) *RenderSettings {
	rs := &RenderSettings{}
	if s.RetentionRadius > 0 {
		rs.retentionMargin = s.RetentionRadius - s.Radius
	}
	rs.SetRenderDistance(s.Radius)
	return rs
}

// RenderDistance returns the current render distance in chunks.
func (rs *RenderSettings) RenderDistance() int {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	return rs.renderDistance
}

// SetRenderDistance sets the render distance in chunks, clamped to a sane range.
func (rs *RenderSettings) SetRenderDistance(distance int) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if distance < MinRenderDistance {
		distance = MinRenderDistance
	}
	if distance > MaxRenderDistance {
		distance = MaxRenderDistance
	}
	rs.renderDistance = distance
}

// RetentionRadius returns the radius beyond which chunks are evicted, or 0
// when eviction is disabled. It follows the render distance.
func (rs *RenderSettings) RetentionRadius() int {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	if rs.retentionMargin <= 0 {
		return 0
	}
	return rs.renderDistance + rs.retentionMargin
}
