package world

import (
	"errors"
	"slices"
	"testing"

	"mini-voxel/internal/registry"
)

func cleanChunk(s *Store, coord ChunkCoord) *Chunk {
	c := NewChunk(coord)
	if err := s.AddChunk(coord, c); err != nil {
		panic(err)
	}
	c.MarkClean(c.Version())
	return c
}

func TestAddChunkRejectsDuplicates(t *testing.T) {
	s := NewStore()
	if err := s.AddChunk(ChunkCoord{1, 0, 1}, NewChunk(ChunkCoord{})); err != nil {
		t.Fatalf("first add: %v", err)
	}
	err := s.AddChunk(ChunkCoord{1, 0, 1}, NewChunk(ChunkCoord{}))
	if !errors.Is(err, ErrChunkExists) {
		t.Fatalf("expected ErrChunkExists, got %v", err)
	}
	if s.Len() != 1 || s.ModCount() != 1 {
		t.Fatalf("unexpected store state: len=%d mod=%d", s.Len(), s.ModCount())
	}
	c, ok := s.ChunkAt(ChunkCoord{1, 0, 1})
	if !ok || c.Coord != (ChunkCoord{1, 0, 1}) {
		t.Fatal("installed chunk must carry its coordinate")
	}
}

func TestBlockAtAbsentChunk(t *testing.T) {
	s := NewStore()
	b, ok := s.BlockAt(100, -5, 3)
	if ok || b != registry.BlockTypeAir {
		t.Fatalf("absent chunk should report (air, false), got (%v, %v)", b, ok)
	}
	if s.SetBlockAt(100, -5, 3, registry.BlockTypeStone) {
		t.Fatal("edit on an unloaded chunk must fail")
	}
}

func TestSetBlockAtReadsBack(t *testing.T) {
	s := NewStore()
	cleanChunk(s, ChunkCoord{-1, 0, 0})
	if !s.SetBlockAt(-3, 7, 2, registry.BlockTypeDirt) {
		t.Fatal("set failed")
	}
	b, ok := s.BlockAt(-3, 7, 2)
	if !ok || b != registry.BlockTypeDirt {
		t.Fatalf("got (%v, %v)", b, ok)
	}
}

func TestSetBlockAtDirtiesBoundaryNeighbors(t *testing.T) {
	s := NewStore()
	center := cleanChunk(s, ChunkCoord{0, 0, 0})
	west := cleanChunk(s, ChunkCoord{-1, 0, 0})
	east := cleanChunk(s, ChunkCoord{1, 0, 0})
	below := cleanChunk(s, ChunkCoord{0, -1, 0})
	north := cleanChunk(s, ChunkCoord{0, 0, 1})

	// Interior edit only dirties the owner.
	s.SetBlockAt(5, 5, 5, registry.BlockTypeStone)
	if !center.IsDirty() {
		t.Fatal("owner must be dirty")
	}
	for _, c := range []*Chunk{west, east, below, north} {
		if c.IsDirty() {
			t.Fatalf("neighbor %v dirtied by interior edit", c.Coord)
		}
	}

	// Corner edit at local (0,0,15) touches west, below and north.
	s.SetBlockAt(0, 0, 15, registry.BlockTypeStone)
	for _, c := range []*Chunk{west, below, north} {
		if !c.IsDirty() {
			t.Errorf("neighbor %v should be dirty", c.Coord)
		}
	}
	if east.IsDirty() {
		t.Error("east neighbor does not share the touched faces")
	}
}

func TestEvictBeyond(t *testing.T) {
	s := NewStore()
	for _, c := range []ChunkCoord{{0, 0, 0}, {2, 0, 0}, {3, -1, 0}, {0, 0, -4}} {
		cleanChunk(s, c)
	}
	removed := s.EvictBeyond(ChunkCoord{}, 2)
	slices.SortFunc(removed, func(a, b ChunkCoord) int { return a.X - b.X })
	if len(removed) != 2 || removed[0] != (ChunkCoord{0, 0, -4}) || removed[1] != (ChunkCoord{3, -1, 0}) {
		t.Fatalf("unexpected eviction: %v", removed)
	}
	if s.Len() != 2 || !s.HasChunk(ChunkCoord{2, 0, 0}) {
		t.Fatal("chunks within radius must survive")
	}
	if !s.RemoveChunk(ChunkCoord{2, 0, 0}) || s.RemoveChunk(ChunkCoord{2, 0, 0}) {
		t.Fatal("RemoveChunk must report presence")
	}
	if got := s.Coords(); len(got) != 1 || got[0] != (ChunkCoord{}) {
		t.Fatalf("coords: %v", got)
	}
}

func TestModCountTracksMembership(t *testing.T) {
	s := NewStore()
	cleanChunk(s, ChunkCoord{})
	cleanChunk(s, ChunkCoord{X: 5})
	s.SetBlockAt(1, 1, 1, registry.BlockTypeStone)
	if got := s.ModCount(); got != 2 {
		t.Fatalf("block edits must not count: mod=%d", got)
	}
	if s.RemoveChunk(ChunkCoord{Z: 9}) || s.ModCount() != 2 {
		t.Fatal("removing an absent chunk changes nothing")
	}
	if removed := s.EvictBeyond(ChunkCoord{}, 1); len(removed) != 1 || s.ModCount() != 3 {
		t.Fatalf("evict: removed %v, mod=%d", removed, s.ModCount())
	}
	if !s.RemoveChunk(ChunkCoord{}) || s.ModCount() != 4 {
		t.Fatalf("remove: mod=%d", s.ModCount())
	}
}
