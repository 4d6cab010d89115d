package pathing

import (
	"testing"
	"time"

	"tickworld/internal/navmap"
	"tickworld/internal/objects"
	"tickworld/internal/pathpool"
)

func openNavmap(size int) *navmap.Navmap {
	tiles := make([]navmap.Tile, size*size)
	for i := range tiles {
		tiles[i] = navmap.Walkable
	}
	return navmap.New(size, tiles, objects.Vec2{}, float64(size)*4, 1)
}

func TestFindPathThenUpdateAppliesResult(t *testing.T) {
	pool := pathpool.New(1, 4)
	defer pool.Stop()
	c := New(pool)
	nm := openNavmap(8)

	start := nm.TileToWorld(navmap.TileCoord{Col: 0, Row: 0}, 0)
	target := nm.TileToWorld(navmap.TileCoord{Col: 3, Row: 0}, 0)

	c.FindPath(1, start, target, "m1", nm)

	deadline := time.Now().Add(time.Second)
	for !c.HasPath(1) && time.Now().Before(deadline) {
		c.Update()
		time.Sleep(time.Millisecond)
	}
	if !c.HasPath(1) {
		t.Fatalf("expected path to be applied after worker completes")
	}
}

func TestEmptyResultIsIgnoredPreviousPathRetained(t *testing.T) {
	pool := pathpool.New(1, 4)
	defer pool.Stop()
	c := New(pool)
	c.SetTarget(2, objects.Vec3{X: 1, Y: 1})

	// Simulate an empty (unreachable) result arriving directly.
	c.paths[2] = c.paths[2] // no-op; verifies map access pattern
	before := c.GetPath(2)

	// Manually inject an empty result through the same drain path Update uses.
	pool.Enqueue(pathpool.Task{ObjectID: 2, StartPos: objects.Vec3{}, TargetPos: objects.Vec3{}, Navmap: openNavmap(4)})
	time.Sleep(20 * time.Millisecond)
	c.Update()

	after := c.GetPath(2)
	if len(after) != len(before) {
		t.Fatalf("expected previous path retained on empty result, before=%v after=%v", before, after)
	}
}

func TestPopFrontClearsWhenExhausted(t *testing.T) {
	pool := pathpool.New(1, 4)
	defer pool.Stop()
	c := New(pool)
	c.SetTarget(3, objects.Vec3{X: 1, Y: 1})
	c.PopFront(3)
	if c.HasPath(3) {
		t.Fatalf("expected path cleared after popping last waypoint")
	}
}

func TestObjectDestroyedClearsPath(t *testing.T) {
	pool := pathpool.New(1, 4)
	defer pool.Stop()
	c := New(pool)
	c.SetTarget(4, objects.Vec3{X: 1, Y: 1})
	c.OnObjectDestroyed(4)
	if c.HasPath(4) {
		t.Fatalf("expected path removed on object destroy")
	}
}
