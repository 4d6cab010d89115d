package quadtree

import (
	"testing"

	"tickworld/internal/objects"
)

func TestInsertQuery(t *testing.T) {
	q := New(objects.Vec2{X: -100, Y: -100}, objects.Vec2{X: 100, Y: 100})
	q.Insert(1, objects.Vec2{X: 0, Y: 0}, objects.Vec2{X: 2, Y: 2})
	q.Insert(2, objects.Vec2{X: 50, Y: 50}, objects.Vec2{X: 2, Y: 2})
	q.Insert(3, objects.Vec2{X: -90, Y: -90}, objects.Vec2{X: 2, Y: 2})

	got := q.Query(objects.AABB{Min: objects.Vec2{X: -5, Y: -5}, Max: objects.Vec2{X: 5, Y: 5}})
	if len(got) != 1 || got[0] != 1 {
		t.Fatalf("expected only id 1, got %v", got)
	}
}

func TestClearReusesNodesAndEmptiesResults(t *testing.T) {
	q := New(objects.Vec2{X: -10, Y: -10}, objects.Vec2{X: 10, Y: 10})
	q.Insert(1, objects.Vec2{X: 0, Y: 0}, objects.Vec2{X: 1, Y: 1})
	q.Clear()
	got := q.Query(objects.AABB{Min: objects.Vec2{X: -10, Y: -10}, Max: objects.Vec2{X: 10, Y: 10}})
	if len(got) != 0 {
		t.Fatalf("expected empty tree after Clear, got %v", got)
	}
}

func TestSplitOnCapacity(t *testing.T) {
	q := New(objects.Vec2{X: 0, Y: 0}, objects.Vec2{X: 100, Y: 100})
	for i := 0; i < nodeCapacity+5; i++ {
		q.Insert(objects.ID(i+1), objects.Vec2{X: 10, Y: 10}, objects.Vec2{X: 1, Y: 1})
	}
	got := q.Query(objects.AABB{Min: objects.Vec2{X: 0, Y: 0}, Max: objects.Vec2{X: 100, Y: 100}})
	if len(got) != nodeCapacity+5 {
		t.Fatalf("expected %d results after split, got %d", nodeCapacity+5, len(got))
	}
	rects := q.DebugRects()
	if len(rects) < 5 {
		t.Fatalf("expected split to produce multiple debug rects, got %d", len(rects))
	}
}

func TestNoObjectInMultipleQuadtreesSameTick(t *testing.T) {
	// This is enforced structurally: each Quadtree belongs to one map and
	// the tick engine inserts an object into exactly one map's tree per
	// tick (its CurrentMap). Regression-test the single-tree Insert/Query
	// contract that property depends on.
	q := New(objects.Vec2{X: -50, Y: -50}, objects.Vec2{X: 50, Y: 50})
	q.Insert(7, objects.Vec2{X: 1, Y: 1}, objects.Vec2{X: 1, Y: 1})
	all := q.Query(objects.AABB{Min: objects.Vec2{X: -50, Y: -50}, Max: objects.Vec2{X: 50, Y: 50}})
	count := 0
	for _, id := range all {
		if id == 7 {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected object to appear exactly once, got %d", count)
	}
}
