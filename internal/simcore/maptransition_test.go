package simcore

import (
	"testing"

	"tickworld/internal/objects"
)

func TestCheckForMapChangeCrossesEastEdgeIntoNeighbor(t *testing.T) {
	w, _ := testWorld(t, "forest_1")
	entry, _ := w.Maps.Get("forest_1")
	entry.Map.Connections[objects.East] = "forest_2"

	o := &objects.Object{ID: 1, CurrentMap: "forest_1", Position: objects.Vec3{X: 100}} // past the +32 half-extent edge

	changed := w.checkForMapChange(o)

	if !changed || o.CurrentMap != "forest_2" {
		t.Fatalf("expected a transition to forest_2, got changed=%v map=%s", changed, o.CurrentMap)
	}
}

func TestCheckForMapChangeNoneNeighborLeavesMapUnchanged(t *testing.T) {
	w, _ := testWorld(t, "forest_1")
	// testWorld's connections default to "" (NoNeighbor), which Map.Neighbor
	// treats the same as the manifest's literal "None".
	o := &objects.Object{ID: 1, CurrentMap: "forest_1", Position: objects.Vec3{X: 100}}

	changed := w.checkForMapChange(o)

	if changed || o.CurrentMap != "forest_1" {
		t.Fatalf("expected no transition without a neighbor, got changed=%v map=%s", changed, o.CurrentMap)
	}
}

func TestCheckForMapChangeInsideBoundsNoChange(t *testing.T) {
	w, _ := testWorld(t, "forest_1")
	o := &objects.Object{ID: 1, CurrentMap: "forest_1", Position: objects.Vec3{X: 1, Y: 1}}

	if w.checkForMapChange(o) {
		t.Fatalf("expected no transition for a position inside the map's bounds")
	}
}
