package simcore

import (
	"tickworld/internal/config"
	"tickworld/internal/objects"
)

// checkForMapChange compares o's XY position against its current map's
// world AABB edges and, if it has crossed into a non-empty, non-"None"
// neighbor, updates o.CurrentMap. Checks are mutually exclusive, tested in
// the order E, W, N, S (spec.md §4.7.1, DESIGN.md's Open Question
// resolution). It returns whether a transition occurred.
func (w *World) checkForMapChange(o *objects.Object) bool {
	entry, ok := w.Maps.Get(o.CurrentMap)
	if !ok {
		return false
	}
	aabb := entry.Map.WorldAABB(config.MapGameScale)

	var dir objects.Direction
	switch {
	case o.Position.X > aabb.Max.X:
		dir = objects.East
	case o.Position.X < aabb.Min.X:
		dir = objects.West
	case o.Position.Y > aabb.Max.Y:
		dir = objects.North
	case o.Position.Y < aabb.Min.Y:
		dir = objects.South
	default:
		return false
	}

	neighbor := entry.Map.Neighbor(dir)
	if neighbor == "" {
		return false
	}

	o.CurrentMap = neighbor
	return true
}
