package pathing

import (
	"tickworld/internal/navmap"
	"tickworld/internal/objects"
)

// IsTargetInLOS ray-marches from src toward tgt in increments of
// speed*dtMs/2, failing fast on the first non-walkable sampled tile
// (spec.md §4.6).
func IsTargetInLOS(srcPos, tgtPos objects.Vec3, speed, dtMs float64, nm *navmap.Navmap) bool {
	dir := tgtPos.XY().Sub(srcPos.XY())
	dist := dir.Length()
	if dist <= 0 || dist < speed*dtMs {
		return true
	}

	increment := speed * dtMs / 2
	if increment <= 0 {
		increment = dist
	}
	unit := dir.Normalize()

	steps := int(dist / increment)
	for i := 0; i < steps; i++ {
		sample := srcPos.XY().Add(unit.Scale(increment * float64(i)))
		tc := nm.WorldToTile(sample)
		if !nm.IsWalkable(tc.Col, tc.Row) {
			return false
		}
	}
	return true
}
