// This file implements C7, the object updater (spec.md §4.7): the
// per-tick behavior for ATTACK and NPC objects.
package simcore

import (
	"tickworld/internal/eventbus"
	"tickworld/internal/navmap"
	"tickworld/internal/objects"
)

// PreUpdate rebuilds objects-by-map and drains any pathfinding results that
// arrived since the last tick (spec.md §4.7).
func (w *World) PreUpdate() {
	w.RebuildObjectsByMap()
	w.Paths.Update()
}

// UpdateObject dispatches to the ATTACK or NPC per-tick behavior. Other
// object types (PLAYER, STATIC) are authoritatively driven by client state
// updates or are immutable, so they have no per-tick behavior here
// (spec.md §4.7, §4.8).
func (w *World) UpdateObject(o *objects.Object, dtMs float64) {
	switch o.Type {
	case objects.TypeAttack:
		w.updateAttack(o, dtMs)
	case objects.TypeNPC:
		w.updateNPC(o, dtMs)
	}
}

func (w *World) updateAttack(o *objects.Object, dtMs float64) {
	o.Position.X += o.Velocity.X * dtMs
	o.Position.Y += o.Velocity.Y * dtMs
	o.Position.Z += o.Velocity.Z * dtMs

	if o.AttackType == objects.AttackProjectile {
		entry, ok := w.Maps.Get(o.CurrentMap)
		if ok {
			tc := entry.Navmap.WorldToTile(o.Position.XY())
			if !entry.Navmap.IsWalkable(tc.Col, tc.Row) {
				w.Bus.Publish(eventbus.NetworkObjectCollision, eventbus.NetworkObjectCollisionPayload{
					LHS: uint32(o.ID),
					RHS: 0,
				})
			}
		}
	}

	w.checkForMapChange(o)
}

// navmapFor is a small helper shared by the NPC AI and follow-path logic.
func (w *World) navmapFor(mapName string) *navmap.Navmap {
	entry, ok := w.Maps.Get(mapName)
	if !ok {
		return nil
	}
	return entry.Navmap
}
