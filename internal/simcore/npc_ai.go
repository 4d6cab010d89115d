package simcore

import (
	"math"

	"tickworld/internal/config"
	"tickworld/internal/eventbus"
	"tickworld/internal/navmap"
	"tickworld/internal/objects"
	"tickworld/internal/pathing"
	"tickworld/internal/rng"
)

func (w *World) updateNPC(o *objects.Object, dtMs float64) {
	o.Velocity = objects.Vec3{}

	switch o.State {
	case objects.StateIdle:
		if w.Paths.HasPath(o.ID) {
			w.followPath(o, dtMs)
			o.ActionTimer -= dtMs / 1000
		} else {
			// idleWithoutPath owns its own decrement: it only runs when no
			// target was found this tick, so the decrement can't also fire
			// unconditionally here without double-counting.
			w.idleWithoutPath(o, dtMs)
		}
	case objects.StateRunning:
		// Reserved for future chase-only logic; the source transitions
		// straight back to IDLE with no movement (spec.md §4.7, §9 Open
		// Question 1).
		o.State = objects.StateIdle
		o.ActionTimer -= dtMs / 1000
	case objects.StateMeleeAttack:
		w.updateMeleeAttack(o, dtMs)
		o.ActionTimer -= dtMs / 1000
	}
}

// FindValidTarget scans objects resident on o's current map for the first
// eligible aggro candidate (spec.md §4.7).
func (w *World) FindValidTarget(o *objects.Object) *objects.Object {
	if o.Faction == objects.FactionNeutral {
		return nil
	}
	nm := w.navmapFor(o.CurrentMap)
	if nm == nil {
		return nil
	}

	for _, candidateID := range w.ObjectsOnMap(o.CurrentMap) {
		if candidateID == o.ID {
			continue
		}
		candidate := w.Get(candidateID)
		if candidate == nil {
			continue
		}
		if candidate.Type != objects.TypePlayer && candidate.Type != objects.TypeNPC {
			continue
		}
		if candidate.Faction == o.Faction {
			continue
		}
		if objects.Distance(o.Position.XY(), candidate.Position.XY()) > config.AggroRange {
			continue
		}
		if !pathing.IsTargetInLOS(o.Position, candidate.Position, o.Speed, 1000.0/config.TickRateHz, nm) {
			continue
		}
		return candidate
	}
	return nil
}

func (w *World) idleWithoutPath(o *objects.Object, dtMs float64) {
	if target := w.FindValidTarget(o); target != nil {
		w.SetNPCTarget(o.ID, target.ID, config.NPCPathRecalc.Seconds())
		o.Facing = objects.FacingFromVector(target.Position.XY().Sub(o.Position.XY()))
		w.Bus.Publish(eventbus.NPCAggro, eventbus.NPCAggroPayload{NPCID: uint32(o.ID), TargetID: uint32(target.ID)})
		nm := w.navmapFor(o.CurrentMap)
		if nm != nil {
			w.Paths.FindPath(o.ID, o.Position, target.Position, o.CurrentMap, nm)
		}
		return
	}

	o.ActionTimer -= dtMs / 1000
	if o.ActionTimer >= 0 {
		return
	}
	o.ActionTimer = config.NPCLoiterTimer.Seconds()

	nm := w.navmapFor(o.CurrentMap)
	if nm == nil {
		return
	}
	dirIdx := rng.Intn(8)
	dx, dy := rng.UnitVectorFromAngleIndex(dirIdx)
	here := nm.WorldToTile(o.Position.XY())
	adjacent := adjacentTileFromUnitVector(here, dx, dy)
	if !nm.IsWalkable(adjacent.Col, adjacent.Row) {
		return
	}
	target := nm.TileToWorld(adjacent, o.Position.Z)
	o.Facing = objects.FacingFromVector(objects.Vec2{X: dx, Y: dy})
	w.Paths.SetTarget(o.ID, target)
}

func (w *World) updateMeleeAttack(o *objects.Object, dtMs float64) {
	if o.ActionTimer >= 0 {
		return
	}

	target := w.NPCTargetFor(o.ID)
	if target == nil {
		o.State = objects.StateIdle
		return
	}
	targetObj := w.Get(target.TargetID)
	if targetObj == nil || !o.Intersects(targetObj) {
		o.State = objects.StateIdle
		if targetObj != nil {
			nm := w.navmapFor(o.CurrentMap)
			if nm != nil {
				w.Paths.FindPath(o.ID, o.Position, targetObj.Position, o.CurrentMap, nm)
			}
		}
		return
	}

	w.Bus.Publish(eventbus.NPCAttack, eventbus.NPCAttackPayload{
		NPCID:      uint32(o.ID),
		AttackType: uint8(objects.AttackMelee),
	})
	o.ActionTimer = config.NPCAttackAnim.Seconds()
}

// followPath implements the "Follow path" behavior of spec.md §4.7.
func (w *World) followPath(o *objects.Object, dtMs float64) {
	path := w.Paths.GetPath(o.ID)
	if len(path) == 0 {
		w.Paths.ClearPath(o.ID)
		o.State = objects.StateIdle
		return
	}

	front := path[0]
	v := front.XY().Sub(o.Position.XY())
	step := o.Speed * dtMs

	if v.Length() > step {
		dir := v.Normalize()
		o.Velocity = objects.Vec3{X: dir.X * step, Y: dir.Y * step}
		o.Position.X += o.Velocity.X
		o.Position.Y += o.Velocity.Y
	} else {
		o.Position.X = front.X
		o.Position.Y = front.Y
		o.Velocity = objects.Vec3{}
		w.Paths.PopFront(o.ID)
		if !w.Paths.HasPath(o.ID) {
			w.Paths.ClearPath(o.ID)
			o.State = objects.StateIdle
		}
	}
	o.Facing = objects.FacingFromVector(v)

	target := w.NPCTargetFor(o.ID)
	if target != nil {
		targetObj := w.Get(target.TargetID)
		if o.ActionTimer < 0 && targetObj != nil && o.Intersects(targetObj) {
			w.Bus.Publish(eventbus.NPCAttack, eventbus.NPCAttackPayload{
				NPCID:      uint32(o.ID),
				AttackType: uint8(objects.AttackMelee),
			})
			o.ActionTimer = config.NPCAttackAnim.Seconds()
			o.State = objects.StateMeleeAttack
			w.Paths.ClearPath(o.ID)
		} else {
			target.RecalcTimer -= dtMs / 1000
			if target.RecalcTimer <= 0 {
				target.RecalcTimer += config.NPCPathRecalc.Seconds()
				if targetObj != nil {
					nm := w.navmapFor(o.CurrentMap)
					if nm != nil {
						w.Paths.FindPath(o.ID, o.Position, targetObj.Position, o.CurrentMap, nm)
					}
				}
			}
		}
	}

	if w.checkForMapChange(o) {
		w.Paths.ClearPath(o.ID)
	}
}

// adjacentTileFromUnitVector rounds a unit direction vector into the single
// adjacent tile it points at (spec.md §4.7's 8-direction loiter step).
func adjacentTileFromUnitVector(here navmap.TileCoord, dx, dy float64) navmap.TileCoord {
	return navmap.TileCoord{
		Col: here.Col + int(math.Round(dx)),
		Row: here.Row + int(math.Round(dy)),
	}
}
