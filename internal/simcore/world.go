// Package simcore implements C7 (the object updater) and C8 (the tick
// engine): the authoritative object table and the per-tick advancement of
// every non-player-controlled object (spec.md §4.7, §4.8).
package simcore

import (
	"tickworld/internal/config"
	"tickworld/internal/eventbus"
	"tickworld/internal/mapdata"
	"tickworld/internal/objects"
	"tickworld/internal/pathing"
)

// PendingSpawn is a deferred object creation used for attack wind-up
// (spec.md §3).
type PendingSpawn struct {
	Object   objects.Object
	SpawnIn  float64 // seconds remaining
	Lifetime float64 // seconds the object lives once materialized, 0 = none
}

// NPCTarget records the current aggro target for one NPC.
type NPCTarget struct {
	TargetID    objects.ID
	RecalcTimer float64 // seconds
}

// World is the single mutable object table. It is owned exclusively by the
// simulation thread; the path worker pool never touches it (spec.md §5,
// §9).
type World struct {
	Maps  *mapdata.Repository
	Bus   *eventbus.Bus
	Paths *pathing.Controller

	objects      map[objects.ID]*objects.Object
	objectsByMap map[string][]objects.ID
	lifetimes    map[objects.ID]float64
	npcTargets   map[objects.ID]*NPCTarget
	pending      []*PendingSpawn

	nextID objects.ID
}

// NewWorld wires a fresh, empty object table to its collaborators.
func NewWorld(maps *mapdata.Repository, bus *eventbus.Bus, paths *pathing.Controller) *World {
	w := &World{
		Maps:         maps,
		Bus:          bus,
		Paths:        paths,
		objects:      make(map[objects.ID]*objects.Object),
		objectsByMap: make(map[string][]objects.ID),
		lifetimes:    make(map[objects.ID]float64),
		npcTargets:   make(map[objects.ID]*NPCTarget),
		nextID:       objects.ID(config.FirstDynamicID),
	}
	w.Bus.Subscribe(eventbus.ObjectDestroyed, w.onObjectDestroyed)
	return w
}

// AllocateID hands out the next dynamic object id.
func (w *World) AllocateID() objects.ID {
	id := w.nextID
	w.nextID++
	return id
}

// Get returns the live object for id, or nil.
func (w *World) Get(id objects.ID) *objects.Object {
	return w.objects[id]
}

// Put inserts or overwrites an object record by id.
func (w *World) Put(o *objects.Object) {
	w.objects[o.ID] = o
}

// Remove deletes id from the table, publishes ObjectDestroyed, and clears
// its lifetime/path/npc-target bookkeeping (spec.md §3, §4.7).
func (w *World) Remove(id objects.ID) {
	if _, ok := w.objects[id]; !ok {
		return
	}
	delete(w.objects, id)
	w.Bus.Publish(eventbus.ObjectDestroyed, eventbus.ObjectDestroyedPayload{ID: uint32(id)})
}

func (w *World) onObjectDestroyed(payload any) {
	p := payload.(eventbus.ObjectDestroyedPayload)
	id := objects.ID(p.ID)
	delete(w.lifetimes, id)
	w.Paths.OnObjectDestroyed(id)
	delete(w.npcTargets, id)
	for npcID, target := range w.npcTargets {
		if target.TargetID == id {
			delete(w.npcTargets, npcID)
		}
	}
}

// All returns every live object, in an unspecified but stable-per-call
// order (map iteration order in Go is randomized per run but the caller
// must not rely on any particular inter-object order within a tick,
// spec.md §5).
func (w *World) All() []*objects.Object {
	out := make([]*objects.Object, 0, len(w.objects))
	for _, o := range w.objects {
		out = append(out, o)
	}
	return out
}

// ObjectsOnMap returns the ids resident on a map as of the last PreUpdate
// call.
func (w *World) ObjectsOnMap(mapName string) []objects.ID {
	return w.objectsByMap[mapName]
}

// SetLifetime installs or overwrites id's lifetime timer.
func (w *World) SetLifetime(id objects.ID, seconds float64) {
	w.lifetimes[id] = seconds
}

// Lifetime returns id's remaining lifetime and whether one is set.
func (w *World) Lifetime(id objects.ID) (float64, bool) {
	v, ok := w.lifetimes[id]
	return v, ok
}

// TickLifetimes decrements every lifetime timer by dtSeconds and returns the
// ids whose timer has reached zero or below (spec.md §4.8 step 3).
func (w *World) TickLifetimes(dtSeconds float64) []objects.ID {
	var expired []objects.ID
	for id, remaining := range w.lifetimes {
		remaining -= dtSeconds
		w.lifetimes[id] = remaining
		if remaining <= 0 {
			expired = append(expired, id)
		}
	}
	return expired
}

// NPCTargetFor returns the current target entry for an NPC, or nil.
func (w *World) NPCTargetFor(npcID objects.ID) *NPCTarget {
	return w.npcTargets[npcID]
}

// SetNPCTarget installs a fresh target entry for an NPC.
func (w *World) SetNPCTarget(npcID objects.ID, targetID objects.ID, recalc float64) {
	w.npcTargets[npcID] = &NPCTarget{TargetID: targetID, RecalcTimer: recalc}
}

// ClearNPCTarget removes an NPC's target entry.
func (w *World) ClearNPCTarget(npcID objects.ID) {
	delete(w.npcTargets, npcID)
}

// AddPendingSpawn registers a deferred object creation.
func (w *World) AddPendingSpawn(p *PendingSpawn) {
	w.pending = append(w.pending, p)
}

// CancelPendingSpawnsFor drops every pending spawn whose object has the
// given ParentID, per the CancelAttack message contract (spec.md §4.8).
func (w *World) CancelPendingSpawnsFor(parentID objects.ID) {
	kept := w.pending[:0]
	for _, p := range w.pending {
		if p.Object.ParentID == parentID {
			continue
		}
		kept = append(kept, p)
	}
	w.pending = kept
}

// TickPendingSpawns decrements every pending spawn's timer and returns the
// ones ready to materialize this tick, removing them from the pending list
// (spec.md §4.8 step 4).
func (w *World) TickPendingSpawns(dtSeconds float64) []*PendingSpawn {
	var ready []*PendingSpawn
	kept := w.pending[:0]
	for _, p := range w.pending {
		p.SpawnIn -= dtSeconds
		if p.SpawnIn <= 0 {
			ready = append(ready, p)
			continue
		}
		kept = append(kept, p)
	}
	w.pending = kept
	return ready
}

// RebuildObjectsByMap recomputes the map-name -> ids index from scratch,
// per C7's pre_update contract (spec.md §4.7).
func (w *World) RebuildObjectsByMap() {
	for k := range w.objectsByMap {
		delete(w.objectsByMap, k)
	}
	for id, o := range w.objects {
		w.objectsByMap[o.CurrentMap] = append(w.objectsByMap[o.CurrentMap], id)
	}
}
