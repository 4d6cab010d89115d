// Package pathing implements C6: per-object path storage, forwarding path
// requests to the C5 worker pool and draining its results once per tick
// (spec.md §4.6).
package pathing

import (
	"tickworld/internal/navmap"
	"tickworld/internal/objects"
	"tickworld/internal/pathpool"
)

// Controller owns the current path for every object that has one. At most
// one path exists per object (spec.md §3).
type Controller struct {
	pool  *pathpool.Pool
	paths map[objects.ID][]objects.Vec3
}

// New wires a controller to an already-running worker pool.
func New(pool *pathpool.Pool) *Controller {
	return &Controller{pool: pool, paths: make(map[objects.ID][]objects.Vec3)}
}

// FindPath enqueues an asynchronous pathfind task; the result, if any, is
// applied on a later Update call (spec.md §4.6).
func (c *Controller) FindPath(id objects.ID, start, target objects.Vec3, mapOrigin string, nm *navmap.Navmap) {
	c.pool.Enqueue(pathpool.Task{
		ObjectID:  id,
		StartPos:  start,
		TargetPos: target,
		MapOrigin: mapOrigin,
		Navmap:    nm,
	})
}

// Update drains every currently available result, replacing the path for
// its id when the result is non-empty. Empty results (unreachable targets)
// are ignored, leaving any previous path untouched. Results for objects
// that no longer exist are naturally dropped by the caller re-checking
// object existence before acting on HasPath/GetPath (spec.md §4.6, §5).
func (c *Controller) Update() {
	for _, r := range c.pool.DrainResults() {
		if len(r.Path) == 0 {
			continue
		}
		c.paths[r.ObjectID] = r.Path
	}
}

// HasPath reports whether id currently has a non-empty path.
func (c *Controller) HasPath(id objects.ID) bool {
	return len(c.paths[id]) > 0
}

// GetPath returns id's path for mutation. Callers pop the front waypoint
// as the object walks it.
func (c *Controller) GetPath(id objects.ID) []objects.Vec3 {
	return c.paths[id]
}

// PopFront removes the first waypoint, matching the "consumed front-to-back"
// contract of spec.md §3.
func (c *Controller) PopFront(id objects.ID) {
	p := c.paths[id]
	if len(p) == 0 {
		return
	}
	if len(p) == 1 {
		delete(c.paths, id)
		return
	}
	c.paths[id] = p[1:]
}

// SetTarget clears any existing path and sets a single-waypoint path.
func (c *Controller) SetTarget(id objects.ID, waypoint objects.Vec3) {
	c.paths[id] = []objects.Vec3{waypoint}
}

// AddTarget appends a waypoint to id's existing path.
func (c *Controller) AddTarget(id objects.ID, waypoint objects.Vec3) {
	c.paths[id] = append(c.paths[id], waypoint)
}

// ClearPath removes id's path entirely.
func (c *Controller) ClearPath(id objects.ID) {
	delete(c.paths, id)
}

// OnObjectDestroyed drops any path owned by id, cascading destruction to
// path removal (spec.md §3, §4.7).
func (c *Controller) OnObjectDestroyed(id objects.ID) {
	delete(c.paths, id)
}
