package pathpool

import (
	"container/heap"

	"tickworld/internal/navmap"
	"tickworld/internal/objects"
)

var neighborOffsets = [4]navmap.TileCoord{
	{Col: 0, Row: -1},
	{Col: 1, Row: 0},
	{Col: 0, Row: 1},
	{Col: -1, Row: 0},
}

func manhattan(a, b navmap.TileCoord) int {
	dx := a.Col - b.Col
	if dx < 0 {
		dx = -dx
	}
	dy := a.Row - b.Row
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}

// arenaNode is one A* search node, held by value in an arena keyed by
// (row,col) so parent-pointer reconstruction is cheap (spec.md §9's design
// note); the heap stores indices into the arena, not pointers, which keeps
// the heap itself lightweight.
type arenaNode struct {
	coord      navmap.TileCoord
	g, f       int
	parent     int // index into arena, -1 for the start node
	closed     bool
	heapIndex  int
}

type openHeap struct {
	arena   *[]arenaNode
	indices []int // indices into *arena
}

func (h openHeap) Len() int { return len(h.indices) }
func (h openHeap) Less(i, j int) bool {
	a := (*h.arena)[h.indices[i]]
	b := (*h.arena)[h.indices[j]]
	return a.f < b.f
}
func (h openHeap) Swap(i, j int) {
	h.indices[i], h.indices[j] = h.indices[j], h.indices[i]
	(*h.arena)[h.indices[i]].heapIndex = i
	(*h.arena)[h.indices[j]].heapIndex = j
}
func (h *openHeap) Push(x any) {
	idx := x.(int)
	(*h.arena)[idx].heapIndex = len(h.indices)
	h.indices = append(h.indices, idx)
}
func (h *openHeap) Pop() any {
	old := h.indices
	n := len(old)
	idx := old[n-1]
	h.indices = old[:n-1]
	return idx
}

// astar4 runs a 4-connected A* over nm from start to goal. It returns the
// path of tile coordinates from (excluding) start to (including) goal, and
// whether the goal was reached (spec.md §4.5).
func astar4(nm *navmap.Navmap, start, goal navmap.TileCoord) ([]navmap.TileCoord, bool) {
	if start == goal {
		return nil, true
	}
	if !nm.IsWalkable(goal.Col, goal.Row) {
		return nil, false
	}

	arena := make([]arenaNode, 0, 64)
	byCoord := make(map[navmap.TileCoord]int, 64)

	push := func(coord navmap.TileCoord, g, f, parent int) int {
		arena = append(arena, arenaNode{coord: coord, g: g, f: f, parent: parent})
		idx := len(arena) - 1
		byCoord[coord] = idx
		return idx
	}

	startIdx := push(start, 0, manhattan(start, goal), -1)

	open := &openHeap{arena: &arena}
	heap.Init(open)
	heap.Push(open, startIdx)

	for open.Len() > 0 {
		currentIdx := heap.Pop(open).(int)
		if arena[currentIdx].closed {
			continue
		}
		arena[currentIdx].closed = true
		current := arena[currentIdx].coord

		if current == goal {
			return reconstruct(arena, currentIdx), true
		}

		for _, off := range neighborOffsets {
			next := navmap.TileCoord{Col: current.Col + off.Col, Row: current.Row + off.Row}
			if !nm.IsWalkable(next.Col, next.Row) {
				continue
			}
			tentativeG := arena[currentIdx].g + 1

			if existingIdx, ok := byCoord[next]; ok {
				if arena[existingIdx].closed {
					continue
				}
				if tentativeG >= arena[existingIdx].g {
					continue
				}
				arena[existingIdx].g = tentativeG
				arena[existingIdx].f = tentativeG + manhattan(next, goal)
				arena[existingIdx].parent = currentIdx
				heap.Fix(open, arena[existingIdx].heapIndex)
				continue
			}

			nextIdx := push(next, tentativeG, tentativeG+manhattan(next, goal), currentIdx)
			heap.Push(open, nextIdx)
		}
	}

	return nil, false
}

func reconstruct(arena []arenaNode, endIdx int) []navmap.TileCoord {
	var rev []navmap.TileCoord
	for idx := endIdx; idx != -1; idx = arena[idx].parent {
		rev = append(rev, arena[idx].coord)
	}
	// rev is goal..start; the caller wants start excluded, front-to-back.
	out := make([]navmap.TileCoord, 0, len(rev)-1)
	for i := len(rev) - 2; i >= 0; i-- {
		out = append(out, rev[i])
	}
	return out
}

// FindPath is the pure A* entry point used both directly by tests and by
// worker goroutines: convert start/target world positions to tile space,
// run astar4, and convert the resulting tile path back to world waypoints
// at the start's z (spec.md §4.5).
func FindPath(nm *navmap.Navmap, startWorld, targetWorld objects.Vec3) []objects.Vec3 {
	start := nm.WorldToTile(startWorld.XY())
	goal := nm.WorldToTile(targetWorld.XY())

	tiles, ok := astar4(nm, start, goal)
	if !ok || len(tiles) == 0 {
		return nil
	}

	path := make([]objects.Vec3, 0, len(tiles))
	for _, tc := range tiles {
		path = append(path, nm.TileToWorld(tc, startWorld.Z))
	}
	return path
}
