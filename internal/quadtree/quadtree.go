// Package quadtree implements the per-map spatial index (spec.md §4.3): a
// point-region quadtree over object AABBs, cleared and refilled every tick.
package quadtree

import "tickworld/internal/objects"

const (
	// nodeCapacity is the number of leaves a node holds before it splits.
	nodeCapacity = 8
	// maxDepth bounds recursive splitting so pathological clustering can't
	// spin the tree forever.
	maxDepth = 8
)

// entry is one inserted object's id and AABB.
type entry struct {
	id     objects.ID
	center objects.Vec2
	size   objects.Vec2 // full width/height
}

func (e entry) aabb() objects.AABB {
	half := e.size.Scale(0.5)
	return objects.AABB{Min: e.center.Sub(half), Max: e.center.Add(half)}
}

func aabbIntersect(a, b objects.AABB) bool {
	return a.Min.X <= b.Max.X && a.Max.X >= b.Min.X && a.Min.Y <= b.Max.Y && a.Max.Y >= b.Min.Y
}

func aabbContains(outer, inner objects.AABB) bool {
	return outer.Min.X <= inner.Min.X && outer.Min.Y <= inner.Min.Y &&
		outer.Max.X >= inner.Max.X && outer.Max.Y >= inner.Max.Y
}

// node is one quadtree node. Leaves hold entries directly; once a leaf
// exceeds nodeCapacity (and depth allows), it splits into four children and
// its entries are redistributed.
type node struct {
	bounds   objects.AABB
	depth    int
	entries  []entry
	children *[4]*node // nil until split
}

func newNode(bounds objects.AABB, depth int) *node {
	return &node{bounds: bounds, depth: depth}
}

func (n *node) isLeaf() bool { return n.children == nil }

func (n *node) split(q *Quadtree) {
	mid := objects.Vec2{X: (n.bounds.Min.X + n.bounds.Max.X) / 2, Y: (n.bounds.Min.Y + n.bounds.Max.Y) / 2}
	nw := objects.AABB{Min: objects.Vec2{X: n.bounds.Min.X, Y: mid.Y}, Max: objects.Vec2{X: mid.X, Y: n.bounds.Max.Y}}
	ne := objects.AABB{Min: mid, Max: n.bounds.Max}
	sw := objects.AABB{Min: n.bounds.Min, Max: mid}
	se := objects.AABB{Min: objects.Vec2{X: mid.X, Y: n.bounds.Min.Y}, Max: objects.Vec2{X: n.bounds.Max.X, Y: mid.Y}}

	n.children = &[4]*node{
		q.acquire(nw, n.depth+1),
		q.acquire(ne, n.depth+1),
		q.acquire(sw, n.depth+1),
		q.acquire(se, n.depth+1),
	}

	pending := n.entries
	n.entries = nil
	for _, e := range pending {
		n.insertIntoChildOrSelf(q, e)
	}
}

// insertIntoChildOrSelf places e into whichever single child fully contains
// its AABB, or keeps it on n itself when it straddles a split (or the
// quadtree is a leaf).
func (n *node) insertIntoChildOrSelf(q *Quadtree, e entry) {
	if n.children != nil {
		box := e.aabb()
		for _, child := range n.children {
			if aabbContains(child.bounds, box) {
				child.insert(q, e)
				return
			}
		}
	}
	n.entries = append(n.entries, e)
}

func (n *node) insert(q *Quadtree, e entry) {
	if n.isLeaf() {
		n.entries = append(n.entries, e)
		if len(n.entries) > nodeCapacity && n.depth < maxDepth {
			n.split(q)
		}
		return
	}
	n.insertIntoChildOrSelf(q, e)
}

func (n *node) query(area objects.AABB, out *[]objects.ID) {
	if !aabbIntersect(n.bounds, area) {
		return
	}
	for _, e := range n.entries {
		if aabbIntersect(e.aabb(), area) {
			*out = append(*out, e.id)
		}
	}
	if n.children != nil {
		for _, child := range n.children {
			child.query(area, out)
		}
	}
}

// Rect is one node's rectangle, for the client-side debug dump.
type Rect struct {
	Center objects.Vec2
	Size   objects.Vec2
}

func (n *node) collectRects(out *[]Rect) {
	size := objects.Vec2{X: n.bounds.Max.X - n.bounds.Min.X, Y: n.bounds.Max.Y - n.bounds.Min.Y}
	center := objects.Vec2{X: (n.bounds.Min.X + n.bounds.Max.X) / 2, Y: (n.bounds.Min.Y + n.bounds.Max.Y) / 2}
	*out = append(*out, Rect{Center: center, Size: size})
	if n.children != nil {
		for _, child := range n.children {
			child.collectRects(out)
		}
	}
}

// Quadtree is a per-map spatial index. It is not safe for concurrent use;
// the tick engine is its sole owner (spec.md §5).
type Quadtree struct {
	bounds objects.AABB
	root   *node
	// pool holds retired nodes for reuse by Clear, so repeated
	// clear/refill cycles amortize to O(1) allocation per tick as spec.md
	// §4.3 requires.
	pool []*node
}

// New creates a quadtree sized to a map's world AABB.
func New(min, max objects.Vec2) *Quadtree {
	bounds := objects.AABB{Min: min, Max: max}
	return &Quadtree{bounds: bounds, root: newNode(bounds, 0)}
}

// Clear empties the tree, reusing the existing node allocations.
func (q *Quadtree) Clear() {
	q.reclaim(q.root)
	q.root = q.acquire(q.bounds, 0)
}

func (q *Quadtree) reclaim(n *node) {
	if n == nil {
		return
	}
	if n.children != nil {
		for _, c := range n.children {
			q.reclaim(c)
		}
	}
	n.entries = nil
	n.children = nil
	q.pool = append(q.pool, n)
}

func (q *Quadtree) acquire(bounds objects.AABB, depth int) *node {
	if len(q.pool) == 0 {
		return newNode(bounds, depth)
	}
	n := q.pool[len(q.pool)-1]
	q.pool = q.pool[:len(q.pool)-1]
	n.bounds = bounds
	n.depth = depth
	n.entries = nil
	n.children = nil
	return n
}

// Insert adds an object's AABB (given as center + full size) to the tree.
func (q *Quadtree) Insert(id objects.ID, center, size objects.Vec2) {
	q.root.insert(q, entry{id: id, center: center, size: size})
}

// Query returns every id whose AABB intersects area, in a deterministic
// depth-first, node-then-children order (spec.md §4.3 stability
// requirement).
func (q *Quadtree) Query(area objects.AABB) []objects.ID {
	var out []objects.ID
	q.root.query(area, &out)
	return out
}

// DebugRects returns every node's rectangle for client-side visualization.
func (q *Quadtree) DebugRects() []Rect {
	var out []Rect
	q.root.collectRects(&out)
	return out
}
