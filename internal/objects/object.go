package objects

// ID is a 32-bit positive object identifier; zero means "no object"
// (spec.md §3).
type ID uint32

const NoID ID = 0

// Object is the sole authoritative record for anything the server simulates:
// players, NPCs, attacks, and static geometry markers.
type Object struct {
	ID             ID
	ParentID       ID
	Type           Type
	AttackType     AttackType
	ProjectileType ProjectileType
	Position       Vec3
	Velocity       Vec3
	Speed          float64
	Facing         Facing
	State          State
	Faction        Faction
	Collider       Collider
	Scale          float64
	ActionTimer    float64 // seconds
	CurrentMap     string
}

// AABBHalfExtents returns the world-space half extents of the object's
// collider after applying Scale, in the XY plane.
func (o *Object) AABBHalfExtents() Vec2 {
	halfY := o.Collider.HalfExtents.Y
	if o.Collider.Shape == ColliderCircle {
		halfY = o.Collider.HalfExtents.X // radius
	}
	return Vec2{X: o.Collider.HalfExtents.X * o.Scale, Y: halfY * o.Scale}
}

// Intersects reports whether two objects' AABBs overlap in the XY plane.
// Circle colliders are treated as their bounding square for the coarse
// broad-phase test used by melee contact checks (spec.md §4.7).
func (o *Object) Intersects(other *Object) bool {
	ah := o.AABBHalfExtents()
	bh := other.AABBHalfExtents()
	dx := o.Position.X - other.Position.X
	dy := o.Position.Y - other.Position.Y
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}
	return dx <= ah.X+bh.X && dy <= ah.Y+bh.Y
}

// DefaultCollider populates a collider deterministically from type/attack
// type, per spec.md §3's invariant that colliders are derived at creation.
func DefaultCollider(t Type, at AttackType) Collider {
	switch t {
	case TypePlayer, TypeNPC:
		return Collider{Shape: ColliderRect, HalfExtents: Vec2{X: 0.5, Y: 0.5}}
	case TypeAttack:
		switch at {
		case AttackMelee:
			return Collider{Shape: ColliderCircle, HalfExtents: Vec2{X: 0.6}}
		case AttackProjectile:
			return Collider{Shape: ColliderCircle, HalfExtents: Vec2{X: 0.25}}
		}
		return Collider{Shape: ColliderCircle, HalfExtents: Vec2{X: 0.25}}
	default:
		return Collider{Shape: ColliderRect, HalfExtents: Vec2{X: 0.5, Y: 0.5}}
	}
}
