package objects

// Type is the top-level kind of an Object (spec.md §3).
type Type uint8

const (
	TypePlayer Type = iota
	TypeNPC
	TypeAttack
	TypeStatic
)

func (t Type) String() string {
	switch t {
	case TypePlayer:
		return "PLAYER"
	case TypeNPC:
		return "NPC"
	case TypeAttack:
		return "ATTACK"
	case TypeStatic:
		return "STATIC"
	default:
		return "UNKNOWN"
	}
}

// AttackType distinguishes the two attack shapes an ATTACK object can take.
type AttackType uint8

const (
	AttackNone AttackType = iota
	AttackMelee
	AttackProjectile
)

// ProjectileType is opaque to the simulation core; it is forwarded verbatim
// in wire messages and event payloads.
type ProjectileType uint16

const ProjectileNone ProjectileType = 0

// Facing is one of the eight cardinal/intercardinal directions.
type Facing uint8

const (
	FacingN Facing = iota
	FacingNE
	FacingE
	FacingSE
	FacingS
	FacingSW
	FacingW
	FacingNW
)

var facingUnitVectors = [8]Vec2{
	FacingN:  {X: 0, Y: 1},
	FacingNE: {X: 0.7071067811865476, Y: 0.7071067811865476},
	FacingE:  {X: 1, Y: 0},
	FacingSE: {X: 0.7071067811865476, Y: -0.7071067811865476},
	FacingS:  {X: 0, Y: -1},
	FacingSW: {X: -0.7071067811865476, Y: -0.7071067811865476},
	FacingW:  {X: -1, Y: 0},
	FacingNW: {X: -0.7071067811865476, Y: 0.7071067811865476},
}

// Unit returns the +y=north unit vector for a facing direction.
func (f Facing) Unit() Vec2 { return facingUnitVectors[f%8] }

// FacingFromVector buckets an arbitrary direction vector into one of the
// eight facings, breaking ties toward the facing that comes first in N, NE,
// E, ..., NW order (matches the teacher's deriveFacing behavior of always
// producing a stable facing for any nonzero input).
func FacingFromVector(v Vec2) Facing {
	if v.X == 0 && v.Y == 0 {
		return FacingS
	}
	best := FacingN
	bestDot := -2.0
	for f := FacingN; f <= FacingNW; f++ {
		u := f.Unit()
		dot := u.X*v.X + u.Y*v.Y
		if dot > bestDot {
			bestDot = dot
			best = f
		}
	}
	return best
}

// State is the object's coarse behavioral state.
type State uint8

const (
	StateIdle State = iota
	StateRunning
	StateMeleeAttack
)

// Faction controls aggro eligibility (spec.md §4.7).
type Faction uint8

const (
	FactionGood Faction = iota
	FactionEvil
	FactionNeutral
)

// ColliderShape is either a rectangle or a circle, sized relative to Scale.
type ColliderShape uint8

const (
	ColliderRect ColliderShape = iota
	ColliderCircle
)

// Collider carries half-extents relative to the owning Object's Scale.
type Collider struct {
	Shape       ColliderShape
	HalfExtents Vec2 // for ColliderCircle only HalfExtents.X (radius) is used
}
