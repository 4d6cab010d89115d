// Package wire implements the fixed-layout binary message catalogue of
// spec.md §6: every message is prefixed by a one-byte MessageType and a
// three-byte semantic-version triple, followed by fixed-size fields. The two
// debug responses end with a uint32 count and that many fixed-size records.
package wire

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"tickworld/internal/config"
	"tickworld/internal/objects"
	"tickworld/internal/simerr"
)

// MessageType is the one-byte tag prefixing every wire message.
type MessageType uint8

const (
	// Server-bound.
	MsgObjectStateUpdate MessageType = iota + 1
	MsgBeginAttackRequest
	MsgCancelAttack
	MsgDebugGetQuadtreeRequest
	MsgDebugGetObjectPathRequest

	// Client-bound.
	MsgPlayerConnected
	MsgPlayerDisconnected
	MsgObjectCreated
	MsgObjectDestroyed
	MsgObjectStateSnapshot
	MsgBeginAttackResponse
	MsgDebugGetQuadtreeResponse
	MsgDebugGetObjectPathResponse
)

// Version is the semver triple every message carries; receivers drop any
// message whose version does not exactly equal Current (spec.md §6, §7).
type Version struct {
	Major, Minor, Patch uint8
}

var Current = Version{Major: config.ProtocolVersionMajor, Minor: config.ProtocolVersionMinor, Patch: config.ProtocolVersionPatch}

const mapNameFieldLen = 32

func encodeMapName(name string) [mapNameFieldLen]byte {
	var out [mapNameFieldLen]byte
	copy(out[:], name)
	return out
}

func decodeMapName(b [mapNameFieldLen]byte) string {
	n := bytes.IndexByte(b[:], 0)
	if n < 0 {
		n = len(b)
	}
	return string(b[:n])
}

// wireObject is the fixed-layout on-wire representation of objects.Object.
type wireObject struct {
	ID             uint32
	ParentID       uint32
	Type           uint8
	AttackType     uint8
	ProjectileType uint16
	PosX, PosY, PosZ float64
	VelX, VelY, VelZ float64
	Speed          float64
	Facing         uint8
	State          uint8
	Faction        uint8
	ColliderShape  uint8
	ColliderHalfX  float64
	ColliderHalfY  float64
	Scale          float64
	ActionTimer    float64
	CurrentMap     [mapNameFieldLen]byte
}

func toWireObject(o objects.Object) wireObject {
	return wireObject{
		ID:             uint32(o.ID),
		ParentID:       uint32(o.ParentID),
		Type:           uint8(o.Type),
		AttackType:     uint8(o.AttackType),
		ProjectileType: uint16(o.ProjectileType),
		PosX:           o.Position.X,
		PosY:           o.Position.Y,
		PosZ:           o.Position.Z,
		VelX:           o.Velocity.X,
		VelY:           o.Velocity.Y,
		VelZ:           o.Velocity.Z,
		Speed:          o.Speed,
		Facing:         uint8(o.Facing),
		State:          uint8(o.State),
		Faction:        uint8(o.Faction),
		ColliderShape:  uint8(o.Collider.Shape),
		ColliderHalfX:  o.Collider.HalfExtents.X,
		ColliderHalfY:  o.Collider.HalfExtents.Y,
		Scale:          o.Scale,
		ActionTimer:    o.ActionTimer,
		CurrentMap:     encodeMapName(o.CurrentMap),
	}
}

func fromWireObject(w wireObject) objects.Object {
	return objects.Object{
		ID:             objects.ID(w.ID),
		ParentID:       objects.ID(w.ParentID),
		Type:           objects.Type(w.Type),
		AttackType:     objects.AttackType(w.AttackType),
		ProjectileType: objects.ProjectileType(w.ProjectileType),
		Position:       objects.Vec3{X: w.PosX, Y: w.PosY, Z: w.PosZ},
		Velocity:       objects.Vec3{X: w.VelX, Y: w.VelY, Z: w.VelZ},
		Speed:          w.Speed,
		Facing:         objects.Facing(w.Facing),
		State:          objects.State(w.State),
		Faction:        objects.Faction(w.Faction),
		Collider: objects.Collider{
			Shape:       objects.ColliderShape(w.ColliderShape),
			HalfExtents: objects.Vec2{X: w.ColliderHalfX, Y: w.ColliderHalfY},
		},
		Scale:       w.Scale,
		ActionTimer: w.ActionTimer,
		CurrentMap:  decodeMapName(w.CurrentMap),
	}
}

// --- Server-bound messages ---

type ObjectStateUpdate struct {
	ObjectID objects.ID
	State    objects.Object
}

type BeginAttackRequest struct {
	AttackerID     objects.ID
	AttackType     objects.AttackType
	ProjectileType objects.ProjectileType
}

type CancelAttack struct {
	AttackerID objects.ID
}

type DebugGetQuadtreeRequest struct{}

type DebugGetObjectPathRequest struct {
	ObjectID objects.ID
}

// --- Client-bound messages ---

type PlayerConnected struct {
	ObjectID objects.ID
}

type PlayerDisconnected struct {
	ObjectID objects.ID
}

type ObjectCreated struct {
	Object objects.Object
}

type ObjectDestroyed struct {
	ObjectID objects.ID
}

type ObjectStateSnapshot struct {
	Object objects.Object
}

type BeginAttackResponse struct {
	Allowed        bool
	AttackType     objects.AttackType
	AttackerID     objects.ID
	ChargeSeconds  float64
	ProjectileType objects.ProjectileType
}

type DebugRect struct {
	CenterX, CenterY float64
	SizeX, SizeY     float64
}

type DebugGetQuadtreeResponse struct {
	Rects []DebugRect
}

type DebugGetObjectPathResponse struct {
	ObjectID  objects.ID
	Waypoints []objects.Vec3
}

// Encode writes msg's MessageType, version, and fixed-layout body to buf.
func Encode(msg any) ([]byte, error) {
	buf := &bytes.Buffer{}
	var msgType MessageType

	switch m := msg.(type) {
	case ObjectStateUpdate:
		msgType = MsgObjectStateUpdate
		writeHeader(buf, msgType)
		binary.Write(buf, binary.BigEndian, uint32(m.ObjectID))
		binary.Write(buf, binary.BigEndian, toWireObject(m.State))
	case BeginAttackRequest:
		msgType = MsgBeginAttackRequest
		writeHeader(buf, msgType)
		binary.Write(buf, binary.BigEndian, uint32(m.AttackerID))
		binary.Write(buf, binary.BigEndian, uint8(m.AttackType))
		binary.Write(buf, binary.BigEndian, uint16(m.ProjectileType))
	case CancelAttack:
		msgType = MsgCancelAttack
		writeHeader(buf, msgType)
		binary.Write(buf, binary.BigEndian, uint32(m.AttackerID))
	case DebugGetQuadtreeRequest:
		msgType = MsgDebugGetQuadtreeRequest
		writeHeader(buf, msgType)
	case DebugGetObjectPathRequest:
		msgType = MsgDebugGetObjectPathRequest
		writeHeader(buf, msgType)
		binary.Write(buf, binary.BigEndian, uint32(m.ObjectID))
	case PlayerConnected:
		msgType = MsgPlayerConnected
		writeHeader(buf, msgType)
		binary.Write(buf, binary.BigEndian, uint32(m.ObjectID))
	case PlayerDisconnected:
		msgType = MsgPlayerDisconnected
		writeHeader(buf, msgType)
		binary.Write(buf, binary.BigEndian, uint32(m.ObjectID))
	case ObjectCreated:
		msgType = MsgObjectCreated
		writeHeader(buf, msgType)
		binary.Write(buf, binary.BigEndian, toWireObject(m.Object))
	case ObjectDestroyed:
		msgType = MsgObjectDestroyed
		writeHeader(buf, msgType)
		binary.Write(buf, binary.BigEndian, uint32(m.ObjectID))
	case ObjectStateSnapshot:
		msgType = MsgObjectStateSnapshot
		writeHeader(buf, msgType)
		binary.Write(buf, binary.BigEndian, toWireObject(m.Object))
	case BeginAttackResponse:
		msgType = MsgBeginAttackResponse
		writeHeader(buf, msgType)
		var allowed uint8
		if m.Allowed {
			allowed = 1
		}
		binary.Write(buf, binary.BigEndian, allowed)
		binary.Write(buf, binary.BigEndian, uint8(m.AttackType))
		binary.Write(buf, binary.BigEndian, uint32(m.AttackerID))
		binary.Write(buf, binary.BigEndian, m.ChargeSeconds)
		binary.Write(buf, binary.BigEndian, uint16(m.ProjectileType))
	case DebugGetQuadtreeResponse:
		msgType = MsgDebugGetQuadtreeResponse
		writeHeader(buf, msgType)
		binary.Write(buf, binary.BigEndian, uint32(len(m.Rects)))
		for _, r := range m.Rects {
			binary.Write(buf, binary.BigEndian, r)
		}
	case DebugGetObjectPathResponse:
		msgType = MsgDebugGetObjectPathResponse
		writeHeader(buf, msgType)
		binary.Write(buf, binary.BigEndian, uint32(m.ObjectID))
		binary.Write(buf, binary.BigEndian, uint32(len(m.Waypoints)))
		for _, wp := range m.Waypoints {
			binary.Write(buf, binary.BigEndian, wp)
		}
	default:
		return nil, fmt.Errorf("wire: unknown message type %T", msg)
	}

	return buf.Bytes(), nil
}

func writeHeader(buf *bytes.Buffer, msgType MessageType) {
	binary.Write(buf, binary.BigEndian, uint8(msgType))
	binary.Write(buf, binary.BigEndian, Current.Major)
	binary.Write(buf, binary.BigEndian, Current.Minor)
	binary.Write(buf, binary.BigEndian, Current.Patch)
}

// ErrVersionMismatch is returned by Decode when a message's version triple
// does not equal Current (spec.md §6, §7 PROTOCOL_ERROR).
var ErrVersionMismatch = fmt.Errorf("%w: wire: protocol version mismatch", simerr.ErrProtocol)

// Decode reads a message's type/version header, verifies the version, and
// unmarshals the fixed-layout body.
func Decode(data []byte) (any, error) {
	r := bytes.NewReader(data)
	var msgType uint8
	var v Version
	if err := binary.Read(r, binary.BigEndian, &msgType); err != nil {
		return nil, fmt.Errorf("wire: read type: %w", err)
	}
	if err := binary.Read(r, binary.BigEndian, &v.Major); err != nil {
		return nil, fmt.Errorf("wire: read version: %w", err)
	}
	if err := binary.Read(r, binary.BigEndian, &v.Minor); err != nil {
		return nil, fmt.Errorf("wire: read version: %w", err)
	}
	if err := binary.Read(r, binary.BigEndian, &v.Patch); err != nil {
		return nil, fmt.Errorf("wire: read version: %w", err)
	}
	if v != Current {
		return nil, ErrVersionMismatch
	}

	switch MessageType(msgType) {
	case MsgObjectStateUpdate:
		var id uint32
		var wo wireObject
		binary.Read(r, binary.BigEndian, &id)
		if err := binary.Read(r, binary.BigEndian, &wo); err != nil {
			return nil, err
		}
		return ObjectStateUpdate{ObjectID: objects.ID(id), State: fromWireObject(wo)}, nil
	case MsgBeginAttackRequest:
		var id uint32
		var at uint8
		var pt uint16
		binary.Read(r, binary.BigEndian, &id)
		binary.Read(r, binary.BigEndian, &at)
		binary.Read(r, binary.BigEndian, &pt)
		return BeginAttackRequest{AttackerID: objects.ID(id), AttackType: objects.AttackType(at), ProjectileType: objects.ProjectileType(pt)}, nil
	case MsgCancelAttack:
		var id uint32
		binary.Read(r, binary.BigEndian, &id)
		return CancelAttack{AttackerID: objects.ID(id)}, nil
	case MsgDebugGetQuadtreeRequest:
		return DebugGetQuadtreeRequest{}, nil
	case MsgDebugGetObjectPathRequest:
		var id uint32
		binary.Read(r, binary.BigEndian, &id)
		return DebugGetObjectPathRequest{ObjectID: objects.ID(id)}, nil
	case MsgPlayerConnected:
		var id uint32
		binary.Read(r, binary.BigEndian, &id)
		return PlayerConnected{ObjectID: objects.ID(id)}, nil
	case MsgPlayerDisconnected:
		var id uint32
		binary.Read(r, binary.BigEndian, &id)
		return PlayerDisconnected{ObjectID: objects.ID(id)}, nil
	case MsgObjectCreated:
		var wo wireObject
		if err := binary.Read(r, binary.BigEndian, &wo); err != nil {
			return nil, err
		}
		return ObjectCreated{Object: fromWireObject(wo)}, nil
	case MsgObjectDestroyed:
		var id uint32
		binary.Read(r, binary.BigEndian, &id)
		return ObjectDestroyed{ObjectID: objects.ID(id)}, nil
	case MsgObjectStateSnapshot:
		var wo wireObject
		if err := binary.Read(r, binary.BigEndian, &wo); err != nil {
			return nil, err
		}
		return ObjectStateSnapshot{Object: fromWireObject(wo)}, nil
	case MsgBeginAttackResponse:
		var allowed uint8
		var at uint8
		var id uint32
		var charge float64
		var pt uint16
		binary.Read(r, binary.BigEndian, &allowed)
		binary.Read(r, binary.BigEndian, &at)
		binary.Read(r, binary.BigEndian, &id)
		binary.Read(r, binary.BigEndian, &charge)
		binary.Read(r, binary.BigEndian, &pt)
		return BeginAttackResponse{
			Allowed:        allowed != 0,
			AttackType:     objects.AttackType(at),
			AttackerID:     objects.ID(id),
			ChargeSeconds:  charge,
			ProjectileType: objects.ProjectileType(pt),
		}, nil
	case MsgDebugGetQuadtreeResponse:
		var n uint32
		binary.Read(r, binary.BigEndian, &n)
		rects := make([]DebugRect, n)
		for i := range rects {
			binary.Read(r, binary.BigEndian, &rects[i])
		}
		return DebugGetQuadtreeResponse{Rects: rects}, nil
	case MsgDebugGetObjectPathResponse:
		var id uint32
		var n uint32
		binary.Read(r, binary.BigEndian, &id)
		binary.Read(r, binary.BigEndian, &n)
		waypoints := make([]objects.Vec3, n)
		for i := range waypoints {
			binary.Read(r, binary.BigEndian, &waypoints[i])
		}
		return DebugGetObjectPathResponse{ObjectID: objects.ID(id), Waypoints: waypoints}, nil
	default:
		return nil, fmt.Errorf("wire: unknown message type %d", msgType)
	}
}
