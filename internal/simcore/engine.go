package simcore

import (
	"context"
	"fmt"
	"time"

	"tickworld/internal/config"
	"tickworld/internal/eventbus"
	"tickworld/internal/gamelog"
	"tickworld/internal/mapdata"
	"tickworld/internal/objects"
	"tickworld/internal/pathing"
	"tickworld/internal/rng"
	"tickworld/internal/simerr"
	"tickworld/internal/transport"
	"tickworld/internal/wire"
)

// meleeSpawnOffsets holds the facing-direction-specific attack spawn offsets
// of spec.md §6, in multiples of MAP_TILE_SIZE.
var meleeSpawnOffsets = [8]objects.Vec2{
	objects.FacingN:  {X: 0, Y: 0.8},
	objects.FacingNE: {X: 0.3, Y: 0.6},
	objects.FacingE:  {X: 0.5, Y: 0},
	objects.FacingSE: {X: 0.3, Y: -0.6},
	objects.FacingS:  {X: 0, Y: -0.8},
	objects.FacingSW: {X: -0.3, Y: -0.6},
	objects.FacingW:  {X: -0.5, Y: 0},
	objects.FacingNW: {X: -0.3, Y: 0.6},
}

// Engine is C8, the main tick loop: it drains transport events with a
// bounded service budget, then, once dt_ms accumulates past one tick
// interval, advances the whole simulation and broadcasts state (spec.md
// §4.8).
type Engine struct {
	World     *World
	Maps      *mapdata.Repository
	Bus       *eventbus.Bus
	Paths     *pathing.Controller
	Transport transport.Host

	peerObjects map[transport.PeerID]objects.ID
	lastTickMs  int64
}

// NewEngine wires an engine to its collaborators and subscribes the
// collision-driven removal rule from the tick engine's initialization
// (spec.md §4.8).
func NewEngine(world *World, maps *mapdata.Repository, bus *eventbus.Bus, paths *pathing.Controller, host transport.Host) *Engine {
	e := &Engine{
		World:       world,
		Maps:        maps,
		Bus:         bus,
		Paths:       paths,
		Transport:   host,
		peerObjects: make(map[transport.PeerID]objects.ID),
	}
	bus.Subscribe(eventbus.NetworkObjectCollision, e.onNetworkCollision)
	return e
}

func (e *Engine) onNetworkCollision(payload any) {
	p := payload.(eventbus.NetworkObjectCollisionPayload)
	if p.RHS == 0 {
		e.World.SetLifetime(objects.ID(p.LHS), 0)
	}
}

// Run drives the tick loop until ctx is cancelled.
func (e *Engine) Run(ctx context.Context) error {
	e.lastTickMs = e.Transport.NowMs()
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		e.drainTransport(config.TransportServiceCap)

		now := e.Transport.NowMs()
		dtMs := float64(now - e.lastTickMs)
		if dtMs >= float64(config.TickInterval.Milliseconds()) {
			e.tick(dtMs)
			e.lastTickMs = now
		}
	}
}

// drainTransport services inbound events for up to budget before returning,
// never blocking the simulation thread longer than that (spec.md §4.8, §5).
func (e *Engine) drainTransport(budget time.Duration) {
	timer := time.NewTimer(budget)
	defer timer.Stop()
	for {
		select {
		case ev := <-e.Transport.Events():
			e.handleEvent(ev)
		case <-timer.C:
			return
		}
	}
}

func (e *Engine) handleEvent(ev transport.Event) {
	switch ev.Kind {
	case transport.EventConnect:
		e.onConnect(ev.Peer)
	case transport.EventReceive:
		e.onReceive(ev.Peer, ev.Data)
	case transport.EventDisconnect:
		e.onDisconnect(ev.Peer)
	}
}

func (e *Engine) onConnect(peer transport.PeerID) {
	id := e.World.AllocateID()
	mapName, spawn := e.randomSpawnInStartingZone()

	obj := &objects.Object{
		ID:         id,
		Type:       objects.TypePlayer,
		Position:   spawn,
		Faction:    objects.FactionGood,
		State:      objects.StateRunning,
		Facing:     objects.FacingS,
		Speed:      config.PlayerBaseSpeed,
		Scale:      config.PlayerScale,
		Collider:   objects.DefaultCollider(objects.TypePlayer, objects.AttackNone),
		CurrentMap: mapName,
	}
	e.World.Put(obj)
	e.peerObjects[peer] = id

	e.sendTo(peer, transport.Reliable, wire.PlayerConnected{ObjectID: id})
	e.broadcast(transport.Reliable, wire.ObjectCreated{Object: *obj})
}

// randomSpawnInStartingZone picks a uniform-random point inside forest_1's
// world AABB, or the repository's first map if forest_1 is absent (spec.md
// §4.8 leaves the starting zone unnamed; DESIGN.md records this choice).
func (e *Engine) randomSpawnInStartingZone() (string, objects.Vec3) {
	mapName := "forest_1"
	entry, ok := e.Maps.Get(mapName)
	if !ok {
		names := e.Maps.Names()
		if len(names) == 0 {
			return "", objects.Vec3{}
		}
		mapName = names[0]
		entry, _ = e.Maps.Get(mapName)
	}

	aabb := entry.Map.WorldAABB(config.MapGameScale)
	x := aabb.Min.X + rng.Float64()*(aabb.Max.X-aabb.Min.X)
	y := aabb.Min.Y + rng.Float64()*(aabb.Max.Y-aabb.Min.Y)
	return mapName, objects.Vec3{X: x, Y: y}
}

func (e *Engine) onReceive(peer transport.PeerID, data []byte) {
	msg, err := wire.Decode(data)
	if err != nil {
		gamelog.Log.WithError(err).WithField("peer", peer).Warn("dropping malformed or version-mismatched message")
		return
	}

	switch m := msg.(type) {
	case wire.ObjectStateUpdate:
		e.onObjectStateUpdate(peer, m)
	case wire.DebugGetQuadtreeRequest:
		e.onDebugGetQuadtree(peer)
	case wire.DebugGetObjectPathRequest:
		e.onDebugGetObjectPath(peer, m)
	case wire.CancelAttack:
		e.World.CancelPendingSpawnsFor(m.AttackerID)
	case wire.BeginAttackRequest:
		e.onBeginAttack(peer, m)
	default:
		gamelog.Log.WithField("peer", peer).Warn("received message kind not accepted server-bound")
	}
}

func (e *Engine) onObjectStateUpdate(peer transport.PeerID, m wire.ObjectStateUpdate) {
	playerID, ok := e.peerObjects[peer]
	if !ok || playerID != m.ObjectID {
		gamelog.Log.WithField("peer", peer).Warn("object state update for a peer's non-owned id, dropping")
		return
	}
	state := m.State
	state.ID = m.ObjectID
	e.World.Put(&state)
}

func (e *Engine) onDebugGetQuadtree(peer transport.PeerID) {
	playerID, ok := e.peerObjects[peer]
	if !ok {
		return
	}
	player := e.World.Get(playerID)
	if player == nil {
		gamelog.Log.WithError(fmt.Errorf("%w: no object %d for peer", simerr.ErrPrecondition, playerID)).
			WithField("peer", peer).Warn("dropping quadtree debug request")
		return
	}
	entry, ok := e.Maps.Get(player.CurrentMap)
	if !ok {
		return
	}
	rects := entry.Tree.DebugRects()
	resp := wire.DebugGetQuadtreeResponse{Rects: make([]wire.DebugRect, len(rects))}
	for i, r := range rects {
		resp.Rects[i] = wire.DebugRect{CenterX: r.Center.X, CenterY: r.Center.Y, SizeX: r.Size.X, SizeY: r.Size.Y}
	}
	e.sendTo(peer, transport.Reliable, resp)
}

func (e *Engine) onDebugGetObjectPath(peer transport.PeerID, m wire.DebugGetObjectPathRequest) {
	path := e.Paths.GetPath(m.ObjectID)
	waypoints := make([]objects.Vec3, len(path))
	copy(waypoints, path)
	e.sendTo(peer, transport.Unreliable, wire.DebugGetObjectPathResponse{ObjectID: m.ObjectID, Waypoints: waypoints})
}

func (e *Engine) onBeginAttack(peer transport.PeerID, m wire.BeginAttackRequest) {
	if m.AttackType != objects.AttackMelee {
		e.sendTo(peer, transport.Reliable, wire.BeginAttackResponse{Allowed: false, AttackType: m.AttackType, AttackerID: m.AttackerID, ProjectileType: m.ProjectileType})
		return
	}

	attacker := e.World.Get(m.AttackerID)
	if attacker == nil {
		gamelog.Log.WithError(fmt.Errorf("%w: no attacker object %d", simerr.ErrPrecondition, m.AttackerID)).
			WithField("peer", peer).Warn("dropping attack request")
		return
	}

	offset := meleeSpawnOffsets[attacker.Facing%8].Scale(config.MapTileSize)
	spawnPos := objects.Vec3{X: attacker.Position.X + offset.X, Y: attacker.Position.Y + offset.Y, Z: attacker.Position.Z}

	attackObj := objects.Object{
		ID:         e.World.AllocateID(),
		ParentID:   m.AttackerID,
		Type:       objects.TypeAttack,
		AttackType: m.AttackType,
		Position:   spawnPos,
		Faction:    attacker.Faction,
		Scale:      config.MeleeAttackHalf,
		Collider:   objects.DefaultCollider(objects.TypeAttack, m.AttackType),
		CurrentMap: attacker.CurrentMap,
	}
	e.World.AddPendingSpawn(&PendingSpawn{
		Object:   attackObj,
		SpawnIn:  config.FastMeleeCharge.Seconds(),
		Lifetime: config.FastMeleeSlash.Seconds(),
	})

	e.sendTo(peer, transport.Reliable, wire.BeginAttackResponse{
		Allowed:        true,
		AttackType:     m.AttackType,
		AttackerID:     m.AttackerID,
		ChargeSeconds:  config.FastMeleeCharge.Seconds(),
		ProjectileType: m.ProjectileType,
	})
}

func (e *Engine) onDisconnect(peer transport.PeerID) {
	id, ok := e.peerObjects[peer]
	if !ok {
		return
	}
	delete(e.peerObjects, peer)
	e.World.Remove(id)
	e.broadcast(transport.Reliable, wire.PlayerDisconnected{ObjectID: id})
}

// tick advances the simulation by one step (spec.md §4.8 steps 1-7).
func (e *Engine) tick(dtMs float64) {
	for _, name := range e.Maps.Names() {
		if entry, ok := e.Maps.Get(name); ok {
			entry.Tree.Clear()
		}
	}

	e.World.PreUpdate()

	for _, o := range e.World.All() {
		e.World.UpdateObject(o, dtMs)
	}
	expired := e.World.TickLifetimes(dtMs / 1000)
	for _, o := range e.World.All() {
		entry, ok := e.Maps.Get(o.CurrentMap)
		if !ok {
			continue
		}
		half := o.AABBHalfExtents()
		entry.Tree.Insert(o.ID, o.Position.XY(), objects.Vec2{X: half.X * 2, Y: half.Y * 2})
	}

	for _, p := range e.World.TickPendingSpawns(dtMs / 1000) {
		e.World.Put(&p.Object)
		if p.Lifetime > 0 {
			e.World.SetLifetime(p.Object.ID, p.Lifetime)
		}
		e.broadcast(transport.Reliable, wire.ObjectCreated{Object: p.Object})
	}

	for _, id := range expired {
		e.broadcast(transport.Reliable, wire.ObjectDestroyed{ObjectID: id})
		e.World.Remove(id)
	}

	for _, o := range e.World.All() {
		e.broadcast(transport.Unreliable, wire.ObjectStateSnapshot{Object: *o})
	}
}

func (e *Engine) sendTo(peer transport.PeerID, ch transport.Channel, msg any) {
	data, err := wire.Encode(msg)
	if err != nil {
		gamelog.Log.WithError(err).Error("encode failed")
		return
	}
	if err := e.Transport.Send(peer, ch, data); err != nil {
		gamelog.Log.WithError(err).WithField("peer", peer).Warn("send failed")
	}
}

func (e *Engine) broadcast(ch transport.Channel, msg any) {
	data, err := wire.Encode(msg)
	if err != nil {
		gamelog.Log.WithError(err).Error("encode failed")
		return
	}
	e.Transport.Broadcast(ch, data)
}
