package simcore

import (
	"testing"

	"tickworld/internal/config"
	"tickworld/internal/eventbus"
	"tickworld/internal/mapdata"
	"tickworld/internal/navmap"
	"tickworld/internal/objects"
	"tickworld/internal/pathing"
	"tickworld/internal/pathpool"
	"tickworld/internal/quadtree"
)

func openNavmap(size int) *navmap.Navmap {
	tiles := make([]navmap.Tile, size*size)
	return navmap.New(size, tiles, objects.Vec2{}, float64(size)*config.MapTileSize, config.MapGameScale)
}

func testWorld(t *testing.T, mapName string) (*World, *eventbus.Bus) {
	t.Helper()
	bus := eventbus.New()
	pool := pathpool.New(1, 8)
	t.Cleanup(pool.Stop)
	paths := pathing.New(pool)

	m := objects.Map{
		Name:        mapName,
		Position:    objects.Vec2{},
		Dimensions:  objects.Vec2{X: 64, Y: 64},
		Connections: [4]string{"", "", "", ""},
	}
	aabb := m.WorldAABB(config.MapGameScale)
	entry := &mapdata.MapEntry{Map: m, Navmap: openNavmap(64), Tree: quadtree.New(aabb.Min, aabb.Max)}
	r := mapdata.NewForTest(map[string]*mapdata.MapEntry{mapName: entry}, []string{mapName})

	w := NewWorld(r, bus, paths)
	return w, bus
}

func TestIdleWithoutPathLoiterTimerCountsDown(t *testing.T) {
	w, _ := testWorld(t, "forest_1")
	npc := &objects.Object{ID: 10, Type: objects.TypeNPC, Faction: objects.FactionEvil, CurrentMap: "forest_1", ActionTimer: 1}
	w.Put(npc)
	w.RebuildObjectsByMap()

	// Drive through updateNPC (not idleWithoutPath directly): the action
	// timer decrements exactly once per tick, inline within the
	// no-target branch, before the >=0 check runs.
	w.updateNPC(npc, 100)
	if npc.ActionTimer >= 1 {
		t.Fatalf("expected action timer to decrement, got %v", npc.ActionTimer)
	}
	if w.Paths.HasPath(npc.ID) {
		t.Fatalf("no wander target should be set before the loiter timer expires")
	}

	before := npc.ActionTimer
	w.updateNPC(npc, 100)
	if npc.ActionTimer != before-0.1 {
		t.Fatalf("expected exactly one decrement per tick, got %v then %v", before, npc.ActionTimer)
	}
}

func TestIdleWithoutPathResetsLoiterTimerSameTickItCrossesZero(t *testing.T) {
	w, _ := testWorld(t, "forest_1")
	npc := &objects.Object{ID: 10, Type: objects.TypeNPC, Faction: objects.FactionEvil, CurrentMap: "forest_1", ActionTimer: 0}
	w.Put(npc)
	w.RebuildObjectsByMap()

	w.updateNPC(npc, 25)

	if w.Paths.HasPath(npc.ID) {
		return
	}
	if npc.ActionTimer != config.NPCLoiterTimer.Seconds() {
		t.Fatalf("expected the loiter timer to reset within the same tick it crossed zero, got %v", npc.ActionTimer)
	}
}

func TestIdleWithoutPathAcquiresAggroTarget(t *testing.T) {
	w, bus := testWorld(t, "forest_1")
	npc := &objects.Object{ID: 10, Type: objects.TypeNPC, Faction: objects.FactionEvil, CurrentMap: "forest_1", Speed: 0.001}
	player := &objects.Object{ID: 11, Type: objects.TypePlayer, Faction: objects.FactionGood, CurrentMap: "forest_1", Position: objects.Vec3{X: 10}}
	w.Put(npc)
	w.Put(player)
	w.RebuildObjectsByMap()

	var gotAggro bool
	bus.Subscribe(eventbus.NPCAggro, func(payload any) {
		p := payload.(eventbus.NPCAggroPayload)
		if p.NPCID == uint32(npc.ID) && p.TargetID == uint32(player.ID) {
			gotAggro = true
		}
	})

	w.idleWithoutPath(npc, 25)

	if !gotAggro {
		t.Fatalf("expected NPCAggro to be published")
	}
	target := w.NPCTargetFor(npc.ID)
	if target == nil || target.TargetID != player.ID {
		t.Fatalf("expected npc target to be recorded, got %+v", target)
	}
}

func TestUpdateNPCRunningTransitionsToIdle(t *testing.T) {
	w, _ := testWorld(t, "forest_1")
	npc := &objects.Object{ID: 10, Type: objects.TypeNPC, CurrentMap: "forest_1", State: objects.StateRunning}
	w.Put(npc)
	w.RebuildObjectsByMap()

	w.updateNPC(npc, 25)

	if npc.State != objects.StateIdle {
		t.Fatalf("expected RUNNING to transition to IDLE, got %v", npc.State)
	}
}

func TestUpdateMeleeAttackPublishesWhileTargetInRange(t *testing.T) {
	w, bus := testWorld(t, "forest_1")
	npc := &objects.Object{
		ID: 10, Type: objects.TypeNPC, CurrentMap: "forest_1", State: objects.StateMeleeAttack,
		ActionTimer: -1, Collider: objects.DefaultCollider(objects.TypeNPC, objects.AttackNone), Scale: 1,
	}
	player := &objects.Object{
		ID: 11, Type: objects.TypePlayer, CurrentMap: "forest_1",
		Collider: objects.DefaultCollider(objects.TypePlayer, objects.AttackNone), Scale: 1,
	}
	w.Put(npc)
	w.Put(player)
	w.SetNPCTarget(npc.ID, player.ID, config.NPCPathRecalc.Seconds())

	var attacked bool
	bus.Subscribe(eventbus.NPCAttack, func(payload any) {
		attacked = true
	})

	w.updateMeleeAttack(npc, 25)

	if !attacked {
		t.Fatalf("expected NPCAttack to be published")
	}
	if npc.ActionTimer != config.NPCAttackAnim.Seconds() {
		t.Fatalf("expected action timer reset to attack anim duration, got %v", npc.ActionTimer)
	}
}

func TestUpdateMeleeAttackReturnsToIdleWhenTargetGone(t *testing.T) {
	w, _ := testWorld(t, "forest_1")
	npc := &objects.Object{ID: 10, Type: objects.TypeNPC, CurrentMap: "forest_1", State: objects.StateMeleeAttack, ActionTimer: -1}
	w.Put(npc)

	w.updateMeleeAttack(npc, 25)

	if npc.State != objects.StateIdle {
		t.Fatalf("expected IDLE when no target entry exists, got %v", npc.State)
	}
}
