// Package app wires the whole process together: it loads maps, starts the
// path worker pool, binds the transport, seeds the initial NPC roster, and
// hands a ready-to-run engine back to cmd/server (spec.md §4.8's
// initialization section).
package app

import (
	"context"
	"fmt"

	"tickworld/internal/config"
	"tickworld/internal/eventbus"
	"tickworld/internal/mapdata"
	"tickworld/internal/navmap"
	"tickworld/internal/objects"
	"tickworld/internal/pathing"
	"tickworld/internal/pathpool"
	"tickworld/internal/simcore"
	"tickworld/internal/simerr"
	"tickworld/internal/transport"
)

// App owns every long-lived collaborator for the lifetime of the process.
type App struct {
	Maps      *mapdata.Repository
	Bus       *eventbus.Bus
	Pool      *pathpool.Pool
	Paths     *pathing.Controller
	World     *simcore.World
	Transport transport.Host
	Engine    *simcore.Engine
}

// New loads assets, binds the transport on addr, and seeds the initial NPC
// roster (spec.md §4.8).
func New(assetsDir, addr string) (*App, error) {
	maps, err := mapdata.Load(assetsDir)
	if err != nil {
		return nil, err
	}

	bus := eventbus.New()
	pool := pathpool.New(pathpool.DefaultWorkers, 0)
	paths := pathing.New(pool)
	world := simcore.NewWorld(maps, bus, paths)

	host, err := transport.NewWSHost(addr)
	if err != nil {
		pool.Stop()
		return nil, fmt.Errorf("%w: %v", simerr.ErrTransport, err)
	}

	engine := simcore.NewEngine(world, maps, bus, paths, host)

	a := &App{
		Maps:      maps,
		Bus:       bus,
		Pool:      pool,
		Paths:     paths,
		World:     world,
		Transport: host,
		Engine:    engine,
	}
	a.seedNPCRoster()
	return a, nil
}

// seedNPCRoster creates the one EVIL NPC spec.md §4.8 requires at process
// start, reserving id 1 for it.
func (a *App) seedNPCRoster() {
	mapName := "forest_1"
	entry, ok := a.Maps.Get(mapName)
	if !ok {
		names := a.Maps.Names()
		if len(names) == 0 {
			return
		}
		mapName = names[0]
		entry, _ = a.Maps.Get(mapName)
	}

	spawnTile := navmap.TileCoord{Col: 32, Row: 32}
	spawnPos := entry.Navmap.TileToWorld(spawnTile, 0)

	npc := &objects.Object{
		ID:          objects.ID(config.SeedNPCID),
		Type:        objects.TypeNPC,
		Position:    spawnPos,
		Faction:     objects.FactionEvil,
		State:       objects.StateIdle,
		Facing:      objects.FacingS,
		Speed:       config.PlayerBaseSpeed / 2,
		Scale:       config.SeedNPCScale,
		ActionTimer: 3,
		Collider:    objects.DefaultCollider(objects.TypeNPC, objects.AttackNone),
		CurrentMap:  mapName,
	}
	a.World.Put(npc)
}

// Run drives the tick loop until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	return a.Engine.Run(ctx)
}

// Close releases the worker pool and transport.
func (a *App) Close() error {
	a.Pool.Stop()
	return a.Transport.Close()
}
