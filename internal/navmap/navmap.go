// Package navmap implements the immutable per-map tile grid (spec.md §4.1):
// a square grid of WALKABLE/SOLID tiles with bijective world<->tile
// conversions.
package navmap

import "tickworld/internal/objects"

// Tile is one cell of a navmap.
type Tile uint8

const (
	Walkable Tile = iota
	Solid
)

// Navmap is immutable after construction.
type Navmap struct {
	size       int // N, tiles per side
	tiles      []Tile
	mapCenter  objects.Vec2 // unscaled map center, matches Map.Position
	mapDim     float64      // unscaled map dimension (square) used to derive T
	gameScale  float64
	tileSize   float64 // T = mapDim*gameScale/size
	halfMapExt float64 // half of mapDim*gameScale
}

// New builds an immutable navmap from a decoded row-major tile slice.
// mapCenter/mapDim/gameScale are the owning map's world parameters, needed
// for the world<->tile conversions in §4.1.
func New(size int, tiles []Tile, mapCenter objects.Vec2, mapDim, gameScale float64) *Navmap {
	worldSize := mapDim * gameScale
	return &Navmap{
		size:       size,
		tiles:      tiles,
		mapCenter:  mapCenter,
		mapDim:     mapDim,
		gameScale:  gameScale,
		tileSize:   worldSize / float64(size),
		halfMapExt: worldSize / 2,
	}
}

// Size returns N, the number of tiles per side.
func (n *Navmap) Size() int { return n.size }

// TileSize returns T, the world-space width/height of one tile.
func (n *Navmap) TileSize() float64 { return n.tileSize }

// TileAt returns the tile type at (col,row); out-of-bounds coordinates are
// SOLID (spec.md §3, §8 boundary behaviors).
func (n *Navmap) TileAt(col, row int) Tile {
	if col < 0 || row < 0 || col >= n.size || row >= n.size {
		return Solid
	}
	return n.tiles[row*n.size+col]
}

func (n *Navmap) IsWalkable(col, row int) bool { return n.TileAt(col, row) == Walkable }

// TileCoord is an integer (col,row) in the navmap's grid.
type TileCoord struct {
	Col, Row int
}

// WorldToTile snaps a world XY point to its containing tile coordinate,
// per spec.md §4.1: floor((worldXY - mapCenter*scale + halfMapSize)/T).
func (n *Navmap) WorldToTile(world objects.Vec2) TileCoord {
	scaledCenter := n.mapCenter.Scale(n.gameScale)
	rel := world.Sub(scaledCenter).Add(objects.Vec2{X: n.halfMapExt, Y: n.halfMapExt})
	col := int(floorDiv(rel.X, n.tileSize))
	row := int(floorDiv(rel.Y, n.tileSize))
	return TileCoord{Col: col, Row: row}
}

// TileToWorld returns the world-space center of a tile at the given z,
// passed through unchanged (spec.md §4.1).
func (n *Navmap) TileToWorld(tc TileCoord, z float64) objects.Vec3 {
	scaledCenter := n.mapCenter.Scale(n.gameScale)
	x := (float64(tc.Col)+0.5)*n.tileSize - n.halfMapExt + scaledCenter.X
	y := (float64(tc.Row)+0.5)*n.tileSize - n.halfMapExt + scaledCenter.Y
	return objects.Vec3{X: x, Y: y, Z: z}
}

func floorDiv(v, d float64) float64 {
	q := v / d
	f := float64(int64(q))
	if q < 0 && f != q {
		f--
	}
	return f
}
