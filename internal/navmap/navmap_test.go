package navmap

import (
	"testing"

	"tickworld/internal/objects"
)

func flatWalkable(n int) []Tile {
	t := make([]Tile, n*n)
	for i := range t {
		t[i] = Walkable
	}
	return t
}

func TestWorldTileRoundTrip(t *testing.T) {
	nm := New(128, flatWalkable(128), objects.Vec2{}, 256, 1)
	for _, tc := range []TileCoord{{Col: 0, Row: 0}, {Col: 64, Row: 64}, {Col: 127, Row: 127}} {
		world := nm.TileToWorld(tc, 3.5)
		got := nm.WorldToTile(world.XY())
		if got != tc {
			t.Fatalf("round trip mismatch: %v -> %v -> %v", tc, world, got)
		}
		if world.Z != 3.5 {
			t.Fatalf("z not passed through: got %v", world.Z)
		}
		again := nm.WorldToTile(nm.TileToWorld(got, 0).XY())
		if again != got {
			t.Fatalf("round trip not idempotent: %v vs %v", got, again)
		}
	}
}

func TestOutOfBoundsIsSolid(t *testing.T) {
	nm := New(4, flatWalkable(4), objects.Vec2{}, 8, 1)
	if nm.IsWalkable(-1, 0) || nm.IsWalkable(0, -1) || nm.IsWalkable(4, 0) || nm.IsWalkable(0, 4) {
		t.Fatalf("expected out-of-bounds tiles to be SOLID")
	}
}
