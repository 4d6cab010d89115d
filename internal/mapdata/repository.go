// Package mapdata implements C2, the map repository: it loads the map
// manifest and navmap textures once at startup and exposes immutable,
// read-only per-map metadata, navmaps, and quadtrees (spec.md §4.2).
package mapdata

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"tickworld/internal/config"
	"tickworld/internal/navmap"
	"tickworld/internal/objects"
	"tickworld/internal/quadtree"
	"tickworld/internal/simerr"
)

const manifestFilename = "map_global_data.json"

// MapEntry bundles one map's static metadata with its navmap and its
// per-tick-refillable quadtree.
type MapEntry struct {
	Map    objects.Map
	Navmap *navmap.Navmap
	Tree   *quadtree.Quadtree
}

// Repository is immutable after Load.
type Repository struct {
	entries map[string]*MapEntry
	order   []string // deterministic iteration order
}

// Load parses the manifest and decodes every referenced navmap under
// <assetsDir>/navmaps. It fails with a wrapped simerr.ErrConfig on any
// manifest/navmap mismatch or decode failure (spec.md §4.2, §7).
func Load(assetsDir string) (*Repository, error) {
	manifestPath := filepath.Join(assetsDir, manifestFilename)
	raw, err := os.ReadFile(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("%w: read manifest: %v", simerr.ErrConfig, err)
	}

	parsed, err := parseManifest(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", simerr.ErrConfig, err)
	}

	if len(parsed.transforms) != len(parsed.connections) {
		return nil, fmt.Errorf("%w: manifest has %d transforms but %d connection entries",
			simerr.ErrConfig, len(parsed.transforms), len(parsed.connections))
	}

	navmapDir := filepath.Join(assetsDir, "navmaps")
	names := make([]string, 0, len(parsed.transforms))
	for name := range parsed.transforms {
		names = append(names, name)
	}
	sort.Strings(names)

	entries := make(map[string]*MapEntry, len(names))
	for _, name := range names {
		conn, ok := parsed.connections[name]
		if !ok {
			return nil, fmt.Errorf("%w: map %q has a transform but no connections entry", simerr.ErrConfig, name)
		}
		transform := parsed.transforms[name]

		m := objects.Map{
			Name:       name,
			Position:   objects.Vec2{X: transform.X, Y: transform.Y},
			Dimensions: objects.Vec2{X: transform.Width, Y: transform.Height},
			Connections: [4]string{
				objects.North: conn.Top,
				objects.East:  conn.Right,
				objects.South: conn.Bottom,
				objects.West:  conn.Left,
			},
		}

		navPath := filepath.Join(navmapDir, name+"_navmap.png")
		size, tiles, err := decodeNavmapPNG(navPath)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", simerr.ErrConfig, err)
		}

		nm := navmap.New(size, tiles, m.Position, m.Dimensions.X, config.MapGameScale)

		aabb := m.WorldAABB(config.MapGameScale)
		tree := quadtree.New(aabb.Min, aabb.Max)

		entries[name] = &MapEntry{Map: m, Navmap: nm, Tree: tree}
	}

	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: manifest %s named no maps", simerr.ErrConfig, manifestPath)
	}

	return &Repository{entries: entries, order: names}, nil
}

// NewForTest builds a Repository directly from pre-constructed entries,
// bypassing the manifest/PNG loading pipeline, for use by other packages'
// tests that need a minimal map repository.
func NewForTest(entries map[string]*MapEntry, order []string) *Repository {
	return &Repository{entries: entries, order: order}
}

// Get returns the entry for a known map name.
func (r *Repository) Get(name string) (*MapEntry, bool) {
	e, ok := r.entries[name]
	return e, ok
}

// Names returns every known map name in deterministic order.
func (r *Repository) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Exists reports whether name is a known map.
func (r *Repository) Exists(name string) bool {
	_, ok := r.entries[name]
	return ok
}

// TrimmedName strips a trailing ".json" if present, matching the manifest
// key normalization rule (spec.md §4.2). Exposed for callers that receive
// raw manifest-shaped strings from elsewhere.
func TrimmedName(name string) string {
	return strings.TrimSuffix(name, ".json")
}
