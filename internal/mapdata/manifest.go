package mapdata

import (
	"encoding/json"
	"fmt"
	"strings"
)

// transformEntry is one map's manifest transform record.
type transformEntry struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// connectionEntry is one map's manifest connection record.
type connectionEntry struct {
	Top    string `json:"top"`
	Right  string `json:"right"`
	Bottom string `json:"bottom"`
	Left   string `json:"left"`
}

type manifestFile struct {
	MapTransforms  map[string]transformEntry  `json:"map_transforms"`
	MapConnections map[string]connectionEntry `json:"map_connections"`
}

// parsedManifest is the manifest after stripping ".json" from both keys and
// connection values, per spec.md §4.2.
type parsedManifest struct {
	transforms  map[string]transformEntry
	connections map[string]connectionEntry
}

func stripJSONSuffix(s string) string {
	return strings.TrimSuffix(s, ".json")
}

func parseManifest(raw []byte) (parsedManifest, error) {
	var f manifestFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return parsedManifest{}, fmt.Errorf("parse manifest: %w", err)
	}

	transforms := make(map[string]transformEntry, len(f.MapTransforms))
	for k, v := range f.MapTransforms {
		transforms[stripJSONSuffix(k)] = v
	}

	connections := make(map[string]connectionEntry, len(f.MapConnections))
	for k, v := range f.MapConnections {
		connections[stripJSONSuffix(k)] = connectionEntry{
			Top:    stripJSONSuffix(v.Top),
			Right:  stripJSONSuffix(v.Right),
			Bottom: stripJSONSuffix(v.Bottom),
			Left:   stripJSONSuffix(v.Left),
		}
	}

	return parsedManifest{transforms: transforms, connections: connections}, nil
}
