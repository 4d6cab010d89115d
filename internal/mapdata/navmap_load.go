package mapdata

import (
	"fmt"
	"image/png"
	"os"

	"tickworld/internal/config"
	"tickworld/internal/navmap"
)

// solidTileThreshold is the PNG-tile threshold decided in DESIGN.md's Open
// Question resolution: red channel < 128 is SOLID.
const solidTileThreshold = 128

// decodeNavmapPNG decodes a single-channel-threshold grayscale navmap image
// into a row-major tile slice: red < 128 is SOLID, per DESIGN.md's resolved
// threshold decision.
func decodeNavmapPNG(path string) (size int, tiles []navmap.Tile, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, nil, fmt.Errorf("open navmap %s: %w", path, err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return 0, nil, fmt.Errorf("decode navmap %s: %w", path, err)
	}

	bounds := img.Bounds()
	size = bounds.Dx()
	if bounds.Dy() != size {
		return 0, nil, fmt.Errorf("navmap %s is not square (%dx%d)", path, bounds.Dx(), bounds.Dy())
	}
	if size != config.NavGridSize {
		return 0, nil, fmt.Errorf("navmap %s has unexpected size %d, want %d", path, size, config.NavGridSize)
	}

	tiles = make([]navmap.Tile, size*size)
	for row := 0; row < size; row++ {
		for col := 0; col < size; col++ {
			r, _, _, _ := img.At(bounds.Min.X+col, bounds.Min.Y+row).RGBA()
			r8 := r >> 8 // RGBA() is 16-bit-scaled; reduce to 8-bit.
			if r8 < solidTileThreshold {
				tiles[row*size+col] = navmap.Solid
			} else {
				tiles[row*size+col] = navmap.Walkable
			}
		}
	}

	return size, tiles, nil
}
