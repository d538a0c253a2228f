package atlasrun

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/agg-go/vecatlas/internal/atlas"
)

// SpriteManifest aggregates every animation built for one sprite: sizes,
// the animation list, a rough compression ratio, and output file paths.
type SpriteManifest struct {
	Sprite           string                `json:"sprite"`
	Animations       []SpriteAnimationInfo `json:"animations"`
	CompressionRatio float64               `json:"compression_ratio"`
}

// SpriteAnimationInfo is one animation's entry in the sprite manifest.
type SpriteAnimationInfo struct {
	Name         string `json:"name"`
	AtlasPath    string `json:"atlas_path"`
	ManifestPath string `json:"manifest_path"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	FrameCount   int    `json:"frame_count"`
	UniqueCount  int    `json:"unique_count"`
}

// builtAnimation is one animation's build output, pending sprite-manifest
// aggregation.
type builtAnimation struct {
	name     string
	dir      string
	manifest atlas.Manifest
}

func buildSpriteManifest(sprite string, outputs []builtAnimation) SpriteManifest {
	m := SpriteManifest{Sprite: sprite}

	var totalFrames, totalUnique int
	for _, o := range outputs {
		totalFrames += len(o.manifest.Playback)
		totalUnique += len(o.manifest.Frames)
		m.Animations = append(m.Animations, SpriteAnimationInfo{
			Name:         o.name,
			AtlasPath:    o.dir + "/atlas.svg",
			ManifestPath: o.dir + "/atlas.json",
			Width:        o.manifest.Width,
			Height:       o.manifest.Height,
			FrameCount:   len(o.manifest.Playback),
			UniqueCount:  len(o.manifest.Frames),
		})
	}
	if totalFrames > 0 {
		m.CompressionRatio = float64(totalUnique) / float64(totalFrames)
	}
	return m
}

func writeManifestJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
