package vecatlas

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/agg-go/vecatlas/internal/atlas"
	"github.com/agg-go/vecatlas/internal/config"
	"github.com/agg-go/vecatlas/internal/svg"
)

// BuildAtlas decodes data, renders every root-timeline frame to its own SVG
// document, and runs the AtlasBuilder pipeline over the result: dedup,
// pack, and a manifest ready to write alongside the combined atlas SVG.
// It is the single-call path for a caller that owns a container's raw
// bytes rather than a directory of already-rendered frame-<index>.svg
// files (the shape cmd/atlasbuild and internal/atlasrun expect).
func BuildAtlas(data []byte, animation string, strokeMode svg.StrokeMode, cfg config.Config, log zerolog.Logger) (atlas.BuildResult, error) {
	c, err := Decode(data, cfg, log)
	if err != nil {
		return atlas.BuildResult{}, fmt.Errorf("vecatlas: decoding container: %w", err)
	}

	frames := RenderFrames(c, strokeMode)
	if len(frames) == 0 {
		return atlas.BuildResult{}, fmt.Errorf("vecatlas: container %q produced no frames", animation)
	}

	result, err := atlas.BuildAnimation(animation, c.FrameRate, frames, cfg, atlas.ExportOptions{})
	if err != nil {
		return atlas.BuildResult{}, fmt.Errorf("vecatlas: building atlas for %q: %w", animation, err)
	}
	return result, nil
}
