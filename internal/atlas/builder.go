package atlas

import (
	"fmt"

	"github.com/agg-go/vecatlas/internal/config"
)

// BuildResult is one animation's finished atlas output.
type BuildResult struct {
	SVG      string
	Manifest Manifest
	// Images holds the unique externalized image payloads when exportOpts
	// requested externalization; empty otherwise.
	Images []ExportedImage
}

// BuildAnimation runs the full AtlasBuilder pipeline over one animation's
// already-rendered frame documents, in playback order: dedup definitions
// (rewriting references to canonical ids), optionally externalize image
// defs, collapse structurally identical frames, pack the survivors, and emit
// the combined SVG document (canonical defs sorted topologically) plus its
// manifest.
func BuildAnimation(animation string, frameRate float64, sources []string, cfg config.Config, exportOpts ExportOptions) (BuildResult, error) {
	if len(sources) == 0 {
		return BuildResult{}, fmt.Errorf("atlas: animation %q has no frames", animation)
	}

	frames := make([]Frame, len(sources))
	names := make([]string, len(sources))
	for i, src := range sources {
		name := fmt.Sprintf("%s_%d", animation, i)
		frames[i] = ParseFrame(name, src)
		names[i] = name
	}

	dedupRes, err := Dedup(animation, frames, cfg.ShortIDs)
	if err != nil {
		return BuildResult{}, err
	}

	defs, images, err := ExternalizeImages(dedupRes.Defs, exportOpts)
	if err != nil {
		return BuildResult{}, err
	}

	unique := DedupFrames(dedupRes.Frames)

	rects := make([]packRect, len(unique))
	for i, u := range unique {
		rects[i] = packRect{name: u.Name, width: int(u.ViewBoxW), height: int(u.ViewBoxH)}
	}
	packed := Pack(rects, cfg.AtlasPadding, cfg.AtlasStripWidthCap)

	svg := EmitSVG(animation, defs, packed, unique)
	manifest := BuildManifest(animation, frameRate, packed, unique, names)

	return BuildResult{SVG: svg, Manifest: manifest, Images: images}, nil
}
