package vecatlas

import (
	"fmt"

	"github.com/agg-go/vecatlas/internal/character"
	"github.com/agg-go/vecatlas/internal/geom"
	"github.com/agg-go/vecatlas/internal/svg"
)

// RenderFrames walks c.Timeline frame by frame and emits one standalone SVG
// document per frame, in frame order. Each document carries its own <defs>
// (gradients, patterns, filters, and any <g>/<image> a placed character
// resolves to) so every frame stands alone as atlas.BuildAnimation's input
// expects.
func RenderFrames(c *Container, strokeMode svg.StrokeMode) []string {
	if c.Timeline == nil {
		return nil
	}
	out := make([]string, len(c.Timeline.Frames))
	for i, frame := range c.Timeline.Frames {
		e := svg.New(strokeMode)
		renderFrame(e, frame.Objects, c.FrameBounds)
		out[i] = e.Document(c.FrameBounds)
	}
	return out
}

// clipScope tracks one open <clipPath> group: id is the def id StartClip
// returned, until is the depth at which it closes (the placing object's own
// ClipDepth).
type clipScope struct {
	id    string
	until uint16
}

// renderFrame draws one frame's depth-sorted display list into e, opening
// and closing clip groups as depths cross a placed clip shape's ClipDepth.
// An object carrying ClipDepth is itself the mask and is never drawn.
func renderFrame(e *svg.Emitter, objs []character.FrameObject, bounds geom.Rect) {
	e.Area(bounds)

	var clips []clipScope
	for _, obj := range objs {
		for len(clips) > 0 && obj.Depth > clips[len(clips)-1].until {
			top := clips[len(clips)-1]
			e.EndClip(top.id)
			clips = clips[:len(clips)-1]
		}

		if obj.ClipDepth != nil {
			id := e.StartClip(obj.Drawable, obj.Matrix, obj.Ratio)
			clips = append(clips, clipScope{id: id, until: *obj.ClipDepth})
			continue
		}

		name := ""
		if obj.Name != nil {
			name = *obj.Name
		}
		e.Include(obj.Drawable, obj.Matrix, obj.Ratio, obj.Filters, obj.Blend, name)
	}
	for i := len(clips) - 1; i >= 0; i-- {
		e.EndClip(clips[i].id)
	}

	e.CloseArea()
}

// RenderFrame renders a single frame index from c.Timeline, for callers that
// want one frame at a time rather than the whole sequence up front.
func RenderFrame(c *Container, index int, strokeMode svg.StrokeMode) (string, error) {
	if c.Timeline == nil || index < 0 || index >= len(c.Timeline.Frames) {
		return "", fmt.Errorf("vecatlas: frame %d out of range", index)
	}
	e := svg.New(strokeMode)
	renderFrame(e, c.Timeline.Frames[index].Objects, c.FrameBounds)
	return e.Document(c.FrameBounds), nil
}
