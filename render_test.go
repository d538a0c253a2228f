package vecatlas

import (
	"strings"
	"testing"

	"github.com/agg-go/vecatlas/internal/character"
	"github.com/agg-go/vecatlas/internal/geom"
	"github.com/agg-go/vecatlas/internal/records"
	"github.com/agg-go/vecatlas/internal/shape"
	"github.com/agg-go/vecatlas/internal/svg"
)

func square(id uint16) *character.ShapeDefinition {
	return &character.ShapeDefinition{
		CharacterID: id,
		Bounds:      geom.Rect{XMax: 200, YMax: 200},
		Paths: []shape.CompiledPath{{
			FillStyle: &records.FillStyle{Kind: records.FillSolid, Solid: records.Color{R: 255, A: 255}},
			Segments: []shape.Segment{
				{Kind: shape.SegmentLine, From: shape.Point{X: 0, Y: 0}, To: shape.Point{X: 200, Y: 0}},
				{Kind: shape.SegmentLine, From: shape.Point{X: 200, Y: 0}, To: shape.Point{X: 200, Y: 200}},
				{Kind: shape.SegmentLine, From: shape.Point{X: 200, Y: 200}, To: shape.Point{X: 0, Y: 0}},
			},
		}},
	}
}

func TestRenderFrameEmitsOnePlacedShapePerObject(t *testing.T) {
	shapeDef := square(1)
	frame := character.Frame{
		Index: 0,
		Objects: []character.FrameObject{
			{CharacterID: 1, Depth: 1, Drawable: shapeDef, Matrix: geom.Identity()},
		},
	}

	e := svg.New(svg.StrokeNonScaling)
	renderFrame(e, frame.Objects, geom.Rect{XMax: 200, YMax: 200})
	doc := e.Document(geom.Rect{XMax: 200, YMax: 200})

	if !strings.Contains(doc, "<svg") || !strings.Contains(doc, "</svg>") {
		t.Fatalf("Document did not produce a wrapped SVG: %q", doc)
	}
	if !strings.Contains(doc, "<use") {
		t.Fatalf("expected a <use> reference for the placed shape, got %q", doc)
	}
	if !strings.Contains(doc, `fill="#ff0000"`) {
		t.Fatalf("expected the shape's fill to survive into defs, got %q", doc)
	}
}

func TestRenderFrameClosesClipGroupsAtTheRightDepth(t *testing.T) {
	clipShape := square(1)
	content := square(2)
	clipDepth := uint16(5)

	frame := character.Frame{
		Objects: []character.FrameObject{
			{CharacterID: 1, Depth: 1, Drawable: clipShape, Matrix: geom.Identity(), ClipDepth: &clipDepth},
			{CharacterID: 2, Depth: 2, Drawable: content, Matrix: geom.Identity()},
			{CharacterID: 2, Depth: 6, Drawable: content, Matrix: geom.Identity()}, // past the clip's depth
		},
	}

	e := svg.New(svg.StrokeNonScaling)
	renderFrame(e, frame.Objects, geom.Rect{XMax: 200, YMax: 200})
	doc := e.Document(geom.Rect{XMax: 200, YMax: 200})

	if strings.Count(doc, `clip-path="url(`) != 1 {
		t.Fatalf("expected exactly one clipped group, got %q", doc)
	}
	if strings.Count(doc, "<use") != 2 {
		t.Fatalf("expected two drawn instances (the clip shape itself is not drawn), got %q", doc)
	}
}

func TestRenderFramesProducesOneDocumentPerTimelineFrame(t *testing.T) {
	shapeDef := square(1)
	c := &Container{
		FrameBounds: geom.Rect{XMax: 200, YMax: 200},
		Timeline: &character.Timeline{
			Frames: []character.Frame{
				{Index: 0, Objects: []character.FrameObject{{CharacterID: 1, Depth: 1, Drawable: shapeDef, Matrix: geom.Identity()}}},
				{Index: 1, Objects: []character.FrameObject{{CharacterID: 1, Depth: 1, Drawable: shapeDef, Matrix: geom.Identity()}}},
			},
		},
	}

	docs := RenderFrames(c, svg.StrokeNonScaling)
	if len(docs) != 2 {
		t.Fatalf("len(docs) = %d, want 2", len(docs))
	}
	for i, d := range docs {
		if !strings.HasPrefix(d, "<svg") {
			t.Fatalf("frame %d did not start with <svg: %q", i, d)
		}
	}
}

func TestRenderFrameOutOfRangeIsAnError(t *testing.T) {
	c := &Container{Timeline: &character.Timeline{}}
	if _, err := RenderFrame(c, 0, svg.StrokeNonScaling); err == nil {
		t.Fatalf("expected an error for an out-of-range frame index")
	}
}
