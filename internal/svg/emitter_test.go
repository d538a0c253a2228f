package svg

import (
	"strings"
	"testing"

	"github.com/agg-go/vecatlas/internal/geom"
	"github.com/agg-go/vecatlas/internal/records"
	"github.com/agg-go/vecatlas/internal/shape"
)

func square(fill records.FillStyle) shape.CompiledPath {
	return shape.CompiledPath{
		FillStyle: &fill,
		Segments: []shape.Segment{
			{Kind: shape.SegmentLine, From: shape.Point{X: 0, Y: 0}, To: shape.Point{X: 2000, Y: 0}},
			{Kind: shape.SegmentLine, From: shape.Point{X: 2000, Y: 0}, To: shape.Point{X: 2000, Y: 2000}},
			{Kind: shape.SegmentLine, From: shape.Point{X: 2000, Y: 2000}, To: shape.Point{X: 0, Y: 2000}},
			{Kind: shape.SegmentLine, From: shape.Point{X: 0, Y: 2000}, To: shape.Point{X: 0, Y: 0}},
		},
	}
}

func TestShapeEmitsPathWithFillColor(t *testing.T) {
	e := New(StrokeNonScaling)
	fill := records.FillStyle{Kind: records.FillSolid, Solid: records.Color{R: 255, G: 0, B: 0, A: 255}}
	e.Shape([]shape.CompiledPath{square(fill)}, 0, 0)
	doc := e.Document(geom.Rect{XMax: 2000, YMax: 2000})
	if !strings.Contains(doc, `fill="#ff0000"`) {
		t.Fatalf("expected solid red fill in output, got: %s", doc)
	}
	if !strings.Contains(doc, "fill-rule=\"evenodd\"") {
		t.Fatalf("expected fill-rule=evenodd, got: %s", doc)
	}
}

func TestGradientFillDeduplicatesAcrossPaths(t *testing.T) {
	e := New(StrokeNonScaling)
	grad := records.FillStyle{
		Kind:     records.FillLinearGradient,
		Gradient: records.Gradient{Stops: []records.GradientStop{{Ratio: 0, Color: records.Color{A: 255}}, {Ratio: 255, Color: records.Color{R: 255, A: 255}}}},
	}
	e.Shape([]shape.CompiledPath{square(grad)}, 0, 0)
	e.Shape([]shape.CompiledPath{square(grad)}, 100, 100)
	doc := e.Document(geom.Rect{XMax: 2000, YMax: 2000})
	if strings.Count(doc, "<linearGradient") != 1 {
		t.Fatalf("expected exactly one deduplicated gradient def, got document: %s", doc)
	}
}
