package morph

import (
	"testing"

	"github.com/agg-go/vecatlas/internal/records"
)

func fillPair() []records.MorphFillStylePair {
	solid := records.FillStyle{Kind: records.FillSolid, Solid: records.Color{R: 255, A: 255}}
	return []records.MorphFillStylePair{{Start: solid, End: solid}}
}

// scenario (c): square [(0,0)->(100,0)->(100,100)->(0,100)] morphing to the
// same square scaled by 2, blended at ratio 0.5, should yield corners at
// (0,0)->(150,0)->(150,150)->(0,150).
func TestMorphSquareBlend(t *testing.T) {
	header := records.MorphShapeHeader{FillStyles: fillPair()}
	c := New(header, 0.5)

	startBuf := encodeShapeStream(t, []records.ShapeRecord{
		{Kind: records.RecordStyleChange, HasMove: true, MoveDX: 0, MoveDY: 0, HasFill1: true, Fill1: 1},
		{Kind: records.RecordStraightEdge, DX: 100, DY: 0},
		{Kind: records.RecordStraightEdge, DX: 0, DY: 100},
		{Kind: records.RecordStraightEdge, DX: -100, DY: 0},
		{Kind: records.RecordStraightEdge, DX: 0, DY: -100},
		{Kind: records.RecordEndShape},
	})
	endBuf := encodeShapeStream(t, []records.ShapeRecord{
		{Kind: records.RecordStyleChange, HasMove: true, MoveDX: 0, MoveDY: 0, HasFill1: true, Fill1: 1},
		{Kind: records.RecordStraightEdge, DX: 200, DY: 0},
		{Kind: records.RecordStraightEdge, DX: 0, DY: 200},
		{Kind: records.RecordStraightEdge, DX: -200, DY: 0},
		{Kind: records.RecordStraightEdge, DX: 0, DY: -200},
		{Kind: records.RecordEndShape},
	})

	paths, err := c.Compile(startBuf, endBuf)
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 1 {
		t.Fatalf("len(paths) = %d, want 1", len(paths))
	}
	segs := paths[0].Segments
	if len(segs) != 4 {
		t.Fatalf("len(segments) = %d, want 4", len(segs))
	}
	wantCorners := []struct{ x, y int32 }{{0, 0}, {150, 0}, {150, 150}, {0, 150}}
	for i, seg := range segs {
		want := wantCorners[i]
		if seg.From.X != want.x || seg.From.Y != want.y {
			t.Fatalf("segment %d From = (%d,%d), want (%d,%d)", i, seg.From.X, seg.From.Y, want.x, want.y)
		}
	}
}
