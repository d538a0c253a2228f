package shape

import (
	"testing"

	"github.com/agg-go/vecatlas/internal/records"
)

func redSolid() records.FillStyle {
	return records.FillStyle{Kind: records.FillSolid, Solid: records.Color{R: 255, G: 0, B: 0, A: 255}}
}

// scenario (b): a solid red triangle compiled from one move + three
// straight edges forming a closed loop.
func TestCompilerSolidTriangle(t *testing.T) {
	c := New([]records.FillStyle{redSolid()}, nil)

	c.Feed(records.ShapeRecord{
		Kind: records.RecordStyleChange,
		HasMove: true, MoveDX: 0, MoveDY: 0,
		HasFill1: true, Fill1: 1,
	})
	c.Feed(records.ShapeRecord{Kind: records.RecordStraightEdge, DX: 100, DY: 0})
	c.Feed(records.ShapeRecord{Kind: records.RecordStraightEdge, DX: 0, DY: 100})
	c.Feed(records.ShapeRecord{Kind: records.RecordStraightEdge, DX: -100, DY: -100})
	c.Feed(records.ShapeRecord{Kind: records.RecordEndShape})

	paths := c.Finalize()
	if len(paths) != 1 {
		t.Fatalf("len(paths) = %d, want 1", len(paths))
	}
	p := paths[0]
	if p.IsLine {
		t.Fatal("expected a fill path, got a line path")
	}
	if p.FillStyle == nil || p.FillStyle.Solid != (records.Color{R: 255, G: 0, B: 0, A: 255}) {
		t.Fatalf("fill style = %+v, want solid red", p.FillStyle)
	}
	if len(p.Segments) != 3 {
		t.Fatalf("len(segments) = %d, want 3", len(p.Segments))
	}
	// Invariant 2: consecutive endpoints match and the chain closes.
	for i := 1; i < len(p.Segments); i++ {
		if p.Segments[i-1].To != p.Segments[i].From {
			t.Fatalf("segment %d.To %+v != segment %d.From %+v", i-1, p.Segments[i-1].To, i, p.Segments[i].From)
		}
	}
	if p.Segments[len(p.Segments)-1].To != p.Segments[0].From {
		t.Fatalf("chain does not close: last.To = %+v, first.From = %+v", p.Segments[len(p.Segments)-1].To, p.Segments[0].From)
	}

	minX, minY, maxX, maxY := p.Bounds()
	if minX != 0 || minY != 0 || maxX != 100 || maxY != 100 {
		t.Fatalf("bounds = (%d,%d,%d,%d), want (0,0,100,100)", minX, minY, maxX, maxY)
	}
}

// Invariant 11: a shape with no edges compiles to an empty path list.
func TestCompilerEmptyShape(t *testing.T) {
	c := New([]records.FillStyle{redSolid()}, nil)
	c.Feed(records.ShapeRecord{Kind: records.RecordEndShape})
	paths := c.Finalize()
	if len(paths) != 0 {
		t.Fatalf("len(paths) = %d, want 0", len(paths))
	}
}

// A style-change that sets fill0 and fill1 without a move must not disturb the
// pen position, and fill-0 edges must come out reversed (from/to swapped).
func TestCompilerFill0Reversal(t *testing.T) {
	c := New([]records.FillStyle{redSolid(), {Kind: records.FillSolid, Solid: records.Color{G: 255, A: 255}}}, nil)

	c.Feed(records.ShapeRecord{
		Kind: records.RecordStyleChange,
		HasFill0: true, Fill0: 1,
		HasFill1: true, Fill1: 2,
	})
	c.Feed(records.ShapeRecord{Kind: records.RecordStraightEdge, DX: 10, DY: 0})
	c.Feed(records.ShapeRecord{Kind: records.RecordStraightEdge, DX: 0, DY: 10})
	c.Feed(records.ShapeRecord{Kind: records.RecordStraightEdge, DX: -10, DY: -10})
	c.Feed(records.ShapeRecord{Kind: records.RecordEndShape})

	paths := c.Finalize()
	if len(paths) != 2 {
		t.Fatalf("len(paths) = %d, want 2", len(paths))
	}
	var fill0Path, fill1Path *CompiledPath
	for i := range paths {
		if paths[i].FillStyle.Solid.R == 255 {
			fill0Path = &paths[i]
		} else {
			fill1Path = &paths[i]
		}
	}
	if fill0Path == nil || fill1Path == nil {
		t.Fatal("expected both fill-0 and fill-1 paths")
	}
	// fill-1 traces the loop forward starting at (0,0)->(10,0); fill-0 is
	// the same loop reversed, so its first segment's From should be the
	// forward loop's final vertex.
	if fill1Path.Segments[0].From != (Point{0, 0}) {
		t.Fatalf("fill1 start = %+v, want (0,0)", fill1Path.Segments[0].From)
	}
	if fill0Path.Segments[0].To == fill0Path.Segments[0].From {
		t.Fatal("fill0 segment was not reversed")
	}
}
