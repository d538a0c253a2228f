// Package shape implements the ShapeCompiler: interpretation of a shape's
// edge stream into a set of closed paths keyed by visual style.
package shape

import "github.com/agg-go/vecatlas/internal/records"

// SegmentKind distinguishes a straight line from a quadratic bezier.
type SegmentKind uint8

const (
	SegmentLine SegmentKind = iota
	SegmentQuadratic
)

// Point is a plain twip-space coordinate pair; segments carry their own
// copies rather than referencing geom.Point so the compiler can work purely
// in int32 deltas-turned-absolutes without importing rendering concerns.
type Point struct {
	X, Y int32
}

// Segment is one edge of a compiled path: a line or a quadratic bezier from
// From to To, with Control populated only for SegmentQuadratic.
type Segment struct {
	Kind    SegmentKind
	From, To Point
	Control Point
}

// CompiledPath is one closed (or nearly-closed) path produced by
// finalization: a style-tagged, head-to-tail chained segment list.
type CompiledPath struct {
	IsLine     bool // true for a line (stroke) path, false for a fill path
	FillStyle  *records.FillStyle
	LineStyle  *records.LineStyle
	Segments   []Segment
}

// Bounds computes the axis-aligned bounding box of the path's segment
// endpoints and control points (a conservative bound for quadratics, not
// the tight curve bound).
func (p CompiledPath) Bounds() (minX, minY, maxX, maxY int32) {
	first := true
	consider := func(pt Point) {
		if first {
			minX, maxX = pt.X, pt.X
			minY, maxY = pt.Y, pt.Y
			first = false
			return
		}
		if pt.X < minX {
			minX = pt.X
		}
		if pt.X > maxX {
			maxX = pt.X
		}
		if pt.Y < minY {
			minY = pt.Y
		}
		if pt.Y > maxY {
			maxY = pt.Y
		}
	}
	for _, s := range p.Segments {
		consider(s.From)
		consider(s.To)
		if s.Kind == SegmentQuadratic {
			consider(s.Control)
		}
	}
	return
}
