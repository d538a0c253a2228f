// Package morph implements the MorphCompiler: pairing a morph shape's start
// and end edge streams and blending them at an interpolation ratio into the
// same CompiledPath shape the plain ShapeCompiler produces.
package morph

import (
	"fmt"

	"github.com/agg-go/vecatlas/internal/geom"
	"github.com/agg-go/vecatlas/internal/records"
	"github.com/agg-go/vecatlas/internal/shape"
)

type openPath struct {
	fill   *records.FillStyle
	line   *records.LineStyle
	isLine bool
	segs   []shape.Segment
}

// Compiler pairs a morph shape's start/end edge streams and blends them at
// a fixed ratio. One Compiler instance compiles exactly one ratio; callers
// wanting several ratios construct one Compiler per ratio.
type Compiler struct {
	ratio float64

	fillPairs []records.MorphFillStylePair
	linePairs []records.MorphLineStylePair

	startX, startY int32
	endX, endY     int32

	fill0, fill1, line          uint32
	hasFill0, hasFill1, hasLine bool

	pending []shape.Segment

	open   map[string]*openPath
	closed []*openPath
}

// New constructs a Compiler for one morph shape header at a clamped ratio.
func New(header records.MorphShapeHeader, ratio float64) *Compiler {
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	return &Compiler{
		ratio:     ratio,
		fillPairs: header.FillStyles,
		linePairs: header.LineStyles,
		open:      make(map[string]*openPath),
	}
}

// Compile drives the paired start/end edge streams to completion and
// returns the finalized, blended path list.
func (c *Compiler) Compile(start, end *records.EdgeStreamReader) ([]shape.CompiledPath, error) {
	for {
		startRec, err := start.Next()
		if err != nil {
			return nil, fmt.Errorf("morph start stream: %w", err)
		}
		if startRec.Kind == records.RecordEndShape {
			c.flush()
			c.closeAll()
			return c.finalize(), nil
		}

		// The compositor advances the end cursor whenever a StyleChange
		// with a move is encountered: a style-change in the end stream
		// with no start-side counterpart is consumed here and its move
		// applied, before the real paired record is read.
		endRec, err := end.Next()
		if err != nil {
			return nil, fmt.Errorf("morph end stream: %w", err)
		}
		for endRec.Kind == records.RecordStyleChange && endRec.HasMove && startRec.Kind != records.RecordStyleChange {
			c.endX, c.endY = endRec.MoveDX, endRec.MoveDY
			endRec, err = end.Next()
			if err != nil {
				return nil, fmt.Errorf("morph end stream: %w", err)
			}
		}

		switch startRec.Kind {
		case records.RecordStyleChange:
			c.applyStyleChange(startRec, endRec)
		case records.RecordStraightEdge, records.RecordCurvedEdge:
			c.blendEdge(startRec, endRec)
		}
	}
}

func (c *Compiler) applyStyleChange(startRec, endRec records.ShapeRecord) {
	c.flush()
	c.closeAll()

	if startRec.HasFill0 {
		c.fill0 = startRec.Fill0
		c.hasFill0 = startRec.Fill0 != 0
	}
	if startRec.HasFill1 {
		c.fill1 = startRec.Fill1
		c.hasFill1 = startRec.Fill1 != 0
	}
	if startRec.HasLine {
		c.line = startRec.Line
		c.hasLine = startRec.Line != 0
	}
	if startRec.HasMove {
		c.startX, c.startY = startRec.MoveDX, startRec.MoveDY
	}
	if endRec.Kind == records.RecordStyleChange && endRec.HasMove {
		c.endX, c.endY = endRec.MoveDX, endRec.MoveDY
	}
}

// blendEdge advances both pens by one paired edge, promoting a straight
// edge paired against a curved one, and appends the blended segment to the
// pending accumulator.
func (c *Compiler) blendEdge(startRec, endRec records.ShapeRecord) {
	sFrom := geom.Point{X: geom.Twip(c.startX), Y: geom.Twip(c.startY)}
	eFrom := geom.Point{X: geom.Twip(c.endX), Y: geom.Twip(c.endY)}

	var sTo, sCtrl, eTo, eCtrl geom.Point
	sIsCurve := startRec.Kind == records.RecordCurvedEdge
	eIsCurve := endRec.Kind == records.RecordCurvedEdge

	if sIsCurve {
		cx := c.startX + startRec.ControlDX
		cy := c.startY + startRec.ControlDY
		c.startX = cx + startRec.AnchorDX
		c.startY = cy + startRec.AnchorDY
		sCtrl = geom.Point{X: geom.Twip(cx), Y: geom.Twip(cy)}
	} else {
		c.startX += startRec.DX
		c.startY += startRec.DY
	}
	sTo = geom.Point{X: geom.Twip(c.startX), Y: geom.Twip(c.startY)}

	if eIsCurve {
		cx := c.endX + endRec.ControlDX
		cy := c.endY + endRec.ControlDY
		c.endX = cx + endRec.AnchorDX
		c.endY = cy + endRec.AnchorDY
		eCtrl = geom.Point{X: geom.Twip(cx), Y: geom.Twip(cy)}
	} else {
		c.endX += endRec.DX
		c.endY += endRec.DY
	}
	eTo = geom.Point{X: geom.Twip(c.endX), Y: geom.Twip(c.endY)}

	isCurve := sIsCurve || eIsCurve
	if !sIsCurve && isCurve {
		// Promote the straight start edge: synthesize a control point at
		// its midpoint.
		sCtrl = geom.Point{X: (sFrom.X + sTo.X) / 2, Y: (sFrom.Y + sTo.Y) / 2}
	}
	if !eIsCurve && isCurve {
		eCtrl = geom.Point{X: (eFrom.X + eTo.X) / 2, Y: (eFrom.Y + eTo.Y) / 2}
	}

	from := geom.LerpPoint(sFrom, eFrom, c.ratio)
	to := geom.LerpPoint(sTo, eTo, c.ratio)

	seg := shape.Segment{
		Kind: shape.SegmentLine,
		From: shape.Point{X: int32(from.X), Y: int32(from.Y)},
		To:   shape.Point{X: int32(to.X), Y: int32(to.Y)},
	}
	if isCurve {
		ctrl := geom.LerpPoint(sCtrl, eCtrl, c.ratio)
		seg.Kind = shape.SegmentQuadratic
		seg.Control = shape.Point{X: int32(ctrl.X), Y: int32(ctrl.Y)}
	}
	c.pending = append(c.pending, seg)
}

func (c *Compiler) blendedFillAt(idx uint32) *records.FillStyle {
	if idx == 0 || int(idx) > len(c.fillPairs) {
		return nil
	}
	pair := c.fillPairs[idx-1]
	fs := records.LerpFillStyle(pair.Start, pair.End, c.ratio)
	return &fs
}

func (c *Compiler) blendedLineAt(idx uint32) *records.LineStyle {
	if idx == 0 || int(idx) > len(c.linePairs) {
		return nil
	}
	pair := c.linePairs[idx-1]
	ls := records.LerpLineStyle(pair.Start, pair.End, c.ratio)
	return &ls
}

func (c *Compiler) flush() {
	if len(c.pending) == 0 {
		return
	}
	if c.hasFill0 {
		if fs := c.blendedFillAt(c.fill0); fs != nil {
			c.appendTo(shape.FillHash(*fs), false, fs, nil, shape.Reversed(c.pending))
		}
	}
	if c.hasFill1 {
		if fs := c.blendedFillAt(c.fill1); fs != nil {
			c.appendTo(shape.FillHash(*fs), false, fs, nil, c.pending)
		}
	}
	if c.hasLine {
		if ls := c.blendedLineAt(c.line); ls != nil {
			c.appendTo(shape.LineHash(*ls), true, nil, ls, c.pending)
		}
	}
	c.pending = nil
}

func (c *Compiler) appendTo(key string, isLine bool, fill *records.FillStyle, line *records.LineStyle, segs []shape.Segment) {
	op, ok := c.open[key]
	if !ok {
		op = &openPath{fill: fill, line: line, isLine: isLine}
		c.open[key] = op
	}
	op.segs = append(op.segs, segs...)
}

func (c *Compiler) closeAll() {
	for _, op := range c.open {
		if len(op.segs) > 0 {
			c.closed = append(c.closed, op)
		}
	}
	c.open = make(map[string]*openPath)
}

func (c *Compiler) finalize() []shape.CompiledPath {
	var fills, lines []shape.CompiledPath
	for _, op := range c.closed {
		cp := shape.CompiledPath{
			IsLine:    op.isLine,
			FillStyle: op.fill,
			LineStyle: op.line,
			Segments:  shape.Chain(op.segs),
		}
		if op.isLine {
			lines = append(lines, cp)
		} else {
			fills = append(fills, cp)
		}
	}
	out := make([]shape.CompiledPath, 0, len(fills)+len(lines))
	out = append(out, fills...)
	out = append(out, lines...)
	return out
}
