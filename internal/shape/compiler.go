package shape

import "github.com/agg-go/vecatlas/internal/records"

// openPath accumulates segments for one active style while the pen moves
// through the edge stream; it is keyed by style-hash in Compiler.open.
type openPath struct {
	fill  *records.FillStyle
	line  *records.LineStyle
	isLine bool
	segs  []Segment
}

// Compiler implements the ShapeCompiler state machine: it
// consumes a shape's edge stream one records.ShapeRecord at a time and
// produces a finalized, style-grouped list of CompiledPath values.
type Compiler struct {
	x, y int32

	fillStyles []records.FillStyle
	lineStyles []records.LineStyle

	fill0, fill1 uint32
	line         uint32
	hasFill0, hasFill1, hasLine bool

	// accumulated edges since the last flush, in edge-stream order and
	// orientation (fill-0 reversal happens at flush time).
	pending []Segment

	open   map[string]*openPath
	closed []*openPath
}

// New constructs a Compiler seeded with the shape definition's initial fill
// and line style arrays.
func New(fillStyles []records.FillStyle, lineStyles []records.LineStyle) *Compiler {
	return &Compiler{
		fillStyles: fillStyles,
		lineStyles: lineStyles,
		open:       make(map[string]*openPath),
	}
}

// Feed processes one decoded ShapeRecord. Callers drive this from an
// records.EdgeStreamReader until RecordEndShape is observed.
func (c *Compiler) Feed(rec records.ShapeRecord) {
	switch rec.Kind {
	case records.RecordStyleChange:
		c.feedStyleChange(rec)
	case records.RecordStraightEdge:
		c.feedStraightEdge(rec)
	case records.RecordCurvedEdge:
		c.feedCurvedEdge(rec)
	case records.RecordEndShape:
		c.flush()
		c.closeAll()
	}
}

func (c *Compiler) feedStraightEdge(rec records.ShapeRecord) {
	from := Point{c.x, c.y}
	c.x += rec.DX
	c.y += rec.DY
	c.pending = append(c.pending, Segment{Kind: SegmentLine, From: from, To: Point{c.x, c.y}})
}

func (c *Compiler) feedCurvedEdge(rec records.ShapeRecord) {
	from := Point{c.x, c.y}
	cx := c.x + rec.ControlDX
	cy := c.y + rec.ControlDY
	c.x = cx + rec.AnchorDX
	c.y = cy + rec.AnchorDY
	c.pending = append(c.pending, Segment{
		Kind: SegmentQuadratic, From: from, To: Point{c.x, c.y}, Control: Point{cx, cy},
	})
}

func (c *Compiler) feedStyleChange(rec records.ShapeRecord) {
	// "full reset": all five flags set simultaneously.
	fullReset := rec.HasNewStyles && rec.HasMove && rec.HasFill0 && rec.HasFill1 && rec.HasLine

	c.flush()

	if fullReset {
		c.closeAll()
	} else if rec.HasNewStyles {
		c.closeAll()
	}

	if rec.HasFill0 {
		c.fill0 = rec.Fill0
		c.hasFill0 = rec.Fill0 != 0
	}
	if rec.HasFill1 {
		c.fill1 = rec.Fill1
		c.hasFill1 = rec.Fill1 != 0
	}
	if rec.HasLine {
		c.line = rec.Line
		c.hasLine = rec.Line != 0
	}
	if rec.HasNewStyles {
		c.fillStyles = rec.NewFillStyles
		c.lineStyles = rec.NewLineStyles
	}
	if rec.HasMove {
		c.x = rec.MoveDX
		c.y = rec.MoveDY
	}
}

// flush appends the segments accumulated since the previous flush into the
// currently-active styles' open paths: fill-0 reversed,
// fill-1 forward, line forward.
func (c *Compiler) flush() {
	if len(c.pending) == 0 {
		return
	}
	if c.hasFill0 {
		if fs := c.fillStyleAt(c.fill0); fs != nil {
			c.appendTo(FillHash(*fs), false, fs, nil, Reversed(c.pending))
		}
	}
	if c.hasFill1 {
		if fs := c.fillStyleAt(c.fill1); fs != nil {
			c.appendTo(FillHash(*fs), false, fs, nil, c.pending)
		}
	}
	if c.hasLine {
		if ls := c.lineStyleAt(c.line); ls != nil {
			c.appendTo(LineHash(*ls), true, nil, ls, c.pending)
		}
	}
	c.pending = nil
}

func (c *Compiler) fillStyleAt(idx uint32) *records.FillStyle {
	if idx == 0 || int(idx) > len(c.fillStyles) {
		return nil
	}
	fs := c.fillStyles[idx-1]
	return &fs
}

func (c *Compiler) lineStyleAt(idx uint32) *records.LineStyle {
	if idx == 0 || int(idx) > len(c.lineStyles) {
		return nil
	}
	ls := c.lineStyles[idx-1]
	return &ls
}

func (c *Compiler) appendTo(key string, isLine bool, fill *records.FillStyle, line *records.LineStyle, segs []Segment) {
	op, ok := c.open[key]
	if !ok {
		op = &openPath{fill: fill, line: line, isLine: isLine}
		c.open[key] = op
	}
	op.segs = append(op.segs, segs...)
}

// Reversed returns segs with each segment's From/To swapped and the overall
// order reversed, for flipping a fill-0 path's winding direction.
func Reversed(segs []Segment) []Segment {
	out := make([]Segment, len(segs))
	for i, s := range segs {
		r := s
		r.From, r.To = s.To, s.From
		out[len(segs)-1-i] = r
	}
	return out
}

// closeAll moves every currently-open path to closed and clears the open
// map, keyed so a later style-change reopens a fresh accumulator under the
// same key.
func (c *Compiler) closeAll() {
	for _, op := range c.open {
		if len(op.segs) > 0 {
			c.closed = append(c.closed, op)
		}
	}
	c.open = make(map[string]*openPath)
}

// Finalize runs the segment-chaining pass over every closed path and
// returns the compiled result, fill paths first, then line paths.
func (c *Compiler) Finalize() []CompiledPath {
	var fills, lines []CompiledPath
	for _, op := range c.closed {
		cp := CompiledPath{
			IsLine:    op.isLine,
			FillStyle: op.fill,
			LineStyle: op.line,
			Segments:  Chain(op.segs),
		}
		if op.isLine {
			lines = append(lines, cp)
		} else {
			fills = append(fills, cp)
		}
	}
	out := make([]CompiledPath, 0, len(fills)+len(lines))
	out = append(out, fills...)
	out = append(out, lines...)
	return out
}

// Chain reorders segments so consecutive endpoints match: pick any
// remaining segment, extend forward while an unused segment starts where
// the chain ends, otherwise splice in a from/to-swapped segment that ends
// where the chain ends. Repeats per remaining connected run. Shared by the
// ShapeCompiler and MorphCompiler finalization passes so the two can't
// drift apart.
func Chain(segs []Segment) []Segment {
	remaining := append([]Segment(nil), segs...)
	var out []Segment
	for len(remaining) > 0 {
		cur := remaining[0]
		remaining = remaining[1:]
		out = append(out, cur)
		end := cur.To
		for {
			idx := -1
			swap := false
			for i, s := range remaining {
				if s.From == end {
					idx = i
					break
				}
				if s.To == end {
					idx = i
					swap = true
					break
				}
			}
			if idx == -1 {
				break
			}
			s := remaining[idx]
			remaining = append(remaining[:idx], remaining[idx+1:]...)
			if swap {
				s.From, s.To = s.To, s.From
			}
			out = append(out, s)
			end = s.To
		}
	}
	return out
}
