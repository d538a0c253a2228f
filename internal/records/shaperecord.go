package records

import "github.com/agg-go/vecatlas/internal/bitio"

// ShapeRecord is the sum type EndShape | StyleChange | StraightEdge |
// CurvedEdge. Exactly one of the typed fields is meaningful,
// selected by Kind.
type ShapeRecordKind uint8

const (
	RecordEndShape ShapeRecordKind = iota
	RecordStyleChange
	RecordStraightEdge
	RecordCurvedEdge
)

type ShapeRecord struct {
	Kind ShapeRecordKind

	// StyleChange fields.
	HasNewStyles      bool
	HasMove           bool
	HasFill0          bool
	HasFill1          bool
	HasLine           bool
	MoveDX, MoveDY    int32
	Fill0, Fill1      uint32
	Line              uint32
	NewFillStyles     []FillStyle
	NewLineStyles     []LineStyle
	NewFillBits       int
	NewLineBits       int

	// StraightEdge fields (twips).
	DX, DY int32

	// CurvedEdge fields (twips, deltas from the previous point).
	ControlDX, ControlDY int32
	AnchorDX, AnchorDY   int32
}

// EdgeStreamReader decodes a shape's edge stream record by record, tracking
// the current fill/line index bit widths (set from the shape header and
// replaced by each style-change record that carries new styles).
type EdgeStreamReader struct {
	r         *bitio.Reader
	fillBits  int
	lineBits  int
	hasAlpha  bool // newer profile fill/line style arrays (with alpha)
	extended  bool // extended line-style profile
}

// NewEdgeStreamReader constructs a reader with the initial fill/line index
// bit widths declared by the shape header.
func NewEdgeStreamReader(r *bitio.Reader, fillBits, lineBits int, hasAlpha, extendedLines bool) *EdgeStreamReader {
	return &EdgeStreamReader{r: r, fillBits: fillBits, lineBits: lineBits, hasAlpha: hasAlpha, extended: extendedLines}
}

// Next decodes the next ShapeRecord; it returns a record with Kind
// RecordEndShape once the terminator has been consumed.
func (e *EdgeStreamReader) Next() (ShapeRecord, error) {
	isEdge, err := e.r.Bit()
	if err != nil {
		return ShapeRecord{}, err
	}
	if !isEdge {
		return e.readNonEdge()
	}
	return e.readEdge()
}

func (e *EdgeStreamReader) readNonEdge() (ShapeRecord, error) {
	flags, err := e.r.UBits(5)
	if err != nil {
		return ShapeRecord{}, err
	}
	if flags == 0 {
		return ShapeRecord{Kind: RecordEndShape}, nil
	}
	move := flags&0x01 != 0
	fill0 := flags&0x02 != 0
	fill1 := flags&0x04 != 0
	line := flags&0x08 != 0
	newStyles := flags&0x10 != 0

	rec := ShapeRecord{
		Kind:         RecordStyleChange,
		HasMove:      move,
		HasFill0:     fill0,
		HasFill1:     fill1,
		HasLine:      line,
		HasNewStyles: newStyles,
	}

	if move {
		nbits, err := e.r.UBits(5)
		if err != nil {
			return rec, err
		}
		if rec.MoveDX, err = e.r.SBits(int(nbits)); err != nil {
			return rec, err
		}
		if rec.MoveDY, err = e.r.SBits(int(nbits)); err != nil {
			return rec, err
		}
	}
	if fill0 {
		v, err := e.r.UBits(e.fillBits)
		if err != nil {
			return rec, err
		}
		rec.Fill0 = v
	}
	if fill1 {
		v, err := e.r.UBits(e.fillBits)
		if err != nil {
			return rec, err
		}
		rec.Fill1 = v
	}
	if line {
		v, err := e.r.UBits(e.lineBits)
		if err != nil {
			return rec, err
		}
		rec.Line = v
	}
	if newStyles {
		fills, err := ReadFillStyleArray(e.r, e.hasAlpha)
		if err != nil {
			return rec, err
		}
		lines, err := ReadLineStyleArray(e.r, e.extended, e.hasAlpha)
		if err != nil {
			return rec, err
		}
		fbits, err := e.r.UBits(4)
		if err != nil {
			return rec, err
		}
		lbits, err := e.r.UBits(4)
		if err != nil {
			return rec, err
		}
		rec.NewFillStyles = fills
		rec.NewLineStyles = lines
		rec.NewFillBits = int(fbits)
		rec.NewLineBits = int(lbits)
		// A new-styles record resets the current fill- and line-bit widths.
		e.fillBits = int(fbits)
		e.lineBits = int(lbits)
	}
	return rec, nil
}

func (e *EdgeStreamReader) readEdge() (ShapeRecord, error) {
	isStraight, err := e.r.Bit()
	if err != nil {
		return ShapeRecord{}, err
	}
	widthMinus2, err := e.r.UBits(4)
	if err != nil {
		return ShapeRecord{}, err
	}
	nbits := int(widthMinus2) + 2

	if isStraight {
		return e.readStraightEdge(nbits)
	}
	return e.readCurvedEdge(nbits)
}

func (e *EdgeStreamReader) readStraightEdge(nbits int) (ShapeRecord, error) {
	rec := ShapeRecord{Kind: RecordStraightEdge}
	dx, err := e.r.SBits(nbits + 1)
	if err != nil {
		return rec, err
	}
	dy, err := e.r.SBits(nbits + 1)
	if err != nil {
		return rec, err
	}
	rec.DX, rec.DY = dx, dy
	return rec, nil
}

func (e *EdgeStreamReader) readCurvedEdge(nbits int) (ShapeRecord, error) {
	rec := ShapeRecord{Kind: RecordCurvedEdge}
	var err error
	if rec.ControlDX, err = e.r.SBits(nbits + 1); err != nil {
		return rec, err
	}
	if rec.ControlDY, err = e.r.SBits(nbits + 1); err != nil {
		return rec, err
	}
	if rec.AnchorDX, err = e.r.SBits(nbits + 1); err != nil {
		return rec, err
	}
	if rec.AnchorDY, err = e.r.SBits(nbits + 1); err != nil {
		return rec, err
	}
	return rec, nil
}
