package records

import (
	"github.com/agg-go/vecatlas/internal/bitio"
	"github.com/agg-go/vecatlas/internal/geom"
)

// ShapeHeader is the fixed-layout prefix of a DefineShape[2,3,4] tag: the
// identifier, the declared shape bounds, the fill/line style arrays, and the
// initial edge-stream bit widths the EdgeStreamReader needs to decode the
// style-index fields of the first StyleChange record.
type ShapeHeader struct {
	CharacterID uint16
	Bounds      geom.Rect
	EdgeBounds  geom.Rect // DefineShape4 only; equal to Bounds otherwise
	FillStyles  []FillStyle
	LineStyles  []LineStyle
	FillBits    int
	LineBits    int
	UsesFillWinding       bool // DefineShape4 only
	UsesNonScalingStrokes bool
	UsesScalingStrokes    bool
}

// ReadShapeHeader decodes a DefineShape tag's fixed header up to (but not
// including) the edge stream itself. extended selects the wider line-style
// array format (DefineShape3/4), and hasShapeFlags additionally consumes the
// DefineShape4 edge-bounds rectangle and three 1-bit rendering hints before
// the style arrays.
func ReadShapeHeader(r *bitio.Reader, hasAlpha, extendedLines, hasShapeFlags bool) (ShapeHeader, error) {
	var h ShapeHeader
	id, err := r.U16()
	if err != nil {
		return h, err
	}
	h.CharacterID = id

	bounds, err := ReadRect(r)
	if err != nil {
		return h, err
	}
	h.Bounds = bounds
	h.EdgeBounds = bounds

	if hasShapeFlags {
		edgeBounds, err := ReadRect(r)
		if err != nil {
			return h, err
		}
		h.EdgeBounds = edgeBounds

		if _, err := r.UBits(5); err != nil { // reserved
			return h, err
		}
		usesNonScaling, err := r.Bit()
		if err != nil {
			return h, err
		}
		usesScaling, err := r.Bit()
		if err != nil {
			return h, err
		}
		fillWinding, err := r.Bit()
		if err != nil {
			return h, err
		}
		h.UsesNonScalingStrokes = usesNonScaling
		h.UsesScalingStrokes = usesScaling
		h.UsesFillWinding = fillWinding
	}

	h.FillStyles, err = ReadFillStyleArray(r, hasAlpha)
	if err != nil {
		return h, err
	}
	h.LineStyles, err = ReadLineStyleArray(r, extendedLines, hasAlpha)
	if err != nil {
		return h, err
	}

	fillBits, err := r.UBits(4)
	if err != nil {
		return h, err
	}
	lineBits, err := r.UBits(4)
	if err != nil {
		return h, err
	}
	h.FillBits = int(fillBits)
	h.LineBits = int(lineBits)
	return h, nil
}
