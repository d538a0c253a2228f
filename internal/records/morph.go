package records

import (
	"github.com/agg-go/vecatlas/internal/bitio"
	"github.com/agg-go/vecatlas/internal/geom"
)

// MorphShapeHeader is the fixed-layout prefix of a DefineMorphShape tag:
// identifier, start/end bounds, the byte offset separating the start and
// end edge streams, and the morph fill/line style arrays.
type MorphShapeHeader struct {
	CharacterID  uint16
	StartBounds  geom.Rect
	EndBounds    geom.Rect
	EndEdgesOffset int // read but not used to validate stream boundaries
	FillStyles   []MorphFillStylePair
	LineStyles   []MorphLineStylePair
}

// MorphFillStylePair and MorphLineStylePair hold a style's start and end
// values, interpolated at a ratio by LerpFillStyle/LerpLineStyle.
type MorphFillStylePair struct {
	Start, End FillStyle
}

type MorphLineStylePair struct {
	Start, End LineStyle
}

// ReadMorphShapeHeader decodes a DefineMorphShape tag's fixed header,
// leaving the reader positioned at the start edge stream.
func ReadMorphShapeHeader(r *bitio.Reader) (MorphShapeHeader, error) {
	var h MorphShapeHeader
	id, err := r.U16()
	if err != nil {
		return h, err
	}
	h.CharacterID = id

	h.StartBounds, err = ReadRect(r)
	if err != nil {
		return h, err
	}
	h.EndBounds, err = ReadRect(r)
	if err != nil {
		return h, err
	}
	offset, err := r.U32()
	if err != nil {
		return h, err
	}
	h.EndEdgesOffset = int(offset)

	fillCount, err := readStyleCount(r)
	if err != nil {
		return h, err
	}
	for i := uint32(0); i < fillCount; i++ {
		start, err := ReadFillStyle(r, true)
		if err != nil {
			return h, err
		}
		end, err := ReadFillStyle(r, true)
		if err != nil {
			return h, err
		}
		h.FillStyles = append(h.FillStyles, MorphFillStylePair{start, end})
	}

	lineCount, err := readStyleCount(r)
	if err != nil {
		return h, err
	}
	for i := uint32(0); i < lineCount; i++ {
		start, err := ReadLineStyleExtended(r)
		if err != nil {
			return h, err
		}
		end, err := ReadLineStyleExtended(r)
		if err != nil {
			return h, err
		}
		h.LineStyles = append(h.LineStyles, MorphLineStylePair{start, end})
	}
	return h, nil
}
