package records

import (
	"github.com/agg-go/vecatlas/internal/bitio"
	"github.com/agg-go/vecatlas/internal/geom"
)

// BlendMode is normalized to "normal" when absent or out of the valid
// range 1..14.
type BlendMode uint8

const (
	BlendNormal BlendMode = 1
)

func normalizeBlendMode(v uint8) BlendMode {
	if v < 1 || v > 14 {
		return BlendNormal
	}
	return BlendMode(v)
}

// PlaceObject is the normalized result of decoding any of the three
// place-object profile variants. Optional pointer/slice fields are nil
// when the corresponding flag bit was absent, letting a move-update apply
// only the fields explicitly present.
type PlaceObject struct {
	IsMove       bool
	Depth        uint16
	CharacterID  *uint16
	Matrix       *geom.Matrix
	ColorTransform *ColorTransform
	Ratio        *float64
	Name         *string
	ClipDepth    *uint16
	Filters      []Filter
	Blend        *BlendMode
	ClassName    *string
}

// ReadPlaceObject decodes the plain (non-extended) profile: depth + id +
// matrix + optional color transform, always a full placement (never a
// move-only update).
func ReadPlaceObject(r *bitio.Reader) (PlaceObject, error) {
	var p PlaceObject
	id, err := r.U16()
	if err != nil {
		return p, err
	}
	depth, err := r.U16()
	if err != nil {
		return p, err
	}
	m, err := ReadMatrix(r)
	if err != nil {
		return p, err
	}
	p.CharacterID = &id
	p.Depth = depth
	p.Matrix = &m

	if r.Remaining() > 0 {
		ct, err := ReadColorTransform(r, false)
		if err != nil {
			return p, err
		}
		p.ColorTransform = &ct
	}
	return p, nil
}

// ReadPlaceObject2 decodes the extended profile with a flag byte selecting
// which optional fields follow.
func ReadPlaceObject2(r *bitio.Reader) (PlaceObject, error) {
	var p PlaceObject

	hasClip, err := r.Bit()
	if err != nil {
		return p, err
	}
	hasName, err := r.Bit()
	if err != nil {
		return p, err
	}
	hasRatio, err := r.Bit()
	if err != nil {
		return p, err
	}
	hasColorTransform, err := r.Bit()
	if err != nil {
		return p, err
	}
	hasMatrix, err := r.Bit()
	if err != nil {
		return p, err
	}
	hasCharacter, err := r.Bit()
	if err != nil {
		return p, err
	}
	p.IsMove, err = r.Bit()
	if err != nil {
		return p, err
	}
	if _, err = r.Bit(); err != nil { // reserved
		return p, err
	}

	depth, err := r.U16()
	if err != nil {
		return p, err
	}
	p.Depth = depth

	if hasCharacter {
		id, err := r.U16()
		if err != nil {
			return p, err
		}
		p.CharacterID = &id
	}
	if hasMatrix {
		m, err := ReadMatrix(r)
		if err != nil {
			return p, err
		}
		p.Matrix = &m
	}
	if hasColorTransform {
		ct, err := ReadColorTransform(r, true)
		if err != nil {
			return p, err
		}
		p.ColorTransform = &ct
	}
	if hasRatio {
		ratio, err := r.Fixed8_8()
		if err != nil {
			return p, err
		}
		p.Ratio = &ratio
	}
	if hasName {
		name, err := r.String()
		if err != nil {
			return p, err
		}
		p.Name = &name
	}
	if hasClip {
		cd, err := r.U16()
		if err != nil {
			return p, err
		}
		p.ClipDepth = &cd
	}
	return p, nil
}

// ReadPlaceObject3 decodes the newest profile, which adds filters, a blend
// mode, and a bitmap-cache/visibility section, plus a class-name/image
// ambiguity: when either has-class-name is set, or both has-image and
// has-character are set, the class name is read before the character id —
// an ordering the source format itself leaves ambiguous, preserved here
// verbatim.
func ReadPlaceObject3(r *bitio.Reader) (PlaceObject, error) {
	var p PlaceObject

	hasClip, err := r.Bit()
	if err != nil {
		return p, err
	}
	hasClassName, err := r.Bit()
	if err != nil {
		return p, err
	}
	hasImage, err := r.Bit()
	if err != nil {
		return p, err
	}
	hasName, err := r.Bit()
	if err != nil {
		return p, err
	}
	hasRatio, err := r.Bit()
	if err != nil {
		return p, err
	}
	hasColorTransform, err := r.Bit()
	if err != nil {
		return p, err
	}
	hasMatrix, err := r.Bit()
	if err != nil {
		return p, err
	}
	hasCharacter, err := r.Bit()
	if err != nil {
		return p, err
	}
	p.IsMove, err = r.Bit()
	if err != nil {
		return p, err
	}
	if _, err = r.UBits(3); err != nil { // reserved
		return p, err
	}
	hasOpaqueBg, err := r.Bit()
	if err != nil {
		return p, err
	}
	hasVisible, err := r.Bit()
	if err != nil {
		return p, err
	}
	hasBlend, err := r.Bit()
	if err != nil {
		return p, err
	}
	hasFilters, err := r.Bit()
	if err != nil {
		return p, err
	}

	depth, err := r.U16()
	if err != nil {
		return p, err
	}
	p.Depth = depth

	if hasClassName || (hasImage && hasCharacter) {
		name, err := r.String()
		if err != nil {
			return p, err
		}
		p.ClassName = &name
	}
	if hasCharacter {
		id, err := r.U16()
		if err != nil {
			return p, err
		}
		p.CharacterID = &id
	}
	if hasMatrix {
		m, err := ReadMatrix(r)
		if err != nil {
			return p, err
		}
		p.Matrix = &m
	}
	if hasColorTransform {
		ct, err := ReadColorTransform(r, true)
		if err != nil {
			return p, err
		}
		p.ColorTransform = &ct
	}
	if hasRatio {
		ratio, err := r.Fixed8_8()
		if err != nil {
			return p, err
		}
		p.Ratio = &ratio
	}
	if hasName {
		name, err := r.String()
		if err != nil {
			return p, err
		}
		p.Name = &name
	}
	if hasClip {
		cd, err := r.U16()
		if err != nil {
			return p, err
		}
		p.ClipDepth = &cd
	}
	if hasFilters {
		filters, err := ReadFilterList(r)
		if err != nil {
			return p, err
		}
		p.Filters = filters
	}
	if hasBlend {
		b, err := r.U8()
		if err != nil {
			return p, err
		}
		bm := normalizeBlendMode(b)
		p.Blend = &bm
	}
	if hasOpaqueBg {
		if _, err = r.U32(); err != nil { // background color, unused downstream
			return p, err
		}
	}
	if hasVisible {
		if _, err = r.U8(); err != nil { // visibility flag, unused downstream
			return p, err
		}
	}
	return p, nil
}
