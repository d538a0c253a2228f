package records

import (
	"github.com/agg-go/vecatlas/internal/bitio"
	"github.com/agg-go/vecatlas/internal/geom"
)

// FillStyleKind identifies which of the fill-style variants a FillStyle
// carries.
type FillStyleKind uint8

const (
	FillSolid FillStyleKind = iota
	FillLinearGradient
	FillRadialGradient
	FillFocalRadialGradient
	FillRepeatingBitmap
	FillClippedBitmap
	FillRepeatingBitmapSmoothed
	FillClippedBitmapSmoothed
)

// FillStyle is a tagged union over the eight fill-style variants. Only the
// fields relevant to Kind are populated.
type FillStyle struct {
	Kind        FillStyleKind
	Solid       Color
	Gradient    Gradient
	GradientMat geom.Matrix
	BitmapID    uint16
	BitmapMat   geom.Matrix
}

// readFillStyleType decodes the 1-byte fill style type code into a Kind.
func readFillStyleType(code uint8) (FillStyleKind, bool) {
	switch code {
	case 0x00:
		return FillSolid, true
	case 0x10:
		return FillLinearGradient, true
	case 0x12:
		return FillRadialGradient, true
	case 0x13:
		return FillFocalRadialGradient, true
	case 0x40:
		return FillRepeatingBitmap, true
	case 0x41:
		return FillClippedBitmap, true
	case 0x42:
		return FillRepeatingBitmapSmoothed, true
	case 0x43:
		return FillClippedBitmapSmoothed, true
	default:
		return 0, false
	}
}

// ReadFillStyle decodes one fill style, dispatching on its 1-byte type
// code. hasAlpha selects the newer profile (4-channel colors, focal-radial
// support); the older profile only ever carries solid/linear/radial fills
// with 3-channel colors.
func ReadFillStyle(r *bitio.Reader, hasAlpha bool) (FillStyle, error) {
	code, err := r.U8()
	if err != nil {
		return FillStyle{}, err
	}
	kind, _ := readFillStyleType(code)
	fs := FillStyle{Kind: kind}

	switch kind {
	case FillSolid:
		if hasAlpha {
			fs.Solid, err = ReadColorRGBA(r)
		} else {
			fs.Solid, err = ReadColorRGB(r)
		}
		return fs, err
	case FillLinearGradient, FillRadialGradient, FillFocalRadialGradient:
		fs.GradientMat, err = ReadMatrix(r)
		if err != nil {
			return fs, err
		}
		fs.Gradient, err = ReadGradient(r, hasAlpha)
		if err != nil {
			return fs, err
		}
		if kind == FillFocalRadialGradient {
			fs.Gradient.Focus, err = r.Fixed8_8()
		}
		return fs, err
	default: // bitmap fills
		fs.BitmapID, err = r.U16()
		if err != nil {
			return fs, err
		}
		fs.BitmapMat, err = ReadMatrix(r)
		return fs, err
	}
}

// ReadFillStyleArray decodes the count-prefixed fill style list shared by
// shape and morph-shape definitions: a single count byte, or 0xFF followed
// by a 16-bit count.
func ReadFillStyleArray(r *bitio.Reader, hasAlpha bool) ([]FillStyle, error) {
	count, err := readStyleCount(r)
	if err != nil {
		return nil, err
	}
	out := make([]FillStyle, 0, count)
	for i := uint32(0); i < count; i++ {
		fs, err := ReadFillStyle(r, hasAlpha)
		if err != nil {
			return out, err
		}
		out = append(out, fs)
	}
	return out, nil
}

func readStyleCount(r *bitio.Reader) (uint32, error) {
	n, err := r.U8()
	if err != nil {
		return 0, err
	}
	if n == 0xFF {
		wide, err := r.U16()
		return uint32(wide), err
	}
	return uint32(n), nil
}

// LerpFillStyle interpolates two matching-kind fill styles at ratio,
// per-field.
func LerpFillStyle(a, b FillStyle, ratio float64) FillStyle {
	out := FillStyle{Kind: a.Kind}
	switch a.Kind {
	case FillSolid:
		out.Solid = LerpColor(a.Solid, b.Solid, ratio)
	case FillLinearGradient, FillRadialGradient, FillFocalRadialGradient:
		out.GradientMat = geom.Lerp(a.GradientMat, b.GradientMat, ratio)
		out.Gradient = LerpGradient(a.Gradient, b.Gradient, ratio)
	default:
		out.BitmapID = a.BitmapID
		out.BitmapMat = geom.Lerp(a.BitmapMat, b.BitmapMat, ratio)
	}
	return out
}
