package records

import "github.com/agg-go/vecatlas/internal/bitio"

// CapStyle and JoinStyle select stroke endcap/corner rendering.
type CapStyle uint8
type JoinStyle uint8

const (
	CapRound CapStyle = iota
	CapNone
	CapSquare
)

const (
	JoinRound JoinStyle = iota
	JoinBevel
	JoinMiter
)

// LineStyle covers both line-style profiles. Width/Color are always valid;
// the extended fields are zero-valued when decoded from the plain profile.
type LineStyle struct {
	Width geomTwip
	Color Color

	// Extended profile only:
	StartCap, EndCap    CapStyle
	Join                JoinStyle
	MiterLimit          float64
	NoHScale, NoVScale  bool
	PixelHinting        bool
	NoClose             bool
	Fill                *FillStyle // set when "has fill" replaces Color
}

// geomTwip avoids importing geom just for one field's type identity here;
// it is numerically identical to geom.Twip.
type geomTwip = int32

// ReadLineStyle decodes the plain line-style profile: width + color.
func ReadLineStyle(r *bitio.Reader, hasAlpha bool) (LineStyle, error) {
	w, err := r.U16()
	if err != nil {
		return LineStyle{}, err
	}
	var c Color
	if hasAlpha {
		c, err = ReadColorRGBA(r)
	} else {
		c, err = ReadColorRGB(r)
	}
	return LineStyle{Width: int32(w), Color: c}, err
}

// ReadLineStyleExtended decodes the extended line-style profile: cap/join
// bits, optional miter limit, and either a fill style or a plain color.
func ReadLineStyleExtended(r *bitio.Reader) (LineStyle, error) {
	w, err := r.U16()
	if err != nil {
		return LineStyle{}, err
	}
	ls := LineStyle{Width: int32(w)}

	startCap, err := r.UBits(2)
	if err != nil {
		return ls, err
	}
	join, err := r.UBits(2)
	if err != nil {
		return ls, err
	}
	hasFill, err := r.Bit()
	if err != nil {
		return ls, err
	}
	ls.NoHScale, err = r.Bit()
	if err != nil {
		return ls, err
	}
	ls.NoVScale, err = r.Bit()
	if err != nil {
		return ls, err
	}
	ls.PixelHinting, err = r.Bit()
	if err != nil {
		return ls, err
	}
	if _, err = r.UBits(5); err != nil { // reserved
		return ls, err
	}
	ls.NoClose, err = r.Bit()
	if err != nil {
		return ls, err
	}
	endCap, err := r.UBits(2)
	if err != nil {
		return ls, err
	}
	ls.StartCap, ls.EndCap, ls.Join = CapStyle(startCap), CapStyle(endCap), JoinStyle(join)

	if ls.Join == JoinMiter {
		ls.MiterLimit, err = r.Fixed8_8()
		if err != nil {
			return ls, err
		}
	}

	if hasFill {
		fs, err := ReadFillStyle(r, true)
		if err != nil {
			return ls, err
		}
		ls.Fill = &fs
	} else {
		ls.Color, err = ReadColorRGBA(r)
		if err != nil {
			return ls, err
		}
	}
	return ls, nil
}

// ReadLineStyleArray decodes the count-prefixed line style list.
func ReadLineStyleArray(r *bitio.Reader, extended, hasAlpha bool) ([]LineStyle, error) {
	count, err := readStyleCount(r)
	if err != nil {
		return nil, err
	}
	out := make([]LineStyle, 0, count)
	for i := uint32(0); i < count; i++ {
		var ls LineStyle
		if extended {
			ls, err = ReadLineStyleExtended(r)
		} else {
			ls, err = ReadLineStyle(r, hasAlpha)
		}
		if err != nil {
			return out, err
		}
		out = append(out, ls)
	}
	return out, nil
}

// LerpLineStyle interpolates width and color/fill by ratio.
func LerpLineStyle(a, b LineStyle, ratio float64) LineStyle {
	out := a
	out.Width = int32(float64(a.Width) + (float64(b.Width)-float64(a.Width))*ratio + 0.5)
	if a.Fill != nil && b.Fill != nil {
		f := LerpFillStyle(*a.Fill, *b.Fill, ratio)
		out.Fill = &f
	} else {
		out.Color = LerpColor(a.Color, b.Color, ratio)
	}
	return out
}
