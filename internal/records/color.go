package records

import "github.com/agg-go/vecatlas/internal/bitio"

// Color is an RGBA color; alpha is 255 when decoded from an older
// alpha-less shape profile.
type Color struct {
	R, G, B, A uint8
}

// ReadColorRGB reads a 3-channel color (opaque: A=255), the older shape
// profile's representation.
func ReadColorRGB(r *bitio.Reader) (Color, error) {
	red, err := r.U8()
	if err != nil {
		return Color{}, err
	}
	green, err := r.U8()
	if err != nil {
		return Color{}, err
	}
	blue, err := r.U8()
	if err != nil {
		return Color{}, err
	}
	return Color{R: red, G: green, B: blue, A: 255}, nil
}

// ReadColorRGBA reads a 4-channel color, the newer shape profile's
// representation.
func ReadColorRGBA(r *bitio.Reader) (Color, error) {
	c, err := ReadColorRGB(r)
	if err != nil {
		return c, err
	}
	a, err := r.U8()
	if err != nil {
		return c, err
	}
	c.A = a
	return c, nil
}

// ColorTransform has four multiplicative terms (256 = identity) and four
// additive terms. Apply clamps each channel independently to [0,255]
//: `clamp(c*mult/256 + add, 0, 255)`.
type ColorTransform struct {
	RMul, GMul, BMul, AMul int32 // 256 = identity
	RAdd, GAdd, BAdd, AAdd int32
}

// IdentityColorTransform returns the multiplicative-identity, zero-additive transform.
func IdentityColorTransform() ColorTransform {
	return ColorTransform{RMul: 256, GMul: 256, BMul: 256, AMul: 256}
}

// Apply transforms a color, clamping each channel independently.
func (ct ColorTransform) Apply(c Color) Color {
	clamp := func(v int32) uint8 {
		if v < 0 {
			return 0
		}
		if v > 255 {
			return 255
		}
		return uint8(v)
	}
	return Color{
		R: clamp(int32(c.R)*ct.RMul/256 + ct.RAdd),
		G: clamp(int32(c.G)*ct.GMul/256 + ct.GAdd),
		B: clamp(int32(c.B)*ct.BMul/256 + ct.BAdd),
		A: clamp(int32(c.A)*ct.AMul/256 + ct.AAdd),
	}
}

// ReadColorTransform decodes a color-transform record. hasAlpha selects the
// with-alpha variant; multiplier defaults to 256 and additive defaults to 0
// when their respective flag bit is unset.
func ReadColorTransform(r *bitio.Reader, hasAlpha bool) (ColorTransform, error) {
	ct := IdentityColorTransform()

	hasAdd, err := r.Bit()
	if err != nil {
		return ct, err
	}
	hasMul, err := r.Bit()
	if err != nil {
		return ct, err
	}
	nbits, err := r.UBits(4)
	if err != nil {
		return ct, err
	}

	readField := func() (int32, error) {
		v, err := r.SBits(int(nbits))
		return v, err
	}

	if hasMul {
		if ct.RMul, err = readField(); err != nil {
			return ct, err
		}
		if ct.GMul, err = readField(); err != nil {
			return ct, err
		}
		if ct.BMul, err = readField(); err != nil {
			return ct, err
		}
		if hasAlpha {
			if ct.AMul, err = readField(); err != nil {
				return ct, err
			}
		}
	}
	if hasAdd {
		if ct.RAdd, err = readField(); err != nil {
			return ct, err
		}
		if ct.GAdd, err = readField(); err != nil {
			return ct, err
		}
		if ct.BAdd, err = readField(); err != nil {
			return ct, err
		}
		if hasAlpha {
			if ct.AAdd, err = readField(); err != nil {
				return ct, err
			}
		}
	}
	r.AlignByte()
	return ct, nil
}

// LerpColor linearly blends two colors channel-by-channel, integer-rounded.
func LerpColor(a, b Color, ratio float64) Color {
	lerp := func(x, y uint8) uint8 {
		return uint8(float64(x) + (float64(y)-float64(x))*ratio + 0.5)
	}
	return Color{R: lerp(a.R, b.R), G: lerp(a.G, b.G), B: lerp(a.B, b.B), A: lerp(a.A, b.A)}
}
