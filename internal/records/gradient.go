package records

import "github.com/agg-go/vecatlas/internal/bitio"

// GradientStop is one ratio/color pair in a gradient.
type GradientStop struct {
	Ratio uint8
	Color Color
}

// SpreadMode mirrors the gradient's edge-repeat behavior.
type SpreadMode uint8

const (
	SpreadPad SpreadMode = iota
	SpreadReflect
	SpreadRepeat
)

// InterpolationMode selects linear vs. perceptually-even color interpolation.
type InterpolationMode uint8

const (
	InterpolationNormal InterpolationMode = iota
	InterpolationLinearRGB
)

// Gradient is the shared payload of linear/radial/focal-radial fill styles.
type Gradient struct {
	Spread        SpreadMode
	Interpolation InterpolationMode
	Stops         []GradientStop
	Focus         float64 // only meaningful for the focal-radial variant
}

// ReadGradient decodes a gradient record body (spread/interpolation flags,
// stop count, then each stop), not including the focal-point field the
// focal-radial variant appends.
func ReadGradient(r *bitio.Reader, hasAlpha bool) (Gradient, error) {
	spread, err := r.UBits(2)
	if err != nil {
		return Gradient{}, err
	}
	interp, err := r.UBits(2)
	if err != nil {
		return Gradient{}, err
	}
	count, err := r.UBits(4)
	if err != nil {
		return Gradient{}, err
	}
	g := Gradient{Spread: SpreadMode(spread), Interpolation: InterpolationMode(interp)}
	for i := uint32(0); i < count; i++ {
		ratio, err := r.U8()
		if err != nil {
			return g, err
		}
		var c Color
		if hasAlpha {
			c, err = ReadColorRGBA(r)
		} else {
			c, err = ReadColorRGB(r)
		}
		if err != nil {
			return g, err
		}
		g.Stops = append(g.Stops, GradientStop{Ratio: ratio, Color: c})
	}
	return g, nil
}

// LerpGradient interpolates a gradient at a ratio by pairing stops
// positionally. The shorter stop list's length wins.
func LerpGradient(a, b Gradient, ratio float64) Gradient {
	n := len(a.Stops)
	if len(b.Stops) < n {
		n = len(b.Stops)
	}
	out := Gradient{Spread: a.Spread, Interpolation: a.Interpolation}
	for i := 0; i < n; i++ {
		r := uint8(float64(a.Stops[i].Ratio) + (float64(b.Stops[i].Ratio)-float64(a.Stops[i].Ratio))*ratio + 0.5)
		out.Stops = append(out.Stops, GradientStop{
			Ratio: r,
			Color: LerpColor(a.Stops[i].Color, b.Stops[i].Color, ratio),
		})
	}
	out.Focus = a.Focus + (b.Focus-a.Focus)*ratio
	return out
}
