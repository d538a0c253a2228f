package records

import "github.com/agg-go/vecatlas/internal/bitio"

// FilterKind enumerates the eight supported filter types.
type FilterKind uint8

const (
	FilterDropShadow FilterKind = iota
	FilterBlur
	FilterGlow
	FilterBevel
	FilterGradientGlow
	FilterConvolution
	FilterColorMatrix
	FilterGradientBevel
)

// Filter captures one filter's typed fields. Only the fields relevant to
// Kind are populated; the SvgEmitter consumes these without further
// algorithmic cost beyond style composition.
type Filter struct {
	Kind FilterKind

	// drop-shadow / glow / bevel / gradient-glow / gradient-bevel
	DropShadowColor          Color
	GradientColors           []Color
	GradientRatios           []uint8
	BlurX, BlurY             float64
	Angle, Distance, Strength float64
	Passes                   int
	Inner, Knockout          bool
	CompositeSource          bool
	OnTop                    bool

	// convolution
	MatrixX, MatrixY int
	Matrix           []float64
	Divisor, Bias    float64
	ConvClamp        bool
	ConvPreserveAlpha bool
	ConvColor        Color

	// color-matrix: 4x5 matrix, row-major
	ColorMatrix [20]float64
}

func readFilterTypeCode(code uint8) (FilterKind, bool) {
	switch code {
	case 0:
		return FilterDropShadow, true
	case 1:
		return FilterBlur, true
	case 2:
		return FilterGlow, true
	case 3:
		return FilterBevel, true
	case 4:
		return FilterGradientGlow, true
	case 5:
		return FilterConvolution, true
	case 6:
		return FilterColorMatrix, true
	case 7:
		return FilterGradientBevel, true
	default:
		return 0, false
	}
}

// ReadFilterList decodes a 1-byte count followed by that many typed
// filters, each identified by a 1-byte type code.
func ReadFilterList(r *bitio.Reader) ([]Filter, error) {
	count, err := r.U8()
	if err != nil {
		return nil, err
	}
	out := make([]Filter, 0, count)
	for i := uint8(0); i < count; i++ {
		code, err := r.U8()
		if err != nil {
			return out, err
		}
		kind, _ := readFilterTypeCode(code)
		f, err := readFilter(r, kind)
		if err != nil {
			return out, err
		}
		out = append(out, f)
	}
	return out, nil
}

func readFilter(r *bitio.Reader, kind FilterKind) (Filter, error) {
	f := Filter{Kind: kind}
	var err error
	switch kind {
	case FilterDropShadow, FilterGlow:
		if f.DropShadowColor, err = ReadColorRGBA(r); err != nil {
			return f, err
		}
		return readShadowTail(r, &f)
	case FilterBevel:
		var c1, c2 Color
		if c1, err = ReadColorRGBA(r); err != nil {
			return f, err
		}
		if c2, err = ReadColorRGBA(r); err != nil {
			return f, err
		}
		f.GradientColors = []Color{c1, c2}
		return readShadowTail(r, &f)
	case FilterGradientGlow, FilterGradientBevel:
		n, err := r.U8()
		if err != nil {
			return f, err
		}
		f.GradientColors = make([]Color, n)
		for i := range f.GradientColors {
			if f.GradientColors[i], err = ReadColorRGBA(r); err != nil {
				return f, err
			}
		}
		f.GradientRatios = make([]uint8, n)
		for i := range f.GradientRatios {
			if f.GradientRatios[i], err = r.U8(); err != nil {
				return f, err
			}
		}
		return readShadowTail(r, &f)
	case FilterBlur:
		if f.BlurX, err = r.Fixed16_16(); err != nil {
			return f, err
		}
		if f.BlurY, err = r.Fixed16_16(); err != nil {
			return f, err
		}
		passes, err := r.UBits(5)
		if err != nil {
			return f, err
		}
		f.Passes = int(passes)
		_, err = r.UBits(3) // reserved
		return f, err
	case FilterConvolution:
		mx, err := r.U8()
		if err != nil {
			return f, err
		}
		my, err := r.U8()
		if err != nil {
			return f, err
		}
		f.MatrixX, f.MatrixY = int(mx), int(my)
		if f.Divisor, err = float64FromFixed32(r); err != nil {
			return f, err
		}
		if f.Bias, err = float64FromFixed32(r); err != nil {
			return f, err
		}
		f.Matrix = make([]float64, f.MatrixX*f.MatrixY)
		for i := range f.Matrix {
			if f.Matrix[i], err = float64FromFixed32(r); err != nil {
				return f, err
			}
		}
		if f.ConvColor, err = ReadColorRGBA(r); err != nil {
			return f, err
		}
		flags, err := r.U8()
		if err != nil {
			return f, err
		}
		f.ConvClamp = flags&0x02 != 0
		f.ConvPreserveAlpha = flags&0x01 != 0
		return f, nil
	case FilterColorMatrix:
		for i := range f.ColorMatrix {
			v, err := r.Float32()
			if err != nil {
				return f, err
			}
			f.ColorMatrix[i] = float64(v)
		}
		return f, nil
	default:
		return f, nil
	}
}

func float64FromFixed32(r *bitio.Reader) (float64, error) {
	return r.Fixed16_16()
}

func readShadowTail(r *bitio.Reader, f *Filter) error {
	bx, err := r.Fixed16_16()
	if err != nil {
		return err
	}
	by, err := r.Fixed16_16()
	if err != nil {
		return err
	}
	f.BlurX, f.BlurY = bx, by
	if f.Angle, err = r.Fixed16_16(); err != nil {
		return err
	}
	if f.Distance, err = r.Fixed16_16(); err != nil {
		return err
	}
	if f.Strength, err = r.Fixed8_8(); err != nil {
		return err
	}
	f.Inner, err = r.Bit()
	if err != nil {
		return err
	}
	f.Knockout, err = r.Bit()
	if err != nil {
		return err
	}
	f.CompositeSource, err = r.Bit()
	if err != nil {
		return err
	}
	if f.Kind == FilterGradientGlow || f.Kind == FilterGradientBevel || f.Kind == FilterBevel {
		f.OnTop, err = r.Bit()
		if err != nil {
			return err
		}
	}
	passes, err := r.UBits(4)
	if err != nil {
		return err
	}
	f.Passes = int(passes)
	return nil
}
