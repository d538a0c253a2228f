package geom

// Matrix is a 2x3 affine transform:
//
//	scaleX shearX translateX
//	shearY scaleY translateY
//	0      0      1
//
// ScaleX/ScaleY/ShearX/ShearY are 16.16 fixed-point quantities (stored here
// already converted to float64); TranslateX/TranslateY are in twips.
type Matrix struct {
	ScaleX, ShearY, ShearX, ScaleY float64
	TranslateX, TranslateY         Twip
}

// Identity returns the identity transform.
func Identity() Matrix {
	return Matrix{ScaleX: 1, ScaleY: 1}
}

// Apply transforms a point by the matrix.
func (m Matrix) Apply(x, y float64) (float64, float64) {
	return m.ScaleX*x + m.ShearX*y + float64(m.TranslateX),
		m.ShearY*x + m.ScaleY*y + float64(m.TranslateY)
}

// Multiply composes m followed by other (other ∘ m applied to a point means
// m is applied first, then other — standard affine composition order used
// when placing a child matrix within a parent's coordinate space).
func (m Matrix) Multiply(other Matrix) Matrix {
	tx := float64(m.TranslateX)*other.ScaleX + float64(m.TranslateY)*other.ShearX + float64(other.TranslateX)
	ty := float64(m.TranslateX)*other.ShearY + float64(m.TranslateY)*other.ScaleY + float64(other.TranslateY)
	return Matrix{
		ScaleX:     m.ScaleX*other.ScaleX + m.ShearY*other.ShearX,
		ShearY:     m.ScaleX*other.ShearY + m.ShearY*other.ScaleY,
		ShearX:     m.ShearX*other.ScaleX + m.ScaleY*other.ShearX,
		ScaleY:     m.ShearX*other.ShearY + m.ScaleY*other.ScaleY,
		TranslateX: Twip(tx),
		TranslateY: Twip(ty),
	}
}

// Translated returns a copy of m with an additional translation applied in
// the matrix's own (pre-transform) space, i.e. Translated composes a pure
// translation before m — used by the timeline compositor's "translate by
// the drawable's own minimum corner" normalization.
func (m Matrix) Translated(dx, dy float64) Matrix {
	return Matrix{
		ScaleX: m.ScaleX, ShearY: m.ShearY, ShearX: m.ShearX, ScaleY: m.ScaleY,
		TranslateX: m.TranslateX + Twip(m.ScaleX*dx+m.ShearX*dy),
		TranslateY: m.TranslateY + Twip(m.ShearY*dx+m.ScaleY*dy),
	}
}

// RoundTranslate returns a copy of m with its translation components
// integer-rounded so strokes align on pixel boundaries.
func (m Matrix) RoundTranslate() Matrix {
	m.TranslateX = Twip(roundHalfAwayFromZero(float64(m.TranslateX)))
	m.TranslateY = Twip(roundHalfAwayFromZero(float64(m.TranslateY)))
	return m
}

func roundHalfAwayFromZero(v float64) int32 {
	if v >= 0 {
		return int32(v + 0.5)
	}
	return -int32(-v + 0.5)
}

// Lerp linearly interpolates between two matrices component-wise, with the
// translate components integer-rounded to match a morph shape's blended
// placement.
func Lerp(a, b Matrix, ratio float64) Matrix {
	ratio = clamp01(ratio)
	f := func(x, y float64) float64 { return x + (y-x)*ratio }
	return Matrix{
		ScaleX: f(a.ScaleX, b.ScaleX),
		ShearY: f(a.ShearY, b.ShearY),
		ShearX: f(a.ShearX, b.ShearX),
		ScaleY: f(a.ScaleY, b.ScaleY),
		TranslateX: Twip(roundHalfAwayFromZero(f(float64(a.TranslateX), float64(b.TranslateX)))),
		TranslateY: Twip(roundHalfAwayFromZero(f(float64(a.TranslateY), float64(b.TranslateY)))),
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// LerpPoint linearly interpolates a twip-space point, integer-rounding the
// result.
func LerpPoint(a, b Point, ratio float64) Point {
	ratio = clamp01(ratio)
	return Point{
		X: Twip(roundHalfAwayFromZero(float64(a.X) + (float64(b.X)-float64(a.X))*ratio)),
		Y: Twip(roundHalfAwayFromZero(float64(a.Y) + (float64(b.Y)-float64(a.Y))*ratio)),
	}
}

// LerpRect linearly interpolates a bounds rectangle per-corner.
func LerpRect(a, b Rect, ratio float64) Rect {
	min := LerpPoint(Point{a.XMin, a.YMin}, Point{b.XMin, b.YMin}, ratio)
	max := LerpPoint(Point{a.XMax, a.YMax}, Point{b.XMax, b.YMax}, ratio)
	return Rect{min.X, min.Y, max.X, max.Y}
}
