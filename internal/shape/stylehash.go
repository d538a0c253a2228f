package shape

import (
	"fmt"
	"strings"

	"github.com/agg-go/vecatlas/internal/geom"
	"github.com/agg-go/vecatlas/internal/records"
)

// FillHash produces a stable, namespace-prefixed ("f:") serialization of a
// fill style's visual content. Exported so the
// morph package can key its blended-style accumulator the same way.
func FillHash(fs records.FillStyle) string {
	var b strings.Builder
	b.WriteString("f:")
	fmt.Fprintf(&b, "%d:", fs.Kind)
	switch fs.Kind {
	case records.FillSolid:
		fmt.Fprintf(&b, "%d,%d,%d,%d", fs.Solid.R, fs.Solid.G, fs.Solid.B, fs.Solid.A)
	case records.FillLinearGradient, records.FillRadialGradient, records.FillFocalRadialGradient:
		writeMatrix(&b, fs.GradientMat)
		writeGradient(&b, fs.Gradient)
	default: // bitmap fills
		fmt.Fprintf(&b, "%d:", fs.BitmapID)
		writeMatrix(&b, fs.BitmapMat)
	}
	return b.String()
}

// LineHash produces the "l:"-prefixed counterpart for line styles. Width
// participates in the hash since distinct widths are visually distinct
// strokes.
func LineHash(ls records.LineStyle) string {
	var b strings.Builder
	b.WriteString("l:")
	fmt.Fprintf(&b, "%d:%d,%d,%d,%d:%d:%d:%d",
		ls.Width, ls.Color.R, ls.Color.G, ls.Color.B, ls.Color.A,
		ls.StartCap, ls.EndCap, ls.Join)
	if ls.Fill != nil {
		b.WriteString(FillHash(*ls.Fill))
	}
	return b.String()
}

func writeMatrix(b *strings.Builder, m geom.Matrix) {
	fmt.Fprintf(b, "%.4f,%.4f,%.4f,%.4f,%d,%d:", m.ScaleX, m.ShearY, m.ShearX, m.ScaleY, m.TranslateX, m.TranslateY)
}

func writeGradient(b *strings.Builder, g records.Gradient) {
	fmt.Fprintf(b, "%d,%d,%.4f:", g.Spread, g.Interpolation, g.Focus)
	for _, s := range g.Stops {
		fmt.Fprintf(b, "(%d:%d,%d,%d,%d)", s.Ratio, s.Color.R, s.Color.G, s.Color.B, s.Color.A)
	}
}
