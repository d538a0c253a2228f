// Package records implements the family of pure record decoders consumed by
// a bitio.Reader: rectangles, matrices, colors, gradients, fill/line styles,
// shape records, filters, place-object variants, morph headers, bitmap
// headers, and exported-asset lists.
package records

import (
	"github.com/agg-go/vecatlas/internal/bitio"
	"github.com/agg-go/vecatlas/internal/geom"
)

// ReadRect decodes a bit-packed rectangle: a 5-bit field width followed by
// four signed values of that width, byte-aligned on exit.
func ReadRect(r *bitio.Reader) (geom.Rect, error) {
	nbits, err := r.UBits(5)
	if err != nil {
		return geom.Rect{}, err
	}
	xmin, err := r.SBits(int(nbits))
	if err != nil {
		return geom.Rect{}, err
	}
	xmax, err := r.SBits(int(nbits))
	if err != nil {
		return geom.Rect{}, err
	}
	ymin, err := r.SBits(int(nbits))
	if err != nil {
		return geom.Rect{}, err
	}
	ymax, err := r.SBits(int(nbits))
	if err != nil {
		return geom.Rect{}, err
	}
	r.AlignByte()
	return geom.Rect{
		XMin: geom.Twip(xmin), XMax: geom.Twip(xmax),
		YMin: geom.Twip(ymin), YMax: geom.Twip(ymax),
	}, nil
}
