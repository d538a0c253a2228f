package records

import (
	"github.com/agg-go/vecatlas/internal/bitio"
	"github.com/agg-go/vecatlas/internal/geom"
)

// ReadMatrix decodes a matrix record: an optional scale pair, an optional
// skew pair, and a translate pair, each preceded by its own 5-bit field
// width, byte-aligned on exit.
func ReadMatrix(r *bitio.Reader) (geom.Matrix, error) {
	m := geom.Identity()

	hasScale, err := r.Bit()
	if err != nil {
		return m, err
	}
	if hasScale {
		nbits, err := r.UBits(5)
		if err != nil {
			return m, err
		}
		if m.ScaleX, err = r.FixedBits(int(nbits)); err != nil {
			return m, err
		}
		if m.ScaleY, err = r.FixedBits(int(nbits)); err != nil {
			return m, err
		}
	}

	hasSkew, err := r.Bit()
	if err != nil {
		return m, err
	}
	if hasSkew {
		nbits, err := r.UBits(5)
		if err != nil {
			return m, err
		}
		if m.ShearX, err = r.FixedBits(int(nbits)); err != nil {
			return m, err
		}
		if m.ShearY, err = r.FixedBits(int(nbits)); err != nil {
			return m, err
		}
	}

	nbits, err := r.UBits(5)
	if err != nil {
		return m, err
	}
	tx, err := r.SBits(int(nbits))
	if err != nil {
		return m, err
	}
	ty, err := r.SBits(int(nbits))
	if err != nil {
		return m, err
	}
	m.TranslateX = geom.Twip(tx)
	m.TranslateY = geom.Twip(ty)

	r.AlignByte()
	return m, nil
}
