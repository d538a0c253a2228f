package records

import "github.com/agg-go/vecatlas/internal/bitio"

// BitmapFormat enumerates the supported bitmap sub-formats.
type BitmapFormat uint8

const (
	BitmapEmbeddedJPEG BitmapFormat = iota
	BitmapStandaloneJPEG
	BitmapJPEGWithAlpha
	BitmapJPEGWithAlphaDeblock
	BitmapLosslessPalette8
	BitmapLossless15Bit
	BitmapLossless24Bit
	BitmapLossless32BitAlpha
)

// BitmapHeader is the normalized header of a bitmap definition tag: enough
// to dispatch to the right BitmapDecoder sub-routine. The raw payload bytes
// that follow the header are read separately by the caller (they may be
// large and are handled as a streamed slice, not copied into this struct).
type BitmapHeader struct {
	CharacterID     uint16
	Format          BitmapFormat
	Width, Height   int
	DeblockParam    float64 // JPEG-with-alpha-and-deblocking only
}

// ReadLosslessBitmapHeader decodes a DefineBitsLossless[2] tag's fixed
// header: id, format code, width, height.
func ReadLosslessBitmapHeader(r *bitio.Reader, hasAlpha bool) (BitmapHeader, error) {
	var h BitmapHeader
	id, err := r.U16()
	if err != nil {
		return h, err
	}
	h.CharacterID = id

	formatCode, err := r.U8()
	if err != nil {
		return h, err
	}
	w, err := r.U16()
	if err != nil {
		return h, err
	}
	ht, err := r.U16()
	if err != nil {
		return h, err
	}
	h.Width, h.Height = int(w), int(ht)

	switch formatCode {
	case 3:
		h.Format = BitmapLosslessPalette8
	case 4:
		h.Format = BitmapLossless15Bit
	case 5:
		if hasAlpha {
			h.Format = BitmapLossless32BitAlpha
		} else {
			h.Format = BitmapLossless24Bit
		}
	default:
		h.Format = BitmapLossless24Bit
	}
	return h, nil
}

// ReadEmbeddedBitsHeader decodes a DefineBits/DefineBitsJPEG[2,3] tag's
// fixed id field; the remainder is raw JPEG (or JPEG+alpha-length-prefixed)
// payload handled by the bitmap package directly.
func ReadEmbeddedBitsHeader(r *bitio.Reader) (uint16, error) {
	return r.U16()
}
