package bitmap

import "github.com/agg-go/vecatlas/internal/records"

// rowStride returns the 4-byte-padded row length for a given unpadded byte
// count.
func rowStride(unpadded int) int {
	return (unpadded + 3) &^ 3
}

// DecodeLossless dispatches on h.Format and returns tightly-packed RGBA
// bytes (width*height*4, no row padding) from the zlib-inflated payload.
func DecodeLossless(h records.BitmapHeader, inflated []byte, hasAlpha bool) []byte {
	switch h.Format {
	case records.BitmapLosslessPalette8:
		return decodePalette8(h, inflated, hasAlpha)
	case records.BitmapLossless15Bit:
		return decode15Bit(h, inflated)
	case records.BitmapLossless32BitAlpha:
		return decode32BitAlpha(h, inflated)
	default:
		return decode24Bit(h, inflated)
	}
}

// decodePalette8 reads an (N+1)-entry RGB or RGBA palette (the leading byte
// of the payload is N, so the table has N+1 entries), then one
// row-padded-to-4-bytes row of palette indices per scanline.
func decodePalette8(h records.BitmapHeader, data []byte, hasAlpha bool) []byte {
	if len(data) == 0 {
		return nil
	}
	entryCount := int(data[0]) + 1
	entrySize := 3
	if hasAlpha {
		entrySize = 4
	}
	palette := make([][4]byte, entryCount)
	off := 1
	for i := 0; i < entryCount; i++ {
		if off+entrySize > len(data) {
			break
		}
		if hasAlpha {
			palette[i] = [4]byte{data[off], data[off+1], data[off+2], data[off+3]}
		} else {
			palette[i] = [4]byte{data[off], data[off+1], data[off+2], 255}
		}
		off += entrySize
	}

	stride := rowStride(h.Width)
	out := make([]byte, h.Width*h.Height*4)
	for row := 0; row < h.Height; row++ {
		rowStart := off + row*stride
		for col := 0; col < h.Width; col++ {
			idx := 0
			if rowStart+col < len(data) {
				idx = int(data[rowStart+col])
			}
			var c [4]byte
			if idx < len(palette) {
				c = palette[idx]
			}
			d := (row*h.Width + col) * 4
			out[d], out[d+1], out[d+2], out[d+3] = c[0], c[1], c[2], c[3]
		}
	}
	return out
}

// decode15Bit reads one big-endian 16-bit 5-5-5 RGB pixel per column, rows
// padded to 4 bytes.
func decode15Bit(h records.BitmapHeader, data []byte) []byte {
	stride := rowStride(h.Width * 2)
	out := make([]byte, h.Width*h.Height*4)
	scale5 := func(v byte) byte { return byte(int(v) * 255 / 31) }
	for row := 0; row < h.Height; row++ {
		rowStart := row * stride
		for col := 0; col < h.Width; col++ {
			i := rowStart + col*2
			if i+1 >= len(data) {
				continue
			}
			px := uint16(data[i])<<8 | uint16(data[i+1])
			r := byte((px >> 10) & 0x1F)
			g := byte((px >> 5) & 0x1F)
			b := byte(px & 0x1F)
			d := (row*h.Width + col) * 4
			out[d], out[d+1], out[d+2], out[d+3] = scale5(r), scale5(g), scale5(b), 255
		}
	}
	return out
}

// decode24Bit reads one padding byte then R,G,B per pixel (4 bytes/pixel,
// inherently row-aligned); alpha is always opaque.
func decode24Bit(h records.BitmapHeader, data []byte) []byte {
	out := make([]byte, h.Width*h.Height*4)
	for row := 0; row < h.Height; row++ {
		rowStart := row * h.Width * 4
		for col := 0; col < h.Width; col++ {
			i := rowStart + col*4
			if i+3 >= len(data) {
				continue
			}
			d := (row*h.Width + col) * 4
			out[d], out[d+1], out[d+2], out[d+3] = data[i+1], data[i+2], data[i+3], 255
		}
	}
	return out
}

// decode32BitAlpha reads alpha then R,G,B per pixel, un-premultiplying with
// the same formula as the JPEG-with-alpha case.
func decode32BitAlpha(h records.BitmapHeader, data []byte) []byte {
	out := make([]byte, h.Width*h.Height*4)
	for row := 0; row < h.Height; row++ {
		rowStart := row * h.Width * 4
		for col := 0; col < h.Width; col++ {
			i := rowStart + col*4
			if i+3 >= len(data) {
				continue
			}
			a, r, g, b := data[i], data[i+1], data[i+2], data[i+3]
			d := (row*h.Width + col) * 4
			if a == 0 {
				out[d], out[d+1], out[d+2], out[d+3] = 0, 0, 0, 0
				continue
			}
			unpremul := func(c byte) byte {
				v := int(c) * 255 / int(a)
				if v > 255 {
					v = 255
				}
				return byte(v)
			}
			out[d], out[d+1], out[d+2], out[d+3] = unpremul(r), unpremul(g), unpremul(b), a
		}
	}
	return out
}
