// Package bitmap implements the BitmapDecoder: JPEG sanitization, JPEG+alpha
// deinterleaving, lossless (palettized / 15-bit / 24-bit / 32-bit) decoding,
// and a minimal standalone PNG writer.
package bitmap

import (
	"bytes"

	"github.com/agg-go/vecatlas/internal/bitio"
)

const (
	markerSOI  = 0xD8
	markerEOI  = 0xD9
	markerRST0 = 0xD0
	markerRST7 = 0xD7
)

// SanitizeJPEG walks the marker stream (`0xFF xx`), strips every nested
// start-of-image and end-of-image marker, passes length-prefixed segments
// through verbatim, and wraps the result with exactly one leading SOI and
// one trailing EOI.
func SanitizeJPEG(data []byte) []byte {
	var out bytes.Buffer
	out.Write([]byte{0xFF, markerSOI})

	i := 0
	for i < len(data) {
		if data[i] != 0xFF {
			out.WriteByte(data[i])
			i++
			continue
		}
		// Skip fill bytes (0xFF 0xFF ...).
		j := i + 1
		for j < len(data) && data[j] == 0xFF {
			j++
		}
		if j >= len(data) {
			break
		}
		marker := data[j]
		if marker == 0x00 {
			out.Write([]byte{0xFF, 0x00})
			i = j + 1
			continue
		}
		if marker == markerSOI || marker == markerEOI {
			i = j + 1
			continue
		}
		if marker >= markerRST0 && marker <= markerRST7 {
			out.Write([]byte{0xFF, marker})
			i = j + 1
			continue
		}
		if j+2 >= len(data) {
			break
		}
		length := int(data[j+1])<<8 | int(data[j+2])
		segEnd := j + 1 + length
		if segEnd > len(data) {
			segEnd = len(data)
		}
		out.Write(data[i:segEnd])
		i = segEnd
	}

	out.Write([]byte{0xFF, markerEOI})
	return out.Bytes()
}

// DeinterleaveAlpha combines already-decoded JPEG color pixels with an
// already-inflated alpha plane and produces un-premultiplied RGBA bytes: `channel = min(255, floor(stored*255/alpha))`,
// with fully-transparent pixels forced to `(0,0,0,0)`.
//
// colorPixels must already be decoded RGB (width*height*3 bytes); this
// package does not itself decode JPEG pixel data.
func DeinterleaveAlpha(colorPixels []byte, alphaPlane []byte, width, height int) []byte {
	out := make([]byte, width*height*4)
	for i := 0; i < width*height; i++ {
		a := alphaPlane[i]
		r, g, b := colorPixels[i*3], colorPixels[i*3+1], colorPixels[i*3+2]
		if a == 0 {
			out[i*4], out[i*4+1], out[i*4+2], out[i*4+3] = 0, 0, 0, 0
			continue
		}
		unpremul := func(c byte) byte {
			v := int(c) * 255 / int(a)
			if v > 255 {
				v = 255
			}
			return byte(v)
		}
		out[i*4] = unpremul(r)
		out[i*4+1] = unpremul(g)
		out[i*4+2] = unpremul(b)
		out[i*4+3] = a
	}
	return out
}

// InflateAlphaPlane zlib-inflates a bitmap's alpha-plane payload using the
// shared bitio.Reader machinery.
func InflateAlphaPlane(r *bitio.Reader, end int) ([]byte, error) {
	return r.Inflate(end)
}
