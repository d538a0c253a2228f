package bitmap

import (
	"image"

	"golang.org/x/image/draw"
)

// Thumbnail downscales an RGBA bitmap to fit within maxDim on its longer
// side, for the atlas image export's optional preview path: a quick low-res
// stand-in next to the full-resolution export, not meant for final output.
// Upscaling and no-op requests (image already within maxDim) return the
// input unchanged. draw.BiLinear trades a touch of sharpness for a cheap,
// good-enough box-style resample; draw.NearestNeighbor is used instead for
// single-pixel-wide strips where interpolation would just blur index art.
func Thumbnail(width, height int, rgba []byte, maxDim int) (int, int, []byte) {
	if maxDim <= 0 || width <= 0 || height <= 0 {
		return width, height, rgba
	}
	longest := width
	if height > longest {
		longest = height
	}
	if longest <= maxDim {
		return width, height, rgba
	}

	scale := float64(maxDim) / float64(longest)
	dstW := maxInt(1, int(float64(width)*scale+0.5))
	dstH := maxInt(1, int(float64(height)*scale+0.5))

	src := &image.NRGBA{Pix: rgba, Stride: width * 4, Rect: image.Rect(0, 0, width, height)}
	dst := image.NewNRGBA(image.Rect(0, 0, dstW, dstH))

	scaler := draw.BiLinear
	if dstW == 1 || dstH == 1 {
		scaler = draw.NearestNeighbor
	}
	scaler.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

	return dstW, dstH, dst.Pix
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
