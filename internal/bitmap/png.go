package bitmap

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"

	"github.com/klauspost/compress/zlib"
)

var pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1A, '\n'}

// EncodePNG writes a minimal 8-bit RGBA PNG: signature, IHDR, a single IDAT
// of zlib-deflated filter-0 scanlines, IEND. rgba must be width*height*4 bytes, row-major, no padding.
func EncodePNG(width, height int, rgba []byte) []byte {
	var out bytes.Buffer
	out.Write(pngSignature)

	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:4], uint32(width))
	binary.BigEndian.PutUint32(ihdr[4:8], uint32(height))
	ihdr[8] = 8    // bit depth
	ihdr[9] = 6    // color type: RGBA
	ihdr[10] = 0   // compression
	ihdr[11] = 0   // filter
	ihdr[12] = 0   // interlace
	writeChunk(&out, "IHDR", ihdr)

	raw := make([]byte, 0, height*(1+width*4))
	stride := width * 4
	for row := 0; row < height; row++ {
		raw = append(raw, 0) // filter type 0: none
		start := row * stride
		raw = append(raw, rgba[start:start+stride]...)
	}

	var compressed bytes.Buffer
	zw := zlib.NewWriter(&compressed)
	zw.Write(raw)
	zw.Close()
	writeChunk(&out, "IDAT", compressed.Bytes())

	writeChunk(&out, "IEND", nil)
	return out.Bytes()
}

func writeChunk(out *bytes.Buffer, typ string, data []byte) {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(data)))
	out.Write(lenBuf[:])

	body := append([]byte(typ), data...)
	out.Write(body)

	crc := crc32.ChecksumIEEE(body)
	var crcBuf [4]byte
	binary.BigEndian.PutUint32(crcBuf[:], crc)
	out.Write(crcBuf[:])
}

// DecodePNG re-reads a PNG produced by EncodePNG, sufficient for a
// round trip against its own output — it assumes the minimal
// single-IDAT, filter-0, 8-bit-RGBA shape EncodePNG emits and is not a
// general-purpose PNG decoder.
func DecodePNG(data []byte) (width, height int, rgba []byte, ok bool) {
	if len(data) < len(pngSignature) || !bytes.Equal(data[:len(pngSignature)], pngSignature) {
		return 0, 0, nil, false
	}
	pos := len(pngSignature)
	var idat []byte
	for pos+8 <= len(data) {
		length := int(binary.BigEndian.Uint32(data[pos : pos+4]))
		typ := string(data[pos+4 : pos+8])
		bodyStart := pos + 8
		bodyEnd := bodyStart + length
		if bodyEnd > len(data) {
			break
		}
		body := data[bodyStart:bodyEnd]
		switch typ {
		case "IHDR":
			if len(body) < 8 {
				return 0, 0, nil, false
			}
			width = int(binary.BigEndian.Uint32(body[0:4]))
			height = int(binary.BigEndian.Uint32(body[4:8]))
		case "IDAT":
			idat = append(idat, body...)
		case "IEND":
			pos = bodyEnd + 4
			goto decompress
		}
		pos = bodyEnd + 4
	}
decompress:
	if idat == nil || width == 0 || height == 0 {
		return 0, 0, nil, false
	}
	zr, err := zlib.NewReader(bytes.NewReader(idat))
	if err != nil {
		return 0, 0, nil, false
	}
	defer zr.Close()
	var raw bytes.Buffer
	buf := make([]byte, 4096)
	for {
		n, err := zr.Read(buf)
		raw.Write(buf[:n])
		if err != nil {
			break
		}
	}
	stride := width*4 + 1
	rawBytes := raw.Bytes()
	if len(rawBytes) < height*stride {
		return 0, 0, nil, false
	}
	rgba = make([]byte, width*height*4)
	for row := 0; row < height; row++ {
		src := rawBytes[row*stride+1 : row*stride+stride]
		copy(rgba[row*width*4:(row+1)*width*4], src)
	}
	return width, height, rgba, true
}
