// Package bitio implements the bit-oriented streaming reader shared by every
// decoder in the pipeline: byte/bit access over a fixed byte slice, optional
// zlib inflation of a sub-range, and the per-reader error-flag mechanism
// that lets callers choose forgiving or strict decoding without threading an
// error return through every primitive read.
package bitio

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"

	"github.com/klauspost/compress/zlib"

	"github.com/agg-go/vecatlas/internal/decoderr"
)

// Flag bits enable failure for the corresponding semantic error kind.
// When a flag is off, the read clamps, zeroes, or truncates instead of
// failing, and a Warning is appended to Warnings.
const (
	FlagOutOfBounds uint8 = 1 << iota
	FlagMalformed
	FlagExtraData
	FlagUnknownTag
	FlagUnprocessable

	FlagStrict = FlagOutOfBounds | FlagMalformed | FlagExtraData | FlagUnknownTag | FlagUnprocessable
)

// Reader is a bit-oriented cursor over a fixed byte slice `[0, end)`. It
// never mutates or copies the underlying buffer; chunked views created by
// View share the same backing array.
type Reader struct {
	buf   []byte
	end   int // exclusive byte bound of this view
	byte  int // next unread byte index
	bit   uint8 // bits already consumed from buf[byte], 0 = byte-aligned
	flags uint8

	Warnings []decoderr.Warning
}

// New constructs a Reader over buf[0:len(buf)] with the given error flags.
func New(buf []byte, flags uint8) *Reader {
	return &Reader{buf: buf, end: len(buf), flags: flags}
}

// View derives a chunked reader over `[offset, end)` of the same backing
// buffer, byte-aligned, inheriting this reader's flags.
func (r *Reader) View(offset, end int) *Reader {
	if offset < 0 {
		offset = 0
	}
	if end > len(r.buf) {
		end = len(r.buf)
	}
	return &Reader{buf: r.buf, end: end, byte: offset, flags: r.flags}
}

// WithFlags returns a shallow copy of the reader's remaining span with a
// different strictness mask — used when a structural header must be strict
// even though the surrounding optional section is forgiving, or vice versa.
func (r *Reader) WithFlags(flags uint8) *Reader {
	cp := *r
	cp.flags = flags
	cp.Warnings = nil
	return &cp
}

func (r *Reader) warn(kind decoderr.Kind, flag uint8, msg string) error {
	if r.flags&flag != 0 {
		switch kind {
		case decoderr.KindOutOfBounds:
			return decoderr.ErrOutOfBounds
		case decoderr.KindMalformed:
			return decoderr.ErrMalformed
		case decoderr.KindExtraData:
			return decoderr.ErrExtraData
		case decoderr.KindUnknownTag:
			return decoderr.ErrUnknownTag
		default:
			return decoderr.ErrUnprocessable
		}
	}
	r.Warnings = append(r.Warnings, decoderr.Warning{Kind: kind, Message: msg})
	return nil
}

// Tell returns the current byte offset (the partial-bit cursor, if any, is
// not reflected — call AlignByte first if that matters to the caller).
func (r *Reader) Tell() int { return r.byte }

// End returns the exclusive byte bound of this view.
func (r *Reader) End() int { return r.end }

// Remaining reports how many whole bytes remain before End, ignoring any
// partial bit position.
func (r *Reader) Remaining() int {
	n := r.end - r.byte
	if n < 0 {
		return 0
	}
	return n
}

// Seek moves the byte cursor to an absolute offset and flushes bit state.
func (r *Reader) Seek(offset int) {
	r.byte = offset
	r.bit = 0
}

// AlignByte flushes any partial bit position, discarding unread bits of the
// current byte. Every byte-aligned primitive read does this implicitly.
func (r *Reader) AlignByte() {
	if r.bit != 0 {
		r.byte++
		r.bit = 0
	}
}

func (r *Reader) requireBytes(n int) (bool, error) {
	if r.byte+n > r.end || r.byte+n > len(r.buf) || n < 0 {
		return false, r.warn(decoderr.KindOutOfBounds, FlagOutOfBounds, "read past end of view")
	}
	return true, nil
}

// ---- byte-aligned primitives ----

// U8 reads an unsigned 8-bit value.
func (r *Reader) U8() (uint8, error) {
	r.AlignByte()
	if ok, err := r.requireBytes(1); !ok {
		return 0, err
	}
	v := r.buf[r.byte]
	r.byte++
	return v, nil
}

// I8 reads a signed 8-bit value.
func (r *Reader) I8() (int8, error) {
	v, err := r.U8()
	return int8(v), err
}

// U16 reads an unsigned 16-bit little-endian value.
func (r *Reader) U16() (uint16, error) {
	r.AlignByte()
	if ok, err := r.requireBytes(2); !ok {
		return 0, err
	}
	v := binary.LittleEndian.Uint16(r.buf[r.byte:])
	r.byte += 2
	return v, nil
}

// I16 reads a signed 16-bit little-endian value.
func (r *Reader) I16() (int16, error) {
	v, err := r.U16()
	return int16(v), err
}

// U32 reads an unsigned 32-bit little-endian value.
func (r *Reader) U32() (uint32, error) {
	r.AlignByte()
	if ok, err := r.requireBytes(4); !ok {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(r.buf[r.byte:])
	r.byte += 4
	return v, nil
}

// I32 reads a signed 32-bit little-endian value.
func (r *Reader) I32() (int32, error) {
	v, err := r.U32()
	return int32(v), err
}

// Fixed8_8 reads a 16-bit 8.8 fixed-point value as a float64.
func (r *Reader) Fixed8_8() (float64, error) {
	v, err := r.I16()
	if err != nil {
		return 0, err
	}
	return float64(v) / 256.0, nil
}

// Fixed16_16 reads a 32-bit 16.16 fixed-point value as a float64.
func (r *Reader) Fixed16_16() (float64, error) {
	v, err := r.I32()
	if err != nil {
		return 0, err
	}
	return float64(v) / 65536.0, nil
}

// Float32 reads a 32-bit IEEE float.
func (r *Reader) Float32() (float32, error) {
	v, err := r.U32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

// Float64 reads a 64-bit IEEE double, little-endian.
func (r *Reader) Float64() (float64, error) {
	r.AlignByte()
	if ok, err := r.requireBytes(8); !ok {
		return 0, err
	}
	v := binary.LittleEndian.Uint64(r.buf[r.byte:])
	r.byte += 8
	return math.Float64frombits(v), nil
}

// Float64Swapped reads a 64-bit IEEE double whose low and high 32-bit
// halves are swapped relative to plain little-endian order — a legacy
// convention some script-level numeric fields use.
func (r *Reader) Float64Swapped() (float64, error) {
	r.AlignByte()
	if ok, err := r.requireBytes(8); !ok {
		return 0, err
	}
	lo := binary.LittleEndian.Uint32(r.buf[r.byte:])
	hi := binary.LittleEndian.Uint32(r.buf[r.byte+4:])
	r.byte += 8
	bits := uint64(lo)<<32 | uint64(hi)
	return math.Float64frombits(bits), nil
}

// String reads a NUL-terminated, single-byte-encoded string.
func (r *Reader) String() (string, error) {
	r.AlignByte()
	start := r.byte
	for {
		if r.byte >= r.end || r.byte >= len(r.buf) {
			if err := r.warn(decoderr.KindOutOfBounds, FlagOutOfBounds, "unterminated string"); err != nil {
				return "", err
			}
			return string(r.buf[start:r.byte]), nil
		}
		if r.buf[r.byte] == 0 {
			s := string(r.buf[start:r.byte])
			r.byte++
			return s, nil
		}
		r.byte++
	}
}

// Bytes reads n raw bytes.
func (r *Reader) Bytes(n int) ([]byte, error) {
	r.AlignByte()
	if ok, err := r.requireBytes(n); !ok {
		if err != nil {
			return nil, err
		}
		n = r.Remaining()
	}
	v := r.buf[r.byte : r.byte+n]
	r.byte += n
	return v, nil
}

// BytesUntil reads raw bytes up to an absolute offset.
func (r *Reader) BytesUntil(offset int) ([]byte, error) {
	r.AlignByte()
	if offset < r.byte {
		return nil, nil
	}
	return r.Bytes(offset - r.byte)
}

// Inflate reads the remaining bytes up to offset and zlib-inflates them.
func (r *Reader) Inflate(offset int) ([]byte, error) {
	raw, err := r.BytesUntil(offset)
	if err != nil {
		return nil, err
	}
	zr, err := zlib.NewReader(bytes.NewReader(raw))
	if err != nil {
		if werr := r.warn(decoderr.KindMalformed, FlagMalformed, "invalid zlib stream: "+err.Error()); werr != nil {
			return nil, werr
		}
		return nil, nil
	}
	defer zr.Close()
	out, err := io.ReadAll(zr)
	if err != nil {
		if werr := r.warn(decoderr.KindMalformed, FlagMalformed, "truncated zlib stream: "+err.Error()); werr != nil {
			return nil, werr
		}
	}
	return out, nil
}

// ---- bit-level primitives ----

// Bit reads a single bit as a bool, most-significant-bit-first within each
// byte.
func (r *Reader) Bit() (bool, error) {
	v, err := r.UBits(1)
	return v != 0, err
}

// UBits reads an unsigned bit-field of n bits (n <= 32), MSB-first.
func (r *Reader) UBits(n int) (uint32, error) {
	if n == 0 {
		return 0, nil
	}
	if n < 0 || n > 32 {
		if err := r.warn(decoderr.KindMalformed, FlagMalformed, "invalid bit-field width"); err != nil {
			return 0, err
		}
		n = 32
	}
	var v uint32
	for i := 0; i < n; i++ {
		if r.byte >= r.end || r.byte >= len(r.buf) {
			if err := r.warn(decoderr.KindOutOfBounds, FlagOutOfBounds, "bit read past end of view"); err != nil {
				return 0, err
			}
			v <<= uint(n - i)
			return v, nil
		}
		bitVal := (r.buf[r.byte] >> (7 - r.bit)) & 1
		v = v<<1 | uint32(bitVal)
		r.bit++
		if r.bit == 8 {
			r.bit = 0
			r.byte++
		}
	}
	return v, nil
}

// SBits reads a signed bit-field of n bits, two's-complement relative to
// the field width.
func (r *Reader) SBits(n int) (int32, error) {
	v, err := r.UBits(n)
	if err != nil || n == 0 || n >= 32 {
		return int32(v), err
	}
	signBit := uint32(1) << (n - 1)
	if v&signBit != 0 {
		v |= ^uint32(0) << n
	}
	return int32(v), nil
}

// FixedBits reads an n-bit signed bit-field scaled by 1/65536 (a bit-packed
// 16.16 fixed-point quantity, per the Matrix record's scale/skew/translate
// fields).
func (r *Reader) FixedBits(n int) (float64, error) {
	v, err := r.SBits(n)
	if err != nil {
		return 0, err
	}
	return float64(v) / 65536.0, nil
}
