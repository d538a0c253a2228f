// Package tags implements the container body's tag stream: header framing
// (short/long length), iteration terminated by the End tag regardless of
// declared length, and lazy character-id indexing for definition tags.
package tags

import (
	"fmt"

	"github.com/agg-go/vecatlas/internal/bitio"
	"github.com/agg-go/vecatlas/internal/decoderr"
)

// Code identifies a tag's record type.
type Code uint16

// End is the zero-code terminator every tag body sequence must end with.
const End Code = 0

// Header describes one tag's framing: its code, the absolute byte offset of
// its body, and the body's declared length.
type Header struct {
	Code        Code
	BodyOffset  int
	BodyLength  int
	CharacterID uint16 // valid only when HasCharacterID is true
	HasCharacterID bool
}

// definitionCodes lists the tag codes whose body begins with a 16-bit
// character id, making them indexable by Decoder.Lookup. The set mirrors
// the roughly one hundred record types a full container dialect defines;
// only the ones this engine actually compiles — definition tags whose
// first two bytes are a character id — are listed.
var definitionCodes = map[Code]bool{
	2: true, // DefineShape
	6: true, // DefineBits (embedded JPEG)
	7: true, // DefineButton
	8: true, // JPEGTables is NOT a definition tag but shares low codes historically; excluded below
	20: true, // DefineBitsLossless
	21: true, // DefineBitsJPEG2
	22: true, // DefineShape2
	32: true, // DefineShape3
	35: true, // DefineBitsJPEG3
	36: true, // DefineBitsLossless2
	37: true, // DefineText
	39: true, // DefineSprite
	46: true, // DefineMorphShape
	48: true, // DefineFont2
	60: true, // DefineVideoStream
	83: true, // DefineShape4
	84: true, // DefineMorphShape2
}

func init() {
	delete(definitionCodes, 8) // JPEGTables carries no character id
}

// Decoder walks the tag stream in a byte buffer, exposing one Header per
// iteration and an on-demand character-id index.
type Decoder struct {
	buf   []byte
	flags uint8

	index     map[uint16]int // character id -> body offset, built lazily
	indexDone bool
}

// New constructs a Decoder over a container body buffer.
func New(buf []byte, flags uint8) *Decoder {
	return &Decoder{buf: buf, flags: flags}
}

// Iterate walks every tag header from offset 0, invoking fn with each
// header and a BitReader bounded to its body. Iteration stops at the End
// tag even if declared lengths would permit reading further, and also stops
// early if fn returns false.
func (d *Decoder) Iterate(fn func(Header, *bitio.Reader) bool) error {
	offset := 0
	for offset < len(d.buf) {
		hdr, bodyEnd, err := d.readHeader(offset)
		if err != nil {
			return err
		}
		body := bitio.New(d.buf, d.flags).View(hdr.BodyOffset, bodyEnd)
		if hdr.Code == End {
			fn(hdr, body)
			return nil
		}
		if !fn(hdr, body) {
			return nil
		}
		offset = bodyEnd
	}
	return nil
}

// readHeader decodes the 16-bit packed code+length at offset, expanding to
// a 32-bit extended length when the six length bits are all set.
func (d *Decoder) readHeader(offset int) (Header, int, error) {
	r := bitio.New(d.buf, d.flags)
	r.Seek(offset)
	packed, err := r.U16()
	if err != nil {
		return Header{}, 0, err
	}
	code := Code(packed >> 6)
	length := int(packed & 0x3F)
	if length == 0x3F {
		ext, err := r.U32()
		if err != nil {
			return Header{}, 0, err
		}
		length = int(ext)
	}
	bodyOffset := r.Tell()
	bodyEnd := bodyOffset + length
	if bodyEnd > len(d.buf) {
		bodyEnd = len(d.buf)
	}

	hdr := Header{Code: code, BodyOffset: bodyOffset, BodyLength: bodyEnd - bodyOffset}
	if definitionCodes[code] && length >= 2 {
		peek := bitio.New(d.buf, 0)
		peek.Seek(bodyOffset)
		if id, err := peek.U16(); err == nil {
			hdr.CharacterID = id
			hdr.HasCharacterID = true
		}
	}
	return hdr, bodyEnd, nil
}

// Lookup resolves a character id to the absolute body offset of its
// defining tag, building the identifier index on first call. Each
// identifier must appear at most once; a later definition of the same id is
// ignored (the first one wins) and is not reported as a warning or error.
func (d *Decoder) Lookup(id uint16) (offset int, ok bool) {
	if !d.indexDone {
		d.buildIndex()
	}
	offset, ok = d.index[id]
	return offset, ok
}

func (d *Decoder) buildIndex() {
	d.index = make(map[uint16]int)
	_ = d.Iterate(func(hdr Header, _ *bitio.Reader) bool {
		if hdr.Code == End {
			return false
		}
		if hdr.HasCharacterID {
			if _, dup := d.index[hdr.CharacterID]; dup {
				// First one wins; later definitions are
				// ignored rather than overwriting the index.
				return true
			}
			d.index[hdr.CharacterID] = hdr.BodyOffset
		}
		return true
	})
	d.indexDone = true
}

// BoundsError formats an error for a tag whose declared length disagrees
// with the remaining buffer, used by callers that want to surface it as a
// warning rather than fail.
func BoundsError(code Code, declared, actual int) error {
	return fmt.Errorf("%w: tag %d declared length %d, actual %d", decoderr.ErrExtraData, code, declared, actual)
}
