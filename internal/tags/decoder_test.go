package tags

import (
	"testing"

	"github.com/agg-go/vecatlas/internal/bitio"
)

// shortTag packs a code and length into the 16-bit header form.
func shortTag(code Code, length int) []byte {
	packed := uint16(code)<<6 | uint16(length&0x3F)
	return []byte{byte(packed), byte(packed >> 8)}
}

func TestIterateStopsAtEndTag(t *testing.T) {
	// ShowFrame-like tag (code 1, length 0), then End, then trailing bytes
	// that must never be visited even though they're part of the buffer.
	buf := append(shortTag(1, 0), shortTag(End, 0)...)
	buf = append(buf, 0xDE, 0xAD)

	var codes []Code
	dec := New(buf, 0)
	if err := dec.Iterate(func(h Header, _ *bitio.Reader) bool {
		codes = append(codes, h.Code)
		return true
	}); err != nil {
		t.Fatal(err)
	}
	if len(codes) != 2 || codes[0] != 1 || codes[1] != End {
		t.Fatalf("codes = %v, want [1 0]", codes)
	}
}

func TestIterateExtendedLength(t *testing.T) {
	body := []byte{1, 2, 3, 4, 5}
	hdr := uint16(5)<<6 | 0x3F
	buf := []byte{byte(hdr), byte(hdr >> 8), 5, 0, 0, 0}
	buf = append(buf, body...)
	buf = append(buf, shortTag(End, 0)...)

	var bodies [][]byte
	dec := New(buf, 0)
	if err := dec.Iterate(func(h Header, r *bitio.Reader) bool {
		if h.Code == End {
			return true
		}
		b, err := r.Bytes(h.BodyLength)
		if err != nil {
			t.Fatal(err)
		}
		bodies = append(bodies, b)
		return true
	}); err != nil {
		t.Fatal(err)
	}
	if len(bodies) != 1 || string(bodies[0]) != string(body) {
		t.Fatalf("bodies = %v, want [%v]", bodies, body)
	}
}

func TestLookupCharacterID(t *testing.T) {
	// DefineShape-like tag (code 2) whose body starts with id=7.
	body := []byte{7, 0, 0xAA}
	buf := append(shortTag(2, len(body)), body...)
	buf = append(buf, shortTag(End, 0)...)

	dec := New(buf, 0)
	off, ok := dec.Lookup(7)
	if !ok {
		t.Fatal("expected character id 7 to be indexed")
	}
	if off != 2 {
		t.Fatalf("offset = %d, want 2", off)
	}
	if _, ok := dec.Lookup(99); ok {
		t.Fatal("unexpected lookup hit for undefined id")
	}
}

func TestLookupFirstDefinitionWins(t *testing.T) {
	first := []byte{9, 0, 0x01}
	second := []byte{9, 0, 0x02}
	buf := append(shortTag(2, len(first)), first...)
	buf = append(buf, shortTag(2, len(second))...)
	buf = append(buf, second...)
	buf = append(buf, shortTag(End, 0)...)

	dec := New(buf, 0)
	off, ok := dec.Lookup(9)
	if !ok {
		t.Fatal("expected id 9 indexed")
	}
	// The first DefineShape tag body starts right after its 2-byte header.
	if off != 2 {
		t.Fatalf("offset = %d, want first definition at 2", off)
	}
}
