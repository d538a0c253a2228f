package records

import (
	"testing"

	"github.com/agg-go/vecatlas/internal/bitio"
)

func TestColorTransformApplyClampsIndependently(t *testing.T) {
	ct := ColorTransform{RMul: 512, GMul: 256, BMul: 256, AMul: 256, RAdd: -300}
	c := Color{R: 200, G: 10, B: 10, A: 255}
	got := ct.Apply(c)
	if got.R != 100 { // 200*512/256=400, +(-300)=100
		t.Fatalf("R = %d, want 100", got.R)
	}
	if got.G != 10 {
		t.Fatalf("G = %d, want 10", got.G)
	}
}

func TestReadFillStyleArrayWideCount(t *testing.T) {
	// count byte 0xFF then u16 count = 1, then one solid fill style.
	buf := []byte{0xFF, 0x01, 0x00, 0x00, 0xFF, 0x00, 0x00, 0xFF}
	r := bitio.New(buf, bitio.FlagStrict)
	styles, err := ReadFillStyleArray(r, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(styles) != 1 {
		t.Fatalf("len(styles) = %d, want 1", len(styles))
	}
	if styles[0].Kind != FillSolid {
		t.Fatalf("kind = %v, want solid", styles[0].Kind)
	}
	if styles[0].Solid != (Color{0xFF, 0x00, 0x00, 0xFF}) {
		t.Fatalf("color = %+v, want red", styles[0].Solid)
	}
}

func TestReadRectRoundTrip(t *testing.T) {
	// 5-bit width = 16, values 0, 2000, 0, 1000 (fits in 16 bits signed)
	// Build manually: width=16 (0b10000), then four 16-bit signed fields.
	bits := make([]bool, 0, 5+16*4)
	appendBits := func(v uint32, n int) {
		for i := n - 1; i >= 0; i-- {
			bits = append(bits, (v>>uint(i))&1 == 1)
		}
	}
	appendBits(16, 5)
	appendBits(0, 16)
	appendBits(2000, 16)
	appendBits(0, 16)
	appendBits(1000, 16)
	buf := packBits(bits)

	r := bitio.New(buf, bitio.FlagStrict)
	rect, err := ReadRect(r)
	if err != nil {
		t.Fatal(err)
	}
	if rect.XMin != 0 || rect.XMax != 2000 || rect.YMin != 0 || rect.YMax != 1000 {
		t.Fatalf("rect = %+v", rect)
	}
}

func packBits(bits []bool) []byte {
	out := make([]byte, (len(bits)+7)/8)
	for i, b := range bits {
		if b {
			out[i/8] |= 1 << uint(7-i%8)
		}
	}
	return out
}
