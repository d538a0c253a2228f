package morph

import (
	"testing"

	"github.com/agg-go/vecatlas/internal/bitio"
	"github.com/agg-go/vecatlas/internal/records"
)

// bitWriter packs MSB-first bit fields into a byte slice, mirroring the
// layout bitio.Reader consumes, for constructing synthetic edge streams in
// tests without round-tripping through a real container.
type bitWriter struct {
	buf  []byte
	bits int // total bits written
}

func (w *bitWriter) writeBit(b bool) {
	byteIdx := w.bits / 8
	for len(w.buf) <= byteIdx {
		w.buf = append(w.buf, 0)
	}
	if b {
		w.buf[byteIdx] |= 1 << uint(7-w.bits%8)
	}
	w.bits++
}

func (w *bitWriter) writeBits(v uint32, n int) {
	for i := n - 1; i >= 0; i-- {
		w.writeBit((v>>uint(i))&1 == 1)
	}
}

func (w *bitWriter) writeSigned(v int32, n int) {
	if n == 0 {
		return
	}
	w.writeBits(uint32(v)&((1<<uint(n))-1), n)
}

// encodeShapeStream serializes a list of records.ShapeRecord into the exact
// bit layout records.EdgeStreamReader expects, using a fixed 16-bit edge
// delta width and a single-bit fill-index width (one fill style, no line
// styles) — sufficient for the synthetic shapes these tests construct.
func encodeShapeStream(t *testing.T, recs []records.ShapeRecord) *records.EdgeStreamReader {
	t.Helper()
	w := &bitWriter{}
	const edgeNBits = 16 // widthMinus2 = 14

	for _, rec := range recs {
		switch rec.Kind {
		case records.RecordStyleChange:
			w.writeBit(false) // non-edge
			w.writeBit(rec.HasNewStyles)
			w.writeBit(rec.HasLine)
			w.writeBit(rec.HasFill1)
			w.writeBit(rec.HasFill0)
			w.writeBit(rec.HasMove)
			if rec.HasMove {
				w.writeBits(0, 5) // nbits = 0: MoveDX/MoveDY must be 0
				if rec.MoveDX != 0 || rec.MoveDY != 0 {
					t.Fatalf("encodeShapeStream: non-zero move not supported by this test helper")
				}
			}
			if rec.HasFill0 {
				w.writeBits(rec.Fill0, 1)
			}
			if rec.HasFill1 {
				w.writeBits(rec.Fill1, 1)
			}
			if rec.HasLine {
				t.Fatalf("encodeShapeStream: line styles not supported by this test helper")
			}
			if rec.HasNewStyles {
				t.Fatalf("encodeShapeStream: new styles not supported by this test helper")
			}
		case records.RecordStraightEdge:
			w.writeBit(true) // edge
			w.writeBit(true) // straight
			w.writeBits(edgeNBits-2, 4)
			w.writeSigned(rec.DX, edgeNBits+1)
			w.writeSigned(rec.DY, edgeNBits+1)
		case records.RecordCurvedEdge:
			w.writeBit(true)
			w.writeBit(false)
			w.writeBits(edgeNBits-2, 4)
			w.writeSigned(rec.ControlDX, edgeNBits+1)
			w.writeSigned(rec.ControlDY, edgeNBits+1)
			w.writeSigned(rec.AnchorDX, edgeNBits+1)
			w.writeSigned(rec.AnchorDY, edgeNBits+1)
		case records.RecordEndShape:
			w.writeBit(false)
			w.writeBits(0, 5)
		}
	}

	r := bitio.New(w.buf, bitio.FlagStrict)
	return records.NewEdgeStreamReader(r, 1, 0, true, false)
}
