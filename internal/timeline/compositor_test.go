package timeline

import (
	"testing"

	"github.com/agg-go/vecatlas/internal/character"
	"github.com/agg-go/vecatlas/internal/geom"
	"github.com/agg-go/vecatlas/internal/obs"
)

// byteWriter is a tiny byte-aligned helper for hand-assembling control-tag
// bodies; every tag used here (PlaceObject2, RemoveObject2, ShowFrame,
// FrameLabel, End) has a byte-aligned body, so no bit packing is needed.
type byteWriter struct {
	buf []byte
}

func (w *byteWriter) u8(v uint8)   { w.buf = append(w.buf, v) }
func (w *byteWriter) u16(v uint16) { w.buf = append(w.buf, byte(v), byte(v>>8)) }
func (w *byteWriter) bytes(b []byte) { w.buf = append(w.buf, b...) }

func tagHeader(code uint16, bodyLen int) []byte {
	short := uint16(code<<6) | uint16(bodyLen)
	if bodyLen >= 0x3F {
		panic("long-form tag header not needed by this test")
	}
	return []byte{byte(short), byte(short >> 8)}
}

// placeObject2Body builds a minimal flags-byte PlaceObject2 body: new
// placement at depth with a character id and the identity matrix.
func placeObject2Body(depth, charID uint16) []byte {
	w := &byteWriter{}
	w.u8(0b0000_1100) // hasMatrix=1, hasCharacter=1, isMove=0
	w.u16(depth)
	w.u16(charID)
	w.u8(0) // identity matrix: hasScale=0, hasSkew=0, translate-bit-width=0
	return w.buf
}

func TestTimelineFrameCountMatchesShowFrameCount(t *testing.T) {
	cache := character.NewCache(obs.Logger())
	cache.Define(&character.ShapeDefinition{CharacterID: 1, Bounds: geom.Rect{XMax: 100, YMax: 100}})

	label := []byte("hi\x00")
	w := &byteWriter{}
	w.bytes(tagHeader(uint16(codeFrameLabel), len(label)))
	w.bytes(label)
	w.bytes(tagHeader(uint16(codeShowFrame), 0))
	w.bytes(tagHeader(uint16(codeShowFrame), 0))
	w.bytes(tagHeader(uint16(codeShowFrame), 0))
	w.bytes([]byte{0, 0}) // End tag: code 0, length 0

	c := New(cache, 0, 0)
	timeline, err := c.Compile(w.buf)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if len(timeline.Frames) != 3 {
		t.Fatalf("expected 3 frames, got %d", len(timeline.Frames))
	}
}

func TestRemoveObjectClearsDepth(t *testing.T) {
	cache := character.NewCache(obs.Logger())
	cache.Define(&character.ShapeDefinition{CharacterID: 1, Bounds: geom.Rect{XMax: 100, YMax: 100}})

	w := &byteWriter{}
	body := placeObject2Body(1, 1)
	w.bytes(tagHeader(uint16(codePlaceObject2), len(body)))
	w.bytes(body)
	w.bytes(tagHeader(uint16(codeShowFrame), 0))

	rw := &byteWriter{}
	rw.u16(1) // depth
	w.bytes(tagHeader(uint16(codeRemoveObject2), len(rw.buf)))
	w.bytes(rw.buf)
	w.bytes(tagHeader(uint16(codeShowFrame), 0))
	w.bytes([]byte{0, 0})

	c := New(cache, 0, 0)
	timeline, err := c.Compile(w.buf)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if len(timeline.Frames) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(timeline.Frames))
	}
	if len(timeline.Frames[0].Objects) != 1 {
		t.Fatalf("expected 1 object in frame 0, got %d", len(timeline.Frames[0].Objects))
	}
	if len(timeline.Frames[1].Objects) != 0 {
		t.Fatalf("expected depth 1 cleared in frame 1, got %d objects", len(timeline.Frames[1].Objects))
	}
}

func TestMissingCharacterIgnoredNotFatal(t *testing.T) {
	cache := character.NewCache(obs.Logger())

	w := &byteWriter{}
	body := placeObject2Body(1, 99) // 99 was never defined
	w.bytes(tagHeader(uint16(codePlaceObject2), len(body)))
	w.bytes(body)
	w.bytes(tagHeader(uint16(codeShowFrame), 0))
	w.bytes([]byte{0, 0})

	c := New(cache, 0, 0)
	timeline, err := c.Compile(w.buf)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if len(timeline.Frames) != 1 {
		t.Fatalf("expected 1 frame, got %d", len(timeline.Frames))
	}
	if len(timeline.Frames[0].Objects) != 0 {
		t.Fatalf("expected placement of undefined character to be ignored, got %d objects", len(timeline.Frames[0].Objects))
	}
}

func TestFrameBoundsAreUniformAcrossTheWholeTimeline(t *testing.T) {
	cache := character.NewCache(obs.Logger())
	cache.Define(&character.ShapeDefinition{CharacterID: 1, Bounds: geom.Rect{XMax: 100, YMax: 100}})
	cache.Define(&character.ShapeDefinition{CharacterID: 2, Bounds: geom.Rect{XMax: 500, YMax: 500}})

	w := &byteWriter{}
	body1 := placeObject2Body(1, 1)
	w.bytes(tagHeader(uint16(codePlaceObject2), len(body1)))
	w.bytes(body1)
	w.bytes(tagHeader(uint16(codeShowFrame), 0))

	body2 := placeObject2Body(2, 2)
	w.bytes(tagHeader(uint16(codePlaceObject2), len(body2)))
	w.bytes(body2)
	w.bytes(tagHeader(uint16(codeShowFrame), 0))
	w.bytes([]byte{0, 0})

	c := New(cache, 0, 0)
	timeline, err := c.Compile(w.buf)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if len(timeline.Frames) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(timeline.Frames))
	}
	if timeline.Frames[0].Bounds != timeline.Frames[1].Bounds {
		t.Fatalf("frame bounds diverged: frame 0 = %+v, frame 1 = %+v",
			timeline.Frames[0].Bounds, timeline.Frames[1].Bounds)
	}
	if timeline.Frames[0].Bounds != timeline.Bounds {
		t.Fatalf("frame bounds = %+v, want the timeline's final aggregate %+v",
			timeline.Frames[0].Bounds, timeline.Bounds)
	}
	if timeline.Bounds.XMax < 500 || timeline.Bounds.YMax < 500 {
		t.Fatalf("expected the second, larger placement to have widened the aggregate, got %+v", timeline.Bounds)
	}
}
