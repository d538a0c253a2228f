package atlas

import "testing"

func TestPackFitsEveryRectangleWithoutOverlap(t *testing.T) {
	rects := []packRect{
		{name: "a", width: 10, height: 20},
		{name: "b", width: 15, height: 10},
		{name: "c", width: 5, height: 30},
	}

	res := Pack(rects, 1, 40)

	if res.Width > 40 {
		t.Fatalf("atlas width %d exceeds cap 40", res.Width)
	}
	if res.Height > 33 {
		t.Fatalf("atlas height %d exceeds expected bound 33", res.Height)
	}
	if len(res.Frames) != len(rects) {
		t.Fatalf("want %d placed frames, got %d", len(rects), len(res.Frames))
	}

	for i := range res.Frames {
		for j := range res.Frames {
			if i == j {
				continue
			}
			if rectsOverlap(res.Frames[i], res.Frames[j]) {
				t.Fatalf("frames %s and %s overlap", res.Frames[i].Name, res.Frames[j].Name)
			}
		}
	}
}

func rectsOverlap(a, b PackedFrame) bool {
	return a.X < b.X+b.Width && a.X+a.Width > b.X && a.Y < b.Y+b.Height && a.Y+a.Height > b.Y
}

func TestPackEmptyInputReturnsZeroResult(t *testing.T) {
	res := Pack(nil, 1, 0)
	if res.Width != 0 || res.Height != 0 || res.Frames != nil {
		t.Fatalf("want zero result for empty input, got %+v", res)
	}
}
