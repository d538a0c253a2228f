package geom

import "testing"

func TestRectIsEmpty(t *testing.T) {
	if !(Rect{}).IsEmpty() {
		t.Fatal("zero rect should be empty")
	}
	if (Rect{XMin: 1}).IsEmpty() {
		t.Fatal("non-zero rect should not be empty")
	}
}

func TestRectUnionIgnoresEmptyOperand(t *testing.T) {
	r := Rect{0, 0, 100, 100}
	got := r.Union(Rect{})
	if got != r {
		t.Fatalf("Union with empty rect = %+v, want %+v", got, r)
	}
}

func TestMatrixIdentityApply(t *testing.T) {
	m := Identity()
	x, y := m.Apply(10, 20)
	if x != 10 || y != 20 {
		t.Fatalf("Identity().Apply(10,20) = %v,%v, want 10,20", x, y)
	}
}

func TestMatrixRoundTranslate(t *testing.T) {
	m := Matrix{ScaleX: 1, ScaleY: 1, TranslateX: Twip(3)}
	got := m.RoundTranslate()
	if got.TranslateX != 3 {
		t.Fatalf("RoundTranslate TranslateX = %d, want 3", got.TranslateX)
	}
}

func TestLerpPointScenarioC(t *testing.T) {
	// Square corner (100,0) at ratio 0 and (200,0) at ratio 1 (scaled by 2)
	// blends to (150,0) at ratio 0.5.
	a := Point{X: 100, Y: 0}
	b := Point{X: 200, Y: 0}
	got := LerpPoint(a, b, 0.5)
	if got.X != 150 || got.Y != 0 {
		t.Fatalf("LerpPoint = %+v, want {150 0}", got)
	}
}

func TestLerpRectClampsRatio(t *testing.T) {
	a := Rect{0, 0, 100, 100}
	b := Rect{0, 0, 200, 200}
	got := LerpRect(a, b, 1.5) // out-of-range ratio must clamp to 1
	if got != b {
		t.Fatalf("LerpRect(ratio>1) = %+v, want %+v", got, b)
	}
	got = LerpRect(a, b, -1)
	if got != a {
		t.Fatalf("LerpRect(ratio<0) = %+v, want %+v", got, a)
	}
}
