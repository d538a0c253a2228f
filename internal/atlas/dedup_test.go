package atlas

import "testing"

func identicalFrame() string {
	return `<svg viewBox="0 0 10 10"><g transform="translate(0,0)">` +
		`<use xlink:href="#g"/></g>` +
		`<defs><g id="g"><path d="M0 0 L10 0"/></g></defs></svg>`
}

func TestDedupCollapsesIdenticalDefinitionsAcrossFrames(t *testing.T) {
	var frames []Frame
	for i := 0; i < 3; i++ {
		frames = append(frames, ParseFrame("anim_"+string(rune('0'+i)), identicalFrame()))
	}

	res, err := Dedup("anim", frames, false)
	if err != nil {
		t.Fatalf("Dedup: %v", err)
	}
	if len(res.Defs) != 1 {
		t.Fatalf("want 1 canonical def, got %d", len(res.Defs))
	}
	for _, f := range res.Frames {
		if len(f.UseIDs) != 1 || f.UseIDs[0] != res.Defs[0].ID {
			t.Fatalf("frame %s: use did not resolve to canonical id", f.Name)
		}
	}
}

func TestDedupFramesAliasesStructurallyIdenticalFrames(t *testing.T) {
	frames := []Frame{
		ParseFrame("anim_0", identicalFrame()),
		ParseFrame("anim_1", identicalFrame()),
		ParseFrame("anim_2", identicalFrame()),
	}
	res, err := Dedup("anim", frames, false)
	if err != nil {
		t.Fatalf("Dedup: %v", err)
	}

	unique := DedupFrames(res.Frames)
	if len(unique) != 1 {
		t.Fatalf("want 1 unique frame, got %d", len(unique))
	}
	if len(unique[0].Aliases) != 2 {
		t.Fatalf("want 2 aliases, got %d: %v", len(unique[0].Aliases), unique[0].Aliases)
	}
}

func TestDedupKeepsDifferentAnimationsSeparate(t *testing.T) {
	frames := []Frame{ParseFrame("a_0", identicalFrame())}
	resA, err := Dedup("a", frames, false)
	if err != nil {
		t.Fatal(err)
	}
	resB, err := Dedup("b", frames, false)
	if err != nil {
		t.Fatal(err)
	}
	if resA.Defs[0].ID == resB.Defs[0].ID {
		t.Fatalf("expected animation-scoped ids to differ, both got %s", resA.Defs[0].ID)
	}
}

func TestDedupShortIDsAreSequential(t *testing.T) {
	frame := ParseFrame("a_0", `<svg viewBox="0 0 10 10"><g transform="translate(0,0)">`+
		`<use xlink:href="#g1"/><use xlink:href="#g2"/></g>`+
		`<defs><g id="g1"><path d="M0 0 L1 1"/></g><g id="g2"><path d="M2 2 L3 3"/></g></defs></svg>`)
	res, err := Dedup("a", []Frame{frame}, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Defs) != 2 {
		t.Fatalf("want 2 defs, got %d", len(res.Defs))
	}
	for _, d := range res.Defs {
		if d.ID != "d0" && d.ID != "d1" {
			t.Fatalf("unexpected short id %q", d.ID)
		}
	}
}

func TestDedupDefsAreDeterministicallyOrdered(t *testing.T) {
	frame := ParseFrame("a_0", `<svg viewBox="0 0 10 10"><g transform="translate(0,0)">`+
		`<use xlink:href="#g1"/><use xlink:href="#g2"/><use xlink:href="#g3"/></g>`+
		`<defs>`+
		`<g id="g1"><path d="M0 0 L1 1"/></g>`+
		`<g id="g2"><path d="M2 2 L3 3"/></g>`+
		`<g id="g3"><path d="M4 4 L5 5"/></g>`+
		`</defs></svg>`)

	var orders [][]string
	for i := 0; i < 5; i++ {
		res, err := Dedup("a", []Frame{frame}, false)
		if err != nil {
			t.Fatal(err)
		}
		ids := make([]string, len(res.Defs))
		for j, d := range res.Defs {
			ids[j] = d.ID
		}
		orders = append(orders, ids)
	}

	for i, ids := range orders[1:] {
		for j := range ids {
			if ids[j] != orders[0][j] {
				t.Fatalf("run %d def order = %v, want %v (same as run 0)", i+1, ids, orders[0])
			}
		}
	}
}

func TestRewriteRefsDropsDanglingReferences(t *testing.T) {
	d := Definition{Tag: "g", OriginalID: "g1", Inner: `<use xlink:href="#missing"/>`, Refs: []string{"missing"}}
	out := rewriteRefs(d, map[string]string{})
	if want := `<g><use/></g>`; out != want {
		t.Fatalf("rewriteRefs() = %q, want %q", out, want)
	}
}

func TestRewriteRefsReplacesUnresolvedURLWithNone(t *testing.T) {
	d := Definition{Tag: "rect", OpenAttrs: `fill="url(#missing)"`, SelfClosed: true, Refs: []string{"missing"}}
	out := rewriteRefs(d, map[string]string{})
	if want := `<rect fill="none"/>`; out != want {
		t.Fatalf("rewriteRefs() = %q, want %q", out, want)
	}
}
