package atlas

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// CanonicalDef is one definition surviving dedup, keyed by its canonical id.
type CanonicalDef struct {
	ID      string
	Tag     string
	Markup  string   // "<tag attrs>inner</tag>" or "<tag attrs/>", refs already rewritten
	Refs    []string // canonical ids this definition's markup references
	IsImage bool
}

// DedupResult is the output of Dedup: the canonical definition set plus each
// input frame rewritten to reference canonical ids.
type DedupResult struct {
	Defs   []CanonicalDef
	Frames []RewrittenFrame
}

// RewrittenFrame is a Frame whose Uses/Defs ids have been replaced with the
// canonical ids assigned during Dedup.
type RewrittenFrame struct {
	Frame
	UseIDs []string // canonical id for each entry in Frame.Uses, same order
}

// Dedup content-hashes every definition across all frames of one animation
// and collapses identical markup to a single canonical entry. Image
// definitions hash on their payload alone, since the same bitmap can recur
// verbatim across frames and across animations. Every other definition type
// (gradients, patterns, clip paths, compiled shape groups) hashes on its
// rewritten markup together with the animation name, since two animations
// drawing visually identical vector art are still free to diverge later and
// must not alias into the same cache slot.
//
// References between definitions are resolved bottom-up: each frame's defs
// are topologically ordered by Refs so a definition is only hashed after
// every definition it points to already has a canonical id, letting its
// outgoing references be rewritten to the final id before hashing.
func Dedup(animation string, frames []Frame, shortIDs bool) (DedupResult, error) {
	canon := map[string]CanonicalDef{} // canonical id -> def
	byHash := map[string]string{}      // content hash -> canonical id
	seq := 0

	result := DedupResult{}

	for _, f := range frames {
		order, err := topoSortDefs(f.Defs)
		if err != nil {
			return DedupResult{}, fmt.Errorf("atlas: frame %s: %w", f.Name, err)
		}

		localToCanon := map[string]string{} // original id within this frame -> canonical id

		for _, d := range order {
			markup := rewriteRefs(d, localToCanon)
			isImage := d.Tag == "image" && d.ImageData != ""

			var hash string
			if isImage {
				hash = hashContent("image", d.ImageData)
			} else {
				hash = hashContent(animation, markup)
			}

			id, ok := byHash[hash]
			if !ok {
				if shortIDs {
					id = "d" + strconv.Itoa(seq)
					seq++
				} else {
					id = "def_" + hash
				}
				byHash[hash] = id
				canon[id] = CanonicalDef{ID: id, Tag: d.Tag, Markup: markup, Refs: canonicalRefs(markup), IsImage: isImage}
			}
			localToCanon[d.OriginalID] = id
		}

		rf := RewrittenFrame{Frame: f}
		for _, u := range f.Uses {
			if id, ok := localToCanon[u.ID]; ok {
				rf.UseIDs = append(rf.UseIDs, id)
			} else {
				rf.UseIDs = append(rf.UseIDs, "") // dangling; caller drops the <use>
			}
		}
		result.Frames = append(result.Frames, rf)
	}

	for _, d := range canon {
		result.Defs = append(result.Defs, d)
	}
	sort.Slice(result.Defs, func(i, j int) bool { return result.Defs[i].ID < result.Defs[j].ID })
	return result, nil
}

func hashContent(namespace, markup string) string {
	sum := sha256.Sum256([]byte(namespace + "\x00" + markup))
	return hex.EncodeToString(sum[:])[:12]
}

// topoSortDefs orders a frame's defs so that every definition a given
// definition references (by id, within the same frame) comes first. A
// reference cycle is malformed input; the reference that closes the cycle
// is ignored, so every definition in it is still emitted exactly once,
// rather than failing the whole frame.
func topoSortDefs(defs []Definition) ([]Definition, error) {
	byID := make(map[string]Definition, len(defs))
	for _, d := range defs {
		if d.OriginalID != "" {
			byID[d.OriginalID] = d
		}
	}

	var order []Definition
	visited := map[string]bool{}
	visiting := map[string]bool{}

	var visit func(d Definition)
	visit = func(d Definition) {
		if d.OriginalID != "" {
			if visited[d.OriginalID] {
				return
			}
			if visiting[d.OriginalID] {
				return // cycle: ignore this back edge; the node is emitted when its outer visit finishes
			}
			visiting[d.OriginalID] = true
		}
		for _, ref := range d.Refs {
			if dep, ok := byID[ref]; ok {
				visit(dep)
			}
		}
		if d.OriginalID != "" {
			visiting[d.OriginalID] = false
			visited[d.OriginalID] = true
		}
		order = append(order, d)
	}

	for _, d := range defs {
		visit(d)
	}
	return order, nil
}

var (
	reXlinkHrefHash = regexp.MustCompile(`xlink:href="#([^"]+)"`)
	reHrefHash      = regexp.MustCompile(`href="#([^"]+)"`)
	reURLHash       = regexp.MustCompile(`url\(#([^)]+)\)`)
	reAnyHrefHash   = regexp.MustCompile(`(\s*)((?:xlink:)?)href="#([^"]+)"`)
)

// rewriteRefs produces a definition's final markup with every internal
// reference replaced by the referenced definition's canonical id, looked up
// in resolved (already populated for every id this definition can reach,
// since the caller visits defs in topological order). A reference that
// cannot be resolved — typically a forward reference the source document
// never actually defined — is left pointing at a literal "none" for
// url(...) forms, and the whole href is dropped for xlink:href/href forms,
// matching how a renderer already treats a missing fragment.
func rewriteRefs(d Definition, resolved map[string]string) string {
	rewrite := func(s string) string {
		s = reURLHash.ReplaceAllStringFunc(s, func(m string) string {
			id := reURLHash.FindStringSubmatch(m)[1]
			if canon, ok := resolved[id]; ok {
				return "url(#" + canon + ")"
			}
			return "none"
		})
		s = reAnyHrefHash.ReplaceAllStringFunc(s, func(m string) string {
			sm := reAnyHrefHash.FindStringSubmatch(m)
			if canon, ok := resolved[sm[3]]; ok {
				return sm[1] + sm[2] + `href="#` + canon + `"`
			}
			return ""
		})
		return s
	}

	attrs := rewrite(d.OpenAttrs)
	inner := rewrite(d.Inner)

	var b strings.Builder
	b.WriteByte('<')
	b.WriteString(d.Tag)
	if attrs != "" {
		b.WriteByte(' ')
		b.WriteString(attrs)
	}
	if d.SelfClosed {
		b.WriteString("/>")
		return b.String()
	}
	b.WriteByte('>')
	b.WriteString(inner)
	b.WriteString("</")
	b.WriteString(d.Tag)
	b.WriteByte('>')
	return b.String()
}

// canonicalRefs scans already-rewritten markup for the canonical ids it
// references, for the outer document's final topological ordering pass.
func canonicalRefs(markup string) []string {
	var refs []string
	for _, m := range reURLHash.FindAllStringSubmatch(markup, -1) {
		refs = append(refs, m[1])
	}
	for _, m := range reXlinkHrefHash.FindAllStringSubmatch(markup, -1) {
		refs = append(refs, m[1])
	}
	for _, m := range reHrefHash.FindAllStringSubmatch(markup, -1) {
		refs = append(refs, m[1])
	}
	return refs
}
