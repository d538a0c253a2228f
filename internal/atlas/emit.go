package atlas

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// EmitSVG renders the final atlas document: the canonical defs in
// topological order, one <symbol> per unique frame holding its resolved
// <use> children, and a top-level group placing one <use> instance of each
// symbol at its packed strip position.
func EmitSVG(animation string, defs []CanonicalDef, packed PackResult, unique []UniqueFrame) string {
	var b strings.Builder

	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" `+
		`width="%d" height="%d" viewBox="0 0 %d %d">`+"\n", packed.Width, packed.Height, packed.Width, packed.Height)

	b.WriteString("<defs>\n")
	for _, d := range topoSortCanonical(defs) {
		writeCanonicalDef(&b, d)
	}
	for _, u := range unique {
		writeSymbol(&b, u)
	}
	b.WriteString("</defs>\n")

	byName := make(map[string]PackedFrame, len(packed.Frames))
	for _, p := range packed.Frames {
		byName[p.Name] = p
	}
	for _, u := range unique {
		p, ok := byName[u.Name]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, `<use xlink:href="#%s" x="%d" y="%d" width="%d" height="%d"/>`+"\n",
			symbolID(u.Name), p.X, p.Y, p.Width, p.Height)
	}

	b.WriteString("</svg>\n")
	return b.String()
}

func symbolID(frameName string) string { return "frame_" + sanitizeID(frameName) }

func sanitizeID(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '-' {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

func writeCanonicalDef(b *strings.Builder, d CanonicalDef) {
	markup := d.Markup
	insertPos := strings.IndexByte(markup, '>')
	if insertPos == -1 {
		b.WriteString(markup)
		return
	}
	idAttr := ` id="` + d.ID + `"`
	closeSlash := strings.HasSuffix(markup[:insertPos], "/")
	if closeSlash {
		b.WriteString(markup[:insertPos-1] + idAttr + "/" + markup[insertPos:])
	} else {
		b.WriteString(markup[:insertPos] + idAttr + markup[insertPos:])
	}
	b.WriteByte('\n')
}

func writeSymbol(b *strings.Builder, u UniqueFrame) {
	fmt.Fprintf(b, `<symbol id="%s" viewBox="0 0 %s %s">`+"\n",
		symbolID(u.Name), trimFloat(u.ViewBoxW), trimFloat(u.ViewBoxH))
	for i, use := range u.Uses {
		id := ""
		if i < len(u.UseIDs) {
			id = u.UseIDs[i]
		}
		if id == "" {
			continue // dangling reference, drop the <use>
		}
		b.WriteString("<use")
		fmt.Fprintf(b, ` xlink:href="#%s"`, id)
		if use.Transform != "" {
			fmt.Fprintf(b, ` transform="%s"`, use.Transform)
		}
		if use.Width != 0 {
			fmt.Fprintf(b, ` width="%s"`, trimFloat(use.Width))
		}
		if use.Height != 0 {
			fmt.Fprintf(b, ` height="%s"`, trimFloat(use.Height))
		}
		b.WriteString(use.Extra)
		b.WriteString("/>\n")
	}
	b.WriteString("</symbol>\n")
}

func trimFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// topoSortCanonical orders the canonical definition set so that every
// definition referenced by another def is serialized first, matching the
// reference-precedes-dependent requirement of the outer document. Defs with
// no ordering relationship between them are broken by id, so the result is
// byte-identical across runs regardless of the caller's input order.
func topoSortCanonical(defs []CanonicalDef) []CanonicalDef {
	byID := make(map[string]CanonicalDef, len(defs))
	for _, d := range defs {
		byID[d.ID] = d
	}

	root := make([]CanonicalDef, len(defs))
	copy(root, defs)
	sort.Slice(root, func(i, j int) bool { return root[i].ID < root[j].ID })

	var order []CanonicalDef
	visited := map[string]bool{}
	visiting := map[string]bool{}

	var visit func(d CanonicalDef)
	visit = func(d CanonicalDef) {
		if visited[d.ID] || visiting[d.ID] {
			return
		}
		visiting[d.ID] = true
		refs := make([]string, len(d.Refs))
		copy(refs, d.Refs)
		sort.Strings(refs)
		for _, ref := range refs {
			if dep, ok := byID[ref]; ok {
				visit(dep)
			}
		}
		visiting[d.ID] = false
		visited[d.ID] = true
		order = append(order, d)
	}

	for _, d := range root {
		visit(d)
	}
	return order
}
