// Package atlas implements the AtlasBuilder: parsing per-frame SVG
// documents, deduplicating their definitions and frame skeletons by content
// hash, packing unique frames into one strip via MaxRects, and emitting the
// combined atlas document plus its JSON manifest.
package atlas

import (
	"regexp"
	"strconv"
	"strings"
)

// UseRef is one <use> reference in a frame's flat top-level use-list.
type UseRef struct {
	ID            string // target id, without the leading '#'
	Transform     string // raw transform attribute, empty if absent
	Width, Height float64
	Extra         string // any other attributes, verbatim, already-escaped
}

// Definition is one top-level child of a frame's <defs> section.
type Definition struct {
	OriginalID string
	Tag        string
	OpenAttrs  string // the opening tag's attributes excluding id=, verbatim
	Inner      string // raw inner markup, empty for a self-closing element
	SelfClosed bool
	Refs       []string // every id this definition's markup references
	ImageData  string   // base64 payload when Tag == "image" with a data: href
}

// Frame is one parsed per-frame SVG document.
type Frame struct {
	Name              string
	ViewBoxW, ViewBoxH float64
	OffsetX, OffsetY  float64
	Uses              []UseRef
	Defs              []Definition
}

var (
	reViewBox    = regexp.MustCompile(`viewBox="0 0 ([0-9.+-]+) ([0-9.+-]+)"`)
	reRootGroup  = regexp.MustCompile(`<g transform="translate\(([0-9.+-]+),([0-9.+-]+)\)">`)
	reDefsBlock  = regexp.MustCompile(`(?s)<defs>(.*)</defs>`)
	reUseTag     = regexp.MustCompile(`<use\s+([^>]*?)/?>`)
	reAttr       = regexp.MustCompile(`([:\w-]+)="([^"]*)"`)
	reRefAny     = regexp.MustCompile(`(?:xlink:href|href)="#([^"]+)"|url\(#([^"]+)\)`)
	reDataHref   = regexp.MustCompile(`(?:xlink:href|href)="data:([^;"]+);base64,([^"]*)"`)
)

// ParseFrame parses one frame SVG document's viewBox, root-group offset,
// flat top-level use-list, and defs section.
func ParseFrame(name, src string) Frame {
	f := Frame{Name: name}
	if m := reViewBox.FindStringSubmatch(src); m != nil {
		f.ViewBoxW, _ = strconv.ParseFloat(m[1], 64)
		f.ViewBoxH, _ = strconv.ParseFloat(m[2], 64)
	}
	if m := reRootGroup.FindStringSubmatch(src); m != nil {
		f.OffsetX, _ = strconv.ParseFloat(m[1], 64)
		f.OffsetY, _ = strconv.ParseFloat(m[2], 64)
	}

	body := src
	if loc := reDefsBlock.FindStringIndex(src); loc != nil {
		body = src[:loc[0]] + src[loc[1]:]
	}
	for _, m := range reUseTag.FindAllStringSubmatch(body, -1) {
		f.Uses = append(f.Uses, parseUse(m[1]))
	}

	if m := reDefsBlock.FindStringSubmatch(src); m != nil {
		f.Defs = splitTopLevelElements(m[1])
	}
	return f
}

func parseUse(attrs string) UseRef {
	var u UseRef
	var extra strings.Builder
	for _, a := range reAttr.FindAllStringSubmatch(attrs, -1) {
		key, val := a[1], a[2]
		switch key {
		case "href", "xlink:href":
			u.ID = strings.TrimPrefix(val, "#")
		case "transform":
			u.Transform = val
		case "width":
			u.Width, _ = strconv.ParseFloat(val, 64)
		case "height":
			u.Height, _ = strconv.ParseFloat(val, 64)
		default:
			extra.WriteString(" " + key + `="` + val + `"`)
		}
	}
	u.Extra = extra.String()
	return u
}

// splitTopLevelElements walks defsContent tracking nesting depth so each
// sibling element (gradient, pattern, clipPath, drawable group, image) is
// returned whole, including any nested children, without requiring a full
// XML parser — mirroring the regex-based SVG slicing the reference corpus's
// own SVG renderer uses rather than adopting a DOM library.
func splitTopLevelElements(defsContent string) []Definition {
	var out []Definition
	i := 0
	n := len(defsContent)
	for i < n {
		for i < n && defsContent[i] != '<' {
			i++
		}
		if i >= n {
			break
		}
		tagEnd := strings.IndexByte(defsContent[i:], '>')
		if tagEnd == -1 {
			break
		}
		tagEnd += i
		openTag := defsContent[i : tagEnd+1]
		selfClosed := strings.HasSuffix(strings.TrimSpace(openTag), "/>")
		tagName := extractTagName(openTag)

		if selfClosed {
			out = append(out, makeDefinition(tagName, openTag, ""))
			i = tagEnd + 1
			continue
		}

		closeTag := "</" + tagName + ">"
		depth := 1
		searchFrom := tagEnd + 1
		end := -1
		for searchFrom < n {
			nextOpen := indexOpeningTag(defsContent, searchFrom, tagName)
			nextClose := strings.Index(defsContent[searchFrom:], closeTag)
			if nextClose == -1 {
				break
			}
			nextClose += searchFrom
			if nextOpen != -1 && nextOpen < nextClose {
				depth++
				searchFrom = nextOpen + 1 + len(tagName)
				continue
			}
			depth--
			if depth == 0 {
				end = nextClose
				break
			}
			searchFrom = nextClose + len(closeTag)
		}
		if end == -1 {
			out = append(out, makeDefinition(tagName, openTag, ""))
			i = tagEnd + 1
			continue
		}
		inner := defsContent[tagEnd+1 : end]
		out = append(out, makeDefinition(tagName, openTag, inner))
		i = end + len(closeTag)
	}
	return out
}

// indexOpeningTag finds the next occurrence of "<tagName" at or after from
// whose next character is a boundary (space, '>', or '/'), so a search for
// "<g" doesn't false-match "<glyph".
func indexOpeningTag(s string, from int, tagName string) int {
	prefix := "<" + tagName
	for {
		idx := strings.Index(s[from:], prefix)
		if idx == -1 {
			return -1
		}
		pos := from + idx
		after := pos + len(prefix)
		if after >= len(s) || s[after] == ' ' || s[after] == '>' || s[after] == '/' {
			return pos
		}
		from = pos + 1
	}
}

func extractTagName(openTag string) string {
	s := strings.TrimPrefix(openTag, "<")
	for i, r := range s {
		if r == ' ' || r == '>' || r == '/' {
			return s[:i]
		}
	}
	return strings.TrimSuffix(strings.TrimSuffix(s, ">"), "/")
}

func makeDefinition(tag, openTag, inner string) Definition {
	d := Definition{Tag: tag, Inner: inner, SelfClosed: inner == "" && strings.HasSuffix(strings.TrimSpace(openTag), "/>")}

	attrStart := strings.IndexByte(openTag, ' ')
	attrs := ""
	if attrStart != -1 {
		attrEnd := len(openTag) - 1
		attrs = strings.TrimRight(openTag[attrStart:attrEnd], "/ ")
	}
	for _, a := range reAttr.FindAllStringSubmatch(attrs, -1) {
		if a[1] == "id" {
			d.OriginalID = a[2]
		}
	}
	d.OpenAttrs = removeIDAttr(attrs)

	full := attrs + inner
	for _, m := range reRefAny.FindAllStringSubmatch(full, -1) {
		if m[1] != "" {
			d.Refs = append(d.Refs, m[1])
		} else if m[2] != "" {
			d.Refs = append(d.Refs, m[2])
		}
	}
	if tag == "image" {
		if m := reDataHref.FindStringSubmatch(attrs); m != nil {
			d.ImageData = m[2]
		}
	}
	return d
}

func removeIDAttr(attrs string) string {
	return strings.TrimSpace(regexp.MustCompile(`\s*id="[^"]*"`).ReplaceAllString(attrs, ""))
}
