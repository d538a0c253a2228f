// Package timeline implements the TimelineCompositor: replaying a sequence
// of control tags into an ordered, depth-sorted display list per frame.
package timeline

import (
	"fmt"

	"github.com/agg-go/vecatlas/internal/bitio"
	"github.com/agg-go/vecatlas/internal/character"
	"github.com/agg-go/vecatlas/internal/geom"
	"github.com/agg-go/vecatlas/internal/morph"
	"github.com/agg-go/vecatlas/internal/records"
	"github.com/agg-go/vecatlas/internal/shape"
	"github.com/agg-go/vecatlas/internal/tags"
)

// Control-tag codes this compositor reacts to. Definition tags (DefineShape
// and friends) are assumed already resolved into the character cache by an
// earlier decode pass and are skipped here along with anything else
// unrecognized.
const (
	codeShowFrame     tags.Code = 1
	codePlaceObject   tags.Code = 4
	codeRemoveObject  tags.Code = 5
	codeDoAction      tags.Code = 12
	codePlaceObject2  tags.Code = 26
	codeRemoveObject2 tags.Code = 28
	codeFrameLabel    tags.Code = 43
	codePlaceObject3  tags.Code = 70
)

// DefaultMaxBoundsExtent is the aggregation cap in twips.
const DefaultMaxBoundsExtent = geom.Twip(8192 * 20)

// Compositor holds the running state while replaying one tag stream (the
// root container's or a sprite's) into a Timeline.
type Compositor struct {
	cache      *character.Cache
	maxExtent  geom.Twip
	flags      uint8

	display map[uint16]character.FrameObject // depth -> object
	frames  []character.Frame
	bounds  geom.Rect

	frameIndex int
	label      string
	pending    [][]byte
}

// New constructs a Compositor against a shared character cache.
func New(cache *character.Cache, maxExtent geom.Twip, flags uint8) *Compositor {
	if maxExtent == 0 {
		maxExtent = DefaultMaxBoundsExtent
	}
	return &Compositor{
		cache:     cache,
		maxExtent: maxExtent,
		flags:     flags,
		display:   make(map[uint16]character.FrameObject),
	}
}

// Compile walks body's tag stream to completion and returns the resulting
// Timeline.
func (c *Compositor) Compile(body []byte) (*character.Timeline, error) {
	dec := tags.New(body, c.flags)
	var walkErr error
	_ = dec.Iterate(func(hdr tags.Header, r *bitio.Reader) bool {
		switch hdr.Code {
		case codePlaceObject:
			walkErr = c.handlePlace(r, records.ReadPlaceObject)
		case codePlaceObject2:
			walkErr = c.handlePlace(r, records.ReadPlaceObject2)
		case codePlaceObject3:
			walkErr = c.handlePlace(r, records.ReadPlaceObject3)
		case codeRemoveObject, codeRemoveObject2:
			walkErr = c.handleRemove(hdr.Code, r)
		case codeFrameLabel:
			label, err := r.String()
			if err != nil {
				walkErr = err
				return false
			}
			c.label = label
		case codeDoAction:
			raw, err := r.Bytes(r.Remaining())
			if err != nil {
				walkErr = err
				return false
			}
			c.pending = append(c.pending, append([]byte(nil), raw...))
		case codeShowFrame:
			c.snapshot()
		case tags.End:
			return false
		}
		return walkErr == nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("timeline: %w", walkErr)
	}
	for i := range c.frames {
		c.frames[i].Bounds = c.bounds
	}
	return &character.Timeline{Bounds: c.bounds, Frames: c.frames}, nil
}

// handlePlace decodes one of the three place-object profiles and folds it
// into the display list.
func (c *Compositor) handlePlace(r *bitio.Reader, read func(*bitio.Reader) (records.PlaceObject, error)) error {
	p, err := read(r)
	if err != nil {
		return err
	}
	c.applyPlace(p)
	return nil
}

func (c *Compositor) applyPlace(p records.PlaceObject) {
	existing, hasExisting := c.display[p.Depth]

	if !p.IsMove && p.CharacterID != nil {
		drawable, ok := c.cache.Resolve(*p.CharacterID)
		if !ok {
			return // unresolvable character id: ignore the placement, keep parsing.
		}
		obj := character.FrameObject{
			CharacterID: *p.CharacterID,
			Depth:       p.Depth,
			Drawable:    drawable,
			Matrix:      geom.Identity(),
			StartFrame:  c.frameIndex,
			Blend:       records.BlendNormal,
		}
		c.applyOptionalFields(&obj, p)
		obj.Matrix = c.normalize(obj.Matrix, drawable)
		obj.Bounds = c.boundsFor(drawable, obj.Ratio).Transform(obj.Matrix)
		c.aggregate(obj.Bounds)
		c.display[p.Depth] = obj
		return
	}

	if p.IsMove && hasExisting {
		obj := existing
		if p.CharacterID != nil && *p.CharacterID != obj.CharacterID {
			obj.CharacterID = *p.CharacterID
			if d, ok := c.cache.Resolve(*p.CharacterID); ok {
				obj.Drawable = d
			}
			obj.StartFrame = c.frameIndex
		}
		c.applyOptionalFields(&obj, p)
		if p.Matrix != nil {
			obj.Matrix = c.normalize(*p.Matrix, obj.Drawable)
			obj.Bounds = c.boundsFor(obj.Drawable, obj.Ratio).Transform(obj.Matrix)
			c.aggregate(obj.Bounds)
		}
		c.display[p.Depth] = obj
	}
}

// applyOptionalFields copies every explicitly-present optional field from a
// decoded PlaceObject into obj: a move update only touches the fields
// explicitly present in the record, leaving the rest as they were.
func (c *Compositor) applyOptionalFields(obj *character.FrameObject, p records.PlaceObject) {
	if p.Matrix != nil {
		obj.Matrix = *p.Matrix
	}
	if p.ColorTransform != nil {
		obj.ColorTransform = p.ColorTransform
	}
	if p.Name != nil {
		obj.Name = p.Name
	}
	if p.ClipDepth != nil {
		obj.ClipDepth = p.ClipDepth
	}
	if p.Ratio != nil {
		obj.Ratio = p.Ratio
	}
	if p.Filters != nil {
		obj.Filters = p.Filters
	}
	if p.Blend != nil {
		obj.Blend = *p.Blend
	}
}

func (c *Compositor) handleRemove(code tags.Code, r *bitio.Reader) error {
	if code == codeRemoveObject {
		if _, err := r.U16(); err != nil { // character id, unused for removal
			return err
		}
	}
	depth, err := r.U16()
	if err != nil {
		return err
	}
	delete(c.display, depth)
	return nil
}

// normalize composes the placement matrix with the drawable's own
// minimum-corner translation and integer-rounds the translate components.
func (c *Compositor) normalize(m geom.Matrix, d character.Drawable) geom.Matrix {
	bounds := c.boundsFor(d, nil)
	return m.Translated(-float64(bounds.XMin), -float64(bounds.YMin)).RoundTranslate()
}

func (c *Compositor) boundsFor(d character.Drawable, ratio *float64) geom.Rect {
	switch v := d.(type) {
	case *character.ShapeDefinition:
		return v.Bounds
	case *character.MorphShapeDefinition:
		r := 0.0
		if ratio != nil {
			r = clampRatio(*ratio)
		}
		_, bounds := c.resolveMorph(v, r)
		return bounds
	case *character.BitmapDefinition:
		return geom.Rect{XMax: geom.Twip(v.Width * 20), YMax: geom.Twip(v.Height * 20)}
	case *character.SpriteDefinition:
		if t := c.resolveSpriteTimeline(v); t != nil {
			return t.Bounds
		}
	}
	return geom.Rect{}
}

// resolveMorph compiles (or fetches a memoized compilation of) a morph
// shape at ratio, rounded to four decimals for the memoization key.
func (c *Compositor) resolveMorph(v *character.MorphShapeDefinition, ratio float64) ([]shape.CompiledPath, geom.Rect) {
	key := roundRatio(ratio)
	if paths, bounds, ok := v.CachedRatio(key); ok {
		return paths, bounds
	}

	header := records.MorphShapeHeader{
		CharacterID: v.CharacterID,
		StartBounds: v.StartBounds,
		EndBounds:   v.EndBounds,
		FillStyles:  v.FillPairs,
		LineStyles:  v.LinePairs,
	}
	start := records.NewEdgeStreamReader(bitio.New(v.StartEdges, c.flags), v.FillBits, v.LineBits, false, false)
	end := records.NewEdgeStreamReader(bitio.New(v.EndEdges, c.flags), v.FillBits, v.LineBits, false, false)

	paths, err := morph.New(header, key).Compile(start, end)
	if err != nil {
		v.StoreRatio(key, nil, geom.LerpRect(v.StartBounds, v.EndBounds, key))
		return nil, geom.LerpRect(v.StartBounds, v.EndBounds, key)
	}

	var bounds geom.Rect
	for _, p := range paths {
		minX, minY, maxX, maxY := p.Bounds()
		bounds = bounds.Union(geom.Rect{XMin: geom.Twip(minX), YMin: geom.Twip(minY), XMax: geom.Twip(maxX), YMax: geom.Twip(maxY)})
	}
	v.StoreRatio(key, paths, bounds)
	return paths, bounds
}

func (c *Compositor) resolveSpriteTimeline(s *character.SpriteDefinition) *character.Timeline {
	if s.Compiled() {
		return s.Timeline()
	}
	if !c.cache.EnterSprite(s.CharacterID) {
		return &character.Timeline{} // cycle: empty timeline
	}
	defer c.cache.ExitSprite(s.CharacterID)

	sub := New(c.cache, c.maxExtent, c.flags)
	t, err := sub.Compile(s.ControlTags)
	if err != nil {
		t = &character.Timeline{}
	}
	s.SetTimeline(t)
	return t
}

// aggregate folds bounds into the running aggregate, excluding anything
// that would expand it beyond maxExtent along either axis.
func (c *Compositor) aggregate(bounds geom.Rect) {
	if bounds.IsEmpty() {
		return
	}
	if bounds.Width() > c.maxExtent || bounds.Height() > c.maxExtent {
		return
	}
	candidate := c.bounds.Union(bounds)
	if candidate.Width() > c.maxExtent || candidate.Height() > c.maxExtent {
		return
	}
	c.bounds = candidate
}

func (c *Compositor) snapshot() {
	objs := make([]character.FrameObject, 0, len(c.display))
	for _, o := range c.display {
		objs = append(objs, o)
	}
	sortByDepth(objs)
	c.frames = append(c.frames, character.Frame{
		Index:   c.frameIndex,
		Label:   c.label,
		Objects: objs,
		Actions: c.pending,
	})
	c.pending = nil
	c.label = ""
	c.frameIndex++
}

func sortByDepth(objs []character.FrameObject) {
	for i := 1; i < len(objs); i++ {
		for j := i; j > 0 && objs[j].Depth < objs[j-1].Depth; j-- {
			objs[j], objs[j-1] = objs[j-1], objs[j]
		}
	}
}

func clampRatio(r float64) float64 {
	if r < 0 {
		return 0
	}
	if r > 1 {
		return 1
	}
	return r
}

func roundRatio(r float64) float64 {
	return float64(int(r*10000+0.5)) / 10000
}

