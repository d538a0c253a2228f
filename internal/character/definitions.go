// Package character holds the per-container definition cache and the
// closed Drawable sum type shared by shapes, morph shapes, sprites, and
// bitmaps.
package character

import (
	"github.com/agg-go/vecatlas/internal/geom"
	"github.com/agg-go/vecatlas/internal/records"
	"github.com/agg-go/vecatlas/internal/shape"
)

// Drawable is a closed sum over the four character kinds a definition tag
// can produce. Only *ShapeDefinition, *MorphShapeDefinition,
// *SpriteDefinition, and *BitmapDefinition implement it.
type Drawable interface {
	isDrawable()
	ID() uint16
}

// ShapeDefinition is an immutable compiled shape.
type ShapeDefinition struct {
	CharacterID uint16
	Bounds      geom.Rect
	Paths       []shape.CompiledPath
}

func (*ShapeDefinition) isDrawable()     {}
func (d *ShapeDefinition) ID() uint16    { return d.CharacterID }

// MorphShapeDefinition carries the paired edge streams and style tables a
// ratio interpolates from, plus a per-ratio compiled-path cache.
type MorphShapeDefinition struct {
	CharacterID uint16
	StartBounds geom.Rect
	EndBounds   geom.Rect

	// StartEdges/EndEdges are the raw edge-stream byte views; re-decoded
	// into a fresh records.EdgeStreamReader per interpolation request
	// since a reader carries mutable cursor state.
	StartEdges []byte
	EndEdges   []byte

	FillBits, LineBits int
	FillPairs []records.MorphFillStylePair
	LinePairs []records.MorphLineStylePair

	cache map[float64]morphResult
}

type morphResult struct {
	paths  []shape.CompiledPath
	bounds geom.Rect
}

func (*MorphShapeDefinition) isDrawable()  {}
func (d *MorphShapeDefinition) ID() uint16 { return d.CharacterID }

// CachedRatio returns a memoized interpolation for a ratio already rounded
// to four decimals, or (zero, false).
func (d *MorphShapeDefinition) CachedRatio(ratio float64) ([]shape.CompiledPath, geom.Rect, bool) {
	if d.cache == nil {
		return nil, geom.Rect{}, false
	}
	r, ok := d.cache[ratio]
	return r.paths, r.bounds, ok
}

// StoreRatio memoizes an interpolation result for a rounded ratio.
func (d *MorphShapeDefinition) StoreRatio(ratio float64, paths []shape.CompiledPath, bounds geom.Rect) {
	if d.cache == nil {
		d.cache = make(map[float64]morphResult)
	}
	d.cache[ratio] = morphResult{paths: paths, bounds: bounds}
}

// BitmapDefinition is a decoded (or decode-deferred) bitmap character.
type BitmapDefinition struct {
	CharacterID   uint16
	Width, Height int
	Encoding      string // "jpeg" or "png"
	Bytes         []byte
	RGBA          []byte // present when color-transform reproduction is enabled
}

func (*BitmapDefinition) isDrawable()  {}
func (d *BitmapDefinition) ID() uint16 { return d.CharacterID }

// SpriteDefinition owns its raw control tags and compiles its timeline
// lazily, guarded against re-entrant cycles.
type SpriteDefinition struct {
	CharacterID uint16
	ControlTags []byte // raw tag-stream bytes belonging to this sprite

	timeline *Timeline
	compiled bool
}

func (*SpriteDefinition) isDrawable()  {}
func (d *SpriteDefinition) ID() uint16 { return d.CharacterID }

// Timeline returns the previously compiled timeline, or nil if none has
// been installed yet.
func (d *SpriteDefinition) Timeline() *Timeline { return d.timeline }

// SetTimeline installs a compiled timeline (called by the timeline
// compositor after a successful, cycle-free compilation).
func (d *SpriteDefinition) SetTimeline(t *Timeline) {
	d.timeline = t
	d.compiled = true
}

// Compiled reports whether SetTimeline has run.
func (d *SpriteDefinition) Compiled() bool { return d.compiled }
