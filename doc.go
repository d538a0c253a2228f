// Package vecatlas decodes a legacy vector-animation container into a
// compiled, depth-sorted timeline and turns that timeline into SVG, either
// one frame at a time or packed into a deduplicated sprite atlas.
//
// Decode parses a container's structural header and every definition tag it
// carries, compiling the root display list into a Timeline. RenderFrames (or
// the single-frame RenderFrame) walks that Timeline through an
// internal/svg.Emitter, producing one standalone SVG document per frame.
// BuildAtlas chains both steps into the AtlasBuilder pipeline
// (internal/atlas), returning a combined atlas SVG and its JSON manifest for
// one animation's frames.
//
// Container ties together internal/bitio's BitReader, internal/tags'
// TagDecoder, internal/records' RecordDecoders, internal/shape's
// ShapeCompiler, internal/morph's MorphCompiler, internal/bitmap's
// BitmapDecoder, and internal/timeline's TimelineCompositor into that one
// Decode entrypoint.
//
// cmd/atlasbuild and internal/atlasrun take a different path through the
// same pipeline: they expect a directory of already-rendered
// "<animation>_<frame-index>.svg" files per sprite (produced by RenderFrames
// and written to disk, or by any other renderer that emits the same
// convention) and run internal/atlas directly over that directory, skipping
// Decode/RenderFrames entirely. BuildAtlas exists for callers that start
// from raw container bytes instead.
package vecatlas
