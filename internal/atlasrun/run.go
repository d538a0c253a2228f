// Package atlasrun orchestrates the AtlasBuilder across many sprite
// directories concurrently. Each sprite runs the parse/dedup/pack/emit
// pipeline independently; one sprite's failure is logged and counted but
// never aborts the others. golang.org/x/sync/errgroup provides the
// --parallel bound via SetLimit, but its fail-fast Wait is deliberately
// unused: every unit of work swallows its own error into the summary
// counter and always returns nil to the group, so Wait never cancels
// sibling sprites early. When --export-images is set, each sprite also
// starts a small internal/rasterpool-backed worker pool to externalize
// inline image defs.
package atlasrun

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/agg-go/vecatlas/internal/atlas"
	"github.com/agg-go/vecatlas/internal/config"
	"github.com/agg-go/vecatlas/internal/rasterpool"
)

// Options configures one invocation of Run.
type Options struct {
	InputDir     string
	OutputDir    string
	Parallel     int // <= 0 means runtime.NumCPU()
	ExportImages string
	WebBasePath  string
	// ThumbnailMaxDim, when non-zero, asks for a downscaled preview image
	// alongside every full-resolution export. Ignored unless ExportImages
	// is also set.
	ThumbnailMaxDim int
}

// Summary aggregates the outcome of a Run across every sprite processed.
type Summary struct {
	SpriteCount int
	FailedCount int
}

// Run discovers sprite subdirectories under opts.InputDir, processes them
// concurrently up to opts.Parallel at a time, and writes each animation's
// atlas.svg/atlas.json plus a per-sprite manifest.json under opts.OutputDir.
func Run(ctx context.Context, opts Options, cfg config.Config, log zerolog.Logger) (Summary, error) {
	sprites, err := discoverSprites(opts.InputDir)
	if err != nil {
		return Summary{}, fmt.Errorf("atlasrun: reading input directory: %w", err)
	}

	parallel := opts.Parallel
	if parallel <= 0 {
		parallel = runtime.NumCPU()
	}

	var (
		g       errgroup.Group
		mu      sync.Mutex
		summary Summary
	)
	g.SetLimit(parallel)
	summary.SpriteCount = len(sprites)

	for _, sprite := range sprites {
		if ctx.Err() != nil {
			break // caller cancelled; stop launching new sprites
		}
		sprite := sprite
		g.Go(func() error {
			spriteLog := log.With().Str("sprite", sprite).Logger()
			if err := processSprite(ctx, sprite, opts, cfg, spriteLog); err != nil {
				spriteLog.Error().Err(err).Msg("sprite failed")
				mu.Lock()
				summary.FailedCount++
				mu.Unlock()
			}
			return nil // independent-failure: never cancel sibling sprites
		})
	}
	_ = g.Wait()

	return summary, nil
}

func discoverSprites(inputDir string) ([]string, error) {
	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return nil, err
	}
	var sprites []string
	for _, e := range entries {
		if e.IsDir() {
			sprites = append(sprites, e.Name())
		}
	}
	sort.Strings(sprites)
	return sprites, nil
}

// processSprite builds every animation found under one sprite directory and
// writes the sprite-level manifest aggregating them. When opts.ExportImages
// is set, embedded image defs are externalized through a small rasterpool
// instead of left inline as base64.
func processSprite(ctx context.Context, sprite string, opts Options, cfg config.Config, log zerolog.Logger) error {
	spriteDir := filepath.Join(opts.InputDir, sprite)
	animations, err := groupFramesByAnimation(spriteDir)
	if err != nil {
		return fmt.Errorf("reading sprite directory: %w", err)
	}
	if len(animations) == 0 {
		return fmt.Errorf("no frame SVGs found")
	}

	var pool *rasterpool.Pool
	if opts.ExportImages != "" {
		pool = rasterpool.New([]rasterpool.Worker{newInlineWorker(), newInlineWorker()}, 0)
		defer pool.Shutdown()
	}

	outDir := opts.OutputDir
	multi := len(animations) > 1

	var outputs []builtAnimation

	for name, files := range animations {
		animDir := filepath.Join(outDir, sprite)
		if multi {
			animDir = filepath.Join(animDir, name)
		}

		sources := make([]string, len(files))
		for i, path := range files {
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("animation %s: reading frame %s: %w", name, path, err)
			}
			sources[i] = string(data)
		}

		exportOpts := atlas.ExportOptions{}
		if pool != nil {
			// Images are written alongside atlas.svg in animDir so a bare
			// filename href resolves without a web-base-path; WebBasePath
			// overrides that with an absolute URL when the caller wants one.
			exportOpts = atlas.ExportOptions{
				Dir:             animDir,
				WebBasePath:     opts.WebBasePath,
				Process:         func(b []byte) ([]byte, error) { return pool.Submit(ctx, b) },
				ThumbnailMaxDim: opts.ThumbnailMaxDim,
			}
		}

		result, err := atlas.BuildAnimation(name, 0, sources, cfg, exportOpts)
		if err != nil {
			log.Error().Err(err).Str("animation", name).Msg("animation failed, skipping")
			continue
		}

		if err := os.MkdirAll(animDir, 0o755); err != nil {
			return fmt.Errorf("animation %s: creating output directory: %w", name, err)
		}
		if err := writeFile(filepath.Join(animDir, "atlas.svg"), result.SVG); err != nil {
			return fmt.Errorf("animation %s: %w", name, err)
		}
		if err := writeManifestJSON(filepath.Join(animDir, "atlas.json"), result.Manifest); err != nil {
			return fmt.Errorf("animation %s: %w", name, err)
		}
		if err := writeExportedImages(animDir, result.Images); err != nil {
			return fmt.Errorf("animation %s: %w", name, err)
		}

		outputs = append(outputs, builtAnimation{name: name, dir: animDir, manifest: result.Manifest})
		log.Info().Str("animation", name).Int("frames", len(sources)).Int("images", len(result.Images)).Msg("animation built")
	}

	spriteManifest := buildSpriteManifest(sprite, outputs)
	return writeManifestJSON(filepath.Join(outDir, sprite, "manifest.json"), spriteManifest)
}

// writeExportedImages writes each externalized image payload to dir, named
// by its content hash, plus a registry.json mapping hash to mime type.
func writeExportedImages(dir string, images []atlas.ExportedImage) error {
	if len(images) == 0 {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating image export directory: %w", err)
	}
	registry := make(map[string]string, len(images))
	for _, img := range images {
		ext := ".bin"
		switch img.MimeType {
		case "image/png":
			ext = ".png"
		case "image/jpeg":
			ext = ".jpg"
		}
		name := img.Hash + ext
		if err := os.WriteFile(filepath.Join(dir, name), img.Bytes, 0o644); err != nil {
			return fmt.Errorf("writing exported image %s: %w", name, err)
		}
		registry[img.Hash] = img.MimeType
	}
	return writeManifestJSON(filepath.Join(dir, "registry.json"), registry)
}

// groupFramesByAnimation maps an animation name to its ordered frame file
// paths, parsed from filenames of the form "<animation>_<frame-index>.svg".
func groupFramesByAnimation(spriteDir string) (map[string][]string, error) {
	entries, err := os.ReadDir(spriteDir)
	if err != nil {
		return nil, err
	}

	type indexed struct {
		index int
		path  string
	}
	byAnim := map[string][]indexed{}

	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".svg") {
			continue
		}
		name := strings.TrimSuffix(e.Name(), ".svg")
		sep := strings.LastIndexByte(name, '_')
		if sep == -1 {
			continue
		}
		anim, idxStr := name[:sep], name[sep+1:]
		idx, err := strconv.Atoi(idxStr)
		if err != nil {
			continue
		}
		byAnim[anim] = append(byAnim[anim], indexed{index: idx, path: filepath.Join(spriteDir, e.Name())})
	}

	out := make(map[string][]string, len(byAnim))
	for anim, files := range byAnim {
		sort.Slice(files, func(i, j int) bool { return files[i].index < files[j].index })
		paths := make([]string, len(files))
		for i, f := range files {
			paths[i] = f.path
		}
		out[anim] = paths
	}
	return out, nil
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}
