// Command atlasbuild reads already-rendered per-frame SVG documents for one
// or more sprites and produces a deduplicated, packed SVG atlas plus a JSON
// manifest for each animation found.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/agg-go/vecatlas/internal/atlasrun"
	"github.com/agg-go/vecatlas/internal/config"
	"github.com/agg-go/vecatlas/internal/obs"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		parallel        int
		configPath      string
		exportImages    string
		webBasePath     string
		thumbnailMaxDim int
		logFormat       string
	)

	cmd := &cobra.Command{
		Use:   "atlasbuild <input-directory> <output-directory>",
		Short: "Build deduplicated SVG atlases from per-sprite frame directories",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			format := obs.FormatConsole
			if logFormat == "json" {
				format = obs.FormatJSON
			}
			log := obs.New(format, cmd.OutOrStderr())

			cfg := config.Default()
			opts := atlasrun.Options{
				InputDir:        args[0],
				OutputDir:       args[1],
				Parallel:        parallel,
				ExportImages:    exportImages,
				WebBasePath:     webBasePath,
				ThumbnailMaxDim: thumbnailMaxDim,
			}
			_ = configPath // reserved for the downstream SVG optimizer's config file

			summary, err := atlasrun.Run(cmd.Context(), opts, cfg, log)
			if err != nil {
				return err
			}
			log.Info().
				Int("sprites", summary.SpriteCount).
				Int("failed", summary.FailedCount).
				Msg("atlas build complete")
			if summary.FailedCount > 0 {
				return fmt.Errorf("atlasbuild: %d of %d sprites failed", summary.FailedCount, summary.SpriteCount)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&parallel, "parallel", 0, "number of sprites processed concurrently (default: number of hardware threads)")
	cmd.Flags().StringVar(&configPath, "config", "", "optional post-optimization configuration for the downstream SVG optimizer")
	cmd.Flags().StringVar(&exportImages, "export-images", "", "when set, write rasterized image payloads as separate files under this directory")
	cmd.Flags().StringVar(&webBasePath, "web-base-path", "", "when set, externalized image references use absolute URLs rooted at this prefix")
	cmd.Flags().IntVar(&thumbnailMaxDim, "thumbnail-max-dim", 0, "when set with --export-images, also write a downscaled preview (longest side clamped to this many pixels) alongside each full-resolution image")
	cmd.Flags().StringVar(&logFormat, "log-format", "console", `log output format: "console" or "json"`)

	return cmd
}
