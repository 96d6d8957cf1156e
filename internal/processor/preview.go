package processor

import (
	"bytes"
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"github.com/woozymasta/mahamap/internal/config"
	"github.com/woozymasta/mahamap/internal/pathgen"
	"github.com/woozymasta/mahamap/internal/render"

	"github.com/rs/zerolog/log"
)

// previewOversample renders the preview larger than needed before
// downscaling to smooth edges.
const previewOversample = 2

// ProcessPreview renders a small WebP thumbnail of the boundaries.
func ProcessPreview(cfg *config.Config, m config.Map, b *Boundaries, force bool) error {
	outPath := filepath.Join(cfg.Dir(m), config.PreviewFile)
	if !force {
		if info, err := os.Stat(outPath); err == nil && info.Size() > 0 {
			log.Debug().Str("map", m.Name).Msg("Preview exists, skipping")
			return nil
		}
	}

	w := render.CanvasWidth * previewOversample
	h := render.CanvasHeight * previewOversample
	img := render.Rasterize(pathgen.ProjectFeatures(b.Features, b.Params), render.RasterOptions{
		Width:      w,
		Height:     h,
		Background: color.White,
		Transform:  render.FitTransform(render.CanvasWidth, render.CanvasHeight, w, h),
	})

	thumb := render.Downscale(img, m.PreviewSize, m.PreviewSize)

	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := render.EncodeWebP(&buf, thumb, 80); err != nil {
		return fmt.Errorf("encode preview: %w", err)
	}

	log.Info().
		Str("map", m.Name).
		Int("width", thumb.Bounds().Dx()).
		Int("height", thumb.Bounds().Dy()).
		Msg("Preview rendered")

	return writeFile(outPath, &buf)
}
