package processor

import (
	"bytes"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sync"

	"github.com/woozymasta/mahamap/internal/config"
	"github.com/woozymasta/mahamap/internal/pathgen"
	"github.com/woozymasta/mahamap/internal/render"

	"github.com/rs/zerolog/log"
)

// TileCoordinate represents a specific tile.
type TileCoordinate struct {
	Z, X, Y int
}

// Path returns the tile file path below baseDir.
func (c TileCoordinate) Path(baseDir string) string {
	return filepath.Join(
		baseDir,
		fmt.Sprintf("%d", c.Z),
		fmt.Sprintf("%d", c.X),
		fmt.Sprintf("%d", c.Y)+".webp",
	)
}

// ProcessTiles renders the boundaries for every zoom level up to the map
// zoom limit and slices them into z/x/y WebP tiles. The canvas is fitted
// into a square of 2^z tiles per side.
func ProcessTiles(cfg *config.Config, m config.Map, b *Boundaries, concurrency int, force bool) error {
	if concurrency <= 0 {
		concurrency = 20
	}

	baseDir := filepath.Join(cfg.Dir(m), config.TilesDir)
	rings := pathgen.ProjectFeatures(b.Features, b.Params)

	log.Info().
		Str("map", m.Name).
		Int("zoom_limit", m.ZoomLimit).
		Int("tile_size", m.TileSize).
		Msg("Starting tile rendering")

	for z := 0; z <= m.ZoomLimit; z++ {
		// Grid size: 2^z
		gridSize := 1 << z
		totalPixels := gridSize * m.TileSize

		log.Debug().
			Int("zoom", z).
			Int("grid", gridSize).
			Int("px", totalPixels).
			Msg("Processing zoom level")

		img := render.Rasterize(rings, render.RasterOptions{
			Width:     totalPixels,
			Height:    totalPixels,
			Transform: render.FitTransform(render.CanvasWidth, render.CanvasHeight, totalPixels, totalPixels),
		})

		failed := sliceLevel(img, baseDir, z, gridSize, m.TileSize, concurrency, force)
		if failed > 0 {
			return fmt.Errorf("map %q zoom %d: %d tiles failed", m.Name, z, failed)
		}
	}

	return nil
}

// sliceLevel writes all tiles of one zoom level and returns the number of
// tiles that could not be written.
func sliceLevel(img *image.RGBA, baseDir string, z, gridSize, tileSize, concurrency int, force bool) int {
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		failed int
	)
	// Simple semaphore to limit file I/O concurrency
	sem := make(chan struct{}, concurrency)

	for x := 0; x < gridSize; x++ {
		for y := 0; y < gridSize; y++ {
			wg.Add(1)
			sem <- struct{}{}

			go func(c TileCoordinate) {
				defer wg.Done()
				defer func() { <-sem }()

				if err := writeTile(img, baseDir, c, tileSize, force); err != nil {
					log.Error().
						Err(err).
						Int("z", c.Z).
						Int("x", c.X).
						Int("y", c.Y).
						Msg("Failed to write tile")

					mu.Lock()
					failed++
					mu.Unlock()
				}
			}(TileCoordinate{Z: z, X: x, Y: y})
		}
	}
	wg.Wait()

	return failed
}

func writeTile(img *image.RGBA, baseDir string, c TileCoordinate, tileSize int, force bool) error {
	outPath := c.Path(baseDir)

	if !force {
		if info, err := os.Stat(outPath); err == nil && info.Size() > 0 {
			return nil
		}
	}

	// Crop
	rect := image.Rect(c.X*tileSize, c.Y*tileSize, (c.X+1)*tileSize, (c.Y+1)*tileSize)
	subImg := img.SubImage(rect)

	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := render.EncodeWebP(&buf, subImg, 85); err != nil {
		return fmt.Errorf("encode webp: %w", err)
	}

	return writeFile(outPath, &buf)
}
