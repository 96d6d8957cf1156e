package render

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"io"
	"math"

	"github.com/chai2010/webp"
	"github.com/paulmach/orb"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/vector"
)

// Transform maps canvas coordinates onto image pixels.
type Transform struct {
	Scale float64
	DX    float64
	DY    float64
}

// Apply transforms a canvas point.
func (t Transform) Apply(pt orb.Point) (float32, float32) {
	return float32(pt[0]*t.Scale + t.DX), float32(pt[1]*t.Scale + t.DY)
}

// FitTransform scales a width x height canvas uniformly into an image of
// size w x h, centered.
func FitTransform(canvasW, canvasH float64, w, h int) Transform {
	scale := math.Min(float64(w)/canvasW, float64(h)/canvasH)
	return Transform{
		Scale: scale,
		DX:    (float64(w) - canvasW*scale) / 2,
		DY:    (float64(h) - canvasH*scale) / 2,
	}
}

// Palette cycles through fill colours per feature.
var Palette = []color.RGBA{
	{R: 0x8d, G: 0xb5, B: 0x80, A: 0xff},
	{R: 0xc5, G: 0xd8, B: 0x9d, A: 0xff},
	{R: 0x6f, G: 0x9a, B: 0x8b, A: 0xff},
	{R: 0xe3, G: 0xc5, B: 0x8a, A: 0xff},
	{R: 0xa7, G: 0xbe, B: 0xd3, A: 0xff},
}

// RasterOptions controls Rasterize.
type RasterOptions struct {
	Background color.Color
	Palette    []color.RGBA
	Transform  Transform
	Width      int
	Height     int
}

// Rasterize fills every feature's projected rings into a new image. Each
// entry of features holds the rings of one feature; inner rings of opposite
// winding cut holes.
func Rasterize(features [][]orb.Ring, opts RasterOptions) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height))
	if opts.Background != nil {
		draw.Draw(dst, dst.Bounds(), image.NewUniform(opts.Background), image.Point{}, draw.Src)
	}

	palette := opts.Palette
	if len(palette) == 0 {
		palette = Palette
	}

	z := vector.NewRasterizer(opts.Width, opts.Height)
	for i, rings := range features {
		if len(rings) == 0 {
			continue
		}

		z.Reset(opts.Width, opts.Height)
		drawn := false
		for _, ring := range rings {
			if !finite(ring) || len(ring) < 3 {
				continue
			}
			for j, pt := range ring {
				x, y := opts.Transform.Apply(pt)
				if j == 0 {
					z.MoveTo(x, y)
					continue
				}
				z.LineTo(x, y)
			}
			z.ClosePath()
			drawn = true
		}
		if !drawn {
			continue
		}

		src := image.NewUniform(palette[i%len(palette)])
		z.Draw(dst, dst.Bounds(), src, image.Point{})
	}

	return dst
}

// Downscale resizes img to fit into w x h with CatmullRom filtering.
func Downscale(img image.Image, w, h int) *image.RGBA {
	b := img.Bounds()
	scale := math.Min(float64(w)/float64(b.Dx()), float64(h)/float64(b.Dy()))
	if scale >= 1 {
		scale = 1
	}

	dw := max(1, int(math.Round(float64(b.Dx())*scale)))
	dh := max(1, int(math.Round(float64(b.Dy())*scale)))
	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)

	return dst
}

// EncodeWebP writes img as lossy WebP with the given quality.
func EncodeWebP(w io.Writer, img image.Image, quality float32) error {
	return webp.Encode(w, img, &webp.Options{Lossless: false, Quality: quality})
}

// TransparentTile returns an encoded empty size x size WebP tile.
func TransparentTile(size int) ([]byte, error) {
	var buf bytes.Buffer
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	if err := webp.Encode(&buf, img, &webp.Options{Lossless: true}); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func finite(ring orb.Ring) bool {
	for _, pt := range ring {
		if math.IsNaN(pt[0]) || math.IsNaN(pt[1]) || math.IsInf(pt[0], 0) || math.IsInf(pt[1], 0) {
			return false
		}
	}

	return true
}
