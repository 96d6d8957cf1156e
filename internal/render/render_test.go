package render

import (
	"bytes"
	"image/color"
	"math"
	"strings"
	"testing"

	"github.com/paulmach/orb"
	"github.com/woozymasta/mahamap/internal/geo"
	"golang.org/x/image/webp"
)

func TestSVG(t *testing.T) {
	paths := []geo.PathResult{
		{ID: 0, Name: "Pune", Path: "M 400 450 L 401 450 L 401 451 Z"},
		{ID: 1, Name: "Empty", Path: ""},
		{ID: 2, Name: "Sangli & Miraj", Path: "M 300 300 L 310 300 L 310 310 Z"},
	}

	doc, err := SVG(paths, SVGOptions{Title: "Maharashtra", Attribution: "Census boundaries"})
	if err != nil {
		t.Fatal(err)
	}

	s := string(doc)
	if !strings.HasPrefix(s, "<svg") {
		t.Fatalf("not an svg document: %.60s", s)
	}
	if n := strings.Count(s, "<path"); n != 2 {
		t.Fatalf("got %d path elements, want 2", n)
	}
	if strings.Contains(s, "Sangli & Miraj") {
		t.Fatal("names must be escaped")
	}
}

func TestFitTransform(t *testing.T) {
	tr := FitTransform(CanvasWidth, CanvasHeight, 256, 256)

	x0, y0 := tr.Apply(orb.Point{0, 0})
	x1, y1 := tr.Apply(orb.Point{CanvasWidth, CanvasHeight})
	if math.Abs(float64(y0)) > 1e-3 || math.Abs(float64(y1)-256) > 1e-3 {
		t.Fatalf("height not fitted: %v..%v", y0, y1)
	}
	if math.Abs(float64(x0+x1)/2-128) > 1e-3 {
		t.Fatalf("width not centered: %v..%v", x0, x1)
	}
}

func TestRasterize(t *testing.T) {
	square := []orb.Ring{{{300, 350}, {500, 350}, {500, 550}, {300, 550}}}
	broken := []orb.Ring{{{math.NaN(), 1}, {2, 2}, {3, 3}}}
	pole := []orb.Ring{{{0, 0}, {800, 0}, {400, math.Inf(1)}}}

	img := Rasterize([][]orb.Ring{square, broken, nil, pole}, RasterOptions{
		Width:     80,
		Height:    90,
		Transform: FitTransform(CanvasWidth, CanvasHeight, 80, 90),
	})

	if _, _, _, a := img.At(40, 45).RGBA(); a != 0xffff {
		t.Fatalf("center pixel alpha = %x, want opaque", a)
	}
	if _, _, _, a := img.At(2, 2).RGBA(); a != 0 {
		t.Fatalf("corner pixel alpha = %x, want transparent", a)
	}
	if _, _, _, a := img.At(40, 5).RGBA(); a != 0 {
		t.Fatalf("ring with an infinite point was drawn, alpha = %x", a)
	}

	want := Palette[0]
	if got := img.RGBAAt(40, 45); got != want {
		t.Fatalf("center pixel = %v, want %v", got, want)
	}
}

func TestRasterizeBackground(t *testing.T) {
	img := Rasterize(nil, RasterOptions{Width: 4, Height: 4, Background: color.White})
	if got := img.RGBAAt(1, 1); got != (color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}) {
		t.Fatalf("background = %v", got)
	}
}

func TestDownscale(t *testing.T) {
	img := Rasterize(nil, RasterOptions{Width: CanvasWidth, Height: CanvasHeight})

	thumb := Downscale(img, 320, 320)
	if thumb.Bounds().Dx() != 284 || thumb.Bounds().Dy() != 320 {
		t.Fatalf("thumbnail is %v", thumb.Bounds())
	}

	same := Downscale(thumb, 1000, 1000)
	if same.Bounds() != thumb.Bounds() {
		t.Fatalf("images must not be upscaled, got %v", same.Bounds())
	}
}

func TestEncodeWebP(t *testing.T) {
	img := Rasterize(nil, RasterOptions{Width: 32, Height: 16, Background: color.White})

	var buf bytes.Buffer
	if err := EncodeWebP(&buf, img, 80); err != nil {
		t.Fatal(err)
	}

	cfg, err := webp.DecodeConfig(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 32 || cfg.Height != 16 {
		t.Fatalf("decoded size %dx%d", cfg.Width, cfg.Height)
	}
}

func TestTransparentTile(t *testing.T) {
	data, err := TransparentTile(256)
	if err != nil {
		t.Fatal(err)
	}

	cfg, err := webp.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 256 || cfg.Height != 256 {
		t.Fatalf("decoded size %dx%d", cfg.Width, cfg.Height)
	}
}
