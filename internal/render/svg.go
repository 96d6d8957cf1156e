// Package render turns generated paths and projected rings into SVG
// documents and raster images.
package render

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/svg"
	"github.com/woozymasta/mahamap/internal/geo"
)

// Default canvas size. The projection centers maps on (400, 450).
const (
	CanvasWidth  = 800
	CanvasHeight = 900
)

// SVGOptions controls the SVG document layout.
type SVGOptions struct {
	Title       string
	Attribution string
	Fill        string
	Stroke      string
	Width       int
	Height      int
	StrokeWidth float64
}

func (o SVGOptions) withDefaults() SVGOptions {
	if o.Width <= 0 {
		o.Width = CanvasWidth
	}
	if o.Height <= 0 {
		o.Height = CanvasHeight
	}
	if o.Fill == "" {
		o.Fill = "#dbe9d4"
	}
	if o.Stroke == "" {
		o.Stroke = "#4a6741"
	}
	if o.StrokeWidth <= 0 {
		o.StrokeWidth = 1
	}

	return o
}

var minifier = func() *minify.M {
	m := minify.New()
	m.AddFunc("image/svg+xml", svg.Minify)
	return m
}()

// SVG builds a minified standalone SVG document with one path element per
// non-empty result, in result order.
func SVG(paths []geo.PathResult, opts SVGOptions) ([]byte, error) {
	opts = opts.withDefaults()

	var buf bytes.Buffer
	fmt.Fprintf(&buf,
		`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`,
		opts.Width, opts.Height, opts.Width, opts.Height)

	if opts.Title != "" {
		buf.WriteString("<title>")
		escape(&buf, opts.Title)
		buf.WriteString("</title>")
	}

	fmt.Fprintf(&buf, `<g fill="%s" stroke="%s" stroke-width="%s" fill-rule="evenodd">`,
		opts.Fill, opts.Stroke, strconv.FormatFloat(opts.StrokeWidth, 'f', -1, 64))
	for _, p := range paths {
		if p.Path == "" {
			continue
		}
		fmt.Fprintf(&buf, `<path data-id="%d" d="%s">`, p.ID, p.Path)
		if p.Name != "" {
			buf.WriteString("<title>")
			escape(&buf, p.Name)
			buf.WriteString("</title>")
		}
		buf.WriteString("</path>")
	}
	buf.WriteString("</g>")

	if opts.Attribution != "" {
		fmt.Fprintf(&buf, `<text x="%d" y="%d" font-size="10" text-anchor="end" fill="#666">`,
			opts.Width-4, opts.Height-4)
		escape(&buf, opts.Attribution)
		buf.WriteString("</text>")
	}
	buf.WriteString("</svg>")

	out, err := minifier.Bytes("image/svg+xml", buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("minify svg: %w", err)
	}

	return out, nil
}

func escape(buf *bytes.Buffer, s string) {
	// bytes.Buffer writes never fail
	_ = xml.EscapeText(buf, []byte(s))
}
