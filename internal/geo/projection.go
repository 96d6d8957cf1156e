package geo

import (
	"math"

	"github.com/paulmach/orb"
)

// Canvas offset: the projection center is drawn at (CanvasX, CanvasY).
const (
	CanvasX = 400.0
	CanvasY = 450.0
)

// MaxLat is the latitude limit used when fitting bounds.
const MaxLat = 85.05112878

// Params holds the projection parameters of a map.
type Params struct {
	Scale     float64 `json:"scale" yaml:"scale"`
	CenterLon float64 `json:"centerLon" yaml:"center_lon"`
	CenterLat float64 `json:"centerLat" yaml:"center_lat"`
}

// MercatorY returns the unshifted Mercator ordinate of lat for the given scale.
// Latitudes of ±90 yield non-finite values.
func MercatorY(lat, scale float64) float64 {
	return -scale * math.Log(math.Tan(math.Pi/4+lat*math.Pi/360))
}

// Project converts lon/lat into canvas coordinates. The center point maps
// exactly to (CanvasX, CanvasY).
func (p Params) Project(lon, lat float64) (x, y float64) {
	x = p.Scale * (lon - p.CenterLon)
	offsetY := -MercatorY(p.CenterLat, p.Scale)
	y = MercatorY(lat, p.Scale) + offsetY

	return x + CanvasX, y + CanvasY
}

// ProjectPoint is Project for orb points.
func (p Params) ProjectPoint(pt orb.Point) orb.Point {
	x, y := p.Project(pt[0], pt[1])
	return orb.Point{x, y}
}

// Unproject converts canvas coordinates back into lon/lat.
// It applies the inverse Mercator projection and is undefined for a zero scale.
func (p Params) Unproject(x, y float64) (lon, lat float64) {
	lon = (x-CanvasX)/p.Scale + p.CenterLon

	mercatorY := (y - CanvasY + MercatorY(p.CenterLat, p.Scale)) / -p.Scale
	latRad := 2.0*math.Atan(math.Exp(mercatorY)) - math.Pi*0.5
	lat = latRad * (180.0 / math.Pi)

	return lon, lat
}

// Fit derives parameters that center bound on the canvas and scale it to
// fit into width x height minus padding on each side.
func Fit(bound orb.Bound, width, height, padding float64) Params {
	minLat := clampLat(bound.Min[1])
	maxLat := clampLat(bound.Max[1])

	// center on the Mercator midpoint so the shape is vertically balanced
	midY := (MercatorY(minLat, 1) + MercatorY(maxLat, 1)) / 2
	p := Params{
		CenterLon: (bound.Min[0] + bound.Max[0]) / 2,
		CenterLat: (2.0*math.Atan(math.Exp(-midY)) - math.Pi*0.5) * (180.0 / math.Pi),
	}

	spanX := bound.Max[0] - bound.Min[0]
	spanY := MercatorY(minLat, 1) - MercatorY(maxLat, 1)

	availW := width - 2*padding
	availH := height - 2*padding

	scale := math.Inf(1)
	if spanX > 0 {
		scale = availW / spanX
	}
	if spanY > 0 {
		scale = math.Min(scale, availH/spanY)
	}
	if math.IsInf(scale, 1) || scale <= 0 {
		scale = 1
	}
	p.Scale = scale

	return p
}

func clampLat(lat float64) float64 {
	if lat > MaxLat {
		return MaxLat
	} else if lat < -MaxLat {
		return -MaxLat
	}

	return lat
}
