package generator

import (
	"fmt"
	"math"

	"github.com/dbsmedya/gomask/internal/geobounds"
)

// Geo draws coordinates uniformly inside a resolved bounding box, rounded to
// six decimals (about 10 cm) and clamped back into the box.
type Geo struct {
	box       geobounds.BoundingBox
	latColumn string
	lngColumn string
}

// NewGeo creates a coordinate generator for the given columns.
func NewGeo(box geobounds.BoundingBox, latColumn, lngColumn string) *Geo {
	return &Geo{box: box, latColumn: latColumn, lngColumn: lngColumn}
}

// Bounds returns the box coordinates are drawn from.
func (g *Geo) Bounds() geobounds.BoundingBox {
	return g.box
}

func (g *Geo) Validate() error {
	if g.latColumn == "" || g.lngColumn == "" {
		return fmt.Errorf("lat_column and lng_column are required")
	}
	return g.box.Validate()
}

func (g *Geo) Generate(req *Request) (any, error) {
	switch req.Column.Name {
	case g.latColumn:
		return drawCoordinate(req, g.box.MinLat, g.box.MaxLat), nil
	case g.lngColumn:
		return drawCoordinate(req, g.box.MinLng, g.box.MaxLng), nil
	}
	return nil, fmt.Errorf("column %s is neither the latitude nor the longitude column", req.Column.Name)
}

func drawCoordinate(req *Request, lo, hi float64) float64 {
	v := lo + req.Rand.Float64()*(hi-lo)
	v = math.Round(v*1e6) / 1e6
	return math.Min(math.Max(v, lo), hi)
}
