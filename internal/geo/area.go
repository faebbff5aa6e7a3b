package geo

import (
	"errors"
	"fmt"

	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/wroge/wgs84"
)

// ErrTooFewPoints is returned when an area has fewer than three vertices.
var ErrTooFewPoints = errors.New("area requires at least 3 points")

// Area is a closed polygon on the map, stored as lon/lat (EPSG:4326).
type Area struct {
	polygon geom.Polygon
}

// NewArea builds a polygon from at least three lat/lon vertices. The ring
// is closed automatically.
func NewArea(lats, lons []float64) (*Area, error) {
	if len(lats) < 3 || len(lons) != len(lats) {
		return nil, ErrTooFewPoints
	}

	flat := make([]float64, 0, 2*(len(lats)+1))
	for i := range lats {
		flat = append(flat, lons[i], lats[i])
	}
	// close the ring
	flat = append(flat, lons[0], lats[0])

	ring, err := geom.NewLineString(geom.NewSequence(flat, geom.DimXY))
	if err != nil {
		return nil, fmt.Errorf("failed to build area ring: %w", err)
	}
	poly, err := geom.NewPolygon([]geom.LineString{ring})
	if err != nil {
		return nil, fmt.Errorf("failed to build area polygon: %w", err)
	}

	return &Area{polygon: poly}, nil
}

// Contains reports whether the given lat/lon point is inside the area.
func (a *Area) Contains(lat, lon float64) bool {
	pt, err := geom.NewPoint(geom.Coordinates{XY: geom.XY{X: lon, Y: lat}})
	if err != nil {
		return false
	}
	return geom.Intersects(a.polygon.AsGeometry(), pt.AsGeometry())
}

// Centroid returns the area's centroid as lat/lon. Falls back to (0,0)
// for degenerate polygons.
func (a *Area) Centroid() (float64, float64) {
	c, ok := a.polygon.AsGeometry().Centroid().XY()
	if !ok {
		return 0, 0
	}
	return c.Y, c.X
}

// Project3857 converts a lat/lon position to Web Mercator for map-facing
// exports. The web frontend renders recordings in EPSG:3857.
func Project3857(lat, lon float64) (x, y float64) {
	epsg := wgs84.EPSG()
	f := epsg.Transform(4326, 3857)
	x, y, _ = f(lon, lat, 0)
	return x, y
}
