package convert

import (
	"fmt"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/ewkb"
	"go.uber.org/zap"

	"github.com/sells-group/geon/internal/model"
)

// SRID of every geometry produced here.
const SRID = 4326

// Footprint is the location and boundary read from one geometry.
type Footprint struct {
	Location *model.Coordinate
	Boundary []model.Coordinate
}

// FootprintOf derives a representative location and, for areal geometries,
// the exterior ring of g. Point is used as is; LineString and MultiPoint use
// their middle vertex; Polygon uses the plain vertex mean of its first ring,
// closing duplicate included. Unsupported or empty geometries give a zero
// Footprint.
func FootprintOf(g geom.T) Footprint {
	switch g := g.(type) {
	case *geom.Point:
		return Footprint{Location: coordPtr(g.Coords())}

	case *geom.LineString:
		return Footprint{Location: middle(g.Coords())}

	case *geom.MultiPoint:
		return Footprint{Location: middle(g.Coords())}

	case *geom.MultiLineString:
		if g.NumLineStrings() == 0 {
			return Footprint{}
		}
		return Footprint{Location: middle(g.LineString(0).Coords())}

	case *geom.Polygon:
		return ringFootprint(g)

	case *geom.MultiPolygon:
		if g.NumPolygons() == 0 {
			return Footprint{}
		}
		return ringFootprint(g.Polygon(0))

	case nil:
		return Footprint{}
	}

	zap.L().Debug("convert: unsupported geometry", zap.String("type", fmt.Sprintf("%T", g)))
	return Footprint{}
}

func ringFootprint(p *geom.Polygon) Footprint {
	if p == nil || p.NumLinearRings() == 0 {
		return Footprint{}
	}
	ring := p.LinearRing(0).Coords()
	if len(ring) == 0 {
		return Footprint{}
	}

	var lat, lon float64
	boundary := make([]model.Coordinate, 0, len(ring))
	for _, c := range ring {
		lon += c[0]
		lat += c[1]
		boundary = append(boundary, model.Coordinate{Lat: c[1], Lon: c[0]})
	}
	n := float64(len(ring))
	return Footprint{
		Location: &model.Coordinate{Lat: lat / n, Lon: lon / n},
		Boundary: boundary,
	}
}

func middle(coords []geom.Coord) *model.Coordinate {
	if len(coords) == 0 {
		return nil
	}
	return coordPtr(coords[len(coords)/2])
}

func coordPtr(c geom.Coord) *model.Coordinate {
	if len(c) < 2 {
		return nil
	}
	return &model.Coordinate{Lat: c[1], Lon: c[0]}
}

// PlaceGeometry builds the geometry of p: a Polygon when Boundary has at
// least three points, a Point when only Location is set, nil otherwise.
func PlaceGeometry(p *model.Place) geom.T {
	if len(p.Boundary) >= 3 {
		flat := make([]float64, 0, len(p.Boundary)*2)
		for _, c := range p.Boundary {
			flat = append(flat, c.Lon, c.Lat)
		}
		return geom.NewPolygonFlat(geom.XY, flat, []int{len(flat)}).SetSRID(SRID)
	}
	if p.Location != nil {
		return geom.NewPointFlat(geom.XY, p.Location.Position()).SetSRID(SRID)
	}
	return nil
}

// EncodeEWKB returns the EWKB form of p's geometry, or nil when p has none.
func EncodeEWKB(p *model.Place) ([]byte, error) {
	g := PlaceGeometry(p)
	if g == nil {
		return nil, nil
	}
	data, err := ewkb.Marshal(g, ewkb.NDR)
	if err != nil {
		return nil, eris.Wrap(err, "convert: encode EWKB")
	}
	return data, nil
}

// DecodeEWKB reads a geometry written by EncodeEWKB.
func DecodeEWKB(data []byte) (geom.T, error) {
	if len(data) == 0 {
		return nil, nil
	}
	g, err := ewkb.Unmarshal(data)
	if err != nil {
		return nil, eris.Wrap(err, "convert: decode EWKB")
	}
	return g, nil
}

// shapeGeometry converts a go-shp record geometry. Nil for unsupported or
// empty shapes.
func shapeGeometry(shape shp.Shape) geom.T {
	switch s := shape.(type) {
	case *shp.Point:
		return geom.NewPointFlat(geom.XY, []float64{s.X, s.Y}).SetSRID(SRID)
	case *shp.PolyLine:
		return polyLineToMultiLineString(s)
	case *shp.Polygon:
		return polygonToMultiPolygon(s)
	}
	return nil
}

func polyLineToMultiLineString(pl *shp.PolyLine) geom.T {
	if pl == nil || pl.NumParts == 0 || len(pl.Points) == 0 {
		return nil
	}
	mls := geom.NewMultiLineString(geom.XY).SetSRID(SRID)
	for i, part := range parts(pl.NumParts, pl.Parts, pl.Points) {
		if err := mls.Push(geom.NewLineStringFlat(geom.XY, part)); err != nil {
			zap.L().Debug("convert: skipping malformed linestring part", zap.Int("part", i), zap.Error(err))
		}
	}
	if mls.NumLineStrings() == 0 {
		return nil
	}
	return mls
}

func polygonToMultiPolygon(p *shp.Polygon) geom.T {
	if p == nil || p.NumParts == 0 || len(p.Points) == 0 {
		return nil
	}
	mp := geom.NewMultiPolygon(geom.XY).SetSRID(SRID)
	for i, part := range parts(p.NumParts, p.Parts, p.Points) {
		poly := geom.NewPolygonFlat(geom.XY, part, []int{len(part)})
		if err := mp.Push(poly); err != nil {
			zap.L().Debug("convert: skipping malformed polygon part", zap.Int("part", i), zap.Error(err))
		}
	}
	if mp.NumPolygons() == 0 {
		return nil
	}
	return mp
}

// parts splits shapefile points into flat XY slices, one per part.
func parts(numParts int32, starts []int32, points []shp.Point) [][]float64 {
	out := make([][]float64, 0, numParts)
	for i := int32(0); i < numParts && int(i) < len(starts); i++ {
		start := starts[i]
		end := int32(len(points))
		if i+1 < numParts && int(i+1) < len(starts) {
			end = starts[i+1]
		}
		if start < 0 || start >= end || int(end) > len(points) {
			continue
		}
		flat := make([]float64, 0, (end-start)*2)
		for _, pt := range points[start:end] {
			flat = append(flat, pt.X, pt.Y)
		}
		out = append(out, flat)
	}
	return out
}
