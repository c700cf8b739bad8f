package convert

import (
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/geon/internal/model"
)

// FromShapefile reads every record of the shapefile at shpPath. Attribute
// names are lowercased and become feature properties; coordinates are taken
// as WGS84 longitude/latitude.
func (c *Converter) FromShapefile(shpPath string) ([]*model.Place, error) {
	reader, err := shp.Open(shpPath)
	if err != nil {
		return nil, eris.Wrapf(err, "convert: open shapefile %s", shpPath)
	}
	defer func() { _ = reader.Close() }()

	fields := reader.Fields()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = strings.ToLower(strings.TrimRight(f.String(), "\x00"))
	}

	var places []*model.Place
	var noGeom int
	for reader.Next() {
		_, shape := reader.Shape()

		props := make(map[string]any, len(names))
		for i, name := range names {
			val := strings.TrimSpace(strings.TrimRight(reader.Attribute(i), "\x00"))
			if val != "" {
				props[name] = val
			}
		}

		g := shapeGeometry(shape)
		if g == nil {
			noGeom++
		}
		places = append(places, c.FeatureToPlace("", g, props))
	}

	if noGeom > 0 {
		zap.L().Debug("convert: shapefile records without geometry",
			zap.String("path", shpPath),
			zap.Int("count", noGeom),
		)
	}
	return places, nil
}
