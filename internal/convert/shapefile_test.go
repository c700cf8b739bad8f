package convert

import (
	"path/filepath"
	"testing"

	"github.com/jonas-p/go-shp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/geon/internal/model"
)

func writePointShapefile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "places.shp")
	w, err := shp.Create(path, shp.POINT)
	require.NoError(t, err)

	w.SetFields([]shp.Field{
		shp.StringField("NAME", 32),
		shp.StringField("LEISURE", 16),
	})
	w.Write(&shp.Point{X: -0.12, Y: 51.5})
	w.WriteAttribute(0, 0, "Riverside Park")
	w.WriteAttribute(0, 1, "park")
	w.Write(&shp.Point{X: 2.35, Y: 48.85})
	w.WriteAttribute(1, 0, "Pont Neuf")
	w.Close()
	return path
}

func TestFromShapefile_Points(t *testing.T) {
	path := writePointShapefile(t)

	places, err := NewConverter(Options{}).FromShapefile(path)
	require.NoError(t, err)
	require.Len(t, places, 2)

	assert.Equal(t, "Riverside Park", places[0].Name)
	assert.Equal(t, "public_space", places[0].Type)
	assert.Equal(t, []string{"park"}, places[0].Purpose)
	require.NotNil(t, places[0].Location)
	assert.InDelta(t, 51.5, places[0].Location.Lat, 1e-9)
	assert.InDelta(t, -0.12, places[0].Location.Lon, 1e-9)

	assert.Equal(t, "Pont Neuf", places[1].Name)
	assert.Equal(t, "hybrid", places[1].Type)
	assert.Equal(t, []string{"GeoJSON conversion"}, places[1].Source)
}

func TestFromShapefile_Polygon(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plots.shp")
	w, err := shp.Create(path, shp.POLYGON)
	require.NoError(t, err)
	w.SetFields([]shp.Field{shp.StringField("NAME", 16)})
	poly := shp.Polygon(*shp.NewPolyLine([][]shp.Point{{
		{X: 0, Y: 0}, {X: 0, Y: 2}, {X: 2, Y: 2}, {X: 2, Y: 0}, {X: 0, Y: 0},
	}}))
	w.Write(&poly)
	w.WriteAttribute(0, 0, "Plot")
	w.Close()

	places, err := NewConverter(Options{}).FromShapefile(path)
	require.NoError(t, err)
	require.Len(t, places, 1)
	assert.Equal(t, "Plot", places[0].Name)
	assert.Len(t, places[0].Boundary, 5)
	assert.Equal(t, model.Coordinate{Lat: 2, Lon: 0}, places[0].Boundary[1])
}

func TestFromShapefile_Missing(t *testing.T) {
	_, err := NewConverter(Options{}).FromShapefile(filepath.Join(t.TempDir(), "nope.shp"))
	require.Error(t, err)
}
