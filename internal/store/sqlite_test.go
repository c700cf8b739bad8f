package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"

	"github.com/sells-group/geon/internal/config"
	"github.com/sells-group/geon/internal/convert"
	"github.com/sells-group/geon/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func testPlace(id, name, typ string, lat, lon float64) *model.Place {
	return &model.Place{
		ID:       id,
		Name:     name,
		Type:     typ,
		Location: &model.Coordinate{Lat: lat, Lon: lon},
	}
}

func TestSQLite_PutAndGet(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	p := testPlace("p1", "Riverside Park", "public_space", 40.8, -73.97)
	p.Purpose = []string{"recreation", "gathering"}
	p.Experience = map[string]string{"noise": "quiet"}
	p.PartOf = "Upper West Side"

	id, err := st.Put(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, "p1", id)

	got, err := st.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Riverside Park", got.Name)
	assert.Equal(t, "public_space", got.Type)
	assert.Equal(t, "p1", got.ID)
	require.NotNil(t, got.Location)
	assert.InDelta(t, 40.8, got.Location.Lat, 1e-9)
	assert.InDelta(t, -73.97, got.Location.Lon, 1e-9)
	assert.Equal(t, []string{"recreation", "gathering"}, got.Purpose)
	assert.Equal(t, map[string]string{"noise": "quiet"}, got.Experience)
	assert.Equal(t, "Upper West Side", got.PartOf)
}

func TestSQLite_PutAssignsID(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	p := &model.Place{Name: "Anonymous"}
	id, err := st.Put(ctx, p)
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, id, p.ID)

	got, err := st.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Anonymous", got.Name)
}

func TestSQLite_PutReplaces(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := st.Put(ctx, testPlace("p1", "Old Name", "park", 1, 1))
	require.NoError(t, err)
	_, err = st.Put(ctx, testPlace("p1", "New Name", "plaza", 2, 2))
	require.NoError(t, err)

	got, err := st.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "New Name", got.Name)
	assert.Equal(t, "plaza", got.Type)

	all, err := st.List(ctx, Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestSQLite_PutNil(t *testing.T) {
	st := newTestSQLiteStore(t)
	_, err := st.Put(context.Background(), nil)
	assert.Error(t, err)
}

func TestSQLite_GetNotFound(t *testing.T) {
	st := newTestSQLiteStore(t)

	_, err := st.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Contains(t, err.Error(), "missing")
}

func TestSQLite_PutMany(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	ids, err := st.PutMany(ctx, []*model.Place{
		testPlace("a", "Alpha", "park", 1, 1),
		{Name: "Beta"},
		testPlace("c", "Gamma", "street", 3, 3),
	})
	require.NoError(t, err)
	require.Len(t, ids, 3)
	assert.Equal(t, "a", ids[0])
	assert.NotEmpty(t, ids[1])
	assert.Equal(t, "c", ids[2])

	all, err := st.List(ctx, Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestSQLite_PutManyRollsBack(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := st.PutMany(ctx, []*model.Place{testPlace("a", "Alpha", "park", 1, 1), nil})
	require.Error(t, err)

	all, err := st.List(ctx, Filter{})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestSQLite_ListFilters(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	market := testPlace("m", "Market Square", "plaza", 51.5, -0.1)
	market.PartOf = "Old Town"
	fountain := testPlace("f", "Fountain", "feature", 51.51, -0.11)
	fountain.PartOf = "Market Square"
	far := testPlace("x", "Harbor Market", "plaza", 10, 10)
	_, err := st.PutMany(ctx, []*model.Place{market, fountain, far, {ID: "n", Name: "Nowhere", Type: "plaza"}})
	require.NoError(t, err)

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"all ordered by name", Filter{}, []string{"Fountain", "Harbor Market", "Market Square", "Nowhere"}},
		{"type", Filter{Type: "plaza"}, []string{"Harbor Market", "Market Square", "Nowhere"}},
		{"part of", Filter{PartOf: "Market Square"}, []string{"Fountain"}},
		{"name substring", Filter{Name: "market"}, []string{"Harbor Market", "Market Square"}},
		{"within", Filter{Within: &model.Extent{North: 52, South: 51, East: 0, West: -1}}, []string{"Fountain", "Market Square"}},
		{"limit", Filter{Limit: 2}, []string{"Fountain", "Harbor Market"}},
		{"offset", Filter{Limit: 2, Offset: 2}, []string{"Market Square", "Nowhere"}},
		{"no match", Filter{Type: "river"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			places, err := st.List(ctx, tt.filter)
			require.NoError(t, err)
			var names []string
			for _, p := range places {
				names = append(names, p.Name)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestSQLite_Delete(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := st.Put(ctx, testPlace("p1", "Park", "park", 1, 1))
	require.NoError(t, err)
	require.NoError(t, st.Delete(ctx, "p1"))

	_, err = st.Get(ctx, "p1")
	assert.True(t, errors.Is(err, ErrNotFound))

	err = st.Delete(ctx, "p1")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestSQLite_Geometry(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := st.Put(ctx, testPlace("pt", "Point", "park", 40, -74))
	require.NoError(t, err)
	_, err = st.Put(ctx, &model.Place{ID: "none", Name: "Nowhere"})
	require.NoError(t, err)
	_, err = st.Put(ctx, &model.Place{ID: "poly", Name: "Block", Boundary: []model.Coordinate{
		{Lat: 0, Lon: 0}, {Lat: 0, Lon: 1}, {Lat: 1, Lon: 1}, {Lat: 0, Lon: 0},
	}})
	require.NoError(t, err)

	data, err := st.Geometry(ctx, "pt")
	require.NoError(t, err)
	g, err := convert.DecodeEWKB(data)
	require.NoError(t, err)
	pt, ok := g.(*geom.Point)
	require.True(t, ok)
	assert.Equal(t, []float64{-74, 40}, pt.FlatCoords())
	assert.Equal(t, convert.SRID, pt.SRID())

	data, err = st.Geometry(ctx, "poly")
	require.NoError(t, err)
	g, err = convert.DecodeEWKB(data)
	require.NoError(t, err)
	_, ok = g.(*geom.Polygon)
	assert.True(t, ok)

	data, err = st.Geometry(ctx, "none")
	require.NoError(t, err)
	assert.Nil(t, data)

	_, err = st.Geometry(ctx, "missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestSQLite_ChildrenSurviveStorage(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	p := &model.Place{
		ID:   "sq",
		Name: "Market Square",
		Contains: []model.Place{
			{Name: "Fountain", Type: "feature"},
			{Name: "Stalls", Contains: []model.Place{{Name: "Fish Stall"}}},
		},
	}
	_, err := st.Put(ctx, p)
	require.NoError(t, err)

	got, err := st.Get(ctx, "sq")
	require.NoError(t, err)
	require.Len(t, got.Contains, 2)
	assert.Equal(t, "Fountain", got.Contains[0].Name)
	assert.Equal(t, "feature", got.Contains[0].Type)
	require.Len(t, got.Contains[1].Contains, 1)
	assert.Equal(t, "Fish Stall", got.Contains[1].Contains[0].Name)
}

func TestOpen_SQLite(t *testing.T) {
	st, err := Open(context.Background(), config.StoreConfig{
		Driver:      "sqlite",
		DatabaseURL: filepath.Join(t.TempDir(), "open.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck

	_, ok := st.(*SQLiteStore)
	assert.True(t, ok)

	_, err = st.Put(context.Background(), &model.Place{Name: "Migrated"})
	assert.NoError(t, err)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), config.StoreConfig{Driver: "mongo", DatabaseURL: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown driver")
}
