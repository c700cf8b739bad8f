// Package store persists GEON places in a catalog keyed by id. Each row keeps
// the canonical GEON text of the place, from which it is read back, along
// with the columns used for filtering and an EWKB geometry.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/sells-group/geon/internal/config"
	"github.com/sells-group/geon/internal/convert"
	"github.com/sells-group/geon/internal/model"
	"github.com/sells-group/geon/internal/notation"
)

// ErrNotFound is returned, wrapped, when no place has the requested id.
var ErrNotFound = eris.New("store: place not found")

const defaultListLimit = 100

// Filter specifies criteria for listing places.
type Filter struct {
	Type   string        `json:"type,omitempty"`
	PartOf string        `json:"part_of,omitempty"`
	Name   string        `json:"name,omitempty"` // substring match
	Within *model.Extent `json:"within,omitempty"`
	Limit  int           `json:"limit,omitempty"`
	Offset int           `json:"offset,omitempty"`
}

// Store defines the persistence interface for the place catalog.
type Store interface {
	// Put inserts or replaces p and returns its id. A place without an id is
	// assigned a UUID, written back to p.ID.
	Put(ctx context.Context, p *model.Place) (string, error)
	PutMany(ctx context.Context, places []*model.Place) ([]string, error)
	Get(ctx context.Context, id string) (*model.Place, error)
	List(ctx context.Context, filter Filter) ([]*model.Place, error)
	Delete(ctx context.Context, id string) error
	// Geometry returns the stored EWKB geometry, nil when the place has none.
	Geometry(ctx context.Context, id string) ([]byte, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// Open connects to the backend named by cfg.Driver and runs migrations.
// Postgres connections are retried on transient errors.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	var (
		st  Store
		err error
	)
	switch cfg.Driver {
	case "sqlite", "":
		st, err = NewSQLite(cfg.DatabaseURL)
	case "postgres":
		st, err = connectWithRetry(ctx, cfg.ConnectAttempts, func(ctx context.Context) (Store, error) {
			return NewPostgres(ctx, cfg.DatabaseURL, &cfg.Pool)
		})
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, err
	}
	return st, nil
}

// record is the row form of a place.
type record struct {
	ID       string
	Name     string
	Type     string
	PartOf   string
	Lat      *float64
	Lon      *float64
	Geom     []byte
	Body     string
	Modified time.Time
}

func newRecord(p *model.Place) (*record, error) {
	if p == nil {
		return nil, eris.New("store: nil place")
	}
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	geom, err := convert.EncodeEWKB(p)
	if err != nil {
		return nil, eris.Wrapf(err, "store: geometry for %s", p.ID)
	}
	r := &record{
		ID:       p.ID,
		Name:     p.Name,
		Type:     p.Type,
		PartOf:   p.PartOf,
		Geom:     geom,
		Body:     notation.Generate(p),
		Modified: time.Now().UTC(),
	}
	if p.Location != nil {
		lat, lon := p.Location.Lat, p.Location.Lon
		r.Lat, r.Lon = &lat, &lon
	}
	return r, nil
}

func decodeBody(id, body string) (*model.Place, error) {
	p, err := notation.Parse(body)
	if err != nil {
		return nil, eris.Wrapf(err, "store: parse stored place %s", id)
	}
	return p, nil
}

func listLimit(f Filter) int {
	if f.Limit <= 0 {
		return defaultListLimit
	}
	return f.Limit
}
