package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/geon/internal/config"
	"github.com/sells-group/geon/internal/db"
	"github.com/sells-group/geon/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *config.PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS places (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	name       TEXT NOT NULL,
	type       TEXT NOT NULL DEFAULT '',
	part_of    TEXT NOT NULL DEFAULT '',
	lat        DOUBLE PRECISION,
	lon        DOUBLE PRECISION,
	geom       BYTEA,
	body       TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_places_type ON places(type);
CREATE INDEX IF NOT EXISTS idx_places_part_of ON places(part_of);
CREATE INDEX IF NOT EXISTS idx_places_lat_lon ON places(lat, lon);
`

var placeColumns = []string{"id", "name", "type", "part_of", "lat", "lon", "geom", "body", "updated_at"}

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) Put(ctx context.Context, p *model.Place) (string, error) {
	r, err := newRecord(p)
	if err != nil {
		return "", err
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO places (id, name, type, part_of, lat, lon, geom, body, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, type = EXCLUDED.type, part_of = EXCLUDED.part_of,
			lat = EXCLUDED.lat, lon = EXCLUDED.lon, geom = EXCLUDED.geom,
			body = EXCLUDED.body, updated_at = EXCLUDED.updated_at`,
		r.ID, r.Name, r.Type, r.PartOf, r.Lat, r.Lon, r.Geom, r.Body, r.Modified,
	)
	if err != nil {
		return "", eris.Wrapf(err, "postgres: put place %s", r.ID)
	}
	return r.ID, nil
}

// PutMany loads places with COPY through a temp table. A later place with
// the same id replaces an earlier one.
func (s *PostgresStore) PutMany(ctx context.Context, places []*model.Place) ([]string, error) {
	ids := make([]string, 0, len(places))
	rows := make([][]any, 0, len(places))
	pos := make(map[string]int, len(places))
	for _, p := range places {
		r, err := newRecord(p)
		if err != nil {
			return nil, err
		}
		ids = append(ids, r.ID)
		row := []any{r.ID, r.Name, r.Type, r.PartOf, r.Lat, r.Lon, r.Geom, r.Body, r.Modified}
		// ON CONFLICT cannot touch one row twice in a statement
		if i, dup := pos[r.ID]; dup {
			rows[i] = row
			continue
		}
		pos[r.ID] = len(rows)
		rows = append(rows, row)
	}

	_, err := db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "places",
		Columns:      placeColumns,
		ConflictKeys: []string{"id"},
	}, rows)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: put places")
	}
	return ids, nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*model.Place, error) {
	var body string
	err := s.pool.QueryRow(ctx, `SELECT body FROM places WHERE id = $1`, id).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "postgres: get place %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get place %s", id)
	}
	return decodeBody(id, body)
}

func (s *PostgresStore) List(ctx context.Context, filter Filter) ([]*model.Place, error) {
	query := `SELECT id, body FROM places WHERE true`
	args := []any{}
	argIdx := 1

	if filter.Type != "" {
		query += fmt.Sprintf(` AND type = $%d`, argIdx)
		args = append(args, filter.Type)
		argIdx++
	}
	if filter.PartOf != "" {
		query += fmt.Sprintf(` AND part_of = $%d`, argIdx)
		args = append(args, filter.PartOf)
		argIdx++
	}
	if filter.Name != "" {
		query += fmt.Sprintf(` AND name ILIKE '%%' || $%d || '%%'`, argIdx)
		args = append(args, filter.Name)
		argIdx++
	}
	if e := filter.Within; e != nil {
		query += fmt.Sprintf(` AND lat BETWEEN $%d AND $%d AND lon BETWEEN $%d AND $%d`,
			argIdx, argIdx+1, argIdx+2, argIdx+3)
		args = append(args, e.South, e.North, e.West, e.East)
		argIdx += 4
	}
	query += fmt.Sprintf(` ORDER BY name, id LIMIT $%d`, argIdx)
	args = append(args, listLimit(filter))
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list places")
	}
	defer rows.Close()

	var places []*model.Place
	for rows.Next() {
		var id, body string
		if err := rows.Scan(&id, &body); err != nil {
			return nil, eris.Wrap(err, "postgres: scan place")
		}
		p, err := decodeBody(id, body)
		if err != nil {
			return nil, err
		}
		places = append(places, p)
	}
	return places, eris.Wrap(rows.Err(), "postgres: list places iterate")
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM places WHERE id = $1`, id)
	if err != nil {
		return eris.Wrapf(err, "postgres: delete place %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "postgres: delete place %s", id)
	}
	return nil
}

func (s *PostgresStore) Geometry(ctx context.Context, id string) ([]byte, error) {
	var geom []byte
	err := s.pool.QueryRow(ctx, `SELECT geom FROM places WHERE id = $1`, id).Scan(&geom)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "postgres: geometry %s", id)
	}
	return geom, eris.Wrapf(err, "postgres: geometry %s", id)
}
