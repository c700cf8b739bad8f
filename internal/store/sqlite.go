package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/geon/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS places (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	type       TEXT NOT NULL DEFAULT '',
	part_of    TEXT NOT NULL DEFAULT '',
	lat        REAL,
	lon        REAL,
	geom       BLOB,
	body       TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_places_type ON places(type);
CREATE INDEX IF NOT EXISTS idx_places_part_of ON places(part_of);
CREATE INDEX IF NOT EXISTS idx_places_lat_lon ON places(lat, lon);
`

const sqliteUpsert = `INSERT INTO places (id, name, type, part_of, lat, lon, geom, body, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		name = excluded.name,
		type = excluded.type,
		part_of = excluded.part_of,
		lat = excluded.lat,
		lon = excluded.lon,
		geom = excluded.geom,
		body = excluded.body,
		updated_at = excluded.updated_at`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func sqlitePut(ctx context.Context, ex execer, p *model.Place) (string, error) {
	r, err := newRecord(p)
	if err != nil {
		return "", err
	}
	_, err = ex.ExecContext(ctx, sqliteUpsert,
		r.ID, r.Name, r.Type, r.PartOf, r.Lat, r.Lon, r.Geom, r.Body, r.Modified,
	)
	if err != nil {
		return "", eris.Wrapf(err, "sqlite: put place %s", r.ID)
	}
	return r.ID, nil
}

func (s *SQLiteStore) Put(ctx context.Context, p *model.Place) (string, error) {
	return sqlitePut(ctx, s.db, p)
}

// PutMany writes all places in one transaction.
func (s *SQLiteStore) PutMany(ctx context.Context, places []*model.Place) ([]string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: begin tx")
	}
	defer func() { _ = tx.Rollback() }()

	ids := make([]string, 0, len(places))
	for _, p := range places {
		id, err := sqlitePut(ctx, tx, p)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := tx.Commit(); err != nil {
		return nil, eris.Wrap(err, "sqlite: commit")
	}
	return ids, nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*model.Place, error) {
	var body string
	err := s.db.QueryRowContext(ctx, `SELECT body FROM places WHERE id = ?`, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "sqlite: get place %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get place %s", id)
	}
	return decodeBody(id, body)
}

func (s *SQLiteStore) List(ctx context.Context, filter Filter) ([]*model.Place, error) {
	query := `SELECT id, body FROM places WHERE 1=1`
	var args []any

	if filter.Type != "" {
		query += ` AND type = ?`
		args = append(args, filter.Type)
	}
	if filter.PartOf != "" {
		query += ` AND part_of = ?`
		args = append(args, filter.PartOf)
	}
	if filter.Name != "" {
		query += ` AND name LIKE '%' || ? || '%'`
		args = append(args, filter.Name)
	}
	if e := filter.Within; e != nil {
		query += ` AND lat BETWEEN ? AND ? AND lon BETWEEN ? AND ?`
		args = append(args, e.South, e.North, e.West, e.East)
	}
	query += ` ORDER BY name, id LIMIT ?`
	args = append(args, listLimit(filter))

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list places")
	}
	defer rows.Close()

	var places []*model.Place
	for rows.Next() {
		var id, body string
		if err := rows.Scan(&id, &body); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan place")
		}
		p, err := decodeBody(id, body)
		if err != nil {
			return nil, err
		}
		places = append(places, p)
	}
	return places, eris.Wrap(rows.Err(), "sqlite: list places iterate")
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM places WHERE id = ?`, id)
	if err != nil {
		return eris.Wrapf(err, "sqlite: delete place %s", id)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return eris.Wrapf(ErrNotFound, "sqlite: delete place %s", id)
	}
	return nil
}

func (s *SQLiteStore) Geometry(ctx context.Context, id string) ([]byte, error) {
	var geom []byte
	err := s.db.QueryRowContext(ctx, `SELECT geom FROM places WHERE id = ?`, id).Scan(&geom)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "sqlite: geometry %s", id)
	}
	return geom, eris.Wrapf(err, "sqlite: geometry %s", id)
}
