package dataset

import (
	"context"
	"database/sql"
	"strings"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	perrors "github.com/matzehuels/provmap/pkg/errors"
	"github.com/matzehuels/provmap/pkg/retry"
)

// SQL drivers accepted by [OpenSQL], keyed by configuration name.
var sqlDrivers = map[string]string{
	"sqlite":     "sqlite",
	"sqlite3":    "sqlite",
	"postgres":   "postgres",
	"postgresql": "postgres",
}

// SQLSchema creates the tables read by [SQLSource]. It is valid for both
// SQLite and PostgreSQL. Rows are read in id order.
const SQLSchema = `
CREATE TABLE IF NOT EXISTS cities (
	id       INTEGER PRIMARY KEY,
	province TEXT NOT NULL,
	name     TEXT NOT NULL,
	lat      DOUBLE PRECISION,
	lon      DOUBLE PRECISION
);
CREATE TABLE IF NOT EXISTS connections (
	id       INTEGER PRIMARY KEY,
	province TEXT NOT NULL,
	city     TEXT NOT NULL,
	target   TEXT NOT NULL
);`

// SQLSource reads a dataset from the cities and connections tables of
// [SQLSchema]. A city's connections keep their id order. The source never
// writes.
type SQLSource struct {
	db     *sql.DB
	driver string
}

// NewSQLSource wraps an open database.
func NewSQLSource(db *sql.DB, driver string) *SQLSource {
	return &SQLSource{db: db, driver: driver}
}

// OpenSQL opens dsn with the named driver ("sqlite" or "postgres") and pings
// it under [retry.Default].
func OpenSQL(ctx context.Context, driver, dsn string) (*SQLSource, error) {
	name, ok := sqlDrivers[strings.ToLower(driver)]
	if !ok {
		return nil, perrors.New(perrors.ErrCodeInvalidConfig, "unknown sql driver %q (want sqlite or postgres)", driver)
	}
	db, err := sql.Open(name, dsn)
	if err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeInvalidConfig, err, "open %s database", name)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)

	err = retry.Default.Do(ctx, func() error {
		return retry.Transient(db.PingContext(ctx))
	})
	if err != nil {
		_ = db.Close()
		return nil, perrors.Wrap(perrors.ErrCodeNetwork, err, "connect to %s database", name)
	}
	return NewSQLSource(db, name), nil
}

type cityKey struct{ province, city string }

// Load implements Source.
func (s *SQLSource) Load(ctx context.Context) (*Dataset, error) {
	links, err := s.connections(ctx)
	if err != nil {
		return nil, err
	}

	rs, err := s.db.QueryContext(ctx, `SELECT province, name, lat, lon FROM cities ORDER BY id`)
	if err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeNetwork, err, "query cities")
	}
	defer rs.Close()

	b := NewBuilder()
	for rs.Next() {
		var (
			province, name string
			lat, lon       sql.NullFloat64
		)
		if err := rs.Scan(&province, &name, &lat, &lon); err != nil {
			return nil, perrors.Wrap(perrors.ErrCodeInvalidFormat, err, "scan city row")
		}
		b.AddProvince(province)
		if name == "" {
			b.Quarantine(province, name, "missing city name")
			continue
		}
		if !lat.Valid || !lon.Valid {
			b.Quarantine(province, name, "coordinates must be [lat, lon], got NULL")
			continue
		}
		pos, reason := coordinatesFrom([]float64{lat.Float64, lon.Float64})
		if reason != "" {
			b.Quarantine(province, name, reason)
			continue
		}
		b.AddCity(province, City{
			Name:        name,
			Coordinates: pos,
			Connections: links[cityKey{province, name}],
		})
	}
	if err := rs.Err(); err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeNetwork, err, "read cities")
	}
	return b.Build(), nil
}

func (s *SQLSource) connections(ctx context.Context) (map[cityKey][]string, error) {
	rs, err := s.db.QueryContext(ctx, `SELECT province, city, target FROM connections ORDER BY id`)
	if err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeNetwork, err, "query connections")
	}
	defer rs.Close()

	out := make(map[cityKey][]string)
	for rs.Next() {
		var k cityKey
		var target string
		if err := rs.Scan(&k.province, &k.city, &target); err != nil {
			return nil, perrors.Wrap(perrors.ErrCodeInvalidFormat, err, "scan connection row")
		}
		out[k] = append(out[k], target)
	}
	if err := rs.Err(); err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeNetwork, err, "read connections")
	}
	return out, nil
}

func (s *SQLSource) String() string { return s.driver + ":cities" }

// Close closes the database.
func (s *SQLSource) Close() error { return s.db.Close() }
