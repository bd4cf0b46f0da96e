package source

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tradeinlabs/phoneworth/internal/domain/catalog"
	"github.com/tradeinlabs/phoneworth/internal/infrastructure/monitoring/logging"
	"github.com/tradeinlabs/phoneworth/pkg/errors"
)

const selectPhonesSQL = `SELECT title, image, link, specs FROM phones`

// Pool is the subset of pgxpool.Pool the Postgres source needs; narrow so
// tests can substitute a mock pool.
type Pool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Ping(ctx context.Context) error
	Close()
}

// PostgresSource loads raw phone records from a phones table.  When the
// database is unreachable it falls back to a secondary source (normally the
// feed files the table was seeded from), so a database outage degrades to
// stale-but-served rather than down.
type PostgresSource struct {
	pool     Pool
	fallback catalog.Source
	logger   logging.Logger
}

// NewPostgresSource connects a pool and wraps it in a PostgresSource.
func NewPostgresSource(ctx context.Context, dsn string, fallback catalog.Source, logger logging.Logger) (*PostgresSource, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeConfiguration, "parsing postgres dsn")
	}
	cfg.MaxConns = 10
	cfg.MinConns = 2
	cfg.MaxConnLifetime = 30 * time.Minute
	cfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDataSource, "creating postgres pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, errors.CodeDataSource, "pinging postgres")
	}
	return NewPostgresSourceFromPool(pool, fallback, logger), nil
}

// NewPostgresSourceFromPool wraps an existing pool.
func NewPostgresSourceFromPool(pool Pool, fallback catalog.Source, logger logging.Logger) *PostgresSource {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &PostgresSource{pool: pool, fallback: fallback, logger: logger.Named("pgsource")}
}

// Load queries the phones table, deserializing the specs JSONB column into
// the raw spec block.  On query failure it defers to the fallback source.
func (s *PostgresSource) Load(ctx context.Context) ([]catalog.RawPhone, error) {
	phones, err := s.query(ctx)
	if err == nil {
		s.logger.Info("phones loaded from postgres", logging.Int("count", len(phones)))
		return phones, nil
	}
	if s.fallback == nil {
		return nil, err
	}
	s.logger.Warn("postgres load failed, using fallback source", logging.Err(err))
	return s.fallback.Load(ctx)
}

func (s *PostgresSource) query(ctx context.Context) ([]catalog.RawPhone, error) {
	rows, err := s.pool.Query(ctx, selectPhonesSQL)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDataSource, "querying phones table")
	}
	defer rows.Close()

	var phones []catalog.RawPhone
	for rows.Next() {
		var (
			p     catalog.RawPhone
			specs []byte
		)
		if err := rows.Scan(&p.Title, &p.Image, &p.Link, &specs); err != nil {
			return nil, errors.Wrap(err, errors.CodeDataSource, "scanning phone row")
		}
		if len(specs) > 0 {
			if err := json.Unmarshal(specs, &p.Specs); err != nil {
				s.logger.Warn("skipping phone with malformed specs",
					logging.String("title", p.Title), logging.Err(err))
				continue
			}
		}
		phones = append(phones, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeDataSource, "iterating phone rows")
	}
	return phones, nil
}

// Close releases the connection pool.
func (s *PostgresSource) Close() {
	s.pool.Close()
}
