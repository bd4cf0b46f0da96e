package catalog

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/tradeinlabs/phoneworth/internal/infrastructure/monitoring/logging"
	"github.com/tradeinlabs/phoneworth/pkg/errors"
)

// Source supplies raw phone records from wherever they live (files, a
// database, a cache in front of either).
type Source interface {
	Load(ctx context.Context) ([]RawPhone, error)
}

// StoreMetrics receives cache events from a Store.  Implementations must be
// safe for concurrent use.
type StoreMetrics interface {
	CatalogHit()
	CatalogMiss()
	CatalogReload(phones int, err error)
}

type nopStoreMetrics struct{}

func (nopStoreMetrics) CatalogHit()              {}
func (nopStoreMetrics) CatalogMiss()             {}
func (nopStoreMetrics) CatalogReload(int, error) {}

type snapshot struct {
	phones   []Phone
	loadedAt time.Time
}

// Store caches the normalized catalog.  The snapshot is replaced wholesale
// on reload and never mutated in place, so readers see a consistent list
// without locking; concurrent loads of an empty cache are collapsed into a
// single underlying fetch.
type Store struct {
	source     Source
	normalizer *Normalizer
	logger     logging.Logger
	metrics    StoreMetrics

	snap atomic.Pointer[snapshot]
	sf   singleflight.Group
}

// StoreOption customizes a Store.
type StoreOption func(*Store)

// WithStoreMetrics wires cache event reporting.
func WithStoreMetrics(m StoreMetrics) StoreOption {
	return func(s *Store) { s.metrics = m }
}

// NewStore constructs a Store over the given source.
func NewStore(source Source, normalizer *Normalizer, logger logging.Logger, opts ...StoreOption) *Store {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	s := &Store{
		source:     source,
		normalizer: normalizer,
		logger:     logger.Named("catalog"),
		metrics:    nopStoreMetrics{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Phones returns the normalized catalog, loading and normalizing it on
// first use.  The returned slice is shared; callers must not mutate it.
func (s *Store) Phones(ctx context.Context) ([]Phone, error) {
	if snap := s.snap.Load(); snap != nil {
		s.metrics.CatalogHit()
		return snap.phones, nil
	}
	s.metrics.CatalogMiss()

	v, err, _ := s.sf.Do("load", func() (interface{}, error) {
		// Another caller may have finished the load while this one was
		// queued behind the flight.
		if snap := s.snap.Load(); snap != nil {
			return snap.phones, nil
		}
		return s.reload(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.([]Phone), nil
}

func (s *Store) reload(ctx context.Context) ([]Phone, error) {
	started := time.Now()
	raws, err := s.source.Load(ctx)
	if err != nil {
		s.metrics.CatalogReload(0, err)
		return nil, errors.Wrap(err, errors.CodeCatalogLoadFailed, "loading phone catalog")
	}
	if len(raws) == 0 {
		err := errors.New(errors.CodeCatalogEmpty, "phone catalog source returned no records")
		s.metrics.CatalogReload(0, err)
		return nil, err
	}

	phones := s.normalizer.Normalize(raws)
	s.snap.Store(&snapshot{phones: phones, loadedAt: time.Now()})
	s.metrics.CatalogReload(len(phones), nil)
	s.logger.Info("catalog loaded",
		logging.Int("raw", len(raws)),
		logging.Int("normalized", len(phones)),
		logging.Duration("took", time.Since(started)))
	return phones, nil
}

// Invalidate drops the cached snapshot; the next Phones call reloads.
func (s *Store) Invalidate() {
	s.snap.Store(nil)
	s.logger.Info("catalog cache invalidated")
}

// LoadedAt returns when the current snapshot was built, or the zero time
// when nothing is cached.
func (s *Store) LoadedAt() time.Time {
	if snap := s.snap.Load(); snap != nil {
		return snap.loadedAt
	}
	return time.Time{}
}
