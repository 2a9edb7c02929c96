package index

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/sejong-careerpath/coursebot-go/internal/catalog"
	"github.com/sejong-careerpath/coursebot-go/internal/logger"
	"github.com/sejong-careerpath/coursebot-go/internal/metrics"
)

// SnapshotKey is the store key under which the serialized index lives.
const SnapshotKey = "course-index"

// Snapshot is the loaded catalog plus its search index. Once published
// it is never mutated; a reload replaces the whole value.
type Snapshot struct {
	Records []catalog.CourseRecord
	Index   *Index
}

// Fetcher retrieves the full course catalog.
type Fetcher interface {
	Fetch(ctx context.Context) ([]catalog.CourseRecord, error)
}

// SnapshotStore persists serialized index payloads between restarts.
type SnapshotStore interface {
	Load(key string) ([]byte, bool, error)
	Save(key string, payload []byte) error
}

// Loader fetches the catalog once, builds (or restores) the index and
// keeps the result in memory for the life of the process. Concurrent
// first loads are collapsed into a single fetch.
type Loader struct {
	fetcher Fetcher
	store   SnapshotStore // nil disables persistence
	log     *logger.Logger
	metrics *metrics.Metrics

	mu       sync.RWMutex
	snapshot *Snapshot
	group    singleflight.Group
}

// NewLoader creates a Loader. store may be nil, in which case every
// process start rebuilds the index from scratch.
func NewLoader(fetcher Fetcher, store SnapshotStore, log *logger.Logger, m *metrics.Metrics) *Loader {
	return &Loader{
		fetcher: fetcher,
		store:   store,
		log:     log.WithModule("index.loader"),
		metrics: m,
	}
}

// Load returns the current snapshot, fetching and indexing the catalog
// on first use. Catalog failures propagate as
// catalog.ErrCatalogUnavailable; no partial snapshot is ever published.
func (l *Loader) Load(ctx context.Context) (*Snapshot, error) {
	l.mu.RLock()
	snapshot := l.snapshot
	l.mu.RUnlock()
	if snapshot != nil {
		return snapshot, nil
	}

	result, err, _ := l.group.Do(SnapshotKey, func() (any, error) {
		// Another waiter may have completed the load while this call
		// queued behind the flight.
		l.mu.RLock()
		current := l.snapshot
		l.mu.RUnlock()
		if current != nil {
			return current, nil
		}
		return l.load(ctx)
	})
	if err != nil {
		return nil, err
	}
	return result.(*Snapshot), nil
}

// Cached returns the in-memory snapshot without triggering a load, or
// nil when nothing has been loaded yet.
func (l *Loader) Cached() *Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.snapshot
}

// Invalidate drops the in-memory snapshot so the next Load fetches the
// catalog again.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	l.snapshot = nil
	l.mu.Unlock()
}

func (l *Loader) load(ctx context.Context) (*Snapshot, error) {
	start := time.Now()
	records, err := l.fetcher.Fetch(ctx)
	if err != nil {
		l.metrics.RecordCatalogFetch("error", time.Since(start).Seconds())
		l.log.WithError(err).Error("catalog fetch failed")
		return nil, err
	}
	l.metrics.RecordCatalogFetch("success", time.Since(start).Seconds())
	l.metrics.CatalogRecordsLoaded.Set(float64(len(records)))

	ix, restored := l.restoreIndex()
	if ix == nil {
		buildStart := time.Now()
		ix, err = Build(ctx, records)
		if err != nil {
			return nil, err
		}
		l.metrics.RecordIndexBuild(time.Since(buildStart).Seconds())
		l.persistIndex(ix)
	}

	snapshot := &Snapshot{Records: records, Index: ix}
	l.mu.Lock()
	l.snapshot = snapshot
	l.mu.Unlock()

	l.log.WithFields(map[string]any{
		"records":        len(records),
		"index_entries":  ix.Entries(),
		"index_restored": restored,
		"elapsed":        time.Since(start).String(),
	}).Info("catalog loaded")
	return snapshot, nil
}

// restoreIndex tries to reuse a persisted index. Stale or corrupt
// snapshots are discarded without surfacing an error; the caller falls
// back to a full rebuild.
func (l *Loader) restoreIndex() (*Index, bool) {
	if l.store == nil {
		return nil, false
	}

	payload, found, err := l.store.Load(SnapshotKey)
	if err != nil {
		l.metrics.RecordSnapshotEvent("corrupt")
		l.log.WithError(err).Warn("discarding unreadable index snapshot")
		return nil, false
	}
	if !found {
		l.metrics.RecordSnapshotEvent("miss")
		return nil, false
	}

	ix, err := Decode(payload)
	switch {
	case errors.Is(err, ErrSnapshotStale):
		l.metrics.RecordSnapshotEvent("stale")
		l.log.WithError(err).Info("rebuilding index from stale snapshot")
		return nil, false
	case err != nil:
		l.metrics.RecordSnapshotEvent("corrupt")
		l.log.WithError(err).Warn("discarding corrupt index snapshot")
		return nil, false
	}

	l.metrics.RecordSnapshotEvent("hit")
	return ix, true
}

func (l *Loader) persistIndex(ix *Index) {
	if l.store == nil {
		return
	}

	payload, err := Encode(ix)
	if err != nil {
		l.log.WithError(err).Warn("failed to encode index snapshot")
		return
	}
	if err := l.store.Save(SnapshotKey, payload); err != nil {
		l.log.WithError(err).Warn("failed to persist index snapshot")
		return
	}
	l.metrics.RecordSnapshotEvent("saved")
}
