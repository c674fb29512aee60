package gtfs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"rti.metlink.nz/internal/logging"
)

// cacheMeta is the sidecar written next to the cached archive.
type cacheMeta struct {
	Feed         FeedMeta  `json:"feed"`
	DownloadedAt time.Time `json:"downloaded_at"`
}

// StaticStore owns the static schedule. Readers get the latest completed
// Schedule; reloads build a replacement off to the side and swap it in only
// when it parsed cleanly.
type StaticStore struct {
	config  Config
	client  *http.Client
	logger  *slog.Logger
	current atomic.Pointer[Schedule]
	empty   *Schedule

	// reloadMutex serializes reloads; readers never take it.
	reloadMutex sync.Mutex
	now         func() time.Time
}

// NewStaticStore creates an empty store.
func NewStaticStore(config Config, logger *slog.Logger) *StaticStore {
	config = config.withDefaults()
	return &StaticStore{
		config: config,
		client: &http.Client{Timeout: config.StaticTimeout},
		logger: logging.Component(logger, "gtfs_static"),
		empty:  emptySchedule(),
		now:    time.Now,
	}
}

// IsLoaded reports whether a schedule has been loaded.
func (s *StaticStore) IsLoaded() bool {
	return s.current.Load() != nil
}

// Snapshot returns the current schedule. Before the first load it returns an
// empty schedule, so callers never need a nil check.
func (s *StaticStore) Snapshot() *Schedule {
	if schedule := s.current.Load(); schedule != nil {
		return schedule
	}
	return s.empty
}

// Version returns the validity window of the loaded dataset.
func (s *StaticStore) Version() FeedMeta {
	return s.Snapshot().Meta
}

// Load parses an archive and makes it current. On error the previous
// schedule is kept.
func (s *StaticStore) Load(archive []byte, meta FeedMeta) error {
	s.reloadMutex.Lock()
	defer s.reloadMutex.Unlock()
	return s.load(archive, meta)
}

func (s *StaticStore) load(archive []byte, meta FeedMeta) error {
	start := s.now()
	schedule, stats, err := ParseArchive(archive)
	if err != nil {
		return err
	}
	schedule.Meta = meta
	schedule.LoadedAt = s.now()
	s.current.Store(schedule)

	counts := schedule.Counts()
	attrs := []slog.Attr{
		slog.Int("stops", counts.Stops),
		slog.Int("routes", counts.Routes),
		slog.Int("trips", counts.Trips),
		slog.Int("stop_times", counts.StopTimes),
		slog.Int("trips_without_route", stats.TripsWithoutRoute),
		slog.Int("invalid_times", stats.InvalidTimes),
		slog.Duration("duration", schedule.LoadedAt.Sub(start)),
	}
	if s.config.Verbose {
		logging.LogOperation(s.logger, "gtfs_static_loaded", attrs...)
	} else {
		args := make([]any, len(attrs))
		for i, a := range attrs {
			args[i] = a
		}
		s.logger.Debug("gtfs_static_loaded", args...)
	}
	return nil
}

// LoadFile loads an archive from local disk.
func (s *StaticStore) LoadFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("error reading local GTFS file: %w", err)
	}
	return s.Load(b, FeedMeta{})
}

// Refresh brings the store up to date: a local source is loaded once, a
// remote one is checked against the published validity window.
func (s *StaticStore) Refresh(ctx context.Context) error {
	if s.config.isLocalFile() {
		if s.IsLoaded() {
			return nil
		}
		return s.LoadFile(s.config.GtfsURL)
	}

	remote, err := s.FetchFeedMeta(ctx)
	if err != nil {
		logging.LogError(s.logger, "Error fetching GTFS feed metadata", err,
			slog.String("url", s.config.FeedInfoURL))
		// Without a published window, a cached archive is still usable.
		remote = FeedMeta{}
	}
	return s.ReloadIfStale(ctx, remote)
}

// FetchFeedMeta reads the remotely published validity window. An empty
// FeedInfoURL yields an unknown window.
func (s *StaticStore) FetchFeedMeta(ctx context.Context) (FeedMeta, error) {
	if s.config.FeedInfoURL == "" {
		return FeedMeta{}, nil
	}

	b, _, err := fetch(ctx, s.client, s.config.FeedInfoURL, s.config.authHeaders())
	if err != nil {
		return FeedMeta{}, err
	}

	var meta FeedMeta
	if err := json.Unmarshal(b, &meta); err != nil {
		if errors.Is(err, ErrMalformedFeed) {
			return FeedMeta{}, err
		}
		return FeedMeta{}, fmt.Errorf("%w: feed metadata: %v", ErrMalformedFeed, err)
	}
	return meta, nil
}

// ReloadIfStale downloads and loads a fresh archive when there is no cached
// archive or the cached one starts earlier than remote. A fresh cache that
// is not yet in memory is loaded from disk. Any failure leaves the current
// schedule untouched.
func (s *StaticStore) ReloadIfStale(ctx context.Context, remote FeedMeta) error {
	s.reloadMutex.Lock()
	defer s.reloadMutex.Unlock()

	cached, cacheOK := s.readCacheMeta()
	if cacheOK && !remote.NewerThan(cached.Feed) {
		if loaded := s.current.Load(); loaded != nil && loaded.Meta.Equal(cached.Feed) {
			s.logger.Debug("gtfs_static_up_to_date", slog.Time("start_date", cached.Feed.StartDate))
			return nil
		}

		b, err := os.ReadFile(s.config.CachePath)
		if err == nil {
			if err = s.load(b, cached.Feed); err == nil {
				return nil
			}
		}
		logging.LogError(s.logger, "Cached GTFS archive unusable, downloading", err,
			slog.String("path", s.config.CachePath))
	}

	logging.LogOperation(s.logger, "downloading_gtfs_static",
		slog.String("url", s.config.GtfsURL),
		slog.Time("remote_start_date", remote.StartDate))

	b, _, err := fetch(ctx, s.client, s.config.GtfsURL, s.config.authHeaders())
	if err != nil {
		return fmt.Errorf("error downloading GTFS data: %w", err)
	}
	if err := s.load(b, remote); err != nil {
		return fmt.Errorf("error parsing GTFS data: %w", err)
	}

	if err := s.writeCache(b, remote); err != nil {
		// The new schedule is already serving; only the cache is stale.
		logging.LogError(s.logger, "Error writing GTFS cache", err,
			slog.String("path", s.config.CachePath))
	}
	return nil
}

func (s *StaticStore) metaPath() string {
	return s.config.CachePath + ".meta.json"
}

func (s *StaticStore) readCacheMeta() (cacheMeta, bool) {
	if s.config.CachePath == "" {
		return cacheMeta{}, false
	}
	if _, err := os.Stat(s.config.CachePath); err != nil {
		return cacheMeta{}, false
	}

	b, err := os.ReadFile(s.metaPath())
	if err != nil {
		return cacheMeta{}, false
	}
	var meta cacheMeta
	if err := json.Unmarshal(b, &meta); err != nil {
		return cacheMeta{}, false
	}
	return meta, true
}

// writeCache stores the archive and its sidecar, each via a temporary file
// renamed into place.
func (s *StaticStore) writeCache(archive []byte, feed FeedMeta) error {
	if s.config.CachePath == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.config.CachePath), 0o755); err != nil {
		return err
	}

	meta, err := json.Marshal(cacheMeta{Feed: feed, DownloadedAt: s.now().UTC()})
	if err != nil {
		return err
	}

	if err := writeFileAtomic(s.config.CachePath, archive, s.logger); err != nil {
		return err
	}
	return writeFileAtomic(s.metaPath(), meta, s.logger)
}

func writeFileAtomic(path string, data []byte, logger *slog.Logger) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	if err := writeAndClose(tmp, data, logger); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func writeAndClose(f *os.File, data []byte, logger *slog.Logger) (err error) {
	defer logging.HandleDeferredError(&err, f.Close, logger, "gtfs_cache_write")
	_, err = f.Write(data)
	return err
}
