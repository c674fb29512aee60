package gtfs

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	gtfsrtpb "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
	"rti.metlink.nz/internal/logging"
)

// ScheduleSource hands out the current static schedule.
type ScheduleSource interface {
	Snapshot() *Schedule
}

const (
	feedAlerts      = "alerts"
	feedVehicles    = "vehicle_positions"
	feedTripUpdates = "trip_updates"
)

// LiveCache holds the latest realtime snapshots. Each feed refreshes on its
// own; readers always see a completed snapshot.
type LiveCache struct {
	config   Config
	client   *http.Client
	logger   *slog.Logger
	schedule ScheduleSource

	vehicles atomic.Pointer[VehicleSnapshot]
	updates  atomic.Pointer[TripUpdateSnapshot]
	alerts   atomic.Pointer[AlertSnapshot]

	emptyVehicles *VehicleSnapshot
	emptyUpdates  *TripUpdateSnapshot
	emptyAlerts   *AlertSnapshot

	alertLimiter *rate.Limiter
	group        singleflight.Group

	// mergeMutex keeps two refreshes of a keyed feed from merging against
	// the same previous snapshot.
	mergeMutex sync.Mutex
	now        func() time.Time
}

// NewLiveCache creates a cache with empty snapshots.
func NewLiveCache(config Config, schedule ScheduleSource, logger *slog.Logger) *LiveCache {
	config = config.withDefaults()
	return &LiveCache{
		config:        config,
		client:        &http.Client{Timeout: config.RealtimeTimeout},
		logger:        logging.Component(logger, "gtfs_realtime"),
		schedule:      schedule,
		emptyVehicles: &VehicleSnapshot{ByTrip: map[string]VehiclePosition{}},
		emptyUpdates:  &TripUpdateSnapshot{ByTrip: map[string]TripUpdate{}},
		emptyAlerts:   NewAlertSnapshot(time.Time{}, time.Time{}, nil),
		alertLimiter:  rate.NewLimiter(rate.Every(config.ForcedAlertsEvery), 1),
		now:           time.Now,
	}
}

// VehiclePositions returns the latest vehicle snapshot, never nil.
func (c *LiveCache) VehiclePositions() *VehicleSnapshot {
	if snap := c.vehicles.Load(); snap != nil {
		return snap
	}
	return c.emptyVehicles
}

// TripUpdates returns the latest trip-update snapshot, never nil.
func (c *LiveCache) TripUpdates() *TripUpdateSnapshot {
	if snap := c.updates.Load(); snap != nil {
		return snap
	}
	return c.emptyUpdates
}

// Alerts returns the latest alert snapshot, never nil.
func (c *LiveCache) Alerts() *AlertSnapshot {
	if snap := c.alerts.Load(); snap != nil {
		return snap
	}
	return c.emptyAlerts
}

func (c *LiveCache) AlertsForStop(id string) []Alert    { return c.Alerts().ForStop(id) }
func (c *LiveCache) AlertsForRoute(code string) []Alert { return c.Alerts().ForRoute(code) }
func (c *LiveCache) AlertsForTrip(id string) []Alert    { return c.Alerts().ForTrip(id) }

// RefreshAlerts fetches the alerts feed on demand. Without force the fetch
// is skipped while the last one is younger than AlertsInterval; forced
// fetches are rate limited. Concurrent callers share one fetch.
func (c *LiveCache) RefreshAlerts(ctx context.Context, force bool) error {
	if c.config.AlertsURL == "" {
		return nil
	}

	if !force {
		if last := c.alerts.Load(); last != nil && c.now().Sub(last.FetchedAt) < c.config.AlertsInterval {
			return nil
		}
	} else if !c.alertLimiter.Allow() {
		c.logger.Debug("forced_alert_refresh_throttled")
		return nil
	}

	return c.refreshAlerts(ctx)
}

func (c *LiveCache) refreshAlerts(ctx context.Context) error {
	if c.config.AlertsURL == "" {
		return nil
	}
	_, err, _ := c.group.Do(feedAlerts, func() (any, error) {
		fm, err := c.load(ctx, c.config.AlertsURL)
		if err != nil {
			return nil, err
		}
		c.applyAlerts(fm)
		return nil, nil
	})
	return err
}

// RefreshVehiclePositions fetches the vehicle positions feed and merges
// keepovers from the previous snapshot.
func (c *LiveCache) RefreshVehiclePositions(ctx context.Context) error {
	if c.config.VehiclePositionsURL == "" {
		return nil
	}
	_, err, _ := c.group.Do(feedVehicles, func() (any, error) {
		fm, err := c.load(ctx, c.config.VehiclePositionsURL)
		if err != nil {
			return nil, err
		}
		return nil, c.applyVehiclePositions(fm)
	})
	return err
}

// RefreshTripUpdates fetches the trip updates feed and merges keepovers
// from the previous snapshot.
func (c *LiveCache) RefreshTripUpdates(ctx context.Context) error {
	if c.config.TripUpdatesURL == "" {
		return nil
	}
	_, err, _ := c.group.Do(feedTripUpdates, func() (any, error) {
		fm, err := c.load(ctx, c.config.TripUpdatesURL)
		if err != nil {
			return nil, err
		}
		return nil, c.applyTripUpdates(fm)
	})
	return err
}

func (c *LiveCache) load(ctx context.Context, source string) (*gtfsrtpb.FeedMessage, error) {
	body, contentType, err := fetch(ctx, c.client, source, c.config.authHeaders())
	if err != nil {
		return nil, err
	}
	return decodeFeed(body, contentType)
}

func (c *LiveCache) applyAlerts(fm *gtfsrtpb.FeedMessage) {
	header, _ := headerTime(fm)
	alerts := parseAlerts(fm, c.schedule.Snapshot())
	c.alerts.Store(NewAlertSnapshot(header, c.now(), alerts))

	c.logger.Debug("alerts_updated", slog.Int("alerts", len(alerts)))
}

func (c *LiveCache) applyVehiclePositions(fm *gtfsrtpb.FeedMessage) error {
	header, ok := headerTime(fm)
	if !ok {
		return fmt.Errorf("%w: vehicle positions without header timestamp", ErrMalformedFeed)
	}
	fresh := parseVehiclePositions(fm, c.schedule.Snapshot())

	c.mergeMutex.Lock()
	defer c.mergeMutex.Unlock()

	kept := 0
	if previous := c.vehicles.Load(); previous != nil {
		kept = mergeKeepovers(previous.ByTrip, fresh, header)
	}
	c.vehicles.Store(&VehicleSnapshot{
		Header:    header,
		FetchedAt: c.now(),
		ByTrip:    fresh,
		Keepovers: kept,
	})

	c.logger.Debug("vehicle_positions_updated",
		slog.Int("vehicles", len(fresh)),
		slog.Int("keepovers", kept))
	return nil
}

func (c *LiveCache) applyTripUpdates(fm *gtfsrtpb.FeedMessage) error {
	header, ok := headerTime(fm)
	if !ok {
		return fmt.Errorf("%w: trip updates without header timestamp", ErrMalformedFeed)
	}
	fresh := parseTripUpdates(fm, c.schedule.Snapshot())

	c.mergeMutex.Lock()
	defer c.mergeMutex.Unlock()

	kept := 0
	if previous := c.updates.Load(); previous != nil {
		kept = mergeKeepovers(previous.ByTrip, fresh, header)
	}
	c.updates.Store(&TripUpdateSnapshot{
		Header:    header,
		FetchedAt: c.now(),
		ByTrip:    fresh,
		Keepovers: kept,
	})

	c.logger.Debug("trip_updates_updated",
		slog.Int("trips", len(fresh)),
		slog.Int("keepovers", kept))
	return nil
}
