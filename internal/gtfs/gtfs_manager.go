package gtfs

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sourcegraph/conc"
	"rti.metlink.nz/internal/logging"
)

// Manager ties the static store and the live cache together and keeps them
// refreshed in the background.
type Manager struct {
	Static *StaticStore
	Live   *LiveCache

	config       Config
	logger       *slog.Logger
	cron         *cron.Cron
	shutdownChan chan struct{}
	wg           sync.WaitGroup
	startOnce    sync.Once
	shutdownOnce sync.Once
}

// InitManager loads the static schedule and prepares the live cache. It
// fails only when no schedule could be loaded at all; background refreshes
// start with Start.
func InitManager(config Config, logger *slog.Logger) (*Manager, error) {
	config = config.withDefaults()
	if logger == nil {
		logger = slog.Default()
	}

	static := NewStaticStore(config, logger)
	manager := &Manager{
		Static:       static,
		Live:         NewLiveCache(config, static, logger),
		config:       config,
		logger:       logging.Component(logger, "gtfs_manager"),
		cron:         cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		shutdownChan: make(chan struct{}),
	}

	ctx, cancel := context.WithTimeout(context.Background(), config.StaticTimeout)
	defer cancel()
	if err := static.Refresh(ctx); err != nil {
		if !static.IsLoaded() {
			return nil, fmt.Errorf("%w: %w", ErrNotLoaded, err)
		}
		logging.LogError(manager.logger, "Static refresh failed, serving cached schedule", err)
	}

	return manager, nil
}

// Start runs one refresh of every live feed and then schedules the
// periodic refreshes. Calling it more than once has no effect.
func (manager *Manager) Start() error {
	var err error
	manager.startOnce.Do(func() {
		if manager.config.realTimeDataEnabled() {
			ctx, cancel := context.WithTimeout(context.Background(), manager.config.RealtimeTimeout)
			manager.RefreshLive(ctx)
			cancel()

			manager.poll(feedAlerts, manager.config.AlertsURL, manager.config.AlertsInterval, manager.Live.refreshAlerts)
			manager.poll(feedVehicles, manager.config.VehiclePositionsURL, manager.config.VehiclesInterval, manager.Live.RefreshVehiclePositions)
			manager.poll(feedTripUpdates, manager.config.TripUpdatesURL, manager.config.TripUpdatesInterval, manager.Live.RefreshTripUpdates)
		}

		if manager.config.isLocalFile() {
			manager.logger.Info("GTFS source is a local file, skipping periodic updates")
			return
		}
		if _, err = manager.cron.AddFunc(manager.config.StaticSchedule, manager.checkStatic); err != nil {
			err = fmt.Errorf("invalid static schedule %q: %w", manager.config.StaticSchedule, err)
			return
		}
		manager.cron.Start()
	})
	return err
}

// RefreshLive refreshes the three live feeds concurrently. Failures are
// logged; each feed keeps its previous snapshot.
func (manager *Manager) RefreshLive(ctx context.Context) {
	var wg conc.WaitGroup
	wg.Go(func() {
		if err := manager.Live.refreshAlerts(ctx); err != nil {
			logging.LogError(manager.logger, "Error loading GTFS-RT alerts", err,
				slog.String("url", manager.config.AlertsURL))
		}
	})
	wg.Go(func() {
		if err := manager.Live.RefreshVehiclePositions(ctx); err != nil {
			logging.LogError(manager.logger, "Error loading GTFS-RT vehicle positions", err,
				slog.String("url", manager.config.VehiclePositionsURL))
		}
	})
	wg.Go(func() {
		if err := manager.Live.RefreshTripUpdates(ctx); err != nil {
			logging.LogError(manager.logger, "Error loading GTFS-RT trip updates", err,
				slog.String("url", manager.config.TripUpdatesURL))
		}
	})
	wg.Wait()
}

// RefreshStatic checks the published validity window and reloads the
// schedule when it is stale.
func (manager *Manager) RefreshStatic(ctx context.Context) error {
	return manager.Static.Refresh(ctx)
}

// Snapshot returns the current static schedule.
func (manager *Manager) Snapshot() *Schedule {
	return manager.Static.Snapshot()
}

func (manager *Manager) checkStatic() {
	ctx, cancel := context.WithTimeout(context.Background(), manager.config.StaticTimeout)
	defer cancel()
	ctx = logging.WithLogger(ctx, manager.logger)

	logging.LogOperation(manager.logger, "checking_gtfs_static")
	if err := manager.RefreshStatic(ctx); err != nil {
		logging.LogError(manager.logger, "Error updating GTFS data", err,
			slog.String("url", manager.config.GtfsURL))
	}
}

func (manager *Manager) poll(feed, url string, interval time.Duration, refresh func(context.Context) error) {
	if url == "" {
		return
	}
	manager.wg.Add(1)
	go func() {
		defer manager.wg.Done()

		logger := manager.logger.With(slog.String("feed", feed))
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), manager.config.RealtimeTimeout)
				ctx = logging.WithLogger(ctx, logger)
				if err := refresh(ctx); err != nil {
					logging.LogError(logger, "Error refreshing GTFS-RT feed", err, slog.String("url", url))
				}
				cancel()
			case <-manager.shutdownChan:
				logging.LogOperation(logger, "shutting_down_realtime_updates")
				return
			}
		}
	}()
}

// Shutdown stops the background refreshes and waits for them to finish.
// It is safe to call more than once.
func (manager *Manager) Shutdown() {
	manager.shutdownOnce.Do(func() {
		close(manager.shutdownChan)
		<-manager.cron.Stop().Done()
		manager.wg.Wait()
	})
}

// PrintStatistics writes a short summary of the loaded data.
func (manager *Manager) PrintStatistics(w io.Writer) {
	schedule := manager.Snapshot()
	counts := schedule.Counts()

	fmt.Fprintf(w, "Source: %s (Local File: %v)\n", manager.config.GtfsURL, manager.config.isLocalFile())
	fmt.Fprintf(w, "Last Updated: %s\n", schedule.LoadedAt.Format(time.RFC3339))
	if !schedule.Meta.IsZero() {
		fmt.Fprintf(w, "Valid: %s to %s\n",
			schedule.Meta.StartDate.Format("2006-01-02"), schedule.Meta.EndDate.Format("2006-01-02"))
	}
	fmt.Fprintln(w, "Agencies Count: ", counts.Agencies)
	fmt.Fprintln(w, "Stops Count: ", counts.Stops)
	fmt.Fprintln(w, "Routes Count: ", counts.Routes)
	fmt.Fprintln(w, "Trips Count: ", counts.Trips)
	fmt.Fprintln(w, "Stop Times Count: ", counts.StopTimes)

	live := manager.Live
	fmt.Fprintln(w, "Vehicles Count: ", len(live.VehiclePositions().ByTrip))
	fmt.Fprintln(w, "Trip Updates Count: ", len(live.TripUpdates().ByTrip))
	fmt.Fprintln(w, "Alerts Count: ", len(live.Alerts().Alerts))
}
