package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"switchmap/internal/codec"
	"switchmap/internal/domain"
	"switchmap/internal/repository"
	"switchmap/internal/topology"
)

// ErrRunInProgress is returned when a discovery run is already running
var ErrRunInProgress = errors.New("discovery run already in progress")

// Collector gathers raw captures from the fleet
type Collector interface {
	Collect(ctx context.Context, hosts []string) []domain.DeviceCapture
}

// Scanner sweeps a subnet for candidate devices
type Scanner interface {
	Scan(ctx context.Context) ([]string, error)
}

// Settings are the runtime-adjustable discovery knobs. The watcher swaps
// them when the config file changes.
type Settings struct {
	Hosts    []string
	Interval time.Duration
	Artifact string
	KeepRuns int
}

// Discovery owns the collect-infer-persist pipeline. One run at a time;
// overlapping requests get ErrRunInProgress.
type Discovery struct {
	collector  Collector
	scanner    Scanner
	inferencer *topology.Inferencer
	store      repository.RunStore
	bus        *EventBus
	log        *slog.Logger

	mu       sync.Mutex
	settings Settings
	running  bool

	trigger  chan struct{}
	reloaded chan struct{}
}

// NewDiscovery creates the discovery service. The scanner may be nil
// when seed scanning is not wanted; the bus may be nil in one-shot use.
func NewDiscovery(collector Collector, scanner Scanner, store repository.RunStore, bus *EventBus, settings Settings, logger *slog.Logger) *Discovery {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Discovery{
		collector:  collector,
		scanner:    scanner,
		inferencer: topology.NewInferencer(logger),
		store:      store,
		bus:        bus,
		log:        logger,
		settings:   settings,
		trigger:    make(chan struct{}, 1),
		reloaded:   make(chan struct{}, 1),
	}
}

// UpdateSettings swaps the discovery knobs and nudges the run loop so a
// changed interval takes effect
func (d *Discovery) UpdateSettings(s Settings) {
	d.mu.Lock()
	d.settings = s
	d.mu.Unlock()

	select {
	case d.reloaded <- struct{}{}:
	default:
	}

	d.publish(Event{Type: EventConfigReloaded, Payload: map[string]interface{}{
		"hosts":    len(s.Hosts),
		"interval": s.Interval.String(),
	}})
}

func (d *Discovery) snapshot() Settings {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.settings
}

// Discover runs one collect-and-infer pass over the fleet and persists
// the result. With no hosts configured it seeds the fleet from a subnet
// scan first. Unreachable hosts are dropped, so an empty topology is a
// valid outcome, not an error.
func (d *Discovery) Discover(ctx context.Context) (*domain.DiscoveryRun, error) {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return nil, ErrRunInProgress
	}
	d.running = true
	settings := d.settings
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		d.running = false
		d.mu.Unlock()
	}()

	fleet := settings.Hosts
	if len(fleet) == 0 && d.scanner != nil {
		seeded, err := d.Seed(ctx)
		if err != nil {
			d.log.Warn("seed scan failed, running with empty fleet", "error", err)
		} else {
			fleet = seeded
		}
	}

	started := time.Now()
	d.log.Info("discovery run started", "hosts", len(fleet))
	d.publish(Event{Type: EventDiscoveryStarted, Payload: map[string]interface{}{
		"hosts_queried": len(fleet),
	}})

	captures := d.collector.Collect(ctx, fleet)
	links := d.inferencer.Links(captures)

	hosts := make([]string, 0, len(captures))
	for _, capture := range captures {
		hosts = append(hosts, capture.Host)
	}

	run := &domain.DiscoveryRun{
		ID:           uuid.NewString(),
		StartedAt:    started,
		FinishedAt:   time.Now(),
		HostsQueried: len(fleet),
		Hosts:        hosts,
		Links:        links,
	}

	if err := d.store.SaveRun(ctx, run); err != nil {
		d.publish(Event{Type: EventDiscoveryFailed, Payload: map[string]string{
			"error": err.Error(),
		}})
		return nil, fmt.Errorf("save run: %w", err)
	}

	if pruned, err := d.store.PruneRuns(ctx, settings.KeepRuns); err != nil {
		d.log.Warn("failed to prune old runs", "error", err)
	} else if pruned > 0 {
		d.log.Debug("pruned old runs", "count", pruned)
	}

	if settings.Artifact != "" {
		if err := d.writeArtifact(run, settings.Artifact); err != nil {
			d.log.Warn("failed to write artifact", "path", settings.Artifact, "error", err)
		}
	}

	d.log.Info("discovery run complete", "run_id", run.ID,
		"hosts_up", len(hosts), "links", len(links),
		"elapsed", run.FinishedAt.Sub(run.StartedAt))
	d.publish(Event{Type: EventDiscoveryCompleted, Payload: run.Summary()})

	return run, nil
}

// Seed sweeps the configured subnet and returns candidate device
// addresses with the SSH port open
func (d *Discovery) Seed(ctx context.Context) ([]string, error) {
	if d.scanner == nil {
		return nil, errors.New("no scanner configured")
	}

	hosts, err := d.scanner.Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("seed scan: %w", err)
	}

	d.publish(Event{Type: EventScanCompleted, Payload: map[string]interface{}{
		"hosts": hosts,
	}})
	return hosts, nil
}

// Trigger queues a discovery run on the run loop. It reports whether the
// request was queued; false means one is already pending.
func (d *Discovery) Trigger() bool {
	select {
	case d.trigger <- struct{}{}:
		return true
	default:
		return false
	}
}

// Run drives periodic and on-demand discovery until ctx is canceled.
// With a zero interval only triggered runs happen.
func (d *Discovery) Run(ctx context.Context) error {
	var ticker *time.Ticker
	var tick <-chan time.Time

	resetTicker := func() {
		if ticker != nil {
			ticker.Stop()
			ticker = nil
			tick = nil
		}
		if interval := d.snapshot().Interval; interval > 0 {
			ticker = time.NewTicker(interval)
			tick = ticker.C
		}
	}

	resetTicker()
	defer func() {
		if ticker != nil {
			ticker.Stop()
		}
	}()

	// Run immediately when polling is on rather than waiting a full
	// interval for the first topology
	if tick != nil {
		d.runOnce(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-tick:
			d.runOnce(ctx)
		case <-d.trigger:
			d.runOnce(ctx)
		case <-d.reloaded:
			resetTicker()
		}
	}
}

func (d *Discovery) runOnce(ctx context.Context) {
	if _, err := d.Discover(ctx); err != nil && !errors.Is(err, ErrRunInProgress) {
		d.log.Error("discovery run failed", "error", err)
	}
}

// writeArtifact writes the canonical JSON document to path
func (d *Discovery) writeArtifact(run *domain.DiscoveryRun, path string) error {
	var buf bytes.Buffer
	if err := codec.NewJSONCodec().Export(run.Graph(), &buf); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

func (d *Discovery) publish(event Event) {
	if d.bus != nil {
		d.bus.Publish(event)
	}
}
