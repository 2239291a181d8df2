package adapter

import (
	"context"
	"log/slog"
	"sync"

	"switchmap/internal/domain"
)

// CollectorConfig controls fan-out behavior
type CollectorConfig struct {
	// MaxConcurrent limits parallel device queries
	MaxConcurrent int
}

// DefaultCollectorConfig returns sensible defaults
func DefaultCollectorConfig() CollectorConfig {
	return CollectorConfig{
		MaxConcurrent: 10,
	}
}

// Collector fans device queries out across a bounded worker pool and
// gathers the captures that succeed. A host that fails is logged and
// dropped; the remaining hosts still contribute to the result.
type Collector struct {
	querier DeviceQuerier
	config  CollectorConfig
	log     *slog.Logger
}

// NewCollector creates a collector that queries via the given querier
func NewCollector(querier DeviceQuerier, config CollectorConfig, logger *slog.Logger) *Collector {
	if config.MaxConcurrent <= 0 {
		config.MaxConcurrent = 10
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Collector{
		querier: querier,
		config:  config,
		log:     logger,
	}
}

// Collect queries every host concurrently and returns the successful
// captures in completion order. It returns only after every host has
// either produced a capture or failed.
func (c *Collector) Collect(ctx context.Context, hosts []string) []domain.DeviceCapture {
	if len(hosts) == 0 {
		return []domain.DeviceCapture{}
	}

	workCh := make(chan string, len(hosts))
	resultCh := make(chan *domain.DeviceCapture, len(hosts))

	workers := c.config.MaxConcurrent
	if workers > len(hosts) {
		workers = len(hosts)
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for host := range workCh {
				capture, err := c.querier.Query(ctx, host)
				if err != nil {
					c.log.Warn("device query failed", "host", host, "error", err)
					resultCh <- nil
					continue
				}
				resultCh <- capture
			}
		}()
	}

	// Queue all work
	for _, host := range hosts {
		workCh <- host
	}
	close(workCh)

	// Close results when all workers finish
	go func() {
		wg.Wait()
		close(resultCh)
	}()

	captures := make([]domain.DeviceCapture, 0, len(hosts))
	for capture := range resultCh {
		if capture == nil {
			continue
		}
		captures = append(captures, *capture)
	}

	return captures
}
