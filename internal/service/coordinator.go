package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"netinv/internal/adapter"
	"netinv/internal/domain"
	"netinv/internal/repository"
)

// ErrAlreadyScanning is returned when a scan is requested while one is in
// flight. Callers should read the cache instead of retrying the trigger.
var ErrAlreadyScanning = errors.New("scan already in progress")

// CooldownError is returned when the cooldown window has not elapsed
type CooldownError struct {
	Remaining int
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("cooldown active, %d seconds remaining", e.Remaining)
}

// AllFailedError is returned when every enabled source failed. No snapshot
// is published in that case; the cache keeps its previous value.
type AllFailedError struct {
	Failures []domain.SourceFailure
}

func (e *AllFailedError) Error() string {
	return fmt.Sprintf("all %d sources failed", len(e.Failures))
}

// Coordinator owns the scan state machine. It is the only writer of scan
// state, the result cache, and the history store; any number of readers may
// call Status and Latest concurrently without blocking behind a scan.
type Coordinator struct {
	mu       sync.Mutex
	scanning bool

	adapters      []adapter.Adapter
	cooldown      *Cooldown
	cache         *ResultCache
	history       repository.History
	events        *EventBus
	sourceTimeout time.Duration
	now           func() time.Time
}

// NewCoordinator creates the scan coordinator. Adapters fan out in the
// order given here and results merge back in the same order. history may
// be nil when history tracking is disabled.
func NewCoordinator(
	adapters []adapter.Adapter,
	cooldown *Cooldown,
	cache *ResultCache,
	history repository.History,
	events *EventBus,
	sourceTimeout time.Duration,
) *Coordinator {
	return &Coordinator{
		adapters:      adapters,
		cooldown:      cooldown,
		cache:         cache,
		history:       history,
		events:        events,
		sourceTimeout: sourceTimeout,
		now:           time.Now,
	}
}

// ReplaceAdapters swaps the source set for future scans. An in-flight
// scan keeps the adapter slice it started with.
func (c *Coordinator) ReplaceAdapters(adapters []adapter.Adapter) {
	c.mu.Lock()
	c.adapters = adapters
	c.mu.Unlock()
	log.Printf("source adapters replaced (%d registered)", len(adapters))
}

// RequestScan attempts to run a full inventory scan. It returns the merged
// snapshot, or ErrAlreadyScanning, *CooldownError, or *AllFailedError. The
// call is synchronous: it returns only after every source has answered or
// timed out. Cancelling ctx does not abort a started scan; only the
// per-source timeout bounds the fetches.
func (c *Coordinator) RequestScan(ctx context.Context, trigger domain.ScanTrigger) (*domain.Snapshot, error) {
	c.mu.Lock()
	if c.scanning {
		c.mu.Unlock()
		log.Printf("scan request rejected: scan already in progress")
		return nil, ErrAlreadyScanning
	}
	if !c.cooldown.CanScan() {
		remaining := c.cooldown.Remaining()
		c.mu.Unlock()
		log.Printf("scan request rejected: cooldown active (%ds remaining)", remaining)
		return nil, &CooldownError{Remaining: remaining}
	}
	c.scanning = true
	adapters := c.adapters
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.scanning = false
		c.mu.Unlock()
	}()

	// A started scan runs to completion. The trigger's context must not
	// abort the fetches: an HTTP caller that disconnects mid-scan would
	// otherwise turn a healthy scan into a total failure.
	scanCtx := context.WithoutCancel(ctx)

	log.Printf("starting inventory scan (trigger=%s)", trigger)
	c.events.Publish(Event{Type: EventScanStarted, Payload: ScanStartedPayload{Status: "scanning"}})

	enabled := make([]adapter.Adapter, 0, len(adapters))
	for _, a := range adapters {
		if a.Enabled() {
			enabled = append(enabled, a)
		}
	}

	results := make([]*adapter.SourceResult, len(enabled))
	fetchErrs := make([]error, len(enabled))

	// Fan-out: one worker per enabled source, each independently bounded.
	// A failing source must not cancel the others, so errors stay in the
	// per-slot slice and the group itself never fails.
	var g errgroup.Group
	for i, a := range enabled {
		g.Go(func() error {
			fctx, cancel := context.WithTimeout(scanCtx, c.sourceTimeout)
			defer cancel()

			res, err := a.Fetch(fctx)
			if err != nil {
				fetchErrs[i] = err
				return nil
			}
			results[i] = res
			return nil
		})
	}
	g.Wait()

	snapshot, failures, succeeded := c.merge(enabled, results, fetchErrs)

	if len(enabled) > 0 && succeeded == 0 {
		err := &AllFailedError{Failures: failures}
		log.Printf("scan failed: %v", err)
		c.events.Publish(Event{Type: EventScanFailed, Payload: ScanFailedPayload{Error: err.Error()}})
		return nil, err
	}

	c.cache.Set(snapshot)
	c.appendHistory(scanCtx, trigger, snapshot)
	c.cooldown.Record(snapshot.TakenAt)

	summary := snapshot.Summary()
	log.Printf("scan completed: %d clients, %d containers, %d sources degraded",
		summary.TotalClients, summary.TotalContainers, len(failures))
	c.events.Publish(Event{Type: EventScanCompleted, Payload: ScanCompletedPayload{
		Timestamp:       snapshot.TakenAt,
		TotalClients:    summary.TotalClients,
		TotalContainers: summary.TotalContainers,
		CanRefresh:      c.cooldown.CanScan(),
	}})

	return snapshot, nil
}

// merge concatenates per-source results in registration order. No
// deduplication happens across sources: a device visible to two sources
// appears once per source.
func (c *Coordinator) merge(
	enabled []adapter.Adapter,
	results []*adapter.SourceResult,
	fetchErrs []error,
) (*domain.Snapshot, []domain.SourceFailure, int) {
	snapshot := &domain.Snapshot{}
	var failures []domain.SourceFailure
	succeeded := 0

	for i, a := range enabled {
		if err := fetchErrs[i]; err != nil {
			log.Printf("source %s failed: %v", a.Name(), err)
			failures = append(failures, domain.SourceFailure{
				Source: a.Name(),
				Error:  err.Error(),
			})
			continue
		}

		succeeded++
		res := results[i]
		if res == nil {
			continue
		}
		snapshot.NetworkDevices = append(snapshot.NetworkDevices, res.NetworkDevices...)
		snapshot.WirelessClients = append(snapshot.WirelessClients, res.WirelessClients...)
		snapshot.WirelessNetworks = append(snapshot.WirelessNetworks, res.WirelessNetworks...)
		snapshot.AccessPoints = append(snapshot.AccessPoints, res.AccessPoints...)
		snapshot.Containers = append(snapshot.Containers, res.Containers...)
		snapshot.VirtualMachines = append(snapshot.VirtualMachines, res.VirtualMachines...)
	}

	snapshot.TakenAt = c.now()
	snapshot.PartialFailures = failures
	return snapshot, failures, succeeded
}

// appendHistory writes the scan summary and metric samples. History write
// failures are logged and swallowed: the snapshot is already published and
// cache correctness takes priority over history durability.
func (c *Coordinator) appendHistory(ctx context.Context, trigger domain.ScanTrigger, snapshot *domain.Snapshot) {
	if c.history == nil {
		return
	}

	entry := &domain.ScanHistoryEntry{
		Timestamp: snapshot.TakenAt,
		ScanType:  trigger,
		Summary:   snapshot.Summary(),
	}
	if _, err := c.history.AppendScan(ctx, entry); err != nil {
		log.Printf("failed to save scan history: %v", err)
		return
	}

	if err := c.history.AppendMetrics(ctx, metricSamples(snapshot)); err != nil {
		log.Printf("failed to save metric samples: %v", err)
	}
}

// metricSamples derives the per-scan metric points for trend charts
func metricSamples(snapshot *domain.Snapshot) []domain.MetricSample {
	at := snapshot.TakenAt
	summary := snapshot.Summary()

	running := 0
	for _, c := range snapshot.Containers {
		if c.State == "running" {
			running++
		}
	}

	samples := []domain.MetricSample{
		{Name: domain.MetricClientCount, Timestamp: at, Value: float64(summary.TotalClients)},
		{Name: domain.MetricContainerCount, Timestamp: at, Value: float64(summary.TotalContainers)},
		{Name: domain.MetricNetworkCount, Timestamp: at, Value: float64(summary.TotalNetworks)},
		{Name: domain.MetricAPCount, Timestamp: at, Value: float64(summary.TotalAPs)},
		{Name: domain.MetricVMCount, Timestamp: at, Value: float64(summary.TotalVMs)},
		{Name: domain.MetricContainersRunning, Timestamp: at, Value: float64(running)},
		{Name: domain.MetricContainersStopped, Timestamp: at, Value: float64(summary.TotalContainers - running)},
	}

	var sum, n int
	for _, cl := range snapshot.WirelessClients {
		if !cl.IsWired && cl.RSSI != 0 {
			sum += cl.RSSI
			n++
		}
	}
	if n > 0 {
		samples = append(samples, domain.MetricSample{
			Name:      domain.MetricAvgWifiSignal,
			Timestamp: at,
			Value:     float64(sum) / float64(n),
		})
	}

	return samples
}

// Status returns a point-in-time view of the scan state machine. It never
// blocks behind an in-flight scan.
func (c *Coordinator) Status() domain.ScanStatus {
	c.mu.Lock()
	scanning := c.scanning
	c.mu.Unlock()

	state := domain.ScanStateIdle
	if scanning {
		state = domain.ScanStateScanning
	}

	status := domain.ScanStatus{
		State:             state,
		CooldownSeconds:   c.cooldown.WindowSeconds(),
		CanScan:           c.cooldown.CanScan(),
		CooldownRemaining: c.cooldown.Remaining(),
	}
	if last := c.cooldown.LastScan(); !last.IsZero() {
		t := last
		status.LastScanAt = &t
	}
	return status
}

// Latest returns the cached snapshot and its age in seconds, or nil if no
// scan has ever succeeded.
func (c *Coordinator) Latest() (*domain.Snapshot, int) {
	return c.cache.Get()
}

// NextScanAvailable returns when the cooldown window reopens, or zero time
// if scanning is allowed now.
func (c *Coordinator) NextScanAvailable() time.Time {
	last := c.cooldown.LastScan()
	if last.IsZero() || c.cooldown.CanScan() {
		return time.Time{}
	}
	return last.Add(time.Duration(c.cooldown.WindowSeconds()) * time.Second)
}
