package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"hitqueue/internal/api"
	"hitqueue/internal/config"
	"hitqueue/internal/hit"
	"hitqueue/internal/logging"
	"hitqueue/internal/metrics"
	"hitqueue/internal/preflight"
	"hitqueue/internal/privacy"
	"hitqueue/internal/queue"
	"hitqueue/internal/scheduler"
)

// ErrPrivacyBlocked is returned by Resume while the privacy status does not
// permit delivery.
var ErrPrivacyBlocked = errors.New("privacy status does not permit delivery")

// Daemon owns the store, processor and scheduler for one queue.
type Daemon struct {
	cfg       *config.Config
	logger    *slog.Logger
	store     *queue.Store
	processor *hit.HTTPProcessor
	scheduler *scheduler.Scheduler
	metrics   *metrics.Collector
	api       *apiServer

	mu      sync.Mutex
	privacy privacy.Status

	// lifecycle serializes Start and Stop and guards cancel.
	lifecycle sync.Mutex
	running   atomic.Bool
	cancel    context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running     bool
	PID         int
	Privacy     privacy.Status
	Endpoint    string
	QueueDBPath string
	APIAddress  string
	StoreResets int
	Scheduler   scheduler.Summary
}

// New opens the queue store and builds the processor and scheduler. Delivery
// stays suspended until Start applies the configured privacy status.
func New(cfg *config.Config, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil {
		return nil, errors.New("daemon requires config")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	var collector *metrics.Collector
	if cfg.Metrics.Enabled {
		collector = metrics.NewCollector(cfg.Queue.Name)
	}

	store, err := queue.OpenConfig(cfg,
		queue.WithLogger(logging.NewComponentLogger(logger, "queue")),
		queue.WithResetHook(func(string) { collector.RecordStoreReset() }),
	)
	if err != nil {
		return nil, fmt.Errorf("open queue store: %w", err)
	}

	processor, err := hit.NewHTTPProcessorFromConfig(cfg, logger)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("build hit processor: %w", err)
	}

	sched, err := scheduler.New(store, processor,
		scheduler.WithLogger(logger),
		scheduler.WithMetrics(collector),
		scheduler.WithName(cfg.Queue.Name),
	)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("build scheduler: %w", err)
	}

	d := &Daemon{
		cfg:       cfg,
		logger:    logging.NewComponentLogger(logger, "daemon"),
		store:     store,
		processor: processor,
		scheduler: sched,
		metrics:   collector,
		privacy:   privacy.Unknown,
	}
	d.api = newAPIServer(cfg, d, logger)
	collector.SetQueueDepth(store.Count(context.Background()))
	return d, nil
}

// Start applies the configured privacy status and starts the HTTP API.
func (d *Daemon) Start(ctx context.Context) error {
	d.lifecycle.Lock()
	defer d.lifecycle.Unlock()
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	status, err := privacy.Parse(d.cfg.Privacy.DefaultStatus)
	if err != nil {
		return fmt.Errorf("privacy.default_status: %w", err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	if err := d.api.start(runCtx); err != nil {
		cancel()
		return fmt.Errorf("start api server: %w", err)
	}
	d.cancel = cancel
	d.running.Store(true)

	d.SetPrivacy(status)
	d.logger.Info("hitqueue daemon started",
		logging.String("endpoint", d.processor.Endpoint()),
		logging.String("queue_db", d.store.Path()),
		logging.String("privacy_status", status.String()),
	)
	go d.runPreflight(runCtx)
	return nil
}

// runPreflight logs failed readiness checks. Startup never waits on it.
func (d *Daemon) runPreflight(ctx context.Context) {
	for _, r := range preflight.Failed(preflight.RunAll(ctx, d.cfg)) {
		if ctx.Err() != nil {
			return
		}
		logging.WarnWithContext(d.logger, "preflight check failed", "preflight_failed",
			logging.String("check", r.Name),
			logging.String("detail", r.Detail),
			logging.String(logging.FieldImpact, "hits stay queued until the problem is fixed"),
		)
	}
}

// Stop suspends delivery and shuts down the HTTP API. Stored hits remain.
func (d *Daemon) Stop() {
	d.lifecycle.Lock()
	defer d.lifecycle.Unlock()
	if !d.running.Load() {
		return
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.api.stop()
	d.scheduler.Suspend()
	d.running.Store(false)
	d.logger.Info("hitqueue daemon stopped")
}

// Close stops the daemon and releases the store.
func (d *Daemon) Close() error {
	d.Stop()
	return d.scheduler.Close()
}

// Enqueue persists payload as a new hit.
func (d *Daemon) Enqueue(ctx context.Context, payload string) (queue.Record, error) {
	return d.scheduler.Enqueue(ctx, payload)
}

// Clear drops every stored hit.
func (d *Daemon) Clear() {
	d.scheduler.Clear()
}

// Suspend pauses delivery without touching stored hits.
func (d *Daemon) Suspend() {
	d.scheduler.Suspend()
}

// Resume restarts delivery after Suspend. It refuses unless the privacy status
// is opted in.
func (d *Daemon) Resume() error {
	if current := d.Privacy(); current != privacy.OptedIn {
		return fmt.Errorf("%w: %s", ErrPrivacyBlocked, current)
	}
	d.scheduler.BeginProcessing()
	return nil
}

// SetPrivacy records status and applies the consent policy to the scheduler.
func (d *Daemon) SetPrivacy(status privacy.Status) {
	d.mu.Lock()
	d.privacy = status
	d.mu.Unlock()
	d.scheduler.HandlePrivacyChange(status)
}

// Privacy reports the last applied privacy status.
func (d *Daemon) Privacy() privacy.Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.privacy
}

// Peek returns up to n hits from the head of the queue without removing them.
func (d *Daemon) Peek(ctx context.Context, n int) []queue.Record {
	return d.store.Peek(ctx, n)
}

// DatabaseHealth returns detailed database diagnostics.
func (d *Daemon) DatabaseHealth(ctx context.Context) (queue.DatabaseHealth, error) {
	return d.store.CheckHealth(ctx)
}

// Metrics returns the collector, or nil when metrics are disabled.
func (d *Daemon) Metrics() *metrics.Collector {
	return d.metrics
}

// Status returns the current daemon status.
func (d *Daemon) Status() Status {
	return Status{
		Running:     d.running.Load(),
		PID:         os.Getpid(),
		Privacy:     d.Privacy(),
		Endpoint:    d.processor.Endpoint(),
		QueueDBPath: d.store.Path(),
		APIAddress:  d.api.address(),
		StoreResets: d.store.Resets(),
		Scheduler:   d.scheduler.Status(),
	}
}

// ToAPI converts Status for the HTTP API and IPC.
func (s Status) ToAPI() api.DaemonStatus {
	return api.DaemonStatus{
		Running:     s.Running,
		PID:         s.PID,
		Privacy:     s.Privacy.String(),
		Endpoint:    s.Endpoint,
		QueueDBPath: s.QueueDBPath,
		APIAddress:  s.APIAddress,
		StoreResets: s.StoreResets,
		Scheduler:   api.FromSummary(s.Scheduler),
	}
}
