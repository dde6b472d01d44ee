package refresher

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"netatlas/topo-core/internal/devicesource"
	"netatlas/topo-core/internal/metrics"
	"netatlas/topo-core/internal/notify"
	"netatlas/topo-core/internal/probe"
	"netatlas/topo-core/internal/topology"
)

type State string

const (
	// StateLoading is the initial state before the first refresh completes.
	StateLoading State = "loading"
	// StateError means no refresh has ever succeeded.
	StateError State = "error"
	// StateReady means a graph is available; it may be stale after a failed
	// refresh.
	StateReady State = "ready"
)

// Snapshot is the consumer-facing view of the refresher.
type Snapshot struct {
	State       State
	Graph       topology.Graph
	Stale       bool
	GeneratedAt time.Time
	LastError   string
	Refreshes   uint64
	Failures    uint64
	Skipped     uint64
}

type Options struct {
	Interval time.Duration // refresh period, default 30s
	Timeout  time.Duration // per-refresh budget, default 10s
	Synth    topology.Options
}

type Refresher struct {
	log      zerolog.Logger
	src      devicesource.Source
	notifier notify.Notifier
	prober   *probe.Prober
	metrics  *metrics.Metrics
	interval time.Duration
	timeout  time.Duration
	synth    topology.Options

	inFlight atomic.Bool

	mu        sync.RWMutex
	snap      Snapshot
	refreshes uint64
	failures  uint64
	skipped   uint64
}

func New(log zerolog.Logger, src devicesource.Source, notifier notify.Notifier, prober *probe.Prober, m *metrics.Metrics, opts Options) *Refresher {
	interval := opts.Interval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if notifier == nil {
		notifier = notify.Log{Logger: log}
	}

	return &Refresher{
		log:      log,
		src:      src,
		notifier: notifier,
		prober:   prober,
		metrics:  m,
		interval: interval,
		timeout:  timeout,
		synth:    opts.Synth,
		snap:     Snapshot{State: StateLoading, Graph: topology.Graph{Nodes: []topology.Node{}, Links: []topology.Link{}}},
	}
}

// Run refreshes immediately, then on every interval tick until ctx is
// canceled. A tick that lands while a refresh is still in flight is skipped
// rather than racing it.
func (r *Refresher) Run(ctx context.Context) {
	if r == nil || r.src == nil {
		return
	}

	_ = r.RefreshNow(ctx)

	timer := time.NewTimer(r.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		if err := r.RefreshNow(ctx); err == ErrRefreshInFlight {
			r.mu.Lock()
			r.skipped++
			r.snap.Skipped = r.skipped
			r.mu.Unlock()
			r.metrics.IncSkippedTick()
			r.log.Debug().Msg("refresh tick skipped, previous still running")
		}

		timer.Reset(r.interval)
	}
}

// ErrRefreshInFlight is returned when a refresh is requested while another is
// still running.
var ErrRefreshInFlight = errors.New("refresh already in flight")

// RefreshNow runs a single refresh cycle. On fetch failure the previous graph
// is kept, marked stale, and the failure is reported via the notifier; the
// loop is expected to try again next tick.
func (r *Refresher) RefreshNow(ctx context.Context) error {
	if !r.inFlight.CompareAndSwap(false, true) {
		return ErrRefreshInFlight
	}
	defer r.inFlight.Store(false)

	fetchCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	devices, err := r.src.Devices(fetchCtx)
	if err == nil && r.prober.Enabled() {
		devices = r.prober.Enrich(fetchCtx, devices)
	}
	r.metrics.ObserveRefresh(time.Since(start), err)

	// The consumer may have been torn down while the fetch ran; drop the
	// result instead of publishing into a dead snapshot.
	if ctx.Err() != nil {
		return ctx.Err()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.refreshes++
	r.snap.Refreshes = r.refreshes

	if err != nil {
		r.failures++
		r.snap.Failures = r.failures
		r.snap.LastError = err.Error()
		if r.snap.State == StateLoading || r.snap.State == StateError {
			r.snap.State = StateError
		} else {
			r.snap.Stale = true
		}
		r.log.Warn().Err(err).Str("source", r.src.Name()).Msg("device fetch failed")

		r.notifier.Notify(ctx, "Topology refresh failed",
			"could not fetch devices from "+r.src.Name()+": "+err.Error(),
			notify.SeverityError)
		return err
	}

	g := topology.Synthesize(devices, r.synth)
	r.snap.Graph = g
	r.snap.State = StateReady
	r.snap.Stale = false
	r.snap.LastError = ""
	r.snap.GeneratedAt = time.Now()
	r.metrics.SetGraphSize(len(g.Nodes), len(g.Links))

	r.log.Info().
		Str("source", r.src.Name()).
		Int("devices", len(devices)).
		Int("nodes", len(g.Nodes)).
		Int("links", len(g.Links)).
		Int64("duration_ms", time.Since(start).Milliseconds()).
		Msg("topology refreshed")
	return nil
}

// Snapshot returns the current state under a read lock. The graph value is
// shared; callers must not mutate it.
func (r *Refresher) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snap
}
