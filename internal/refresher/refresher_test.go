package refresher

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"netatlas/topo-core/internal/notify"
	"netatlas/topo-core/internal/topology"
)

type fakeSource struct {
	mu      sync.Mutex
	devices []topology.Device
	err     error
	block   chan struct{}
	calls   int
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) Devices(ctx context.Context) ([]topology.Device, error) {
	f.mu.Lock()
	f.calls++
	block := f.block
	devices, err := f.devices, f.err
	f.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return devices, err
}

type recordingNotifier struct {
	mu    sync.Mutex
	calls []string
}

func (r *recordingNotifier) Notify(_ context.Context, title, _ string, _ notify.Severity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, title)
}

func (r *recordingNotifier) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func TestRefresher_StartsLoading(t *testing.T) {
	r := New(zerolog.Nop(), &fakeSource{}, nil, nil, nil, Options{})
	snap := r.Snapshot()
	if snap.State != StateLoading {
		t.Fatalf("expected loading, got %s", snap.State)
	}
	if len(snap.Graph.Nodes) != 0 {
		t.Fatalf("expected empty initial graph")
	}
}

func TestRefresher_SuccessfulRefresh(t *testing.T) {
	src := &fakeSource{devices: []topology.Device{
		{ID: "gw", Type: "router", Status: "online"},
		{ID: "sw", Type: "switch", Status: "online"},
	}}
	r := New(zerolog.Nop(), src, nil, nil, nil, Options{})

	if err := r.RefreshNow(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	snap := r.Snapshot()
	if snap.State != StateReady {
		t.Fatalf("expected ready, got %s", snap.State)
	}
	if snap.Stale {
		t.Fatalf("fresh snapshot marked stale")
	}
	if len(snap.Graph.Nodes) != 2 || len(snap.Graph.Links) != 1 {
		t.Fatalf("unexpected graph: %d nodes %d links", len(snap.Graph.Nodes), len(snap.Graph.Links))
	}
	if snap.GeneratedAt.IsZero() {
		t.Fatalf("expected generated-at to be set")
	}
}

func TestRefresher_FailureKeepsStaleGraphAndNotifies(t *testing.T) {
	src := &fakeSource{devices: []topology.Device{{ID: "gw", Type: "router", Status: "online"}}}
	rec := &recordingNotifier{}
	r := New(zerolog.Nop(), src, rec, nil, nil, Options{})

	if err := r.RefreshNow(context.Background()); err != nil {
		t.Fatalf("first refresh: %v", err)
	}

	src.mu.Lock()
	src.err = errors.New("inventory unreachable")
	src.mu.Unlock()

	if err := r.RefreshNow(context.Background()); err == nil {
		t.Fatalf("expected fetch error")
	}

	snap := r.Snapshot()
	if snap.State != StateReady {
		t.Fatalf("expected ready with stale data, got %s", snap.State)
	}
	if !snap.Stale {
		t.Fatalf("expected stale flag after failure")
	}
	if len(snap.Graph.Nodes) != 1 {
		t.Fatalf("expected previous graph retained, got %d nodes", len(snap.Graph.Nodes))
	}
	if snap.LastError == "" {
		t.Fatalf("expected last error recorded")
	}
	if rec.count() != 1 {
		t.Fatalf("expected one notification, got %d", rec.count())
	}
}

func TestRefresher_FirstFailureIsErrorState(t *testing.T) {
	src := &fakeSource{err: errors.New("boom")}
	r := New(zerolog.Nop(), src, &recordingNotifier{}, nil, nil, Options{})

	_ = r.RefreshNow(context.Background())

	snap := r.Snapshot()
	if snap.State != StateError {
		t.Fatalf("expected error state with no prior data, got %s", snap.State)
	}
	if snap.Failures != 1 {
		t.Fatalf("expected one failure, got %d", snap.Failures)
	}
}

func TestRefresher_RecoveryClearsStale(t *testing.T) {
	src := &fakeSource{err: errors.New("boom")}
	r := New(zerolog.Nop(), src, &recordingNotifier{}, nil, nil, Options{})

	_ = r.RefreshNow(context.Background())

	src.mu.Lock()
	src.err = nil
	src.devices = []topology.Device{{ID: "gw", Type: "router", Status: "online"}}
	src.mu.Unlock()

	if err := r.RefreshNow(context.Background()); err != nil {
		t.Fatalf("recovery refresh: %v", err)
	}

	snap := r.Snapshot()
	if snap.State != StateReady || snap.Stale || snap.LastError != "" {
		t.Fatalf("expected clean ready state, got %+v", snap)
	}
}

func TestRefresher_InFlightGuard(t *testing.T) {
	block := make(chan struct{})
	src := &fakeSource{block: block, devices: []topology.Device{{ID: "gw", Status: "online"}}}
	r := New(zerolog.Nop(), src, nil, nil, nil, Options{})

	done := make(chan error, 1)
	go func() { done <- r.RefreshNow(context.Background()) }()

	// Wait for the first refresh to be in flight, then race a second one.
	deadline := time.After(2 * time.Second)
	for {
		src.mu.Lock()
		started := src.calls > 0
		src.mu.Unlock()
		if started {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("first refresh never started")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	if err := r.RefreshNow(context.Background()); err != ErrRefreshInFlight {
		t.Fatalf("expected ErrRefreshInFlight, got %v", err)
	}

	close(block)
	if err := <-done; err != nil {
		t.Fatalf("blocked refresh failed: %v", err)
	}
}

func TestRefresher_TeardownDiscardsResult(t *testing.T) {
	src := &fakeSource{devices: []topology.Device{{ID: "gw", Status: "online"}}}
	r := New(zerolog.Nop(), src, nil, nil, nil, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := r.RefreshNow(ctx); err == nil {
		t.Fatalf("expected context error")
	}
	if snap := r.Snapshot(); snap.State != StateLoading {
		t.Fatalf("expected snapshot untouched after teardown, got %s", snap.State)
	}
}

func TestRefresher_RunStopsOnCancel(t *testing.T) {
	src := &fakeSource{devices: []topology.Device{{ID: "gw", Status: "online"}}}
	r := New(zerolog.Nop(), src, nil, nil, nil, Options{Interval: 10 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(stopped)
	}()

	deadline := time.After(2 * time.Second)
	for r.Snapshot().Refreshes < 2 {
		select {
		case <-deadline:
			t.Fatalf("refresher never ticked")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	cancel()
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatalf("Run did not stop after cancel")
	}
}
