package devicesource

import (
	"context"

	"netatlas/topo-core/internal/topology"
)

// Source supplies the inventory snapshot each refresh cycle consumes. A
// failing fetch must not crash the refresh loop; the caller keeps its prior
// snapshot and retries next tick.
type Source interface {
	Devices(ctx context.Context) ([]topology.Device, error)
	Name() string
}

// Static serves a fixed, caller-supplied device list (push mode).
type Static struct {
	List []topology.Device
}

func (s Static) Devices(context.Context) ([]topology.Device, error) {
	out := make([]topology.Device, len(s.List))
	copy(out, s.List)
	return out, nil
}

func (s Static) Name() string { return "static" }
