package devicesource

import (
	"context"

	"netatlas/topo-core/internal/store"
	"netatlas/topo-core/internal/topology"
)

// Postgres reads the inventory from a co-located devices table.
type Postgres struct {
	q *store.Queries
}

func NewPostgres(q *store.Queries) *Postgres {
	return &Postgres{q: q}
}

func (p *Postgres) Name() string { return "postgres" }

func (p *Postgres) Devices(ctx context.Context) ([]topology.Device, error) {
	rows, err := p.q.ListDevices(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]topology.Device, 0, len(rows))
	for _, r := range rows {
		d := topology.Device{
			ID:     r.ID,
			Type:   r.Type,
			Status: r.Status,
		}
		if r.Name != nil {
			d.Name = *r.Name
		}
		if r.Addr != nil {
			d.Addr = *r.Addr
		}
		out = append(out, d)
	}
	return out, nil
}
