package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX matches the minimal interface needed from pgxpool.Pool or pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, optionsAndArgs ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, optionsAndArgs ...any) pgx.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

func (q *Queries) WithTx(tx pgx.Tx) *Queries {
	return &Queries{db: tx}
}

// DeviceRow mirrors the devices table.
type DeviceRow struct {
	ID        string
	Name      *string
	Type      string
	Status    string
	Addr      *string
	UpdatedAt time.Time
}

const listDevices = `-- name: ListDevices :many
SELECT id, name, type, status, addr, updated_at
FROM devices
ORDER BY created_at ASC
`

func (q *Queries) ListDevices(ctx context.Context) ([]DeviceRow, error) {
	rows, err := q.db.Query(ctx, listDevices)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []DeviceRow
	for rows.Next() {
		var i DeviceRow
		if err := rows.Scan(&i.ID, &i.Name, &i.Type, &i.Status, &i.Addr, &i.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getDevice = `-- name: GetDevice :one
SELECT id, name, type, status, addr, updated_at
FROM devices
WHERE id = $1
`

func (q *Queries) GetDevice(ctx context.Context, id string) (DeviceRow, error) {
	row := q.db.QueryRow(ctx, getDevice, id)
	var i DeviceRow
	err := row.Scan(&i.ID, &i.Name, &i.Type, &i.Status, &i.Addr, &i.UpdatedAt)
	return i, err
}

const upsertDevice = `-- name: UpsertDevice :one
INSERT INTO devices (id, name, type, status, addr)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (id) DO UPDATE SET
  name = COALESCE(EXCLUDED.name, devices.name),
  type = EXCLUDED.type,
  status = EXCLUDED.status,
  addr = COALESCE(EXCLUDED.addr, devices.addr),
  updated_at = now()
RETURNING id, name, type, status, addr, updated_at
`

type UpsertDeviceParams struct {
	ID     string
	Name   *string
	Type   string
	Status string
	Addr   *string
}

func (q *Queries) UpsertDevice(ctx context.Context, arg UpsertDeviceParams) (DeviceRow, error) {
	row := q.db.QueryRow(ctx, upsertDevice, arg.ID, arg.Name, arg.Type, arg.Status, arg.Addr)
	var i DeviceRow
	err := row.Scan(&i.ID, &i.Name, &i.Type, &i.Status, &i.Addr, &i.UpdatedAt)
	return i, err
}

const setDeviceStatus = `-- name: SetDeviceStatus :execrows
UPDATE devices
SET status = $2, updated_at = now()
WHERE id = $1
`

func (q *Queries) SetDeviceStatus(ctx context.Context, id, status string) (int64, error) {
	tag, err := q.db.Exec(ctx, setDeviceStatus, id, status)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
