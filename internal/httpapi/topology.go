package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"netatlas/topo-core/internal/config"
	"netatlas/topo-core/internal/icons"
	"netatlas/topo-core/internal/refresher"
	"netatlas/topo-core/internal/topology"
)

type topologyResponse struct {
	State       string         `json:"state"`
	Stale       bool           `json:"stale"`
	GeneratedAt *time.Time     `json:"generated_at,omitempty"`
	LastError   *string        `json:"last_error,omitempty"`
	Graph       topology.Graph `json:"graph"`
}

type topologyStatus struct {
	State     string  `json:"state"`
	Stale     bool    `json:"stale"`
	LastError *string `json:"last_error,omitempty"`
	Refreshes uint64  `json:"refreshes"`
	Failures  uint64  `json:"failures"`
	Skipped   uint64  `json:"skipped_ticks"`
}

type deviceView struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Type   string `json:"type"`
	Status string `json:"status"`
	Color  string `json:"color"`
	Icon   string `json:"icon,omitempty"`
}

func (h *Handler) ensureRefresher(w http.ResponseWriter) bool {
	if h.ref == nil {
		h.writeError(w, http.StatusServiceUnavailable, "unavailable", "topology refresher not running", nil)
		return false
	}
	return true
}

func (h *Handler) handleGetTopology(w http.ResponseWriter, r *http.Request) {
	if !h.ensureRefresher(w) {
		return
	}

	snap := h.ref.Snapshot()
	resp := topologyResponse{
		State: string(snap.State),
		Stale: snap.Stale,
		Graph: snap.Graph,
	}
	if !snap.GeneratedAt.IsZero() {
		t := snap.GeneratedAt
		resp.GeneratedAt = &t
	}
	if snap.LastError != "" {
		e := snap.LastError
		resp.LastError = &e
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleRefreshTopology(w http.ResponseWriter, r *http.Request) {
	if !h.ensureRefresher(w) {
		return
	}

	// Detached from the request context: the trigger returns immediately and
	// the result lands in the next snapshot.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := h.ref.RefreshNow(ctx); err != nil && err != refresher.ErrRefreshInFlight {
			h.log.Warn().Err(err).Msg("manual topology refresh failed")
		}
	}()

	h.writeJSON(w, http.StatusAccepted, map[string]any{"status": "accepted"})
}

func (h *Handler) handleTopologyStatus(w http.ResponseWriter, r *http.Request) {
	if !h.ensureRefresher(w) {
		return
	}

	snap := h.ref.Snapshot()
	resp := topologyStatus{
		State:     string(snap.State),
		Stale:     snap.Stale,
		Refreshes: snap.Refreshes,
		Failures:  snap.Failures,
		Skipped:   snap.Skipped,
	}
	if snap.LastError != "" {
		e := snap.LastError
		resp.LastError = &e
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func toDeviceView(id, name, typ, status string) deviceView {
	v := deviceView{
		ID:     id,
		Name:   name,
		Type:   typ,
		Status: status,
		Color:  topology.ColorFor(status, typ),
	}
	if glyph, ok := icons.Resolve(normalizeType(typ)); ok {
		v.Icon = glyph
	}
	return v
}

func (h *Handler) handleListDevices(w http.ResponseWriter, r *http.Request) {
	if h.queries != nil {
		rows, err := h.queries.ListDevices(r.Context())
		if err != nil {
			h.log.Error().Err(err).Msg("list devices failed")
			h.writeError(w, http.StatusInternalServerError, "db_error", "failed to list devices", nil)
			return
		}
		resp := make([]deviceView, 0, len(rows))
		for _, row := range rows {
			name := ""
			if row.Name != nil {
				name = *row.Name
			}
			resp = append(resp, toDeviceView(row.ID, name, row.Type, row.Status))
		}
		h.writeJSON(w, http.StatusOK, resp)
		return
	}

	if !h.ensureRefresher(w) {
		return
	}
	snap := h.ref.Snapshot()
	resp := make([]deviceView, 0, len(snap.Graph.Nodes))
	for _, n := range snap.Graph.Nodes {
		resp = append(resp, toDeviceView(n.ID, n.Name, n.Type, n.Status))
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// handleGetDevice backs node selection: a click on a graph node resolves here
// for the inspector panel.
func (h *Handler) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if h.queries != nil {
		row, err := h.queries.GetDevice(r.Context(), id)
		if err != nil {
			switch {
			case errors.Is(err, pgx.ErrNoRows):
				h.writeError(w, http.StatusNotFound, "not_found", "device not found", map[string]any{"id": id})
			case isInvalidUUID(err):
				h.writeError(w, http.StatusBadRequest, "invalid_id", "device id is not a valid uuid", map[string]any{"id": id})
			default:
				h.log.Error().Err(err).Str("id", id).Msg("get device failed")
				h.writeError(w, http.StatusInternalServerError, "db_error", "failed to fetch device", nil)
			}
			return
		}
		name := ""
		if row.Name != nil {
			name = *row.Name
		}
		h.writeJSON(w, http.StatusOK, toDeviceView(row.ID, name, row.Type, row.Status))
		return
	}

	if !h.ensureRefresher(w) {
		return
	}
	snap := h.ref.Snapshot()
	for _, n := range snap.Graph.Nodes {
		if n.ID == id {
			h.writeJSON(w, http.StatusOK, toDeviceView(n.ID, n.Name, n.Type, n.Status))
			return
		}
	}
	h.writeError(w, http.StatusNotFound, "not_found", "device not found", map[string]any{"id": id})
}

type mapConfigResponse struct {
	Credential string `json:"credential"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
}

func (h *Handler) handleMapConfig(w http.ResponseWriter, r *http.Request) {
	if h.creds == nil {
		h.writeError(w, http.StatusConflict, "config_missing", "map credential not configured", nil)
		return
	}

	cred, err := h.creds.MapCredential()
	if err != nil {
		if errors.Is(err, config.ErrCredentialMissing) {
			h.writeError(w, http.StatusConflict, "config_missing", "map credential not configured", nil)
			return
		}
		h.log.Error().Err(err).Msg("map credential lookup failed")
		h.writeError(w, http.StatusInternalServerError, "config_error", "failed to read map credential", nil)
		return
	}

	h.writeJSON(w, http.StatusOK, mapConfigResponse{
		Credential: cred,
		Width:      h.mapWidth,
		Height:     h.mapHeight,
	})
}

func normalizeType(t string) string {
	return strings.ToLower(strings.TrimSpace(t))
}

func isInvalidUUID(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "22P02"
	}
	return false
}
