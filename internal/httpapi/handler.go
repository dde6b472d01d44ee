package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"netatlas/topo-core/internal/config"
	"netatlas/topo-core/internal/metrics"
	"netatlas/topo-core/internal/refresher"
	"netatlas/topo-core/internal/store"
)

type Handler struct {
	log       zerolog.Logger
	ref       *refresher.Refresher
	creds     config.Provider
	pool      *store.Pool
	queries   *store.Queries
	metrics   *metrics.Metrics
	mapWidth  int
	mapHeight int
}

// Config carries the optional collaborators of the handler. Everything except
// the refresher may be nil/zero.
type Config struct {
	Credentials config.Provider
	Pool        *store.Pool
	Metrics     *metrics.Metrics
	MapWidth    int
	MapHeight   int
}

func NewHandler(log zerolog.Logger, ref *refresher.Refresher, cfg Config) *Handler {
	w := cfg.MapWidth
	if w <= 0 {
		w = 800
	}
	h := cfg.MapHeight
	if h <= 0 {
		h = 600
	}

	var q *store.Queries
	if cfg.Pool != nil {
		q = cfg.Pool.Queries()
	}

	return &Handler{
		log:       log,
		ref:       ref,
		creds:     cfg.Credentials,
		pool:      cfg.Pool,
		queries:   q,
		metrics:   cfg.Metrics,
		mapWidth:  w,
		mapHeight: h,
	}
}

func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(15 * time.Second))
	r.Use(h.accessLog)

	// Health
	r.Get("/healthz", h.handleHealthz)
	r.Get("/readyz", h.handleReadyZ)

	r.Method(http.MethodGet, "/metrics", h.metrics.Handler())

	// API
	r.Route("/api", func(r chi.Router) {
		r.Route("/v1", func(r chi.Router) {
			r.Route("/topology", func(r chi.Router) {
				r.Get("/", h.handleGetTopology)
				r.Post("/refresh", h.handleRefreshTopology)
				r.Get("/status", h.handleTopologyStatus)
			})

			r.Route("/devices", func(r chi.Router) {
				r.Get("/", h.handleListDevices)
				r.Get("/{id}", h.handleGetDevice)
			})

			r.Get("/map/config", h.handleMapConfig)
		})
	})

	return r
}

func (h *Handler) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		duration := time.Since(start)
		h.metrics.ObserveHTTPRequest(r.Method, r.URL.Path, ww.Status(), duration)

		h.log.Info().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Int64("duration_ms", duration.Milliseconds()).
			Msg("http_request")
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *Handler) writeError(w http.ResponseWriter, status int, code, msg string, details map[string]any) {
	resp := map[string]any{
		"error": map[string]any{
			"code":    code,
			"message": msg,
		},
	}
	if details != nil {
		resp["error"].(map[string]any)["details"] = details
	}
	h.writeJSON(w, status, resp)
}

func (h *Handler) handleHealthz(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *Handler) handleReadyZ(w http.ResponseWriter, r *http.Request) {
	if h.pool != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.pool.Ping(ctx); err != nil {
			h.writeError(w, http.StatusServiceUnavailable, "db_unavailable", "database not ready", map[string]any{"error": err.Error()})
			return
		}
	}

	if h.ref != nil && h.ref.Snapshot().State == refresher.StateLoading {
		h.writeError(w, http.StatusServiceUnavailable, "not_ready", "first topology refresh pending", nil)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"ready": true})
}
