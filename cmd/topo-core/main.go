package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"netatlas/topo-core/internal/config"
	"netatlas/topo-core/internal/devicesource"
	"netatlas/topo-core/internal/httpapi"
	"netatlas/topo-core/internal/icons"
	"netatlas/topo-core/internal/metrics"
	"netatlas/topo-core/internal/notify"
	"netatlas/topo-core/internal/probe"
	"netatlas/topo-core/internal/refresher"
	"netatlas/topo-core/internal/store"
	"netatlas/topo-core/internal/topology"
)

func main() {
	addr := envOr("HTTP_ADDR", ":8082")
	logLevel := envOr("LOG_LEVEL", "info")
	databaseURL := envOr("DATABASE_URL", "")
	sourceKind := envOr("DEVICE_SOURCE", "http")
	sourceURL := envOr("DEVICE_SOURCE_URL", "http://127.0.0.1:8081/api/v1")
	devicesFile := envOr("DEVICES_FILE", "")
	credentialFile := envOr("TOPO_CONFIG_FILE", "")
	webhookURL := envOr("NOTIFY_WEBHOOK_URL", "")

	logger := httpapi.NewLogger(logLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var pool *store.Pool
	if databaseURL != "" {
		p, err := store.Open(ctx, databaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer p.Close()
		pool = p
	}

	var src devicesource.Source
	switch sourceKind {
	case "postgres":
		if pool == nil {
			logger.Fatal().Msg("DEVICE_SOURCE=postgres requires DATABASE_URL")
		}
		src = devicesource.NewPostgres(pool.Queries())
	case "static":
		list, err := loadDevicesFile(devicesFile)
		if err != nil {
			logger.Fatal().Err(err).Str("path", devicesFile).Msg("failed to load devices file")
		}
		src = devicesource.Static{List: list}
	default:
		src = devicesource.NewHTTP(sourceURL, nil)
	}

	var notifier notify.Notifier = notify.Log{Logger: logger}
	if webhookURL != "" {
		notifier = notify.Multi{
			notify.Log{Logger: logger},
			notify.Webhook{URL: webhookURL, Logger: logger},
		}
	}

	prober := probe.New(logger, probe.Config{
		SNMPEnabled: envBool("PROBE_SNMP_ENABLED", false),
		Community:   envOr("PROBE_SNMP_COMMUNITY", "public"),
		Version:     envOr("PROBE_SNMP_VERSION", "2c"),
		RDNSEnabled: envBool("PROBE_RDNS_ENABLED", false),
	})

	synth := topology.Options{
		Icons:           icons.Resolve,
		Hub:             topology.FirstDeviceHub,
		StablePlacement: envBool("STABLE_PLACEMENT", false),
	}
	if hubType := envOr("HUB_TYPE", ""); hubType != "" {
		synth.Hub = topology.PreferTypeHub(hubType)
	}

	m := metrics.New()
	ref := refresher.New(logger, src, notifier, prober, m, refresher.Options{
		Interval: envDuration("REFRESH_INTERVAL", 30*time.Second),
		Synth:    synth,
	})
	go ref.Run(ctx)

	h := httpapi.NewHandler(logger, ref, httpapi.Config{
		Credentials: config.Chain{config.Env{}, config.File{Path: credentialFile}},
		Pool:        pool,
		Metrics:     m,
		MapWidth:    envInt("MAP_WIDTH", 800),
		MapHeight:   envInt("MAP_HEIGHT", 600),
	})
	srv := &http.Server{
		Addr:              addr,
		Handler:           h.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", addr).Str("source", src.Name()).Msg("topo-core listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server error")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	logger.Info().Msg("shutdown complete")
}

func loadDevicesFile(path string) ([]topology.Device, error) {
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var list []topology.Device
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func envOr(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
