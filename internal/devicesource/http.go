package devicesource

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"netatlas/topo-core/internal/topology"
)

// HTTP pulls devices from a remote inventory service exposing
// GET <base>/devices as a JSON array.
type HTTP struct {
	base   string
	client *http.Client
}

func NewHTTP(baseURL string, client *http.Client) *HTTP {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTP{
		base:   strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		client: client,
	}
}

func (h *HTTP) Name() string { return "http" }

func (h *HTTP) Devices(ctx context.Context) ([]topology.Device, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.base+"/devices", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("device fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("device fetch: unexpected status %d", resp.StatusCode)
	}

	var devices []topology.Device
	if err := json.NewDecoder(resp.Body).Decode(&devices); err != nil {
		return nil, fmt.Errorf("device fetch: decode: %w", err)
	}
	return devices, nil
}
