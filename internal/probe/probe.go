package probe

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"netatlas/topo-core/internal/topology"
)

// Config tunes the optional pre-synthesis enrichment pass.
type Config struct {
	SNMPEnabled   bool
	Community     string
	Version       string // "2c" (default) | "1"
	Port          uint16
	Timeout       time.Duration
	Retries       int
	RDNSEnabled   bool
	ResolvConf    string // defaults to /etc/resolv.conf
	Workers       int
	PerTargetWait time.Duration
}

type Prober struct {
	log     zerolog.Logger
	cfg     Config
	snmp    *snmpClient
	rdns    *rdnsResolver
	workers int
}

func New(log zerolog.Logger, cfg Config) *Prober {
	if cfg.Workers <= 0 {
		cfg.Workers = 8
	}
	if cfg.PerTargetWait <= 0 {
		cfg.PerTargetWait = 2 * time.Second
	}

	p := &Prober{log: log, cfg: cfg, workers: cfg.Workers}
	if cfg.SNMPEnabled {
		p.snmp = newSNMPClient(cfg)
	}
	if cfg.RDNSEnabled {
		p.rdns = newRDNSResolver(cfg.ResolvConf)
	}
	return p
}

// Enabled reports whether any enrichment method is configured.
func (p *Prober) Enabled() bool {
	return p != nil && (p.snmp != nil || p.rdns != nil)
}

// Enrich fills missing names and types on devices that carry an address.
// Failures are per-target and silent beyond debug logging; the input order is
// preserved and devices without an address pass through untouched.
func (p *Prober) Enrich(ctx context.Context, devices []topology.Device) []topology.Device {
	if !p.Enabled() || len(devices) == 0 {
		return devices
	}

	out := make([]topology.Device, len(devices))
	copy(out, devices)

	type job struct{ idx int }
	jobs := make(chan job, p.workers)
	var wg sync.WaitGroup

	worker := func() {
		defer wg.Done()
		for j := range jobs {
			p.enrichOne(ctx, &out[j.idx])
		}
	}
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go worker()
	}

	for i := range out {
		if strings.TrimSpace(out[i].Addr) == "" {
			continue
		}
		if out[i].Name != "" && out[i].Type != "" {
			continue
		}
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return out
		case jobs <- job{idx: i}:
		}
	}
	close(jobs)
	wg.Wait()
	return out
}

func (p *Prober) enrichOne(ctx context.Context, d *topology.Device) {
	tctx, cancel := context.WithTimeout(ctx, p.cfg.PerTargetWait)
	defer cancel()

	if p.snmp != nil {
		name, descr, err := p.snmp.system(tctx, d.Addr)
		if err != nil {
			p.log.Debug().Err(err).Str("addr", d.Addr).Msg("snmp probe failed")
		} else {
			if d.Name == "" && name != "" {
				d.Name = name
			}
			if d.Type == "" {
				if t := ClassifyType(descr); t != "" {
					d.Type = t
				}
			}
		}
	}

	if p.rdns != nil && d.Name == "" {
		if name, err := p.rdns.lookup(tctx, d.Addr); err != nil {
			p.log.Debug().Err(err).Str("addr", d.Addr).Msg("reverse dns probe failed")
		} else if name != "" {
			d.Name = name
		}
	}
}

// ClassifyType guesses a device type from an SNMP sysDescr string. Unknown
// descriptions return "" so the caller leaves the type unset.
func ClassifyType(sysDescr string) string {
	s := strings.ToLower(sysDescr)
	switch {
	case s == "":
		return ""
	case strings.Contains(s, "router") || strings.Contains(s, "gateway"):
		return topology.TypeRouter
	case strings.Contains(s, "switch"):
		return topology.TypeSwitch
	case strings.Contains(s, "access point") || strings.Contains(s, "wireless ap"):
		return topology.TypeAccessPoint
	case strings.Contains(s, "linux") || strings.Contains(s, "windows server") || strings.Contains(s, "freebsd"):
		return topology.TypeServer
	default:
		return ""
	}
}
