package probe

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/miekg/dns"
)

type rdnsResolver struct {
	client  *dns.Client
	servers []string
}

func newRDNSResolver(resolvConf string) *rdnsResolver {
	if strings.TrimSpace(resolvConf) == "" {
		resolvConf = "/etc/resolv.conf"
	}

	var servers []string
	if cfg, err := dns.ClientConfigFromFile(resolvConf); err == nil {
		for _, s := range cfg.Servers {
			servers = append(servers, net.JoinHostPort(s, cfg.Port))
		}
	}
	if len(servers) == 0 {
		servers = []string{"127.0.0.1:53"}
	}

	return &rdnsResolver{client: new(dns.Client), servers: servers}
}

// lookup resolves the PTR name for an address, trimmed of the trailing dot
// and cut down to the host label.
func (r *rdnsResolver) lookup(ctx context.Context, address string) (string, error) {
	rev, err := dns.ReverseAddr(address)
	if err != nil {
		return "", err
	}

	m := new(dns.Msg)
	m.SetQuestion(rev, dns.TypePTR)

	var lastErr error
	for _, server := range r.servers {
		resp, _, err := r.client.ExchangeContext(ctx, m, server)
		if err != nil {
			lastErr = err
			continue
		}
		for _, ans := range resp.Answer {
			ptr, ok := ans.(*dns.PTR)
			if !ok {
				continue
			}
			if name := hostLabel(ptr.Ptr); name != "" {
				return name, nil
			}
		}
		return "", nil
	}
	if lastErr == nil {
		lastErr = errors.New("no dns servers configured")
	}
	return "", lastErr
}

func hostLabel(fqdn string) string {
	name := strings.TrimSuffix(strings.TrimSpace(fqdn), ".")
	if name == "" {
		return ""
	}
	if i := strings.IndexByte(name, '.'); i > 0 {
		name = name[:i]
	}
	return name
}
