package probe

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gosnmp/gosnmp"
)

const (
	oidSysDescr0 = "1.3.6.1.2.1.1.1.0"
	oidSysName0  = "1.3.6.1.2.1.1.5.0"
)

type snmpClient struct {
	community string
	version   string
	port      uint16
	timeout   time.Duration
	retries   int
}

func newSNMPClient(cfg Config) *snmpClient {
	c := &snmpClient{
		community: strings.TrimSpace(cfg.Community),
		version:   strings.TrimSpace(cfg.Version),
		port:      cfg.Port,
		timeout:   cfg.Timeout,
		retries:   cfg.Retries,
	}
	if c.community == "" {
		c.community = "public"
	}
	if c.version == "" {
		c.version = "2c"
	}
	if c.port == 0 {
		c.port = 161
	}
	if c.timeout <= 0 {
		c.timeout = 900 * time.Millisecond
	}
	if c.retries < 0 {
		c.retries = 0
	}
	return c
}

func (c *snmpClient) connect(address string) (*gosnmp.GoSNMP, error) {
	var version gosnmp.SnmpVersion
	switch strings.ToLower(c.version) {
	case "2c", "v2c", "":
		version = gosnmp.Version2c
	case "1", "v1":
		version = gosnmp.Version1
	default:
		return nil, fmt.Errorf("unsupported snmp version %q", c.version)
	}

	s := &gosnmp.GoSNMP{
		Target:    address,
		Port:      c.port,
		Community: c.community,
		Version:   version,
		Timeout:   c.timeout,
		Retries:   c.retries,
	}
	if err := s.Connect(); err != nil {
		return nil, err
	}
	return s, nil
}

// system fetches sysName.0 and sysDescr.0 for one target.
func (c *snmpClient) system(ctx context.Context, address string) (name, descr string, err error) {
	_ = ctx

	s, err := c.connect(address)
	if err != nil {
		return "", "", err
	}
	defer s.Conn.Close()

	pkt, err := s.Get([]string{oidSysName0, oidSysDescr0})
	if err != nil {
		return "", "", err
	}

	for _, v := range pkt.Variables {
		switch v.Name {
		case oidSysName0:
			name = pduString(v)
		case oidSysDescr0:
			descr = pduString(v)
		}
	}
	return name, descr, nil
}

func pduString(pdu gosnmp.SnmpPDU) string {
	switch v := pdu.Value.(type) {
	case string:
		return strings.TrimSpace(v)
	case []byte:
		return strings.TrimSpace(string(v))
	default:
		return ""
	}
}
