// Package link brings the appliance's network interface up before the
// control loop starts, either waiting for a DHCP lease or applying a
// static address.
package link

import (
	"context"
	"fmt"
	"net"
	"strings"
)

// Config describes how the interface should be configured.
type Config struct {
	Iface      string
	Static     bool
	IP         string
	Subnet     string // dotted mask, e.g. 255.255.255.0
	Gateway    string
	DNS        string
	ResolvConf string // file receiving the DNS server in static mode; empty skips it
}

// Link brings a network interface up and reports its IPv4 address.
type Link interface {
	// BringUp blocks until the interface has an address or ctx ends.
	BringUp(ctx context.Context, cfg Config) (string, error)
}

// prefixLen converts a dotted IPv4 mask to a prefix length.
func prefixLen(subnet string) (int, error) {
	ip := net.ParseIP(subnet).To4()
	if ip == nil {
		return 0, fmt.Errorf("invalid subnet mask %q", subnet)
	}
	ones, bits := net.IPMask(ip).Size()
	if bits == 0 {
		return 0, fmt.Errorf("non-contiguous subnet mask %q", subnet)
	}
	return ones, nil
}

// staticCIDR validates cfg's static address and returns it in CIDR form.
func staticCIDR(cfg Config) (string, error) {
	if net.ParseIP(cfg.IP).To4() == nil {
		return "", fmt.Errorf("invalid static ip %q", cfg.IP)
	}
	n, err := prefixLen(cfg.Subnet)
	if err != nil {
		return "", err
	}
	if cfg.Gateway != "" && net.ParseIP(cfg.Gateway).To4() == nil {
		return "", fmt.Errorf("invalid gateway %q", cfg.Gateway)
	}
	return fmt.Sprintf("%s/%d", cfg.IP, n), nil
}

// resolvConf renders a resolv.conf naming dns.
func resolvConf(dns string) []byte {
	var b strings.Builder
	b.WriteString("# written by netpowerswitch\n")
	if dns != "" {
		fmt.Fprintf(&b, "nameserver %s\n", dns)
	}
	return []byte(b.String())
}
